// Package cmd implements the command-line driver: a root command that
// defaults to "serve", plus "query" (one-shot client against the HTTP
// API) and "version".
//
// Adapted from blocky's cmd package (cmd/root.go): persistent
// --config/--apiHost/--apiPort flags, cobra.OnInitialize-driven config
// loading, the same apiURL() helper used by the query command.
package cmd

import (
	"fmt"
	"net"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/namecoin/bcresolve/config"
	"github.com/namecoin/bcresolve/log"
)

//nolint:gochecknoglobals
var (
	version    = "undefined"
	buildTime  = "undefined"
	configPath string
	cfg        *config.Config
	apiHost    string
	apiPort    uint16
)

// SetVersion records the version/build-time strings main.go's linker
// flags set, for use by the version command and startup logging.
func SetVersion(v, bt string) {
	version = v
	buildTime = bt
}

// NewRootCommand creates the root cli command instance.
func NewRootCommand() *cobra.Command {
	c := &cobra.Command{
		Use:   "bcresolve",
		Short: "bcresolve resolves .bit domains against the Namecoin blockchain",
		Long: `bcresolve is a DNSSEC-validating resolver for the Namecoin
blockchain-rooted .bit namespace.

It fetches NS/DS records for a .bit second-level domain from a
Namecoin node, resolves the nameservers under the public DNSSEC trust
anchor, and queries them authoritatively under a trust anchor derived
from the blockchain record.`,
		Run: func(cmd *cobra.Command, args []string) {
			newServeCommand().Run(cmd, args)
		},
	}

	c.PersistentFlags().StringVarP(&configPath, "config", "c", "./config.yml", "path to config file")
	c.PersistentFlags().StringVar(&apiHost, "apiHost", "localhost", "host of the running bcresolve query API")
	c.PersistentFlags().Uint16Var(&apiPort, "apiPort", 8080, "port of the running bcresolve query API")

	c.AddCommand(
		NewQueryCommand(),
		NewVersionCommand(),
		newServeCommand(),
	)

	return c
}

func apiURL(path string) string {
	return fmt.Sprintf("http://%s:%d%s", apiHost, apiPort, path)
}

//nolint:gochecknoinits
func init() {
	cobra.OnInitialize(initConfig)
}

func initConfig() {
	loaded, err := config.NewConfig(configPath)
	if err != nil {
		log.Log().Fatalf("can't load config: %s", err)

		return
	}

	cfg = loaded

	log.ConfigureLogger(cfg.Log)

	if _, portStr, splitErr := net.SplitHostPort(cfg.HTTP.Listen); splitErr == nil {
		if port, convErr := strconv.ParseUint(portStr, 10, 16); convErr == nil {
			apiPort = uint16(port)
		}
	}
}

// Execute runs the root command, returning any error instead of
// calling os.Exit itself so main.go stays the single exit point.
func Execute() error {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Println(err)

		return err
	}

	return nil
}
