package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/namecoin/bcresolve/evt"
	"github.com/namecoin/bcresolve/log"
	"github.com/namecoin/bcresolve/metrics"
	"github.com/namecoin/bcresolve/namecoin"
	"github.com/namecoin/bcresolve/resolve"
	"github.com/namecoin/bcresolve/server"
)

//nolint:gochecknoglobals
var done chan bool

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "starts the bcresolve query API (default command)",
		Run:   startServer,
	}
}

func startServer(_ *cobra.Command, _ []string) {
	printBanner()

	metrics.RegisterEventListeners()

	client := namecoin.NewClient(
		cfg.Namecoin.Host,
		cfg.Namecoin.Port,
		cfg.Namecoin.User,
		cfg.Namecoin.Password,
		cfg.Namecoin.Timeout.Cast(),
	)

	resolver := resolve.New(client, resolve.Options{
		ResolvConf:    cfg.ResolvConf,
		DNSSECRootKey: cfg.DNSSECRootKey,
		TempDir:       cfg.TempDir,
	})

	signals := make(chan os.Signal, 1)
	done = make(chan bool)

	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)

	srv := server.NewServer(cfg, resolver)
	srv.Start()

	go func() {
		<-signals
		log.Log().Infof("terminating...")
		srv.Stop()
		done <- true
	}()

	evt.Bus().Publish(evt.ApplicationStarted, version, buildTime)
	<-done
}

func printBanner() {
	log.Log().Info("_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/")
	log.Log().Info("_/                       bcresolve                           _/")
	log.Log().Infof("_/  Version: %-18s Build time: %-18s  _/", version, buildTime)
	log.Log().Info("_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/_/")
}
