package main

import (
	"os"

	"github.com/namecoin/bcresolve/cmd"
)

//nolint:gochecknoglobals
var (
	version   = "undefined"
	buildTime = "undefined"
)

func main() {
	cmd.SetVersion(version, buildTime)

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
