package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/babarot/organizeimg/internal/cli"
)

const appName = "organizeimg"

var (
	version   = "unset"
	revision  = "unset"
	buildDate = "unset"
)

func main() {
	if err := cli.Run(cli.Version{
		AppName:   appName,
		Version:   version,
		Revision:  revision,
		BuildDate: buildDate,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		slog.Error("failed to run cli", "error", err)
		os.Exit(1)
	}
}
