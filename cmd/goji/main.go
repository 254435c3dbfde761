package main

import (
	"log/slog"
	"os"

	"github.com/livefir/goji/cmd/goji/commands"
	"github.com/livefir/goji/cmd/goji/internal/logging"
)

// Version information (can be overridden at build time with -ldflags)
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	root := commands.NewRootCommand(commands.BuildInfo{Version: version, Commit: commit, Date: date})
	if err := root.Execute(); err != nil {
		logging.NewLogger(os.Stderr, slog.LevelInfo).Error("command failed", "error", err)
		os.Exit(1)
	}
}
