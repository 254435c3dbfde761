package commands

import (
	"fmt"
	"io"
	"runtime/debug"

	"github.com/spf13/cobra"
)

func newVersionCommand(build BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			printVersion(cmd.OutOrStdout(), build)
		},
	}
}

func printVersion(w io.Writer, build BuildInfo) {
	fmt.Fprintf(w, "goji version %s\n", build.Version)

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return
	}

	var vcsRevision, vcsModified string
	for _, setting := range info.Settings {
		switch setting.Key {
		case "vcs.revision":
			vcsRevision = setting.Value
		case "vcs.modified":
			vcsModified = setting.Value
		}
	}

	if build.Commit != "" && build.Commit != "unknown" {
		fmt.Fprintf(w, "commit: %s\n", build.Commit)
	} else if vcsRevision != "" {
		if len(vcsRevision) > 12 {
			vcsRevision = vcsRevision[:12]
		}
		fmt.Fprintf(w, "commit: %s\n", vcsRevision)
	}
	if build.Date != "" && build.Date != "unknown" {
		fmt.Fprintf(w, "built: %s\n", build.Date)
	}
	if vcsModified == "true" {
		fmt.Fprintln(w, "modified: true (uncommitted changes)")
	}
	fmt.Fprintf(w, "go: %s\n", info.GoVersion)
}
