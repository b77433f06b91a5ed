package cmd

import (
	"fmt"
	"io"
	"runtime/debug"
	"strings"

	"github.com/spf13/cobra"
)

var version = "dev"

var versionVerbose bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of PlanAir",
	Long: `Print the PlanAir version along with the Go toolchain and VCS revision
it was built from. With --verbose, also list the linked module versions.`,
	Run: func(cmd *cobra.Command, args []string) {
		info, _ := debug.ReadBuildInfo()
		printVersion(cmd.OutOrStdout(), info, versionVerbose)
	},
}

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "list linked module versions")
	rootCmd.AddCommand(versionCmd)
}

func printVersion(w io.Writer, info *debug.BuildInfo, verbose bool) {
	v := version
	if v == "dev" && info != nil && info.Main.Version != "" && info.Main.Version != "(devel)" {
		v = info.Main.Version
	}
	fmt.Fprintf(w, "PlanAir %s\n", v)
	if info == nil {
		return
	}

	fmt.Fprintf(w, "  go:       %s\n", info.GoVersion)
	var revision, modified string
	for _, s := range info.Settings {
		switch s.Key {
		case "vcs.revision":
			revision = s.Value
		case "vcs.modified":
			modified = s.Value
		}
	}
	if revision != "" {
		if len(revision) > 12 {
			revision = revision[:12]
		}
		if modified == "true" {
			revision += " (modified)"
		}
		fmt.Fprintf(w, "  revision: %s\n", revision)
	}

	if !verbose {
		return
	}
	for _, dep := range info.Deps {
		if strings.HasPrefix(dep.Path, "golang.org/x/") {
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", dep.Path, dep.Version)
	}
}
