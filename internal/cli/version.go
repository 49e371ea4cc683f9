package cli

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// Version information set via ldflags at build time
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// versionShort controls whether to show short or full version output
var versionShort bool

var versionCmd = &cobra.Command{
	Use:         "version",
	Short:       "Print version information",
	Long:        `Print the version, commit hash, and build date of lp, plus the lpass version it drives.`,
	Annotations: map[string]string{annotationLenientConfig: "true"},
	RunE: func(cmd *cobra.Command, args []string) error {
		return versionCommand(cmd)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print only the version number")
}

// VersionInfo is the --json output of "lp version".
type VersionInfo struct {
	Version string `json:"version" yaml:"version"`
	Commit  string `json:"commit" yaml:"commit"`
	Date    string `json:"date" yaml:"date"`
	Go      string `json:"go" yaml:"go"`
	OSArch  string `json:"os_arch" yaml:"os_arch"`
	Lpass   string `json:"lpass" yaml:"lpass"`
}

func versionCommand(cmd *cobra.Command) error {
	w := cmd.OutOrStdout()
	if versionShort {
		fmt.Fprintln(w, version)
		return nil
	}

	info := VersionInfo{
		Version: formatVersion(version),
		Commit:  commit,
		Date:    date,
		Go:      runtime.Version(),
		OSArch:  runtime.GOOS + "/" + runtime.GOARCH,
		Lpass:   lpassVersion(cmd),
	}

	return writeResult(cmd, info, func() {
		fmt.Fprintf(w, "lp %s\n", info.Version)
		fmt.Fprintf(w, "commit: %s\n", info.Commit)
		fmt.Fprintf(w, "built: %s\n", info.Date)
		fmt.Fprintf(w, "go: %s\n", info.Go)
		fmt.Fprintf(w, "os/arch: %s\n", info.OSArch)
		fmt.Fprintf(w, "lpass: %s\n", info.Lpass)
	})
}

// lpassVersion asks the configured lpass for its version line.
func lpassVersion(cmd *cobra.Command) string {
	out, err := newApp(cmd).client.Version()
	if err != nil || out == "" {
		appLog.Debug("lpass --version failed: %v", err)
		return "not found"
	}
	return out
}

// formatVersion ensures version has a 'v' prefix for display
func formatVersion(v string) string {
	if v == "" || v == "dev" {
		return v
	}
	if v[0] != 'v' {
		return "v" + v
	}
	return v
}

// SetVersionInfo sets the version information (called from main).
func SetVersionInfo(v, c, d string) {
	version = v
	commit = c
	date = d
}

// GetVersion returns the current version string.
func GetVersion() string {
	return version
}
