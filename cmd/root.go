package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var (
	version string
	dataDir string
	debug   bool
)

// SetVersion sets the version string
func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

var rootCmd = &cobra.Command{
	Use:   "dmscreen",
	Short: "Offline-first game master screen",
	Long: `dmscreen - an offline-first screen for running tabletop RPG sessions.

Tracks the encounter and turn order, the party, death saves, reference links
and bastions. State lives locally and syncs to a remote store when signed in.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if isMutatingCommand(commandKey(cmd)) {
			autoSyncAfterMutation(cmd.Context())
		}
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// commandKey is the command path without the binary name, e.g. "encounter add"
func commandKey(cmd *cobra.Command) string {
	path := cmd.CommandPath()
	if i := strings.IndexByte(path, ' '); i >= 0 {
		return path[i+1:]
	}
	return ""
}

// configureLogging installs a stderr text handler. Warnings and up by
// default; --debug or DMSCREEN_DEBUG=1 lowers it to debug.
func configureLogging() {
	level := slog.LevelWarn
	if debug || envTrue("DMSCREEN_DEBUG") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func envTrue(key string) bool {
	v := strings.ToLower(os.Getenv(key))
	return v == "1" || v == "true"
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "local state directory (default: DMSCREEN_DATA_DIR or ~/.config/dmscreen/data)")

	rootCmd.AddGroup(
		&cobra.Group{ID: "combat", Title: "Combat Commands:"},
		&cobra.Group{ID: "campaign", Title: "Campaign Commands:"},
		&cobra.Group{ID: "sync", Title: "Sync Commands:"},
		&cobra.Group{ID: "system", Title: "System Commands:"},
	)

	rootCmd.SetHelpCommandGroupID("system")
	rootCmd.SetCompletionCommandGroupID("system")
}
