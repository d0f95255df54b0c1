package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/output"
	"github.com/marcus/dmscreen/internal/syncconfig"
)

var statusCmd = &cobra.Command{
	Use:     "status",
	Short:   "Summarize the campaign and sync state",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			st := a.store.Snapshot()
			summary := syncSummary(a)
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return output.JSON(map[string]any{
					"state": st,
					"sync":  summary,
				})
			}
			md := output.StatusMarkdown(st, summary)
			rendered, err := output.RenderMarkdown(md)
			if err != nil {
				fmt.Print(md)
				return nil
			}
			fmt.Println(rendered)
			return nil
		})
	},
}

// syncSummary reports the configured sync target, or nil when signed out.
func syncSummary(a *app) *output.SyncSummary {
	userID := syncconfig.GetUserID()
	if userID == "" {
		return nil
	}
	s := &output.SyncSummary{
		UserID:   userID,
		Backend:  "http",
		Auto:     syncconfig.GetAutoSyncEnabled(),
		Interval: syncconfig.GetAutoSyncInterval(),
	}
	if b, err := syncconfig.GetBackend(); err == nil {
		s.Backend = string(b)
	}
	if t, ok, err := a.db.GetLastSync(userID); err == nil && ok {
		s.LastSync = t
	}
	return s
}

var darkModeCmd = &cobra.Command{
	Use:     "dark-mode [on|off|toggle]",
	Short:   "Show or change the dark mode preference",
	GroupID: "system",
	Args:    cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if len(args) == 1 {
				switch strings.ToLower(args[0]) {
				case "on", "true", "1":
					a.store.SetDarkMode(true)
				case "off", "false", "0":
					a.store.SetDarkMode(false)
				case "toggle":
					a.store.ToggleDarkMode()
				default:
					return fmt.Errorf("expected on, off or toggle, got %q", args[0])
				}
			}
			if a.store.Snapshot().DarkMode {
				fmt.Println("Dark mode: on")
			} else {
				fmt.Println("Dark mode: off")
			}
			return nil
		})
	},
}

func init() {
	statusCmd.Flags().Bool("json", false, "JSON output")
	rootCmd.AddCommand(statusCmd, darkModeCmd)
}
