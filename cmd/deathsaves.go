package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/models"
	"github.com/marcus/dmscreen/internal/output"
)

var deathSaveCmd = &cobra.Command{
	Use:     "deathsave",
	Aliases: []string{"ds"},
	Short:   "Track death saving throws",
	GroupID: "combat",
}

var deathSaveListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List death save trackers",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			saves := a.store.Snapshot().DeathSaves
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return output.JSON(saves)
			}
			if len(saves) == 0 {
				fmt.Println("No death saves")
				return nil
			}
			for i, d := range saves {
				fmt.Println(output.FormatDeathSave(i, d))
			}
			return nil
		})
	},
}

var deathSaveAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Start tracking a downed character",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			a.store.AddDeathSave(args[0])
			output.Success("TRACKING %s", args[0])
			return nil
		})
	},
}

// withDeathSave resolves a death save index argument and prints the
// tracker after fn has run.
func withDeathSave(arg string, fn func(a *app, i int)) error {
	return withApp(func(a *app) error {
		i, err := parseIndex(arg, len(a.store.Snapshot().DeathSaves), "death save")
		if err != nil {
			return err
		}
		fn(a, i)
		saves := a.store.Snapshot().DeathSaves
		if i < len(saves) {
			fmt.Println(output.FormatDeathSave(i, saves[i]))
		}
		return nil
	})
}

func deathSaveAdjustCmd(use string, kind models.DeathSaveKind) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <index> [delta]",
		Short: fmt.Sprintf("Adjust %s (default +1)", kind),
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			delta := 1
			if len(args) == 2 {
				d, err := strconv.Atoi(args[1])
				if err != nil {
					return fmt.Errorf("invalid delta %q", args[1])
				}
				delta = d
			}
			return withDeathSave(args[0], func(a *app, i int) {
				a.store.AdjustDeathSave(i, kind, delta)
			})
		},
	}
}

var deathSaveStableCmd = &cobra.Command{
	Use:   "stable <index>",
	Short: "Toggle the stable flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeathSave(args[0], func(a *app, i int) { a.store.ToggleStable(i) })
	},
}

var deathSaveResetCmd = &cobra.Command{
	Use:   "reset <index>",
	Short: "Clear both counters and the stable flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withDeathSave(args[0], func(a *app, i int) { a.store.ResetDeathSave(i) })
	},
}

var deathSaveRemoveCmd = &cobra.Command{
	Use:     "rm <index>",
	Aliases: []string{"remove"},
	Short:   "Stop tracking",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			saves := a.store.Snapshot().DeathSaves
			i, err := parseIndex(args[0], len(saves), "death save")
			if err != nil {
				return err
			}
			a.store.RemoveDeathSave(i)
			output.Success("REMOVED %s", saves[i].Name)
			return nil
		})
	},
}

func init() {
	deathSaveListCmd.Flags().Bool("json", false, "JSON output")
	deathSaveCmd.AddCommand(
		deathSaveListCmd,
		deathSaveAddCmd,
		deathSaveAdjustCmd("success", models.DeathSaveSuccesses),
		deathSaveAdjustCmd("fail", models.DeathSaveFailures),
		deathSaveStableCmd,
		deathSaveResetCmd,
		deathSaveRemoveCmd,
	)
	rootCmd.AddCommand(deathSaveCmd)
}
