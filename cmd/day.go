package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/models"
)

var dayCmd = &cobra.Command{
	Use:     "day",
	Short:   "Show or move the campaign calendar",
	GroupID: "campaign",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			printDay(a.store.Snapshot())
			return nil
		})
	},
}

var dayAdvanceCmd = &cobra.Command{
	Use:   "advance [days]",
	Short: "Advance the calendar (default 1 day)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n := 1.0
		if len(args) == 1 {
			v, err := strconv.ParseFloat(args[0], 64)
			if err != nil || v <= 0 {
				return fmt.Errorf("days must be a positive number, got %q", args[0])
			}
			n = v
		}
		return withApp(func(a *app) error {
			a.store.AdvanceDays(n)
			printDay(a.store.Snapshot())
			return nil
		})
	},
}

var dayResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Return to day 0 and clear bastion progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			a.store.ResetDay()
			printDay(a.store.Snapshot())
			return nil
		})
	},
}

func printDay(st models.GameState) {
	fmt.Printf("Day %d\n", st.CurrentDay)
	for _, b := range st.Bastions {
		if due := st.CurrentDay - b.LastProcessedDay; due >= models.BastionTurnDays {
			fmt.Printf("  %s has %d turn(s) to process\n", b.Name, due/models.BastionTurnDays)
		}
	}
}

func init() {
	dayCmd.AddCommand(dayAdvanceCmd, dayResetCmd)
	rootCmd.AddCommand(dayCmd)
}
