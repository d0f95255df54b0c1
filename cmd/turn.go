package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/game"
	"github.com/marcus/dmscreen/internal/models"
)

var turnCmd = &cobra.Command{
	Use:     "turn",
	Short:   "Drive combat rounds and turns",
	GroupID: "combat",
}

// turnStep wraps a store transition and prints where combat ended up.
func turnStep(use, short string, step func(s *game.Store)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(func(a *app) error {
				step(a.store)
				printTurn(a.store.Snapshot())
				return nil
			})
		},
	}
}

func printTurn(st models.GameState) {
	if st.CurrentRound == 0 {
		fmt.Println("Not in combat")
		return
	}
	if st.CurrentTurnIndex < 0 || st.CurrentTurnIndex >= len(st.Encounter) {
		fmt.Printf("Round %d\n", st.CurrentRound)
		return
	}
	fmt.Printf("Round %d: %s's turn\n", st.CurrentRound, st.Encounter[st.CurrentTurnIndex].Name)
}

func init() {
	turnCmd.AddCommand(
		turnStep("start", "Start combat at round 1", (*game.Store).StartCombat),
		turnStep("next", "Advance to the next combatant", (*game.Store).NextTurn),
		turnStep("prev", "Step back to the previous combatant", (*game.Store).PreviousTurn),
		turnStep("end-round", "Skip to the top of the next round", (*game.Store).EndRound),
		turnStep("reset", "End combat", (*game.Store).ResetCombat),
		&cobra.Command{
			Use:   "show",
			Short: "Show the current round and turn",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return withApp(func(a *app) error {
					printTurn(a.store.Snapshot())
					return nil
				})
			},
		},
	)
	rootCmd.AddCommand(turnCmd)
}
