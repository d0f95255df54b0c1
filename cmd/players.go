package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/models"
	"github.com/marcus/dmscreen/internal/output"
)

var playerCmd = &cobra.Command{
	Use:     "player",
	Aliases: []string{"players"},
	Short:   "Manage the party",
	GroupID: "campaign",
}

var playerListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List party members",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			players := a.store.Snapshot().Players
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return output.JSON(players)
			}
			if len(players) == 0 {
				fmt.Println("No players")
				return nil
			}
			for i, p := range players {
				fmt.Println(output.FormatPlayerLine(i, p))
			}
			return nil
		})
	},
}

var playerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a party member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := models.Player{Name: args[0]}
		applyPlayerFlags(cmd, &p)
		return withApp(func(a *app) error {
			a.store.AddPlayer(p)
			output.Success("ADDED %s", p.Name)
			return nil
		})
	},
}

var playerUpdateCmd = &cobra.Command{
	Use:   "update <index>",
	Short: "Change a party member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			players := a.store.Snapshot().Players
			i, err := parseIndex(args[0], len(players), "player")
			if err != nil {
				return err
			}
			p := players[i]
			if cmd.Flags().Changed("name") {
				p.Name, _ = cmd.Flags().GetString("name")
			}
			applyPlayerFlags(cmd, &p)
			a.store.UpdatePlayer(i, p)
			output.Success("UPDATED %s", p.Name)
			return nil
		})
	},
}

var playerRemoveCmd = &cobra.Command{
	Use:     "rm <index>",
	Aliases: []string{"remove"},
	Short:   "Remove a party member",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			players := a.store.Snapshot().Players
			i, err := parseIndex(args[0], len(players), "player")
			if err != nil {
				return err
			}
			a.store.RemovePlayer(i)
			output.Success("REMOVED %s", players[i].Name)
			return nil
		})
	},
}

// applyPlayerFlags copies the passive score flags that were set onto p.
func applyPlayerFlags(cmd *cobra.Command, p *models.Player) {
	f := cmd.Flags()
	set := func(name string, dst **int) {
		if f.Changed(name) {
			v, _ := f.GetInt(name)
			*dst = models.IntPtr(v)
		}
	}
	set("pp", &p.PP)
	set("pi", &p.PI)
	set("ac", &p.AC)
}

func init() {
	playerListCmd.Flags().Bool("json", false, "JSON output")
	for _, c := range []*cobra.Command{playerAddCmd, playerUpdateCmd} {
		c.Flags().Int("pp", 0, "passive perception")
		c.Flags().Int("pi", 0, "passive insight")
		c.Flags().Int("ac", 0, "armor class")
	}
	playerUpdateCmd.Flags().String("name", "", "new name")

	playerCmd.AddCommand(playerListCmd, playerAddCmd, playerUpdateCmd, playerRemoveCmd)
	rootCmd.AddCommand(playerCmd)
}
