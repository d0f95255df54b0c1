package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/models"
	"github.com/marcus/dmscreen/internal/output"
)

var encounterCmd = &cobra.Command{
	Use:     "encounter",
	Aliases: []string{"enc"},
	Short:   "Manage the combat roster",
	GroupID: "combat",
}

var encounterListCmd = &cobra.Command{
	Use:     "list",
	Short:   "List combatants in turn order",
	Aliases: []string{"ls"},
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return output.JSON(a.store.Snapshot().Encounter)
			}
			st := a.store.Snapshot()
			view := a.store.SortedView()
			if len(view) == 0 {
				fmt.Println("No combatants")
				return nil
			}
			if st.CurrentRound > 0 {
				fmt.Printf("Round %d, sorted by %s\n", st.CurrentRound, st.SortBy)
			} else {
				fmt.Printf("Not in combat, sorted by %s\n", st.SortBy)
			}
			for _, e := range view {
				active := st.CurrentRound > 0 && e.Index == st.CurrentTurnIndex
				fmt.Println(output.FormatCharacterLine(e.Index, e.Character, active))
			}
			return nil
		})
	},
}

var encounterAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a combatant",
	Long: `Add a combatant to the encounter.

Examples:
  dmscreen encounter add Goblin --hp 7 --ac 15 --mod 2
  dmscreen encounter add "Young Dragon" --hp 178 --init 17`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := strings.TrimSpace(args[0])
		if name == "" {
			return fmt.Errorf("name is required")
		}
		c := models.Character{Name: name, Abilities: []models.Ability{}}
		c.MaxHP, _ = cmd.Flags().GetInt("hp")
		c.HP = c.MaxHP
		if cmd.Flags().Changed("max-hp") {
			c.MaxHP, _ = cmd.Flags().GetInt("max-hp")
		}
		c.Initiative, _ = cmd.Flags().GetInt("init")
		c.InitiativeMod, _ = cmd.Flags().GetInt("mod")
		if cmd.Flags().Changed("ac") {
			ac, _ := cmd.Flags().GetInt("ac")
			c.AC = models.IntPtr(ac)
		}
		if c.MaxHP < 0 {
			return fmt.Errorf("hp must not be negative")
		}
		return withApp(func(a *app) error {
			a.store.AddCharacter(c)
			output.Success("ADDED %s (#%d)", name, len(a.store.Snapshot().Encounter)-1)
			return nil
		})
	},
}

var encounterAddPlayerCmd = &cobra.Command{
	Use:   "add-player <player-index> <hp>",
	Short: "Add a party member to the encounter",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		hp, err := strconv.Atoi(args[1])
		if err != nil || hp < 0 {
			return fmt.Errorf("invalid hp %q", args[1])
		}
		return withApp(func(a *app) error {
			st := a.store.Snapshot()
			pi, err := parseIndex(args[0], len(st.Players), "player")
			if err != nil {
				return err
			}
			a.store.AddPlayerToEncounter(pi, hp)
			output.Success("ADDED %s to the encounter", st.Players[pi].Name)
			return nil
		})
	},
}

var encounterRemoveCmd = &cobra.Command{
	Use:     "rm <index>",
	Short:   "Remove a combatant",
	Aliases: []string{"remove"},
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharacter(args[0], func(a *app, i int, c models.Character) error {
			a.store.RemoveCharacter(i)
			output.Success("REMOVED %s", c.Name)
			return nil
		})
	},
}

var encounterUpdateCmd = &cobra.Command{
	Use:   "update <index>",
	Short: "Change a combatant's fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharacter(args[0], func(a *app, i int, c models.Character) error {
			f := cmd.Flags()
			if f.Changed("name") {
				c.Name, _ = f.GetString("name")
			}
			if f.Changed("hp") {
				c.HP, _ = f.GetInt("hp")
			}
			if f.Changed("max-hp") {
				c.MaxHP, _ = f.GetInt("max-hp")
			}
			if f.Changed("init") {
				c.Initiative, _ = f.GetInt("init")
			}
			if f.Changed("mod") {
				c.InitiativeMod, _ = f.GetInt("mod")
			}
			if f.Changed("ac") {
				ac, _ := f.GetInt("ac")
				c.AC = models.IntPtr(ac)
			}
			if unset, _ := f.GetBool("clear-ac"); unset {
				c.AC = nil
			}
			a.store.UpdateCharacter(i, c)
			output.Success("UPDATED %s", c.Name)
			return nil
		})
	},
}

func adjustCmd(use, short string, sign int) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <index> <amount>",
		Short: short,
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 0 {
				return fmt.Errorf("amount must be a non-negative number, got %q", args[1])
			}
			return withCharacter(args[0], func(a *app, i int, c models.Character) error {
				a.store.ApplyAdjustment(i, sign*n)
				after := a.store.Snapshot().Encounter[i]
				fmt.Printf("%s  HP %s\n", after.Name, output.FormatHP(after.HP, after.MaxHP))
				return nil
			})
		},
	}
}

var encounterRollCmd = &cobra.Command{
	Use:   "roll [index]",
	Short: "Roll initiative for one combatant, or for everyone",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			return withApp(func(a *app) error {
				a.store.RollAllInitiative()
				for _, e := range a.store.SortedView() {
					fmt.Printf("%-20s %d\n", e.Character.Name, e.Character.Initiative)
				}
				return nil
			})
		}
		return withCharacter(args[0], func(a *app, i int, c models.Character) error {
			a.store.RollInitiative(i)
			fmt.Printf("%s rolled %d\n", c.Name, a.store.Snapshot().Encounter[i].Initiative)
			return nil
		})
	},
}

var encounterCopyCmd = &cobra.Command{
	Use:   "copy <index>",
	Short: "Duplicate a combatant with a letter suffix",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharacter(args[0], func(a *app, i int, c models.Character) error {
			a.store.CopyEncounter(i)
			enc := a.store.Snapshot().Encounter
			output.Success("ADDED %s (#%d)", enc[len(enc)-1].Name, len(enc)-1)
			return nil
		})
	},
}

var encounterConditionCmd = &cobra.Command{
	Use:   "condition <index> [text...]",
	Short: "Set or clear a combatant's condition",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args[1:], " ")
		return withCharacter(args[0], func(a *app, i int, c models.Character) error {
			a.store.UpdateCondition(i, text)
			if text == "" {
				output.Success("CLEARED condition on %s", c.Name)
			} else {
				output.Success("%s is %s", c.Name, text)
			}
			return nil
		})
	},
}

var encounterSortCmd = &cobra.Command{
	Use:   "sort [initiative|name]",
	Short: "Set the turn order key, or toggle it",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var mode models.SortMode
		if len(args) == 1 {
			m, err := models.ParseSortMode(args[0])
			if err != nil {
				return withHint(err, args[0], []string{string(models.SortInitiative), string(models.SortName)})
			}
			mode = m
		}
		return withApp(func(a *app) error {
			if mode == "" {
				a.store.ToggleSort()
			} else {
				a.store.SetSort(mode)
			}
			fmt.Printf("Sorting by %s\n", a.store.Snapshot().SortBy)
			return nil
		})
	},
}

var abilityCmd = &cobra.Command{
	Use:   "ability",
	Short: "Track limited-use abilities on a combatant",
}

var abilityAddCmd = &cobra.Command{
	Use:   "add <index> <name>",
	Short: "Add an ability",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		maxUses, _ := cmd.Flags().GetInt("max")
		if maxUses < 0 {
			return fmt.Errorf("--max must not be negative")
		}
		return withCharacter(args[0], func(a *app, i int, c models.Character) error {
			a.store.AddAbility(i, models.Ability{Name: args[1], Max: maxUses})
			output.Success("ADDED %s to %s", args[1], c.Name)
			return nil
		})
	},
}

var abilityRemoveCmd = &cobra.Command{
	Use:   "rm <index> <ability-index>",
	Short: "Remove an ability",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCharacter(args[0], func(a *app, i int, c models.Character) error {
			ai, err := parseIndex(args[1], len(c.Abilities), "ability")
			if err != nil {
				return err
			}
			a.store.RemoveAbility(i, ai)
			output.Success("REMOVED %s from %s", c.Abilities[ai].Name, c.Name)
			return nil
		})
	},
}

var abilityUseCmd = &cobra.Command{
	Use:   "use <index> <ability-index>",
	Short: "Mark uses of an ability (negative --count restores)",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		count, _ := cmd.Flags().GetInt("count")
		return withCharacter(args[0], func(a *app, i int, c models.Character) error {
			ai, err := parseIndex(args[1], len(c.Abilities), "ability")
			if err != nil {
				return err
			}
			a.store.AdjustAbility(i, ai, count)
			ab := a.store.Snapshot().Encounter[i].Abilities[ai]
			fmt.Printf("%s: %s %d/%d\n", c.Name, ab.Name, ab.Used, ab.Max)
			return nil
		})
	},
}

// withCharacter resolves an encounter index argument and runs fn with it.
func withCharacter(arg string, fn func(a *app, i int, c models.Character) error) error {
	return withApp(func(a *app) error {
		enc := a.store.Snapshot().Encounter
		i, err := parseIndex(arg, len(enc), "encounter")
		if err != nil {
			return err
		}
		return fn(a, i, enc[i])
	})
}

func init() {
	encounterListCmd.Flags().Bool("json", false, "JSON output")

	encounterAddCmd.Flags().Int("hp", 0, "hit points (also sets max hp)")
	encounterAddCmd.Flags().Int("max-hp", 0, "maximum hit points, when different from --hp")
	encounterAddCmd.Flags().Int("init", 0, "initiative")
	encounterAddCmd.Flags().Int("mod", 0, "initiative modifier")
	encounterAddCmd.Flags().Int("ac", 0, "armor class")

	encounterUpdateCmd.Flags().String("name", "", "new name")
	encounterUpdateCmd.Flags().Int("hp", 0, "hit points")
	encounterUpdateCmd.Flags().Int("max-hp", 0, "maximum hit points")
	encounterUpdateCmd.Flags().Int("init", 0, "initiative")
	encounterUpdateCmd.Flags().Int("mod", 0, "initiative modifier")
	encounterUpdateCmd.Flags().Int("ac", 0, "armor class")
	encounterUpdateCmd.Flags().Bool("clear-ac", false, "unset armor class")

	abilityAddCmd.Flags().Int("max", 1, "uses per rest")
	abilityUseCmd.Flags().Int("count", 1, "uses to mark")

	abilityCmd.AddCommand(abilityAddCmd, abilityRemoveCmd, abilityUseCmd)
	encounterCmd.AddCommand(
		encounterListCmd,
		encounterAddCmd,
		encounterAddPlayerCmd,
		encounterRemoveCmd,
		encounterUpdateCmd,
		adjustCmd("damage", "Subtract hit points", -1),
		adjustCmd("heal", "Restore hit points", 1),
		encounterRollCmd,
		encounterCopyCmd,
		encounterConditionCmd,
		encounterSortCmd,
		abilityCmd,
	)
	rootCmd.AddCommand(encounterCmd)
}
