package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/input"
	"github.com/marcus/dmscreen/internal/models"
	"github.com/marcus/dmscreen/internal/output"
)

var bastionCmd = &cobra.Command{
	Use:     "bastion",
	Aliases: []string{"bastions"},
	Short:   "Manage player strongholds",
	GroupID: "campaign",
}

var bastionListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List bastions",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			st := a.store.Snapshot()
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return output.JSON(st.Bastions)
			}
			if len(st.Bastions) == 0 {
				fmt.Println("No bastions")
				return nil
			}
			for i, b := range st.Bastions {
				fmt.Println(output.FormatBastionLong(i, b, st.CurrentDay))
			}
			return nil
		})
	},
}

var bastionAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a bastion",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		owner, _ := cmd.Flags().GetString("owner")
		raw, _ := cmd.Flags().GetStringSlice("facility")
		facilities, err := input.Lines(raw, cmd.InOrStdin())
		if err != nil {
			return err
		}
		return withApp(func(a *app) error {
			a.store.AddBastion(models.Bastion{
				Name:       args[0],
				Owner:      owner,
				Facilities: facilities,
			})
			output.Success("ADDED %s", args[0])
			return nil
		})
	},
}

var bastionRemoveCmd = &cobra.Command{
	Use:     "rm <index>",
	Aliases: []string{"remove"},
	Short:   "Remove a bastion",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBastion(args[0], func(a *app, i int, b models.Bastion) error {
			a.store.RemoveBastion(i)
			output.Success("REMOVED %s", b.Name)
			return nil
		})
	},
}

var bastionFacilityCmd = &cobra.Command{
	Use:   "facility",
	Short: "Add or remove facilities",
}

var bastionFacilityAddCmd = &cobra.Command{
	Use:   "add <index> <facility...>",
	Short: "Add a facility",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		facility := strings.Join(args[1:], " ")
		return withBastion(args[0], func(a *app, i int, b models.Bastion) error {
			a.store.AddBastionFacility(i, facility)
			output.Success("ADDED %s to %s", facility, b.Name)
			return nil
		})
	},
}

var bastionFacilityRemoveCmd = &cobra.Command{
	Use:   "rm <index> <facility-index>",
	Short: "Remove a facility",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withBastion(args[0], func(a *app, i int, b models.Bastion) error {
			fi, err := parseIndex(args[1], len(b.Facilities), "facility")
			if err != nil {
				return err
			}
			a.store.RemoveBastionFacility(i, fi)
			output.Success("REMOVED %s from %s", b.Facilities[fi], b.Name)
			return nil
		})
	},
}

var bastionOrderCmd = &cobra.Command{
	Use:   "order <index> [order]",
	Short: "Issue an order, or clear it when none is given",
	Long: `Issue an order to a bastion.

Orders: Craft, Empower, Harvest, Recruit, Research, Trade, Maintain.
A maintained bastion draws a random event each time a turn is processed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var order models.BastionOrder
		if len(args) == 2 {
			o, err := models.ParseBastionOrder(args[1])
			if err != nil {
				return withHint(err, args[1], orderNames())
			}
			order = o
		}
		return withBastion(args[0], func(a *app, i int, b models.Bastion) error {
			a.store.IssueBastionOrder(i, order)
			if order == models.OrderNone {
				output.Success("CLEARED order on %s", b.Name)
			} else {
				output.Success("%s: %s", b.Name, order)
			}
			return nil
		})
	},
}

var bastionNoteCmd = &cobra.Command{
	Use:   "note <index> [text...]",
	Short: "Set the bastion note (- reads stdin, @file reads a file)",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		note := strings.Join(args[1:], " ")
		if len(args) == 2 {
			text, err := input.Text(args[1], cmd.InOrStdin())
			if err != nil {
				return err
			}
			note = text
		}
		return withBastion(args[0], func(a *app, i int, b models.Bastion) error {
			a.store.SaveBastionNote(i, note)
			output.Success("SAVED note on %s", b.Name)
			return nil
		})
	},
}

var bastionProcessCmd = &cobra.Command{
	Use:   "process [index]",
	Short: "Run elapsed bastion turns for one bastion, or all",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			only := -1
			if len(args) == 1 {
				i, err := parseIndex(args[0], len(a.store.Snapshot().Bastions), "bastion")
				if err != nil {
					return err
				}
				only = i
				a.store.ProcessSingleBastion(i)
			} else {
				a.store.ProcessAllBastions()
			}
			st := a.store.Snapshot()
			for i, b := range st.Bastions {
				if only >= 0 && i != only {
					continue
				}
				fmt.Println(output.FormatBastionLong(i, b, st.CurrentDay))
			}
			return nil
		})
	},
}

func orderNames() []string {
	names := make([]string, len(models.BastionOrders))
	for i, o := range models.BastionOrders {
		names[i] = string(o)
	}
	return names
}

func withBastion(arg string, fn func(a *app, i int, b models.Bastion) error) error {
	return withApp(func(a *app) error {
		bastions := a.store.Snapshot().Bastions
		i, err := parseIndex(arg, len(bastions), "bastion")
		if err != nil {
			return err
		}
		return fn(a, i, bastions[i])
	})
}

func init() {
	bastionListCmd.Flags().Bool("json", false, "JSON output")
	bastionAddCmd.Flags().String("owner", "", "owning player")
	bastionAddCmd.Flags().StringSlice("facility", nil, "facility (repeatable; @file or - read one per line)")

	bastionFacilityCmd.AddCommand(bastionFacilityAddCmd, bastionFacilityRemoveCmd)
	bastionCmd.AddCommand(
		bastionListCmd,
		bastionAddCmd,
		bastionRemoveCmd,
		bastionFacilityCmd,
		bastionOrderCmd,
		bastionNoteCmd,
		bastionProcessCmd,
	)
	rootCmd.AddCommand(bastionCmd)
}
