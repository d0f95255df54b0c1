package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/models"
	"github.com/marcus/dmscreen/internal/output"
)

var linkCmd = &cobra.Command{
	Use:     "link",
	Aliases: []string{"links"},
	Short:   "Bookmark reference URLs",
	GroupID: "campaign",
}

var linkListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List links",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			links := a.store.Snapshot().Links
			if jsonOut, _ := cmd.Flags().GetBool("json"); jsonOut {
				return output.JSON(links)
			}
			if len(links) == 0 {
				fmt.Println("No links")
				return nil
			}
			for i, l := range links {
				fmt.Println(output.FormatLink(i, l))
			}
			return nil
		})
	},
}

var linkAddCmd = &cobra.Command{
	Use:   "add <name> <url>",
	Short: "Add a link",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			if err := a.store.AddLink(models.Link{Name: args[0], URL: args[1]}); err != nil {
				return err
			}
			output.Success("ADDED %s", args[0])
			return nil
		})
	},
}

var linkUpdateCmd = &cobra.Command{
	Use:   "update <index>",
	Short: "Change a link",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			links := a.store.Snapshot().Links
			i, err := parseIndex(args[0], len(links), "link")
			if err != nil {
				return err
			}
			l := links[i]
			if cmd.Flags().Changed("name") {
				l.Name, _ = cmd.Flags().GetString("name")
			}
			if cmd.Flags().Changed("url") {
				l.URL, _ = cmd.Flags().GetString("url")
			}
			if err := a.store.UpdateLink(i, l); err != nil {
				return err
			}
			output.Success("UPDATED %s", l.Name)
			return nil
		})
	},
}

var linkRemoveCmd = &cobra.Command{
	Use:     "rm <index>",
	Aliases: []string{"remove"},
	Short:   "Remove a link",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app) error {
			links := a.store.Snapshot().Links
			i, err := parseIndex(args[0], len(links), "link")
			if err != nil {
				return err
			}
			a.store.RemoveLink(i)
			output.Success("REMOVED %s", links[i].Name)
			return nil
		})
	},
}

func init() {
	linkListCmd.Flags().Bool("json", false, "JSON output")
	linkUpdateCmd.Flags().String("name", "", "new name")
	linkUpdateCmd.Flags().String("url", "", "new url")

	linkCmd.AddCommand(linkListCmd, linkAddCmd, linkUpdateCmd, linkRemoveCmd)
	rootCmd.AddCommand(linkCmd)
}
