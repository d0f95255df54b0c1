package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/output"
	"github.com/marcus/dmscreen/internal/transfer"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Short:   "Write the campaign to a JSON file",
	GroupID: "system",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")
		return withApp(func(a *app) error {
			data, err := transfer.Export(a.store.Snapshot(), time.Now())
			if err != nil {
				return err
			}
			if out == "-" {
				_, err = cmd.OutOrStdout().Write(append(data, '\n'))
				return err
			}
			if err := os.WriteFile(out, data, 0644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			output.Success("EXPORTED %s", out)
			return nil
		})
	},
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the campaign with an exported file",
	Long: `Replace the local campaign with the contents of an export file.

Fields missing from the file fall back to their defaults. Use - to read from
stdin. Nothing changes when the file cannot be parsed.`,
	GroupID: "system",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return fmt.Errorf("read import: %w", err)
		}
		state, err := transfer.Import(data)
		if err != nil {
			return err
		}
		return withApp(func(a *app) error {
			a.store.Replace(state)
			output.Success("IMPORTED %d combatants, %d players, %d bastions",
				len(state.Encounter), len(state.Players), len(state.Bastions))
			return nil
		})
	},
}

func init() {
	exportCmd.Flags().StringP("out", "o", transfer.ExportFileName, "output file, - for stdout")
	rootCmd.AddCommand(exportCmd, importCmd)
}
