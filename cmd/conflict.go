package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/marcus/dmscreen/internal/output"
	"github.com/marcus/dmscreen/internal/session"
)

// errConflictNeedsChoice is returned when a conflict is pending and there is
// neither a flag nor a terminal to decide it.
var errConflictNeedsChoice = errors.New("sync conflict: rerun with --use-remote or --keep-local")

func addConflictFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("use-remote", false, "on conflict, replace local state with the remote copy")
	cmd.Flags().Bool("keep-local", false, "on conflict, keep local state and overwrite the remote")
	cmd.MarkFlagsMutuallyExclusive("use-remote", "keep-local")
}

// describeConflict renders both sides of a pending conflict.
func describeConflict(c session.Conflict) string {
	newer := "remote copy is newer"
	if c.LocalIsNewer {
		newer = "local copy is newer"
	}
	local := "never synced on this device"
	if !c.LocalLastSync.IsZero() {
		local = "last synced " + output.FormatTimeAgo(c.LocalLastSync)
	}
	return fmt.Sprintf("Remote saved %s (%d combatants, %d players); local %s. The %s.",
		output.FormatTimeAgo(c.RemoteLastSync),
		len(c.Remote.Encounter), len(c.Remote.Players),
		local, newer)
}

// chooseResolution asks how to settle c. Flags win; otherwise the user is
// prompted when stdin is a terminal.
func chooseResolution(cmd *cobra.Command, c session.Conflict) (session.Choice, error) {
	if v, _ := cmd.Flags().GetBool("use-remote"); v {
		return session.ChoiceUseRemote, nil
	}
	if v, _ := cmd.Flags().GetBool("keep-local"); v {
		return session.ChoiceKeepLocal, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		output.Warning("%s", describeConflict(c))
		return 0, errConflictNeedsChoice
	}

	choice := session.ChoiceUseRemote
	if c.LocalIsNewer {
		choice = session.ChoiceKeepLocal
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[session.Choice]().
				Title("Local and remote state have diverged").
				Description(describeConflict(c)).
				Options(
					huh.NewOption("Use remote (discard local changes)", session.ChoiceUseRemote),
					huh.NewOption("Keep local (overwrite remote)", session.ChoiceKeepLocal),
				).
				Value(&choice),
		),
	)
	if err := form.Run(); err != nil {
		return 0, fmt.Errorf("conflict prompt: %w", err)
	}
	return choice, nil
}
