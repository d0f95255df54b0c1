package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/fingerprint"
	"github.com/marcus/dmscreen/internal/output"
	"github.com/marcus/dmscreen/internal/session"
	dmsync "github.com/marcus/dmscreen/internal/sync"
	"github.com/marcus/dmscreen/internal/syncclient"
	"github.com/marcus/dmscreen/internal/syncconfig"
)

var errNotSignedIn = errors.New("not signed in; run 'dmscreen auth login'")

var syncCmd = &cobra.Command{
	Use:     "sync",
	Short:   "Synchronize with the remote store",
	GroupID: "sync",
}

// newSession wires a sync session for userID over the app's store.
func newSession(a *app, userID string, remote dmsync.RemoteStore, onStatus dmsync.StatusFunc, onError dmsync.ErrorFunc, onConflict func(session.Conflict)) *session.Session {
	return session.New(session.Config{
		UserID:   userID,
		Store:    a.store,
		Remote:   remote,
		LastSync: a.db,
		SyncOptions: []dmsync.Option{
			dmsync.WithInterval(syncconfig.GetAutoSyncInterval()),
		},
		OnStatus:   onStatus,
		OnError:    onError,
		OnConflict: onConflict,
		Logger:     slog.Default(),
	})
}

// resolveConflict settles a pending conflict on sess, pushing local state
// when the user keeps it. Once both sides hold the same data the remote
// stamp is recorded, so the next command does not see the conflict again.
func resolveConflict(ctx context.Context, cmd *cobra.Command, a *app, sess *session.Session) error {
	c, ok := sess.Conflict()
	if !ok {
		return nil
	}
	choice, err := chooseResolution(cmd, c)
	if err != nil {
		return err
	}
	if err := sess.Resolve(ctx, choice); err != nil {
		return err
	}

	if choice == session.ChoiceUseRemote {
		if err := a.db.SetLastSync(sess.UserID(), c.RemoteLastSync); err != nil {
			return err
		}
		output.Success("REPLACED local state with the remote copy")
		return nil
	}

	if err := sess.ManualSync(ctx); err != nil {
		return err
	}
	if sess.Manager().LastPushAt().IsZero() {
		// Local already matched the remote, nothing was pushed.
		if err := a.db.SetLastSync(sess.UserID(), c.RemoteLastSync); err != nil {
			return err
		}
	}
	output.Success("KEPT local state")
	return nil
}

var syncPullCmd = &cobra.Command{
	Use:   "pull",
	Short: "Load the remote state, resolving conflicts",
	Long: `Load the remote document for the signed-in user.

Without local data, or when this device was the last to sync, the remote state
is adopted. When both sides changed you are asked which copy to keep.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := syncconfig.GetUserID()
		if userID == "" {
			return errNotSignedIn
		}
		ctx := cmd.Context()
		return withApp(func(a *app) error {
			remote, err := newRemote(ctx, 0)
			if err != nil {
				return err
			}
			sess := newSession(a, userID, remote, nil, nil, nil)
			defer sess.Close()

			before := fingerprint.Of(a.store.Snapshot())
			if err := sess.Begin(ctx); err != nil {
				return err
			}
			if sess.State() == session.StatePendingUserDecision {
				return resolveConflict(ctx, cmd, a, sess)
			}
			if sess.KeptLocal() {
				output.Warning("KEPT local changes the remote does not have; run 'dmscreen sync push' to send them")
				return nil
			}
			if fingerprint.Of(a.store.Snapshot()) == before {
				fmt.Println("Already up to date")
				return nil
			}
			st := a.store.Snapshot()
			output.Success("PULLED %d combatants, %d players, %d bastions",
				len(st.Encounter), len(st.Players), len(st.Bastions))
			return nil
		})
	},
}

var syncPushCmd = &cobra.Command{
	Use:   "push",
	Short: "Push local state when the remote has not moved on",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := syncconfig.GetUserID()
		if userID == "" {
			return errNotSignedIn
		}
		ctx := cmd.Context()
		return withApp(func(a *app) error {
			remote, err := newRemote(ctx, 0)
			if err != nil {
				return err
			}
			pushed, err := pushLocal(ctx, a, userID, remote, dmsync.DefaultTimeout)
			if errors.Is(err, errRemoteChanged) || errors.Is(err, errRemoteOnly) {
				return fmt.Errorf("%w; run 'dmscreen sync pull' first", err)
			}
			if err != nil {
				return err
			}
			if !pushed {
				fmt.Println("Already up to date")
				return nil
			}
			output.Success("PUSHED state for %s", userID)
			return nil
		})
	},
}

var syncStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show sync configuration and reachability",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		backend, err := syncconfig.GetBackend()
		if err != nil {
			return err
		}
		userID := syncconfig.GetUserID()
		fmt.Printf("Backend:    %s\n", backend)
		if backend == syncconfig.BackendHTTP {
			fmt.Printf("Server:     %s\n", syncconfig.GetServerURL())
		} else {
			s3cfg := syncconfig.GetS3Config()
			fmt.Printf("Bucket:     %s\n", s3cfg.Bucket)
		}
		if userID == "" {
			fmt.Println("User:       not signed in")
		} else {
			fmt.Printf("User:       %s\n", userID)
		}
		if syncconfig.GetAutoSyncEnabled() {
			fmt.Printf("Auto-sync:  every %s\n", syncconfig.GetAutoSyncInterval())
		} else {
			fmt.Println("Auto-sync:  off")
		}

		err = withApp(func(a *app) error {
			if userID == "" {
				return nil
			}
			t, ok, err := a.db.GetLastSync(userID)
			if err != nil {
				return err
			}
			if !ok {
				t = time.Time{}
			}
			fmt.Printf("Last sync:  %s\n", output.FormatTimeAgo(t))
			return nil
		})
		if err != nil {
			return err
		}

		if backend != syncconfig.BackendHTTP {
			return nil
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), autoSyncTimeout)
		defer cancel()
		client := syncclient.New(syncconfig.GetServerURL(), "", "")
		if _, err := client.HealthCheck(ctx); err != nil {
			fmt.Printf("Health:     %s unreachable\n", output.FormatSyncStatus(dmsync.StatusError))
			slog.Debug("health check", "err", err)
			return nil
		}
		fmt.Println("Health:     reachable")
		return nil
	},
}

func init() {
	addConflictFlags(syncPullCmd)
	syncCmd.AddCommand(syncPullCmd, syncPushCmd, syncStatusCmd)
	rootCmd.AddCommand(syncCmd)
}
