package cmd

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/output"
	"github.com/marcus/dmscreen/internal/session"
	dmsync "github.com/marcus/dmscreen/internal/sync"
	"github.com/marcus/dmscreen/internal/syncconfig"
	"github.com/marcus/dmscreen/internal/tui/tracker"
)

// programSender forwards sync callbacks to the running program. Messages
// sent before the program exists are dropped.
type programSender struct {
	mu   sync.Mutex
	send func(tea.Msg)
}

func (p *programSender) set(send func(tea.Msg)) {
	p.mu.Lock()
	p.send = send
	p.mu.Unlock()
}

func (p *programSender) deliver(msg tea.Msg) {
	p.mu.Lock()
	send := p.send
	p.mu.Unlock()
	if send != nil {
		send(msg)
	}
}

var trackCmd = &cobra.Command{
	Use:     "track",
	Short:   "Open the interactive combat tracker",
	GroupID: "combat",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return withApp(func(a *app) error {
			sender := &programSender{}
			ctrl := session.NewController(func(userID string) *session.Session {
				remote, err := newRemote(ctx, 0)
				if err != nil {
					slog.Warn("remote unavailable", "err", err)
					remote = offlineRemote{err: err}
				}
				return newSession(a, userID, remote,
					func(s dmsync.Status) { sender.deliver(tracker.StatusMsg{Status: s}) },
					func(msg string) { sender.deliver(tracker.StatusMsg{Status: dmsync.StatusError, Err: msg}) },
					func(session.Conflict) {
						sender.deliver(tracker.StatusMsg{Status: dmsync.StatusError, Err: "remote changed; quit and run 'dmscreen sync pull'"})
					},
				)
			})
			defer ctrl.Close()

			auth := session.AuthState{UserID: syncconfig.GetUserID()}
			if err := ctrl.Update(ctx, auth); err != nil {
				output.Warning("remote unreachable, changes stay local until it loads: %v", err)
			}

			var syncFn tracker.SyncFunc
			if sess := ctrl.Current(); sess != nil {
				if err := resolveConflict(ctx, cmd, a, sess); err != nil {
					return err
				}
				syncFn = func() {
					err := sess.ManualSync(ctx)
					switch {
					case errors.Is(err, session.ErrConflictPending), errors.Is(err, session.ErrNotLoaded):
						sender.deliver(tracker.StatusMsg{Status: dmsync.StatusError, Err: err.Error()})
					case err != nil:
						slog.Debug("manual sync", "err", err)
					}
				}
			}

			return tracker.Run(a.store, syncFn, sender.set)
		})
	},
}

func init() {
	addConflictFlags(trackCmd)
	rootCmd.AddCommand(trackCmd)
}
