package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/marcus/dmscreen/internal/output"
	"github.com/marcus/dmscreen/internal/syncclient"
	"github.com/marcus/dmscreen/internal/syncconfig"
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Manage sync identity",
	GroupID: "sync",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store credentials for the remote store",
	Long: `Store the identity documents are synced under.

With the http backend the API key is checked against the server, which also
reports the user id. With the s3 backend pass --user; AWS credentials come
from the usual SDK sources.

Examples:
  dmscreen auth login --key dms_live_... --url https://sync.example.com
  dmscreen auth login --user gm-table-1`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID, _ := cmd.Flags().GetString("user")
		apiKey, _ := cmd.Flags().GetString("key")
		serverURL, _ := cmd.Flags().GetString("url")
		userID = strings.TrimSpace(userID)

		backend, err := syncconfig.GetBackend()
		if err != nil {
			return err
		}
		deviceID, err := syncconfig.GetDeviceID()
		if err != nil {
			return fmt.Errorf("get device id: %w", err)
		}

		if backend == syncconfig.BackendHTTP {
			if apiKey == "" {
				return errors.New("--key is required for the http backend")
			}
			if serverURL == "" {
				serverURL = syncconfig.GetServerURL()
			}
			ctx, cancel := context.WithTimeout(cmd.Context(), autoSyncTimeout)
			defer cancel()
			me, err := syncclient.New(serverURL, apiKey, deviceID).Me(ctx)
			if err != nil {
				if errors.Is(err, syncclient.ErrUnauthorized) {
					return errors.New("the server rejected this API key")
				}
				return fmt.Errorf("verify key: %w", err)
			}
			if userID != "" && userID != me.UserID {
				return fmt.Errorf("key belongs to %s, not %s", me.UserID, userID)
			}
			userID = me.UserID
		} else if userID == "" {
			return errors.New("--user is required for the s3 backend")
		}

		creds := &syncconfig.AuthCredentials{
			APIKey:    apiKey,
			UserID:    userID,
			ServerURL: serverURL,
			DeviceID:  deviceID,
		}
		if err := syncconfig.SaveAuth(creds); err != nil {
			output.Error("save credentials: %v", err)
			return err
		}
		output.Success("Logged in as %s", userID)
		fmt.Println("Run 'dmscreen sync pull' to load the remote state.")
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		userID := syncconfig.GetUserID()
		if forget, _ := cmd.Flags().GetBool("forget-sync"); forget && userID != "" {
			err := withApp(func(a *app) error { return a.db.ClearLastSync(userID) })
			if err != nil {
				return err
			}
		}
		if err := syncconfig.ClearAuth(); err != nil {
			output.Error("logout: %v", err)
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the stored identity",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := syncconfig.LoadAuth()
		if err != nil {
			output.Error("load auth: %v", err)
			return err
		}
		userID := syncconfig.GetUserID()
		if userID == "" {
			fmt.Println("Not logged in.")
			return nil
		}
		fmt.Printf("User:    %s\n", userID)
		if key := syncconfig.GetAPIKey(); key != "" {
			if len(key) > 12 {
				key = key[:12] + "..."
			}
			fmt.Printf("API key: %s\n", key)
		}
		if creds != nil && creds.DeviceID != "" {
			fmt.Printf("Device:  %s\n", creds.DeviceID)
		}
		return nil
	},
}

func init() {
	authLoginCmd.Flags().String("user", "", "user id (required for s3)")
	authLoginCmd.Flags().String("key", "", "API key issued by dmscreen-sync")
	authLoginCmd.Flags().String("url", "", "sync server URL")
	authLogoutCmd.Flags().Bool("forget-sync", false, "also clear this device's last-sync record")

	authCmd.AddCommand(authLoginCmd, authLogoutCmd, authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
