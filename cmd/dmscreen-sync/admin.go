package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	flag "github.com/spf13/pflag"

	"github.com/marcus/dmscreen/internal/api"
	"github.com/marcus/dmscreen/internal/serverdb"
)

func runAdmin(args []string) {
	if len(args) == 0 {
		printAdminUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "create-user":
		runAdminCreateUser(args[1:])
	case "create-key":
		runAdminCreateKey(args[1:])
	case "list-users":
		runAdminListUsers(args[1:])
	case "list-keys":
		runAdminListKeys(args[1:])
	case "revoke-key":
		runAdminRevokeKey(args[1:])
	default:
		fmt.Fprintf(os.Stderr, "unknown admin command: %s\n", args[0])
		printAdminUsage()
		os.Exit(1)
	}
}

func printAdminUsage() {
	fmt.Fprintln(os.Stderr, `Usage: dmscreen-sync admin <command> [flags]

Commands:
  create-user  Register a user and print its id
  create-key   Create an API key for a user
  list-users   List registered users
  list-keys    List a user's API keys
  revoke-key   Revoke an API key`)
}

func openDB(dbPath string) *serverdb.ServerDB {
	if dbPath == "" {
		cfg, err := api.LoadConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			os.Exit(1)
		}
		dbPath = cfg.ServerDBPath
	}
	store, err := serverdb.Open(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: open database: %v\n", err)
		os.Exit(1)
	}
	return store
}

const dbFlagUsage = "path to server.db (default: from SYNC_SERVER_DB_PATH or ./data/server.db)"

func runAdminCreateUser(args []string) {
	fs := flag.NewFlagSet("admin create-user", flag.ExitOnError)
	name := fs.String("name", "", "display name")
	dbPath := fs.String("db", "", dbFlagUsage)
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintln(os.Stderr, "error: --name is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openDB(*dbPath)
	defer store.Close()

	user, err := store.CreateUser(*name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(user.ID)
}

func runAdminCreateKey(args []string) {
	fs := flag.NewFlagSet("admin create-key", flag.ExitOnError)
	userID := fs.String("user", "", "user id")
	name := fs.String("name", "", "key name (e.g. laptop)")
	dbPath := fs.String("db", "", dbFlagUsage)
	fs.Parse(args)

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "error: --user is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openDB(*dbPath)
	defer store.Close()

	plaintext, ak, err := store.GenerateAPIKey(*userID, *name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	fmt.Fprintf(os.Stderr, "key id: %s (prefix %s)\n", ak.ID, ak.KeyPrefix)
	fmt.Fprintln(os.Stderr, "store this key now, it cannot be shown again")
	fmt.Println(plaintext)
}

func runAdminListUsers(args []string) {
	fs := flag.NewFlagSet("admin list-users", flag.ExitOnError)
	dbPath := fs.String("db", "", dbFlagUsage)
	fs.Parse(args)

	store := openDB(*dbPath)
	defer store.Close()

	users, err := store.ListUsers()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCREATED")
	for _, u := range users {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", u.ID, u.Name, u.CreatedAt.Format("2006-01-02"))
	}
	tw.Flush()
}

func runAdminListKeys(args []string) {
	fs := flag.NewFlagSet("admin list-keys", flag.ExitOnError)
	userID := fs.String("user", "", "user id")
	dbPath := fs.String("db", "", dbFlagUsage)
	fs.Parse(args)

	if *userID == "" {
		fmt.Fprintln(os.Stderr, "error: --user is required")
		fs.Usage()
		os.Exit(1)
	}

	store := openDB(*dbPath)
	defer store.Close()

	keys, err := store.ListAPIKeys(*userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPREFIX\tNAME\tLAST USED")
	for _, k := range keys {
		lastUsed := "never"
		if k.LastUsedAt != nil {
			lastUsed = k.LastUsedAt.Format("2006-01-02 15:04")
		}
		fmt.Fprintf(tw, "%s\t%s%s\t%s\t%s\n", k.ID, serverdb.APIKeyPrefix, k.KeyPrefix, k.Name, lastUsed)
	}
	tw.Flush()
}

func runAdminRevokeKey(args []string) {
	fs := flag.NewFlagSet("admin revoke-key", flag.ExitOnError)
	userID := fs.String("user", "", "user id owning the key")
	keyID := fs.String("key", "", "key id (from list-keys)")
	dbPath := fs.String("db", "", dbFlagUsage)
	fs.Parse(args)

	if *userID == "" || *keyID == "" {
		fmt.Fprintln(os.Stderr, "error: --user and --key are required")
		fs.Usage()
		os.Exit(1)
	}

	store := openDB(*dbPath)
	defer store.Close()

	if err := store.RevokeAPIKey(*keyID, *userID); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("revoked %s\n", *keyID)
}
