// Package cli implements the "db" administration commands of the server
package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"resultboard/internal/server/aggregate"
	"resultboard/internal/server/catalog"
	"resultboard/internal/server/core"
	"resultboard/internal/server/importer"
	"resultboard/internal/server/service"
	"resultboard/internal/server/storage"
	"resultboard/internal/server/timeslot"

	"github.com/google/uuid"
	"github.com/lixenwraith/auth"
	"golang.org/x/term"
)

const minPasswordLength = 8

// Run is the entry point for the CLI mini-app
func Run(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("subcommand required: init, delete, query, import, seed-games, user")
	}

	switch args[0] {
	case "init":
		return runInit(args[1:])
	case "delete":
		return runDelete(args[1:])
	case "query":
		return runQuery(args[1:])
	case "import":
		return runImport(args[1:])
	case "seed-games":
		return runSeedGames(args[1:])
	case "user":
		if len(args) < 2 {
			return fmt.Errorf("user subcommand required: add, delete, set-password, set-hash, set-role, list")
		}
		return runUser(args[1], args[2:])
	default:
		return fmt.Errorf("unknown subcommand: %s", args[0])
	}
}

// openStore parses fs, requires -path and opens the migrated database
func openStore(fs *flag.FlagSet, path *string, args []string) (*storage.Store, error) {
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if *path == "" {
		return nil, fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	if err := store.InitDB(); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func runInit(args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	store, err := openStore(fs, path, args)
	if err != nil {
		return err
	}
	defer store.Close()

	v, err := store.SchemaVersion()
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	fmt.Printf("Database initialized at: %s (schema version %d)\n", *path, v)
	return nil
}

func runDelete(args []string) error {
	fs := flag.NewFlagSet("delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	if err := fs.Parse(args); err != nil {
		return err
	}
	if *path == "" {
		return fmt.Errorf("database path required")
	}

	store, err := storage.NewStore(*path, false)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	if err := store.DeleteDB(); err != nil {
		return fmt.Errorf("failed to delete database: %w", err)
	}

	fmt.Printf("Database deleted: %s\n", *path)
	return nil
}

func runQuery(args []string) error {
	fs := flag.NewFlagSet("query", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	date := fs.String("date", "", "Date to list, YYYY-MM-DD (required)")
	game := fs.String("game", "", "Game code to filter (optional)")

	store, err := openStore(fs, path, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if _, err := timeslot.ParseDate(*date); err != nil {
		return fmt.Errorf("invalid -date: %w", err)
	}

	ctx := context.Background()
	games, err := store.ListGames(ctx)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	codeByID := make(map[string]string, len(games))
	var ids []string
	for _, g := range games {
		if *game != "" && g.Code != catalog.NormalizeCode(*game) {
			continue
		}
		codeByID[g.ID] = g.Code
		ids = append(ids, g.ID)
	}

	results, err := store.FindResultsByDate(ctx, *date, ids)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	if len(results) == 0 {
		fmt.Println("No results found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "Result ID\tGame\tTime\tValue\tSource\tUpdated")
	fmt.Fprintln(w, strings.Repeat("-", 80))
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.ID[:8]+"...",
			codeByID[r.GameID],
			timeslot.ToDisplay(r.SlotMin),
			r.Value,
			r.Source,
			r.UpdatedAt.Format("2006-01-02 15:04"),
		)
	}
	w.Flush()

	fmt.Printf("\nFound %d result(s)\n", len(results))
	return nil
}

func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	year := fs.Int("year", 0, "Year of the matrix (required)")
	month := fs.Int("month", 0, "Month of the matrix, 1-12 (required)")
	file := fs.String("file", "", "CSV matrix file (required)")
	alias := fs.String("alias", "", "Header aliases FROM=TO,... (replaces the defaults)")

	store, err := openStore(fs, path, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if *year == 0 || *month == 0 || *file == "" {
		return fmt.Errorf("-year, -month and -file are required")
	}

	var opts []importer.Option
	if *alias != "" {
		aliases, err := importer.ParseAliases(*alias)
		if err != nil {
			return err
		}
		opts = append(opts, importer.WithAliases(aliases))
	}

	f, err := os.Open(*file)
	if err != nil {
		return fmt.Errorf("failed to open matrix: %w", err)
	}
	defer f.Close()

	cat := catalog.New(store)
	svc := service.New(store, cat, aggregate.New(store, cat), nil)
	report, err := importer.New(cat, svc, opts...).Import(context.Background(), *year, *month, f)
	if err != nil {
		return fmt.Errorf("import failed after %d upserts: %w", report.Upserted, err)
	}

	if len(report.Unknown) > 0 {
		fmt.Printf("No matching game for headers: %s\n", strings.Join(report.Unknown, ", "))
	}
	fmt.Printf("Done. Upserted: %d, Skipped: %d\n", report.Upserted, report.Skipped)
	return nil
}

func runSeedGames(args []string) error {
	fs := flag.NewFlagSet("seed-games", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	store, err := openStore(fs, path, args)
	if err != nil {
		return err
	}
	defer store.Close()

	outcomes, err := catalog.New(store).Seed(context.Background())
	if err != nil {
		return fmt.Errorf("seed failed: %w", err)
	}
	for _, o := range outcomes {
		fmt.Printf("  %-6s %s\n", o.Code, o.Action)
	}
	fmt.Printf("Seeded %d game(s)\n", len(outcomes))
	return nil
}

func runUser(subcommand string, args []string) error {
	switch subcommand {
	case "add":
		return runUserAdd(args)
	case "delete":
		return runUserDelete(args)
	case "set-password":
		return runUserSetPassword(args)
	case "set-hash":
		return runUserSetHash(args)
	case "set-role":
		return runUserSetRole(args)
	case "list":
		return runUserList(args)
	default:
		return fmt.Errorf("unknown user subcommand: %s", subcommand)
	}
}

// readPassword returns the password from the flag or an interactive prompt
func readPassword(flagValue string, interactive bool, prompt string) (string, error) {
	var password string
	switch {
	case interactive && flagValue != "":
		return "", fmt.Errorf("cannot use -interactive with -password")
	case interactive:
		fmt.Print(prompt)
		pwBytes, err := term.ReadPassword(int(syscall.Stdin))
		fmt.Println()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		password = string(pwBytes)
	case flagValue != "":
		password = flagValue
	default:
		return "", fmt.Errorf("password required: use -password or -interactive")
	}

	if len(password) < minPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", minPasswordLength)
	}
	return password, nil
}

func validRole(role string) bool {
	return role == core.RoleAdmin || role == core.RoleViewer
}

func runUserAdd(args []string) error {
	fs := flag.NewFlagSet("user add", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username (required)")
	email := fs.String("email", "", "Email address (optional)")
	password := fs.String("password", "", "Password (optional, will prompt if not provided)")
	hash := fs.String("hash", "", "Pre-computed password hash (optional)")
	interactive := fs.Bool("interactive", false, "Interactive password prompt")
	role := fs.String("role", "", "admin or viewer (default: admin for the first user, else viewer)")

	store, err := openStore(fs, path, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if *username == "" {
		return fmt.Errorf("username required")
	}
	if *role != "" && !validRole(*role) {
		return fmt.Errorf("role must be %s or %s", core.RoleAdmin, core.RoleViewer)
	}

	var passwordHash string
	if *hash != "" {
		if *password != "" || *interactive {
			return fmt.Errorf("cannot combine -hash with -password or -interactive")
		}
		if err := auth.ValidatePHCHashFormat(*hash); err != nil {
			return fmt.Errorf("invalid hash format: %w", err)
		}
		passwordHash = *hash
	} else {
		pw, err := readPassword(*password, *interactive, "Enter password: ")
		if err != nil {
			return err
		}
		// Argon2
		passwordHash, err = auth.HashPassword(pw)
		if err != nil {
			return fmt.Errorf("failed to hash password: %w", err)
		}
	}

	record, err := store.CreateUser(context.Background(), storage.UserRecord{
		UserID:       uuid.NewString(),
		Username:     strings.ToLower(*username),
		Email:        strings.ToLower(*email),
		PasswordHash: passwordHash,
		Role:         *role,
		CreatedAt:    time.Now().UTC(),
	})
	if err != nil {
		if errors.Is(err, storage.ErrUserExists) {
			return fmt.Errorf("username or email already taken")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	fmt.Printf("User created successfully:\n")
	fmt.Printf("  ID: %s\n", record.UserID)
	fmt.Printf("  Username: %s\n", record.Username)
	fmt.Printf("  Role: %s\n", record.Role)
	if record.Email != "" {
		fmt.Printf("  Email: %s\n", record.Email)
	}
	return nil
}

func runUserDelete(args []string) error {
	fs := flag.NewFlagSet("user delete", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username to delete")
	userID := fs.String("id", "", "User ID to delete")

	store, err := openStore(fs, path, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if (*username == "") == (*userID == "") {
		return fmt.Errorf("specify exactly one of -username or -id")
	}

	ctx := context.Background()
	targetID := *userID
	if targetID == "" {
		user, err := store.GetUserByUsername(ctx, strings.ToLower(*username))
		if err != nil {
			return fmt.Errorf("user not found: %s", *username)
		}
		targetID = user.UserID
	}

	if err := store.DeleteUserByID(ctx, targetID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}

	fmt.Printf("User deleted: %s\n", targetID)
	return nil
}

func runUserSetPassword(args []string) error {
	fs := flag.NewFlagSet("user set-password", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username (required)")
	password := fs.String("password", "", "New password")
	interactive := fs.Bool("interactive", false, "Interactive password prompt")

	store, err := openStore(fs, path, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if *username == "" {
		return fmt.Errorf("username required")
	}
	newPassword, err := readPassword(*password, *interactive, "Enter new password: ")
	if err != nil {
		return err
	}

	ctx := context.Background()
	user, err := store.GetUserByUsername(ctx, strings.ToLower(*username))
	if err != nil {
		return fmt.Errorf("user not found: %s", *username)
	}

	passwordHash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := store.UpdateUserPassword(ctx, user.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	fmt.Printf("Password updated for user: %s\n", *username)
	return nil
}

func runUserSetHash(args []string) error {
	fs := flag.NewFlagSet("user set-hash", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username (required)")
	hash := fs.String("hash", "", "Password hash (required)")

	store, err := openStore(fs, path, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if *username == "" || *hash == "" {
		return fmt.Errorf("-username and -hash are required")
	}
	if err := auth.ValidatePHCHashFormat(*hash); err != nil {
		return fmt.Errorf("invalid hash format: %w", err)
	}

	ctx := context.Background()
	user, err := store.GetUserByUsername(ctx, strings.ToLower(*username))
	if err != nil {
		return fmt.Errorf("user not found: %s", *username)
	}
	if err := store.UpdateUserPassword(ctx, user.UserID, *hash); err != nil {
		return fmt.Errorf("failed to update password hash: %w", err)
	}

	fmt.Printf("Password hash updated for user: %s\n", *username)
	return nil
}

func runUserSetRole(args []string) error {
	fs := flag.NewFlagSet("user set-role", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")
	username := fs.String("username", "", "Username (required)")
	role := fs.String("role", "", "admin or viewer (required)")

	store, err := openStore(fs, path, args)
	if err != nil {
		return err
	}
	defer store.Close()

	if *username == "" {
		return fmt.Errorf("username required")
	}
	if !validRole(*role) {
		return fmt.Errorf("role must be %s or %s", core.RoleAdmin, core.RoleViewer)
	}

	ctx := context.Background()
	user, err := store.GetUserByUsername(ctx, strings.ToLower(*username))
	if err != nil {
		return fmt.Errorf("user not found: %s", *username)
	}
	if err := store.UpdateUserRole(ctx, user.UserID, *role); err != nil {
		return fmt.Errorf("failed to update role: %w", err)
	}

	fmt.Printf("Role for %s set to %s; active session revoked\n", *username, *role)
	return nil
}

func runUserList(args []string) error {
	fs := flag.NewFlagSet("user list", flag.ContinueOnError)
	path := fs.String("path", "", "Database file path (required)")

	store, err := openStore(fs, path, args)
	if err != nil {
		return err
	}
	defer store.Close()

	users, err := store.GetAllUsers(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list users: %w", err)
	}
	if len(users) == 0 {
		fmt.Println("No users found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "User ID\tUsername\tRole\tEmail\tCreated\tLast Login")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, u := range users {
		lastLogin := "never"
		if u.LastLoginAt != nil {
			lastLogin = u.LastLoginAt.Format("2006-01-02 15:04")
		}
		email := u.Email
		if email == "" {
			email = "(none)"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			u.UserID[:8]+"...",
			u.Username,
			u.Role,
			email,
			u.CreatedAt.Format("2006-01-02 15:04"),
			lastLogin,
		)
	}
	w.Flush()

	fmt.Printf("\nTotal users: %d\n", len(users))
	return nil
}
