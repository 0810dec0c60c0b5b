// ABOUTME: Entry point for the coven-messenger CLI
// ABOUTME: Local-first direct messaging backed by a SQLite store

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/2389/coven-messenger/internal/config"
	"github.com/2389/coven-messenger/internal/directory"
	"github.com/2389/coven-messenger/internal/media"
	"github.com/2389/coven-messenger/internal/messenger"
	"github.com/2389/coven-messenger/internal/session"
	"github.com/2389/coven-messenger/internal/store"
)

// Version is set by goreleaser at build time.
var version = "dev"

const banner = `
  ___ _____   _____ _ __        _ __ ___  ___  __ _
 / __/ _ \ \ / / _ \ '_ \ _____| '_ ' _ \/ __|/ _' |
| (_| (_) \ V /  __/ | | |_____| | | | | \__ \ (_| |
 \___\___/ \_/ \___|_| |_|     |_| |_| |_|___/\__, |
                                              |___/
`

// getConfigPath returns the path to the messenger config file.
// Priority: COVEN_MSG_CONFIG env var > XDG_CONFIG_HOME/coven-messenger/config.yaml > ~/.config/coven-messenger/config.yaml
func getConfigPath() string {
	if envPath := os.Getenv("COVEN_MSG_CONFIG"); envPath != "" {
		return envPath
	}

	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "config.yaml" // fallback
		}
		configDir = filepath.Join(homeDir, ".config")
	}

	return filepath.Join(configDir, "coven-messenger", "config.yaml")
}

// getDataPath returns the path to the messenger data directory.
// Priority: XDG_DATA_HOME/coven-messenger > ~/.local/share/coven-messenger
func getDataPath() string {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "data" // fallback
		}
		dataDir = filepath.Join(homeDir, ".local", "share")
	}

	return filepath.Join(dataDir, "coven-messenger")
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cmd := os.Args[1]
	args := os.Args[2:]

	var err error
	switch cmd {
	case "register":
		err = cmdRegister(ctx)
	case "login":
		err = cmdLogin(ctx)
	case "logout":
		err = cmdLogout()
	case "whoami":
		err = cmdWhoami(ctx)
	case "users":
		err = cmdUsers(ctx)
	case "conversations":
		err = cmdConversations(ctx)
	case "chat":
		err = cmdChat(ctx, args)
	case "send":
		err = cmdSend(ctx, args)
	case "init":
		err = cmdInit()
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		color.Red("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	cyan := color.New(color.FgCyan)
	yellow := color.New(color.FgYellow)

	cyan.Print(banner)
	gray := color.New(color.FgHiBlack)
	gray.Printf("    version: %s\n", version)
	fmt.Println()
	fmt.Println("Usage: coven-messenger <command> [args]")
	fmt.Println()
	yellow.Println("Commands:")
	fmt.Println("  register                Create a new account")
	fmt.Println("  login                   Log in and save the session")
	fmt.Println("  logout                  Clear the saved session")
	fmt.Println("  whoami                  Show the logged-in user")
	fmt.Println("  users                   List all other users")
	fmt.Println("  conversations           List peers with unread counts")
	fmt.Println("  chat <username>         Open a thread (marks it read, then REPL)")
	fmt.Println("  send <username> <msg>   Send a single message")
	fmt.Println("  init                    Create a new config file interactively")
	fmt.Println()
	yellow.Println("Environment:")
	fmt.Println("  COVEN_MSG_CONFIG        Config file path (default: ~/.config/coven-messenger/config.yaml)")
	fmt.Println()
}

// app wires the store and services behind each CLI command.
type app struct {
	cfg       *config.Config
	store     *store.SQLiteStore
	directory *directory.Service
	messenger *messenger.Service
	session   *session.Store
	media     *media.Importer
}

func loadApp() (*app, error) {
	configPath := getConfigPath()
	dataDir := getDataPath()

	var cfg *config.Config
	if _, err := os.Stat(configPath); err == nil {
		cfg, err = config.Load(configPath, dataDir)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	} else {
		cfg = config.Default(dataDir)
	}

	logger := setupLogger(cfg.Logging)
	slog.SetDefault(logger)

	st, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	dir := directory.New(st, logger)

	return &app{
		cfg:       cfg,
		store:     st,
		directory: dir,
		messenger: messenger.New(st, dir, logger),
		session:   session.New(cfg.Session.Path),
		media:     media.NewImporter(cfg.Media.Dir),
	}, nil
}

func (a *app) close() {
	if err := a.store.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "closing store: %v\n", err)
	}
}

// currentUser resolves the saved session to a user, clearing the
// session file if it points at an id that no longer exists.
func (a *app) currentUser(ctx context.Context) (*store.User, error) {
	id, ok, err := a.session.Load()
	if err != nil {
		return nil, fmt.Errorf("reading session: %w", err)
	}
	if !ok {
		return nil, errors.New("not logged in (run 'coven-messenger login')")
	}

	user, err := a.directory.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		_ = a.session.Clear()
		return nil, errors.New("saved session is stale, please log in again")
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *app) resolvePeer(ctx context.Context, username string) (*store.User, error) {
	peer, err := a.directory.GetByUsername(ctx, username)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("no user named %q", username)
	}
	return peer, err
}

func cmdRegister(ctx context.Context) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	reader := bufio.NewReader(os.Stdin)

	fmt.Println("Create a new account")
	fmt.Println("====================")
	fmt.Println()

	username := prompt(reader, "Username", "")
	fullName := prompt(reader, "Full name", "")

	password, err := promptPassword("Password")
	if err != nil {
		return err
	}
	confirm, err := promptPassword("Confirm password")
	if err != nil {
		return err
	}
	if password != confirm {
		return errors.New("passwords do not match")
	}

	profilePic := ""
	picPath := prompt(reader, "Profile picture file (optional)", "")
	if picPath != "" {
		profilePic, err = a.media.Import(picPath)
		if err != nil {
			return fmt.Errorf("importing profile picture: %w", err)
		}
	}

	user, err := a.directory.Register(ctx, username, password, fullName, profilePic)
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Registered %s", user.Username)
	fmt.Printf(" (id %d)\n", user.ID)
	fmt.Println("Run 'coven-messenger login' to start chatting.")
	return nil
}

func cmdLogin(ctx context.Context) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	reader := bufio.NewReader(os.Stdin)
	username := prompt(reader, "Username", "")

	password, err := promptPassword("Password")
	if err != nil {
		return err
	}

	user, err := a.directory.Authenticate(ctx, username, password)
	if err != nil {
		return err
	}

	if err := a.session.Save(user.ID); err != nil {
		return fmt.Errorf("saving session: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Logged in as %s\n", user.FullName)
	return nil
}

func cmdLogout() error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	if err := a.session.Clear(); err != nil {
		return fmt.Errorf("clearing session: %w", err)
	}
	fmt.Println("Logged out.")
	return nil
}

func cmdWhoami(ctx context.Context) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("%s (@%s, id %d)\n", user.FullName, user.Username, user.ID)
	if user.ProfilePic != "" {
		fmt.Printf("Profile picture: %s\n", user.ProfilePic)
	}
	return nil
}

func cmdUsers(ctx context.Context) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	others, err := a.directory.ListOthers(ctx, user.ID)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Users")
	cyan.Println("  -----")

	if len(others) == 0 {
		fmt.Println("  (no other users)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tUSERNAME\tJOINED")
	fmt.Fprintln(w, "  ----\t--------\t------")
	for _, u := range others {
		fmt.Fprintf(w, "  %s\t@%s\t%s\n", u.FullName, u.Username, u.CreatedAt.Local().Format("Jan 02 2006"))
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdConversations(ctx context.Context) error {
	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	convs, err := a.messenger.Conversations(ctx, user.ID)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	fmt.Println()
	cyan.Println("  Conversations")
	cyan.Println("  -------------")

	if len(convs) == 0 {
		fmt.Println("  (no one else is here yet)")
		fmt.Println()
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "  NAME\tUSERNAME\tUNREAD")
	fmt.Fprintln(w, "  ----\t--------\t------")
	for _, c := range convs {
		unread := ""
		if c.Unread > 0 {
			unread = color.New(color.FgYellow, color.Bold).Sprintf("%d", c.Unread)
		}
		fmt.Fprintf(w, "  %s\t@%s\t%s\n", c.Peer.FullName, c.Peer.Username, unread)
	}
	w.Flush()
	fmt.Println()
	return nil
}

func cmdSend(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: coven-messenger send <username> <message>")
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	peer, err := a.resolvePeer(ctx, args[0])
	if err != nil {
		return err
	}

	msg, err := a.messenger.Send(ctx, user.ID, peer.ID, strings.Join(args[1:], " "))
	if err != nil {
		return err
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Sent to @%s", peer.Username)
	fmt.Printf(" at %s\n", msg.CreatedAt.Local().Format("15:04:05"))
	return nil
}

func cmdChat(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: coven-messenger chat <username>")
	}

	a, err := loadApp()
	if err != nil {
		return err
	}
	defer a.close()

	user, err := a.currentUser(ctx)
	if err != nil {
		return err
	}

	peer, err := a.resolvePeer(ctx, args[0])
	if err != nil {
		return err
	}

	opened, err := a.messenger.OpenThread(ctx, user.ID, peer.ID)
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan)
	gray := color.New(color.FgHiBlack)

	fmt.Println()
	cyan.Printf("  Chat with %s (@%s)\n", peer.FullName, peer.Username)
	if opened.MarkedRead > 0 {
		gray.Printf("  %d message(s) marked read\n", opened.MarkedRead)
	}
	fmt.Println()

	printThread(opened.Messages, user, peer)

	gray.Println("  Type a message and press enter. /refresh reloads, /quit exits.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	lastID := int64(0)
	if n := len(opened.Messages); n > 0 {
		lastID = opened.Messages[n-1].ID
	}

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())

		switch line {
		case "":
			continue
		case "/quit", "/q":
			return nil
		case "/refresh", "/r":
			opened, err = a.messenger.OpenThread(ctx, user.ID, peer.ID)
			if err != nil {
				return err
			}
			printed := false
			for _, m := range opened.Messages {
				if m.ID > lastID {
					printMessage(m, user, peer)
					lastID = m.ID
					printed = true
				}
			}
			if !printed {
				gray.Println("  (no new messages)")
			}
			continue
		}

		msg, err := a.messenger.Send(ctx, user.ID, peer.ID, line)
		if err != nil {
			var verr *messenger.ValidationError
			if errors.As(err, &verr) {
				color.Yellow("  %v", verr)
				continue
			}
			return err
		}
		lastID = msg.ID
	}
}

func printThread(msgs []*store.Message, user, peer *store.User) {
	for _, m := range msgs {
		printMessage(m, user, peer)
	}
	if len(msgs) > 0 {
		fmt.Println()
	}
}

func printMessage(m *store.Message, user, peer *store.User) {
	gray := color.New(color.FgHiBlack)
	ts := m.CreatedAt.Local().Format("Jan 02 15:04")

	if m.SenderID == user.ID {
		gray.Printf("  %s ", ts)
		color.New(color.FgGreen).Printf("you: ")
	} else {
		gray.Printf("  %s ", ts)
		color.New(color.FgCyan).Printf("%s: ", peer.FullName)
	}
	fmt.Println(m.Body)
}

func cmdInit() error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("coven-messenger configuration setup")
	fmt.Println("===================================")
	fmt.Println()

	defaultConfigPath := getConfigPath()
	defaultDataPath := getDataPath()

	outputFile := prompt(reader, "Config file path", defaultConfigPath)

	if _, err := os.Stat(outputFile); err == nil {
		overwrite := prompt(reader, "File exists. Overwrite?", "no")
		if strings.ToLower(overwrite) != "yes" && strings.ToLower(overwrite) != "y" {
			fmt.Println("Aborted.")
			return nil
		}
	}

	fmt.Println("\n--- Storage Configuration ---")
	dbPath := prompt(reader, "SQLite database path", filepath.Join(defaultDataPath, "messenger.db"))
	sessionPath := prompt(reader, "Session file path", filepath.Join(defaultDataPath, "session"))
	mediaDir := prompt(reader, "Media directory", filepath.Join(defaultDataPath, "media"))

	fmt.Println("\n--- Logging Configuration ---")
	logLevel := prompt(reader, "Log level (debug/info/warn/error)", "info")
	logFormat := prompt(reader, "Log format (text/json)", "text")

	var cfg strings.Builder
	cfg.WriteString("# coven-messenger configuration\n")
	cfg.WriteString("# Generated by coven-messenger init\n\n")

	cfg.WriteString("database:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", dbPath))
	cfg.WriteString("\n")

	cfg.WriteString("session:\n")
	cfg.WriteString(fmt.Sprintf("  path: \"%s\"\n", sessionPath))
	cfg.WriteString("\n")

	cfg.WriteString("media:\n")
	cfg.WriteString(fmt.Sprintf("  dir: \"%s\"\n", mediaDir))
	cfg.WriteString("\n")

	cfg.WriteString("logging:\n")
	cfg.WriteString(fmt.Sprintf("  level: \"%s\"\n", logLevel))
	cfg.WriteString(fmt.Sprintf("  format: \"%s\"\n", logFormat))

	if err := os.MkdirAll(filepath.Dir(outputFile), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(outputFile, []byte(cfg.String()), 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	green := color.New(color.FgGreen)
	green.Printf("✓ Wrote %s\n", outputFile)
	return nil
}

func prompt(reader *bufio.Reader, label, defaultVal string) string {
	if defaultVal != "" {
		fmt.Printf("%s [%s]: ", label, defaultVal)
	} else {
		fmt.Printf("%s: ", label)
	}

	input, err := reader.ReadString('\n')
	if err != nil {
		return defaultVal
	}
	input = strings.TrimSpace(input)
	if input == "" {
		return defaultVal
	}
	return input
}

func promptPassword(label string) (string, error) {
	fmt.Printf("%s: ", label)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(pw), nil
}
