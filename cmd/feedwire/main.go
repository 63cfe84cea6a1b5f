package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/feedwire/feedwire/internal/auth"
	"github.com/feedwire/feedwire/internal/client"
	"github.com/feedwire/feedwire/internal/config"
	httpapp "github.com/feedwire/feedwire/internal/http"
	"github.com/feedwire/feedwire/internal/store/sqlite"
)

// CLIConfig holds the CLI client configuration persisted to disk.
type CLIConfig struct {
	BaseURL string `json:"base_url"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Token   string `json:"token"`
	UserID  int64  `json:"user_id"`
}

func main() {
	if len(os.Args) < 2 {
		runServer()
		return
	}

	cmd := os.Args[1]

	if cmd == "-h" || cmd == "--help" || cmd == "help" {
		printUsage()
		return
	}
	if cmd == "-v" || cmd == "--version" || cmd == "version" {
		fmt.Println("feedwire v0.1.0")
		return
	}
	if strings.HasPrefix(cmd, "-") {
		runServer()
		return
	}

	args := os.Args[2:]

	switch cmd {
	case "server", "serve":
		runServer()
	case "signup", "register":
		cmdSignup(args)
	case "signin", "login":
		cmdSignin(args)
	case "post":
		cmdPost(args)
	case "read", "list":
		cmdRead(args)
	case "delete", "rm":
		cmdDelete(args)
	case "status", "whoami":
		cmdStatus(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`feedwire - minimal social feed backend

Usage: feedwire <command> [options]

Quick Start:
  feedwire signup --name ada --email ada@example.com --password secret1
  feedwire post --title "Hello feed" --content "My first post" --image pic.png

Client Commands:
  signup              Create an account and sign in
  signin              Re-authenticate (when token expires)
  post                Create a new post with an image
  read                Read the feed (or one post)
  delete              Delete a post
  status              Show current config and token status

Server:
  server              Start the Feedwire server (default if no command)

Examples:
  feedwire post --title "Cool picture" --content "Look at this" --image cat.jpg
  feedwire read --page 2
  feedwire read --post 7
  feedwire delete --post 7

Environment Variables (server):
  FEEDWIRE_ADDR          Listen address (default: :8080, falls back to PORT)
  FEEDWIRE_DB            Database path (default: feedwire.db)
  FEEDWIRE_JWT_SECRET    Token signing secret
  FEEDWIRE_TOKEN_TTL     Token lifetime (default: 1h)
  FEEDWIRE_UPLOAD_DIR    Image upload directory (default: images)`)
}

// ============================================================================
// SERVER
// ============================================================================

func runServer() {
	_ = godotenv.Load()
	cfg := config.Load()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	store, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open db")
	}
	defer store.Close()

	authSvc := auth.NewService(cfg.JWTSecret, cfg.TokenTTL, cfg.BcryptCost)

	server, err := httpapp.NewServer(store, authSvc, cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize server")
	}

	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("feedwire listening")
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = httpServer.Shutdown(ctx)
}

// ============================================================================
// CLIENT COMMANDS
// ============================================================================

func cmdSignup(args []string) {
	fs := flag.NewFlagSet("signup", flag.ExitOnError)
	name := fs.String("name", "", "Display name (required)")
	email := fs.String("email", "", "Email address (required)")
	password := fs.String("password", "", "Password, min 6 chars (required)")
	url := fs.String("url", "http://localhost:8080", "Feedwire server URL")
	fs.Parse(args)

	if *name == "" || *email == "" || *password == "" {
		fmt.Fprintln(os.Stderr, "Error: --name, --email and --password are required")
		os.Exit(1)
	}

	creds := client.Credentials{Name: *name, Email: *email, Password: *password}
	c := client.New(strings.TrimSuffix(*url, "/"))

	_, err := c.Signup(creds)
	alreadySignedUp := errors.Is(err, client.ErrAlreadySignedUp)
	if err != nil && !alreadySignedUp {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if alreadySignedUp {
		fmt.Printf("✓ Already signed up as '%s'\n", *email)
	} else {
		fmt.Printf("✓ Signed up '%s'\n", *email)
	}

	if err := c.Signin(creds); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: auto-signin failed: %v\n", err)
		fmt.Println("Run 'feedwire signin' to authenticate")
		return
	}

	cfg := CLIConfig{
		BaseURL: c.BaseURL,
		Name:    *name,
		Email:   *email,
		Token:   c.Token,
		UserID:  c.UserID,
	}
	if err := saveCLIConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving config: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Authenticated (user %d)\n", c.UserID)
	fmt.Println("\nReady to post! Example:")
	fmt.Println("  feedwire post --title \"Hello feed\" --content \"My first post\" --image pic.png")
}

func cmdSignin(args []string) {
	fs := flag.NewFlagSet("signin", flag.ExitOnError)
	password := fs.String("password", "", "Password (required)")
	fs.Parse(args)

	cfg, err := loadCLIConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\nRun 'feedwire signup' first\n", err)
		os.Exit(1)
	}
	if *password == "" {
		fmt.Fprintln(os.Stderr, "Error: --password is required")
		os.Exit(1)
	}

	c := client.New(cfg.BaseURL)
	if err := c.Signin(client.Credentials{Email: cfg.Email, Password: *password}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cfg.Token = c.Token
	cfg.UserID = c.UserID
	if err := saveCLIConfig(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error saving: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Signed in as '%s' (user %d)\n", cfg.Email, cfg.UserID)
}

func cmdPost(args []string) {
	fs := flag.NewFlagSet("post", flag.ExitOnError)
	title := fs.String("title", "", "Post title (required, min 5 chars)")
	content := fs.String("content", "", "Post content (required, min 5 chars)")
	image := fs.String("image", "", "Image file, png or jpeg (required)")
	fs.Parse(args)

	if *title == "" || *content == "" || *image == "" {
		fmt.Fprintln(os.Stderr, "Error: --title, --content and --image are required")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	data, err := os.ReadFile(*image)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading image: %v\n", err)
		os.Exit(1)
	}

	post, err := c.CreatePost(*title, *content, filepath.Base(*image), imageContentType(*image), data)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Posted: %s\n", *title)
	fmt.Printf("  ID:    %d\n", post.ID)
	fmt.Printf("  Image: %s\n", post.ImageURL)
}

func cmdRead(args []string) {
	fs := flag.NewFlagSet("read", flag.ExitOnError)
	page := fs.Int("page", 1, "Feed page (2 posts per page)")
	postID := fs.Int64("post", 0, "Get a specific post")
	fs.Parse(args)

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if *postID != 0 {
		post, err := c.GetPost(*postID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\n%s\n", post.Title)
		fmt.Printf("  Creator: %d | Image: %s\n", post.Creator, post.ImageURL)
		fmt.Printf("\n  %s\n", post.Content)
		return
	}

	posts, err := c.GetPosts(*page)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nFeed (page %d)\n\n", *page)
	if len(posts) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for _, p := range posts {
		fmt.Printf("#%d %s\n", p.ID, p.Title)
		fmt.Printf("   %s | creator %d\n\n", p.ImageURL, p.Creator)
	}
}

func cmdDelete(args []string) {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	postID := fs.Int64("post", 0, "Post ID to delete")
	fs.Parse(args)

	if *postID == 0 {
		fmt.Fprintln(os.Stderr, "Error: --post is required")
		fmt.Fprintln(os.Stderr, "Usage: feedwire delete --post <id>")
		os.Exit(1)
	}

	c, err := loadAuthenticatedClient()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if _, err := c.DeletePost(*postID); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✓ Deleted post %d\n", *postID)
}

func cmdStatus(args []string) {
	cfg, err := loadCLIConfig()
	if err != nil {
		fmt.Println("Status: Not initialized")
		fmt.Println("\nRun: feedwire signup --name <name> --email <email> --password <password>")
		return
	}

	fmt.Printf("User:   %s <%s>\n", cfg.Name, cfg.Email)
	fmt.Printf("Server: %s\n", cfg.BaseURL)
	if cfg.Token == "" {
		fmt.Println("Token:  Not authenticated")
		fmt.Println("\nRun: feedwire signin")
	} else {
		fmt.Printf("Token:  Present (user %d)\n", cfg.UserID)
	}
}

// ============================================================================
// HELPERS
// ============================================================================

func feedwireDir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".feedwire")
}

func cliConfigPath() string {
	return filepath.Join(feedwireDir(), "config.json")
}

func loadCLIConfig() (CLIConfig, error) {
	data, err := os.ReadFile(cliConfigPath())
	if err != nil {
		return CLIConfig{}, errors.New("not initialized")
	}
	var cfg CLIConfig
	if err := json.Unmarshal(data, &cfg); err != nil {
		return CLIConfig{}, err
	}
	return cfg, nil
}

func saveCLIConfig(cfg CLIConfig) error {
	if err := os.MkdirAll(feedwireDir(), 0o700); err != nil {
		return err
	}
	data, _ := json.MarshalIndent(cfg, "", "  ")
	return os.WriteFile(cliConfigPath(), data, 0o600)
}

func loadAuthenticatedClient() (*client.Client, error) {
	cfg, err := loadCLIConfig()
	if err != nil {
		return nil, err
	}
	if cfg.Token == "" {
		return nil, errors.New("not authenticated - run 'feedwire signin'")
	}
	c := client.New(cfg.BaseURL)
	c.Token = cfg.Token
	c.UserID = cfg.UserID
	return c, nil
}

func imageContentType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".png":
		return "image/png"
	case ".jpg", ".jpeg":
		return "image/jpeg"
	default:
		return "application/octet-stream"
	}
}
