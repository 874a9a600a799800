// Package cli is the terminal front end: it plays the role the
// single-page app plays in a browser, driving the API client and the
// session store.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/client/api"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/client/session"
)

type Cli struct {
	apiClient *api.Client
	store     *session.Store
}

func New(apiClient *api.Client, store *session.Store) *Cli {
	return &Cli{apiClient: apiClient, store: store}
}

// Run dispatches a command. Commands that need a session call CheckAuth
// first so the persisted token is validated against server truth.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "signup":
		return c.runSignup(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "users":
		return c.requireAuth(ctx, c.runUsers)
	case "messages":
		return c.requireAuth(ctx, func(ctx context.Context) error { return c.runMessages(ctx, args) })
	case "send":
		return c.requireAuth(ctx, func(ctx context.Context) error { return c.runSend(ctx, args) })
	case "set-avatar":
		return c.requireAuth(ctx, func(ctx context.Context) error { return c.runSetAvatar(ctx, args) })
	default:
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}

func (c *Cli) requireAuth(ctx context.Context, run func(context.Context) error) error {
	if err := c.store.CheckAuth(ctx); err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	if c.store.State().User == nil {
		return fmt.Errorf("not authenticated, run 'chat-app login' first")
	}
	return run(ctx)
}

func readInput(prompt string) (string, error) {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	b, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func PrintUsage() {
	fmt.Println("chat-app client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  chat-app [OPTIONS] COMMAND [ARGS]")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --server URL   Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH      Path to the local session database (default: chat-app.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  signup               Create an account and start a session")
	fmt.Println("  login                Authenticate and start a session")
	fmt.Println("  logout               End the session")
	fmt.Println("  status               Show who is logged in")
	fmt.Println("  users                List conversation partners")
	fmt.Println("  messages USER_ID     Show the conversation with a user")
	fmt.Println("  send USER_ID [TEXT]  Send a message (--image FILE to attach)")
	fmt.Println("  set-avatar FILE      Upload a new profile picture")
}
