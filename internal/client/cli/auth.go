package cli

import (
	"context"
	"fmt"
	"time"
)

func (c *Cli) runSignup(ctx context.Context) error {
	fullName, err := readInput("Full name: ")
	if err != nil {
		return fmt.Errorf("failed to read full name: %w", err)
	}
	email, err := readInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}
	if password != confirm {
		return fmt.Errorf("passwords do not match")
	}

	if err := c.store.Signup(ctx, fullName, email, password); err != nil {
		return err
	}
	user := c.store.State().User
	fmt.Printf("Signed up as %s <%s>\n", user.FullName, user.Email)
	return nil
}

func (c *Cli) runLogin(ctx context.Context) error {
	email, err := readInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	password, err := readPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	if err := c.store.Login(ctx, email, password); err != nil {
		return err
	}
	user := c.store.State().User
	fmt.Printf("Logged in as %s <%s>\n", user.FullName, user.Email)
	return nil
}

func (c *Cli) runLogout(ctx context.Context) error {
	if err := c.store.Logout(ctx); err != nil {
		return err
	}
	fmt.Println("Logged out, local session cleared.")
	return nil
}

func (c *Cli) runStatus(ctx context.Context) error {
	if err := c.store.CheckAuth(ctx); err != nil {
		return fmt.Errorf("failed to check session: %w", err)
	}
	user := c.store.State().User
	if user == nil {
		fmt.Println("Not authenticated. Run 'chat-app login' first.")
		return nil
	}
	fmt.Printf("Logged in as %s <%s>\n", user.FullName, user.Email)
	if user.ProfilePic != "" {
		fmt.Printf("Profile picture: %s\n", user.ProfilePic)
	}
	fmt.Printf("Member since: %s\n", user.CreatedAt.Format(time.RFC3339))
	return nil
}
