package cli

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"
)

func (c *Cli) runUsers(ctx context.Context) error {
	users, err := c.apiClient.ListUsers(ctx)
	if err != nil {
		return err
	}
	if len(users) == 0 {
		fmt.Println("No other users yet.")
		return nil
	}
	for _, u := range users {
		fmt.Printf("%s  %s <%s>\n", u.ID, u.FullName, u.Email)
	}
	return nil
}

func (c *Cli) runMessages(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: chat-app messages USER_ID")
	}
	otherID := args[0]
	msgs, err := c.apiClient.ListMessages(ctx, otherID)
	if err != nil {
		return err
	}
	if len(msgs) == 0 {
		fmt.Println("No messages yet.")
		return nil
	}
	selfID := c.store.State().User.ID
	for _, m := range msgs {
		who := "them"
		if m.SenderID == selfID {
			who = "you"
		}
		line := m.Content
		if m.Image != "" {
			if line != "" {
				line += " "
			}
			line += "[image: " + m.Image + "]"
		}
		fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Format(time.Stamp), who, line)
	}
	return nil
}

func (c *Cli) runSend(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: chat-app send USER_ID [TEXT] [--image FILE]")
	}
	otherID := args[0]
	var textParts []string
	imagePath := ""
	for i := 1; i < len(args); i++ {
		if args[i] == "--image" {
			if i+1 >= len(args) {
				return fmt.Errorf("--image requires a file path")
			}
			i++
			imagePath = args[i]
			continue
		}
		textParts = append(textParts, args[i])
	}
	content := strings.Join(textParts, " ")

	imagePayload := ""
	if imagePath != "" {
		payload, err := encodeImageFile(imagePath)
		if err != nil {
			return err
		}
		imagePayload = payload
	}

	msg, err := c.apiClient.SendMessage(ctx, otherID, content, imagePayload)
	if err != nil {
		return err
	}
	fmt.Printf("Sent message %s\n", msg.ID)
	return nil
}

func (c *Cli) runSetAvatar(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: chat-app set-avatar FILE")
	}
	payload, err := encodeImageFile(args[0])
	if err != nil {
		return err
	}
	if err := c.store.UpdateProfilePic(ctx, payload); err != nil {
		return err
	}
	fmt.Printf("Profile picture updated: %s\n", c.store.State().User.ProfilePic)
	return nil
}

// encodeImageFile reads a local file into the base64 data URL the
// server expects.
func encodeImageFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read image file: %w", err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("image file is empty")
	}
	contentType := http.DetectContentType(data)
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}
