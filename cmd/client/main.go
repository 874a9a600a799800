package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/client/api"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/client/cli"
	"github.com/HIMANSHUMISHRA389/CHAT-APP/internal/client/session"
)

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "server URL")
	dbPath := flag.String("db", "chat-app.db", "path to the local session database")
	flag.Usage = cli.PrintUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(2)
	}

	disk, err := session.OpenStorage(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	defer disk.Close()

	apiClient := api.NewClient(*serverURL)
	store, err := session.New(apiClient, disk)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	app := cli.New(apiClient, store)
	if err := app.Run(context.Background(), args[0], args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
