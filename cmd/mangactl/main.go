// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command mangactl runs maintenance tasks against the same database, cache
// and media root as the API server.
//
// Every subcommand loads configuration from the environment and opens only
// the connections it needs.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"
)

func main() {
	args := os.Args
	if len(args) == 1 {
		args = append(args, "--help")
	}

	root := &cli.Command{
		Name:  "mangactl",
		Usage: "Maintenance commands for the manga site",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "verbose", Usage: "log at debug level"},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			createAdminCommand(),
			makeAdminCommand(),
			importCommand(),
			optimizeCoversCommand(),
		},
	}

	if err := root.Run(context.Background(), args); err != nil {
		fmt.Fprintln(os.Stderr, "mangactl:", err)
		os.Exit(1)
	}
}

func newLogger(cmd *cli.Command) *slog.Logger {
	level := slog.LevelInfo
	if cmd.Bool("verbose") {
		level = slog.LevelDebug
	}
	handler := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With(slog.String("app", "mangactl"))
}
