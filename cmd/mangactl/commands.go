// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/Aischii/mangaWebsite/internal/platform/migration"
	"github.com/Aischii/mangaWebsite/internal/platform/sec"
)

// # Schema

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "Apply or roll back database migrations",
		Commands: []*cli.Command{
			{
				Name:  "up",
				Usage: "Apply every pending migration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					runner, err := newRunner(cmd)
					if err != nil {
						return err
					}
					return runner.Up()
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migrations",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
				},
				Action: func(ctx context.Context, cmd *cli.Command) error {
					runner, err := newRunner(cmd)
					if err != nil {
						return err
					}
					return runner.Down(int(cmd.Int("steps")))
				},
			},
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					runner, err := newRunner(cmd)
					if err != nil {
						return err
					}
					version, dirty, err := runner.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.Root().Writer, "version=%d dirty=%t\n", version, dirty)
					return nil
				},
			},
		},
	}
}

func newRunner(cmd *cli.Command) (*migration.Runner, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return migration.NewRunner(cfg.DatabaseURL, cfg.MigrationPath, newLogger(cmd)), nil
}

// # Accounts

func createAdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "create-admin",
		Usage: "Create an administrator, or promote the account if it exists",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Required: true},
			&cli.StringFlag{Name: "password", Usage: "generated when omitted"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := openEnv(ctx, cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			authService, err := env.auth()
			if err != nil {
				return err
			}

			username := cmd.String("username")
			password, err := authService.EnsureAdmin(ctx, username, cmd.String("password"))
			if err != nil {
				return err
			}

			out := cmd.Root().Writer
			switch {
			case password == "":
				fmt.Fprintf(out, "promoted %s to admin\n", username)
			case cmd.String("password") == "":
				fmt.Fprintf(out, "created admin %s with password %s\n", username, password)
			default:
				fmt.Fprintf(out, "created admin %s\n", username)
			}
			return nil
		},
	}
}

func makeAdminCommand() *cli.Command {
	return &cli.Command{
		Name:      "make-admin",
		Usage:     "Grant the admin role to an existing account",
		ArgsUsage: "<username>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			username := cmd.Args().First()
			if username == "" {
				return errors.New("make-admin: username is required")
			}

			env, err := openEnv(ctx, cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			authService, err := env.auth()
			if err != nil {
				return err
			}
			if err := authService.SetRole(ctx, username, sec.RoleAdmin); err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "promoted %s to admin\n", username)
			return nil
		},
	}
}

// # Media

func importCommand() *cli.Command {
	return &cli.Command{
		Name:  "import-fs",
		Usage: "Register manga and chapter folders found under the media root",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := openEnv(ctx, cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			folders, err := env.disk.Scan()
			if err != nil {
				return err
			}

			report, err := env.content().Import(ctx, folders)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "manga created: %d, chapters created: %d, skipped: %d\n",
				report.MangaCreated, report.ChaptersCreated, report.Skipped)
			return nil
		},
	}
}

func optimizeCoversCommand() *cli.Command {
	return &cli.Command{
		Name:  "optimize-covers",
		Usage: "Resize and recompress every stored cover image",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			env, err := openEnv(ctx, cmd)
			if err != nil {
				return err
			}
			defer env.Close()

			count, err := env.content().OptimizeCovers(ctx)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.Root().Writer, "covers optimised: %d\n", count)
			return nil
		},
	}
}
