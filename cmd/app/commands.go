// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"text/tabwriter"

	"codeberg.org/oliverandrich/go-i18n-routing/internal/config"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/database"
	"codeberg.org/oliverandrich/go-i18n-routing/internal/locale"
	"github.com/samber/lo"
	"github.com/urfave/cli/v3"
	"github.com/vinovest/sqlx"
)

var errMissingPath = errors.New("missing path argument")

func headCommand() *cli.Command {
	return &cli.Command{
		Name:      "head",
		Usage:     "Print the head metadata of a page as JSON",
		ArgsUsage: "<path>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "locale",
				Usage: "Locale to render the head in (default: locale of the path)",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			engine, route, err := engineAndRoute(cmd)
			if err != nil {
				return err
			}

			code := lo.CoalesceOrEmpty(cmd.String("locale"), engine.Router.LocaleFromRoute(route), engine.Options.DefaultLocale)
			if !engine.Options.HasLocale(code) {
				return fmt.Errorf("unknown locale: %s", code)
			}

			head := engine.Head.LocaleHead(route, code, locale.HeadOptions{AddDirAttribute: true, AddSEOAttributes: true})
			enc := json.NewEncoder(cmd.Root().Writer)
			enc.SetIndent("", "  ")
			return enc.Encode(head)
		},
	}
}

func pathsCommand() *cli.Command {
	return &cli.Command{
		Name:      "paths",
		Usage:     "Print the path of a page in every locale",
		ArgsUsage: "<path>",
		Action: func(_ context.Context, cmd *cli.Command) error {
			engine, route, err := engineAndRoute(cmd)
			if err != nil {
				return err
			}

			tw := tabwriter.NewWriter(cmd.Root().Writer, 0, 4, 2, ' ', 0)
			for _, l := range engine.Options.Locales {
				fmt.Fprintf(tw, "%s\t%s\n", l.Code, engine.Router.SwitchLocalePath(l.Code, route))
			}
			return tw.Flush()
		},
	}
}

func dbCommand() *cli.Command {
	return &cli.Command{
		Name:  "db",
		Usage: "Manage the redirect state database",
		Commands: []*cli.Command{
			{
				Name:  "migrate",
				Usage: "Apply pending migrations",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					// Open migrates
					return withDatabase(ctx, cmd, func(db *sqlx.DB) error {
						return printVersion(ctx, cmd, db)
					})
				},
			},
			{
				Name:  "down",
				Usage: "Roll back the most recent migration",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withDatabase(ctx, cmd, func(db *sqlx.DB) error {
						if err := database.MigrateDown(ctx, db.DB); err != nil {
							return err
						}
						return printVersion(ctx, cmd, db)
					})
				},
			},
			{
				Name:  "version",
				Usage: "Print the current schema version",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withDatabase(ctx, cmd, func(db *sqlx.DB) error {
						return printVersion(ctx, cmd, db)
					})
				},
			},
		},
	}
}

func engineAndRoute(cmd *cli.Command) (*locale.Engine, locale.Route, error) {
	raw := cmd.Args().First()
	if raw == "" {
		return nil, locale.Route{}, errMissingPath
	}
	route, ok := locale.ParseRoute(raw)
	if !ok {
		return nil, locale.Route{}, fmt.Errorf("invalid path: %s", raw)
	}

	cfg, err := config.NewFromCLI(cmd)
	if err != nil {
		return nil, locale.Route{}, err
	}
	engine, err := locale.New(cfg.Options(), locale.Deps{Logger: slog.Default()})
	if err != nil {
		return nil, locale.Route{}, err
	}
	return engine, route, nil
}

func withDatabase(ctx context.Context, cmd *cli.Command, fn func(db *sqlx.DB) error) error {
	cfg, err := config.NewFromCLI(cmd)
	if err != nil {
		return err
	}
	db, err := database.Open(ctx, cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			slog.Error("failed to close database", "error", closeErr)
		}
	}()
	return fn(db)
}

func printVersion(ctx context.Context, cmd *cli.Command, db *sqlx.DB) error {
	version, err := database.Version(ctx, db.DB)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(cmd.Root().Writer, "schema version %d\n", version)
	return err
}
