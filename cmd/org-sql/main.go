package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/jarifuri/org-sql/internal"
	"github.com/jarifuri/org-sql/internal/schema"
	"github.com/jarifuri/org-sql/internal/sqlgen"
	pkgconfig "github.com/jarifuri/org-sql/pkg/config"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.Load(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func runSync(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Run(ctx, internal.WithConfig(cfg))
}

func runWatch(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.Run(ctx, internal.WithConfig(cfg), internal.WithWatch())
}

// runSchema prints the DDL for the configured dialect without touching
// any database.
func runSchema(_ context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	compiler := sqlgen.New(schema.Default(), cfg.Database.SQLDialect())
	for _, stmt := range compiler.CreateSchema() {
		fmt.Println(stmt)
	}
	return nil
}

func main() {
	configFlag := &cli.StringFlag{
		Name:        "config",
		Aliases:     []string{"c"},
		Usage:       "Path to config file",
		DefaultText: "config/config.yaml",
		Value:       "config/config.yaml",
		Sources:     cli.EnvVars("ORG_SQL_CONFIG_FILE"),
	}

	cmd := &cli.Command{
		Name:  "org-sql",
		Usage: "Index org files into a SQL database",
		Flags: []cli.Flag{configFlag},
		Commands: []*cli.Command{
			{
				Name:   "sync",
				Usage:  "Run one sync pass and exit",
				Action: runSync,
			},
			{
				Name:   "watch",
				Usage:  "Sync continuously on file changes",
				Action: runWatch,
			},
			{
				Name:   "schema",
				Usage:  "Print the schema DDL for the configured dialect",
				Action: runSchema,
			},
		},
		DefaultCommand: "sync",
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
