package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/charlesng35/teamkit/internal/app"
	"github.com/charlesng35/teamkit/internal/database"
	"github.com/charlesng35/teamkit/pkg/logger"
)

type rootOptions struct {
	configPath string
	envFile    string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "teamkit",
		Short:         "Team accounts, sessions and invitations backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return loadEnvFile(opts.envFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration directory or file")
	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Dotenv file loaded before configuration")

	root.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runServe(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create or update the database schema",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runMigrate(opts, cmd)
			},
		},
		&cobra.Command{
			Use:   "seed",
			Short: "Create the development account and team",
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runSeed(opts, cmd)
			},
		},
	)

	return root
}

// loadEnvFile overlays the dotenv file onto the process environment. Variables
// already set win, and a missing file is not an error.
func loadEnvFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %q: %w", path, err)
	}
	return nil
}

// prepare loads configuration, fills runtime secrets and configures logging.
func prepare(opts *rootOptions) (*app.Config, error) {
	cfg, err := loadApplicationConfig(opts.configPath)
	if err != nil {
		return nil, err
	}

	generated, err := app.ApplyRuntimeDefaults(cfg)
	if err != nil {
		return nil, err
	}

	if err := app.ConfigureLogging(cfg.Server); err != nil {
		return nil, fmt.Errorf("configure logging: %w", err)
	}

	log := logger.WithModule("bootstrap")
	for key := range generated {
		log.Warn("generated runtime secret; sessions will not survive a restart", zap.String("key", key))
	}
	return cfg, nil
}

func runMigrate(opts *rootOptions, cmd *cobra.Command) error {
	cfg, err := prepare(opts)
	if err != nil {
		return err
	}
	defer logger.Sync() // best effort

	db, err := database.Open(cfg.Database.ConnectionConfig())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto-migrate database: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "database schema is up to date")
	return nil
}

func runSeed(opts *rootOptions, cmd *cobra.Command) error {
	cfg, err := prepare(opts)
	if err != nil {
		return err
	}
	defer logger.Sync() // best effort

	db, err := database.Open(cfg.Database.ConnectionConfig())
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer database.Close(db)

	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("auto-migrate database: %w", err)
	}
	result, err := database.SeedData(db)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if !result.Created {
		fmt.Fprintf(out, "seed user %s already exists\n", database.SeedEmail)
		return nil
	}
	fmt.Fprintf(out, "created %s / %s in %q\n", database.SeedEmail, database.SeedPassword, result.Team.Name)
	return nil
}

func loadApplicationConfig(path string) (*app.Config, error) {
	switch {
	case strings.TrimSpace(path) == "":
		return app.LoadConfig()
	default:
		info, err := os.Stat(path)
		if err == nil {
			if info.IsDir() {
				return app.LoadConfig(path)
			}
			return app.LoadConfig(filepath.Dir(path))
		}
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("config path %q does not exist", path)
		}
		return nil, fmt.Errorf("stat config path: %w", err)
	}
}
