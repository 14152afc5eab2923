// Package main is the entry point for the freegin-ai gateway CLI.
package main

import (
	"bufio"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/freegin-ai/gateway/internal/catalog"
	"github.com/freegin-ai/gateway/internal/config"
	"github.com/freegin-ai/gateway/internal/credential"
	"github.com/freegin-ai/gateway/internal/provider"
	"github.com/freegin-ai/gateway/internal/refresh"
	"github.com/freegin-ai/gateway/internal/storage"
	"github.com/freegin-ai/gateway/pkg/app"
	"github.com/spf13/cobra"
)

// Set by goreleaser ldflags.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "freeginai",
		Short:         "A self-hosted gateway that routes requests across free-tier LLM providers",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(versionCmd(), serveCmd(), configCmd(), catalogCmd(), credentialCmd())
	return root
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("freeginai %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}
}

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the gateway HTTP server and background scheduler",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfgPath, _ := cmd.Flags().GetString("config")
			return app.Run(app.RunParams{
				ConfigPath: cfgPath,
				Version:    version,
				Commit:     commit,
				Date:       date,
				LogLevel:   slog.LevelInfo,
			})
		},
	}
	cmd.Flags().StringP("config", "c", "", "Path to configuration file")
	return cmd
}

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a configuration file",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			cfg, err := config.Load(args[0])
			if err != nil {
				return err
			}
			if err := config.Validate(cfg); err != nil {
				return err
			}
			resolved, err := config.ResolveProviders(cfg)
			if err != nil {
				return err
			}
			fmt.Printf("Configuration OK (%d providers configured)\n", len(resolved))
			for _, rp := range resolved {
				fmt.Printf("  %s\n", rp.Provider.String())
			}
			return nil
		},
	})
	return cmd
}

func catalogCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "catalog",
		Short: "Model catalog management",
	}

	var cfgPath string
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to configuration file")

	root.AddCommand(&cobra.Command{
		Use:   "seed",
		Short: "Seed the catalog with the built-in default model roster",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			store := catalog.New(db)
			if err := store.SeedDefaults(cmd.Context()); err != nil {
				return err
			}
			fmt.Println("Catalog seeded with default models.")
			return nil
		},
	})

	root.AddCommand(refreshCmd(&cfgPath))

	return root
}

func refreshCmd(cfgPath *string) *cobra.Command {
	var providerName, workloadName string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "refresh",
		Short: "Ask an LLM provider to suggest catalog updates for a provider/workload pair",
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, ok := provider.FromAlias(providerName)
			if !ok {
				return fmt.Errorf("unknown provider %q", providerName)
			}
			w, ok := provider.WorkloadFromString(workloadName)
			if !ok {
				return fmt.Errorf("unknown workload %q", workloadName)
			}

			cfg, err := loadConfig(*cfgPath)
			if err != nil {
				return err
			}
			logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

			application, err := app.Wire(cfg, *cfgPath, logger)
			if err != nil {
				return err
			}
			defer func() { _ = application.Close() }()

			result, err := refresh.Refresh(cmd.Context(), application.Router, application.Catalog, p, w, dryRun)
			if err != nil {
				return err
			}

			fmt.Printf("Refresh for %s/%s: %d suggestion(s)\n", p.String(), w.String(), len(result.Suggestions))
			for _, s := range result.Suggestions {
				fmt.Printf("  %s - %s\n", s.Model, s.Rationale)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&providerName, "provider", "", "Provider name (required)")
	cmd.Flags().StringVar(&workloadName, "workload", "chat", "Workload name")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Do not persist suggestions")
	_ = cmd.MarkFlagRequired("provider")
	return cmd
}

func credentialCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "credential",
		Short: "Manage encrypted provider API keys",
	}

	var cfgPath string
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "Path to configuration file")

	root.AddCommand(&cobra.Command{
		Use:   "set <provider>",
		Short: "Set the API key for a provider, read from stdin",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, ok := provider.FromAlias(args[0])
			if !ok {
				return fmt.Errorf("unknown provider %q", args[0])
			}

			db, err := openDatabase(cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			store, err := credential.New(db)
			if err != nil {
				return err
			}

			reader := bufio.NewReader(os.Stdin)
			token, err := reader.ReadString('\n')
			if err != nil && token == "" {
				return fmt.Errorf("reading API key from stdin: %w", err)
			}
			token = strings.TrimSpace(token)
			if token == "" {
				return fmt.Errorf("empty API key")
			}

			if err := store.Set(cmd.Context(), p, token); err != nil {
				return err
			}
			fmt.Printf("Stored credential for %s.\n", p.String())
			return nil
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List providers with a stored credential",
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := openDatabase(cfgPath)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			store, err := credential.New(db)
			if err != nil {
				return err
			}

			providers, err := store.StoredProviders(cmd.Context())
			if err != nil {
				return err
			}
			if len(providers) == 0 {
				fmt.Println("No credentials stored.")
				return nil
			}
			for _, p := range providers {
				fmt.Println(p.String())
			}
			return nil
		},
	})

	return root
}

func loadConfig(cfgPath string) (*config.Config, error) {
	if cfgPath == "" {
		resolved, err := app.ResolveConfigPath()
		if err != nil {
			return nil, err
		}
		cfgPath = resolved
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDatabase(cfgPath string) (*sql.DB, error) {
	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return nil, err
	}
	return storage.Open(strings.TrimPrefix(cfg.Database.URL, "sqlite:"))
}
