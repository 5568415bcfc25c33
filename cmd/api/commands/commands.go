package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/taskmaster/planner/internal/adapters/cache"
	"github.com/taskmaster/planner/internal/adapters/repository"
	"github.com/taskmaster/planner/internal/application/services"
	"github.com/taskmaster/planner/internal/infrastructure/config"
	"github.com/taskmaster/planner/internal/infrastructure/database"
	"github.com/taskmaster/planner/internal/infrastructure/logger"
	"github.com/taskmaster/planner/internal/infrastructure/scheduler"
	"github.com/taskmaster/planner/internal/infrastructure/server"
	"github.com/taskmaster/planner/internal/ports"
)

// Build information, set with -ldflags at release time
var (
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "development"
)

// NewServeCommand creates the serve command
func NewServeCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the planner API server",
		Long:  "Start the planner API server with all configured routes, middleware and the rollover job",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), *configFile)
		},
	}
}

// NewMigrateCommand creates the migrate command with subcommands
func NewMigrateCommand(configFile *string) *cobra.Command {
	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Database migration commands",
		Long:  "Manage database migrations (up, down, version)",
	}

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Run all up migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, *configFile, "up")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Run all down migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigration(cmd, *configFile, "down")
		},
	})

	migrateCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print current migration version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return showMigrationVersion(cmd, *configFile)
		},
	})

	return migrateCmd
}

// NewTokenCommand creates the token command used to mint API tokens
func NewTokenCommand(configFile *string) *cobra.Command {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "API token commands",
	}

	issueCmd := &cobra.Command{
		Use:   "issue",
		Short: "Issue a bearer token for the API",
		RunE: func(cmd *cobra.Command, args []string) error {
			subject, _ := cmd.Flags().GetString("subject")

			cfg, appLogger, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer appLogger.Sync()

			token, err := services.NewAuthService(cfg.JWT, appLogger).IssueToken(subject)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, token.AccessToken)
			fmt.Fprintf(out, "Expires: %s\n", token.ExpiresAt.Format(time.RFC3339))
			return nil
		},
	}
	issueCmd.Flags().String("subject", "", "Token subject (default \"planner\")")

	tokenCmd.AddCommand(issueCmd)
	return tokenCmd
}

// NewRolloverCommand moves overdue tasks to today once, as the daily job does
func NewRolloverCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "rollover",
		Short: "Postpone every overdue task to today",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, appLogger, err := bootstrap(*configFile)
			if err != nil {
				return err
			}
			defer appLogger.Sync()

			loc, err := cfg.App.Location()
			if err != nil {
				return err
			}

			db, err := openDatabase(cfg, appLogger)
			if err != nil {
				return err
			}
			defer db.Close()

			taskCache, closeCache, err := sharedCache(cmd.Context(), cfg.Redis)
			if err != nil {
				return err
			}
			defer closeCache()
			if taskCache == nil {
				appLogger.Warnw("Redis disabled, a running server serves its cached task list until it expires", "ttl", cfg.Redis.TTL)
			}

			taskService := services.NewTaskService(
				repository.NewTaskRepository(db),
				taskCache,
				cfg.Redis.TTL,
				loc,
				appLogger.WithComponent("tasks"),
			)

			result, err := scheduler.New(taskService, loc, appLogger).RunRollover(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Moved %d task(s) to %s\n", len(result.Moved), result.Day)
			return nil
		},
	}
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print planner version",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Planner %s\n", Version)
			fmt.Fprintf(out, "Build Date: %s\n", BuildDate)
			fmt.Fprintf(out, "Git Commit: %s\n", GitCommit)
		},
	}
}

// sharedCache connects the Redis cache a running server reads, so writes
// made by this process invalidate its task list. Without Redis the server
// caches in its own memory and nil is returned.
func sharedCache(ctx context.Context, cfg config.RedisConfig) (ports.CacheRepository, func(), error) {
	if !cfg.Enabled {
		return nil, func() {}, nil
	}

	redisCache, err := cache.NewRedisCache(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return redisCache, func() { _ = redisCache.Close() }, nil
}

func bootstrap(configFile string) (*config.Config, *logger.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, appLogger, nil
}

func openDatabase(cfg *config.Config, appLogger *logger.Logger) (*database.DB, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if cfg.Database.AutoMigrate {
		applied, err := db.MigrateUp()
		if err != nil {
			db.Close()
			return nil, err
		}
		if applied {
			appLogger.Infow("Database migrations applied", "driver", db.Driver())
		}
	}
	return db, nil
}

func runServer(ctx context.Context, configFile string) error {
	cfg, appLogger, err := bootstrap(configFile)
	if err != nil {
		return err
	}
	defer appLogger.Sync()

	db, err := openDatabase(cfg, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to open database", "error", err)
		return err
	}
	defer db.Close()

	srv, err := server.New(cfg, db, appLogger)
	if err != nil {
		appLogger.Errorw("Failed to initialize server", "error", err)
		return err
	}

	appLogger.Infow("Starting planner API server",
		"port", cfg.Server.Port,
		"environment", cfg.App.Environment,
		"timezone", cfg.App.Timezone,
	)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port))
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Errorw("Server failed", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.Errorw("Graceful shutdown failed", "error", err)
		return err
	}
	appLogger.Info("Server stopped")
	return nil
}

func runMigration(cmd *cobra.Command, configFile, direction string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	var changed bool
	switch direction {
	case "up":
		changed, err = db.MigrateUp()
	case "down":
		changed, err = db.MigrateDown()
	}
	if err != nil {
		return err
	}

	if !changed {
		fmt.Fprintln(cmd.OutOrStdout(), "No migrations to run")
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "Migration %s completed successfully\n", direction)
	}
	return nil
}

func showMigrationVersion(cmd *cobra.Command, configFile string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	status, err := db.MigrationVersion()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Current migration version: %d\n", status.Version)
	fmt.Fprintf(cmd.OutOrStdout(), "Dirty: %t\n", status.Dirty)
	return nil
}
