package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskmaster/planner/cmd/api/commands"
)

// @title Planner API
// @version 1.0
// @description Personal task planner with subtasks, an overdue/today/future board, a calendar and analytics

// @license.name MIT

// @host localhost:3000
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	var configFile string

	rootCmd := &cobra.Command{
		Use:           "planner",
		Short:         "Planner API server and command line client",
		Long:          `Planner keeps a personal task list with subtasks, Eisenhower quadrants and categories, and serves it over a REST API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default ./config.yaml when present)")

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand(&configFile))
	rootCmd.AddCommand(commands.NewMigrateCommand(&configFile))
	rootCmd.AddCommand(commands.NewTokenCommand(&configFile))
	rootCmd.AddCommand(commands.NewRolloverCommand(&configFile))
	rootCmd.AddCommand(commands.NewBoardCommand(&configFile))
	rootCmd.AddCommand(commands.NewToggleCommand(&configFile))
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
