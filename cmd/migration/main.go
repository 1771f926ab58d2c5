package main

import (
	"context"
	"fmt"
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/drivers/database"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

// Version sets the default build version
var Version = "develop"

// Tag sets the default latest commit tag
var Tag = "0.0.1-rc"

func main() {
	rootCmd := &cobra.Command{
		Use:   "hospital-migration",
		Short: "Maintenance commands for the hospital service database",
	}

	rootCmd.AddCommand(indexesCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func indexesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "Manage MongoDB indexes",
	}

	// indexes up
	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Create missing indexes",
		RunE: func(cmd *cobra.Command, args []string) error {
			timeout, _ := cmd.Flags().GetDuration("timeout")

			driverConfig := config.NewDriverConfig()
			internalConfig := config.NewInternalConfig()

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			client := database.NewMongoDB(driverConfig)
			defer client.Disconnect(context.Background())

			created, err := database.EnsureIndexes(ctx, client, internalConfig.MongoDB.DBName)
			if err != nil {
				return fmt.Errorf("index migration failed: %w", err)
			}

			printIndexes(cmd, created)
			fmt.Fprintf(cmd.OutOrStdout(), "Ensured indexes on %d collection(s).\n", len(created))
			return nil
		},
	}
	upCmd.Flags().Duration("timeout", 2*time.Minute, "Deadline for the whole index build")
	cmd.AddCommand(upCmd)

	// indexes status
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show indexes present on managed collections",
		RunE: func(cmd *cobra.Command, args []string) error {
			driverConfig := config.NewDriverConfig()
			internalConfig := config.NewInternalConfig()

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			client := database.NewMongoDB(driverConfig)
			defer client.Disconnect(context.Background())

			existing, err := database.ListIndexes(ctx, client, internalConfig.MongoDB.DBName)
			if err != nil {
				return err
			}

			printIndexes(cmd, existing)
			return nil
		},
	}
	cmd.AddCommand(statusCmd)

	// indexes plan
	planCmd := &cobra.Command{
		Use:   "plan",
		Short: "Print the expected indexes without connecting",
		Run: func(cmd *cobra.Command, args []string) {
			planned := make(map[string][]string)
			for _, def := range database.IndexDefinitions() {
				for _, model := range def.Models {
					planned[def.Collection] = append(planned[def.Collection], *model.Options.Name)
				}
			}
			printIndexes(cmd, planned)
		},
	}
	cmd.AddCommand(planCmd)

	return cmd
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print build version and tag",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "Version: %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "Tag: %s\n", Tag)
		},
	}
}

func printIndexes(cmd *cobra.Command, indexes map[string][]string) {
	collections := make([]string, 0, len(indexes))
	for collection := range indexes {
		collections = append(collections, collection)
	}
	sort.Strings(collections)

	for _, collection := range collections {
		fmt.Fprintf(cmd.OutOrStdout(), "%s:\n", collection)
		for _, name := range indexes[collection] {
			fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", name)
		}
	}
}
