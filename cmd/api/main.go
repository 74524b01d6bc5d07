package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/carlosnsr/bookshelf/cmd/api/commands"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "bookshelf",
		Short: "Bookshelf API Server",
		Long:  `Bookshelf is a file-backed book catalog service exposing a JSON CRUD API.`,
	}

	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewSeedCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
