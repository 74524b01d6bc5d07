package commands

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/carlosnsr/bookshelf/internal/adapters/repository"
	"github.com/carlosnsr/bookshelf/internal/domain/entities"
	"github.com/carlosnsr/bookshelf/internal/infrastructure/config"
	"github.com/carlosnsr/bookshelf/internal/infrastructure/logger"
	"github.com/carlosnsr/bookshelf/internal/infrastructure/server"
)

// NewServeCommand creates the serve command
func NewServeCommand() *cobra.Command {
	var port int

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the Bookshelf API server",
		Long:  "Start the Bookshelf API server with all configured routes and middleware",
		Run: func(cmd *cobra.Command, args []string) {
			runServer(port)
		},
	}

	serveCmd.Flags().IntVar(&port, "port", 0, "Listen port (overrides SERVER_PORT, default 8000)")

	return serveCmd
}

// NewSeedCommand creates the seed command, which writes a starter
// backing file so the store has something to load.
func NewSeedCommand() *cobra.Command {
	var (
		file   string
		sample bool
		force  bool
	)

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Write a starter backing file",
		Long:  "Write an empty (or sample) book snapshot to the backing file path",
		Run: func(cmd *cobra.Command, args []string) {
			seedBackingFile(file, sample, force)
		},
	}

	seedCmd.Flags().StringVar(&file, "file", "", "Backing file path (defaults to STORE_PATH)")
	seedCmd.Flags().BoolVar(&sample, "sample", false, "Seed a few sample books instead of an empty catalog")
	seedCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing backing file")

	return seedCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print Bookshelf version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Println("Bookshelf v1.0.0")
		},
	}
}

func runServer(portOverride int) {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	if portOverride != 0 {
		cfg.Server.Port = portOverride
	}

	appLogger, err := logger.New(cfg.Logger)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer appLogger.Sync()

	store := repository.NewBookRepository(cfg.Store.Path)

	// The store must finish loading before requests are accepted. A
	// failed load leaves it uninitialized: the server still comes up
	// and every book route answers 404 until the file is fixed.
	if err := store.Load(context.Background()); err != nil {
		appLogger.Warnw("Store load failed, serving uninitialized",
			"error", err,
			"path", cfg.Store.Path,
		)
	}

	srv, err := server.New(cfg, store, appLogger)
	if err != nil {
		appLogger.Fatalw("Failed to initialize server", "error", err)
	}

	appLogger.Infow("Starting Bookshelf API server",
		"port", cfg.Server.Port,
		"store_path", cfg.Store.Path,
		"environment", cfg.App.Environment,
	)

	if err := srv.Start(fmt.Sprintf(":%d", cfg.Server.Port)); err != nil {
		appLogger.Fatalw("Server failed to start", "error", err)
	}
}

func seedBackingFile(file string, sample, force bool) {
	if file == "" {
		cfg, err := config.Load()
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		file = cfg.Store.Path
	}

	if _, err := os.Stat(file); err == nil && !force {
		log.Fatalf("Backing file %s already exists (use --force to overwrite)", file)
	}

	if dir := filepath.Dir(file); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			log.Fatalf("Failed to create data directory: %v", err)
		}
	}

	books := []entities.Book{}
	if sample {
		books = []entities.Book{
			{ID: 1, Author: "Mary Shelley", Title: "Frankenstein"},
			{ID: 2, Author: "Herman Melville", Title: "Moby-Dick"},
			{ID: 3, Author: "Jane Austen", Title: "Persuasion"},
		}
	}

	if err := repository.WriteSnapshot(file, books); err != nil {
		log.Fatalf("Failed to write backing file: %v", err)
	}

	fmt.Printf("Seeded %s with %d books\n", file, len(books))
}
