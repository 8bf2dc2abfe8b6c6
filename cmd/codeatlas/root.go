package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"codeatlas/internal/indexer"
)

var (
	flagRoot    string
	flagWorkers int
)

var rootCmd = &cobra.Command{
	Use:          "codeatlas",
	Short:        "Index a codebase and search it semantically",
	SilenceUsage: true,
}

// Execute runs the CLI and exits nonzero on failure.
func Execute() {
	log.SetOutput(os.Stderr)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagRoot, "root", "", "workspace root (default current directory)")
	rootCmd.PersistentFlags().IntVar(&flagWorkers, "workers", 0, "parallel file workers (default NumCPU)")
}

// workspaceRoot resolves the --root flag to an absolute path.
func workspaceRoot() (string, error) {
	root := flagRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		root = wd
	}
	return filepath.Abs(root)
}

// newCoordinator opens the engine for the resolved workspace root,
// restoring any persisted index state.
func newCoordinator() (*indexer.Coordinator, error) {
	root, err := workspaceRoot()
	if err != nil {
		return nil, err
	}
	return indexer.New(indexer.Config{
		Root:    root,
		Workers: flagWorkers,
	})
}
