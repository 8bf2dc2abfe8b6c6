package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index state and counts",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	coord, err := newCoordinator()
	if err != nil {
		return err
	}
	defer func() { _ = coord.Close() }()

	status := coord.Status()
	fmt.Printf("Documents: %d\n", status.DocumentCount)
	fmt.Printf("Symbols:   %d\n", status.SymbolCount)
	fmt.Printf("Chunks:    %d\n", status.ChunkCount)
	fmt.Printf("Vectors:   %d\n", status.VectorCount)
	if coord.NeedsRebuild() {
		fmt.Println("Some indexed files changed on disk. Run 'codeatlas index' to refresh.")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(statusCmd)
}
