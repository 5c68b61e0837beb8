package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/folio/internal/snapshot"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a session snapshot",
	Long: `Import replaces the matching entries of the local session with the
contents of a snapshot file. Compression is detected automatically.
Windows with unreadable payloads are skipped and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	in, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("opening snapshot file: %w", err)
	}
	defer func() { _ = in.Close() }()

	st := openStore()
	defer func() { _ = st.Close() }()

	result, err := snapshot.Import(cmd.Context(), st, in)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d windows and %d preferences\n", result.Windows, result.Preferences)
	for _, skipped := range result.Skipped {
		fmt.Printf("  skipped %s: %v\n", skipped.WindowID, skipped.Err)
	}
	return nil
}
