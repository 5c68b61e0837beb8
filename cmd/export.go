package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/zjrosen/folio/internal/snapshot"
	"github.com/zjrosen/folio/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Export the session to a portable snapshot",
	Long: `Export writes every window, its reading state, and its document
payload to a single snapshot file that can be imported on another
machine. Files ending in .gz are compressed.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().Bool("gzip", false, "compress the snapshot (implied by a .gz filename)")
	exportCmd.Flags().StringArray("window", nil, "export only the named window (repeatable)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	path := args[0]
	compress, _ := cmd.Flags().GetBool("gzip")
	if strings.HasSuffix(path, ".gz") {
		compress = true
	}
	windowIDs, _ := cmd.Flags().GetStringArray("window")

	st := openStore()
	defer func() { _ = st.Close() }()

	prefs := collectPreferences(cmd.Context(), st)

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}

	if err := snapshot.Export(cmd.Context(), st, out, snapshot.ExportOptions{
		Compress:    compress,
		Preferences: prefs,
		WindowIDs:   windowIDs,
	}); err != nil {
		_ = out.Close()
		_ = os.Remove(path)
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing snapshot file: %w", err)
	}

	fmt.Printf("Exported session to %s\n", path)
	return nil
}

// exportedPreferences are the session preferences carried in snapshots.
var exportedPreferences = []string{"theme", "markdown_style"}

func collectPreferences(ctx context.Context, st store.Store) map[string]string {
	prefs := make(map[string]string)
	for _, key := range exportedPreferences {
		if value, err := st.Preference(ctx, key); err == nil {
			prefs[key] = value
		}
	}
	return prefs
}
