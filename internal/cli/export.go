package cli

import (
	"fmt"
	"os"

	"github.com/hourglasshq/hourglass/internal/export"
	"github.com/spf13/cobra"
)

var exportOutput string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the organization's data as a ZIP archive",
	Long: `Write the organization's clients, projects, tasks, tags and time
entries to a ZIP archive. The archive can be imported back with
'hourglass import --type hourglass'.

Examples:
  hourglass export
  hourglass export --output backup.zip`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "hourglass-export.zip", "Output file path")
}

func runExport(cmd *cobra.Command, args []string) error {
	cc, err := openContext(cmd.Context())
	if err != nil {
		return err
	}
	defer cc.Close()

	f, err := os.Create(exportOutput)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", exportOutput, err)
	}

	if err := export.WriteArchive(cmd.Context(), cc.Store, cc.Organization.ID, f); err != nil {
		_ = f.Close()
		_ = os.Remove(exportOutput)
		return fmt.Errorf("export failed: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to finish %s: %w", exportOutput, err)
	}

	fmt.Printf("Exported %s to %s\n", cc.Organization.Name, exportOutput)
	return nil
}
