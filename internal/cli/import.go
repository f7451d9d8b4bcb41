package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hourglasshq/hourglass/internal/importer"
	"github.com/spf13/cobra"
)

var importType string

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import time entries from another tracker",
	Long: `Import a CSV or ZIP export from another time tracker into the current
organization. Entities are matched by name and created once; time entries
are created on every run.

Examples:
  hourglass import --type toggl_time_entries toggl.csv
  hourglass import --type harvest_time_entries harvest.csv
  hourglass import --type hourglass backup.zip`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	importCmd.Flags().StringVarP(&importType, "type", "t", "", "Import format, one of: "+strings.Join(importer.Keys(), ", "))
	_ = importCmd.MarkFlagRequired("type")
}

func runImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", args[0], err)
	}

	cc, err := openContext(cmd.Context())
	if err != nil {
		return err
	}
	defer cc.Close()

	tz := time.UTC
	if loc, err := time.LoadLocation(cc.User.Timezone); err == nil {
		tz = loc
	}

	svc := importer.NewService(cc.Store)
	report, err := svc.Import(cmd.Context(), cc.Organization, importType, data, tz)
	if err != nil {
		return err
	}

	fmt.Printf("Imported into %s:\n", cc.Organization.Name)
	fmt.Printf("  time entries  %d\n", report.TimeEntriesCreated)
	fmt.Printf("  clients       %d\n", report.ClientsCreated)
	fmt.Printf("  projects      %d\n", report.ProjectsCreated)
	fmt.Printf("  tasks         %d\n", report.TasksCreated)
	fmt.Printf("  tags          %d\n", report.TagsCreated)
	fmt.Printf("  users         %d\n", report.UsersCreated)
	return nil
}
