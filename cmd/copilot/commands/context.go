package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/campuscopilot/copilot-go/internal/campus"
	"github.com/campuscopilot/copilot-go/internal/logging"
)

// writeContextJSON dumps the snapshot as indented JSON.
func writeContextJSON(w io.Writer, c *campus.Context) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("context: encode snapshot: %w", err)
	}
	return nil
}

// NewContextCmd constructs the `copilot context` subcommand, which prints
// the resolved campus snapshot so deployments can verify their
// CAMPUS_CONTEXT_FILE before going live.
func NewContextCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "context",
		Short: "Show the campus context the assistant is bound to",
		Long: `Print the resolved campus snapshot.

Shows the institution, departments, facilities, and contact channels the
assistant will use. Pass --json to dump the full snapshot for editing.

Examples:
  copilot context
  CAMPUS_CONTEXT_FILE=./rittehri.json copilot context --json > snapshot.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logging.New()

			c, err := loadCampus(log)
			if err != nil {
				return fmt.Errorf("context: %w", err)
			}

			if asJSON {
				return writeContextJSON(os.Stdout, c)
			}

			fmt.Printf("Campus: %s\n", c.Name)

			if len(c.Departments) > 0 {
				fmt.Println("\nDepartments:")
				for _, d := range c.Departments {
					line := "  - " + d.Name
					if d.Head != "" {
						line += " (head: " + d.Head + ")"
					}
					fmt.Println(line)
				}
			}

			if len(c.Facilities) > 0 {
				fmt.Println("\nFacilities:")
				for _, f := range c.Facilities {
					line := "  - " + f.Name
					if f.Location != "" {
						line += " @ " + f.Location
					}
					fmt.Println(line)
				}
			}

			for _, s := range c.Sections {
				fmt.Printf("  - %s\n", s.Title)
			}

			if len(c.UpcomingEvents) > 0 {
				fmt.Println("\nEvents:")
				for _, e := range c.UpcomingEvents {
					fmt.Printf("  - %s (%s)\n", e.Title, e.Date)
				}
			}

			if c.ContactInfo.General.Email != "" {
				fmt.Printf("\nGeneral contact: %s\n", c.ContactInfo.General.Email)
			}
			if c.StudentData != nil && c.StudentData.Attendance != nil {
				fmt.Printf("Student attendance on file: %g%% overall\n",
					c.StudentData.Attendance.OverallPercentage)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Dump the full snapshot as JSON")

	return cmd
}
