package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"mod-manager/core/resolve"
	"mod-manager/feature/collections"

	"github.com/spf13/cobra"
)

// conflictsCmd represents the conflicts command
var conflictsCmd = &cobra.Command{
	Use:   "conflicts [collection]",
	Short: "List the conflicts of a collection",
	Long:  `Builds a collection and prints which packages lost each contested path or table field.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		jsonOutput, _ := cmd.Flags().GetBool("json")

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		svc := collections.NewService(a.manager, a.logger)
		summary, err := svc.Rebuild(ctx, args[0])
		if err != nil {
			return err
		}
		report, err := svc.Conflicts(args[0])
		if err != nil {
			return err
		}

		if jsonOutput {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		}

		fmt.Printf("\n=== Conflicts of %s (version %d) ===\n", report.Collection, report.Version)
		fmt.Printf("Entries: %d\n", summary.Entries)
		printConflicts("Unresolved paths", report.Unresolved)
		printConflicts("Resolved paths", report.Resolved)
		printConflicts("Unresolved table fields", report.TableUnresolved)
		printConflicts("Resolved table fields", report.TableResolved)
		if len(summary.Warnings) > 0 {
			fmt.Println("\nWarnings:")
			for _, w := range summary.Warnings {
				fmt.Printf("- %s\n", w)
			}
		}
		return nil
	},
}

func printConflicts(title string, list []resolve.Conflict) {
	if len(list) == 0 {
		return
	}
	fmt.Printf("\n%s (%d):\n", title, len(list))
	for _, c := range list {
		fmt.Printf("- %s: %s wins over %v\n", c.Key, c.Winner, c.Losers)
	}
}

func init() {
	RootCmd.AddCommand(conflictsCmd)
	conflictsCmd.Flags().Bool("json", false, "Print the report as JSON")
}
