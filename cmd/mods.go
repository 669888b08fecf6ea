package cmd

import (
	"fmt"
	"sort"

	modsfeature "mod-manager/feature/mods"

	"github.com/spf13/cobra"
)

// modsCmd represents the mods command
var modsCmd = &cobra.Command{
	Use:   "mods",
	Short: "Inspect and maintain mod packages",
}

// modsListCmd represents the mods list command
var modsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List discovered packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		svc := modsfeature.NewService(a.store, a.engine, a.logger)
		list := svc.List()
		fmt.Printf("\n%-32s %-24s %6s %6s %6s %6s\n", "ID", "NAME", "FILES", "SWAPS", "EDITS", "GROUPS")
		for _, s := range list {
			fmt.Printf("%-32s %-24s %6d %6d %6d %6d\n", s.ID, s.Name, s.Files, s.Swaps, s.Edits, s.Groups)
		}
		fmt.Printf("\nTotal: %d\n", len(list))
		return nil
	},
}

// modsReloadCmd represents the mods reload command
var modsReloadCmd = &cobra.Command{
	Use:   "reload",
	Short: "Rescan the mod directory and report broken packages",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := bootstrap(cmd.Context())
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		report := a.discovered
		fmt.Printf("\nLoaded: %d\n", report.Loaded)
		if failed := report.Failed(); len(failed) > 0 {
			fmt.Println("\nFailed:")
			for _, f := range failed {
				fmt.Printf("- %s\n", f)
			}
		}
		if len(report.Warnings) > 0 {
			fmt.Println("\nDropped associations:")
			ids := make([]string, 0, len(report.Warnings))
			for id := range report.Warnings {
				ids = append(ids, id)
			}
			sort.Strings(ids)
			for _, id := range ids {
				for _, w := range report.Warnings[id] {
					fmt.Printf("- %s: %s\n", id, w)
				}
			}
		}
		return nil
	},
}

// modsPruneCmd represents the mods prune command
var modsPruneCmd = &cobra.Command{
	Use:   "prune [id]",
	Short: "Drop table edits of a package that equal the base game data",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		svc := modsfeature.NewService(a.store, a.engine, a.logger)
		res, err := svc.Prune(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d no-op edits from %s\n", res.Removed, res.ID)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(modsCmd)
	modsCmd.AddCommand(modsListCmd, modsReloadCmd, modsPruneCmd)
}
