package cmd

import (
	"fmt"

	"mod-manager/feature/collections"

	"github.com/spf13/cobra"
)

// collectionCmd represents the collection command
var collectionCmd = &cobra.Command{
	Use:   "collection",
	Short: "Manage collections and their assignments",
}

// collectionListCmd represents the collection list command
var collectionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List collections and assignments",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()
		if err := a.rebuildAll(ctx); err != nil {
			return err
		}

		svc := collections.NewService(a.manager, a.logger)
		list, err := svc.List()
		if err != nil {
			return err
		}
		fmt.Printf("\n%-24s %8s %10s %18s\n", "NAME", "ENTRIES", "CONFLICTS", "FINGERPRINT")
		for _, s := range list {
			fmt.Printf("%-24s %8d %10d %018x\n", s.Name, s.Entries, s.Conflicts, s.Fingerprint)
		}

		assignments := svc.Assignments()
		fmt.Printf("\nDefault: %s\n", assignments.Default)
		fmt.Printf("Forced:  %s\n", assignments.Forced)
		for actor, name := range assignments.Actors {
			fmt.Printf("Actor %s: %s\n", actor, name)
		}
		return nil
	},
}

// collectionCreateCmd represents the collection create command
var collectionCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		from, _ := cmd.Flags().GetString("from")

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		svc := collections.NewService(a.manager, a.logger)
		if _, err := svc.Create(ctx, args[0], from); err != nil {
			return err
		}
		fmt.Printf("Created collection %s\n", args[0])
		return nil
	},
}

// collectionDeleteCmd represents the collection delete command
var collectionDeleteCmd = &cobra.Command{
	Use:   "delete [name]",
	Short: "Delete a collection",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		svc := collections.NewService(a.manager, a.logger)
		if err := svc.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted collection %s\n", args[0])
		return nil
	},
}

// collectionSetCmd represents the collection set command
var collectionSetCmd = &cobra.Command{
	Use:       "set [default|forced] [name]",
	Short:     "Assign a collection to the default or forced scope",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{"default", "forced"},
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		scope := args[0]
		if scope != "default" && scope != "forced" {
			return fmt.Errorf("unknown scope %q, want default or forced", scope)
		}

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()

		svc := collections.NewService(a.manager, a.logger)
		if err := svc.Assign(ctx, scope, "", args[1]); err != nil {
			return err
		}
		fmt.Printf("Assigned %s to %s\n", args[1], scope)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(collectionCmd)
	collectionCmd.AddCommand(collectionListCmd, collectionCreateCmd, collectionDeleteCmd, collectionSetCmd)
	collectionCreateCmd.Flags().String("from", "", "Copy the settings of an existing collection")
}
