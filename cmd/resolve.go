package cmd

import (
	"fmt"

	"mod-manager/feature/resolver"

	"github.com/spf13/cobra"
)

// resolveCmd represents the resolve command
var resolveCmd = &cobra.Command{
	Use:   "resolve [path]",
	Short: "Show which package serves a game path",
	Long:  `Builds all collections and resolves a logical game path for an actor, falling back to the default and forced collections.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		actor, _ := cmd.Flags().GetString("actor")

		a, err := bootstrap(ctx)
		if err != nil {
			return err
		}
		defer a.logger.Sync()
		if err := a.rebuildAll(ctx); err != nil {
			return err
		}

		svc := resolver.NewService(a.manager.Router(), a.logger)
		answer, err := svc.Resolve(args[0], actor)
		if err != nil {
			return err
		}

		fmt.Println("\n--- Resolution ---")
		fmt.Printf("Path:        %s\n", answer.Path)
		if !answer.Override {
			fmt.Println("Source:      base game data")
			return nil
		}
		res := answer.Result
		fmt.Printf("Collection:  %s (%s)\n", res.Collection, res.Scope)
		fmt.Printf("Kind:        %s\n", res.Entry.Kind)
		switch {
		case res.Entry.File != "":
			fmt.Printf("Package:     %s\n", res.Entry.Package)
			fmt.Printf("File:        %s\n", res.Entry.File)
		case res.Entry.Target != "":
			fmt.Printf("Package:     %s\n", res.Entry.Package)
			fmt.Printf("Swap:        %s\n", res.Entry.Target)
		default:
			fmt.Printf("Packages:    %v\n", res.Entry.Packages)
			fmt.Printf("Table size:  %d bytes\n", len(res.Entry.Blob))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(resolveCmd)
	resolveCmd.Flags().String("actor", "", "Actor whose collection is consulted first")
}
