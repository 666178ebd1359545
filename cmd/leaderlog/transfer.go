package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/fyrsmithlabs/leaderlog/internal/storage"
)

var (
	exportOutput string
	importForce  bool
)

func init() {
	exportCmd.Flags().StringVarP(&exportOutput, "output", "o", "", "write to this file instead of stdout")
	importCmd.Flags().BoolVar(&importForce, "force", false, "replace a non-empty journal")
	rootCmd.AddCommand(exportCmd, importCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the whole journal as JSON",
	Long: `Write the whole journal in the versioned JSON layout used by the file
backend. The output can be read back with "leaderlog import".`,
	Args: cobra.NoArgs,
	RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
		data, err := storage.Encode(a.store.Snapshot())
		if err != nil {
			return err
		}
		data = append(data, '\n')

		if exportOutput == "" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(exportOutput, data, 0o600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		cmd.Printf("Exported journal to %s\n", exportOutput)
		return nil
	}),
}

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Replace the journal with an exported JSON file",
	Long: `Replace the whole journal with the contents of a file written by
"leaderlog export". Both the current layout and the original unversioned
layout are accepted.

A journal that already has records is only replaced with --force.`,
	Args: cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", args[0], err)
		}
		state, err := storage.Decode(data)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", errUsage, args[0], err)
		}

		current := a.store.Snapshot()
		existing := len(current.Reflections) + len(current.Triggers) + len(current.Accomplishments)
		if existing > 0 && !importForce {
			return fmt.Errorf("%w: journal has %d records; use --force to replace them", errUsage, existing)
		}

		if err := a.store.Replace(a.ctx, state); err != nil {
			return err
		}
		cmd.Printf("Imported %d reflections, %d triggers, %d accomplishments\n",
			len(state.Reflections), len(state.Triggers), len(state.Accomplishments))
		return nil
	}),
}
