package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/store"
)

var backupCmd = &cobra.Command{
	Use:   "backup",
	Short: "Export or restore every collection as JSON",
}

var backupExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Write a JSON snapshot to file, or stdout when omitted",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		snap, err := newClient().Export(cmdContext(cmd))
		if err != nil {
			return err
		}
		var w io.Writer = os.Stdout
		if len(args) == 1 {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(snap); err != nil {
			return err
		}
		if len(args) == 1 {
			fmt.Fprintf(os.Stderr, "Snapshot written to %s (%d entries)\n", args[0], len(snap.JournalEntries))
		}
		return nil
	},
}

var backupRestoreCmd = &cobra.Command{
	Use:   "restore [file]",
	Short: "Replace all data with a JSON snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		var snap store.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			return fmt.Errorf("read snapshot: %w", err)
		}
		if err := newClient().Restore(cmdContext(cmd), &snap); err != nil {
			return err
		}
		fmt.Printf("Restored %d accounts, %d journal entries\n", len(snap.Accounts), len(snap.JournalEntries))
		return nil
	},
}

func init() {
	backupCmd.AddCommand(backupExportCmd, backupRestoreCmd)
	rootCmd.AddCommand(backupCmd)
}
