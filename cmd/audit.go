package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/ledger"
)

var activityLimit int

var activityCmd = &cobra.Command{
	Use:   "activity",
	Short: "Show the activity log, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().Activity(cmdContext(cmd), activityLimit)
		if err != nil {
			return err
		}
		for _, a := range list {
			fmt.Printf("%s  %-10s %-26s %s\n", a.Timestamp.Format("2006-01-02 15:04:05"), a.UserID, a.Action, a.Details)
		}
		return nil
	},
}

var historyCmd = &cobra.Command{
	Use:   "history [record-type] [record-id]",
	Short: "Show field edits of a record, or of every record of a type",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := ledger.ParseRecordType(args[0])
		if err != nil {
			return err
		}
		id := ""
		if len(args) == 2 {
			id = args[1]
		}
		edits, err := newClient().History(cmdContext(cmd), rt, id)
		if err != nil {
			return err
		}
		if len(edits) == 0 {
			fmt.Println("No edits recorded.")
			return nil
		}
		for _, e := range edits {
			fmt.Printf("%s  %-10s %-36s %-16s %q -> %q\n",
				e.Timestamp.Format("2006-01-02 15:04:05"), e.UserID, e.RecordID, e.Field, e.OldValue, e.NewValue)
		}
		return nil
	},
}

func init() {
	activityCmd.Flags().IntVarP(&activityLimit, "limit", "n", 50, "entries to show, 0 for all")
	rootCmd.AddCommand(activityCmd, historyCmd)
}
