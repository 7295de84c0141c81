package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/ledger"
)

var approvalStatus string

var approvalCmd = &cobra.Command{
	Use:   "approval",
	Short: "Request, approve and reject record deletions",
}

var approvalRequestCmd = &cobra.Command{
	Use:   "request [record-type] [record-id]",
	Short: "Ask for a record to be deleted",
	Long:  "Record types: customer, supplier, product, sale, purchase, expense, journal_entry.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := ledger.ParseRecordType(args[0])
		if err != nil {
			return err
		}
		ar, err := newClient().RequestDelete(cmdContext(cmd), rt, args[1])
		if err != nil {
			return err
		}
		fmt.Printf("Deletion requested: %s (%s %s)\n", ar.ID, rt.Label(), ar.RecordID)
		return nil
	},
}

var approvalApproveCmd = &cobra.Command{
	Use:   "approve [request-id]",
	Short: "Approve a deletion request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ar, err := newClient().ApproveRequest(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s deleted\n", ar.RecordType.Label(), ar.RecordID)
		return nil
	},
}

var approvalRejectCmd = &cobra.Command{
	Use:   "reject [request-id]",
	Short: "Reject a deletion request",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ar, err := newClient().RejectRequest(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("%s %s is active again\n", ar.RecordType.Label(), ar.RecordID)
		return nil
	},
}

var approvalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deletion requests",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListRequests(cmdContext(cmd), ledger.RequestStatus(approvalStatus))
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No requests found.")
			return nil
		}
		fmt.Printf("%-36s %-14s %-36s %-10s %-10s %s\n", "ID", "TYPE", "RECORD", "BY", "STATUS", "DATE")
		for _, ar := range list {
			fmt.Printf("%-36s %-14s %-36s %-10s %-10s %s\n",
				ar.ID, ar.RecordType.Label(), ar.RecordID, ar.RequestedBy, ar.Status, ar.RequestDate.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	approvalListCmd.Flags().StringVar(&approvalStatus, "status", "pending", "pending, approved, rejected or empty for all")
	approvalCmd.AddCommand(approvalRequestCmd, approvalApproveCmd, approvalRejectCmd, approvalListCmd)
	rootCmd.AddCommand(approvalCmd)
}
