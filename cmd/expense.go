package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/ledger"
)

var (
	expDate        string
	expCategory    string
	expDescription string
	expAmount      string
	expVersion     int64
)

var expenseCmd = &cobra.Command{Use: "expense", Short: "Record and manage expenses"}

var expenseRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a cash expense against the account matching its category",
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDate(expDate)
		if err != nil {
			return err
		}
		amount, err := ledger.ParseAmount(expAmount)
		if err != nil {
			return err
		}
		e, err := newClient().RecordExpense(cmdContext(cmd), books.ExpenseDraft{
			Date:        date,
			Category:    expCategory,
			Description: expDescription,
			Amount:      amount,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Expense recorded: %s, %s (entry %s)\n", e.ID, money(e.Amount), e.JournalEntryID)
		return nil
	},
}

var expenseUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change an expense's description",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		version := expVersion
		if !cmd.Flags().Changed("version") {
			cur, err := c.GetExpense(cmdContext(cmd), args[0])
			if err != nil {
				return err
			}
			version = cur.Version
		}
		e, err := c.UpdateExpense(cmdContext(cmd), args[0], version, expDescription)
		if err != nil {
			return err
		}
		fmt.Printf("Expense %s updated, now version %d\n", e.ID, e.Version)
		return nil
	},
}

var expenseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expenses",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListExpenses(cmdContext(cmd), includeDeleted)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No expenses found.")
			return nil
		}
		fmt.Printf("%-36s %-10s %-16s %-32s %12s %-16s %s\n", "ID", "DATE", "CATEGORY", "DESCRIPTION", "AMOUNT", "STATUS", "VER")
		for _, e := range list {
			fmt.Printf("%-36s %-10s %-16s %-32s %12s %-16s %d\n",
				e.ID, date(e.Date), truncate(e.Category, 16), truncate(e.Description, 32), money(e.Amount), e.Lifecycle, e.Version)
		}
		return nil
	},
}

func init() {
	expenseRecordCmd.Flags().StringVar(&expDate, "date", "", "date YYYY-MM-DD (default: today)")
	expenseRecordCmd.Flags().StringVar(&expCategory, "category", "", "category, e.g. Rent or Utilities")
	expenseRecordCmd.Flags().StringVar(&expDescription, "description", "", "what was paid for")
	expenseRecordCmd.Flags().StringVar(&expAmount, "amount", "", "amount paid")
	expenseRecordCmd.MarkFlagRequired("category")
	expenseRecordCmd.MarkFlagRequired("description")
	expenseRecordCmd.MarkFlagRequired("amount")

	expenseUpdateCmd.Flags().StringVar(&expDescription, "description", "", "new description")
	expenseUpdateCmd.MarkFlagRequired("description")
	expenseUpdateCmd.Flags().Int64Var(&expVersion, "version", 0, "version the change is based on (default: current)")

	expenseListCmd.Flags().BoolVar(&includeDeleted, "deleted", false, "include deleted records")

	expenseCmd.AddCommand(expenseRecordCmd, expenseUpdateCmd, expenseListCmd)
	rootCmd.AddCommand(expenseCmd)
}
