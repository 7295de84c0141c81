package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/ledger"
)

var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage the chart of accounts",
}

var (
	acctCreateID   string
	acctCreateName string
	acctCreateType string
)

var accountCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add an account to the chart",
	RunE: func(cmd *cobra.Command, args []string) error {
		typ, err := ledger.ParseAccountType(acctCreateType)
		if err != nil {
			return err
		}
		acct, err := newClient().CreateAccount(cmdContext(cmd), acctCreateID, acctCreateName, typ)
		if err != nil {
			return err
		}
		fmt.Printf("Account created: %s %s (%s, normal balance %s)\n",
			acct.ID, acct.Name, acct.Type, ledger.NormalBalance(acct.Type))
		return nil
	},
}

var accountListCmd = &cobra.Command{
	Use:   "list",
	Short: "List accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		accounts, err := newClient().ListAccounts(cmdContext(cmd))
		if err != nil {
			return err
		}
		if len(accounts) == 0 {
			fmt.Println("No accounts found.")
			return nil
		}
		fmt.Printf("%-8s %-32s %-10s %s\n", "ID", "NAME", "TYPE", "NORMAL")
		for _, a := range accounts {
			fmt.Printf("%-8s %-32s %-10s %s\n", a.ID, truncate(a.Name, 32), a.Type, ledger.NormalBalance(a.Type))
		}
		return nil
	},
}

var accountGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show an account and its ledger",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c := newClient()
		acct, err := c.GetAccount(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:      %s\n", acct.ID)
		fmt.Printf("Name:    %s\n", acct.Name)
		fmt.Printf("Type:    %s\n", acct.Type)
		fmt.Printf("Normal:  %s\n", ledger.NormalBalance(acct.Type))
		if entry := ledger.LookupChartEntry(acct.ID); entry != nil {
			fmt.Printf("About:   %s\n", entry.Description)
		}

		led, err := c.AccountLedger(cmdContext(cmd), acct.ID, books.ReportQuery{})
		if err != nil {
			return err
		}
		fmt.Printf("Balance: %s\n", money(led.Balance))
		return nil
	},
}

var accountRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "Show which accounts the posting rules use",
	RunE: func(cmd *cobra.Command, args []string) error {
		m, err := newClient().AccountMap(cmdContext(cmd))
		if err != nil {
			return err
		}
		for _, role := range ledger.AllAccountRoles {
			fmt.Printf("%-16s %s\n", role, m.Get(role))
		}
		return nil
	},
}

var accountSetRoleCmd = &cobra.Command{
	Use:   "set-role [role] [account-id]",
	Short: "Point a posting role at another account",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := newClient().SetAccountRole(cmdContext(cmd), ledger.AccountRole(args[0]), args[1]); err != nil {
			return err
		}
		fmt.Printf("%s now posts to %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	accountCreateCmd.Flags().StringVar(&acctCreateID, "id", "", "account id (e.g. 504)")
	accountCreateCmd.Flags().StringVar(&acctCreateName, "name", "", "account name")
	accountCreateCmd.Flags().StringVar(&acctCreateType, "type", "", "Asset, Liability, Equity, Revenue or Expense")
	accountCreateCmd.MarkFlagRequired("id")
	accountCreateCmd.MarkFlagRequired("name")
	accountCreateCmd.MarkFlagRequired("type")

	accountCmd.AddCommand(accountCreateCmd, accountListCmd, accountGetCmd, accountRolesCmd, accountSetRoleCmd)
	rootCmd.AddCommand(accountCmd)
}
