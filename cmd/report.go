package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/report"
)

const reportWidth = 72

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Financial statements replayed from the ledger",
}

var reportTrialCmd = &cobra.Command{
	Use:   "trial",
	Short: "Trial balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		rq, err := reportQuery()
		if err != nil {
			return err
		}
		tb, err := newClient().TrialBalance(cmdContext(cmd), rq)
		if err != nil {
			return err
		}
		printHeading("TRIAL BALANCE", rq.Period)
		printTrialBalance(tb)
		return nil
	},
}

var reportLedgerCmd = &cobra.Command{
	Use:   "ledger [account-id]",
	Short: "Account ledger with running balance",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rq, err := reportQuery()
		if err != nil {
			return err
		}
		led, err := newClient().AccountLedger(cmdContext(cmd), args[0], rq)
		if err != nil {
			return err
		}
		printHeading(fmt.Sprintf("LEDGER %s %s", led.Account.ID, strings.ToUpper(led.Account.Name)), rq.Period)
		fmt.Printf("  %-10s %-28s %13s %13s %13s\n", "DATE", "DESCRIPTION", "DEBIT", "CREDIT", "BALANCE")
		for _, r := range led.Rows {
			fmt.Printf("  %-10s %-28s %13s %13s %13s\n",
				date(r.Date), truncate(r.Description, 28), blankZero(r.Debit), blankZero(r.Credit), money(r.Balance))
		}
		fmt.Printf("  %s\n", strings.Repeat("─", reportWidth-4))
		fmt.Printf("  %-53s %13s\n", "Closing balance", money(led.Balance))
		return nil
	},
}

var reportPLCmd = &cobra.Command{
	Use:     "pl",
	Aliases: []string{"profit-and-loss"},
	Short:   "Profit and loss statement",
	RunE: func(cmd *cobra.Command, args []string) error {
		rq, err := reportQuery()
		if err != nil {
			return err
		}
		pl, err := newClient().ProfitAndLoss(cmdContext(cmd), rq)
		if err != nil {
			return err
		}
		printHeading("PROFIT AND LOSS", rq.Period)
		printProfitAndLoss(pl)
		return nil
	},
}

var reportBSCmd = &cobra.Command{
	Use:     "bs",
	Aliases: []string{"balance-sheet"},
	Short:   "Balance sheet as of --to",
	RunE: func(cmd *cobra.Command, args []string) error {
		rq, err := reportQuery()
		if err != nil {
			return err
		}
		bs, err := newClient().BalanceSheet(cmdContext(cmd), rq)
		if err != nil {
			return err
		}
		printHeading("BALANCE SHEET", report.Period{To: rq.Period.To})
		printBalanceSheet(bs)
		return nil
	},
}

var summaryLowStock int64

var reportSummaryCmd = &cobra.Command{
	Use:     "summary",
	Aliases: []string{"dashboard"},
	Short:   "Sales, purchases, profit, monthly totals and low-stock products",
	RunE: func(cmd *cobra.Command, args []string) error {
		rq, err := reportQuery()
		if err != nil {
			return err
		}
		sq := books.SummaryQuery{ReportQuery: rq}
		if cmd.Flags().Changed("low-stock") {
			sq.LowStockThreshold = &summaryLowStock
		}
		sum, err := newClient().Summary(cmdContext(cmd), sq)
		if err != nil {
			return err
		}
		printHeading("SUMMARY", rq.Period)
		printSummary(sum)
		return nil
	},
}

var exportOut string

var reportExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write trial balance, P&L and balance sheet to an XLSX workbook",
	RunE: func(cmd *cobra.Command, args []string) error {
		rq, err := reportQuery()
		if err != nil {
			return err
		}
		f, err := os.Create(exportOut)
		if err != nil {
			return err
		}
		if err := newClient().ExportXLSX(cmdContext(cmd), rq, f); err != nil {
			f.Close()
			os.Remove(exportOut)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Printf("Statements written to %s\n", exportOut)
		return nil
	},
}

var reportCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Compare the replayed ledger with stored account totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		ir, err := newClient().CheckIntegrity(cmdContext(cmd))
		if err != nil {
			return err
		}
		if ir.OK() {
			fmt.Println("Ledger OK: balanced and consistent.")
			return nil
		}
		if !ir.Balanced {
			fmt.Println("Ledger does not balance.")
		}
		for _, m := range ir.Mismatches {
			fmt.Printf("  %-8s replay %s/%s, stored %s/%s\n", m.AccountID,
				money(m.ReplayDebit), money(m.ReplayCredit), money(m.StoredDebit), money(m.StoredCredit))
		}
		return fmt.Errorf("ledger integrity check failed")
	},
}

func printHeading(title string, p report.Period) {
	fmt.Println()
	fmt.Println(center(title, reportWidth))
	fmt.Println(center(periodLabel(p), reportWidth))
	fmt.Println(center(strings.Repeat("=", 24), reportWidth))
	fmt.Println()
}

func printTrialBalance(tb *report.TrialBalance) {
	fmt.Printf("  %-8s %-30s %14s %14s\n", "ID", "NAME", "DEBIT", "CREDIT")
	fmt.Printf("  %-8s %-30s %14s %14s\n", "----", "----", "-----", "------")
	for _, l := range tb.Lines {
		fmt.Printf("  %-8s %-30s %14s %14s\n", l.AccountID, truncate(l.AccountName, 30), blankZero(l.Debit), blankZero(l.Credit))
	}
	fmt.Printf("  %s\n", strings.Repeat("─", reportWidth-4))
	fmt.Printf("  %-39s %14s %14s\n", "TOTALS", money(tb.TotalDebit), money(tb.TotalCredit))
	printBalanced(tb.Balanced)
}

func printAmounts(title string, lines []report.Amount) {
	fmt.Printf("  %s\n", title)
	for _, a := range lines {
		fmt.Printf("    %-8s %-42s %14s\n", a.AccountID, truncate(a.AccountName, 42), money(a.Amount))
	}
}

func printTotal(label, value string, rule string) {
	fmt.Printf("  %*s%s\n", reportWidth-20, "", rule)
	fmt.Printf("  %-*s%14s\n", reportWidth-18, label, value)
}

func printProfitAndLoss(pl *report.ProfitAndLoss) {
	printAmounts("REVENUE", pl.RevenueLines)
	printTotal("Total Revenue", money(pl.Revenue), "──────────────")
	fmt.Printf("  %-*s%14s\n", reportWidth-18, "Cost of Goods Sold", money(pl.COGS))
	printTotal("Gross Profit", money(pl.GrossProfit), "──────────────")
	fmt.Println()
	printAmounts("EXPENSES", pl.ExpenseLines)
	printTotal("Operating Expenses (excl. COGS)", money(pl.OperatingExpenses), "──────────────")
	printTotal("NET PROFIT", money(pl.NetProfit), "══════════════")
}

func printBalanceSheet(bs *report.BalanceSheet) {
	printAmounts("ASSETS", bs.Assets)
	printTotal("Total Assets", money(bs.TotalAssets), "──────────────")
	fmt.Println()
	printAmounts("LIABILITIES", bs.Liabilities)
	printTotal("Total Liabilities", money(bs.TotalLiabilities), "──────────────")
	fmt.Println()
	printAmounts("EQUITY", bs.Equity)
	printTotal("Total Equity", money(bs.TotalEquity), "──────────────")
	printTotal("Total L + E", money(bs.TotalLiabilitiesAndEquity), "══════════════")
	printBalanced(bs.Balanced)
}

func printSummary(sum *report.Summary) {
	row := func(label string, v decimal.Decimal) {
		fmt.Printf("  %-*s%14s\n", reportWidth-18, label, money(v))
	}
	row("Total Sales", sum.TotalSales)
	row("Total Purchases", sum.TotalPurchases)
	row("Total Expenses", sum.TotalExpenses)
	printTotal("Gross Profit", money(sum.GrossProfit), "──────────────")
	printTotal("NET PROFIT", money(sum.NetProfit), "══════════════")

	fmt.Println()
	fmt.Printf("  %-10s %14s %14s\n", "MONTH", "SALES", "PURCHASES")
	for _, m := range sum.Monthly {
		fmt.Printf("  %-10s %14s %14s\n", m.Month, money(m.Sales), money(m.Purchases))
	}

	fmt.Println()
	fmt.Printf("  %d products, %d at or below %d in stock\n", sum.ProductCount, len(sum.LowStock), sum.LowStockThreshold)
	for _, p := range sum.LowStock {
		fmt.Printf("    %-36s %-24s %8d\n", p.ProductID, truncate(p.Name, 24), p.Stock)
	}
}

func printBalanced(ok bool) {
	if ok {
		fmt.Println("\n  [BALANCED]")
	} else {
		fmt.Println("\n  [UNBALANCED!]")
	}
}

func init() {
	for _, c := range []*cobra.Command{reportTrialCmd, reportLedgerCmd, reportPLCmd, reportBSCmd, reportSummaryCmd, reportExportCmd} {
		c.Flags().StringVar(&flagFrom, "from", "", "first date YYYY-MM-DD")
		c.Flags().StringVar(&flagTo, "to", "", "last date YYYY-MM-DD")
		c.Flags().BoolVar(&flagPending, "pending", false, "include entries awaiting approval")
	}
	reportSummaryCmd.Flags().Int64Var(&summaryLowStock, "low-stock", 0, "stock alert level (default: server setting)")
	reportExportCmd.Flags().StringVarP(&exportOut, "out", "o", "statements.xlsx", "output file")

	reportCmd.AddCommand(reportTrialCmd, reportLedgerCmd, reportPLCmd, reportBSCmd, reportSummaryCmd, reportExportCmd, reportCheckCmd)
	rootCmd.AddCommand(reportCmd)
}
