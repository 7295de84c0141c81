package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/ledger"
	"github.com/simonvc/minibooks/internal/store"
)

// parseLine reads "account:dr|cr:amount" with an optional
// ":product_id:quantity" suffix for inventory lines.
func parseLine(s string) (ledger.Line, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 && len(parts) != 5 {
		return ledger.Line{}, fmt.Errorf("invalid line %q, expected account:dr|cr:amount[:product:qty]", s)
	}
	amount, err := ledger.ParseAmount(parts[2])
	if err != nil {
		return ledger.Line{}, err
	}
	var l ledger.Line
	switch strings.ToLower(parts[1]) {
	case "dr", "debit":
		l = ledger.DebitLine(parts[0], amount)
	case "cr", "credit":
		l = ledger.CreditLine(parts[0], amount)
	default:
		return ledger.Line{}, fmt.Errorf("invalid side %q in line %q, expected dr or cr", parts[1], s)
	}
	if len(parts) == 5 {
		qty, err := strconv.ParseInt(parts[4], 10, 64)
		if err != nil {
			return ledger.Line{}, fmt.Errorf("invalid quantity in line %q: %w", s, err)
		}
		l.ProductID, l.Quantity = parts[3], qty
	}
	return l, nil
}

var (
	jeDate        string
	jeDescription string
	jeLines       []string
	jeStatus      string
	jeLimit       int
)

var journalCmd = &cobra.Command{
	Use:     "journal",
	Aliases: []string{"je"},
	Short:   "Post, approve and inspect journal entries",
}

var journalPostCmd = &cobra.Command{
	Use:   "post",
	Short: "Post a manual journal entry for approval",
	Long: `Post a balanced journal entry. It stays pending until approved.
Each --line is "account:dr|cr:amount", e.g. --line 101:dr:500 --line 301:cr:500.
Inventory lines may name a product and signed quantity: 103:cr:20:<product-id>:-2.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		date, err := parseDate(jeDate)
		if err != nil {
			return err
		}
		draft := books.EntryDraft{Date: date, Description: jeDescription}
		for _, s := range jeLines {
			l, err := parseLine(s)
			if err != nil {
				return err
			}
			draft.Lines = append(draft.Lines, l)
		}
		e, err := newClient().PostEntry(cmdContext(cmd), draft)
		if err != nil {
			return err
		}
		fmt.Printf("Journal entry posted: %s (%s)\n", e.ID, e.Status)
		printEntryLines(e)
		return nil
	},
}

var journalApproveCmd = &cobra.Command{
	Use:   "approve [id]",
	Short: "Approve a pending journal entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newClient().ApproveEntry(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Journal entry %s approved by %s\n", e.ID, e.ApprovedBy)
		return nil
	},
}

var journalGetCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a journal entry",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := newClient().GetEntry(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		fmt.Printf("ID:          %s\n", e.ID)
		fmt.Printf("Date:        %s\n", date(e.Date))
		fmt.Printf("Description: %s\n", e.Description)
		fmt.Printf("Status:      %s / %s\n", e.Status, e.Lifecycle)
		if e.SourceType != "" {
			fmt.Printf("Source:      %s %s\n", e.SourceType.Label(), e.SourceID)
		}
		fmt.Printf("Created:     %s by %s\n", e.CreatedAt.Format("2006-01-02 15:04"), e.CreatedBy)
		printEntryLines(e)
		return nil
	},
}

var journalListCmd = &cobra.Command{
	Use:   "list",
	Short: "List journal entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter := store.EntryFilter{Status: ledger.Approval(jeStatus), IncludeDeleted: includeDeleted, Limit: jeLimit}
		rq, err := reportQuery()
		if err != nil {
			return err
		}
		filter.From, filter.To = rq.Period.From, rq.Period.To

		entries, err := newClient().ListEntries(cmdContext(cmd), filter)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Println("No journal entries found.")
			return nil
		}
		fmt.Printf("%-36s %-10s %-36s %14s %-17s %s\n", "ID", "DATE", "DESCRIPTION", "AMOUNT", "STATUS", "SOURCE")
		for _, e := range entries {
			debits, _ := e.Totals()
			fmt.Printf("%-36s %-10s %-36s %14s %-17s %s\n",
				e.ID, date(e.Date), truncate(e.Description, 36), money(debits), e.Status, e.SourceType)
		}
		return nil
	},
}

func printEntryLines(e *ledger.JournalEntry) {
	fmt.Printf("  %-8s %14s %14s  %s\n", "ACCOUNT", "DEBIT", "CREDIT", "PRODUCT")
	for _, l := range e.Lines {
		product := ""
		if l.ProductID != "" {
			product = fmt.Sprintf("%s x%d", l.ProductID, l.Quantity)
		}
		fmt.Printf("  %-8s %14s %14s  %s\n", l.AccountID, blankZero(l.Debit), blankZero(l.Credit), product)
	}
	debits, credits := e.Totals()
	fmt.Printf("  %-8s %14s %14s\n", "", money(debits), money(credits))
}

func blankZero(d decimal.Decimal) string {
	if d.IsZero() {
		return ""
	}
	return money(d)
}

func init() {
	journalPostCmd.Flags().StringVar(&jeDate, "date", "", "date YYYY-MM-DD (default: today)")
	journalPostCmd.Flags().StringVar(&jeDescription, "description", "", "narration")
	journalPostCmd.Flags().StringArrayVar(&jeLines, "line", nil, "account:dr|cr:amount[:product:qty], repeatable")
	journalPostCmd.MarkFlagRequired("description")
	journalPostCmd.MarkFlagRequired("line")

	journalListCmd.Flags().StringVar(&jeStatus, "status", "", "pending_approval or approved")
	journalListCmd.Flags().StringVar(&flagFrom, "from", "", "first date YYYY-MM-DD")
	journalListCmd.Flags().StringVar(&flagTo, "to", "", "last date YYYY-MM-DD")
	journalListCmd.Flags().IntVar(&jeLimit, "limit", 0, "maximum entries")
	journalListCmd.Flags().BoolVar(&includeDeleted, "deleted", false, "include deleted entries")

	journalCmd.AddCommand(journalPostCmd, journalApproveCmd, journalGetCmd, journalListCmd)
	rootCmd.AddCommand(journalCmd)
}
