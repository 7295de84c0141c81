package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/ledger"
)

// parseItem reads "product_id:quantity:unit_price".
func parseItem(s string) (ledger.Item, error) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return ledger.Item{}, fmt.Errorf("invalid item %q, expected product_id:quantity:price", s)
	}
	qty, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return ledger.Item{}, fmt.Errorf("invalid quantity in item %q: %w", s, err)
	}
	price, err := ledger.ParseAmount(parts[2])
	if err != nil {
		return ledger.Item{}, err
	}
	return ledger.Item{ProductID: parts[0], Quantity: qty, Price: price}, nil
}

type tradeFlags struct {
	invoice      string
	counterparty string
	date         string
	items        []string
	taxRate      string
	payment      string
}

func (f *tradeFlags) register(cmd *cobra.Command, party string) {
	cmd.Flags().StringVar(&f.invoice, "invoice", "", "invoice number (default: next in sequence)")
	cmd.Flags().StringVar(&f.counterparty, party, "", party+" id")
	cmd.Flags().StringVar(&f.date, "date", "", "date YYYY-MM-DD (default: today)")
	cmd.Flags().StringArrayVar(&f.items, "item", nil, "product_id:quantity:price, repeatable")
	cmd.Flags().StringVar(&f.taxRate, "tax", "0", "tax rate in percent")
	cmd.Flags().StringVar(&f.payment, "payment", "Cash", "Cash or Credit")
	cmd.MarkFlagRequired(party)
	cmd.MarkFlagRequired("item")
}

func (f *tradeFlags) draft() (books.TradeDraft, error) {
	var d books.TradeDraft
	var err error
	if d.Date, err = parseDate(f.date); err != nil {
		return d, err
	}
	if d.TaxRate, err = ledger.ParseAmount(f.taxRate); err != nil {
		return d, err
	}
	if d.PaymentMethod, err = ledger.ParsePaymentMethod(f.payment); err != nil {
		return d, err
	}
	for _, s := range f.items {
		it, err := parseItem(s)
		if err != nil {
			return d, err
		}
		d.Items = append(d.Items, it)
	}
	d.InvoiceNumber = f.invoice
	d.CounterpartyID = f.counterparty
	return d, nil
}

func printTotals(invoice string, t ledger.Totals, entryID string) {
	fmt.Printf("Invoice:  %s\n", invoice)
	fmt.Printf("Subtotal: %12s\n", money(t.Subtotal))
	fmt.Printf("Tax (%s%%): %10s\n", t.TaxRate.String(), money(t.TaxAmount))
	fmt.Printf("Total:    %12s\n", money(t.Total))
	fmt.Printf("Entry:    %s\n", entryID)
}

var (
	saleFlags     tradeFlags
	purchaseFlags tradeFlags
)

var saleCmd = &cobra.Command{Use: "sale", Short: "Record and list sales"}

var saleRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a sale, posting revenue, tax, COGS and the stock movement",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := saleFlags.draft()
		if err != nil {
			return err
		}
		s, err := newClient().RecordSale(cmdContext(cmd), d)
		if err != nil {
			return err
		}
		fmt.Printf("Sale recorded: %s\n", s.ID)
		printTotals(s.InvoiceNumber, s.Totals, s.JournalEntryID)
		return nil
	},
}

var saleListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sales",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListSales(cmdContext(cmd), includeDeleted)
		if err != nil {
			return err
		}
		rows := make([]tradeRow, len(list))
		for i, s := range list {
			rows[i] = tradeRow{s.Date.Format(ledger.DateLayout), s.InvoiceNumber, s.CustomerID, s.PaymentMethod, s.Total, s.Lifecycle}
		}
		printTrades(rows)
		return nil
	},
}

var purchaseCmd = &cobra.Command{Use: "purchase", Short: "Record and list purchases"}

var purchaseRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a purchase, posting inventory and input tax",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := purchaseFlags.draft()
		if err != nil {
			return err
		}
		p, err := newClient().RecordPurchase(cmdContext(cmd), d)
		if err != nil {
			return err
		}
		fmt.Printf("Purchase recorded: %s\n", p.ID)
		printTotals(p.InvoiceNumber, p.Totals, p.JournalEntryID)
		return nil
	},
}

var purchaseListCmd = &cobra.Command{
	Use:   "list",
	Short: "List purchases",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListPurchases(cmdContext(cmd), includeDeleted)
		if err != nil {
			return err
		}
		rows := make([]tradeRow, len(list))
		for i, p := range list {
			rows[i] = tradeRow{p.Date.Format(ledger.DateLayout), p.InvoiceNumber, p.SupplierID, p.PaymentMethod, p.Total, p.Lifecycle}
		}
		printTrades(rows)
		return nil
	},
}

type tradeRow struct {
	date, invoice, party string
	payment              ledger.PaymentMethod
	total                decimal.Decimal
	lifecycle            ledger.Lifecycle
}

func printTrades(rows []tradeRow) {
	if len(rows) == 0 {
		fmt.Println("None found.")
		return
	}
	fmt.Printf("%-10s %-16s %-36s %-7s %14s %s\n", "DATE", "INVOICE", "COUNTERPARTY", "PAID", "TOTAL", "STATUS")
	for _, r := range rows {
		fmt.Printf("%-10s %-16s %-36s %-7s %14s %s\n", r.date, r.invoice, r.party, r.payment, money(r.total), r.lifecycle)
	}
}

var (
	invoiceType  string
	invoiceParty string
)

var invoiceCmd = &cobra.Command{Use: "invoice", Short: "Invoice numbering"}

var invoiceNextCmd = &cobra.Command{
	Use:   "next",
	Short: "Preview the next invoice number for a counterparty",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := ledger.ParseRecordType(invoiceType)
		if err != nil {
			return err
		}
		n, err := newClient().NextInvoiceNumber(cmdContext(cmd), rt, invoiceParty)
		if err != nil {
			return err
		}
		fmt.Println(n)
		return nil
	},
}

func init() {
	saleFlags.register(saleRecordCmd, "customer")
	purchaseFlags.register(purchaseRecordCmd, "supplier")
	saleListCmd.Flags().BoolVar(&includeDeleted, "deleted", false, "include deleted records")
	purchaseListCmd.Flags().BoolVar(&includeDeleted, "deleted", false, "include deleted records")

	invoiceNextCmd.Flags().StringVar(&invoiceType, "type", "sale", "sale or purchase")
	invoiceNextCmd.Flags().StringVar(&invoiceParty, "name", "", "counterparty name")
	invoiceNextCmd.MarkFlagRequired("name")
	invoiceCmd.AddCommand(invoiceNextCmd)

	saleCmd.AddCommand(saleRecordCmd, saleListCmd)
	purchaseCmd.AddCommand(purchaseRecordCmd, purchaseListCmd)
	rootCmd.AddCommand(saleCmd, purchaseCmd, invoiceCmd)
}
