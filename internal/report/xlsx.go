package report

import (
	"fmt"
	"io"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

// Statements bundles the reports exported together.
type Statements struct {
	Period       Period         `json:"period"`
	TrialBalance *TrialBalance  `json:"trial_balance"`
	ProfitLoss   *ProfitAndLoss `json:"profit_and_loss"`
	BalanceSheet *BalanceSheet  `json:"balance_sheet"`
}

// WriteXLSX writes one worksheet per statement.
func WriteXLSX(w io.Writer, st *Statements) error {
	f := excelize.NewFile()
	defer f.Close()

	const tbSheet = "Trial Balance"
	if err := f.SetSheetName("Sheet1", tbSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	sw := sheetWriter{f: f, sheet: tbSheet}
	sw.row("Account", "Name", "Type", "Debit", "Credit")
	for _, l := range st.TrialBalance.Lines {
		sw.row(l.AccountID, l.AccountName, string(l.AccountType), money(l.Debit), money(l.Credit))
	}
	sw.row("", "Total", "", money(st.TrialBalance.TotalDebit), money(st.TrialBalance.TotalCredit))
	sw.widths(map[string]float64{"A": 10, "B": 32, "C": 12, "D": 14, "E": 14})

	sw, err := newSheet(f, "Profit and Loss")
	if err != nil {
		return err
	}
	sw.row("Revenue")
	for _, a := range st.ProfitLoss.RevenueLines {
		sw.row(a.AccountName, money(a.Amount))
	}
	sw.row("Total Revenue", money(st.ProfitLoss.Revenue))
	sw.row("Cost of Goods Sold", money(st.ProfitLoss.COGS))
	sw.row("Gross Profit", money(st.ProfitLoss.GrossProfit))
	sw.row("Expenses")
	for _, a := range st.ProfitLoss.ExpenseLines {
		sw.row(a.AccountName, money(a.Amount))
	}
	sw.row("Operating Expenses", money(st.ProfitLoss.OperatingExpenses))
	sw.row("Net Profit", money(st.ProfitLoss.NetProfit))
	sw.widths(map[string]float64{"A": 36, "B": 14})

	sw, err = newSheet(f, "Balance Sheet")
	if err != nil {
		return err
	}
	section := func(title string, lines []Amount, total decimal.Decimal) {
		sw.row(title)
		for _, a := range lines {
			sw.row(a.AccountName, money(a.Amount))
		}
		sw.row("Total "+title, money(total))
	}
	section("Assets", st.BalanceSheet.Assets, st.BalanceSheet.TotalAssets)
	section("Liabilities", st.BalanceSheet.Liabilities, st.BalanceSheet.TotalLiabilities)
	section("Equity", st.BalanceSheet.Equity, st.BalanceSheet.TotalEquity)
	sw.row("Total Liabilities and Equity", money(st.BalanceSheet.TotalLiabilitiesAndEquity))
	sw.widths(map[string]float64{"A": 36, "B": 14})

	if sw.err != nil {
		return sw.err
	}
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

type sheetWriter struct {
	f     *excelize.File
	sheet string
	next  int
	err   error
}

func newSheet(f *excelize.File, name string) (sheetWriter, error) {
	if _, err := f.NewSheet(name); err != nil {
		return sheetWriter{}, fmt.Errorf("new sheet %s: %w", name, err)
	}
	return sheetWriter{f: f, sheet: name}, nil
}

func (s *sheetWriter) row(values ...any) {
	s.next++
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, s.next)
		if err == nil {
			err = s.f.SetCellValue(s.sheet, cell, v)
		}
		if err != nil && s.err == nil {
			s.err = fmt.Errorf("%s: %w", s.sheet, err)
		}
	}
}

func (s *sheetWriter) widths(cols map[string]float64) {
	for col, w := range cols {
		if err := s.f.SetColWidth(s.sheet, col, col, w); err != nil && s.err == nil {
			s.err = err
		}
	}
}

func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
