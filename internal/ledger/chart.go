package ledger

// ChartEntry is a seed row of the default chart of accounts.
type ChartEntry struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Type        AccountType `json:"type"`
	Description string      `json:"description"`
}

// DefaultChart is seeded on first start and covers every account role in
// DefaultAccountMap.
var DefaultChart = []ChartEntry{
	{ID: "101", Name: "Cash", Type: Asset, Description: "Cash on hand and in bank"},
	{ID: "102", Name: "Accounts Receivable", Type: Asset, Description: "Amounts owed by customers on credit sales"},
	{ID: "103", Name: "Inventory", Type: Asset, Description: "Goods held for sale, valued at purchase price"},
	{ID: "104", Name: "Input Tax Credit", Type: Asset, Description: "Tax paid on purchases, reclaimable"},
	{ID: "201", Name: "Accounts Payable", Type: Liability, Description: "Amounts owed to suppliers on credit purchases"},
	{ID: "202", Name: "Sales Tax Payable", Type: Liability, Description: "Tax collected on sales, owed to the authority"},
	{ID: "301", Name: "Owner's Equity", Type: Equity, Description: "Owner contributions and withdrawals"},
	{ID: "401", Name: "Sales Revenue", Type: Revenue, Description: "Income from goods sold"},
	{ID: "501", Name: "Cost of Goods Sold", Type: ExpenseAccount, Description: "Purchase cost of goods sold"},
	{ID: "502", Name: "Rent Expense", Type: ExpenseAccount, Description: "Premises rent"},
	{ID: "503", Name: "Utilities Expense", Type: ExpenseAccount, Description: "Electricity, water, internet and other utilities"},
}

// LookupChartEntry finds a seed entry by account id.
func LookupChartEntry(id string) *ChartEntry {
	for i := range DefaultChart {
		if DefaultChart[i].ID == id {
			return &DefaultChart[i]
		}
	}
	return nil
}

// Chart is an in-memory account registry keyed by id, in chart order.
type Chart struct {
	accounts []Account
	byID     map[string]int
}

func NewChart(accounts []Account) *Chart {
	c := &Chart{accounts: accounts, byID: make(map[string]int, len(accounts))}
	for i, a := range accounts {
		c.byID[a.ID] = i
	}
	return c
}

func (c *Chart) Get(id string) (Account, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Account{}, false
	}
	return c.accounts[i], true
}

func (c *Chart) Accounts() []Account {
	return c.accounts
}
