package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/ledger"
)

type productFlags struct {
	books.ProductInput
	purchasePrice string
	salePrice     string
	version       int64
}

func (f *productFlags) register(cmd *cobra.Command, update bool) {
	cmd.Flags().StringVar(&f.Name, "name", "", "product name")
	cmd.Flags().StringVar(&f.SKU, "sku", "", "stock keeping unit")
	cmd.Flags().StringVar(&f.Category, "category", "", "product category")
	cmd.Flags().StringVar(&f.Unit, "unit", "pcs", "unit of measure")
	cmd.Flags().StringVar(&f.purchasePrice, "cost", "0", "purchase price per unit")
	cmd.Flags().StringVar(&f.salePrice, "price", "0", "sale price per unit")
	if update {
		cmd.Flags().Int64Var(&f.version, "version", 0, "version the change is based on (default: current)")
	} else {
		cmd.MarkFlagRequired("name")
	}
}

// over applies the flags the user set on top of the current product.
func (f *productFlags) over(cmd *cobra.Command, cur *ledger.Product) (books.ProductInput, int64, error) {
	in := books.ProductInput{
		Name:          cur.Name,
		SKU:           cur.SKU,
		Category:      cur.Category,
		Unit:          cur.Unit,
		PurchasePrice: cur.PurchasePrice,
		SalePrice:     cur.SalePrice,
	}
	version := cur.Version
	fl := cmd.Flags()
	if fl.Changed("name") {
		in.Name = f.Name
	}
	if fl.Changed("sku") {
		in.SKU = f.SKU
	}
	if fl.Changed("category") {
		in.Category = f.Category
	}
	if fl.Changed("unit") {
		in.Unit = f.Unit
	}
	var err error
	if fl.Changed("cost") {
		if in.PurchasePrice, err = ledger.ParseAmount(f.purchasePrice); err != nil {
			return in, 0, err
		}
	}
	if fl.Changed("price") {
		if in.SalePrice, err = ledger.ParseAmount(f.salePrice); err != nil {
			return in, 0, err
		}
	}
	if fl.Changed("version") {
		version = f.version
	}
	return in, version, nil
}

func (f *productFlags) input() (books.ProductInput, error) {
	in := f.ProductInput
	var err error
	if in.PurchasePrice, err = ledger.ParseAmount(f.purchasePrice); err != nil {
		return in, err
	}
	if in.SalePrice, err = ledger.ParseAmount(f.salePrice); err != nil {
		return in, err
	}
	return in, nil
}

var (
	productCreate productFlags
	productUpdate productFlags
)

var productCmd = &cobra.Command{Use: "product", Short: "Manage products and view stock"}

var productCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a product; stock starts at zero and moves only through postings",
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := productCreate.input()
		if err != nil {
			return err
		}
		p, err := newClient().CreateProduct(cmdContext(cmd), in)
		if err != nil {
			return err
		}
		fmt.Printf("Product created: %s (%s)\n", p.Name, p.ID)
		return nil
	},
}

var productUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Edit a product",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cl := newClient()
		cur, err := cl.GetProduct(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		in, version, err := productUpdate.over(cmd, cur)
		if err != nil {
			return err
		}
		p, err := cl.UpdateProduct(cmdContext(cmd), args[0], version, in)
		if err != nil {
			return err
		}
		fmt.Printf("Product %s updated, now version %d\n", p.ID, p.Version)
		return nil
	},
}

var productListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products with stock on hand",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListProducts(cmdContext(cmd), includeDeleted)
		if err != nil {
			return err
		}
		if len(list) == 0 {
			fmt.Println("No products found.")
			return nil
		}
		fmt.Printf("%-36s %-26s %-10s %12s %12s %8s %s\n", "ID", "NAME", "SKU", "COST", "PRICE", "STOCK", "STATUS")
		for _, p := range list {
			fmt.Printf("%-36s %-26s %-10s %12s %12s %8d %s\n",
				p.ID, truncate(p.Name, 26), p.SKU, money(p.PurchasePrice), money(p.SalePrice), p.Stock, p.Lifecycle)
		}
		return nil
	},
}

func init() {
	productCreate.register(productCreateCmd, false)
	productUpdate.register(productUpdateCmd, true)
	productListCmd.Flags().BoolVar(&includeDeleted, "deleted", false, "include deleted records")

	productCmd.AddCommand(productCreateCmd, productUpdateCmd, productListCmd)
	rootCmd.AddCommand(productCmd)
}
