package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/books"
	"github.com/simonvc/minibooks/internal/ledger"
)

type contactFlags struct {
	books.ContactInput
	version int64
}

func (f *contactFlags) register(cmd *cobra.Command, update bool) {
	cmd.Flags().StringVar(&f.Name, "name", "", "name")
	cmd.Flags().StringVar(&f.Email, "email", "", "email address")
	cmd.Flags().StringVar(&f.Phone, "phone", "", "phone number")
	cmd.Flags().StringVar(&f.Address, "address", "", "postal address")
	if update {
		cmd.Flags().Int64Var(&f.version, "version", 0, "version the change is based on (default: current)")
	} else {
		cmd.MarkFlagRequired("name")
	}
}

// over applies the flags the user set on top of the current values.
func (f *contactFlags) over(cmd *cobra.Command, cur books.ContactInput, curVersion int64) (books.ContactInput, int64) {
	fl := cmd.Flags()
	if fl.Changed("name") {
		cur.Name = f.Name
	}
	if fl.Changed("email") {
		cur.Email = f.Email
	}
	if fl.Changed("phone") {
		cur.Phone = f.Phone
	}
	if fl.Changed("address") {
		cur.Address = f.Address
	}
	if fl.Changed("version") {
		curVersion = f.version
	}
	return cur, curVersion
}

type contactRow struct {
	id, name, email, phone string
	lifecycle              ledger.Lifecycle
	version                int64
}

func printContacts(rows []contactRow) {
	if len(rows) == 0 {
		fmt.Println("None found.")
		return
	}
	fmt.Printf("%-36s %-28s %-26s %-14s %-16s %s\n", "ID", "NAME", "EMAIL", "PHONE", "STATUS", "VER")
	for _, r := range rows {
		fmt.Printf("%-36s %-28s %-26s %-14s %-16s %d\n",
			r.id, truncate(r.name, 28), truncate(r.email, 26), r.phone, r.lifecycle, r.version)
	}
}

var includeDeleted bool

var (
	customerCreate contactFlags
	customerUpdate contactFlags
	supplierCreate contactFlags
	supplierUpdate contactFlags
)

var customerCmd = &cobra.Command{Use: "customer", Short: "Manage customers"}

var customerCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a customer",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient().CreateCustomer(cmdContext(cmd), customerCreate.ContactInput)
		if err != nil {
			return err
		}
		fmt.Printf("Customer created: %s (%s)\n", c.Name, c.ID)
		return nil
	},
}

var customerUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Edit a customer",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cl := newClient()
		cur, err := cl.GetCustomer(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		in, version := customerUpdate.over(cmd, books.ContactInput{Name: cur.Name, Email: cur.Email, Phone: cur.Phone, Address: cur.Address}, cur.Version)
		c, err := cl.UpdateCustomer(cmdContext(cmd), args[0], version, in)
		if err != nil {
			return err
		}
		fmt.Printf("Customer %s updated, now version %d\n", c.ID, c.Version)
		return nil
	},
}

var customerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List customers",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListCustomers(cmdContext(cmd), includeDeleted)
		if err != nil {
			return err
		}
		rows := make([]contactRow, len(list))
		for i, c := range list {
			rows[i] = contactRow{c.ID, c.Name, c.Email, c.Phone, c.Lifecycle, c.Version}
		}
		printContacts(rows)
		return nil
	},
}

var supplierCmd = &cobra.Command{Use: "supplier", Short: "Manage suppliers"}

var supplierCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a supplier",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newClient().CreateSupplier(cmdContext(cmd), supplierCreate.ContactInput)
		if err != nil {
			return err
		}
		fmt.Printf("Supplier created: %s (%s)\n", s.Name, s.ID)
		return nil
	},
}

var supplierUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Edit a supplier",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cl := newClient()
		cur, err := cl.GetSupplier(cmdContext(cmd), args[0])
		if err != nil {
			return err
		}
		in, version := supplierUpdate.over(cmd, books.ContactInput{Name: cur.Name, Email: cur.Email, Phone: cur.Phone, Address: cur.Address}, cur.Version)
		s, err := cl.UpdateSupplier(cmdContext(cmd), args[0], version, in)
		if err != nil {
			return err
		}
		fmt.Printf("Supplier %s updated, now version %d\n", s.ID, s.Version)
		return nil
	},
}

var supplierListCmd = &cobra.Command{
	Use:   "list",
	Short: "List suppliers",
	RunE: func(cmd *cobra.Command, args []string) error {
		list, err := newClient().ListSuppliers(cmdContext(cmd), includeDeleted)
		if err != nil {
			return err
		}
		rows := make([]contactRow, len(list))
		for i, s := range list {
			rows[i] = contactRow{s.ID, s.Name, s.Email, s.Phone, s.Lifecycle, s.Version}
		}
		printContacts(rows)
		return nil
	},
}

func init() {
	customerCreate.register(customerCreateCmd, false)
	customerUpdate.register(customerUpdateCmd, true)
	supplierCreate.register(supplierCreateCmd, false)
	supplierUpdate.register(supplierUpdateCmd, true)
	customerListCmd.Flags().BoolVar(&includeDeleted, "deleted", false, "include deleted records")
	supplierListCmd.Flags().BoolVar(&includeDeleted, "deleted", false, "include deleted records")

	customerCmd.AddCommand(customerCreateCmd, customerUpdateCmd, customerListCmd)
	supplierCmd.AddCommand(supplierCreateCmd, supplierUpdateCmd, supplierListCmd)
	rootCmd.AddCommand(customerCmd, supplierCmd)
}
