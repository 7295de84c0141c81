package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/auth"
	"github.com/simonvc/minibooks/internal/books"
)

var (
	userIn     books.UserInput
	userRole   string
	userActive bool
)

var userCmd = &cobra.Command{Use: "user", Short: "Manage users and roles"}

var userCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Add a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := userIn
		in.Role, in.Active = auth.Role(userRole), true
		u, err := newClient().CreateUser(cmdContext(cmd), in)
		if err != nil {
			return err
		}
		fmt.Printf("User created: %s (%s, %s)\n", u.ID, u.Name, u.Role)
		return nil
	},
}

var userUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Change a user's name, email, role or active flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := userIn
		in.Role, in.Active = auth.Role(userRole), userActive
		u, err := newClient().UpdateUser(cmdContext(cmd), args[0], in)
		if err != nil {
			return err
		}
		fmt.Printf("User %s updated (%s, active %v)\n", u.ID, u.Role, u.Active)
		return nil
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		users, err := newClient().ListUsers(cmdContext(cmd))
		if err != nil {
			return err
		}
		fmt.Printf("%-12s %-24s %-28s %-22s %s\n", "ID", "NAME", "EMAIL", "ROLE", "ACTIVE")
		for _, u := range users {
			fmt.Printf("%-12s %-24s %-28s %-22s %v\n", u.ID, truncate(u.Name, 24), truncate(u.Email, 28), u.Role, u.Active)
		}
		return nil
	},
}

var userRolesCmd = &cobra.Command{
	Use:   "roles",
	Short: "List roles and what they may do",
	Run: func(cmd *cobra.Command, args []string) {
		for _, r := range auth.AllRoles {
			perms := r.Permissions()
			if perms == nil {
				fmt.Printf("%s: everything\n", r)
				continue
			}
			fmt.Printf("%s:\n", r)
			for _, p := range perms {
				fmt.Printf("  %s\n", p)
			}
		}
	},
}

func init() {
	for _, c := range []*cobra.Command{userCreateCmd, userUpdateCmd} {
		c.Flags().StringVar(&userIn.Name, "name", "", "display name")
		c.Flags().StringVar(&userIn.Email, "email", "", "email address")
		c.Flags().StringVar(&userRole, "role", "", "role, e.g. \"Sales Staff\"")
		c.MarkFlagRequired("name")
		c.MarkFlagRequired("role")
	}
	userCreateCmd.Flags().StringVar(&userIn.ID, "id", "", "user id (default: generated)")
	userUpdateCmd.Flags().BoolVar(&userActive, "active", true, "whether the user may act")

	userCmd.AddCommand(userCreateCmd, userUpdateCmd, userListCmd, userRolesCmd)
	rootCmd.AddCommand(userCmd)
}
