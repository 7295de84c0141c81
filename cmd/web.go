package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/web"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Serve the terminal UI in a browser",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		url, stopAPI, err := apiURL(ctx, cmd)
		if err != nil {
			return err
		}
		defer stopAPI()

		srv := web.NewServer(web.Options{Addr: cfg.Web.Addr, APIURL: url, User: cfg.User}, log)
		return srv.ListenAndServe(ctx)
	},
}

func init() {
	webCmd.Flags().String("addr", ":8080", "HTTP listen address for the web terminal")
	if err := v.BindPFlag("web.addr", webCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(webCmd)
}
