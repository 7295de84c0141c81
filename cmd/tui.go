package cmd

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/logger"
	"github.com/simonvc/minibooks/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long:  "Launch the terminal UI. Without --server it opens --db and serves the API in-process on a loopback port.",
	RunE: func(cmd *cobra.Command, args []string) error {
		// the alt screen owns the terminal; stderr logs would tear it
		log = logger.Discard()

		ctx, cancel := context.WithCancel(cmdContext(cmd))
		defer cancel()

		url, stop, err := apiURL(ctx, cmd)
		if err != nil {
			return err
		}
		defer stop()

		p := tea.NewProgram(tui.NewApp(client.New(url, cfg.User)), tea.WithAltScreen(), tea.WithContext(ctx))
		_, err = p.Run()
		return err
	},
}

// apiURL returns --server when given, otherwise starts an embedded server.
func apiURL(ctx context.Context, cmd *cobra.Command) (string, func(), error) {
	if cmd.Flags().Changed("server") {
		return cfg.Server.URL, func() {}, nil
	}
	return embeddedServer(ctx)
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}
