package cmd

import (
	"context"
	"net"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonvc/minibooks/internal/client"
	"github.com/simonvc/minibooks/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, st, err := openService()
		if err != nil {
			return err
		}
		defer st.Close()

		ctx, stop := signal.NotifyContext(cmdContext(cmd), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if report, err := svc.CheckIntegrity(ctx, cfg.User); err == nil && !report.OK() {
			log.Warn().Int("mismatches", len(report.Mismatches)).Msg("ledger integrity check failed at startup")
		}

		return server.New(svc, cfg.Server, log).ListenAndServe(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", ":8888", "listen address")
	if err := v.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr")); err != nil {
		panic(err)
	}
	rootCmd.AddCommand(serveCmd)
}

// embeddedServer runs the API on a loopback port for the lifetime of ctx
// and returns its URL once it answers.
func embeddedServer(ctx context.Context) (string, func(), error) {
	svc, st, err := openService()
	if err != nil {
		return "", nil, err
	}
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		st.Close()
		return "", nil, err
	}

	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := server.New(svc, cfg.Server, log).Serve(ctx, ln); err != nil {
			log.Error().Err(err).Msg("embedded server stopped")
		}
	}()
	stop := func() {
		cancel()
		<-done
		st.Close()
	}

	url := "http://" + ln.Addr().String()
	c := client.New(url, cfg.User)
	waitCtx, waitCancel := context.WithTimeout(ctx, 5*time.Second)
	defer waitCancel()
	for c.Ping(waitCtx) != nil {
		if waitCtx.Err() != nil {
			stop()
			return "", nil, waitCtx.Err()
		}
		time.Sleep(50 * time.Millisecond)
	}
	return url, stop, nil
}
