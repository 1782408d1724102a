package cmd

import (
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/kpilens/internal/web"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report page and its JSON API",
	Example: `  kpilens serve
  STORE_ID=./kpi.xlsx LLM_API_KEY=... kpilens serve --addr 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := ensureConfig()
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		srv, err := web.New(newAccessor(c), newProxy(c), web.Options{
			PageTitle:    c.PageTitle,
			ScanColumns:  scanColumns(c),
			ScanPolicy:   scanPolicy(c),
			WriteTimeout: httpTimeout(c) + 30*time.Second,
			Logger:       appLogger(),
		})
		if err != nil {
			return err
		}
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from listen_addr)")
}
