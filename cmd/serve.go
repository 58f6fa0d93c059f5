package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/KaramelBytes/molscope-cli/internal/gateway"
)

var (
	serveAddr     string
	serveModelURL string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the /api gateway in front of the model service",
	Long: `Serve POST /api/predict, /api/generate-counterfactuals and
/api/explore-chemical-space, forwarding each request to the model service.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := requireConfig()
		if err != nil {
			return err
		}
		addr := c.ListenAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		modelURL := c.ModelServiceURL
		if serveModelURL != "" {
			modelURL = serveModelURL
		}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		gw := gateway.New(modelURL, gateway.WithLogger(logger))
		fmt.Printf("✓ Listening on %s, forwarding to %s\n", addr, modelURL)
		return gw.ListenAndServe(ctx, addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides listen_addr)")
	serveCmd.Flags().StringVar(&serveModelURL, "model-url", "", "model service URL (overrides model_service_url)")
}
