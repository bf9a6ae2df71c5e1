package cmd

import (
	"jobbots/services/ingestion/internal/api"

	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides HTTP_ADDR)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the job API over HTTP until interrupted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		addr := rt.Config.HTTPAddr
		if serveAddr != "" {
			addr = serveAddr
		}
		handler := api.NewHandler(rt.Service, rt.Logger)
		return api.Serve(cmd.Context(), api.NewServer(addr, handler), rt.Logger)
	},
}
