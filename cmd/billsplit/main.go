package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/billsplit/pkg/logging"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "billsplit",
		Short: "Split a shared bill with a capped discount, and convert base64 text.",
		Long: `billsplit works on the same state tokens as the web app's share links.

Every calculation runs locally: the discount is spread over participants in equal
shares, never exceeding anyone's own subtotal, and additional fees are split evenly.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Setup()
		},
	}

	rootCmd.AddCommand(SummarizeCmd())
	rootCmd.AddCommand(EncodeCmd())
	rootCmd.AddCommand(DecodeCmd())
	rootCmd.AddCommand(Base64Cmd())

	return rootCmd
}
