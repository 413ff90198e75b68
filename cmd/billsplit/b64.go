package main

import (
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mmynk/billsplit/internal/textcodec"
)

// Base64Cmd groups the base64 text converter commands.
func Base64Cmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "b64",
		Short: "Convert text to and from base64.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "encode [text]",
		Short: "Encode text as base64 (reads stdin without an argument).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := argOrStdin(cmd, args)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), textcodec.Encode(text))
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "decode [base64]",
		Short: "Decode base64 into text (reads stdin without an argument).",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := argOrStdin(cmd, args)
			if err != nil {
				return err
			}
			text, err := textcodec.Decode(encoded)
			if err != nil {
				return err
			}
			if !textcodec.IsText(text) {
				slog.Warn("Decoded data is not UTF-8 text, writing raw bytes", "bytes", len(text))
				_, err = io.WriteString(cmd.OutOrStdout(), text)
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), text)
			return nil
		},
	})

	return cmd
}

func argOrStdin(cmd *cobra.Command, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
