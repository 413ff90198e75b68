package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmynk/billsplit/internal/input"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/sharestate"
)

const flagFile = "file"

// EncodeCmd prints the share token for a bill stored as JSON.
func EncodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "encode --file bill.json",
		Short: "Encode a JSON bill into a share token.",
		Args:  cobra.NoArgs,
		Example: `# Encode a bill and print the token
billsplit encode --file dinner.json

# Read the bill from stdin
cat dinner.json | billsplit encode --file -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString(flagFile)
			state, err := readStateFile(cmd, path)
			if err != nil {
				return err
			}
			token, err := sharestate.Encode(state)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().String(flagFile, "", "JSON bill file ('-' for stdin)")
	_ = cmd.MarkFlagRequired(flagFile)
	return cmd
}

// DecodeCmd prints the bill behind a share token as JSON.
func DecodeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "decode [token]",
		Short: "Decode a share token into a JSON bill.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := sharestate.Parse(args[0])
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(state)
		},
	}
}

// readStateFile loads and validates a JSON bill, filling in missing IDs. "-" reads from the command's stdin.
func readStateFile(cmd *cobra.Command, path string) (models.BillState, error) {
	var r io.Reader
	switch path {
	case "":
		return models.BillState{}, errors.New("no bill file given")
	case "-":
		r = cmd.InOrStdin()
	default:
		f, err := os.Open(path)
		if err != nil {
			return models.BillState{}, fmt.Errorf("failed to open bill file: %w", err)
		}
		defer f.Close()
		r = f
	}

	var state models.BillState
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&state); err != nil {
		return models.BillState{}, fmt.Errorf("failed to parse bill file: %w", err)
	}
	input.AssignIDs(&state)
	if err := input.Validate(state); err != nil {
		return models.BillState{}, err
	}
	return state, nil
}
