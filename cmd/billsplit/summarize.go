package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mmynk/billsplit/internal/calculator"
	"github.com/mmynk/billsplit/internal/input"
	"github.com/mmynk/billsplit/internal/models"
	"github.com/mmynk/billsplit/internal/sharestate"
)

const (
	flagKind     = "kind"
	flagDiscount = "discount"
	flagCap      = "cap"
	flagMinSpend = "min-spend"
	flagJSON     = "json"
)

// SummarizeCmd prints every participant's share of a bill.
func SummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [token]",
		Short: "Show what each participant owes.",
		Long: `Show what each participant owes.

The bill comes from a share token argument or from --file. Discount flags override
the bill's discount; amounts accept formatted input such as "Rp 50.000".`,
		Args: cobra.MaximumNArgs(1),
		Example: `# Summarize a shared bill
billsplit summarize CAESBgoE...

# Apply a 10% discount capped at 5000 to a JSON bill
billsplit summarize --file dinner.json --kind percentage --discount 10 --cap 5.000`,
		RunE: runSummarize,
	}

	cmd.Flags().String(flagFile, "", "JSON bill file ('-' for stdin)")
	cmd.Flags().String(flagKind, "", "discount kind override: percentage or flat")
	cmd.Flags().String(flagDiscount, "", "discount value override")
	cmd.Flags().String(flagCap, "", "discount cap override ('none' for uncapped)")
	cmd.Flags().String(flagMinSpend, "", "minimum spend override")
	cmd.Flags().Bool(flagJSON, false, "print the summary as JSON")

	return cmd
}

func runSummarize(cmd *cobra.Command, args []string) error {
	path, _ := cmd.Flags().GetString(flagFile)

	var state models.BillState
	switch {
	case len(args) == 1 && path != "":
		return errors.New("pass either a token or --file, not both")
	case len(args) == 1:
		parsed, err := sharestate.Parse(args[0])
		if err != nil {
			return err
		}
		state = parsed
	case path != "":
		parsed, err := readStateFile(cmd, path)
		if err != nil {
			return err
		}
		state = parsed
	default:
		return errors.New("a token or --file is required")
	}

	if err := applyDiscountFlags(cmd, &state.Discount); err != nil {
		return err
	}

	summary := calculator.Calculate(state)

	if asJSON, _ := cmd.Flags().GetBool(flagJSON); asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}
	return printSummary(cmd.OutOrStdout(), summary)
}

// applyDiscountFlags overrides the discount with any flags that were set.
func applyDiscountFlags(cmd *cobra.Command, discount *models.DiscountConfig) error {
	flags := cmd.Flags()

	if flags.Changed(flagKind) {
		kind, _ := flags.GetString(flagKind)
		switch models.DiscountKind(strings.ToLower(kind)) {
		case models.DiscountPercentage:
			discount.Kind = models.DiscountPercentage
		case models.DiscountFlat:
			discount.Kind = models.DiscountFlat
		default:
			return fmt.Errorf("unknown discount kind %q", kind)
		}
	}
	if flags.Changed(flagDiscount) {
		raw, _ := flags.GetString(flagDiscount)
		discount.Value = input.Amount(raw)
	}
	if flags.Changed(flagMinSpend) {
		raw, _ := flags.GetString(flagMinSpend)
		discount.MinimumSpend = input.Amount(raw)
	}
	if flags.Changed(flagCap) {
		raw, _ := flags.GetString(flagCap)
		if strings.EqualFold(strings.TrimSpace(raw), "none") {
			discount.Cap = nil
		} else {
			discount.Cap = models.CapAmount(input.Amount(raw))
		}
	}
	return nil
}

func printSummary(out io.Writer, summary models.BillSummary) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "NAME\tSUBTOTAL\tDISCOUNT\tAFTER DISCOUNT\tFEES\tTOTAL\t")
	for _, p := range summary.Participants {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t\n",
			p.Name,
			formatAmount(p.Subtotal),
			formatAmount(p.Discount()),
			formatAmount(p.DiscountedSubtotal),
			formatAmount(p.SharedFeeShare),
			formatAmount(p.Total),
		)
	}
	t := summary.Totals
	fmt.Fprintf(w, "TOTAL\t%s\t%s\t%s\t%s\t%s\t\n",
		formatAmount(t.Subtotal),
		formatAmount(t.Subtotal-t.DiscountedSubtotal),
		formatAmount(t.DiscountedSubtotal),
		formatAmount(t.SharedFeeShare),
		formatAmount(t.Total),
	)
	if err := w.Flush(); err != nil {
		return err
	}

	if summary.Undistributed > 0 {
		fmt.Fprintf(out, "\nnote: %s of the discount could not be applied (it exceeds the bill)\n",
			formatAmount(summary.Undistributed))
	}
	if !summary.MinimumSpendMet {
		fmt.Fprintln(out, "\nnote: the bill does not reach the discount's minimum spend")
	}
	return nil
}

// amountPrinter groups digits the way the UI's en-US formatting does.
var amountPrinter = message.NewPrinter(language.English)

// formatAmount prints an amount with thousands separators, keeping up to two decimals.
func formatAmount(v float64) string {
	s := amountPrinter.Sprintf("%.2f", v)
	return strings.TrimSuffix(strings.TrimRight(s, "0"), ".")
}
