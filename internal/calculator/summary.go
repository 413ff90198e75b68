package calculator

import (
	"log/slog"
	"math"

	"github.com/mmynk/billsplit/internal/models"
)

// undistributedEpsilon ignores float noise when checking for a leftover discount.
const undistributedEpsilon = 1e-6

// Summarize computes every participant's share of the bill.
//
// Algorithm:
//   - shared_fee_share = Σ fees / max(1, participants)
//   - allocation = AllocateDiscount(participants, ComputeTotalDiscount(...))
//   - discounted_subtotal = max(0, subtotal - allocation[id])
//   - total = discounted_subtotal + shared_fee_share
//
// The result keeps the input order. Inputs are assumed to be sanitized
// non-negative numbers; nothing is validated here.
func Summarize(participants []models.Participant, discount models.DiscountConfig, fees []models.AdditionalFee) []models.ParticipantSummary {
	feeShare := sharedFeeShare(fees, len(participants))
	allocation := AllocateDiscount(participants, ComputeTotalDiscount(participants, discount))

	summaries := make([]models.ParticipantSummary, 0, len(participants))
	for _, p := range participants {
		subtotal := p.Subtotal()
		discounted := math.Max(0, subtotal-allocation[p.ID])
		summaries = append(summaries, models.ParticipantSummary{
			ParticipantID:      p.ID,
			Name:               p.Name,
			Subtotal:           subtotal,
			DiscountedSubtotal: discounted,
			SharedFeeShare:     feeShare,
			Total:              discounted + feeShare,
		})
	}
	return summaries
}

// Totals sums every summary field across participants.
func Totals(summaries []models.ParticipantSummary) models.BillTotals {
	var totals models.BillTotals
	for _, s := range summaries {
		totals.Subtotal += s.Subtotal
		totals.DiscountedSubtotal += s.DiscountedSubtotal
		totals.SharedFeeShare += s.SharedFeeShare
		totals.Total += s.Total
	}
	return totals
}

// Calculate runs the full summary pipeline for a bill state and reports how much of
// the configured discount could actually be applied.
func Calculate(state models.BillState) models.BillSummary {
	summaries := Summarize(state.Participants, state.Discount, state.Fees)
	totals := Totals(summaries)
	totalDiscount := ComputeTotalDiscount(state.Participants, state.Discount)
	applied := totals.Subtotal - totals.DiscountedSubtotal

	undistributed := totalDiscount - applied
	if undistributed < undistributedEpsilon {
		undistributed = 0
	} else {
		slog.Warn("Discount exceeds participant subtotals",
			"total_discount", totalDiscount,
			"applied", applied,
			"undistributed", undistributed,
		)
	}

	return models.BillSummary{
		Participants:    summaries,
		Totals:          totals,
		TotalDiscount:   totalDiscount,
		AppliedDiscount: applied,
		Undistributed:   undistributed,
		MinimumSpendMet: MinimumSpendMet(state.Participants, state.Discount),
	}
}

func sharedFeeShare(fees []models.AdditionalFee, participantCount int) float64 {
	var total float64
	for _, fee := range fees {
		total += fee.Amount
	}
	return total / float64(max(1, participantCount))
}
