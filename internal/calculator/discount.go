package calculator

import (
	"math"

	"github.com/mmynk/billsplit/internal/models"
)

// ComputeTotalDiscount returns the bill-wide discount before allocation.
//
//   - percentage: min(value% × Σ subtotals, cap)
//   - flat:       min(value, cap)
//
// A nil cap is treated as +Inf. Unknown or empty kinds yield no discount.
func ComputeTotalDiscount(participants []models.Participant, config models.DiscountConfig) float64 {
	var discount float64
	switch config.Kind {
	case models.DiscountPercentage:
		discount = config.Value / 100 * sumSubtotals(participants)
	case models.DiscountFlat:
		discount = config.Value
	default:
		return 0
	}

	return math.Min(discount, capOf(config))
}

// MinimumSpendMet reports whether the combined subtotal reaches the config's minimum spend.
func MinimumSpendMet(participants []models.Participant, config models.DiscountConfig) bool {
	return sumSubtotals(participants) >= config.MinimumSpend
}

// AllocateDiscount spreads totalDiscount across participants in equal shares,
// never giving anyone more than their own subtotal.
//
// Algorithm (water-filling):
//   - Eligible participants are those with remaining capacity (subtotal - allocated > 0)
//   - Each round every eligible participant receives min(remaining/|eligible|, capacity)
//   - Whatever a capped participant could not absorb rolls into the next round
//   - Stops when nothing remains or nobody has capacity left
//
// Every round either consumes the remaining discount or drops at least one
// participant, so there are at most len(participants) rounds. A discount larger than
// the sum of subtotals leaves a remainder that is not allocated to anyone.
func AllocateDiscount(participants []models.Participant, totalDiscount float64) map[string]float64 {
	allocation := make(map[string]float64)
	if len(participants) == 0 || totalDiscount <= 0 {
		return allocation
	}

	capacity := make([]float64, len(participants))
	eligible := make([]int, 0, len(participants))
	for i, p := range participants {
		capacity[i] = p.Subtotal()
		if capacity[i] > 0 {
			eligible = append(eligible, i)
		}
	}

	remaining := totalDiscount
	for remaining > 0 && len(eligible) > 0 {
		share := remaining / float64(len(eligible))
		var unused float64
		next := eligible[:0]

		for _, idx := range eligible {
			id := participants[idx].ID
			if share >= capacity[idx] {
				// Capped by own subtotal: take what fits, pass on the rest.
				allocation[id] += capacity[idx]
				unused += share - capacity[idx]
				capacity[idx] = 0
				continue
			}
			allocation[id] += share
			capacity[idx] -= share
			next = append(next, idx)
		}

		eligible = next
		remaining = unused
	}

	return allocation
}

func sumSubtotals(participants []models.Participant) float64 {
	var total float64
	for _, p := range participants {
		total += p.Subtotal()
	}
	return total
}

func capOf(config models.DiscountConfig) float64 {
	if config.Cap == nil {
		return math.Inf(1)
	}
	return *config.Cap
}
