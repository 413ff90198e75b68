package models

// ParticipantSummary is one participant's calculated share of the bill.
// This is the output of the calculator, recomputed on every change.
type ParticipantSummary struct {
	// ParticipantID is the ID of the summarized participant.
	ParticipantID string `json:"participant_id"`

	// Name is copied from the participant for display.
	Name string `json:"name"`

	// Subtotal is the sum of the participant's line totals.
	Subtotal float64 `json:"subtotal"`

	// DiscountedSubtotal is Subtotal minus the allocated discount, never below zero.
	DiscountedSubtotal float64 `json:"discounted_subtotal"`

	// SharedFeeShare is this participant's equal portion of the additional fees.
	SharedFeeShare float64 `json:"shared_fee_share"`

	// Total is DiscountedSubtotal + SharedFeeShare.
	Total float64 `json:"total"`
}

// Discount returns the discount amount applied to this participant.
func (s ParticipantSummary) Discount() float64 {
	return s.Subtotal - s.DiscountedSubtotal
}

// BillTotals is the field-wise sum of all participant summaries.
type BillTotals struct {
	Subtotal           float64 `json:"subtotal"`
	DiscountedSubtotal float64 `json:"discounted_subtotal"`
	SharedFeeShare     float64 `json:"shared_fee_share"`
	Total              float64 `json:"total"`
}

// BillSummary is the full calculation result for a BillState.
type BillSummary struct {
	// Participants holds one summary per participant, in input order.
	Participants []ParticipantSummary `json:"participants"`

	// Totals is the aggregate across Participants.
	Totals BillTotals `json:"totals"`

	// TotalDiscount is the discount computed from the config before allocation.
	TotalDiscount float64 `json:"total_discount"`

	// AppliedDiscount is the portion of TotalDiscount actually allocated.
	AppliedDiscount float64 `json:"applied_discount"`

	// Undistributed is TotalDiscount minus AppliedDiscount. It is nonzero only when
	// the discount exceeds the sum of all subtotals.
	Undistributed float64 `json:"undistributed"`

	// MinimumSpendMet reports whether the bill subtotal reaches DiscountConfig.MinimumSpend.
	MinimumSpendMet bool `json:"minimum_spend_met"`
}

// ShareLink maps a short ID to an opaque encoded bill state token.
type ShareLink struct {
	// ID is the short link identifier.
	ID string

	// Token is the encoded bill state. The server never decodes it.
	Token string

	// Hits counts how many times the link was resolved.
	Hits int64

	// CreatedAt is the Unix timestamp when the link was created.
	CreatedAt int64
}
