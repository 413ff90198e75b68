package models

// Item represents a single priced line owned by one participant.
type Item struct {
	// ID is the unique token for the item (UUID format).
	ID string `json:"id"`

	// Name is the item description (e.g., "Nasi Goreng", "Es Teh").
	Name string `json:"name" validate:"required"`

	// Quantity is how many units were ordered.
	Quantity int `json:"quantity" validate:"gte=0"`

	// Price is the unit price in minor currency units.
	Price float64 `json:"price" validate:"gte=0"`
}

// LineTotal returns quantity × price.
func (i Item) LineTotal() float64 {
	return float64(i.Quantity) * i.Price
}

// Participant represents one person splitting the bill.
// Participants are created and removed by the caller.
type Participant struct {
	// ID is the unique token for the participant (UUID format).
	ID string `json:"id"`

	// Name is the display name of the participant.
	Name string `json:"name" validate:"required"`

	// Items are the lines this participant ordered, in entry order.
	Items []Item `json:"items" validate:"dive"`
}

// Subtotal returns the sum of the participant's line totals.
func (p Participant) Subtotal() float64 {
	var subtotal float64
	for _, item := range p.Items {
		subtotal += item.LineTotal()
	}
	return subtotal
}

// DiscountKind selects how DiscountConfig.Value is interpreted.
type DiscountKind string

const (
	// DiscountPercentage treats Value as a percentage of the bill subtotal.
	DiscountPercentage DiscountKind = "percentage"
	// DiscountFlat treats Value as an absolute amount.
	DiscountFlat DiscountKind = "flat"
)

// DiscountConfig is the single bill-wide discount.
type DiscountConfig struct {
	// Kind is percentage or flat.
	Kind DiscountKind `json:"kind" validate:"omitempty,oneof=percentage flat"`

	// Value is the percentage (0-100) or the flat amount.
	Value float64 `json:"value" validate:"gte=0"`

	// MinimumSpend is the promo's minimum bill subtotal.
	// It is reported, not enforced: see BillSummary.MinimumSpendMet.
	MinimumSpend float64 `json:"minimum_spend" validate:"gte=0"`

	// Cap is the maximum absolute discount. Nil means uncapped.
	Cap *float64 `json:"cap,omitempty" validate:"omitempty,gte=0"`
}

// CapAmount returns a cap pointer for use in DiscountConfig literals.
func CapAmount(amount float64) *float64 {
	return &amount
}

// AdditionalFee is a shared cost split equally among all participants.
type AdditionalFee struct {
	// ID is the unique token for the fee (UUID format).
	ID string `json:"id"`

	// Name describes the fee (e.g., "Delivery", "Service").
	Name string `json:"name"`

	// Amount is the fee amount in minor currency units.
	Amount float64 `json:"amount" validate:"gte=0"`
}

// BillState is the complete caller-owned state of one bill.
type BillState struct {
	Participants []Participant   `json:"participants" validate:"unique=ID,dive"`
	Discount     DiscountConfig  `json:"discount"`
	Fees         []AdditionalFee `json:"fees" validate:"dive"`
}
