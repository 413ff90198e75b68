package calculator

import (
	"math"
	"reflect"
	"testing"

	"github.com/mmynk/billsplit/internal/models"
)

func TestSummarize(t *testing.T) {
	tests := []struct {
		name         string
		participants []models.Participant
		discount     models.DiscountConfig
		fees         []models.AdditionalFee
		validateFunc func(t *testing.T, summaries []models.ParticipantSummary)
	}{
		{
			name:         "flat discount split equally",
			participants: []models.Participant{participant("A", 100000), participant("B", 100000)},
			discount:     models.DiscountConfig{Kind: models.DiscountFlat, Value: 50000},
			validateFunc: func(t *testing.T, summaries []models.ParticipantSummary) {
				for _, s := range summaries {
					if math.Abs(s.DiscountedSubtotal-75000) > 0.01 {
						t.Errorf("%s discounted subtotal = %v, want 75000", s.ParticipantID, s.DiscountedSubtotal)
					}
					if math.Abs(s.Discount()-25000) > 0.01 {
						t.Errorf("%s discount = %v, want 25000", s.ParticipantID, s.Discount())
					}
				}
			},
		},
		{
			name:         "capped participant with fees",
			participants: []models.Participant{participant("A", 10000), participant("B", 100000)},
			discount:     models.DiscountConfig{Kind: models.DiscountFlat, Value: 60000},
			fees: []models.AdditionalFee{
				{Name: "Delivery", Amount: 15000},
				{Name: "Service", Amount: 5000},
			},
			validateFunc: func(t *testing.T, summaries []models.ParticipantSummary) {
				// A: 10000 - 10000 = 0, fee share 10000, total 10000
				// B: 100000 - 50000 = 50000, fee share 10000, total 60000
				a, b := summaries[0], summaries[1]
				if a.DiscountedSubtotal != 0 {
					t.Errorf("A discounted subtotal = %v, want 0", a.DiscountedSubtotal)
				}
				if math.Abs(a.Total-10000) > 0.01 {
					t.Errorf("A total = %v, want 10000", a.Total)
				}
				if math.Abs(b.DiscountedSubtotal-50000) > 0.01 {
					t.Errorf("B discounted subtotal = %v, want 50000", b.DiscountedSubtotal)
				}
				if math.Abs(b.SharedFeeShare-10000) > 0.01 {
					t.Errorf("B fee share = %v, want 10000", b.SharedFeeShare)
				}
				if math.Abs(b.Total-60000) > 0.01 {
					t.Errorf("B total = %v, want 60000", b.Total)
				}
			},
		},
		{
			name: "quantity multiplies price",
			participants: []models.Participant{{
				ID:   "A",
				Name: "Alice",
				Items: []models.Item{
					{Name: "Es Teh", Quantity: 3, Price: 5000},
					{Name: "Sate", Quantity: 2, Price: 20000},
				},
			}},
			validateFunc: func(t *testing.T, summaries []models.ParticipantSummary) {
				if summaries[0].Subtotal != 55000 {
					t.Errorf("subtotal = %v, want 55000", summaries[0].Subtotal)
				}
				if summaries[0].Name != "Alice" {
					t.Errorf("name = %q, want Alice", summaries[0].Name)
				}
			},
		},
		{
			name:         "input order preserved",
			participants: []models.Participant{participant("C", 1), participant("A", 2), participant("B", 3)},
			validateFunc: func(t *testing.T, summaries []models.ParticipantSummary) {
				var ids []string
				for _, s := range summaries {
					ids = append(ids, s.ParticipantID)
				}
				if !reflect.DeepEqual(ids, []string{"C", "A", "B"}) {
					t.Errorf("order = %v, want [C A B]", ids)
				}
			},
		},
		{
			name:     "no participants yields no summaries",
			discount: models.DiscountConfig{Kind: models.DiscountFlat, Value: 10000},
			fees:     []models.AdditionalFee{{Name: "Delivery", Amount: 10000}},
			validateFunc: func(t *testing.T, summaries []models.ParticipantSummary) {
				if summaries == nil {
					t.Error("expected empty, non-nil slice")
				}
				if len(summaries) != 0 {
					t.Errorf("got %d summaries, want 0", len(summaries))
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			summaries := Summarize(tt.participants, tt.discount, tt.fees)
			if len(summaries) != len(tt.participants) {
				t.Fatalf("got %d summaries, want %d", len(summaries), len(tt.participants))
			}
			for _, s := range summaries {
				if s.DiscountedSubtotal < 0 || s.DiscountedSubtotal > s.Subtotal {
					t.Errorf("%s discounted subtotal %v outside [0, %v]", s.ParticipantID, s.DiscountedSubtotal, s.Subtotal)
				}
				if math.Abs(s.Total-(s.DiscountedSubtotal+s.SharedFeeShare)) > 1e-9 {
					t.Errorf("%s total %v != discounted subtotal + fee share", s.ParticipantID, s.Total)
				}
			}
			tt.validateFunc(t, summaries)
		})
	}
}

func TestSummarizeIsPure(t *testing.T) {
	participants := []models.Participant{participant("A", 10000), participant("B", 100000), participant("C", 3333)}
	discount := models.DiscountConfig{Kind: models.DiscountPercentage, Value: 15, Cap: models.CapAmount(12000)}
	fees := []models.AdditionalFee{{Name: "Tip", Amount: 9000}}

	first := Summarize(participants, discount, fees)
	second := Summarize(participants, discount, fees)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Summarize() not idempotent:\nfirst  %+v\nsecond %+v", first, second)
	}
}

func TestCalculate(t *testing.T) {
	t.Run("aggregates totals", func(t *testing.T) {
		state := models.BillState{
			Participants: []models.Participant{participant("A", 10000), participant("B", 100000)},
			Discount:     models.DiscountConfig{Kind: models.DiscountFlat, Value: 60000, MinimumSpend: 100000},
			Fees:         []models.AdditionalFee{{Name: "Delivery", Amount: 20000}},
		}

		got := Calculate(state)

		if math.Abs(got.Totals.Subtotal-110000) > 0.01 {
			t.Errorf("totals subtotal = %v, want 110000", got.Totals.Subtotal)
		}
		if math.Abs(got.Totals.DiscountedSubtotal-50000) > 0.01 {
			t.Errorf("totals discounted subtotal = %v, want 50000", got.Totals.DiscountedSubtotal)
		}
		if math.Abs(got.Totals.SharedFeeShare-20000) > 0.01 {
			t.Errorf("totals fee share = %v, want 20000", got.Totals.SharedFeeShare)
		}
		if math.Abs(got.Totals.Total-70000) > 0.01 {
			t.Errorf("totals total = %v, want 70000", got.Totals.Total)
		}
		if math.Abs(got.AppliedDiscount-60000) > 0.01 {
			t.Errorf("applied discount = %v, want 60000", got.AppliedDiscount)
		}
		if got.Undistributed != 0 {
			t.Errorf("undistributed = %v, want 0", got.Undistributed)
		}
		if !got.MinimumSpendMet {
			t.Error("expected minimum spend to be met")
		}
	})

	t.Run("reports undistributed remainder", func(t *testing.T) {
		state := models.BillState{
			Participants: []models.Participant{participant("A", 10000), participant("B", 20000)},
			Discount:     models.DiscountConfig{Kind: models.DiscountFlat, Value: 50000},
		}

		got := Calculate(state)

		if math.Abs(got.TotalDiscount-50000) > 0.01 {
			t.Errorf("total discount = %v, want 50000", got.TotalDiscount)
		}
		if math.Abs(got.AppliedDiscount-30000) > 0.01 {
			t.Errorf("applied discount = %v, want 30000", got.AppliedDiscount)
		}
		if math.Abs(got.Undistributed-20000) > 0.01 {
			t.Errorf("undistributed = %v, want 20000", got.Undistributed)
		}
		if got.Totals.DiscountedSubtotal != 0 {
			t.Errorf("totals discounted subtotal = %v, want 0", got.Totals.DiscountedSubtotal)
		}
	})

	t.Run("empty state", func(t *testing.T) {
		got := Calculate(models.BillState{})
		if len(got.Participants) != 0 {
			t.Errorf("got %d participants, want 0", len(got.Participants))
		}
		if got.Totals != (models.BillTotals{}) {
			t.Errorf("totals = %+v, want zero", got.Totals)
		}
	})
}
