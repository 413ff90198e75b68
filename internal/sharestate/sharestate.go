// Package sharestate encodes a bill state into an opaque token that fits in a URL
// query parameter, and decodes it back.
//
// The token is a protobuf Struct with abbreviated keys, marshalled deterministically
// and wrapped in unpadded URL-safe base64:
//
//	{"s": 1,
//	 "p": [{"n": name, "i": [{"n": name, "q": quantity, "r": price}]}],
//	 "d": {"k": "p"|"f", "v": value, "m": minimum_spend, "c": cap},
//	 "f": [{"n": name, "a": amount}]}
//
// IDs are not encoded. Decoding assigns fresh UUIDs to every participant, item and fee.
package sharestate

import (
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/mmynk/billsplit/internal/models"
)

const (
	// schemaVersion is written under "s" and checked on decode.
	schemaVersion = 1

	// UncappedSentinel is the wire value for a discount without a cap.
	UncappedSentinel = -1
)

// ErrMalformedToken is returned by Parse for tokens that cannot be decoded.
var ErrMalformedToken = errors.New("malformed state token")

var kindCodes = map[models.DiscountKind]string{
	models.DiscountPercentage: "p",
	models.DiscountFlat:       "f",
}

// DefaultState returns the empty state used when no valid token is available.
func DefaultState() models.BillState {
	return models.BillState{
		Participants: []models.Participant{},
		Fees:         []models.AdditionalFee{},
	}
}

// Encode converts a bill state into a URL-safe token.
func Encode(state models.BillState) (string, error) {
	participants := make([]any, 0, len(state.Participants))
	for _, p := range state.Participants {
		items := make([]any, 0, len(p.Items))
		for _, item := range p.Items {
			items = append(items, map[string]any{
				"n": item.Name,
				"q": item.Quantity,
				"r": item.Price,
			})
		}
		participants = append(participants, map[string]any{
			"n": p.Name,
			"i": items,
		})
	}

	fees := make([]any, 0, len(state.Fees))
	for _, fee := range state.Fees {
		fees = append(fees, map[string]any{
			"n": fee.Name,
			"a": fee.Amount,
		})
	}

	capValue := float64(UncappedSentinel)
	if state.Discount.Cap != nil {
		capValue = *state.Discount.Cap
	}

	s, err := structpb.NewStruct(map[string]any{
		"s": schemaVersion,
		"p": participants,
		"d": map[string]any{
			"k": kindCodes[state.Discount.Kind],
			"v": state.Discount.Value,
			"m": state.Discount.MinimumSpend,
			"c": capValue,
		},
		"f": fees,
	})
	if err != nil {
		return "", fmt.Errorf("failed to build state struct: %w", err)
	}

	raw, err := proto.MarshalOptions{Deterministic: true}.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("failed to marshal state: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// Decode is the fail-soft variant of Parse used by callers restoring state from a
// URL. A malformed token is logged and replaced by DefaultState.
func Decode(token string) models.BillState {
	if strings.TrimSpace(token) == "" {
		return DefaultState()
	}
	state, err := Parse(token)
	if err != nil {
		slog.Warn("Failed to decode state token, using empty state", "error", err, "token_length", len(token))
		return DefaultState()
	}
	return state
}

// Parse decodes a token produced by Encode.
// All returned errors wrap ErrMalformedToken.
func Parse(token string) (models.BillState, error) {
	raw, err := base64.RawURLEncoding.DecodeString(strings.TrimSpace(token))
	if err != nil {
		return models.BillState{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	s := &structpb.Struct{}
	if err := proto.Unmarshal(raw, s); err != nil {
		return models.BillState{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	state, err := fromMap(s.AsMap())
	if err != nil {
		return models.BillState{}, fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}
	return state, nil
}

func fromMap(m map[string]any) (models.BillState, error) {
	state := DefaultState()

	version, err := number(m, "s")
	if err != nil {
		return state, err
	}
	if version != schemaVersion {
		return state, fmt.Errorf("unsupported schema version %v", version)
	}

	participants, err := list(m, "p")
	if err != nil {
		return state, err
	}
	for i, entry := range participants {
		pm, ok := entry.(map[string]any)
		if !ok {
			return state, fmt.Errorf("participant %d is not an object", i)
		}
		p, err := participantFromMap(pm)
		if err != nil {
			return state, fmt.Errorf("participant %d: %w", i, err)
		}
		state.Participants = append(state.Participants, p)
	}

	if dm, ok := m["d"].(map[string]any); ok {
		discount, err := discountFromMap(dm)
		if err != nil {
			return state, fmt.Errorf("discount: %w", err)
		}
		state.Discount = discount
	} else if _, present := m["d"]; present {
		return state, errors.New("discount is not an object")
	}

	fees, err := list(m, "f")
	if err != nil {
		return state, err
	}
	for i, entry := range fees {
		fm, ok := entry.(map[string]any)
		if !ok {
			return state, fmt.Errorf("fee %d is not an object", i)
		}
		name, err := text(fm, "n")
		if err != nil {
			return state, fmt.Errorf("fee %d: %w", i, err)
		}
		amount, err := number(fm, "a")
		if err != nil {
			return state, fmt.Errorf("fee %d: %w", i, err)
		}
		state.Fees = append(state.Fees, models.AdditionalFee{
			ID:     uuid.New().String(),
			Name:   name,
			Amount: amount,
		})
	}

	return state, nil
}

func participantFromMap(m map[string]any) (models.Participant, error) {
	name, err := text(m, "n")
	if err != nil {
		return models.Participant{}, err
	}
	p := models.Participant{
		ID:    uuid.New().String(),
		Name:  name,
		Items: []models.Item{},
	}

	items, err := list(m, "i")
	if err != nil {
		return p, err
	}
	for i, entry := range items {
		im, ok := entry.(map[string]any)
		if !ok {
			return p, fmt.Errorf("item %d is not an object", i)
		}
		itemName, err := text(im, "n")
		if err != nil {
			return p, fmt.Errorf("item %d: %w", i, err)
		}
		quantity, err := count(im, "q")
		if err != nil {
			return p, fmt.Errorf("item %d: %w", i, err)
		}
		price, err := number(im, "r")
		if err != nil {
			return p, fmt.Errorf("item %d: %w", i, err)
		}
		p.Items = append(p.Items, models.Item{
			ID:       uuid.New().String(),
			Name:     itemName,
			Quantity: quantity,
			Price:    price,
		})
	}
	return p, nil
}

func discountFromMap(m map[string]any) (models.DiscountConfig, error) {
	var config models.DiscountConfig

	code, err := text(m, "k")
	if err != nil {
		return config, err
	}
	for kind, c := range kindCodes {
		if c == code {
			config.Kind = kind
		}
	}
	if code != "" && config.Kind == "" {
		return config, fmt.Errorf("unknown discount kind %q", code)
	}

	if config.Value, err = number(m, "v"); err != nil {
		return config, err
	}
	if config.MinimumSpend, err = number(m, "m"); err != nil {
		return config, err
	}

	capValue, err := number(m, "c")
	if err != nil {
		return config, err
	}
	if _, present := m["c"]; present && capValue != UncappedSentinel {
		config.Cap = models.CapAmount(capValue)
	}
	return config, nil
}

// number reads an optional numeric field; a missing key reads as zero.
func number(m map[string]any, key string) (float64, error) {
	v, ok := m[key]
	if !ok {
		return 0, nil
	}
	n, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("field %q is not a number", key)
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("field %q is not finite", key)
	}
	return n, nil
}

// count reads a whole, non-negative number such as an item quantity.
func count(m map[string]any, key string) (int, error) {
	n, err := number(m, key)
	if err != nil {
		return 0, err
	}
	if n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, fmt.Errorf("field %q is not a whole non-negative number: %v", key, n)
	}
	return int(n), nil
}

func text(m map[string]any, key string) (string, error) {
	v, ok := m[key]
	if !ok {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("field %q is not a string", key)
	}
	return s, nil
}

func list(m map[string]any, key string) ([]any, error) {
	v, ok := m[key]
	if !ok || v == nil {
		return nil, nil
	}
	l, ok := v.([]any)
	if !ok {
		return nil, fmt.Errorf("field %q is not a list", key)
	}
	return l, nil
}
