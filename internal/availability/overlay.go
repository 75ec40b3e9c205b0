package availability

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborstay/booking-backend/pkg/daykey"
	"github.com/harborstay/booking-backend/pkg/db/models"
	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
)

// RejectReason explains why a stay cannot be sold regardless of party size.
type RejectReason string

const (
	RejectNone        RejectReason = ""
	RejectStopSell    RejectReason = "stop_sell"
	RejectCTA         RejectReason = "closed_to_arrival"
	RejectCTD         RejectReason = "closed_to_departure"
	RejectNoInventory RejectReason = "no_inventory"
)

// Night is the effective sell data for one night of a stay.
type Night struct {
	DayKey string          `json:"day_key"`
	Price  decimal.Decimal `json:"price"`
	MinLOS int             `json:"min_los"`
	Units  int             `json:"units"`
	RateID *uuid.UUID      `json:"rate_id,omitempty"`
}

// Stay aggregates the overlay for [CheckIn, CheckOut).
type Stay struct {
	Nights         []Night
	BaseTotal      decimal.Decimal
	MinLOS         int
	EffectiveUnits int
	Reject         RejectReason
}

// Rejected reports whether any restriction or an empty inventory blocks the stay.
func (s Stay) Rejected() bool {
	return s.Reject != RejectNone
}

// dayRule is the resolved restriction set for a single calendar day.
type dayRule struct {
	rate *models.Rate
}

func (d dayRule) price(room models.RoomType) decimal.Decimal {
	if d.rate == nil {
		return room.BasePrice
	}
	return d.rate.Price
}

func (d dayRule) minLOS() int {
	if d.rate == nil || d.rate.MinLOS < 1 {
		return 1
	}
	return d.rate.MinLOS
}

// Resolve merges the room's base configuration with its rates and inventory
// adjustments for every night of [checkIn, checkOut).
func Resolve(room models.RoomType, rates []models.Rate, adjustments []models.InventoryAdjustment, checkIn, checkOut string) (Stay, error) {
	nights, err := daykey.Nights(checkIn, checkOut)
	if err != nil {
		return Stay{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stay dates")
	}
	if len(nights) == 0 {
		return Stay{}, pkgerrors.New(pkgerrors.CodeValidation, "check_out must be after check_in")
	}
	if err := checkRates(rates); err != nil {
		return Stay{}, err
	}

	overrides := make(map[string]int, len(adjustments))
	for _, adj := range adjustments {
		if adj.RoomTypeID == room.ID {
			overrides[adj.DayKey] = adj.TotalUnits
		}
	}

	stay := Stay{
		Nights:    make([]Night, 0, len(nights)),
		BaseTotal: decimal.Zero,
		MinLOS:    1,
	}

	for i, day := range nights {
		rule := ruleFor(room.ID, rates, day)
		units := room.TotalUnits
		if override, ok := overrides[day]; ok {
			units = override
		}

		night := Night{
			DayKey: day,
			Price:  rule.price(room),
			MinLOS: rule.minLOS(),
			Units:  units,
		}
		if rule.rate != nil {
			id := rule.rate.ID
			night.RateID = &id
		}
		stay.Nights = append(stay.Nights, night)
		stay.BaseTotal = stay.BaseTotal.Add(night.Price)

		if night.MinLOS > stay.MinLOS {
			stay.MinLOS = night.MinLOS
		}
		if i == 0 || units < stay.EffectiveUnits {
			stay.EffectiveUnits = units
		}

		if rule.rate != nil {
			if rule.rate.StopSell && stay.Reject == RejectNone {
				stay.Reject = RejectStopSell
			}
			if i == 0 && rule.rate.CTA && stay.Reject == RejectNone {
				stay.Reject = RejectCTA
			}
		}
	}

	if departure := ruleFor(room.ID, rates, checkOut); departure.rate != nil && departure.rate.CTD && stay.Reject == RejectNone {
		stay.Reject = RejectCTD
	}
	if stay.EffectiveUnits <= 0 && stay.Reject == RejectNone {
		stay.Reject = RejectNoInventory
	}
	return stay, nil
}

// ruleFor picks the rate covering day. Overlapping rates resolve to the most
// recently created row; equal timestamps fall back to the greater id.
func ruleFor(roomTypeID uuid.UUID, rates []models.Rate, day string) dayRule {
	var winner *models.Rate
	for i := range rates {
		rate := &rates[i]
		if rate.RoomTypeID != roomTypeID || !daykey.Contains(rate.StartDate, rate.EndDate, day) {
			continue
		}
		if winner == nil || newer(rate, winner) {
			winner = rate
		}
	}
	return dayRule{rate: winner}
}

func newer(a, b *models.Rate) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID.String() > b.ID.String()
}

func checkRates(rates []models.Rate) error {
	for _, rate := range rates {
		if !daykey.Valid(rate.StartDate) || !daykey.Valid(rate.EndDate) {
			return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("rate %s has a malformed date range", rate.ID)).
				WithDetails(map[string]any{"rate_id": rate.ID.String(), "room_type_id": rate.RoomTypeID.String()})
		}
		if rate.Price.IsNegative() {
			return pkgerrors.New(pkgerrors.CodeInternal, fmt.Sprintf("rate %s has a negative price", rate.ID)).
				WithDetails(map[string]any{"rate_id": rate.ID.String(), "room_type_id": rate.RoomTypeID.String()})
		}
	}
	return nil
}
