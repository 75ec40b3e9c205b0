package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"

	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
)

const (
	// AdultAge is the age from which a child is priced and counted as an adult.
	AdultAge = 12
	// ChildFeeAge is the youngest age that pays the child fee; younger children stay free.
	ChildFeeAge = 6
	// MaxChildAge bounds the ages accepted for children.
	MaxChildAge = 17
)

// Input is everything needed to price one stay in one room type.
type Input struct {
	Nights         int
	BaseTotal      decimal.Decimal
	Adults         int
	ChildrenAges   []int
	IncludedAdults int
	MaxGuests      int
	ExtraAdultFee  decimal.Decimal
	Child6To11Fee  decimal.Decimal
}

// Breakdown is the priced result. Monetary fields are rounded to cents.
type Breakdown struct {
	Nights          int             `json:"nights"`
	BaseTotal       decimal.Decimal `json:"base_total"`
	EffectiveAdults int             `json:"effective_adults"`
	ChildrenUnder12 int             `json:"children_under_12"`
	Children6To11   int             `json:"children_6_to_11"`
	ChildrenUnder6  int             `json:"children_under_6"`
	ExtraAdults     int             `json:"extra_adults"`
	NightlyExtra    decimal.Decimal `json:"nightly_extra"`
	ExtrasTotal     decimal.Decimal `json:"extras_total"`
	Total           decimal.Decimal `json:"total"`
}

// Calculate prices a stay. It returns a VALIDATION_ERROR for malformed input and a
// STATE_CONFLICT when the party does not fit the room.
func Calculate(in Input) (Breakdown, error) {
	if in.Nights <= 0 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "nights must be at least 1")
	}
	if in.BaseTotal.IsNegative() {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "base total cannot be negative")
	}
	if in.Adults < 0 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "adults cannot be negative")
	}
	if in.ExtraAdultFee.IsNegative() || in.Child6To11Fee.IsNegative() {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, "guest fees cannot be negative")
	}

	out := Breakdown{Nights: in.Nights, BaseTotal: in.BaseTotal.Round(2)}
	teens := 0
	for _, age := range in.ChildrenAges {
		switch {
		case age < 0 || age > MaxChildAge:
			return Breakdown{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("child age %d out of range 0-%d", age, MaxChildAge)).
				WithDetails(map[string]any{"age": age})
		case age >= AdultAge:
			teens++
		case age >= ChildFeeAge:
			out.Children6To11++
			out.ChildrenUnder12++
		default:
			out.ChildrenUnder6++
			out.ChildrenUnder12++
		}
	}

	out.EffectiveAdults = in.Adults + teens
	if out.EffectiveAdults == 0 {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeStateConflict, "at least one adult is required")
	}
	// children under 6 ride free and are not counted against MaxGuests
	guests := out.EffectiveAdults + out.Children6To11
	if guests > in.MaxGuests {
		return Breakdown{}, pkgerrors.New(pkgerrors.CodeStateConflict, "party exceeds room capacity").
			WithDetails(map[string]any{"guests": guests, "max_guests": in.MaxGuests})
	}

	if extra := out.EffectiveAdults - in.IncludedAdults; extra > 0 {
		out.ExtraAdults = extra
	}

	nightly := in.ExtraAdultFee.Mul(decimal.NewFromInt(int64(out.ExtraAdults))).
		Add(in.Child6To11Fee.Mul(decimal.NewFromInt(int64(out.Children6To11))))
	extras := nightly.Mul(decimal.NewFromInt(int64(in.Nights)))

	out.NightlyExtra = nightly.Round(2)
	out.ExtrasTotal = extras.Round(2)
	out.Total = in.BaseTotal.Add(extras).Round(2)
	return out, nil
}
