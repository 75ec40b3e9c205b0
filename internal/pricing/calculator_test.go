package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
)

func familyRoom(maxGuests int) Input {
	return Input{
		Nights:         2,
		BaseTotal:      decimal.NewFromInt(400),
		Adults:         2,
		IncludedAdults: 2,
		MaxGuests:      maxGuests,
		ExtraAdultFee:  decimal.NewFromInt(100),
		Child6To11Fee:  decimal.NewFromInt(80),
	}
}

func TestCalculate_ChildFee(t *testing.T) {
	in := familyRoom(3)
	in.ChildrenAges = []int{8}

	out, err := Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Children6To11)
	assert.Equal(t, 0, out.ExtraAdults)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(560)), "total %s", out.Total)
}

func TestCalculate_MixedPartyInFourGuestRoom(t *testing.T) {
	// 2 adults + a teen are three effective adults, the 8 year old is the fourth guest
	in := familyRoom(4)
	in.ChildrenAges = []int{4, 8, 13}

	out, err := Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, 3, out.EffectiveAdults)
	assert.Equal(t, 2, out.ChildrenUnder12)
	assert.Equal(t, 1, out.Children6To11)
	assert.Equal(t, 1, out.ChildrenUnder6)
	assert.Equal(t, 1, out.ExtraAdults)
	assert.True(t, out.NightlyExtra.Equal(decimal.NewFromInt(180)))
	assert.True(t, out.Total.Equal(decimal.NewFromInt(760)), "total %s", out.Total)
}

func TestCalculate_SchoolAgeChildCountsTowardCapacity(t *testing.T) {
	in := familyRoom(3)
	in.ChildrenAges = []int{4, 8, 13}

	_, err := Calculate(in)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 4, details["guests"])
	assert.Equal(t, 3, details["max_guests"])

	// the same party fits once the 8 year old is under 6
	in.ChildrenAges = []int{4, 5, 13}
	out, err := Calculate(in)
	require.NoError(t, err)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(600)), "total %s", out.Total)
}

func TestCalculate_AgeBoundaries(t *testing.T) {
	tests := []struct {
		age         int
		wantAdults  int
		wantChildFe int
	}{
		{age: 12, wantAdults: 3, wantChildFe: 0},
		{age: 11, wantAdults: 2, wantChildFe: 1},
		{age: 6, wantAdults: 2, wantChildFe: 1},
		{age: 5, wantAdults: 2, wantChildFe: 0},
		{age: 0, wantAdults: 2, wantChildFe: 0},
	}
	for _, tt := range tests {
		in := familyRoom(4)
		in.ChildrenAges = []int{tt.age}
		out, err := Calculate(in)
		require.NoError(t, err, "age %d", tt.age)
		assert.Equal(t, tt.wantAdults, out.EffectiveAdults, "age %d", tt.age)
		assert.Equal(t, tt.wantChildFe, out.Children6To11, "age %d", tt.age)
	}
}

func TestCalculate_UnderSixExcludedFromCapacity(t *testing.T) {
	in := familyRoom(2)
	in.ChildrenAges = []int{1, 3}

	out, err := Calculate(in)
	require.NoError(t, err)
	assert.True(t, out.Total.Equal(decimal.NewFromInt(400)))
}

func TestCalculate_TotalFormula(t *testing.T) {
	for nights := 1; nights <= 5; nights++ {
		for adults := 1; adults <= 4; adults++ {
			in := Input{
				Nights:         nights,
				BaseTotal:      decimal.RequireFromString("123.45").Mul(decimal.NewFromInt(int64(nights))),
				Adults:         adults,
				ChildrenAges:   []int{7, 10},
				IncludedAdults: 2,
				MaxGuests:      6,
				ExtraAdultFee:  decimal.RequireFromString("33.335"),
				Child6To11Fee:  decimal.RequireFromString("12.5"),
			}
			out, err := Calculate(in)
			require.NoError(t, err)

			extra := adults - 2
			if extra < 0 {
				extra = 0
			}
			want := in.BaseTotal.Add(
				in.ExtraAdultFee.Mul(decimal.NewFromInt(int64(extra))).
					Add(in.Child6To11Fee.Mul(decimal.NewFromInt(2))).
					Mul(decimal.NewFromInt(int64(nights))),
			).Round(2)
			assert.True(t, want.Equal(out.Total), "nights=%d adults=%d want %s got %s", nights, adults, want, out.Total)
		}
	}
}

func TestCalculate_RoundsHalfUp(t *testing.T) {
	in := Input{
		Nights:         1,
		BaseTotal:      decimal.RequireFromString("100.004"),
		Adults:         3,
		IncludedAdults: 2,
		MaxGuests:      3,
		ExtraAdultFee:  decimal.RequireFromString("0.001"),
	}
	out, err := Calculate(in)
	require.NoError(t, err)
	assert.Equal(t, "100.01", out.Total.StringFixed(2))
}

func TestCalculate_InvalidInput(t *testing.T) {
	cases := map[string]func(*Input){
		"zero nights":    func(in *Input) { in.Nights = 0 },
		"negative base":  func(in *Input) { in.BaseTotal = decimal.NewFromInt(-1) },
		"age too high":   func(in *Input) { in.ChildrenAges = []int{18} },
		"negative age":   func(in *Input) { in.ChildrenAges = []int{-1} },
		"negative adult": func(in *Input) { in.Adults = -1 },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := familyRoom(4)
			mutate(&in)
			_, err := Calculate(in)
			require.Error(t, err)
			assert.Equal(t, pkgerrors.CodeValidation, pkgerrors.As(err).Code())
		})
	}
}

func TestCalculate_RequiresAnAdult(t *testing.T) {
	in := familyRoom(4)
	in.Adults = 0
	in.ChildrenAges = []int{8}

	_, err := Calculate(in)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeStateConflict, pkgerrors.As(err).Code())

	in.ChildrenAges = []int{12}
	_, err = Calculate(in)
	require.NoError(t, err)
}
