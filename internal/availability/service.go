package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/harborstay/booking-backend/internal/pricing"
	"github.com/harborstay/booking-backend/pkg/daykey"
	"github.com/harborstay/booking-backend/pkg/db/models"
	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
	"github.com/harborstay/booking-backend/pkg/logger"
)

// Search outcomes reported to metrics.
const (
	OutcomeOffers          = "offers"
	OutcomeEmpty           = "empty"
	OutcomeMinStayRequired = "min_stay_required"
	OutcomeInvalid         = "invalid"
	OutcomeError           = "error"
)

// Occupancy counts bookings that currently hold inventory.
type Occupancy interface {
	ActiveOverlapping(ctx context.Context, roomTypeIDs []uuid.UUID, checkIn, checkOut string) (map[uuid.UUID]int, error)
}

// Observer receives one call per search.
type Observer interface {
	ObserveSearch(outcome string, offers int, elapsed time.Duration)
}

// Service answers availability searches. It never writes.
type Service interface {
	Search(ctx context.Context, req SearchRequest) (*SearchResult, error)
}

// SearchRequest is a stay over [CheckIn, CheckOut) for a party.
type SearchRequest struct {
	CheckIn      string
	CheckOut     string
	Adults       int
	ChildrenAges []int
}

// Offer is one sellable room type with its priced stay.
type Offer struct {
	RoomTypeID     uuid.UUID         `json:"room_type_id"`
	Name           string            `json:"name"`
	Nights         []Night           `json:"nightly_breakdown"`
	Price          pricing.Breakdown `json:"price"`
	RemainingUnits int               `json:"remaining_units"`
	MinLOS         int               `json:"min_los"`
}

// SearchResult carries offers, or the smallest minimum stay that would have
// produced some when every candidate failed only on length of stay.
type SearchResult struct {
	Offers          []Offer
	MinStayRequired bool
	MinLOS          int
}

// Options tunes request guards.
type Options struct {
	MaxNights int
	Location  *time.Location
	Now       func() time.Time
}

type service struct {
	repo      Repository
	occupancy Occupancy
	observer  Observer
	logg      *logger.Logger
	maxNights int
	loc       *time.Location
	now       func() time.Time
}

// NewService builds the availability search orchestrator.
func NewService(repo Repository, occupancy Occupancy, observer Observer, logg *logger.Logger, opts Options) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("availability repository required")
	}
	if occupancy == nil {
		return nil, fmt.Errorf("occupancy counter required")
	}
	if opts.MaxNights <= 0 {
		opts.MaxNights = 30
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &service{
		repo:      repo,
		occupancy: occupancy,
		observer:  observer,
		logg:      logg,
		maxNights: opts.MaxNights,
		loc:       opts.Location,
		now:       opts.Now,
	}, nil
}

type skipTally struct {
	occupied    int
	restricted  int
	minStay     int
	capacity    int
	soldOut     int
	smallestLOS int
}

// onlyMinStay reports whether length of stay was the sole reason rooms were skipped.
func (t skipTally) onlyMinStay() bool {
	return t.minStay > 0 && t.occupied == 0 && t.restricted == 0 && t.capacity == 0 && t.soldOut == 0
}

func (s *service) Search(ctx context.Context, req SearchRequest) (result *SearchResult, err error) {
	started := s.now()
	defer func() {
		s.observe(result, err, s.now().Sub(started))
	}()

	nights, err := s.validate(req)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		ctx = s.logg.WithDayRange(ctx, req.CheckIn, req.CheckOut)
	}

	rooms, err := s.repo.ListRoomTypes(ctx)
	if err != nil {
		return nil, s.internal(ctx, "load room types", err)
	}
	result = &SearchResult{Offers: []Offer{}}
	if len(rooms) == 0 {
		return result, nil
	}

	ids := make([]uuid.UUID, 0, len(rooms))
	for _, room := range rooms {
		ids = append(ids, room.ID)
	}

	active, err := s.occupancy.ActiveOverlapping(ctx, ids, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, s.internal(ctx, "count active bookings", err)
	}
	// rates are loaded through the checkout day so CTD can be read
	rates, err := s.repo.ListRates(ctx, ids, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, s.internal(ctx, "load rates", err)
	}
	adjustments, err := s.repo.ListAdjustments(ctx, ids, req.CheckIn, req.CheckOut)
	if err != nil {
		return nil, s.internal(ctx, "load inventory adjustments", err)
	}

	ratesByRoom := make(map[uuid.UUID][]models.Rate, len(rooms))
	for _, rate := range rates {
		ratesByRoom[rate.RoomTypeID] = append(ratesByRoom[rate.RoomTypeID], rate)
	}
	adjByRoom := make(map[uuid.UUID][]models.InventoryAdjustment, len(rooms))
	for _, adj := range adjustments {
		adjByRoom[adj.RoomTypeID] = append(adjByRoom[adj.RoomTypeID], adj)
	}

	var tally skipTally
	for _, room := range rooms {
		booked := active[room.ID]
		if booked >= room.TotalUnits {
			tally.occupied++
			continue
		}

		stay, err := Resolve(room, ratesByRoom[room.ID], adjByRoom[room.ID], req.CheckIn, req.CheckOut)
		if err != nil {
			if s.logg != nil {
				s.logg.Error(s.logg.WithRoomTypeID(ctx, room.ID.String()), "resolve stay overlay", err)
			}
			return nil, err
		}
		if stay.Rejected() {
			tally.restricted++
			continue
		}

		if nights < stay.MinLOS {
			tally.minStay++
			if tally.smallestLOS == 0 || stay.MinLOS < tally.smallestLOS {
				tally.smallestLOS = stay.MinLOS
			}
			continue
		}

		price, err := pricing.Calculate(pricing.Input{
			Nights:         nights,
			BaseTotal:      stay.BaseTotal,
			Adults:         req.Adults,
			ChildrenAges:   req.ChildrenAges,
			IncludedAdults: room.IncludedAdults,
			MaxGuests:      room.MaxGuests,
			ExtraAdultFee:  room.ExtraAdultFee,
			Child6To11Fee:  room.Child6To11Fee,
		})
		if err != nil {
			if pkgerrors.IsCode(err, pkgerrors.CodeStateConflict) {
				tally.capacity++
				continue
			}
			return nil, err
		}

		remaining := stay.EffectiveUnits - booked
		if remaining <= 0 {
			tally.soldOut++
			continue
		}

		result.Offers = append(result.Offers, Offer{
			RoomTypeID:     room.ID,
			Name:           room.Name,
			Nights:         stay.Nights,
			Price:          price,
			RemainingUnits: remaining,
			MinLOS:         stay.MinLOS,
		})
	}

	if len(result.Offers) == 0 && tally.onlyMinStay() {
		result.MinStayRequired = true
		result.MinLOS = tally.smallestLOS
	}

	if s.logg != nil {
		s.logg.Debug(s.logg.WithFields(ctx, map[string]any{
			"rooms":         len(rooms),
			"offers":        len(result.Offers),
			"skip_occupied": tally.occupied,
			"skip_restrict": tally.restricted,
			"skip_min_stay": tally.minStay,
			"skip_capacity": tally.capacity,
			"skip_sold_out": tally.soldOut,
		}), "availability search evaluated")
	}
	return result, nil
}

func (s *service) validate(req SearchRequest) (int, error) {
	if !daykey.Valid(req.CheckIn) || !daykey.Valid(req.CheckOut) {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "check_in and check_out must be valid YYYY-MM-DD dates")
	}
	nights, err := daykey.NightCount(req.CheckIn, req.CheckOut)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid stay dates")
	}
	if nights < 1 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "check_out must be after check_in")
	}
	if nights > s.maxNights {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("stays are limited to %d nights", s.maxNights)).
			WithDetails(map[string]any{"max_nights": s.maxNights})
	}
	today := daykey.FromTime(s.now(), s.loc)
	if daykey.Compare(req.CheckIn, today) < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "check_in cannot be in the past").
			WithDetails(map[string]any{"today": today})
	}
	if req.Adults < 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "adults cannot be negative")
	}
	for _, age := range req.ChildrenAges {
		if age < 0 || age > pricing.MaxChildAge {
			return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("child age %d out of range 0-%d", age, pricing.MaxChildAge))
		}
	}
	return nights, nil
}

func (s *service) internal(ctx context.Context, op string, err error) error {
	if s.logg != nil {
		s.logg.Error(ctx, "availability search: "+op, err)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}

func (s *service) observe(result *SearchResult, err error, elapsed time.Duration) {
	if s.observer == nil {
		return
	}
	outcome := OutcomeEmpty
	offers := 0
	switch {
	case err != nil && pkgerrors.IsCode(err, pkgerrors.CodeValidation):
		outcome = OutcomeInvalid
	case err != nil:
		outcome = OutcomeError
	case result.MinStayRequired:
		outcome = OutcomeMinStayRequired
	case len(result.Offers) > 0:
		outcome = OutcomeOffers
		offers = len(result.Offers)
	}
	s.observer.ObserveSearch(outcome, offers, elapsed)
}
