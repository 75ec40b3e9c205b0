package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/harborstay/booking-backend/pkg/daykey"
	"github.com/harborstay/booking-backend/pkg/db/models"
	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
	"github.com/harborstay/booking-backend/pkg/logger"
)

// MaxAdjustmentDays bounds a single bulk edit.
const MaxAdjustmentDays = 366

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Occupancy counts bookings holding a room on one day.
type Occupancy interface {
	ActiveOnDay(ctx context.Context, tx *gorm.DB, roomTypeID uuid.UUID, day string) (int, error)
}

// Service applies operator inventory edits.
type Service interface {
	Apply(ctx context.Context, req AdjustmentRequest) (*AdjustmentResult, error)
}

// AdjustmentRequest sets TotalUnits on every day of [From, To]. A nil
// RoomTypeID applies the edit to every active room type.
type AdjustmentRequest struct {
	RoomTypeID *uuid.UUID
	From       string
	To         string
	TotalUnits int
	OperatorID string
}

// DayResult reports what was stored for one room and day.
type DayResult struct {
	RoomTypeID uuid.UUID `json:"room_type_id"`
	DayKey     string    `json:"day_key"`
	Previous   *int      `json:"previous,omitempty"`
	Requested  int       `json:"requested"`
	Applied    int       `json:"applied"`
	Active     int       `json:"active_bookings"`
	Clamped    bool      `json:"clamped"`
}

// AdjustmentResult aggregates a bulk edit. AppliedLimit is set when any day was clamped.
type AdjustmentResult struct {
	Success      bool        `json:"success"`
	AppliedLimit bool        `json:"applied_limit"`
	Days         []DayResult `json:"days"`
}

type service struct {
	repo      Repository
	tx        txRunner
	occupancy Occupancy
	logg      *logger.Logger
}

// NewService builds the inventory adjustment service.
func NewService(repo Repository, tx txRunner, occupancy Occupancy, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if occupancy == nil {
		return nil, fmt.Errorf("occupancy counter required")
	}
	return &service{repo: repo, tx: tx, occupancy: occupancy, logg: logg}, nil
}

func (s *service) Apply(ctx context.Context, req AdjustmentRequest) (*AdjustmentResult, error) {
	days, err := validateRequest(req)
	if err != nil {
		return nil, err
	}
	if s.logg != nil {
		ctx = s.logg.WithDayRange(ctx, req.From, req.To)
	}

	var roomIDs []uuid.UUID
	if req.RoomTypeID != nil {
		roomIDs = []uuid.UUID{*req.RoomTypeID}
	} else {
		roomIDs, err = s.repo.ListRoomTypeIDs(ctx)
		if err != nil {
			return nil, s.internal(ctx, "list room types", err)
		}
	}

	result := &AdjustmentResult{Days: make([]DayResult, 0, len(roomIDs)*len(days))}
	for _, roomID := range roomIDs {
		for _, day := range days {
			res, err := s.applyDay(ctx, roomID, day, req)
			if err != nil {
				return nil, err
			}
			if res.Clamped {
				result.AppliedLimit = true
			}
			result.Days = append(result.Days, res)
		}
	}
	result.Success = true

	if s.logg != nil {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"rooms":         len(roomIDs),
			"days":          len(days),
			"requested":     req.TotalUnits,
			"applied_limit": result.AppliedLimit,
		}), "inventory adjustment applied")
	}
	return result, nil
}

// applyDay recomputes active bookings and writes the clamped total inside one transaction.
func (s *service) applyDay(ctx context.Context, roomID uuid.UUID, day string, req AdjustmentRequest) (DayResult, error) {
	out := DayResult{RoomTypeID: roomID, DayKey: day, Requested: req.TotalUnits}
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		room, err := repo.LockRoomType(ctx, roomID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "room type not found").
					WithDetails(map[string]any{"room_type_id": roomID.String()})
			}
			return err
		}

		prev, err := repo.FindAdjustment(ctx, roomID, day)
		switch {
		case err == nil:
			units := prev.TotalUnits
			out.Previous = &units
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return err
		}

		active, err := s.occupancy.ActiveOnDay(ctx, tx, roomID, day)
		if err != nil {
			return err
		}
		out.Active = active
		out.Applied, out.Clamped = clamp(req.TotalUnits, room.TotalUnits, active)

		adj := &models.InventoryAdjustment{
			RoomTypeID: roomID,
			DayKey:     day,
			TotalUnits: out.Applied,
		}
		if req.OperatorID != "" {
			operator := req.OperatorID
			adj.UpdatedBy = &operator
		}
		return repo.UpsertAdjustment(ctx, adj)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return DayResult{}, typed
		}
		logCtx := ctx
		if s.logg != nil {
			logCtx = s.logg.WithRoomTypeID(s.logg.WithField(ctx, "day_key", day), roomID.String())
		}
		return DayResult{}, s.internal(logCtx, "apply inventory day", err)
	}
	return out, nil
}

// clamp limits requested to the physical units not already taken by active bookings.
func clamp(requested, physical, active int) (int, bool) {
	limit := physical - active
	if limit < 0 {
		limit = 0
	}
	if requested > limit {
		return limit, true
	}
	return requested, false
}

func validateRequest(req AdjustmentRequest) ([]string, error) {
	if req.TotalUnits < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "total_units cannot be negative")
	}
	if !daykey.Valid(req.From) || !daykey.Valid(req.To) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from and to must be valid YYYY-MM-DD dates")
	}
	if daykey.Compare(req.From, req.To) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "from must not be after to")
	}
	days, err := daykey.EachInclusive(req.From, req.To)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid day range")
	}
	if len(days) > MaxAdjustmentDays {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("at most %d days per adjustment", MaxAdjustmentDays))
	}
	return days, nil
}

func (s *service) internal(ctx context.Context, op string, err error) error {
	if s.logg != nil {
		s.logg.Error(ctx, "inventory: "+op, err)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, op)
}
