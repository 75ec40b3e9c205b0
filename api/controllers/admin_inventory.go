package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/harborstay/booking-backend/api/middleware"
	"github.com/harborstay/booking-backend/api/responses"
	"github.com/harborstay/booking-backend/api/validators"
	"github.com/harborstay/booking-backend/internal/inventory"
	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
	"github.com/harborstay/booking-backend/pkg/logger"
)

// allRoomTypes selects every active room type in an adjustment.
const allRoomTypes = "all"

type inventoryAdjustmentRequest struct {
	RoomTypeID string `json:"room_type_id" validate:"required"`
	From       string `json:"from" validate:"required,len=10"`
	To         string `json:"to" validate:"omitempty,len=10"`
	TotalUnits *int   `json:"total_units" validate:"required,min=0"`
}

// AdminInventoryAdjust sets the sellable units for a room type over a day range.
// The stored value may be clamped up to the number of active bookings.
func AdminInventoryAdjust(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		var payload inventoryAdjustmentRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		req := inventory.AdjustmentRequest{
			From:       payload.From,
			To:         payload.To,
			TotalUnits: *payload.TotalUnits,
			OperatorID: middleware.OperatorIDFromContext(r.Context()),
		}
		if req.To == "" {
			req.To = req.From
		}
		if payload.RoomTypeID != allRoomTypes {
			id, err := uuid.Parse(payload.RoomTypeID)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "room_type_id must be a uuid or \"all\""))
				return
			}
			req.RoomTypeID = &id
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDayRange(ctx, req.From, req.To)
			if req.RoomTypeID != nil {
				ctx = logg.WithRoomTypeID(ctx, req.RoomTypeID.String())
			}
		}

		result, err := svc.Apply(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
