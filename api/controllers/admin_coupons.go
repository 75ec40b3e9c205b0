package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborstay/booking-backend/api/responses"
	"github.com/harborstay/booking-backend/api/validators"
	"github.com/harborstay/booking-backend/internal/coupons"
	"github.com/harborstay/booking-backend/pkg/db/models"
	"github.com/harborstay/booking-backend/pkg/enums"
	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
	"github.com/harborstay/booking-backend/pkg/logger"
)

type confirmRedemptionRequest struct {
	BookingID uuid.UUID `json:"booking_id" validate:"required"`
}

type redemptionResponse struct {
	ID             uuid.UUID              `json:"id"`
	CouponID       uuid.UUID              `json:"coupon_id"`
	Status         enums.RedemptionStatus `json:"status"`
	BookingID      *uuid.UUID             `json:"booking_id,omitempty"`
	DiscountAmount decimal.Decimal        `json:"discount_amount"`
	ConfirmedAt    *time.Time             `json:"confirmed_at,omitempty"`
}

func newRedemptionResponse(r *models.CouponRedemption) redemptionResponse {
	return redemptionResponse{
		ID:             r.ID,
		CouponID:       r.CouponID,
		Status:         r.Status,
		BookingID:      r.BookingID,
		DiscountAmount: r.DiscountAmount,
		ConfirmedAt:    r.ConfirmedAt,
	}
}

// AdminConfirmRedemption attaches a completed booking to a live coupon hold.
func AdminConfirmRedemption(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		redemptionID, err := uuid.Parse(strings.TrimSpace(chi.URLParam(r, "redemptionId")))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid redemption id"))
			return
		}

		var payload confirmRedemptionRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		redemption, err := svc.Confirm(r.Context(), redemptionID, payload.BookingID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, newRedemptionResponse(redemption))
	}
}
