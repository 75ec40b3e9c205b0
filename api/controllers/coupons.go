package controllers

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/harborstay/booking-backend/api/middleware"
	"github.com/harborstay/booking-backend/api/responses"
	"github.com/harborstay/booking-backend/api/validators"
	"github.com/harborstay/booking-backend/internal/coupons"
	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
	"github.com/harborstay/booking-backend/pkg/logger"
)

const maxUserAgentLen = 512

type couponRequest struct {
	Code                  string          `json:"code" validate:"required,max=64"`
	Subtotal              decimal.Decimal `json:"subtotal"`
	GuestEmail            string          `json:"guest_email" validate:"omitempty,email,max=254"`
	GuestPhone            string          `json:"guest_phone" validate:"omitempty,max=32"`
	RoomTypeID            *uuid.UUID      `json:"room_type_id,omitempty"`
	Channel               string          `json:"channel" validate:"omitempty,max=32"`
	OtherDiscountsApplied bool            `json:"other_discounts_applied"`
}

func (c couponRequest) toDomain() coupons.Request {
	return coupons.Request{
		Code:                  c.Code,
		Subtotal:              c.Subtotal,
		GuestEmail:            c.GuestEmail,
		GuestPhone:            c.GuestPhone,
		RoomTypeID:            c.RoomTypeID,
		Channel:               c.Channel,
		OtherDiscountsApplied: c.OtherDiscountsApplied,
	}
}

type releaseRequest struct {
	ReservationID uuid.UUID `json:"reservation_id" validate:"required"`
	GuestEmail    string    `json:"guest_email" validate:"omitempty,email,max=254"`
}

func originFromRequest(r *http.Request) coupons.Origin {
	return coupons.Origin{
		IP:        middleware.ClientIP(r),
		UserAgent: validators.SanitizeString(r.UserAgent(), maxUserAgentLen),
	}
}

// CouponValidate previews a coupon against a subtotal without holding it.
func CouponValidate(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Validate(r.Context(), payload.toDomain(), originFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, couponStatus(result.Throttled()), result)
	}
}

// CouponReserve places a time-limited hold on one coupon slot for a guest.
func CouponReserve(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload couponRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Reserve(r.Context(), payload.toDomain(), originFromRequest(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, couponStatus(result.Throttled()), result)
	}
}

// CouponRelease gives back an unattached hold when checkout is abandoned.
func CouponRelease(svc coupons.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "coupon service unavailable"))
			return
		}

		var payload releaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Release(r.Context(), payload.ReservationID, payload.GuestEmail)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

func couponStatus(throttled bool) int {
	if throttled {
		return http.StatusTooManyRequests
	}
	return http.StatusOK
}
