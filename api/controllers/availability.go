package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/harborstay/booking-backend/api/responses"
	"github.com/harborstay/booking-backend/api/validators"
	"github.com/harborstay/booking-backend/internal/availability"
	"github.com/harborstay/booking-backend/internal/pricing"
	pkgerrors "github.com/harborstay/booking-backend/pkg/errors"
	"github.com/harborstay/booking-backend/pkg/logger"
)

const (
	maxAdults   = 20
	maxChildren = 10
)

// AvailabilitySearch prices every sellable room type for a stay and party.
func AvailabilitySearch(svc availability.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "availability service unavailable"))
			return
		}

		req, err := parseSearchRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		ctx := r.Context()
		if logg != nil {
			ctx = logg.WithDayRange(ctx, req.CheckIn, req.CheckOut)
		}

		result, err := svc.Search(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		if result.MinStayRequired {
			responses.WriteError(ctx, nil, w, pkgerrors.New(pkgerrors.CodeStateConflict, "min_stay_required").
				WithDetails(map[string]any{"min_los": result.MinLOS}))
			return
		}

		offers := result.Offers
		if offers == nil {
			offers = []availability.Offer{}
		}
		responses.WriteSuccess(w, searchResponse{Offers: offers})
	}
}

type searchResponse struct {
	Offers []availability.Offer `json:"offers"`
}

func parseSearchRequest(r *http.Request) (availability.SearchRequest, error) {
	q := r.URL.Query()
	req := availability.SearchRequest{
		CheckIn:  validators.SanitizeString(q.Get("check_in"), 10),
		CheckOut: validators.SanitizeString(q.Get("check_out"), 10),
	}
	if req.CheckIn == "" || req.CheckOut == "" {
		return req, pkgerrors.New(pkgerrors.CodeValidation, "check_in and check_out are required")
	}

	adults, err := validators.ParseQueryInt(r, "adults", 1, 0, maxAdults)
	if err != nil {
		return req, err
	}
	req.Adults = adults

	ages, err := parseChildrenAges(q.Get("children_ages"))
	if err != nil {
		return req, err
	}
	req.ChildrenAges = ages
	return req, nil
}

// parseChildrenAges reads a comma separated list such as "4,12".
func parseChildrenAges(raw string) ([]int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	if len(parts) > maxChildren {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "too many children").
			WithDetails(map[string]any{"field": "children_ages", "max": maxChildren})
	}
	ages := make([]int, 0, len(parts))
	for _, part := range parts {
		age, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "children_ages must be a comma separated list of integers").
				WithDetails(map[string]any{"field": "children_ages"})
		}
		if age < 0 || age > pricing.MaxChildAge {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "child age out of range").
				WithDetails(map[string]any{"field": "children_ages", "min": 0, "max": pricing.MaxChildAge})
		}
		ages = append(ages, age)
	}
	return ages, nil
}
