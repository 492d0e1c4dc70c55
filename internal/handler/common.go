// Package handler implements the HTTP surface over the booking engine
// and the catalog store.
package handler

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/rihlago/tourism-booking/internal/booking"
	"github.com/rihlago/tourism-booking/internal/model"
)

// Validator adapts go-playground/validator to echo's Validator interface.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds the request validator installed on the echo
// instance at startup.
func NewValidator() *Validator {
	return &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}
}

func (v *Validator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

// currentUserID reads the authenticated user id stored by the JWT
// middleware.
func currentUserID(c echo.Context) (uint64, error) {
	if id, ok := c.Get("user_id").(uint64); ok && id != 0 {
		return id, nil
	}
	return 0, errors.New("no authenticated user in context")
}

// entityRefFields is embedded in booking and checkout requests: exactly
// one of the four ids must be set.  featured_id points at a promoted
// dining item and is resolved by the engine.
type entityRefFields struct {
	EventID    uint64 `json:"event_id"`
	TourID     uint64 `json:"tour_id"`
	DiningID   uint64 `json:"dining_id"`
	FeaturedID uint64 `json:"featured_id"`
}

// resolve turns the optional id fields into a tagged reference.  The
// returned ref is zero when only featured_id was supplied.
func (f entityRefFields) resolve() (ref model.EntityRef, featuredID uint64, err error) {
	set := 0
	if f.EventID != 0 {
		set++
		ref = model.EntityRef{Kind: model.KindEvent, ID: f.EventID}
	}
	if f.TourID != 0 {
		set++
		ref = model.EntityRef{Kind: model.KindTour, ID: f.TourID}
	}
	if f.DiningID != 0 {
		set++
		ref = model.EntityRef{Kind: model.KindDining, ID: f.DiningID}
	}
	if f.FeaturedID != 0 {
		set++
	}
	if set != 1 {
		return model.EntityRef{}, 0, errors.New("exactly one of event_id, tour_id, dining_id or featured_id is required")
	}
	if f.FeaturedID != 0 {
		return model.EntityRef{}, f.FeaturedID, nil
	}
	return ref, 0, nil
}

// writeBookingError maps engine errors onto HTTP responses.  Limit and
// capacity failures carry actionable detail; anything unrecognized is an
// infrastructure failure and stays generic.
func writeBookingError(c echo.Context, err error) error {
	var limitErr *booking.LimitExceededError
	switch {
	case errors.Is(err, booking.ErrEntityNotFound),
		errors.Is(err, booking.ErrBookingNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.As(err, &limitErr):
		return c.JSON(http.StatusBadRequest, echo.Map{
			"error":          limitErr.Error(),
			"already_booked": limitErr.AlreadyBooked,
			"limit":          limitErr.Limit,
			"attempted":      limitErr.Attempted,
		})
	case errors.Is(err, booking.ErrInsufficientCapacity),
		errors.Is(err, booking.ErrMissingContact),
		errors.Is(err, booking.ErrInvalidQuantity):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, booking.ErrNotPending):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "something went wrong, please try again"})
	}
}
