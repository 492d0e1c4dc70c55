package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rihlago/tourism-booking/internal/booking"
	"github.com/rihlago/tourism-booking/internal/model"
)

// BookingHandler serves the reservation, checkout and confirmation
// endpoints.  All capacity and limit enforcement lives in the engine;
// the handler only binds, validates shape and maps errors.
type BookingHandler struct {
	engine *booking.Engine
	store  booking.Store
}

// NewBookingHandler constructs the handler.  Both dependencies are
// required.
func NewBookingHandler(engine *booking.Engine, store booking.Store) *BookingHandler {
	if engine == nil || store == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{engine: engine, store: store}
}

type createBookingRequest struct {
	entityRefFields
	Qty       int    `json:"qty" validate:"required,min=1"`
	Tier      string `json:"tier" validate:"omitempty,oneof=standard vip vvip"`
	UserName  string `json:"user_name"`
	UserEmail string `json:"user_email" validate:"omitempty,email"`
	UserPhone string `json:"user_phone"`
}

func (r createBookingRequest) reserveInput(userID uint64) (booking.ReserveInput, error) {
	ref, featuredID, err := r.resolve()
	if err != nil {
		return booking.ReserveInput{}, err
	}
	tier, err := model.ParseTier(r.Tier)
	if err != nil {
		return booking.ReserveInput{}, err
	}
	return booking.ReserveInput{
		Ref:        ref,
		FeaturedID: featuredID,
		UserID:     userID,
		Qty:        r.Qty,
		Tier:       tier,
		Contact:    booking.Contact{Name: r.UserName, Email: r.UserEmail, Phone: r.UserPhone},
	}, nil
}

// Create handles POST /v1/bookings.  It reserves seats and returns the
// pending ledger entry together with the entity's updated seat counts.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	in, err := req.reserveInput(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	res, err := h.engine.Reserve(c.Request().Context(), in)
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusCreated, res)
}

// Checkout handles POST /v1/checkout.  Same inputs as Create, but the
// contact triple is mandatory and the response carries the payment
// redirect URL.
func (h *BookingHandler) Checkout(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	in, err := req.reserveInput(userID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	res, err := h.engine.Checkout(c.Request().Context(), in)
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"url":        res.RedirectURL,
		"booking_id": res.Booking.ID,
	})
}

// Confirm handles POST /v1/bookings/:id/confirm, the return leg of the
// payment redirect.  Idempotent: confirming an already-paid booking
// succeeds without side effects.
func (h *BookingHandler) Confirm(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.engine.Confirm(c.Request().Context(), id)
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// Fail handles POST /v1/bookings/:id/fail (admin only): releases a
// pending booking and returns its seats to the pool.
func (h *BookingHandler) Fail(c echo.Context) error {
	id, err := bookingID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.engine.Fail(c.Request().Context(), id)
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

// List handles GET /v1/bookings.  It returns the caller's bookings,
// optionally narrowed to one entity via kind+entity_id query parameters.
func (h *BookingHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	filter := model.BookingFilter{UserID: userID}
	if kindParam := c.QueryParam("kind"); kindParam != "" {
		kind, err := model.ParseEntityKind(kindParam)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		entityID, err := strconv.ParseUint(c.QueryParam("entity_id"), 10, 64)
		if err != nil || entityID == 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "entity_id is required with kind"})
		}
		filter.Entity = &model.EntityRef{Kind: kind, ID: entityID}
	}

	items, err := h.store.ListBookings(c.Request().Context(), filter)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get handles GET /v1/bookings/:id for the booking's owner.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := bookingID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.store.BookingByID(c.Request().Context(), id)
	if err != nil {
		return writeBookingError(c, err)
	}
	if b.UserID != userID {
		// Do not reveal whether a foreign booking exists.
		return c.JSON(http.StatusNotFound, echo.Map{"error": booking.ErrBookingNotFound.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"booking": b})
}

func bookingID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errInvalidID
	}
	return id, nil
}

var errInvalidID = echo.NewHTTPError(http.StatusBadRequest, "invalid id")
