package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rihlago/tourism-booking/internal/model"
)

// CapacityStore is the admin write surface of the entity store.
type CapacityStore interface {
	UpdateCapacity(ctx context.Context, ref model.EntityRef, upd model.CapacityUpdate) (*model.BookableEntity, error)
}

// AdminHandler serves the capacity management endpoints.
type AdminHandler struct {
	store CapacityStore
}

// NewAdminHandler constructs the handler.
func NewAdminHandler(store CapacityStore) *AdminHandler {
	if store == nil {
		panic("nil store passed to NewAdminHandler")
	}
	return &AdminHandler{store: store}
}

type capacityRequest struct {
	TotalSeats     *int `json:"total_seats" validate:"omitempty,min=0"`
	PerPersonLimit *int `json:"per_person_limit" validate:"omitempty,min=1"`
}

// UpdateCapacity handles PATCH /v1/admin/:kind/:id/capacity.  Raising or
// lowering total_seats recomputes available seats without touching
// existing bookings.
func (h *AdminHandler) UpdateCapacity(c echo.Context) error {
	kind, err := model.ParseEntityKind(c.Param("kind"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}

	var req capacityRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.TotalSeats == nil && req.PerPersonLimit == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nothing to update"})
	}

	e, err := h.store.UpdateCapacity(c.Request().Context(), model.EntityRef{Kind: kind, ID: id}, model.CapacityUpdate{
		TotalSeats:     req.TotalSeats,
		PerPersonLimit: req.PerPersonLimit,
	})
	if err != nil {
		return writeBookingError(c, err)
	}
	return c.JSON(http.StatusOK, toEntityResponse(*e))
}
