package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/rihlago/tourism-booking/internal/model"
)

// Catalog is the read surface the public browse endpoints need from the
// entity store.
type Catalog interface {
	ListEntities(ctx context.Context, kind model.EntityKind) ([]model.BookableEntity, error)
	EntityByRef(ctx context.Context, ref model.EntityRef) (*model.BookableEntity, error)
}

// BrowseHandler serves the public catalog listings for events, tours
// and dining items.
type BrowseHandler struct {
	catalog Catalog
}

// NewBrowseHandler constructs the handler.
func NewBrowseHandler(catalog Catalog) *BrowseHandler {
	if catalog == nil {
		panic("nil catalog passed to NewBrowseHandler")
	}
	return &BrowseHandler{catalog: catalog}
}

// entityResponse is the wire shape for a catalog entry.  booked_seats is
// derived so clients don't have to subtract.
type entityResponse struct {
	ID             uint64 `json:"id"`
	Kind           string `json:"kind"`
	Title          string `json:"title"`
	BasePriceCents int64  `json:"base_price_cents"`
	TotalSeats     int    `json:"total_seats"`
	AvailableSeats int    `json:"available_seats"`
	BookedSeats    int    `json:"booked_seats"`
	PerPersonLimit int    `json:"per_person_limit"`
}

func toEntityResponse(e model.BookableEntity) entityResponse {
	return entityResponse{
		ID:             e.Ref.ID,
		Kind:           string(e.Ref.Kind),
		Title:          e.Title,
		BasePriceCents: e.BasePriceCents,
		TotalSeats:     e.TotalSeats,
		AvailableSeats: e.AvailableSeats,
		BookedSeats:    e.BookedSeats(),
		PerPersonLimit: e.PerPersonLimit,
	}
}

// List returns a GET handler for all entities of one kind.
func (h *BrowseHandler) List(kind model.EntityKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		items, err := h.catalog.ListEntities(c.Request().Context(), kind)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load listings"})
		}
		out := make([]entityResponse, 0, len(items))
		for _, e := range items {
			out = append(out, toEntityResponse(e))
		}
		return c.JSON(http.StatusOK, echo.Map{"items": out})
	}
}

// Get returns a GET handler for a single entity of one kind.
func (h *BrowseHandler) Get(kind model.EntityKind) echo.HandlerFunc {
	return func(c echo.Context) error {
		ref, err := entityRefParam(c, kind)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
		}
		e, err := h.catalog.EntityByRef(c.Request().Context(), ref)
		if err != nil {
			return writeBookingError(c, err)
		}
		return c.JSON(http.StatusOK, toEntityResponse(*e))
	}
}

func entityRefParam(c echo.Context, kind model.EntityKind) (model.EntityRef, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return model.EntityRef{}, errInvalidID
	}
	return model.EntityRef{Kind: kind, ID: id}, nil
}
