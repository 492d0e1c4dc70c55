package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/rihlago/tourism-booking/internal/booking"
	"github.com/rihlago/tourism-booking/internal/model"
)

// fakeStore is a minimal booking.Store for handler tests: one entity,
// in-memory ledger, transactions applied directly (handler tests never
// exercise rollback, the engine tests do).
type fakeStore struct {
	entity   model.BookableEntity
	bookings []model.Booking
	nextID   uint64
}

func newFakeStore(e model.BookableEntity) *fakeStore {
	return &fakeStore{entity: e, nextID: 1}
}

func (s *fakeStore) WithTx(ctx context.Context, fn func(tx booking.StoreTx) error) error {
	return fn((*fakeTx)(s))
}

func (s *fakeStore) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			b := s.bookings[i]
			return &b, nil
		}
	}
	return nil, booking.ErrBookingNotFound
}

func (s *fakeStore) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	out := make([]model.Booking, 0)
	for _, b := range s.bookings {
		if f.UserID != 0 && b.UserID != f.UserID {
			continue
		}
		if f.Entity != nil && b.Entity != *f.Entity {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *fakeStore) EntityByRef(ctx context.Context, ref model.EntityRef) (*model.BookableEntity, error) {
	if ref != s.entity.Ref {
		return nil, booking.ErrEntityNotFound
	}
	e := s.entity
	return &e, nil
}

type fakeTx fakeStore

func (t *fakeTx) EntityByRef(ctx context.Context, ref model.EntityRef) (*model.BookableEntity, error) {
	return (*fakeStore)(t).EntityByRef(ctx, ref)
}

func (t *fakeTx) ResolveFeatured(ctx context.Context, featuredID uint64) (uint64, error) {
	return 0, booking.ErrEntityNotFound
}

func (t *fakeTx) SumQuantityForUser(ctx context.Context, ref model.EntityRef, userID uint64) (int, error) {
	total := 0
	for _, b := range t.bookings {
		if b.UserID == userID && b.Entity == ref && b.PaymentStatus != model.PaymentFailed {
			total += b.Qty
		}
	}
	return total, nil
}

func (t *fakeTx) DecrementSeats(ctx context.Context, ref model.EntityRef, qty int) (bool, error) {
	if ref != t.entity.Ref {
		return false, booking.ErrEntityNotFound
	}
	if t.entity.AvailableSeats < qty {
		return false, nil
	}
	t.entity.AvailableSeats -= qty
	return true, nil
}

func (t *fakeTx) RestoreSeats(ctx context.Context, ref model.EntityRef, qty int) error {
	t.entity.AvailableSeats += qty
	if t.entity.AvailableSeats > t.entity.TotalSeats {
		t.entity.AvailableSeats = t.entity.TotalSeats
	}
	return nil
}

func (t *fakeTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	b.ID = t.nextID
	t.nextID++
	t.bookings = append(t.bookings, *b)
	return nil
}

func (t *fakeTx) BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	return (*fakeStore)(t).BookingByID(ctx, id)
}

func (t *fakeTx) UpdateBookingStatus(ctx context.Context, id uint64, status model.PaymentStatus) error {
	for i := range t.bookings {
		if t.bookings[i].ID == id {
			t.bookings[i].PaymentStatus = status
			return nil
		}
	}
	return booking.ErrBookingNotFound
}

func eventEntity(seats, limit int) model.BookableEntity {
	return model.BookableEntity{
		Ref:            model.EntityRef{Kind: model.KindEvent, ID: 1},
		Title:          "Riyadh Season Opening",
		BasePriceCents: 10000,
		TotalSeats:     seats,
		AvailableSeats: seats,
		PerPersonLimit: limit,
	}
}

func newTestHandler(store *fakeStore) *BookingHandler {
	engine := booking.NewEngine(store, nil, nil, zerolog.Nop())
	return NewBookingHandler(engine, store)
}

// doJSON drives one handler call through echo with an authenticated user.
func doJSON(t *testing.T, h echo.HandlerFunc, method, target, body string, userID uint64, params ...string) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	e.Validator = NewValidator()

	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if userID != 0 {
		c.Set("user_id", userID)
	}
	if len(params) > 0 {
		names := make([]string, 0, len(params)/2)
		values := make([]string, 0, len(params)/2)
		for i := 0; i+1 < len(params); i += 2 {
			names = append(names, params[i])
			values = append(values, params[i+1])
		}
		c.SetParamNames(names...)
		c.SetParamValues(values...)
	}

	if err := h(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestCreateBooking(t *testing.T) {
	store := newFakeStore(eventEntity(50, 5))
	h := newTestHandler(store)

	rec := doJSON(t, h.Create, http.MethodPost, "/v1/bookings",
		`{"event_id":1,"qty":2,"tier":"vip"}`, 7)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var res booking.Reservation
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Booking.TotalCents != 39008 {
		t.Fatalf("total = %d, want 39008", res.Booking.TotalCents)
	}
	if res.Entity.AvailableSeats != 48 {
		t.Fatalf("available = %d, want 48", res.Entity.AvailableSeats)
	}
}

func TestCreateBookingRejectsAmbiguousRef(t *testing.T) {
	h := newTestHandler(newFakeStore(eventEntity(50, 0)))

	rec := doJSON(t, h.Create, http.MethodPost, "/v1/bookings",
		`{"event_id":1,"tour_id":2,"qty":1}`, 7)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestCreateBookingUnknownEntity(t *testing.T) {
	h := newTestHandler(newFakeStore(eventEntity(50, 0)))

	rec := doJSON(t, h.Create, http.MethodPost, "/v1/bookings",
		`{"tour_id":42,"qty":1}`, 7)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestCreateBookingLimitPayload(t *testing.T) {
	store := newFakeStore(eventEntity(50, 2))
	h := newTestHandler(store)

	rec := doJSON(t, h.Create, http.MethodPost, "/v1/bookings",
		`{"event_id":1,"qty":2}`, 7)
	if rec.Code != http.StatusCreated {
		t.Fatalf("first booking: status = %d", rec.Code)
	}

	rec = doJSON(t, h.Create, http.MethodPost, "/v1/bookings",
		`{"event_id":1,"qty":1}`, 7)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	var body struct {
		AlreadyBooked int `json:"already_booked"`
		Limit         int `json:"limit"`
		Attempted     int `json:"attempted"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.AlreadyBooked != 2 || body.Limit != 2 || body.Attempted != 1 {
		t.Fatalf("unexpected limit detail: %+v", body)
	}
}

func TestCreateBookingUnauthenticated(t *testing.T) {
	h := newTestHandler(newFakeStore(eventEntity(50, 0)))

	rec := doJSON(t, h.Create, http.MethodPost, "/v1/bookings",
		`{"event_id":1,"qty":1}`, 0)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestConfirmBooking(t *testing.T) {
	store := newFakeStore(eventEntity(50, 0))
	h := newTestHandler(store)

	rec := doJSON(t, h.Create, http.MethodPost, "/v1/bookings",
		`{"event_id":1,"qty":2}`, 7)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}

	rec = doJSON(t, h.Confirm, http.MethodPost, "/v1/bookings/1/confirm", "", 7, "id", "1")
	if rec.Code != http.StatusOK {
		t.Fatalf("confirm: status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		Booking model.Booking `json:"booking"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Booking.PaymentStatus != model.PaymentPaid {
		t.Fatalf("status = %s, want paid", body.Booking.PaymentStatus)
	}

	rec = doJSON(t, h.Confirm, http.MethodPost, "/v1/bookings/999/confirm", "", 7, "id", "999")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown booking: status = %d, want 404", rec.Code)
	}
}

func TestGetBookingHidesForeignEntries(t *testing.T) {
	store := newFakeStore(eventEntity(50, 0))
	h := newTestHandler(store)

	rec := doJSON(t, h.Create, http.MethodPost, "/v1/bookings",
		`{"event_id":1,"qty":1}`, 7)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create: status = %d", rec.Code)
	}

	rec = doJSON(t, h.Get, http.MethodGet, "/v1/bookings/1", "", 8, "id", "1")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("foreign booking: status = %d, want 404", rec.Code)
	}

	rec = doJSON(t, h.Get, http.MethodGet, "/v1/bookings/1", "", 7, "id", "1")
	if rec.Code != http.StatusOK {
		t.Fatalf("own booking: status = %d", rec.Code)
	}
}

func TestListBookingsFilters(t *testing.T) {
	store := newFakeStore(eventEntity(50, 0))
	h := newTestHandler(store)

	for _, uid := range []uint64{7, 7, 8} {
		rec := doJSON(t, h.Create, http.MethodPost, "/v1/bookings",
			`{"event_id":1,"qty":1}`, uid)
		if rec.Code != http.StatusCreated {
			t.Fatalf("create for user %d: status = %d", uid, rec.Code)
		}
	}

	rec := doJSON(t, h.List, http.MethodGet, "/v1/bookings", "", 7)
	if rec.Code != http.StatusOK {
		t.Fatalf("list: status = %d", rec.Code)
	}
	var body struct {
		Items []model.Booking `json:"items"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Items) != 2 {
		t.Fatalf("items = %d, want 2", len(body.Items))
	}

	rec = doJSON(t, h.List, http.MethodGet, "/v1/bookings?kind=event", "", 7)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("kind without entity_id: status = %d, want 400", rec.Code)
	}
}

func TestCheckoutMissingContact(t *testing.T) {
	store := newFakeStore(eventEntity(50, 0))
	engine := booking.NewEngine(store, stubProvider{url: "https://pay.example.com/s/1"}, nil, zerolog.Nop())
	h := NewBookingHandler(engine, store)

	rec := doJSON(t, h.Checkout, http.MethodPost, "/v1/checkout",
		`{"event_id":1,"qty":1}`, 7)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, h.Checkout, http.MethodPost, "/v1/checkout",
		`{"event_id":1,"qty":1,"user_name":"Sara","user_email":"sara@example.com","user_phone":"+966500000001"}`, 7)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var body struct {
		URL       string `json:"url"`
		BookingID uint64 `json:"booking_id"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.URL == "" || body.BookingID == 0 {
		t.Fatalf("unexpected checkout response: %+v", body)
	}
}

type stubProvider struct{ url string }

func (p stubProvider) CreateSession(ctx context.Context, in booking.PaymentSessionInput) (string, error) {
	return p.url, nil
}
