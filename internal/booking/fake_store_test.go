package booking

import (
	"context"
	"sync"
	"time"

	"github.com/rihlago/tourism-booking/internal/model"
)

// memStore is an in-memory Store with real transaction semantics: every
// WithTx works on a deep copy and the copy replaces the live state only
// when fn returns nil.  Transactions are serialized by a mutex, which is
// strict enough to exercise the engine's atomicity guarantees.
type memStore struct {
	mu       sync.Mutex
	entities map[model.EntityRef]model.BookableEntity
	featured map[uint64]uint64 // featured id -> dining id
	bookings []model.Booking
	nextID   uint64

	insertErr error // when set, InsertBooking fails with it
}

func newMemStore(entities ...model.BookableEntity) *memStore {
	s := &memStore{
		entities: make(map[model.EntityRef]model.BookableEntity),
		featured: make(map[uint64]uint64),
		nextID:   1,
	}
	for _, e := range entities {
		s.entities[e.Ref] = e
	}
	return s
}

func (s *memStore) WithTx(ctx context.Context, fn func(tx StoreTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &memTx{
		store:    s,
		entities: make(map[model.EntityRef]model.BookableEntity, len(s.entities)),
		bookings: make([]model.Booking, len(s.bookings)),
		nextID:   s.nextID,
	}
	for ref, e := range s.entities {
		tx.entities[ref] = e
	}
	copy(tx.bookings, s.bookings)

	if err := fn(tx); err != nil {
		return err
	}

	s.entities = tx.entities
	s.bookings = tx.bookings
	s.nextID = tx.nextID
	return nil
}

func (s *memStore) BookingByID(ctx context.Context, id uint64) (*model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.bookings {
		if s.bookings[i].ID == id {
			b := s.bookings[i]
			return &b, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (s *memStore) ListBookings(ctx context.Context, f model.BookingFilter) ([]model.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
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

func (s *memStore) EntityByRef(ctx context.Context, ref model.EntityRef) (*model.BookableEntity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entities[ref]
	if !ok {
		return nil, ErrEntityNotFound
	}
	return &e, nil
}

// entity returns the committed state for assertions.
func (s *memStore) entity(ref model.EntityRef) model.BookableEntity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entities[ref]
}

// memTx holds the staged state of one transaction.
type memTx struct {
	store    *memStore
	entities map[model.EntityRef]model.BookableEntity
	bookings []model.Booking
	nextID   uint64
}

func (t *memTx) EntityByRef(ctx context.Context, ref model.EntityRef) (*model.BookableEntity, error) {
	e, ok := t.entities[ref]
	if !ok {
		return nil, ErrEntityNotFound
	}
	return &e, nil
}

func (t *memTx) ResolveFeatured(ctx context.Context, featuredID uint64) (uint64, error) {
	id, ok := t.store.featured[featuredID]
	if !ok {
		return 0, ErrEntityNotFound
	}
	return id, nil
}

func (t *memTx) SumQuantityForUser(ctx context.Context, ref model.EntityRef, userID uint64) (int, error) {
	total := 0
	for _, b := range t.bookings {
		if b.UserID == userID && b.Entity == ref && b.PaymentStatus != model.PaymentFailed {
			total += b.Qty
		}
	}
	return total, nil
}

func (t *memTx) DecrementSeats(ctx context.Context, ref model.EntityRef, qty int) (bool, error) {
	e, ok := t.entities[ref]
	if !ok {
		return false, ErrEntityNotFound
	}
	if e.AvailableSeats < qty {
		return false, nil
	}
	e.AvailableSeats -= qty
	t.entities[ref] = e
	return true, nil
}

func (t *memTx) RestoreSeats(ctx context.Context, ref model.EntityRef, qty int) error {
	e, ok := t.entities[ref]
	if !ok {
		return ErrEntityNotFound
	}
	e.AvailableSeats += qty
	if e.AvailableSeats > e.TotalSeats {
		e.AvailableSeats = e.TotalSeats
	}
	t.entities[ref] = e
	return nil
}

func (t *memTx) InsertBooking(ctx context.Context, b *model.Booking) error {
	if t.store.insertErr != nil {
		return t.store.insertErr
	}
	b.ID = t.nextID
	t.nextID++
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	t.bookings = append(t.bookings, *b)
	return nil
}

func (t *memTx) BookingForUpdate(ctx context.Context, id uint64) (*model.Booking, error) {
	for i := range t.bookings {
		if t.bookings[i].ID == id {
			b := t.bookings[i]
			return &b, nil
		}
	}
	return nil, ErrBookingNotFound
}

func (t *memTx) UpdateBookingStatus(ctx context.Context, id uint64, status model.PaymentStatus) error {
	for i := range t.bookings {
		if t.bookings[i].ID == id {
			t.bookings[i].PaymentStatus = status
			t.bookings[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrBookingNotFound
}

// stubPayments implements PaymentProvider with canned behaviour.
type stubPayments struct {
	url  string
	err  error
	last PaymentSessionInput
}

func (p *stubPayments) CreateSession(ctx context.Context, in PaymentSessionInput) (string, error) {
	p.last = in
	if p.err != nil {
		return "", p.err
	}
	return p.url, nil
}

// recordingEvents implements EventPublisher and remembers what it saw.
type recordingEvents struct {
	mu      sync.Mutex
	created []model.Booking
	paid    []model.Booking
}

func (r *recordingEvents) BookingCreated(ctx context.Context, b model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.created = append(r.created, b)
}

func (r *recordingEvents) BookingPaid(ctx context.Context, b model.Booking) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paid = append(r.paid, b)
}
