package devapi

import (
	"cmp"
	"slices"
	"sync"
	"time"

	"github.com/mehmetcc/resirent/internal/rental"
)

type photoRecord struct {
	id   int64
	path string
}

type residenceRecord struct {
	rental.Residence
	photos    []photoRecord
	updatedAt time.Time
}

type bookingRecord struct {
	id          int64
	residenceID int64
	guestID     int64
	checkIn     time.Time
	checkOut    time.Time
	status      rental.BookingStatus
	createdAt   time.Time
}

// store keeps listings and bookings in memory. Deleting a residence deletes
// its bookings.
type store struct {
	mu            sync.RWMutex
	nextResidence int64
	nextPhoto     int64
	nextBooking   int64
	residences    map[int64]*residenceRecord
	bookings      map[int64]*bookingRecord
}

func newStore() *store {
	return &store{
		residences: make(map[int64]*residenceRecord),
		bookings:   make(map[int64]*bookingRecord),
	}
}

func (s *store) createResidence(r rental.Residence, photos []string) residenceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextResidence++
	rec := &residenceRecord{Residence: r, updatedAt: r.CreatedAt}
	rec.ID = s.nextResidence
	s.addPhotos(rec, photos)
	s.residences[rec.ID] = rec
	return rec.clone()
}

func (s *store) addPhotos(rec *residenceRecord, paths []string) {
	for _, p := range paths {
		s.nextPhoto++
		rec.photos = append(rec.photos, photoRecord{id: s.nextPhoto, path: p})
	}
}

func (s *store) residence(id int64) (residenceRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.residences[id]
	if !ok {
		return residenceRecord{}, false
	}
	return rec.clone(), true
}

// listResidences returns the residences matching keep, oldest first.
func (s *store) listResidences(keep func(*residenceRecord) bool) []residenceRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]residenceRecord, 0, len(s.residences))
	for _, rec := range s.residences {
		if keep(rec) {
			out = append(out, rec.clone())
		}
	}
	slices.SortFunc(out, func(a, b residenceRecord) int { return cmp.Compare(a.ID, b.ID) })
	return out
}

func (s *store) countResidences(ownerID int64) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, rec := range s.residences {
		if rec.Owner == ownerID {
			n++
		}
	}
	return n
}

// updateResidence applies fn to the owner's residence. It reports false when
// no such residence belongs to ownerID.
func (s *store) updateResidence(id, ownerID int64, photos []string, now time.Time, fn func(*rental.Residence)) (residenceRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.residences[id]
	if !ok || rec.Owner != ownerID {
		return residenceRecord{}, false
	}
	fn(&rec.Residence)
	s.addPhotos(rec, photos)
	rec.updatedAt = now
	return rec.clone(), true
}

func (s *store) deleteResidence(id, ownerID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.residences[id]
	if !ok || rec.Owner != ownerID {
		return false
	}
	delete(s.residences, id)
	for bid, b := range s.bookings {
		if b.residenceID == id {
			delete(s.bookings, bid)
		}
	}
	return true
}

// createBooking stores b unless a confirmed booking on the same residence
// overlaps [checkIn, checkOut).
func (s *store) createBooking(b bookingRecord) (bookingRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, other := range s.bookings {
		if other.residenceID == b.residenceID &&
			other.status == rental.BookingConfirmed &&
			other.checkIn.Before(b.checkOut) &&
			other.checkOut.After(b.checkIn) {
			return bookingRecord{}, false
		}
	}
	s.nextBooking++
	b.id = s.nextBooking
	s.bookings[b.id] = &b
	return b, true
}

// ownerBookings returns bookings on residences of ownerID, newest first.
func (s *store) ownerBookings(ownerID int64) []bookingRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []bookingRecord
	for _, b := range s.bookings {
		if rec, ok := s.residences[b.residenceID]; ok && rec.Owner == ownerID {
			out = append(out, *b)
		}
	}
	slices.SortFunc(out, func(a, b bookingRecord) int {
		if c := b.createdAt.Compare(a.createdAt); c != 0 {
			return c
		}
		return cmp.Compare(b.id, a.id)
	})
	return out
}

func (s *store) setBookingStatus(id, ownerID int64, status rental.BookingStatus) (bookingRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return bookingRecord{}, false
	}
	if rec, ok := s.residences[b.residenceID]; !ok || rec.Owner != ownerID {
		return bookingRecord{}, false
	}
	b.status = status
	return *b, true
}

func (r *residenceRecord) clone() residenceRecord {
	c := *r
	c.photos = slices.Clone(r.photos)
	if r.Conditions != nil {
		cond := *r.Conditions
		c.Conditions = &cond
	}
	return c
}
