// Package store holds the live AppData snapshot and exposes the mutation
// operations the presentation layer drives. Every operation builds a new
// snapshot and swaps it in; callers never see in-place mutation, so a
// snapshot handed out earlier stays valid.
package store

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"feetrack/internal/core"
)

// Store owns the current snapshot and a version counter that increases by
// one per applied mutation. The version lets the persistence layer drop a
// slow save of an older snapshot that would otherwise clobber a newer one.
type Store struct {
	mu      sync.Mutex
	data    core.AppData
	version uint64

	now   func() time.Time
	newID func() string
}

// New returns a store seeded with the given snapshot at version 0.
func New(data core.AppData) *Store {
	return &Store{
		data:  data.Clone(),
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// NewWithGenerators is New with injectable clock and id generation.
func NewWithGenerators(data core.AppData, now func() time.Time, newID func() string) *Store {
	s := New(data)
	if now != nil {
		s.now = now
	}
	if newID != nil {
		s.newID = newID
	}
	return s
}

// Snapshot returns a copy of the current aggregate.
func (s *Store) Snapshot() core.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone()
}

// Version returns the logical version of the current snapshot.
func (s *Store) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// State returns the snapshot and its version together, for save sequencing.
func (s *Store) State() (core.AppData, uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.data.Clone(), s.version
}

func (s *Store) commit(data core.AppData) {
	s.data = data
	s.version++
}

// AddLocation appends a new location with a fresh id.
func (s *Store) AddLocation(name, color string) (core.Location, error) {
	name = strings.TrimSpace(name)
	loc := core.Location{Name: name, Color: color}
	if err := loc.Validate(); err != nil {
		return core.Location{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	loc.ID = s.newID()
	next := s.data.Clone()
	next.Locations = append(next.Locations, loc)
	s.commit(next)
	return loc, nil
}

// AddStudent enrolls a new active student at an existing location.
// A defaultFee of 0 means "not set"; negative fees are rejected.
func (s *Store) AddStudent(name, locationID string, defaultFee float64) (core.Student, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return core.Student{}, core.ErrEmptyName
	}
	if defaultFee < 0 {
		return core.Student{}, core.ErrInvalidFee
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Location(locationID) == nil {
		return core.Student{}, core.ErrUnknownLocation
	}
	stu := core.Student{
		ID:         s.newID(),
		Name:       name,
		LocationID: locationID,
		JoinedDate: core.Date{Time: s.now()},
		IsActive:   true,
		DefaultFee: defaultFee,
	}
	next := s.data.Clone()
	next.Students = append(next.Students, stu)
	s.commit(next)
	return stu, nil
}

// RecordPayment marks an existing student as paid for the period. At most
// one payment per (student, period) is accepted; recording a second one
// fails with ErrDuplicatePayment.
func (s *Store) RecordPayment(studentID string, period core.Period, amount float64) (core.Payment, error) {
	if amount <= 0 {
		return core.Payment{}, core.ErrInvalidAmount
	}
	if !period.Valid() {
		return core.Payment{}, core.ErrInvalidPeriod
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Student(studentID) == nil {
		return core.Payment{}, core.ErrUnknownStudent
	}
	if core.PaymentFor(s.data, studentID, period) != nil {
		return core.Payment{}, core.ErrDuplicatePayment
	}
	pay := core.Payment{
		ID:        s.newID(),
		StudentID: studentID,
		Month:     period.Month,
		Year:      period.Year,
		Amount:    amount,
		DatePaid:  s.now(),
	}
	next := s.data.Clone()
	next.Payments = append(next.Payments, pay)
	s.commit(next)
	return pay, nil
}

// UndoPayment removes the payment with the given id. Removing an unknown
// id is a no-op, not an error: the record is already gone.
func (s *Store) UndoPayment(paymentID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := s.data.Clone()
	kept := next.Payments[:0]
	removed := false
	for _, p := range next.Payments {
		if p.ID == paymentID {
			removed = true
			continue
		}
		kept = append(kept, p)
	}
	if !removed {
		return
	}
	next.Payments = kept
	s.commit(next)
}

// UpdateDefaultFee sets the suggested fee on an existing student.
func (s *Store) UpdateDefaultFee(studentID string, newFee float64) error {
	if newFee <= 0 {
		return core.ErrInvalidFee
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Student(studentID) == nil {
		return core.ErrUnknownStudent
	}
	next := s.data.Clone()
	for i := range next.Students {
		if next.Students[i].ID == studentID {
			next.Students[i].DefaultFee = newFee
			break
		}
	}
	s.commit(next)
	return nil
}

// DeleteLocation hard-deletes the location, every student enrolled there,
// and every payment belonging to those students. Irreversible.
func (s *Store) DeleteLocation(locationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Location(locationID) == nil {
		return core.ErrUnknownLocation
	}

	next := s.data.Clone()

	locs := next.Locations[:0]
	for _, l := range next.Locations {
		if l.ID != locationID {
			locs = append(locs, l)
		}
	}
	next.Locations = locs

	removed := make(map[string]bool)
	students := next.Students[:0]
	for _, st := range next.Students {
		if st.LocationID == locationID {
			removed[st.ID] = true
			continue
		}
		students = append(students, st)
	}
	next.Students = students

	payments := next.Payments[:0]
	for _, p := range next.Payments {
		if !removed[p.StudentID] {
			payments = append(payments, p)
		}
	}
	next.Payments = payments

	s.commit(next)
	return nil
}

// SoftDeleteStudent marks the student inactive. Payments are untouched so
// historical months still show what was collected.
func (s *Store) SoftDeleteStudent(studentID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data.Student(studentID) == nil {
		return core.ErrUnknownStudent
	}
	next := s.data.Clone()
	for i := range next.Students {
		if next.Students[i].ID == studentID {
			next.Students[i].IsActive = false
			break
		}
	}
	s.commit(next)
	return nil
}

// ReplaceAll swaps in an entirely new aggregate, used by backup import.
// The caller is expected to have run the data through the backup codec's
// validation first.
func (s *Store) ReplaceAll(data core.AppData) core.AppData {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.commit(data.Clone())
	return s.data.Clone()
}
