/*
Package jsonfile stores the roster and the ledger in a single JSON document.

PURPOSE:
  Keeps the flat-file layout the tracker has always used, so an existing
  data.json can be served as is:

    {
      "employees": [{"id": "...", "name": "...", "quotas": [{"year": 2024, "days": 20}]}],
      "leaves":    [{"id": "...", "employeeId": "...", "from": "2024-07-01", "to": "2024-07-05", "days": 5}]
    }

CONCURRENCY:
  One writer at a time. Every mutation takes the write lock, applies the
  change to a copy of the document, writes the whole file (temp file +
  rename) and only then swaps the copy in. A failed write leaves both the
  file and the in-memory state untouched.

MEMORY MODE:
  NewMemory returns the same store without a backing file; used by tests
  and for throwaway dev servers.

SEE ALSO:
  - leave/store.go: Interfaces implemented here
  - store/sqlite: Table-based backend with the same behaviour
*/
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/warp/leave-quota/leave"
)

// Store implements leave.Store on top of one JSON document.
type Store struct {
	path string
	mu   sync.RWMutex
	doc  document
}

var _ leave.Store = (*Store)(nil)

// New opens (or creates) the document at path.
func New(path string) (*Store, error) {
	s := &Store{path: path}

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		if err := s.write(document{}); err != nil {
			return nil, err
		}
		return s, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read data file: %w", err)
	}

	doc, err := decodeDocument(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse data file %s: %w", path, err)
	}
	s.doc = doc
	return s, nil
}

// NewMemory returns a store that never touches the filesystem.
func NewMemory() *Store {
	return &Store{}
}

func (s *Store) Close() error { return nil }

// =============================================================================
// ROSTER
// =============================================================================

func (s *Store) InsertEmployee(_ context.Context, emp leave.Employee) error {
	return s.mutate(func(doc *document) error {
		if doc.employeeIndex(emp.ID) >= 0 {
			return leave.DuplicateID("employee", string(emp.ID))
		}
		doc.Employees = append(doc.Employees, emp.Clone())
		return nil
	})
}

func (s *Store) GetEmployee(_ context.Context, id leave.EmployeeID) (leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.doc.employeeIndex(id)
	if i < 0 {
		return leave.Employee{}, leave.EmployeeNotFound(id)
	}
	return s.doc.Employees[i].Clone(), nil
}

func (s *Store) ListEmployees(_ context.Context) ([]leave.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]leave.Employee, len(s.doc.Employees))
	for i, e := range s.doc.Employees {
		out[i] = e.Clone()
	}
	return out, nil
}

func (s *Store) UpdateEmployee(_ context.Context, id leave.EmployeeID, fn func(*leave.Employee) error) error {
	return s.mutate(func(doc *document) error {
		i := doc.employeeIndex(id)
		if i < 0 {
			return leave.EmployeeNotFound(id)
		}
		emp := doc.Employees[i]
		if err := fn(&emp); err != nil {
			return err
		}
		emp.ID = id
		doc.Employees[i] = emp
		return nil
	})
}

func (s *Store) DeleteEmployee(_ context.Context, id leave.EmployeeID) error {
	return s.mutate(func(doc *document) error {
		employees := doc.Employees[:0]
		for _, e := range doc.Employees {
			if e.ID != id {
				employees = append(employees, e)
			}
		}
		doc.Employees = employees
		doc.deleteBookingsByEmployee(id)
		return nil
	})
}

// =============================================================================
// LEDGER
// =============================================================================

func (s *Store) InsertBooking(_ context.Context, b leave.Booking) error {
	return s.mutate(func(doc *document) error {
		if doc.bookingIndex(b.ID) >= 0 {
			return leave.DuplicateID("leave", string(b.ID))
		}
		doc.Leaves = append(doc.Leaves, b)
		return nil
	})
}

func (s *Store) GetBooking(_ context.Context, id leave.BookingID) (leave.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.doc.bookingIndex(id)
	if i < 0 {
		return leave.Booking{}, leave.BookingNotFound(id)
	}
	return s.doc.Leaves[i], nil
}

func (s *Store) UpdateBooking(_ context.Context, id leave.BookingID, fn func(*leave.Booking) error) error {
	return s.mutate(func(doc *document) error {
		i := doc.bookingIndex(id)
		if i < 0 {
			return leave.BookingNotFound(id)
		}
		b := doc.Leaves[i]
		if err := fn(&b); err != nil {
			return err
		}
		b.ID = id
		doc.Leaves[i] = b
		return nil
	})
}

func (s *Store) DeleteBooking(_ context.Context, id leave.BookingID) error {
	return s.mutate(func(doc *document) error {
		leaves := doc.Leaves[:0]
		for _, b := range doc.Leaves {
			if b.ID != id {
				leaves = append(leaves, b)
			}
		}
		doc.Leaves = leaves
		delete(doc.rawDates, id)
		return nil
	})
}

func (s *Store) DeleteBookingsByEmployee(_ context.Context, employeeID leave.EmployeeID) error {
	return s.mutate(func(doc *document) error {
		doc.deleteBookingsByEmployee(employeeID)
		return nil
	})
}

func (s *Store) ListBookingsForYear(_ context.Context, year int) ([]leave.Booking, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []leave.Booking
	for _, b := range s.doc.Leaves {
		if b.InYear(year) {
			out = append(out, b)
		}
	}
	return out, nil
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data.
func (s *Store) Reset(_ context.Context) error {
	return s.mutate(func(doc *document) error {
		*doc = document{}
		return nil
	})
}

// mutate runs fn against a copy of the document, persists the copy and
// then makes it current.
func (s *Store) mutate(fn func(*document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.clone()
	if err := fn(&next); err != nil {
		return err
	}
	if err := s.write(next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

func (s *Store) write(doc document) error {
	if s.path == "" {
		return nil
	}

	data, err := encodeDocument(doc)
	if err != nil {
		return fmt.Errorf("failed to encode data file: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".data-*.json")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write data file: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("failed to replace data file: %w", err)
	}
	return nil
}

// =============================================================================
// DOCUMENT
// =============================================================================

type document struct {
	Employees []leave.Employee
	Leaves    []leave.Booking

	// Date strings that did not parse on load, written back unchanged
	// while the booking keeps a zero date.
	rawDates map[leave.BookingID]rawRange
}

type rawRange struct {
	From, To string
}

func (d document) clone() document {
	out := document{
		Employees: make([]leave.Employee, len(d.Employees)),
		Leaves:    make([]leave.Booking, len(d.Leaves)),
	}
	for i, e := range d.Employees {
		out.Employees[i] = e.Clone()
	}
	copy(out.Leaves, d.Leaves)
	if d.rawDates != nil {
		out.rawDates = make(map[leave.BookingID]rawRange, len(d.rawDates))
		for id, r := range d.rawDates {
			out.rawDates[id] = r
		}
	}
	return out
}

func (d *document) employeeIndex(id leave.EmployeeID) int {
	for i, e := range d.Employees {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func (d *document) bookingIndex(id leave.BookingID) int {
	for i, b := range d.Leaves {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func (d *document) deleteBookingsByEmployee(id leave.EmployeeID) {
	leaves := d.Leaves[:0]
	for _, b := range d.Leaves {
		if b.EmployeeID != id {
			leaves = append(leaves, b)
		} else {
			delete(d.rawDates, b.ID)
		}
	}
	d.Leaves = leaves
}
