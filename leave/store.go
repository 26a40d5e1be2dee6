/*
store.go - Persistence interfaces for the roster and the ledger

PURPOSE:
  Separates domain rules from storage. The roster, ledger and aggregator
  only talk to these interfaces; backends live under store/.

KEY INTERFACES:
  RosterStore: Employees with their quota history
  LedgerStore: Leave bookings
  Store:       Both, plus Reset/Close for the process that owns it

SINGLE WRITER:
  Update* methods run the load-modify-save sequence under the backend's
  writer lock (and inside a SQL transaction where there is one). fn sees a
  private copy; if it returns an error nothing is written.

CASCADE:
  DeleteEmployee removes the employee's bookings in the same write. The
  ledger stays permissive otherwise: InsertBooking does not check that
  the employee exists.

IMPLEMENTATIONS:
  - store/sqlite: SQLite tables (employees, quotas, leaves)
  - store/jsonfile: Single JSON document, or memory only via NewMemory
*/
package leave

import "context"

// RosterStore persists employees. List order is insertion order.
type RosterStore interface {
	// InsertEmployee fails with a ValidationError if the id is taken.
	InsertEmployee(ctx context.Context, emp Employee) error

	// GetEmployee returns a NotFoundError for unknown ids.
	GetEmployee(ctx context.Context, id EmployeeID) (Employee, error)

	ListEmployees(ctx context.Context) ([]Employee, error)

	// UpdateEmployee loads the employee, applies fn and saves the result.
	UpdateEmployee(ctx context.Context, id EmployeeID, fn func(*Employee) error) error

	// DeleteEmployee is idempotent and removes the employee's bookings too.
	DeleteEmployee(ctx context.Context, id EmployeeID) error
}

// LedgerStore persists bookings. List order is insertion order.
type LedgerStore interface {
	InsertBooking(ctx context.Context, b Booking) error
	GetBooking(ctx context.Context, id BookingID) (Booking, error)
	UpdateBooking(ctx context.Context, id BookingID, fn func(*Booking) error) error

	// DeleteBooking is idempotent.
	DeleteBooking(ctx context.Context, id BookingID) error
	DeleteBookingsByEmployee(ctx context.Context, employeeID EmployeeID) error

	// ListBookingsForYear returns bookings whose start date is in year.
	ListBookingsForYear(ctx context.Context, year int) ([]Booking, error)
}

// Store is a complete backend.
type Store interface {
	RosterStore
	LedgerStore

	// Reset removes every employee and booking.
	Reset(ctx context.Context) error
	Close() error
}
