package memory

import "errors"

var (
	// ErrNoProfile means no build profile tag was set.
	ErrNoProfile = errors.New("no memory profile selected")
	// ErrConflictingProfiles means more than one profile was selected.
	ErrConflictingProfiles = errors.New("conflicting memory profiles selected")

	// ErrNoCollector is returned by Collect under the refcount profiles.
	ErrNoCollector = errors.New("profile has no cycle collector")
	// ErrCrossThread is raised when a single-thread heap is used from a
	// goroutine other than the one that created it.
	ErrCrossThread = errors.New("single-thread heap used from another goroutine")
	// ErrReclaimed is raised on access to an allocation that has been dropped.
	ErrReclaimed = errors.New("use of reclaimed allocation")
	// ErrOverRelease is raised when a handle is released more often than it
	// was cloned.
	ErrOverRelease = errors.New("pointer released more times than it was cloned")
	// ErrNilPointer is raised when dereferencing the zero Ptr.
	ErrNilPointer = errors.New("nil pointer dereference")
	// ErrNilBox is returned when constructing a Ptr from a nil box.
	ErrNilBox = errors.New("cannot build a pointer from a nil box")

	// ErrAlreadyBorrowed is raised by BorrowMut on a single-thread cell that
	// has any borrow outstanding.
	ErrAlreadyBorrowed = errors.New("already borrowed")
	// ErrAlreadyMutablyBorrowed is raised by Borrow on a single-thread cell
	// that is mutably borrowed.
	ErrAlreadyMutablyBorrowed = errors.New("already mutably borrowed")
	// ErrCellBorrowed is returned when a cell cannot be traced because it is
	// exclusively borrowed.
	ErrCellBorrowed = errors.New("cell is exclusively borrowed")
	// ErrGuardReleased is raised on access through a released or consumed guard.
	ErrGuardReleased = errors.New("borrow guard already released")
)
