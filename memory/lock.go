package memory

import (
	"fmt"
	"sync"
)

// borrowLock is the borrow discipline of a Cell.
type borrowLock interface {
	rlock()
	tryRLock() bool
	runlock()
	lock()
	tryLock() bool
	unlock()
}

func newBorrowLock(p Profile) borrowLock {
	if p.MultiThreaded() {
		return &rwLock{}
	}
	return &borrowFlag{}
}

// borrowFlag is the single-thread discipline: conflicting borrows fail
// immediately. state counts shared borrows and is -1 while mutably
// borrowed.
type borrowFlag struct {
	state int
}

func (f *borrowFlag) rlock() {
	if !f.tryRLock() {
		panic(fmt.Errorf("memory: cannot borrow cell: %w", ErrAlreadyMutablyBorrowed))
	}
}

func (f *borrowFlag) tryRLock() bool {
	if f.state < 0 {
		return false
	}
	f.state++
	return true
}

func (f *borrowFlag) runlock() { f.state-- }

func (f *borrowFlag) lock() {
	if !f.tryLock() {
		panic(fmt.Errorf("memory: cannot borrow cell mutably: %w", ErrAlreadyBorrowed))
	}
}

func (f *borrowFlag) tryLock() bool {
	if f.state != 0 {
		return false
	}
	f.state = -1
	return true
}

func (f *borrowFlag) unlock() { f.state = 0 }

// rwLock is the multi-thread discipline: conflicting borrows wait.
type rwLock struct {
	mu sync.RWMutex
}

func (l *rwLock) rlock()         { l.mu.RLock() }
func (l *rwLock) tryRLock() bool { return l.mu.TryRLock() }
func (l *rwLock) runlock()       { l.mu.RUnlock() }
func (l *rwLock) lock()          { l.mu.Lock() }
func (l *rwLock) tryLock() bool  { return l.mu.TryLock() }
func (l *rwLock) unlock()        { l.mu.Unlock() }
