package memory

import (
	"fmt"
	"sync/atomic"
)

// Address identifies an allocation for as long as it is live. Addresses are
// never reused within a process.
type Address uint64

// nextAddress is shared by all heaps so that addresses from different heaps
// never collide.
var nextAddress atomic.Uint64

func newAddress() uint64 {
	return nextAddress.Add(1)
}

// IsZero reports whether a is the address of no allocation.
func (a Address) IsZero() bool {
	return a == 0
}

func (a Address) String() string {
	return fmt.Sprintf("0x%x", uint64(a))
}
