// Package cart keeps the in-progress carts of cashier terminals. A cart is an
// ordered list of product names scoped to one session and one event.
package cart

import (
	"context"
	"errors"
	"fmt"
)

// ErrBusy is returned by Lock when another checkout of the same cart did not
// finish in time.
var ErrBusy = errors.New("cart is busy with another checkout")

// Key scopes a cart. Carts are never shared between events.
type Key struct {
	SessionID string
	EventID   uint
}

func (k Key) String() string {
	return fmt.Sprintf("cart:%s:%d", k.SessionID, k.EventID)
}

// Store is safe for concurrent use.
type Store interface {
	Read(ctx context.Context, key Key) ([]string, error)
	Append(ctx context.Context, key Key, name string) error
	// PopLast removes the most recently appended name. It is a no-op on an
	// empty cart.
	PopLast(ctx context.Context, key Key) error
	Clear(ctx context.Context, key Key) error
	// TrimFront drops the first n names. Names appended after they were read
	// survive.
	TrimFront(ctx context.Context, key Key, n int) error
	// Lock serializes checkouts and removals of one cart. The returned func
	// releases the lock.
	Lock(ctx context.Context, key Key) (func(), error)
}
