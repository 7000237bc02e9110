package provider

import (
	"context"
	"runtime"
)

// appleClient represents the macOS/iOS built-in Dictionary.framework
// lookup. It has no network transport of its own — off-platform it is
// simply unavailable, per spec.md §4.2: availability is a capability
// flag, not an error.
type appleClient struct{}

func NewAppleClient() Client {
	return &appleClient{}
}

func (c *appleClient) Tag() string { return "apple" }

func (c *appleClient) Available() bool {
	return runtime.GOOS == "darwin"
}

func (c *appleClient) Fetch(ctx context.Context, word string) (*Fetched, error) {
	if !c.Available() {
		return nil, ErrNotFound
	}
	// Dictionary.framework is only reachable via cgo on darwin; this
	// deployment ships the HTTP providers only, so a call here means the
	// caller ignored Available().
	return nil, ErrNotFound
}
