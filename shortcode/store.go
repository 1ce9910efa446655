// Package shortcode maps small numeric codes to cloud anchor ids so that a
// hosted anchor can be shared by typing a few digits on another device.
package shortcode

import (
	"context"
	"errors"
)

// InitialShortCode is the first code handed out by an empty store.
const InitialShortCode = 142

// ErrNotFound is returned when no cloud anchor id is stored under a code.
var ErrNotFound = errors.New("shortcode: not found")

// Store allocates short codes and keeps the code to cloud anchor id mapping.
type Store interface {
	// NextShortCode reserves and returns the next unused code.
	NextShortCode(ctx context.Context) (int, error)
	// StoreUsingShortCode associates cloudAnchorID with code.
	StoreUsingShortCode(ctx context.Context, code int, cloudAnchorID string) error
	// GetCloudAnchorID returns the id stored under code or ErrNotFound.
	GetCloudAnchorID(ctx context.Context, code int) (string, error)
}
