// Package cloud provides the cloud anchor service: hosting an anchor's pose
// under a durable id and resolving that id back into an anchor.
//
// Tasks are asynchronous and poll-driven. Host and resolve calls return at once
// with a handle in the TASK_IN_PROGRESS state; the handle's state only changes
// when Update runs, which the frame loop does once per frame.
package cloud

import (
	"context"
	"errors"
	"time"

	"github.com/viant/cloudanchor/anchor"
)

const (
	// MinTTLDays is the shortest time a hosted anchor can be kept.
	MinTTLDays = 1
	// MaxTTLDays is the longest time a hosted anchor can be kept.
	MaxTTLDays = 365
	// DefaultCapacity caps the number of anchors hosted at a time.
	DefaultCapacity = 1024
)

var (
	ErrInvalidTTL           = errors.New("cloud: ttl must be between 1 and 365 days")
	ErrNilAnchor            = errors.New("cloud: anchor was nil")
	ErrAnchorNotTracking    = errors.New("cloud: anchor is not tracking")
	ErrInvalidCloudAnchorID = errors.New("cloud: cloud anchor id was empty")
)

// Service hosts and resolves cloud anchors.
type Service interface {
	// HostCloudAnchor starts hosting source and returns the handle of the task.
	HostCloudAnchor(ctx context.Context, source *anchor.Anchor, ttlDays int) (*anchor.Anchor, error)
	// ResolveCloudAnchor starts resolving cloudAnchorID and returns the handle of the task.
	ResolveCloudAnchor(ctx context.Context, cloudAnchorID string) (*anchor.Anchor, error)
	// Update advances in-flight tasks.
	Update()
}

// Operation names a kind of cloud task.
type Operation string

const (
	OperationHost    Operation = "host"
	OperationResolve Operation = "resolve"
)

// TTL converts a number of days into a duration after validating the range.
func TTL(days int) (time.Duration, error) {
	if days < MinTTLDays || days > MaxTTLDays {
		return 0, ErrInvalidTTL
	}
	return time.Duration(days) * 24 * time.Hour, nil
}
