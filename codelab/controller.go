// Package codelab implements the cloud anchor user flow: place an anchor,
// host it and share it through a short code, or enter a short code to resolve
// an anchor hosted by another device.
package codelab

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/viant/cloudanchor/anchor"
	"github.com/viant/cloudanchor/manager"
	"github.com/viant/cloudanchor/shortcode"
)

const (
	// DefaultHostTTLDays is how long hosted anchors are kept.
	DefaultHostTTLDays = 300
	// DefaultStoreTimeout bounds short code store calls made from completion listeners.
	DefaultStoreTimeout = 10 * time.Second

	hostingMessage = "Now hosting anchor..."
)

var (
	// ErrAnchorExists is returned when placing an anchor while one is already placed.
	ErrAnchorExists = errors.New("codelab: an anchor is already placed, clear it first")
	// ErrResolveDisabled is returned when resolving while another operation is running.
	ErrResolveDisabled = errors.New("codelab: resolving is disabled while an operation is running")
)

// Controller holds the state of one device.
type Controller struct {
	manager      *manager.Manager
	codes        shortcode.Store
	messenger    Messenger
	logger       logr.Logger
	hostTTLDays  int
	storeTimeout time.Duration

	mux            sync.Mutex
	current        *anchor.Anchor
	resolveEnabled bool
	// generation changes on Clear; results of operations issued before are dropped
	generation uint64
}

// Status is a snapshot of a Controller.
type Status struct {
	Anchor         *anchor.Snapshot `json:"anchor,omitempty"`
	ResolveEnabled bool             `json:"resolveEnabled"`
	Pending        int              `json:"pending"`
}

// PlaceAnchor creates an anchor at pose and starts hosting it. It returns the
// hosting handle, which becomes the current anchor.
func (c *Controller) PlaceAnchor(ctx context.Context, pose anchor.Pose) (*anchor.Anchor, error) {
	c.mux.Lock()
	if c.current != nil {
		c.mux.Unlock()
		return nil, ErrAnchorExists
	}
	placed := anchor.New(pose)
	c.current = placed
	c.resolveEnabled = false
	generation := c.generation
	c.mux.Unlock()

	c.messenger.ShowMessage(hostingMessage)
	handle, err := c.manager.HostCloudAnchor(ctx, placed, c.hostTTLDays, func(done *anchor.Anchor) {
		c.onHostedAnchorAvailable(done, generation)
	})

	c.mux.Lock()
	placed.Detach()
	if generation == c.generation {
		if err != nil {
			c.current = nil
			c.resolveEnabled = true
		} else {
			c.current = handle
		}
	}
	c.mux.Unlock()
	if err != nil {
		c.messenger.ShowError(fmt.Sprintf("Error while hosting: %v", err))
		return nil, err
	}
	return handle, nil
}

// ResolveShortCode looks up the cloud anchor id stored under code and starts resolving it.
// An unknown code yields an error wrapping shortcode.ErrNotFound.
func (c *Controller) ResolveShortCode(ctx context.Context, code int) error {
	c.mux.Lock()
	if !c.resolveEnabled {
		c.mux.Unlock()
		return ErrResolveDisabled
	}
	c.resolveEnabled = false
	generation := c.generation
	c.mux.Unlock()

	cloudAnchorID, err := c.codes.GetCloudAnchorID(ctx, code)
	if err != nil {
		c.enableResolve(generation)
		if errors.Is(err, shortcode.ErrNotFound) {
			c.messenger.ShowMessage(fmt.Sprintf("A Cloud Anchor ID for the short code %d was not found.", code))
		}
		return fmt.Errorf("failed to look up short code %d: %w", code, err)
	}

	_, err = c.manager.ResolveCloudAnchor(ctx, cloudAnchorID, func(handle *anchor.Anchor) {
		c.onResolvedAnchorAvailable(handle, code, generation)
	})
	if err != nil {
		c.enableResolve(generation)
		return err
	}
	return nil
}

// Clear removes the current anchor and stops waiting for outstanding operations.
// Results of operations started before Clear are dropped, including those
// already being delivered.
func (c *Controller) Clear() {
	c.manager.ClearListeners()
	c.mux.Lock()
	defer c.mux.Unlock()
	c.generation++
	if c.current != nil {
		c.current.Detach()
		c.current = nil
	}
	c.resolveEnabled = true
}

// Current returns the current anchor or nil.
func (c *Controller) Current() *anchor.Anchor {
	c.mux.Lock()
	defer c.mux.Unlock()
	return c.current
}

// Status returns a snapshot of the controller.
func (c *Controller) Status() Status {
	c.mux.Lock()
	defer c.mux.Unlock()
	ret := Status{ResolveEnabled: c.resolveEnabled, Pending: c.manager.Pending()}
	if c.current != nil {
		snapshot := c.current.Snapshot()
		ret.Anchor = &snapshot
	}
	return ret
}

// adopt makes handle the current anchor unless Clear ran since generation.
func (c *Controller) adopt(handle *anchor.Anchor, generation uint64) bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	if generation != c.generation {
		return false
	}
	if c.current != nil && c.current != handle {
		c.current.Detach()
	}
	c.current = handle
	return true
}

func (c *Controller) onHostedAnchorAvailable(handle *anchor.Anchor, generation uint64) {
	if !c.adopt(handle, generation) {
		c.logger.V(1).Info("dropped cleared host result", "handle", handle.ID())
		return
	}
	state := handle.CloudState()
	if state != anchor.StateSuccess {
		c.messenger.ShowError(fmt.Sprintf("Error while hosting: %v", state))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), c.storeTimeout)
	defer cancel()
	code, err := c.shareCloudAnchorID(ctx, handle.CloudAnchorID())
	if err != nil {
		c.logger.Error(err, "failed to share cloud anchor", "cloudAnchorId", handle.CloudAnchorID())
		c.messenger.ShowMessage("Cloud Anchor Hosted, but could not get a short code.")
		return
	}
	c.messenger.ShowMessage(fmt.Sprintf("Cloud Anchor Hosted. Short code: %d", code))
}

func (c *Controller) shareCloudAnchorID(ctx context.Context, cloudAnchorID string) (int, error) {
	code, err := c.codes.NextShortCode(ctx)
	if err != nil {
		return 0, err
	}
	if err = c.codes.StoreUsingShortCode(ctx, code, cloudAnchorID); err != nil {
		return 0, err
	}
	return code, nil
}

func (c *Controller) onResolvedAnchorAvailable(handle *anchor.Anchor, code int, generation uint64) {
	state := handle.CloudState()
	if state != anchor.StateSuccess {
		if !c.enableResolve(generation) {
			c.logger.V(1).Info("dropped cleared resolve result", "handle", handle.ID())
			return
		}
		c.messenger.ShowError(fmt.Sprintf("Error while resolving anchor with short code %d. Error: %v", code, state))
		return
	}
	if !c.adopt(handle, generation) {
		handle.Detach()
		c.logger.V(1).Info("dropped cleared resolve result", "handle", handle.ID())
		return
	}
	c.messenger.ShowMessage(fmt.Sprintf("Cloud Anchor Resolved. Short code: %d", code))
}

// enableResolve re-enables resolving unless Clear ran since generation or an
// anchor was placed meanwhile.
func (c *Controller) enableResolve(generation uint64) bool {
	c.mux.Lock()
	defer c.mux.Unlock()
	if generation != c.generation {
		return false
	}
	if c.current == nil {
		c.resolveEnabled = true
	}
	return true
}

// Options configures a Controller.
type Options struct {
	HostTTLDays  int
	StoreTimeout time.Duration
	Logger       logr.Logger
}

// New creates a Controller.
func New(manager *manager.Manager, codes shortcode.Store, messenger Messenger, options Options) *Controller {
	if options.HostTTLDays <= 0 {
		options.HostTTLDays = DefaultHostTTLDays
	}
	if options.StoreTimeout <= 0 {
		options.StoreTimeout = DefaultStoreTimeout
	}
	if options.Logger.GetSink() == nil {
		options.Logger = logr.Discard()
	}
	return &Controller{
		manager:        manager,
		codes:          codes,
		messenger:      messenger,
		logger:         options.Logger,
		hostTTLDays:    options.HostTTLDays,
		storeTimeout:   options.StoreTimeout,
		resolveEnabled: true,
	}
}
