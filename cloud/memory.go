package cloud

import (
	"context"
	"sync"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/viant/cloudanchor/anchor"
)

// CloudAnchorIDPrefix starts every id issued by MemoryService.
const CloudAnchorIDPrefix = "ua-"

// Options configures a MemoryService.
type Options struct {
	// APIKey authorizes tasks; when empty every task ends with ERROR_NOT_AUTHORIZED.
	APIKey string `yaml:"apiKey" json:"apiKey,omitempty"`
	// Latency is the time a task stays in progress.
	Latency time.Duration `yaml:"latency" json:"latency,omitempty"`
	// Capacity caps the number of hosted anchors.
	Capacity int `yaml:"capacity" json:"capacity,omitempty"`

	Clock  func() time.Time `yaml:"-" json:"-"`
	Logger logr.Logger      `yaml:"-" json:"-"`
}

type hostedAnchor struct {
	pose      anchor.Pose
	expiresAt time.Time
}

type task struct {
	operation Operation
	handle    *anchor.Anchor
	cloudID   string
	pose      anchor.Pose
	ttl       time.Duration
	dueAt     time.Time
}

// MemoryService is an in-process Service. It is concurrency-safe; tasks of
// every caller advance whenever any caller invokes Update.
type MemoryService struct {
	options Options
	mux     sync.Mutex
	tasks   []*task
	hosted  *expirable.LRU[string, hostedAnchor]
}

// HostCloudAnchor returns a new in-progress anchor at source's pose.
func (s *MemoryService) HostCloudAnchor(_ context.Context, source *anchor.Anchor, ttlDays int) (*anchor.Anchor, error) {
	if source == nil {
		return nil, ErrNilAnchor
	}
	ttl, err := TTL(ttlDays)
	if err != nil {
		return nil, err
	}
	if source.TrackingState() != anchor.Tracking {
		return nil, ErrAnchorNotTracking
	}
	handle := anchor.New(source.Pose())
	handle.MarkInProgress("")
	s.enqueue(&task{operation: OperationHost, handle: handle, pose: handle.Pose(), ttl: ttl})
	s.options.Logger.V(1).Info("hosting anchor", "anchor", source.ID(), "handle", handle.ID(), "ttlDays", ttlDays)
	return handle, nil
}

// ResolveCloudAnchor returns a new in-progress anchor for cloudAnchorID.
func (s *MemoryService) ResolveCloudAnchor(_ context.Context, cloudAnchorID string) (*anchor.Anchor, error) {
	if cloudAnchorID == "" {
		return nil, ErrInvalidCloudAnchorID
	}
	handle := anchor.NewResolving()
	handle.MarkInProgress(cloudAnchorID)
	s.enqueue(&task{operation: OperationResolve, handle: handle, cloudID: cloudAnchorID})
	s.options.Logger.V(1).Info("resolving anchor", "cloudAnchorId", cloudAnchorID, "handle", handle.ID())
	return handle, nil
}

// Update completes every task whose latency elapsed.
func (s *MemoryService) Update() {
	now := s.options.Clock()
	for _, item := range s.takeDue(now) {
		state := s.complete(item, now)
		s.options.Logger.V(1).Info("cloud task finished", "operation", item.operation, "handle", item.handle.ID(), "state", state)
	}
}

// InFlight returns the number of unfinished tasks.
func (s *MemoryService) InFlight() int {
	s.mux.Lock()
	defer s.mux.Unlock()
	return len(s.tasks)
}

// Hosted returns the number of hosted anchors.
func (s *MemoryService) Hosted() int {
	return s.hosted.Len()
}

func (s *MemoryService) enqueue(item *task) {
	item.dueAt = s.options.Clock().Add(s.options.Latency)
	s.mux.Lock()
	defer s.mux.Unlock()
	s.tasks = append(s.tasks, item)
}

func (s *MemoryService) takeDue(now time.Time) []*task {
	s.mux.Lock()
	defer s.mux.Unlock()
	var due []*task
	remaining := s.tasks[:0]
	for _, item := range s.tasks {
		if item.dueAt.After(now) {
			remaining = append(remaining, item)
			continue
		}
		due = append(due, item)
	}
	clear(s.tasks[len(remaining):])
	s.tasks = remaining
	return due
}

func (s *MemoryService) complete(item *task, now time.Time) anchor.CloudState {
	s.mux.Lock()
	state, cloudID, pose := s.outcome(item, now)
	s.mux.Unlock()
	item.handle.Complete(state, cloudID, pose)
	return state
}

// purgeExpired drops hosted anchors whose own TTL elapsed.
func (s *MemoryService) purgeExpired(now time.Time) {
	for _, cloudID := range s.hosted.Keys() {
		if hosted, ok := s.hosted.Peek(cloudID); ok && !now.Before(hosted.expiresAt) {
			s.hosted.Remove(cloudID)
		}
	}
}

// outcome must be called with s.mux held.
func (s *MemoryService) outcome(item *task, now time.Time) (anchor.CloudState, string, anchor.Pose) {
	if s.options.APIKey == "" {
		return anchor.StateErrorNotAuthorized, "", anchor.Pose{}
	}
	switch item.operation {
	case OperationHost:
		if s.hosted.Len() >= s.options.Capacity {
			s.purgeExpired(now)
		}
		if s.hosted.Len() >= s.options.Capacity {
			return anchor.StateErrorResourceExhausted, "", anchor.Pose{}
		}
		cloudID := CloudAnchorIDPrefix + uuid.NewString()
		s.hosted.Add(cloudID, hostedAnchor{pose: item.pose, expiresAt: now.Add(item.ttl)})
		return anchor.StateSuccess, cloudID, item.pose
	case OperationResolve:
		hosted, ok := s.hosted.Get(item.cloudID)
		if !ok {
			return anchor.StateErrorCloudIDNotFound, "", anchor.Pose{}
		}
		if !now.Before(hosted.expiresAt) {
			s.hosted.Remove(item.cloudID)
			return anchor.StateErrorCloudIDNotFound, "", anchor.Pose{}
		}
		return anchor.StateSuccess, item.cloudID, hosted.pose
	}
	return anchor.StateErrorInternal, "", anchor.Pose{}
}

// NewMemoryService creates a MemoryService.
func NewMemoryService(options Options) *MemoryService {
	if options.Capacity <= 0 {
		options.Capacity = DefaultCapacity
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}
	if options.Logger.GetSink() == nil {
		options.Logger = logr.Discard()
	}
	maxTTL := time.Duration(MaxTTLDays) * 24 * time.Hour
	return &MemoryService{
		options: options,
		hosted:  expirable.NewLRU[string, hostedAnchor](options.Capacity, nil, maxTTL),
	}
}
