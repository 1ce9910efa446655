package anchor

import (
	"sync"

	"github.com/google/uuid"
)

// Pose is a rigid transformation: translation in meters plus a rotation quaternion.
type Pose struct {
	X  float32 `json:"x" yaml:"x"`
	Y  float32 `json:"y" yaml:"y"`
	Z  float32 `json:"z" yaml:"z"`
	QX float32 `json:"qx" yaml:"qx"`
	QY float32 `json:"qy" yaml:"qy"`
	QZ float32 `json:"qz" yaml:"qz"`
	QW float32 `json:"qw" yaml:"qw"`
}

// Identity returns the pose at the origin with no rotation.
func Identity() Pose {
	return Pose{QW: 1}
}

// Translate returns a pose at the given position with no rotation.
func Translate(x, y, z float32) Pose {
	return Pose{X: x, Y: y, Z: z, QW: 1}
}

// Anchor is a tracked point in space. Anchors returned by host or resolve
// calls double as operation handles: their cloud state is advanced by the
// cloud service and observed by the frame loop.
type Anchor struct {
	id         string
	mux        sync.RWMutex
	pose       Pose
	cloudID    string
	cloudState CloudState
	tracking   TrackingState
}

// New creates a tracking anchor at pose.
func New(pose Pose) *Anchor {
	return &Anchor{
		id:       uuid.NewString(),
		pose:     pose,
		tracking: Tracking,
	}
}

// NewResolving creates an untracked anchor whose pose is not known yet.
func NewResolving() *Anchor {
	return &Anchor{
		id:       uuid.NewString(),
		pose:     Identity(),
		tracking: Paused,
	}
}

// ID returns the local anchor identifier.
func (a *Anchor) ID() string {
	return a.id
}

func (a *Anchor) Pose() Pose {
	a.mux.RLock()
	defer a.mux.RUnlock()
	return a.pose
}

// CloudAnchorID returns the durable identifier, set once hosting or resolving succeeded.
func (a *Anchor) CloudAnchorID() string {
	a.mux.RLock()
	defer a.mux.RUnlock()
	return a.cloudID
}

func (a *Anchor) CloudState() CloudState {
	a.mux.RLock()
	defer a.mux.RUnlock()
	return a.cloudState
}

func (a *Anchor) TrackingState() TrackingState {
	a.mux.RLock()
	defer a.mux.RUnlock()
	return a.tracking
}

// Terminal reports whether the anchor's cloud task has finished.
func (a *Anchor) Terminal() bool {
	return a.CloudState().IsTerminal()
}

// Detach stops tracking the anchor.
func (a *Anchor) Detach() {
	a.mux.Lock()
	defer a.mux.Unlock()
	a.tracking = Stopped
}

// MarkInProgress flags the anchor as the subject of a running cloud task.
func (a *Anchor) MarkInProgress(cloudID string) {
	a.mux.Lock()
	defer a.mux.Unlock()
	a.cloudID = cloudID
	a.cloudState = StateTaskInProgress
}

// Complete records the outcome of the anchor's cloud task. On success the
// cloud id and pose are taken over and tracking resumes.
func (a *Anchor) Complete(state CloudState, cloudID string, pose Pose) {
	a.mux.Lock()
	defer a.mux.Unlock()
	a.cloudState = state
	if state != StateSuccess {
		return
	}
	a.cloudID = cloudID
	a.pose = pose
	if a.tracking != Stopped {
		a.tracking = Tracking
	}
}

// Snapshot is a read-only copy of an anchor.
type Snapshot struct {
	ID            string        `json:"id"`
	CloudAnchorID string        `json:"cloudAnchorId,omitempty"`
	CloudState    CloudState    `json:"cloudState"`
	TrackingState TrackingState `json:"trackingState"`
	Pose          Pose          `json:"pose"`
}

// Snapshot copies the anchor state under a single lock.
func (a *Anchor) Snapshot() Snapshot {
	a.mux.RLock()
	defer a.mux.RUnlock()
	return Snapshot{
		ID:            a.id,
		CloudAnchorID: a.cloudID,
		CloudState:    a.cloudState,
		TrackingState: a.tracking,
		Pose:          a.pose,
	}
}
