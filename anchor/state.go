package anchor

import (
	"fmt"
	"strings"
)

// CloudState represents the state of a cloud anchor host or resolve task.
type CloudState int

const (
	// StateNone is the state of an anchor that never took part in a cloud task.
	StateNone CloudState = iota
	// StateTaskInProgress is the state of an anchor while its task is running.
	StateTaskInProgress
	// StateSuccess reports a completed host or resolve task.
	StateSuccess
	StateErrorInternal
	StateErrorNotAuthorized
	StateErrorResourceExhausted
	StateErrorHostingDatasetProcessingFailed
	StateErrorCloudIDNotFound
	StateErrorResolvingSDKVersionTooOld
	StateErrorResolvingSDKVersionTooNew
	StateErrorHostingServiceUnavailable
)

var cloudStateNames = map[CloudState]string{
	StateNone:                                "NONE",
	StateTaskInProgress:                      "TASK_IN_PROGRESS",
	StateSuccess:                             "SUCCESS",
	StateErrorInternal:                       "ERROR_INTERNAL",
	StateErrorNotAuthorized:                  "ERROR_NOT_AUTHORIZED",
	StateErrorResourceExhausted:              "ERROR_RESOURCE_EXHAUSTED",
	StateErrorHostingDatasetProcessingFailed: "ERROR_HOSTING_DATASET_PROCESSING_FAILED",
	StateErrorCloudIDNotFound:                "ERROR_CLOUD_ID_NOT_FOUND",
	StateErrorResolvingSDKVersionTooOld:      "ERROR_RESOLVING_SDK_VERSION_TOO_OLD",
	StateErrorResolvingSDKVersionTooNew:      "ERROR_RESOLVING_SDK_VERSION_TOO_NEW",
	StateErrorHostingServiceUnavailable:      "ERROR_HOSTING_SERVICE_UNAVAILABLE",
}

// IsTerminal reports whether the task has finished, successfully or not.
func (s CloudState) IsTerminal() bool {
	switch s {
	case StateNone, StateTaskInProgress:
		return false
	default:
		return true
	}
}

// IsError reports whether the state is a terminal failure.
func (s CloudState) IsError() bool {
	return s.IsTerminal() && s != StateSuccess
}

func (s CloudState) String() string {
	if name, ok := cloudStateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("CloudState(%d)", int(s))
}

// MarshalText implements encoding.TextMarshaler
func (s CloudState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (s *CloudState) UnmarshalText(text []byte) error {
	state, err := ParseCloudState(string(text))
	if err != nil {
		return err
	}
	*s = state
	return nil
}

// ParseCloudState parses a state name, case-insensitively.
func ParseCloudState(name string) (CloudState, error) {
	for state, candidate := range cloudStateNames {
		if strings.EqualFold(candidate, name) {
			return state, nil
		}
	}
	return StateNone, fmt.Errorf("unknown cloud anchor state: %q", name)
}

// TrackingState describes whether an anchor is currently tracked.
type TrackingState int

const (
	Tracking TrackingState = iota
	Paused
	Stopped
)

func (t TrackingState) String() string {
	switch t {
	case Tracking:
		return "TRACKING"
	case Paused:
		return "PAUSED"
	case Stopped:
		return "STOPPED"
	}
	return fmt.Sprintf("TrackingState(%d)", int(t))
}

// MarshalText implements encoding.TextMarshaler
func (t TrackingState) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (t *TrackingState) UnmarshalText(text []byte) error {
	for _, candidate := range []TrackingState{Tracking, Paused, Stopped} {
		if strings.EqualFold(candidate.String(), string(text)) {
			*t = candidate
			return nil
		}
	}
	return fmt.Errorf("unknown tracking state: %q", text)
}
