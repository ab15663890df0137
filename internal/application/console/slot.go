package console

import "time"

// State is the lifecycle of one request slot.
type State string

const (
	StateIdle    State = "idle"
	StateLoading State = "loading"
	StateSuccess State = "success"
	StateFailed  State = "failed"
)

// Slot names, also used as metric labels.
const (
	SlotCustomers = "customers"
	SlotAnalysis  = "analysis"
)

// SlotStatus is the externally visible part of a slot.
type SlotStatus struct {
	State     State     `json:"state"`
	Error     string    `json:"error,omitempty"`
	RequestID uint64    `json:"request_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Loading reports whether a request is in flight.
func (s SlotStatus) Loading() bool { return s.State == StateLoading }

// slot holds the latest request and its outcome for one request type. The
// owner guards it with its mutex.
type slot[T any] struct {
	name      string
	state     State
	err       error
	value     T
	latest    uint64
	updatedAt time.Time
	// keepOnStart leaves the previous value visible while a new request runs
	// and after it fails.
	keepOnStart bool
}

// begin issues a new request id and moves the slot to Loading.
func (s *slot[T]) begin(now time.Time) uint64 {
	s.latest++
	s.state = StateLoading
	s.err = nil
	if !s.keepOnStart {
		var zero T
		s.value = zero
	}
	s.updatedAt = now
	return s.latest
}

// finish records the outcome of request id. With fence set, an outcome for
// anything but the latest request is dropped and finish returns false.
func (s *slot[T]) finish(id uint64, v T, err error, now time.Time, fence bool) bool {
	if fence && id != s.latest {
		return false
	}
	s.updatedAt = now
	if err != nil {
		s.state = StateFailed
		s.err = err
		if !s.keepOnStart {
			var zero T
			s.value = zero
		}
		return true
	}
	s.state = StateSuccess
	s.err = nil
	s.value = v
	return true
}

// clear returns the slot to Idle and invalidates in-flight requests.
func (s *slot[T]) clear(now time.Time) {
	s.latest++
	s.state = StateIdle
	s.err = nil
	var zero T
	s.value = zero
	s.updatedAt = now
}

func (s *slot[T]) status() SlotStatus {
	st := SlotStatus{State: s.state, RequestID: s.latest, UpdatedAt: s.updatedAt}
	if s.err != nil {
		st.Error = s.err.Error()
	}
	return st
}
