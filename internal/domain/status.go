package domain

// RequestState is the lifecycle stage of a bio generation request.
type RequestState string

// Request states.
const (
	StateIdle      RequestState = "idle"
	StatePending   RequestState = "pending"
	StateSucceeded RequestState = "succeeded"
	StateFailed    RequestState = "failed"
)

// RequestStatus is the current request state together with its payload.
// Bio is kept separately from Message so a failed clipboard write can be
// reported while the generated bio stays visible.
type RequestStatus struct {
	State   RequestState `json:"state"`
	Bio     string       `json:"bio,omitempty"`
	Message string       `json:"error,omitempty"`
}

// Idle returns the initial status.
func Idle() RequestStatus { return RequestStatus{State: StateIdle} }

// Pending returns the status of an in-flight request.
func Pending() RequestStatus { return RequestStatus{State: StatePending} }

// Succeeded returns a status carrying the generated bio.
func Succeeded(bio string) RequestStatus {
	return RequestStatus{State: StateSucceeded, Bio: bio}
}

// Failed returns a status carrying a user-visible error message.
func Failed(message string) RequestStatus {
	return RequestStatus{State: StateFailed, Message: message}
}

// IsPending reports whether a request is in flight.
func (s RequestStatus) IsPending() bool { return s.State == StatePending }
