package client

// newTaskInput is the daemon's enqueue request body.
type newTaskInput struct {
	URL      string `json:"url"`
	Payload  []byte `json:"payload"`
	Expected int    `json:"expected"`
	Schedule string `json:"schedule,omitempty"`
	Delay    int    `json:"delay,omitempty"`
}

// Task is the daemon's view of a queued task, as returned by the listing
// endpoints. The client never mutates a task after enqueueing it; these are
// read-only observations.
type Task struct {
	ID string `json:"id"`

	URL      string `json:"url"`
	Payload  []byte `json:"payload"`
	Expected int    `json:"expected"`
	Schedule string `json:"schedule"`

	NextScheduledRun int64 `json:"next_scheduled_run"`
	NextRun          int64 `json:"next_run"`
	Tries            int   `json:"tries"`

	LastRun             int64  `json:"last_run"`
	LastErrorBody       []byte `json:"last_error_body"`
	LastErrorStatusCode int    `json:"last_error_status_code"`
}

// Stats is the daemon's runtime state, as returned by GET /.
type Stats struct {
	Paused   bool `json:"paused"`
	InFlight int  `json:"in_flight"`
}

type taskList struct {
	Tasks []Task `json:"tasks"`
}
