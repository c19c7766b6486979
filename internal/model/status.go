package model

// Status is the lifecycle status recorded for a submission by the
// submission/polling pipeline. RECEIVED..VALIDATED are queue-side states, the
// remaining values are WES run states copied from the service.
type Status string

const (
	StatusReceived      Status = "RECEIVED"
	StatusSubmitted     Status = "SUBMITTED"
	StatusValidated     Status = "VALIDATED"
	StatusPending       Status = "PENDING"
	StatusQueued        Status = "QUEUED"
	StatusInitializing  Status = "INITIALIZING"
	StatusRunning       Status = "RUNNING"
	StatusComplete      Status = "COMPLETE"
	StatusCanceled      Status = "CANCELED"
	StatusExecutorError Status = "EXECUTOR_ERROR"
	StatusSystemError   Status = "SYSTEM_ERROR"
	StatusFailed        Status = "FAILED"
	// Some WES backends report this spelling.
	StatusFailedLower Status = "Failed"
)

var knownStatuses = map[Status]bool{
	StatusReceived:      true,
	StatusSubmitted:     true,
	StatusValidated:     true,
	StatusPending:       true,
	StatusQueued:        true,
	StatusInitializing:  true,
	StatusRunning:       true,
	StatusComplete:      true,
	StatusCanceled:      true,
	StatusExecutorError: true,
	StatusSystemError:   true,
	StatusFailed:        true,
	StatusFailedLower:   true,
}

var terminalStatuses = map[Status]bool{
	StatusComplete:      true,
	StatusCanceled:      true,
	StatusExecutorError: true,
	StatusSystemError:   true,
	StatusFailed:        true,
	StatusFailedLower:   true,
}

// DefaultQueueStatuses is the status filter applied when listing a queue's
// submissions without an explicit filter.
var DefaultQueueStatuses = []Status{
	StatusReceived,
	StatusSubmitted,
	StatusValidated,
	StatusComplete,
}

func IsKnownStatus(s Status) bool {
	return knownStatuses[s]
}

func IsTerminal(s Status) bool {
	return terminalStatuses[s]
}

// EffectiveStatus treats a submission with no recorded status as PENDING.
func EffectiveStatus(s Status) Status {
	if s == "" {
		return StatusPending
	}
	return s
}
