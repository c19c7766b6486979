package report

import "errors"

var (
	// ErrQueueNotFound is returned when a queue id is not a key of the testbed
	// log, i.e. nothing has been submitted for it yet.
	ErrQueueNotFound = errors.New("queue not found in testbed log")

	// ErrMissingReference is returned when a completed submission names a WES
	// endpoint or submission that the registry or submission queue cannot
	// resolve.
	ErrMissingReference = errors.New("unresolved reference")

	// ErrMalformedSubmission is returned when a completed submission that was
	// found lacks the run_log fields needed for a verification detail.
	ErrMalformedSubmission = errors.New("malformed submission")

	// ErrUnknownQueue is returned when a target queue is not registered.
	ErrUnknownQueue = errors.New("queue not registered")

	// ErrDuplicateCompletion is returned under DuplicateReject when one WES
	// endpoint has more than one completed submission in a queue.
	ErrDuplicateCompletion = errors.New("duplicate completion")
)

// IsDataIntegrity reports whether err signals a defect in the snapshot
// itself rather than a missing or unreadable input.
func IsDataIntegrity(err error) bool {
	return errors.Is(err, ErrMalformedSubmission) ||
		errors.Is(err, ErrMissingReference) ||
		errors.Is(err, ErrDuplicateCompletion)
}
