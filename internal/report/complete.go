package report

import (
	"fmt"

	"github.com/msageha/wfinterop/internal/model"
)

// DuplicatePolicy decides what happens when one WES endpoint has more than
// one COMPLETE submission in the same queue.
type DuplicatePolicy int

const (
	// DuplicateLastWins keeps the last completion in log order.
	DuplicateLastWins DuplicatePolicy = iota
	// DuplicateReject fails with ErrDuplicateCompletion.
	DuplicateReject
)

// ParseDuplicatePolicy accepts "last-wins" (or empty) and "reject".
func ParseDuplicatePolicy(s string) (DuplicatePolicy, error) {
	switch s {
	case "", "last-wins":
		return DuplicateLastWins, nil
	case "reject":
		return DuplicateReject, nil
	default:
		return DuplicateLastWins, fmt.Errorf("unknown duplicate policy %q (want last-wins or reject)", s)
	}
}

func (p DuplicatePolicy) String() string {
	if p == DuplicateReject {
		return "reject"
	}
	return "last-wins"
}

// Superseded records a completion dropped in favour of a later one.
type Superseded struct {
	WESID   string
	Dropped string
	Kept    string
}

// Completions is the result of the completion filter for one queue.
type Completions struct {
	// Subs maps wes_id to the retained sub_id, in log order.
	Subs       model.Ordered[string]
	Superseded []Superseded
}

// Complete selects the submissions of queueID whose status is exactly
// COMPLETE. It returns ErrQueueNotFound when queueID is not a key of the log.
func Complete(log model.TestbedLog, queueID string, policy DuplicatePolicy) (Completions, error) {
	services, ok := log.Get(queueID)
	if !ok {
		return Completions{}, fmt.Errorf("%w: queue=%s", ErrQueueNotFound, queueID)
	}

	var c Completions
	for _, wesID := range services.Keys() {
		subs, _ := services.Get(wesID)
		for _, subID := range subs.Keys() {
			sub, _ := subs.Get(subID)
			if sub.Status != model.StatusComplete {
				continue
			}
			if prev, seen := c.Subs.Get(wesID); seen {
				if policy == DuplicateReject {
					return Completions{}, fmt.Errorf("%w: queue=%s wes=%s subs=%s,%s",
						ErrDuplicateCompletion, queueID, wesID, prev, subID)
				}
				c.Superseded = append(c.Superseded, Superseded{WESID: wesID, Dropped: prev, Kept: subID})
			}
			c.Subs.Set(wesID, subID)
		}
	}
	return c, nil
}
