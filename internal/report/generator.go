// Package report reconciles checker-queue completions against the testbed
// registry and produces the verification report.
package report

import (
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/msageha/wfinterop/internal/model"
	"github.com/msageha/wfinterop/internal/snapshot"
)

// Registry supplies the registered queues and WES endpoints.
type Registry interface {
	Queues() (model.QueueSet, error)
	WorkflowServices() (model.Ordered[model.Service], error)
}

// Options locates the snapshots and selects the reconciliation policies.
type Options struct {
	TestbedLogPath      string
	SubmissionQueuePath string
	Duplicates          DuplicatePolicy
	// StrictReferences keeps ErrMissingReference fatal in Result instead of
	// reporting the checker as not yet verified.
	StrictReferences bool
}

// Generator builds verification reports. It holds no snapshot state: every
// call re-reads its inputs through the registry and loader.
type Generator struct {
	registry Registry
	loader   snapshot.Loader
	opts     Options
	logger   *log.Logger
	logLevel LogLevel
}

// NewGenerator returns a Generator. A nil logger discards log output.
func NewGenerator(registry Registry, loader snapshot.Loader, opts Options, logger *log.Logger, logLevel LogLevel) *Generator {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Generator{
		registry: registry,
		loader:   loader,
		opts:     opts,
		logger:   logger,
		logLevel: logLevel,
	}
}

// VerifiedDetails returns one detail per WES endpoint with a completed
// submission in queueID, in testbed log order.
func (g *Generator) VerifiedDetails(queueID string) ([]model.VerificationDetail, error) {
	var tlog model.TestbedLog
	if err := g.loader.Load(g.opts.TestbedLogPath, &tlog); err != nil {
		return nil, fmt.Errorf("load testbed log: %w", err)
	}

	completions, err := Complete(tlog, queueID, g.opts.Duplicates)
	if err != nil {
		return nil, err
	}
	for _, s := range completions.Superseded {
		g.log(LogLevelWarn, "duplicate_completion queue=%s wes=%s dropped=%s kept=%s",
			queueID, s.WESID, s.Dropped, s.Kept)
	}

	details := make([]model.VerificationDetail, 0, completions.Subs.Len())
	if completions.Subs.Len() == 0 {
		return details, nil
	}

	services, err := g.registry.WorkflowServices()
	if err != nil {
		return nil, fmt.Errorf("load workflow services: %w", err)
	}
	var store model.SubmissionQueue
	if err := g.loader.Load(g.opts.SubmissionQueuePath, &store); err != nil {
		return nil, fmt.Errorf("load submission queue: %w", err)
	}
	subs, ok := store.Get(queueID)
	if !ok {
		return nil, fmt.Errorf("%w: queue=%s not in submission queue", ErrMissingReference, queueID)
	}

	for _, wesID := range completions.Subs.Keys() {
		subID, _ := completions.Subs.Get(wesID)

		svc, ok := services.Get(wesID)
		if !ok {
			return nil, fmt.Errorf("%w: queue=%s wes=%s not a registered workflow service",
				ErrMissingReference, queueID, wesID)
		}
		sub, ok := subs.Get(subID)
		if !ok {
			return nil, fmt.Errorf("%w: queue=%s sub=%s not in submission queue",
				ErrMissingReference, queueID, subID)
		}
		if err := checkRunLog(sub.RunLog); err != nil {
			return nil, fmt.Errorf("%w: queue=%s wes=%s sub=%s: %v",
				ErrMalformedSubmission, queueID, wesID, subID, err)
		}

		details = append(details, model.VerificationDetail{
			WESURL:   svc.URL(),
			TestURL:  sub.Data,
			WESRunID: sub.RunLog.RunID,
			TestDate: sub.RunLog.StartTime,
		})
	}
	return details, nil
}

func checkRunLog(rl *model.RunLog) error {
	switch {
	case rl == nil:
		return errors.New("missing run_log")
	case rl.RunID == "":
		return errors.New("run_log has no run_id")
	case rl.StartTime == "":
		return errors.New("run_log has no start_time")
	}
	return nil
}

// Result pairs target's workflow identity with what checker observed. A
// checker with nothing to report yet yields NotYetVerified.
func (g *Generator) Result(checker, target string) (model.TestbedResult, error) {
	queues, err := g.registry.Queues()
	if err != nil {
		return model.TestbedResult{}, fmt.Errorf("load queues: %w", err)
	}
	return g.result(queues, checker, target)
}

// result resolves target in queues, the registry snapshot the caller
// already holds.
func (g *Generator) result(queues model.QueueSet, checker, target string) (model.TestbedResult, error) {
	tq, ok := queues.Get(target)
	if !ok {
		return model.TestbedResult{}, fmt.Errorf("%w: target=%s", ErrUnknownQueue, target)
	}

	res := model.TestbedResult{
		CheckerQueue: checker,
		TargetQueue:  target,
		WorkflowID:   tq.WorkflowID,
		VersionID:    tq.VersionID,
	}

	details, err := g.VerifiedDetails(checker)
	switch {
	case err == nil:
		res.WESVerified = model.Verified(details)
	case g.notYetVerified(err):
		g.log(LogLevelInfo, "not_yet_verified checker=%s target=%s reason=%q", checker, target, err)
		res.WESVerified = model.NotYetVerified()
	default:
		return model.TestbedResult{}, fmt.Errorf("verify checker=%s target=%s: %w", checker, target, err)
	}
	return res, nil
}

func (g *Generator) notYetVerified(err error) bool {
	if errors.Is(err, ErrQueueNotFound) {
		return true
	}
	return !g.opts.StrictReferences && errors.Is(err, ErrMissingReference)
}

// Report returns one result per checker queue, in registry order. Any error
// other than the not-yet-verified cases aborts the whole report.
func (g *Generator) Report() ([]model.TestbedResult, error) {
	queues, err := g.registry.Queues()
	if err != nil {
		return nil, fmt.Errorf("load queues: %w", err)
	}

	results := make([]model.TestbedResult, 0)
	for _, id := range queues.Keys() {
		q, _ := queues.Get(id)
		if !q.IsChecker() {
			continue
		}
		target := string(q.TargetQueue)
		if !queues.Has(target) {
			g.log(LogLevelWarn, "skip checker=%s target=%s reason=target_not_registered", id, target)
			continue
		}

		res, err := g.result(queues, id, target)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}

	g.log(LogLevelDebug, "report_generated results=%d", len(results))
	return results, nil
}

func (g *Generator) log(level LogLevel, format string, args ...any) {
	Logf(g.logger, g.logLevel, level, "report", format, args...)
}
