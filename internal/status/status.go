// Package status summarizes the testbed log: one row per submission and
// per-queue counts by lifecycle stage.
package status

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/msageha/wfinterop/internal/model"
	"github.com/msageha/wfinterop/internal/snapshot"
)

type TestbedStatus struct {
	Queues []QueueStatus `json:"queues"`
	Runs   []RunStatus   `json:"runs,omitempty"`
}

type RunStatus struct {
	Queue      string       `json:"queue"`
	WES        string       `json:"wes"`
	Submission string       `json:"submission"`
	Status     model.Status `json:"status"`
	RunID      string       `json:"run_id,omitempty"`
}

type QueueStatus struct {
	Name     string `json:"name"`
	Total    int    `json:"total"`
	Active   int    `json:"active"`
	Complete int    `json:"complete"`
	Failed   int    `json:"failed"`
}

// Collect reads the testbed log at path. Rows and queues keep log order.
func Collect(loader snapshot.Loader, path string) (TestbedStatus, error) {
	var tlog model.TestbedLog
	if err := loader.Load(path, &tlog); err != nil {
		return TestbedStatus{}, fmt.Errorf("load testbed log: %w", err)
	}

	st := TestbedStatus{Queues: make([]QueueStatus, 0, tlog.Len())}
	for _, queueID := range tlog.Keys() {
		services, _ := tlog.Get(queueID)
		qs := QueueStatus{Name: queueID}
		for _, wesID := range services.Keys() {
			subs, _ := services.Get(wesID)
			for _, subID := range subs.Keys() {
				sub, _ := subs.Get(subID)
				status := model.EffectiveStatus(sub.Status)
				qs.Total++
				switch {
				case status == model.StatusComplete:
					qs.Complete++
				case model.IsTerminal(status):
					qs.Failed++
				default:
					qs.Active++
				}
				st.Runs = append(st.Runs, RunStatus{
					Queue:      queueID,
					WES:        wesID,
					Submission: subID,
					Status:     status,
					RunID:      sub.RunID,
				})
			}
		}
		st.Queues = append(st.Queues, qs)
	}
	return st, nil
}

// Run collects the status and writes it to w.
func Run(w io.Writer, loader snapshot.Loader, path string, jsonOutput bool) error {
	st, err := Collect(loader, path)
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(st)
	}

	printStatus(w, st)
	return nil
}

func printStatus(w io.Writer, s TestbedStatus) {
	if len(s.Queues) == 0 {
		fmt.Fprintln(w, "Queues: none")
		return
	}

	fmt.Fprintln(w, "Queues:")
	fmt.Fprintf(w, "  %-24s  %5s  %6s  %8s  %6s\n", "NAME", "TOTAL", "ACTIVE", "COMPLETE", "FAILED")
	for _, q := range s.Queues {
		fmt.Fprintf(w, "  %-24s  %5d  %6d  %8d  %6d\n", q.Name, q.Total, q.Active, q.Complete, q.Failed)
	}

	if len(s.Runs) == 0 {
		return
	}
	fmt.Fprintln(w, "\nRuns:")
	for _, r := range s.Runs {
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "  %-24s  wes=%-12s  sub=%-36s  status=%-14s  run=%s\n",
			r.Queue, r.WES, r.Submission, r.Status, runID)
	}
}
