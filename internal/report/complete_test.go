package report

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/msageha/wfinterop/internal/model"
)

func mustTestbedLog(t *testing.T, content string) model.TestbedLog {
	t.Helper()
	var tlog model.TestbedLog
	require.NoError(t, json.Unmarshal([]byte(content), &tlog))
	return tlog
}

func TestComplete_OnlyCompleteStatus(t *testing.T) {
	statuses := []model.Status{
		model.StatusReceived, model.StatusSubmitted, model.StatusValidated,
		model.StatusPending, model.StatusQueued, model.StatusInitializing,
		model.StatusRunning, model.StatusCanceled, model.StatusExecutorError,
		model.StatusSystemError, model.StatusFailed, model.StatusFailedLower,
		"complete", "",
	}
	for _, status := range statuses {
		t.Run(string(status), func(t *testing.T) {
			var tlog model.TestbedLog
			var subs model.SubmissionSet
			subs.Set("s1", model.Submission{Status: status})
			var services model.Ordered[model.SubmissionSet]
			services.Set("local", subs)
			tlog.Set("q1", services)

			c, err := Complete(tlog, "q1", DuplicateLastWins)
			require.NoError(t, err)
			assert.Equal(t, 0, c.Subs.Len())
		})
	}
}

func TestComplete_SelectsPerWES(t *testing.T) {
	tlog := mustTestbedLog(t, `{
		"q1": {
			"toil": {"a": {"status": "RUNNING"}, "b": {"status": "COMPLETE"}},
			"cromwell": {"c": {"status": "COMPLETE"}},
			"local": {"d": {"status": "EXECUTOR_ERROR"}}
		},
		"q2": {"toil": {"e": {"status": "COMPLETE"}}}
	}`)

	c, err := Complete(tlog, "q1", DuplicateLastWins)
	require.NoError(t, err)

	assert.Equal(t, []string{"toil", "cromwell"}, c.Subs.Keys())
	sub, _ := c.Subs.Get("toil")
	assert.Equal(t, "b", sub)
	sub, _ = c.Subs.Get("cromwell")
	assert.Equal(t, "c", sub)
	assert.Empty(t, c.Superseded)
}

func TestComplete_LastWriteWins(t *testing.T) {
	tlog := mustTestbedLog(t, `{
		"q1": {"local": {
			"first": {"status": "COMPLETE"},
			"middle": {"status": "FAILED"},
			"second": {"status": "COMPLETE"}
		}}
	}`)

	c, err := Complete(tlog, "q1", DuplicateLastWins)
	require.NoError(t, err)

	require.Equal(t, 1, c.Subs.Len())
	sub, _ := c.Subs.Get("local")
	assert.Equal(t, "second", sub)
	assert.Equal(t, []Superseded{{WESID: "local", Dropped: "first", Kept: "second"}}, c.Superseded)
}

func TestComplete_RejectDuplicates(t *testing.T) {
	tlog := mustTestbedLog(t, `{
		"q1": {"local": {"first": {"status": "COMPLETE"}, "second": {"status": "COMPLETE"}}}
	}`)

	_, err := Complete(tlog, "q1", DuplicateReject)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrDuplicateCompletion))
	assert.Contains(t, err.Error(), "wes=local")
}

func TestComplete_QueueNotFound(t *testing.T) {
	tlog := mustTestbedLog(t, `{"q1": {}}`)

	_, err := Complete(tlog, "missing", DuplicateLastWins)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrQueueNotFound))
	assert.Contains(t, err.Error(), "queue=missing")
}

func TestComplete_EmptyQueue(t *testing.T) {
	tlog := mustTestbedLog(t, `{"q1": {"local": {}}}`)

	c, err := Complete(tlog, "q1", DuplicateLastWins)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Subs.Len())
}

func TestParseDuplicatePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    DuplicatePolicy
		wantErr bool
	}{
		{"", DuplicateLastWins, false},
		{"last-wins", DuplicateLastWins, false},
		{"reject", DuplicateReject, false},
		{"first-wins", DuplicateLastWins, true},
	}
	for _, tt := range tests {
		got, err := ParseDuplicatePolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got)
		assert.Equal(t, got, mustParsePolicy(t, got.String()))
	}
}

func mustParsePolicy(t *testing.T, s string) DuplicatePolicy {
	t.Helper()
	p, err := ParseDuplicatePolicy(s)
	require.NoError(t, err)
	return p
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, LogLevelDebug, ParseLogLevel("DEBUG"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("info"))
	assert.Equal(t, LogLevelWarn, ParseLogLevel("warning"))
	assert.Equal(t, LogLevelError, ParseLogLevel("error"))
	assert.Equal(t, LogLevelInfo, ParseLogLevel("verbose"))
	assert.Equal(t, "WARN", LogLevelWarn.String())
}
