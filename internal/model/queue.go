package model

// Submission is one workflow run request. The same shape is used by the
// testbed log (queue -> wes -> sub) and by the submission queue store
// (queue -> sub); fields not used by a given file are simply absent. Keys
// the submission pipeline writes that are not modelled here are kept in
// Extra, so rewriting the file does not drop them.
type Submission struct {
	Status Status         `json:"status,omitempty" yaml:"status,omitempty"`
	Data   any            `json:"data,omitempty" yaml:"data,omitempty"`
	WESID  string         `json:"wes_id,omitempty" yaml:"wes_id,omitempty"`
	RunID  string         `json:"run_id,omitempty" yaml:"run_id,omitempty"`
	RunLog *RunLog        `json:"run_log,omitempty" yaml:"run_log,omitempty"`
	Extra  map[string]any `json:"-" yaml:",inline"`
}

var submissionKeys = []string{"status", "data", "wes_id", "run_id", "run_log"}

func (s Submission) MarshalJSON() ([]byte, error) {
	type plain Submission
	return marshalWithExtra(plain(s), s.Extra)
}

func (s *Submission) UnmarshalJSON(data []byte) error {
	type plain Submission
	var p plain
	extra, err := unmarshalWithExtra(data, &p, submissionKeys)
	if err != nil {
		return err
	}
	*s = Submission(p)
	s.Extra = extra
	return nil
}

type RunLog struct {
	RunID       string         `json:"run_id" yaml:"run_id"`
	StartTime   string         `json:"start_time,omitempty" yaml:"start_time,omitempty"`
	Status      Status         `json:"status,omitempty" yaml:"status,omitempty"`
	ElapsedTime any            `json:"elapsed_time,omitempty" yaml:"elapsed_time,omitempty"`
	WESID       string         `json:"wes_id,omitempty" yaml:"wes_id,omitempty"`
	Extra       map[string]any `json:"-" yaml:",inline"`
}

var runLogKeys = []string{"run_id", "start_time", "status", "elapsed_time", "wes_id"}

func (r RunLog) MarshalJSON() ([]byte, error) {
	type plain RunLog
	return marshalWithExtra(plain(r), r.Extra)
}

func (r *RunLog) UnmarshalJSON(data []byte) error {
	type plain RunLog
	var p plain
	extra, err := unmarshalWithExtra(data, &p, runLogKeys)
	if err != nil {
		return err
	}
	*r = RunLog(p)
	r.Extra = extra
	return nil
}

// SubmissionSet maps sub_id to Submission.
type SubmissionSet = Ordered[Submission]

// TestbedLog maps queue_id -> wes_id -> sub_id -> Submission.
type TestbedLog = Ordered[Ordered[SubmissionSet]]

// SubmissionQueue maps queue_id -> sub_id -> Submission.
type SubmissionQueue = Ordered[SubmissionSet]
