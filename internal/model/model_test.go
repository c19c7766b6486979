package model

import (
	"encoding/json"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestOrdered_JSONKeepsDocumentOrder(t *testing.T) {
	var m Ordered[int]
	if err := json.Unmarshal([]byte(`{"zeta": 1, "alpha": 2, "mid": 3}`), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	got := strings.Join(m.Keys(), ",")
	if got != "zeta,alpha,mid" {
		t.Errorf("keys: got %q, want %q", got, "zeta,alpha,mid")
	}
	if v, _ := m.Get("alpha"); v != 2 {
		t.Errorf("alpha: got %d, want 2", v)
	}
}

func TestOrdered_JSONDuplicateKeyLastValueFirstPosition(t *testing.T) {
	var m Ordered[string]
	if err := json.Unmarshal([]byte(`{"a": "1", "b": "2", "a": "3"}`), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got := strings.Join(m.Keys(), ","); got != "a,b" {
		t.Errorf("keys: got %q", got)
	}
	if v, _ := m.Get("a"); v != "3" {
		t.Errorf("a: got %q, want %q", v, "3")
	}
}

func TestOrdered_JSONNull(t *testing.T) {
	var m Ordered[int]
	m.Set("stale", 1)
	if err := json.Unmarshal([]byte(`null`), &m); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if m.Len() != 0 {
		t.Errorf("expected empty map, got %d keys", m.Len())
	}
}

func TestOrdered_JSONRejectsArray(t *testing.T) {
	var m Ordered[int]
	if err := json.Unmarshal([]byte(`[1, 2]`), &m); err == nil {
		t.Error("expected error for JSON array")
	}
}

func TestOrdered_NestedJSON(t *testing.T) {
	data := `{
  "q2": {"local": {"s1": {"status": "COMPLETE"}}},
  "q1": {"remote": {"s9": {"status": "RUNNING"}, "s3": {"status": "FAILED"}}}
}`
	var log TestbedLog
	if err := json.Unmarshal([]byte(data), &log); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if got := strings.Join(log.Keys(), ","); got != "q2,q1" {
		t.Errorf("queue order: got %q", got)
	}
	q1, _ := log.Get("q1")
	remote, _ := q1.Get("remote")
	if got := strings.Join(remote.Keys(), ","); got != "s9,s3" {
		t.Errorf("submission order: got %q", got)
	}
	s3, _ := remote.Get("s3")
	if s3.Status != StatusFailed {
		t.Errorf("s3 status: got %q", s3.Status)
	}
}

func TestOrdered_JSONRoundTripOrder(t *testing.T) {
	var m Ordered[int]
	m.Set("b", 1)
	m.Set("a", 2)

	out, err := json.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"b":1,"a":2}` {
		t.Errorf("got %s", out)
	}
}

func TestOrdered_YAMLKeepsDocumentOrder(t *testing.T) {
	content := `
second:
  workflow_id: "2"
first:
  workflow_id: "1"
`
	var qs QueueSet
	if err := yaml.Unmarshal([]byte(content), &qs); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got := strings.Join(qs.Keys(), ","); got != "second,first" {
		t.Errorf("keys: got %q", got)
	}
}

func TestOrdered_YAMLMarshalOrder(t *testing.T) {
	var m Ordered[string]
	m.Set("zz", "1")
	m.Set("aa", "2")

	out, err := yaml.Marshal(m)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != "zz: \"1\"\naa: \"2\"\n" {
		t.Errorf("got %q", out)
	}
}

func TestOrdered_Delete(t *testing.T) {
	var m Ordered[int]
	m.Set("a", 1)
	m.Set("b", 2)
	m.Set("c", 3)
	m.Delete("b")
	m.Delete("missing")

	if got := strings.Join(m.Keys(), ","); got != "a,c" {
		t.Errorf("keys: got %q", got)
	}
	if m.Has("b") {
		t.Error("b should be gone")
	}
}

func TestQueueRef_Decode(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    QueueRef
		checker bool
	}{
		{"null", "target_queue: null\n", "", false},
		{"absent", "workflow_id: x\n", "", false},
		{"false", "target_queue: false\n", "", false},
		{"empty", "target_queue: \"\"\n", "", false},
		{"name", "target_queue: wdl_queue\n", "wdl_queue", true},
		{"numeric", "target_queue: 12\n", "12", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var q Queue
			if err := yaml.Unmarshal([]byte(tt.content), &q); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if q.TargetQueue != tt.want {
				t.Errorf("target_queue: got %q, want %q", q.TargetQueue, tt.want)
			}
			if q.IsChecker() != tt.checker {
				t.Errorf("IsChecker: got %v, want %v", q.IsChecker(), tt.checker)
			}
		})
	}
}

func TestQueueRef_TrueRejected(t *testing.T) {
	var q Queue
	if err := yaml.Unmarshal([]byte("target_queue: true\n"), &q); err == nil {
		t.Error("expected error for target_queue: true")
	}
}

func TestQueueRef_MarshalEmptyAsNull(t *testing.T) {
	out, err := yaml.Marshal(Queue{WorkflowType: "CWL"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.Contains(string(out), "target_queue: null") {
		t.Errorf("expected null target_queue, got:\n%s", out)
	}
}

func TestQueue_IDsKeepDecodedType(t *testing.T) {
	var q Queue
	content := "workflow_id: 42\nversion_id: \"1\"\ntrs_id: null\n"
	if err := yaml.Unmarshal([]byte(content), &q); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if q.WorkflowID.Value() != 42 {
		t.Errorf("workflow_id: got %#v, want int 42", q.WorkflowID.Value())
	}
	if q.VersionID.Value() != "1" {
		t.Errorf("version_id: got %#v, want string \"1\"", q.VersionID.Value())
	}
	if !q.TRSID.IsNull() || !q.WorkflowURL.IsNull() {
		t.Errorf("expected null trs_id and workflow_url, got %v %v", q.TRSID, q.WorkflowURL)
	}

	out, err := json.Marshal(TestbedResult{WorkflowID: q.WorkflowID, VersionID: q.VersionID, WESVerified: NotYetVerified()})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != `{"workflow_id":42,"version_id":"1","wes_verified":false}` {
		t.Errorf("got %s", out)
	}
}

func TestQueue_RewriteKeepsUnmodelledKeys(t *testing.T) {
	content := `workflow_type: CWL
workflow_id: 42
version_id: 1
workflow_url: null
wes_verified:
  - local
`
	var q Queue
	if err := yaml.Unmarshal([]byte(content), &q); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	out, err := yaml.Marshal(q)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{"workflow_id: 42\n", "version_id: 1\n", "workflow_url: null\n", "trs_id: null\n", "wes_verified:\n    - local\n"} {
		if !strings.Contains(string(out), want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}

func TestScalar_JSONRoundTrip(t *testing.T) {
	tests := []struct {
		in   string
		text string
	}{
		{`42`, "42"},
		{`"42"`, "42"},
		{`1.5`, "1.5"},
		{`null`, ""},
		{`"v2"`, "v2"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var s Scalar
			if err := json.Unmarshal([]byte(tt.in), &s); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if s.String() != tt.text {
				t.Errorf("String: got %q, want %q", s.String(), tt.text)
			}
			out, err := json.Marshal(s)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(out) != tt.in {
				t.Errorf("got %s, want %s", out, tt.in)
			}
		})
	}
}

func TestScalar_JSONRejectsObject(t *testing.T) {
	var s Scalar
	if err := json.Unmarshal([]byte(`{"a": 1}`), &s); err == nil {
		t.Error("expected error for object")
	}
}

func TestScalar_YAMLTimestampStaysText(t *testing.T) {
	var q Queue
	if err := yaml.Unmarshal([]byte("version_id: 2017-10-01\n"), &q); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if q.VersionID.Value() != "2017-10-01" {
		t.Errorf("got %#v", q.VersionID.Value())
	}
}

func TestText_EmptyIsNull(t *testing.T) {
	if !Text("").IsNull() {
		t.Error("expected null")
	}
	if Text("x").String() != "x" {
		t.Error("expected x")
	}
}

func TestSubmission_JSONKeepsUnmodelledKeys(t *testing.T) {
	in := `{"status":"COMPLETE","wes_id":"local","attempts":3,"run_log":{"run_id":"r1","outputs":{"md5":"abc"}}}`
	var sub Submission
	if err := json.Unmarshal([]byte(in), &sub); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if sub.RunLog == nil || sub.RunLog.RunID != "r1" {
		t.Fatalf("run_log: got %+v", sub.RunLog)
	}
	if _, ok := sub.Extra["status"]; ok {
		t.Errorf("modelled key status landed in Extra")
	}

	out, err := json.Marshal(sub)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"status":"COMPLETE","wes_id":"local","run_log":{"run_id":"r1","outputs":{"md5":"abc"}},"attempts":3}`
	if string(out) != want {
		t.Errorf("got %s, want %s", out, want)
	}
}

func TestService_URL(t *testing.T) {
	s := Service{Proto: "http", Host: "example.org"}
	if got := s.URL(); got != "http//example.org" {
		t.Errorf("URL: got %q", got)
	}
}

func TestVerification_JSON(t *testing.T) {
	tests := []struct {
		name string
		v    Verification
		want string
	}{
		{"not yet verified", NotYetVerified(), `false`},
		{"verified empty", Verified(nil), `[]`},
		{"verified", Verified([]VerificationDetail{{WESURL: "http//h", TestURL: "t", WESRunID: "r", TestDate: "d"}}),
			`[{"wes_url":"http//h","test_url":"t","wes_run_id":"r","test_date":"d"}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := json.Marshal(tt.v)
			if err != nil {
				t.Fatalf("Marshal: %v", err)
			}
			if string(out) != tt.want {
				t.Errorf("got %s, want %s", out, tt.want)
			}

			var back Verification
			if err := json.Unmarshal(out, &back); err != nil {
				t.Fatalf("Unmarshal: %v", err)
			}
			if back.IsVerified() != tt.v.IsVerified() || len(back.Details()) != len(tt.v.Details()) {
				t.Errorf("decoded %v, want %v", back, tt.v)
			}
		})
	}
}

func TestVerification_YAML(t *testing.T) {
	out, err := yaml.Marshal(TestbedResult{WorkflowID: Text("w"), VersionID: Text("v"), WESVerified: NotYetVerified()})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(out) != "workflow_id: w\nversion_id: v\nwes_verified: false\n" {
		t.Errorf("got %q", out)
	}

	var back TestbedResult
	if err := yaml.Unmarshal(out, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.WESVerified.IsVerified() {
		t.Error("expected NotYetVerified after round trip")
	}
}

func TestVerification_YAMLRejectsString(t *testing.T) {
	var v Verification
	if err := yaml.Unmarshal([]byte(`"yes"`), &v); err == nil {
		t.Error("expected error for string wes_verified")
	}
}
