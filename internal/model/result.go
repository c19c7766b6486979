package model

import (
	"bytes"
	"encoding/json"
	"fmt"

	yamlv3 "gopkg.in/yaml.v3"
)

// VerificationDetail describes one completed checker run on one WES endpoint.
type VerificationDetail struct {
	WESURL   string `json:"wes_url" yaml:"wes_url"`
	TestURL  any    `json:"test_url" yaml:"test_url"`
	WESRunID string `json:"wes_run_id" yaml:"wes_run_id"`
	TestDate string `json:"test_date" yaml:"test_date"`
}

// Verification is either Verified (with the details found for the checker
// queue, possibly none) or NotYetVerified. On the wire NotYetVerified is the
// literal false and Verified is the detail list.
type Verification struct {
	verified bool
	details  []VerificationDetail
}

func Verified(details []VerificationDetail) Verification {
	if details == nil {
		details = []VerificationDetail{}
	}
	return Verification{verified: true, details: details}
}

func NotYetVerified() Verification {
	return Verification{}
}

// IsVerified is false only for NotYetVerified.
func (v Verification) IsVerified() bool {
	return v.verified
}

func (v Verification) Details() []VerificationDetail {
	return v.details
}

func (v Verification) String() string {
	if !v.verified {
		return "not yet verified"
	}
	return fmt.Sprintf("verified on %d endpoint(s)", len(v.details))
}

func (v Verification) MarshalJSON() ([]byte, error) {
	if !v.verified {
		return []byte("false"), nil
	}
	return json.Marshal(v.details)
}

func (v *Verification) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("false")) || bytes.Equal(trimmed, []byte("null")) {
		*v = NotYetVerified()
		return nil
	}
	var details []VerificationDetail
	if err := json.Unmarshal(trimmed, &details); err != nil {
		return fmt.Errorf("wes_verified: %w", err)
	}
	*v = Verified(details)
	return nil
}

func (v Verification) MarshalYAML() (any, error) {
	if !v.verified {
		return false, nil
	}
	return v.details, nil
}

func (v *Verification) UnmarshalYAML(node *yamlv3.Node) error {
	if node.Kind == yamlv3.ScalarNode {
		if node.Tag == "!!null" || (node.Tag == "!!bool" && node.Value == "false") {
			*v = NotYetVerified()
			return nil
		}
		return fmt.Errorf("line %d: wes_verified must be false or a list", node.Line)
	}
	var details []VerificationDetail
	if err := node.Decode(&details); err != nil {
		return fmt.Errorf("wes_verified: %w", err)
	}
	*v = Verified(details)
	return nil
}

// TestbedResult is one row of the verification report: the target queue's
// workflow identity and what its checker queue observed.
type TestbedResult struct {
	CheckerQueue string       `json:"-" yaml:"-"`
	TargetQueue  string       `json:"-" yaml:"-"`
	WorkflowID   Scalar       `json:"workflow_id" yaml:"workflow_id"`
	VersionID    Scalar       `json:"version_id" yaml:"version_id"`
	WESVerified  Verification `json:"wes_verified" yaml:"wes_verified"`
}
