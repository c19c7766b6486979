// Package model defines the data structures for the testbed's configuration,
// submission snapshots and verification reports.
package model

import (
	"fmt"

	yamlv3 "gopkg.in/yaml.v3"
)

const (
	DefaultTestbedLogFile      = "testbed_log.json"
	DefaultSubmissionQueueFile = "submission_queue.json"
)

// Config is the content of config.yaml.
type Config struct {
	ToolRegistries   Ordered[Service] `yaml:"toolregistries"`
	WorkflowServices Ordered[Service] `yaml:"workflowservices"`
	Logging          LoggingConfig    `yaml:"logging"`
	Paths            PathsConfig      `yaml:"paths"`
}

type LoggingConfig struct {
	Level string `yaml:"level"`
}

// PathsConfig locates the snapshot files. Relative paths resolve against the
// workspace directory.
type PathsConfig struct {
	TestbedLog      string `yaml:"testbed_log,omitempty"`
	SubmissionQueue string `yaml:"submission_queue,omitempty"`
}

// Service is a registered TRS or WES endpoint.
type Service struct {
	Auth                     map[string]string `yaml:"auth"`
	Host                     string            `yaml:"host"`
	Proto                    string            `yaml:"proto"`
	WorkflowEngineParameters any               `yaml:"workflow_engine_parameters,omitempty"`
}

// URL joins proto and host with "//". No colon is inserted: report consumers
// match on this exact string.
func (s Service) URL() string {
	return s.Proto + "//" + s.Host
}

// Queue is a registered workflow evaluation queue (an entry of queues.yaml).
// Unset identifiers are written back as null, and keys the registry does
// not model (wes_verified, for one) are carried in Extra so rewriting
// queues.yaml keeps them.
type Queue struct {
	WorkflowType        string         `yaml:"workflow_type"`
	TRSID               Scalar         `yaml:"trs_id"`
	WorkflowID          Scalar         `yaml:"workflow_id"`
	VersionID           Scalar         `yaml:"version_id"`
	WorkflowURL         Scalar         `yaml:"workflow_url"`
	WorkflowAttachments []string       `yaml:"workflow_attachments"`
	WESDefault          string         `yaml:"wes_default"`
	WESOpts             []string       `yaml:"wes_opts"`
	TargetQueue         QueueRef       `yaml:"target_queue"`
	Test                string         `yaml:"test,omitempty"`
	Extra               map[string]any `yaml:",inline"`
}

// IsChecker reports whether the queue verifies another queue.
func (q Queue) IsChecker() bool {
	return q.TargetQueue != ""
}

// QueueSet is the queue registry in document order.
type QueueSet = Ordered[Queue]

// QueueRef names another queue. null, false and "" all decode to the empty
// reference.
type QueueRef string

func (r *QueueRef) UnmarshalYAML(node *yamlv3.Node) error {
	if node.Kind != yamlv3.ScalarNode {
		return fmt.Errorf("line %d: target_queue must be a scalar", node.Line)
	}
	switch node.Tag {
	case "!!null":
		*r = ""
	case "!!bool":
		var b bool
		if err := node.Decode(&b); err != nil {
			return err
		}
		if b {
			return fmt.Errorf("line %d: target_queue must name a queue, got true", node.Line)
		}
		*r = ""
	default:
		*r = QueueRef(node.Value)
	}
	return nil
}

func (r QueueRef) MarshalYAML() (any, error) {
	if r == "" {
		return nil, nil
	}
	return string(r), nil
}
