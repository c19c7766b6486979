package config

import (
	"fmt"
	"slices"

	"github.com/msageha/wfinterop/internal/model"
)

const (
	DefaultTRSID      = "dockstore"
	DefaultVersionID  = "local"
	DefaultWESID      = "local"
	DefaultProto      = "https"
	authorizationHead = "Authorization"
)

// QueueSpec describes a queue to register. Empty fields take the same
// defaults as the interactive tooling: trs dockstore, version local, WES
// local, and wes_opts of just the default WES.
type QueueSpec struct {
	WorkflowType        string
	TRSID               string
	WorkflowID          string
	VersionID           string
	WorkflowURL         string
	WorkflowAttachments []string
	WESDefault          string
	WESOpts             []string
	TargetQueue         string
}

func (q QueueSpec) build() (model.Queue, error) {
	if q.WorkflowID == "" && q.WorkflowURL == "" {
		return model.Queue{}, fmt.Errorf("%w: one of workflow id or workflow url must be specified", ErrInvalidQueue)
	}
	if q.WorkflowType == "" {
		return model.Queue{}, fmt.Errorf("%w: workflow type is required", ErrInvalidQueue)
	}

	out := model.Queue{
		WorkflowType:        q.WorkflowType,
		TRSID:               model.Text(withDefault(q.TRSID, DefaultTRSID)),
		WorkflowID:          model.Text(q.WorkflowID),
		VersionID:           model.Text(withDefault(q.VersionID, DefaultVersionID)),
		WorkflowURL:         model.Text(q.WorkflowURL),
		WorkflowAttachments: q.WorkflowAttachments,
		WESDefault:          withDefault(q.WESDefault, DefaultWESID),
		WESOpts:             q.WESOpts,
		TargetQueue:         model.QueueRef(q.TargetQueue),
	}
	if len(out.WESOpts) == 0 {
		out.WESOpts = []string{out.WESDefault}
	}
	return out, nil
}

func withDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// AddQueue registers or replaces queue id.
func (s *Store) AddQueue(id string, spec QueueSpec) error {
	if id == "" {
		return fmt.Errorf("%w: queue id is required", ErrInvalidQueue)
	}
	q, err := spec.build()
	if err != nil {
		return err
	}
	return s.updateQueues(func(qs *model.QueueSet) error {
		qs.Set(id, q)
		return nil
	})
}

// ServiceSpec describes a TRS or WES endpoint. Proto defaults to https and
// Auth to an empty Authorization header.
type ServiceSpec struct {
	Host  string
	Proto string
	Auth  map[string]string
}

func (sp ServiceSpec) build() (model.Service, error) {
	if sp.Host == "" {
		return model.Service{}, fmt.Errorf("service host is required")
	}
	auth := sp.Auth
	if auth == nil {
		auth = map[string]string{authorizationHead: ""}
	}
	return model.Service{
		Auth:  auth,
		Host:  sp.Host,
		Proto: withDefault(sp.Proto, DefaultProto),
	}, nil
}

// AddWorkflowService registers or replaces WES endpoint id.
func (s *Store) AddWorkflowService(id string, spec ServiceSpec) error {
	svc, err := spec.build()
	if err != nil {
		return fmt.Errorf("workflow service %s: %w", id, err)
	}
	return s.updateConfig(func(cfg *model.Config) error {
		cfg.WorkflowServices.Set(id, svc)
		return nil
	})
}

// AddToolRegistry registers or replaces TRS endpoint id.
func (s *Store) AddToolRegistry(id string, spec ServiceSpec) error {
	svc, err := spec.build()
	if err != nil {
		return fmt.Errorf("tool registry %s: %w", id, err)
	}
	return s.updateConfig(func(cfg *model.Config) error {
		cfg.ToolRegistries.Set(id, svc)
		return nil
	})
}

// AddWESOpt adds wesID to the execution options of each queue, optionally
// making it the default. All queues must be registered; nothing is written
// otherwise.
func (s *Store) AddWESOpt(queueIDs []string, wesID string, makeDefault bool) error {
	if wesID == "" {
		return fmt.Errorf("wes id is required")
	}
	return s.updateQueues(func(qs *model.QueueSet) error {
		for _, id := range queueIDs {
			q, ok := qs.Get(id)
			if !ok {
				return fmt.Errorf("%w: %s", ErrUnknownQueue, id)
			}
			if !slices.Contains(q.WESOpts, wesID) {
				q.WESOpts = append(q.WESOpts, wesID)
			}
			if makeDefault {
				q.WESDefault = wesID
			}
			qs.Set(id, q)
		}
		return nil
	})
}
