package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/msageha/wfinterop/internal/model"
)

const rule = "---------------------------------------------------------------------------"

// Show writes a human-readable summary of the registered queues, tool
// registries and workflow services.
func (s *Store) Show(w io.Writer) error {
	cfg, err := s.Load()
	if err != nil {
		return err
	}
	qs, err := s.Queues()
	if err != nil {
		return err
	}
	return WriteSummary(w, cfg, qs)
}

func WriteSummary(w io.Writer, cfg model.Config, qs model.QueueSet) error {
	var b strings.Builder

	b.WriteString("Testbed options:\n\n")
	b.WriteString("Workflow Evaluation Queues\n(queue ID: workflow ID [version])\n")
	b.WriteString(rule + "\n")
	for _, id := range qs.Keys() {
		q, _ := qs.Get(id)
		fmt.Fprintf(&b, "%s: %s (%s)\n", id, orNone(q.WorkflowID.String()), orNone(q.VersionID.String()))
		fmt.Fprintf(&b, "  > workflow URL: %s\n", orNone(q.WorkflowURL.String()))
		if len(q.WorkflowAttachments) > 0 {
			b.WriteString("  > workflow attachments:\n")
			for _, a := range q.WorkflowAttachments {
				fmt.Fprintf(&b, "    - %s\n", a)
			}
		} else {
			b.WriteString("  > workflow attachments: None\n")
		}
		fmt.Fprintf(&b, "  > workflow type: %s\n", orNone(q.WorkflowType))
		fmt.Fprintf(&b, "  > from TRS: %s\n", orNone(q.TRSID.String()))
		fmt.Fprintf(&b, "  > WES options: [%s]\n", strings.Join(q.WESOpts, ", "))
		if q.IsChecker() {
			fmt.Fprintf(&b, "  > checks: %s\n", q.TargetQueue)
		}
	}

	b.WriteString("\nTool Registries\n(TRS ID: host address)\n")
	b.WriteString(rule + "\n")
	writeHosts(&b, cfg.ToolRegistries)

	b.WriteString("\nWorkflow Services\n(WES ID: host address)\n")
	b.WriteString(rule + "\n")
	writeHosts(&b, cfg.WorkflowServices)

	_, err := io.WriteString(w, b.String())
	return err
}

func writeHosts(b *strings.Builder, services model.Ordered[model.Service]) {
	for _, id := range services.Keys() {
		svc, _ := services.Get(id)
		fmt.Fprintf(b, "%s: %s\n", id, svc.Host)
	}
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}
