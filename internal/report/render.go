package report

import (
	"encoding/json"
	"fmt"
	"io"

	yamlv3 "gopkg.in/yaml.v3"

	"github.com/msageha/wfinterop/internal/model"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatText Format = "text"
)

func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case FormatJSON, FormatYAML, FormatText:
		return Format(s), nil
	case "yml":
		return FormatYAML, nil
	case "":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("unknown report format %q (want json, yaml or text)", s)
	}
}

// Render writes results to w in the given format.
func Render(w io.Writer, results []model.TestbedResult, format Format) error {
	if results == nil {
		results = []model.TestbedResult{}
	}
	switch format {
	case FormatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode report json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yamlv3.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(results); err != nil {
			return fmt.Errorf("encode report yaml: %w", err)
		}
		return enc.Close()
	case FormatText:
		return renderText(w, results)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

const textRow = "%-20s  %-20s  %-10s  %-8s  %s\n"

func renderText(w io.Writer, results []model.TestbedResult) error {
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No checker queues registered.")
		return err
	}

	if _, err := fmt.Fprintf(w, textRow, "CHECKER", "TARGET", "WORKFLOW", "VERSION", "VERIFIED"); err != nil {
		return err
	}
	observed := 0
	for _, r := range results {
		if len(r.WESVerified.Details()) > 0 {
			observed++
		}
		if _, err := fmt.Fprintf(w, textRow, r.CheckerQueue, r.TargetQueue, r.WorkflowID.String(), r.VersionID.String(), r.WESVerified); err != nil {
			return err
		}
		for _, d := range r.WESVerified.Details() {
			if _, err := fmt.Fprintf(w, "    %s  run=%s  date=%s  test=%v\n", d.WESURL, d.WESRunID, d.TestDate, d.TestURL); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "\n%d of %d checker(s) observed a completed run\n", observed, len(results))
	return err
}
