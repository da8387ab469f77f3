package llm

import (
	"fmt"
	"strings"
)

// IncidentContext carries the fields the prompt builders need, mirroring
// ollama_client.py's incident_data dict.
type IncidentContext struct {
	Domain     string
	Severity   string
	Service    string
	MetricName string
	MetricVal  string
	Scope      []ScopeEntry
}

// ScopeEntry is one affected device/service pair.
type ScopeEntry struct {
	DeviceID string
	Service  string
}

// RootCausePrompt builds the root-cause-analysis prompt, ported from
// ollama_client.py's _build_root_cause_prompt.
func RootCausePrompt(ic IncidentContext) string {
	scopeParts := make([]string, 0, len(ic.Scope))
	for _, s := range ic.Scope {
		d, svc := s.DeviceID, s.Service
		if d == "" {
			d = "N/A"
		}
		if svc == "" {
			svc = "N/A"
		}
		scopeParts = append(scopeParts, fmt.Sprintf("%s/%s", d, svc))
	}
	scope := strings.Join(scopeParts, ", ")

	return fmt.Sprintf(`Analyze this maritime AIOps incident and provide a concise root cause analysis.

Incident Details:
- Type: %s
- Severity: %s
- Affected Service: %s
- Metric: %s = %s
- Affected Scope: %s

Provide a brief root cause analysis (2-3 sentences) focusing on:
1. What is the most likely root cause
2. Why this issue occurred
3. What system component is affected

Keep the response concise and actionable.`, orUnknown(ic.Domain), orUnknown(ic.Severity), orUnknown(ic.Service), orNA(ic.MetricName), orNA(ic.MetricVal), scope)
}

// RemediationPrompt builds the remediation-suggestion prompt, ported
// from ollama_client.py's _build_remediation_prompt.
func RemediationPrompt(ic IncidentContext, rootCause string) string {
	rootCauseSection := ""
	if rootCause != "" {
		rootCauseSection = "\n\nRoot Cause: " + rootCause
	}
	return fmt.Sprintf(`Based on this maritime AIOps incident, suggest remediation actions.

Incident Details:
- Type: %s
- Severity: %s
- Affected Service: %s%s

Provide 2-3 specific remediation steps that operators should take.
Focus on maritime-specific actions (satellite links, network equipment, ship operations).
Keep each step brief and actionable.`, orUnknown(ic.Domain), orUnknown(ic.Severity), orUnknown(ic.Service), rootCauseSection)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

// FallbackRootCause returns the templated text used when the LLM call
// fails, times out, or the wall-clock budget is exhausted (spec §4.5:
// "never block incident creation on LLM availability").
func FallbackRootCause(ic IncidentContext) string {
	return fmt.Sprintf("Root cause analysis unavailable: automated investigation for %s-severity %s anomalies on %s could not complete in time. Manual review recommended.",
		orUnknown(ic.Severity), orUnknown(ic.Domain), orUnknown(ic.Service))
}

// FallbackRemediation returns the templated remediation text used on
// LLM failure/timeout.
func FallbackRemediation(ic IncidentContext) string {
	return fmt.Sprintf("Remediation suggestions unavailable. Escalate this %s-severity %s incident on %s to on-call for manual triage.",
		orUnknown(ic.Severity), orUnknown(ic.Domain), orUnknown(ic.Service))
}
