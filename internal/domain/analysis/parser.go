package analysis

import (
	"encoding/json"
	"strings"
)

// ParseError reports why an inference response could not be used.
type ParseError struct {
	Reason string // "invalid-json" or "missing-required-field"
	Field  string // set for missing-required-field
	Err    error
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return "parse analysis: " + e.Reason + " (" + e.Field + ")"
	}
	return "parse analysis: " + e.Reason
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// ParsedAnalysis is the validated decoding of the model response.
type ParsedAnalysis struct {
	Scores          map[ScoreKey]*ScoreDetail
	ReportedOverall int
	Diagnostic      Diagnostic
	Recommendations Recommendations
}

// Recommendations is the action part of the model response.
type Recommendations struct {
	Immediate    []string      `json:"immediate"`
	Routine      RoutineBlocks `json:"routine"`
	Restrictions []string      `json:"restrictions,omitempty"`
}

// RoutineBlocks groups routine entries by treatment phase.
type RoutineBlocks struct {
	Immediate   []RoutineEntry `json:"immediate"`
	Adaptation  []RoutineEntry `json:"adaptation"`
	Maintenance []RoutineEntry `json:"maintenance"`
}

// RoutineEntry is one raw routine item as returned by the model, before it
// is expanded into a RoutineStep.
type RoutineEntry struct {
	Name        string `json:"name"`
	Frequency   string `json:"frequency"` // quotidien | hebdomadaire | ponctuel
	Timing      string `json:"timing"`    // matin | soir | matin_et_soir
	CatalogID   string `json:"catalogId,omitempty"`
	Application string `json:"application,omitempty"`
	StartDate   string `json:"startDate,omitempty"`
}

// Parse validates the raw model output and decodes it into a ParsedAnalysis.
// Markdown code fences are stripped first; only the three required top-level
// keys are enforced, nested fields degrade to zero values.
func Parse(raw string) (ParsedAnalysis, error) {
	sanitized := stripFences(raw)

	var envelope map[string]json.RawMessage
	if err := json.Unmarshal([]byte(sanitized), &envelope); err != nil {
		return ParsedAnalysis{}, &ParseError{Reason: "invalid-json", Err: err}
	}
	for _, field := range []string{"scores", "diagnostic", "recommendations"} {
		if _, ok := envelope[field]; !ok {
			return ParsedAnalysis{}, &ParseError{Reason: "missing-required-field", Field: field}
		}
	}

	var out ParsedAnalysis
	scores, overall, err := decodeScores(envelope["scores"])
	if err != nil {
		return ParsedAnalysis{}, &ParseError{Reason: "invalid-json", Err: err}
	}
	out.Scores = scores
	out.ReportedOverall = overall

	if err := json.Unmarshal(envelope["diagnostic"], &out.Diagnostic); err != nil {
		return ParsedAnalysis{}, &ParseError{Reason: "invalid-json", Err: err}
	}
	out.Diagnostic.Severity = coerceSeverity(out.Diagnostic.Severity)

	if err := json.Unmarshal(envelope["recommendations"], &out.Recommendations); err != nil {
		return ParsedAnalysis{}, &ParseError{Reason: "invalid-json", Err: err}
	}

	return out, nil
}

func stripFences(raw string) string {
	sanitized := strings.TrimSpace(raw)
	sanitized = strings.TrimPrefix(sanitized, "```json")
	sanitized = strings.TrimSuffix(sanitized, "```")
	sanitized = strings.Trim(sanitized, "`")
	sanitized = strings.TrimSpace(strings.TrimPrefix(sanitized, "json"))
	return sanitized
}

func decodeScores(raw json.RawMessage) (map[ScoreKey]*ScoreDetail, int, error) {
	var wire map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, 0, err
	}

	details := make(map[ScoreKey]*ScoreDetail, len(ScoreKeys))
	for _, key := range ScoreKeys {
		payload, ok := wire[string(key)]
		if !ok || string(payload) == "null" {
			continue
		}
		var detail ScoreDetail
		if err := json.Unmarshal(payload, &detail); err != nil {
			// A malformed sub-score degrades to "absent" instead of
			// failing the whole analysis.
			continue
		}
		details[key] = &detail
	}

	var overall int
	if payload, ok := wire["overall"]; ok {
		var v float64
		if err := json.Unmarshal(payload, &v); err == nil {
			overall = int(v)
		}
	}
	return details, overall, nil
}

// coerceSeverity normalizes out-of-enum severity strings to a documented
// default instead of passing arbitrary values downstream.
func coerceSeverity(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "légère", "legere":
		return "Légère"
	case "modérée", "moderee":
		return "Modérée"
	case "sévère", "severe":
		return "Sévère"
	case "":
		return "Modérée"
	default:
		return "Modérée"
	}
}

// coerceFrequency maps the wire frequency vocabulary onto the schedule one,
// defaulting to daily for unknown values.
func coerceFrequency(raw string) Frequency {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "quotidien":
		return FrequencyDaily
	case "hebdomadaire":
		return FrequencyWeekly
	case "mensuel":
		return FrequencyMonthly
	case "ponctuel":
		return FrequencyAsNeeded
	case "progressif", "progressive":
		return FrequencyProgressive
	default:
		return FrequencyDaily
	}
}

// coerceTiming maps the wire timing vocabulary onto the schedule one,
// defaulting to both for unknown values.
func coerceTiming(raw string) TimeOfDay {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "matin":
		return TimeMorning
	case "soir":
		return TimeEvening
	case "matin_et_soir":
		return TimeBoth
	default:
		return TimeBoth
	}
}
