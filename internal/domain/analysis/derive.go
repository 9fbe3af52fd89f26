package analysis

import "strings"

// deriveAssessment builds the immutable condition summary the timing engine
// consumes. Diagnostic fields win over questionnaire answers; the profile
// only fills what the model left blank.
func deriveAssessment(parsed ParsedAnalysis, profile Profile) BeautyAssessment {
	skinType := parsed.Diagnostic.SkinType
	if skinType == "" {
		skinType = profile.SkinType
	}
	estimatedAge := parsed.Diagnostic.EstimatedSkinAge
	if estimatedAge == 0 {
		estimatedAge = profile.Age
	}

	mainConcern := parsed.Diagnostic.PrimaryCondition
	if mainConcern == "" {
		mainConcern = profile.MainConcern
	}

	zones := parsed.Diagnostic.AffectedAreas
	if len(zones) == 0 {
		zones = profile.ConcernedZones
	}

	return BeautyAssessment{
		MainConcern:         mainConcern,
		Intensity:           intensityFromSeverity(parsed.Diagnostic.Severity),
		ConcernedZones:      zones,
		SkinType:            skinType,
		EstimatedSkinAge:    estimatedAge,
		VisualFindings:      parsed.Diagnostic.Observations,
		ExpectedImprovement: parsed.Diagnostic.Prognosis,
		ZoneSpecific:        deriveZoneFindings(parsed.Diagnostic.Localized),
	}
}

func intensityFromSeverity(severity string) Intensity {
	switch strings.ToLower(severity) {
	case "légère":
		return IntensityLight
	case "sévère":
		return IntensityIntense
	default:
		return IntensityModerate
	}
}

func deriveZoneFindings(localized []LocalizedFinding) []ZoneFinding {
	if len(localized) == 0 {
		return nil
	}
	byZone := make(map[string]*ZoneFinding)
	order := make([]string, 0, len(localized))
	for _, finding := range localized {
		zone := strings.TrimSpace(finding.Zone)
		if zone == "" {
			continue
		}
		entry, ok := byZone[zone]
		if !ok {
			entry = &ZoneFinding{Zone: zone}
			byZone[zone] = entry
			order = append(order, zone)
		}
		entry.Problems = append(entry.Problems, ZoneProblem{
			Name:      finding.Issue,
			Intensity: intensityFromSeverity(finding.Severity),
		})
		if entry.Description == "" && len(finding.Notes) > 0 {
			entry.Description = strings.Join(finding.Notes, " ")
		}
	}
	out := make([]ZoneFinding, 0, len(order))
	for _, zone := range order {
		out = append(out, *byZone[zone])
	}
	return out
}

// categoryRule classifies a routine entry by name keyword; first match wins.
type categoryRule struct {
	keywords []string
	category StepCategory
}

var categoryRules = []categoryRule{
	{keywords: []string{"nettoy", "démaquill"}, category: CategoryCleansing},
	{keywords: []string{"protection", "solaire", "spf", "écran"}, category: CategoryProtection},
	{keywords: []string{"exfoli", "gommage", "peeling"}, category: CategoryExfoliation},
	{keywords: []string{"hydrat", "crème", "baume"}, category: CategoryHydration},
}

func classifyCategory(name string) StepCategory {
	lower := strings.ToLower(name)
	for _, rule := range categoryRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(lower, keyword) {
				return rule.category
			}
		}
	}
	return CategoryTreatment
}

// expandRoutine turns the raw per-phase entries into the full step records
// used by the schedule and timing views. Step numbers run sequentially
// across phases in treatment order.
func expandRoutine(blocks RoutineBlocks, zones []string) []RoutineStep {
	var out []RoutineStep
	number := 0
	appendPhase := func(phase Phase, entries []RoutineEntry) {
		for _, entry := range entries {
			number++
			step := RoutineStep{
				StepNumber:        number,
				Title:             entry.Name,
				TargetArea:        TargetGlobal,
				ApplicationAdvice: entry.Application,
				Priority:          number,
				Phase:             phase,
				Frequency:         coerceFrequency(entry.Frequency),
				TimeOfDay:         coerceTiming(entry.Timing),
				Category:          classifyCategory(entry.Name),
				TimingDetails:     entry.StartDate,
			}
			if strings.Contains(strings.ToLower(entry.Application), "progressiv") {
				step.FrequencyDetails = entry.Application
			}
			if len(zones) > 0 && step.Category == CategoryTreatment {
				step.TargetArea = TargetSpecific
				step.Zones = zones
			}
			if entry.CatalogID != "" || entry.Name != "" {
				step.RecommendedProducts = []ProductRef{{
					Name:      entry.Name,
					CatalogID: entry.CatalogID,
				}}
			}
			out = append(out, step)
		}
	}
	appendPhase(PhaseImmediate, blocks.Immediate)
	appendPhase(PhaseAdaptation, blocks.Adaptation)
	appendPhase(PhaseMaintenance, blocks.Maintenance)
	return out
}
