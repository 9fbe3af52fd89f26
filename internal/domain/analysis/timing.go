package analysis

import (
	"strconv"
	"strings"
)

// Day constants are product-tuned; they are part of the behavioral contract
// with existing users and must not be "improved" silently.
const (
	immediateBaseDays  = 14
	adaptationBaseDays = 28

	ageOver50ExtraDays    = 7
	ageOver65ExtraDays    = 7
	intenseZoneExtraDays  = 2
	sensitiveSkinDays     = 5
	complexActiveDays     = 7
	adaptationZoneDays    = 2
	progressiveStepDays   = 5
	immediateFallbackText = "1-3 semaines"
	maintenanceText       = "En continu"
)

// complexActiveKeywords flag ingredients that slow down skin adaptation.
// Matched case-insensitively against step titles and application advice.
var complexActiveKeywords = []string{"retinol", "aha", "bha", "vitamin-c", "niacinamide"}

// visualCriteriaRule maps a step title keyword to the observation guidance
// shown for the immediate phase. First matching rule wins; the keywords are
// mutually exclusive in practice.
type visualCriteriaRule struct {
	keyword  string
	criteria VisualCriteria
}

var visualCriteriaRules = []visualCriteriaRule{
	{
		keyword: "poils incarnés",
		criteria: VisualCriteria{
			Observation:   "Moins de poils incarnés visibles, peau plus lisse au toucher",
			EstimatedDays: "5-7 jours",
			NextStep:      "Passer à une exfoliation d'entretien une fois par semaine",
		},
	},
	{
		keyword: "imperfections",
		criteria: VisualCriteria{
			Observation:   "Réduction du nombre et de la taille des imperfections",
			EstimatedDays: "7-10 jours",
			NextStep:      "Introduire le soin ciblé de la phase d'adaptation",
		},
	},
	{
		keyword: "rougeurs",
		criteria: VisualCriteria{
			Observation:   "Apaisement visible des rougeurs et de l'inconfort",
			EstimatedDays: "3-5 jours",
			NextStep:      "Réduire progressivement la fréquence du soin apaisant",
		},
	},
	{
		keyword: "cicatrisation",
		criteria: VisualCriteria{
			Observation:   "Cicatrisation nette, sans croûtes ni suintement",
			EstimatedDays: "10-14 jours",
			NextStep:      "Protéger la zone du soleil pendant la phase suivante",
		},
	},
}

// GetVisualCriteria classifies a step by title keyword and returns the
// matching observation guidance, or nil when no keyword applies.
func GetVisualCriteria(step RoutineStep) *VisualCriteria {
	title := strings.ToLower(step.Title)
	for _, rule := range visualCriteriaRules {
		if strings.Contains(title, rule.keyword) {
			criteria := rule.criteria
			return &criteria
		}
	}
	return nil
}

// estimatedDaysUpper extracts the upper bound from an "N-M jours" range.
func estimatedDaysUpper(estimated string) int {
	fields := strings.Fields(estimated)
	if len(fields) == 0 {
		return 0
	}
	bounds := strings.Split(fields[0], "-")
	last := strings.TrimSpace(bounds[len(bounds)-1])
	days, err := strconv.Atoi(last)
	if err != nil {
		return 0
	}
	return days
}

// ImmediateDuration estimates how long the immediate phase lasts for this
// assessment. A missing assessment yields a fixed fallback range instead of
// an error so the UI always has something to show.
func ImmediateDuration(assessment *BeautyAssessment, steps []RoutineStep) string {
	if assessment == nil {
		return immediateFallbackText
	}

	days := immediateBaseDays

	// Visual criteria can extend the phase: the user keeps observing until
	// the slowest expected change shows.
	maxObserved := 0
	for _, step := range steps {
		if step.Phase != PhaseImmediate {
			continue
		}
		if criteria := GetVisualCriteria(step); criteria != nil {
			if upper := estimatedDaysUpper(criteria.EstimatedDays); upper > maxObserved {
				maxObserved = upper
			}
		}
	}
	if maxObserved > days {
		days = maxObserved
	}

	if assessment.EstimatedSkinAge > 50 {
		days += ageOver50ExtraDays
	}
	if assessment.EstimatedSkinAge > 65 {
		days += ageOver65ExtraDays
	}

	for _, finding := range assessment.ZoneSpecific {
		for _, problem := range finding.Problems {
			if problem.Intensity == IntensityIntense {
				days += intenseZoneExtraDays
				break
			}
		}
	}

	if strings.Contains(strings.ToLower(assessment.SkinType), "sensible") {
		days += sensitiveSkinDays
	}

	return FormatDurationRange(days)
}

// AdaptationDuration estimates the adaptation phase length from the steps
// introduced during it.
func AdaptationDuration(steps []RoutineStep) string {
	days := adaptationBaseDays

	zones := make(map[string]struct{})
	for _, step := range steps {
		text := strings.ToLower(step.Title + " " + step.ApplicationAdvice)
		for _, keyword := range complexActiveKeywords {
			if strings.Contains(text, keyword) {
				days += complexActiveDays
				break
			}
		}
		for _, zone := range step.Zones {
			zones[strings.ToLower(strings.TrimSpace(zone))] = struct{}{}
		}
		if step.Frequency == FrequencyProgressive || strings.Contains(strings.ToLower(step.FrequencyDetails), "progressive") {
			days += progressiveStepDays
		}
	}
	days += len(zones) * adaptationZoneDays

	return FormatDurationRange(days)
}

// MaintenanceDuration is constant: maintenance never completes.
func MaintenanceDuration() string {
	return maintenanceText
}

// FormatDurationRange buckets a day count into the human range shown to the
// user. Exact day counts are never displayed; the bands smooth out the
// heuristic. Lower bounds are inclusive.
func FormatDurationRange(days int) string {
	switch {
	case days <= 7:
		return "1 semaine"
	case days <= 14:
		return "1-2 semaines"
	case days <= 21:
		return "2-3 semaines"
	case days <= 28:
		return "3-4 semaines"
	case days <= 42:
		return "4-6 semaines"
	case days <= 56:
		return "6-8 semaines"
	default:
		return "8+ semaines"
	}
}

// phaseObjectives is pure display data, not computed.
var phaseObjectives = map[Phase]PhaseObjective{
	PhaseImmediate: {
		Title:       "Soulager et préparer",
		Description: "Calmer les zones irritées et rétablir la barrière cutanée avant d'introduire des actifs plus puissants.",
		Tooltip:     "Les premiers jours servent à stabiliser la peau : nettoyage doux, hydratation et protection systématique.",
	},
	PhaseAdaptation: {
		Title:       "Introduire les actifs",
		Description: "Habituer progressivement la peau aux actifs ciblés pour traiter la préoccupation principale.",
		Tooltip:     "La peau a besoin de plusieurs semaines pour tolérer les actifs : augmentez la fréquence par paliers.",
	},
	PhaseMaintenance: {
		Title:       "Entretenir les résultats",
		Description: "Conserver les acquis avec une routine simplifiée et des soins d'entretien réguliers.",
		Tooltip:     "Une routine d'entretien stable évite l'effet rebond et prolonge les résultats obtenus.",
	},
}

// PhaseObjectives returns the static objective copy for the three phases.
func PhaseObjectives() map[Phase]PhaseObjective {
	out := make(map[Phase]PhaseObjective, len(phaseObjectives))
	for phase, objective := range phaseObjectives {
		out[phase] = objective
	}
	return out
}

var phaseTips = map[Phase][]string{
	PhaseImmediate: {
		"Appliquez les soins sur une peau propre et sèche.",
		"N'introduisez qu'un seul nouveau produit à la fois.",
		"La protection solaire reste indispensable, même à l'intérieur.",
	},
	PhaseAdaptation: {
		"Commencez les actifs puissants deux soirs par semaine puis augmentez.",
		"Un léger picotement est normal ; une brûlure ne l'est pas.",
		"Espacez les actifs exfoliants des soins au rétinol.",
	},
	PhaseMaintenance: {
		"Conservez les gestes qui ont fait leurs preuves.",
		"Réévaluez votre routine à chaque changement de saison.",
		"Une pause d'un actif se fait sur une semaine, jamais brutalement.",
	},
}

// CalculateCompleteTiming derives the three phase timings for an analysis.
// A nil assessment produces a fully populated fallback rather than an error.
func CalculateCompleteTiming(assessment *BeautyAssessment, steps []RoutineStep) CompleteTiming {
	adaptationSteps := make([]RoutineStep, 0, len(steps))
	for _, step := range steps {
		if step.Phase == PhaseAdaptation {
			adaptationSteps = append(adaptationSteps, step)
		}
	}

	return CompleteTiming{
		Immediate: PhaseTiming{
			Duration:        ImmediateDuration(assessment, steps),
			Objective:       phaseObjectives[PhaseImmediate],
			EducationalTips: phaseTips[PhaseImmediate],
		},
		Adaptation: PhaseTiming{
			Duration:        AdaptationDuration(adaptationSteps),
			Objective:       phaseObjectives[PhaseAdaptation],
			EducationalTips: phaseTips[PhaseAdaptation],
		},
		Maintenance: PhaseTiming{
			Duration:        MaintenanceDuration(),
			Objective:       phaseObjectives[PhaseMaintenance],
			EducationalTips: phaseTips[PhaseMaintenance],
		},
	}
}

// observationKeywords trigger the observation-style badge instead of a
// frequency badge.
var observationKeywords = []string{"cicatrisation", "disparition", "réduction", "apaisement"}

// TimingBadge renders the short schedule badge shown on a routine step.
// The first applicable rule wins.
func TimingBadge(step RoutineStep) string {
	duration := strings.ToLower(step.ApplicationDuration)
	for _, keyword := range observationKeywords {
		if strings.Contains(duration, keyword) {
			return "👁️ Jusqu'à " + step.ApplicationDuration
		}
	}

	switch step.Frequency {
	case FrequencyDaily:
		switch step.TimeOfDay {
		case TimeMorning:
			return "⏰ Quotidien matin"
		case TimeEvening:
			return "⏰ Quotidien soir"
		default:
			return "⏰ Quotidien"
		}
	case FrequencyWeekly:
		return "⏱️ Hebdomadaire"
	case FrequencyProgressive:
		return "📈 Progressif"
	case FrequencyAsNeeded:
		return "🎯 Au besoin"
	}

	return "⏰ Quotidien"
}
