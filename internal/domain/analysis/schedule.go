package analysis

import (
	"sort"
	"strings"
)

// unificationRule collapses steps that represent the same product concern
// under a single display key. Category beats exact product identity: two
// different sunscreens are still one "Protection solaire" line. First
// matching rule wins.
type unificationRule struct {
	category StepCategory
	keyword  string
	key      string
}

var unificationRules = []unificationRule{
	{category: CategoryProtection, keyword: "protection solaire", key: "Protection solaire"},
	{category: CategoryCleansing, keyword: "nettoyage", key: "Nettoyage doux"},
	{category: CategoryHydration, keyword: "hydratation", key: "Hydratation globale"},
}

// mergeDurationCategories are the categories whose merged steps become
// continuous when they span several phases.
var mergeDurationCategories = map[StepCategory]struct{}{
	CategoryCleansing:  {},
	CategoryHydration:  {},
	CategoryProtection: {},
}

func unificationKey(step RoutineStep) string {
	title := strings.ToLower(step.Title)
	for _, rule := range unificationRules {
		if step.Category == rule.category || strings.Contains(title, rule.keyword) {
			return rule.key
		}
	}
	if len(step.RecommendedProducts) > 0 && step.RecommendedProducts[0].Name != "" {
		return step.RecommendedProducts[0].Name
	}
	return step.Title
}

// OrganizeBySchedule regroups the flat routine into the schedule view shown
// to the user. Daily steps land in the morning/evening buckets and duplicate
// products are merged across phases; the other frequencies are plain
// filters. Input steps are never mutated.
func OrganizeBySchedule(steps []RoutineStep) Schedule {
	var morning, evening, weekly, monthly, asNeeded []RoutineStep

	for _, step := range steps {
		switch step.Frequency {
		case FrequencyDaily:
			if step.TimeOfDay == TimeMorning || step.TimeOfDay == TimeBoth {
				morning = append(morning, step)
			}
			if step.TimeOfDay == TimeEvening || step.TimeOfDay == TimeBoth {
				evening = append(evening, step)
			}
		case FrequencyWeekly:
			weekly = append(weekly, step)
		case FrequencyMonthly:
			monthly = append(monthly, step)
		case FrequencyAsNeeded:
			asNeeded = append(asNeeded, step)
		}
	}

	return Schedule{
		Morning:  dedupeBucket(morning),
		Evening:  dedupeBucket(evening),
		Weekly:   sortBucket(weekly),
		Monthly:  sortBucket(monthly),
		AsNeeded: sortBucket(asNeeded),
	}
}

func dedupeBucket(steps []RoutineStep) []RoutineStep {
	groups := make(map[string][]RoutineStep)
	order := make([]string, 0, len(steps))
	for _, step := range steps {
		key := unificationKey(step)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], step)
	}

	out := make([]RoutineStep, 0, len(order))
	for _, key := range order {
		group := groups[key]
		if len(group) == 1 {
			out = append(out, group[0])
			continue
		}
		out = append(out, mergeGroup(key, group))
	}
	return sortBucket(out)
}

// mergeGroup collapses duplicate steps into one synthetic display step. The
// first step of the group acts as the base; the merge never alters the
// originals.
func mergeGroup(key string, group []RoutineStep) RoutineStep {
	base := group[0]
	merged := base
	merged.Title = key
	merged.Phase = PhaseImmediate // display position: merged steps start right away

	minStep := base.StepNumber
	phases := make(map[Phase]struct{})
	for _, step := range group {
		if step.StepNumber < minStep {
			minStep = step.StepNumber
		}
		phases[step.Phase] = struct{}{}
		if merged.ApplicationAdvice == "" && step.ApplicationAdvice != "" {
			merged.ApplicationAdvice = step.ApplicationAdvice
		}
	}
	merged.StepNumber = minStep

	if len(phases) > 1 {
		if _, ok := mergeDurationCategories[base.Category]; ok {
			merged.ApplicationDuration = "En continu"
		}
	}

	return merged
}

func sortBucket(steps []RoutineStep) []RoutineStep {
	if steps == nil {
		return []RoutineStep{}
	}
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].StepNumber < steps[j].StepNumber
	})
	return steps
}
