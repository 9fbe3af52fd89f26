package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatDurationRange(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{1, "1 semaine"},
		{7, "1 semaine"},
		{8, "1-2 semaines"},
		{14, "1-2 semaines"},
		{15, "2-3 semaines"},
		{21, "2-3 semaines"},
		{22, "3-4 semaines"},
		{28, "3-4 semaines"},
		{29, "4-6 semaines"},
		{42, "4-6 semaines"},
		{43, "6-8 semaines"},
		{56, "6-8 semaines"},
		{57, "8+ semaines"},
		{120, "8+ semaines"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, FormatDurationRange(tc.days), "days=%d", tc.days)
	}
}

func TestImmediateDurationNilAssessment(t *testing.T) {
	require.Equal(t, "1-3 semaines", ImmediateDuration(nil, nil))
}

func TestImmediateDurationBase(t *testing.T) {
	assessment := &BeautyAssessment{EstimatedSkinAge: 30}
	require.Equal(t, "1-2 semaines", ImmediateDuration(assessment, nil))
}

func TestImmediateDurationAgeExtensions(t *testing.T) {
	// Over 50 adds a week: 14+7 = 21 days.
	over50 := &BeautyAssessment{EstimatedSkinAge: 55}
	require.Equal(t, "2-3 semaines", ImmediateDuration(over50, nil))

	// Over 65 stacks both extensions: 14+7+7 = 28 days.
	over65 := &BeautyAssessment{EstimatedSkinAge: 70}
	require.Equal(t, "3-4 semaines", ImmediateDuration(over65, nil))
}

func TestImmediateDurationSensitiveSkin(t *testing.T) {
	assessment := &BeautyAssessment{EstimatedSkinAge: 30, SkinType: "Peau sensible"}
	// 14+5 = 19 days.
	require.Equal(t, "2-3 semaines", ImmediateDuration(assessment, nil))
}

func TestImmediateDurationIntenseZones(t *testing.T) {
	assessment := &BeautyAssessment{
		EstimatedSkinAge: 58,
		ZoneSpecific: []ZoneFinding{
			{Zone: "menton", Problems: []ZoneProblem{
				{Name: "imperfections", Intensity: IntensityIntense},
				{Name: "rougeurs", Intensity: IntensityIntense},
			}},
		},
	}
	// 14 base + 7 (over 50) + 2 (one intense zone, counted once) = 23 days.
	require.Equal(t, "3-4 semaines", ImmediateDuration(assessment, nil))
}

func TestImmediateDurationVisualCriteriaExtend(t *testing.T) {
	steps := []RoutineStep{
		{Title: "Soin cicatrisation ciblé", Phase: PhaseImmediate},
	}
	assessment := &BeautyAssessment{EstimatedSkinAge: 30}
	// Cicatrisation observes up to 14 days, same as the base: no change.
	require.Equal(t, "1-2 semaines", ImmediateDuration(assessment, steps))

	// Steps outside the immediate phase never contribute.
	adaptationOnly := []RoutineStep{
		{Title: "Soin cicatrisation ciblé", Phase: PhaseAdaptation},
	}
	require.Equal(t, "1-2 semaines", ImmediateDuration(assessment, adaptationOnly))
}

func TestGetVisualCriteria(t *testing.T) {
	criteria := GetVisualCriteria(RoutineStep{Title: "Traitement des poils incarnés"})
	require.NotNil(t, criteria)
	require.Equal(t, "5-7 jours", criteria.EstimatedDays)

	criteria = GetVisualCriteria(RoutineStep{Title: "Gel apaisant rougeurs"})
	require.NotNil(t, criteria)
	require.Equal(t, "3-5 jours", criteria.EstimatedDays)

	require.Nil(t, GetVisualCriteria(RoutineStep{Title: "Crème hydratante"}))
}

func TestEstimatedDaysUpper(t *testing.T) {
	require.Equal(t, 7, estimatedDaysUpper("5-7 jours"))
	require.Equal(t, 14, estimatedDaysUpper("10-14 jours"))
	require.Equal(t, 0, estimatedDaysUpper(""))
	require.Equal(t, 0, estimatedDaysUpper("quelques jours"))
}

func TestAdaptationDurationBase(t *testing.T) {
	// 28 days with no modifiers.
	require.Equal(t, "3-4 semaines", AdaptationDuration(nil))
}

func TestAdaptationDurationComplexActives(t *testing.T) {
	steps := []RoutineStep{
		{Title: "Sérum Retinol 0.3%", ApplicationAdvice: "Le soir uniquement"},
	}
	// 28 + 7 = 35 days.
	require.Equal(t, "4-6 semaines", AdaptationDuration(steps))

	// Keyword in the advice counts the same as in the title, but only
	// once per step.
	steps = []RoutineStep{
		{Title: "Sérum actif", ApplicationAdvice: "Contient AHA et BHA"},
	}
	require.Equal(t, "4-6 semaines", AdaptationDuration(steps))
}

func TestAdaptationDurationZonesAndProgressive(t *testing.T) {
	steps := []RoutineStep{
		{Title: "Soin ciblé", Zones: []string{"front", "menton"}},
		{Title: "Sérum", Frequency: FrequencyProgressive},
	}
	// 28 + 2*2 (zones) + 5 (progressive) = 37 days.
	require.Equal(t, "4-6 semaines", AdaptationDuration(steps))
}

func TestAdaptationDurationDedupesZones(t *testing.T) {
	steps := []RoutineStep{
		{Title: "Soin A", Zones: []string{"front", "Front "}},
		{Title: "Soin B", Zones: []string{"front"}},
	}
	// One distinct zone: 28 + 2 = 30 days.
	require.Equal(t, "4-6 semaines", AdaptationDuration(steps))
}

func TestMaintenanceDuration(t *testing.T) {
	require.Equal(t, "En continu", MaintenanceDuration())
}

func TestCalculateCompleteTiming(t *testing.T) {
	assessment := &BeautyAssessment{EstimatedSkinAge: 58, ZoneSpecific: []ZoneFinding{
		{Zone: "joues", Problems: []ZoneProblem{{Name: "rougeurs", Intensity: IntensityIntense}}},
	}}
	steps := []RoutineStep{
		{Title: "Nettoyage doux", Phase: PhaseImmediate},
		{Title: "Sérum niacinamide", Phase: PhaseAdaptation},
	}

	timing := CalculateCompleteTiming(assessment, steps)

	// Immediate: 14 + 7 + 2 = 23 days.
	require.Equal(t, "3-4 semaines", timing.Immediate.Duration)
	// Adaptation only sees the adaptation step: 28 + 7 = 35 days.
	require.Equal(t, "4-6 semaines", timing.Adaptation.Duration)
	require.Equal(t, "En continu", timing.Maintenance.Duration)

	require.NotEmpty(t, timing.Immediate.Objective.Title)
	require.NotEmpty(t, timing.Adaptation.EducationalTips)
	require.NotEmpty(t, timing.Maintenance.Objective.Tooltip)
}

func TestPhaseObjectivesCopy(t *testing.T) {
	objectives := PhaseObjectives()
	require.Len(t, objectives, 3)
	objectives[PhaseImmediate] = PhaseObjective{Title: "mutated"}
	require.NotEqual(t, "mutated", PhaseObjectives()[PhaseImmediate].Title)
}

func TestTimingBadge(t *testing.T) {
	cases := []struct {
		name string
		step RoutineStep
		want string
	}{
		{
			name: "observation wins over frequency",
			step: RoutineStep{ApplicationDuration: "cicatrisation complète", Frequency: FrequencyDaily},
			want: "👁️ Jusqu'à cicatrisation complète",
		},
		{
			name: "daily morning",
			step: RoutineStep{Frequency: FrequencyDaily, TimeOfDay: TimeMorning},
			want: "⏰ Quotidien matin",
		},
		{
			name: "daily evening",
			step: RoutineStep{Frequency: FrequencyDaily, TimeOfDay: TimeEvening},
			want: "⏰ Quotidien soir",
		},
		{
			name: "daily both",
			step: RoutineStep{Frequency: FrequencyDaily, TimeOfDay: TimeBoth},
			want: "⏰ Quotidien",
		},
		{
			name: "weekly",
			step: RoutineStep{Frequency: FrequencyWeekly},
			want: "⏱️ Hebdomadaire",
		},
		{
			name: "progressive",
			step: RoutineStep{Frequency: FrequencyProgressive},
			want: "📈 Progressif",
		},
		{
			name: "as needed",
			step: RoutineStep{Frequency: FrequencyAsNeeded},
			want: "🎯 Au besoin",
		},
		{
			name: "unknown frequency falls back to daily",
			step: RoutineStep{Frequency: Frequency("monthly")},
			want: "⏰ Quotidien",
		},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, TimingBadge(tc.step), tc.name)
	}
}
