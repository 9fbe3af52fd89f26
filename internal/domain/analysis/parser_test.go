package analysis

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const validAnalysisJSON = `{
  "scores": {
    "hydration": {"value": 62, "justification": "Zones de sécheresse sur les joues", "confidence": 0.8},
    "wrinkles": {"value": 74, "justification": "Rides fines au coin des yeux", "confidence": 0.7},
    "overall": 70.4
  },
  "diagnostic": {
    "primaryCondition": "Déshydratation légère",
    "severity": "legere",
    "skinType": "mixte",
    "estimatedSkinAge": 34,
    "affectedAreas": ["joues", "front"],
    "localized": [
      {"zone": "joues", "issue": "sécheresse", "severity": "légère"}
    ]
  },
  "recommendations": {
    "immediate": ["Boire davantage d'eau"],
    "routine": {
      "immediate": [
        {"name": "Nettoyage doux", "frequency": "quotidien", "timing": "matin_et_soir"}
      ],
      "adaptation": [
        {"name": "Sérum acide hyaluronique", "frequency": "quotidien", "timing": "soir", "catalogId": "HYAL000001"}
      ],
      "maintenance": []
    },
    "restrictions": ["Éviter les gommages quotidiens"]
  }
}`

func TestParseValid(t *testing.T) {
	parsed, err := Parse(validAnalysisJSON)
	require.NoError(t, err)

	require.Len(t, parsed.Scores, 2)
	require.InDelta(t, 62, parsed.Scores[ScoreHydration].Value, 0.001)
	require.Equal(t, 70, parsed.ReportedOverall)

	require.Equal(t, "Déshydratation légère", parsed.Diagnostic.PrimaryCondition)
	require.Equal(t, "Légère", parsed.Diagnostic.Severity)
	require.Equal(t, 34, parsed.Diagnostic.EstimatedSkinAge)

	require.Len(t, parsed.Recommendations.Routine.Immediate, 1)
	require.Len(t, parsed.Recommendations.Routine.Adaptation, 1)
	require.Equal(t, "HYAL000001", parsed.Recommendations.Routine.Adaptation[0].CatalogID)
	require.Equal(t, []string{"Éviter les gommages quotidiens"}, parsed.Recommendations.Restrictions)
}

func TestParseFencedEqualsUnfenced(t *testing.T) {
	fenced := "```json\n" + validAnalysisJSON + "\n```"
	a, err := Parse(validAnalysisJSON)
	require.NoError(t, err)
	b, err := Parse(fenced)
	require.NoError(t, err)
	require.Equal(t, a, b)
}

func TestParseInvalidJSON(t *testing.T) {
	_, err := Parse("the patient shows signs of dryness")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "invalid-json", parseErr.Reason)
}

func TestParseMissingRequiredField(t *testing.T) {
	_, err := Parse(`{"scores": {}, "diagnostic": {}}`)
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	require.Equal(t, "missing-required-field", parseErr.Reason)
	require.Equal(t, "recommendations", parseErr.Field)
}

func TestParseMalformedSubScoreDegrades(t *testing.T) {
	raw := `{
  "scores": {
    "hydration": "not an object",
    "wrinkles": {"value": 80},
    "pores": null
  },
  "diagnostic": {"primaryCondition": "RAS"},
  "recommendations": {"immediate": [], "routine": {"immediate": [], "adaptation": [], "maintenance": []}}
}`
	parsed, err := Parse(raw)
	require.NoError(t, err)
	require.Len(t, parsed.Scores, 1)
	require.NotContains(t, parsed.Scores, ScoreHydration)
	require.NotContains(t, parsed.Scores, ScorePores)
	require.InDelta(t, 80, parsed.Scores[ScoreWrinkles].Value, 0.001)
}

func TestCoerceSeverity(t *testing.T) {
	cases := map[string]string{
		"légère":     "Légère",
		"Legere":     "Légère",
		"modérée":    "Modérée",
		"sévère":     "Sévère",
		"SEVERE":     "Sévère",
		"":           "Modérée",
		"critique":   "Modérée",
		" modérée  ": "Modérée",
	}
	for in, want := range cases {
		require.Equal(t, want, coerceSeverity(in), "in=%q", in)
	}
}

func TestCoerceFrequency(t *testing.T) {
	cases := map[string]Frequency{
		"quotidien":    FrequencyDaily,
		"Hebdomadaire": FrequencyWeekly,
		"mensuel":      FrequencyMonthly,
		"ponctuel":     FrequencyAsNeeded,
		"progressif":   FrequencyProgressive,
		"progressive":  FrequencyProgressive,
		"":             FrequencyDaily,
		"chaque lune":  FrequencyDaily,
	}
	for in, want := range cases {
		require.Equal(t, want, coerceFrequency(in), "in=%q", in)
	}
}

func TestCoerceTiming(t *testing.T) {
	cases := map[string]TimeOfDay{
		"matin":        TimeMorning,
		"soir":         TimeEvening,
		"matin_et_soir": TimeBoth,
		"":             TimeBoth,
		"midi":         TimeBoth,
	}
	for in, want := range cases {
		require.Equal(t, want, coerceTiming(in), "in=%q", in)
	}
}
