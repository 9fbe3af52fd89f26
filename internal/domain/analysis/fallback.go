package analysis

// Degraded mode: when the inference call fails, times out, or returns an
// unusable payload, the user still gets a fully populated result with
// explicit low-confidence markers instead of a dead end.

const fallbackConfidence = 0.3

var fallbackScoreValues = map[ScoreKey]float64{
	ScoreHydration:   65,
	ScoreWrinkles:    70,
	ScoreFirmness:    70,
	ScoreRadiance:    65,
	ScorePores:       65,
	ScoreSpots:       70,
	ScoreDarkCircles: 70,
	ScoreSkinAge:     70,
}

func fallbackScores() map[ScoreKey]*ScoreDetail {
	details := make(map[ScoreKey]*ScoreDetail, len(fallbackScoreValues))
	for key, value := range fallbackScoreValues {
		details[key] = &ScoreDetail{
			Value:         value,
			Justification: "Estimation par défaut, l'analyse photo n'a pas abouti.",
			Confidence:    fallbackConfidence,
		}
	}
	return details
}

func fallbackParsed(profile Profile) ParsedAnalysis {
	concern := profile.MainConcern
	if concern == "" {
		concern = "Équilibre général de la peau"
	}
	return ParsedAnalysis{
		Scores: fallbackScores(),
		Diagnostic: Diagnostic{
			PrimaryCondition: concern,
			Severity:         "Modérée",
			SkinType:         profile.SkinType,
			EstimatedSkinAge: profile.Age,
			AffectedAreas:    profile.ConcernedZones,
			Observations: []string{
				"Résultat indicatif généré sans analyse des photos.",
			},
			Prognosis: "Une routine de base adaptée à votre profil reste bénéfique en attendant une nouvelle analyse.",
		},
		Recommendations: Recommendations{
			Immediate: []string{
				"Relancez l'analyse avec des photos nettes et bien éclairées.",
			},
			Routine: RoutineBlocks{
				Immediate: []RoutineEntry{
					{
						Name:        "Nettoyage doux",
						Frequency:   "quotidien",
						Timing:      "matin_et_soir",
						Application: "Masser sur peau humide puis rincer à l'eau tiède.",
					},
					{
						Name:        "Hydratation globale",
						Frequency:   "quotidien",
						Timing:      "matin_et_soir",
						Application: "Appliquer sur l'ensemble du visage après le nettoyage.",
					},
					{
						Name:        "Protection solaire SPF 50",
						Frequency:   "quotidien",
						Timing:      "matin",
						Application: "Renouveler toutes les deux heures en cas d'exposition.",
					},
				},
			},
		},
	}
}
