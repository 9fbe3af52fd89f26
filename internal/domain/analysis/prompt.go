package analysis

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/eclatderm/visage/pkg/metrics"
)

// responseSchema is the exact JSON shape the inference call must return.
// The parser in this package depends on the three top-level keys.
const responseSchema = `{
  "scores": {
    "hydration": {"value": 0-100, "justification": "...", "confidence": 0-1, "basedOn": ["..."]},
    "wrinkles": {...}, "firmness": {...}, "radiance": {...}, "pores": {...},
    "spots": {...}, "darkCircles": {...}, "skinAge": {...},
    "overall": 0-100
  },
  "diagnostic": {
    "primaryCondition": "...",
    "severity": "Légère|Modérée|Sévère",
    "skinType": "...",
    "estimatedSkinAge": 18-90,
    "affectedAreas": ["..."],
    "observations": ["..."],
    "overview": ["..."],
    "localized": [{"zone": "...", "issue": "...", "severity": "...", "icon": "...", "notes": ["..."]}],
    "prognosis": "..."
  },
  "recommendations": {
    "immediate": ["..."],
    "routine": {
      "immediate": [{"name": "...", "frequency": "quotidien|hebdomadaire|ponctuel", "timing": "matin|soir|matin_et_soir", "catalogId": "...", "application": "...", "startDate": "..."}],
      "adaptation": [...],
      "maintenance": [...]
    },
    "restrictions": ["..."]
  }
}`

// BuildSystemPrompt returns the fixed instruction block for the vision call.
func BuildSystemPrompt() string {
	var b strings.Builder
	b.WriteString("Tu es un dermatologue virtuel expert en analyse de peau à partir de photos. ")
	b.WriteString("Analyse les photos fournies et le profil de l'utilisateur, puis établis un diagnostic structuré.\n\n")
	b.WriteString("Règles catalogue :\n")
	b.WriteString("- Recommande uniquement des produits du catalogue partenaire quand un catalogId est connu.\n")
	b.WriteString("- Si aucun produit du catalogue ne convient, décris le type de produit sans inventer d'identifiant.\n")
	b.WriteString("- Ne jamais inventer de prix ni de lien d'affiliation.\n\n")
	b.WriteString("Réponds UNIQUEMENT avec un JSON valide, sans texte autour, respectant exactement ce schéma :\n")
	b.WriteString(responseSchema)
	return b.String()
}

// BuildUserPrompt interpolates the questionnaire and the photo manifest into
// the per-request context block. Absent optional answers render as an
// explicit "Aucune"/"Aucun" so the model can tell "not provided" from
// "asked and empty". Images travel as separate content parts, never inline.
func BuildUserPrompt(profile Profile, photos []PhotoRef) string {
	var b strings.Builder
	b.WriteString("Profil utilisateur :\n")
	fmt.Fprintf(&b, "- Âge déclaré : %s\n", orPlaceholder(nonZero(profile.Age), "Non renseigné"))
	fmt.Fprintf(&b, "- Genre : %s\n", orPlaceholder(profile.Gender, "Non renseigné"))
	fmt.Fprintf(&b, "- Type de peau : %s\n", orPlaceholder(profile.SkinType, "Non renseigné"))
	fmt.Fprintf(&b, "- Préoccupation principale : %s\n", orPlaceholder(profile.MainConcern, "Aucune"))
	fmt.Fprintf(&b, "- Zones concernées : %s\n", joinOrPlaceholder(profile.ConcernedZones, "Aucune"))
	fmt.Fprintf(&b, "- Routine actuelle : %s\n", joinOrPlaceholder(profile.CurrentRoutine, "Aucune"))
	fmt.Fprintf(&b, "- Allergies connues : %s\n", joinOrPlaceholder(profile.Allergies, "Aucune"))
	fmt.Fprintf(&b, "- Budget : %s\n", orPlaceholder(profile.Budget, "Aucun"))

	b.WriteString("\nPhotos jointes :\n")
	if len(photos) == 0 {
		b.WriteString("- Aucune\n")
	}
	for i, photo := range photos {
		fmt.Fprintf(&b, "- Photo %d : %s\n", i+1, photoRoleLabel(photo.Role))
	}

	b.WriteString("\nÉtablis le diagnostic complet au format JSON demandé.")
	return b.String()
}

func photoRoleLabel(role PhotoRole) string {
	switch role {
	case PhotoFace:
		return "visage de face"
	case PhotoProfileLeft:
		return "profil gauche"
	case PhotoProfileRight:
		return "profil droit"
	case PhotoZone:
		return "gros plan sur une zone"
	default:
		return string(role)
	}
}

func orPlaceholder(value, placeholder string) string {
	if strings.TrimSpace(value) == "" {
		return placeholder
	}
	return value
}

func joinOrPlaceholder(values []string, placeholder string) string {
	clean := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			clean = append(clean, trimmed)
		}
	}
	if len(clean) == 0 {
		return placeholder
	}
	return strings.Join(clean, ", ")
}

func nonZero(v int) string {
	if v <= 0 {
		return ""
	}
	return strconv.Itoa(v)
}

var (
	encoderOnce sync.Once
	encoder     *tiktoken.Tiktoken
)

// EstimateUsage counts prompt tokens locally with tiktoken so the response
// carries usage data even when the API omits it. Falls back to a rough
// word-based estimate if the encoding cannot be loaded.
func EstimateUsage(systemPrompt, userPrompt string) metrics.TokenUsage {
	text := systemPrompt + "\n" + userPrompt
	encoderOnce.Do(func() {
		enc, err := tiktoken.GetEncoding(tiktoken.MODEL_CL100K_BASE)
		if err == nil {
			encoder = enc
		}
	})
	var tokens int
	if encoder != nil {
		tokens = len(encoder.Encode(text, nil, nil))
	} else {
		tokens = len(strings.Fields(text)) * 4 / 3
	}
	return metrics.TokenUsage{PromptTokens: tokens, TotalTokens: tokens}
}
