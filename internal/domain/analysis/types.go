package analysis

import (
	"time"

	"github.com/google/uuid"

	"github.com/eclatderm/visage/pkg/metrics"
)

// ScoreKey names one of the eight rated skin attributes.
type ScoreKey string

const (
	ScoreHydration   ScoreKey = "hydration"
	ScoreWrinkles    ScoreKey = "wrinkles"
	ScoreFirmness    ScoreKey = "firmness"
	ScoreRadiance    ScoreKey = "radiance"
	ScorePores       ScoreKey = "pores"
	ScoreSpots       ScoreKey = "spots"
	ScoreDarkCircles ScoreKey = "darkCircles"
	ScoreSkinAge     ScoreKey = "skinAge"
)

// ScoreKeys lists every rated attribute in display order.
var ScoreKeys = []ScoreKey{
	ScoreHydration, ScoreWrinkles, ScoreFirmness, ScoreRadiance,
	ScorePores, ScoreSpots, ScoreDarkCircles, ScoreSkinAge,
}

// ScoreDetail is a single quantified skin attribute.
type ScoreDetail struct {
	Value         float64  `json:"value"`
	Justification string   `json:"justification"`
	Confidence    float64  `json:"confidence"`
	BasedOn       []string `json:"basedOn,omitempty"`
}

// ScoreSet bundles the eight attribute scores with the recomputed overall.
type ScoreSet struct {
	Details map[ScoreKey]*ScoreDetail `json:"details"`
	Overall int                       `json:"overall"`
}

// Intensity grades how pronounced a concern is.
type Intensity string

const (
	IntensityLight    Intensity = "légère"
	IntensityModerate Intensity = "modérée"
	IntensityIntense  Intensity = "intense"
)

// ZoneProblem is one issue observed on a facial zone.
type ZoneProblem struct {
	Name      string    `json:"name"`
	Intensity Intensity `json:"intensity"`
}

// ZoneFinding groups the problems observed on a single zone.
type ZoneFinding struct {
	Zone        string        `json:"zone"`
	Problems    []ZoneProblem `json:"problems"`
	Description string        `json:"description,omitempty"`
}

// BeautyAssessment is the immutable per-analysis condition summary consumed
// by the phase timing engine.
type BeautyAssessment struct {
	MainConcern         string        `json:"mainConcern"`
	Intensity           Intensity     `json:"intensity"`
	ConcernedZones      []string      `json:"concernedZones,omitempty"`
	SkinType            string        `json:"skinType,omitempty"`
	EstimatedSkinAge    int           `json:"estimatedSkinAge,omitempty"`
	VisualFindings      []string      `json:"visualFindings,omitempty"`
	ExpectedImprovement string        `json:"expectedImprovement,omitempty"`
	ZoneSpecific        []ZoneFinding `json:"zoneSpecific,omitempty"`
}

// Phase is one of the three ordered treatment stages.
type Phase string

const (
	PhaseImmediate   Phase = "immediate"
	PhaseAdaptation  Phase = "adaptation"
	PhaseMaintenance Phase = "maintenance"
)

// Frequency describes how often a routine step is applied.
type Frequency string

const (
	FrequencyDaily       Frequency = "daily"
	FrequencyWeekly      Frequency = "weekly"
	FrequencyMonthly     Frequency = "monthly"
	FrequencyAsNeeded    Frequency = "as-needed"
	FrequencyProgressive Frequency = "progressive"
)

// TimeOfDay locates a daily step in the schedule.
type TimeOfDay string

const (
	TimeMorning TimeOfDay = "morning"
	TimeEvening TimeOfDay = "evening"
	TimeBoth    TimeOfDay = "both"
)

// StepCategory classifies a routine step by purpose.
type StepCategory string

const (
	CategoryCleansing   StepCategory = "cleansing"
	CategoryTreatment   StepCategory = "treatment"
	CategoryHydration   StepCategory = "hydration"
	CategoryProtection  StepCategory = "protection"
	CategoryExfoliation StepCategory = "exfoliation"
)

// TargetArea says whether a step covers the whole face or named zones.
type TargetArea string

const (
	TargetGlobal   TargetArea = "global"
	TargetSpecific TargetArea = "specific"
)

// ProductRef is a weak reference into the external catalog. Resolution is
// lazy and may fall back to a placeholder record.
type ProductRef struct {
	Name          string `json:"name"`
	Brand         string `json:"brand,omitempty"`
	Category      string `json:"category,omitempty"`
	AffiliateLink string `json:"affiliateLink,omitempty"`
	CatalogID     string `json:"catalogId,omitempty"`
}

// RoutineStep is one entry of the phased skincare routine. Steps are value
// objects: the scheduler groups them into views but never mutates them.
type RoutineStep struct {
	StepNumber          int          `json:"stepNumber"`
	Title               string       `json:"title"`
	TargetArea          TargetArea   `json:"targetArea"`
	Zones               []string     `json:"zones,omitempty"`
	RecommendedProducts []ProductRef `json:"recommendedProducts,omitempty"`
	ApplicationAdvice   string       `json:"applicationAdvice,omitempty"`
	TreatmentType       string       `json:"treatmentType,omitempty"`
	Priority            int          `json:"priority,omitempty"`
	Phase               Phase        `json:"phase"`
	Frequency           Frequency    `json:"frequency"`
	TimeOfDay           TimeOfDay    `json:"timeOfDay"`
	Category            StepCategory `json:"category"`
	ApplicationDuration string       `json:"applicationDuration,omitempty"`
	FrequencyDetails    string       `json:"frequencyDetails,omitempty"`
	StartAfterDays      int          `json:"startAfterDays,omitempty"`
	Restrictions        []string     `json:"restrictions,omitempty"`
	TimingDetails       string       `json:"timingDetails,omitempty"`
}

// PhaseObjective is the static educational copy attached to a phase.
type PhaseObjective struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Tooltip     string `json:"tooltip"`
}

// PhaseTiming is the derived duration estimate and copy for one phase.
// Regenerated on every request, never persisted.
type PhaseTiming struct {
	Duration        string         `json:"duration"`
	Objective       PhaseObjective `json:"objective"`
	EducationalTips []string       `json:"educationalTips"`
}

// CompleteTiming bundles the three phase estimates.
type CompleteTiming struct {
	Immediate   PhaseTiming `json:"immediate"`
	Adaptation  PhaseTiming `json:"adaptation"`
	Maintenance PhaseTiming `json:"maintenance"`
}

// Schedule is the presentation-oriented view of the routine.
type Schedule struct {
	Morning  []RoutineStep `json:"morning"`
	Evening  []RoutineStep `json:"evening"`
	Weekly   []RoutineStep `json:"weekly"`
	Monthly  []RoutineStep `json:"monthly"`
	AsNeeded []RoutineStep `json:"asNeeded"`
}

// VisualCriteria describes what the user should watch for during the
// immediate phase and how long until it shows.
type VisualCriteria struct {
	Observation   string `json:"observation"`
	EstimatedDays string `json:"estimatedDays"`
	NextStep      string `json:"nextStep"`
}

// PhotoRole identifies the angle or purpose of an uploaded photo.
type PhotoRole string

const (
	PhotoFace         PhotoRole = "face"
	PhotoProfileLeft  PhotoRole = "profil-gauche"
	PhotoProfileRight PhotoRole = "profil-droit"
	PhotoZone         PhotoRole = "zone"
)

// PhotoRef points at a stored photo blob.
type PhotoRef struct {
	Key  string    `json:"key"`
	Role PhotoRole `json:"role"`
}

// Profile is the questionnaire part of an analysis request.
type Profile struct {
	Age            int      `json:"age"`
	Gender         string   `json:"gender,omitempty"`
	SkinType       string   `json:"skinType,omitempty"`
	MainConcern    string   `json:"mainConcern"`
	ConcernedZones []string `json:"concernedZones,omitempty"`
	CurrentRoutine []string `json:"currentRoutine,omitempty"`
	Allergies      []string `json:"allergies,omitempty"`
	Budget         string   `json:"budget,omitempty"`
}

// Request is the payload accepted by the analysis service.
type Request struct {
	Profile Profile    `json:"profile"`
	Photos  []PhotoRef `json:"photos"`
}

// Diagnostic is the qualitative part of the parsed inference response.
type Diagnostic struct {
	PrimaryCondition string             `json:"primaryCondition"`
	Severity         string             `json:"severity"`
	SkinType         string             `json:"skinType,omitempty"`
	EstimatedSkinAge int                `json:"estimatedSkinAge,omitempty"`
	AffectedAreas    []string           `json:"affectedAreas,omitempty"`
	Observations     []string           `json:"observations,omitempty"`
	Overview         []string           `json:"overview,omitempty"`
	Localized        []LocalizedFinding `json:"localized,omitempty"`
	Prognosis        string             `json:"prognosis,omitempty"`
}

// LocalizedFinding is a per-zone diagnostic entry.
type LocalizedFinding struct {
	Zone     string   `json:"zone"`
	Issue    string   `json:"issue"`
	Severity string   `json:"severity"`
	Icon     string   `json:"icon,omitempty"`
	Notes    []string `json:"notes,omitempty"`
}

// Response is the fully derived analysis returned to API consumers.
type Response struct {
	ID             uuid.UUID          `json:"id"`
	CreatedAt      time.Time          `json:"createdAt"`
	Scores         ScoreSet           `json:"scores"`
	Diagnostic     Diagnostic         `json:"diagnostic"`
	Assessment     BeautyAssessment   `json:"assessment"`
	Routine        []RoutineStep      `json:"routine"`
	Timing         CompleteTiming     `json:"timing"`
	Schedule       Schedule           `json:"schedule"`
	Immediate      []string           `json:"immediateActions,omitempty"`
	Restrictions   []string           `json:"restrictions,omitempty"`
	Usage          metrics.TokenUsage `json:"usage,omitempty"`
	Degraded       bool               `json:"degraded"`
	DegradedReason string             `json:"degradedReason,omitempty"`
}
