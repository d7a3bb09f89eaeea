package types

import "time"

// Mood is the companion's current surface mood, shown to the client and fed
// into the reply prompt and the TTS voice adjustment.
type Mood string

// Companion moods.
const (
	MoodEcstatic   Mood = "ecstatic"
	MoodHappy      Mood = "happy"
	MoodContent    Mood = "content"
	MoodNeutral    Mood = "neutral"
	MoodThoughtful Mood = "thoughtful"
	MoodMelancholy Mood = "melancholy"
	MoodExcited    Mood = "excited"
	MoodSleepy     Mood = "sleepy"
	MoodPlayful    Mood = "playful"
	MoodCurious    Mood = "curious"
	MoodEnergetic  Mood = "energetic"
)

// Action is a discrete user-initiated companion interaction with fixed state
// effects (as opposed to free chat).
type Action string

// The closed set of discrete actions. Anything else is rejected.
const (
	ActionPlay      Action = "play"
	ActionFeed      Action = "feed"
	ActionChat      Action = "chat"
	ActionRest      Action = "rest"
	ActionLearn     Action = "learn"
	ActionExercise  Action = "exercise"
	ActionCreative  Action = "creative"
	ActionExplore   Action = "explore"
	ActionMeditate  Action = "meditate"
	ActionCelebrate Action = "celebrate"
	ActionComfort   Action = "comfort"
)

// ValidActions contains all recognized discrete actions.
var ValidActions = []Action{
	ActionPlay,
	ActionFeed,
	ActionChat,
	ActionRest,
	ActionLearn,
	ActionExercise,
	ActionCreative,
	ActionExplore,
	ActionMeditate,
	ActionCelebrate,
	ActionComfort,
}

// IsValidAction checks whether the given tag is in the closed action set.
func IsValidAction(a Action) bool {
	for _, valid := range ValidActions {
		if a == valid {
			return true
		}
	}
	return false
}

// Personality is the companion's trait vector: the Big Five plus five custom
// companion traits. Every value stays in [0.0, 1.0].
type Personality struct {
	Openness          float64 `json:"openness"`
	Conscientiousness float64 `json:"conscientiousness"`
	Extraversion      float64 `json:"extraversion"`
	Agreeableness     float64 `json:"agreeableness"`
	Neuroticism       float64 `json:"neuroticism"`

	Playfulness    float64 `json:"playfulness"`
	Empathy        float64 `json:"empathy"`
	Humor          float64 `json:"humor"`
	Supportiveness float64 `json:"supportiveness"`
	Adaptability   float64 `json:"adaptability"`
}

// DefaultPersonality returns the trait vector assigned to a newly created
// companion.
func DefaultPersonality() Personality {
	return Personality{
		Openness:          0.7,
		Conscientiousness: 0.8,
		Extraversion:      0.6,
		Agreeableness:     0.9,
		Neuroticism:       0.2,
		Playfulness:       0.7,
		Empathy:           0.95,
		Humor:             0.7,
		Supportiveness:    0.95,
		Adaptability:      0.8,
	}
}

// Clamp forces every trait back into [0.0, 1.0].
func (p *Personality) Clamp() {
	fields := []*float64{
		&p.Openness, &p.Conscientiousness, &p.Extraversion,
		&p.Agreeableness, &p.Neuroticism, &p.Playfulness,
		&p.Empathy, &p.Humor, &p.Supportiveness, &p.Adaptability,
	}
	for _, f := range fields {
		*f = ClampFloat(*f, 0.0, 1.0)
	}
}

// CompanionState is the full persisted state of a user's companion.
// One row per user; created with defaults on first access, deleted only when
// the owning user is deleted.
type CompanionState struct {
	UserID string `json:"user_id"`

	// Core stats. All bounded integers stay within [0, 100].
	Mood   Mood `json:"mood"`
	Energy int  `json:"energy"`

	// Relationship dynamics.
	BondLevel     int `json:"bond_level"`
	TrustLevel    int `json:"trust_level"`
	IntimacyLevel int `json:"intimacy_level"`

	// Activity tracking. LastInteraction only advances on discrete actions
	// and chat turns, never on decay-applying reads.
	LastInteraction   time.Time `json:"last_interaction"`
	TotalInteractions int       `json:"total_interactions"`

	Personality Personality `json:"personality"`

	// Growth metrics.
	ExperiencePoints int            `json:"experience_points"`
	Skills           map[string]int `json:"skills,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultCompanionState returns the state assigned to a user's companion on
// first access.
func DefaultCompanionState(userID string, now time.Time) *CompanionState {
	return &CompanionState{
		UserID:          userID,
		Mood:            MoodHappy,
		Energy:          85,
		BondLevel:       50,
		TrustLevel:      50,
		IntimacyLevel:   30,
		LastInteraction: now,
		Personality:     DefaultPersonality(),
		Skills:          map[string]int{},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// Clamp forces every bounded attribute back into its declared range.
// Called after every mutation so no transition can push a value out of range.
func (s *CompanionState) Clamp() {
	s.Energy = ClampInt(s.Energy, 0, 100)
	s.BondLevel = ClampInt(s.BondLevel, 0, 100)
	s.TrustLevel = ClampInt(s.TrustLevel, 0, 100)
	s.IntimacyLevel = ClampInt(s.IntimacyLevel, 0, 100)
	s.Personality.Clamp()
}

// ClampInt bounds v to [min, max].
func ClampInt(v, min, max int) int {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// ClampFloat bounds v to [min, max].
func ClampFloat(v, min, max float64) float64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
