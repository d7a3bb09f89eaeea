// Package emotion provides the rule-based emotion classifier used to tag user
// and companion messages, the resonance table scoring how well a reply's
// emotion matches the user's, and the trait-alignment scan over reply text.
//
// Everything in this package is pure: fixed tables in, deterministic labels
// and scores out.
package emotion

import (
	"strings"

	"github.com/mapleai/maple/pkg/types"
)

// intensityAdverbs each add a flat bonus to the intensity score when present.
var intensityAdverbs = []string{
	"very", "extremely", "incredibly", "absolutely", "completely", "totally",
}

// intensityAdverbBonus is the flat bonus per adverb match, capped at 1.0 total.
const intensityAdverbBonus = 0.2

// Classifier maps free text to a discrete emotion label using keyword-density
// scoring. Label order is the tie-break: when two labels score equally, the
// one earlier in the order wins.
type Classifier struct {
	order    []types.Emotion
	keywords map[types.Emotion][]string
}

// DefaultKeywords returns the built-in label → keyword table.
// Persona packs may override individual entries (see the persona package).
func DefaultKeywords() map[types.Emotion][]string {
	return map[types.Emotion][]string{
		types.EmotionJoy:         {"happy", "joy", "excited", "wonderful", "amazing", "great", "love", "fantastic"},
		types.EmotionSadness:     {"sad", "depressed", "down", "upset", "hurt", "crying", "lonely", "empty"},
		types.EmotionAnger:       {"angry", "mad", "furious", "annoyed", "frustrated", "irritated", "hate"},
		types.EmotionFear:        {"scared", "afraid", "worried", "anxious", "nervous", "terrified", "panic"},
		types.EmotionSurprise:    {"surprised", "shocked", "amazed", "unexpected", "wow", "incredible"},
		types.EmotionLove:        {"love", "adore", "cherish", "affection", "care", "devoted", "romantic"},
		types.EmotionExcitement:  {"thrilled", "ecstatic", "elated", "pumped", "energized", "hyped"},
		types.EmotionAnxiety:     {"anxious", "nervous", "stressed", "overwhelmed", "tense", "uneasy"},
		types.EmotionContentment: {"content", "peaceful", "calm", "satisfied", "serene", "relaxed"},
	}
}

// defaultOrder is the fixed tie-break priority for the built-in table.
var defaultOrder = []types.Emotion{
	types.EmotionJoy,
	types.EmotionSadness,
	types.EmotionAnger,
	types.EmotionFear,
	types.EmotionSurprise,
	types.EmotionLove,
	types.EmotionExcitement,
	types.EmotionAnxiety,
	types.EmotionContentment,
}

// NewClassifier creates a classifier over the built-in keyword table.
func NewClassifier() *Classifier {
	return NewClassifierWithKeywords(DefaultKeywords(), defaultOrder)
}

// NewClassifierWithKeywords creates a classifier over a custom keyword table.
// order fixes the tie-break priority; labels missing from order are ignored.
func NewClassifierWithKeywords(keywords map[types.Emotion][]string, order []types.Emotion) *Classifier {
	return &Classifier{order: order, keywords: keywords}
}

// Classify scores each label as matched-keywords / keyword-set-size and
// returns the winning label with its score. Empty text, or text matching no
// keywords at all, returns (neutral, 0).
func (c *Classifier) Classify(text string) (types.Emotion, float64) {
	if text == "" {
		return types.EmotionNeutral, 0
	}

	lower := strings.ToLower(text)
	best := types.EmotionNeutral
	bestScore := 0.0

	for _, label := range c.order {
		kws := c.keywords[label]
		if len(kws) == 0 {
			continue
		}
		matched := 0
		for _, kw := range kws {
			if strings.Contains(lower, kw) {
				matched++
			}
		}
		score := float64(matched) / float64(len(kws))
		if score > bestScore {
			best = label
			bestScore = score
		}
	}

	return best, bestScore
}

// Intensity returns how strongly the given label is expressed in text:
// the keyword-density score plus a flat bonus per intensity adverb, capped at
// 1.0. Unknown labels score 0.
func (c *Classifier) Intensity(text string, label types.Emotion) float64 {
	kws, ok := c.keywords[label]
	if !ok || len(kws) == 0 {
		return 0
	}

	lower := strings.ToLower(text)
	matched := 0
	for _, kw := range kws {
		if strings.Contains(lower, kw) {
			matched++
		}
	}

	boost := 0.0
	for _, adverb := range intensityAdverbs {
		if strings.Contains(lower, adverb) {
			boost += intensityAdverbBonus
		}
	}

	score := float64(matched)/float64(len(kws)) + boost
	if score > 1.0 {
		return 1.0
	}
	return score
}

// Labels returns the classifier's label priority order.
func (c *Classifier) Labels() []types.Emotion {
	return c.order
}
