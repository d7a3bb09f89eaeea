package emotion

import "github.com/mapleai/maple/pkg/types"

// resonanceNeutral is the score for any pair absent from the table.
const resonanceNeutral = 0.5

// resonanceTable maps a user emotion to the reply emotions that land well
// with it. Rows cover the emotions where the choice of reply tone matters
// most; everything else falls through to the neutral score.
var resonanceTable = map[types.Emotion]map[types.Emotion]float64{
	types.EmotionJoy: {
		types.EmotionJoy:         0.9,
		types.EmotionExcitement:  0.8,
		types.EmotionContentment: 0.7,
	},
	types.EmotionSadness: {
		types.EmotionContentment: 0.6,
		types.EmotionNeutral:     0.5,
	},
	types.EmotionAnger: {
		types.EmotionNeutral:     0.7,
		types.EmotionContentment: 0.6,
	},
	types.EmotionAnxiety: {
		types.EmotionContentment: 0.8,
		types.EmotionNeutral:     0.7,
	},
}

// Resonance scores how well a reply's emotion fits the user's emotion,
// in [0,1]. Pairs not covered by the table score exactly 0.5.
func Resonance(user, reply types.Emotion) float64 {
	row, ok := resonanceTable[user]
	if !ok {
		return resonanceNeutral
	}
	score, ok := row[reply]
	if !ok {
		return resonanceNeutral
	}
	return score
}
