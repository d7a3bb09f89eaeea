package types

// Emotion is a discrete emotion label attached to user and companion messages.
type Emotion string

// Emotion labels recognized by the classifier.
const (
	EmotionJoy         Emotion = "joy"
	EmotionSadness     Emotion = "sadness"
	EmotionAnger       Emotion = "anger"
	EmotionFear        Emotion = "fear"
	EmotionSurprise    Emotion = "surprise"
	EmotionLove        Emotion = "love"
	EmotionExcitement  Emotion = "excitement"
	EmotionAnxiety     Emotion = "anxiety"
	EmotionContentment Emotion = "contentment"
	EmotionNeutral     Emotion = "neutral"
)

// ValidEmotions contains all recognized emotion labels.
var ValidEmotions = []Emotion{
	EmotionJoy,
	EmotionSadness,
	EmotionAnger,
	EmotionFear,
	EmotionSurprise,
	EmotionLove,
	EmotionExcitement,
	EmotionAnxiety,
	EmotionContentment,
	EmotionNeutral,
}

// IsValidEmotion checks whether the given label is a recognized emotion.
// Empty string is considered valid (means not classified).
func IsValidEmotion(e Emotion) bool {
	if e == "" {
		return true
	}
	for _, valid := range ValidEmotions {
		if e == valid {
			return true
		}
	}
	return false
}
