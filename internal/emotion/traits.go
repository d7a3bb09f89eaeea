package emotion

import "strings"

// traitScan is one personality trait with the reply words that evidence it
// and the flat bonus added on top of the keyword density.
type traitScan struct {
	name  string
	words []string
	boost float64
}

var traitScans = []traitScan{
	{
		name:  "empathy",
		words: []string{"understand", "feel", "sorry", "care", "here for you", "listen"},
		boost: 0.2,
	},
	{
		name:  "playfulness",
		words: []string{"fun", "play", "haha", "😊", "exciting", "adventure"},
		boost: 0.1,
	},
	{
		name:  "supportiveness",
		words: []string{"help", "support", "encourage", "believe", "can do", "proud"},
		boost: 0.3,
	},
}

// TraitAlignment scans reply text for evidence of each tracked personality
// trait. Each trait scores matched-words / word-set-size plus the trait's
// flat bonus, capped at 1.0; a reply with no matches still carries the
// bonus as its baseline.
func TraitAlignment(reply string) map[string]float64 {
	lower := strings.ToLower(reply)
	out := make(map[string]float64, len(traitScans))

	for _, scan := range traitScans {
		matched := 0
		for _, w := range scan.words {
			if strings.Contains(lower, w) {
				matched++
			}
		}
		score := float64(matched)/float64(len(scan.words)) + scan.boost
		if score > 1.0 {
			score = 1.0
		}
		out[scan.name] = score
	}

	return out
}
