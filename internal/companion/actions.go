package companion

import "github.com/mapleai/maple/pkg/types"

// actionEffect is the state delta one interaction applies. Mood, when set,
// replaces the companion's mood outright.
type actionEffect struct {
	Energy    int
	BondLevel int
	Mood      types.Mood
	XP        int
}

// actionEffects is the closed set of supported interactions. Anything not in
// this table is rejected with ErrInvalidAction before any state changes.
var actionEffects = map[types.Action]actionEffect{
	types.ActionPlay:      {Energy: -10, BondLevel: 3, Mood: types.MoodExcited, XP: 10},
	types.ActionFeed:      {Energy: 20, BondLevel: 2, Mood: types.MoodHappy, XP: 5},
	types.ActionChat:      {BondLevel: 2, Mood: types.MoodThoughtful, XP: 5},
	types.ActionRest:      {Energy: 30, Mood: types.MoodSleepy, XP: 2},
	types.ActionLearn:     {Energy: -5, BondLevel: 2, Mood: types.MoodCurious, XP: 15},
	types.ActionExercise:  {Energy: -15, BondLevel: 2, Mood: types.MoodEnergetic, XP: 12},
	types.ActionCreative:  {Energy: -5, BondLevel: 3, Mood: types.MoodPlayful, XP: 12},
	types.ActionExplore:   {Energy: -10, BondLevel: 3, Mood: types.MoodCurious, XP: 12},
	types.ActionMeditate:  {Energy: 15, BondLevel: 1, Mood: types.MoodThoughtful, XP: 8},
	types.ActionCelebrate: {Energy: -5, BondLevel: 4, Mood: types.MoodEcstatic, XP: 10},
	types.ActionComfort:   {BondLevel: 4, Mood: types.MoodContent, XP: 8},
}
