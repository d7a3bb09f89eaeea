// Package companion implements the companion state engine: time-based decay,
// the closed set of discrete interactions, and the persistence glue that
// keeps one state row per user.
package companion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

// ErrInvalidAction is returned when an interaction names an action outside
// the supported set. The state is left untouched.
var ErrInvalidAction = errors.New("invalid companion action")

const (
	// energyDecayPerHour is the energy lost per full hour without interaction.
	energyDecayPerHour = 1

	// lowEnergyThreshold is the energy level below which the companion is
	// forced into the sleepy mood.
	lowEnergyThreshold = 20

	// neglectHours is the absence after which mood resets to neutral.
	neglectHours = 24
)

// Engine owns companion state transitions. All mutations for a given user
// are serialized through a per-user lock.
type Engine struct {
	store  storage.CompanionStore
	locks  *userLocks
	logger *slog.Logger

	// now is swappable in tests.
	now func() time.Time
}

// NewEngine creates a state engine backed by the given store.
func NewEngine(store storage.CompanionStore, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		store:  store,
		locks:  newUserLocks(),
		logger: logger,
		now:    time.Now,
	}
}

// Decay applies time-based decay to a state in place and reports whether
// anything changed. Energy drops by one point per full hour since the last
// interaction; mood drops to sleepy when energy falls below 20, or to
// neutral after more than 24 hours of absence. LastInteraction is not
// modified; with no elapsed time the call is a no-op.
func Decay(s *types.CompanionState, now time.Time) bool {
	hoursPassed := now.Sub(s.LastInteraction).Hours()
	if hoursPassed < 0 {
		hoursPassed = 0
	}
	// Only whole hours count against energy; neglect uses the exact elapsed
	// time, so mood turns neutral anywhere past the 24-hour mark.
	wholeHours := int(hoursPassed)

	energy := types.ClampInt(s.Energy-wholeHours*energyDecayPerHour, 0, 100)
	mood := s.Mood
	if energy < lowEnergyThreshold {
		mood = types.MoodSleepy
	} else if hoursPassed > neglectHours {
		mood = types.MoodNeutral
	}

	changed := energy != s.Energy || mood != s.Mood
	s.Energy = energy
	s.Mood = mood
	if changed {
		s.UpdatedAt = now
	}
	return changed
}

// State returns the user's companion state with decay applied, creating the
// default state on first access.
func (e *Engine) State(ctx context.Context, userID string) (*types.CompanionState, error) {
	unlock := e.locks.Lock(userID)
	defer unlock()

	now := e.now().UTC()
	state, created, err := e.loadOrCreate(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	if Decay(state, now) || created {
		if err := e.store.SaveCompanionState(ctx, state); err != nil {
			return nil, fmt.Errorf("saving companion state: %w", err)
		}
	}

	return state, nil
}

// Interact applies one discrete action to the user's companion: decay first,
// then the action's fixed deltas, then clamping and persistence. Unknown
// actions fail with ErrInvalidAction before any state is touched.
func (e *Engine) Interact(ctx context.Context, userID string, action types.Action) (*types.CompanionState, error) {
	effect, ok := actionEffects[action]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	unlock := e.locks.Lock(userID)
	defer unlock()

	now := e.now().UTC()
	state, _, err := e.loadOrCreate(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	Decay(state, now)

	state.Energy += effect.Energy
	state.BondLevel += effect.BondLevel
	if effect.Mood != "" {
		state.Mood = effect.Mood
	}
	state.ExperiencePoints += effect.XP
	if state.Skills == nil {
		state.Skills = make(map[string]int)
	}
	state.Skills[string(action)]++

	state.LastInteraction = now
	state.TotalInteractions++
	state.UpdatedAt = now
	state.Clamp()

	if err := e.store.SaveCompanionState(ctx, state); err != nil {
		return nil, fmt.Errorf("saving companion state: %w", err)
	}

	e.logger.Debug("companion interaction applied",
		"user_id", userID,
		"action", string(action),
		"energy", state.Energy,
		"bond", state.BondLevel,
		"mood", string(state.Mood))

	return state, nil
}

// RecordChat bumps the interaction counters and bond after a chat exchange,
// without going through the discrete action table. Callers hold no lock;
// RecordChat takes it.
func (e *Engine) RecordChat(ctx context.Context, userID string) (*types.CompanionState, error) {
	return e.Interact(ctx, userID, types.ActionChat)
}

// loadOrCreate fetches the user's state, building the default one on first
// access. The caller holds the per-user lock.
func (e *Engine) loadOrCreate(ctx context.Context, userID string, now time.Time) (*types.CompanionState, bool, error) {
	state, err := e.store.GetCompanionState(ctx, userID)
	if err == nil {
		return state, false, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return nil, false, fmt.Errorf("loading companion state: %w", err)
	}

	state = types.DefaultCompanionState(userID, now)
	return state, true, nil
}
