package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mapleai/maple/internal/storage"
	"github.com/mapleai/maple/pkg/types"
)

// GetCompanionState retrieves the companion state for a user.
func (s *Store) GetCompanionState(ctx context.Context, userID string) (*types.CompanionState, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, mood, energy, bond_level, trust_level, intimacy_level,
		       last_interaction, total_interactions, personality,
		       experience_points, skills, created_at, updated_at
		FROM companion_states WHERE user_id = ?`, userID)

	var (
		state           types.CompanionState
		personalityJSON string
		skillsJSON      string
	)
	err := row.Scan(&state.UserID, &state.Mood, &state.Energy, &state.BondLevel,
		&state.TrustLevel, &state.IntimacyLevel, &state.LastInteraction,
		&state.TotalInteractions, &personalityJSON, &state.ExperiencePoints,
		&skillsJSON, &state.CreatedAt, &state.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning companion state: %w", err)
	}

	if err := json.Unmarshal([]byte(personalityJSON), &state.Personality); err != nil {
		return nil, fmt.Errorf("decoding personality: %w", err)
	}
	if err := json.Unmarshal([]byte(skillsJSON), &state.Skills); err != nil {
		return nil, fmt.Errorf("decoding skills: %w", err)
	}

	return &state, nil
}

// SaveCompanionState upserts the companion state keyed by user ID.
func (s *Store) SaveCompanionState(ctx context.Context, state *types.CompanionState) error {
	if state == nil || state.UserID == "" {
		return fmt.Errorf("%w: user ID is required", storage.ErrInvalidInput)
	}

	personalityJSON, err := json.Marshal(state.Personality)
	if err != nil {
		return fmt.Errorf("encoding personality: %w", err)
	}
	skills := state.Skills
	if skills == nil {
		skills = map[string]int{}
	}
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("encoding skills: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO companion_states (
			user_id, mood, energy, bond_level, trust_level, intimacy_level,
			last_interaction, total_interactions, personality,
			experience_points, skills, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			mood = excluded.mood,
			energy = excluded.energy,
			bond_level = excluded.bond_level,
			trust_level = excluded.trust_level,
			intimacy_level = excluded.intimacy_level,
			last_interaction = excluded.last_interaction,
			total_interactions = excluded.total_interactions,
			personality = excluded.personality,
			experience_points = excluded.experience_points,
			skills = excluded.skills,
			updated_at = excluded.updated_at`,
		state.UserID, state.Mood, state.Energy, state.BondLevel,
		state.TrustLevel, state.IntimacyLevel, state.LastInteraction,
		state.TotalInteractions, string(personalityJSON),
		state.ExperiencePoints, string(skillsJSON),
		state.CreatedAt, state.UpdatedAt)
	if err != nil {
		return fmt.Errorf("saving companion state: %w", err)
	}
	return nil
}
