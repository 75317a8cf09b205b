// Package profile owns the per-user profile record: explicit upserts, the
// read-modify-write merge of derived suggestions into data, and the free-form
// history summary.
package profile

import (
	"context"
	"strings"

	"github.com/samber/lo"

	"emocare/backend/internal/apperr"
	"emocare/backend/internal/model"
	"emocare/backend/internal/suggestion"
)

// Store persists profiles. LoadProfile returns (nil, nil) when the user has
// no profile yet.
type Store interface {
	LoadProfile(ctx context.Context, userID string) (*model.UserProfile, error)
	UpsertProfile(ctx context.Context, userID string, fields model.ProfileFields, data map[string]any) (model.UserProfile, error)
	UpsertProfileData(ctx context.Context, userID string, data map[string]any) (model.UserProfile, error)
	InsertInitialProfile(ctx context.Context, userID string, fields model.ProfileFields, data map[string]any) error
	UpsertHistorySummary(ctx context.Context, userID, summary string) (model.UserHistory, error)
}

// Deriver produces the current suggestion set for a user.
type Deriver interface {
	Derive(ctx context.Context, userID string) (suggestion.Set, suggestion.Metrics, error)
}

// Input is an explicit profile write. Nil fields are stored as NULL.
type Input struct {
	model.ProfileFields
	Data map[string]any `json:"data"`
}

type Service struct {
	store   Store
	deriver Deriver
}

func NewService(store Store, deriver Deriver) *Service {
	return &Service{store: store, deriver: deriver}
}

func (s *Service) Get(ctx context.Context, userID string) (*model.UserProfile, error) {
	profile, err := s.store.LoadProfile(ctx, userID)
	if err != nil {
		return nil, apperr.Storage("Failed to load profile", err)
	}
	return profile, nil
}

const maxAge = 150

// Validate rejects field values the profile table cannot hold.
func (in Input) Validate() error {
	if in.Age != nil && (*in.Age < 0 || *in.Age > maxAge) {
		return apperr.Validation("age must be between 0 and 150")
	}
	return nil
}

// Upsert writes every structured field and data; nulls overwrite.
func (s *Service) Upsert(ctx context.Context, userID string, in Input) (model.UserProfile, error) {
	if err := in.Validate(); err != nil {
		return model.UserProfile{}, err
	}
	data := in.Data
	if data == nil {
		data = map[string]any{}
	}
	profile, err := s.store.UpsertProfile(ctx, userID, in.ProfileFields, data)
	if err != nil {
		return model.UserProfile{}, apperr.Storage("Failed to save profile", err)
	}
	return profile, nil
}

// Create inserts the registration-time profile and leaves an existing one untouched.
func (s *Service) Create(ctx context.Context, userID string, in Input) error {
	if err := in.Validate(); err != nil {
		return err
	}
	if err := s.store.InsertInitialProfile(ctx, userID, in.ProfileFields, in.Data); err != nil {
		return apperr.Storage("Failed to create profile", err)
	}
	return nil
}

// Suggest derives suggestions without writing anything.
func (s *Service) Suggest(ctx context.Context, userID string) (suggestion.Set, suggestion.Metrics, error) {
	set, metrics, err := s.deriver.Derive(ctx, userID)
	if err != nil {
		return suggestion.Set{}, suggestion.Metrics{}, apperr.Storage("Failed to compute suggestions", err)
	}
	return set, metrics, nil
}

// ApplySuggestions derives the current set and merges it into the profile's
// data. Concurrent applies for one user are last-write-wins.
func (s *Service) ApplySuggestions(ctx context.Context, userID string) (model.UserProfile, suggestion.Set, error) {
	set, _, err := s.Suggest(ctx, userID)
	if err != nil {
		return model.UserProfile{}, suggestion.Set{}, err
	}
	profile, err := s.MergeSuggestions(ctx, userID, set)
	if err != nil {
		return model.UserProfile{}, suggestion.Set{}, err
	}
	return profile, set, nil
}

func (s *Service) MergeSuggestions(ctx context.Context, userID string, set suggestion.Set) (model.UserProfile, error) {
	current, err := s.store.LoadProfile(ctx, userID)
	if err != nil {
		return model.UserProfile{}, apperr.Storage("Failed to load profile", err)
	}
	var existing map[string]any
	if current != nil {
		existing = current.Data
	}
	profile, err := s.store.UpsertProfileData(ctx, userID, MergeData(existing, set.AsData()))
	if err != nil {
		return model.UserProfile{}, apperr.Storage("Failed to save profile", err)
	}
	return profile, nil
}

// MergeData is a shallow merge; keys in overlay win. Neither input is modified.
func MergeData(base, overlay map[string]any) map[string]any {
	return lo.Assign(map[string]any{}, base, overlay)
}

func (s *Service) SaveHistorySummary(ctx context.Context, userID, summary string) (model.UserHistory, error) {
	text := strings.TrimSpace(summary)
	if text == "" {
		return model.UserHistory{}, apperr.Validation("text is required")
	}
	history, err := s.store.UpsertHistorySummary(ctx, userID, text)
	if err != nil {
		return model.UserHistory{}, apperr.Storage("Failed to save history", err)
	}
	return history, nil
}
