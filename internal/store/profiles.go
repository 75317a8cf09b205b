package store

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"emocare/backend/internal/model"
)

const profileColumns = `"userId", age, occupation, "sleepNotes", stressors, goals, boundaries, data, "createdAt", "updatedAt"`

// LoadProfile returns (nil, nil) when the user has no profile.
func (s *Store) LoadProfile(ctx context.Context, userID string) (*model.UserProfile, error) {
	var profile *model.UserProfile
	err := s.withConn(ctx, "load profile", func(conn *pgxpool.Conn) error {
		loaded, err := scanProfile(conn.QueryRow(
			ctx,
			`SELECT `+profileColumns+` FROM "UserProfile" WHERE "userId" = $1`,
			userID,
		))
		if isNoRows(err) {
			return nil
		}
		if err != nil {
			return err
		}
		profile = &loaded
		return nil
	})
	if err != nil {
		return nil, err
	}
	return profile, nil
}

// UpsertProfile writes every structured field and data; nil fields become NULL.
func (s *Store) UpsertProfile(ctx context.Context, userID string, fields model.ProfileFields, data map[string]any) (model.UserProfile, error) {
	var profile model.UserProfile
	err := s.withConn(ctx, "upsert profile", func(conn *pgxpool.Conn) error {
		var err error
		profile, err = scanProfile(conn.QueryRow(
			ctx,
			`INSERT INTO "UserProfile" (
				"userId", age, occupation, "sleepNotes", stressors, goals, boundaries, data, "createdAt", "updatedAt"
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			ON CONFLICT ("userId") DO UPDATE SET
				age = EXCLUDED.age,
				occupation = EXCLUDED.occupation,
				"sleepNotes" = EXCLUDED."sleepNotes",
				stressors = EXCLUDED.stressors,
				goals = EXCLUDED.goals,
				boundaries = EXCLUDED.boundaries,
				data = EXCLUDED.data,
				"updatedAt" = NOW()
			RETURNING `+profileColumns,
			userID,
			fields.Age,
			fields.Occupation,
			fields.SleepNotes,
			fields.Stressors,
			fields.Goals,
			fields.Boundaries,
			nonNilData(data),
		))
		return err
	})
	if err != nil {
		return model.UserProfile{}, err
	}
	return profile, nil
}

// UpsertProfileData replaces data only, creating an otherwise empty profile when needed.
func (s *Store) UpsertProfileData(ctx context.Context, userID string, data map[string]any) (model.UserProfile, error) {
	var profile model.UserProfile
	err := s.withConn(ctx, "upsert profile data", func(conn *pgxpool.Conn) error {
		var err error
		profile, err = scanProfile(conn.QueryRow(
			ctx,
			`INSERT INTO "UserProfile" ("userId", data, "createdAt", "updatedAt")
			 VALUES ($1, $2, NOW(), NOW())
			 ON CONFLICT ("userId") DO UPDATE SET data = EXCLUDED.data, "updatedAt" = NOW()
			 RETURNING `+profileColumns,
			userID,
			nonNilData(data),
		))
		return err
	})
	if err != nil {
		return model.UserProfile{}, err
	}
	return profile, nil
}

// InsertInitialProfile leaves an existing profile untouched.
func (s *Store) InsertInitialProfile(ctx context.Context, userID string, fields model.ProfileFields, data map[string]any) error {
	return s.withConn(ctx, "insert profile", func(conn *pgxpool.Conn) error {
		_, err := conn.Exec(
			ctx,
			`INSERT INTO "UserProfile" (
				"userId", age, occupation, "sleepNotes", stressors, goals, boundaries, data, "createdAt", "updatedAt"
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
			ON CONFLICT ("userId") DO NOTHING`,
			userID,
			fields.Age,
			fields.Occupation,
			fields.SleepNotes,
			fields.Stressors,
			fields.Goals,
			fields.Boundaries,
			nonNilData(data),
		)
		return err
	})
}

func (s *Store) UpsertHistorySummary(ctx context.Context, userID, summary string) (model.UserHistory, error) {
	history := model.UserHistory{UserID: userID}
	err := s.withConn(ctx, "upsert history", func(conn *pgxpool.Conn) error {
		return conn.QueryRow(
			ctx,
			`INSERT INTO "UserHistory" ("userId", summary, "createdAt", "updatedAt")
			 VALUES ($1, $2, NOW(), NOW())
			 ON CONFLICT ("userId") DO UPDATE SET summary = EXCLUDED.summary, "updatedAt" = NOW()
			 RETURNING summary, "createdAt", "updatedAt"`,
			userID,
			summary,
		).Scan(&history.Summary, &history.CreatedAt, &history.UpdatedAt)
	})
	if err != nil {
		return model.UserHistory{}, err
	}
	return history, nil
}

func scanProfile(row pgx.Row) (model.UserProfile, error) {
	var profile model.UserProfile
	var age *int32
	err := row.Scan(
		&profile.UserID,
		&age,
		&profile.Occupation,
		&profile.SleepNotes,
		&profile.Stressors,
		&profile.Goals,
		&profile.Boundaries,
		&profile.Data,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return model.UserProfile{}, err
	}
	if age != nil {
		value := int(*age)
		profile.Age = &value
	}
	if profile.Data == nil {
		profile.Data = map[string]any{}
	}
	return profile, nil
}

func nonNilData(data map[string]any) map[string]any {
	if data == nil {
		return map[string]any{}
	}
	return data
}
