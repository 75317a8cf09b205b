package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"emocare/backend/internal/apperr"
	"emocare/backend/internal/model"
)

const sessionNotFound = "Session not found"

func (s *Store) CreateSession(ctx context.Context, userID string) (model.ChatSession, error) {
	session := model.ChatSession{ID: uuid.NewString(), UserID: userID}
	err := s.withConn(ctx, "create session", func(conn *pgxpool.Conn) error {
		return conn.QueryRow(
			ctx,
			`INSERT INTO "ChatSession" ("sessionId", "userId", "startDate")
			 VALUES ($1, $2, NOW())
			 RETURNING "startDate"`,
			session.ID,
			userID,
		).Scan(&session.StartDate)
	})
	if err != nil {
		return model.ChatSession{}, err
	}
	return session, nil
}

// SessionForUser loads a session owned by userID. Sessions of other users
// and malformed ids are reported as not found.
func (s *Store) SessionForUser(ctx context.Context, userID, sessionID string) (model.ChatSession, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return model.ChatSession{}, apperr.NotFound(sessionNotFound)
	}
	session := model.ChatSession{}
	err := s.withConn(ctx, "load session", func(conn *pgxpool.Conn) error {
		err := conn.QueryRow(
			ctx,
			`SELECT "sessionId", "userId", "startDate", "endDate"
			 FROM "ChatSession"
			 WHERE "sessionId" = $1 AND "userId" = $2`,
			sessionID,
			userID,
		).Scan(&session.ID, &session.UserID, &session.StartDate, &session.EndDate)
		if isNoRows(err) {
			return apperr.NotFound(sessionNotFound)
		}
		return err
	})
	if err != nil {
		return model.ChatSession{}, err
	}
	return session, nil
}

// ListSessions returns the user's sessions, newest first.
func (s *Store) ListSessions(ctx context.Context, userID string) ([]model.ChatSession, error) {
	sessions := make([]model.ChatSession, 0)
	err := s.withConn(ctx, "list sessions", func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(
			ctx,
			`SELECT "sessionId", "userId", "startDate", "endDate"
			 FROM "ChatSession"
			 WHERE "userId" = $1
			 ORDER BY "startDate" DESC`,
			userID,
		)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var session model.ChatSession
			if err := rows.Scan(&session.ID, &session.UserID, &session.StartDate, &session.EndDate); err != nil {
				return err
			}
			sessions = append(sessions, session)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

// EndSession stamps endDate once; ending an ended session keeps the first stamp.
func (s *Store) EndSession(ctx context.Context, userID, sessionID string) (model.ChatSession, error) {
	if _, err := uuid.Parse(sessionID); err != nil {
		return model.ChatSession{}, apperr.NotFound(sessionNotFound)
	}
	session := model.ChatSession{}
	err := s.withConn(ctx, "end session", func(conn *pgxpool.Conn) error {
		err := conn.QueryRow(
			ctx,
			`UPDATE "ChatSession"
			 SET "endDate" = COALESCE("endDate", NOW())
			 WHERE "sessionId" = $1 AND "userId" = $2
			 RETURNING "sessionId", "userId", "startDate", "endDate"`,
			sessionID,
			userID,
		).Scan(&session.ID, &session.UserID, &session.StartDate, &session.EndDate)
		if isNoRows(err) {
			return apperr.NotFound(sessionNotFound)
		}
		return err
	})
	if err != nil {
		return model.ChatSession{}, err
	}
	return session, nil
}

// DeleteUserSessions removes every session of the user with its messages.
func (s *Store) DeleteUserSessions(ctx context.Context, userID string) (int64, error) {
	var deleted int64
	err := s.withConn(ctx, "delete sessions", func(conn *pgxpool.Conn) error {
		tag, err := conn.Exec(ctx, `DELETE FROM "ChatSession" WHERE "userId" = $1`, userID)
		if err != nil {
			return err
		}
		deleted = tag.RowsAffected()
		return nil
	})
	return deleted, err
}

// InsertMessage stamps createdAt with clock_timestamp() so two inserts in one
// request keep their order.
func (s *Store) InsertMessage(ctx context.Context, msg model.NewMessage) (model.Message, error) {
	return s.insertMessage(ctx, msg, nil)
}

// InsertMessageAt writes a message with an explicit timestamp, for seeding.
func (s *Store) InsertMessageAt(ctx context.Context, msg model.NewMessage, at time.Time) (model.Message, error) {
	return s.insertMessage(ctx, msg, &at)
}

func (s *Store) insertMessage(ctx context.Context, msg model.NewMessage, at *time.Time) (model.Message, error) {
	var emotion any
	if msg.Emotion != "" {
		emotion = string(msg.Emotion)
	}
	var stored model.Message
	err := s.withConn(ctx, "insert message", func(conn *pgxpool.Conn) error {
		var err error
		stored, err = scanMessage(conn.QueryRow(
			ctx,
			`INSERT INTO "Message" ("messageId", "sessionId", author, content, "emotionType", "createdAt")
			 VALUES ($1, $2, $3, $4, $5, COALESCE($6, clock_timestamp()))
			 RETURNING "messageId", "sessionId", author, content, "emotionType", "createdAt"`,
			uuid.NewString(),
			msg.SessionID,
			string(msg.Author),
			msg.Content,
			emotion,
			at,
		))
		return err
	})
	if err != nil {
		return model.Message{}, err
	}
	return stored, nil
}

// RecentMessages returns the newest limit messages of a session in
// chronological order.
func (s *Store) RecentMessages(ctx context.Context, sessionID string, limit int) ([]model.Message, error) {
	if limit <= 0 {
		limit = 15
	}
	var messages []model.Message
	err := s.withConn(ctx, "load recent messages", func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(
			ctx,
			`SELECT "messageId", "sessionId", author, content, "emotionType", "createdAt"
			 FROM "Message"
			 WHERE "sessionId" = $1
			 ORDER BY "createdAt" DESC
			 LIMIT $2`,
			sessionID,
			limit,
		)
		if err != nil {
			return err
		}
		messages, err = collectMessages(rows, limit)
		return err
	})
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (s *Store) SessionMessages(ctx context.Context, sessionID string) ([]model.Message, error) {
	var messages []model.Message
	err := s.withConn(ctx, "load messages", func(conn *pgxpool.Conn) error {
		rows, err := conn.Query(
			ctx,
			`SELECT "messageId", "sessionId", author, content, "emotionType", "createdAt"
			 FROM "Message"
			 WHERE "sessionId" = $1
			 ORDER BY "createdAt" ASC`,
			sessionID,
		)
		if err != nil {
			return err
		}
		messages, err = collectMessages(rows, 0)
		return err
	})
	if err != nil {
		return nil, err
	}
	return messages, nil
}

func collectMessages(rows pgx.Rows, capacity int) ([]model.Message, error) {
	defer rows.Close()
	messages := make([]model.Message, 0, capacity)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

func scanMessage(row pgx.Row) (model.Message, error) {
	var msg model.Message
	var author string
	var emotion *string
	if err := row.Scan(&msg.ID, &msg.SessionID, &author, &msg.Content, &emotion, &msg.CreatedAt); err != nil {
		return model.Message{}, err
	}
	msg.Author = model.Author(author)
	if emotion != nil {
		if tag, ok := model.ParseEmotion(*emotion); ok {
			msg.EmotionType = &tag
		}
	}
	return msg, nil
}
