package server

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"emocare/backend/internal/apperr"
	"emocare/backend/internal/auth"
	"emocare/backend/internal/model"
	"emocare/backend/internal/profile"
	"emocare/backend/internal/reply"
	"emocare/backend/internal/responder"
	"emocare/backend/internal/suggestion"
)

type memoryChats struct {
	mu       sync.Mutex
	sessions map[string]model.ChatSession
	order    []string
	messages []model.Message
	clock    time.Time
}

func newMemoryChats() *memoryChats {
	return &memoryChats{
		sessions: map[string]model.ChatSession{},
		clock:    time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC),
	}
}

func (m *memoryChats) tick() time.Time {
	m.clock = m.clock.Add(time.Minute)
	return m.clock
}

func (m *memoryChats) CreateSession(_ context.Context, userID string) (model.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session := model.ChatSession{ID: testID(), UserID: userID, StartDate: m.tick()}
	m.sessions[session.ID] = session
	m.order = append(m.order, session.ID)
	return session, nil
}

func (m *memoryChats) SessionForUser(_ context.Context, userID, sessionID string) (model.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok || session.UserID != userID {
		return model.ChatSession{}, apperr.NotFound("Session not found")
	}
	return session, nil
}

func (m *memoryChats) ListSessions(_ context.Context, userID string) ([]model.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sessions := make([]model.ChatSession, 0)
	for i := len(m.order) - 1; i >= 0; i-- {
		if session := m.sessions[m.order[i]]; session.UserID == userID {
			sessions = append(sessions, session)
		}
	}
	return sessions, nil
}

func (m *memoryChats) EndSession(_ context.Context, userID, sessionID string) (model.ChatSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[sessionID]
	if !ok || session.UserID != userID {
		return model.ChatSession{}, apperr.NotFound("Session not found")
	}
	if session.EndDate == nil {
		ended := m.tick()
		session.EndDate = &ended
		m.sessions[sessionID] = session
	}
	return session, nil
}

func (m *memoryChats) InsertMessage(_ context.Context, msg model.NewMessage) (model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := model.Message{
		ID:        fmt.Sprintf("m%d", len(m.messages)+1),
		SessionID: msg.SessionID,
		Author:    msg.Author,
		Content:   msg.Content,
		CreatedAt: m.tick(),
	}
	if msg.Emotion != "" {
		tag := msg.Emotion
		stored.EmotionType = &tag
	}
	m.messages = append(m.messages, stored)
	return stored, nil
}

func (m *memoryChats) RecentMessages(ctx context.Context, sessionID string, limit int) ([]model.Message, error) {
	all, _ := m.SessionMessages(ctx, sessionID)
	if len(all) > limit {
		all = all[len(all)-limit:]
	}
	return all, nil
}

func (m *memoryChats) SessionMessages(_ context.Context, sessionID string) ([]model.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.Message, 0)
	for _, msg := range m.messages {
		if msg.SessionID == sessionID {
			out = append(out, msg)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// UserMessageStats lets memoryChats back the suggestion engine.
func (m *memoryChats) UserMessageStats(_ context.Context, userID string) (suggestion.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	samples := make([]suggestion.Sample, 0)
	for _, msg := range m.messages {
		if msg.Author == model.AuthorUser && m.sessions[msg.SessionID].UserID == userID {
			samples = append(samples, suggestion.Sample{Content: msg.Content, CreatedAt: msg.CreatedAt})
		}
	}
	return suggestion.StatsFromMessages(samples, time.UTC), nil
}

type memoryProfiles struct {
	mu        sync.Mutex
	profiles  map[string]model.UserProfile
	histories map[string]model.UserHistory
}

func newMemoryProfiles() *memoryProfiles {
	return &memoryProfiles{profiles: map[string]model.UserProfile{}, histories: map[string]model.UserHistory{}}
}

func (m *memoryProfiles) LoadProfile(_ context.Context, userID string) (*model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, ok := m.profiles[userID]
	if !ok {
		return nil, nil
	}
	return &current, nil
}

func (m *memoryProfiles) UpsertProfile(_ context.Context, userID string, fields model.ProfileFields, data map[string]any) (model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.profiles[userID]
	current.UserID = userID
	current.ProfileFields = fields
	current.Data = data
	current.UpdatedAt = time.Now()
	m.profiles[userID] = current
	return current, nil
}

func (m *memoryProfiles) UpsertProfileData(_ context.Context, userID string, data map[string]any) (model.UserProfile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	current := m.profiles[userID]
	current.UserID = userID
	current.Data = data
	current.UpdatedAt = time.Now()
	m.profiles[userID] = current
	return current, nil
}

func (m *memoryProfiles) InsertInitialProfile(_ context.Context, userID string, fields model.ProfileFields, data map[string]any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.profiles[userID]; !ok {
		m.profiles[userID] = model.UserProfile{UserID: userID, ProfileFields: fields, Data: data}
	}
	return nil
}

func (m *memoryProfiles) UpsertHistorySummary(_ context.Context, userID, summary string) (model.UserHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	history := model.UserHistory{UserID: userID, Summary: summary, UpdatedAt: time.Now()}
	m.histories[userID] = history
	return history, nil
}

type memoryUsers struct {
	mu      sync.Mutex
	byEmail map[string]model.User
}

func (m *memoryUsers) CreateUser(_ context.Context, email, name, hash string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[email]; ok {
		return model.User{}, apperr.Validation("Email already registered")
	}
	user := model.User{ID: testID(), Email: email, Name: name, PasswordHash: hash, CreatedAt: time.Now()}
	m.byEmail[email] = user
	return user, nil
}

func (m *memoryUsers) UserByEmail(_ context.Context, email string) (model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.byEmail[email]
	if !ok {
		return model.User{}, apperr.NotFound("User not found")
	}
	return user, nil
}

type responderFunc func(ctx context.Context, req responder.Request) (responder.Output, error)

func (f responderFunc) Respond(ctx context.Context, req responder.Request) (responder.Output, error) {
	return f(ctx, req)
}

func replyingWith(text string) responder.Responder {
	return responderFunc(func(context.Context, responder.Request) (responder.Output, error) {
		return responder.Output{Text: text, Model: "test"}, nil
	})
}

type unitEnv struct {
	router   *gin.Engine
	chats    *memoryChats
	profiles *memoryProfiles
	users    *memoryUsers
}

type unitOptions struct {
	responder responder.Responder
	limit     gin.HandlerFunc
}

// newUnitRouter builds the real router over in-memory stores; no database needed.
func newUnitRouter(t *testing.T, opts unitOptions) unitEnv {
	t.Helper()
	cfg := baseTestConfig
	if opts.responder == nil {
		opts.responder = responder.MockResponder{}
	}

	chats := newMemoryChats()
	profiles := newMemoryProfiles()
	users := &memoryUsers{byEmail: map[string]model.User{}}

	profileService := profile.NewService(profiles, suggestion.NewEngine(chats))
	pipeline := reply.NewPipeline(chats, opts.responder, reply.Options{
		Region:       cfg.CrisisRegion,
		Timeout:      time.Second,
		ContextLimit: cfg.ContextMessageLimit,
	})
	router := New(cfg, Deps{
		Auth:         auth.NewService(users, profileService, testTokens(cfg), nil),
		Tokens:       testTokens(cfg),
		Chats:        chats,
		Replies:      pipeline,
		Profiles:     profileService,
		MessageLimit: opts.limit,
	}).Router()
	return unitEnv{router: router, chats: chats, profiles: profiles, users: users}
}
