// Package reply runs one message exchange: persist the user's message, ask the
// responder for a structured answer, fall back when it cannot give one, persist
// the bot message and attach crisis resources when flagged.
package reply

import (
	"context"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"emocare/backend/internal/apperr"
	"emocare/backend/internal/crisis"
	"emocare/backend/internal/emotion"
	"emocare/backend/internal/model"
	"emocare/backend/internal/responder"
)

// Apology replaces the answer whenever the responder fails or returns nothing usable.
const Apology = "Lo siento, ahora mismo no puedo generar respuesta."

const (
	defaultContextLimit = 15
	defaultTimeout      = 20 * time.Second
)

// Store is the slice of storage the pipeline needs. SessionForUser must
// return an apperr NotFound error when the session is absent or owned by
// someone else. RecentMessages returns chronological order.
type Store interface {
	CreateSession(ctx context.Context, userID string) (model.ChatSession, error)
	SessionForUser(ctx context.Context, userID, sessionID string) (model.ChatSession, error)
	InsertMessage(ctx context.Context, msg model.NewMessage) (model.Message, error)
	RecentMessages(ctx context.Context, sessionID string, limit int) ([]model.Message, error)
}

type Options struct {
	Inferrer          *emotion.Inferrer
	Region            string
	Timeout           time.Duration
	ContextLimit      int
	SystemInstruction string
	Logger            *zap.Logger
}

type Pipeline struct {
	store       Store
	responder   responder.Responder
	inferrer    *emotion.Inferrer
	region      string
	timeout     time.Duration
	limit       int
	instruction string
	logger      *zap.Logger
}

// Reply is the resolved bot answer. Emotion is empty when unset.
type Reply struct {
	Text    string
	Emotion model.Emotion
	Crisis  bool
}

type Outcome struct {
	SessionID string
	User      model.Message
	Bot       model.Message
	Reply     Reply
	Help      *crisis.Directory
}

func NewPipeline(store Store, r responder.Responder, opts Options) *Pipeline {
	p := &Pipeline{
		store:       store,
		responder:   r,
		inferrer:    opts.Inferrer,
		region:      strings.TrimSpace(opts.Region),
		timeout:     opts.Timeout,
		limit:       opts.ContextLimit,
		instruction: opts.SystemInstruction,
		logger:      opts.Logger,
	}
	if p.inferrer == nil {
		p.inferrer = emotion.NewInferrer(nil)
	}
	if p.region == "" {
		p.region = crisis.DefaultRegion
	}
	if p.timeout <= 0 {
		p.timeout = defaultTimeout
	}
	if p.limit <= 0 {
		p.limit = defaultContextLimit
	}
	if p.instruction == "" {
		p.instruction = responder.SystemInstruction
	}
	if p.logger == nil {
		p.logger = zap.NewNop()
	}
	return p
}

// Send handles one user message. An empty sessionID opens a new session.
func (p *Pipeline) Send(ctx context.Context, userID, sessionID, content string) (Outcome, error) {
	text := strings.TrimSpace(content)
	if text == "" {
		return Outcome{}, apperr.Validation("Message content is required")
	}

	session, err := p.resolveSession(ctx, userID, strings.TrimSpace(sessionID))
	if err != nil {
		return Outcome{}, err
	}

	userMessage, err := p.store.InsertMessage(ctx, model.NewMessage{
		SessionID: session.ID,
		Author:    model.AuthorUser,
		Content:   text,
	})
	if err != nil {
		return Outcome{}, apperr.Storage("Failed to save message", err)
	}

	history, err := p.store.RecentMessages(ctx, session.ID, p.limit)
	if err != nil {
		return Outcome{}, apperr.Storage("Failed to load conversation", err)
	}

	reply := p.ask(ctx, session.ID, history)

	botMessage, err := p.store.InsertMessage(ctx, model.NewMessage{
		SessionID: session.ID,
		Author:    model.AuthorBot,
		Content:   reply.Text,
		Emotion:   reply.Emotion,
	})
	if err != nil {
		return Outcome{}, apperr.Storage("Failed to save reply", err)
	}

	outcome := Outcome{
		SessionID: session.ID,
		User:      userMessage,
		Bot:       botMessage,
		Reply:     reply,
	}
	if reply.Crisis {
		help := crisis.Lookup(p.region)
		outcome.Help = &help
		p.logger.Warn("crisis_flagged",
			zap.String("user_id", userID),
			zap.String("session_id", session.ID),
		)
	}
	return outcome, nil
}

func (p *Pipeline) resolveSession(ctx context.Context, userID, sessionID string) (model.ChatSession, error) {
	if sessionID == "" {
		session, err := p.store.CreateSession(ctx, userID)
		if err != nil {
			return model.ChatSession{}, apperr.Storage("Failed to create session", err)
		}
		return session, nil
	}
	session, err := p.store.SessionForUser(ctx, userID, sessionID)
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			return model.ChatSession{}, err
		}
		return model.ChatSession{}, apperr.Storage("Failed to load session", err)
	}
	return session, nil
}

// ask never fails; responder errors are logged and replaced by Apology.
func (p *Pipeline) ask(ctx context.Context, sessionID string, history []model.Message) Reply {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	started := time.Now()
	output, err := p.responder.Respond(callCtx, responder.Request{
		SystemInstruction: p.instruction,
		Conversation:      Turns(history),
	})
	if err != nil {
		p.logger.Warn("responder_failed",
			zap.String("session_id", sessionID),
			zap.Duration("elapsed", time.Since(started)),
			zap.Error(err),
		)
		return Reply{Text: Apology}
	}

	reply, ok := p.Interpret(responder.ParseOutput(output.Text))
	if !ok {
		p.logger.Warn("responder_empty_answer",
			zap.String("session_id", sessionID),
			zap.String("model", output.Model),
			zap.Bool("crisis", reply.Crisis),
		)
		return Reply{Text: Apology, Crisis: reply.Crisis}
	}
	p.logger.Debug("responder_ok",
		zap.String("session_id", sessionID),
		zap.String("model", output.Model),
		zap.Duration("elapsed", time.Since(started)),
	)
	return reply
}

// Interpret turns a parsed responder result into a Reply. Unknown emotion
// tags and raw text fall back to the heuristic inferrer; raw text never
// carries a crisis flag. ok is false when there is no answer text; the
// returned Reply still holds a structured crisis flag in that case.
func (p *Pipeline) Interpret(result responder.Result) (Reply, bool) {
	switch r := result.(type) {
	case responder.Structured:
		if r.Answer == "" {
			return Reply{Crisis: r.Crisis}, false
		}
		tag, known := model.ParseEmotion(r.Emotion)
		if !known {
			tag = p.inferrer.Infer(r.Answer)
		}
		return Reply{Text: r.Answer, Emotion: tag, Crisis: r.Crisis}, true
	case responder.Raw:
		text := strings.TrimSpace(r.Text)
		if text == "" {
			return Reply{}, false
		}
		return Reply{Text: text, Emotion: p.inferrer.Infer(text)}, true
	default:
		return Reply{}, false
	}
}

// Turns maps stored messages to responder turns, bot messages becoming
// assistant turns.
func Turns(history []model.Message) []responder.Turn {
	return lo.Map(history, func(msg model.Message, _ int) responder.Turn {
		role := responder.RoleUser
		if msg.Author == model.AuthorBot {
			role = responder.RoleAssistant
		}
		return responder.Turn{Role: role, Content: msg.Content}
	})
}
