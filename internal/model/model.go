package model

import "time"

type Author string

const (
	AuthorUser Author = "user"
	AuthorBot  Author = "bot"
)

type Emotion string

const (
	EmotionHappy Emotion = "feliz"
	EmotionSad   Emotion = "triste"
)

// ParseEmotion reports whether value is one of the recognized emotion tags.
func ParseEmotion(value string) (Emotion, bool) {
	switch Emotion(value) {
	case EmotionHappy, EmotionSad:
		return Emotion(value), true
	default:
		return "", false
	}
}

type User struct {
	ID           string    `json:"userId"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

type ChatSession struct {
	ID        string     `json:"sessionId"`
	UserID    string     `json:"userId"`
	StartDate time.Time  `json:"startDate"`
	EndDate   *time.Time `json:"endDate"`
}

type Message struct {
	ID          string    `json:"messageId"`
	SessionID   string    `json:"sessionId"`
	Author      Author    `json:"author"`
	Content     string    `json:"content"`
	EmotionType *Emotion  `json:"emotionType"`
	CreatedAt   time.Time `json:"createdAt"`
}

type NewMessage struct {
	SessionID string
	Author    Author
	Content   string
	Emotion   Emotion
}

type ProfileFields struct {
	Age        *int    `json:"age"`
	Occupation *string `json:"occupation"`
	SleepNotes *string `json:"sleepNotes"`
	Stressors  *string `json:"stressors"`
	Goals      *string `json:"goals"`
	Boundaries *string `json:"boundaries"`
}

type UserProfile struct {
	UserID string `json:"userId"`
	ProfileFields
	Data      map[string]any `json:"data"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

type UserHistory struct {
	UserID    string    `json:"userId"`
	Summary   string    `json:"summary"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
