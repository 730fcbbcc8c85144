package domain

import "time"

// DefaultMaxTurns is the number of turns retained per session.
const DefaultMaxTurns = 20

// Turn is one question/answer pair. Turns are never mutated after creation.
type Turn struct {
	Question  string    `json:"question"`
	Answer    string    `json:"answer"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a cookie-identified conversation with its retained turns,
// oldest first.
type Session struct {
	ID    string
	Turns []Turn
}

// MemoryStats reports how full a session's memory is.
type MemoryStats struct {
	Count   int `json:"count"`
	MaxSize int `json:"max_size"`
}
