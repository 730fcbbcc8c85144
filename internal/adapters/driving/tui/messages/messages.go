// Package messages defines Bubbletea message types for the TUI.
package messages

import (
	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

// AnswerReceived carries the outcome of one question.
type AnswerReceived struct {
	Question string
	Result   *domain.AskResult
	Err      error
}

// MemoryCleared is sent after the conversation has been forgotten.
type MemoryCleared struct {
	Err error
}

// DocumentsLoaded carries the uploaded documents shown in the header.
type DocumentsLoaded struct {
	Documents []domain.Document
	Err       error
}

// StatsLoaded carries the session's memory usage.
type StatsLoaded struct {
	Stats domain.MemoryStats
	Err   error
}
