package status

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/pdfiq/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/pdfiq/internal/adapters/driving/tui/styles"
)

func TestNewBar(t *testing.T) {
	bar := NewBar(styles.DefaultStyles(), keymap.DefaultKeyMap())

	require.NotNil(t, bar)
	assert.Equal(t, StateReady, bar.State())
	assert.Equal(t, "", bar.Message())
	assert.Equal(t, 80, bar.Width())
}

func TestNewBar_NilStyles(t *testing.T) {
	bar := NewBar(nil, nil)

	require.NotNil(t, bar)
	assert.NotNil(t, bar.styles)
	assert.NotNil(t, bar.keymap)
}

func TestBar_ViewReady(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)
	bar.SetDocuments(3)
	bar.SetMemory(2, 20)

	view := bar.View()

	assert.Contains(t, view, "3 documents")
	assert.Contains(t, view, "memory 2/20")
	assert.Contains(t, view, "enter: ask")
	assert.Contains(t, view, "ctrl+l: clear memory")
}

func TestBar_ViewThinking(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetState(StateThinking)

	assert.Contains(t, bar.View(), "Thinking...")
}

func TestBar_ViewError(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(120)
	bar.SetState(StateError)

	assert.Contains(t, bar.View(), "Error")

	bar.SetMessage("redis down")
	assert.Contains(t, bar.View(), "Error: redis down")
}

func TestBar_NarrowWidth(t *testing.T) {
	bar := NewBar(nil, nil)
	bar.SetWidth(10)

	assert.NotEmpty(t, bar.View())
}
