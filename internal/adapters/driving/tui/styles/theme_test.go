package styles

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTheme(t *testing.T) {
	theme := DefaultTheme()

	require.NotNil(t, theme)
	assert.Equal(t, lipgloss.Color("#800080"), theme.Primary)
	assert.NotEmpty(t, theme.Accent)
	assert.NotEmpty(t, theme.Error)
}

func TestNewStyles_NilThemeUsesDefault(t *testing.T) {
	s := NewStyles(nil)

	require.NotNil(t, s)
	assert.Equal(t, DefaultTheme(), s.Theme())
}

func TestStyles_Render(t *testing.T) {
	s := DefaultStyles()

	assert.Contains(t, s.Question.Render("What is this?"), "What is this?")
	assert.Contains(t, s.Link.Render("/download/a.pdf"), "/download/a.pdf")
	assert.True(t, s.Title.GetBold())
	assert.True(t, s.Link.GetUnderline())
}
