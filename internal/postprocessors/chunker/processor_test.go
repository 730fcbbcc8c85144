package chunker

import (
	"context"
	"strings"
	"testing"

	"github.com/custodia-labs/pdfiq/internal/core/domain"
)

func testPage(content string) *domain.Page {
	return &domain.Page{
		Filename: "policy.pdf",
		Path:     "uploads/policy.pdf",
		Number:   2,
		Content:  content,
	}
}

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap != 25 {
			t.Errorf("expected overlap reduced to 25, got %d", p.overlap)
		}
	})

	t.Run("invalid values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1))
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	if New().Name() != "chunker" {
		t.Errorf("expected name 'chunker', got %q", New().Name())
	}
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	for _, content := range []string{"", "   \n\t "} {
		chunks, err := New().Process(context.Background(), testPage(content), nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(chunks) != 0 {
			t.Errorf("expected 0 chunks for %q, got %d", content, len(chunks))
		}
	}
}

func TestProcessor_Process_SmallContent(t *testing.T) {
	p := New(WithChunkSize(100), WithOverlap(20))

	chunks, err := p.Process(context.Background(), testPage("A short page."), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}

	c := chunks[0]
	if c.Content != "A short page." {
		t.Errorf("unexpected content %q", c.Content)
	}
	if c.ID == "" {
		t.Error("expected chunk ID to be set")
	}
	if c.Position != 0 {
		t.Errorf("expected position 0, got %d", c.Position)
	}
	if c.SourceFilename() != "policy.pdf" {
		t.Errorf("expected source filename policy.pdf, got %q", c.SourceFilename())
	}
	if c.Metadata[domain.MetaPage] != 2 {
		t.Errorf("expected page 2, got %v", c.Metadata[domain.MetaPage])
	}
}

func TestProcessor_Process_RespectsChunkSize(t *testing.T) {
	p := New(WithChunkSize(50), WithOverlap(10))
	content := strings.Repeat("word ", 100)

	chunks, err := p.Process(context.Background(), testPage(content), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i, c := range chunks {
		if n := len([]rune(c.Content)); n > 50 {
			t.Errorf("chunk %d has %d characters, limit is 50", i, n)
		}
		if c.Position != i {
			t.Errorf("chunk %d has position %d", i, c.Position)
		}
	}
}

func TestProcessor_Process_PrefersParagraphBreak(t *testing.T) {
	p := New(WithChunkSize(60), WithOverlap(0))
	first := strings.Repeat("a", 40)
	second := strings.Repeat("b", 40)

	chunks, err := p.Process(context.Background(), testPage(first+"\n\n"+second), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}
	if strings.TrimSpace(chunks[0].Content) != first {
		t.Errorf("expected first chunk to end at the paragraph break, got %q", chunks[0].Content)
	}
	if chunks[1].Content != second {
		t.Errorf("expected second chunk %q, got %q", second, chunks[1].Content)
	}
}

func TestProcessor_Process_Overlap(t *testing.T) {
	p := New(WithChunkSize(20), WithOverlap(5))
	content := strings.Repeat("x", 50)

	chunks, err := p.Process(context.Background(), testPage(content), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// windows start at 0, 15, 30 and the last one reaches the end
	if len(chunks) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(chunks))
	}
	if len(chunks[2].Content) != 20 {
		t.Errorf("expected last chunk of 20 characters, got %d", len(chunks[2].Content))
	}
}

func TestProcessor_Process_MultiByteSafe(t *testing.T) {
	p := New(WithChunkSize(10), WithOverlap(2))
	content := strings.Repeat("éü日本", 12)

	chunks, err := p.Process(context.Background(), testPage(content), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, c := range chunks {
		for _, r := range c.Content {
			if r == '�' {
				t.Fatalf("chunk %d contains a broken rune: %q", i, c.Content)
			}
		}
	}
}

func TestProcessor_Process_UniqueIDs(t *testing.T) {
	p := New(WithChunkSize(30), WithOverlap(5))

	chunks, err := p.Process(context.Background(), testPage(strings.Repeat("lorem ipsum ", 30)), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := make(map[string]bool)
	for _, c := range chunks {
		if seen[c.ID] {
			t.Errorf("duplicate chunk ID %s", c.ID)
		}
		seen[c.ID] = true
	}
}
