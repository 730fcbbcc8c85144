// Package pdf turns loosely structured summary text into a styled PDF.
//
// Formatting happens in two steps. Format classifies each line of the
// summary into a Block; Renderer lays the blocks out with fpdf. The
// classification rules do not depend on the model following any markup
// convention, so free-form replies still come out readable.
package pdf

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// LineKind is the role of one summary line.
type LineKind int

// Line kinds, in classification precedence order after KindBreak.
const (
	KindBreak LineKind = iota
	KindHeading
	KindSubheading
	KindBullet
	KindNumbered
	KindBody
)

// String returns the kind's name.
func (k LineKind) String() string {
	switch k {
	case KindBreak:
		return "break"
	case KindHeading:
		return "heading"
	case KindSubheading:
		return "subheading"
	case KindBullet:
		return "bullet"
	case KindNumbered:
		return "numbered"
	case KindBody:
		return "body"
	default:
		return "unknown"
	}
}

// BulletGlyph replaces every source bullet marker.
const BulletGlyph = "•"

// Short title lines are headings.
const (
	maxTitleRunes = 50
	maxTitleWords = 6
)

var (
	headingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^#+\s+`),
		regexp.MustCompile(`^[A-Z][A-Z\s]{3,}:?\s*$`),
		regexp.MustCompile(`^\d+\.\s+[A-Z]`),
		regexp.MustCompile(`^[A-Z][a-z\s]+:$`),
	}
	subheadingPatterns = []*regexp.Regexp{
		regexp.MustCompile(`^#{2,}\s+`),
		regexp.MustCompile(`^\d+\.\d+\s+`),
		regexp.MustCompile(`^[A-Z][a-z]+\s+[A-Z][a-z]+:$`),
	}

	bulletPattern   = regexp.MustCompile(`^\s*[-•*○►]\s+`)
	numberedPattern = regexp.MustCompile(`^(\d+\.|\d+\)|\(\d+\))\s+`)

	headingMarker = regexp.MustCompile(`^#+\s*`)
	bulletMarker  = regexp.MustCompile(`^\s*[-•*○►]\s*`)
	numberMarker  = regexp.MustCompile(`^(\d+\.|\d+\)|\(\d+\))\s*`)
	whitespaceRun = regexp.MustCompile(`\s+`)
)

// Block is one laid-out element of a summary.
type Block struct {
	Kind LineKind

	// Text has list markers and heading decoration removed.
	Text string

	// Number is the position within a numbered run, starting at 1.
	Number int
}

// Classify returns the kind of a single line. Surrounding whitespace is
// ignored. Heading rules are checked before subheading rules, so "## x"
// is a heading.
func Classify(line string) LineKind {
	line = strings.TrimSpace(line)
	switch {
	case line == "":
		return KindBreak
	case isHeading(line):
		return KindHeading
	case matchesAny(subheadingPatterns, line):
		return KindSubheading
	case bulletPattern.MatchString(line):
		return KindBullet
	case numberedPattern.MatchString(line):
		return KindNumbered
	default:
		return KindBody
	}
}

func isHeading(line string) bool {
	if matchesAny(headingPatterns, line) {
		return true
	}
	first, _ := utf8.DecodeRuneInString(line)
	return utf8.RuneCountInString(line) < maxTitleRunes &&
		len(strings.Fields(line)) <= maxTitleWords &&
		unicode.IsUpper(first)
}

func matchesAny(patterns []*regexp.Regexp, line string) bool {
	for _, p := range patterns {
		if p.MatchString(line) {
			return true
		}
	}
	return false
}

// Format classifies every line of content. Runs of blank lines collapse
// into one KindBreak, and no break is emitted before the first block.
// Numbered items are renumbered from 1 whenever any other kind of line
// interrupts them.
func Format(content string) []Block {
	var blocks []Block
	counter := 0

	for _, raw := range strings.Split(content, "\n") {
		line := strings.TrimSpace(raw)
		kind := Classify(line)

		if kind != KindNumbered {
			counter = 0
		}

		switch kind {
		case KindBreak:
			if len(blocks) > 0 && blocks[len(blocks)-1].Kind != KindBreak {
				blocks = append(blocks, Block{Kind: KindBreak})
			}
		case KindHeading, KindSubheading:
			blocks = append(blocks, Block{Kind: kind, Text: cleanHeading(line)})
		case KindBullet:
			blocks = append(blocks, Block{Kind: kind, Text: strings.TrimSpace(bulletMarker.ReplaceAllString(line, ""))})
		case KindNumbered:
			counter++
			blocks = append(blocks, Block{
				Kind:   kind,
				Text:   strings.TrimSpace(numberMarker.ReplaceAllString(line, "")),
				Number: counter,
			})
		default:
			blocks = append(blocks, Block{Kind: KindBody, Text: line})
		}
	}

	return blocks
}

func cleanHeading(line string) string {
	line = headingMarker.ReplaceAllString(line, "")
	line = strings.TrimSuffix(line, ":")
	return strings.TrimSpace(whitespaceRun.ReplaceAllString(line, " "))
}

// Span is a run of text with uniform emphasis.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
}

// FormatInline splits text on **bold**, __bold__, *italic* and _italic_
// markers. An underscore only opens or closes emphasis at a word
// boundary, so names like report_2024_final.pdf are left alone.
// Unmatched markers are kept as literal text.
func FormatInline(text string) []Span {
	var spans []Span
	appendSpan := func(s Span) {
		if s.Text == "" {
			return
		}
		if n := len(spans); n > 0 && spans[n-1].Bold == s.Bold && spans[n-1].Italic == s.Italic {
			spans[n-1].Text += s.Text
			return
		}
		spans = append(spans, s)
	}

	var plain strings.Builder
	flush := func() {
		appendSpan(Span{Text: plain.String()})
		plain.Reset()
	}

	for i := 0; i < len(text); {
		rest := text[i:]

		if strings.HasPrefix(rest, "**") || strings.HasPrefix(rest, "__") {
			marker := rest[:2]
			if end := strings.Index(rest[2:], marker); end >= 0 {
				flush()
				for _, inner := range FormatInline(rest[2 : 2+end]) {
					inner.Bold = true
					appendSpan(inner)
				}
				i += 2 + end + 2
				continue
			}
		}

		if rest[0] == '*' {
			if end := strings.IndexByte(rest[1:], '*'); end >= 0 {
				flush()
				appendSpan(Span{Text: rest[1 : 1+end], Italic: true})
				i += 1 + end + 1
				continue
			}
		}

		if rest[0] == '_' && !wordBefore(text, i) {
			if end := closingUnderscore(text, i+1); end >= 0 {
				flush()
				appendSpan(Span{Text: text[i+1 : end], Italic: true})
				i = end + 1
				continue
			}
		}

		r, size := utf8.DecodeRuneInString(rest)
		plain.WriteRune(r)
		i += size
	}
	flush()

	return spans
}

// closingUnderscore finds the first '_' at or after from that is not
// followed by a word character.
func closingUnderscore(text string, from int) int {
	for j := from; j < len(text); j++ {
		if text[j] == '_' && !wordAt(text, j+1) {
			return j
		}
	}
	return -1
}

func wordBefore(text string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return isWordRune(r)
}

func wordAt(text string, i int) bool {
	if i >= len(text) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// PlainText joins the span texts.
func PlainText(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text)
	}
	return b.String()
}
