package textrank

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Parse builds a Document from plain text.
//
// Lines are trimmed. A blank line closes the current paragraph and an
// all-uppercase line is a heading. The remaining lines of a paragraph are
// joined with single spaces before sentence tokenization, so a sentence may
// span several lines.
func Parse(text string, tok *Tokenizer) *Document {
	doc := &Document{}

	var current []paragraphLine
	for _, line := range splitLines(text) {
		line = strings.TrimSpace(line)
		switch {
		case isUpper(line):
			current = append(current, paragraphLine{text: line, heading: true})
		case line == "" && len(current) > 0:
			doc.Paragraphs = append(doc.Paragraphs, Paragraph{Sentences: toSentences(current, tok)})
			current = nil
		case line != "":
			current = append(current, paragraphLine{text: line})
		}
	}
	doc.Paragraphs = append(doc.Paragraphs, Paragraph{Sentences: toSentences(current, tok)})

	return doc
}

type paragraphLine struct {
	text    string
	heading bool
}

func toSentences(lines []paragraphLine, tok *Tokenizer) []Sentence {
	var out []Sentence
	var text strings.Builder

	flush := func() {
		joined := strings.TrimSpace(text.String())
		text.Reset()
		if joined == "" {
			return
		}
		for _, s := range tok.SplitSentences(joined) {
			out = append(out, Sentence{Text: s, Words: tok.Words(s)})
		}
	}

	for _, line := range lines {
		if line.heading {
			flush()
			out = append(out, Sentence{Text: line.text, Words: tok.Words(line.text), Heading: true})
			continue
		}
		text.WriteByte(' ')
		text.WriteString(line.text)
	}
	flush()

	return out
}

// splitLines breaks text on Unicode line boundaries: \n, \r, \r\n, \v, \f,
// \x1c-\x1e, U+0085, U+2028 and U+2029.
func splitLines(text string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(text); {
		r, size := utf8.DecodeRuneInString(text[i:])
		if !isLineBoundary(r) {
			i += size
			continue
		}
		lines = append(lines, text[start:i])
		i += size
		if r == '\r' && i < len(text) && text[i] == '\n' {
			i++
		}
		start = i
	}
	if start < len(text) {
		lines = append(lines, text[start:])
	}
	return lines
}

func isLineBoundary(r rune) bool {
	switch r {
	case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
		return true
	}
	return false
}

// isUpper reports whether s has at least one cased rune and no lower or
// title case runes.
func isUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) || unicode.IsTitle(r) {
			return false
		}
		if unicode.IsUpper(r) {
			cased = true
		}
	}
	return cased
}
