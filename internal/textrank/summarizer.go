package textrank

import (
	"cmp"
	"slices"
)

// Summarizer picks the most central sentences of a text
type Summarizer struct {
	tokenizer *Tokenizer
}

// NewSummarizer creates a summarizer for the given language
func NewSummarizer(lang string) (*Summarizer, error) {
	tok, err := NewTokenizer(lang)
	if err != nil {
		return nil, err
	}
	return &Summarizer{tokenizer: tok}, nil
}

// Parse parses text with the summarizer's tokenizer
func (s *Summarizer) Parse(text string) *Document {
	return Parse(text, s.tokenizer)
}

// Summarize parses text and returns its best count sentences
func (s *Summarizer) Summarize(text string, count int) []Sentence {
	return BestSentences(s.Parse(text), count)
}

type ratedSentence struct {
	sentence Sentence
	order    int
	rating   float64
}

// BestSentences returns the count highest rated sentences of doc in document
// order. Equal ratings keep document order.
func BestSentences(doc *Document, count int) []Sentence {
	sentences := doc.Sentences()
	if len(sentences) == 0 || count <= 0 {
		return nil
	}

	ratings := RateSentences(sentences)
	rated := make([]ratedSentence, len(sentences))
	for i, s := range sentences {
		rated[i] = ratedSentence{sentence: s, order: i, rating: ratings[i]}
	}

	slices.SortStableFunc(rated, func(a, b ratedSentence) int {
		return cmp.Compare(b.rating, a.rating)
	})
	if len(rated) > count {
		rated = rated[:count]
	}
	slices.SortFunc(rated, func(a, b ratedSentence) int {
		return cmp.Compare(a.order, b.order)
	})

	best := make([]Sentence, len(rated))
	for i, r := range rated {
		best[i] = r.sentence
	}
	return best
}
