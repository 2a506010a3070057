package textrank

// Sentence is one tokenized sentence of a Document
type Sentence struct {
	Text    string   `json:"text"`
	Words   []string `json:"words"`
	Heading bool     `json:"heading"`
}

func (s Sentence) String() string {
	return s.Text
}

// Paragraph groups sentences separated from the next paragraph by a blank line
type Paragraph struct {
	Sentences []Sentence `json:"sentences"`
}

// Document is a parsed plain text
type Document struct {
	Paragraphs []Paragraph `json:"paragraphs"`
}

// Sentences returns every non-heading sentence in document order.
// Headings are kept in the paragraphs but never ranked.
func (d *Document) Sentences() []Sentence {
	var out []Sentence
	for _, p := range d.Paragraphs {
		for _, s := range p.Sentences {
			if !s.Heading {
				out = append(out, s)
			}
		}
	}
	return out
}

// Headings returns the heading lines of the document
func (d *Document) Headings() []Sentence {
	var out []Sentence
	for _, p := range d.Paragraphs {
		for _, s := range p.Sentences {
			if s.Heading {
				out = append(out, s)
			}
		}
	}
	return out
}
