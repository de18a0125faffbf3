package generator

import (
	"log"

	prose "github.com/jdkato/prose/v2"
)

// ProseTagger implements Tagger on the prose NLP library: probabilistic
// sentence segmentation plus a Penn Treebank perceptron tagger.
type ProseTagger struct{}

func NewProseTagger() ProseTagger {
	return ProseTagger{}
}

func (ProseTagger) Sentences(text string) []string {
	doc, err := prose.NewDocument(text,
		prose.WithTagging(false),
		prose.WithExtraction(false))
	if err != nil {
		log.Printf("WARN: sentence segmentation error: %v", err)
		return nil
	}
	sents := doc.Sentences()
	out := make([]string, 0, len(sents))
	for _, s := range sents {
		out = append(out, s.Text)
	}
	return out
}

func (ProseTagger) Tag(text string) []TaggedToken {
	doc, err := prose.NewDocument(text,
		prose.WithSegmentation(false),
		prose.WithExtraction(false))
	if err != nil {
		log.Printf("WARN: tagging error: %v", err)
		return nil
	}
	toks := doc.Tokens()
	out := make([]TaggedToken, 0, len(toks))
	for _, t := range toks {
		out = append(out, TaggedToken{Text: t.Text, Tag: t.Tag})
	}
	return out
}
