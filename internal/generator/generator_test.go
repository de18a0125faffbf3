package generator

import (
	"math/rand"
	"reflect"
	"strings"
	"sync"
	"testing"
)

// stubTagger is a deterministic stand-in for the NLP collaborator: naive
// period segmentation and a fixed set of words tagged as nouns.
type stubTagger struct {
	nouns map[string]bool
}

func (s stubTagger) Sentences(text string) []string {
	var out []string
	for _, part := range strings.Split(text, ".") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part+".")
		}
	}
	return out
}

func (s stubTagger) Tag(text string) []TaggedToken {
	var toks []TaggedToken
	for _, w := range strings.Fields(text) {
		w = strings.Trim(w, ".,;:!?")
		if w == "" {
			continue
		}
		tag := "DT"
		if s.nouns[strings.ToLower(w)] {
			tag = "NN"
		}
		toks = append(toks, TaggedToken{Text: w, Tag: tag})
	}
	return toks
}

// panicTagger fails the test if the generator touches it.
type panicTagger struct{ t *testing.T }

func (p panicTagger) Sentences(string) []string {
	p.t.Fatal("tagger used despite zero target count")
	return nil
}

func (p panicTagger) Tag(string) []TaggedToken {
	p.t.Fatal("tagger used despite zero target count")
	return nil
}

type fixedSynonyms map[string][]string

func (f fixedSynonyms) Alternatives(word string) []string {
	return f[strings.ToLower(word)]
}

func TestGenerateInvariants(t *testing.T) {
	text := "The cat sat on the mat in the house. The dog ran in the park near the river. " +
		"The bird flew over the tree by the lake. The horse ate the grass in the field."
	tagger := stubTagger{nouns: map[string]bool{
		"cat": true, "mat": true, "house": true, "dog": true, "park": true,
		"river": true, "bird": true, "tree": true, "lake": true, "horse": true,
		"grass": true, "field": true,
	}}

	g := New(tagger, fixedSynonyms{})
	mcqs := g.Generate(text, 10)

	if len(mcqs) == 0 {
		t.Fatal("expected at least one MCQ from noun-rich text")
	}

	for i, m := range mcqs {
		if len(m.Choices) != 4 {
			t.Errorf("mcq %d: expected 4 choices, got %d", i, len(m.Choices))
		}
		seen := map[string]bool{}
		for _, c := range m.Choices {
			if len(c) <= 1 {
				t.Errorf("mcq %d: trivial choice %q", i, c)
			}
			seen[strings.ToLower(c)] = true
		}
		if len(seen) != len(m.Choices) {
			t.Errorf("mcq %d: choices not case-insensitively distinct: %v", i, m.Choices)
		}
		if len(m.Answer) != 1 || m.Answer[0] < 'A' || m.Answer[0] > 'D' {
			t.Errorf("mcq %d: bad answer letter %q", i, m.Answer)
		}
		ix := int(m.Answer[0] - 'A')
		if m.Choices[ix] != m.AnswerText {
			t.Errorf("mcq %d: answer %q decodes to %q, want %q", i, m.Answer, m.Choices[ix], m.AnswerText)
		}
		if !strings.Contains(m.Question, blankMarker) {
			t.Errorf("mcq %d: stem missing blank marker: %q", i, m.Question)
		}
		if strings.Count(m.Question, blankMarker) != 1 {
			t.Errorf("mcq %d: stem must have exactly one blank: %q", i, m.Question)
		}
	}
}

func TestGenerateNounPoolBackfill(t *testing.T) {
	// No synonyms anywhere; the four document nouns must carry the quiz.
	text := "The cat sat on the mat. The dog ran in the park."
	tagger := stubTagger{nouns: map[string]bool{
		"cat": true, "mat": true, "dog": true, "park": true,
	}}

	g := New(tagger, fixedSynonyms{})
	mcqs := g.Generate(text, 1)

	if len(mcqs) != 1 {
		t.Fatalf("expected 1 MCQ, got %d", len(mcqs))
	}

	m := mcqs[0]
	nouns := map[string]bool{"cat": true, "mat": true, "dog": true, "park": true}
	if !nouns[strings.ToLower(m.AnswerText)] {
		t.Errorf("subject %q is not one of the document nouns", m.AnswerText)
	}
	for _, c := range m.Choices {
		if !nouns[strings.ToLower(c)] {
			t.Errorf("choice %q is not one of the document nouns", c)
		}
	}
}

func TestGenerateZeroTarget(t *testing.T) {
	g := New(panicTagger{t: t}, fixedSynonyms{})
	if mcqs := g.Generate("The cat sat on the mat in the house.", 0); len(mcqs) != 0 {
		t.Errorf("expected no MCQs for zero target, got %d", len(mcqs))
	}
}

func TestGenerateEmptyText(t *testing.T) {
	g := New(stubTagger{}, fixedSynonyms{})
	if mcqs := g.Generate("   ", 5); len(mcqs) != 0 {
		t.Errorf("expected no MCQs for blank text, got %d", len(mcqs))
	}
}

func TestGenerateShortfallNotError(t *testing.T) {
	// Two nouns total and no synonyms: at most one distractor exists, so
	// every attempt is rejected and the result is empty, not a failure.
	text := "The cat sat quietly on the mat."
	tagger := stubTagger{nouns: map[string]bool{"cat": true, "mat": true}}

	g := New(tagger, fixedSynonyms{})
	mcqs := g.Generate(text, 5)

	if len(mcqs) != 0 {
		t.Errorf("expected shortfall to empty, got %d MCQs", len(mcqs))
	}
}

func TestDigitSentencesNeverCandidates(t *testing.T) {
	tagger := stubTagger{nouns: map[string]bool{"treaty": true, "nations": true, "peace": true, "decade": true}}
	g := New(tagger, fixedSynonyms{})

	candidates := g.candidateSentences("In 1990, the treaty was signed. The treaty gave the nations a lasting peace.")
	for _, s := range candidates {
		if strings.ContainsAny(s, "0123456789") {
			t.Errorf("digit sentence survived filtering: %q", s)
		}
	}
	if len(candidates) != 1 {
		t.Fatalf("expected 1 candidate sentence, got %d: %v", len(candidates), candidates)
	}
}

func TestCandidateFilterLength(t *testing.T) {
	long := "The " + strings.Repeat("very ", 70) + "long sentence about a cat."
	g := New(stubTagger{}, fixedSynonyms{})

	candidates := g.candidateSentences("Short one. " + long + " The cat sat on the mat by the door.")
	for _, s := range candidates {
		if len(s) <= minSentenceLen || len(s) > maxSentenceLen {
			t.Errorf("sentence with length %d survived filtering: %q", len(s), s)
		}
	}
}

func TestCandidateFilterDeterministic(t *testing.T) {
	text := "The cat sat on the mat. In 1990 things changed. The dog ran in the park."
	g := New(stubTagger{nouns: map[string]bool{"cat": true}}, fixedSynonyms{})

	first := g.candidateSentences(text)
	second := g.candidateSentences(text)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("candidate filtering is not deterministic: %v vs %v", first, second)
	}
}

func TestSynonymSelfAndTrivialFiltered(t *testing.T) {
	text := "The cat sat on the mat. The dog ran in the park."
	tagger := stubTagger{nouns: map[string]bool{"cat": true, "mat": true, "dog": true, "park": true}}
	syns := fixedSynonyms{
		"cat":  {"CAT", "Cat", "x", "feline", "kitty", "mouser"},
		"mat":  {"MAT", "rug", "carpet", "doormat"},
		"dog":  {"DOG", "hound", "canine", "pup"},
		"park": {"PARK", "green", "common", "gardens"},
	}

	g := New(tagger, syns)
	mcqs := g.Generate(text, 5)
	if len(mcqs) == 0 {
		t.Fatal("expected MCQs with synonym distractors")
	}

	for i, m := range mcqs {
		for _, c := range m.Choices {
			if len(c) <= 1 {
				t.Errorf("mcq %d: trivial synonym %q became a choice", i, c)
			}
			if strings.EqualFold(c, m.AnswerText) && c != m.AnswerText {
				t.Errorf("mcq %d: case-variant of subject %q among choices", i, m.AnswerText)
			}
		}
	}
}

func TestDistractorCap(t *testing.T) {
	g := New(stubTagger{}, fixedSynonyms{
		"cat": {"feline", "kitty", "mouser", "tabby", "tomcat", "puss", "kitten", "moggy"},
	})

	d := g.distractors(rand.New(rand.NewSource(1)), "cat", nil)
	if len(d) > maxDistractors {
		t.Errorf("distractor pool exceeds cap: %d", len(d))
	}
}

func TestGenerateConcurrentUse(t *testing.T) {
	// One Generator is shared by all HTTP handlers, so parallel Generate
	// calls must not race on shared random state (run under -race).
	text := "The cat sat on the mat in the house. The dog ran in the park near the river. " +
		"The bird flew over the tree by the lake."
	tagger := stubTagger{nouns: map[string]bool{
		"cat": true, "mat": true, "house": true, "dog": true, "park": true,
		"river": true, "bird": true, "tree": true, "lake": true,
	}}
	g := New(tagger, fixedSynonyms{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				for _, m := range g.Generate(text, 3) {
					if len(m.Choices) != 4 {
						t.Errorf("expected 4 choices, got %d", len(m.Choices))
					}
					ix := int(m.Answer[0] - 'A')
					if m.Choices[ix] != m.AnswerText {
						t.Errorf("answer letter does not decode to subject")
					}
				}
			}
		}()
	}
	wg.Wait()
}

func TestRepeatedRunsStayValid(t *testing.T) {
	text := "The cat sat on the mat in the house. The dog ran in the park near the river."
	tagger := stubTagger{nouns: map[string]bool{
		"cat": true, "mat": true, "house": true, "dog": true, "park": true, "river": true,
	}}
	g := New(tagger, fixedSynonyms{})

	for run := 0; run < 5; run++ {
		for _, m := range g.Generate(text, 3) {
			if len(m.Choices) != 4 {
				t.Fatalf("run %d: expected 4 choices, got %d", run, len(m.Choices))
			}
			ix := int(m.Answer[0] - 'A')
			if m.Choices[ix] != m.AnswerText {
				t.Fatalf("run %d: answer letter does not decode to subject", run)
			}
		}
	}
}

func TestNounTokens(t *testing.T) {
	toks := []TaggedToken{
		{Text: "The", Tag: "DT"},
		{Text: "cat", Tag: "NN"},
		{Text: "ran", Tag: "VBD"},
		{Text: "ox", Tag: "NN"},       // too short
		{Text: "B52", Tag: "NNP"},     // not alphabetic
		{Text: "Paris", Tag: "NNP"},
		{Text: "cats", Tag: "NNS"},
		{Text: "cat", Tag: "NN"},      // duplicate
	}

	got := nounTokens(toks)
	want := []string{"cat", "Paris", "cats"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("nounTokens = %v, want %v", got, want)
	}
}

func TestParseSynonymList(t *testing.T) {
	got := parseSynonymList("```json\n[\"domestic_cat\", \" feline \", \"\"]\n```")
	want := []string{"domestic cat", "feline"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("parseSynonymList = %v, want %v", got, want)
	}

	if parseSynonymList("not json at all") != nil {
		t.Error("expected nil for unparseable content")
	}
}
