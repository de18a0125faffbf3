package generator

import (
	"log"
	"math/rand"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/quizzable/backend/internal/models"
)

// TaggedToken is one token of a sentence with its part-of-speech tag.
type TaggedToken struct {
	Text string
	Tag  string
}

// Tagger segments text into sentences and tags tokens with Penn Treebank
// part-of-speech tags.
type Tagger interface {
	Sentences(text string) []string
	Tag(text string) []TaggedToken
}

// SynonymLookup returns near-synonym strings for a word. An empty result
// is normal; the generator backfills distractors from document nouns.
type SynonymLookup interface {
	Alternatives(word string) []string
}

const (
	blankMarker    = "_______"
	minSentenceLen = 15  // exclusive
	maxSentenceLen = 300 // inclusive
	nounPoolBytes  = 5000
	maxDistractors = 6
	// Attempts per requested question before the loop gives up. Scarce
	// synonyms and duplicate collisions burn attempts, so the ceiling is
	// a soft bound on work, not a promise of output.
	attemptsPerQuestion = 20
)

var nounTags = map[string]bool{"NN": true, "NNS": true, "NNP": true, "NNPS": true}

// Generator produces cloze MCQs from extracted document text. It holds no
// state between calls, so one Generator may serve concurrent requests.
type Generator struct {
	tagger   Tagger
	synonyms SynonymLookup
}

func New(tagger Tagger, synonyms SynonymLookup) *Generator {
	return &Generator{tagger: tagger, synonyms: synonyms}
}

type stemSubject struct {
	stem    string
	subject string
}

// Generate builds up to targetCount MCQs from text. It never fails:
// unusable text, scarce nouns, or exhausted attempts all degrade to a
// shorter (possibly empty) result. Selection and choice order are random,
// so repeated calls on the same text differ.
func (g *Generator) Generate(text string, targetCount int) []models.MCQ {
	if targetCount <= 0 || strings.TrimSpace(text) == "" {
		return nil
	}

	sentences := g.candidateSentences(text)
	if len(sentences) == 0 {
		return nil
	}

	textNouns := g.documentNouns(text)

	// Each run gets its own source; *rand.Rand is not safe for concurrent
	// use and one Generator is shared across requests.
	rng := rand.New(rand.NewSource(rand.Int63()))

	produced := make(map[stemSubject]bool)
	var mcqs []models.MCQ
	maxAttempts := targetCount * attemptsPerQuestion

	for attempts := 0; attempts < maxAttempts && len(mcqs) < targetCount; attempts++ {
		sentence := sentences[rng.Intn(len(sentences))]

		nouns := nounTokens(g.tag(sentence))
		if len(nouns) == 0 {
			continue
		}

		subject := nouns[rng.Intn(len(nouns))]

		// Blank only the first occurrence so the stem has a single gap.
		stem := strings.Replace(sentence, subject, blankMarker, 1)
		key := stemSubject{stem: stem, subject: subject}
		if produced[key] {
			continue
		}

		distractors := g.distractors(rng, subject, textNouns)
		if len(distractors) < 3 {
			continue
		}

		choices := append([]string{subject}, sample(rng, distractors, 3)...)
		rng.Shuffle(len(choices), func(i, j int) {
			choices[i], choices[j] = choices[j], choices[i]
		})

		if !validChoices(choices) {
			continue
		}

		mcqs = append(mcqs, models.MCQ{
			Question:   stem,
			Choices:    choices,
			Answer:     string(rune('A' + indexOf(choices, subject))),
			AnswerText: subject,
		})
		produced[key] = true
	}

	return mcqs
}

// candidateSentences filters segmented sentences down to cloze-worthy
// ones: trimmed length in (15, 300] and no digit characters. Digits mark
// table and figure artifacts and make weak blanks. The filter is
// deterministic; only selection later is random.
func (g *Generator) candidateSentences(text string) []string {
	var out []string
	for _, s := range g.segment(text) {
		s = strings.TrimSpace(s)
		if len(s) <= minSentenceLen || len(s) > maxSentenceLen {
			continue
		}
		if strings.ContainsFunc(s, unicode.IsDigit) {
			continue
		}
		out = append(out, s)
	}
	return out
}

// documentNouns collects the distinct nouns of the document for distractor
// backfill. Tagging is capped to a prefix of the text to bound cost on
// large inputs.
func (g *Generator) documentNouns(text string) []string {
	if len(text) > nounPoolBytes {
		cut := nounPoolBytes
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut]
	}
	return nounTokens(g.tag(text))
}

// distractors assembles the candidate pool for one subject: thesaurus
// alternatives first, document nouns as backfill when fewer than three
// remain, capped at six.
func (g *Generator) distractors(rng *rand.Rand, subject string, textNouns []string) []string {
	alts := g.alternatives(subject)

	if len(alts) < 3 {
		taken := make(map[string]bool, len(alts))
		for _, a := range alts {
			taken[strings.ToLower(a)] = true
		}
		pool := make([]string, 0, len(textNouns))
		for _, n := range textNouns {
			if strings.EqualFold(n, subject) || taken[strings.ToLower(n)] {
				continue
			}
			pool = append(pool, n)
		}
		rng.Shuffle(len(pool), func(i, j int) {
			pool[i], pool[j] = pool[j], pool[i]
		})
		alts = append(alts, pool...)
	}

	if len(alts) > maxDistractors {
		alts = alts[:maxDistractors]
	}
	return alts
}

// alternatives queries the lexical source and drops the subject itself,
// one-character strings, and case-insensitive duplicates.
func (g *Generator) alternatives(subject string) []string {
	raw := g.lookup(subject)
	var alts []string
	seen := make(map[string]bool, len(raw))
	for _, a := range raw {
		a = strings.TrimSpace(a)
		if len(a) <= 1 || strings.EqualFold(a, subject) {
			continue
		}
		k := strings.ToLower(a)
		if seen[k] {
			continue
		}
		seen[k] = true
		alts = append(alts, a)
	}
	return alts
}

// sample picks n distinct entries uniformly at random.
func sample(rng *rand.Rand, pool []string, n int) []string {
	out := make([]string, n)
	for i, j := range rng.Perm(len(pool))[:n] {
		out[i] = pool[j]
	}
	return out
}

// ── Collaborator boundaries ──────────────────────────────

// The tagger and lexical source are external collaborators. A panic from
// either is treated as "no usable text" / "no alternatives" rather than
// propagated, so the generator itself has no fatal path.

func (g *Generator) segment(text string) (sentences []string) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARN: sentence segmentation failed: %v", r)
			sentences = nil
		}
	}()
	return g.tagger.Sentences(text)
}

func (g *Generator) tag(text string) (tokens []TaggedToken) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARN: tagging failed: %v", r)
			tokens = nil
		}
	}()
	return g.tagger.Tag(text)
}

func (g *Generator) lookup(word string) (alts []string) {
	if g.synonyms == nil {
		return nil
	}
	defer func() {
		if r := recover(); r != nil {
			log.Printf("WARN: synonym lookup for %q failed: %v", word, r)
			alts = nil
		}
	}()
	return g.synonyms.Alternatives(word)
}

// ── Helpers ──────────────────────────────────────────────

// nounTokens extracts the distinct noun tokens from tagged text:
// singular/plural common and proper nouns, alphabetic, longer than two
// characters. Order of first appearance is preserved.
func nounTokens(tokens []TaggedToken) []string {
	seen := make(map[string]bool)
	var nouns []string
	for _, tok := range tokens {
		if !nounTags[tok.Tag] || len(tok.Text) <= 2 || !isAlpha(tok.Text) {
			continue
		}
		if seen[tok.Text] {
			continue
		}
		seen[tok.Text] = true
		nouns = append(nouns, tok.Text)
	}
	return nouns
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

// validChoices rejects trivial or colliding choice sets: every choice
// longer than one character, four case-insensitively distinct entries.
func validChoices(choices []string) bool {
	seen := make(map[string]bool, len(choices))
	for _, c := range choices {
		if len(c) <= 1 {
			return false
		}
		seen[strings.ToLower(c)] = true
	}
	return len(seen) == len(choices)
}

func indexOf(arr []string, s string) int {
	for i, v := range arr {
		if v == s {
			return i
		}
	}
	return -1
}
