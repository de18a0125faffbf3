package generator

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// NewSynonymLookup picks the lexical alternatives source from the
// environment: SYNONYM_SOURCE=claude queries the Anthropic API, otherwise
// the WordNet database under WORDNET_DIR is used. With neither configured
// the generator still works — distractors then come from document nouns
// only.
func NewSynonymLookup() SynonymLookup {
	if os.Getenv("SYNONYM_SOURCE") == "claude" {
		model := os.Getenv("ANTHROPIC_MODEL")
		if model == "" {
			model = "claude-sonnet-4-5-20250929"
		}
		log.Println("Synonym lookup using Anthropic API:", model)
		return NewClaudeLookup(model)
	}

	if dir := os.Getenv("WORDNET_DIR"); dir != "" {
		l, err := NewWordNetLookup(dir)
		if err != nil {
			log.Printf("WARN: WordNet unavailable (%v) — continuing without synonyms", err)
			return NoSynonyms{}
		}
		log.Println("Synonym lookup using WordNet database:", dir)
		return l
	}

	log.Println("No synonym source configured — distractors from document nouns only")
	return NoSynonyms{}
}

// NoSynonyms is the empty lexical source.
type NoSynonyms struct{}

func (NoSynonyms) Alternatives(string) []string { return nil }

// ── ClaudeLookup — Anthropic-backed thesaurus ────────────

// ClaudeLookup answers synonym queries with a small model call. Results
// are memoized per word; a generation run asks about the same subjects
// repeatedly.
type ClaudeLookup struct {
	client *anthropic.Client
	model  string

	mu    sync.Mutex
	cache map[string][]string
}

func NewClaudeLookup(model string) *ClaudeLookup {
	client := anthropic.NewClient(
		option.WithAPIKey(os.Getenv("ANTHROPIC_API_KEY")),
	)
	return &ClaudeLookup{
		client: &client,
		model:  model,
		cache:  make(map[string][]string),
	}
}

const synonymSystemPrompt = `You are a thesaurus. Given a single word, respond with a JSON array of up to 8 near-synonyms (single words or short phrases). Do not include the input word. Respond with JSON only.`

// Alternatives returns near-synonyms for word, or nil when the call or
// response parsing fails — lookup failures degrade to "no alternatives".
func (c *ClaudeLookup) Alternatives(word string) []string {
	c.mu.Lock()
	if cached, ok := c.cache[word]; ok {
		c.mu.Unlock()
		return cached
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: 256,
		System: []anthropic.TextBlockParam{
			{Text: synonymSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(word)),
		},
	}

	message, err := c.callWithRetry(ctx, params)
	if err != nil {
		log.Printf("WARN: synonym lookup for %q failed: %v", word, err)
		return nil
	}

	var responseText string
	for _, block := range message.Content {
		if block.Type == "text" {
			responseText = block.Text
			break
		}
	}

	alts := parseSynonymList(responseText)
	if alts == nil {
		log.Printf("WARN: unparseable synonym response for %q", word)
		return nil
	}

	c.mu.Lock()
	c.cache[word] = alts
	c.mu.Unlock()
	return alts
}

func (c *ClaudeLookup) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (*anthropic.Message, error) {
	var lastErr error
	for attempt := 0; attempt < 2; attempt++ {
		if attempt > 0 {
			sleepDuration := time.Duration(1<<uint(attempt)) * time.Second
			log.Printf("Retrying Anthropic API call in %v (attempt %d)", sleepDuration, attempt+1)
			time.Sleep(sleepDuration)
		}

		message, err := c.client.Messages.New(ctx, params)
		if err == nil {
			return message, nil
		}
		lastErr = err
		log.Printf("Anthropic API attempt %d failed: %v", attempt+1, err)
	}
	return nil, lastErr
}

// parseSynonymList extracts a string array from a model response,
// tolerating markdown code fences. Underscores in multi-word lemmas
// become spaces. Returns nil when the payload is not a JSON array.
func parseSynonymList(content string) []string {
	var words []string
	if err := json.Unmarshal([]byte(stripCodeFences(content)), &words); err != nil {
		return nil
	}
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.ReplaceAll(strings.TrimSpace(w), "_", " ")
		if w != "" {
			out = append(out, w)
		}
	}
	return out
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	return s
}
