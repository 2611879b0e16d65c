// Package gen turns a natural-language prompt into a playable sequence: it
// samples candidate filenames from the catalog, asks a local language model
// for a pattern, and validates the structured output.
package gen

import (
	"context"
	"fmt"
	"strings"

	"github.com/mrdg/animal/catalog"
	"github.com/mrdg/animal/seq"
)

// picksPerCategory is the number of candidate filenames offered to the
// model per drum category.
const picksPerCategory = 5

// requiredCategories are matched case-insensitively as substrings against
// catalog categories. Order is fixed so the prompt is deterministic.
var requiredCategories = []string{"kick", "snare", "hat"}

// Reason classifies a generation failure.
type Reason int

const (
	InsufficientSamples Reason = iota
	NoJSONFound
	ServiceUnavailable
)

// GenerationError is a failed generation attempt. Failures never retry on
// their own; the user triggers the next attempt.
type GenerationError struct {
	Reason   Reason
	Category string // set for InsufficientSamples
	Raw      string // set for NoJSONFound
	Err      error  // set for ServiceUnavailable
}

func (e *GenerationError) Error() string {
	switch e.Reason {
	case InsufficientSamples:
		return fmt.Sprintf("no samples in the library match category %q", e.Category)
	case NoJSONFound:
		return "model output contains no JSON value"
	case ServiceUnavailable:
		return fmt.Sprintf("generator service unavailable: %v", e.Err)
	}
	return "generation failed"
}

func (e *GenerationError) Unwrap() error { return e.Err }

// textGenerator is the model call; satisfied by *Client.
type textGenerator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Generator builds prompts from the catalog and turns model responses into
// sequences.
type Generator struct {
	client  textGenerator
	catalog *catalog.Catalog
}

func NewGenerator(client *Client, cat *catalog.Catalog) *Generator {
	return &Generator{client: client, catalog: cat}
}

// Generate produces a new sequence for the user's prompt. The catalog is
// checked for every required category before the model is called, so an
// unusable library fails without a wasted round-trip. A previous sequence
// held by the caller stays intact on any failure.
func (g *Generator) Generate(ctx context.Context, userPrompt string) (seq.Sequence, error) {
	picks := make(map[string][]string, len(requiredCategories))
	for _, category := range requiredCategories {
		names := g.catalog.Sample(category, picksPerCategory)
		if len(names) == 0 {
			return nil, &GenerationError{Reason: InsufficientSamples, Category: category}
		}
		picks[category] = names
	}

	raw, err := g.client.Generate(ctx, buildPrompt(userPrompt, picks))
	if err != nil {
		return nil, &GenerationError{Reason: ServiceUnavailable, Err: err}
	}

	jsonText, ok := extractJSON(raw)
	if !ok {
		return nil, &GenerationError{Reason: NoJSONFound, Raw: raw}
	}
	return seq.Parse([]byte(jsonText))
}

func buildPrompt(userPrompt string, picks map[string][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `You are a drum machine programmer. Create a %d-step drum pattern (4 bars) for this request: %q

Use only these sample files, one list per instrument:
`, seq.GridBeats, userPrompt)
	for _, category := range requiredCategories {
		fmt.Fprintf(&b, "%s: %s\n", category, strings.Join(picks[category], ", "))
	}
	fmt.Fprintf(&b, `
Respond with a single JSON value and nothing else, in this exact shape:
{"tracks":[{"name":"Kick","steps":[{"beat":0,"file":"<filename>"}]}]}

Rules:
- "beat" is an integer from 0 to %d.
- One track per instrument. Omit "file" for a rest.
- Do not invent filenames; use only the lists above.
`, seq.GridBeats-1)
	return b.String()
}

// extractJSON returns the first balanced JSON object or array inside s. The
// model is told to return bare JSON but routinely wraps it in prose.
func extractJSON(s string) (string, bool) {
	start := -1
	for i, r := range s {
		if r == '{' || r == '[' {
			start = i
			break
		}
	}
	if start < 0 {
		return "", false
	}

	var depth int
	var inString, escaped bool
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{', '[':
			depth++
		case '}', ']':
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}
	return "", false
}
