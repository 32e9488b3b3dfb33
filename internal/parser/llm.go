package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/hearthlabs/hearth/internal/compose"
	"github.com/hearthlabs/hearth/internal/extract"
	"github.com/hearthlabs/hearth/internal/llm"
	"github.com/hearthlabs/hearth/internal/schema"
)

const llmSystemPrompt = "You are a real estate query parser. Extract structured filters " +
	"from natural language queries about property searches. Return only valid JSON."

// LLMOpts configures an LLM-backed parser.
type LLMOpts struct {
	MaxTokens   int
	Temperature float64
	Debug       bool
	Log         *slog.Logger
}

// LLMParser delegates extraction to a hosted model and repairs or
// discards whatever comes back. Any failure along the way (transport,
// malformed JSON, schema violation) drops to a regex fallback; a turn
// never errors out of the parser.
type LLMParser struct {
	provider  Completer
	maxTokens int
	temp      float64
	debug     bool
	log       *slog.Logger
}

// Completer is the completion surface LLMParser needs from a provider.
// llm.Provider satisfies it; tests substitute fakes.
type Completer interface {
	Complete(ctx context.Context, prompt string, opts llm.CompletionOpts) (string, error)
	Name() string
}

// NewLLM wraps a completion provider in the parser contract.
func NewLLM(provider Completer, opts LLMOpts) *LLMParser {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	maxTokens := opts.MaxTokens
	if maxTokens == 0 {
		maxTokens = 1000
	}
	temp := opts.Temperature
	if temp == 0 {
		temp = 0.7
	}
	return &LLMParser{
		provider:  provider,
		maxTokens: maxTokens,
		temp:      temp,
		debug:     opts.Debug,
		log:       log,
	}
}

func (p *LLMParser) Name() string { return "llm/" + p.provider.Name() }

// Parse asks the model for filters, falling back to regex heuristics
// when the model call or its output cannot be used.
func (p *LLMParser) Parse(ctx context.Context, text string, prior schema.FilterSet) schema.FilterSet {
	prompt := buildPrompt(text, prior)
	if p.debug {
		p.log.Debug("llm parse request", "provider", p.provider.Name(), "prompt", prompt)
	}

	content, err := p.provider.Complete(ctx, prompt, llm.CompletionOpts{
		System:      llmSystemPrompt,
		Format:      "json",
		MaxTokens:   p.maxTokens,
		Temperature: p.temp,
	})
	if err != nil {
		p.log.Warn("llm completion failed, using fallback parse", "provider", p.provider.Name(), "error", err)
		return fallbackParse(text)
	}
	if p.debug {
		p.log.Debug("llm parse response", "provider", p.provider.Name(), "content", truncate(content, 200))
	}

	f, err := decodeFilters(content)
	if err != nil {
		p.log.Warn("llm response unusable, using fallback parse", "provider", p.provider.Name(), "error", err)
		return fallbackParse(text)
	}

	canonical, err := schema.Validate(f)
	if err != nil {
		p.log.Warn("llm filters failed validation, using fallback parse", "provider", p.provider.Name(), "error", err)
		return fallbackParse(text)
	}
	return canonical
}

func (p *LLMParser) Refinements(f schema.FilterSet) []schema.Refinement {
	return compose.Refinements(f)
}

// ClarifyingQuestions covers the gaps a hosted model tends to surface:
// location first, then budget and bedrooms.
func (p *LLMParser) ClarifyingQuestions(f schema.FilterSet) []string {
	var questions []string
	if f.Location == "" {
		questions = append(questions, compose.MissingLocationQuestions(extract.KnownCities)...)
	}
	if f.Price == nil {
		questions = append(questions, "What's your budget range for the property?")
	}
	if f.Beds == nil {
		questions = append(questions, "How many bedrooms do you need?")
	}
	if len(questions) > compose.MaxQuestions {
		questions = questions[:compose.MaxQuestions]
	}
	return questions
}

func buildPrompt(text string, prior schema.FilterSet) string {
	var b strings.Builder
	if !prior.Empty() {
		ctxJSON, err := json.Marshal(prior)
		if err == nil {
			fmt.Fprintf(&b, "Context: %s\n", ctxJSON)
		}
	}
	fmt.Fprintf(&b, "Parse this real estate query into structured filters: %q\n\n", text)
	b.WriteString(`Return a JSON object with these possible fields:
- location: string ("City, ST") or {city: string, state?: string}
- price: {min?: number, max?: number} in dollars
- beds: {min?: number, max?: number}
- baths: {min?: number, max?: number}
- propertyTypes: array drawn from ["single_family", "condo", "townhome", "multi_family", "land"]
- daysOnMarket: number (maximum days listed) or {max: number}
- keywords: array of strings
- sortBy: "price_asc", "price_desc", "dom_desc", or "relevance"
- page: number

Only include fields that are mentioned or clearly implied in the query. Use null for unspecified values.`)
	return b.String()
}

// rawFilters tolerates the shape drift hosted models produce: location
// as a string or an object, a scalar or object daysOnMarket, a single
// propertyType or a list, explicit nulls everywhere.
type rawFilters struct {
	Location      json.RawMessage `json:"location"`
	Price         *rawRange       `json:"price"`
	Beds          *rawRange       `json:"beds"`
	Baths         *rawRange       `json:"baths"`
	PropertyType  json.RawMessage `json:"propertyType"`
	PropertyTypes json.RawMessage `json:"propertyTypes"`
	DaysOnMarket  json.RawMessage `json:"daysOnMarket"`
	Keywords      []string        `json:"keywords"`
	SortBy        string          `json:"sortBy"`
	Page          float64         `json:"page"`
}

type rawRange struct {
	Min *float64 `json:"min"`
	Max *float64 `json:"max"`
}

func (r *rawRange) toRange() *schema.Range {
	if r == nil || (r.Min == nil && r.Max == nil) {
		return nil
	}
	out := &schema.Range{}
	if r.Min != nil {
		out.Min = schema.Int(int(math.Round(*r.Min)))
	}
	if r.Max != nil {
		out.Max = schema.Int(int(math.Round(*r.Max)))
	}
	return out
}

// decodeFilters pulls the first JSON object out of the model output and
// maps it onto a filter set.
func decodeFilters(content string) (schema.FilterSet, error) {
	objText := scanJSONObject(content)
	if objText == "" {
		return schema.FilterSet{}, fmt.Errorf("no JSON object in model output")
	}

	var raw rawFilters
	if err := json.Unmarshal([]byte(objText), &raw); err != nil {
		return schema.FilterSet{}, fmt.Errorf("decoding model output: %w", err)
	}

	f := schema.FilterSet{
		Location: decodeLocation(raw.Location),
		Price:    raw.Price.toRange(),
		Beds:     raw.Beds.toRange(),
		Baths:    raw.Baths.toRange(),
		Keywords: raw.Keywords,
		SortBy:   schema.SortOrder(raw.SortBy),
		Page:     int(raw.Page),
	}

	types := raw.PropertyTypes
	if len(types) == 0 {
		types = raw.PropertyType
	}
	f.PropertyTypes = decodePropertyTypes(types)

	dom, err := decodeDaysOnMarket(raw.DaysOnMarket)
	if err != nil {
		return schema.FilterSet{}, err
	}
	f.DaysOnMarket = dom

	return f, nil
}

// decodeLocation accepts "Denver, CO", {"city":"Denver","state":"CO"},
// or null.
func decodeLocation(raw json.RawMessage) string {
	if isNullOrEmpty(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		City  string `json:"city"`
		State string `json:"state"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.City != "" {
		if obj.State != "" {
			return obj.City + ", " + obj.State
		}
		return obj.City
	}
	return ""
}

// decodePropertyTypes accepts a single string or an array; unknown
// values are dropped rather than failing the parse.
func decodePropertyTypes(raw json.RawMessage) []schema.PropertyType {
	if isNullOrEmpty(raw) {
		return nil
	}
	var names []string
	var single string
	if err := json.Unmarshal(raw, &names); err != nil {
		if err := json.Unmarshal(raw, &single); err != nil {
			return nil
		}
		names = []string{single}
	}

	var out []schema.PropertyType
	for _, name := range names {
		name = strings.ToLower(strings.TrimSpace(name))
		// Common model synonyms outside the canonical enum.
		switch name {
		case "house", "home":
			name = "single_family"
		case "townhouse":
			name = "townhome"
		case "apartment":
			name = "condo"
		}
		if pt := schema.PropertyType(name); schema.ValidPropertyType(pt) {
			out = append(out, pt)
		}
	}
	return out
}

// decodeDaysOnMarket accepts a bare number or {max: number}.
func decodeDaysOnMarket(raw json.RawMessage) (int, error) {
	if isNullOrEmpty(raw) {
		return 0, nil
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return int(n), nil
	}
	var obj struct {
		Max *float64 `json:"max"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return 0, fmt.Errorf("decoding daysOnMarket: %w", err)
	}
	if obj.Max == nil {
		return 0, nil
	}
	return int(*obj.Max), nil
}

func isNullOrEmpty(raw json.RawMessage) bool {
	s := strings.TrimSpace(string(raw))
	return s == "" || s == "null"
}

// scanJSONObject returns the first balanced top-level JSON object in
// the input, or "". Quote and escape state are tracked so braces inside
// strings don't unbalance the scan.
func scanJSONObject(input string) string {
	depth := 0
	start := -1
	inString := false
	escaped := false

	for i := 0; i < len(input); i++ {
		ch := input[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case ch == '\\' && inString:
			escaped = true
		case ch == '"':
			inString = !inString
		case inString:
		case ch == '{':
			if depth == 0 {
				start = i
			}
			depth++
		case ch == '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					return input[start : i+1]
				}
			}
		}
	}
	return ""
}

var (
	fallbackLocationRe = regexp.MustCompile(`(?i)\b(?:in|near|around)\s+([a-z][a-z\s]*?)(?:\s+(?:with|for|under|over)\b|$)`)
	fallbackPriceRe    = regexp.MustCompile(`(?i)\$?(\d{1,3}(?:,\d{3})*)\s*(?:to|and|-)\s*\$?(\d{1,3}(?:,\d{3})*)`)
)

// fallbackParse is the degraded path when the model cannot be used:
// a location phrase and an explicit price range, nothing more.
func fallbackParse(text string) schema.FilterSet {
	var f schema.FilterSet

	if m := fallbackLocationRe.FindStringSubmatch(text); m != nil {
		f.Location = strings.TrimSpace(m[1])
	}
	if m := fallbackPriceRe.FindStringSubmatch(text); m != nil {
		min, err1 := strconv.Atoi(strings.ReplaceAll(m[1], ",", ""))
		max, err2 := strconv.Atoi(strings.ReplaceAll(m[2], ",", ""))
		if err1 == nil && err2 == nil {
			f.Price = &schema.Range{Min: schema.Int(min), Max: schema.Int(max)}
		}
	}
	return f
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
