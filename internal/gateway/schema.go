package gateway

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sandeepkv93/questd/internal/model"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"google.golang.org/genai"
)

const (
	MinSteps = 3
	MaxSteps = 7
	// MaxXP and MaxStepMinutes bound the integers accepted from the service.
	MaxXP          = 100000
	MaxStepMinutes = 30 * 24 * 60
)

// questJSONSchema mirrors questResponseSchema; the service is asked for the
// shape and the reply is checked against it again before use.
var questJSONSchema = fmt.Sprintf(`{
  "type": "object",
  "required": ["title", "category", "description", "difficulty", "xp", "steps"],
  "properties": {
    "title": {"type": "string", "minLength": 1},
    "category": {"type": "string"},
    "description": {"type": "string"},
    "difficulty": {"enum": ["Easy", "Medium", "Hard"]},
    "xp": {"type": "integer", "minimum": 0, "maximum": %d},
    "steps": {
      "type": "array",
      "minItems": %d,
      "maxItems": %d,
      "items": {
        "type": "object",
        "required": ["title", "description", "recommendation", "scheduledAt", "durationMinutes"],
        "properties": {
          "title": {"type": "string", "minLength": 1},
          "description": {"type": "string"},
          "recommendation": {"type": "string"},
          "scheduledAt": {"type": "string", "format": "date-time"},
          "durationMinutes": {"type": "integer", "minimum": 0, "maximum": %d}
        }
      }
    }
  }
}`, MaxXP, MinSteps, MaxSteps, MaxStepMinutes)

const recommendationsJSONSchema = `{
  "type": "array",
  "items": {"type": "string"}
}`

func questResponseSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"title":       str(""),
			"category":    str(""),
			"description": str(""),
			"difficulty": {
				Type: genai.TypeString,
				Enum: []string{string(model.DifficultyEasy), string(model.DifficultyMedium), string(model.DifficultyHard)},
			},
			"xp": {Type: genai.TypeInteger, Minimum: genai.Ptr[float64](0), Maximum: genai.Ptr[float64](MaxXP)},
			"steps": {
				Type:     genai.TypeArray,
				MinItems: genai.Ptr[int64](MinSteps),
				MaxItems: genai.Ptr[int64](MaxSteps),
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":           str(""),
						"description":     str(""),
						"recommendation":  str("One practical tip for finishing this step"),
						"scheduledAt":     str("ISO 8601 date-time"),
						"durationMinutes": {Type: genai.TypeInteger, Minimum: genai.Ptr[float64](0), Maximum: genai.Ptr[float64](MaxStepMinutes)},
					},
					Required: []string{"title", "description", "recommendation", "scheduledAt", "durationMinutes"},
				},
			},
		},
		Required: []string{"title", "category", "description", "difficulty", "xp", "steps"},
	}
}

func recommendationsResponseSchema() *genai.Schema {
	return &genai.Schema{
		Type:  genai.TypeArray,
		Items: &genai.Schema{Type: genai.TypeString},
	}
}

var (
	compileOnce     sync.Once
	questSchema     *jsonschema.Schema
	recommendSchema *jsonschema.Schema
	compileErr      error
)

func compiledSchemas() (*jsonschema.Schema, *jsonschema.Schema, error) {
	compileOnce.Do(func() {
		questSchema, compileErr = compileSchema("quest.json", questJSONSchema)
		if compileErr != nil {
			return
		}
		recommendSchema, compileErr = compileSchema("recommendations.json", recommendationsJSONSchema)
	})
	return questSchema, recommendSchema, compileErr
}

func compileSchema(name, raw string) (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema %s: %w", name, err)
	}
	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(name, doc); err != nil {
		return nil, fmt.Errorf("add schema resource %s: %w", name, err)
	}
	return c.Compile(name)
}

type questPayload struct {
	Title       string        `json:"title"`
	Category    string        `json:"category"`
	Description string        `json:"description"`
	Difficulty  string        `json:"difficulty"`
	XP          float64       `json:"xp"`
	Steps       []stepPayload `json:"steps"`
}

type stepPayload struct {
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	Recommendation  string  `json:"recommendation"`
	ScheduledAt     string  `json:"scheduledAt"`
	DurationMinutes float64 `json:"durationMinutes"`
}

// ParseDraft validates raw service output and converts it to a Draft. Any
// failure wraps ErrGeneration and yields no partial result. The schema only
// admits whole, bounded numbers, so the int conversions below are exact.
func ParseDraft(raw string) (Draft, error) {
	schema, _, err := compiledSchemas()
	if err != nil {
		return Draft{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	body := extractJSON(raw)
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(body))
	if err != nil {
		return Draft{}, fmt.Errorf("%w: invalid JSON: %v", ErrGeneration, err)
	}
	if err := schema.Validate(inst); err != nil {
		return Draft{}, fmt.Errorf("%w: schema validation: %v", ErrGeneration, err)
	}

	var p questPayload
	if err := json.Unmarshal([]byte(body), &p); err != nil {
		return Draft{}, fmt.Errorf("%w: decode: %v", ErrGeneration, err)
	}
	out := Draft{
		Title:       strings.TrimSpace(p.Title),
		Category:    strings.TrimSpace(p.Category),
		Description: strings.TrimSpace(p.Description),
		Difficulty:  model.Difficulty(p.Difficulty),
		XP:          int(p.XP),
		Steps:       make([]DraftStep, 0, len(p.Steps)),
	}
	for i, s := range p.Steps {
		at, err := time.Parse(time.RFC3339, s.ScheduledAt)
		if err != nil {
			return Draft{}, fmt.Errorf("%w: step %d scheduledAt: %v", ErrGeneration, i, err)
		}
		out.Steps = append(out.Steps, DraftStep{
			Title:           strings.TrimSpace(s.Title),
			Description:     strings.TrimSpace(s.Description),
			Recommendation:  strings.TrimSpace(s.Recommendation),
			ScheduledAt:     at,
			DurationMinutes: int(s.DurationMinutes),
		})
	}
	return out, nil
}

// ParseRecommendations decodes a JSON array of quest ideas.
func ParseRecommendations(raw string) ([]string, error) {
	_, schema, err := compiledSchemas()
	if err != nil {
		return nil, err
	}
	body := extractJSON(raw)
	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gateway: invalid recommendations JSON: %w", err)
	}
	if err := schema.Validate(inst); err != nil {
		return nil, fmt.Errorf("gateway: recommendations schema: %w", err)
	}
	var out []string
	if err := json.Unmarshal([]byte(body), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// extractJSON strips a markdown code fence if the model added one.
func extractJSON(text string) string {
	s := strings.TrimSpace(text)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}
