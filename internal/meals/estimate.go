// Package meals estimates macros for a described or photographed meal.
package meals

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/omarshanyour/nutrimind-backend/internal/llm"
)

var (
	// ErrUnparseable means the model answered but not with a JSON object.
	ErrUnparseable = errors.New("could not parse macros from model output")
	// ErrDescriptionTooShort rejects descriptions under two characters.
	ErrDescriptionTooShort = errors.New("meal description too short")
	// ErrNotImage rejects uploads whose content type is not image/*.
	ErrNotImage = errors.New("upload is not an image")
)

const textSystemPrompt = `You estimate calories, protein, carbs and fats from a meal description.

Reply with JSON only, in exactly this shape:
{"kcal": <number>, "protein_g": <number>, "carbs_g": <number>, "fats_g": <number>}

Guidelines:
- Use realistic nutrition values.
- For restaurant food (Chipotle, In-N-Out, McDonald's and similar) assume the typical menu item.
- If several foods are listed, add them up.
- Lean slightly high on calories.
- No explanations, only the raw JSON.`

const photoSystemPrompt = `You estimate calories, protein, carbs and fats from a photo of food.

Reply with JSON only, in exactly this shape:
{"kcal": <number>, "protein_g": <number>, "carbs_g": <number>, "fats_g": <number>}

Guidelines:
- Identify the meal from the picture (burger, bowl, pizza, etc).
- Judge the portion size.
- If it looks like a known fast food item, use typical macros for that item.
- Use the middle of common calorie ranges, leaning high rather than low.
- No explanations, no backticks, only the raw JSON.`

const photoUserPrompt = "Estimate this meal."

// Macros are the estimated totals for one meal.
type Macros struct {
	Kcal     float64 `json:"kcal"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatsG    float64 `json:"fats_g"`
}

// Estimator turns meal text or photos into Macros via a Generator.
type Estimator struct {
	gen         llm.Generator
	textModel   string
	visionModel string
}

// NewEstimator builds an estimator using textModel for descriptions and
// visionModel for photos.
func NewEstimator(gen llm.Generator, textModel, visionModel string) *Estimator {
	return &Estimator{gen: gen, textModel: textModel, visionModel: visionModel}
}

// FromText estimates macros for a free-text meal description.
func (e *Estimator) FromText(ctx context.Context, description string) (Macros, error) {
	description = strings.TrimSpace(description)
	if len([]rune(description)) < 2 {
		return Macros{}, ErrDescriptionTooShort
	}

	raw, err := e.gen.Generate(ctx, llm.Request{
		Model:       e.textModel,
		Temperature: 0,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: textSystemPrompt},
			{Role: llm.RoleUser, Content: description},
		},
	})
	if err != nil {
		return Macros{}, fmt.Errorf("estimate meal text: %w", err)
	}
	return ParseMacros(raw)
}

// FromPhoto estimates macros for an image. contentType must be image/*.
func (e *Estimator) FromPhoto(ctx context.Context, contentType string, image []byte) (Macros, error) {
	if !strings.HasPrefix(contentType, "image/") {
		return Macros{}, ErrNotImage
	}

	dataURL := "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(image)
	raw, err := e.gen.Generate(ctx, llm.Request{
		Model:       e.visionModel,
		Temperature: 0,
		MaxTokens:   150,
		Messages: []llm.Message{
			{Role: llm.RoleSystem, Content: photoSystemPrompt},
			{Role: llm.RoleUser, Content: photoUserPrompt},
		},
		ImageDataURL: dataURL,
	})
	if err != nil {
		return Macros{}, fmt.Errorf("estimate meal photo: %w", err)
	}
	return ParseMacros(raw)
}

// ParseMacros reads the model's JSON answer, tolerating a code fence. Each
// field is coerced to a finite number and defaults to 0.
func ParseMacros(raw string) (Macros, error) {
	var fields map[string]any
	if err := json.Unmarshal([]byte(llm.StripCodeFence(raw)), &fields); err != nil || fields == nil {
		return Macros{}, ErrUnparseable
	}
	return Macros{
		Kcal:     toNumber(fields["kcal"]),
		ProteinG: toNumber(fields["protein_g"]),
		CarbsG:   toNumber(fields["carbs_g"]),
		FatsG:    toNumber(fields["fats_g"]),
	}, nil
}

func toNumber(v any) float64 {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}
