package recipe

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"recipe-sync/internal/domain/job"
	"recipe-sync/internal/domain/platform"
)

// Normalize maps one opaque dataset record onto a Recipe owned by the job's
// user. Fields of the wrong type are treated as missing. Difficulty is
// never read from the record and is always medium.
func Normalize(raw map[string]any, j job.ScrapingJob) Recipe {
	jobID := j.ID
	r := Recipe{
		UserID:         j.UserID,
		Title:          DefaultTitle,
		SourcePlatform: platform.Manual,
		Ingredients:    []any{},
		Instructions:   []any{},
		Difficulty:     DifficultyMedium,
		Tags:           []string{},
		ScrapingJobID:  &jobID,
	}

	if v, ok := stringField(raw, "title"); ok {
		r.Title = v
	}
	if v, ok := stringField(raw, "description"); ok {
		r.Description = &v
	}
	if v, ok := stringField(raw, "url"); ok {
		r.SourceURL = &v
	}
	if v, ok := stringField(raw, "platform"); ok {
		if p := platform.Platform(v); p.ValidSource() {
			r.SourcePlatform = p
		}
	}
	if v, ok := stringField(raw, "image"); ok {
		r.ThumbnailURL = &v
	}
	if v, ok := arrayField(raw, "ingredients"); ok {
		r.Ingredients = v
	}
	if v, ok := arrayField(raw, "instructions"); ok {
		r.Instructions = v
	}
	r.Servings = intField(raw, "servings")
	r.PrepTime = intField(raw, "prepTime")
	r.CookTime = intField(raw, "cookTime")

	if v, ok := arrayField(raw, "tags"); ok {
		for _, t := range v {
			if s, ok := t.(string); ok && s != "" {
				r.Tags = append(r.Tags, s)
			}
		}
	}

	return r
}

func stringField(raw map[string]any, key string) (string, bool) {
	s, ok := raw[key].(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

func arrayField(raw map[string]any, key string) ([]any, bool) {
	arr, ok := raw[key].([]any)
	if !ok || arr == nil {
		return nil, false
	}
	return arr, true
}

// intField accepts JSON numbers and numeric strings, rounded to the nearest
// integer. Zero and anything outside the int32 columns count as absent.
func intField(raw map[string]any, key string) *int {
	var f float64
	switch v := raw[key].(type) {
	case float64:
		f = v
	case int:
		f = float64(v)
	case int64:
		f = float64(v)
	case json.Number:
		parsed, err := v.Float64()
		if err != nil {
			return nil
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return nil
		}
		f = parsed
	default:
		return nil
	}

	f = math.Round(f)
	if f == 0 || math.IsNaN(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return nil
	}
	n := int(f)
	return &n
}
