package services

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

const defaultReasoning = "No reasoning provided"

// matchResponse is the agent's answer to a matching prompt after default-fill.
type matchResponse struct {
	Score        float64
	Reasoning    string
	MatchedAreas []string
	// HasScore is false when the reply carried no usable numeric score.
	HasScore bool
}

// parseMatchResponse decodes agent output into a matchResponse. Missing or
// unusable fields fall back to score 0, a placeholder reasoning and no areas;
// only output that is not a JSON object is an error.
func parseMatchResponse(raw string) (*matchResponse, error) {
	var data map[string]any
	if err := parseJSONResponse(raw, &data); err != nil {
		return nil, err
	}

	score := coerceFloat(data["score"])
	hasScore := true
	if math.IsNaN(score) || math.IsInf(score, 0) {
		score = 0
		hasScore = false
	}

	reasoning := coerceString(data["reasoning"])
	if reasoning == "" {
		reasoning = defaultReasoning
	}

	return &matchResponse{
		Score:        score,
		Reasoning:    reasoning,
		MatchedAreas: coerceStrings(data["matchedAreas"]),
		HasScore:     hasScore,
	}, nil
}

func parseJSONResponse(response string, target any) error {
	jsonStr := extractJSON(response)

	if err := json.Unmarshal([]byte(jsonStr), target); err != nil {
		return fmt.Errorf("failed to unmarshal JSON: %v: %w", err, ErrMalformedResponse)
	}

	return nil
}

// extractJSON pulls the JSON object or array out of text that may be wrapped in markdown.
func extractJSON(text string) string {
	text = strings.ReplaceAll(text, "```json", "")
	text = strings.ReplaceAll(text, "```", "")

	startObj := strings.Index(text, "{")
	startArr := strings.Index(text, "[")
	endObj := strings.LastIndex(text, "}")
	endArr := strings.LastIndex(text, "]")

	if startObj != -1 && endObj > startObj && (startArr == -1 || startObj < startArr) {
		return text[startObj : endObj+1]
	}
	if startArr != -1 && endArr > startArr {
		return text[startArr : endArr+1]
	}

	return strings.TrimSpace(text)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(val), "%")
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	default:
		bytes, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(bytes)
	}
}

func coerceStrings(v any) []string {
	out := []string{}
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			if s := coerceString(item); s != "" {
				out = append(out, s)
			}
		}
	case string:
		for _, part := range strings.Split(val, ",") {
			if s := strings.TrimSpace(part); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}
