package arena

import (
	"encoding/json"
	"regexp"
	"strings"
)

var thinkTagRe = regexp.MustCompile(`(?is)<think>.*?</think>`)
var sanTokenRe = regexp.MustCompile(`^([KQRBNa-h][a-h1-8x=+#]*|O-O-O|O-O|0-0-0|0-0)$`)

type jsonMoveResponse struct {
	Move     string `json:"move"`
	Dialogue string `json:"dialogue"`
}

// parseResponse extracts a candidate SAN move and optional dialogue
// from raw LLM output with a two-stage scheme: try a strict JSON
// object first, then fall back to scanning tokens for something that
// looks like SAN.
func parseResponse(raw string) (move string, dialogue *string) {
	if m, d, ok := parseJSONMove(raw); ok {
		return m, d
	}
	return parseFallbackMove(raw), nil
}

func parseJSONMove(raw string) (string, *string, bool) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return "", nil, false
	}
	dec := json.NewDecoder(strings.NewReader(raw[start:]))
	var v jsonMoveResponse
	if err := dec.Decode(&v); err != nil || v.Move == "" {
		return "", nil, false
	}
	var dialogue *string
	if v.Dialogue != "" {
		d := v.Dialogue
		dialogue = &d
	}
	return v.Move, dialogue, true
}

func parseFallbackMove(raw string) string {
	stripped := thinkTagRe.ReplaceAllString(raw, "")
	stripped = strings.TrimSpace(stripped)
	stripped = strings.Trim(stripped, `"'`)

	fields := strings.Fields(stripped)
	if len(fields) == 0 {
		return ""
	}

	for _, f := range fields {
		candidate := strings.TrimRight(f, ".,;:")
		if sanTokenRe.MatchString(candidate) {
			return candidate
		}
	}
	return strings.TrimRight(fields[len(fields)-1], ".,;:")
}
