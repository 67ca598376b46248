package arena

import (
	"fmt"
	"strings"

	"arena/internal/history"
)

const systemPromptTemplate = `You are playing chess as {{color}}. Respond with a single JSON object of the form {"move": "<SAN>", "dialogue": "<optional short remark>"}. The move must be standard algebraic notation for one legal move in the current position. Do not include any text outside the JSON object.`

const gameStartsMessage = "The game starts now. Make your move."

func systemPrompt(color string) string {
	return strings.ReplaceAll(systemPromptTemplate, "{{color}}", color)
}

// userMessage is the current game so far, rendered as PGN movetext, or
// the fixed opening line if no plies have been played yet.
func userMessage(h *history.History) string {
	if h.Len() == 0 {
		return gameStartsMessage
	}
	return h.Movetext()
}

// retryUserMessage augments the base user message demanding a
// different legal move after an illegal attempt.
func retryUserMessage(base, illegalSAN string) string {
	return fmt.Sprintf("%s\nYour previous move %q was illegal. Play a different legal move.", base, illegalSAN)
}
