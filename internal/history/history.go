// Package history tracks the append-only move list for a single game
// and renders it as movetext for transcripts and LLM prompts.
package history

import (
	"fmt"
	"strings"

	"arena/internal/rules"
)

// Entry is a single recorded ply: the SAN text as played and the
// resulting move detail from the rules engine.
type Entry struct {
	SAN   string
	Move  rules.Move
	Color rules.Color
}

// History is the ordered list of plies played in a game, mirroring the
// teacher's snapshot-per-move approach but keyed on SAN rather than
// FEN since the orchestrator only ever needs movetext and ply count.
type History struct {
	entries []Entry
}

// New returns an empty history.
func New() *History {
	return &History{}
}

// Append records a completed ply.
func (h *History) Append(san string, m rules.Move) {
	h.entries = append(h.entries, Entry{SAN: san, Move: m, Color: m.Color})
}

// Len returns the number of plies recorded.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the recorded plies, oldest first.
func (h *History) Entries() []Entry {
	return append([]Entry{}, h.entries...)
}

// LastSAN returns the most recently appended move's SAN text, if any.
func (h *History) LastSAN() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}
	return h.entries[len(h.entries)-1].SAN, true
}

// Movetext renders the history as standard PGN movetext — "1. e4 e5 2.
// Nf3 …" — with no tags or headers, since the orchestrator has no use
// for a full PGN document, only the move sequence it feeds back into
// prompts and exposes over the API.
func (h *History) Movetext() string {
	var b strings.Builder
	for i, e := range h.entries {
		if e.Color == rules.White {
			if i > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%d. %s", i/2+1, e.SAN)
		} else {
			b.WriteByte(' ')
			b.WriteString(e.SAN)
		}
	}
	return b.String()
}
