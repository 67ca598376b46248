package httpapi

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

const keepAliveInterval = 25 * time.Second

// StreamGame handles GET /api/game/stream: a Server-Sent Events
// connection that first replays the current state as a "state" frame
// (if a game exists), then forwards every subsequent broadcast event
// verbatim, with a periodic keep-alive comment so idle proxies don't
// time the connection out.
func (h *Handler) StreamGame(c *fiber.Ctx) error {
	token, err := tokenFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	s, ok := h.reg.Session(token)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "unknown token"})
	}

	ch, unsubscribe, err := h.reg.Subscribe(token)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	c.Set("Content-Type", "text/event-stream")
	c.Set("Cache-Control", "no-cache")
	c.Set("Connection", "keep-alive")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer unsubscribe()

		if g := s.Game(); g != nil {
			writeSSE(w, "state", g.Snapshot())
			w.Flush()
		}

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case ev, open := <-ch:
				if !open {
					return
				}
				writeSSE(w, ev.Kind, ev.Payload)
				if w.Flush() != nil {
					return
				}
			case <-ticker.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if w.Flush() != nil {
					return
				}
			}
		}
	})

	return nil
}

func writeSSE(w *bufio.Writer, kind string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", kind, data)
}
