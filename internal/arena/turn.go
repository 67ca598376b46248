package arena

import (
	"context"
	"fmt"
	"strings"
	"time"

	"arena/internal/llmclient"
	"arena/internal/rules"
)

// networkErrorRefund is credited back to the mover's clock whenever an
// LLM call fails for a transport reason rather than a bad move, so a
// flaky endpoint never costs a player time on the board.
const networkErrorRefund = 120 * time.Second

// Run drives the game to completion: it alternates turns until a
// terminal condition is reached, a side forfeits, or the game is
// stopped, then emits the single closing gameOver event. Callers
// typically invoke Run in its own goroutine.
func (g *Game) Run(ctx context.Context) {
	g.emit("status", StatusEvent{Message: "Game started"})
	g.emitInitialBoard()

	tickerDone := make(chan struct{})
	if !g.clock.Unlimited {
		go g.tickClock(tickerDone)
	}

	for {
		if g.aborted() {
			break
		}

		color := g.board.Turn()
		moveNumber := g.hist.Len()/2 + 1

		g.mu.Lock()
		g.turnStartedAt = time.Now()
		g.mu.Unlock()

		side := g.sideFor(color)

		var san string
		var dialogue *string

		if side.Human {
			var aborted bool
			san, aborted = g.runHumanTurn(ctx, color)
			if aborted {
				break
			}
		} else {
			var ok bool
			san, dialogue, ok = g.runLLMTurn(ctx, color, moveNumber)
			if !ok {
				g.finish(fmt.Sprintf("%s wins by forfeit (%s failed to make a legal move)", colorName(color.Opposite()), colorName(color)))
				break
			}
		}

		if g.commitMove(color, san, dialogue, moveNumber) {
			break
		}
	}

	close(tickerDone)
	g.finish("Game ended")
	g.emitGameOver()
}

func (g *Game) runHumanTurn(ctx context.Context, color rules.Color) (string, bool) {
	g.emit("status", StatusEvent{Message: fmt.Sprintf("Waiting for %s to move", colorName(color))})
	return g.awaitHumanMove(ctx)
}

// runLLMTurn drives the request/parse/validate loop for one LLM turn.
// Illegal or unparseable moves and transport failures all count
// against maxRetries; a transport failure classified as a network
// error additionally credits the mover's clock.
func (g *Game) runLLMTurn(ctx context.Context, color rules.Color, moveNumber int) (san string, dialogue *string, ok bool) {
	side := g.sideFor(color)
	base := userMessage(g.hist)
	attempt := 0
	lastIllegal := ""

	for {
		if g.aborted() {
			return "", nil, false
		}
		attempt++

		userMsg := base
		if lastIllegal != "" {
			userMsg = retryUserMessage(base, lastIllegal)
		}
		req := llmclient.ChatRequest{
			Endpoint:     side.Endpoint,
			Model:        side.Model,
			Credential:   side.Credential,
			SystemPrompt: systemPrompt(colorName(color)),
			UserMessage:  userMsg,
		}

		var thinking strings.Builder
		content, err := g.llm.Chat(ctx, req, func(kind, text string) {
			if kind == llmclient.KindThinking {
				thinking.WriteString(text)
				g.emit("thinking", ThinkingEvent{
					Color:       colorCode(color),
					Model:       side.Model,
					Text:        text,
					Accumulated: thinking.String(),
				})
			}
		})
		if err != nil {
			if isNetworkError(err) {
				g.creditClock(networkErrorRefund)
			}
			g.emit("error", ErrorEvent{
				Color: colorCode(color), Model: side.Model,
				Message: err.Error(), Attempt: attempt, MaxRetries: g.maxRetries,
			})
			if attempt >= g.maxRetries {
				return "", nil, false
			}
			continue
		}

		move, dlg := parseResponse(content)
		g.emit("chat", ChatEvent{
			Color: colorCode(color), Model: side.Model,
			Raw: content, Move: move, Dialogue: dlg, Thinking: thinking.String(),
			Attempt: attempt, MoveNumber: moveNumber,
		})

		if move == "" || !g.legal(move) {
			lastIllegal = move
			g.emit("error", ErrorEvent{
				Color: colorCode(color), Model: side.Model,
				Message: fmt.Sprintf("illegal or unparseable move %q", move),
				Attempt: attempt, MaxRetries: g.maxRetries,
			})
			if attempt >= g.maxRetries {
				return "", nil, false
			}
			continue
		}

		return move, dlg, true
	}
}

func (g *Game) legal(san string) bool {
	g.mu.RLock()
	cp := g.board.Copy()
	g.mu.RUnlock()
	_, err := cp.Execute(san)
	return err == nil
}

// creditClock pushes turnStartedAt forward so the next elapsed-time
// computation effectively ignores d of wall-clock time.
func (g *Game) creditClock(d time.Duration) {
	g.mu.Lock()
	g.turnStartedAt = g.turnStartedAt.Add(d)
	g.mu.Unlock()
}

func isNetworkError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, needle := range []string{"fetch", "econnrefused", "network", "enotfound", "timeout"} {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}

// commitMove applies san to the live board, appends history, debits
// the clock, emits the resulting move/board/clock events, and reports
// whether the game reached a terminal condition as a result.
func (g *Game) commitMove(color rules.Color, san string, dialogue *string, moveNumber int) bool {
	g.mu.Lock()
	mv, err := g.board.Execute(san)
	if err != nil {
		g.mu.Unlock()
		g.finish(fmt.Sprintf("%s wins by forfeit (%s failed to make a legal move)", colorName(color.Opposite()), colorName(color)))
		return true
	}
	g.hist.Append(san, mv)
	g.debitClockLocked(color)
	g.mu.Unlock()

	g.emitBoardAndMove(color, mv, dialogue, moveNumber)
	return g.checkTerminalAndEmit()
}

// debitClockLocked must be called with g.mu held. The increment is
// credited only if the deduction doesn't already flag-fall the mover;
// a player who overruns their time doesn't get bailed out by their
// own increment.
func (g *Game) debitClockLocked(color rules.Color) {
	if g.clock.Unlimited {
		return
	}
	elapsed := time.Since(g.turnStartedAt).Milliseconds()
	if color == rules.White {
		g.whiteTimeMs -= elapsed
		if g.whiteTimeMs > 0 {
			g.whiteTimeMs += g.clock.IncrementMs
		}
	} else {
		g.blackTimeMs -= elapsed
		if g.blackTimeMs > 0 {
			g.blackTimeMs += g.clock.IncrementMs
		}
	}
}

func (g *Game) emitBoardAndMove(color rules.Color, mv rules.Move, dialogue *string, moveNumber int) {
	g.mu.RLock()
	boardJSON := g.board.ToJSON()
	turn := g.board.Turn()
	captured := CapturedView{
		White: pieceNames(g.board.Captured(rules.White)),
		Black: pieceNames(g.board.Captured(rules.Black)),
	}
	whiteMs, blackMs := g.whiteTimeMs, g.blackTimeMs
	unlimited := g.clock.Unlimited
	g.mu.RUnlock()

	side := g.sideFor(color)
	g.emit("move", MoveEvent{
		Color:      colorCode(color),
		Model:      side.Model,
		Notation:   mv.Notation,
		From:       mv.From.String(),
		To:         mv.To.String(),
		MoveNumber: moveNumber,
		Dialogue:   dialogue,
	})
	g.emit("board", BoardEvent{
		Squares:  boardJSON,
		Turn:     string(turn),
		LastMove: &MoveView{From: mv.From.String(), To: mv.To.String()},
		Captured: captured,
	})
	if !unlimited {
		g.emit("clock", ClockEvent{WhiteTime: whiteMs, BlackTime: blackMs})
	}
}

// checkTerminalAndEmit evaluates end-of-game conditions in the
// mandated order: clock flag-fall, then board-rules terminal states
// (checkmate, stalemate, fifty-move draw), then an informational
// check announcement, then the excessive-length draw.
func (g *Game) checkTerminalAndEmit() bool {
	g.mu.RLock()
	unlimited := g.clock.Unlimited
	whiteMs, blackMs := g.whiteTimeMs, g.blackTimeMs
	reason, winner, over := g.board.Terminal()
	turn := g.board.Turn()
	inCheck := g.board.InCheck(turn)
	plies := g.hist.Len()
	g.mu.RUnlock()

	if !unlimited {
		if whiteMs <= 0 {
			g.finish("Black wins on time")
			return true
		}
		if blackMs <= 0 {
			g.finish("White wins on time")
			return true
		}
	}

	if over {
		switch reason {
		case "checkmate":
			g.finish(fmt.Sprintf("%s wins by checkmate!", colorName(winner)))
		case "stalemate":
			g.finish("Draw by stalemate")
		case "fifty-move":
			g.finish("Draw by 50-move rule")
		}
		return true
	}

	if inCheck {
		g.emit("status", StatusEvent{Message: fmt.Sprintf("%s is in check", colorName(turn))})
	}

	if plies >= maxPlies {
		g.finish("Draw by excessive length (150+ moves)")
		return true
	}

	return false
}

func (g *Game) finish(result string) {
	g.mu.Lock()
	if g.result == "" {
		g.result = result
	}
	if g.finishedAt == nil {
		now := time.Now()
		g.finishedAt = &now
	}
	g.mu.Unlock()
}

func (g *Game) emitInitialBoard() {
	g.mu.RLock()
	boardJSON := g.board.ToJSON()
	turn := g.board.Turn()
	whiteMs, blackMs := g.whiteTimeMs, g.blackTimeMs
	unlimited := g.clock.Unlimited
	g.mu.RUnlock()

	g.emit("board", BoardEvent{Squares: boardJSON, Turn: string(turn)})
	if !unlimited {
		g.emit("clock", ClockEvent{WhiteTime: whiteMs, BlackTime: blackMs})
	}
}

func (g *Game) emitGameOver() {
	g.mu.RLock()
	result := g.result
	pgn := g.hist.Movetext()
	g.mu.RUnlock()

	if result == "" {
		result = "Game ended"
	}
	g.emit("gameOver", GameOverEvent{Result: result, PGN: pgn})
}

func (g *Game) tickClock(done <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			g.mu.RLock()
			if g.result != "" {
				g.mu.RUnlock()
				return
			}
			turn := g.board.Turn()
			elapsed := time.Since(g.turnStartedAt).Milliseconds()
			whiteMs, blackMs := g.whiteTimeMs, g.blackTimeMs
			if turn == rules.White {
				whiteMs -= elapsed
			} else {
				blackMs -= elapsed
			}
			g.mu.RUnlock()
			g.emit("clock", ClockEvent{WhiteTime: whiteMs, BlackTime: blackMs})
		case <-done:
			return
		case <-g.stopCh:
			return
		}
	}
}

func pieceNames(types []rules.PieceType) []string {
	names := make([]string, len(types))
	for i, t := range types {
		names[i] = rules.PieceTypeName(t)
	}
	return names
}
