package httpapi

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"arena/internal/arena"
	"arena/internal/registry"
	"arena/internal/rules"
)

// emptyBoardSnapshot is served by GET /api/game/state when a session
// has no game yet: the starting position, not an error, so a fresh
// client can render a board immediately.
func emptyBoardSnapshot() arena.StateSnapshot {
	b := rules.NewBoard()
	return arena.StateSnapshot{
		Turn:    string(b.Turn()),
		Squares: b.ToJSON(),
	}
}

func tokenFromQuery(c *fiber.Ctx) (string, error) {
	token := c.Query("token")
	if token == "" {
		return "", errors.New("token is required")
	}
	return token, nil
}

// IssueToken handles POST /api/token.
func (h *Handler) IssueToken(c *fiber.Ctx) error {
	return c.JSON(TokenResponse{Token: h.reg.IssueToken()})
}

// StartGame handles POST /api/game/start.
func (h *Handler) StartGame(c *fiber.Ctx) error {
	token, err := tokenFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if _, ok := h.reg.Session(token); !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "unknown token"})
	}

	req := *(c.Locals("body").(*StartGameRequest))

	resolved, err := resolveStartGame(req, h.cfg)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	bypass := h.cfg.BypassPassword != "" && req.Password == h.cfg.BypassPassword
	if err := h.reg.Cooldown().Check(token, resolved.sharedCredential, req.Password); err != nil {
		var cd *registry.CooldownError
		if errors.As(err, &cd) {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{
				Error:       err.Error(),
				RemainingMs: cd.Remaining.Milliseconds(),
				Bypass:      false,
			})
		}
		return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse{Error: err.Error()})
	}

	g, err := h.reg.StartGame(token, resolved.cfg)
	if err != nil {
		if errors.Is(err, registry.ErrGameInProgress) {
			return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: err.Error()})
		}
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	return c.JSON(StartGameResponse{
		Message: "game started",
		State:   g.Snapshot(),
		Bypass:  bypass,
	})
}

// GameState handles GET /api/game/state.
func (h *Handler) GameState(c *fiber.Ctx) error {
	token, err := tokenFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	s, ok := h.reg.Session(token)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "unknown token"})
	}
	g := s.Game()
	if g == nil {
		return c.JSON(emptyBoardSnapshot())
	}
	return c.JSON(g.Snapshot())
}

// SubmitMove handles POST /api/game/move.
func (h *Handler) SubmitMove(c *fiber.Ctx) error {
	token, err := tokenFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	s, ok := h.reg.Session(token)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "unknown token"})
	}
	g := s.Game()
	if g == nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "no game in progress"})
	}

	req := *(c.Locals("body").(*MoveRequest))

	color, isHuman := g.HumanTurnColor()
	if !isHuman {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "not your turn"})
	}

	if err := g.SubmitHumanMove(color, req.Move); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "move accepted"})
}

// LegalMoves handles GET /api/game/legal-moves.
func (h *Handler) LegalMoves(c *fiber.Ctx) error {
	token, err := tokenFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	s, ok := h.reg.Session(token)
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "unknown token"})
	}
	g := s.Game()
	if g == nil {
		return c.JSON(LegalMovesResponse{})
	}

	from, err := parseFileRank(c.Query("file"), c.Query("rank"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}

	dests := g.LegalMoves(from)
	moves := make([]squareView, len(dests))
	for i, sq := range dests {
		moves[i] = squareView{File: string(rune('a' + sq.File)), Rank: sq.Rank + 1}
	}
	return c.JSON(LegalMovesResponse{Moves: moves})
}

func parseFileRank(fileStr, rankStr string) (rules.Square, error) {
	if len(fileStr) != 1 || fileStr[0] < 'a' || fileStr[0] > 'h' {
		return rules.Square{}, errors.New("file must be a single letter a-h")
	}
	rank, err := strconv.Atoi(rankStr)
	if err != nil || rank < 1 || rank > 8 {
		return rules.Square{}, errors.New("rank must be an integer 1-8")
	}
	sq := rules.Square{File: int(fileStr[0] - 'a'), Rank: rank - 1}
	return sq, nil
}

// StopGame handles POST /api/game/stop.
func (h *Handler) StopGame(c *fiber.Ctx) error {
	token, err := tokenFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if err := h.reg.StopGame(token); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "game stopped"})
}

// ResetGame handles POST /api/game/reset.
func (h *Handler) ResetGame(c *fiber.Ctx) error {
	token, err := tokenFromQuery(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	if err := h.reg.ResetGame(token); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	return c.JSON(fiber.Map{"message": "game reset"})
}

// ListModels handles POST /api/models.
func (h *Handler) ListModels(c *fiber.Ctx) error {
	req := *(c.Locals("body").(*ModelsRequest))
	return h.listModels(c, req.APIURL, req.APIKey)
}

// ListDefaultModels handles POST /api/models/default.
func (h *Handler) ListDefaultModels(c *fiber.Ctx) error {
	req := *(c.Locals("body").(*ModelsDefaultRequest))
	def := h.cfg.DefaultWhite
	if req.Side == "black" {
		def = h.cfg.DefaultBlack
	}
	if def.APIURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "no server default configured for this side"})
	}
	return h.listModels(c, def.APIURL, def.Credential)
}

func (h *Handler) listModels(c *fiber.Ctx, apiURL, apiKey string) error {
	models, err := h.reg.Models().List(apiURL, apiKey)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: err.Error()})
	}
	views := make([]modelView, len(models))
	for i, m := range models {
		views[i] = modelView{ID: m.ID, Name: m.Name}
	}
	return c.JSON(ModelsResponse{Models: views})
}
