package httpapi

import "arena/internal/arena"

// StartGameRequest is the body of POST /api/game/start. Any LLM side
// whose ApiUrl and ApiKey are both omitted falls back to the server's
// configured default for that color (and counts as a shared-credential
// start for cooldown purposes); HumanSide, when set to "white" or
// "black", makes that side human-controlled and its Model/ApiUrl/ApiKey
// fields are ignored.
type StartGameRequest struct {
	WhiteAPIURL string `json:"whiteApiUrl,omitempty"`
	WhiteAPIKey string `json:"whiteApiKey,omitempty"`
	WhiteModel  string `json:"whiteModel,omitempty"`

	BlackAPIURL string `json:"blackApiUrl,omitempty"`
	BlackAPIKey string `json:"blackApiKey,omitempty"`
	BlackModel  string `json:"blackModel,omitempty"`

	MaxRetries int    `json:"maxRetries,omitempty" validate:"omitempty,min=0,max=20"`
	BaseTime   int64  `json:"baseTime,omitempty" validate:"omitempty,min=0"`
	Increment  int64  `json:"increment,omitempty" validate:"omitempty,min=0"`
	HumanSide  string `json:"humanSide,omitempty" validate:"omitempty,oneof=white black"`
	Password   string `json:"password,omitempty"`
}

// StartGameResponse is the body returned on a successful game start.
type StartGameResponse struct {
	Message string             `json:"message"`
	State   arena.StateSnapshot `json:"state"`
	Bypass  bool                `json:"bypass"`
}

// MoveRequest is the body of POST /api/game/move.
type MoveRequest struct {
	Move string `json:"move" validate:"required"`
}

// ModelsRequest is the body of POST /api/models.
type ModelsRequest struct {
	APIURL string `json:"apiUrl" validate:"required"`
	APIKey string `json:"apiKey" validate:"required"`
}

// ModelsDefaultRequest is the body of POST /api/models/default: it
// names which side's configured default credential to use, since the
// server holds one per color.
type ModelsDefaultRequest struct {
	Side string `json:"side" validate:"omitempty,oneof=white black"`
}

// ModelsResponse is the body returned by both model-listing endpoints.
type ModelsResponse struct {
	Models []modelView `json:"models"`
}

type modelView struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// TokenResponse is the body of POST /api/token.
type TokenResponse struct {
	Token string `json:"token"`
}

// LegalMovesResponse is the body of GET /api/game/legal-moves.
type LegalMovesResponse struct {
	Moves []squareView `json:"moves"`
}

type squareView struct {
	File string `json:"file"`
	Rank int    `json:"rank"`
}

// ErrorResponse is the uniform error body for every non-2xx response.
type ErrorResponse struct {
	Error       string `json:"error"`
	RemainingMs int64  `json:"remainingMs,omitempty"`
	Bypass      bool   `json:"bypass"`
}
