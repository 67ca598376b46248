package httpapi

import (
	"fmt"

	"github.com/google/uuid"

	"arena/internal/arena"
	"arena/internal/config"
)

// resolvedGame is the outcome of reconciling a StartGameRequest against
// the server's configured defaults: the ready-to-run arena.Config, plus
// whether the start leaned on a shared (server-default) credential for
// either LLM side, which gates the cooldown check.
type resolvedGame struct {
	cfg              arena.Config
	sharedCredential bool
}

// resolveStartGame turns a validated StartGameRequest into an
// arena.Config, filling in server defaults for any LLM side that
// supplied neither a custom endpoint nor a custom credential. Returns
// an error naming the side when neither the request nor the server
// default can supply both an endpoint and a credential for an LLM
// side. The model is not checked: it is left empty when neither the
// request nor the server default names one.
func resolveStartGame(req StartGameRequest, cfg *config.Config) (resolvedGame, error) {
	out := arena.Config{
		ID: uuid.NewString(),
		MaxRetries: cfg.MaxRetries,
		Clock: arena.ClockConfig{
			BaseTimeMs:  cfg.BaseTimeMs,
			IncrementMs: cfg.IncrementMs,
		},
	}
	if req.MaxRetries > 0 {
		out.MaxRetries = req.MaxRetries
	}
	if req.BaseTime > 0 {
		out.Clock.BaseTimeMs = req.BaseTime
	}
	if req.Increment > 0 {
		out.Clock.IncrementMs = req.Increment
	}

	shared := false

	if req.HumanSide == "white" {
		out.White = arena.Side{Human: true}
	} else {
		side, isShared, err := resolveSide("white", req.WhiteAPIURL, req.WhiteAPIKey, req.WhiteModel, cfg.DefaultWhite)
		if err != nil {
			return resolvedGame{}, err
		}
		out.White = side
		shared = shared || isShared
	}

	if req.HumanSide == "black" {
		out.Black = arena.Side{Human: true}
	} else {
		side, isShared, err := resolveSide("black", req.BlackAPIURL, req.BlackAPIKey, req.BlackModel, cfg.DefaultBlack)
		if err != nil {
			return resolvedGame{}, err
		}
		out.Black = side
		shared = shared || isShared
	}

	return resolvedGame{cfg: out, sharedCredential: shared}, nil
}

func resolveSide(color, apiURL, apiKey, model string, def config.Endpoint) (arena.Side, bool, error) {
	// A side is shared-credential whenever the request supplies
	// neither a custom endpoint nor a custom credential for it.
	shared := apiURL == "" && apiKey == ""

	endpoint, credential := apiURL, apiKey
	if shared {
		endpoint, credential = def.APIURL, def.Credential
	}
	if endpoint == "" || credential == "" {
		return arena.Side{}, false, fmt.Errorf("missing %s credential: no request endpoint/key and no server default configured", color)
	}

	resolvedModel := model
	if resolvedModel == "" {
		resolvedModel = def.Model
	}

	return arena.Side{
		Endpoint:   endpoint,
		Credential: credential,
		Model:      resolvedModel,
	}, shared, nil
}
