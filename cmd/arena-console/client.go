package main

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// apiClient is a thin wrapper over the arena server's HTTP surface for
// operator debugging: every call is synchronous and prints nothing
// itself apart from request/response traces when verbose is on,
// leaving formatting to the command handlers.
type apiClient struct {
	baseURL string
	http    *http.Client
	token   string
	verbose bool
}

func newAPIClient(baseURL string) *apiClient {
	return &apiClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 15 * time.Second},
	}
}

func (c *apiClient) do(method, path string, query url.Values, body any) (map[string]any, int, error) {
	u := c.baseURL + path
	if query != nil {
		u += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		if c.verbose {
			fmt.Printf("%s> %s %s %s%s\n", colorMagenta, method, u, data, colorReset)
		}
		reader = bytes.NewReader(data)
	} else if c.verbose {
		fmt.Printf("%s> %s %s%s\n", colorMagenta, method, u, colorReset)
	}

	req, err := http.NewRequest(method, u, reader)
	if err != nil {
		return nil, 0, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}
	if c.verbose {
		fmt.Printf("%s< %d %s%s\n", colorMagenta, resp.StatusCode, raw, colorReset)
	}

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return nil, resp.StatusCode, fmt.Errorf("decode response: %w", err)
		}
	}
	if resp.StatusCode >= 400 {
		msg, _ := decoded["error"].(string)
		if msg == "" {
			msg = fmt.Sprintf("request failed with status %d", resp.StatusCode)
		}
		return decoded, resp.StatusCode, fmt.Errorf("%s", msg)
	}
	return decoded, resp.StatusCode, nil
}

func (c *apiClient) issueToken() (string, error) {
	resp, _, err := c.do(http.MethodPost, "/api/token", nil, nil)
	if err != nil {
		return "", err
	}
	token, _ := resp["token"].(string)
	c.token = token
	return token, nil
}

func (c *apiClient) withToken() url.Values {
	v := url.Values{}
	v.Set("token", c.token)
	return v
}

func (c *apiClient) startGame(req map[string]any) (map[string]any, error) {
	resp, _, err := c.do(http.MethodPost, "/api/game/start", c.withToken(), req)
	return resp, err
}

func (c *apiClient) state() (map[string]any, error) {
	resp, _, err := c.do(http.MethodGet, "/api/game/state", c.withToken(), nil)
	return resp, err
}

func (c *apiClient) move(san string) error {
	_, _, err := c.do(http.MethodPost, "/api/game/move", c.withToken(), map[string]any{"move": san})
	return err
}

func (c *apiClient) legalMoves(file string, rank int) (map[string]any, error) {
	v := c.withToken()
	v.Set("file", file)
	v.Set("rank", strconv.Itoa(rank))
	resp, _, err := c.do(http.MethodGet, "/api/game/legal-moves", v, nil)
	return resp, err
}

func (c *apiClient) stop() error {
	_, _, err := c.do(http.MethodPost, "/api/game/stop", c.withToken(), nil)
	return err
}

func (c *apiClient) reset() error {
	_, _, err := c.do(http.MethodPost, "/api/game/reset", c.withToken(), nil)
	return err
}

func (c *apiClient) models(apiURL, apiKey string) (map[string]any, error) {
	resp, _, err := c.do(http.MethodPost, "/api/models", nil, map[string]any{"apiUrl": apiURL, "apiKey": apiKey})
	return resp, err
}

func (c *apiClient) defaultModels(side string) (map[string]any, error) {
	resp, _, err := c.do(http.MethodPost, "/api/models/default", nil, map[string]any{"side": side})
	return resp, err
}

// stream opens the SSE connection and invokes onEvent for every frame
// until the connection closes or stop is signaled. It blocks the
// caller's goroutine; the console runs it in the background so the
// prompt stays responsive.
func (c *apiClient) stream(stop <-chan struct{}, onEvent func(kind string, data []byte)) error {
	u := c.baseURL + "/api/game/stream?" + c.withToken().Encode()
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	reader := bufio.NewReader(resp.Body)
	var kind string
	for {
		select {
		case <-stop:
			return nil
		default:
		}

		line, err := reader.ReadString('\n')
		if err != nil {
			return err
		}
		switch {
		case bytes.HasPrefix([]byte(line), []byte("event: ")):
			kind = line[len("event: ") : len(line)-1]
		case bytes.HasPrefix([]byte(line), []byte("data: ")):
			data := []byte(line[len("data: ") : len(line)-1])
			onEvent(kind, data)
		}
	}
}
