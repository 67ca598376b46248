// Package llmclient issues streaming chat-completion requests against
// an OpenAI-compatible endpoint, demultiplexing reasoning and content
// text as it arrives, under a process-wide rate limit.
package llmclient

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// StreamFunc receives one classified chunk as it is parsed from the
// response stream.
type StreamFunc func(kind, text string)

// Client issues chat calls against whatever endpoint/credential each
// request names, sharing one rate limiter and one exchange log across
// every call.
type Client struct {
	httpClient *http.Client
	limiter    *RateLimiter
	log        *ExchangeLog
}

// New returns a Client using limiter and log for every call. Either may
// be nil in tests that don't care about pacing or logging.
func New(limiter *RateLimiter, log *ExchangeLog) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 0}, // streaming: no blanket deadline, caller's ctx governs
		limiter:    limiter,
		log:        log,
	}
}

// Chat performs one streaming chat-completion call, delivering chunks
// to onChunk as they are classified, and returns the concatenated,
// trimmed content once the stream ends.
func (c *Client) Chat(ctx context.Context, req ChatRequest, onChunk StreamFunc) (string, error) {
	if c.limiter != nil {
		c.limiter.Acquire()
	}

	body := newChatBody(req)
	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("llmclient: marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("llmclient: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+req.Credential)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logExchange(req, body.Messages, nil, &errorLog{Status: 0, Body: err.Error()})
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		c.logExchange(req, body.Messages, nil, &errorLog{Status: resp.StatusCode, Body: string(respBody)})
		return "", fmt.Errorf("upstream returned %d: %s", resp.StatusCode, string(respBody))
	}

	var content, thinking strings.Builder
	rawChunkCount := 0
	rawFirstChunk := ""
	dmx := newDemux()

	emit := func(kind, text string) {
		if text == "" {
			return
		}
		switch kind {
		case KindThinking:
			thinking.WriteString(text)
		case KindContent:
			content.WriteString(text)
		}
		if onChunk != nil {
			onChunk(kind, text)
		}
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "[DONE]" {
			break
		}

		rawChunkCount++
		if rawFirstChunk == "" {
			rawFirstChunk = data
		}

		var payload streamPayload
		if err := json.Unmarshal([]byte(data), &payload); err != nil {
			continue // malformed lines are silently skipped
		}
		if len(payload.Choices) == 0 {
			continue
		}
		delta := payload.Choices[0].Delta

		if delta.ReasoningContent != "" {
			emit(KindThinking, delta.ReasoningContent)
		}
		if delta.Thinking != "" {
			emit(KindThinking, delta.Thinking)
		}
		if delta.Content != "" {
			dmx.feed(delta.Content, emit)
		}
	}
	dmx.Flush(emit)

	if err := scanner.Err(); err != nil {
		c.logExchange(req, body.Messages, nil, &errorLog{Status: 0, Body: err.Error()})
		return "", err
	}

	final := strings.TrimSpace(content.String())
	c.logExchange(req, body.Messages, &responseLog{
		Content:       final,
		Thinking:      thinking.String(),
		RawChunkCount: rawChunkCount,
		RawFirstChunk: rawFirstChunk,
	}, nil)

	return final, nil
}

func (c *Client) logExchange(req ChatRequest, messages []chatMessage, resp *responseLog, errL *errorLog) {
	if c.log == nil {
		return
	}
	c.log.record(exchangeRecord{
		Model:    req.Model,
		Endpoint: req.Endpoint,
		Messages: messages,
		Response: resp,
		Error:    errL,
	})
}
