package llmclient

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// exchangeRecord is one JSON-line entry in the append-only log: a
// machine-parseable record of a single chat exchange, success or
// failure.
type exchangeRecord struct {
	Timestamp    time.Time     `json:"timestamp"`
	Model        string        `json:"model"`
	Endpoint     string        `json:"endpoint"`
	Messages     []chatMessage `json:"messages"`
	Response     *responseLog  `json:"response,omitempty"`
	Error        *errorLog     `json:"error,omitempty"`
}

type responseLog struct {
	Content        string `json:"content"`
	Thinking       string `json:"thinking"`
	RawChunkCount  int    `json:"rawChunkCount"`
	RawFirstChunk  string `json:"rawFirstChunk"`
}

type errorLog struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

// ExchangeLog appends one JSON line per chat exchange to a fixed path,
// using a single writer goroutine over a buffered channel of marshaled
// lines so concurrent games never interleave partial writes.
type ExchangeLog struct {
	path    string
	lines   chan []byte
	done    chan struct{}
	wg      sync.WaitGroup
}

// NewExchangeLog opens (creating if needed) the log file at path and
// starts its writer goroutine.
func NewExchangeLog(path string) (*ExchangeLog, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	l := &ExchangeLog{
		path:  path,
		lines: make(chan []byte, 256),
		done:  make(chan struct{}),
	}
	l.wg.Add(1)
	go l.writerLoop(f)
	return l, nil
}

func (l *ExchangeLog) writerLoop(f *os.File) {
	defer l.wg.Done()
	defer f.Close()

	for {
		select {
		case line, ok := <-l.lines:
			if !ok {
				return
			}
			if _, err := f.Write(line); err != nil {
				log.Printf("llmclient: exchange log write failed: %v", err)
			}
		case <-l.done:
			// Drain whatever is already queued, then stop.
			for {
				select {
				case line := <-l.lines:
					f.Write(line)
				default:
					return
				}
			}
		}
	}
}

func (l *ExchangeLog) record(rec exchangeRecord) {
	rec.Timestamp = time.Now()
	b, err := json.Marshal(rec)
	if err != nil {
		log.Printf("llmclient: exchange record marshal failed: %v", err)
		return
	}
	b = append(b, '\n')

	select {
	case l.lines <- b:
	default:
		log.Printf("llmclient: exchange log buffer full, dropping record")
	}
}

// Close stops the writer goroutine after draining queued lines.
func (l *ExchangeLog) Close() {
	close(l.done)
	l.wg.Wait()
}
