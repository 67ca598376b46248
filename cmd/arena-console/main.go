// Package main implements an interactive debugging console for the
// arena server's HTTP API: issue tokens, start games, submit moves,
// and watch the SSE stream, all from a readline prompt.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

func main() {
	baseURL := flag.String("url", "http://localhost:8080", "Arena API base URL")
	flag.Parse()

	s := &session{client: newAPIClient(*baseURL)}
	reg := newRegistry()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt("arena"),
		HistoryFile:     ".arena_console_history",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Printf("%s%s%s\n", colorRed, err, colorReset)
		os.Exit(1)
	}
	defer rl.Close()

	fmt.Printf("%sArena Console%s\n", colorCyan, colorReset)
	fmt.Printf("API: %s\n", *baseURL)
	fmt.Println("Type 'help' for commands")

	for {
		rl.SetPrompt(buildPrompt(s))
		line, err := rl.Readline()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		reg.execute(s, line)
	}
}

func buildPrompt(s *session) string {
	base := "arena"
	if s.client.token != "" {
		base += " " + colorMagenta + s.client.token[:8] + colorReset
	}
	if s.streaming {
		base += colorGreen + " streaming" + colorReset
	}
	return prompt(base)
}
