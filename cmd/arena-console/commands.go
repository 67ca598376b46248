package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"
)

// sideCreds is one color's saved endpoint/credential/model, entered
// once via the "creds" command and reused by "start" so an operator
// never has to retype an API key at a shell prompt where it would
// land in the readline history file.
type sideCreds struct {
	apiURL, apiKey, model string
}

// session holds everything a command handler might need: the API
// client, the last known state, and the background stream's stop
// signal so "stream"/"unstream" can be toggled from the prompt.
type session struct {
	client     *apiClient
	lastState  map[string]any
	streaming  bool
	streamStop chan struct{}
	creds      map[string]sideCreds
}

type command struct {
	name      string
	shortName string
	usage     string
	desc      string
	handler   func(*session, []string) error
}

type registry struct {
	commands map[string]*command
	order    []*command
}

func newRegistry() *registry {
	r := &registry{commands: make(map[string]*command)}
	for _, c := range []*command{
		{"token", "t", "token", "Issue a fresh session token", cmdToken},
		{"start", "n", "start [human|saved|<model>] [human|saved|<model>]", "Start a game; bare args use server defaults", cmdStart},
		{"state", "s", "state", "Fetch and print the current game state", cmdState},
		{"move", "m", "move <san>", "Submit a move for whichever side is human", cmdMove},
		{"legal", "g", "legal <file> <rank>", "List legal destinations for the piece on a square", cmdLegal},
		{"stop", "x", "stop", "Stop the current game", cmdStop},
		{"reset", "r", "reset", "Stop and detach the current game", cmdReset},
		{"creds", "c", "creds <white|black>", "Interactively set an endpoint/key/model for a side (key input is masked)", cmdCreds},
		{"models", "d", "models <apiUrl> <apiKey>", "List models for an arbitrary endpoint", cmdModels},
		{"defaultmodels", "D", "defaultmodels <white|black>", "List models for a server-default endpoint", cmdDefaultModels},
		{"stream", "w", "stream", "Start printing stream events in the background", cmdStream},
		{"unstream", "u", "unstream", "Stop printing stream events", cmdUnstream},
		{"verbose", "v", "verbose", "Toggle request/response logging", cmdVerbose},
		{"help", "?", "help [command]", "Show available commands", nil},
		{"exit", "q", "exit", "Quit the console", cmdExit},
	} {
		r.register(c)
	}
	r.commands["help"].handler = r.helpHandler
	return r
}

func (r *registry) register(c *command) {
	r.commands[c.name] = c
	if c.shortName != "" {
		r.commands[c.shortName] = c
	}
	r.order = append(r.order, c)
}

func (r *registry) execute(s *session, line string) {
	parts := strings.Fields(line)
	if len(parts) == 0 {
		return
	}
	cmd, ok := r.commands[parts[0]]
	if !ok {
		fmt.Printf("%sunknown command: %s (try 'help')%s\n", colorRed, parts[0], colorReset)
		return
	}
	if err := cmd.handler(s, parts[1:]); err != nil {
		fmt.Printf("%serror: %s%s\n", colorRed, err, colorReset)
	}
}

func (r *registry) helpHandler(s *session, args []string) error {
	if len(args) > 0 {
		cmd, ok := r.commands[args[0]]
		if !ok {
			return fmt.Errorf("unknown command: %s", args[0])
		}
		fmt.Printf("%s%s%s - %s\nUsage: %s\n", colorCyan, cmd.name, colorReset, cmd.desc, cmd.usage)
		return nil
	}
	fmt.Printf("\n%sCommands:%s\n", colorCyan, colorReset)
	seen := make(map[string]bool)
	for _, cmd := range r.order {
		if seen[cmd.name] {
			continue
		}
		seen[cmd.name] = true
		fmt.Printf("  [%s%s%s] %-14s %s\n", colorCyan, cmd.shortName, colorReset, cmd.name, cmd.desc)
	}
	return nil
}

func cmdToken(s *session, args []string) error {
	token, err := s.client.issueToken()
	if err != nil {
		return err
	}
	fmt.Printf("%stoken: %s%s\n", colorGreen, token, colorReset)
	return nil
}

// parseSide turns "human", "", or "saved"/"model-name" into a
// start-request fragment for one color. An empty or "human" argument
// leaves every field empty so the server falls back to its configured
// default; "saved" pulls the endpoint/key entered via "creds".
func parseSide(s *session, color, arg string) map[string]any {
	out := map[string]any{}
	if arg == "" || arg == "human" {
		return out
	}
	if cred, ok := s.creds[color]; ok {
		out[color+"ApiUrl"] = cred.apiURL
		out[color+"ApiKey"] = cred.apiKey
		if arg != "saved" {
			out[color+"Model"] = arg
		} else {
			out[color+"Model"] = cred.model
		}
		return out
	}
	out[color+"Model"] = arg
	return out
}

func cmdStart(s *session, args []string) error {
	req := map[string]any{}
	var humanSides []string
	for i, color := range []string{"white", "black"} {
		if i >= len(args) {
			continue
		}
		if args[i] == "human" {
			humanSides = append(humanSides, color)
			continue
		}
		for k, v := range parseSide(s, color, args[i]) {
			req[k] = v
		}
	}
	if len(humanSides) == 1 {
		req["humanSide"] = humanSides[0]
	}
	resp, err := s.client.startGame(req)
	if err != nil {
		return err
	}
	fmt.Printf("%s%v%s\n", colorGreen, resp["message"], colorReset)
	printState(resp["state"])
	return nil
}

// readMaskedSecret reads a line from stdin without echoing it, for API
// keys that shouldn't land in terminal scrollback or shell history.
func readMaskedSecret(promptText string) (string, error) {
	fmt.Print(promptText)
	bytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func cmdCreds(s *session, args []string) error {
	if len(args) < 1 || (args[0] != "white" && args[0] != "black") {
		return fmt.Errorf("usage: creds <white|black>")
	}
	color := args[0]

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("%s endpoint: ", color)
	scanner.Scan()
	apiURL := strings.TrimSpace(scanner.Text())

	apiKey, err := readMaskedSecret(color + " api key: ")
	if err != nil {
		return err
	}

	fmt.Printf("%s model (optional): ", color)
	scanner.Scan()
	model := strings.TrimSpace(scanner.Text())

	if s.creds == nil {
		s.creds = make(map[string]sideCreds)
	}
	s.creds[color] = sideCreds{apiURL: apiURL, apiKey: apiKey, model: model}
	fmt.Printf("%ssaved %s credentials; use 'start saved saved' to start with them%s\n", colorGreen, color, colorReset)
	return nil
}

func cmdState(s *session, args []string) error {
	resp, err := s.client.state()
	if err != nil {
		return err
	}
	s.lastState = resp
	printState(resp)
	return nil
}

func cmdMove(s *session, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("usage: move <san>")
	}
	if err := s.client.move(args[0]); err != nil {
		return err
	}
	fmt.Printf("%smove accepted%s\n", colorGreen, colorReset)
	return nil
}

func cmdLegal(s *session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: legal <file> <rank>")
	}
	rank, err := strconv.Atoi(args[1])
	if err != nil {
		return fmt.Errorf("rank must be an integer: %w", err)
	}
	resp, err := s.client.legalMoves(args[0], rank)
	if err != nil {
		return err
	}
	moves, _ := resp["moves"].([]any)
	if len(moves) == 0 {
		fmt.Println("no legal moves")
		return nil
	}
	var dest []string
	for _, m := range moves {
		sq, _ := m.(map[string]any)
		dest = append(dest, fmt.Sprintf("%v%v", sq["file"], sq["rank"]))
	}
	fmt.Println(strings.Join(dest, " "))
	return nil
}

func cmdStop(s *session, args []string) error {
	if err := s.client.stop(); err != nil {
		return err
	}
	fmt.Printf("%sgame stopped%s\n", colorGreen, colorReset)
	return nil
}

func cmdReset(s *session, args []string) error {
	if err := s.client.reset(); err != nil {
		return err
	}
	fmt.Printf("%sgame reset%s\n", colorGreen, colorReset)
	return nil
}

func printModels(resp map[string]any) {
	models, _ := resp["models"].([]any)
	for _, m := range models {
		mv, _ := m.(map[string]any)
		fmt.Printf("  %-30v %v\n", mv["id"], mv["name"])
	}
}

func cmdModels(s *session, args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: models <apiUrl> <apiKey>")
	}
	resp, err := s.client.models(args[0], args[1])
	if err != nil {
		return err
	}
	printModels(resp)
	return nil
}

func cmdDefaultModels(s *session, args []string) error {
	side := "white"
	if len(args) > 0 {
		side = args[0]
	}
	resp, err := s.client.defaultModels(side)
	if err != nil {
		return err
	}
	printModels(resp)
	return nil
}

func cmdStream(s *session, args []string) error {
	if s.streaming {
		return fmt.Errorf("already streaming")
	}
	s.streaming = true
	s.streamStop = make(chan struct{})
	go func() {
		err := s.client.stream(s.streamStop, func(kind string, data []byte) {
			fmt.Printf("\n%s[%s]%s %s\n%s", colorCyan, kind, colorReset, string(data), prompt("arena"))
		})
		if err != nil {
			fmt.Printf("\n%sstream closed: %s%s\n%s", colorRed, err, colorReset, prompt("arena"))
		}
		s.streaming = false
	}()
	fmt.Println("streaming in background; use 'unstream' to stop")
	return nil
}

func cmdUnstream(s *session, args []string) error {
	if !s.streaming {
		return fmt.Errorf("not streaming")
	}
	close(s.streamStop)
	s.streaming = false
	return nil
}

func cmdVerbose(s *session, args []string) error {
	s.client.verbose = !s.client.verbose
	fmt.Printf("verbose: %v\n", s.client.verbose)
	return nil
}

func cmdExit(s *session, args []string) error {
	fmt.Printf("%sgoodbye%s\n", colorCyan, colorReset)
	os.Exit(0)
	return nil
}

func printState(v any) {
	state, ok := v.(map[string]any)
	if !ok {
		return
	}
	squaresRaw, _ := json.Marshal(state["squares"])
	var squares [8][8]map[string]any
	if err := json.Unmarshal(squaresRaw, &squares); err == nil {
		renderBoard(squares)
	}
	turn, _ := state["turn"].(string)
	fmt.Printf("turn: %s", colorForTurn(turn))
	if over, _ := state["over"].(bool); over {
		fmt.Printf("  %s(%v)%s", colorYellow, state["result"], colorReset)
	}
	fmt.Println()
}
