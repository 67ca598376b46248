package llmclient

import "testing"

func runDemux(t *testing.T, chunks []string) (string, string) {
	t.Helper()
	d := newDemux()
	var content, thinking string
	emit := func(kind, text string) {
		switch kind {
		case KindContent:
			content += text
		case KindThinking:
			thinking += text
		}
	}
	for _, c := range chunks {
		d.feed(c, emit)
	}
	d.Flush(emit)
	return content, thinking
}

func TestDemuxSingleChunk(t *testing.T) {
	content, thinking := runDemux(t, []string{"before <think>reasoning</think> after"})
	if content != "before  after" {
		t.Fatalf("content = %q", content)
	}
	if thinking != "reasoning" {
		t.Fatalf("thinking = %q", thinking)
	}
}

func TestDemuxTagSplitAcrossChunks(t *testing.T) {
	chunks := []string{"before <th", "ink>reaso", "ning</th", "ink> after"}
	content, thinking := runDemux(t, chunks)
	if content != "before  after" {
		t.Fatalf("content = %q", content)
	}
	if thinking != "reasoning" {
		t.Fatalf("thinking = %q", thinking)
	}
}

func TestDemuxNoTags(t *testing.T) {
	content, thinking := runDemux(t, []string{"just ", "plain content"})
	if content != "just plain content" {
		t.Fatalf("content = %q", content)
	}
	if thinking != "" {
		t.Fatalf("expected no thinking text, got %q", thinking)
	}
}

func TestDemuxCaseInsensitiveTag(t *testing.T) {
	content, thinking := runDemux(t, []string{"a <THINK>b</THINK> c"})
	if content != "a  c" {
		t.Fatalf("content = %q", content)
	}
	if thinking != "b" {
		t.Fatalf("thinking = %q", thinking)
	}
}

func TestDemuxUnterminatedTagFlushesAsThinking(t *testing.T) {
	content, thinking := runDemux(t, []string{"a <think>residual"})
	if content != "a " {
		t.Fatalf("content = %q", content)
	}
	if thinking != "residual" {
		t.Fatalf("thinking = %q", thinking)
	}
}
