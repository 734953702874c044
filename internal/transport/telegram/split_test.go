package telegram

import (
	"strings"
	"testing"
)

func TestSplitTextShort(t *testing.T) {
	t.Parallel()
	got := splitText("hello", 100, "")
	if len(got) != 1 || got[0] != "hello" {
		t.Fatalf("got %v", got)
	}
}

func TestSplitTextPrefersNewlines(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("line one\n", 10)
	got := splitText(text, 40, "")
	if len(got) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(got))
	}
	for i, chunk := range got {
		if len([]rune(chunk)) > 40 {
			t.Fatalf("chunk %d over limit: %q", i, chunk)
		}
		if strings.HasPrefix(chunk, "\n") || strings.HasSuffix(chunk, "\n") {
			t.Fatalf("chunk %d has dangling newline: %q", i, chunk)
		}
	}
}

func TestSplitTextAvoidsDanglingHTMLTag(t *testing.T) {
	t.Parallel()
	text := strings.Repeat("x", 30) + "<b>bold text here</b>" + strings.Repeat("y", 30)
	got := splitText(text, 40, "HTML")
	for i, chunk := range got {
		opens := strings.Count(chunk, "<")
		closes := strings.Count(chunk, ">")
		if opens > closes {
			t.Fatalf("chunk %d splits inside a tag: %q", i, chunk)
		}
	}
}
