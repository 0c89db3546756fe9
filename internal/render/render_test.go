package render

import (
	"strings"
	"testing"
)

func TestText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "", want: ""},
		{in: "plain english", want: "plain english"},
		{in: "使用Go语言", want: "使用 Go 语言"},
		{in: "版本2.5发布", want: "版本 2.5 发布"},
		{in: "巴黎(Paris)天气", want: "巴黎 (Paris) 天气"},
	}

	for _, tt := range tests {
		if got := Text(tt.in); got != tt.want {
			t.Errorf("Text(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestAnswer(t *testing.T) {
	out := Answer("**Sunny** in Paris\n\n- high 21C\n- low 12C")
	for _, want := range []string{"<strong>Sunny</strong>", "<li>high 21C</li>", "<ul>"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestAnswerDropsRawHTML(t *testing.T) {
	out := Answer("hello <script>alert(1)</script>")
	if strings.Contains(out, "<script>") {
		t.Fatalf("raw html leaked: %s", out)
	}
}

func TestMarkdownTable(t *testing.T) {
	out, err := Markdown("| a | b |\n|---|---|\n| 1 | 2 |")
	if err != nil {
		t.Fatalf("markdown: %v", err)
	}
	if !strings.Contains(out, "<table>") {
		t.Fatalf("GFM table not rendered: %s", out)
	}
}
