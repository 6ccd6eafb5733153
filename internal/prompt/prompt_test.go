package prompt

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"Y\n", true},
		{"yes\n", true},
		{"  YES \r\n", true},
		{"n\n", false},
		{"N\n", false},
		{"\n", false},
		{"", false},
		{"yep\n", false},
		{"y", true},
	}
	for _, tt := range tests {
		var out bytes.Buffer
		p := New(strings.NewReader(tt.input), &out)
		if got := p.Confirm("Install?"); got != tt.want {
			t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
		}
		if out.String() != "Install? [y/N] " {
			t.Errorf("prompt text = %q", out.String())
		}
	}
}

func TestConfirm_ReadsOneLinePerQuestion(t *testing.T) {
	p := New(strings.NewReader("y\nn\n"), &bytes.Buffer{})
	if !p.Confirm("first?") {
		t.Error("first answer should affirm")
	}
	if p.Confirm("second?") {
		t.Error("second answer should decline")
	}
	if p.Confirm("third?") {
		t.Error("exhausted input should decline")
	}
}

func TestPause(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader("\n"), &out)
	p.Pause()
	if !strings.Contains(out.String(), "Press enter to exit...") {
		t.Errorf("unexpected pause text %q", out.String())
	}
}

func TestStdin_HandsOverBufferedInput(t *testing.T) {
	p := New(strings.NewReader("y\ny\ny\n"), &bytes.Buffer{})
	if !p.Confirm("Install?") {
		t.Fatal("Confirm() = false")
	}

	rest, err := io.ReadAll(p.Stdin())
	if err != nil {
		t.Fatal(err)
	}
	if string(rest) != "y\ny\n" {
		t.Errorf("child input = %q, want the lines after the answer", rest)
	}
}

func TestStdin_UnbufferedReturnsSource(t *testing.T) {
	src := strings.NewReader("y\n")
	p := New(src, &bytes.Buffer{})
	if got := p.Stdin(); got != io.Reader(src) {
		t.Errorf("Stdin() = %T, want the source reader", got)
	}
}
