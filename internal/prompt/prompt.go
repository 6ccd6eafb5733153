// Package prompt implements the interactive questions asked during a run.
package prompt

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
)

// Prompter reads answers one line at a time.
type Prompter struct {
	src io.Reader     // the raw input stream
	in  *bufio.Reader // buffered view of src used for answers
	out io.Writer
}

// New returns a prompter reading from in and printing questions to out.
func New(in io.Reader, out io.Writer) *Prompter {
	return &Prompter{src: in, in: bufio.NewReader(in), out: out}
}

// Stdin returns the input for a child process, continuing right after the last
// answer. Input the prompter buffered ahead of that point is handed over first;
// with nothing buffered the raw stream is returned as is, so a terminal stays a
// terminal for the child.
func (p *Prompter) Stdin() io.Reader {
	n := p.in.Buffered()
	if n == 0 {
		return p.src
	}
	ahead := make([]byte, n)
	if _, err := io.ReadFull(p.in, ahead); err != nil {
		return p.src
	}
	return io.MultiReader(bytes.NewReader(ahead), p.src)
}

// NewStdio returns a prompter on the process's terminal streams.
func NewStdio() *Prompter {
	return New(os.Stdin, os.Stdout)
}

// Confirm asks a y/N question. Only "y" or "yes" (any case) affirm; anything else,
// including an empty line or end of input, declines.
func (p *Prompter) Confirm(question string) bool {
	fmt.Fprintf(p.out, "%s [y/N] ", question)
	answer := strings.ToLower(strings.TrimSpace(p.readLine()))
	return answer == "y" || answer == "yes"
}

// Pause blocks until the user presses enter, so a window opened by double-click
// stays up long enough to read the log.
func (p *Prompter) Pause() {
	fmt.Fprint(p.out, "Press enter to exit...")
	p.readLine()
	fmt.Fprintln(p.out)
}

func (p *Prompter) readLine() string {
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return ""
	}
	return line
}
