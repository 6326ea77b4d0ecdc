package console

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
)

// Input turns a reader into a stream of trimmed lines that can be awaited
// with a context.
type Input struct {
	lines <-chan string
	done  <-chan struct{}
	stop  chan struct{}
	once  sync.Once
}

// NewInput starts reading r in the background. Call Close to release the
// reader goroutine when lines are no longer consumed.
func NewInput(r io.Reader) *Input {
	lines := make(chan string)
	done := make(chan struct{})
	stop := make(chan struct{})
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(r)
		for scanner.Scan() {
			select {
			case lines <- strings.TrimSpace(scanner.Text()):
			case <-stop:
				return
			}
		}
	}()
	return &Input{lines: lines, done: done, stop: stop}
}

// Close stops delivering lines. A reader blocked in Read exits after its
// next line.
func (in *Input) Close() {
	in.once.Do(func() { close(in.stop) })
}

// ReadLine waits for the next line. ok is false once input is exhausted or
// ctx is done.
func (in *Input) ReadLine(ctx context.Context) (line string, ok bool) {
	select {
	case <-ctx.Done():
		return "", false
	case <-in.done:
		return "", false
	case line := <-in.lines:
		return line, true
	}
}

// Prompter asks yes/no questions on a terminal.
type Prompter struct {
	In  *Input
	Out io.Writer
}

// Confirm prints prompt and blocks for an answer. Anything but y/yes declines.
func (p Prompter) Confirm(ctx context.Context, prompt string) bool {
	fmt.Fprintf(p.Out, "%s [y/N]: ", prompt)
	answer, ok := p.In.ReadLine(ctx)
	if !ok {
		fmt.Fprintln(p.Out)
		return false
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true
	default:
		return false
	}
}
