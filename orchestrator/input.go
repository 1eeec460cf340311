package orchestrator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
)

// InputReader supplies direct operator text when the chat feed has nothing.
// ReadLine is the loop's only unbounded suspension point; it must honor ctx.
type InputReader interface {
	ReadLine(ctx context.Context) (string, error)
}

// StdinReader reads operator lines from standard input. The blocking read
// runs on its own goroutine so cancellation stays responsive; lines typed
// ahead are buffered until the next ReadLine.
type StdinReader struct {
	prompt string
	lines  chan string
	start  sync.Once
}

// NewStdinReader creates a reader that prints prompt before each wait.
func NewStdinReader(prompt string) *StdinReader {
	return &StdinReader{prompt: prompt, lines: make(chan string, 8)}
}

func (r *StdinReader) ReadLine(ctx context.Context) (string, error) {
	r.start.Do(func() {
		go func() {
			scanner := bufio.NewScanner(os.Stdin)
			for scanner.Scan() {
				r.lines <- scanner.Text()
			}
			close(r.lines)
		}()
	})

	if r.prompt != "" {
		fmt.Fprint(os.Stdout, r.prompt)
	}
	select {
	case line, ok := <-r.lines:
		if !ok {
			return "", io.EOF
		}
		return line, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}
