package iocli

import (
	"fmt"
	"io"
	"os"
	"sync"

	"golang.org/x/term"
)

// Stdio пишет в произвольный writer. Вывод сериализован: уведомления
// движка приходят из горутины транспорта.
type Stdio struct {
	out         io.Writer
	mu          sync.Mutex
	interactive bool
}

// NewStdio возвращает IO поверх os.Stdout
func NewStdio() IO {
	return &Stdio{
		out:         os.Stdout,
		interactive: term.IsTerminal(int(os.Stdout.Fd())),
	}
}

// NewWriter возвращает неинтерактивный IO поверх w
func NewWriter(w io.Writer) IO {
	return &Stdio{out: w}
}

func (s *Stdio) Println(a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintln(s.out, a...)
}

func (s *Stdio) Printf(format string, a ...any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = fmt.Fprintf(s.out, format, a...)
}

func (s *Stdio) Interactive() bool {
	return s.interactive
}
