package comicvine

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"
)

// Waiter blocks for a throttling backoff. Wait returns how long it actually
// waited; an implementation may return early on operator interrupt. The only
// error returned is the context's, when the run is cancelled mid-wait.
type Waiter interface {
	Wait(ctx context.Context, d time.Duration) (time.Duration, error)
}

// FullWaiter always waits the entire duration. Used in non-interactive runs
// where nobody is present to press a key.
type FullWaiter struct{}

func (FullWaiter) Wait(ctx context.Context, d time.Duration) (time.Duration, error) {
	start := time.Now()
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return d, nil
	case <-ctx.Done():
		return time.Since(start), ctx.Err()
	}
}

// ConsoleWaiter renders a live countdown on out and lets the operator cut the
// wait short with a single keypress on in. If in is not a terminal it behaves
// like FullWaiter.
type ConsoleWaiter struct {
	In  *os.File
	Out io.Writer
}

func (w ConsoleWaiter) Wait(ctx context.Context, d time.Duration) (time.Duration, error) {
	in := w.In
	if in == nil {
		in = os.Stdin
	}
	out := w.Out
	if out == nil {
		out = os.Stderr
	}

	var keypress <-chan struct{}
	stopReader := func() {}
	restore := func() {}
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		if oldState, err := term.MakeRaw(fd); err == nil {
			keypress, stopReader = watchKeypress(in)
			restore = func() { _ = term.Restore(fd, oldState) }
		}
	}
	defer restore()
	defer stopReader()

	start := time.Now()
	deadline := start.Add(d)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	timer := time.NewTimer(d)
	defer timer.Stop()

	fmt.Fprintf(out, "\rthrottled: retrying in %s (press any key to retry now) ", formatCountdown(d))
	for {
		select {
		case <-timer.C:
			fmt.Fprint(out, "\r\n")
			return d, nil
		case <-keypress:
			fmt.Fprint(out, "\rretrying now                                        \r\n")
			return time.Since(start), nil
		case <-ctx.Done():
			fmt.Fprint(out, "\r\n")
			return time.Since(start), ctx.Err()
		case <-ticker.C:
			fmt.Fprintf(out, "\rthrottled: retrying in %s (press any key to retry now) ", formatCountdown(time.Until(deadline)))
		}
	}
}

// watchKeypress reads a single byte from in on a goroutine, signalling on the
// returned channel. The stop func unblocks and joins the reader before
// returning, so a wait that ends by timer or cancellation leaves no pending
// read to swallow the operator's next keystroke on the shared descriptor.
func watchKeypress(in *os.File) (<-chan struct{}, func()) {
	keypress := make(chan struct{}, 1)
	done := make(chan struct{})
	go func() {
		defer close(done)
		var buf [1]byte
		if _, err := in.Read(buf[:]); err == nil {
			keypress <- struct{}{}
		}
	}()
	stop := func() {
		_ = in.SetReadDeadline(time.Now())
		<-done
		_ = in.SetReadDeadline(time.Time{})
	}
	return keypress, stop
}

func formatCountdown(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	return d.Round(time.Second).String()
}
