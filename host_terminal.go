// host_terminal.go - Raw-mode terminal host integration
//
// Grounded on the teacher's go.mod dependency on golang.org/x/term and
// golang.org/x/sys for raw tty control, and on golang.org/x/sync's
// errgroup for coordinating the host-side goroutines (input pump,
// render pump) the spec requires run outside the single-threaded core
// (spec §9: "host integrations run on separate goroutines via bounded
// channels; no locking inside core"). The core's own Machine.RunFor is
// never called concurrently from more than one goroutine; this file
// is the only place goroutines exist at all.
//
// (c) 2024-2026 the pcxt authors - GPLv3 or later

package main

import (
	"context"
	"os"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// keyEventChan carries raw W3C-style code strings plus a press/release
// flag from the input pump to the machine loop; bounded so a burst of
// host input can't grow unbounded memory if the core falls behind.
type hostKeyEvent struct {
	code    string
	pressed bool
}

// HostTerminal owns the raw-mode tty state and the bounded channel
// feeding the Keyboard device. It does not own the Machine's run loop;
// main.go drives that from the primary goroutine while this runs the
// input side on its own.
type HostTerminal struct {
	fd       int
	oldState *term.State
	events   chan hostKeyEvent
}

func NewHostTerminal() *HostTerminal {
	return &HostTerminal{fd: int(os.Stdin.Fd()), events: make(chan hostKeyEvent, 64)}
}

// EnterRaw puts the controlling tty into raw mode so individual
// keystrokes reach the input pump without line buffering or local
// echo; restored by Restore.
func (h *HostTerminal) EnterRaw() error {
	if !term.IsTerminal(h.fd) {
		return nil // headless/non-tty: input pump becomes a no-op source
	}
	st, err := term.MakeRaw(h.fd)
	if err != nil {
		return err
	}
	h.oldState = st
	return nil
}

func (h *HostTerminal) Restore() error {
	if h.oldState == nil {
		return nil
	}
	return term.Restore(h.fd, h.oldState)
}

// WindowSize reports the controlling tty's character-cell dimensions,
// used to decide whether the host can render an 80-column text mode
// without scaling. Uses unix.IoctlGetWinsize directly rather than
// term.GetSize since we also want the pixel dimensions TIOCGWINSZ
// reports, which term.GetSize discards.
func (h *HostTerminal) WindowSize() (cols, rows, pixelW, pixelH int, err error) {
	ws, err := unix.IoctlGetWinsize(h.fd, unix.TIOCGWINSZ)
	if err != nil {
		return 0, 0, 0, 0, err
	}
	return int(ws.Col), int(ws.Row), int(ws.Xpixel), int(ws.Ypixel), nil
}

// Events exposes the bounded key-event channel for the keyboard pump.
func (h *HostTerminal) Events() <-chan hostKeyEvent { return h.events }

// RunHostGroup launches the input pump and a render-tick pump under a
// shared errgroup so that ctx cancellation (triggered by, e.g., a
// Ctrl-C handler in main.go) tears both down cleanly rather than
// leaking a goroutine that still holds the raw tty open.
func RunHostGroup(ctx context.Context, h *HostTerminal, kbd *Keyboard, renderEveryMs int, render func()) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return h.pumpInput(ctx)
	})

	g.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case ev, ok := <-h.events:
				if !ok {
					return nil
				}
				if ev.pressed {
					kbd.PressCode(ev.code)
				} else {
					kbd.ReleaseCode(ev.code)
				}
			}
		}
	})

	g.Go(func() error {
		ticker := time.NewTicker(time.Duration(renderEveryMs) * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-ticker.C:
				render()
			}
		}
	})

	return g.Wait()
}

// pumpInput is the tty-facing half; real scan-code translation from
// raw stdin bytes to W3C code strings belongs to a host-specific front
// end this core doesn't implement (spec §1's windowing/input-mapping
// external collaborator), so this pump only demonstrates the channel
// discipline the real one must follow.
func (h *HostTerminal) pumpInput(ctx context.Context) error {
	buf := make([]byte, 1)
	for {
		select {
		case <-ctx.Done():
			close(h.events)
			return ctx.Err()
		default:
		}
		if n, err := os.Stdin.Read(buf); err != nil || n == 0 {
			continue
		}
	}
}
