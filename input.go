package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/sys/unix"
	"golang.org/x/term"
)

// Key identifies a decoded logical key.
type Key int

const (
	KeyNone Key = iota
	KeyRune     // a printable byte, carried in KeyEvent.Ch
	KeyEscape
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
)

// KeyEvent is the result of one input poll. Produced fresh each poll, never
// stored.
type KeyEvent struct {
	Key Key
	Ch  byte
}

const escSequenceTimeout = 100 * time.Millisecond

// byteSource abstracts availability-checked byte reads so decoding can be
// tested without a terminal.
type byteSource interface {
	// Poll reports whether a byte is ready within the timeout. A zero
	// timeout checks without waiting.
	Poll(timeout time.Duration) (bool, error)
	ReadByte() (byte, error)
}

type stdinSource struct {
	fd int
}

func (s *stdinSource) Poll(timeout time.Duration) (bool, error) {
	fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
	for {
		n, err := unix.Poll(fds, int(timeout.Milliseconds()))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return n > 0, nil
	}
}

func (s *stdinSource) ReadByte() (byte, error) {
	var buf [1]byte
	n, err := unix.Read(s.fd, buf[:])
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, io.EOF
	}
	return buf[0], nil
}

// InputReader polls the terminal for single keystrokes without blocking the
// render loop. The terminal is switched to raw mode only for the duration of
// each poll and restored regardless of outcome.
type InputReader struct {
	fd         int
	src        byteSource
	escTimeout time.Duration
}

func NewInputReader() *InputReader {
	fd := int(os.Stdin.Fd())
	return &InputReader{
		fd:         fd,
		src:        &stdinSource{fd: fd},
		escTimeout: escSequenceTimeout,
	}
}

// Poll returns the next key event, or KeyNone immediately when no byte is
// waiting. A raw-mode failure is the only error path and is fatal to the
// caller.
func (r *InputReader) Poll() (KeyEvent, error) {
	oldState, err := term.MakeRaw(r.fd)
	if err != nil {
		return KeyEvent{}, fmt.Errorf("set raw mode: %w", err)
	}
	defer term.Restore(r.fd, oldState)

	return decodeKey(r.src, r.escTimeout)
}

// decodeKey reads at most one logical key from src. An escape byte is
// disambiguated into an arrow key by reading up to two follow-up bytes, each
// within escTimeout; on timeout or mismatch the escape is returned as a
// literal key.
func decodeKey(src byteSource, escTimeout time.Duration) (KeyEvent, error) {
	ready, err := src.Poll(0)
	if err != nil {
		return KeyEvent{}, err
	}
	if !ready {
		return KeyEvent{Key: KeyNone}, nil
	}

	b, err := src.ReadByte()
	if err != nil {
		return KeyEvent{}, err
	}
	if b != 0x1b {
		return KeyEvent{Key: KeyRune, Ch: b}, nil
	}

	if ready, err = src.Poll(escTimeout); err != nil || !ready {
		return KeyEvent{Key: KeyEscape}, err
	}
	b1, err := src.ReadByte()
	if err != nil {
		return KeyEvent{}, err
	}
	if b1 != '[' {
		return KeyEvent{Key: KeyEscape}, nil
	}

	if ready, err = src.Poll(escTimeout); err != nil || !ready {
		return KeyEvent{Key: KeyEscape}, err
	}
	b2, err := src.ReadByte()
	if err != nil {
		return KeyEvent{}, err
	}
	switch b2 {
	case 'A':
		return KeyEvent{Key: KeyUp}, nil
	case 'B':
		return KeyEvent{Key: KeyDown}, nil
	case 'C':
		return KeyEvent{Key: KeyRight}, nil
	case 'D':
		return KeyEvent{Key: KeyLeft}, nil
	}
	return KeyEvent{Key: KeyEscape}, nil
}
