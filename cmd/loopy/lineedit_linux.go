//go:build linux

package main

import (
	"io"
	"os"

	"golang.org/x/sys/unix"
)

// readPromptLine reads one line from stdin. On a terminal it switches to raw
// mode for cursor movement and history; otherwise it reads a plain line.
func readPromptLine(prompt string, out io.Writer) (string, error) {
	if !stdinIsTTY() {
		return readPlainLine(prompt, out)
	}

	fd := int(os.Stdin.Fd())
	saved, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		return readPlainLine(prompt, out)
	}
	raw := *saved
	raw.Lflag &^= unix.ICANON | unix.ECHO
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, unix.TCSETS, &raw); err != nil {
		return "", err
	}
	defer func() {
		_ = unix.IoctlSetTermios(fd, unix.TCSETS, saved)
	}()

	ed := newLineEditor(prompt, promptHistory)
	_, _ = io.WriteString(out, prompt)
	var buf [16]byte
	for {
		n, err := os.Stdin.Read(buf[:])
		if err != nil {
			return "", err
		}
		for _, b := range buf[:n] {
			done, eof := ed.feed(b)
			if eof {
				_, _ = io.WriteString(out, "\r\n")
				return "", io.EOF
			}
			if done {
				_, _ = io.WriteString(out, "\r\n")
				rememberLine(ed.String())
				return ed.String(), nil
			}
		}
		_, _ = io.WriteString(out, ed.render())
	}
}
