package main

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// lineEditor holds the state of one prompt line. Keys are fed one byte at a
// time; the terminal side lives in readPromptLine.
type lineEditor struct {
	prompt string
	line   []byte
	cursor int

	history []string
	histPos int
	draft   string

	esc    int
	escSeq strings.Builder
}

func newLineEditor(prompt string, history []string) *lineEditor {
	return &lineEditor{prompt: prompt, history: history, histPos: len(history)}
}

// feed applies one input byte. It reports whether the line is finished and,
// if so, whether input ended (Ctrl+C, or Ctrl+D on an empty line).
func (e *lineEditor) feed(b byte) (done, eof bool) {
	switch e.esc {
	case 1:
		e.esc = 0
		switch b {
		case '[':
			e.esc = 2
			e.escSeq.Reset()
		case 'b':
			e.wordLeft()
		case 'f':
			e.wordRight()
		}
		return false, false
	case 2:
		e.escSeq.WriteByte(b)
		if (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z') || b == '~' {
			e.esc = 0
			e.csi(e.escSeq.String())
		}
		return false, false
	}

	switch b {
	case 27:
		e.esc = 1
	case '\r', '\n':
		return true, false
	case 3:
		return true, true
	case 4:
		if len(e.line) == 0 {
			return true, true
		}
	case 127, 8:
		if e.cursor > 0 {
			e.line = append(e.line[:e.cursor-1], e.line[e.cursor:]...)
			e.cursor--
		}
	case 1:
		e.cursor = 0
	case 5:
		e.cursor = len(e.line)
	case 21: // Ctrl+U
		e.line = append(e.line[:0], e.line[e.cursor:]...)
		e.cursor = 0
	default:
		if b >= 32 {
			e.line = append(e.line, 0)
			copy(e.line[e.cursor+1:], e.line[e.cursor:])
			e.line[e.cursor] = b
			e.cursor++
		}
	}
	return false, false
}

func (e *lineEditor) csi(seq string) {
	switch seq {
	case "A":
		if e.histPos == 0 {
			return
		}
		if e.histPos == len(e.history) {
			e.draft = string(e.line)
		}
		e.histPos--
		e.setLine(e.history[e.histPos])
	case "B":
		if e.histPos >= len(e.history) {
			return
		}
		e.histPos++
		if e.histPos == len(e.history) {
			e.setLine(e.draft)
		} else {
			e.setLine(e.history[e.histPos])
		}
	case "C":
		if e.cursor < len(e.line) {
			e.cursor++
		}
	case "D":
		if e.cursor > 0 {
			e.cursor--
		}
	case "H":
		e.cursor = 0
	case "F":
		e.cursor = len(e.line)
	case "3~":
		if e.cursor < len(e.line) {
			e.line = append(e.line[:e.cursor], e.line[e.cursor+1:]...)
		}
	case "1;5D":
		e.wordLeft()
	case "1;5C":
		e.wordRight()
	}
}

func (e *lineEditor) setLine(s string) {
	e.line = append(e.line[:0], s...)
	e.cursor = len(e.line)
}

func (e *lineEditor) wordLeft() {
	for e.cursor > 0 && e.line[e.cursor-1] == ' ' {
		e.cursor--
	}
	for e.cursor > 0 && e.line[e.cursor-1] != ' ' {
		e.cursor--
	}
}

func (e *lineEditor) wordRight() {
	for e.cursor < len(e.line) && e.line[e.cursor] == ' ' {
		e.cursor++
	}
	for e.cursor < len(e.line) && e.line[e.cursor] != ' ' {
		e.cursor++
	}
}

// render returns the escape sequence that redraws the prompt line and
// leaves the terminal cursor at the edit position.
func (e *lineEditor) render() string {
	var b strings.Builder
	b.WriteString("\r")
	b.WriteString(e.prompt)
	b.Write(e.line)
	b.WriteString("\x1b[K")
	if e.cursor < len(e.line) {
		b.WriteString("\r")
		b.WriteString(e.prompt)
		b.Write(e.line[:e.cursor])
	}
	return b.String()
}

func (e *lineEditor) String() string { return string(e.line) }

// promptHistory is shared by every prompt in the process.
var promptHistory []string

func rememberLine(s string) {
	if strings.TrimSpace(s) != "" {
		promptHistory = append(promptHistory, s)
	}
}

var stdinReader = bufio.NewReader(os.Stdin)

// readPlainLine reads one line without terminal control. EOF with no input
// is returned as io.EOF.
func readPlainLine(prompt string, out io.Writer) (string, error) {
	_, _ = io.WriteString(out, prompt)
	s, err := stdinReader.ReadString('\n')
	if err != nil && (err != io.EOF || s == "") {
		return "", err
	}
	return strings.TrimRight(s, "\r\n"), nil
}
