//go:build !linux

package main

import "io"

func readPromptLine(prompt string, out io.Writer) (string, error) {
	return readPlainLine(prompt, out)
}
