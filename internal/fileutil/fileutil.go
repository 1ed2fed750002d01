// Package fileutil provides file reading helpers for chart sources.
package fileutil

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ReadLines reads a chart source file into lines. A UTF-8 BOM is
// stripped, CRLF endings are normalized, and trailing whitespace is
// removed from each line.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read chart source: %w", err)
	}
	defer f.Close()
	return ReadLinesFrom(f)
}

// ReadLinesFrom reads chart source lines from a reader, applying the
// same normalization as ReadLines.
func ReadLinesFrom(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	first := true
	for scanner.Scan() {
		line := scanner.Text()
		if first {
			line = strings.TrimPrefix(line, "\uFEFF")
			first = false
		}
		line = strings.TrimRight(line, " \t\r")
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read chart source: %w", err)
	}

	// Drop trailing blank lines so the rendered sheet ends at content.
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines, nil
}
