// Package input expands argument values that use - (stdin) or @file syntax.
package input

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ErrStdinUsed is returned when more than one value asks for stdin.
var ErrStdinUsed = errors.New("stdin can only be read once")

// Text resolves a single value: "-" reads all of stdin, "@path" reads the
// file, anything else is returned as is. Surrounding whitespace is trimmed
// from read content.
func Text(v string, stdin io.Reader) (string, error) {
	switch {
	case v == "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return strings.TrimSpace(string(data)), nil
	case strings.HasPrefix(v, "@"):
		path := strings.TrimPrefix(v, "@")
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", path, err)
		}
		return strings.TrimSpace(string(data)), nil
	}
	return v, nil
}

// Lines expands a list of values. "-" and "@path" contribute one entry per
// non-empty line; other values pass through.
func Lines(values []string, stdin io.Reader) ([]string, error) {
	var result []string
	stdinUsed := false
	for _, v := range values {
		switch {
		case v == "-":
			if stdinUsed {
				return nil, ErrStdinUsed
			}
			stdinUsed = true
			result = append(result, ReadLines(stdin)...)
		case strings.HasPrefix(v, "@"):
			path := strings.TrimPrefix(v, "@")
			file, err := os.Open(path)
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}
			result = append(result, ReadLines(file)...)
			file.Close()
		default:
			result = append(result, v)
		}
	}
	return result, nil
}

// ReadLines reads non-empty trimmed lines from a reader.
func ReadLines(r io.Reader) []string {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
