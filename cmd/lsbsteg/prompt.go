package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"
)

// promptMarker asks for the marker on stdin, without echo when stdin is a terminal.
func promptMarker(env *environment) (string, error) {
	fmt.Fprint(env.stderr, "Enter the Magic String: ")

	fd := int(env.stdin.Fd())
	if term.IsTerminal(fd) {
		marker, err := term.ReadPassword(fd)
		fmt.Fprintln(env.stderr)
		if err != nil {
			return "", fmt.Errorf("failed to read the magic string: %w", err)
		}
		return strings.TrimSpace(string(marker)), nil
	}
	return readMarker(env.stdin)
}

// readMarker reads the first whitespace-delimited word from r.
func readMarker(r io.Reader) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Split(bufio.ScanWords)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return "", fmt.Errorf("failed to read the magic string: %w", err)
		}
		return "", fmt.Errorf("failed to read the magic string: %w", io.ErrUnexpectedEOF)
	}
	return scanner.Text(), nil
}

// markerFrom returns flagValue, or prompts when it is empty.
func markerFrom(env *environment, flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env.stdin == nil {
		return "", fmt.Errorf("no marker given and no input to prompt on")
	}
	return promptMarker(env)
}
