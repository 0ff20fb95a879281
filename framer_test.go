package main

import (
	"bytes"
	"testing"
)

func TestExtractLines(t *testing.T) {
	lines, rest := extractLines([]byte("NICK alice\r\nUSER a 0 * :A\r\n"))
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	if string(lines[0]) != "NICK alice" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if string(lines[1]) != "USER a 0 * :A" {
		t.Errorf("line 1 = %q", lines[1])
	}
	if len(rest) != 0 {
		t.Errorf("rest = %q, want empty", rest)
	}
}

func TestExtractLinesPartial(t *testing.T) {
	lines, rest := extractLines([]byte("NICK alice\r\nUSER a 0"))
	if len(lines) != 1 {
		t.Fatalf("got %d lines, want 1", len(lines))
	}
	if string(rest) != "USER a 0" {
		t.Errorf("rest = %q, want %q", rest, "USER a 0")
	}
}

func TestExtractLinesBareLF(t *testing.T) {
	lines, _ := extractLines([]byte("PING :x\n"))
	if len(lines) != 1 || string(lines[0]) != "PING :x" {
		t.Errorf("got %q", lines)
	}
}

func TestExtractLinesSkipsEmpty(t *testing.T) {
	lines, _ := extractLines([]byte("\r\n\r\nNICK alice\r\n"))
	if len(lines) != 1 || string(lines[0]) != "NICK alice" {
		t.Errorf("got %q", lines)
	}
}

func TestExtractLinesCopiesBackingArray(t *testing.T) {
	buf := []byte("NICK alice\r\n")
	lines, _ := extractLines(buf)
	buf[0] = 'X'
	if !bytes.Equal(lines[0], []byte("NICK alice")) {
		t.Errorf("line was aliased to the mutated input buffer: %q", lines[0])
	}
}
