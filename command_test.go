package main

import "testing"

func TestParseLine(t *testing.T) {
	cmd, err := parseLine([]byte("NICK alice"))
	if err != nil {
		t.Fatalf("parseLine: %s", err)
	}
	if cmd.Kind != CmdNick {
		t.Errorf("Kind = %v, want CmdNick", cmd.Kind)
	}
	if len(cmd.Params) != 1 || cmd.Params[0] != "alice" {
		t.Errorf("Params = %q", cmd.Params)
	}
}

func TestParseLineMatchesLowercaseCommand(t *testing.T) {
	cmd, err := parseLine([]byte("nick alice"))
	if err != nil {
		t.Fatalf("parseLine: %s", err)
	}
	if cmd.Kind != CmdNick {
		t.Errorf("Kind = %v, want CmdNick", cmd.Kind)
	}
	if cmd.Raw != "NICK" {
		t.Errorf("Raw = %q, want NICK", cmd.Raw)
	}
}

func TestParseLineTrailingParam(t *testing.T) {
	cmd, err := parseLine([]byte("PRIVMSG #general :hello there"))
	if err != nil {
		t.Fatalf("parseLine: %s", err)
	}
	if cmd.Kind != CmdPrivmsg {
		t.Errorf("Kind = %v, want CmdPrivmsg", cmd.Kind)
	}
	if len(cmd.Params) != 2 || cmd.Params[0] != "#general" || cmd.Params[1] != "hello there" {
		t.Errorf("Params = %q", cmd.Params)
	}
}

func TestParseLineUnknownCommand(t *testing.T) {
	cmd, err := parseLine([]byte("FROBNICATE x"))
	if err != nil {
		t.Fatalf("parseLine: %s", err)
	}
	if cmd.Kind != CmdUnknown {
		t.Errorf("Kind = %v, want CmdUnknown", cmd.Kind)
	}
	if cmd.Raw != "FROBNICATE" {
		t.Errorf("Raw = %q, want FROBNICATE", cmd.Raw)
	}
}

func TestParseLineTrimsParamWhitespace(t *testing.T) {
	cmd, err := parseLine([]byte("PRIVMSG #general :  hi there  "))
	if err != nil {
		t.Fatalf("parseLine: %s", err)
	}
	if len(cmd.Params) != 2 || cmd.Params[1] != "hi there" {
		t.Errorf("Params = %q", cmd.Params)
	}
}
