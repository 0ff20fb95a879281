package main

import "testing"

func TestIsValidNick(t *testing.T) {
	tests := []struct {
		nick string
		want bool
	}{
		{"alice", true},
		{"a", true},
		{"", false},
		{"   ", false},
		{" bob ", true},
	}

	for _, tt := range tests {
		if got := isValidNick(tt.nick); got != tt.want {
			t.Errorf("isValidNick(%q) = %v, want %v", tt.nick, got, tt.want)
		}
	}
}

func TestIsValidChannel(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"#general", true},
		{"#a", true},
		{"#", false},
		{"general", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := isValidChannel(tt.name); got != tt.want {
			t.Errorf("isValidChannel(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
