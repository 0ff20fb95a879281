package main

import (
	"strings"

	"github.com/horgh/irc"
)

// CommandKind is the exhaustive tag of a parsed client command. It
// replaces the virtual-dispatch-over-command-name pattern of the
// original source (spec.md §9 Design Notes) with a closed enum the
// dispatcher switches over.
type CommandKind int

const (
	CmdUnknown CommandKind = iota
	CmdPass
	CmdNick
	CmdUser
	CmdJoin
	CmdPrivmsg
	CmdTopic
	CmdMode
	CmdKick
	CmdInvite
	CmdPing
	CmdQuit
	CmdWhois
	CmdWho
	CmdCap
)

var commandKinds = map[string]CommandKind{
	"PASS":    CmdPass,
	"NICK":    CmdNick,
	"USER":    CmdUser,
	"JOIN":    CmdJoin,
	"PRIVMSG": CmdPrivmsg,
	"TOPIC":   CmdTopic,
	"MODE":    CmdMode,
	"KICK":    CmdKick,
	"INVITE":  CmdInvite,
	"PING":    CmdPing,
	"QUIT":    CmdQuit,
	"WHOIS":   CmdWhois,
	"WHO":     CmdWho,
	"CAP":     CmdCap,
}

// Command is a tokenised, dispatch-ready client command. Raw preserves
// the original (uppercased) command token so an Unknown command can
// still be named in a 421 reply.
type Command struct {
	Kind   CommandKind
	Raw    string
	Params []string
}

// parseLine turns a single framed line (already stripped of its CRLF/LF
// terminator by the Framer) into a Command.
//
// irc.ParseMessage wants the terminator present, so we restore a
// canonical "\r\n" before handing the line to it; this keeps the Framer
// and the wire codec each owning exactly one concern.
func parseLine(line []byte) (Command, error) {
	m, err := irc.ParseMessage(string(line) + "\r\n")
	if err != nil && err != irc.ErrTruncated {
		return Command{}, err
	}

	return ParseCommand(m), nil
}

// ParseCommand converts a decoded irc.Message into a Command, trimming
// leading/trailing whitespace from parameters per spec.md §4.3 and
// uppercasing the command token for matching.
func ParseCommand(m irc.Message) Command {
	raw := strings.ToUpper(m.Command)

	params := make([]string, len(m.Params))
	for i, p := range m.Params {
		params[i] = strings.TrimSpace(p)
	}

	kind, ok := commandKinds[raw]
	if !ok {
		kind = CmdUnknown
	}

	return Command{
		Kind:   kind,
		Raw:    raw,
		Params: params,
	}
}
