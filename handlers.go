package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/horgh/irc"
)

// passCommand implements spec.md §4.4's AwaitingPassword → 464/Closing
// state machine.
func (s *Server) passCommand(c *Connection, cmd Command) {
	given := ""
	if len(cmd.Params) > 0 {
		given = cmd.Params[0]
	}

	if given == s.Config.Password {
		c.Phase = AwaitingRegistration
		return
	}

	c.PasswordAttemptsRemaining--

	if c.PasswordAttemptsRemaining > 0 {
		s.numericReply(c, ErrPasswdMismatch, fmt.Sprintf(
			"Password incorrect, %d attempt(s) remaining", c.PasswordAttemptsRemaining))
		return
	}

	s.numericReply(c, ErrPasswdMismatch, "Password incorrect")
	s.closeConnection(c, "Too many password attempts")
}

// capCommand tolerates the non-RFC capability negotiation handshake
// modern clients send unconditionally, per spec.md §4.3.
func (s *Server) capCommand(c *Connection, cmd Command) {
	if len(cmd.Params) == 0 {
		return
	}

	switch strings.ToUpper(cmd.Params[0]) {
	case "LS":
		s.messageFromServer(c, "CAP", []string{"*", "LS", ""})
	case "END", "LIST":
		// No-op; we never advertise capabilities to negotiate.
	}
}

// nickCommand implements NICK for both registration and post-
// registration nick changes (spec.md §4.4).
func (s *Server) nickCommand(c *Connection, cmd Command) {
	if len(cmd.Params) == 0 || !isValidNick(cmd.Params[0]) {
		s.numericReply(c, ErrNoNicknameGiven, "No nickname given")
		return
	}

	nick := cmd.Params[0]

	if !s.Registry.NickAvailable(nick, c.ID) {
		s.numericReply(c, ErrNicknameInUse, nick, "Nickname is already in use")
		return
	}

	wasRegistered := c.Phase == Registered
	oldPrefix := ""
	if wasRegistered {
		oldPrefix = c.Prefix()
	}

	s.Registry.SetNick(c, nick)

	if wasRegistered {
		s.announceNickChange(c, oldPrefix, nick)
		return
	}

	s.maybeCompleteRegistration(c)
}

// announceNickChange tells every connection sharing a channel with c
// (each only once) about the nick change, using the prefix the old
// nick would have produced. If c shares no channel with anyone, it is
// still told about its own change.
func (s *Server) announceNickChange(c *Connection, oldPrefix, newNick string) {
	told := map[ConnID]struct{}{}

	for name := range c.Channels {
		ch, ok := s.Channels.Get(name)
		if !ok {
			continue
		}
		for id := range ch.Members {
			if _, done := told[id]; done {
				continue
			}
			member, ok := s.Registry.Get(id)
			if !ok {
				continue
			}
			s.send(member, irc.Message{
				Prefix:  oldPrefix,
				Command: "NICK",
				Params:  []string{newNick},
			})
			told[id] = struct{}{}
		}
	}

	if _, done := told[c.ID]; !done {
		s.send(c, irc.Message{Prefix: oldPrefix, Command: "NICK", Params: []string{newNick}})
	}
}

// userCommand implements USER (spec.md §4.4). Re-registration attempts
// on an already-Registered connection are silently ignored.
func (s *Server) userCommand(c *Connection, cmd Command) {
	if c.Phase == Registered {
		return
	}

	if len(cmd.Params) != 4 {
		s.numericReply(c, ErrNeedMoreParams, "USER", "Not enough parameters")
		return
	}

	c.Username = cmd.Params[0]
	c.RealName = cmd.Params[3]

	s.maybeCompleteRegistration(c)
}

// maybeCompleteRegistration transitions AwaitingRegistration →
// Registered once both a nickname and USER info are present, and sends
// the 001 welcome, per spec.md §4.4.
func (s *Server) maybeCompleteRegistration(c *Connection) {
	if c.Phase != AwaitingRegistration {
		return
	}
	if len(c.Nickname) == 0 || len(c.Username) == 0 {
		return
	}

	c.Phase = Registered

	s.numericReply(c, ReplyWelcome, fmt.Sprintf(
		"Welcome to the Internet Relay Network %s", c.Prefix()))
}

// joinCommand implements JOIN (spec.md §4.5), including the ordered
// invite/key/limit gates and the NAMES reply on success.
func (s *Server) joinCommand(c *Connection, cmd Command) {
	if len(cmd.Params) == 0 {
		s.numericReply(c, ErrNeedMoreParams, "JOIN", "Not enough parameters")
		return
	}

	name := cmd.Params[0]
	if !isValidChannel(name) {
		s.numericReply(c, ErrNoSuchChannel, name, "Invalid channel name")
		return
	}

	key := ""
	if len(cmd.Params) > 1 {
		key = cmd.Params[1]
	}

	// Idempotent no-op: already a member (spec.md §8 round-trip laws).
	if _, already := c.Channels[name]; already {
		return
	}

	ch, created := s.Channels.GetOrCreate(name)

	if !created {
		if ch.Modes.inviteOnly && !ch.IsInvited(c.ID) {
			s.numericReply(c, ErrInviteOnlyChan, name, "Cannot join channel (+i)")
			return
		}
		if len(ch.Modes.key) > 0 && ch.Modes.key != key {
			s.numericReply(c, ErrBadChannelKey, name, "Cannot join channel (+k)")
			return
		}
		if ch.Modes.limit > 0 && ch.MemberCount() >= ch.Modes.limit {
			s.numericReply(c, ErrChannelIsFull, name, "Cannot join channel (+l)")
			return
		}
	}

	ch.Join(c.ID, created)
	c.Channels[name] = struct{}{}

	s.broadcastToChannel(ch, c, "JOIN", []string{ch.Name}, false)

	names := make([]string, 0, len(ch.Members))
	for id, isOp := range ch.Members {
		member, ok := s.Registry.Get(id)
		if !ok {
			continue
		}
		nick := member.Nickname
		if isOp {
			nick = "@" + nick
		}
		names = append(names, nick)
	}

	s.numericReply(c, ReplyNameReply, "=", ch.Name, strings.Join(names, " "))
	s.numericReply(c, ReplyEndOfNames, ch.Name, "End of NAMES list")
}

// privmsgCommand implements PRIVMSG to either a channel or a nickname
// (spec.md §4.5). The sender never receives its own channel fan-out.
func (s *Server) privmsgCommand(c *Connection, cmd Command) {
	if len(cmd.Params) < 2 {
		s.numericReply(c, ErrNeedMoreParams, "PRIVMSG", "Not enough parameters")
		return
	}

	target := cmd.Params[0]
	text := cmd.Params[1]

	if len(target) > 0 && target[0] == '#' {
		ch, ok := s.Channels.Get(target)
		if !ok || !ch.HasMember(c.ID) {
			s.numericReply(c, ErrCannotSendToChan, target, "Cannot send to channel")
			return
		}
		s.broadcastToChannel(ch, c, "PRIVMSG", []string{target, text}, true)
		return
	}

	dest, ok := s.Registry.FindByNick(target)
	if !ok {
		s.numericReply(c, ErrNoSuchNick, target, "No such nick/channel")
		return
	}
	s.relay(c, dest, "PRIVMSG", []string{target, text})
}

// topicCommand implements TOPIC query and set (spec.md §4.5).
func (s *Server) topicCommand(c *Connection, cmd Command) {
	if len(cmd.Params) == 0 {
		s.numericReply(c, ErrNeedMoreParams, "TOPIC", "Not enough parameters")
		return
	}

	name := cmd.Params[0]
	ch, ok := s.Channels.Get(name)
	if !ok {
		s.numericReply(c, ErrNoSuchChannel, name, "No such channel")
		return
	}
	if !ch.HasMember(c.ID) {
		s.numericReply(c, ErrNotOnChannel, name, "You're not on that channel")
		return
	}

	if len(cmd.Params) == 1 {
		if len(ch.Topic) == 0 {
			s.numericReply(c, ReplyNoTopic, name, "No topic is set")
			return
		}
		s.numericReply(c, ReplyTopic, name, ch.Topic)
		return
	}

	if ch.Modes.topicLocked && !ch.IsOperator(c.ID) {
		s.numericReply(c, ErrChanOPrivsNeeded, name, "You're not channel operator")
		return
	}

	newTopic := cmd.Params[1]
	if len(newTopic) > maxTopicLength {
		newTopic = newTopic[:maxTopicLength]
	}
	ch.Topic = newTopic

	s.broadcastToChannel(ch, c, "TOPIC", []string{name, newTopic}, false)
}

// modeCommand implements channel MODE: query form and the i/t/k/o/l
// letters (spec.md §4.5).
func (s *Server) modeCommand(c *Connection, cmd Command) {
	if len(cmd.Params) == 0 {
		s.numericReply(c, ErrNeedMoreParams, "MODE", "Not enough parameters")
		return
	}

	name := cmd.Params[0]
	ch, ok := s.Channels.Get(name)
	if !ok {
		s.numericReply(c, ErrNoSuchChannel, name, "No such channel")
		return
	}

	if len(cmd.Params) == 1 {
		s.numericReply(c, ReplyChannelModeIs, name, formatModeString(ch))
		return
	}

	if !ch.IsOperator(c.ID) {
		s.numericReply(c, ErrChanOPrivsNeeded, name, "You're not channel operator")
		return
	}

	modestring := cmd.Params[1]
	if len(modestring) < 2 || (modestring[0] != '+' && modestring[0] != '-') {
		s.numericReply(c, ErrUnknownMode, modestring, "is unknown mode char")
		return
	}
	adding := modestring[0] == '+'
	letter := modestring[1]

	const argIdx = 2
	arg := ""

	switch letter {
	case 'i':
		ch.Modes.inviteOnly = adding

	case 't':
		ch.Modes.topicLocked = adding

	case 'k':
		if adding {
			if len(cmd.Params) <= argIdx {
				s.numericReply(c, ErrNeedMoreParams, "MODE", "Not enough parameters")
				return
			}
			arg = cmd.Params[argIdx]
			ch.Modes.key = arg
		} else {
			ch.Modes.key = ""
		}

	case 'o':
		if len(cmd.Params) <= argIdx {
			s.numericReply(c, ErrNeedMoreParams, "MODE", "Not enough parameters")
			return
		}
		targetNick := cmd.Params[argIdx]
		target, ok := s.Registry.FindByNick(targetNick)
		if !ok || !ch.HasMember(target.ID) {
			s.numericReply(c, ErrNotOnChannel, targetNick, "not on that channel")
			return
		}
		ch.SetOperator(target.ID, adding)
		arg = targetNick

	case 'l':
		if adding {
			if len(cmd.Params) <= argIdx {
				s.numericReply(c, ErrNeedMoreParams, "MODE", "Not enough parameters")
				return
			}
			n, err := strconv.Atoi(cmd.Params[argIdx])
			if err != nil || n < 0 {
				s.numericReply(c, ErrUnknownMode, modestring, "invalid limit")
				return
			}
			ch.Modes.limit = n
			arg = cmd.Params[argIdx]
		} else {
			ch.Modes.limit = 0
		}

	default:
		s.numericReply(c, ErrUnknownMode, string(letter), "is unknown mode char")
		return
	}

	params := []string{name, modestring}
	if len(arg) > 0 {
		params = append(params, arg)
	}
	s.broadcastToChannel(ch, c, "MODE", params, false)
}

// formatModeString renders a channel's current modes for the MODE query
// form (RPL_CHANNELMODEIS).
func formatModeString(ch *Channel) string {
	flags := "+"
	var args []string

	if ch.Modes.inviteOnly {
		flags += "i"
	}
	if ch.Modes.topicLocked {
		flags += "t"
	}
	if len(ch.Modes.key) > 0 {
		flags += "k"
		args = append(args, ch.Modes.key)
	}
	if ch.Modes.limit > 0 {
		flags += "l"
		args = append(args, strconv.Itoa(ch.Modes.limit))
	}

	if len(args) == 0 {
		return flags
	}
	return flags + " " + strings.Join(args, " ")
}

// kickCommand implements KICK (spec.md §4.5). The broadcast happens
// before the membership removal, so the target is told of its own
// kick, then is actually removed.
func (s *Server) kickCommand(c *Connection, cmd Command) {
	if len(cmd.Params) < 2 {
		s.numericReply(c, ErrNeedMoreParams, "KICK", "Not enough parameters")
		return
	}

	name := cmd.Params[0]
	targetNick := cmd.Params[1]
	reason := "Kicked by operator"
	if len(cmd.Params) > 2 && len(cmd.Params[2]) > 0 {
		reason = cmd.Params[2]
	}

	ch, ok := s.Channels.Get(name)
	if !ok {
		s.numericReply(c, ErrNoSuchChannel, name, "No such channel")
		return
	}
	if !ch.IsOperator(c.ID) {
		s.numericReply(c, ErrChanOPrivsNeeded, name, "You're not channel operator")
		return
	}

	target, ok := s.Registry.FindByNick(targetNick)
	if !ok || !ch.HasMember(target.ID) {
		s.numericReply(c, ErrNotOnChannel, targetNick, "not on that channel")
		return
	}

	s.broadcastToChannel(ch, c, "KICK", []string{name, targetNick, reason}, false)

	ch.Part(target.ID)
	delete(target.Channels, name)
	s.Channels.DeleteIfEmpty(name)
}

// inviteCommand implements INVITE (spec.md §4.5).
func (s *Server) inviteCommand(c *Connection, cmd Command) {
	if len(cmd.Params) < 2 {
		s.numericReply(c, ErrNeedMoreParams, "INVITE", "Not enough parameters")
		return
	}

	targetNick := cmd.Params[0]
	name := cmd.Params[1]

	ch, ok := s.Channels.Get(name)
	if !ok {
		s.numericReply(c, ErrNoSuchChannel, name, "No such channel")
		return
	}
	if !ch.IsOperator(c.ID) {
		s.numericReply(c, ErrChanOPrivsNeeded, name, "You're not channel operator")
		return
	}

	target, ok := s.Registry.FindByNick(targetNick)
	if !ok {
		s.numericReply(c, ErrNoSuchNick, targetNick, "No such nick/channel")
		return
	}

	ch.Invite(target.ID)
	s.relay(c, target, "INVITE", []string{targetNick, name})
	s.numericReply(c, ReplyInviting, targetNick, name)
}

// pingCommand implements PING (spec.md §4.5).
func (s *Server) pingCommand(c *Connection, cmd Command) {
	token := ""
	if len(cmd.Params) > 0 {
		token = cmd.Params[0]
	}
	s.messageFromServer(c, "PONG", []string{s.Config.ServerName, token})
}

// whoisCommand implements WHOIS (spec.md §4.5).
func (s *Server) whoisCommand(c *Connection, cmd Command) {
	if len(cmd.Params) == 0 {
		s.numericReply(c, ErrNoSuchNick, "*", "No such nick/channel")
		return
	}

	nick := cmd.Params[0]
	target, ok := s.Registry.FindByNick(nick)
	if !ok {
		s.numericReply(c, ErrNoSuchNick, nick, "No such nick/channel")
		return
	}

	s.numericReply(c, ReplyWhoisUser, target.Nickname, target.Username, "localhost", "*", target.RealName)
	s.numericReply(c, ReplyEndOfWhois, target.Nickname, "End of WHOIS list")
}

// whoCommand implements WHO #channel, a thin catbox-style extension of
// NAMES that the original source does not have (see SPEC_FULL.md §C).
func (s *Server) whoCommand(c *Connection, cmd Command) {
	if len(cmd.Params) == 0 {
		s.numericReply(c, ReplyEndOfWho, "*", "End of WHO list")
		return
	}

	name := cmd.Params[0]
	ch, ok := s.Channels.Get(name)
	if !ok {
		s.numericReply(c, ReplyEndOfWho, name, "End of WHO list")
		return
	}

	for id, isOp := range ch.Members {
		member, ok := s.Registry.Get(id)
		if !ok {
			continue
		}
		flags := "H"
		if isOp {
			flags += "@"
		}
		s.numericReply(c, ReplyWhoReply, ch.Name, member.Username, "localhost",
			s.Config.ServerName, member.Nickname, flags, "0 "+member.RealName)
	}

	s.numericReply(c, ReplyEndOfWho, name, "End of WHO list")
}

// quitCommand implements QUIT (spec.md §4.5).
func (s *Server) quitCommand(c *Connection, cmd Command) {
	reason := "Client Quit"
	if len(cmd.Params) > 0 && len(cmd.Params[0]) > 0 {
		reason = cmd.Params[0]
	}
	s.closeConnection(c, reason)
}
