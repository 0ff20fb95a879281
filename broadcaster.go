package main

import (
	"log"

	"github.com/horgh/irc"
)

// send encodes m and appends it to c's outbound buffer, marking it
// write-interested for the reactor. This is the only place a
// irc.Message ever gets turned into bytes; everything else in this file
// builds an irc.Message and calls send.
//
// Per spec.md §4.6, Broadcaster never writes synchronously — it only
// mutates buffers. I/O happens exclusively in the reactor's writability
// phase.
func (s *Server) send(c *Connection, m irc.Message) {
	encoded, err := m.Encode()
	if err != nil && err != irc.ErrTruncated {
		log.Printf("connection %s: unable to encode %s: %s", c, m, err)
		return
	}
	c.Enqueue([]byte(encoded))
}

// messageFromServer sends a message from the server itself (prefix
// ":<server-name>") to c.
func (s *Server) messageFromServer(c *Connection, command string, params []string) {
	s.send(c, irc.Message{
		Prefix:  s.Config.ServerName,
		Command: command,
		Params:  params,
	})
}

// numericReply sends a numeric reply to c. Per spec.md §6, numerics are
// "<code> <nick> [params] :<human-text>" from the server; nick is "*" if
// the connection has not chosen one yet. params's last element is the
// human-readable trailing text.
func (s *Server) numericReply(c *Connection, code string, params ...string) {
	nick := c.Nickname
	if len(nick) == 0 {
		nick = "*"
	}

	full := append([]string{nick}, params...)
	s.messageFromServer(c, code, full)
}

// relay sends a message from one client (from) to another (to),
// appearing with from's "nick!user@localhost" prefix.
func (s *Server) relay(from *Connection, to *Connection, command string, params []string) {
	s.send(to, irc.Message{
		Prefix:  from.Prefix(),
		Command: command,
		Params:  params,
	})
}

// broadcastToChannel sends command/params, appearing from `from`, to
// every member of ch. If skipSender is true, from itself is not sent
// the message (used for PRIVMSG's no-echo rule); otherwise from is
// included like any other member (used for JOIN/TOPIC/MODE/KICK
// notifications, which do echo to their origin).
//
// Per spec.md §4.6's ordering guarantee, this loop runs to completion
// (all appends happen) before handleLine returns, so fan-out for one
// inbound line is atomic with respect to other connections' observed
// order.
func (s *Server) broadcastToChannel(ch *Channel, from *Connection, command string, params []string, skipSender bool) {
	for id := range ch.Members {
		if skipSender && id == from.ID {
			continue
		}
		member, ok := s.Registry.Get(id)
		if !ok {
			continue
		}
		s.relay(from, member, command, params)
	}
}
