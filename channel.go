package main

// channelModes holds a Channel's boolean and parameterised modes.
type channelModes struct {
	// i: invite-only.
	inviteOnly bool

	// t: topic changes restricted to operators.
	topicLocked bool

	// k: key. Empty means not set.
	key string

	// l: user limit. 0 means unlimited.
	limit int
}

// Channel holds everything to do with a channel: membership, operator
// status, topic, modes, and the one-shot invite bypass list.
//
// Channel names are compared byte-exactly in this implementation (see
// spec.md §9 Open Questions and SPEC_FULL.md §C): no canonicalization is
// applied to the name.
type Channel struct {
	Name string

	// Members maps connection handle to operator status. The first
	// joiner becomes operator; invariant: if len(Members) > 0 then at
	// least one entry is true.
	Members map[ConnID]bool

	Topic string

	Modes channelModes

	// Invited is the set of connections INVITEd and not yet joined.
	// INVITE grants a one-shot bypass of mode i; joining consumes the
	// entry.
	Invited map[ConnID]struct{}
}

// NewChannel creates an empty channel with the given name.
func NewChannel(name string) *Channel {
	return &Channel{
		Name:    name,
		Members: make(map[ConnID]bool),
		Invited: make(map[ConnID]struct{}),
	}
}

// HasMember reports whether id is a member of the channel.
func (ch *Channel) HasMember(id ConnID) bool {
	_, ok := ch.Members[id]
	return ok
}

// IsOperator reports whether id is an operator of the channel. A
// non-member is never an operator.
func (ch *Channel) IsOperator(id ConnID) bool {
	return ch.Members[id]
}

// IsInvited reports whether id holds a one-shot invite bypass.
func (ch *Channel) IsInvited(id ConnID) bool {
	_, ok := ch.Invited[id]
	return ok
}

// Join adds id as a member. asOperator is true only for the very first
// member of a freshly created channel. Joining always consumes any
// pending invite for id.
func (ch *Channel) Join(id ConnID, asOperator bool) {
	ch.Members[id] = asOperator
	delete(ch.Invited, id)
}

// Part removes id from the channel's membership and invite list. It
// does not decide whether the channel itself should now be deleted;
// that is the ChannelStore's job (see channelstore.go).
func (ch *Channel) Part(id ConnID) {
	delete(ch.Members, id)
	delete(ch.Invited, id)

	// Maintain the operator invariant: if members remain but none are
	// operators (the departing member was the last op), promote an
	// arbitrary remaining member. Map iteration order is unspecified, but
	// any choice satisfies the invariant; spec.md only requires "at least
	// one member has isOperator=true", not a specific one.
	if len(ch.Members) == 0 {
		return
	}
	for _, isOp := range ch.Members {
		if isOp {
			return
		}
	}
	for mid := range ch.Members {
		ch.Members[mid] = true
		return
	}
}

// Invite adds id to the invite set.
func (ch *Channel) Invite(id ConnID) {
	ch.Invited[id] = struct{}{}
}

// SetOperator toggles id's operator flag. It is a no-op if id is not a
// member.
func (ch *Channel) SetOperator(id ConnID, isOperator bool) {
	if _, ok := ch.Members[id]; ok {
		ch.Members[id] = isOperator
	}
}

// MemberCount returns the number of members currently in the channel.
func (ch *Channel) MemberCount() int {
	return len(ch.Members)
}

// Empty reports whether the channel has no members left.
func (ch *Channel) Empty() bool {
	return len(ch.Members) == 0
}
