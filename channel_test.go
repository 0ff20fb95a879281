package main

import "testing"

func TestChannelJoinFirstMemberIsOperator(t *testing.T) {
	ch := NewChannel("#general")
	ch.Join(1, true)

	if !ch.IsOperator(1) {
		t.Error("first joiner should be operator")
	}
	if !ch.HasMember(1) {
		t.Error("expected member 1")
	}
}

func TestChannelJoinSubsequentMemberIsNotOperator(t *testing.T) {
	ch := NewChannel("#general")
	ch.Join(1, true)
	ch.Join(2, false)

	if ch.IsOperator(2) {
		t.Error("second joiner should not be operator")
	}
}

func TestChannelPartPromotesWhenLastOperatorLeaves(t *testing.T) {
	ch := NewChannel("#general")
	ch.Join(1, true)
	ch.Join(2, false)

	ch.Part(1)

	if !ch.IsOperator(2) {
		t.Error("remaining member should be promoted to operator")
	}
}

func TestChannelPartLastMemberEmptiesChannel(t *testing.T) {
	ch := NewChannel("#general")
	ch.Join(1, true)
	ch.Part(1)

	if !ch.Empty() {
		t.Error("channel should be empty after last member parts")
	}
}

func TestChannelInviteConsumedOnJoin(t *testing.T) {
	ch := NewChannel("#general")
	ch.Join(1, true)
	ch.Modes.inviteOnly = true

	ch.Invite(2)
	if !ch.IsInvited(2) {
		t.Fatal("expected 2 to be invited")
	}

	ch.Join(2, false)
	if ch.IsInvited(2) {
		t.Error("invite should be consumed on join")
	}
}

func TestChannelSetOperatorRequiresMembership(t *testing.T) {
	ch := NewChannel("#general")
	ch.Join(1, true)

	ch.SetOperator(2, true)
	if ch.IsOperator(2) {
		t.Error("SetOperator should be a no-op for a non-member")
	}
}
