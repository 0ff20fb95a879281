package main

// ChannelStore owns all Channel entities and looks them up by name,
// creating on first join. Component H of spec.md §2.
//
// Open Question (spec.md §9): empty-channel lifecycle is left to the
// implementer. We garbage-collect: a channel that reaches zero members
// is removed immediately, since nothing in this implementation persists
// channel state across a membership gap and an unbounded map of
// long-dead channels is otherwise the only alternative.
type ChannelStore struct {
	channels map[string]*Channel
}

// NewChannelStore creates an empty store.
func NewChannelStore() *ChannelStore {
	return &ChannelStore{channels: make(map[string]*Channel)}
}

// Get looks up a channel by exact (byte-for-byte) name.
func (s *ChannelStore) Get(name string) (*Channel, bool) {
	ch, ok := s.channels[name]
	return ch, ok
}

// GetOrCreate returns the named channel, creating it (with no members)
// if it does not already exist. The caller is responsible for adding
// the first member and granting it operator status.
func (s *ChannelStore) GetOrCreate(name string) (ch *Channel, created bool) {
	ch, ok := s.channels[name]
	if ok {
		return ch, false
	}
	ch = NewChannel(name)
	s.channels[name] = ch
	return ch, true
}

// Delete removes a channel unconditionally.
func (s *ChannelStore) Delete(name string) {
	delete(s.channels, name)
}

// DeleteIfEmpty removes the named channel if it has no members left.
func (s *ChannelStore) DeleteIfEmpty(name string) {
	if ch, ok := s.channels[name]; ok && ch.Empty() {
		delete(s.channels, name)
	}
}

// All returns every channel currently known, for iteration (e.g. when a
// connection disconnects and must be removed from every channel it was
// a member of).
func (s *ChannelStore) All() map[string]*Channel {
	return s.channels
}

// Len reports how many channels currently exist.
func (s *ChannelStore) Len() int {
	return len(s.channels)
}

// Clear removes every channel. Called on shutdown (spec.md §5).
func (s *ChannelStore) Clear() {
	s.channels = make(map[string]*Channel)
}
