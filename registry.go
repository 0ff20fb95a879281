package main

// Registry indexes connections by socket handle and by (byte-exact)
// nickname, and enforces nickname uniqueness. Component R of spec.md §2.
type Registry struct {
	byID   map[ConnID]*Connection
	byNick map[string]*Connection
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byID:   make(map[ConnID]*Connection),
		byNick: make(map[string]*Connection),
	}
}

// Add registers a new connection by handle. It has no nickname yet, so
// it is not indexed by nick.
func (r *Registry) Add(c *Connection) {
	r.byID[c.ID] = c
}

// Get looks up a connection by handle.
func (r *Registry) Get(id ConnID) (*Connection, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// NickAvailable reports whether nick is free, ignoring the connection
// identified by except (so a client can "change" to the nick it already
// holds, or we can check availability while excluding the requester).
func (r *Registry) NickAvailable(nick string, except ConnID) bool {
	holder, ok := r.byNick[nick]
	if !ok {
		return true
	}
	return holder.ID == except
}

// FindByNick looks up a connection by exact nickname.
func (r *Registry) FindByNick(nick string) (*Connection, bool) {
	c, ok := r.byNick[nick]
	return c, ok
}

// SetNick updates the nickname index for a connection, freeing its
// prior nickname (if any) first. It does not validate availability;
// callers must check NickAvailable first.
func (r *Registry) SetNick(c *Connection, nick string) {
	if len(c.Nickname) > 0 {
		delete(r.byNick, c.Nickname)
	}
	c.Nickname = nick
	r.byNick[nick] = c
}

// Remove removes a connection from both indexes. Callers are
// responsible for also removing it from every Channel's membership and
// from the Reactor set, per spec.md §3's Connection lifecycle ordering.
func (r *Registry) Remove(c *Connection) {
	if len(c.Nickname) > 0 {
		if holder, ok := r.byNick[c.Nickname]; ok && holder.ID == c.ID {
			delete(r.byNick, c.Nickname)
		}
	}
	delete(r.byID, c.ID)
}

// All returns every known connection, for iteration.
func (r *Registry) All() map[ConnID]*Connection {
	return r.byID
}

// Len reports how many connections are currently registered.
func (r *Registry) Len() int {
	return len(r.byID)
}
