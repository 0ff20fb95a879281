package main

import "strings"

// maxTopicLength bounds TOPIC text so a relayed TOPIC notification can't
// overflow irc.MaxLineLength once the source prefix and command are
// added. Arbitrary, kept well under the wire limit.
const maxTopicLength = 300

// isValidNick reports whether a nickname is acceptable.
//
// spec.md §9 Open Questions: the source this was distilled from enforces
// only non-emptiness after trimming; stricter character/length rules are
// flagged as a hardening opportunity but not adopted here.
func isValidNick(n string) bool {
	return len(strings.TrimSpace(n)) > 0
}

// isValidChannel reports whether a channel name is well-formed: it must
// start with '#' and have at least one more character. Names are
// compared byte-exactly elsewhere; this function does no
// canonicalization (see spec.md §9's case-sensitivity resolution).
func isValidChannel(c string) bool {
	return len(c) >= 2 && c[0] == '#'
}
