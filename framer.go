package main

import "bytes"

// extractLines pops every complete CRLF/LF-terminated line out of buf and
// returns them along with whatever unparsed tail remains.
//
// A "line" is the prefix up to the first occurrence of "\r\n" or "\n",
// whichever comes first; the terminator is consumed and not included in
// the returned line. Empty lines are dropped rather than returned, per
// spec.md §4.2.
func extractLines(buf []byte) (lines [][]byte, rest []byte) {
	for {
		nl := bytes.IndexByte(buf, '\n')
		if nl == -1 {
			rest = buf
			return lines, rest
		}

		end := nl
		if end > 0 && buf[end-1] == '\r' {
			end--
		}

		line := buf[:end]
		buf = buf[nl+1:]

		if len(line) == 0 {
			continue
		}

		// Copy out of buf since buf's backing array will be reused/resliced
		// by the caller.
		cp := make([]byte, len(line))
		copy(cp, line)
		lines = append(lines, cp)
	}
}
