package format

import "strings"

// Sanitize strips ANSI escape sequences and control characters from
// user-authored text before it is embedded in rendered output. Note and task
// text is untrusted: the partner's client renders it verbatim, and a crafted
// escape sequence could otherwise rewrite the terminal frame.
func Sanitize(s string) string {
	if s == "" {
		return ""
	}
	b := []byte(s)
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c == 0x1b { // ESC
			// CSI: ESC [ ... final byte 0x40-0x7E.
			if i+1 < len(b) && b[i+1] == '[' {
				i += 2
				for i < len(b) {
					if b[i] >= 0x40 && b[i] <= 0x7E {
						break
					}
					i++
				}
				continue
			}
			// Bare ESC or other sequence intro: drop the ESC byte.
			continue
		}
		if c < 0x20 && c != '\n' && c != '\t' {
			continue
		}
		out = append(out, c)
	}
	return strings.ToValidUTF8(string(out), "")
}
