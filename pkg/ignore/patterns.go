package ignore

import (
	"regexp"
	"strings"
)

// translateGlob converts an fnmatch glob into an anchored regular expression.
// "*" matches any run of characters including "/", "?" matches exactly one,
// and "[...]" is a character class where a leading "!" negates it. An
// unterminated "[" is taken literally.
func translateGlob(pattern string) string {
	var b strings.Builder
	b.WriteString(`(?s)^`)

	runes := []rune(pattern)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch c {
		case '*':
			// Collapse runs so "**" does not double the backtracking.
			for i+1 < len(runes) && runes[i+1] == '*' {
				i++
			}
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			end := classEnd(runes, i)
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			b.WriteString(translateClass(runes[i+1 : end]))
			i = end
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}

	b.WriteString(`$`)
	return b.String()
}

// classEnd returns the index of the "]" closing the class opened at start, or
// -1. A "]" directly after "[" or "[!" belongs to the class.
func classEnd(runes []rune, start int) int {
	j := start + 1
	if j < len(runes) && runes[j] == '!' {
		j++
	}
	if j < len(runes) && runes[j] == ']' {
		j++
	}
	for ; j < len(runes); j++ {
		if runes[j] == ']' {
			return j
		}
	}
	return -1
}

// translateClass renders the body of a glob character class. Ranges whose
// bounds are reversed are empty and dropped. A class left with nothing
// never matches, or matches any character when negated.
func translateClass(body []rune) string {
	negate := len(body) > 0 && body[0] == '!'
	if negate {
		body = body[1:]
	}

	var items strings.Builder
	for k := 0; k < len(body); k++ {
		c := body[k]
		if k+2 < len(body) && body[k+1] == '-' {
			lo, hi := c, body[k+2]
			k += 2
			if lo > hi {
				continue
			}
			items.WriteString(classChar(lo) + "-" + classChar(hi))
			continue
		}
		items.WriteString(classChar(c))
	}

	switch {
	case items.Len() == 0 && negate:
		return `.`
	case items.Len() == 0:
		return `[^\x00-\x{10FFFF}]`
	case negate:
		return "[^" + items.String() + "]"
	default:
		return "[" + items.String() + "]"
	}
}

// classChar quotes one literal for use inside a regexp class.
func classChar(c rune) string {
	if c == '-' {
		return `\-`
	}
	return regexp.QuoteMeta(string(c))
}
