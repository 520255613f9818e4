package internal

// MatchLike implements the wildcard matching spec §4.2 defines: '%' matches
// zero-or-more characters, '_' matches exactly one, and the pattern is
// anchored (it must match the full string).
func MatchLike(pattern, value string) bool {
	return matchLike([]rune(pattern), []rune(value))
}

func matchLike(pattern, value []rune) bool {
	if len(pattern) == 0 {
		return len(value) == 0
	}

	switch pattern[0] {
	case '%':
		// collapse repeats defensively even though Search normalizes at
		// construction time.
		rest := pattern[1:]
		for len(rest) > 0 && rest[0] == '%' {
			rest = rest[1:]
		}
		if len(rest) == 0 {
			return true
		}
		for i := 0; i <= len(value); i++ {
			if matchLike(rest, value[i:]) {
				return true
			}
		}
		return false
	case '_':
		if len(value) == 0 {
			return false
		}
		return matchLike(pattern[1:], value[1:])
	default:
		if len(value) == 0 || value[0] != pattern[0] {
			return false
		}
		return matchLike(pattern[1:], value[1:])
	}
}
