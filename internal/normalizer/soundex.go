package normalizer

// Soundex returns the classic 4-character American Soundex code for a name:
// the first letter followed by three digits from consonant groupings.
// Vowels and Y separate consonants without being coded; H and W do not
// separate, so consonants with the same code around H/W collapse to one
// digit. Returns "" for input with no ASCII letters.
func Soundex(name string) string {
	letters := make([]byte, 0, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if c >= 'A' && c <= 'Z' {
			letters = append(letters, c)
		}
	}
	if len(letters) == 0 {
		return ""
	}

	code := make([]byte, 0, 4)
	code = append(code, letters[0])

	prev := soundexDigit(letters[0])
	for _, c := range letters[1:] {
		d := soundexDigit(c)
		switch {
		case d == 0:
			if c != 'H' && c != 'W' {
				// Vowels and Y reset the run so a repeated consonant
				// code separated by a vowel is coded twice.
				prev = 0
			}
		case d != prev:
			code = append(code, '0'+d)
			prev = d
		}
		if len(code) == 4 {
			break
		}
	}

	for len(code) < 4 {
		code = append(code, '0')
	}
	return string(code)
}

func soundexDigit(c byte) byte {
	switch c {
	case 'B', 'F', 'P', 'V':
		return 1
	case 'C', 'G', 'J', 'K', 'Q', 'S', 'X', 'Z':
		return 2
	case 'D', 'T':
		return 3
	case 'L':
		return 4
	case 'M', 'N':
		return 5
	case 'R':
		return 6
	}
	return 0
}
