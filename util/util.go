package util

// Byte classes shared by the Jack tokenizer and the VM text reader.

func IsNumber(b byte) bool {
	return b >= '0' && b <= '9'
}

func IsUnderScore(b byte) bool {
	return b == '_'
}

func IsLetter(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z')
}

// IsIdentifierStart reports whether b may begin a Jack identifier.
func IsIdentifierStart(b byte) bool {
	return IsLetter(b) || IsUnderScore(b)
}

// IsIdentifierPart reports whether b may continue a Jack identifier.
func IsIdentifierPart(b byte) bool {
	return IsLetter(b) || IsUnderScore(b) || IsNumber(b)
}

// IsSpace matches the ASCII whitespace the Jack grammar skips between tokens.
func IsSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// IsLabelStart and IsLabelPart describe VM label and function names:
// a letter, '_', '.' or ':' followed by those characters, digits or '$'.
func IsLabelStart(b byte) bool {
	return IsLetter(b) || b == '_' || b == '.' || b == ':'
}

func IsLabelPart(b byte) bool {
	return IsLabelStart(b) || IsNumber(b) || b == '$'
}
