package ldap

import (
	"bytes"
	"encoding/base64"
)

// NeedsBase64Encoding reports whether value cannot be written as a plain
// LDIF value: it starts with a space, colon or less-than sign, ends with a
// space, or holds NUL, CR, LF or any byte outside 7-bit ASCII.
func NeedsBase64Encoding(value []byte) bool {
	if len(value) == 0 {
		return false
	}
	switch value[0] {
	case ' ', ':', '<':
		return true
	}
	if value[len(value)-1] == ' ' {
		return true
	}
	for _, b := range value {
		if b == 0 || b == '\n' || b == '\r' || b > 0x7f {
			return true
		}
	}
	return false
}

// ToLDIF appends the entry to buf in LDIF form followed by a blank line.
// Lines longer than wrapColumn are folded with continuation lines that
// start with a single space. A wrapColumn too small to hold the line
// prefix, zero or negative included, disables folding.
func (e *SearchResultEntry) ToLDIF(buf *bytes.Buffer, wrapColumn int) {
	writeLDIFLine(buf, "dn", []byte(e.DN), wrapColumn)
	for _, a := range e.Attributes {
		for _, v := range a.Vals {
			writeLDIFLine(buf, a.Type, []byte(v), wrapColumn)
		}
	}
	buf.WriteByte('\n')
}

// LDIF returns the entry in LDIF form without folding.
func (e *SearchResultEntry) LDIF() string {
	var buf bytes.Buffer
	e.ToLDIF(&buf, 0)
	return buf.String()
}

func writeLDIFLine(buf *bytes.Buffer, name string, value []byte, wrapColumn int) {
	var s string
	var colsRemaining int
	buf.WriteString(name)
	if NeedsBase64Encoding(value) {
		s = base64.StdEncoding.EncodeToString(value)
		buf.WriteString(":: ")
		colsRemaining = wrapColumn - len(name) - 3
	} else {
		s = string(value)
		buf.WriteString(": ")
		colsRemaining = wrapColumn - len(name) - 2
	}

	if len(s) <= colsRemaining || colsRemaining <= 0 {
		buf.WriteString(s)
		buf.WriteByte('\n')
		return
	}

	buf.WriteString(s[:colsRemaining])
	buf.WriteByte('\n')
	pos := colsRemaining
	for len(s)-pos > wrapColumn-1 {
		buf.WriteByte(' ')
		buf.WriteString(s[pos : pos+wrapColumn-1])
		buf.WriteByte('\n')
		pos += wrapColumn - 1
	}
	if pos < len(s) {
		buf.WriteByte(' ')
		buf.WriteString(s[pos:])
		buf.WriteByte('\n')
	}
}
