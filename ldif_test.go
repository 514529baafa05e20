package ldap

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNeedsBase64Encoding(t *testing.T) {
	tests := []struct {
		value string
		want  bool
	}{
		{"", false},
		{"plain", false},
		{"inner space", false},
		{"a:b<c", false},
		{" leading", true},
		{":colon", true},
		{"<less", true},
		{"trailing ", true},
		{"nul\x00", true},
		{"line\nfeed", true},
		{"carriage\rreturn", true},
		{"café", true},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, NeedsBase64Encoding([]byte(tc.value)), "%q", tc.value)
	}
}

func TestToLDIF(t *testing.T) {
	e := NewSearchResultEntry("cn=jdoe,dc=example,dc=com",
		NewAttribute("cn", "jdoe"),
		NewAttribute("sn", "café", " padded"),
	)
	assert.Equal(t, "dn: cn=jdoe,dc=example,dc=com\n"+
		"cn: jdoe\n"+
		"sn:: Y2Fmw6k=\n"+
		"sn:: IHBhZGRlZA==\n"+
		"\n", e.LDIF())
}

func TestToLDIFWrap(t *testing.T) {
	e := NewSearchResultEntry("cn=abcdefghij,dc=example", NewAttribute("cn", "x"))

	var buf bytes.Buffer
	e.ToLDIF(&buf, 10)
	assert.Equal(t, "dn: cn=abc\n"+
		" defghij,d\n"+
		" c=example\n"+
		"cn: x\n"+
		"\n", buf.String())
}

func TestToLDIFWrapExactMultiple(t *testing.T) {
	// 6 bytes on the first line, then two full continuation lines of 9.
	e := NewSearchResultEntry("abcdef123456789ABCDEFGHI")

	var buf bytes.Buffer
	e.ToLDIF(&buf, 10)
	assert.Equal(t, "dn: abcdef\n"+
		" 123456789\n"+
		" ABCDEFGHI\n"+
		"\n", buf.String())
}

func TestToLDIFNoWrapWhenColumnTooSmall(t *testing.T) {
	e := NewSearchResultEntry("cn=abcdefghij", NewAttribute("description", "long value"))

	var buf bytes.Buffer
	e.ToLDIF(&buf, 4)
	assert.Equal(t, "dn: cn=abcdefghij\ndescription: long value\n\n", buf.String())

	buf.Reset()
	e.ToLDIF(&buf, -1)
	assert.Equal(t, "dn: cn=abcdefghij\ndescription: long value\n\n", buf.String())
}

func TestToLDIFAppends(t *testing.T) {
	var buf bytes.Buffer
	NewSearchResultEntry("cn=a").ToLDIF(&buf, 76)
	NewSearchResultEntry("cn=b").ToLDIF(&buf, 76)
	assert.Equal(t, "dn: cn=a\n\ndn: cn=b\n\n", buf.String())
}
