package ldap

import (
	"bytes"
	"io"
	"strings"
	"testing"

	ber "github.com/go-asn1-ber/asn1-ber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLength(t *testing.T) {
	tests := []struct {
		n    int
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{127, []byte{0x7f}},
		{128, []byte{0x81, 0x80}},
		{255, []byte{0x81, 0xff}},
		{256, []byte{0x82, 0x01, 0x00}},
		{65535, []byte{0x82, 0xff, 0xff}},
		{65536, []byte{0x83, 0x01, 0x00, 0x00}},
	}
	for _, tt := range tests {
		got := EncodeLength(tt.n)
		assert.Equal(t, tt.want, got, "length %d", tt.n)

		n, next, err := DecodeLength(got, 0)
		require.NoError(t, err)
		assert.Equal(t, tt.n, n)
		assert.Equal(t, len(got), next)
	}
}

func TestEncodeLengthMatchesPacketEncoding(t *testing.T) {
	for _, n := range []int{0, 5, 127, 128, 300, 70000} {
		p := ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, strings.Repeat("x", n), "")
		encoded := p.Bytes()
		want := EncodeLength(n)
		assert.Equal(t, want, encoded[1:1+len(want)], "length %d", n)
	}
}

func TestDecodeLengthErrors(t *testing.T) {
	tests := []struct {
		name string
		in   []byte
		pos  int
		diag Diagnostic
	}{
		{"empty", []byte{}, 0, DiagASN1TruncatedLength},
		{"indefinite", []byte{0x80}, 0, DiagASN1IndefiniteLength},
		{"too many length bytes", []byte{0x85, 1, 1, 1, 1, 1}, 0, DiagASN1LengthTooLong},
		{"truncated long form", []byte{0x82, 0x01}, 0, DiagASN1TruncatedLength},
		{"past the end", []byte{0x04}, 1, DiagASN1TruncatedLength},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := DecodeLength(tt.in, tt.pos)
			require.Error(t, err)
			assert.Equal(t, tt.diag, DiagnosticOf(err))
			assert.True(t, IsErrorWithCode(err, LDAPResultProtocolError))
		})
	}
}

func TestDecodeElementRejectsMalformedInput(t *testing.T) {
	tests := []struct {
		name   string
		in     []byte
		diag   Diagnostic
		offset int
	}{
		{"empty", []byte{}, DiagASN1TruncatedTag, 0},
		{"truncated value", []byte{0x04, 0x05, 'a'}, DiagASN1TruncatedValue, 2},
		{"trailing data", []byte{0x04, 0x01, 'a', 0x00}, DiagASN1TrailingData, 3},
		{"nested overflow", []byte{0x30, 0x03, 0x04, 0x05, 'a'}, DiagASN1TruncatedValue, 4},
		{"nested indefinite", []byte{0x30, 0x04, 0x30, 0x80, 0x00, 0x00}, DiagASN1IndefiniteLength, 3},
		{"multi-byte tag", []byte{0x1f, 0x81, 0x00, 0x00}, DiagASN1MultiByteTag, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodeElement(tt.in)
			require.Error(t, err)
			assert.Nil(t, p)
			assert.Equal(t, tt.diag, DiagnosticOf(err))

			var e *Error
			require.ErrorAs(t, err, &e)
			assert.Equal(t, tt.offset, e.Offset)
		})
	}
}

func TestDecodeElementNested(t *testing.T) {
	seq := encodeSequence("test",
		encodeInteger(7, "id"),
		encodeString("cn=admin", "dn"),
		encodeBoolean(ber.ClassContext, 1, true, "flag"))

	p, err := DecodeElement(seq.Bytes())
	require.NoError(t, err)
	require.Len(t, p.Children, 3)

	id, err := decodeInteger(p.Children[0])
	require.NoError(t, err)
	assert.EqualValues(t, 7, id)

	dn, err := decodeString(p.Children[1])
	require.NoError(t, err)
	assert.Equal(t, "cn=admin", dn)

	flag, err := decodeBoolean(p.Children[2])
	require.NoError(t, err)
	assert.True(t, flag)
}

func TestIntegerBytes(t *testing.T) {
	tests := []struct {
		v    int64
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x00, 0x80}},
		{256, []byte{0x01, 0x00}},
		{-1, []byte{0xff}},
		{-128, []byte{0x80}},
		{-129, []byte{0xff, 0x7f}},
		{2147483647, []byte{0x7f, 0xff, 0xff, 0xff}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IntegerBytes(tt.v), "value %d", tt.v)
		assert.Equal(t, tt.want, encodeInteger(tt.v, "").Data.Bytes(), "packet value %d", tt.v)
	}
}

func TestDecodeIntegerAcceptsNonMinimal(t *testing.T) {
	p, err := DecodeElement([]byte{0x02, 0x03, 0x00, 0x00, 0x05})
	require.NoError(t, err)
	v, err := decodeInteger(p)
	require.NoError(t, err)
	assert.EqualValues(t, 5, v)

	p, err = DecodeElement([]byte{0x02, 0x00})
	require.NoError(t, err)
	_, err = decodeInteger(p)
	assert.True(t, IsDiagnostic(err, DiagASN1InvalidInteger))
}

func TestDecodeBooleanAndNull(t *testing.T) {
	p, err := DecodeElement([]byte{0x01, 0x02, 0x00, 0x00})
	require.NoError(t, err)
	_, err = decodeBoolean(p)
	assert.True(t, IsDiagnostic(err, DiagASN1InvalidBoolean))

	p, err = DecodeElement([]byte{0x05, 0x01, 0x00})
	require.NoError(t, err)
	assert.True(t, IsDiagnostic(decodeNull(p), DiagASN1InvalidNull))

	assert.NoError(t, decodeNull(encodeNull(ber.ClassContext, 0, "null")))
}

func TestDecodePrimitiveRejectsConstructed(t *testing.T) {
	_, err := decodeOctetString(encodeSequence("seq"))
	assert.True(t, IsDiagnostic(err, DiagASN1ExpectedPrimitive))

	err = expectConstructed(encodeString("x", ""))
	assert.True(t, IsDiagnostic(err, DiagASN1ExpectedConstructed))

	err = expectTag(encodeString("x", ""), ber.ClassApplication, 3)
	assert.True(t, IsDiagnostic(err, DiagASN1UnexpectedTag))
}

func TestReadElement(t *testing.T) {
	first := encodeSequence("first", encodeInteger(1, "")).Bytes()
	second := encodeString(strings.Repeat("v", 200), "").Bytes()
	r := bytes.NewReader(append(append([]byte{}, first...), second...))

	p, n, err := ReadElement(r)
	require.NoError(t, err)
	assert.Equal(t, len(first), n)
	assert.Len(t, p.Children, 1)

	p, n, err = ReadElement(r)
	require.NoError(t, err)
	assert.Equal(t, len(second), n)
	s, err := decodeString(p)
	require.NoError(t, err)
	assert.Len(t, s, 200)

	_, _, err = ReadElement(r)
	assert.Equal(t, io.EOF, err)
}

func TestReadElementTruncated(t *testing.T) {
	_, _, err := ReadElement(bytes.NewReader([]byte{0x04, 0x05, 'a', 'b'}))
	require.Error(t, err)
	assert.Equal(t, DiagASN1TruncatedValue, DiagnosticOf(err))
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	_, _, err = ReadElement(bytes.NewReader([]byte{0x30}))
	assert.Equal(t, DiagASN1TruncatedLength, DiagnosticOf(err))
}

func TestEncodeBoolean(t *testing.T) {
	tests := []struct {
		class ber.Class
		tag   ber.Tag
		value bool
		want  []byte
	}{
		{ber.ClassUniversal, ber.TagBoolean, true, []byte{0x01, 0x01, 0xff}},
		{ber.ClassUniversal, ber.TagBoolean, false, []byte{0x01, 0x01, 0x00}},
		{ber.ClassContext, 4, true, []byte{0x84, 0x01, 0xff}},
		{ber.ClassContext, 1, false, []byte{0x81, 0x01, 0x00}},
	}
	for _, tt := range tests {
		p := encodeBoolean(tt.class, tt.tag, tt.value, "")
		assert.Equal(t, tt.want, p.Bytes())
		assert.Equal(t, tt.value, p.Value)

		decoded, err := DecodeElement(p.Bytes())
		require.NoError(t, err)
		v, err := decodeBoolean(decoded)
		require.NoError(t, err)
		assert.Equal(t, tt.value, v)
	}

	// Inside a parent the lengths still add up.
	seq := encodeSequence("", encodeBoolean(ber.ClassUniversal, ber.TagBoolean, true, ""))
	assert.Equal(t, []byte{0x30, 0x03, 0x01, 0x01, 0xff}, seq.Bytes())
}

// nestedSequences returns depth sequences wrapped around a null.
func nestedSequences(depth int) []byte {
	headers := make([][]byte, depth)
	n := 2
	for i := depth - 1; i >= 0; i-- {
		headers[i] = append([]byte{0x30}, EncodeLength(n)...)
		n += len(headers[i])
	}
	out := make([]byte, 0, n)
	for _, h := range headers {
		out = append(out, h...)
	}
	return append(out, 0x05, 0x00)
}

func TestDecodeElementDepthLimit(t *testing.T) {
	p, err := DecodeElement(nestedSequences(maxElementDepth - 1))
	require.NoError(t, err)
	assert.Len(t, p.Children, 1)

	_, err = DecodeElement(nestedSequences(maxElementDepth))
	assert.True(t, IsDiagnostic(err, DiagASN1TooDeep), err)

	_, err = DecodeElement(nestedSequences(10000))
	require.Error(t, err)
	assert.Equal(t, DiagASN1TooDeep, DiagnosticOf(err))

	_, _, err = ReadElement(bytes.NewReader(nestedSequences(10000)))
	assert.Equal(t, DiagASN1TooDeep, DiagnosticOf(err))
}

func TestReadElementSizeLimit(t *testing.T) {
	// A header that declares 2 GiB of content and nothing behind it.
	_, n, err := ReadElement(bytes.NewReader([]byte{0x30, 0x84, 0x7f, 0xff, 0xff, 0xff}))
	require.Error(t, err)
	assert.Equal(t, DiagASN1ElementTooLarge, DiagnosticOf(err))
	assert.Equal(t, 6, n)

	value := encodeString(strings.Repeat("v", 40), "").Bytes()
	_, _, err = ReadElementLimit(bytes.NewReader(value), 32)
	assert.Equal(t, DiagASN1ElementTooLarge, DiagnosticOf(err))

	p, n, err := ReadElementLimit(bytes.NewReader(value), len(value))
	require.NoError(t, err)
	assert.Equal(t, len(value), n)
	s, err := decodeString(p)
	require.NoError(t, err)
	assert.Len(t, s, 40)
}
