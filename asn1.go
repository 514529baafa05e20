package ldap

import (
	"io"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// maxLengthBytes bounds the long form of a BER length. Four bytes already
// exceed any message the reader accepts.
const maxLengthBytes = 4

// maxElementDepth bounds the nesting of constructed elements. It leaves
// room for the message envelope around a filter of MaxFilterDepth levels.
const maxElementDepth = MaxFilterDepth + 32

// DefaultMaxElementSize is the largest element ReadElement accepts.
const DefaultMaxElementSize = 16 << 20

// EncodeLength returns the minimal BER encoding of a content length: a
// single byte below 128, otherwise a count byte with the high bit set
// followed by the big-endian length.
func EncodeLength(n int) []byte {
	if n < 0 {
		panic("ldap: negative BER length")
	}
	if n < 0x80 {
		return []byte{byte(n)}
	}
	var be []byte
	for v := n; v > 0; v >>= 8 {
		be = append([]byte{byte(v)}, be...)
	}
	return append([]byte{0x80 | byte(len(be))}, be...)
}

// DecodeLength reads the length that starts at b[pos] and returns it along
// with the position of the first content byte.
func DecodeLength(b []byte, pos int) (int, int, error) {
	if pos >= len(b) {
		return 0, pos, protocolErrorAt(DiagASN1TruncatedLength, pos, "missing length byte at offset %d", pos)
	}
	first := b[pos]
	if first&0x80 == 0 {
		return int(first), pos + 1, nil
	}
	count := int(first & 0x7f)
	if count == 0 {
		return 0, pos, protocolErrorAt(DiagASN1IndefiniteLength, pos, "indefinite length at offset %d is not allowed", pos)
	}
	if count > maxLengthBytes {
		return 0, pos, protocolErrorAt(DiagASN1LengthTooLong, pos, "length at offset %d uses %d bytes", pos, count)
	}
	if pos+1+count > len(b) {
		return 0, pos, protocolErrorAt(DiagASN1TruncatedLength, pos, "length at offset %d needs %d bytes, %d available", pos, count, len(b)-pos-1)
	}
	var n int64
	for _, c := range b[pos+1 : pos+1+count] {
		n = n<<8 | int64(c)
	}
	if ber.MaxPacketLengthBytes > 0 && n > ber.MaxPacketLengthBytes {
		return 0, pos, protocolErrorAt(DiagASN1LengthTooLong, pos, "length %d at offset %d exceeds the maximum %d", n, pos, ber.MaxPacketLengthBytes)
	}
	return int(n), pos + 1 + count, nil
}

// DecodeElement decodes exactly one BER element from b. Every nested
// header is checked first so that truncation, indefinite lengths and
// trailing bytes are reported with their offset instead of being
// silently tolerated.
func DecodeElement(b []byte) (*ber.Packet, error) {
	end, err := validateElement(b, 0, len(b), 1)
	if err != nil {
		return nil, err
	}
	if end != len(b) {
		return nil, protocolErrorAt(DiagASN1TrailingData, end, "%d unexpected bytes after the element", len(b)-end)
	}
	packet, err := ber.DecodePacketErr(b)
	if err != nil {
		return nil, wrapError(DiagASN1Malformed, err, "cannot decode BER element")
	}
	return packet, nil
}

func validateElement(b []byte, pos, limit, depth int) (int, error) {
	if pos >= limit {
		return pos, protocolErrorAt(DiagASN1TruncatedTag, pos, "missing identifier byte at offset %d", pos)
	}
	if depth > maxElementDepth {
		return pos, protocolErrorAt(DiagASN1TooDeep, pos, "element at offset %d nests deeper than %d levels", pos, maxElementDepth)
	}
	id := b[pos]
	if ber.Tag(id)&ber.TagBitmask == ber.HighTag {
		return pos, protocolErrorAt(DiagASN1MultiByteTag, pos, "multi-byte tag at offset %d is not used by LDAP", pos)
	}
	length, start, err := DecodeLength(b[:limit], pos+1)
	if err != nil {
		return pos, err
	}
	end := start + length
	if end > limit {
		return pos, protocolErrorAt(DiagASN1TruncatedValue, start, "element at offset %d declares %d bytes, %d available", pos, length, limit-start)
	}
	if ber.Type(id)&ber.TypeBitmask == ber.TypeConstructed {
		for next := start; next < end; {
			if next, err = validateElement(b, next, end, depth+1); err != nil {
				return pos, err
			}
		}
	}
	return end, nil
}

// ReadElement reads one complete element from r and returns it with the
// number of bytes consumed. A clean end of stream before the first byte
// is reported as io.EOF.
func ReadElement(r io.Reader) (*ber.Packet, int, error) {
	return ReadElementLimit(r, DefaultMaxElementSize)
}

// ReadElementLimit is ReadElement for elements of at most maxSize bytes,
// header included. A larger declared length fails before any content is
// read. maxSize <= 0 means DefaultMaxElementSize.
func ReadElementLimit(r io.Reader, maxSize int) (*ber.Packet, int, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxElementSize
	}
	header := make([]byte, 2, 2+maxLengthBytes)
	if _, err := io.ReadFull(r, header[:1]); err != nil {
		return nil, 0, err
	}
	if _, err := io.ReadFull(r, header[1:2]); err != nil {
		return nil, 1, wrapError(DiagASN1TruncatedLength, err, "stream ended inside an element header")
	}
	if header[1]&0x80 != 0 {
		count := int(header[1] & 0x7f)
		if count > 0 && count <= maxLengthBytes {
			header = header[:2+count]
			if _, err := io.ReadFull(r, header[2:]); err != nil {
				return nil, 2, wrapError(DiagASN1TruncatedLength, err, "stream ended inside an element length")
			}
		}
	}
	length, start, err := DecodeLength(header, 1)
	if err != nil {
		return nil, len(header), err
	}
	if length > maxSize-start {
		return nil, len(header), protocolError(DiagASN1ElementTooLarge,
			"element declares %d content bytes, the limit is %d bytes", length, maxSize)
	}
	buf := make([]byte, start+length)
	copy(buf, header)
	if n, err := io.ReadFull(r, buf[start:]); err != nil {
		return nil, start + n, wrapError(DiagASN1TruncatedValue, err, "stream ended after %d of %d content bytes", n, length)
	}
	packet, err := DecodeElement(buf)
	return packet, len(buf), err
}

// IntegerBytes returns the minimal two's complement content octets of v.
func IntegerBytes(v int64) []byte {
	n := 1
	for i := v; i > 127 || i < -128; i >>= 8 {
		n++
	}
	out := make([]byte, n)
	for j := 0; j < n; j++ {
		out[j] = byte(v >> uint((n-1-j)*8))
	}
	return out
}

func encodeOctetString(class ber.Class, tag ber.Tag, value []byte, description string) *ber.Packet {
	return ber.NewString(class, ber.TypePrimitive, tag, string(value), description)
}

func encodeString(value, description string) *ber.Packet {
	return ber.NewString(ber.ClassUniversal, ber.TypePrimitive, ber.TagOctetString, value, description)
}

func encodeInteger(value int64, description string) *ber.Packet {
	return ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagInteger, value, description)
}

func encodeEnumerated(value int64, description string) *ber.Packet {
	return ber.NewInteger(ber.ClassUniversal, ber.TypePrimitive, ber.TagEnumerated, value, description)
}

// encodeBoolean writes the single content byte DER requires. The
// library's boolean helpers emit two bytes for TRUE.
func encodeBoolean(class ber.Class, tag ber.Tag, value bool, description string) *ber.Packet {
	p := ber.Encode(class, ber.TypePrimitive, tag, nil, description)
	b := byte(0x00)
	if value {
		b = 0xff
	}
	p.Data.Write([]byte{b})
	p.Value = value
	return p
}

func encodeNull(class ber.Class, tag ber.Tag, description string) *ber.Packet {
	return ber.Encode(class, ber.TypePrimitive, tag, nil, description)
}

func encodeConstructed(class ber.Class, tag ber.Tag, description string, children ...*ber.Packet) *ber.Packet {
	p := ber.Encode(class, ber.TypeConstructed, tag, nil, description)
	for _, child := range children {
		p.AppendChild(child)
	}
	return p
}

func encodeSequence(description string, children ...*ber.Packet) *ber.Packet {
	return encodeConstructed(ber.ClassUniversal, ber.TagSequence, description, children...)
}

func encodeSet(description string, children ...*ber.Packet) *ber.Packet {
	return encodeConstructed(ber.ClassUniversal, ber.TagSet, description, children...)
}

func content(p *ber.Packet) []byte {
	if p.Data == nil {
		return nil
	}
	return p.Data.Bytes()
}

func expectPrimitive(p *ber.Packet) error {
	if p == nil {
		return protocolError(DiagASN1NullElement, "missing element")
	}
	if p.TagType != ber.TypePrimitive {
		return protocolError(DiagASN1ExpectedPrimitive, "element with tag %d is constructed, expected primitive", p.Tag)
	}
	return nil
}

func expectConstructed(p *ber.Packet) error {
	if p == nil {
		return protocolError(DiagASN1NullElement, "missing element")
	}
	if p.TagType != ber.TypeConstructed {
		return protocolError(DiagASN1ExpectedConstructed, "element with tag %d is primitive, expected constructed", p.Tag)
	}
	return nil
}

func expectTag(p *ber.Packet, class ber.Class, tag ber.Tag) error {
	if p == nil {
		return protocolError(DiagASN1NullElement, "missing element")
	}
	if p.ClassType != class || p.Tag != tag {
		return protocolError(DiagASN1UnexpectedTag, "unexpected element %s/%d, expected %s/%d",
			ber.ClassMap[p.ClassType], p.Tag, ber.ClassMap[class], tag)
	}
	return nil
}

func decodeOctetString(p *ber.Packet) ([]byte, error) {
	if err := expectPrimitive(p); err != nil {
		return nil, err
	}
	return append([]byte{}, content(p)...), nil
}

func decodeString(p *ber.Packet) (string, error) {
	if err := expectPrimitive(p); err != nil {
		return "", err
	}
	return string(content(p)), nil
}

// decodeInteger accepts any two's complement width up to eight bytes,
// including non-minimal encodings.
func decodeInteger(p *ber.Packet) (int64, error) {
	if err := expectPrimitive(p); err != nil {
		return 0, err
	}
	b := content(p)
	if len(b) == 0 || len(b) > 8 {
		return 0, protocolError(DiagASN1InvalidInteger, "integer with %d content bytes", len(b))
	}
	v, err := ber.ParseInt64(b)
	if err != nil {
		return 0, wrapError(DiagASN1InvalidInteger, err, "invalid integer")
	}
	return v, nil
}

func decodeEnumerated(p *ber.Packet) (int64, error) {
	return decodeInteger(p)
}

func decodeBoolean(p *ber.Packet) (bool, error) {
	if err := expectPrimitive(p); err != nil {
		return false, err
	}
	b := content(p)
	if len(b) != 1 {
		return false, protocolError(DiagASN1InvalidBoolean, "boolean with %d content bytes", len(b))
	}
	return b[0] != 0, nil
}

func decodeNull(p *ber.Packet) error {
	if err := expectPrimitive(p); err != nil {
		return err
	}
	if n := len(content(p)); n != 0 {
		return protocolError(DiagASN1InvalidNull, "null with %d content bytes", n)
	}
	return nil
}

func decodeStringSequence(p *ber.Packet) ([]string, error) {
	if err := expectConstructed(p); err != nil {
		return nil, err
	}
	values := make([]string, 0, len(p.Children))
	for _, child := range p.Children {
		s, err := decodeString(child)
		if err != nil {
			return nil, err
		}
		values = append(values, s)
	}
	return values, nil
}
