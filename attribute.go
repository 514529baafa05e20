package ldap

import (
	"fmt"
	"strings"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// Attribute is an attribute description with its values, as carried by
// add requests, modifications and search result entries.
//
//	PartialAttribute ::= SEQUENCE {
//	     type       AttributeDescription,
//	     vals       SET OF value AttributeValue }
type Attribute struct {
	Type string
	Vals []string
}

// NewAttribute copies vals so the attribute owns its values.
func NewAttribute(attrType string, vals ...string) Attribute {
	return Attribute{Type: attrType, Vals: append([]string{}, vals...)}
}

func (a *Attribute) encode() *ber.Packet {
	vals := encodeSet("Attribute Values")
	for _, v := range a.Vals {
		vals.AppendChild(encodeString(v, "Vals"))
	}
	return encodeSequence("Attribute", encodeString(a.Type, "Type"), vals)
}

func (a *Attribute) String() string {
	return fmt.Sprintf("%s={%s}", a.Type, strings.Join(a.Vals, ", "))
}

func decodeAttribute(packet *ber.Packet) (Attribute, error) {
	if err := expectConstructed(packet); err != nil {
		return Attribute{}, wrapError(DiagAttributeDecodeSequence, err, "cannot decode the attribute as a sequence")
	}
	if n := len(packet.Children); n != 2 {
		return Attribute{}, protocolError(DiagAttributeDecodeInvalidElementCount, "attribute holds %d elements, expected 2", n)
	}
	attrType, err := decodeString(packet.Children[0])
	if err != nil {
		return Attribute{}, wrapError(DiagAttributeDecodeType, err, "cannot decode the attribute type")
	}
	vals, err := decodeStringSequence(packet.Children[1])
	if err != nil {
		return Attribute{}, wrapError(DiagAttributeDecodeValues, err, "cannot decode the values of %s", attrType)
	}
	return Attribute{Type: attrType, Vals: vals}, nil
}

func encodeAttributeList(description string, attrs []Attribute) *ber.Packet {
	p := encodeSequence(description)
	for i := range attrs {
		p.AppendChild(attrs[i].encode())
	}
	return p
}

func decodeAttributeList(packet *ber.Packet) ([]Attribute, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, err
	}
	attrs := make([]Attribute, 0, len(packet.Children))
	for _, child := range packet.Children {
		a, err := decodeAttribute(child)
		if err != nil {
			return nil, err
		}
		attrs = append(attrs, a)
	}
	return attrs, nil
}

func attributeListString(attrs []Attribute) string {
	parts := make([]string, len(attrs))
	for i := range attrs {
		parts[i] = attrs[i].String()
	}
	return strings.Join(parts, ", ")
}
