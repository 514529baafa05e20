package ldap

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// Control is a request or response control attached to a message.
//
//	Control ::= SEQUENCE {
//	     controlType             LDAPOID,
//	     criticality             BOOLEAN DEFAULT FALSE,
//	     controlValue            OCTET STRING OPTIONAL }
type Control struct {
	OID         string
	Criticality bool
	// Value is nil when the control carries no value.
	Value []byte
}

// NewControl returns a control with the given type, criticality and value.
func NewControl(oid string, criticality bool, value []byte) *Control {
	return &Control{OID: oid, Criticality: criticality, Value: cloneOptional(value)}
}

// Encode returns the BER form of the control. A false criticality is
// omitted since it is the default.
func (c *Control) Encode() *ber.Packet {
	p := encodeSequence("Control", encodeString(c.OID, "Control Type ("+c.OID+")"))
	if c.Criticality {
		p.AppendChild(encodeBoolean(ber.ClassUniversal, ber.TagBoolean, true, "Criticality"))
	}
	if c.Value != nil {
		p.AppendChild(encodeOctetString(ber.ClassUniversal, ber.TagOctetString, c.Value, "Control Value"))
	}
	return p
}

func (c *Control) String() string {
	return fmt.Sprintf("Control(oid=%s, criticality=%t, value=%x)", c.OID, c.Criticality, c.Value)
}

// DecodeControl decodes a single control sequence.
func DecodeControl(packet *ber.Packet) (*Control, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagControlDecodeSequence, err, "cannot decode the control as a sequence")
	}
	if n := len(packet.Children); n < 1 || n > 3 {
		return nil, protocolError(DiagControlDecodeInvalidElementCount, "control holds %d elements, expected 1 to 3", n)
	}

	oid, err := decodeString(packet.Children[0])
	if err != nil {
		return nil, wrapError(DiagControlDecodeOID, err, "cannot decode the control type")
	}
	c := &Control{OID: oid}

	for _, child := range packet.Children[1:] {
		switch {
		case child.ClassType == ber.ClassUniversal && child.Tag == ber.TagBoolean:
			if c.Criticality, err = decodeBoolean(child); err != nil {
				return nil, wrapError(DiagControlDecodeCriticality, err, "cannot decode the control criticality")
			}
		case child.ClassType == ber.ClassUniversal && child.Tag == ber.TagOctetString:
			if c.Value, err = decodeOctetString(child); err != nil {
				return nil, wrapError(DiagControlDecodeValue, err, "cannot decode the control value")
			}
		default:
			return nil, protocolError(DiagControlDecodeValue, "unexpected control element %s/%d",
				ber.ClassMap[child.ClassType], child.Tag)
		}
	}
	return c, nil
}

// FindControl returns the first control with the given OID, or nil.
func FindControl(controls []*Control, oid string) *Control {
	for _, c := range controls {
		if c.OID == oid {
			return c
		}
	}
	return nil
}
