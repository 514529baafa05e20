package ldap

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// CompareRequest asks whether an entry holds an attribute value.
//
//	CompareRequest ::= [APPLICATION 14] SEQUENCE {
//	     entry           LDAPDN,
//	     ava             AttributeValueAssertion }
type CompareRequest struct {
	DN  string
	AVA AttributeValueAssertion
}

func NewCompareRequest(dn, attribute string, value []byte) *CompareRequest {
	return &CompareRequest{DN: dn, AVA: newAVA(attribute, value)}
}

func (*CompareRequest) Tag() ber.Tag     { return ApplicationCompareRequest }
func (req *CompareRequest) Name() string { return opName(req) }

func (req *CompareRequest) Encode() *ber.Packet {
	return encodeConstructed(ber.ClassApplication, ApplicationCompareRequest, ApplicationMap[ApplicationCompareRequest],
		encodeString(req.DN, "DN"),
		encodeSequence("AttributeValueAssertion",
			encodeString(req.AVA.Attribute, "AttributeDesc"),
			encodeOctetString(ber.ClassUniversal, ber.TagOctetString, req.AVA.Value, "AssertionValue")))
}

func (req *CompareRequest) String() string {
	return fmt.Sprintf("CompareRequest(dn=%s, attribute=%s, value=%s)", req.DN, req.AVA.Attribute, EscapeFilter(string(req.AVA.Value)))
}

func decodeCompareRequest(packet *ber.Packet) (*CompareRequest, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagCompareRequestDecodeSequence, err, "cannot decode the compare request as a sequence")
	}
	if n := len(packet.Children); n != 2 {
		return nil, protocolError(DiagCompareRequestDecodeInvalidElementCount, "compare request holds %d elements, expected 2", n)
	}
	dn, err := decodeString(packet.Children[0])
	if err != nil {
		return nil, wrapError(DiagCompareRequestDecodeDN, err, "cannot decode the entry DN")
	}
	ava := packet.Children[1]
	if err := expectConstructed(ava); err != nil {
		return nil, wrapError(DiagCompareRequestDecodeAVA, err, "cannot decode the assertion as a sequence")
	}
	if len(ava.Children) != 2 {
		return nil, protocolError(DiagCompareRequestDecodeAVA, "assertion holds %d elements, expected 2", len(ava.Children))
	}
	attr, err := decodeString(ava.Children[0])
	if err != nil {
		return nil, wrapError(DiagCompareRequestDecodeAVA, err, "cannot decode the attribute description")
	}
	value, err := decodeOctetString(ava.Children[1])
	if err != nil {
		return nil, wrapError(DiagCompareRequestDecodeAVA, err, "cannot decode the assertion value")
	}
	return &CompareRequest{DN: dn, AVA: AttributeValueAssertion{Attribute: attr, Value: value}}, nil
}
