package ldap

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// AddRequest represents an LDAP AddRequest operation
//
//	AddRequest ::= [APPLICATION 8] SEQUENCE {
//	     entry           LDAPDN,
//	     attributes      AttributeList }
type AddRequest struct {
	// DN identifies the entry being added
	DN string
	// Attributes list the attributes of the new entry
	Attributes []Attribute
}

// NewAddRequest returns an AddRequest for the given DN, with no attributes
func NewAddRequest(dn string) *AddRequest {
	return &AddRequest{DN: dn, Attributes: []Attribute{}}
}

// Attribute adds an attribute with the given type and values
func (req *AddRequest) Attribute(attrType string, attrVals []string) {
	req.Attributes = append(req.Attributes, NewAttribute(attrType, attrVals...))
}

func (*AddRequest) Tag() ber.Tag     { return ApplicationAddRequest }
func (req *AddRequest) Name() string { return opName(req) }

func (req *AddRequest) Encode() *ber.Packet {
	return encodeConstructed(ber.ClassApplication, ApplicationAddRequest, ApplicationMap[ApplicationAddRequest],
		encodeString(req.DN, "DN"),
		encodeAttributeList("Attributes", req.Attributes))
}

func (req *AddRequest) String() string {
	return fmt.Sprintf("AddRequest(dn=%s, attrs={%s})", req.DN, attributeListString(req.Attributes))
}

func decodeAddRequest(packet *ber.Packet) (*AddRequest, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagAddRequestDecodeSequence, err, "cannot decode the add request as a sequence")
	}
	if n := len(packet.Children); n != 2 {
		return nil, protocolError(DiagAddRequestDecodeInvalidElementCount, "add request holds %d elements, expected 2", n)
	}
	dn, err := decodeString(packet.Children[0])
	if err != nil {
		return nil, wrapError(DiagAddRequestDecodeDN, err, "cannot decode the entry DN")
	}
	attrs, err := decodeAttributeList(packet.Children[1])
	if err != nil {
		return nil, wrapError(DiagAddRequestDecodeAttributes, err, "cannot decode the attributes of %s", dn)
	}
	return &AddRequest{DN: dn, Attributes: attrs}, nil
}
