package ldap

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// TagNewSuperior is the context tag of newSuperior in a modify DN request.
const TagNewSuperior = 0

// ModifyDNRequest holds the request to modify a DN
//
//	ModifyDNRequest ::= [APPLICATION 12] SEQUENCE {
//	     entry           LDAPDN,
//	     newrdn          RelativeLDAPDN,
//	     deleteoldrdn    BOOLEAN,
//	     newSuperior     [0] LDAPDN OPTIONAL }
type ModifyDNRequest struct {
	DN           string
	NewRDN       string
	DeleteOldRDN bool
	// NewSuperior is omitted when empty.
	NewSuperior string
}

// NewModifyDNRequest creates a new request which can be passed to ModifyDN().
//
// To move an object in the tree, set the "newSup" to the new parent entry DN. Use an
// empty string for just changing the object's RDN.
func NewModifyDNRequest(dn string, rdn string, delOld bool, newSup string) *ModifyDNRequest {
	return &ModifyDNRequest{DN: dn, NewRDN: rdn, DeleteOldRDN: delOld, NewSuperior: newSup}
}

func (*ModifyDNRequest) Tag() ber.Tag     { return ApplicationModifyDNRequest }
func (req *ModifyDNRequest) Name() string { return opName(req) }

func (req *ModifyDNRequest) Encode() *ber.Packet {
	p := encodeConstructed(ber.ClassApplication, ApplicationModifyDNRequest, ApplicationMap[ApplicationModifyDNRequest],
		encodeString(req.DN, "DN"),
		encodeString(req.NewRDN, "New RDN"),
		encodeBoolean(ber.ClassUniversal, ber.TagBoolean, req.DeleteOldRDN, "Delete old RDN"))
	if req.NewSuperior != "" {
		p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, TagNewSuperior, req.NewSuperior, "New Superior"))
	}
	return p
}

func (req *ModifyDNRequest) String() string {
	s := fmt.Sprintf("ModifyDNRequest(dn=%s, newRDN=%s, deleteOldRDN=%t", req.DN, req.NewRDN, req.DeleteOldRDN)
	if req.NewSuperior != "" {
		s += ", newSuperior=" + req.NewSuperior
	}
	return s + ")"
}

func decodeModifyDNRequest(packet *ber.Packet) (*ModifyDNRequest, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagModifyDNRequestDecodeSequence, err, "cannot decode the modify DN request as a sequence")
	}
	if n := len(packet.Children); n < 3 || n > 4 {
		return nil, protocolError(DiagModifyDNRequestDecodeInvalidElementCount, "modify DN request holds %d elements, expected 3 or 4", n)
	}
	req := &ModifyDNRequest{}
	var err error
	if req.DN, err = decodeString(packet.Children[0]); err != nil {
		return nil, wrapError(DiagModifyDNRequestDecodeDN, err, "cannot decode the entry DN")
	}
	if req.NewRDN, err = decodeString(packet.Children[1]); err != nil {
		return nil, wrapError(DiagModifyDNRequestDecodeNewRDN, err, "cannot decode the new RDN")
	}
	if req.DeleteOldRDN, err = decodeBoolean(packet.Children[2]); err != nil {
		return nil, wrapError(DiagModifyDNRequestDecodeDeleteOldRDN, err, "cannot decode the deleteOldRDN flag")
	}
	if len(packet.Children) == 4 {
		sup := packet.Children[3]
		if !isContext(sup, TagNewSuperior) {
			return nil, protocolError(DiagModifyDNRequestDecodeNewSuperior, "unexpected modify DN element %s/%d",
				ber.ClassMap[sup.ClassType], sup.Tag)
		}
		if req.NewSuperior, err = decodeString(sup); err != nil {
			return nil, wrapError(DiagModifyDNRequestDecodeNewSuperior, err, "cannot decode the new superior")
		}
	}
	return req, nil
}
