package ldap

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// DelRequest ::= [APPLICATION 10] LDAPDN
type DelRequest struct {
	DN string
}

func NewDelRequest(dn string) *DelRequest {
	return &DelRequest{DN: dn}
}

func (*DelRequest) Tag() ber.Tag   { return ApplicationDelRequest }
func (r *DelRequest) Name() string { return opName(r) }

func (r *DelRequest) Encode() *ber.Packet {
	return ber.NewString(ber.ClassApplication, ber.TypePrimitive, ApplicationDelRequest, r.DN,
		ApplicationMap[ApplicationDelRequest])
}

func (r *DelRequest) String() string {
	return fmt.Sprintf("DeleteRequest(dn=%s)", r.DN)
}

func decodeDelRequest(packet *ber.Packet) (*DelRequest, error) {
	dn, err := decodeString(packet)
	if err != nil {
		return nil, wrapError(DiagDeleteRequestDecodeDN, err, "cannot decode the DN to delete")
	}
	return &DelRequest{DN: dn}, nil
}
