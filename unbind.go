package ldap

import (
	ber "github.com/go-asn1-ber/asn1-ber"
)

// UnbindRequest ::= [APPLICATION 2] NULL
type UnbindRequest struct{}

func (*UnbindRequest) Tag() ber.Tag   { return ApplicationUnbindRequest }
func (r *UnbindRequest) Name() string { return opName(r) }
func (*UnbindRequest) String() string { return "UnbindRequest()" }

func (*UnbindRequest) Encode() *ber.Packet {
	return encodeNull(ber.ClassApplication, ApplicationUnbindRequest, ApplicationMap[ApplicationUnbindRequest])
}

func decodeUnbindRequest(packet *ber.Packet) (*UnbindRequest, error) {
	if err := decodeNull(packet); err != nil {
		return nil, wrapError(DiagUnbindRequestDecode, err, "cannot decode the unbind request")
	}
	return &UnbindRequest{}, nil
}
