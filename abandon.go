package ldap

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// AbandonRequest ::= [APPLICATION 16] MessageID
type AbandonRequest struct {
	MessageID int64
}

func (*AbandonRequest) Tag() ber.Tag   { return ApplicationAbandonRequest }
func (r *AbandonRequest) Name() string { return opName(r) }

func (r *AbandonRequest) Encode() *ber.Packet {
	return ber.NewInteger(ber.ClassApplication, ber.TypePrimitive, ApplicationAbandonRequest, r.MessageID,
		ApplicationMap[ApplicationAbandonRequest])
}

func (r *AbandonRequest) String() string {
	return fmt.Sprintf("AbandonRequest(idToAbandon=%d)", r.MessageID)
}

func decodeAbandonRequest(packet *ber.Packet) (*AbandonRequest, error) {
	id, err := decodeInteger(packet)
	if err != nil {
		return nil, wrapError(DiagAbandonRequestDecodeID, err, "cannot decode the message ID to abandon")
	}
	return &AbandonRequest{MessageID: id}, nil
}
