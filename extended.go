package ldap

import (
	"fmt"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// Context tags of the extended operation fields.
const (
	TagExtendedRequestName   = 0
	TagExtendedRequestValue  = 1
	TagExtendedResponseName  = 10
	TagExtendedResponseValue = 11
)

// ExtendedRequest represents an extended operation.
//
//	ExtendedRequest ::= [APPLICATION 23] SEQUENCE {
//	     requestName      [0] LDAPOID,
//	     requestValue     [1] OCTET STRING OPTIONAL }
type ExtendedRequest struct {
	OID string
	// Value is nil when the request has no value.
	Value []byte
}

func NewExtendedRequest(oid string, value []byte) *ExtendedRequest {
	return &ExtendedRequest{OID: oid, Value: cloneOptional(value)}
}

func (*ExtendedRequest) Tag() ber.Tag   { return ApplicationExtendedRequest }
func (r *ExtendedRequest) Name() string { return opName(r) }

func (r *ExtendedRequest) Encode() *ber.Packet {
	p := encodeConstructed(ber.ClassApplication, ApplicationExtendedRequest, ApplicationMap[ApplicationExtendedRequest],
		ber.NewString(ber.ClassContext, ber.TypePrimitive, TagExtendedRequestName, r.OID, "Extended Request Name"))
	if r.Value != nil {
		p.AppendChild(encodeOctetString(ber.ClassContext, TagExtendedRequestValue, r.Value, "Extended Request Value"))
	}
	return p
}

func (r *ExtendedRequest) String() string {
	if r.Value == nil {
		return fmt.Sprintf("ExtendedRequest(oid=%s)", r.OID)
	}
	return fmt.Sprintf("ExtendedRequest(oid=%s, value=%x)", r.OID, r.Value)
}

func decodeExtendedRequest(packet *ber.Packet) (*ExtendedRequest, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagExtendedRequestDecodeSequence, err, "cannot decode the extended request as a sequence")
	}
	if n := len(packet.Children); n < 1 || n > 2 {
		return nil, protocolError(DiagExtendedRequestDecodeInvalidElementCount, "extended request holds %d elements, expected 1 or 2", n)
	}
	name := packet.Children[0]
	if !isContext(name, TagExtendedRequestName) {
		return nil, protocolError(DiagExtendedRequestDecodeInvalidType, "unexpected extended request element %s/%d",
			ber.ClassMap[name.ClassType], name.Tag)
	}
	oid, err := decodeString(name)
	if err != nil {
		return nil, wrapError(DiagExtendedRequestDecodeOID, err, "cannot decode the request name")
	}
	r := &ExtendedRequest{OID: oid}
	if len(packet.Children) == 2 {
		value := packet.Children[1]
		if !isContext(value, TagExtendedRequestValue) {
			return nil, protocolError(DiagExtendedRequestDecodeInvalidType, "unexpected extended request element %s/%d",
				ber.ClassMap[value.ClassType], value.Tag)
		}
		if r.Value, err = decodeOctetString(value); err != nil {
			return nil, wrapError(DiagExtendedRequestDecodeValue, err, "cannot decode the request value")
		}
	}
	return r, nil
}

// ExtendedResponse answers an extended request, or is sent unsolicited
// with message ID 0.
//
//	ExtendedResponse ::= [APPLICATION 24] SEQUENCE {
//	     COMPONENTS OF LDAPResult,
//	     responseName     [10] LDAPOID OPTIONAL,
//	     responseValue    [11] OCTET STRING OPTIONAL }
type ExtendedResponse struct {
	LDAPResult
	// OID is omitted when empty.
	OID string
	// Value is omitted when nil.
	Value []byte
}

// NewNoticeOfDisconnection returns the unsolicited notification a server
// sends before it closes a connection.
func NewNoticeOfDisconnection(resultCode uint16, message string) *ExtendedResponse {
	return &ExtendedResponse{
		LDAPResult: LDAPResult{ResultCode: resultCode, DiagnosticMessage: message},
		OID:        OIDNoticeOfDisconnection,
	}
}

func (*ExtendedResponse) Tag() ber.Tag   { return ApplicationExtendedResponse }
func (r *ExtendedResponse) Name() string { return opName(r) }

func (r *ExtendedResponse) Encode() *ber.Packet {
	p := r.encode(ApplicationExtendedResponse)
	if r.OID != "" {
		p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, TagExtendedResponseName, r.OID, "Response Name"))
	}
	if r.Value != nil {
		p.AppendChild(encodeOctetString(ber.ClassContext, TagExtendedResponseValue, r.Value, "Response Value"))
	}
	return p
}

func (r *ExtendedResponse) String() string {
	s := r.describe("ExtendedResponse")
	if r.OID != "" {
		s += ", oid=" + r.OID
	}
	if r.Value != nil {
		s += fmt.Sprintf(", value=%x", r.Value)
	}
	return s + ")"
}

func decodeExtendedResponse(packet *ber.Packet) (*ExtendedResponse, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagResultDecodeSequence, err, "cannot decode the extended response as a sequence")
	}
	if n := len(packet.Children); n < 3 || n > 6 {
		return nil, protocolError(DiagExtendedResultDecodeInvalidElementCount, "extended response holds %d elements, expected 3 to 6", n)
	}
	r := &ExtendedResponse{}
	rest, err := decodeLDAPResult(packet, &r.LDAPResult)
	if err != nil {
		return nil, err
	}
	for _, child := range rest {
		switch {
		case isContext(child, TagReferral):
			if r.Referrals, err = decodeReferrals(child); err != nil {
				return nil, err
			}
		case isContext(child, TagExtendedResponseName):
			if r.OID, err = decodeString(child); err != nil {
				return nil, wrapError(DiagExtendedResultDecodeOID, err, "cannot decode the response name")
			}
		case isContext(child, TagExtendedResponseValue):
			if r.Value, err = decodeOctetString(child); err != nil {
				return nil, wrapError(DiagExtendedResultDecodeValue, err, "cannot decode the response value")
			}
		default:
			return nil, protocolError(DiagExtendedResultDecodeInvalidType, "unexpected extended response element %s/%d",
				ber.ClassMap[child.ClassType], child.Tag)
		}
	}
	return r, nil
}
