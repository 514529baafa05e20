package ldap

import (
	"fmt"
	"io"
	"math"
	"strings"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// TagControls is the context tag of the control sequence in a message.
const TagControls = 0

// ProtocolOp is one of the request or response operations a message
// carries. Every implementation encodes to an element with its own
// application tag.
type ProtocolOp interface {
	Tag() ber.Tag
	Name() string
	Encode() *ber.Packet
	String() string
}

func opName(op ProtocolOp) string {
	return ApplicationMap[uint8(op.Tag())]
}

// DecodeProtocolOp decodes the protocol op element of a message.
func DecodeProtocolOp(packet *ber.Packet) (ProtocolOp, error) {
	if packet == nil {
		return nil, protocolError(DiagProtocolOpDecodeNull, "missing protocol op element")
	}
	if packet.ClassType != ber.ClassApplication {
		return nil, protocolError(DiagProtocolOpDecodeInvalidType, "protocol op has class %s, expected application",
			ber.ClassMap[packet.ClassType])
	}

	switch packet.Tag {
	case ApplicationBindRequest:
		return decodeBindRequest(packet)
	case ApplicationBindResponse:
		return decodeBindResponse(packet)
	case ApplicationUnbindRequest:
		return decodeUnbindRequest(packet)
	case ApplicationSearchRequest:
		return decodeSearchRequest(packet)
	case ApplicationSearchResultEntry:
		return decodeSearchResultEntry(packet)
	case ApplicationSearchResultReference:
		return decodeSearchResultReference(packet)
	case ApplicationSearchResultDone:
		r, err := decodeResponse(packet)
		if err != nil {
			return nil, err
		}
		return &SearchResultDone{*r}, nil
	case ApplicationModifyRequest:
		return decodeModifyRequest(packet)
	case ApplicationModifyResponse:
		r, err := decodeResponse(packet)
		if err != nil {
			return nil, err
		}
		return &ModifyResponse{*r}, nil
	case ApplicationAddRequest:
		return decodeAddRequest(packet)
	case ApplicationAddResponse:
		r, err := decodeResponse(packet)
		if err != nil {
			return nil, err
		}
		return &AddResponse{*r}, nil
	case ApplicationDelRequest:
		return decodeDelRequest(packet)
	case ApplicationDelResponse:
		r, err := decodeResponse(packet)
		if err != nil {
			return nil, err
		}
		return &DelResponse{*r}, nil
	case ApplicationModifyDNRequest:
		return decodeModifyDNRequest(packet)
	case ApplicationModifyDNResponse:
		r, err := decodeResponse(packet)
		if err != nil {
			return nil, err
		}
		return &ModifyDNResponse{*r}, nil
	case ApplicationCompareRequest:
		return decodeCompareRequest(packet)
	case ApplicationCompareResponse:
		r, err := decodeResponse(packet)
		if err != nil {
			return nil, err
		}
		return &CompareResponse{*r}, nil
	case ApplicationAbandonRequest:
		return decodeAbandonRequest(packet)
	case ApplicationExtendedRequest:
		return decodeExtendedRequest(packet)
	case ApplicationExtendedResponse:
		return decodeExtendedResponse(packet)
	}
	return nil, protocolError(DiagProtocolOpDecodeInvalidType, "unsupported protocol op type %d", packet.Tag)
}

// ResponseTagFor returns the application tag of the response that answers
// a request with the given tag. Unbind and abandon have no response.
func ResponseTagFor(requestTag ber.Tag) (ber.Tag, bool) {
	switch requestTag {
	case ApplicationBindRequest:
		return ApplicationBindResponse, true
	case ApplicationSearchRequest:
		return ApplicationSearchResultDone, true
	case ApplicationModifyRequest:
		return ApplicationModifyResponse, true
	case ApplicationAddRequest:
		return ApplicationAddResponse, true
	case ApplicationDelRequest:
		return ApplicationDelResponse, true
	case ApplicationModifyDNRequest:
		return ApplicationModifyDNResponse, true
	case ApplicationCompareRequest:
		return ApplicationCompareResponse, true
	case ApplicationExtendedRequest:
		return ApplicationExtendedResponse, true
	}
	return 0, false
}

// Message is the LDAPMessage envelope.
//
//	LDAPMessage ::= SEQUENCE {
//	     messageID       MessageID,
//	     protocolOp      CHOICE { ... },
//	     controls       [0] Controls OPTIONAL }
type Message struct {
	MessageID  int64
	ProtocolOp ProtocolOp
	Controls   []*Control
}

func NewMessage(messageID int64, op ProtocolOp, controls ...*Control) *Message {
	return &Message{MessageID: messageID, ProtocolOp: op, Controls: controls}
}

// Encode returns the BER form of the message. The controls element is
// only written when there is at least one control.
func (m *Message) Encode() *ber.Packet {
	p := encodeSequence("LDAP Message",
		encodeInteger(m.MessageID, "Message ID"),
		m.ProtocolOp.Encode())
	if len(m.Controls) > 0 {
		controls := ber.Encode(ber.ClassContext, ber.TypeConstructed, TagControls, nil, "Controls")
		for _, c := range m.Controls {
			controls.AppendChild(c.Encode())
		}
		p.AppendChild(controls)
	}
	return p
}

// Bytes returns the encoded message.
func (m *Message) Bytes() []byte {
	return m.Encode().Bytes()
}

func (m *Message) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "LDAPMessage(msgID=%d, protocolOp=%s", m.MessageID, m.ProtocolOp)
	if len(m.Controls) > 0 {
		sb.WriteString(", controls={")
		for i, c := range m.Controls {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(c.String())
		}
		sb.WriteString("}")
	}
	sb.WriteString(")")
	return sb.String()
}

// DecodeMessage decodes a message envelope and its protocol op. When the
// envelope is sound but the protocol op is not, the returned error has the
// DiagMessageDecodeProtocolOp diagnostic and wraps the op failure, so a
// server can still answer with a response of the matching type.
func DecodeMessage(packet *ber.Packet) (*Message, error) {
	if packet == nil || packet.ClassType != ber.ClassUniversal || packet.Tag != ber.TagSequence {
		return nil, protocolError(DiagMessageDecodeSequence, "LDAP message is not a sequence")
	}
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagMessageDecodeSequence, err, "cannot decode the LDAP message as a sequence")
	}
	if n := len(packet.Children); n < 2 || n > 3 {
		return nil, protocolError(DiagMessageDecodeInvalidElementCount, "LDAP message holds %d elements, expected 2 or 3", n)
	}

	id, err := decodeInteger(packet.Children[0])
	if err != nil {
		return nil, wrapError(DiagMessageDecodeID, err, "cannot decode the message ID")
	}
	if id < 0 || id > math.MaxInt32 {
		return nil, protocolError(DiagMessageDecodeID, "message ID %d out of range", id)
	}

	var controls []*Control
	if len(packet.Children) == 3 {
		cp := packet.Children[2]
		if !isContext(cp, TagControls) {
			return nil, protocolError(DiagMessageDecodeControls, "unexpected message element %s/%d",
				ber.ClassMap[cp.ClassType], cp.Tag)
		}
		if err := expectConstructed(cp); err != nil {
			return nil, wrapError(DiagMessageDecodeControls, err, "cannot decode the controls as a sequence")
		}
		for _, child := range cp.Children {
			c, err := DecodeControl(child)
			if err != nil {
				return nil, wrapError(DiagMessageDecodeControls, err, "cannot decode a message control")
			}
			controls = append(controls, c)
		}
	}

	op, err := DecodeProtocolOp(packet.Children[1])
	if err != nil {
		return nil, wrapError(DiagMessageDecodeProtocolOp, err, "cannot decode the protocol op of message %d", id)
	}
	return &Message{MessageID: id, ProtocolOp: op, Controls: controls}, nil
}

// ReadMessage reads and decodes one message from r. The byte count is
// returned even when decoding fails so it can be recorded.
func ReadMessage(r io.Reader) (*Message, int, error) {
	packet, n, err := ReadElement(r)
	if err != nil {
		return nil, n, err
	}
	m, err := DecodeMessage(packet)
	return m, n, err
}

// ParseMessage decodes one message from a complete buffer.
func ParseMessage(b []byte) (*Message, error) {
	packet, err := DecodeElement(b)
	if err != nil {
		return nil, err
	}
	return DecodeMessage(packet)
}
