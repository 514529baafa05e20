package ldap

import (
	"fmt"
	"strings"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// TagReferral is the context tag of the referral sequence inside an
// LDAPResult.
const TagReferral = 3

// LDAPResult is the common body of every response.
//
//	LDAPResult ::= SEQUENCE {
//	     resultCode         ENUMERATED,
//	     matchedDN          LDAPDN,
//	     diagnosticMessage  LDAPString,
//	     referral           [3] Referral OPTIONAL }
//
// An empty MatchedDN or DiagnosticMessage is sent as a zero-length string,
// which is how the protocol marks them absent.
type LDAPResult struct {
	ResultCode        uint16
	MatchedDN         string
	DiagnosticMessage string
	// Referrals is only encoded when it holds at least one URL.
	Referrals []string
}

func (r *LDAPResult) encode(tag ber.Tag) *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, tag, nil, ApplicationMap[uint8(tag)])
	r.appendTo(p)
	return p
}

func (r *LDAPResult) appendTo(p *ber.Packet) {
	p.AppendChild(encodeEnumerated(int64(r.ResultCode), "resultCode"))
	p.AppendChild(encodeString(r.MatchedDN, "matchedDN"))
	p.AppendChild(encodeString(r.DiagnosticMessage, "diagnosticMessage"))
	if len(r.Referrals) > 0 {
		refs := ber.Encode(ber.ClassContext, ber.TypeConstructed, TagReferral, nil, "Referral")
		for _, url := range r.Referrals {
			refs.AppendChild(encodeString(url, "URI"))
		}
		p.AppendChild(refs)
	}
}

func (r *LDAPResult) describe(name string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%s(resultCode=%d", name, r.ResultCode)
	if r.DiagnosticMessage != "" {
		fmt.Fprintf(&sb, ", errorMessage=%s", r.DiagnosticMessage)
	}
	if r.MatchedDN != "" {
		fmt.Fprintf(&sb, ", matchedDN=%s", r.MatchedDN)
	}
	if len(r.Referrals) > 0 {
		fmt.Fprintf(&sb, ", referralURLs={%s}", strings.Join(r.Referrals, ", "))
	}
	return sb.String()
}

// Err returns nil for a successful result, otherwise an *Error carrying the
// result code and the diagnostic message.
func (r *LDAPResult) Err() error {
	switch r.ResultCode {
	case LDAPResultSuccess, LDAPResultCompareFalse, LDAPResultCompareTrue:
		return nil
	}
	return &Error{ResultCode: r.ResultCode, Message: r.DiagnosticMessage, Offset: -1}
}

// decodeLDAPResult fills r from the first three children of packet and
// returns the children that follow them. The caller checks the count.
func decodeLDAPResult(packet *ber.Packet, r *LDAPResult) ([]*ber.Packet, error) {
	code, err := decodeEnumerated(packet.Children[0])
	if err != nil {
		return nil, wrapError(DiagResultDecodeResultCode, err, "cannot decode the result code")
	}
	if code < 0 || code > 0xffff {
		return nil, protocolError(DiagResultDecodeResultCode, "result code %d out of range", code)
	}
	r.ResultCode = uint16(code)
	if r.MatchedDN, err = decodeString(packet.Children[1]); err != nil {
		return nil, wrapError(DiagResultDecodeMatchedDN, err, "cannot decode the matched DN")
	}
	if r.DiagnosticMessage, err = decodeString(packet.Children[2]); err != nil {
		return nil, wrapError(DiagResultDecodeErrorMessage, err, "cannot decode the diagnostic message")
	}
	return packet.Children[3:], nil
}

func decodeReferrals(packet *ber.Packet) ([]string, error) {
	urls, err := decodeStringSequence(packet)
	if err != nil {
		return nil, wrapError(DiagResultDecodeReferrals, err, "cannot decode the referral URLs")
	}
	return urls, nil
}

func isContext(p *ber.Packet, tag ber.Tag) bool {
	return p.ClassType == ber.ClassContext && p.Tag == tag
}

// decodeResponse decodes the responses whose body is a bare LDAPResult.
func decodeResponse(packet *ber.Packet) (*LDAPResult, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagResultDecodeSequence, err, "cannot decode the %s as a sequence", ApplicationMap[uint8(packet.Tag)])
	}
	if n := len(packet.Children); n < 3 || n > 4 {
		return nil, protocolError(DiagResultDecodeInvalidElementCount, "%s holds %d elements, expected 3 or 4",
			ApplicationMap[uint8(packet.Tag)], n)
	}
	r := &LDAPResult{}
	rest, err := decodeLDAPResult(packet, r)
	if err != nil {
		return nil, err
	}
	for _, child := range rest {
		if !isContext(child, TagReferral) {
			return nil, protocolError(DiagResultDecodeInvalidType, "unexpected %s element %s/%d",
				ApplicationMap[uint8(packet.Tag)], ber.ClassMap[child.ClassType], child.Tag)
		}
		if r.Referrals, err = decodeReferrals(child); err != nil {
			return nil, err
		}
	}
	return r, nil
}

type SearchResultDone struct{ LDAPResult }

type ModifyResponse struct{ LDAPResult }

type AddResponse struct{ LDAPResult }

type DelResponse struct{ LDAPResult }

type ModifyDNResponse struct{ LDAPResult }

type CompareResponse struct{ LDAPResult }

func (*SearchResultDone) Tag() ber.Tag { return ApplicationSearchResultDone }
func (*ModifyResponse) Tag() ber.Tag   { return ApplicationModifyResponse }
func (*AddResponse) Tag() ber.Tag      { return ApplicationAddResponse }
func (*DelResponse) Tag() ber.Tag      { return ApplicationDelResponse }
func (*ModifyDNResponse) Tag() ber.Tag { return ApplicationModifyDNResponse }
func (*CompareResponse) Tag() ber.Tag  { return ApplicationCompareResponse }

func (r *SearchResultDone) Name() string { return opName(r) }
func (r *ModifyResponse) Name() string   { return opName(r) }
func (r *AddResponse) Name() string      { return opName(r) }
func (r *DelResponse) Name() string      { return opName(r) }
func (r *ModifyDNResponse) Name() string { return opName(r) }
func (r *CompareResponse) Name() string  { return opName(r) }

func (r *SearchResultDone) Encode() *ber.Packet { return r.encode(r.Tag()) }
func (r *ModifyResponse) Encode() *ber.Packet   { return r.encode(r.Tag()) }
func (r *AddResponse) Encode() *ber.Packet      { return r.encode(r.Tag()) }
func (r *DelResponse) Encode() *ber.Packet      { return r.encode(r.Tag()) }
func (r *ModifyDNResponse) Encode() *ber.Packet { return r.encode(r.Tag()) }
func (r *CompareResponse) Encode() *ber.Packet  { return r.encode(r.Tag()) }

func (r *SearchResultDone) String() string { return r.describe("SearchResultDone") + ")" }
func (r *ModifyResponse) String() string   { return r.describe("ModifyResponse") + ")" }
func (r *AddResponse) String() string      { return r.describe("AddResponse") + ")" }
func (r *DelResponse) String() string      { return r.describe("DeleteResponse") + ")" }
func (r *ModifyDNResponse) String() string { return r.describe("ModifyDNResponse") + ")" }
func (r *CompareResponse) String() string  { return r.describe("CompareResponse") + ")" }

// NewResponse builds the bare result response for a response tag. It
// returns nil for tags whose response carries more than an LDAPResult.
func NewResponse(tag ber.Tag, result LDAPResult) ProtocolOp {
	switch tag {
	case ApplicationSearchResultDone:
		return &SearchResultDone{result}
	case ApplicationModifyResponse:
		return &ModifyResponse{result}
	case ApplicationAddResponse:
		return &AddResponse{result}
	case ApplicationDelResponse:
		return &DelResponse{result}
	case ApplicationModifyDNResponse:
		return &ModifyDNResponse{result}
	case ApplicationCompareResponse:
		return &CompareResponse{result}
	case ApplicationBindResponse:
		return &BindResponse{LDAPResult: result}
	case ApplicationExtendedResponse:
		return &ExtendedResponse{LDAPResult: result}
	}
	return nil
}
