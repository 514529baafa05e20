package ldap

import (
	"fmt"

	"github.com/Azure/go-ntlmssp"
	ber "github.com/go-asn1-ber/asn1-ber"
)

// TagServerSASLCreds is the context tag of serverSaslCreds in a bind response.
const TagServerSASLCreds = 7

// BindRequest authenticates a connection.
//
//	BindRequest ::= [APPLICATION 0] SEQUENCE {
//	     version                 INTEGER (1 ..  127),
//	     name                    LDAPDN,
//	     authentication          AuthenticationChoice }
//
// AuthType selects which of Password, SASLMechanism and Credentials are
// used: simple binds carry Password, SASL binds carry SASLMechanism and the
// optional Credentials, NTLM binds carry the raw NTLMSSP message in
// Credentials.
type BindRequest struct {
	Version       int64
	DN            string
	AuthType      ber.Tag
	Password      string
	SASLMechanism string
	Credentials   []byte
}

// NewSimpleBindRequest returns an LDAPv3 simple bind. An empty password
// is an anonymous or unauthenticated bind.
func NewSimpleBindRequest(dn, password string) *BindRequest {
	return &BindRequest{Version: 3, DN: dn, AuthType: LDAPBindAuthSimple, Password: password}
}

// NewSASLBindRequest returns an LDAPv3 SASL bind. nil credentials are
// omitted from the request.
func NewSASLBindRequest(dn, mechanism string, credentials []byte) *BindRequest {
	return &BindRequest{
		Version:       3,
		DN:            dn,
		AuthType:      LDAPBindAuthSASL,
		SASLMechanism: mechanism,
		Credentials:   cloneOptional(credentials),
	}
}

// NewNTLMNegotiateBindRequest starts a Sicily NTLM bind with an NTLMSSP
// negotiate message.
func NewNTLMNegotiateBindRequest(domain, workstation string) (*BindRequest, error) {
	negotiate, err := ntlmssp.NewNegotiateMessage(domain, workstation)
	if err != nil {
		return nil, NewError(LDAPResultClientSideLocalError, err)
	}
	return &BindRequest{Version: 3, AuthType: LDAPBindAuthNTLMNegotiate, Credentials: negotiate}, nil
}

// NewNTLMResponseBindRequest answers the challenge returned by the server
// for a negotiate request. See BindResponse.NTLMChallenge.
func NewNTLMResponseBindRequest(challenge []byte, user, password string, domainNeeded bool) (*BindRequest, error) {
	if len(challenge) == 0 {
		return nil, NewError(LDAPResultClientSideLocalError, fmt.Errorf("ntlm challenge is empty"))
	}
	authenticate, err := ntlmssp.ProcessChallenge(challenge, user, password, domainNeeded)
	if err != nil {
		return nil, NewError(LDAPResultClientSideLocalError, err)
	}
	return &BindRequest{Version: 3, AuthType: LDAPBindAuthNTLMResponse, Credentials: authenticate}, nil
}

func (*BindRequest) Tag() ber.Tag   { return ApplicationBindRequest }
func (r *BindRequest) Name() string { return opName(r) }

func (r *BindRequest) Encode() *ber.Packet {
	p := encodeConstructed(ber.ClassApplication, ApplicationBindRequest, ApplicationMap[ApplicationBindRequest],
		encodeInteger(r.Version, "Version"),
		encodeString(r.DN, "User Name"))

	switch r.AuthType {
	case LDAPBindAuthSASL:
		sasl := ber.Encode(ber.ClassContext, ber.TypeConstructed, LDAPBindAuthSASL, nil, "SASL Authentication")
		sasl.AppendChild(encodeString(r.SASLMechanism, "SASL Mechanism"))
		if r.Credentials != nil {
			sasl.AppendChild(encodeOctetString(ber.ClassUniversal, ber.TagOctetString, r.Credentials, "SASL Credentials"))
		}
		p.AppendChild(sasl)
	case LDAPBindAuthNTLMNegotiate:
		p.AppendChild(encodeOctetString(ber.ClassContext, LDAPBindAuthNTLMNegotiate, r.Credentials, "NTLM Negotiate"))
	case LDAPBindAuthNTLMResponse:
		p.AppendChild(encodeOctetString(ber.ClassContext, LDAPBindAuthNTLMResponse, r.Credentials, "NTLM Response"))
	default:
		p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, LDAPBindAuthSimple, r.Password, "Password"))
	}
	return p
}

func (r *BindRequest) String() string {
	switch r.AuthType {
	case LDAPBindAuthSimple:
		return fmt.Sprintf("BindRequest(version=%d, dn=%s, authType=simple)", r.Version, r.DN)
	case LDAPBindAuthSASL:
		return fmt.Sprintf("BindRequest(version=%d, dn=%s, authType=sasl, mechanism=%s)", r.Version, r.DN, r.SASLMechanism)
	}
	return fmt.Sprintf("BindRequest(version=%d, dn=%s, authType=ntlm(%d))", r.Version, r.DN, r.AuthType)
}

func decodeBindRequest(packet *ber.Packet) (*BindRequest, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagBindRequestDecodeSequence, err, "cannot decode the bind request as a sequence")
	}
	if n := len(packet.Children); n != 3 {
		return nil, protocolError(DiagBindRequestDecodeInvalidElementCount, "bind request holds %d elements, expected 3", n)
	}

	r := &BindRequest{}
	var err error
	if r.Version, err = decodeInteger(packet.Children[0]); err != nil {
		return nil, wrapError(DiagBindRequestDecodeVersion, err, "cannot decode the protocol version")
	}
	if r.Version < 1 || r.Version > 127 {
		return nil, protocolError(DiagBindRequestDecodeVersion, "protocol version %d out of range", r.Version)
	}
	if r.DN, err = decodeString(packet.Children[1]); err != nil {
		return nil, wrapError(DiagBindRequestDecodeDN, err, "cannot decode the bind DN")
	}

	auth := packet.Children[2]
	if auth.ClassType != ber.ClassContext {
		return nil, protocolError(DiagBindRequestDecodeInvalidCredentialType, "authentication choice has class %s",
			ber.ClassMap[auth.ClassType])
	}
	r.AuthType = auth.Tag
	switch auth.Tag {
	case LDAPBindAuthSimple:
		if r.Password, err = decodeString(auth); err != nil {
			return nil, wrapError(DiagBindRequestDecodePassword, err, "cannot decode the simple password")
		}
	case LDAPBindAuthSASL:
		if err := expectConstructed(auth); err != nil {
			return nil, wrapError(DiagBindRequestDecodeSASL, err, "cannot decode the SASL credentials as a sequence")
		}
		if n := len(auth.Children); n < 1 || n > 2 {
			return nil, protocolError(DiagBindRequestDecodeSASL, "SASL credentials hold %d elements, expected 1 or 2", n)
		}
		if r.SASLMechanism, err = decodeString(auth.Children[0]); err != nil {
			return nil, wrapError(DiagBindRequestDecodeSASL, err, "cannot decode the SASL mechanism")
		}
		if len(auth.Children) == 2 {
			if r.Credentials, err = decodeOctetString(auth.Children[1]); err != nil {
				return nil, wrapError(DiagBindRequestDecodeSASL, err, "cannot decode the SASL credentials")
			}
		}
	case LDAPBindAuthNTLMNegotiate, LDAPBindAuthNTLMResponse:
		if r.Credentials, err = decodeOctetString(auth); err != nil {
			return nil, wrapError(DiagBindRequestDecodeNTLM, err, "cannot decode the NTLM message")
		}
	default:
		return nil, protocolError(DiagBindRequestDecodeInvalidCredentialType, "unsupported authentication choice %d", auth.Tag)
	}
	return r, nil
}

// BindResponse answers a bind request.
//
//	BindResponse ::= [APPLICATION 1] SEQUENCE {
//	     COMPONENTS OF LDAPResult,
//	     serverSaslCreds    [7] OCTET STRING OPTIONAL }
type BindResponse struct {
	LDAPResult
	// ServerSASLCreds is nil when absent.
	ServerSASLCreds []byte
}

func (*BindResponse) Tag() ber.Tag   { return ApplicationBindResponse }
func (r *BindResponse) Name() string { return opName(r) }

func (r *BindResponse) Encode() *ber.Packet {
	p := r.encode(ApplicationBindResponse)
	if r.ServerSASLCreds != nil {
		p.AppendChild(encodeOctetString(ber.ClassContext, TagServerSASLCreds, r.ServerSASLCreds, "serverSaslCreds"))
	}
	return p
}

func (r *BindResponse) String() string {
	s := r.describe("BindResponse")
	if r.ServerSASLCreds != nil {
		s += fmt.Sprintf(", serverSASLCredentials=%x", r.ServerSASLCreds)
	}
	return s + ")"
}

// NTLMChallenge returns the NTLMSSP challenge of a Sicily negotiate
// response, which servers place in the matched DN field.
func (r *BindResponse) NTLMChallenge() []byte {
	return []byte(r.MatchedDN)
}

func decodeBindResponse(packet *ber.Packet) (*BindResponse, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagResultDecodeSequence, err, "cannot decode the bind response as a sequence")
	}
	if n := len(packet.Children); n < 3 || n > 5 {
		return nil, protocolError(DiagResultDecodeInvalidElementCount, "bind response holds %d elements, expected 3 to 5", n)
	}
	r := &BindResponse{}
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
		case isContext(child, TagServerSASLCreds):
			if r.ServerSASLCreds, err = decodeOctetString(child); err != nil {
				return nil, wrapError(DiagBindResultDecodeServerSASLCredentials, err, "cannot decode the server SASL credentials")
			}
		default:
			return nil, protocolError(DiagResultDecodeInvalidType, "unexpected bind response element %s/%d",
				ber.ClassMap[child.ClassType], child.Tag)
		}
	}
	return r, nil
}
