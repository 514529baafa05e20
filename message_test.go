package ldap

import (
	"bytes"
	"errors"
	"io"
	"testing"

	ber "github.com/go-asn1-ber/asn1-ber"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func appPacket(tag ber.Tag, children ...*ber.Packet) *ber.Packet {
	return encodeConstructed(ber.ClassApplication, tag, "", children...)
}

func ctxPacket(tag ber.Tag, children ...*ber.Packet) *ber.Packet {
	return encodeConstructed(ber.ClassContext, tag, "", children...)
}

func ctxString(tag ber.Tag, v string) *ber.Packet {
	return ber.NewString(ber.ClassContext, ber.TypePrimitive, tag, v, "")
}

func TestMessageRoundTrip(t *testing.T) {
	filter, err := ParseFilter("(&(objectClass=person)(|(uid=j*)(mail=*@example.com)))")
	require.NoError(t, err)

	ntlm, err := NewNTLMNegotiateBindRequest("EXAMPLE", "WS01")
	require.NoError(t, err)

	modify := NewModifyRequest("uid=jdoe,ou=people,dc=example,dc=com")
	modify.Add("mail", []string{"jdoe@example.com"})
	modify.Delete("description", nil)
	modify.Replace("sn", []string{"Doe", "Dough"})
	modify.Increment("uidNumber", "1")

	add := NewAddRequest("uid=jdoe,ou=people,dc=example,dc=com")
	add.Attribute("objectClass", []string{"top", "person"})
	add.Attribute("cn", []string{"John Doe"})

	ops := []ProtocolOp{
		NewSimpleBindRequest("cn=admin,dc=example,dc=com", "secret"),
		NewSimpleBindRequest("", ""),
		NewSASLBindRequest("", "EXTERNAL", nil),
		NewSASLBindRequest("", "DIGEST-MD5", []byte("creds")),
		ntlm,
		&BindResponse{LDAPResult: LDAPResult{ResultCode: LDAPResultSaslBindInProgress}, ServerSASLCreds: []byte{1, 2, 3}},
		&BindResponse{LDAPResult: LDAPResult{ResultCode: LDAPResultInvalidCredentials, DiagnosticMessage: "bad password"}},
		&UnbindRequest{},
		NewSearchRequest("dc=example,dc=com", ScopeWholeSubtree, DerefAlways, 100, 30, false, filter, []string{"cn", "mail"}),
		NewSearchRequest("", ScopeBaseObject, NeverDerefAliases, 0, 0, true, NewPresentFilter("objectClass"), nil),
		NewSearchResultEntry("uid=jdoe,dc=example,dc=com", NewAttribute("cn", "John Doe"), NewAttribute("objectClass", "top", "person")),
		NewSearchResultEntry("dc=example,dc=com"),
		&SearchResultReference{URIs: []string{"ldap://a.example.com/dc=example,dc=com", "ldap://b.example.com/"}},
		&SearchResultDone{LDAPResult{ResultCode: LDAPResultNoSuchObject, MatchedDN: "dc=example,dc=com", DiagnosticMessage: "no such entry"}},
		&SearchResultDone{LDAPResult{ResultCode: LDAPResultReferral, Referrals: []string{"ldap://other.example.com/"}}},
		modify,
		&ModifyResponse{},
		add,
		&AddResponse{LDAPResult{ResultCode: LDAPResultEntryAlreadyExists}},
		NewDelRequest("uid=jdoe,dc=example,dc=com"),
		&DelResponse{},
		NewModifyDNRequest("uid=jdoe,ou=people,dc=example,dc=com", "uid=jsmith", true, ""),
		NewModifyDNRequest("uid=jdoe,ou=people,dc=example,dc=com", "uid=jdoe", false, "ou=staff,dc=example,dc=com"),
		&ModifyDNResponse{},
		NewCompareRequest("uid=jdoe,dc=example,dc=com", "sn", []byte("Doe")),
		&CompareResponse{LDAPResult{ResultCode: LDAPResultCompareTrue}},
		&AbandonRequest{MessageID: 7},
		NewExtendedRequest(OIDWhoAmI, nil),
		NewExtendedRequest(OIDPasswordModify, []byte{0x30, 0x00}),
		&ExtendedResponse{Value: []byte("dn:uid=jdoe,dc=example,dc=com")},
		&ExtendedResponse{LDAPResult: LDAPResult{ResultCode: LDAPResultOperationsError, Referrals: []string{"ldap://x/"}}, OID: "1.2.3", Value: []byte{}},
		NewNoticeOfDisconnection(LDAPResultUnavailable, "shutting down"),
	}

	for i, op := range ops {
		t.Run(op.String(), func(t *testing.T) {
			msg := NewMessage(int64(i+1), op)
			decoded, err := ParseMessage(msg.Bytes())
			require.NoError(t, err)
			assert.Equal(t, msg, decoded)
			assert.Equal(t, op.Tag(), decoded.ProtocolOp.Tag())
			assert.Equal(t, ApplicationMap[uint8(op.Tag())], decoded.ProtocolOp.Name())
			assert.Equal(t, op.String(), decoded.ProtocolOp.String())
		})
	}
}

func TestMessageWithControls(t *testing.T) {
	msg := NewMessage(42, NewDelRequest("cn=x"),
		NewControl("1.2.840.113556.1.4.805", true, nil),
		NewControl("1.2.840.113556.1.4.319", false, []byte{0x30, 0x05, 0x02, 0x01, 0x0a, 0x04, 0x00}),
		NewControl("2.16.840.1.113730.3.4.2", false, []byte{}),
	)
	decoded, err := ParseMessage(msg.Bytes())
	require.NoError(t, err)
	assert.Equal(t, msg, decoded)

	c := FindControl(decoded.Controls, "1.2.840.113556.1.4.319")
	require.NotNil(t, c)
	assert.False(t, c.Criticality)
	assert.Nil(t, FindControl(decoded.Controls, "1.2.3"))
}

func TestMessageWireFormat(t *testing.T) {
	msg := NewMessage(1, NewSimpleBindRequest("cn=admin", "secret"))
	want := []byte{
		0x30, 0x1a,
		0x02, 0x01, 0x01,
		0x60, 0x15,
		0x02, 0x01, 0x03,
		0x04, 0x08, 'c', 'n', '=', 'a', 'd', 'm', 'i', 'n',
		0x80, 0x06, 's', 'e', 'c', 'r', 'e', 't',
	}
	assert.Equal(t, want, msg.Bytes())

	assert.Equal(t, []byte{0x30, 0x05, 0x02, 0x01, 0x03, 0x42, 0x00}, NewMessage(3, &UnbindRequest{}).Bytes())

	// A control without criticality or value is a bare OID.
	c := NewControl("1.2", false, nil)
	assert.Equal(t, []byte{0x30, 0x05, 0x04, 0x03, '1', '.', '2'}, c.Encode().Bytes())

	// Criticality uses the LDAP encoding of TRUE.
	c = NewControl("1.2", true, nil)
	assert.Equal(t, []byte{0x30, 0x08, 0x04, 0x03, '1', '.', '2', 0x01, 0x01, 0xff}, c.Encode().Bytes())
}

func TestSearchRequestWithoutFilter(t *testing.T) {
	req := &SearchRequest{BaseDN: "dc=example,dc=com", Scope: ScopeWholeSubtree}
	m, err := ParseMessage(NewMessage(5, req).Bytes())
	require.NoError(t, err)
	decoded, ok := m.ProtocolOp.(*SearchRequest)
	require.True(t, ok)
	assert.Equal(t, &PresentFilter{Attribute: "objectClass"}, decoded.Filter)
	assert.Contains(t, req.String(), "filter=(objectClass=*)")
	assert.Nil(t, req.Filter)
}

func TestMessageString(t *testing.T) {
	msg := NewMessage(2, NewDelRequest("cn=x"))
	assert.Equal(t, "LDAPMessage(msgID=2, protocolOp=DeleteRequest(dn=cn=x))", msg.String())

	msg = NewMessage(3, &ModifyResponse{LDAPResult{ResultCode: LDAPResultNoSuchObject, MatchedDN: "dc=x"}})
	assert.Equal(t, "LDAPMessage(msgID=3, protocolOp=ModifyResponse(resultCode=32, matchedDN=dc=x))", msg.String())
}

func TestDecodeMessageErrors(t *testing.T) {
	unbind := (&UnbindRequest{}).Encode()
	tests := []struct {
		name   string
		packet *ber.Packet
		diag   Diagnostic
	}{
		{"not a sequence", encodeString("x", ""), DiagMessageDecodeSequence},
		{"set", encodeSet("", encodeInteger(1, ""), unbind), DiagMessageDecodeSequence},
		{"one element", encodeSequence("", encodeInteger(1, "")), DiagMessageDecodeInvalidElementCount},
		{"four elements", encodeSequence("", encodeInteger(1, ""), unbind, ctxPacket(0), ctxPacket(0)), DiagMessageDecodeInvalidElementCount},
		{"negative id", encodeSequence("", encodeInteger(-1, ""), unbind), DiagMessageDecodeID},
		{"id too large", encodeSequence("", encodeInteger(1<<31, ""), unbind), DiagMessageDecodeID},
		{"constructed id", encodeSequence("", encodeSequence(""), unbind), DiagMessageDecodeID},
		{"controls with wrong tag", encodeSequence("", encodeInteger(1, ""), unbind, encodeSequence("")), DiagMessageDecodeControls},
		{"empty control", encodeSequence("", encodeInteger(1, ""), unbind, ctxPacket(0, encodeSequence(""))), DiagMessageDecodeControls},
		{"bad protocol op", encodeSequence("", encodeInteger(9, ""), appPacket(ApplicationBindRequest, encodeInteger(3, ""))), DiagMessageDecodeProtocolOp},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := DecodeMessage(reparse(t, tt.packet))
			require.Error(t, err)
			assert.Nil(t, m)
			assert.Equal(t, tt.diag, DiagnosticOf(err), err.Error())
		})
	}

	_, err := DecodeMessage(nil)
	assert.True(t, IsDiagnostic(err, DiagMessageDecodeSequence))
}

func TestDecodeMessageKeepsOpCause(t *testing.T) {
	packet := encodeSequence("", encodeInteger(9, ""), appPacket(ApplicationBindRequest, encodeInteger(3, "")))
	_, err := DecodeMessage(reparse(t, packet))
	require.True(t, IsDiagnostic(err, DiagMessageDecodeProtocolOp))

	cause := errors.Unwrap(err)
	require.NotNil(t, cause)
	assert.Equal(t, DiagBindRequestDecodeInvalidElementCount, DiagnosticOf(cause))
	assert.True(t, IsErrorWithCode(err, LDAPResultProtocolError))
	assert.Contains(t, err.Error(), "message 9")
}

func TestDecodeProtocolOpErrors(t *testing.T) {
	oct := func(s string) *ber.Packet { return encodeString(s, "") }
	integer := func(v int64) *ber.Packet { return encodeInteger(v, "") }
	enum := func(v int64) *ber.Packet { return encodeEnumerated(v, "") }
	boolean := func(v bool) *ber.Packet { return encodeBoolean(ber.ClassUniversal, ber.TagBoolean, v, "") }
	present := NewPresentFilter("objectClass").Encode
	emptyCN := NewAttribute("cn")

	search := func(scope, sizeLimit int64, filter *ber.Packet) *ber.Packet {
		return appPacket(ApplicationSearchRequest, oct(""), enum(scope), enum(0), integer(sizeLimit), integer(0),
			boolean(false), filter, encodeSequence(""))
	}

	tests := []struct {
		name   string
		packet *ber.Packet
		diag   Diagnostic
	}{
		{"context class", ctxString(0, ""), DiagProtocolOpDecodeInvalidType},
		{"unknown application tag", appPacket(20), DiagProtocolOpDecodeInvalidType},

		{"bind with two elements", appPacket(ApplicationBindRequest, integer(3), oct("")), DiagBindRequestDecodeInvalidElementCount},
		{"primitive bind", ber.NewString(ber.ClassApplication, ber.TypePrimitive, ApplicationBindRequest, "x", ""), DiagBindRequestDecodeSequence},
		{"bind version zero", appPacket(ApplicationBindRequest, integer(0), oct(""), ctxString(0, "")), DiagBindRequestDecodeVersion},
		{"bind version 128", appPacket(ApplicationBindRequest, integer(128), oct(""), ctxString(0, "")), DiagBindRequestDecodeVersion},
		{"bind universal credentials", appPacket(ApplicationBindRequest, integer(3), oct(""), oct("pw")), DiagBindRequestDecodeInvalidCredentialType},
		{"bind unknown auth choice", appPacket(ApplicationBindRequest, integer(3), oct(""), ctxString(5, "")), DiagBindRequestDecodeInvalidCredentialType},
		{"bind empty sasl", appPacket(ApplicationBindRequest, integer(3), oct(""), ctxPacket(3)), DiagBindRequestDecodeSASL},
		{"bind constructed password", appPacket(ApplicationBindRequest, integer(3), oct(""), ctxPacket(0)), DiagBindRequestDecodePassword},
		{"bind response unknown element", appPacket(ApplicationBindResponse, enum(0), oct(""), oct(""), ctxString(8, "x")), DiagResultDecodeInvalidType},

		{"unbind with content", ber.NewString(ber.ClassApplication, ber.TypePrimitive, ApplicationUnbindRequest, "x", ""), DiagUnbindRequestDecode},

		{"search with seven elements", appPacket(ApplicationSearchRequest, oct(""), enum(0), enum(0), integer(0), integer(0), boolean(false), present()), DiagSearchRequestDecodeInvalidElementCount},
		{"search with invalid scope", search(3, 0, present()), DiagSearchRequestDecodeScope},
		{"search with negative size limit", search(0, -1, present()), DiagSearchRequestDecodeSizeLimit},
		{"search with invalid filter", search(0, 0, oct("(cn=*)")), DiagSearchRequestDecodeFilter},
		{"search entry with one element", appPacket(ApplicationSearchResultEntry, oct("cn=a")), DiagSearchEntryDecodeInvalidElementCount},
		{"search entry with bad attribute", appPacket(ApplicationSearchResultEntry, oct("cn=a"), encodeSequence("", encodeSequence("", oct("cn")))), DiagSearchEntryDecodeAttributes},
		{"empty search reference", appPacket(ApplicationSearchResultReference), DiagSearchReferenceDecodeURLs},

		{"result code out of range", appPacket(ApplicationSearchResultDone, enum(70000), oct(""), oct("")), DiagResultDecodeResultCode},
		{"result with two elements", appPacket(ApplicationDelResponse, enum(0), oct("")), DiagResultDecodeInvalidElementCount},
		{"result with five elements", appPacket(ApplicationModifyResponse, enum(0), oct(""), oct(""), ctxPacket(3), ctxPacket(3)), DiagResultDecodeInvalidElementCount},
		{"result with unexpected element", appPacket(ApplicationAddResponse, enum(0), oct(""), oct(""), oct("")), DiagResultDecodeInvalidType},
		{"result with constructed message", appPacket(ApplicationCompareResponse, enum(0), oct(""), encodeSequence("")), DiagResultDecodeErrorMessage},

		{"modify with unknown operation", appPacket(ApplicationModifyRequest, oct("cn=a"), encodeSequence("", encodeSequence("", enum(7), emptyCN.encode()))), DiagModifyRequestDecodeChanges},
		{"modify with one element", appPacket(ApplicationModifyRequest, oct("cn=a")), DiagModifyRequestDecodeInvalidElementCount},
		{"add with one element", appPacket(ApplicationAddRequest, oct("cn=a")), DiagAddRequestDecodeInvalidElementCount},
		{"add with bad attributes", appPacket(ApplicationAddRequest, oct("cn=a"), oct("")), DiagAddRequestDecodeAttributes},
		{"constructed delete", appPacket(ApplicationDelRequest), DiagDeleteRequestDecodeDN},
		{"modify dn with two elements", appPacket(ApplicationModifyDNRequest, oct("cn=a"), oct("cn=b")), DiagModifyDNRequestDecodeInvalidElementCount},
		{"modify dn with empty flag", appPacket(ApplicationModifyDNRequest, oct("cn=a"), oct("cn=b"), oct("")), DiagModifyDNRequestDecodeDeleteOldRDN},
		{"modify dn with wrong superior tag", appPacket(ApplicationModifyDNRequest, oct("cn=a"), oct("cn=b"), boolean(true), ctxString(1, "dc=x")), DiagModifyDNRequestDecodeNewSuperior},
		{"compare with short assertion", appPacket(ApplicationCompareRequest, oct("cn=a"), encodeSequence("", oct("cn"))), DiagCompareRequestDecodeAVA},
		{"compare with three elements", appPacket(ApplicationCompareRequest, oct("cn=a"), oct(""), oct("")), DiagCompareRequestDecodeInvalidElementCount},
		{"empty abandon", ber.Encode(ber.ClassApplication, ber.TypePrimitive, ApplicationAbandonRequest, nil, ""), DiagAbandonRequestDecodeID},

		{"extended request without name", appPacket(ApplicationExtendedRequest, oct("1.2")), DiagExtendedRequestDecodeInvalidType},
		{"extended request with wrong value tag", appPacket(ApplicationExtendedRequest, ctxString(0, "1.2"), ctxString(2, "")), DiagExtendedRequestDecodeInvalidType},
		{"extended request with three elements", appPacket(ApplicationExtendedRequest, ctxString(0, "1.2"), ctxString(1, ""), ctxString(1, "")), DiagExtendedRequestDecodeInvalidElementCount},
		{"extended request constructed name", appPacket(ApplicationExtendedRequest, ctxPacket(0)), DiagExtendedRequestDecodeOID},
		{"extended response with two elements", appPacket(ApplicationExtendedResponse, enum(0), oct("")), DiagExtendedResultDecodeInvalidElementCount},
		{"extended response with seven elements", appPacket(ApplicationExtendedResponse, enum(0), oct(""), oct(""), ctxPacket(3), ctxString(10, ""), ctxString(11, ""), ctxString(11, "")), DiagExtendedResultDecodeInvalidElementCount},
		{"extended response unknown element", appPacket(ApplicationExtendedResponse, enum(0), oct(""), oct(""), ctxString(12, "x")), DiagExtendedResultDecodeInvalidType},
		{"extended response constructed oid", appPacket(ApplicationExtendedResponse, enum(0), oct(""), oct(""), ctxPacket(10)), DiagExtendedResultDecodeOID},
		{"extended response bad referrals", appPacket(ApplicationExtendedResponse, enum(0), oct(""), oct(""), ctxString(3, "ldap://x")), DiagResultDecodeReferrals},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			op, err := DecodeProtocolOp(reparse(t, tt.packet))
			require.Error(t, err)
			assert.Nil(t, op)
			assert.Equal(t, tt.diag, DiagnosticOf(err), err.Error())
			assert.True(t, IsErrorWithCode(err, LDAPResultProtocolError))
		})
	}

	_, err := DecodeProtocolOp(nil)
	assert.True(t, IsDiagnostic(err, DiagProtocolOpDecodeNull))
}

func TestExtendedResponseAbsentFields(t *testing.T) {
	// Empty matchedDN and diagnosticMessage are zero-length strings on the
	// wire and nothing else is written.
	r := &ExtendedResponse{}
	assert.Equal(t, []byte{0x78, 0x07, 0x0a, 0x01, 0x00, 0x04, 0x00, 0x04, 0x00}, r.Encode().Bytes())

	op, err := DecodeProtocolOp(reparse(t, r.Encode()))
	require.NoError(t, err)
	decoded := op.(*ExtendedResponse)
	assert.Empty(t, decoded.MatchedDN)
	assert.Empty(t, decoded.DiagnosticMessage)
	assert.Empty(t, decoded.OID)
	assert.Nil(t, decoded.Value)
	assert.Nil(t, decoded.Referrals)

	// Trailing elements are accepted in any order.
	packet := appPacket(ApplicationExtendedResponse, encodeEnumerated(0, ""), encodeString("", ""), encodeString("", ""),
		ctxString(TagExtendedResponseValue, "v"), ctxString(TagExtendedResponseName, "1.2.3"))
	op, err = DecodeProtocolOp(reparse(t, packet))
	require.NoError(t, err)
	assert.Equal(t, &ExtendedResponse{OID: "1.2.3", Value: []byte("v")}, op)
}

func TestReadMessage(t *testing.T) {
	first := NewMessage(1, NewSearchRequest("dc=example,dc=com", ScopeSingleLevel, NeverDerefAliases, 0, 0, false,
		NewEqualityFilter("ou", []byte("people")), []string{"1.1"}))
	second := NewMessage(2, &UnbindRequest{})

	var buf bytes.Buffer
	buf.Write(first.Bytes())
	buf.Write(second.Bytes())

	m, n, err := ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, first, m)
	assert.Equal(t, len(first.Bytes()), n)

	m, n, err = ReadMessage(&buf)
	require.NoError(t, err)
	assert.Equal(t, second, m)
	assert.Equal(t, 7, n)

	_, n, err = ReadMessage(&buf)
	assert.Equal(t, io.EOF, err)
	assert.Zero(t, n)
}

func TestReadMessageReportsBytesOnDecodeFailure(t *testing.T) {
	bad := encodeSequence("", encodeInteger(4, ""), appPacket(ApplicationDelRequest)).Bytes()
	m, n, err := ReadMessage(bytes.NewReader(bad))
	assert.Nil(t, m)
	assert.Equal(t, len(bad), n)
	assert.True(t, IsDiagnostic(err, DiagMessageDecodeProtocolOp))
}

func TestResponseTagFor(t *testing.T) {
	tests := map[ber.Tag]ber.Tag{
		ApplicationBindRequest:     ApplicationBindResponse,
		ApplicationSearchRequest:   ApplicationSearchResultDone,
		ApplicationModifyRequest:   ApplicationModifyResponse,
		ApplicationAddRequest:      ApplicationAddResponse,
		ApplicationDelRequest:      ApplicationDelResponse,
		ApplicationModifyDNRequest: ApplicationModifyDNResponse,
		ApplicationCompareRequest:  ApplicationCompareResponse,
		ApplicationExtendedRequest: ApplicationExtendedResponse,
	}
	for req, want := range tests {
		got, ok := ResponseTagFor(req)
		assert.True(t, ok)
		assert.Equal(t, want, got)

		resp := NewResponse(got, LDAPResult{ResultCode: LDAPResultProtocolError})
		require.NotNil(t, resp)
		assert.Equal(t, want, resp.Tag())
	}

	for _, tag := range []ber.Tag{ApplicationUnbindRequest, ApplicationAbandonRequest, ApplicationSearchResultEntry} {
		_, ok := ResponseTagFor(tag)
		assert.False(t, ok)
	}
	assert.Nil(t, NewResponse(ApplicationSearchResultEntry, LDAPResult{}))
}

func TestLDAPResultErr(t *testing.T) {
	for _, code := range []uint16{LDAPResultSuccess, LDAPResultCompareFalse, LDAPResultCompareTrue} {
		r := LDAPResult{ResultCode: code}
		assert.NoError(t, r.Err())
	}
	r := LDAPResult{ResultCode: LDAPResultNoSuchObject, DiagnosticMessage: "gone"}
	err := r.Err()
	assert.True(t, IsErrorWithCode(err, LDAPResultNoSuchObject))
	assert.Contains(t, err.Error(), "gone")
}

func TestNTLMBindRequests(t *testing.T) {
	negotiate, err := NewNTLMNegotiateBindRequest("", "")
	require.NoError(t, err)
	assert.Equal(t, ber.Tag(LDAPBindAuthNTLMNegotiate), negotiate.AuthType)
	assert.True(t, bytes.HasPrefix(negotiate.Credentials, []byte("NTLMSSP\x00")))

	// Sicily servers return the challenge in the matched DN.
	resp := &BindResponse{LDAPResult: LDAPResult{MatchedDN: "challenge"}}
	assert.Equal(t, []byte("challenge"), resp.NTLMChallenge())

	_, err = NewNTLMResponseBindRequest(nil, "user", "password", false)
	assert.True(t, IsErrorWithCode(err, LDAPResultClientSideLocalError))

	_, err = NewNTLMResponseBindRequest([]byte("not a challenge"), "user", "password", false)
	assert.True(t, IsErrorWithCode(err, LDAPResultClientSideLocalError))
}

func TestDecodeControl(t *testing.T) {
	packet := encodeSequence("", encodeString("1.2.3", ""),
		encodeOctetString(ber.ClassUniversal, ber.TagOctetString, []byte("v"), ""))
	c, err := DecodeControl(reparse(t, packet))
	require.NoError(t, err)
	assert.Equal(t, &Control{OID: "1.2.3", Value: []byte("v")}, c)

	packet = encodeSequence("", encodeString("1.2.3", ""), encodeInteger(1, ""))
	_, err = DecodeControl(reparse(t, packet))
	assert.True(t, IsDiagnostic(err, DiagControlDecodeValue))

	packet = encodeSequence("", encodeString("1.2.3", ""), encodeBoolean(ber.ClassUniversal, ber.TagBoolean, true, ""),
		encodeString("", ""), encodeString("", ""))
	_, err = DecodeControl(reparse(t, packet))
	assert.True(t, IsDiagnostic(err, DiagControlDecodeInvalidElementCount))

	_, err = DecodeControl(reparse(t, encodeString("1.2.3", "")))
	assert.True(t, IsDiagnostic(err, DiagControlDecodeSequence))
}
