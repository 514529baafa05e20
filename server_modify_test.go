package ldap

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdd(t *testing.T) {
	_, addr := startServer(t, func(s *Server) {
		s.BindFunc("", modifyTestHandler{})
		s.AddFunc("", modifyTestHandler{})
	})
	c := dialServer(t, addr)
	require.Equal(t, uint16(LDAPResultSuccess), c.bind("", ""))

	req := NewAddRequest("cn=Barbara Jensen,dc=example,dc=com")
	req.Attribute("objectClass", []string{"person"})
	req.Attribute("cn", []string{"Barbara Jensen", "Babs Jensen"})
	req.Attribute("sn", []string{"Jensen"})
	req.Attribute("title", []string{"the world's most famous mythical manager"})
	req.Attribute("mail", []string{"bjensen@example.com"})
	assert.Equal(t, uint16(LDAPResultSuccess), resultCode(t, c.roundTrip(req)))

	req = NewAddRequest("cn=Big Bob,dc=example,dc=com")
	req.Attribute("sn", []string{"Bob"})
	assert.Equal(t, uint16(LDAPResultInsufficientAccessRights), resultCode(t, c.roundTrip(req)))
}

func TestAddRoutesByEntryDN(t *testing.T) {
	_, addr := startServer(t, func(s *Server) {
		s.AddFunc("ou=people,dc=example,dc=com", modifyTestHandler{})
	})
	c := dialServer(t, addr)

	// The default handler refuses everything outside the routed subtree.
	req := NewAddRequest("cn=Barbara Jensen,dc=example,dc=com")
	assert.Equal(t, uint16(LDAPResultInsufficientAccessRights), resultCode(t, c.roundTrip(req)))

	req = NewAddRequest("uid=new,ou=people,dc=example,dc=com")
	assert.Equal(t, uint16(LDAPResultSuccess), resultCode(t, c.roundTrip(req)))
}

func TestDelete(t *testing.T) {
	_, addr := startServer(t, func(s *Server) {
		s.DeleteFunc("", modifyTestHandler{})
	})
	c := dialServer(t, addr)
	assert.Equal(t, uint16(LDAPResultSuccess), resultCode(t, c.roundTrip(NewDelRequest("cn=Delete Me,dc=example,dc=com"))))
	assert.Equal(t, uint16(LDAPResultInsufficientAccessRights), resultCode(t, c.roundTrip(NewDelRequest("cn=Bob,dc=example,dc=com"))))
}

func TestModify(t *testing.T) {
	_, addr := startServer(t, func(s *Server) {
		s.ModifyFunc("", modifyTestHandler{})
	})
	c := dialServer(t, addr)

	req := NewModifyRequest("cn=testy,dc=example,dc=com")
	req.Add("mail", []string{"testy@example.com"})
	req.Delete("manager", []string{"cn=boss,dc=example,dc=com"})
	req.Delete("fax", nil)
	req.Delete("details", nil)
	req.Replace("sn", []string{"Testy"})
	req.Replace("telephoneNumber", []string{"+1 555 0100", "+1 555 0101"})
	assert.Equal(t, uint16(LDAPResultSuccess), resultCode(t, c.roundTrip(req)))

	req = NewModifyRequest("cn=testy,dc=example,dc=com")
	req.Increment("uidNumber", "1")
	assert.Equal(t, uint16(LDAPResultInsufficientAccessRights), resultCode(t, c.roundTrip(req)))
}

func TestModifyDN(t *testing.T) {
	_, addr := startServer(t, func(s *Server) {
		s.ModifyDNFunc("", modifyTestHandler{})
	})
	c := dialServer(t, addr)

	req := NewModifyDNRequest("uid=babs,dc=example,dc=com", "uid=babsy", true, "")
	assert.Equal(t, uint16(LDAPResultSuccess), resultCode(t, c.roundTrip(req)))

	req = NewModifyDNRequest("uid=babs,dc=example,dc=com", "uid=babsy", true, "ou=moved,dc=example,dc=com")
	assert.Equal(t, uint16(LDAPResultInsufficientAccessRights), resultCode(t, c.roundTrip(req)))
}

func TestCompare(t *testing.T) {
	_, addr := startServer(t, func(s *Server) {
		s.CompareFunc("", modifyTestHandler{})
	})
	c := dialServer(t, addr)

	m := c.roundTrip(NewCompareRequest("uid=babs,dc=example,dc=com", "sn", []byte("Jensen")))
	assert.Equal(t, uint16(LDAPResultCompareTrue), resultCode(t, m))
	m = c.roundTrip(NewCompareRequest("uid=babs,dc=example,dc=com", "sn", []byte("Smith")))
	assert.Equal(t, uint16(LDAPResultCompareFalse), resultCode(t, m))
}

func TestHandlerErrorIsOperationsError(t *testing.T) {
	_, addr := startServer(t, func(s *Server) {
		s.DeleteFunc("", failingHandler{})
		s.ModifyFunc("", failingHandler{})
	})
	c := dialServer(t, addr)
	assert.Equal(t, uint16(LDAPResultOperationsError), resultCode(t, c.roundTrip(NewDelRequest("cn=x"))))

	// A panic is answered the same way.
	assert.Equal(t, uint16(LDAPResultOperationsError), resultCode(t, c.roundTrip(NewModifyRequest("cn=x"))))
}

func TestDefaultHandlersRefuseUpdates(t *testing.T) {
	_, addr := startServer(t, nil)
	c := dialServer(t, addr)
	for _, op := range []ProtocolOp{
		NewAddRequest("cn=x"),
		NewDelRequest("cn=x"),
		NewModifyRequest("cn=x"),
		NewModifyDNRequest("cn=x", "cn=y", false, ""),
		NewCompareRequest("cn=x", "cn", []byte("x")),
	} {
		assert.Equal(t, uint16(LDAPResultInsufficientAccessRights), resultCode(t, c.roundTrip(op)), op.Name())
	}
}

type modifyTestHandler struct {
}

func (h modifyTestHandler) Bind(bindSpec BindSpec, req *BindRequest, conn net.Conn) (uint16, error) {
	if bindSpec.BindDN == "" && req.Password == "" {
		return LDAPResultSuccess, nil
	}
	return LDAPResultInvalidCredentials, nil
}

func (h modifyTestHandler) Add(bindSpec BindSpec, req *AddRequest, conn net.Conn) (uint16, error) {
	if req.DN == "uid=new,ou=people,dc=example,dc=com" {
		return LDAPResultSuccess, nil
	}
	if len(req.Attributes) == 5 && req.DN == "cn=Barbara Jensen,dc=example,dc=com" &&
		req.Attributes[2].Type == "sn" && len(req.Attributes[2].Vals) == 1 &&
		req.Attributes[2].Vals[0] == "Jensen" && len(req.Attributes[1].Vals) == 2 {
		return LDAPResultSuccess, nil
	}
	return LDAPResultInsufficientAccessRights, nil
}

func (h modifyTestHandler) Delete(bindSpec BindSpec, req *DelRequest, conn net.Conn) (uint16, error) {
	if req.DN == "cn=Delete Me,dc=example,dc=com" {
		return LDAPResultSuccess, nil
	}
	return LDAPResultInsufficientAccessRights, nil
}

func (h modifyTestHandler) Modify(bindSpec BindSpec, req *ModifyRequest, conn net.Conn) (uint16, error) {
	var adds, deletes, replaces []Attribute
	for _, c := range req.Changes {
		switch c.Operation {
		case AddAttribute:
			adds = append(adds, c.Modification)
		case DeleteAttribute:
			deletes = append(deletes, c.Modification)
		case ReplaceAttribute:
			replaces = append(replaces, c.Modification)
		}
	}
	if req.DN == "cn=testy,dc=example,dc=com" && len(adds) == 1 &&
		len(deletes) == 3 && len(replaces) == 2 &&
		deletes[2].Type == "details" && len(deletes[2].Vals) == 0 &&
		len(replaces[1].Vals) == 2 {
		return LDAPResultSuccess, nil
	}
	return LDAPResultInsufficientAccessRights, nil
}

func (h modifyTestHandler) ModifyDN(bindSpec BindSpec, req *ModifyDNRequest, conn net.Conn) (uint16, error) {
	if req.NewRDN == "uid=babsy" && req.DeleteOldRDN && req.NewSuperior == "" {
		return LDAPResultSuccess, nil
	}
	return LDAPResultInsufficientAccessRights, nil
}

func (h modifyTestHandler) Compare(bindSpec BindSpec, req *CompareRequest, conn net.Conn) (uint16, error) {
	if req.AVA.Attribute == "sn" && string(req.AVA.Value) == "Jensen" {
		return LDAPResultCompareTrue, nil
	}
	return LDAPResultCompareFalse, nil
}

type failingHandler struct {
}

func (h failingHandler) Delete(bindSpec BindSpec, req *DelRequest, conn net.Conn) (uint16, error) {
	return LDAPResultSuccess, errors.New("backend unavailable")
}

func (h failingHandler) Modify(bindSpec BindSpec, req *ModifyRequest, conn net.Conn) (uint16, error) {
	panic("modify panic test")
}
