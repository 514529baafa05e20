package ldap

import (
	"net"
)

func HandleBindRequest(req *BindRequest, bindSpec *BindSpec, fns map[string]Binder, conn net.Conn) (resultCode uint16) {
	defer func() {
		if r := recover(); r != nil {
			bindSpec.Server.Debug.Printf("BindFn panic: %v", r)
			resultCode = LDAPResultOperationsError
		}
	}()

	// Check that the version is enabled / supported
	if (req.Version == 2 && !bindSpec.Server.EnableV2) ||
		(req.Version == 3 && !bindSpec.Server.EnableV3) ||
		(req.Version < 2 || req.Version > 3) {
		bindSpec.Server.Debug.Printf("Unsupported LDAP version: %d", req.Version)
		return LDAPResultProtocolError
	}
	bindSpec.Server.Debug.Printf("LDAP version: %d", req.Version)

	bindSpec.BindDN = req.DN
	bindSpec.BindAuth = req.AuthType
	bindSpec.SASLAuth = req.SASLMechanism
	bindSpec.Server.Debug.Println("Bind Request Tag:", req.AuthType)

	switch req.AuthType {
	case LDAPBindAuthSimple:
	case LDAPBindAuthSASL, LDAPBindAuthNTLMNegotiate, LDAPBindAuthNTLMResponse:
		// LDAPv2 only knows simple binds
		if req.Version != 3 {
			return LDAPResultAuthMethodNotSupported
		}
	default:
		bindSpec.Server.Debug.Println("Unknown LDAP authentication method")
		return LDAPResultAuthMethodNotSupported
	}

	fn := routeFunc(req.DN, routeNames(fns))
	resultCode, err := fns[fn].Bind(*bindSpec, req, conn)
	if err != nil {
		bindSpec.Server.Debug.Printf("BindFn Error %s", err.Error())
		return LDAPResultOperationsError
	}
	return resultCode
}

// HandleUnbindRequest runs the unbind handler. The caller closes the
// connection afterwards whatever the outcome.
func HandleUnbindRequest(bindSpec BindSpec, fns map[string]Unbinder, conn net.Conn) (err error) {
	defer recoverError(bindSpec, &err)
	fn := routeFunc(bindSpec.BindDN, routeNames(fns))
	if _, err = fns[fn].Unbind(bindSpec, conn); err != nil {
		bindSpec.Server.Debug.Printf("UnbindFn Error %s", err.Error())
	}
	return err
}
