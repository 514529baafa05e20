package ldap

import (
	"errors"
	"fmt"
	"net"
)

// ErrHandlerPanic is returned for operations without a response whose
// handler panicked. The server closes the connection.
var ErrHandlerPanic = errors.New("ldap: handler panic")

// recoverResult turns a handler panic into an operationsError result.
func recoverResult(bindSpec BindSpec, resultCode *uint16) {
	if r := recover(); r != nil {
		bindSpec.Server.Debug.Printf("handler panic: %v", r)
		*resultCode = LDAPResultOperationsError
	}
}

// recoverError turns a handler panic into ErrHandlerPanic.
func recoverError(bindSpec BindSpec, err *error) {
	if r := recover(); r != nil {
		bindSpec.Server.Debug.Printf("handler panic: %v", r)
		*err = fmt.Errorf("%w: %v", ErrHandlerPanic, r)
	}
}

func HandleAddRequest(req *AddRequest, bindSpec BindSpec, fns map[string]Adder, conn net.Conn) (resultCode uint16) {
	defer recoverResult(bindSpec, &resultCode)
	fn := routeFunc(req.DN, routeNames(fns))
	resultCode, err := fns[fn].Add(bindSpec, req, conn)
	if err != nil {
		bindSpec.Server.Debug.Printf("AddFn Error %s", err.Error())
		return LDAPResultOperationsError
	}
	return resultCode
}

func HandleDeleteRequest(req *DelRequest, bindSpec BindSpec, fns map[string]Deleter, conn net.Conn) (resultCode uint16) {
	defer recoverResult(bindSpec, &resultCode)
	fn := routeFunc(req.DN, routeNames(fns))
	resultCode, err := fns[fn].Delete(bindSpec, req, conn)
	if err != nil {
		bindSpec.Server.Debug.Printf("DeleteFn Error %s", err.Error())
		return LDAPResultOperationsError
	}
	return resultCode
}

func HandleModifyRequest(req *ModifyRequest, bindSpec BindSpec, fns map[string]Modifier, conn net.Conn) (resultCode uint16) {
	defer recoverResult(bindSpec, &resultCode)
	fn := routeFunc(req.DN, routeNames(fns))
	resultCode, err := fns[fn].Modify(bindSpec, req, conn)
	if err != nil {
		bindSpec.Server.Debug.Printf("ModifyFn Error %s", err.Error())
		return LDAPResultOperationsError
	}
	return resultCode
}

func HandleCompareRequest(req *CompareRequest, bindSpec BindSpec, fns map[string]Comparer, conn net.Conn) (resultCode uint16) {
	defer recoverResult(bindSpec, &resultCode)
	fn := routeFunc(req.DN, routeNames(fns))
	resultCode, err := fns[fn].Compare(bindSpec, req, conn)
	if err != nil {
		bindSpec.Server.Debug.Printf("CompareFn Error %s", err.Error())
		return LDAPResultOperationsError
	}
	return resultCode
}

// HandleExtendedRequest routes by the bound DN since extended requests
// name no entry.
func HandleExtendedRequest(req *ExtendedRequest, bindSpec BindSpec, fns map[string]Extender, conn net.Conn) (resultCode uint16) {
	defer recoverResult(bindSpec, &resultCode)
	if req.OID == OIDStartTLS {
		// StartTLS is only honoured as the first request of a connection.
		return LDAPResultOperationsError
	}
	fn := routeFunc(bindSpec.BindDN, routeNames(fns))
	resultCode, err := fns[fn].Extended(bindSpec, req, conn)
	if err != nil {
		bindSpec.Server.Debug.Printf("ExtendedFn Error %s", err.Error())
		return LDAPResultOperationsError
	}
	return resultCode
}

func HandleAbandonRequest(req *AbandonRequest, bindSpec BindSpec, fns map[string]Abandoner, conn net.Conn) (err error) {
	defer recoverError(bindSpec, &err)
	fn := routeFunc(bindSpec.BindDN, routeNames(fns))
	return fns[fn].Abandon(bindSpec, req, conn)
}

func HandleModifyDNRequest(req *ModifyDNRequest, bindSpec BindSpec, fns map[string]ModifyDNr, conn net.Conn) (resultCode uint16) {
	defer recoverResult(bindSpec, &resultCode)
	fn := routeFunc(req.DN, routeNames(fns))
	resultCode, err := fns[fn].ModifyDN(bindSpec, req, conn)
	if err != nil {
		bindSpec.Server.Debug.Printf("ModifyDN Error %s", err.Error())
		return LDAPResultOperationsError
	}
	return resultCode
}
