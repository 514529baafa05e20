package ldap

import (
	"errors"
	"fmt"
)

// LDAP Result Codes
const (
	LDAPResultSuccess                      = 0
	LDAPResultOperationsError              = 1
	LDAPResultProtocolError                = 2
	LDAPResultTimeLimitExceeded            = 3
	LDAPResultSizeLimitExceeded            = 4
	LDAPResultCompareFalse                 = 5
	LDAPResultCompareTrue                  = 6
	LDAPResultAuthMethodNotSupported       = 7
	LDAPResultStrongAuthRequired           = 8
	LDAPResultReferral                     = 10
	LDAPResultAdminLimitExceeded           = 11
	LDAPResultUnavailableCriticalExtension = 12
	LDAPResultConfidentialityRequired      = 13
	LDAPResultSaslBindInProgress           = 14
	LDAPResultNoSuchAttribute              = 16
	LDAPResultUndefinedAttributeType       = 17
	LDAPResultInappropriateMatching        = 18
	LDAPResultConstraintViolation          = 19
	LDAPResultAttributeOrValueExists       = 20
	LDAPResultInvalidAttributeSyntax       = 21
	LDAPResultNoSuchObject                 = 32
	LDAPResultAliasProblem                 = 33
	LDAPResultInvalidDNSyntax              = 34
	LDAPResultAliasDereferencingProblem    = 36
	LDAPResultInappropriateAuthentication  = 48
	LDAPResultInvalidCredentials           = 49
	LDAPResultInsufficientAccessRights     = 50
	LDAPResultBusy                         = 51
	LDAPResultUnavailable                  = 52
	LDAPResultUnwillingToPerform           = 53
	LDAPResultLoopDetect                   = 54
	LDAPResultNamingViolation              = 64
	LDAPResultObjectClassViolation         = 65
	LDAPResultNotAllowedOnNonLeaf          = 66
	LDAPResultNotAllowedOnRDN              = 67
	LDAPResultEntryAlreadyExists           = 68
	LDAPResultObjectClassModsProhibited    = 69
	LDAPResultAffectsMultipleDSAs          = 71
	LDAPResultOther                        = 80

	// Client-side codes used by the SDKs, never sent on the wire.
	LDAPResultClientSideLocalError    = 82
	LDAPResultClientSideEncodingError = 83
	LDAPResultClientSideDecodingError = 84
	LDAPResultClientSideFilterError   = 87
)

// LDAPResultCodeMap contains string descriptions for LDAP error codes
var LDAPResultCodeMap = map[uint16]string{
	LDAPResultSuccess:                      "Success",
	LDAPResultOperationsError:              "Operations Error",
	LDAPResultProtocolError:                "Protocol Error",
	LDAPResultTimeLimitExceeded:            "Time Limit Exceeded",
	LDAPResultSizeLimitExceeded:            "Size Limit Exceeded",
	LDAPResultCompareFalse:                 "Compare False",
	LDAPResultCompareTrue:                  "Compare True",
	LDAPResultAuthMethodNotSupported:       "Auth Method Not Supported",
	LDAPResultStrongAuthRequired:           "Strong Auth Required",
	LDAPResultReferral:                     "Referral",
	LDAPResultAdminLimitExceeded:           "Admin Limit Exceeded",
	LDAPResultUnavailableCriticalExtension: "Unavailable Critical Extension",
	LDAPResultConfidentialityRequired:      "Confidentiality Required",
	LDAPResultSaslBindInProgress:           "Sasl Bind In Progress",
	LDAPResultNoSuchAttribute:              "No Such Attribute",
	LDAPResultUndefinedAttributeType:       "Undefined Attribute Type",
	LDAPResultInappropriateMatching:        "Inappropriate Matching",
	LDAPResultConstraintViolation:          "Constraint Violation",
	LDAPResultAttributeOrValueExists:       "Attribute Or Value Exists",
	LDAPResultInvalidAttributeSyntax:       "Invalid Attribute Syntax",
	LDAPResultNoSuchObject:                 "No Such Object",
	LDAPResultAliasProblem:                 "Alias Problem",
	LDAPResultInvalidDNSyntax:              "Invalid DN Syntax",
	LDAPResultAliasDereferencingProblem:    "Alias Dereferencing Problem",
	LDAPResultInappropriateAuthentication:  "Inappropriate Authentication",
	LDAPResultInvalidCredentials:           "Invalid Credentials",
	LDAPResultInsufficientAccessRights:     "Insufficient Access Rights",
	LDAPResultBusy:                         "Busy",
	LDAPResultUnavailable:                  "Unavailable",
	LDAPResultUnwillingToPerform:           "Unwilling To Perform",
	LDAPResultLoopDetect:                   "Loop Detect",
	LDAPResultNamingViolation:              "Naming Violation",
	LDAPResultObjectClassViolation:         "Object Class Violation",
	LDAPResultNotAllowedOnNonLeaf:          "Not Allowed On Non Leaf",
	LDAPResultNotAllowedOnRDN:              "Not Allowed On RDN",
	LDAPResultEntryAlreadyExists:           "Entry Already Exists",
	LDAPResultObjectClassModsProhibited:    "Object Class Mods Prohibited",
	LDAPResultAffectsMultipleDSAs:          "Affects Multiple DSAs",
	LDAPResultOther:                        "Other",

	LDAPResultClientSideLocalError:    "Local Error",
	LDAPResultClientSideEncodingError: "Encoding Error",
	LDAPResultClientSideDecodingError: "Decoding Error",
	LDAPResultClientSideFilterError:   "Filter Error",
}

// Error holds LDAP error information. Every encode and decode failure in
// this package is reported as an *Error.
type Error struct {
	// ResultCode is the LDAP result code that should be reported for the failure.
	ResultCode uint16
	// Diagnostic identifies the exact site that produced the error.
	Diagnostic Diagnostic
	// Message is the formatted, human readable detail.
	Message string
	// Offset is the byte position of the offending construct, or -1.
	Offset int
	// Err is the lower-level cause, if any.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("LDAP Result Code %d %q: %s", e.ResultCode, LDAPResultCodeMap[e.ResultCode], e.Message)
	if e.Diagnostic != DiagNone {
		msg += " [" + e.Diagnostic.String() + "]"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError creates an LDAP error with the given code and underlying error.
func NewError(resultCode uint16, err error) error {
	msg := ""
	if err != nil {
		msg = err.Error()
	}
	return &Error{ResultCode: resultCode, Message: msg, Offset: -1, Err: err}
}

// IsErrorWithCode returns true if the given error is an LDAP error with the
// given result code.
func IsErrorWithCode(err error, desiredResultCode uint16) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.ResultCode == desiredResultCode
}

// IsDiagnostic reports whether err, or the first *Error in its chain,
// carries the given diagnostic.
func IsDiagnostic(err error, d Diagnostic) bool {
	return DiagnosticOf(err) == d
}

// DiagnosticOf returns the diagnostic of the outermost *Error in err's chain.
func DiagnosticOf(err error) Diagnostic {
	var e *Error
	if !errors.As(err, &e) {
		return DiagNone
	}
	return e.Diagnostic
}

func protocolError(d Diagnostic, format string, args ...interface{}) error {
	return &Error{
		ResultCode: LDAPResultProtocolError,
		Diagnostic: d,
		Message:    fmt.Sprintf(format, args...),
		Offset:     -1,
	}
}

func protocolErrorAt(d Diagnostic, offset int, format string, args ...interface{}) error {
	return &Error{
		ResultCode: LDAPResultProtocolError,
		Diagnostic: d,
		Message:    fmt.Sprintf(format, args...),
		Offset:     offset,
	}
}

// wrapError keeps the original cause reachable through Unwrap.
func wrapError(d Diagnostic, cause error, format string, args ...interface{}) error {
	return &Error{
		ResultCode: LDAPResultProtocolError,
		Diagnostic: d,
		Message:    fmt.Sprintf(format, args...),
		Offset:     -1,
		Err:        cause,
	}
}
