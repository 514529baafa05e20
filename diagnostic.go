package ldap

import "strconv"

// Diagnostic identifies the exact place an encode or decode failed. Each
// failure site has its own value so callers can tell a missing equal sign
// from a truncated escape without parsing the message text.
type Diagnostic uint16

const (
	DiagNone Diagnostic = iota

	// ASN.1 element layer
	DiagASN1NullElement
	DiagASN1TruncatedTag
	DiagASN1MultiByteTag
	DiagASN1TruncatedLength
	DiagASN1IndefiniteLength
	DiagASN1LengthTooLong
	DiagASN1TruncatedValue
	DiagASN1TrailingData
	DiagASN1Malformed
	DiagASN1UnexpectedTag
	DiagASN1ExpectedPrimitive
	DiagASN1ExpectedConstructed
	DiagASN1InvalidInteger
	DiagASN1InvalidBoolean
	DiagASN1InvalidNull
	DiagASN1TooDeep
	DiagASN1ElementTooLarge

	// filter string form
	DiagFilterStringNull
	DiagFilterMismatchedParentheses
	DiagFilterNoEqualSign
	DiagFilterInvalidEscapedByte
	DiagFilterCompoundMissingParentheses
	DiagFilterNoCorrespondingOpenParenthesis
	DiagFilterNoCorrespondingCloseParenthesis
	DiagFilterSubstringNoAsterisks
	DiagFilterSubstringNoSegments
	DiagFilterExtensibleMatchNoAttributeOrRule
	DiagFilterTooDeep

	// filter BER form
	DiagFilterDecodeNull
	DiagFilterDecodeInvalidType
	DiagFilterDecodeCompoundSet
	DiagFilterDecodeCompoundComponents
	DiagFilterDecodeNotElement
	DiagFilterDecodeNotComponent
	DiagFilterDecodeTVSequence
	DiagFilterDecodeTVInvalidElementCount
	DiagFilterDecodeTVType
	DiagFilterDecodeTVValue
	DiagFilterDecodeSubstringSequence
	DiagFilterDecodeSubstringInvalidElementCount
	DiagFilterDecodeSubstringType
	DiagFilterDecodeSubstringElements
	DiagFilterDecodeSubstringNoSubelements
	DiagFilterDecodeSubstringInvalidSubtype
	DiagFilterDecodeSubstringValues
	DiagFilterDecodePresenceType
	DiagFilterDecodeExtensibleSequence
	DiagFilterDecodeExtensibleInvalidType
	DiagFilterDecodeExtensibleElements
	DiagFilterDecodeExtensibleNoValue
	DiagFilterDecodeTooDeep

	// message envelope and controls
	DiagMessageDecodeSequence
	DiagMessageDecodeInvalidElementCount
	DiagMessageDecodeID
	DiagMessageDecodeProtocolOp
	DiagMessageDecodeControls
	DiagControlDecodeSequence
	DiagControlDecodeInvalidElementCount
	DiagControlDecodeOID
	DiagControlDecodeCriticality
	DiagControlDecodeValue
	DiagProtocolOpDecodeNull
	DiagProtocolOpDecodeInvalidType

	// LDAPResult and its extensions
	DiagResultDecodeSequence
	DiagResultDecodeInvalidElementCount
	DiagResultDecodeResultCode
	DiagResultDecodeMatchedDN
	DiagResultDecodeErrorMessage
	DiagResultDecodeReferrals
	DiagResultDecodeInvalidType
	DiagBindResultDecodeServerSASLCredentials
	DiagExtendedResultDecodeInvalidElementCount
	DiagExtendedResultDecodeOID
	DiagExtendedResultDecodeValue
	DiagExtendedResultDecodeInvalidType

	// requests
	DiagBindRequestDecodeSequence
	DiagBindRequestDecodeInvalidElementCount
	DiagBindRequestDecodeVersion
	DiagBindRequestDecodeDN
	DiagBindRequestDecodePassword
	DiagBindRequestDecodeSASL
	DiagBindRequestDecodeNTLM
	DiagBindRequestDecodeInvalidCredentialType
	DiagUnbindRequestDecode
	DiagAbandonRequestDecodeID
	DiagDeleteRequestDecodeDN
	DiagAttributeDecodeSequence
	DiagAttributeDecodeInvalidElementCount
	DiagAttributeDecodeType
	DiagAttributeDecodeValues
	DiagAddRequestDecodeSequence
	DiagAddRequestDecodeInvalidElementCount
	DiagAddRequestDecodeDN
	DiagAddRequestDecodeAttributes
	DiagModifyRequestDecodeSequence
	DiagModifyRequestDecodeInvalidElementCount
	DiagModifyRequestDecodeDN
	DiagModifyRequestDecodeChanges
	DiagModificationDecodeSequence
	DiagModificationDecodeInvalidElementCount
	DiagModificationDecodeType
	DiagModificationDecodeAttribute
	DiagModifyDNRequestDecodeSequence
	DiagModifyDNRequestDecodeInvalidElementCount
	DiagModifyDNRequestDecodeDN
	DiagModifyDNRequestDecodeNewRDN
	DiagModifyDNRequestDecodeDeleteOldRDN
	DiagModifyDNRequestDecodeNewSuperior
	DiagCompareRequestDecodeSequence
	DiagCompareRequestDecodeInvalidElementCount
	DiagCompareRequestDecodeDN
	DiagCompareRequestDecodeAVA
	DiagExtendedRequestDecodeSequence
	DiagExtendedRequestDecodeInvalidElementCount
	DiagExtendedRequestDecodeOID
	DiagExtendedRequestDecodeValue
	DiagExtendedRequestDecodeInvalidType
	DiagSearchRequestDecodeSequence
	DiagSearchRequestDecodeInvalidElementCount
	DiagSearchRequestDecodeBase
	DiagSearchRequestDecodeScope
	DiagSearchRequestDecodeDeref
	DiagSearchRequestDecodeSizeLimit
	DiagSearchRequestDecodeTimeLimit
	DiagSearchRequestDecodeTypesOnly
	DiagSearchRequestDecodeFilter
	DiagSearchRequestDecodeAttributes

	// search results
	DiagSearchEntryDecodeSequence
	DiagSearchEntryDecodeInvalidElementCount
	DiagSearchEntryDecodeDN
	DiagSearchEntryDecodeAttributes
	DiagSearchReferenceDecodeSequence
	DiagSearchReferenceDecodeURLs
	DiagSearchEntryInvalidAttributeDescription
)

var diagnosticNames = map[Diagnostic]string{
	DiagNone: "NONE",

	DiagASN1NullElement:         "ASN1_NULL_ELEMENT",
	DiagASN1TruncatedTag:        "ASN1_TRUNCATED_TAG",
	DiagASN1MultiByteTag:        "ASN1_MULTI_BYTE_TAG",
	DiagASN1TruncatedLength:     "ASN1_TRUNCATED_LENGTH",
	DiagASN1IndefiniteLength:    "ASN1_INDEFINITE_LENGTH",
	DiagASN1LengthTooLong:       "ASN1_LENGTH_TOO_LONG",
	DiagASN1TruncatedValue:      "ASN1_TRUNCATED_VALUE",
	DiagASN1TrailingData:        "ASN1_TRAILING_DATA",
	DiagASN1Malformed:           "ASN1_MALFORMED",
	DiagASN1UnexpectedTag:       "ASN1_UNEXPECTED_TAG",
	DiagASN1ExpectedPrimitive:   "ASN1_EXPECTED_PRIMITIVE",
	DiagASN1ExpectedConstructed: "ASN1_EXPECTED_CONSTRUCTED",
	DiagASN1InvalidInteger:      "ASN1_INVALID_INTEGER",
	DiagASN1InvalidBoolean:      "ASN1_INVALID_BOOLEAN",
	DiagASN1InvalidNull:         "ASN1_INVALID_NULL",
	DiagASN1TooDeep:             "ASN1_TOO_DEEP",
	DiagASN1ElementTooLarge:     "ASN1_ELEMENT_TOO_LARGE",

	DiagFilterStringNull:                       "LDAP_FILTER_STRING_NULL",
	DiagFilterMismatchedParentheses:            "LDAP_FILTER_MISMATCHED_PARENTHESES",
	DiagFilterNoEqualSign:                      "LDAP_FILTER_NO_EQUAL_SIGN",
	DiagFilterInvalidEscapedByte:               "LDAP_FILTER_INVALID_ESCAPED_BYTE",
	DiagFilterCompoundMissingParentheses:       "LDAP_FILTER_COMPOUND_MISSING_PARENTHESES",
	DiagFilterNoCorrespondingOpenParenthesis:   "LDAP_FILTER_NO_CORRESPONDING_OPEN_PARENTHESIS",
	DiagFilterNoCorrespondingCloseParenthesis:  "LDAP_FILTER_NO_CORRESPONDING_CLOSE_PARENTHESIS",
	DiagFilterSubstringNoAsterisks:             "LDAP_FILTER_SUBSTRING_NO_ASTERISKS",
	DiagFilterSubstringNoSegments:              "LDAP_FILTER_SUBSTRING_NO_SEGMENTS",
	DiagFilterExtensibleMatchNoAttributeOrRule: "LDAP_FILTER_EXTENSIBLE_MATCH_NO_AD_OR_MR",
	DiagFilterTooDeep:                          "LDAP_FILTER_TOO_DEEP",

	DiagFilterDecodeNull:                         "LDAP_FILTER_DECODE_NULL",
	DiagFilterDecodeInvalidType:                  "LDAP_FILTER_DECODE_INVALID_TYPE",
	DiagFilterDecodeCompoundSet:                  "LDAP_FILTER_DECODE_COMPOUND_SET",
	DiagFilterDecodeCompoundComponents:           "LDAP_FILTER_DECODE_COMPOUND_COMPONENTS",
	DiagFilterDecodeNotElement:                   "LDAP_FILTER_DECODE_NOT_ELEMENT",
	DiagFilterDecodeNotComponent:                 "LDAP_FILTER_DECODE_NOT_COMPONENT",
	DiagFilterDecodeTVSequence:                   "LDAP_FILTER_DECODE_TV_SEQUENCE",
	DiagFilterDecodeTVInvalidElementCount:        "LDAP_FILTER_DECODE_TV_INVALID_ELEMENT_COUNT",
	DiagFilterDecodeTVType:                       "LDAP_FILTER_DECODE_TV_TYPE",
	DiagFilterDecodeTVValue:                      "LDAP_FILTER_DECODE_TV_VALUE",
	DiagFilterDecodeSubstringSequence:            "LDAP_FILTER_DECODE_SUBSTRING_SEQUENCE",
	DiagFilterDecodeSubstringInvalidElementCount: "LDAP_FILTER_DECODE_SUBSTRING_INVALID_ELEMENT_COUNT",
	DiagFilterDecodeSubstringType:                "LDAP_FILTER_DECODE_SUBSTRING_TYPE",
	DiagFilterDecodeSubstringElements:            "LDAP_FILTER_DECODE_SUBSTRING_ELEMENTS",
	DiagFilterDecodeSubstringNoSubelements:       "LDAP_FILTER_DECODE_SUBSTRING_NO_SUBELEMENTS",
	DiagFilterDecodeSubstringInvalidSubtype:      "LDAP_FILTER_DECODE_SUBSTRING_INVALID_SUBTYPE",
	DiagFilterDecodeSubstringValues:              "LDAP_FILTER_DECODE_SUBSTRING_VALUES",
	DiagFilterDecodePresenceType:                 "LDAP_FILTER_DECODE_PRESENCE_TYPE",
	DiagFilterDecodeExtensibleSequence:           "LDAP_FILTER_DECODE_EXTENSIBLE_SEQUENCE",
	DiagFilterDecodeExtensibleInvalidType:        "LDAP_FILTER_DECODE_EXTENSIBLE_INVALID_TYPE",
	DiagFilterDecodeExtensibleElements:           "LDAP_FILTER_DECODE_EXTENSIBLE_ELEMENTS",
	DiagFilterDecodeExtensibleNoValue:            "LDAP_FILTER_DECODE_EXTENSIBLE_NO_VALUE",
	DiagFilterDecodeTooDeep:                      "LDAP_FILTER_DECODE_TOO_DEEP",

	DiagMessageDecodeSequence:            "LDAP_MESSAGE_DECODE_SEQUENCE",
	DiagMessageDecodeInvalidElementCount: "LDAP_MESSAGE_DECODE_INVALID_ELEMENT_COUNT",
	DiagMessageDecodeID:                  "LDAP_MESSAGE_DECODE_MESSAGE_ID",
	DiagMessageDecodeProtocolOp:          "LDAP_MESSAGE_DECODE_PROTOCOL_OP",
	DiagMessageDecodeControls:            "LDAP_MESSAGE_DECODE_CONTROLS",
	DiagControlDecodeSequence:            "LDAP_CONTROL_DECODE_SEQUENCE",
	DiagControlDecodeInvalidElementCount: "LDAP_CONTROL_DECODE_INVALID_ELEMENT_COUNT",
	DiagControlDecodeOID:                 "LDAP_CONTROL_DECODE_OID",
	DiagControlDecodeCriticality:         "LDAP_CONTROL_DECODE_CRITICALITY",
	DiagControlDecodeValue:               "LDAP_CONTROL_DECODE_VALUE",
	DiagProtocolOpDecodeNull:             "LDAP_PROTOCOL_OP_DECODE_NULL",
	DiagProtocolOpDecodeInvalidType:      "LDAP_PROTOCOL_OP_DECODE_INVALID_TYPE",

	DiagResultDecodeSequence:                    "LDAP_RESULT_DECODE_SEQUENCE",
	DiagResultDecodeInvalidElementCount:         "LDAP_RESULT_DECODE_INVALID_ELEMENT_COUNT",
	DiagResultDecodeResultCode:                  "LDAP_RESULT_DECODE_RESULT_CODE",
	DiagResultDecodeMatchedDN:                   "LDAP_RESULT_DECODE_MATCHED_DN",
	DiagResultDecodeErrorMessage:                "LDAP_RESULT_DECODE_ERROR_MESSAGE",
	DiagResultDecodeReferrals:                   "LDAP_RESULT_DECODE_REFERRALS",
	DiagResultDecodeInvalidType:                 "LDAP_RESULT_DECODE_INVALID_TYPE",
	DiagBindResultDecodeServerSASLCredentials:   "LDAP_BIND_RESULT_DECODE_SERVER_SASL_CREDENTIALS",
	DiagExtendedResultDecodeInvalidElementCount: "LDAP_EXTENDED_RESULT_DECODE_INVALID_ELEMENT_COUNT",
	DiagExtendedResultDecodeOID:                 "LDAP_EXTENDED_RESULT_DECODE_OID",
	DiagExtendedResultDecodeValue:               "LDAP_EXTENDED_RESULT_DECODE_VALUE",
	DiagExtendedResultDecodeInvalidType:         "LDAP_EXTENDED_RESULT_DECODE_INVALID_TYPE",

	DiagBindRequestDecodeSequence:                "LDAP_BIND_REQUEST_DECODE_SEQUENCE",
	DiagBindRequestDecodeInvalidElementCount:     "LDAP_BIND_REQUEST_DECODE_INVALID_ELEMENT_COUNT",
	DiagBindRequestDecodeVersion:                 "LDAP_BIND_REQUEST_DECODE_VERSION",
	DiagBindRequestDecodeDN:                      "LDAP_BIND_REQUEST_DECODE_DN",
	DiagBindRequestDecodePassword:                "LDAP_BIND_REQUEST_DECODE_PASSWORD",
	DiagBindRequestDecodeSASL:                    "LDAP_BIND_REQUEST_DECODE_SASL_INFO",
	DiagBindRequestDecodeNTLM:                    "LDAP_BIND_REQUEST_DECODE_NTLM",
	DiagBindRequestDecodeInvalidCredentialType:   "LDAP_BIND_REQUEST_DECODE_INVALID_CRED_TYPE",
	DiagUnbindRequestDecode:                      "LDAP_UNBIND_DECODE",
	DiagAbandonRequestDecodeID:                   "LDAP_ABANDON_REQUEST_DECODE_ID",
	DiagDeleteRequestDecodeDN:                    "LDAP_DELETE_REQUEST_DECODE_DN",
	DiagAttributeDecodeSequence:                  "LDAP_ATTRIBUTE_DECODE_SEQUENCE",
	DiagAttributeDecodeInvalidElementCount:       "LDAP_ATTRIBUTE_DECODE_INVALID_ELEMENT_COUNT",
	DiagAttributeDecodeType:                      "LDAP_ATTRIBUTE_DECODE_TYPE",
	DiagAttributeDecodeValues:                    "LDAP_ATTRIBUTE_DECODE_VALUES",
	DiagAddRequestDecodeSequence:                 "LDAP_ADD_REQUEST_DECODE_SEQUENCE",
	DiagAddRequestDecodeInvalidElementCount:      "LDAP_ADD_REQUEST_DECODE_INVALID_ELEMENT_COUNT",
	DiagAddRequestDecodeDN:                       "LDAP_ADD_REQUEST_DECODE_DN",
	DiagAddRequestDecodeAttributes:               "LDAP_ADD_REQUEST_DECODE_ATTRS",
	DiagModifyRequestDecodeSequence:              "LDAP_MODIFY_REQUEST_DECODE_SEQUENCE",
	DiagModifyRequestDecodeInvalidElementCount:   "LDAP_MODIFY_REQUEST_DECODE_INVALID_ELEMENT_COUNT",
	DiagModifyRequestDecodeDN:                    "LDAP_MODIFY_REQUEST_DECODE_DN",
	DiagModifyRequestDecodeChanges:               "LDAP_MODIFY_REQUEST_DECODE_MODS",
	DiagModificationDecodeSequence:               "LDAP_MODIFICATION_DECODE_SEQUENCE",
	DiagModificationDecodeInvalidElementCount:    "LDAP_MODIFICATION_DECODE_INVALID_ELEMENT_COUNT",
	DiagModificationDecodeType:                   "LDAP_MODIFICATION_DECODE_MOD_TYPE",
	DiagModificationDecodeAttribute:              "LDAP_MODIFICATION_DECODE_ATTR",
	DiagModifyDNRequestDecodeSequence:            "LDAP_MODIFY_DN_REQUEST_DECODE_SEQUENCE",
	DiagModifyDNRequestDecodeInvalidElementCount: "LDAP_MODIFY_DN_REQUEST_DECODE_INVALID_ELEMENT_COUNT",
	DiagModifyDNRequestDecodeDN:                  "LDAP_MODIFY_DN_REQUEST_DECODE_DN",
	DiagModifyDNRequestDecodeNewRDN:              "LDAP_MODIFY_DN_REQUEST_DECODE_NEW_RDN",
	DiagModifyDNRequestDecodeDeleteOldRDN:        "LDAP_MODIFY_DN_REQUEST_DECODE_DELETE_OLD_RDN",
	DiagModifyDNRequestDecodeNewSuperior:         "LDAP_MODIFY_DN_REQUEST_DECODE_NEW_SUPERIOR",
	DiagCompareRequestDecodeSequence:             "LDAP_COMPARE_REQUEST_DECODE_SEQUENCE",
	DiagCompareRequestDecodeInvalidElementCount:  "LDAP_COMPARE_REQUEST_DECODE_INVALID_ELEMENT_COUNT",
	DiagCompareRequestDecodeDN:                   "LDAP_COMPARE_REQUEST_DECODE_DN",
	DiagCompareRequestDecodeAVA:                  "LDAP_COMPARE_REQUEST_DECODE_AVA",
	DiagExtendedRequestDecodeSequence:            "LDAP_EXTENDED_REQUEST_DECODE_SEQUENCE",
	DiagExtendedRequestDecodeInvalidElementCount: "LDAP_EXTENDED_REQUEST_DECODE_INVALID_ELEMENT_COUNT",
	DiagExtendedRequestDecodeOID:                 "LDAP_EXTENDED_REQUEST_DECODE_OID",
	DiagExtendedRequestDecodeValue:               "LDAP_EXTENDED_REQUEST_DECODE_VALUE",
	DiagExtendedRequestDecodeInvalidType:         "LDAP_EXTENDED_REQUEST_DECODE_INVALID_TYPE",
	DiagSearchRequestDecodeSequence:              "LDAP_SEARCH_REQUEST_DECODE_SEQUENCE",
	DiagSearchRequestDecodeInvalidElementCount:   "LDAP_SEARCH_REQUEST_DECODE_INVALID_ELEMENT_COUNT",
	DiagSearchRequestDecodeBase:                  "LDAP_SEARCH_REQUEST_DECODE_BASE",
	DiagSearchRequestDecodeScope:                 "LDAP_SEARCH_REQUEST_DECODE_SCOPE",
	DiagSearchRequestDecodeDeref:                 "LDAP_SEARCH_REQUEST_DECODE_DEREF",
	DiagSearchRequestDecodeSizeLimit:             "LDAP_SEARCH_REQUEST_DECODE_SIZE_LIMIT",
	DiagSearchRequestDecodeTimeLimit:             "LDAP_SEARCH_REQUEST_DECODE_TIME_LIMIT",
	DiagSearchRequestDecodeTypesOnly:             "LDAP_SEARCH_REQUEST_DECODE_TYPES_ONLY",
	DiagSearchRequestDecodeFilter:                "LDAP_SEARCH_REQUEST_DECODE_FILTER",
	DiagSearchRequestDecodeAttributes:            "LDAP_SEARCH_REQUEST_DECODE_ATTRIBUTES",

	DiagSearchEntryDecodeSequence:              "LDAP_SEARCH_ENTRY_DECODE_SEQUENCE",
	DiagSearchEntryDecodeInvalidElementCount:   "LDAP_SEARCH_ENTRY_DECODE_INVALID_ELEMENT_COUNT",
	DiagSearchEntryDecodeDN:                    "LDAP_SEARCH_ENTRY_DECODE_DN",
	DiagSearchEntryDecodeAttributes:            "LDAP_SEARCH_ENTRY_DECODE_ATTRS",
	DiagSearchReferenceDecodeSequence:          "LDAP_SEARCH_REFERENCE_DECODE_SEQUENCE",
	DiagSearchReferenceDecodeURLs:              "LDAP_SEARCH_REFERENCE_DECODE_URLS",
	DiagSearchEntryInvalidAttributeDescription: "LDAP_SEARCH_ENTRY_INVALID_ATTRIBUTE_DESCRIPTION",
}

func (d Diagnostic) String() string {
	if name, ok := diagnosticNames[d]; ok {
		return name
	}
	return "DIAGNOSTIC_" + strconv.Itoa(int(d))
}
