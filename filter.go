// File contains the search filter model.
/*
An LDAP search filter is defined in Section 4.5.1 of [RFC4511]
        Filter ::= CHOICE {
            and                [0] SET SIZE (1..MAX) OF filter Filter,
            or                 [1] SET SIZE (1..MAX) OF filter Filter,
            not                [2] Filter,
            equalityMatch      [3] AttributeValueAssertion,
            substrings         [4] SubstringFilter,
            greaterOrEqual     [5] AttributeValueAssertion,
            lessOrEqual        [6] AttributeValueAssertion,
            present            [7] AttributeDescription,
            approxMatch        [8] AttributeValueAssertion,
            extensibleMatch    [9] MatchingRuleAssertion }

        SubstringFilter ::= SEQUENCE {
            type    AttributeDescription,
            substrings    SEQUENCE SIZE (1..MAX) OF substring CHOICE {
             initial        [0] AssertionValue,
             any            [1] AssertionValue,
             final          [2] AssertionValue } }

        MatchingRuleAssertion ::= SEQUENCE {
            matchingRule    [1] MatchingRuleId OPTIONAL,
            type            [2] AttributeDescription OPTIONAL,
            matchValue      [3] AssertionValue,
            dnAttributes    [4] BOOLEAN DEFAULT FALSE }
*/
package ldap

import (
	"strings"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// Filter choices
const (
	FilterAnd             = 0
	FilterOr              = 1
	FilterNot             = 2
	FilterEqualityMatch   = 3
	FilterSubstrings      = 4
	FilterGreaterOrEqual  = 5
	FilterLessOrEqual     = 6
	FilterPresent         = 7
	FilterApproxMatch     = 8
	FilterExtensibleMatch = 9
)

// MaxFilterDepth bounds how deeply and, or and not filters may nest,
// counting the outermost filter as level one. Both the string parser and
// the BER decoder enforce it.
const MaxFilterDepth = 100

// FilterMap contains human readable descriptions of Filter choices
var FilterMap = map[uint64]string{
	FilterAnd:             "And",
	FilterOr:              "Or",
	FilterNot:             "Not",
	FilterEqualityMatch:   "Equality Match",
	FilterSubstrings:      "Substrings",
	FilterGreaterOrEqual:  "Greater Or Equal",
	FilterLessOrEqual:     "Less Or Equal",
	FilterPresent:         "Present",
	FilterApproxMatch:     "Approx Match",
	FilterExtensibleMatch: "Extensible Match",
}

// SubstringFilter options
const (
	FilterSubstringsInitial = 0
	FilterSubstringsAny     = 1
	FilterSubstringsFinal   = 2
)

// FilterSubstringsMap contains human readable descriptions of SubstringFilter choices
var FilterSubstringsMap = map[uint64]string{
	FilterSubstringsInitial: "Substrings Initial",
	FilterSubstringsAny:     "Substrings Any",
	FilterSubstringsFinal:   "Substrings Final",
}

// MatchingRuleAssertion choices
const (
	MatchingRuleAssertionMatchingRule = 1
	MatchingRuleAssertionType         = 2
	MatchingRuleAssertionMatchValue   = 3
	MatchingRuleAssertionDNAttributes = 4
)

// MatchingRuleAssertionMap contains human readable descriptions of MatchingRuleAssertion choices
var MatchingRuleAssertionMap = map[uint64]string{
	MatchingRuleAssertionMatchingRule: "Matching Rule Assertion Matching Rule",
	MatchingRuleAssertionType:         "Matching Rule Assertion Type",
	MatchingRuleAssertionMatchValue:   "Matching Rule Assertion Match Value",
	MatchingRuleAssertionDNAttributes: "Matching Rule Assertion DN Attributes",
}

// Filter is a search filter tree. The set of implementations is closed:
// *AndFilter, *OrFilter, *NotFilter, *EqualityFilter,
// *GreaterOrEqualFilter, *LessOrEqualFilter, *ApproxFilter,
// *SubstringFilter, *PresentFilter and *ExtensibleMatchFilter.
type Filter interface {
	// String renders the filter in RFC 4515 text form.
	String() string
	// Encode returns the BER form of the filter.
	Encode() *ber.Packet

	filterTag() uint64
}

// FilterType returns the BER choice tag of f.
func FilterType(f Filter) uint64 {
	return f.filterTag()
}

type AndFilter struct {
	Filters []Filter
}

type OrFilter struct {
	Filters []Filter
}

type NotFilter struct {
	Filter Filter
}

// AttributeValueAssertion pairs an attribute description with an
// assertion value. It is the payload of the equality, ordering and
// approximate filters and of the compare request.
type AttributeValueAssertion struct {
	Attribute string
	Value     []byte
}

type EqualityFilter struct {
	AttributeValueAssertion
}

type GreaterOrEqualFilter struct {
	AttributeValueAssertion
}

type LessOrEqualFilter struct {
	AttributeValueAssertion
}

type ApproxFilter struct {
	AttributeValueAssertion
}

// SubstringFilter matches values containing Initial, each of Any and
// Final in order. A nil Initial or Final is absent; an empty non-nil one
// is present with no content.
type SubstringFilter struct {
	Attribute string
	Initial   []byte
	Any       [][]byte
	Final     []byte
}

type PresentFilter struct {
	Attribute string
}

// ExtensibleMatchFilter names a matching rule explicitly. An empty
// MatchingRule or Attribute is absent.
type ExtensibleMatchFilter struct {
	MatchingRule string
	Attribute    string
	Value        []byte
	DNAttributes bool
}

func (*AndFilter) filterTag() uint64             { return FilterAnd }
func (*OrFilter) filterTag() uint64              { return FilterOr }
func (*NotFilter) filterTag() uint64             { return FilterNot }
func (*EqualityFilter) filterTag() uint64        { return FilterEqualityMatch }
func (*GreaterOrEqualFilter) filterTag() uint64  { return FilterGreaterOrEqual }
func (*LessOrEqualFilter) filterTag() uint64     { return FilterLessOrEqual }
func (*ApproxFilter) filterTag() uint64          { return FilterApproxMatch }
func (*SubstringFilter) filterTag() uint64       { return FilterSubstrings }
func (*PresentFilter) filterTag() uint64         { return FilterPresent }
func (*ExtensibleMatchFilter) filterTag() uint64 { return FilterExtensibleMatch }

func NewAndFilter(filters ...Filter) *AndFilter {
	return &AndFilter{Filters: append([]Filter{}, filters...)}
}

func NewOrFilter(filters ...Filter) *OrFilter {
	return &OrFilter{Filters: append([]Filter{}, filters...)}
}

func NewNotFilter(filter Filter) *NotFilter {
	return &NotFilter{Filter: filter}
}

func NewEqualityFilter(attribute string, value []byte) *EqualityFilter {
	return &EqualityFilter{newAVA(attribute, value)}
}

func NewGreaterOrEqualFilter(attribute string, value []byte) *GreaterOrEqualFilter {
	return &GreaterOrEqualFilter{newAVA(attribute, value)}
}

func NewLessOrEqualFilter(attribute string, value []byte) *LessOrEqualFilter {
	return &LessOrEqualFilter{newAVA(attribute, value)}
}

func NewApproxFilter(attribute string, value []byte) *ApproxFilter {
	return &ApproxFilter{newAVA(attribute, value)}
}

func NewPresentFilter(attribute string) *PresentFilter {
	return &PresentFilter{Attribute: attribute}
}

// NewSubstringFilter requires at least one of initial, any or final.
func NewSubstringFilter(attribute string, initial []byte, any [][]byte, final []byte) (*SubstringFilter, error) {
	if initial == nil && len(any) == 0 && final == nil {
		return nil, protocolError(DiagFilterSubstringNoSegments, "substring filter on %q has no initial, any or final component", attribute)
	}
	f := &SubstringFilter{Attribute: attribute, Initial: cloneOptional(initial), Final: cloneOptional(final)}
	for _, a := range any {
		f.Any = append(f.Any, cloneBytes(a))
	}
	return f, nil
}

// NewExtensibleMatchFilter requires a matching rule, an attribute, or both.
func NewExtensibleMatchFilter(matchingRule, attribute string, value []byte, dnAttributes bool) (*ExtensibleMatchFilter, error) {
	if matchingRule == "" && attribute == "" {
		return nil, protocolError(DiagFilterExtensibleMatchNoAttributeOrRule, "extensible match filter needs an attribute type or a matching rule")
	}
	return &ExtensibleMatchFilter{
		MatchingRule: matchingRule,
		Attribute:    attribute,
		Value:        cloneBytes(value),
		DNAttributes: dnAttributes,
	}, nil
}

func newAVA(attribute string, value []byte) AttributeValueAssertion {
	return AttributeValueAssertion{Attribute: attribute, Value: cloneBytes(value)}
}

// cloneBytes always returns a non-nil copy.
func cloneBytes(b []byte) []byte {
	return append([]byte{}, b...)
}

func cloneOptional(b []byte) []byte {
	if b == nil {
		return nil
	}
	return cloneBytes(b)
}

func (f *AndFilter) String() string {
	return compoundString('&', f.Filters)
}

func (f *OrFilter) String() string {
	return compoundString('|', f.Filters)
}

func compoundString(op byte, filters []Filter) string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteByte(op)
	for _, f := range filters {
		sb.WriteString(f.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

func (f *NotFilter) String() string {
	return "(!" + f.Filter.String() + ")"
}

func (f *EqualityFilter) String() string {
	return f.assertionString("=")
}

func (f *GreaterOrEqualFilter) String() string {
	return f.assertionString(">=")
}

func (f *LessOrEqualFilter) String() string {
	return f.assertionString("<=")
}

func (f *ApproxFilter) String() string {
	return f.assertionString("~=")
}

func (ava AttributeValueAssertion) assertionString(op string) string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(ava.Attribute)
	sb.WriteString(op)
	writeEscaped(&sb, ava.Value)
	sb.WriteByte(')')
	return sb.String()
}

func (f *SubstringFilter) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(f.Attribute)
	sb.WriteByte('=')
	writeEscaped(&sb, f.Initial)
	for _, a := range f.Any {
		sb.WriteByte('*')
		writeEscaped(&sb, a)
	}
	sb.WriteByte('*')
	writeEscaped(&sb, f.Final)
	sb.WriteByte(')')
	return sb.String()
}

func (f *PresentFilter) String() string {
	return "(" + f.Attribute + "=*)"
}

func (f *ExtensibleMatchFilter) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(f.Attribute)
	if f.DNAttributes {
		sb.WriteString(":dn")
	}
	if f.MatchingRule != "" {
		sb.WriteByte(':')
		sb.WriteString(f.MatchingRule)
	}
	sb.WriteString(":=")
	writeEscaped(&sb, f.Value)
	sb.WriteByte(')')
	return sb.String()
}

const hexDigits = "0123456789abcdef"

// needsFilterEscape reports whether c must be written as \xx inside an
// assertion value.
func needsFilterEscape(c byte) bool {
	return c > 0x7e || c <= 0x1f || c == '(' || c == ')' || c == '*' || c == '\\'
}

func writeEscaped(sb *strings.Builder, value []byte) {
	for _, c := range value {
		if needsFilterEscape(c) {
			sb.WriteByte('\\')
			sb.WriteByte(hexDigits[c>>4])
			sb.WriteByte(hexDigits[c&0x0f])
			continue
		}
		sb.WriteByte(c)
	}
}

// EscapeFilter escapes from the provided LDAP filter string the special
// characters in the set `()*\`, control characters, DEL and every byte
// outside ASCII, as defined in RFC4515.
func EscapeFilter(filter string) string {
	var sb strings.Builder
	writeEscaped(&sb, []byte(filter))
	return sb.String()
}
