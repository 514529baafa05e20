package ldap

import (
	"fmt"
	"math"
	"strings"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// SearchRequest represents a search request to send to the server
//
//	SearchRequest ::= [APPLICATION 3] SEQUENCE {
//	     baseObject      LDAPDN,
//	     scope           ENUMERATED,
//	     derefAliases    ENUMERATED,
//	     sizeLimit       INTEGER (0 ..  maxInt),
//	     timeLimit       INTEGER (0 ..  maxInt),
//	     typesOnly       BOOLEAN,
//	     filter          Filter,
//	     attributes      AttributeSelection }
type SearchRequest struct {
	BaseDN       string
	Scope        int
	DerefAliases int
	SizeLimit    int
	TimeLimit    int
	TypesOnly    bool
	Filter       Filter
	Attributes   []string
}

// NewSearchRequest creates a new search request
func NewSearchRequest(
	baseDN string,
	scope, derefAliases, sizeLimit, timeLimit int,
	typesOnly bool,
	filter Filter,
	attributes []string,
) *SearchRequest {
	return &SearchRequest{
		BaseDN:       baseDN,
		Scope:        scope,
		DerefAliases: derefAliases,
		SizeLimit:    sizeLimit,
		TimeLimit:    timeLimit,
		TypesOnly:    typesOnly,
		Filter:       filter,
		Attributes:   append([]string{}, attributes...),
	}
}

func (*SearchRequest) Tag() ber.Tag   { return ApplicationSearchRequest }
func (r *SearchRequest) Name() string { return opName(r) }

func (r *SearchRequest) Encode() *ber.Packet {
	attrs := encodeSequence("Attributes")
	for _, a := range r.Attributes {
		attrs.AppendChild(encodeString(a, "Attribute"))
	}
	return encodeConstructed(ber.ClassApplication, ApplicationSearchRequest, ApplicationMap[ApplicationSearchRequest],
		encodeString(r.BaseDN, "Base DN"),
		encodeEnumerated(int64(r.Scope), "Scope"),
		encodeEnumerated(int64(r.DerefAliases), "Deref Aliases"),
		encodeInteger(int64(r.SizeLimit), "Size Limit"),
		encodeInteger(int64(r.TimeLimit), "Time Limit"),
		encodeBoolean(ber.ClassUniversal, ber.TagBoolean, r.TypesOnly, "Types Only"),
		r.filter().Encode(),
		attrs)
}

// filter falls back to (objectClass=*) when no filter was set.
func (r *SearchRequest) filter() Filter {
	if r.Filter == nil {
		return &PresentFilter{Attribute: "objectClass"}
	}
	return r.Filter
}

func (r *SearchRequest) String() string {
	return fmt.Sprintf("SearchRequest(baseDN=%s, scope=%d, derefPolicy=%d, sizeLimit=%d, timeLimit=%d, typesOnly=%t, filter=%s, attributes={%s})",
		r.BaseDN, r.Scope, r.DerefAliases, r.SizeLimit, r.TimeLimit, r.TypesOnly, r.filter(), strings.Join(r.Attributes, ", "))
}

func decodeSearchRequest(packet *ber.Packet) (*SearchRequest, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagSearchRequestDecodeSequence, err, "cannot decode the search request as a sequence")
	}
	if n := len(packet.Children); n != 8 {
		return nil, protocolError(DiagSearchRequestDecodeInvalidElementCount, "search request holds %d elements, expected 8", n)
	}
	c := packet.Children
	r := &SearchRequest{}
	var err error

	if r.BaseDN, err = decodeString(c[0]); err != nil {
		return nil, wrapError(DiagSearchRequestDecodeBase, err, "cannot decode the base DN")
	}
	scope, err := decodeEnumerated(c[1])
	if err != nil {
		return nil, wrapError(DiagSearchRequestDecodeScope, err, "cannot decode the scope")
	}
	if scope < ScopeBaseObject || scope > ScopeWholeSubtree {
		return nil, protocolError(DiagSearchRequestDecodeScope, "invalid scope %d", scope)
	}
	r.Scope = int(scope)
	deref, err := decodeEnumerated(c[2])
	if err != nil {
		return nil, wrapError(DiagSearchRequestDecodeDeref, err, "cannot decode the alias dereferencing policy")
	}
	if deref < NeverDerefAliases || deref > DerefAlways {
		return nil, protocolError(DiagSearchRequestDecodeDeref, "invalid alias dereferencing policy %d", deref)
	}
	r.DerefAliases = int(deref)
	if r.SizeLimit, err = decodeLimit(c[3]); err != nil {
		return nil, wrapError(DiagSearchRequestDecodeSizeLimit, err, "cannot decode the size limit")
	}
	if r.TimeLimit, err = decodeLimit(c[4]); err != nil {
		return nil, wrapError(DiagSearchRequestDecodeTimeLimit, err, "cannot decode the time limit")
	}
	if r.TypesOnly, err = decodeBoolean(c[5]); err != nil {
		return nil, wrapError(DiagSearchRequestDecodeTypesOnly, err, "cannot decode the typesOnly flag")
	}
	if r.Filter, err = DecodeFilter(c[6]); err != nil {
		return nil, wrapError(DiagSearchRequestDecodeFilter, err, "cannot decode the search filter")
	}
	if r.Attributes, err = decodeStringSequence(c[7]); err != nil {
		return nil, wrapError(DiagSearchRequestDecodeAttributes, err, "cannot decode the requested attributes")
	}
	return r, nil
}

func decodeLimit(p *ber.Packet) (int, error) {
	v, err := decodeInteger(p)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > math.MaxInt32 {
		return 0, protocolError(DiagASN1InvalidInteger, "limit %d out of range", v)
	}
	return int(v), nil
}

// SearchResultEntry is one entry returned by a search.
//
//	SearchResultEntry ::= [APPLICATION 4] SEQUENCE {
//	     objectName      LDAPDN,
//	     attributes      PartialAttributeList }
type SearchResultEntry struct {
	DN         string
	Attributes []Attribute
}

// NewSearchResultEntry copies attrs into a new entry.
func NewSearchResultEntry(dn string, attrs ...Attribute) *SearchResultEntry {
	e := &SearchResultEntry{DN: dn, Attributes: make([]Attribute, 0, len(attrs))}
	for _, a := range attrs {
		e.Attributes = append(e.Attributes, NewAttribute(a.Type, a.Vals...))
	}
	return e
}

func (*SearchResultEntry) Tag() ber.Tag   { return ApplicationSearchResultEntry }
func (e *SearchResultEntry) Name() string { return opName(e) }

func (e *SearchResultEntry) Encode() *ber.Packet {
	return encodeConstructed(ber.ClassApplication, ApplicationSearchResultEntry, ApplicationMap[ApplicationSearchResultEntry],
		encodeString(e.DN, "Object Name"),
		encodeAttributeList("Attributes", e.Attributes))
}

func (e *SearchResultEntry) String() string {
	return fmt.Sprintf("SearchResultEntry(dn=%s, attrs={%s})", e.DN, attributeListString(e.Attributes))
}

// GetAttributeValues returns the values of every attribute whose type
// matches attribute without regard to case.
func (e *SearchResultEntry) GetAttributeValues(attribute string) []string {
	var values []string
	for _, a := range e.Attributes {
		if strings.EqualFold(a.Type, attribute) {
			values = append(values, a.Vals...)
		}
	}
	return values
}

// GetAttributeValue returns the first value for the named attribute, or "".
func (e *SearchResultEntry) GetAttributeValue(attribute string) string {
	values := e.GetAttributeValues(attribute)
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

func decodeSearchResultEntry(packet *ber.Packet) (*SearchResultEntry, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagSearchEntryDecodeSequence, err, "cannot decode the search result entry as a sequence")
	}
	if n := len(packet.Children); n != 2 {
		return nil, protocolError(DiagSearchEntryDecodeInvalidElementCount, "search result entry holds %d elements, expected 2", n)
	}
	dn, err := decodeString(packet.Children[0])
	if err != nil {
		return nil, wrapError(DiagSearchEntryDecodeDN, err, "cannot decode the entry DN")
	}
	attrs, err := decodeAttributeList(packet.Children[1])
	if err != nil {
		return nil, wrapError(DiagSearchEntryDecodeAttributes, err, "cannot decode the attributes of %s", dn)
	}
	return &SearchResultEntry{DN: dn, Attributes: attrs}, nil
}

// SearchResultReference ::= [APPLICATION 19] SEQUENCE SIZE (1..MAX) OF uri URI
type SearchResultReference struct {
	URIs []string
}

func (*SearchResultReference) Tag() ber.Tag   { return ApplicationSearchResultReference }
func (r *SearchResultReference) Name() string { return opName(r) }

func (r *SearchResultReference) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassApplication, ber.TypeConstructed, ApplicationSearchResultReference, nil,
		ApplicationMap[ApplicationSearchResultReference])
	for _, uri := range r.URIs {
		p.AppendChild(encodeString(uri, "URI"))
	}
	return p
}

func (r *SearchResultReference) String() string {
	return fmt.Sprintf("SearchResultReference(referralURLs={%s})", strings.Join(r.URIs, ", "))
}

func decodeSearchResultReference(packet *ber.Packet) (*SearchResultReference, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagSearchReferenceDecodeSequence, err, "cannot decode the search result reference as a sequence")
	}
	if len(packet.Children) == 0 {
		return nil, protocolError(DiagSearchReferenceDecodeURLs, "search result reference holds no URL")
	}
	uris, err := decodeStringSequence(packet)
	if err != nil {
		return nil, wrapError(DiagSearchReferenceDecodeURLs, err, "cannot decode the referral URLs")
	}
	return &SearchResultReference{URIs: uris}, nil
}
