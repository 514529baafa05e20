package ldap

import (
	ber "github.com/go-asn1-ber/asn1-ber"
)

func (f *AndFilter) Encode() *ber.Packet {
	return encodeCompound(FilterAnd, f.Filters)
}

func (f *OrFilter) Encode() *ber.Packet {
	return encodeCompound(FilterOr, f.Filters)
}

func encodeCompound(tag uint64, filters []Filter) *ber.Packet {
	p := ber.Encode(ber.ClassContext, ber.TypeConstructed, ber.Tag(tag), nil, FilterMap[tag])
	for _, f := range filters {
		p.AppendChild(f.Encode())
	}
	return p
}

func (f *NotFilter) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassContext, ber.TypeConstructed, FilterNot, nil, FilterMap[FilterNot])
	p.AppendChild(f.Filter.Encode())
	return p
}

func (f *EqualityFilter) Encode() *ber.Packet {
	return f.encode(FilterEqualityMatch)
}

func (f *GreaterOrEqualFilter) Encode() *ber.Packet {
	return f.encode(FilterGreaterOrEqual)
}

func (f *LessOrEqualFilter) Encode() *ber.Packet {
	return f.encode(FilterLessOrEqual)
}

func (f *ApproxFilter) Encode() *ber.Packet {
	return f.encode(FilterApproxMatch)
}

func (ava AttributeValueAssertion) encode(tag uint64) *ber.Packet {
	return encodeConstructed(ber.ClassContext, ber.Tag(tag), FilterMap[tag],
		encodeString(ava.Attribute, "Attribute"),
		encodeOctetString(ber.ClassUniversal, ber.TagOctetString, ava.Value, "Condition"))
}

func (f *SubstringFilter) Encode() *ber.Packet {
	substrings := ber.NewSequence("SubstringFilter")
	if f.Initial != nil {
		substrings.AppendChild(encodeOctetString(ber.ClassContext, FilterSubstringsInitial, f.Initial, FilterSubstringsMap[FilterSubstringsInitial]))
	}
	for _, a := range f.Any {
		substrings.AppendChild(encodeOctetString(ber.ClassContext, FilterSubstringsAny, a, FilterSubstringsMap[FilterSubstringsAny]))
	}
	if f.Final != nil {
		substrings.AppendChild(encodeOctetString(ber.ClassContext, FilterSubstringsFinal, f.Final, FilterSubstringsMap[FilterSubstringsFinal]))
	}
	return encodeConstructed(ber.ClassContext, FilterSubstrings, FilterMap[FilterSubstrings],
		encodeString(f.Attribute, "Attribute"), substrings)
}

func (f *PresentFilter) Encode() *ber.Packet {
	return ber.NewString(ber.ClassContext, ber.TypePrimitive, FilterPresent, f.Attribute, FilterMap[FilterPresent])
}

func (f *ExtensibleMatchFilter) Encode() *ber.Packet {
	p := ber.Encode(ber.ClassContext, ber.TypeConstructed, FilterExtensibleMatch, nil, FilterMap[FilterExtensibleMatch])
	if f.MatchingRule != "" {
		p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, MatchingRuleAssertionMatchingRule, f.MatchingRule,
			MatchingRuleAssertionMap[MatchingRuleAssertionMatchingRule]))
	}
	if f.Attribute != "" {
		p.AppendChild(ber.NewString(ber.ClassContext, ber.TypePrimitive, MatchingRuleAssertionType, f.Attribute,
			MatchingRuleAssertionMap[MatchingRuleAssertionType]))
	}
	p.AppendChild(encodeOctetString(ber.ClassContext, MatchingRuleAssertionMatchValue, f.Value,
		MatchingRuleAssertionMap[MatchingRuleAssertionMatchValue]))
	if f.DNAttributes {
		p.AppendChild(encodeBoolean(ber.ClassContext, MatchingRuleAssertionDNAttributes, true,
			MatchingRuleAssertionMap[MatchingRuleAssertionDNAttributes]))
	}
	return p
}

// DecodeFilter rebuilds a filter tree from its BER form. Every element
// must carry one of the tags its position allows, and compound filters
// may nest at most MaxFilterDepth levels.
func DecodeFilter(packet *ber.Packet) (Filter, error) {
	return decodeFilter(packet, 1)
}

func decodeFilter(packet *ber.Packet, depth int) (Filter, error) {
	if packet == nil {
		return nil, protocolError(DiagFilterDecodeNull, "missing filter element")
	}
	if packet.ClassType != ber.ClassContext {
		return nil, protocolError(DiagFilterDecodeInvalidType, "filter element has class %s, expected context", ber.ClassMap[packet.ClassType])
	}
	if depth > MaxFilterDepth {
		return nil, protocolError(DiagFilterDecodeTooDeep, "filter nests deeper than %d levels", MaxFilterDepth)
	}

	switch packet.Tag {
	case FilterAnd, FilterOr:
		return decodeCompoundFilter(packet, depth)
	case FilterNot:
		return decodeNotFilter(packet, depth)
	case FilterEqualityMatch, FilterGreaterOrEqual, FilterLessOrEqual, FilterApproxMatch:
		return decodeAssertionFilter(packet)
	case FilterSubstrings:
		return decodeSubstringFilter(packet)
	case FilterPresent:
		return decodePresentFilter(packet)
	case FilterExtensibleMatch:
		return decodeExtensibleMatchFilter(packet)
	}
	return nil, protocolError(DiagFilterDecodeInvalidType, "invalid filter type %d", packet.Tag)
}

// DecompileFilter converts a packet representation of a filter into a string representation
func DecompileFilter(packet *ber.Packet) (string, error) {
	f, err := DecodeFilter(packet)
	if err != nil {
		return "", err
	}
	return f.String(), nil
}

func decodeCompoundFilter(packet *ber.Packet, depth int) (Filter, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagFilterDecodeCompoundSet, err, "cannot decode %s filter components as a set", FilterMap[uint64(packet.Tag)])
	}
	filters := make([]Filter, 0, len(packet.Children))
	for i, child := range packet.Children {
		f, err := decodeFilter(child, depth+1)
		if err != nil {
			return nil, wrapError(DiagFilterDecodeCompoundComponents, err, "cannot decode component %d of the %s filter",
				i, FilterMap[uint64(packet.Tag)])
		}
		filters = append(filters, f)
	}
	if packet.Tag == FilterAnd {
		return &AndFilter{Filters: filters}, nil
	}
	return &OrFilter{Filters: filters}, nil
}

func decodeNotFilter(packet *ber.Packet, depth int) (Filter, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagFilterDecodeNotElement, err, "cannot decode the not filter component")
	}
	if len(packet.Children) != 1 {
		return nil, protocolError(DiagFilterDecodeNotElement, "not filter holds %d elements, expected 1", len(packet.Children))
	}
	child, err := decodeFilter(packet.Children[0], depth+1)
	if err != nil {
		return nil, wrapError(DiagFilterDecodeNotComponent, err, "cannot decode the not filter component")
	}
	return &NotFilter{Filter: child}, nil
}

func decodeAssertionFilter(packet *ber.Packet) (Filter, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagFilterDecodeTVSequence, err, "cannot decode %s filter as a sequence", FilterMap[uint64(packet.Tag)])
	}
	if len(packet.Children) != 2 {
		return nil, protocolError(DiagFilterDecodeTVInvalidElementCount, "%s filter holds %d elements, expected 2",
			FilterMap[uint64(packet.Tag)], len(packet.Children))
	}
	attr, err := decodeString(packet.Children[0])
	if err != nil {
		return nil, wrapError(DiagFilterDecodeTVType, err, "cannot decode the attribute type")
	}
	value, err := decodeOctetString(packet.Children[1])
	if err != nil {
		return nil, wrapError(DiagFilterDecodeTVValue, err, "cannot decode the assertion value")
	}
	return newAssertionFilter(uint64(packet.Tag), attr, value), nil
}

func decodeSubstringFilter(packet *ber.Packet) (Filter, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagFilterDecodeSubstringSequence, err, "cannot decode substring filter as a sequence")
	}
	if len(packet.Children) != 2 {
		return nil, protocolError(DiagFilterDecodeSubstringInvalidElementCount, "substring filter holds %d elements, expected 2", len(packet.Children))
	}
	attr, err := decodeString(packet.Children[0])
	if err != nil {
		return nil, wrapError(DiagFilterDecodeSubstringType, err, "cannot decode the attribute type")
	}
	subs := packet.Children[1]
	if err := expectConstructed(subs); err != nil {
		return nil, wrapError(DiagFilterDecodeSubstringElements, err, "cannot decode the substring components as a sequence")
	}
	if len(subs.Children) == 0 {
		return nil, protocolError(DiagFilterDecodeSubstringNoSubelements, "substring filter has no components")
	}

	f := &SubstringFilter{Attribute: attr}
	for _, child := range subs.Children {
		if child.ClassType != ber.ClassContext || child.Tag > FilterSubstringsFinal {
			return nil, protocolError(DiagFilterDecodeSubstringInvalidSubtype, "invalid substring component %s/%d",
				ber.ClassMap[child.ClassType], child.Tag)
		}
		value, err := decodeOctetString(child)
		if err != nil {
			return nil, wrapError(DiagFilterDecodeSubstringValues, err, "cannot decode a substring component")
		}
		switch child.Tag {
		case FilterSubstringsInitial:
			f.Initial = value
		case FilterSubstringsAny:
			f.Any = append(f.Any, value)
		case FilterSubstringsFinal:
			f.Final = value
		}
	}
	return f, nil
}

func decodePresentFilter(packet *ber.Packet) (Filter, error) {
	attr, err := decodeString(packet)
	if err != nil {
		return nil, wrapError(DiagFilterDecodePresenceType, err, "cannot decode the presence attribute type")
	}
	return &PresentFilter{Attribute: attr}, nil
}

func decodeExtensibleMatchFilter(packet *ber.Packet) (Filter, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagFilterDecodeExtensibleSequence, err, "cannot decode extensible match filter as a sequence")
	}

	f := &ExtensibleMatchFilter{}
	for _, child := range packet.Children {
		if child.ClassType != ber.ClassContext {
			return nil, protocolError(DiagFilterDecodeExtensibleInvalidType, "invalid extensible match element %s/%d",
				ber.ClassMap[child.ClassType], child.Tag)
		}
		var err error
		switch child.Tag {
		case MatchingRuleAssertionMatchingRule:
			f.MatchingRule, err = decodeString(child)
		case MatchingRuleAssertionType:
			f.Attribute, err = decodeString(child)
		case MatchingRuleAssertionMatchValue:
			f.Value, err = decodeOctetString(child)
		case MatchingRuleAssertionDNAttributes:
			f.DNAttributes, err = decodeBoolean(child)
		default:
			return nil, protocolError(DiagFilterDecodeExtensibleInvalidType, "invalid extensible match element %s/%d",
				ber.ClassMap[child.ClassType], child.Tag)
		}
		if err != nil {
			return nil, wrapError(DiagFilterDecodeExtensibleElements, err, "cannot decode an extensible match element")
		}
	}
	if f.Value == nil {
		return nil, protocolError(DiagFilterDecodeExtensibleNoValue, "extensible match filter has no match value")
	}
	if f.Attribute == "" && f.MatchingRule == "" {
		return nil, protocolError(DiagFilterExtensibleMatchNoAttributeOrRule,
			"extensible match filter names neither an attribute type nor a matching rule")
	}
	return f, nil
}
