package ldap

import (
	"strings"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// ParseFilter decodes the RFC 4515 string representation of a search
// filter. Parentheses around the outermost component are optional.
func ParseFilter(filter string) (Filter, error) {
	return parseFilter(filter, 0, len(filter), 1)
}

// CompileFilter converts a string representation of a filter into a BER-encoded packet
func CompileFilter(filter string) (*ber.Packet, error) {
	f, err := ParseFilter(filter)
	if err != nil {
		return nil, err
	}
	return f.Encode(), nil
}

func parseFilter(s string, start, end, depth int) (Filter, error) {
	if end-start <= 0 {
		return nil, protocolErrorAt(DiagFilterStringNull, start, "empty filter component at offset %d", start)
	}
	if depth > MaxFilterDepth {
		return nil, protocolErrorAt(DiagFilterTooDeep, start,
			"filter %q nests deeper than %d levels at offset %d", truncateFilter(s), MaxFilterDepth, start)
	}

	if s[start] == '(' {
		if s[end-1] != ')' {
			return nil, protocolErrorAt(DiagFilterMismatchedParentheses, start,
				"mismatched parentheses in filter %q between offsets %d and %d", s, start, end)
		}
		start++
		end--
	}
	if start >= end {
		return nil, protocolErrorAt(DiagFilterNoEqualSign, start, "filter %q has no equal sign at offset %d", s, start)
	}

	// The operator characters are checked before looking for an equal
	// sign, so "(&...)" is never read as an attribute named "&".
	switch s[start] {
	case '&':
		return parseCompoundFilter(FilterAnd, s, start+1, end, depth)
	case '|':
		return parseCompoundFilter(FilterOr, s, start+1, end, depth)
	case '!':
		child, err := parseFilter(s, start+1, end, depth+1)
		if err != nil {
			return nil, err
		}
		return &NotFilter{Filter: child}, nil
	}

	equal := strings.IndexByte(s[start:end], '=')
	if equal <= 0 {
		return nil, protocolErrorAt(DiagFilterNoEqualSign, start, "filter %q has no equal sign between offsets %d and %d", s, start, end)
	}
	equal += start

	kind := uint64(FilterEqualityMatch)
	attrEnd := equal - 1
	switch s[equal-1] {
	case '~':
		kind = FilterApproxMatch
	case '>':
		kind = FilterGreaterOrEqual
	case '<':
		kind = FilterLessOrEqual
	case ':':
		return parseExtensibleMatchFilter(s, start, equal, end)
	default:
		attrEnd = equal
	}
	attr := s[start:attrEnd]
	value := s[equal+1 : end]

	switch {
	case value == "":
		return newAssertionFilter(kind, attr, []byte{}), nil
	case value == "*":
		return &PresentFilter{Attribute: attr}, nil
	case strings.IndexByte(value, '*') >= 0:
		return parseSubstringFilter(s, attr, equal, end)
	}
	v, err := unescapeFilterValue(s, equal+1, end)
	if err != nil {
		return nil, err
	}
	return newAssertionFilter(kind, attr, v), nil
}

func newAssertionFilter(kind uint64, attr string, value []byte) Filter {
	ava := AttributeValueAssertion{Attribute: attr, Value: value}
	switch kind {
	case FilterGreaterOrEqual:
		return &GreaterOrEqualFilter{ava}
	case FilterLessOrEqual:
		return &LessOrEqualFilter{ava}
	case FilterApproxMatch:
		return &ApproxFilter{ava}
	}
	return &EqualityFilter{ava}
}

// parseCompoundFilter reads the components of an AND or OR filter from
// s[start:end], which excludes the operator character. An empty range is
// a filter with no components. Each level scans its whole range, so the
// depth check in parseFilter also bounds the total work.
func parseCompoundFilter(kind uint64, s string, start, end, depth int) (Filter, error) {
	filters := []Filter{}
	if start < end {
		if s[start] != '(' || s[end-1] != ')' {
			return nil, protocolErrorAt(DiagFilterCompoundMissingParentheses, start,
				"compound filter %q is missing parentheses between offsets %d and %d", s, start, end)
		}

		pending, open := 0, -1
		for i := start; i < end; i++ {
			switch c := s[i]; {
			case c == '(':
				if open < 0 {
					open = i
				}
				pending++
			case c == ')':
				pending--
				if pending == 0 {
					child, err := parseFilter(s, open, i+1, depth+1)
					if err != nil {
						return nil, err
					}
					filters = append(filters, child)
					open = -1
				} else if pending < 0 {
					return nil, protocolErrorAt(DiagFilterNoCorrespondingOpenParenthesis, i,
						"filter %q has a close parenthesis at offset %d with no matching open parenthesis", s, i)
				}
			case pending <= 0:
				return nil, protocolErrorAt(DiagFilterCompoundMissingParentheses, i,
					"compound filter %q has text outside parentheses at offset %d", s, i)
			}
		}
		if pending != 0 {
			return nil, protocolErrorAt(DiagFilterNoCorrespondingCloseParenthesis, open,
				"filter %q has an open parenthesis at offset %d with no matching close parenthesis", s, open)
		}
	}

	if kind == FilterAnd {
		return &AndFilter{Filters: filters}, nil
	}
	return &OrFilter{Filters: filters}, nil
}

// parseSubstringFilter splits the value s[equal+1:end] at every asterisk.
// Text before the first asterisk is the initial component and text after
// the last one is the final component; each span between two asterisks
// is an any component, even when empty.
func parseSubstringFilter(s, attr string, equal, end int) (Filter, error) {
	var stars []int
	for i := equal + 1; i < end; i++ {
		if s[i] == '*' {
			stars = append(stars, i)
		}
	}
	if len(stars) == 0 {
		return nil, protocolErrorAt(DiagFilterSubstringNoAsterisks, equal+1,
			"substring value in filter %q between offsets %d and %d has no asterisk", s, equal+1, end)
	}

	f := &SubstringFilter{Attribute: attr}
	var err error
	prev := stars[0]
	if prev > equal+1 {
		if f.Initial, err = unescapeFilterValue(s, equal+1, prev); err != nil {
			return nil, err
		}
	}
	for _, star := range stars[1:] {
		segment, err := unescapeFilterValue(s, prev+1, star)
		if err != nil {
			return nil, err
		}
		f.Any = append(f.Any, segment)
		prev = star
	}
	if prev < end-1 {
		if f.Final, err = unescapeFilterValue(s, prev+1, end); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// parseExtensibleMatchFilter handles the left-hand side forms
// "attr:=", "attr:dn:=", "attr:rule:=", "attr:dn:rule:=", ":rule:=" and
// ":dn:rule:=". s[equal-1] is the colon of ":=".
func parseExtensibleMatchFilter(s string, start, equal, end int) (Filter, error) {
	f := &ExtensibleMatchFilter{}
	ruleEnd := equal - 1

	if s[start] == ':' {
		if hasDNPrefix(s[start:equal]) {
			f.DNAttributes = true
			f.MatchingRule = span(s, start+4, ruleEnd)
		} else {
			f.MatchingRule = span(s, start+1, ruleEnd)
		}
	} else {
		colon := start + strings.IndexByte(s[start:equal], ':')
		f.Attribute = s[start:colon]
		if colon < ruleEnd {
			if hasDNPrefix(s[colon:equal]) {
				f.DNAttributes = true
				f.MatchingRule = span(s, colon+4, ruleEnd)
			} else {
				f.MatchingRule = span(s, colon+1, ruleEnd)
			}
		}
	}
	if f.Attribute == "" && f.MatchingRule == "" {
		return nil, protocolErrorAt(DiagFilterExtensibleMatchNoAttributeOrRule, start,
			"extensible match filter %q at offset %d names neither an attribute type nor a matching rule", s, start)
	}

	v, err := unescapeFilterValue(s, equal+1, end)
	if err != nil {
		return nil, err
	}
	f.Value = v
	return f, nil
}

// truncateFilter keeps error messages short for very long filters.
func truncateFilter(s string) string {
	const limit = 64
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func hasDNPrefix(s string) bool {
	return len(s) >= 4 && strings.EqualFold(s[:4], ":dn:")
}

func span(s string, from, to int) string {
	if from >= to {
		return ""
	}
	return s[from:to]
}

// unescapeFilterValue decodes s[start:end], replacing each backslash and
// the two hex digits after it with the byte they denote. Errors carry the
// offset of the backslash.
func unescapeFilterValue(s string, start, end int) ([]byte, error) {
	out := make([]byte, 0, end-start)
	for i := start; i < end; i++ {
		if s[i] != '\\' {
			out = append(out, s[i])
			continue
		}
		if i+2 >= end {
			return nil, protocolErrorAt(DiagFilterInvalidEscapedByte, i,
				"filter %q has a truncated escape at offset %d", s, i)
		}
		hi, ok1 := fromHexDigit(s[i+1])
		lo, ok2 := fromHexDigit(s[i+2])
		if !ok1 || !ok2 {
			return nil, protocolErrorAt(DiagFilterInvalidEscapedByte, i,
				"filter %q has an invalid escaped byte at offset %d", s, i)
		}
		out = append(out, hi<<4|lo)
		i += 2
	}
	return out, nil
}

func fromHexDigit(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}
