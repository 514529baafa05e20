package ldap

import (
	"regexp"
	"strconv"
	"strings"
)

// Matching rules understood by extensible match filters.
const (
	MatchingRuleCaseExact = "caseExactMatch"
	MatchingRuleBitAnd    = "1.2.840.113556.1.4.803"
	MatchingRuleBitOr     = "1.2.840.113556.1.4.804"
	MatchingRuleInChain   = "1.2.840.113556.1.4.1941"
)

// ApplyFilter evaluates f against entry. Values are compared without
// regard to case, and ordering filters compare numerically when both sides
// are integers. A result code other than success means f could not be
// evaluated.
func ApplyFilter(f Filter, entry *SearchResultEntry) (bool, uint16) {
	switch f := f.(type) {
	case *AndFilter:
		for _, child := range f.Filters {
			ok, exitCode := ApplyFilter(child, entry)
			if exitCode != LDAPResultSuccess {
				return false, exitCode
			}
			if !ok {
				return false, LDAPResultSuccess
			}
		}
		return true, LDAPResultSuccess
	case *OrFilter:
		anyOk := false
		for _, child := range f.Filters {
			ok, exitCode := ApplyFilter(child, entry)
			if exitCode != LDAPResultSuccess {
				return false, exitCode
			} else if ok {
				anyOk = true
			}
		}
		return anyOk, LDAPResultSuccess
	case *NotFilter:
		ok, exitCode := ApplyFilter(f.Filter, entry)
		if exitCode != LDAPResultSuccess {
			return false, exitCode
		}
		return !ok, LDAPResultSuccess
	case *PresentFilter:
		for _, a := range entry.Attributes {
			if attributeMatches(a.Type, f.Attribute) {
				return true, LDAPResultSuccess
			}
		}
		return false, LDAPResultSuccess
	case *EqualityFilter:
		value := string(f.Value)
		return anyValue(entry, f.Attribute, func(v string) bool { return strings.EqualFold(v, value) }), LDAPResultSuccess
	case *GreaterOrEqualFilter:
		value := string(f.Value)
		return anyValue(entry, f.Attribute, func(v string) bool { return orderingCompare(v, value) >= 0 }), LDAPResultSuccess
	case *LessOrEqualFilter:
		value := string(f.Value)
		return anyValue(entry, f.Attribute, func(v string) bool { return orderingCompare(v, value) <= 0 }), LDAPResultSuccess
	case *ApproxFilter:
		return applyApprox(f, entry)
	case *SubstringFilter:
		return anyValue(entry, f.Attribute, func(v string) bool { return substringMatch(v, f) }), LDAPResultSuccess
	case *ExtensibleMatchFilter:
		return applyExtensible(f, entry)
	}
	return false, LDAPResultOperationsError
}

// attributeMatches compares an entry attribute description with the one
// named in a filter or attribute list. Without options in want, any
// options on desc are ignored.
func attributeMatches(desc, want string) bool {
	if strings.EqualFold(desc, want) {
		return true
	}
	if strings.Contains(want, ";") {
		return false
	}
	base, _, _ := strings.Cut(desc, ";")
	return strings.EqualFold(base, want)
}

func anyValue(entry *SearchResultEntry, attribute string, match func(string) bool) bool {
	for _, a := range entry.Attributes {
		if !attributeMatches(a.Type, attribute) {
			continue
		}
		for _, v := range a.Vals {
			if match(v) {
				return true
			}
		}
	}
	return false
}

func orderingCompare(v, assertion string) int {
	if vn, err := strconv.ParseInt(v, 10, 64); err == nil {
		if an, err := strconv.ParseInt(assertion, 10, 64); err == nil {
			switch {
			case vn < an:
				return -1
			case vn > an:
				return 1
			}
			return 0
		}
	}
	return strings.Compare(strings.ToLower(v), strings.ToLower(assertion))
}

func substringMatch(v string, f *SubstringFilter) bool {
	v = strings.ToLower(v)
	if f.Initial != nil {
		initial := strings.ToLower(string(f.Initial))
		if !strings.HasPrefix(v, initial) {
			return false
		}
		v = v[len(initial):]
	}
	for _, seg := range f.Any {
		part := strings.ToLower(string(seg))
		i := strings.Index(v, part)
		if i < 0 {
			return false
		}
		v = v[i+len(part):]
	}
	if f.Final != nil {
		return strings.HasSuffix(v, strings.ToLower(string(f.Final)))
	}
	return true
}

// applyApprox treats an approximate match as equality, except that an
// assertion of the form ^...$ is matched as a regular expression.
//
// Example:
// ldapsearch -H ldap://localhost:1389 -x -b o=test $'cn~=^\(?i\).*ziggy.*$'
func applyApprox(f *ApproxFilter, entry *SearchResultEntry) (bool, uint16) {
	value := string(f.Value)
	if len(value) > 2 && value[0] == '^' && value[len(value)-1] == '$' {
		re, err := regexp.Compile(value)
		if err != nil {
			return false, LDAPResultInappropriateMatching
		}
		return anyValue(entry, f.Attribute, re.MatchString), LDAPResultSuccess
	}
	return anyValue(entry, f.Attribute, func(v string) bool { return strings.EqualFold(v, value) }), LDAPResultSuccess
}

func applyExtensible(f *ExtensibleMatchFilter, entry *SearchResultEntry) (bool, uint16) {
	value := string(f.Value)
	var match func(string) bool
	switch f.MatchingRule {
	case "":
		match = func(v string) bool { return strings.EqualFold(v, value) }
	case MatchingRuleCaseExact:
		// Example: ldapsearch -H ldap://localhost:1389 -x -b o=test '(&(uid:caseExactMatch:=ziggy)(objectClass=person))'
		match = func(v string) bool { return v == value }
	case MatchingRuleBitAnd, MatchingRuleBitOr:
		mask, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return false, LDAPResultOperationsError
		}
		bitAnd := f.MatchingRule == MatchingRuleBitAnd
		match = func(v string) bool {
			iv, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return false
			}
			if bitAnd {
				return iv&mask == mask
			}
			return iv&mask != 0
		}
	default:
		// Includes LDAP_MATCHING_RULE_IN_CHAIN, which needs group expansion.
		return false, LDAPResultInappropriateMatching
	}

	for _, a := range entry.Attributes {
		if f.Attribute != "" && !attributeMatches(a.Type, f.Attribute) {
			continue
		}
		for _, v := range a.Vals {
			if match(v) {
				return true, LDAPResultSuccess
			}
		}
	}
	if f.DNAttributes {
		for _, rdn := range strings.Split(entry.DN, ",") {
			attr, v, ok := strings.Cut(strings.TrimSpace(rdn), "=")
			if !ok || (f.Attribute != "" && !attributeMatches(attr, f.Attribute)) {
				continue
			}
			if match(v) {
				return true, LDAPResultSuccess
			}
		}
	}
	return false, LDAPResultSuccess
}
