package ldap

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// HandleSearchRequest runs the search through the Searcher registered for
// the request's base DN and writes the entries, the continuation
// references and the final result. An error means the connection could
// not be written to.
func HandleSearchRequest(req *SearchRequest, bindSpec BindSpec, fns map[string]Searcher, messageID int64,
	conn net.Conn, stats *Statistics) error {
	server := bindSpec.Server
	send := func(op ProtocolOp) error {
		return server.send(conn, stats, NewMessage(messageID, op))
	}

	searchResp, err := runSearch(req, bindSpec, fns, conn)
	if err != nil {
		server.Debug.Printf("SearchFn Error %s", err.Error())
		code := uint16(LDAPResultOperationsError)
		var e *Error
		if errors.As(err, &e) {
			code = e.ResultCode
		}
		return send(&SearchResultDone{LDAPResult{ResultCode: code, DiagnosticMessage: err.Error()}})
	}

	sent := 0
	for _, entry := range searchResp.Entries {
		if server.EnforceLDAP {
			if !inScope(entry.DN, req.BaseDN, req.Scope) {
				continue
			}
			keep, resultCode := ApplyFilter(req.Filter, entry)
			if resultCode != LDAPResultSuccess {
				return send(&SearchResultDone{LDAPResult{ResultCode: resultCode, DiagnosticMessage: "could not apply the search filter"}})
			}
			if !keep {
				continue
			}
			if req.SizeLimit > 0 && sent >= req.SizeLimit {
				return send(&SearchResultDone{LDAPResult{ResultCode: LDAPResultSizeLimitExceeded}})
			}
			entry = selectAttributes(entry, req.Attributes, req.TypesOnly)
		}
		if err := send(entry); err != nil {
			return err
		}
		sent++
	}

	if len(searchResp.Referrals) > 0 {
		if err := send(&SearchResultReference{URIs: searchResp.Referrals}); err != nil {
			return err
		}
	}

	done := NewMessage(messageID, &SearchResultDone{LDAPResult{ResultCode: searchResp.ResultCode}}, searchResp.Controls...)
	return server.send(conn, stats, done)
}

func runSearch(req *SearchRequest, bindSpec BindSpec, fns map[string]Searcher, conn net.Conn) (res ServerSearchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = NewError(LDAPResultOperationsError, fmt.Errorf("search panic: %v", r))
		}
	}()
	fn := routeFunc(req.BaseDN, routeNames(fns))
	return fns[fn].Search(bindSpec, req, conn)
}

// inScope reports whether dn lies within the search scope below base.
// DNs are compared without regard to case or spaces after commas.
func inScope(dn, base string, scope int) bool {
	dn, base = normalizeDN(dn), normalizeDN(base)
	switch scope {
	case ScopeBaseObject:
		return dn == base
	case ScopeSingleLevel:
		if base == "" {
			return dn != "" && !strings.Contains(dn, ",")
		}
		parent, ok := strings.CutSuffix(dn, ","+base)
		return ok && !strings.Contains(parent, ",")
	default:
		return base == "" || dn == base || strings.HasSuffix(dn, ","+base)
	}
}

func normalizeDN(dn string) string {
	parts := strings.Split(dn, ",")
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, ",")
}

// selectAttributes keeps the requested attributes. An empty list or "*"
// selects every attribute and "1.1" selects none.
func selectAttributes(entry *SearchResultEntry, requested []string, typesOnly bool) *SearchResultEntry {
	all := len(requested) == 0
	for _, r := range requested {
		if r == "*" || r == "+" {
			all = true
		}
	}
	out := &SearchResultEntry{DN: entry.DN, Attributes: []Attribute{}}
	for _, a := range entry.Attributes {
		if !all && !attributeRequested(a.Type, requested) {
			continue
		}
		if typesOnly {
			out.Attributes = append(out.Attributes, NewAttribute(a.Type))
		} else {
			out.Attributes = append(out.Attributes, NewAttribute(a.Type, a.Vals...))
		}
	}
	return out
}

func attributeRequested(desc string, requested []string) bool {
	for _, r := range requested {
		if attributeMatches(desc, r) {
			return true
		}
	}
	return false
}
