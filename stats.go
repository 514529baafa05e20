package ldap

import (
	"strconv"
	"sync/atomic"
)

type counter int

const (
	ctrConnectionsEstablished counter = iota
	ctrConnectionsClosed
	ctrBytesRead
	ctrBytesWritten
	ctrMessagesRead
	ctrMessagesWritten
	ctrOperationsAbandoned
	ctrOperationsInitiated
	ctrOperationsCompleted
	ctrAbandonRequests
	ctrAddRequests
	ctrAddResponses
	ctrBindRequests
	ctrBindResponses
	ctrCompareRequests
	ctrCompareResponses
	ctrDeleteRequests
	ctrDeleteResponses
	ctrExtendedRequests
	ctrExtendedResponses
	ctrModifyRequests
	ctrModifyResponses
	ctrModifyDNRequests
	ctrModifyDNResponses
	ctrSearchRequests
	ctrSearchResultEntries
	ctrSearchResultReferences
	ctrSearchResultsDone
	ctrUnbindRequests
	numCounters
)

// counterNames are the monitor attribute names, in reporting order.
var counterNames = [numCounters]string{
	ctrConnectionsEstablished: "connectionsEstablished",
	ctrConnectionsClosed:      "connectionsClosed",
	ctrBytesRead:              "bytesRead",
	ctrBytesWritten:           "bytesWritten",
	ctrMessagesRead:           "ldapMessagesRead",
	ctrMessagesWritten:        "ldapMessagesWritten",
	ctrOperationsAbandoned:    "operationsAbandoned",
	ctrOperationsInitiated:    "operationsInitiated",
	ctrOperationsCompleted:    "operationsCompleted",
	ctrAbandonRequests:        "abandonRequests",
	ctrAddRequests:            "addRequests",
	ctrAddResponses:           "addResponses",
	ctrBindRequests:           "bindRequests",
	ctrBindResponses:          "bindResponses",
	ctrCompareRequests:        "compareRequests",
	ctrCompareResponses:       "compareResponses",
	ctrDeleteRequests:         "deleteRequests",
	ctrDeleteResponses:        "deleteResponses",
	ctrExtendedRequests:       "extendedRequests",
	ctrExtendedResponses:      "extendedResponses",
	ctrModifyRequests:         "modifyRequests",
	ctrModifyResponses:        "modifyResponses",
	ctrModifyDNRequests:       "modifyDNRequests",
	ctrModifyDNResponses:      "modifyDNResponses",
	ctrSearchRequests:         "searchRequests",
	ctrSearchResultEntries:    "searchResultEntries",
	ctrSearchResultReferences: "searchResultReferences",
	ctrSearchResultsDone:      "searchResultsDone",
	ctrUnbindRequests:         "unbindRequests",
}

// requestCounters maps request tags to the counter bumped when one is read.
var requestCounters = map[uint8]counter{
	ApplicationAbandonRequest:  ctrAbandonRequests,
	ApplicationAddRequest:      ctrAddRequests,
	ApplicationBindRequest:     ctrBindRequests,
	ApplicationCompareRequest:  ctrCompareRequests,
	ApplicationDelRequest:      ctrDeleteRequests,
	ApplicationExtendedRequest: ctrExtendedRequests,
	ApplicationModifyRequest:   ctrModifyRequests,
	ApplicationModifyDNRequest: ctrModifyDNRequests,
	ApplicationSearchRequest:   ctrSearchRequests,
	ApplicationUnbindRequest:   ctrUnbindRequests,
}

// Statistics counts the traffic of a connection or a listener. Every
// counter is updated atomically and every update is applied to the parent
// as well, so per-connection statistics roll up into their listener's.
//
// All methods are safe for concurrent use, and a nil *Statistics ignores
// updates.
type Statistics struct {
	name     string
	parent   *Statistics
	counters [numCounters]atomic.Int64
}

// NewStatistics returns zeroed statistics. parent may be nil.
func NewStatistics(name string, parent *Statistics) *Statistics {
	return &Statistics{name: name, parent: parent}
}

func (s *Statistics) Name() string {
	if s == nil {
		return ""
	}
	return s.name
}

func (s *Statistics) Parent() *Statistics {
	if s == nil {
		return nil
	}
	return s.parent
}

func (s *Statistics) add(c counter, n int64) {
	for ; s != nil; s = s.parent {
		s.counters[c].Add(n)
	}
}

func (s *Statistics) RecordConnect() {
	s.add(ctrConnectionsEstablished, 1)
}

func (s *Statistics) RecordDisconnect() {
	s.add(ctrConnectionsClosed, 1)
}

func (s *Statistics) RecordBytesRead(n int) {
	s.add(ctrBytesRead, int64(n))
}

// RecordAbandonedOperation counts an operation dropped without a response.
func (s *Statistics) RecordAbandonedOperation() {
	s.add(ctrOperationsAbandoned, 1)
}

// RecordMessageRead counts a decoded request. Every message read initiates
// an operation.
func (s *Statistics) RecordMessageRead(m *Message) {
	s.add(ctrMessagesRead, 1)
	s.add(ctrOperationsInitiated, 1)
	if m == nil || m.ProtocolOp == nil {
		return
	}
	if c, ok := requestCounters[uint8(m.ProtocolOp.Tag())]; ok {
		s.add(c, 1)
	}
}

// RecordMessageWritten counts a response of n bytes. Responses that end an
// operation count as completed, except extended responses without a
// positive message ID, which are unsolicited notifications.
func (s *Statistics) RecordMessageWritten(m *Message, n int) {
	s.add(ctrBytesWritten, int64(n))
	s.add(ctrMessagesWritten, 1)
	if m == nil || m.ProtocolOp == nil {
		return
	}

	completed := true
	var c counter
	switch m.ProtocolOp.Tag() {
	case ApplicationAddResponse:
		c = ctrAddResponses
	case ApplicationBindResponse:
		c = ctrBindResponses
	case ApplicationCompareResponse:
		c = ctrCompareResponses
	case ApplicationDelResponse:
		c = ctrDeleteResponses
	case ApplicationExtendedResponse:
		c = ctrExtendedResponses
		completed = m.MessageID > 0
	case ApplicationModifyResponse:
		c = ctrModifyResponses
	case ApplicationModifyDNResponse:
		c = ctrModifyDNResponses
	case ApplicationSearchResultEntry:
		c, completed = ctrSearchResultEntries, false
	case ApplicationSearchResultReference:
		c, completed = ctrSearchResultReferences, false
	case ApplicationSearchResultDone:
		c = ctrSearchResultsDone
	default:
		return
	}
	s.add(c, 1)
	if completed {
		s.add(ctrOperationsCompleted, 1)
	}
}

// Clear resets every counter of s to zero. The parent is left alone.
// Updates racing with Clear may be lost.
func (s *Statistics) Clear() {
	if s == nil {
		return
	}
	for i := range s.counters {
		s.counters[i].Store(0)
	}
}

// Snapshot copies the current counter values. Each value is read
// atomically; the snapshot as a whole is not.
func (s *Statistics) Snapshot() StatsSnapshot {
	var snap StatsSnapshot
	if s == nil {
		return snap
	}
	snap.Name = s.name
	for i := range s.counters {
		snap.values[i] = s.counters[i].Load()
	}
	return snap
}

// StatsSnapshot is an immutable copy of a Statistics.
type StatsSnapshot struct {
	Name   string
	values [numCounters]int64
}

func (s StatsSnapshot) ConnectionsEstablished() int64 { return s.values[ctrConnectionsEstablished] }
func (s StatsSnapshot) ConnectionsClosed() int64      { return s.values[ctrConnectionsClosed] }
func (s StatsSnapshot) BytesRead() int64              { return s.values[ctrBytesRead] }
func (s StatsSnapshot) BytesWritten() int64           { return s.values[ctrBytesWritten] }
func (s StatsSnapshot) MessagesRead() int64           { return s.values[ctrMessagesRead] }
func (s StatsSnapshot) MessagesWritten() int64        { return s.values[ctrMessagesWritten] }
func (s StatsSnapshot) OperationsAbandoned() int64    { return s.values[ctrOperationsAbandoned] }
func (s StatsSnapshot) OperationsInitiated() int64    { return s.values[ctrOperationsInitiated] }
func (s StatsSnapshot) OperationsCompleted() int64    { return s.values[ctrOperationsCompleted] }

// Per operation counters.
func (s StatsSnapshot) AbandonRequests() int64        { return s.values[ctrAbandonRequests] }
func (s StatsSnapshot) AddRequests() int64            { return s.values[ctrAddRequests] }
func (s StatsSnapshot) AddResponses() int64           { return s.values[ctrAddResponses] }
func (s StatsSnapshot) BindRequests() int64           { return s.values[ctrBindRequests] }
func (s StatsSnapshot) BindResponses() int64          { return s.values[ctrBindResponses] }
func (s StatsSnapshot) CompareRequests() int64        { return s.values[ctrCompareRequests] }
func (s StatsSnapshot) CompareResponses() int64       { return s.values[ctrCompareResponses] }
func (s StatsSnapshot) DeleteRequests() int64         { return s.values[ctrDeleteRequests] }
func (s StatsSnapshot) DeleteResponses() int64        { return s.values[ctrDeleteResponses] }
func (s StatsSnapshot) ExtendedRequests() int64       { return s.values[ctrExtendedRequests] }
func (s StatsSnapshot) ExtendedResponses() int64      { return s.values[ctrExtendedResponses] }
func (s StatsSnapshot) ModifyRequests() int64         { return s.values[ctrModifyRequests] }
func (s StatsSnapshot) ModifyResponses() int64        { return s.values[ctrModifyResponses] }
func (s StatsSnapshot) ModifyDNRequests() int64       { return s.values[ctrModifyDNRequests] }
func (s StatsSnapshot) ModifyDNResponses() int64      { return s.values[ctrModifyDNResponses] }
func (s StatsSnapshot) SearchRequests() int64         { return s.values[ctrSearchRequests] }
func (s StatsSnapshot) SearchResultEntries() int64    { return s.values[ctrSearchResultEntries] }
func (s StatsSnapshot) SearchResultReferences() int64 { return s.values[ctrSearchResultReferences] }
func (s StatsSnapshot) SearchResultsDone() int64      { return s.values[ctrSearchResultsDone] }
func (s StatsSnapshot) UnbindRequests() int64         { return s.values[ctrUnbindRequests] }

// Value returns the counter with the given monitor attribute name.
func (s StatsSnapshot) Value(name string) (int64, bool) {
	for i, n := range counterNames {
		if n == name {
			return s.values[i], true
		}
	}
	return 0, false
}

// Attributes renders the snapshot as monitor entry attributes, one
// single-valued attribute per counter.
func (s StatsSnapshot) Attributes() []Attribute {
	attrs := make([]Attribute, numCounters)
	for i, n := range counterNames {
		attrs[i] = NewAttribute(n, strconv.FormatInt(s.values[i], 10))
	}
	return attrs
}

// Each calls fn for every counter in reporting order.
func (s StatsSnapshot) Each(fn func(name string, value int64)) {
	for i, n := range counterNames {
		fn(n, s.values[i])
	}
}
