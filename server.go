package ldap

import (
	"crypto/tls"
	"errors"
	"io"
	"net"
	"strings"
	"sync"

	ber "github.com/go-asn1-ber/asn1-ber"
	"github.com/pschou/go-tease"
)

type Binder interface {
	Bind(bind BindSpec, req *BindRequest, conn net.Conn) (uint16, error)
}
type Searcher interface {
	Search(bind BindSpec, req *SearchRequest, conn net.Conn) (ServerSearchResult, error)
}
type Adder interface {
	Add(bind BindSpec, req *AddRequest, conn net.Conn) (uint16, error)
}
type Modifier interface {
	Modify(bind BindSpec, req *ModifyRequest, conn net.Conn) (uint16, error)
}
type Deleter interface {
	Delete(bind BindSpec, req *DelRequest, conn net.Conn) (uint16, error)
}
type ModifyDNr interface {
	ModifyDN(bind BindSpec, req *ModifyDNRequest, conn net.Conn) (uint16, error)
}
type Comparer interface {
	Compare(bind BindSpec, req *CompareRequest, conn net.Conn) (uint16, error)
}

// Abandoner returns nil when it dropped the operation named by req.
type Abandoner interface {
	Abandon(bind BindSpec, req *AbandonRequest, conn net.Conn) error
}
type Extender interface {
	Extended(bind BindSpec, req *ExtendedRequest, conn net.Conn) (uint16, error)
}
type Unbinder interface {
	Unbind(bind BindSpec, conn net.Conn) (uint16, error)
}
type Closer interface {
	Close(bind BindSpec, conn net.Conn) error
}

// Server decodes requests and hands them to the handlers registered for
// the longest matching base DN suffix. The handler registered for "" is
// the fallback.
type Server struct {
	TLSConfig      *tls.Config
	CryptoStartTLS bool // Only supported with LDAPv3
	CryptoNone     bool
	CryptoFullTLS  bool

	EnableV2 bool // Does not support authentication methods
	EnableV3 bool

	BindFns     map[string]Binder
	SearchFns   map[string]Searcher
	AddFns      map[string]Adder
	ModifyFns   map[string]Modifier
	DeleteFns   map[string]Deleter
	ModifyDNFns map[string]ModifyDNr
	CompareFns  map[string]Comparer
	AbandonFns  map[string]Abandoner
	ExtendedFns map[string]Extender
	UnbindFns   map[string]Unbinder
	CloseFns    map[string]Closer
	Quit        chan bool

	// EnforceLDAP makes the server apply scope, filter, size limit and
	// attribute selection to the entries a Searcher returns.
	EnforceLDAP bool

	// MaxPDUSize caps the size of one request in bytes. Zero means
	// DefaultMaxElementSize. A larger request ends the connection.
	MaxPDUSize int

	stats      *Statistics
	statsMutex sync.Mutex
	Debug      debugging
}

type BindSpec struct {
	// Connection methud used for connection (StartTLS, FullTLS, or Plain)
	Method string

	// Bind/bound Designated Name for query
	BindDN string

	// BindAuth TAG
	BindAuth ber.Tag

	// SASL Authentication method
	SASLAuth string

	// Controls attached to the request being handled.
	Controls []*Control

	// UserData, this is a handle which is definable by the user so as to
	// maintain a consistant privilage set after the bind is complete.
	UserData interface{}

	// TLS allows SSL servers and other software to record information about the
	// TLS connection on which the request was received. The server sets the
	// field for TLS-enabled connections before invoking a handler; otherwise it
	// leaves the field nil.
	TLS *tls.ConnectionState

	// RemoteAddr is the "IP:port" address of the client.
	RemoteAddr net.Addr

	// Server configuration
	Server *Server
}

// ServerSearchResult is what a Searcher returns: the entries, the
// continuation references and the final result.
type ServerSearchResult struct {
	Entries    []*SearchResultEntry
	Referrals  []string
	Controls   []*Control
	ResultCode uint16
}

// Create a new server and assign a default handler.  The default has the map
// assignment.  baseDN = "".
func NewServer() *Server {
	s := &Server{
		CryptoStartTLS: false,
		CryptoNone:     true,
		CryptoFullTLS:  false,
		EnableV2:       true,
		EnableV3:       true,
	}
	s.Quit = make(chan bool)

	d := defaultHandler{}
	s.BindFns = make(map[string]Binder)
	s.SearchFns = make(map[string]Searcher)
	s.AddFns = make(map[string]Adder)
	s.ModifyFns = make(map[string]Modifier)
	s.DeleteFns = make(map[string]Deleter)
	s.ModifyDNFns = make(map[string]ModifyDNr)
	s.CompareFns = make(map[string]Comparer)
	s.AbandonFns = make(map[string]Abandoner)
	s.ExtendedFns = make(map[string]Extender)
	s.UnbindFns = make(map[string]Unbinder)
	s.CloseFns = make(map[string]Closer)
	s.BindFunc("", d)
	s.SearchFunc("", d)
	s.AddFunc("", d)
	s.ModifyFunc("", d)
	s.DeleteFunc("", d)
	s.ModifyDNFunc("", d)
	s.CompareFunc("", d)
	s.AbandonFunc("", d)
	s.ExtendedFunc("", d)
	s.UnbindFunc("", d)
	s.CloseFunc("", d)
	return s
}
func (server *Server) BindFunc(baseDN string, f Binder) {
	server.BindFns[baseDN] = f
}
func (server *Server) SearchFunc(baseDN string, f Searcher) {
	server.SearchFns[baseDN] = f
}
func (server *Server) AddFunc(baseDN string, f Adder) {
	server.AddFns[baseDN] = f
}
func (server *Server) ModifyFunc(baseDN string, f Modifier) {
	server.ModifyFns[baseDN] = f
}
func (server *Server) DeleteFunc(baseDN string, f Deleter) {
	server.DeleteFns[baseDN] = f
}
func (server *Server) ModifyDNFunc(baseDN string, f ModifyDNr) {
	server.ModifyDNFns[baseDN] = f
}
func (server *Server) CompareFunc(baseDN string, f Comparer) {
	server.CompareFns[baseDN] = f
}
func (server *Server) AbandonFunc(baseDN string, f Abandoner) {
	server.AbandonFns[baseDN] = f
}
func (server *Server) ExtendedFunc(baseDN string, f Extender) {
	server.ExtendedFns[baseDN] = f
}
func (server *Server) UnbindFunc(baseDN string, f Unbinder) {
	server.UnbindFns[baseDN] = f
}
func (server *Server) CloseFunc(baseDN string, f Closer) {
	server.CloseFns[baseDN] = f
}
func (server *Server) QuitChannel(quit chan bool) {
	server.Quit = quit
}

// SetStats turns listener statistics on or off. Connections accepted
// while enabled record into a child of the listener statistics.
func (server *Server) SetStats(enable bool) {
	server.statsMutex.Lock()
	defer server.statsMutex.Unlock()
	if enable {
		server.stats = NewStatistics("ldap listener", nil)
	} else {
		server.stats = nil
	}
}

// Stats returns the listener statistics, or nil when disabled.
func (server *Server) Stats() *Statistics {
	server.statsMutex.Lock()
	defer server.statsMutex.Unlock()
	return server.stats
}

// GetStats returns a snapshot of the listener statistics.
func (server *Server) GetStats() StatsSnapshot {
	return server.Stats().Snapshot()
}

func (server *Server) ListenAndServe(listenString string) error {
	ln, err := net.Listen("tcp", listenString)
	if err != nil {
		return err
	}
	return server.Serve(ln)
}

func (server *Server) Serve(ln net.Listener) error {
	newConn := make(chan net.Conn)
	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				if !errors.Is(err, net.ErrClosed) {
					server.Debug.Printf("Error accepting network connection: %s", err.Error())
				}
				break
			}
			newConn <- conn
		}
	}()

listener:
	for {
		select {
		case c := <-newConn:
			go server.handleConnection(c)
		case <-server.Quit:
			ln.Close()
			break listener
		}
	}
	return nil
}

// negotiate sniffs the first bytes of rawConn and sets up plain, full TLS
// or StartTLS transport. It returns nil when no enabled mode matches.
func (server *Server) negotiate(rawConn net.Conn, bindSpec *BindSpec, stats *Statistics) net.Conn {
	teaseConn := tease.NewServer(rawConn)

	// Create a tease buffer and read in some bytes
	initDat := make([]byte, 10)
	if _, err := teaseConn.Read(initDat); err != nil {
		return nil
	}

	// If FullTLS is specified, test the first byte for a TLS handshake
	if server.CryptoFullTLS && initDat[0] == 0x16 {
		teaseConn.Replay() // rewind to the beginning
		teaseConn.Pipe()   // connect pipe

		tlscon := tls.Server(teaseConn, server.TLSConfig)
		if err := tlscon.Handshake(); err != nil {
			server.Debug.Printf("FullTLS handshake error %s", err.Error())
			return nil
		}
		bindSpec.Method = "FullTLS"
		state := tlscon.ConnectionState()
		bindSpec.TLS = &state
		server.Debug.Printf("  Using CryptoFullTLS %s", rawConn.RemoteAddr())
		return tlscon
	}

	if server.CryptoStartTLS && initDat[0] == 0x30 {
		// The first message must be the StartTLS extended request
		teaseConn.Replay()
		msg, n, err := server.readMessage(teaseConn)
		if err == nil {
			if ext, ok := msg.ProtocolOp.(*ExtendedRequest); ok && ext.OID == OIDStartTLS {
				server.Debug.Printf("StartTLS initiating")
				stats.RecordBytesRead(n)
				stats.RecordMessageRead(msg)

				// Connect the connection through the connection teaser
				teaseConn.Pipe()

				resp := &ExtendedResponse{OID: OIDStartTLS}
				resp.DiagnosticMessage = LDAPResultCodeMap[LDAPResultSuccess]
				if err := server.send(teaseConn, stats, NewMessage(msg.MessageID, resp)); err != nil {
					return nil
				}

				tlscon := tls.Server(teaseConn, server.TLSConfig)
				if err := tlscon.Handshake(); err != nil {
					server.Debug.Printf("StartTLS handshake error %s", err.Error())
					return nil
				}
				bindSpec.Method = "StartTLS"
				state := tlscon.ConnectionState()
				bindSpec.TLS = &state
				server.Debug.Printf("  Using CryptoStartTLS %s", rawConn.RemoteAddr())
				return tlscon
			}
		}
	}

	if server.CryptoNone && initDat[0] == 0x30 {
		// Fall back to using basic none crypto
		teaseConn.Replay() // rewind to the beginning
		teaseConn.Pipe()   // connect pipe
		bindSpec.Method = "Plain"
		server.Debug.Printf("  Using CryptoNone %s", rawConn.RemoteAddr())
		return teaseConn
	}
	return nil
}

func (server *Server) handleConnection(rawConn net.Conn) {
	stats := NewStatistics(rawConn.RemoteAddr().String(), server.Stats())
	if stats.Parent() == nil {
		stats = nil
	}
	stats.RecordConnect()
	defer stats.RecordDisconnect()

	bindSpec := BindSpec{
		RemoteAddr: rawConn.RemoteAddr(),
		Server:     server,
	}
	conn := server.negotiate(rawConn, &bindSpec, stats)
	if conn == nil {
		rawConn.Close()
		return
	}

handler:
	for {
		// read incoming LDAP packet
		packet, n, err := ReadElementLimit(conn, server.MaxPDUSize)
		stats.RecordBytesRead(n)
		if err == io.EOF { // Client closed connection
			break
		} else if err != nil {
			server.Debug.Printf("handleConnection ReadElement ERROR: %s", err.Error())
			server.disconnect(conn, stats, LDAPResultProtocolError, err)
			break
		}
		server.Debug.PrintPacket(packet)

		msg, err := DecodeMessage(packet)
		if err != nil {
			server.Debug.Printf("handleConnection DecodeMessage ERROR: %s", err.Error())
			if !server.rejectOperation(conn, stats, packet, err) {
				server.disconnect(conn, stats, LDAPResultProtocolError, err)
				break
			}
			continue
		}
		stats.RecordMessageRead(msg)
		server.Debug.Printf("handling %s", msg)

		reqSpec := bindSpec
		reqSpec.Controls = msg.Controls
		id := msg.MessageID

		var resp ProtocolOp
		switch req := msg.ProtocolOp.(type) {
		default:
			server.Debug.Printf("Unhandled operation: %s [%d]", req.Name(), req.Tag())
			server.disconnect(conn, stats, LDAPResultProtocolError, errors.New("unexpected "+req.Name()))
			break handler

		case *BindRequest:
			ldapResultCode := HandleBindRequest(req, &reqSpec, server.BindFns, conn)
			if ldapResultCode == LDAPResultSuccess {
				bindSpec.BindDN = req.DN
				bindSpec.BindAuth = req.AuthType
				bindSpec.SASLAuth = req.SASLMechanism
			}
			resp = &BindResponse{LDAPResult: resultOf(ldapResultCode)}
		case *SearchRequest:
			if err := HandleSearchRequest(req, reqSpec, server.SearchFns, id, conn, stats); err != nil {
				server.Debug.Printf("handleSearchRequest error %s", err.Error())
				break handler
			}
		case *UnbindRequest:
			HandleUnbindRequest(reqSpec, server.UnbindFns, conn)
			break handler // simply disconnect
		case *ExtendedRequest:
			resp = &ExtendedResponse{LDAPResult: resultOf(HandleExtendedRequest(req, reqSpec, server.ExtendedFns, conn))}
		case *AbandonRequest:
			err := HandleAbandonRequest(req, reqSpec, server.AbandonFns, conn)
			if err == nil {
				stats.RecordAbandonedOperation()
			} else if errors.Is(err, ErrHandlerPanic) {
				// abandon has no response to carry the failure
				break handler
			}
		case *AddRequest:
			resp = &AddResponse{resultOf(HandleAddRequest(req, reqSpec, server.AddFns, conn))}
		case *ModifyRequest:
			resp = &ModifyResponse{resultOf(HandleModifyRequest(req, reqSpec, server.ModifyFns, conn))}
		case *DelRequest:
			resp = &DelResponse{resultOf(HandleDeleteRequest(req, reqSpec, server.DeleteFns, conn))}
		case *ModifyDNRequest:
			resp = &ModifyDNResponse{resultOf(HandleModifyDNRequest(req, reqSpec, server.ModifyDNFns, conn))}
		case *CompareRequest:
			resp = &CompareResponse{resultOf(HandleCompareRequest(req, reqSpec, server.CompareFns, conn))}
		}

		if resp != nil {
			if err := server.send(conn, stats, NewMessage(id, resp)); err != nil {
				break handler
			}
		}
	}

	for _, c := range server.CloseFns {
		c.Close(bindSpec, conn)
	}
}

// rejectOperation answers a message whose envelope decoded but whose
// protocol op did not with a protocolError response of the matching type.
// It reports false when no such response exists.
func (server *Server) rejectOperation(conn net.Conn, stats *Statistics, packet *ber.Packet, cause error) bool {
	if !IsDiagnostic(cause, DiagMessageDecodeProtocolOp) {
		return false
	}
	id, err := decodeInteger(packet.Children[0])
	if err != nil {
		return false
	}
	tag, ok := ResponseTagFor(packet.Children[1].Tag)
	if !ok {
		return false
	}
	message := cause.Error()
	if opErr := errors.Unwrap(cause); opErr != nil {
		message = opErr.Error()
	}
	stats.RecordMessageRead(nil)
	result := LDAPResult{ResultCode: LDAPResultProtocolError, DiagnosticMessage: message}
	return server.send(conn, stats, NewMessage(id, NewResponse(tag, result))) == nil
}

func (server *Server) readMessage(r io.Reader) (*Message, int, error) {
	packet, n, err := ReadElementLimit(r, server.MaxPDUSize)
	if err != nil {
		return nil, n, err
	}
	m, err := DecodeMessage(packet)
	return m, n, err
}

// disconnect sends the unsolicited notice of disconnection.
func (server *Server) disconnect(conn net.Conn, stats *Statistics, resultCode uint16, cause error) {
	server.send(conn, stats, NewMessage(0, NewNoticeOfDisconnection(resultCode, cause.Error())))
}

func (server *Server) send(conn net.Conn, stats *Statistics, m *Message) error {
	n, err := conn.Write(m.Bytes())
	if err != nil {
		server.Debug.Printf("Error Sending Message: %s", err.Error())
		return err
	}
	stats.RecordMessageWritten(m, n)
	return nil
}

func resultOf(ldapResultCode uint16) LDAPResult {
	return LDAPResult{ResultCode: ldapResultCode}
}

// routeFunc picks the registered base DN that is the longest suffix of dn.
func routeFunc(dn string, funcNames []string) string {
	dn = strings.ToLower(dn)
	bestPick := ""
	bestLen := -1
	for _, fn := range funcNames {
		if fn != "" && !strings.HasSuffix(dn, strings.ToLower(fn)) {
			continue
		}
		l := 0
		if fn != "" {
			l = len(strings.Split(fn, ","))
		}
		if l > bestLen {
			bestPick, bestLen = fn, l
		}
	}
	return bestPick
}

func routeNames[T any](fns map[string]T) []string {
	names := make([]string, 0, len(fns))
	for k := range fns {
		names = append(names, k)
	}
	return names
}

type defaultHandler struct {
}

func (h defaultHandler) Bind(bind BindSpec, req *BindRequest, conn net.Conn) (uint16, error) {
	return LDAPResultInvalidCredentials, nil
}
func (h defaultHandler) Search(bind BindSpec, req *SearchRequest, conn net.Conn) (ServerSearchResult, error) {
	return ServerSearchResult{ResultCode: LDAPResultSuccess}, nil
}
func (h defaultHandler) Add(bind BindSpec, req *AddRequest, conn net.Conn) (uint16, error) {
	return LDAPResultInsufficientAccessRights, nil
}
func (h defaultHandler) Modify(bind BindSpec, req *ModifyRequest, conn net.Conn) (uint16, error) {
	return LDAPResultInsufficientAccessRights, nil
}
func (h defaultHandler) Delete(bind BindSpec, req *DelRequest, conn net.Conn) (uint16, error) {
	return LDAPResultInsufficientAccessRights, nil
}
func (h defaultHandler) ModifyDN(bind BindSpec, req *ModifyDNRequest, conn net.Conn) (uint16, error) {
	return LDAPResultInsufficientAccessRights, nil
}
func (h defaultHandler) Compare(bind BindSpec, req *CompareRequest, conn net.Conn) (uint16, error) {
	return LDAPResultInsufficientAccessRights, nil
}
func (h defaultHandler) Abandon(bind BindSpec, req *AbandonRequest, conn net.Conn) error {
	return errors.New("nothing to abandon")
}
func (h defaultHandler) Extended(bind BindSpec, req *ExtendedRequest, conn net.Conn) (uint16, error) {
	return LDAPResultProtocolError, nil
}
func (h defaultHandler) Unbind(bind BindSpec, conn net.Conn) (uint16, error) {
	return LDAPResultSuccess, nil
}
func (h defaultHandler) Close(bind BindSpec, conn net.Conn) error {
	conn.Close()
	return nil
}
