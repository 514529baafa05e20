package ldap

import (
	"fmt"
	"strings"

	ber "github.com/go-asn1-ber/asn1-ber"
)

// ModifyOperationMap contains human readable names of the change operations
var ModifyOperationMap = map[int64]string{
	AddAttribute:       "add",
	DeleteAttribute:    "delete",
	ReplaceAttribute:   "replace",
	IncrementAttribute: "increment",
}

// Change for a ModifyRequest as defined in https://tools.ietf.org/html/rfc4511
//
//	change ::= SEQUENCE {
//	     operation       ENUMERATED {
//	          add     (0),
//	          delete  (1),
//	          replace (2),
//	          ...  },
//	     modification    PartialAttribute }
type Change struct {
	// Operation is the type of change to be made
	Operation int64
	// Modification is the attribute to be modified
	Modification Attribute
}

func (c *Change) encode() *ber.Packet {
	return encodeSequence("Change",
		encodeEnumerated(c.Operation, "Operation"),
		c.Modification.encode())
}

// ModifyRequest as defined in https://tools.ietf.org/html/rfc4511
//
//	ModifyRequest ::= [APPLICATION 6] SEQUENCE {
//	     object          LDAPDN,
//	     changes         SEQUENCE OF change SEQUENCE { ... } }
type ModifyRequest struct {
	// DN is the distinguishedName of the directory entry to modify
	DN string
	// Changes contain the attributes to modify
	Changes []Change
}

// NewModifyRequest creates a modify request for the given DN
func NewModifyRequest(dn string) *ModifyRequest {
	return &ModifyRequest{DN: dn, Changes: []Change{}}
}

// Add appends the given attribute to the list of changes to be made
func (req *ModifyRequest) Add(attrType string, attrVals []string) {
	req.appendChange(AddAttribute, attrType, attrVals)
}

// Delete appends the given attribute to the list of changes to be made
func (req *ModifyRequest) Delete(attrType string, attrVals []string) {
	req.appendChange(DeleteAttribute, attrType, attrVals)
}

// Replace appends the given attribute to the list of changes to be made
func (req *ModifyRequest) Replace(attrType string, attrVals []string) {
	req.appendChange(ReplaceAttribute, attrType, attrVals)
}

// Increment appends the given attribute to the list of changes to be made
func (req *ModifyRequest) Increment(attrType string, attrVal string) {
	req.appendChange(IncrementAttribute, attrType, []string{attrVal})
}

func (req *ModifyRequest) appendChange(operation int64, attrType string, attrVals []string) {
	req.Changes = append(req.Changes, Change{operation, NewAttribute(attrType, attrVals...)})
}

func (*ModifyRequest) Tag() ber.Tag     { return ApplicationModifyRequest }
func (req *ModifyRequest) Name() string { return opName(req) }

func (req *ModifyRequest) Encode() *ber.Packet {
	changes := encodeSequence("Changes")
	for i := range req.Changes {
		changes.AppendChild(req.Changes[i].encode())
	}
	return encodeConstructed(ber.ClassApplication, ApplicationModifyRequest, ApplicationMap[ApplicationModifyRequest],
		encodeString(req.DN, "DN"),
		changes)
}

func (req *ModifyRequest) String() string {
	parts := make([]string, len(req.Changes))
	for i, c := range req.Changes {
		parts[i] = ModifyOperationMap[c.Operation] + " " + c.Modification.String()
	}
	return fmt.Sprintf("ModifyRequest(dn=%s, mods={%s})", req.DN, strings.Join(parts, ", "))
}

func decodeModifyRequest(packet *ber.Packet) (*ModifyRequest, error) {
	if err := expectConstructed(packet); err != nil {
		return nil, wrapError(DiagModifyRequestDecodeSequence, err, "cannot decode the modify request as a sequence")
	}
	if n := len(packet.Children); n != 2 {
		return nil, protocolError(DiagModifyRequestDecodeInvalidElementCount, "modify request holds %d elements, expected 2", n)
	}
	dn, err := decodeString(packet.Children[0])
	if err != nil {
		return nil, wrapError(DiagModifyRequestDecodeDN, err, "cannot decode the entry DN")
	}
	changes := packet.Children[1]
	if err := expectConstructed(changes); err != nil {
		return nil, wrapError(DiagModifyRequestDecodeChanges, err, "cannot decode the changes as a sequence")
	}
	req := &ModifyRequest{DN: dn, Changes: make([]Change, 0, len(changes.Children))}
	for _, child := range changes.Children {
		c, err := decodeChange(child)
		if err != nil {
			return nil, wrapError(DiagModifyRequestDecodeChanges, err, "cannot decode a change to %s", dn)
		}
		req.Changes = append(req.Changes, c)
	}
	return req, nil
}

func decodeChange(packet *ber.Packet) (Change, error) {
	if err := expectConstructed(packet); err != nil {
		return Change{}, wrapError(DiagModificationDecodeSequence, err, "cannot decode the change as a sequence")
	}
	if n := len(packet.Children); n != 2 {
		return Change{}, protocolError(DiagModificationDecodeInvalidElementCount, "change holds %d elements, expected 2", n)
	}
	op, err := decodeEnumerated(packet.Children[0])
	if err != nil {
		return Change{}, wrapError(DiagModificationDecodeType, err, "cannot decode the change operation")
	}
	if _, ok := ModifyOperationMap[op]; !ok {
		return Change{}, protocolError(DiagModificationDecodeType, "unknown change operation %d", op)
	}
	attr, err := decodeAttribute(packet.Children[1])
	if err != nil {
		return Change{}, wrapError(DiagModificationDecodeAttribute, err, "cannot decode the modified attribute")
	}
	return Change{Operation: op, Modification: attr}, nil
}
