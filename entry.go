package ldap

import (
	"strings"
)

// AttributeUsage says whether an attribute type holds user data or is
// maintained by the directory.
type AttributeUsage int

const (
	UserApplications AttributeUsage = iota
	DirectoryOperation
	DistributedOperation
	DSAOperation
)

func (u AttributeUsage) String() string {
	switch u {
	case UserApplications:
		return "userApplications"
	case DirectoryOperation:
		return "directoryOperation"
	case DistributedOperation:
		return "distributedOperation"
	case DSAOperation:
		return "dSAOperation"
	}
	return "unknown"
}

// IsOperational reports whether the usage marks an operational attribute.
func (u AttributeUsage) IsOperational() bool {
	return u != UserApplications
}

// AttributeType is the part of an attribute type definition needed to sort
// entry attributes into user and operational ones.
type AttributeType struct {
	OID   string
	Name  string
	Names []string
	Usage AttributeUsage
}

// IsObjectClass reports whether the type is the objectClass attribute.
func (at *AttributeType) IsObjectClass() bool {
	if strings.EqualFold(at.Name, objectClassAttributeLower) || at.OID == "2.5.4.0" {
		return true
	}
	for _, n := range at.Names {
		if strings.EqualFold(n, objectClassAttributeLower) {
			return true
		}
	}
	return false
}

type ObjectClass struct {
	OID  string
	Name string
}

// Schema resolves names to definitions. Both lookups always return a
// definition: unknown names get a default one.
type Schema interface {
	AttributeType(name string) *AttributeType
	ObjectClass(name string) *ObjectClass
}

type memorySchema struct {
	attrs   map[string]*AttributeType
	classes map[string]*ObjectClass
}

// NewSchema returns an in-memory schema holding the given definitions.
// Lookups are case insensitive and match any name or the OID.
func NewSchema(attrs []*AttributeType, classes []*ObjectClass) Schema {
	s := &memorySchema{
		attrs:   make(map[string]*AttributeType),
		classes: make(map[string]*ObjectClass),
	}
	for _, at := range attrs {
		s.attrs[strings.ToLower(at.Name)] = at
		for _, n := range at.Names {
			s.attrs[strings.ToLower(n)] = at
		}
		if at.OID != "" {
			s.attrs[at.OID] = at
		}
	}
	for _, oc := range classes {
		s.classes[strings.ToLower(oc.Name)] = oc
		if oc.OID != "" {
			s.classes[oc.OID] = oc
		}
	}
	return s
}

func (s *memorySchema) AttributeType(name string) *AttributeType {
	if at, ok := s.attrs[strings.ToLower(name)]; ok {
		return at
	}
	return defaultAttributeType(name)
}

func (s *memorySchema) ObjectClass(name string) *ObjectClass {
	if oc, ok := s.classes[strings.ToLower(name)]; ok {
		return oc
	}
	return &ObjectClass{OID: strings.ToLower(name) + "-oid", Name: name}
}

func defaultAttributeType(name string) *AttributeType {
	return &AttributeType{
		OID:   strings.ToLower(name) + "-oid",
		Name:  name,
		Names: []string{name},
		Usage: UserApplications,
	}
}

// EntryAttribute is one attribute of an Entry. Name is the base type as it
// appeared in the search result, Options the description options in their
// original order.
type EntryAttribute struct {
	Type    *AttributeType
	Name    string
	Options []string
	Vals    []string
}

// Description returns the attribute description, "name;opt1;opt2".
func (a *EntryAttribute) Description() string {
	if len(a.Options) == 0 {
		return a.Name
	}
	return a.Name + ";" + strings.Join(a.Options, ";")
}

func (a *EntryAttribute) hasOptions(options []string) bool {
	if len(a.Options) != len(options) {
		return false
	}
	for _, o := range options {
		found := false
		for _, mine := range a.Options {
			if strings.EqualFold(o, mine) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (a *EntryAttribute) addValues(vals []string) {
	for _, v := range vals {
		if !containsString(a.Vals, v) {
			a.Vals = append(a.Vals, v)
		}
	}
}

// EntryObjectClass pairs a resolved object class with the value it came from.
type EntryObjectClass struct {
	Class *ObjectClass
	Value string
}

// Entry is a search result entry resolved against a schema.
type Entry struct {
	DN string

	// ObjectClassAttribute is the description the object classes were
	// received under, "objectClass" when none was.
	ObjectClassAttribute  string
	ObjectClasses         []EntryObjectClass
	UserAttributes        []*EntryAttribute
	OperationalAttributes []*EntryAttribute
}

// ObjectClassNames returns the object class values of the entry.
func (e *Entry) ObjectClassNames() []string {
	names := make([]string, len(e.ObjectClasses))
	for i, oc := range e.ObjectClasses {
		names[i] = oc.Value
	}
	return names
}

// Attribute returns the attribute with the given base type and no options,
// or nil.
func (e *Entry) Attribute(name string) *EntryAttribute {
	for _, bucket := range [][]*EntryAttribute{e.UserAttributes, e.OperationalAttributes} {
		for _, a := range bucket {
			if len(a.Options) == 0 && strings.EqualFold(a.Name, name) {
				return a
			}
		}
	}
	return nil
}

func (e *Entry) addObjectClasses(s Schema, vals []string) {
	for _, v := range vals {
		dup := false
		for _, oc := range e.ObjectClasses {
			if strings.EqualFold(oc.Value, v) {
				dup = true
				break
			}
		}
		if !dup {
			e.ObjectClasses = append(e.ObjectClasses, EntryObjectClass{Class: s.ObjectClass(v), Value: v})
		}
	}
}

// parseAttributeDescription splits "type;opt1;opt2" into the base type and
// its options.
func parseAttributeDescription(desc string) (string, []string, error) {
	parts := strings.Split(desc, ";")
	if parts[0] == "" {
		return "", nil, protocolError(DiagSearchEntryInvalidAttributeDescription, "invalid attribute description %q", desc)
	}
	options := make([]string, 0, len(parts)-1)
	for _, o := range parts[1:] {
		if o == "" {
			return "", nil, protocolError(DiagSearchEntryInvalidAttributeDescription, "empty option in attribute description %q", desc)
		}
		options = append(options, o)
	}
	return parts[0], options, nil
}

// ToEntry resolves the entry's attributes against s. Object class values
// are collected into ObjectClasses. Every other attribute goes to the user
// or operational bucket according to its type's usage, and attributes of
// the same type with the same set of options are merged into one, dropping
// duplicate values.
func (e *SearchResultEntry) ToEntry(s Schema) (*Entry, error) {
	entry := &Entry{
		DN:                    e.DN,
		ObjectClassAttribute:  "objectClass",
		ObjectClasses:         []EntryObjectClass{},
		UserAttributes:        []*EntryAttribute{},
		OperationalAttributes: []*EntryAttribute{},
	}
	seenObjectClass := false
	for _, a := range e.Attributes {
		name, options, err := parseAttributeDescription(a.Type)
		if err != nil {
			return nil, err
		}
		at := s.AttributeType(name)
		if at.IsObjectClass() {
			if !seenObjectClass {
				entry.ObjectClassAttribute = a.Type
				seenObjectClass = true
			}
			entry.addObjectClasses(s, a.Vals)
			continue
		}

		bucket := &entry.UserAttributes
		if at.Usage.IsOperational() {
			bucket = &entry.OperationalAttributes
		}
		merged := false
		for _, existing := range *bucket {
			if existing.Type.OID == at.OID && existing.hasOptions(options) {
				existing.addValues(a.Vals)
				merged = true
				break
			}
		}
		if !merged {
			ea := &EntryAttribute{Type: at, Name: name, Options: options, Vals: []string{}}
			ea.addValues(a.Vals)
			*bucket = append(*bucket, ea)
		}
	}
	return entry, nil
}

// ToSearchResultEntry converts e back to its protocol form: the object
// class attribute first, then user attributes, then operational ones.
func (e *Entry) ToSearchResultEntry() *SearchResultEntry {
	r := &SearchResultEntry{DN: e.DN, Attributes: []Attribute{}}
	if len(e.ObjectClasses) > 0 {
		name := e.ObjectClassAttribute
		if name == "" {
			name = "objectClass"
		}
		r.Attributes = append(r.Attributes, NewAttribute(name, e.ObjectClassNames()...))
	}
	for _, bucket := range [][]*EntryAttribute{e.UserAttributes, e.OperationalAttributes} {
		for _, a := range bucket {
			r.Attributes = append(r.Attributes, NewAttribute(a.Description(), a.Vals...))
		}
	}
	return r
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
