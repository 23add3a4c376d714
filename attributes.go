package rowmutation

// attributes.go implements the out-of-band metadata bag carried by a mutation.

import (
	"sort"
)

// Reserved attribute names.
const (
	// AttrOriginIDs holds the encoded replication-origin identifiers.
	// External code must not repurpose this key.
	AttrOriginIDs = "_cs.id"

	// AttrOperationID holds a caller-chosen identifier for the operation,
	// reported by DetailedSummary.
	AttrOperationID = "_operation.attributes.id"
)

// Attributes is a string-keyed bag of opaque byte values.
// The zero value is empty and ready to use. Attributes is not safe for
// concurrent use.
type Attributes struct {
	m map[string][]byte
}

// Get returns the value stored under name, or nil.
func (a *Attributes) Get(name string) []byte {
	return a.m[name]
}

// Set stores value under name. A nil value removes the attribute.
// The bag keeps value as given.
func (a *Attributes) Set(name string, value []byte) {
	if value == nil {
		delete(a.m, name)
		return
	}
	if a.m == nil {
		a.m = make(map[string][]byte)
	}
	a.m[name] = value
}

// Len returns the number of attributes.
func (a *Attributes) Len() int {
	return len(a.m)
}

// Names returns the attribute names in ascending order.
func (a *Attributes) Names() []string {
	names := make([]string, 0, len(a.m))
	for k := range a.m {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// ID returns the operation identifier attribute, or "" if unset.
func (a *Attributes) ID() string {
	return string(a.m[AttrOperationID])
}

// SetID sets the operation identifier attribute. An empty id removes it.
func (a *Attributes) SetID(id string) {
	if id == "" {
		a.Set(AttrOperationID, nil)
		return
	}
	a.Set(AttrOperationID, []byte(id))
}

// Footprint estimates the bag's working memory: one map entry per
// attribute plus each name string and value array.
func (a *Attributes) Footprint(m CostModel) int64 {
	if len(a.m) == 0 {
		return 0
	}
	size := m.MapEntries(len(a.m))
	for k, v := range a.m {
		size += m.String(len(k))
		size += m.ByteArray(len(v))
	}
	return size
}
