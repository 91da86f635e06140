package delta

import (
	"fmt"
	"sort"

	"github.com/AElfProject/AElf-sub008/model/chain"
)

// GetValueFunc returns the value stored under key, or nil if the key is unset.
type GetValueFunc func(key string) ([]byte, error)

// AlwaysEmptyGetValueFunc reads from an empty state.
func AlwaysEmptyGetValueFunc(string) ([]byte, error) {
	return nil, nil
}

// A View is a read-only view into a key-value state stored in an underlying
// data source. Writes are recorded in a delta that can be used to update the
// underlying data source. A View is not safe for concurrent use.
type View struct {
	delta    *chain.BlockStateSet
	reads    map[string]struct{}
	readFunc GetValueFunc
}

// Snapshot is the record of the interactions of a view with the state.
type Snapshot struct {
	Changes map[string][]byte
	Deletes map[string]bool
	Reads   map[string]struct{}
}

// NewView instantiates a new view with the provided read function.
func NewView(readFunc GetValueFunc) *View {
	return &View{
		delta:    chain.NewBlockStateSet(),
		reads:    make(map[string]struct{}),
		readFunc: readFunc,
	}
}

// NewChild generates a new child view, with the current view as the base.
// Reads of the child do not count as reads of the parent.
func (v *View) NewChild() *View {
	return NewView(v.Peek)
}

// Get returns the value of key. Reads that reach the underlying data source
// are recorded.
func (v *View) Get(key string) ([]byte, error) {
	value, staged := v.delta.Get(key)
	if staged {
		return value, nil
	}
	value, err := v.readFunc(key)
	if err != nil {
		return nil, fmt.Errorf("could not read %q: %w", key, err)
	}
	v.reads[key] = struct{}{}
	return value, nil
}

// Peek reads the value without recording the read, as when used as the read
// function of a child.
func (v *View) Peek(key string) ([]byte, error) {
	value, staged := v.delta.Get(key)
	if staged {
		return value, nil
	}
	return v.readFunc(key)
}

// Set stages a new value for key.
func (v *View) Set(key string, value []byte) {
	v.delta.Set(key, value)
}

// Delete stages the removal of key.
func (v *View) Delete(key string) {
	v.delta.Delete(key)
}

// Delta returns the changes and deletes staged in this view. The returned set
// is owned by the view.
func (v *View) Delta() *chain.BlockStateSet {
	return v.delta
}

// DropDelta discards all staged writes.
func (v *View) DropDelta() {
	v.delta = chain.NewBlockStateSet()
}

// MergeView applies the staged writes of child on top of this view and adds
// the child's reads to this view's reads.
func (v *View) MergeView(child *View) {
	v.delta.Merge(child.delta.Changes, child.delta.Deletes)
	for key := range child.reads {
		v.reads[key] = struct{}{}
	}
}

// Interactions returns a copy of the reads and writes of this view.
func (v *View) Interactions() *Snapshot {
	snapshot := &Snapshot{
		Changes: make(map[string][]byte, len(v.delta.Changes)),
		Deletes: make(map[string]bool, len(v.delta.Deletes)),
		Reads:   make(map[string]struct{}, len(v.reads)),
	}
	for key, value := range v.delta.Changes {
		snapshot.Changes[key] = value
	}
	for key := range v.delta.Deletes {
		snapshot.Deletes[key] = true
	}
	for key := range v.reads {
		snapshot.Reads[key] = struct{}{}
	}
	return snapshot
}

// Writes returns the keys written by the snapshot, sorted.
func (s *Snapshot) Writes() []string {
	keys := make([]string, 0, len(s.Changes)+len(s.Deletes))
	for key := range s.Changes {
		keys = append(keys, key)
	}
	for key := range s.Deletes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// ConflictsWith returns true if one snapshot writes a key the other one read
// or wrote.
func (s *Snapshot) ConflictsWith(other *Snapshot) bool {
	touches := func(snapshot *Snapshot, key string) bool {
		if _, ok := snapshot.Reads[key]; ok {
			return true
		}
		if _, ok := snapshot.Changes[key]; ok {
			return true
		}
		return snapshot.Deletes[key]
	}
	for _, key := range s.Writes() {
		if touches(other, key) {
			return true
		}
	}
	for _, key := range other.Writes() {
		if touches(s, key) {
			return true
		}
	}
	return false
}
