package scene

import (
	"fmt"
	"sort"
	"sync"

	mdwerror "github.com/msto63/scenebridge/foundation/core/error"
	"github.com/msto63/scenebridge/internal/bridge/coords"
)

// Context is the host surface the bridge operations work against. It
// owns the object table and the selection; nothing else mutates them.
type Context interface {
	// Find returns the live object whose ID equals id
	Find(id string) (*Object, bool)
	// Exists reports whether a live object holds id
	Exists(id string) bool
	// Objects returns all live objects ordered by ID
	Objects() []*Object

	SelectNone()
	Select(obj *Object)
	Selection() []*Object
	// DeleteSelected destroys the selected objects and returns how many went away
	DeleteSelected() int
	// DuplicateSelected clones the selection; the clones become the new selection
	DuplicateSelected() []*Object

	// Asset looks up a spawnable asset by path
	Asset(path string) (Asset, bool)
	// Spawn creates an object from an asset. The requested id is a hint
	// the host may ignore.
	Spawn(asset Asset, id string) (*Object, error)

	// Rename changes the ID; with test set it only validates
	Rename(obj *Object, id string, test bool) bool
	SetLabel(obj *Object, label string)
	SetTransform(obj *Object, t coords.Transform)

	// Attach parents child under parent, replacing any previous link
	Attach(child, parent *Object) error
	// Detach removes the parent link; it reports whether there was one
	Detach(child *Object) bool
}

// Scene is the in-memory host implementation of Context
type Scene struct {
	mu        sync.RWMutex
	objects   map[string]*Object
	selection []*Object
	catalog   *Catalog
	counters  map[string]int
}

// New creates an empty scene spawning from catalog
func New(catalog *Catalog) *Scene {
	if catalog == nil {
		catalog = DefaultCatalog()
	}
	return &Scene{
		objects:  make(map[string]*Object),
		catalog:  catalog,
		counters: make(map[string]int),
	}
}

// SetCatalog swaps the asset catalog
func (s *Scene) SetCatalog(catalog *Catalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = catalog
}

// Len returns the number of live objects
func (s *Scene) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Find implements Context
func (s *Scene) Find(id string) (*Object, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[id]
	return obj, ok
}

// Exists implements Context
func (s *Scene) Exists(id string) bool {
	_, ok := s.Find(id)
	return ok
}

// Objects implements Context
func (s *Scene) Objects() []*Object {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Object, 0, len(s.objects))
	for _, obj := range s.objects {
		out = append(out, obj)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

// SelectNone implements Context
func (s *Scene) SelectNone() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selection = nil
}

// Select implements Context
func (s *Scene) Select(obj *Object) {
	if obj == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.objects[obj.id] != obj {
		return
	}
	for _, sel := range s.selection {
		if sel == obj {
			return
		}
	}
	s.selection = append(s.selection, obj)
}

// Selection implements Context
func (s *Scene) Selection() []*Object {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*Object, len(s.selection))
	copy(out, s.selection)
	return out
}

// DeleteSelected implements Context. Children of a deleted object are
// detached and stay in the scene.
func (s *Scene) DeleteSelected() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for _, obj := range s.selection {
		if s.objects[obj.id] != obj {
			continue
		}
		delete(s.objects, obj.id)
		obj.parent = nil
		deleted++
	}
	for _, obj := range s.objects {
		if obj.parent != nil && s.objects[obj.parent.id] != obj.parent {
			obj.parent = nil
		}
	}
	s.selection = nil
	return deleted
}

// DuplicateSelected implements Context. Clones get a host-generated ID
// and copy the source label, so label and ID usually disagree.
func (s *Scene) DuplicateSelected() []*Object {
	s.mu.Lock()
	defer s.mu.Unlock()

	clones := make([]*Object, 0, len(s.selection))
	for _, src := range s.selection {
		if s.objects[src.id] != src {
			continue
		}
		clone := &Object{
			id:        s.uniqueFrom(src.id),
			label:     src.label,
			class:     src.class,
			asset:     src.asset,
			transform: src.transform,
			parent:    src.parent,
		}
		s.objects[clone.id] = clone
		clones = append(clones, clone)
	}
	s.selection = clones
	return clones
}

// Asset implements Context
func (s *Scene) Asset(path string) (Asset, bool) {
	s.mu.RLock()
	catalog := s.catalog
	s.mu.RUnlock()
	return catalog.Lookup(path)
}

// Spawn implements Context. A valid, free id is honored; otherwise the
// object gets a class-based name. The new object becomes the selection.
func (s *Scene) Spawn(asset Asset, id string) (*Object, error) {
	if asset.Class == "" {
		return nil, mdwerror.Newf("asset %s has no actor class", asset.Path).
			WithCode(mdwerror.CodeSpawnFailed).
			WithDetail("asset", asset.Path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !ValidID(id) || s.objects[id] != nil {
		id = s.nextClassName(asset.Class)
	}

	obj := &Object{
		id:        id,
		label:     id,
		class:     asset.Class,
		asset:     asset.Path,
		transform: coords.IdentityTransform,
	}
	s.objects[id] = obj
	s.selection = []*Object{obj}
	return obj, nil
}

// Rename implements Context. Names must be valid and not held by another object.
func (s *Scene) Rename(obj *Object, id string, test bool) bool {
	if obj == nil || !ValidID(id) {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.objects[obj.id] != obj {
		return false
	}
	if holder, taken := s.objects[id]; taken && holder != obj {
		return false
	}
	if test {
		return true
	}

	delete(s.objects, obj.id)
	obj.id = id
	s.objects[id] = obj
	return true
}

// SetLabel implements Context
func (s *Scene) SetLabel(obj *Object, label string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj.label = label
}

// SetTransform implements Context
func (s *Scene) SetTransform(obj *Object, t coords.Transform) {
	s.mu.Lock()
	defer s.mu.Unlock()
	obj.transform = t
}

// Attach implements Context. Attaching an object below one of its own
// descendants is refused.
func (s *Scene) Attach(child, parent *Object) error {
	if child == nil || parent == nil {
		return mdwerror.New("attach needs a child and a parent").WithCode(mdwerror.CodeObjectNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for p := parent; p != nil; p = p.parent {
		if p == child {
			return mdwerror.Newf("attaching %s to %s would create a cycle", child.id, parent.id).
				WithCode(mdwerror.CodeHostRefused).
				WithDetail("child", child.id).
				WithDetail("parent", parent.id)
		}
	}
	child.parent = parent
	return nil
}

// Detach implements Context
func (s *Scene) Detach(child *Object) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if child.parent == nil {
		return false
	}
	child.parent = nil
	return true
}

// Children returns the objects directly attached to parent, ordered by
// ID. A nil parent lists the root objects.
func (s *Scene) Children(parent *Object) []*Object {
	var out []*Object
	for _, obj := range s.Objects() {
		if obj.Parent() == parent {
			out = append(out, obj)
		}
	}
	return out
}

// nextClassName returns the next free "<Class>_<n>" name; callers hold the lock
func (s *Scene) nextClassName(class string) string {
	for {
		n := s.counters[class]
		s.counters[class] = n + 1
		name := fmt.Sprintf("%s_%d", class, n)
		if s.objects[name] == nil {
			return name
		}
	}
}

// uniqueFrom increments the numeric suffix of base until the name is
// free; callers hold the lock
func (s *Scene) uniqueFrom(base string) string {
	name := IncrementSuffix(base)
	for s.objects[name] != nil {
		name = IncrementSuffix(name)
	}
	return name
}

// IncrementSuffix adds one to the trailing digit run of name, or appends
// "1" when there is none. The run is incremented as text, so zero padding
// survives (Cube007 -> Cube008) and arbitrarily long runs never overflow.
func IncrementSuffix(name string) string {
	start := len(name)
	for start > 0 && name[start-1] >= '0' && name[start-1] <= '9' {
		start--
	}
	if start == len(name) {
		return name + "1"
	}

	digits := []byte(name[start:])
	for i := len(digits) - 1; i >= 0; i-- {
		if digits[i] != '9' {
			digits[i]++
			return name[:start] + string(digits)
		}
		digits[i] = '0'
	}
	return name[:start] + "1" + string(digits)
}
