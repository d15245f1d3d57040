package scene

import (
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl32"
)

// ID identifies a RenderObject.
type ID uint32

// IDAllocator hands out object IDs in increasing order starting at zero.
// The zero value is ready to use.
type IDAllocator struct {
	next ID
}

// Next returns a fresh ID.
func (a *IDAllocator) Next() ID {
	id := a.next
	a.next++
	return id
}

// RenderObject is a drawable instance: a shared model plus a color and a
// world transform.
type RenderObject struct {
	id        ID
	model     *Model
	Color     mgl32.Vec3
	Transform Transform
}

// NewRenderObject creates an object with no model and an identity transform.
func NewRenderObject(ids *IDAllocator) *RenderObject {
	return &RenderObject{
		id:        ids.Next(),
		Color:     mgl32.Vec3{1, 1, 1},
		Transform: NewTransform(),
	}
}

func (o *RenderObject) ID() ID        { return o.id }
func (o *RenderObject) Model() *Model { return o.model }

// SetModel retains m and releases the previously held model, if any.
// Passing nil detaches the object from its model.
func (o *RenderObject) SetModel(m *Model) {
	if m != nil {
		m.Retain()
	}
	if o.model != nil {
		o.model.Release()
	}
	o.model = m
}

// ObjectSet owns a collection of render objects keyed by ID.
type ObjectSet struct {
	objects map[ID]*RenderObject
	order   []ID
}

func NewObjectSet() *ObjectSet {
	return &ObjectSet{objects: make(map[ID]*RenderObject)}
}

// Add inserts o. Adding two objects with the same ID is a programming error.
func (s *ObjectSet) Add(o *RenderObject) {
	if _, exists := s.objects[o.id]; exists {
		panic(fmt.Sprintf("scene: object %d added twice", o.id))
	}
	s.objects[o.id] = o
	pos, _ := slices.BinarySearch(s.order, o.id)
	s.order = slices.Insert(s.order, pos, o.id)
}

func (s *ObjectSet) Get(id ID) (*RenderObject, bool) {
	o, ok := s.objects[id]
	return o, ok
}

// Remove drops the object and releases its model reference. It reports
// whether the object was present. If this drops the model's last
// reference its buffers are freed at once, so the device must be idle.
func (s *ObjectSet) Remove(id ID) bool {
	o, ok := s.objects[id]
	if !ok {
		return false
	}
	o.SetModel(nil)
	delete(s.objects, id)
	if pos, found := slices.BinarySearch(s.order, id); found {
		s.order = slices.Delete(s.order, pos, pos+1)
	}
	return true
}

func (s *ObjectSet) Len() int { return len(s.objects) }

// Each visits objects in ascending ID order.
func (s *ObjectSet) Each(fn func(*RenderObject)) {
	for _, id := range s.order {
		fn(s.objects[id])
	}
}

// Clear removes every object, releasing their models. Like Remove it
// requires an idle device.
func (s *ObjectSet) Clear() {
	for _, id := range s.order {
		s.objects[id].SetModel(nil)
	}
	clear(s.objects)
	s.order = s.order[:0]
}
