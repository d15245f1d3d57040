package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAllocatorIsMonotonic(t *testing.T) {
	var ids IDAllocator
	assert.Equal(t, ID(0), ids.Next())
	assert.Equal(t, ID(1), ids.Next())
	assert.Equal(t, ID(2), ids.Next())
}

func TestObjectSetIteratesInIDOrder(t *testing.T) {
	var ids IDAllocator
	objs := []*RenderObject{NewRenderObject(&ids), NewRenderObject(&ids), NewRenderObject(&ids)}

	set := NewObjectSet()
	set.Add(objs[2])
	set.Add(objs[0])
	set.Add(objs[1])

	var seen []ID
	set.Each(func(o *RenderObject) { seen = append(seen, o.ID()) })
	assert.Equal(t, []ID{0, 1, 2}, seen)

	got, ok := set.Get(1)
	require.True(t, ok)
	assert.Same(t, objs[1], got)

	assert.True(t, set.Remove(1))
	assert.False(t, set.Remove(1))
	_, ok = set.Get(1)
	assert.False(t, ok)

	seen = nil
	set.Each(func(o *RenderObject) { seen = append(seen, o.ID()) })
	assert.Equal(t, []ID{0, 2}, seen)
}

func TestObjectSetDuplicateAddPanics(t *testing.T) {
	var ids IDAllocator
	o := NewRenderObject(&ids)
	set := NewObjectSet()
	set.Add(o)
	assert.Panics(t, func() { set.Add(o) })
}

func TestSetModelSwapsReferences(t *testing.T) {
	alloc := newFakeAllocator()
	first, err := NewModel(alloc, triangle())
	require.NoError(t, err)
	second, err := NewModel(alloc, triangle())
	require.NoError(t, err)

	var ids IDAllocator
	o := NewRenderObject(&ids)
	o.SetModel(first)
	assert.Equal(t, 2, first.Refs())

	o.SetModel(second)
	assert.Equal(t, 1, first.Refs())
	assert.Equal(t, 2, second.Refs())
	assert.Same(t, second, o.Model())

	o.SetModel(nil)
	assert.Equal(t, 1, second.Refs())
	assert.Nil(t, o.Model())
}
