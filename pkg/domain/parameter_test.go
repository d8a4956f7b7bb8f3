package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeParameters(t *testing.T) {
	a := NewItem(ItemSpec{Name: "a"}, nil)
	b := NewItem(ItemSpec{Name: "b"}, nil)

	t.Run("nil sides", func(t *testing.T) {
		p := &Parameter{Entities: []Entity{a}}
		assert.Same(t, p, MergeParameters(nil, p))
		assert.Same(t, p, MergeParameters(p, nil))
		assert.Nil(t, MergeParameters(nil, nil))
	})

	t.Run("entities keep order and duplicates", func(t *testing.T) {
		left := &Parameter{Entities: []Entity{a, b}}
		right := &Parameter{Entities: []Entity{a}}

		merged := MergeParameters(left, right)
		assert.Equal(t, []string{"a", "b", "a"}, merged.EntityNames())
		assert.Len(t, left.Entities, 2, "inputs must not be modified")
	})

	t.Run("values of the right side win", func(t *testing.T) {
		left := &Parameter{Values: map[string]any{"x": 1, "y": 2}}
		right := &Parameter{Values: map[string]any{"y": 3}}

		merged := MergeParameters(left, right)
		assert.Equal(t, map[string]any{"x": 1, "y": 3}, merged.Values)
		assert.Equal(t, 2, left.Values["y"])
	})
}

func TestParameter_WithEntities(t *testing.T) {
	a := NewItem(ItemSpec{Name: "a"}, nil)

	var p *Parameter
	p = p.WithEntities(a)
	require.NotNil(t, p)
	assert.Equal(t, []string{"a"}, p.EntityNames())

	q := p.WithEntities(a)
	assert.Equal(t, []string{"a", "a"}, q.EntityNames())
	assert.Equal(t, []string{"a"}, p.EntityNames())
}

func TestParameter_MarshalJSON(t *testing.T) {
	p := &Parameter{
		Entities: []Entity{NewItem(ItemSpec{Name: "Kitchen_Light"}, nil)},
		Values:   map[string]any{"level": 50},
	}
	data, err := json.Marshal(p)
	require.NoError(t, err)
	assert.JSONEq(t, `{"entities":["Kitchen_Light"],"values":{"level":50}}`, string(data))
}
