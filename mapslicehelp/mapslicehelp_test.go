package mapslicehelp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	orderedmap "github.com/wk8/go-ordered-map/v2"
)

func TestOrderedMapKeys(t *testing.T) {
	m := orderedmap.New[string, int]()
	m.Set("zeta", 1)
	m.Set("alpha", 2)
	m.Set("mu", 3)
	m.Set("zeta", 4)
	assert.Equal(t, []string{"zeta", "alpha", "mu"}, OrderedMapKeys(m))
	assert.Equal(t, []string{}, OrderedMapKeys(orderedmap.New[string, int]()))
}

func TestSortedKeys(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, SortedKeys(map[string]bool{"c": true, "a": false, "b": true}))
	assert.Equal(t, []int{-1, 3, 7}, SortedKeys(map[int]any{7: nil, -1: nil, 3: nil}))
	assert.Empty(t, SortedKeys(map[string]int(nil)))
}

func TestDedupe(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "nil", in: nil, want: []string{}},
		{name: "no repeats", in: []string{"b", "a"}, want: []string{"b", "a"}},
		{name: "repeats keep first", in: []string{"lines", "points", "lines", "areas", "points"}, want: []string{"lines", "points", "areas"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Dedupe(tt.in))
		})
	}
}
