package collection

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSyncMap(t *testing.T) {
	m := NewSyncMap[string, int]()
	m.Put("a", 1)
	m.Put("b", 2)
	assert.Equal(t, 2, m.Len())

	v, ok := m.Get("a")
	assert.True(t, ok)
	assert.Equal(t, 1, v)

	m.Range(func(key string, _ int) bool {
		m.Delete(key)
		return true
	})
	assert.Equal(t, 0, m.Len())

	m.Put("c", 3)
	v, ok = m.Take("c")
	assert.True(t, ok)
	assert.Equal(t, 3, v)
	_, ok = m.Take("c")
	assert.False(t, ok)
}
