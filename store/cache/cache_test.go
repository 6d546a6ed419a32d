package cache

import (
	"context"
	"testing"
	"time"

	"github.com/kirsrus/factorymon/model"
	"github.com/kirsrus/factorymon/store/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore считает обращения к List нижележащего хранилища
type countingStore struct {
	*memory.Memory
	lists int
}

func (m *countingStore) List(filter model.Filter) ([]model.Reading, error) {
	m.lists++
	return m.Memory.List(filter)
}

func newCache(t *testing.T) (*Cache, *countingStore) {
	t.Helper()
	mem, err := memory.NewMemory(context.Background(), &memory.ConfigMemory{})
	require.NoError(t, err)
	next := &countingStore{Memory: mem.(*memory.Memory)}
	c, err := NewCache(context.Background(), next, &ConfigCache{Expiration: time.Minute})
	require.NoError(t, err)
	return c, next
}

func reading(machine string) model.Reading {
	return model.Reading{MachineID: machine, ParameterName: "temp", CurrentValue: 1, Unit: "C", Timestamp: "t", Status: model.StatusNormal}
}

func TestNewCache(t *testing.T) {
	_, err := NewCache(context.Background(), nil, &ConfigCache{})
	require.Error(t, err)

	mem, err := memory.NewMemory(context.Background(), &memory.ConfigMemory{})
	require.NoError(t, err)
	_, err = NewCache(context.Background(), mem, nil)
	require.Error(t, err)
}

func TestCache_HitUntilAppend(t *testing.T) {
	c, next := newCache(t)

	_, err := c.Append(reading("M1"))
	require.NoError(t, err)

	first, err := c.List(model.Filter{MachineID: "M1"})
	require.NoError(t, err)
	second, err := c.List(model.Filter{MachineID: "M1"})
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.lists, "второй запрос из кэша")

	// Другой фильтр - другой ключ
	_, err = c.List(model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, 2, next.lists)

	// Новое показание меняет ключ
	_, err = c.Append(reading("M1"))
	require.NoError(t, err)
	third, err := c.List(model.Filter{MachineID: "M1"})
	require.NoError(t, err)
	assert.Len(t, third, 2)
	assert.Equal(t, 3, next.lists)
	assert.Equal(t, 3, c.ItemCount())
}

func TestCache_ReturnsCopies(t *testing.T) {
	c, _ := newCache(t)

	_, err := c.Append(reading("M1"))
	require.NoError(t, err)

	first, err := c.List(model.Filter{})
	require.NoError(t, err)
	first[0].MachineID = "changed"

	second, err := c.List(model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "M1", second[0].MachineID)

	second[0].MachineID = "changed again"
	third, err := c.List(model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, "M1", third[0].MachineID)
}

func TestCache_Count(t *testing.T) {
	c, _ := newCache(t)
	for i := 0; i < 3; i++ {
		_, err := c.Append(reading("M1"))
		require.NoError(t, err)
	}
	n, err := c.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}
