package db

import (
	"context"
	"fmt"
	"testing"

	"github.com/kirsrus/factorymon/model"
	"github.com/kirsrus/factorymon/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Каждому тесту отдельная БД в памяти
func newStore(t *testing.T) store.ReadingStore {
	t.Helper()
	s, err := NewDb(context.Background(), &ConfigDb{
		Dsn: fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name()),
	})
	require.NoError(t, err)
	return s
}

func f64(v float64) *float64 { return &v }

func TestNewDb(t *testing.T) {
	tests := []struct {
		name    string
		config  *ConfigDb
		wantErr bool
	}{
		{name: "без конфигурации", config: nil, wantErr: true},
		{name: "без строки подключения", config: &ConfigDb{}, wantErr: true},
		{name: "корректный", config: &ConfigDb{Dsn: "file:TestNewDb?mode=memory&cache=shared"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDb(context.Background(), tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("NewDb() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDb_AppendListCount(t *testing.T) {
	s := newStore(t)

	r1 := model.Reading{MachineID: "M1", ParameterName: "temp", CurrentValue: 95, Unit: "C", Timestamp: "t1",
		Status: model.StatusAboveThreshold, ThresholdMin: f64(10), ThresholdMax: f64(90)}
	r2 := model.Reading{MachineID: "M1", ParameterName: "pressure", CurrentValue: 1.5, Unit: "bar", Timestamp: "t2",
		Status: model.StatusNormal}
	r3 := model.Reading{MachineID: "M2", ParameterName: "temp", CurrentValue: 5, Unit: "C", Timestamp: "t3",
		Status: model.StatusBelowThreshold, ThresholdMin: f64(10)}

	for _, r := range []model.Reading{r1, r2, r3} {
		got, err := s.Append(r)
		require.NoError(t, err)
		assert.Equal(t, r, *got)
	}

	all, err := s.List(model.Filter{})
	require.NoError(t, err)
	assert.Equal(t, []model.Reading{r1, r2, r3}, all)

	m1, err := s.List(model.Filter{MachineID: "M1"})
	require.NoError(t, err)
	assert.Equal(t, []model.Reading{r1, r2}, m1)

	normal, err := s.List(model.Filter{MachineID: "M1", Status: model.StatusNormal})
	require.NoError(t, err)
	assert.Equal(t, []model.Reading{r2}, normal)

	none, err := s.List(model.Filter{Status: "unknown"})
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestDb_AppendRejectsUnclassified(t *testing.T) {
	s := newStore(t)

	_, err := s.Append(model.Reading{MachineID: "M1"})
	require.Error(t, err)

	n, err := s.Count()
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
