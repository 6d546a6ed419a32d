package classifier

import (
	"testing"

	"github.com/kirsrus/factorymon/model"

	"github.com/stretchr/testify/assert"
)

func f64(v float64) *float64 { return &v }

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		value float64
		min   *float64
		max   *float64
		want  model.Status
	}{
		{name: "без порогов", value: 1e9, want: model.StatusNormal},
		{name: "без порогов отрицательное", value: -1e9, want: model.StatusNormal},
		{name: "только min, ниже", value: 9.99, min: f64(10), want: model.StatusBelowThreshold},
		{name: "только min, на границе", value: 10, min: f64(10), want: model.StatusNormal},
		{name: "только min, выше", value: 500, min: f64(10), want: model.StatusNormal},
		{name: "только max, выше", value: 90.01, max: f64(90), want: model.StatusAboveThreshold},
		{name: "только max, на границе", value: 90, max: f64(90), want: model.StatusNormal},
		{name: "только max, ниже", value: -5, max: f64(90), want: model.StatusNormal},
		{name: "оба, ниже", value: 5, min: f64(10), max: f64(90), want: model.StatusBelowThreshold},
		{name: "оба, в диапазоне", value: 50, min: f64(10), max: f64(90), want: model.StatusNormal},
		{name: "оба, выше", value: 95, min: f64(10), max: f64(90), want: model.StatusAboveThreshold},
		{name: "min > max, нарушены оба", value: 50, min: f64(90), max: f64(10), want: model.StatusBelowThreshold},
		{name: "min > max, только max", value: 95, min: f64(90), max: f64(10), want: model.StatusAboveThreshold},
		{name: "нулевые пороги", value: 0, min: f64(0), max: f64(0), want: model.StatusNormal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.value, tt.min, tt.max))
		})
	}
}

func TestClassify_Properties(t *testing.T) {
	values := []float64{-100, -1, 0, 0.5, 9.999, 10, 10.001, 50, 89.9, 90, 90.1, 1000}
	bounds := []float64{-1, 0, 10, 90}

	for _, m := range bounds {
		for _, v := range values {
			got := Classify(v, f64(m), nil)
			if v < m {
				assert.Equal(t, model.StatusBelowThreshold, got, "value=%v min=%v", v, m)
			} else {
				assert.Equal(t, model.StatusNormal, got, "value=%v min=%v", v, m)
			}

			got = Classify(v, nil, f64(m))
			if v > m {
				assert.Equal(t, model.StatusAboveThreshold, got, "value=%v max=%v", v, m)
			} else {
				assert.Equal(t, model.StatusNormal, got, "value=%v max=%v", v, m)
			}
		}
	}

	for _, lo := range bounds {
		for _, hi := range bounds {
			if lo > hi {
				continue
			}
			for _, v := range values {
				got := Classify(v, f64(lo), f64(hi))
				switch {
				case v < lo:
					assert.Equal(t, model.StatusBelowThreshold, got)
				case v > hi:
					assert.Equal(t, model.StatusAboveThreshold, got)
				default:
					assert.Equal(t, model.StatusNormal, got)
				}
			}
		}
	}
}

func TestClassifyReading(t *testing.T) {
	in := model.Reading{
		MachineID:     "M1",
		ParameterName: "temp",
		CurrentValue:  95,
		Unit:          "C",
		Timestamp:     "t1",
		Status:        model.StatusNormal,
		ThresholdMin:  f64(10),
		ThresholdMax:  f64(90),
	}

	got := ClassifyReading(in)

	assert.Equal(t, model.StatusAboveThreshold, got.Status)
	assert.Equal(t, model.StatusNormal, in.Status, "исходное показание не меняется")
	*got.ThresholdMax = 1000
	assert.Equal(t, 90.0, *in.ThresholdMax, "пороги скопированы")
}
