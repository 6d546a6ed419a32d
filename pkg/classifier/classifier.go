package classifier

import "github.com/kirsrus/factorymon/model"

// Classify определяет статус значения value относительно необязательных порогов.
// Нижний порог проверяется первым, поэтому при min > max и нарушении обоих
// возвращается BELOW_THRESHOLD. Согласованность порогов не проверяется
func Classify(value float64, min *float64, max *float64) model.Status {
	if min != nil && value < *min {
		return model.StatusBelowThreshold
	}
	if max != nil && value > *max {
		return model.StatusAboveThreshold
	}
	return model.StatusNormal
}

// ClassifyReading возвращает копию reading с вычисленным статусом.
// Статус, переданный клиентом, перезаписывается
func ClassifyReading(reading model.Reading) model.Reading {
	res := reading.Clone()
	res.Status = Classify(res.CurrentValue, res.ThresholdMin, res.ThresholdMax)
	return res
}
