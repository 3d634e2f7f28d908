package kpi

import (
	"strconv"
	"strings"
)

type fieldStats struct {
	Min           float64 `json:"min"`
	Max           float64 `json:"max"`
	Avg           float64 `json:"avg"`
	Median        float64 `json:"median"`
	Total         float64 `json:"total"`
	NegativeCount int     `json:"negative_count"`
	ZeroCount     int     `json:"zero_count"`
}

type dataAnalysis struct {
	RecordCount   int                   `json:"record_count"`
	Fields        []string              `json:"fields"`
	NumericFields []string              `json:"numeric_fields"`
	Patterns      map[string]fieldStats `json:"patterns"`
}

// analyzePatterns summarizes the numeric columns of the webhook table rows
// so the prompt can reference concrete min/max/avg figures.
func analyzePatterns(tableData []map[string]any) dataAnalysis {
	a := dataAnalysis{Patterns: map[string]fieldStats{}}
	if len(tableData) == 0 {
		return a
	}

	a.RecordCount = len(tableData)
	for field := range tableData[0] {
		a.Fields = append(a.Fields, field)
	}

	for _, field := range a.Fields {
		var values []float64
		for _, record := range tableData {
			v, ok := numericValue(record[field])
			if ok {
				values = append(values, v)
			}
		}
		if len(values) < 2 {
			continue
		}
		a.NumericFields = append(a.NumericFields, field)
		a.Patterns[field] = statsOf(values)
	}
	return a
}

// numericValue coerces cell values to float64, tolerating formatted
// strings like "$1,200.50".
func numericValue(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		cleaned := strings.ReplaceAll(strings.ReplaceAll(x, ",", ""), "$", "")
		f, err := strconv.ParseFloat(strings.TrimSpace(cleaned), 64)
		return f, err == nil
	default:
		return 0, false
	}
}

func statsOf(values []float64) fieldStats {
	s := fieldStats{Min: values[0], Max: values[0]}
	for _, v := range values {
		if v < s.Min {
			s.Min = v
		}
		if v > s.Max {
			s.Max = v
		}
		s.Total += v
		if v < 0 {
			s.NegativeCount++
		}
		if v == 0 {
			s.ZeroCount++
		}
	}
	s.Avg = s.Total / float64(len(values))
	s.Median = medianOf(values)
	return s
}

func medianOf(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	for i := 1; i < len(sorted); i++ {
		for j := i; j > 0 && sorted[j] < sorted[j-1]; j-- {
			sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
		}
	}
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
