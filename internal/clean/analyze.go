package clean

import (
	"cmp"
	"slices"
)

// CategoryStats aggregates the rows of one data type
type CategoryStats struct {
	DataType   string
	Count      int
	MeanLength float64
	MinLength  int
	MaxLength  int
	MeanWords  float64
	MinWords   int
	MaxWords   int
	URLRatio   float64
	URLRows    int
	ArrowRows  int
	WordCounts []float64
}

// Analysis is the per-category breakdown of a cleaned data set
type Analysis struct {
	Rows       int
	MeanLength float64
	MeanWords  float64
	URLRows    int
	ArrowRows  int
	// Categories is ordered by count, largest first. Ties keep the order in
	// which the category first appeared.
	Categories []CategoryStats
}

func Analyze(rows []Row) Analysis {
	a := Analysis{Rows: len(rows)}
	if len(rows) == 0 {
		return a
	}

	index := make(map[string]int)
	var totalLen, totalWords int
	for _, r := range rows {
		i, ok := index[r.DataType]
		if !ok {
			i = len(a.Categories)
			index[r.DataType] = i
			a.Categories = append(a.Categories, CategoryStats{
				DataType:  r.DataType,
				MinLength: r.ContentLength,
				MaxLength: r.ContentLength,
				MinWords:  r.WordCount,
				MaxWords:  r.WordCount,
			})
		}

		c := &a.Categories[i]
		c.Count++
		c.MeanLength += float64(r.ContentLength)
		c.MeanWords += float64(r.WordCount)
		c.MinLength = min(c.MinLength, r.ContentLength)
		c.MaxLength = max(c.MaxLength, r.ContentLength)
		c.MinWords = min(c.MinWords, r.WordCount)
		c.MaxWords = max(c.MaxWords, r.WordCount)
		c.WordCounts = append(c.WordCounts, float64(r.WordCount))
		if r.ContainsURL {
			c.URLRows++
			a.URLRows++
		}
		if r.ContainsArrow {
			c.ArrowRows++
			a.ArrowRows++
		}

		totalLen += r.ContentLength
		totalWords += r.WordCount
	}

	for i := range a.Categories {
		c := &a.Categories[i]
		n := float64(c.Count)
		c.MeanLength /= n
		c.MeanWords /= n
		c.URLRatio = float64(c.URLRows) / n
	}
	slices.SortStableFunc(a.Categories, func(x, y CategoryStats) int {
		return cmp.Compare(y.Count, x.Count)
	})

	a.MeanLength = float64(totalLen) / float64(len(rows))
	a.MeanWords = float64(totalWords) / float64(len(rows))
	return a
}

// Lengths returns every content length, in row order
func Lengths(rows []Row) []float64 {
	out := make([]float64, len(rows))
	for i, r := range rows {
		out[i] = float64(r.ContentLength)
	}
	return out
}
