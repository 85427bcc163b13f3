package ml

import (
	"errors"
	"math"
	"sort"
	"strconv"

	"gonum.org/v1/gonum/stat"

	"flightdelay/flights"
)

// DefaultVocabularySize is the number of one-hot columns kept at training
// time when the caller does not override it.
const DefaultVocabularySize = 10

// Encoder turns categorical flight attributes into fixed-width one-hot
// vectors. The vocabulary is fixed when the encoder is built and never
// mutated afterwards, so concurrent Encode calls need no locking.
type Encoder struct {
	vocabulary []string
	index      map[string]int
}

// NewEncoder builds an encoder over an ordered feature vocabulary.
func NewEncoder(vocabulary []string) *Encoder {
	vocab := append([]string(nil), vocabulary...)
	index := make(map[string]int, len(vocab))
	for i, name := range vocab {
		index[name] = i
	}
	return &Encoder{vocabulary: vocab, index: index}
}

// Vocabulary returns the ordered feature column names.
func (e *Encoder) Vocabulary() []string {
	return append([]string(nil), e.vocabulary...)
}

// Size is the width of every encoded row.
func (e *Encoder) Size() int {
	return len(e.vocabulary)
}

// recordColumns names the one-hot columns a record activates, one per
// categorical dimension.
func recordColumns(rec flights.Record) [3]string {
	return [3]string{
		"OPERA_" + rec.Carrier,
		"TIPOVUELO_" + rec.FlightType,
		"MES_" + strconv.Itoa(rec.Month),
	}
}

// Encode maps records onto the vocabulary. Encoding is pure: the same
// record against the same vocabulary always yields the same row. Attribute
// values outside the vocabulary contribute zeros, never errors.
func (e *Encoder) Encode(records []flights.Record) ([][]float64, error) {
	if len(e.vocabulary) == 0 {
		return nil, ErrNoVocabulary
	}
	matrix := make([][]float64, len(records))
	for i, rec := range records {
		row := make([]float64, len(e.vocabulary))
		for _, col := range recordColumns(rec) {
			if j, ok := e.index[col]; ok {
				row[j] = 1
			}
		}
		matrix[i] = row
	}
	return matrix, nil
}

// BuildVocabulary selects the k most informative one-hot columns over the
// observed carrier, flight-type and month values. Each candidate column is
// scored by |Pearson correlation with the label| * sqrt(support fraction);
// columns are ranked by descending score with ties broken by name, so the
// selection is reproducible for a given dataset.
func BuildVocabulary(records []flights.Record, labels []int, k int) ([]string, error) {
	if len(records) == 0 {
		return nil, errors.New("records is empty")
	}
	if len(records) != len(labels) {
		return nil, errors.New("records and labels size mismatch")
	}
	if k <= 0 {
		k = DefaultVocabularySize
	}

	indicators := make(map[string][]float64)
	for i, rec := range records {
		for _, col := range recordColumns(rec) {
			series, ok := indicators[col]
			if !ok {
				series = make([]float64, len(records))
				indicators[col] = series
			}
			series[i] = 1
		}
	}

	y := make([]float64, len(labels))
	for i, label := range labels {
		y[i] = float64(label)
	}

	type scoredColumn struct {
		name  string
		score float64
	}
	n := float64(len(records))
	scored := make([]scoredColumn, 0, len(indicators))
	for name, series := range indicators {
		var support float64
		for _, v := range series {
			support += v
		}
		r := stat.Correlation(series, y, nil)
		if math.IsNaN(r) {
			r = 0
		}
		scored = append(scored, scoredColumn{
			name:  name,
			score: math.Abs(r) * math.Sqrt(support/n),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].score != scored[j].score {
			return scored[i].score > scored[j].score
		}
		return scored[i].name < scored[j].name
	})

	if k > len(scored) {
		k = len(scored)
	}
	vocabulary := make([]string, k)
	for i := 0; i < k; i++ {
		vocabulary[i] = scored[i].name
	}
	return vocabulary, nil
}
