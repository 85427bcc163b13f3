package ml

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"flightdelay/flights"
)

var (
	// ErrNotTrained is returned when predict or save is attempted before a
	// fit or load. Callers treat it as a broken contract and abort.
	ErrNotTrained = errors.New("model not trained")
	// ErrNoVocabulary is returned when inference-mode preprocessing runs
	// before any feature vocabulary has been fixed.
	ErrNoVocabulary = errors.New("feature vocabulary not fixed")
)

// TargetDelay is the target column name that switches Preprocess into
// training mode.
const TargetDelay = "delay"

// Classifier is the capability set every delay classifier implements. The
// concrete algorithm is selected at training-configuration time and is
// interchangeable as long as it honors fit/predict over encoded rows.
type Classifier interface {
	Fit(features [][]float64, labels []int, classWeights map[int]float64) error
	Predict(features []float64) (int, error)
	MarshalParams() ([]byte, error)
	UnmarshalParams(data []byte) error
}

// DelayModel ties the encoder, labeler, imbalance correction and classifier
// into one lifecycle: Untrained -> Trained -> (Persisted | Loaded). Once
// trained the model is immutable and safe for concurrent prediction.
type DelayModel struct {
	algorithm  string
	topK       int
	encoder    *Encoder
	classifier Classifier
	trained    bool
}

// NewDelayModel creates an untrained model for the named algorithm. topK is
// the vocabulary size fixed during the first training-mode preprocess.
func NewDelayModel(algorithm string, topK int) (*DelayModel, error) {
	clf, err := NewClassifier(algorithm)
	if err != nil {
		return nil, err
	}
	return NewDelayModelWithClassifier(algorithm, clf, topK), nil
}

// NewDelayModelWithClassifier wires in a preconfigured classifier, for
// callers that tune algorithm parameters before training.
func NewDelayModelWithClassifier(algorithm string, clf Classifier, topK int) *DelayModel {
	if topK <= 0 {
		topK = DefaultVocabularySize
	}
	return &DelayModel{algorithm: algorithm, topK: topK, classifier: clf}
}

// Trained reports whether the model can serve predictions.
func (m *DelayModel) Trained() bool {
	return m.trained
}

// Algorithm names the classifier backing this model.
func (m *DelayModel) Algorithm() string {
	return m.algorithm
}

// Vocabulary returns the frozen feature columns, or nil before training.
func (m *DelayModel) Vocabulary() []string {
	if m.encoder == nil {
		return nil
	}
	return m.encoder.Vocabulary()
}

// Preprocess encodes records into the feature matrix. With a target column
// it also derives labels, fixing the vocabulary on the first training-mode
// call; rows that cannot be labeled are dropped and reported in skipped.
// Without a target column it encodes against the frozen vocabulary and
// fails if none exists yet.
func (m *DelayModel) Preprocess(records []flights.Record, targetColumn string) (features [][]float64, labels []int, skipped []flights.RowError, err error) {
	if targetColumn == "" {
		if m.encoder == nil {
			return nil, nil, nil, ErrNoVocabulary
		}
		features, err = m.encoder.Encode(records)
		return features, nil, nil, err
	}
	if targetColumn != TargetDelay {
		return nil, nil, nil, fmt.Errorf("unsupported target column %q", targetColumn)
	}

	allLabels, skipped, err := GenerateLabels(records)
	if err != nil {
		return nil, nil, nil, err
	}
	badRows := make(map[int]struct{}, len(skipped))
	for _, rowErr := range skipped {
		badRows[rowErr.Row] = struct{}{}
	}
	clean := make([]flights.Record, 0, len(records))
	labels = make([]int, 0, len(records))
	for i, rec := range records {
		if _, bad := badRows[i]; bad {
			continue
		}
		clean = append(clean, rec)
		labels = append(labels, allLabels[i])
	}
	if len(clean) == 0 {
		return nil, nil, skipped, errors.New("no labelable rows in training data")
	}

	if m.encoder == nil {
		vocabulary, err := BuildVocabulary(clean, labels, m.topK)
		if err != nil {
			return nil, nil, skipped, err
		}
		m.encoder = NewEncoder(vocabulary)
	}
	features, err = m.encoder.Encode(clean)
	return features, labels, skipped, err
}

// Fit computes class weights and trains the classifier, moving the model
// into the Trained state.
func (m *DelayModel) Fit(features [][]float64, labels []int) error {
	if m.encoder == nil {
		return ErrNoVocabulary
	}
	weights, err := ClassWeights(labels)
	if err != nil {
		return err
	}
	if err := m.classifier.Fit(features, labels, weights); err != nil {
		return fmt.Errorf("fit %s: %w", m.algorithm, err)
	}
	m.trained = true
	return nil
}

// Predict returns one {0,1} label per feature row, order-preserving.
func (m *DelayModel) Predict(features [][]float64) ([]int, error) {
	if !m.trained {
		return nil, ErrNotTrained
	}
	labels := make([]int, len(features))
	for i, row := range features {
		label, err := m.classifier.Predict(row)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		labels[i] = label
	}
	return labels, nil
}

// PredictRecords is the serving path: encode then predict in one call.
func (m *DelayModel) PredictRecords(records []flights.Record) ([]int, error) {
	features, _, _, err := m.Preprocess(records, "")
	if err != nil {
		return nil, err
	}
	return m.Predict(features)
}

// Artifact is the persisted form of a trained model: the frozen vocabulary
// plus the fitted classifier parameters. Both are needed, the parameters
// are uninterpretable without the column order.
type Artifact struct {
	Algorithm  string          `json:"algorithm"`
	Vocabulary []string        `json:"vocabulary"`
	Params     json.RawMessage `json:"params"`
}

// Save writes the artifact atomically: a temp file renamed over the target,
// so a watcher never observes a partial write.
func (m *DelayModel) Save(path string) error {
	if !m.trained {
		return ErrNotTrained
	}
	params, err := m.classifier.MarshalParams()
	if err != nil {
		return err
	}
	payload, err := json.MarshalIndent(Artifact{
		Algorithm:  m.algorithm,
		Vocabulary: m.encoder.Vocabulary(),
		Params:     params,
	}, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadDelayModel restores a trained model from an artifact without
// retraining. The result is immediately servable.
func LoadDelayModel(path string) (*DelayModel, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var artifact Artifact
	if err := json.Unmarshal(payload, &artifact); err != nil {
		return nil, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	if len(artifact.Vocabulary) == 0 {
		return nil, fmt.Errorf("artifact %s missing vocabulary", path)
	}
	clf, err := NewClassifier(artifact.Algorithm)
	if err != nil {
		return nil, err
	}
	if err := clf.UnmarshalParams(artifact.Params); err != nil {
		return nil, fmt.Errorf("restore %s params: %w", artifact.Algorithm, err)
	}
	return &DelayModel{
		algorithm:  artifact.Algorithm,
		topK:       len(artifact.Vocabulary),
		encoder:    NewEncoder(artifact.Vocabulary),
		classifier: clf,
		trained:    true,
	}, nil
}
