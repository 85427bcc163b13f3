package ml

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"flightdelay/flights"
)

func trainedModel(t *testing.T) *DelayModel {
	t.Helper()
	records, _ := skewedTrainingSet()

	model, err := NewDelayModel(AlgorithmLogistic, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	features, labels, skipped, err := model.Preprocess(records, TargetDelay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped rows: %v", skipped)
	}
	if err := model.Fit(features, labels); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return model
}

func TestPreprocessInferenceBeforeTraining(t *testing.T) {
	model, err := NewDelayModel(AlgorithmLogistic, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, _, err := model.Preprocess([]flights.Record{{Carrier: "Lacsa"}}, ""); err != ErrNoVocabulary {
		t.Fatalf("expected ErrNoVocabulary, got %v", err)
	}
}

func TestPredictBeforeFit(t *testing.T) {
	model, err := NewDelayModel(AlgorithmLogistic, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := model.Predict([][]float64{{1, 0}}); err != ErrNotTrained {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestFitBeatsMajorityBaseline(t *testing.T) {
	model := trainedModel(t)
	records, labels := skewedTrainingSet()

	predictions, err := model.PredictRecords(records)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	correct := 0
	for i, label := range predictions {
		if label == labels[i] {
			correct++
		}
	}
	accuracy := float64(correct) / float64(len(labels))
	// Always-predict-majority scores 0.80 on this set.
	if accuracy <= 0.80 {
		t.Fatalf("accuracy %.2f does not beat the majority baseline", accuracy)
	}
}

func TestPredictSingleDescriptor(t *testing.T) {
	model := trainedModel(t)

	predictions, err := model.PredictRecords([]flights.Record{
		{Carrier: "Grupo LATAM", FlightType: flights.National, Month: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(predictions) != 1 {
		t.Fatalf("expected exactly one prediction, got %d", len(predictions))
	}
	if predictions[0] != 0 && predictions[0] != 1 {
		t.Fatalf("prediction must be 0 or 1, got %d", predictions[0])
	}
}

func TestVocabularyStableAcrossInferenceCalls(t *testing.T) {
	model := trainedModel(t)
	records := []flights.Record{
		{Carrier: "Grupo LATAM", FlightType: flights.National, Month: 3},
		{Carrier: "Sky Airline", FlightType: flights.International, Month: 7},
		{Carrier: "Copa Air", FlightType: flights.National, Month: 12},
	}

	first, _, _, err := model.Preprocess(records, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _, _, err := model.Preprocess(records, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(first))
	}
	vocabularySize := len(model.Vocabulary())
	for _, row := range first {
		if len(row) != vocabularySize {
			t.Fatalf("row width %d does not match vocabulary size %d", len(row), vocabularySize)
		}
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatal("inference preprocessing is not stable across calls")
	}
}

func TestUnseenCarrierStillPredicts(t *testing.T) {
	model := trainedModel(t)

	// "Lacsa" never appears in the training set; its row encodes to zeros
	// on the carrier columns by design.
	predictions, err := model.PredictRecords([]flights.Record{
		{Carrier: "Lacsa", FlightType: flights.International, Month: 7},
	})
	if err != nil {
		t.Fatalf("unseen carrier must not error: %v", err)
	}
	if predictions[0] != 0 && predictions[0] != 1 {
		t.Fatalf("expected a definite prediction, got %d", predictions[0])
	}
}

func TestArtifactRoundTrip(t *testing.T) {
	model := trainedModel(t)
	path := filepath.Join(t.TempDir(), "delay.json")

	if err := model.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	loaded, err := LoadDelayModel(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(model.Vocabulary(), loaded.Vocabulary()) {
		t.Fatal("vocabulary not preserved through the artifact")
	}

	holdout := []flights.Record{
		{Carrier: "Grupo LATAM", FlightType: flights.National, Month: 3},
		{Carrier: "American Airlines", FlightType: flights.National, Month: 1},
		{Carrier: "Lacsa", FlightType: flights.International, Month: 7},
	}
	want, err := model.PredictRecords(holdout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := loaded.PredictRecords(holdout)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(want, got) {
		t.Fatalf("loaded model disagrees: %v vs %v", want, got)
	}
}

func TestSaveUntrained(t *testing.T) {
	model, err := NewDelayModel(AlgorithmLogistic, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := model.Save(filepath.Join(t.TempDir(), "delay.json")); err != ErrNotTrained {
		t.Fatalf("expected ErrNotTrained, got %v", err)
	}
}

func TestPreprocessDropsUnlabelableRows(t *testing.T) {
	records, _ := skewedTrainingSet()
	// Append a row without timestamps; it must be skipped, not fatal.
	records = append(records, flights.Record{
		Carrier: "Avianca", FlightType: flights.National, Month: 5,
	})

	model, err := NewDelayModel(AlgorithmLogistic, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	features, labels, skipped, err := model.Preprocess(records, TargetDelay)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(skipped) != 1 || skipped[0].Row != len(records)-1 {
		t.Fatalf("expected last row skipped, got %v", skipped)
	}
	if len(features) != len(records)-1 || len(labels) != len(records)-1 {
		t.Fatalf("skipped row leaked into output: %d features, %d labels", len(features), len(labels))
	}
}

func TestModelHandleSwap(t *testing.T) {
	model := trainedModel(t)
	handle := NewModelHandle(nil)
	if handle.Current() != nil {
		t.Fatal("expected empty handle")
	}

	purged := false
	handle.OnSwap(func() { purged = true })
	handle.Swap(model)
	if handle.Current() != model {
		t.Fatal("swap did not install the model")
	}
	if !purged {
		t.Fatal("swap hook did not run")
	}
}

func TestWatcherReloadHelper(t *testing.T) {
	// Save then load through the same path the watcher uses.
	model := trainedModel(t)
	dir := t.TempDir()
	path := filepath.Join(dir, "delay.json")
	if err := model.Save(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatal("temp file left behind after save")
	}
	loaded, err := LoadDelayModel(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !loaded.Trained() {
		t.Fatal("loaded model must be servable")
	}
}
