package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"flightdelay/db"
	"flightdelay/flights"
	"flightdelay/logging"
	"flightdelay/ml"
)

func main() {
	dataPath := flag.String("data", "", "training dataset CSV")
	dbPath := flag.String("db", "", "sqlite database path")
	ingest := flag.Bool("ingest", false, "store the CSV rows into the database")
	modelPath := flag.String("model_path", "./models/delay.json", "model artifact output path")
	algorithm := flag.String("algorithm", ml.AlgorithmLogistic, "classifier algorithm (logistic or decision_tree)")
	topK := flag.Int("top_k", ml.DefaultVocabularySize, "feature vocabulary size")
	maxDepth := flag.Int("max_depth", ml.DefaultMaxTreeDepth, "max tree depth (decision_tree only)")
	testRatio := flag.Float64("test_ratio", 0.2, "held-out evaluation ratio")
	flag.Parse()

	logger := logging.New("info", "")
	defer logger.Sync()

	if *dataPath == "" && *dbPath == "" {
		logger.Fatal("either -data or -db is required")
	}

	records, err := loadRecords(*dataPath, *dbPath, *ingest, logger)
	if err != nil {
		logger.Fatal("failed to load training data", zap.Error(err))
	}
	if len(records) == 0 {
		logger.Fatal("training data is empty")
	}
	logger.Info("training data loaded", zap.Int("records", len(records)))

	model, err := buildModel(*algorithm, *topK, *maxDepth)
	if err != nil {
		logger.Fatal("failed to configure model", zap.Error(err))
	}

	trainRecords, testRecords := splitDataset(records, *testRatio)

	logger.Info("preprocessing", zap.Int("train", len(trainRecords)), zap.Int("test", len(testRecords)))
	features, labels, skipped, err := model.Preprocess(trainRecords, ml.TargetDelay)
	if err != nil {
		logger.Fatal("preprocess failed", zap.Error(err))
	}
	if len(skipped) > 0 {
		logger.Warn("rows skipped for data quality",
			zap.Int("count", len(skipped)),
			zap.String("first", skipped[0].Error()))
	}

	logger.Info("fitting",
		zap.String("algorithm", *algorithm),
		zap.Int("vocabulary_size", len(model.Vocabulary())))
	if err := model.Fit(features, labels); err != nil {
		logger.Fatal("fit failed", zap.Error(err))
	}

	accuracy, precision, recall := evaluateModel(model, testRecords, logger)
	logger.Info("evaluation",
		zap.Float64("accuracy", accuracy),
		zap.Float64("precision", precision),
		zap.Float64("recall", recall))

	if err := os.MkdirAll(filepath.Dir(*modelPath), 0o755); err != nil {
		logger.Fatal("failed to create model dir", zap.Error(err))
	}
	if err := model.Save(*modelPath); err != nil {
		logger.Fatal("failed to save model", zap.Error(err))
	}

	if *dbPath != "" {
		if err := db.LogTraining(*algorithm, accuracy, precision, recall, len(records)); err != nil {
			logger.Warn("failed to record training log", zap.Error(err))
		}
	}

	fmt.Printf("model saved to %s\n", *modelPath)
}

func loadRecords(dataPath, dbPath string, ingest bool, logger *zap.Logger) ([]flights.Record, error) {
	if dbPath != "" {
		if err := db.InitDB(dbPath); err != nil {
			return nil, err
		}
	}
	if dataPath == "" {
		return db.LoadFlights()
	}

	records, rowErrs, err := flights.LoadDataset(dataPath)
	if err != nil {
		return nil, err
	}
	if len(rowErrs) > 0 {
		logger.Warn("dataset rows dropped",
			zap.Int("count", len(rowErrs)),
			zap.String("first", rowErrs[0].Error()))
	}
	if dbPath != "" && ingest {
		if err := db.SaveFlights(records); err != nil {
			return nil, err
		}
		logger.Info("dataset ingested", zap.String("db", dbPath), zap.Int("records", len(records)))
	}
	return records, nil
}

func buildModel(algorithm string, topK, maxDepth int) (*ml.DelayModel, error) {
	if algorithm == ml.AlgorithmDecisionTree {
		return ml.NewDelayModelWithClassifier(algorithm, ml.NewDecisionTree(maxDepth), topK), nil
	}
	return ml.NewDelayModel(algorithm, topK)
}

// splitDataset keeps the tail of the dataset as the held-out set. The split
// is deterministic so repeated runs on the same data are comparable.
func splitDataset(records []flights.Record, testRatio float64) (train, test []flights.Record) {
	if testRatio <= 0 || testRatio >= 1 {
		testRatio = 0.2
	}
	split := int(float64(len(records)) * (1 - testRatio))
	if split <= 0 || split >= len(records) {
		return records, nil
	}
	return records[:split], records[split:]
}

func evaluateModel(model *ml.DelayModel, testRecords []flights.Record, logger *zap.Logger) (accuracy, precision, recall float64) {
	if len(testRecords) == 0 {
		return 0, 0, 0
	}
	// Vocabulary is already frozen, so this only labels and encodes.
	testX, testY, _, err := model.Preprocess(testRecords, ml.TargetDelay)
	if err != nil {
		logger.Warn("evaluation preprocess failed", zap.Error(err))
		return 0, 0, 0
	}
	predictions, err := model.Predict(testX)
	if err != nil {
		logger.Warn("evaluation predict failed", zap.Error(err))
		return 0, 0, 0
	}

	var correct, truePositive, predictedPositive, actualPositive int
	for i, label := range predictions {
		if label == testY[i] {
			correct++
		}
		if label == 1 {
			predictedPositive++
		}
		if testY[i] == 1 {
			actualPositive++
			if label == 1 {
				truePositive++
			}
		}
	}

	accuracy = float64(correct) / float64(len(predictions))
	if predictedPositive > 0 {
		precision = float64(truePositive) / float64(predictedPositive)
	}
	if actualPositive > 0 {
		recall = float64(truePositive) / float64(actualPositive)
	}
	return accuracy, precision, recall
}
