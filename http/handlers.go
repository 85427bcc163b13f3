package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"flightdelay/db"
	"flightdelay/flights"
	"flightdelay/ml"
	"flightdelay/monitoring"
)

// predictCacheSize bounds the descriptor cache. The descriptor space is
// small (23 carriers x 2 flags x 12 months) so this holds it entirely.
const predictCacheSize = 1024

// PredictService serves predictions from an injected model handle. The
// handle is the only shared state; the model it points to is immutable, so
// concurrent requests read it without locking.
type PredictService struct {
	models *ml.ModelHandle
	cache  *lru.Cache[string, int]
	stats  *monitoring.Stats
	logger *zap.Logger
	audit  bool
}

// NewPredictService wires the handlers. With audit enabled every served
// prediction is appended to the database log.
func NewPredictService(models *ml.ModelHandle, stats *monitoring.Stats, logger *zap.Logger, audit bool) (*PredictService, error) {
	cache, err := lru.New[string, int](predictCacheSize)
	if err != nil {
		return nil, err
	}
	svc := &PredictService{
		models: models,
		cache:  cache,
		stats:  stats,
		logger: logger,
		audit:  audit,
	}
	// Cached labels belong to the model that produced them.
	models.OnSwap(cache.Purge)
	return svc, nil
}

// Register installs the routes.
func (s *PredictService) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /predict", s.handlePredict)
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("GET /api/predictions/recent", s.handleRecentPredictions)
}

type predictRequest struct {
	Flights []FlightRequest `json:"flights"`
}

type predictResponse struct {
	Predict []int `json:"predict"`
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
}

func (s *PredictService) handlePredict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	defer func() {
		s.stats.RecordRequest(time.Since(start))
	}()

	var req predictRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if len(req.Flights) == 0 {
		writeError(w, http.StatusBadRequest, "flights must not be empty")
		return
	}
	for i, flight := range req.Flights {
		if err := ValidateFlight(flight); err != nil {
			s.stats.RecordValidationError()
			writeError(w, http.StatusBadRequest, fmt.Sprintf("flight %d: %v", i, err))
			return
		}
	}

	model := s.models.Current()
	if model == nil {
		writeError(w, http.StatusServiceUnavailable, "model not loaded")
		return
	}

	predictions := make([]int, len(req.Flights))
	var misses []int
	var missRecords []flights.Record
	cacheHits := 0
	for i, flight := range req.Flights {
		if label, ok := s.cache.Get(flight.cacheKey()); ok {
			predictions[i] = label
			cacheHits++
			continue
		}
		misses = append(misses, i)
		missRecords = append(missRecords, flight.record())
	}

	if len(missRecords) > 0 {
		labels, err := model.PredictRecords(missRecords)
		if err != nil {
			s.logger.Error("predict failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "prediction failed")
			return
		}
		for j, idx := range misses {
			predictions[idx] = labels[j]
			s.cache.Add(req.Flights[idx].cacheKey(), labels[j])
		}
	}

	s.stats.RecordPredictions(predictions, cacheHits)
	if s.audit {
		go s.auditPredictions(req.Flights, predictions)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(predictResponse{Predict: predictions})
}

func (s *PredictService) auditPredictions(requests []FlightRequest, labels []int) {
	for i, flight := range requests {
		if err := db.SavePrediction(flight.Carrier, flight.FlightType, flight.Month, labels[i]); err != nil {
			s.logger.Warn("prediction audit failed", zap.Error(err))
			return
		}
	}
}

func (s *PredictService) handleRecentPredictions(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil {
			limit = l
		}
	}

	// Without auditing nothing is ever logged, so answer an empty list
	// instead of failing on the missing database.
	rows := []db.PredictionRow{}
	if s.audit {
		var err error
		rows, err = db.RecentPredictions(limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if rows == nil {
			rows = []db.PredictionRow{}
		}
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{"predictions": rows})
}

func writeError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}

func (f FlightRequest) cacheKey() string {
	return f.Carrier + "|" + f.FlightType + "|" + strconv.Itoa(f.Month)
}
