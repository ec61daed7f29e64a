package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"railcast-service/internal/domain/entity"
	"railcast-service/internal/domain/repository"
	"railcast-service/internal/usecase"
	"railcast-service/pkg/logger"
	"railcast-service/pkg/utils"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
)

// TrainHandler serves the read endpoints and the task triggers
type TrainHandler struct {
	stationRepo   repository.StationRepository
	trainRepo     repository.TrainRepository
	runRepo       repository.RefreshRunRepository
	provider      repository.TrainProvider
	tasks         usecase.TaskEnqueuer
	liveCache     *cache.Cache
	defaultRegion string
	logger        logger.Logger
}

// NewTrainHandler creates a new handler. runRepo may be nil.
func NewTrainHandler(
	stationRepo repository.StationRepository,
	trainRepo repository.TrainRepository,
	runRepo repository.RefreshRunRepository,
	provider repository.TrainProvider,
	tasks usecase.TaskEnqueuer,
	liveStatusTTL time.Duration,
	defaultRegion string,
	logger logger.Logger,
) *TrainHandler {
	return &TrainHandler{
		stationRepo:   stationRepo,
		trainRepo:     trainRepo,
		runRepo:       runRepo,
		provider:      provider,
		tasks:         tasks,
		liveCache:     cache.New(liveStatusTTL, 2*liveStatusTTL),
		defaultRegion: defaultRegion,
		logger:        logger,
	}
}

// Register adds the handler's routes to r
func (h *TrainHandler) Register(r *mux.Router) {
	r.HandleFunc("/fetch_and_store/{city}", h.FetchAndStore).Methods(http.MethodGet)
	r.HandleFunc("/tables", h.ListTables).Methods(http.MethodGet)
	r.HandleFunc("/table/{table_name}", h.GetTableData).Methods(http.MethodGet)
	r.HandleFunc("/trigger_train_update", h.TriggerTrainUpdate).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/get_trains/{station_code}", h.GetTrainsByStation).Methods(http.MethodGet)
	r.HandleFunc("/live-train-status/", h.GetLiveTrainStatus).Methods(http.MethodGet)
	r.HandleFunc("/refresh_runs", h.ListRefreshRuns).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
}

// FetchAndStore enqueues a station import for a city
func (h *TrainHandler) FetchAndStore(w http.ResponseWriter, r *http.Request) {
	city := mux.Vars(r)["city"]

	task, err := h.tasks.EnqueueImport(city)
	if err != nil {
		h.writeTaskError(w, err)
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": fmt.Sprintf("Station import for %s has been scheduled", city),
		"task_id": task.ID,
	})
}

// ListTables lists all tables in the database
func (h *TrainHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.stationRepo.ListTables(r.Context())
	if err != nil {
		h.logger.Error("Failed to list tables", "error", err)
		writeError(w, http.StatusInternalServerError, "Error listing tables")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"tables": tables})
}

// GetTableData returns the stations of a region table
func (h *TrainHandler) GetTableData(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["table_name"]

	stations, err := h.stationRepo.ListStations(r.Context(), name)
	if err != nil {
		h.writeStoreError(w, err, "Error fetching data for table "+name)
		return
	}

	data := make([]map[string]string, 0, len(stations))
	for _, s := range stations {
		data = append(data, map[string]string{
			"name":       s.Name,
			"code":       s.Code,
			"state_name": s.StateName,
		})
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": data})
}

// TriggerTrainUpdate enqueues a train refresh and returns immediately
func (h *TrainHandler) TriggerTrainUpdate(w http.ResponseWriter, r *http.Request) {
	region := r.URL.Query().Get("region")
	if region == "" {
		region = h.defaultRegion
	}

	task, err := h.tasks.EnqueueRefresh(region, entity.TriggerManual)
	if err != nil {
		h.writeTaskError(w, err)
		return
	}

	h.logger.Info("Triggered train update", "region", region, "taskID", task.ID)
	writeJSON(w, http.StatusAccepted, map[string]interface{}{
		"message": "Train update task has been scheduled",
		"region":  region,
		"task_id": task.ID,
	})
}

// GetTrainsByStation returns the cached trains of a station
func (h *TrainHandler) GetTrainsByStation(w http.ResponseWriter, r *http.Request) {
	code := mux.Vars(r)["station_code"]

	trains, err := h.trainRepo.FindByStation(r.Context(), code)
	if err != nil {
		h.writeStoreError(w, err, "Error fetching data for station "+code)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"data": trains})
}

// GetLiveTrainStatus returns the filtered live status of a train
func (h *TrainHandler) GetLiveTrainStatus(w http.ResponseWriter, r *http.Request) {
	trainNo := r.URL.Query().Get("train_no")
	if trainNo == "" {
		writeError(w, http.StatusBadRequest, "train_no is required")
		return
	}

	startDay := 1
	if v := r.URL.Query().Get("start_day"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeError(w, http.StatusBadRequest, "start_day must be a non-negative integer")
			return
		}
		startDay = n
	}

	key := fmt.Sprintf("live:%s:%d", trainNo, startDay)
	if cached, found := h.liveCache.Get(key); found {
		writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": cached})
		return
	}

	status, err := h.provider.LiveTrainStatus(r.Context(), trainNo, startDay)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Train data not found")
			return
		}
		h.logger.Error("Failed to fetch live train status", "trainNo", trainNo, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	h.liveCache.SetDefault(key, status)
	writeJSON(w, http.StatusOK, map[string]interface{}{"status": "success", "data": status})
}

// ListRefreshRuns returns recent refresh summaries
func (h *TrainHandler) ListRefreshRuns(w http.ResponseWriter, r *http.Request) {
	if h.runRepo == nil {
		writeError(w, http.StatusNotImplemented, "Refresh run log is not configured")
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.runRepo.FindRecent(r.Context(), r.URL.Query().Get("region"), limit)
	if err != nil {
		h.logger.Error("Failed to list refresh runs", "error", err)
		writeError(w, http.StatusInternalServerError, "Error listing refresh runs")
		return
	}
	if runs == nil {
		runs = []*entity.RefreshSummary{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

// Health reports liveness
func (h *TrainHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *TrainHandler) writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, utils.ErrInvalidIdentifier), errors.Is(err, usecase.ErrUnknownRegion):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, usecase.ErrQueueFull):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error("Failed to enqueue task", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func (h *TrainHandler) writeStoreError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, utils.ErrInvalidIdentifier):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, entity.ErrTableNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		h.logger.Error(msg, "error", err)
		writeError(w, http.StatusInternalServerError, msg)
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
