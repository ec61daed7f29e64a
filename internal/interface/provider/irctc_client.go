package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"railcast-service/internal/domain/entity"
	"railcast-service/internal/domain/repository"
	"railcast-service/pkg/logger"

	"github.com/go-playground/validator/v10"
)

const maxResponseBytes = 10 << 20

// IRCTCClient calls the IRCTC RapidAPI train data provider
type IRCTCClient struct {
	baseURL    string
	host       string
	apiKey     string
	httpClient *http.Client
	validate   *validator.Validate
	logger     logger.Logger
}

// NewIRCTCClient creates a new provider client. Every call is bounded by timeout.
func NewIRCTCClient(baseURL, host, apiKey string, timeout time.Duration, logger logger.Logger) repository.TrainProvider {
	return &IRCTCClient{
		baseURL:    baseURL,
		host:       host,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		validate:   validator.New(),
		logger:     logger,
	}
}

type trainsByStationResponse struct {
	Status  bool   `json:"status"`
	Message string `json:"message"`
	Data    *struct {
		Passing []entity.TrainRecord `json:"passing" validate:"required,dive"`
	} `json:"data"`
}

type searchStationResponse struct {
	Status  bool             `json:"status"`
	Message string           `json:"message"`
	Data    []entity.Station `json:"data" validate:"dive"`
}

type liveTrainStatusResponse struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    *liveStatusData `json:"data"`
}

type liveStatusData struct {
	TrainNumber        string               `json:"train_number"`
	TrainName          string               `json:"train_name"`
	Source             string               `json:"source"`
	Destination        string               `json:"destination"`
	SourceStnName      string               `json:"source_stn_name"`
	DestStnName        string               `json:"dest_stn_name"`
	CurrentStationCode string               `json:"current_station_code"`
	CurrentStationName string               `json:"current_station_name"`
	Status             string               `json:"status"`
	PlatformNumber     int                  `json:"platform_number"`
	NextStationCode    string               `json:"next_station_code"`
	NextStationName    string               `json:"next_station_name"`
	UpcomingStations   []entity.StationStop `json:"upcoming_stations"`
	PreviousStations   []entity.StationStop `json:"previous_stations"`
}

// TrainsByStation returns the trains passing a station
func (c *IRCTCClient) TrainsByStation(ctx context.Context, stationCode string) ([]entity.TrainRecord, error) {
	query := url.Values{"stationCode": {stationCode}}

	var resp trainsByStationResponse
	if err := c.get(ctx, "/api/v3/getTrainsByStation", query, &resp); err != nil {
		return nil, err
	}

	if !resp.Status {
		return nil, fmt.Errorf("%w: station %s: %s", entity.ErrProviderFailure, stationCode, resp.Message)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: station %s: missing data", entity.ErrMalformedPayload, stationCode)
	}
	if err := c.validate.Struct(resp.Data); err != nil {
		return nil, fmt.Errorf("%w: station %s: %v", entity.ErrMalformedPayload, stationCode, err)
	}

	return resp.Data.Passing, nil
}

// SearchStations returns the stations matching a city or station name
func (c *IRCTCClient) SearchStations(ctx context.Context, query string) ([]entity.Station, error) {
	var resp searchStationResponse
	if err := c.get(ctx, "/api/v1/searchStation", url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}

	if !resp.Status {
		return nil, fmt.Errorf("%w: search %q: %s", entity.ErrProviderFailure, query, resp.Message)
	}
	if err := c.validate.Struct(resp); err != nil {
		return nil, fmt.Errorf("%w: search %q: %v", entity.ErrMalformedPayload, query, err)
	}

	return resp.Data, nil
}

// LiveTrainStatus returns the filtered live running status of a train
func (c *IRCTCClient) LiveTrainStatus(ctx context.Context, trainNo string, startDay int) (*entity.LiveTrainStatus, error) {
	query := url.Values{
		"trainNo":  {trainNo},
		"startDay": {strconv.Itoa(startDay)},
	}

	var resp liveTrainStatusResponse
	if err := c.get(ctx, "/api/v1/liveTrainStatus", query, &resp); err != nil {
		return nil, err
	}

	if !resp.Status || resp.Data == nil {
		return nil, fmt.Errorf("%w: train %s", entity.ErrNotFound, trainNo)
	}

	return filterLiveStatus(resp.Data), nil
}

// filterLiveStatus keeps the fields clients use. Without upcoming stations, the next
// station (when known) becomes the only upcoming stop.
func filterLiveStatus(d *liveStatusData) *entity.LiveTrainStatus {
	status := &entity.LiveTrainStatus{
		TrainNumber:        d.TrainNumber,
		TrainName:          d.TrainName,
		Source:             d.Source,
		Destination:        d.Destination,
		SourceStnName:      d.SourceStnName,
		DestStnName:        d.DestStnName,
		CurrentStationCode: d.CurrentStationCode,
		CurrentStationName: d.CurrentStationName,
		Status:             d.Status,
		PlatformNumber:     d.PlatformNumber,
		UpcomingStations:   []entity.StationStop{},
		PreviousStations:   []entity.StationStop{},
	}

	if len(d.PreviousStations) > 0 {
		status.PreviousStations = d.PreviousStations
	}

	if len(d.UpcomingStations) > 0 {
		status.UpcomingStations = d.UpcomingStations
	} else if d.NextStationCode != "" && d.NextStationName != "" {
		status.UpcomingStations = []entity.StationStop{{
			StationCode: d.NextStationCode,
			StationName: d.NextStationName,
		}}
	}

	return status
}

func (c *IRCTCClient) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	endpoint := c.baseURL + path + "?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-rapidapi-key", c.apiKey)
	req.Header.Set("x-rapidapi-host", c.host)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to call provider %s: %w", path, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("Provider call completed",
		"path", path,
		"status", resp.StatusCode,
		"duration", time.Since(start).String())

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("failed to read provider response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned status %d", entity.ErrProviderFailure, path, resp.StatusCode)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s: %v", entity.ErrMalformedPayload, path, err)
	}

	return nil
}
