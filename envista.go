// Package envista is a client for the IMS (Israel Meteorological Service)
// Envista API. It exposes station and region metadata, timeseries
// readings, and the catalog of measured variables, normalizing the
// service's loosely-typed JSON into a predictable model.
package envista

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// DefaultBaseURL is the production endpoint of the Envista API.
const DefaultBaseURL = "https://api.ims.gov.il/v1/envista"

const (
	defaultTimeout    = 30 * time.Second
	defaultMaxRetries = 3
)

// Client talks to the Envista API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	maxRetries uint64
	log        zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API endpoint.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout overrides the request timeout of the configured HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithMaxRetries sets how many times a failed request is retried.
func WithMaxRetries(n uint64) Option {
	return func(c *Client) { c.maxRetries = n }
}

// WithLogger attaches a logger for request and diagnostic events.
func WithLogger(log zerolog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// New creates a Client authenticated with the given API token.
func New(token string, options ...Option) (*Client, error) {
	if token == "" {
		return nil, errors.New("envista: token is required")
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		token:   token,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   defaultTimeout,
		},
		maxRetries: defaultMaxRetries,
		log:        zerolog.Nop(),
	}
	for _, opt := range options {
		opt(c)
	}
	return c, nil
}

func (c *Client) url(parts ...string) string {
	return c.baseURL + "/" + strings.Join(parts, "/")
}

// channelPart yields the optional channel path segment. A channelID of 0
// selects all channels.
func channelPart(channelID int) []string {
	if channelID > 0 {
		return []string{strconv.Itoa(channelID)}
	}
	return nil
}

func (c *Client) stationDataURL(stationID, channelID int, trailing ...string) string {
	parts := []string{"stations", strconv.Itoa(stationID), "data"}
	parts = append(parts, channelPart(channelID)...)
	parts = append(parts, trailing...)
	return c.url(parts...)
}

func (c *Client) getStationData(ctx context.Context, url string) (*StationReadings, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return StationReadingsFromJSON(body)
}

// GetAllStationsInfo fetches the metadata of every station.
func (c *Client) GetAllStationsInfo(ctx context.Context) ([]StationInfo, error) {
	body, err := c.get(ctx, c.url("stations"))
	if err != nil {
		return nil, err
	}
	return StationsInfoFromJSON(body)
}

// GetStationInfo fetches the metadata of one station.
func (c *Client) GetStationInfo(ctx context.Context, stationID int) (*StationInfo, error) {
	body, err := c.get(ctx, c.url("stations", strconv.Itoa(stationID)))
	if err != nil {
		return nil, err
	}
	return StationInfoFromJSON(body)
}

// GetAllRegionsInfo fetches the metadata of every region.
func (c *Client) GetAllRegionsInfo(ctx context.Context) ([]RegionInfo, error) {
	body, err := c.get(ctx, c.url("regions"))
	if err != nil {
		return nil, err
	}
	return RegionsInfoFromJSON(body)
}

// GetRegionInfo fetches the metadata of one region.
func (c *Client) GetRegionInfo(ctx context.Context, regionID int) (*RegionInfo, error) {
	body, err := c.get(ctx, c.url("regions", strconv.Itoa(regionID)))
	if err != nil {
		return nil, err
	}
	return RegionInfoFromJSON(body)
}

// GetLatestStationData fetches the most recent readings of a station.
// A channelID of 0 selects all channels.
func (c *Client) GetLatestStationData(ctx context.Context, stationID, channelID int) (*StationReadings, error) {
	return c.getStationData(ctx, c.stationDataURL(stationID, channelID, "latest"))
}

// GetEarliestStationData fetches the oldest available readings of a
// station. A channelID of 0 selects all channels.
func (c *Client) GetEarliestStationData(ctx context.Context, stationID, channelID int) (*StationReadings, error) {
	return c.getStationData(ctx, c.stationDataURL(stationID, channelID, "earliest"))
}

// GetDailyStationData fetches the readings of the current day.
// A channelID of 0 selects all channels.
func (c *Client) GetDailyStationData(ctx context.Context, stationID, channelID int) (*StationReadings, error) {
	return c.getStationData(ctx, c.stationDataURL(stationID, channelID, "daily"))
}

// GetStationDataFromDate fetches the readings of one calendar day.
// A channelID of 0 selects all channels.
func (c *Client) GetStationDataFromDate(ctx context.Context, stationID, channelID int, day time.Time) (*StationReadings, error) {
	url := c.stationDataURL(stationID, channelID, "daily",
		strconv.Itoa(day.Year()), strconv.Itoa(int(day.Month())), strconv.Itoa(day.Day()))
	return c.getStationData(ctx, url)
}

// GetStationDataByDateRange fetches the readings between two calendar
// days, inclusive. A channelID of 0 selects all channels.
func (c *Client) GetStationDataByDateRange(ctx context.Context, stationID, channelID int, from, to time.Time) (*StationReadings, error) {
	url := fmt.Sprintf("%s?from=%04d/%02d/%02d&to=%04d/%02d/%02d",
		c.stationDataURL(stationID, channelID),
		from.Year(), from.Month(), from.Day(),
		to.Year(), to.Month(), to.Day())
	return c.getStationData(ctx, url)
}

// GetMonthlyStationData fetches the readings of a month. A zero year or
// month selects the current month; a channelID of 0 selects all channels.
func (c *Client) GetMonthlyStationData(ctx context.Context, stationID, channelID, year int, month time.Month) (*StationReadings, error) {
	if year == 0 || month == 0 {
		return c.getStationData(ctx, c.stationDataURL(stationID, channelID, "monthly"))
	}
	url := c.stationDataURL(stationID, channelID, "monthly",
		strconv.Itoa(year), fmt.Sprintf("%02d", month))
	return c.getStationData(ctx, url)
}
