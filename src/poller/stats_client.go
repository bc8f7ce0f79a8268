package poller

import (
	"context"
	"encoding/json"
	"fmt"

	"sensor-dashboard/src/helpers"
	"sensor-dashboard/src/interfaces"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"
)

// StatsClient reads StatsResponse payloads from the stats endpoint.
type StatsClient struct {
	URL     string
	Network interfaces.INetworkManager
	Logger  *logger.Logger
}

// -----------------------------------------------------------------------------

func NewStatsClient(url string, network interfaces.INetworkManager, log *logger.Logger) *StatsClient {
	return &StatsClient{
		URL:     url,
		Network: network,
		Logger:  log,
	}
}

// -----------------------------------------------------------------------------

// FetchStats performs GET <url>?interval=<interval>.
func (s *StatsClient) FetchStats(ctx context.Context, interval string) (*models.MStatsResponse, error) {
	var params map[string]string
	if interval != "" {
		params = map[string]string{"interval": interval}
	}

	body, err := s.Network.Get(ctx, s.URL, params)
	if err != nil {
		return nil, err
	}

	var resp models.MStatsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, helpers.NewDecodeError("invalid stats payload", err)
	}

	for name, series := range map[string]*models.MChannelSeries{
		models.ChannelTemperature: resp.Temperature,
		models.ChannelCO2:         resp.CO2,
	} {
		if series == nil {
			continue
		}
		if len(series.Timestamps) != len(series.Stats) {
			return nil, helpers.NewDecodeError(
				fmt.Sprintf("%s series has %d timestamps for %d stats", name, len(series.Timestamps), len(series.Stats)), nil)
		}
	}

	s.Logger.Debug("Fetched stats (interval=%q): %d temperature, %d co2 buckets",
		interval, resp.Temperature.Len(), resp.CO2.Len())
	return &resp, nil
}
