package statsapi

import (
	"net/http"
	"time"

	"sensor-dashboard/src/config"
	"sensor-dashboard/src/interfaces"
	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"
	"sensor-dashboard/src/stats"
	"sensor-dashboard/src/utils"

	"github.com/gin-gonic/gin"
)

// FallbackInterval is used for a missing or unknown ?interval=.
const FallbackInterval = "1min"

// -----------------------------------------------------------------------------
// StatsAPI serves the aggregated buckets the dashboard polls.
// -----------------------------------------------------------------------------

type StatsAPI struct {
	Config *config.Config
	Store  interfaces.IBucketStore
	Latest *stats.LatestQueue
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewStatsAPI(cfg *config.Config, store interfaces.IBucketStore, latest *stats.LatestQueue, log *logger.Logger) *StatsAPI {
	return &StatsAPI{
		Config: cfg,
		Store:  store,
		Latest: latest,
		Logger: log,
	}
}

// Register mounts GET /stats and GET /latest.
func (a *StatsAPI) Register(r gin.IRoutes) {
	r.GET("/stats", a.getStats)
	r.GET("/latest", a.getLatest)
}

// -----------------------------------------------------------------------------

// Resolve maps a requested name onto a configured interval.
func (a *StatsAPI) Resolve(name string) models.MInterval {
	if in, ok := a.Config.Interval(name); ok {
		return in
	}
	if in, ok := a.Config.Interval(FallbackInterval); ok {
		return in
	}
	return a.Config.Intervals[0]
}

// Build assembles the response for one interval.
func (a *StatsAPI) Build(interval models.MInterval) (*models.MStatsResponse, error) {
	resp := &models.MStatsResponse{}
	for _, ch := range []string{models.ChannelTemperature, models.ChannelCO2} {
		records, err := a.Store.Query(ch, interval.BucketSeconds, a.Config.Stats.Limit)
		if err != nil {
			return nil, err
		}

		series := &models.MChannelSeries{
			Timestamps: make([]string, 0, len(records)),
			Stats:      make([]models.MStatBucket, 0, len(records)),
			Interval:   interval.Name,
		}
		for _, r := range records {
			series.Timestamps = append(series.Timestamps, Label(r.StartTime, interval.BucketSeconds))
			series.Stats = append(series.Stats, r.Stat())
		}

		if ch == models.ChannelTemperature {
			resp.Temperature = series
		} else {
			resp.CO2 = series
		}
	}
	return resp, nil
}

// Label formats a bucket start: day buckets by date, others by UTC time of day.
func Label(start int64, bucketSeconds int64) string {
	t := time.Unix(start, 0).UTC()
	if bucketSeconds >= utils.DaySeconds {
		return t.Format("2006-01-02")
	}
	return t.Format("15:04")
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (a *StatsAPI) getStats(c *gin.Context) {
	interval := a.Resolve(c.Query("interval"))

	resp, err := a.Build(interval)
	if err != nil {
		a.Logger.Error("Failed to build stats for %s: %v", interval.Name, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read statistics"})
		return
	}
	c.JSON(http.StatusOK, resp)
}

// -----------------------------------------------------------------------------

func (a *StatsAPI) getLatest(c *gin.Context) {
	c.JSON(http.StatusOK, a.Latest.Snapshot())
}
