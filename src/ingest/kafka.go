package ingest

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"sensor-dashboard/src/logger"
	"sensor-dashboard/src/models"

	"github.com/segmentio/kafka-go"
)

// messageFetcher is the part of *kafka.Reader the source consumes.
type messageFetcher interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// -----------------------------------------------------------------------------
// KafkaSource reads sensor messages from a Kafka topic as part of a consumer group.
// -----------------------------------------------------------------------------

type KafkaSource struct {
	Config models.MKafkaConfig
	Logger *logger.Logger

	// Backoff after a failed fetch.
	Backoff time.Duration

	mu      sync.Mutex
	fetcher messageFetcher
}

// -----------------------------------------------------------------------------

func NewKafkaSource(cfg models.MKafkaConfig, log *logger.Logger) *KafkaSource {
	return &KafkaSource{
		Config:  cfg,
		Logger:  log,
		Backoff: time.Second,
	}
}

func (s *KafkaSource) Name() string {
	return "kafka:" + s.Config.Topic
}

// -----------------------------------------------------------------------------

func (s *KafkaSource) Start(ctx context.Context, outputChan chan<- models.MSensorMessage, wg *sync.WaitGroup) error {
	s.mu.Lock()
	if s.fetcher == nil {
		s.fetcher = kafka.NewReader(kafka.ReaderConfig{
			Brokers:     s.Config.Brokers,
			GroupID:     s.Config.GroupID,
			Topic:       s.Config.Topic,
			StartOffset: kafka.LastOffset,
			MinBytes:    1,
			MaxBytes:    1e6,
		})
	}
	fetcher := s.fetcher
	s.mu.Unlock()

	s.Logger.Info("Consuming %s from %s (group %s)", s.Config.Topic, strings.Join(s.Config.Brokers, ","), s.Config.GroupID)

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer s.Stop()
		s.consume(ctx, fetcher, outputChan)
	}()
	return nil
}

// -----------------------------------------------------------------------------

func (s *KafkaSource) consume(ctx context.Context, fetcher messageFetcher, out chan<- models.MSensorMessage) {
	for {
		m, err := fetcher.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.EOF) || errors.Is(err, kafka.ErrGroupClosed) {
				return
			}
			s.Logger.Error("Kafka fetch failed: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(s.Backoff):
			}
			continue
		}

		msg, err := Decode(m.Value)
		if err != nil {
			s.Logger.Warning("Dropping message at offset %d: %v", m.Offset, err)
		} else if !deliver(ctx, out, msg) {
			return
		}

		if err := fetcher.CommitMessages(ctx, m); err != nil && ctx.Err() == nil {
			s.Logger.Warning("Commit of offset %d failed: %v", m.Offset, err)
		}
	}
}

// -----------------------------------------------------------------------------

func (s *KafkaSource) Stop() error {
	s.mu.Lock()
	fetcher := s.fetcher
	s.fetcher = nil
	s.mu.Unlock()

	if fetcher == nil {
		return nil
	}
	return fetcher.Close()
}
