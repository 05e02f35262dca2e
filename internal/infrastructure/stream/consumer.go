package stream

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"

	"github.com/sima-oba/auth-service/internal/core/domain/owner"
	"github.com/sima-oba/auth-service/internal/core/ports"
)

var ownerEventsProcessed = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_owner_events_processed_total",
		Help: "Total number of owner events consumed from the owner stream",
	},
	[]string{"result"},
)

func init() {
	prometheus.MustRegister(ownerEventsProcessed)
}

// ConsumerConfig holds the owner stream consumer configuration.
type ConsumerConfig struct {
	Stream       string
	Group        string
	Consumer     string
	BatchSize    int64
	BlockTimeout time.Duration
	ClaimMinIdle time.Duration
}

// OwnerConsumer reads owner events from a Redis stream consumer group and
// feeds them to the importer. Messages are acknowledged only after a
// successful import, so delivery is at least once and the importer must be
// idempotent.
type OwnerConsumer struct {
	config   *ConsumerConfig
	client   *redis.Client
	importer ports.OwnerImporter
	logger   *logrus.Logger
}

func NewOwnerConsumer(config *ConsumerConfig, client *redis.Client, importer ports.OwnerImporter, logger *logrus.Logger) *OwnerConsumer {
	return &OwnerConsumer{
		config:   config,
		client:   client,
		importer: importer,
		logger:   logger,
	}
}

// Run consumes the owner stream until the context is canceled. It creates
// the consumer group if needed, periodically claims messages abandoned by
// dead consumers, and blocks on new entries in between.
func (c *OwnerConsumer) Run(ctx context.Context) error {
	if err := c.ensureGroup(ctx); err != nil {
		return err
	}

	c.logger.WithFields(logrus.Fields{
		"stream":   c.config.Stream,
		"group":    c.config.Group,
		"consumer": c.config.Consumer,
	}).Info("owner consumer started")

	for {
		if err := ctx.Err(); err != nil {
			c.logger.Info("owner consumer stopped")
			return err
		}

		c.claimAbandoned(ctx)

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    c.config.Group,
			Consumer: c.config.Consumer,
			Streams:  []string{c.config.Stream, ">"},
			Count:    c.config.BatchSize,
			Block:    c.config.BlockTimeout,
		}).Result()
		if err != nil {
			if err == redis.Nil {
				continue
			}
			if ctx.Err() != nil {
				c.logger.Info("owner consumer stopped")
				return ctx.Err()
			}
			c.logger.WithError(err).Error("failed to read owner stream")
			time.Sleep(time.Second)
			continue
		}

		for _, s := range streams {
			for _, msg := range s.Messages {
				c.process(ctx, msg)
			}
		}
	}
}

func (c *OwnerConsumer) ensureGroup(ctx context.Context) error {
	err := c.client.XGroupCreateMkStream(ctx, c.config.Stream, c.config.Group, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// claimAbandoned transfers messages that sat pending on another consumer for
// too long, so a crashed replica does not strand its deliveries.
func (c *OwnerConsumer) claimAbandoned(ctx context.Context) {
	messages, _, err := c.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   c.config.Stream,
		Group:    c.config.Group,
		Consumer: c.config.Consumer,
		MinIdle:  c.config.ClaimMinIdle,
		Start:    "0-0",
		Count:    c.config.BatchSize,
	}).Result()
	if err != nil && err != redis.Nil {
		c.logger.WithError(err).Warn("failed to claim abandoned owner events")
		return
	}

	for _, msg := range messages {
		c.process(ctx, msg)
	}
}

func (c *OwnerConsumer) process(ctx context.Context, msg redis.XMessage) {
	evt, err := decodeEvent(msg)
	if err != nil {
		// Malformed entries would otherwise be redelivered forever.
		c.logger.WithFields(logrus.Fields{
			"message_id": msg.ID,
		}).WithError(err).Error("discarding malformed owner event")
		ownerEventsProcessed.WithLabelValues("malformed").Inc()
		c.ack(ctx, msg.ID)
		return
	}

	if err := c.importer.ImportOwner(ctx, evt); err != nil {
		// Leave the message pending; it will be retried or reclaimed.
		c.logger.WithFields(logrus.Fields{
			"message_id": msg.ID,
			"doc":        evt.Doc,
		}).WithError(err).Error("failed to import owner")
		ownerEventsProcessed.WithLabelValues("error").Inc()
		return
	}

	ownerEventsProcessed.WithLabelValues("success").Inc()
	c.ack(ctx, msg.ID)
}

func (c *OwnerConsumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, c.config.Stream, c.config.Group, id).Err(); err != nil {
		c.logger.WithFields(logrus.Fields{
			"message_id": id,
		}).WithError(err).Warn("failed to ack owner event")
	}
}

func decodeEvent(msg redis.XMessage) (*owner.Event, error) {
	raw, ok := msg.Values["payload"]
	if !ok {
		return nil, errMissingPayload
	}

	payload, ok := raw.(string)
	if !ok {
		return nil, errMissingPayload
	}

	var evt owner.Event
	if err := json.Unmarshal([]byte(payload), &evt); err != nil {
		return nil, err
	}

	if evt.Doc == "" {
		return nil, errMissingDoc
	}

	return &evt, nil
}

type decodeError string

func (e decodeError) Error() string { return string(e) }

const (
	errMissingPayload = decodeError("owner event has no payload field")
	errMissingDoc     = decodeError("owner event has no doc")
)
