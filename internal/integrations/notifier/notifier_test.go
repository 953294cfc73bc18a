package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-TourService/pkg/logger"
)

type fakePublisher struct {
	channel   string
	message   []byte
	receivers int64
	err       error
}

func (p *fakePublisher) Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd {
	p.channel = channel
	p.message, _ = message.([]byte)
	return redis.NewIntResult(p.receivers, p.err)
}

func TestNotifyPublishesMessage(t *testing.T) {
	pub := &fakePublisher{receivers: 1}
	n := NewNotifier(pub, "tour-notifications", logger.NewNop())
	n.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, n.Notify(context.Background(), "driver", 42, "trip_assigned"))

	assert.Equal(t, "tour-notifications", pub.channel)

	var msg Message
	require.NoError(t, json.Unmarshal(pub.message, &msg))
	assert.Equal(t, Message{
		Recipient: "driver",
		BookingID: 42,
		Event:     "trip_assigned",
		SentAt:    time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}, msg)
}

func TestNotifyWithoutSubscribersIsNotAnError(t *testing.T) {
	n := NewNotifier(&fakePublisher{}, "c", logger.NewNop())
	assert.NoError(t, n.Notify(context.Background(), "customer", 1, "trip_assigned"))
}

func TestNotifyPublishFailure(t *testing.T) {
	n := NewNotifier(&fakePublisher{err: errors.New("connection refused")}, "c", logger.NewNop())

	err := n.Notify(context.Background(), "driver", 1, "trip_assigned")
	assert.ErrorIs(t, err, ErrPublish)
}
