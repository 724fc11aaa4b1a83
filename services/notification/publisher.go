package notification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"servicehub/models"
	"servicehub/services/tasks"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// Enqueuer is the part of *asynq.Client used for publishing.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// QueuePublisher enqueues a durable lifecycle task for the notification worker.
type QueuePublisher struct {
	client Enqueuer
}

func NewQueuePublisher(client Enqueuer) *QueuePublisher {
	return &QueuePublisher{client: client}
}

func (p *QueuePublisher) Publish(ctx context.Context, event models.LifecycleEvent) error {
	task, opts, err := tasks.NewLifecycleTask(event)
	if err != nil {
		return fmt.Errorf("failed to build lifecycle task: %w", err)
	}
	if _, err := p.client.EnqueueContext(ctx, task, opts...); err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) {
			return nil
		}
		return fmt.Errorf("failed to enqueue lifecycle event for booking %s: %w", event.BookingID, err)
	}
	return nil
}

// ChannelPublisher broadcasts lifecycle events on a Redis pub/sub channel for
// live subscribers such as dashboards.
type ChannelPublisher struct {
	client  *redis.Client
	channel string
}

func NewChannelPublisher(client *redis.Client, channel string) *ChannelPublisher {
	return &ChannelPublisher{client: client, channel: channel}
}

func (p *ChannelPublisher) Publish(ctx context.Context, event models.LifecycleEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if err := p.client.Publish(ctx, p.channel, b).Err(); err != nil {
		return fmt.Errorf("failed to publish lifecycle event on %s: %w", p.channel, err)
	}
	return nil
}
