package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"
)

// Client submits jobs to the queue.
type Client struct {
	client *asynq.Client
}

// NewClient constructs an Asynq client.
func NewClient(redisOpts asynq.RedisClientOpt) *Client {
	return &Client{client: asynq.NewClient(redisOpts)}
}

// EnqueuePayrollCompute queues a payroll run and returns the task id. A run
// already queued for the same company and period yields ErrDuplicateTask.
func (c *Client) EnqueuePayrollCompute(ctx context.Context, payload PayrollComputePayload) (string, error) {
	task, err := NewPayrollComputeTask(payload)
	if err != nil {
		return "", err
	}
	return c.enqueue(ctx, task)
}

// EnqueueMasterDataWarmup queues a cache warmup.
func (c *Client) EnqueueMasterDataWarmup(ctx context.Context, payload MasterDataWarmupPayload) (string, error) {
	task, err := NewMasterDataWarmupTask(payload)
	if err != nil {
		return "", err
	}
	return c.enqueue(ctx, task)
}

func (c *Client) enqueue(ctx context.Context, task *asynq.Task) (string, error) {
	info, err := c.client.EnqueueContext(ctx, task, asynq.Queue(QueueDefault))
	if err != nil {
		if errors.Is(err, asynq.ErrTaskIDConflict) || errors.Is(err, asynq.ErrDuplicateTask) {
			return "", ErrDuplicateTask
		}
		return "", err
	}
	return info.ID, nil
}

// Close releases client resources.
func (c *Client) Close() error {
	return c.client.Close()
}
