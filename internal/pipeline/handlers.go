package pipeline

import (
	"context"
	"errors"

	"github.com/shaiso/Modelka/internal/mq"
)

// handleJobSubmitted обрабатывает команду job.submitted из очереди.
//
// Доменные отказы (job не найден, не PENDING, уже в очереди) не
// являются ошибкой обработки: retry их не исправит, сообщение ack'ается.
func (c *Controller) handleJobSubmitted(ctx context.Context, d *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.JobSubmittedPayload](&d.Message)
	if err != nil {
		// Retry некорректный payload не исправит — ack и дропаем.
		c.logger.Error("invalid job.submitted payload", "error", err)
		return nil
	}

	if err := c.Submit(ctx, payload.JobID); err != nil {
		if errors.Is(err, ErrJobNotFound) ||
			errors.Is(err, ErrJobNotPending) ||
			errors.Is(err, ErrAlreadyQueued) {
			c.logger.Warn("submit command rejected",
				"job_id", payload.JobID,
				"reason", err,
			)
			return nil
		}
		return err
	}
	return nil
}

// handleJobCancel обрабатывает команду job.cancel из очереди.
func (c *Controller) handleJobCancel(ctx context.Context, d *mq.Delivery) error {
	payload, err := mq.ParsePayload[mq.JobCancelPayload](&d.Message)
	if err != nil {
		c.logger.Error("invalid job.cancel payload", "error", err)
		return nil
	}

	return c.Cancel(ctx, payload.JobID)
}
