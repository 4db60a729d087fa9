package worker

import (
	"context"
	"errors"

	apperrors "github.com/sam-nazarian/event-booking-practice/pkg/app_errors"

	"github.com/sam-nazarian/event-booking-practice/internal/queue"
	"github.com/sam-nazarian/event-booking-practice/internal/service"
	"github.com/sam-nazarian/event-booking-practice/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// RatingWorker 消費重算任務的單一寫入者；同一時間只有它在寫活動的評分聚合
type RatingWorker interface {
	Start(ctx context.Context) error
}

type RatingWorkerImpl struct {
	aggregator service.RatingAggregator
	queue      queue.RatingQueue
}

func NewRatingWorker(aggregator service.RatingAggregator, queue queue.RatingQueue) RatingWorker {
	return &RatingWorkerImpl{
		aggregator: aggregator,
		queue:      queue,
	}
}

func (w *RatingWorkerImpl) Start(ctx context.Context) error {
	msgs, err := w.queue.SubscribeRecomputes(ctx)
	if err != nil {
		return err
	}

	go func() {
		for msg := range msgs {
			eventID, err := primitive.ObjectIDFromHex(msg.Data.EventID)
			if err != nil {
				// 壞掉的任務重試也不會好，直接結案
				logger.WithComponent("worker").Warn("invalid event id in job", zap.String("event_id", msg.Data.EventID))
				msg.Ack()
				continue
			}

			err = w.aggregator.Recompute(ctx, eventID)
			switch {
			case err == nil:
				msg.Ack()
			case errors.Is(err, apperrors.ErrEventNotFound):
				// 活動已經不在了，重試不會好
				logger.WithComponent("worker").Warn("recompute target gone", zap.String("event_id", msg.Data.EventID))
				msg.Ack()
			default:
				// 資料庫暫時連不上就重試，晚點重算一樣會收斂
				logger.WithComponent("worker").Warn("recompute failed, will retry",
					zap.String("event_id", msg.Data.EventID), zap.Error(err))
				msg.Nack(true)
			}
		}
	}()
	return nil
}
