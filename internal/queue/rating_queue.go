package queue

import (
	"context"
)

// RecomputeJob 某個活動的評分聚合需要重算。
// EventID 是評論異動「之前」抓到的活動 id，刪除後也指得到正確的活動
type RecomputeJob struct {
	EventID string `json:"event_id"`
}

type Delivery struct {
	Data *RecomputeJob
	Ack  func()
	Nack func(requeue bool)
}

type RatingQueue interface {
	// 發送重算任務到隊列
	PublishRecompute(ctx context.Context, job *RecomputeJob) error
	// 訂閱重算任務
	SubscribeRecomputes(ctx context.Context) (<-chan Delivery, error)
}

type RatingQueueImpl struct {
	// 使用 Go channel 的單機版隊列；單一消費者天然序列化所有重算
	ch chan *RecomputeJob
}

func NewRatingQueue(bufferSize int) RatingQueue {
	return &RatingQueueImpl{
		ch: make(chan *RecomputeJob, bufferSize),
	}
}

func (q *RatingQueueImpl) PublishRecompute(ctx context.Context, job *RecomputeJob) error {
	select {
	case q.ch <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (q *RatingQueueImpl) SubscribeRecomputes(ctx context.Context) (<-chan Delivery, error) {
	out := make(chan Delivery)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case job, ok := <-q.ch:
				if !ok {
					return
				}

				out <- Delivery{
					Data: job,
					Ack:  func() { /* 記憶體版不用做特別動作 */ },
					Nack: func(requeue bool) {
						if requeue {
							q.ch <- job // 簡單模擬重回隊列
						}
					},
				}
			}
		}
	}()

	return out, nil
}
