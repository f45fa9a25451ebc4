package outbox

import (
	"context"
	"time"

	repo "app/internal/repository"
	"app/internal/redisx"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Publisher は耐久チャネル（Kafka）への配送。
// 失敗はエラーで返す。バッチごとロールバックして次のポーリングで再送する
type Publisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// FanOut はリアルタイム配信（Redis pub/sub）。fire-and-forget。
// 失敗しても配送済み扱いにする（コアの正しさと通知チャネルを切り離す）
type FanOut interface {
	Publish(ctx context.Context, channel string, payload string) error
}

type RedisFanOut struct {
	rdb *redis.Client
}

func NewRedisFanOut(rdb *redis.Client) *RedisFanOut {
	return &RedisFanOut{rdb: rdb}
}

func (f *RedisFanOut) Publish(ctx context.Context, channel string, payload string) error {
	return f.rdb.Publish(ctx, channel, payload).Err()
}

// Dispatcher はoutboxのPENDING行を拾ってブローカーへ流す。
// コアのトランザクションが積むだけ積んで、配送はここが一手に引き受ける。
// at-least-once：配送失敗した行はPENDINGのまま残り、次のtickで再送される
type Dispatcher struct {
	tx        repo.TransactionManager
	pub       Publisher
	fanout    FanOut
	log       *zap.Logger
	interval  time.Duration
	batchSize int
}

func NewDispatcher(tx repo.TransactionManager, pub Publisher, fanout FanOut, log *zap.Logger, interval time.Duration, batchSize int) *Dispatcher {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Dispatcher{
		tx:        tx,
		pub:       pub,
		fanout:    fanout,
		log:       log,
		interval:  interval,
		batchSize: batchSize,
	}
}

func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := d.DispatchOnce(ctx)
			if err != nil {
				d.log.Warn("outbox dispatch failed, will retry", zap.Error(err))
				continue
			}
			if n > 0 {
				d.log.Info("outbox dispatched", zap.Int("count", n))
			}
		}
	}
}

// DispatchOnce は1バッチぶん配送する。配送できた件数を返す
func (d *Dispatcher) DispatchOnce(ctx context.Context) (int, error) {
	var n int

	err := d.tx.WithinTx(ctx, func(r repo.TxRepos) error {
		evs, err := r.Outbox().ClaimPending(ctx, d.batchSize)
		if err != nil {
			return err
		}
		if len(evs) == 0 {
			return nil
		}

		ids := make([]int64, 0, len(evs))
		for _, ev := range evs {
			if err := d.pub.Publish(ctx, ev.Topic, []byte(ev.Key), []byte(ev.Payload)); err != nil {
				//未送信のままロールバック→次回再送
				return err
			}

			if d.fanout != nil {
				if ch := redisx.ChannelFor(ev.EventType); ch != "" {
					if err := d.fanout.Publish(ctx, ch, ev.Payload); err != nil {
						d.log.Warn("realtime fan-out failed, skipping",
							zap.String("event_id", ev.EventID),
							zap.String("channel", ch),
							zap.Error(err),
						)
					}
				}
			}

			ids = append(ids, ev.ID)
		}

		if err := r.Outbox().MarkDispatched(ctx, ids, time.Now()); err != nil {
			return err
		}
		n = len(ids)
		return nil
	})

	if err != nil {
		return 0, err
	}
	return n, nil
}
