package repository

import (
	"context"
	"time"

	"app/internal/domain/model"
)

type OutboxRepository interface {
	// コアの更新と同じトランザクションで積む
	Create(ctx context.Context, ev model.OutboxEvent) error

	// PENDINGをID昇順で最大limit件ロックして返す（SKIP LOCKED）。
	// ディスパッチャが複数いても同じ行を二重に掴まない
	ClaimPending(ctx context.Context, limit int) ([]model.OutboxEvent, error)

	MarkDispatched(ctx context.Context, ids []int64, at time.Time) error
}
