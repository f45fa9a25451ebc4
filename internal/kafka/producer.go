package kafka

import (
	"context"
	"time"

	"github.com/segmentio/kafka-go"
)

// outbox配送用のプロデューサ。
// 書き込みは同期（RequireAll）。失敗はそのまま返して、outbox側で再送させる
type Producer struct {
	w *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		w: &kafka.Writer{
			Addr: kafka.TCP(brokers...),
			//パーティションキーで1注文/1商品のイベント順序を保つ
			Balancer:               &kafka.Hash{},
			RequiredAcks:           kafka.RequireAll,
			AllowAutoTopicCreation: true,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic string, key, value []byte) error {
	return p.w.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   key,
		Value: value,
		Time:  time.Now(),
	})
}

func (p *Producer) Close() error {
	return p.w.Close()
}
