// Package events publishes and consumes article-ingested events over Kafka,
// decoupling feed ingestion from vector indexing.
package events

import (
	"encoding/json"
	"fmt"
	"time"

	"newsweave/types"

	"github.com/IBM/sarama"
)

// ArticleEvent is the message published for every newly ingested article.
type ArticleEvent struct {
	Article    types.Article `json:"article"`
	IngestedAt time.Time     `json:"ingested_at"`
}

// Producer publishes article events to a single topic.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer connects a synchronous producer. Acks from all in-sync
// replicas; the pipeline is a periodic batch job, so latency is irrelevant
// next to not losing events.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Version = sarama.V3_6_0_0
	cfg.Producer.RequiredAcks = sarama.WaitForAll
	cfg.Producer.Retry.Max = 3
	cfg.Producer.Return.Successes = true

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &Producer{producer: producer, topic: topic}, nil
}

// PublishArticle sends one article event keyed by article ID.
func (p *Producer) PublishArticle(article types.Article) error {
	payload, err := json.Marshal(ArticleEvent{Article: article, IngestedAt: time.Now()})
	if err != nil {
		return fmt.Errorf("failed to encode article event: %w", err)
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(article.ID),
		Value: sarama.ByteEncoder(payload),
	})
	if err != nil {
		return fmt.Errorf("failed to publish article %s: %w", article.ID, err)
	}
	return nil
}

func (p *Producer) Close() error {
	return p.producer.Close()
}
