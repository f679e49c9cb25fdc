package kafka

import (
	"testing"
	"time"

	"github.com/IBM/sarama"
	"github.com/stretchr/testify/assert"
)

func TestProducerConfig(t *testing.T) {
	cfg := ProducerConfig(3, 250*time.Millisecond)

	assert.True(t, cfg.Producer.Return.Successes)
	assert.Equal(t, sarama.WaitForAll, cfg.Producer.RequiredAcks)
	assert.Equal(t, 3, cfg.Producer.Retry.Max)
	assert.Equal(t, 250*time.Millisecond, cfg.Producer.Retry.Backoff)
	assert.NoError(t, cfg.Validate())
}

func TestConsumerConfig(t *testing.T) {
	cfg := ConsumerConfig()

	assert.Equal(t, sarama.OffsetOldest, cfg.Consumer.Offsets.Initial)
	assert.True(t, cfg.Consumer.Return.Errors)
	assert.Len(t, cfg.Consumer.Group.Rebalance.GroupStrategies, 1)
	assert.NoError(t, cfg.Validate())
}
