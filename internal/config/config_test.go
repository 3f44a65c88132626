package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestNewConfigDefaults(t *testing.T) {
	t.Setenv("PORT", "8080")
	for _, k := range []string{"LOG_LEVEL", "KAFKA_BROKERS", "KAFKA_TOPIC", "KAFKA_PUBLISH_TIMEOUT", "EVENT_QUEUE_SIZE"} {
		t.Setenv(k, "")
		require.NoError(t, os.Unsetenv(k))
	}

	cfg, err := NewConfig(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, logrus.InfoLevel, cfg.LogLevel)
	assert.Empty(t, cfg.KafkaBrokers)
	assert.False(t, cfg.EventsEnabled())
	assert.Equal(t, "penalty_payment_completed", cfg.KafkaTopic)
	assert.Equal(t, 5*time.Second, cfg.KafkaPublishTimeout)
	assert.Equal(t, 256, cfg.EventQueueSize)
}

func TestNewConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("KAFKA_BROKERS", "kafka-1:9092, kafka-2:9092,")
	t.Setenv("KAFKA_TOPIC", "fines")
	t.Setenv("KAFKA_PUBLISH_TIMEOUT", "250ms")
	t.Setenv("EVENT_QUEUE_SIZE", "16")

	cfg, err := NewConfig(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, logrus.DebugLevel, cfg.LogLevel)
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, cfg.KafkaBrokers)
	assert.True(t, cfg.EventsEnabled())
	assert.Equal(t, "fines", cfg.KafkaTopic)
	assert.Equal(t, 250*time.Millisecond, cfg.KafkaPublishTimeout)
	assert.Equal(t, 16, cfg.EventQueueSize)
}

func TestNewConfigReadsEnvFile(t *testing.T) {
	t.Setenv("PORT", "")
	require.NoError(t, os.Unsetenv("PORT"))
	t.Setenv("LOG_LEVEL", "warn")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=7070\nLOG_LEVEL=trace\n"), 0o600))

	cfg, err := NewConfig(path)
	require.NoError(t, err)

	assert.Equal(t, "7070", cfg.Port)
	// variables already in the environment win over the file
	assert.Equal(t, logrus.WarnLevel, cfg.LogLevel)
}

func TestNewConfigRejectsBadValues(t *testing.T) {
	t.Run("unknown log level", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "loud")
		_, err := NewConfig(missingEnvFile(t))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "LOG_LEVEL")
	})

	t.Run("non-numeric queue size", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "info")
		t.Setenv("EVENT_QUEUE_SIZE", "lots")
		_, err := NewConfig(missingEnvFile(t))
		require.Error(t, err)
	})

	t.Run("zero queue size", func(t *testing.T) {
		t.Setenv("LOG_LEVEL", "info")
		t.Setenv("EVENT_QUEUE_SIZE", "0")
		_, err := NewConfig(missingEnvFile(t))
		require.Error(t, err)
	})

	t.Run("invalid publish timeout", func(t *testing.T) {
		t.Setenv("KAFKA_PUBLISH_TIMEOUT", "soon")
		_, err := NewConfig(missingEnvFile(t))
		require.Error(t, err)
	})

	t.Run("empty port", func(t *testing.T) {
		t.Setenv("KAFKA_PUBLISH_TIMEOUT", "1s")
		t.Setenv("PORT", "")
		_, err := NewConfig(missingEnvFile(t))
		require.Error(t, err)
	})

	t.Run("brokers without topic", func(t *testing.T) {
		t.Setenv("KAFKA_PUBLISH_TIMEOUT", "1s")
		t.Setenv("PORT", "8080")
		t.Setenv("KAFKA_BROKERS", "localhost:9092")
		t.Setenv("KAFKA_TOPIC", "")
		_, err := NewConfig(missingEnvFile(t))
		require.Error(t, err)
	})
}
