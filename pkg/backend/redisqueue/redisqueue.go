// Package redisqueue adapts Redis lists to gostream streams: a list is
// consumed as a Readable via BLPOP and fed as a Writable via RPUSH, so
// pipelines can span processes through a shared queue.
package redisqueue

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vnykmshr/gostream/pkg/stream"
)

// Config holds configuration for Redis-backed streams.
type Config struct {
	// Client is the Redis client to use. Required. The caller owns the
	// client; closing a stream does not close it.
	Client redis.UniversalClient

	// Key is the Redis list key. Required.
	Key string

	// EndToken, when non-empty, marks end of stream on the wire: a source
	// that pops it pushes the end marker instead of data, and a sink that
	// finishes appends it so downstream consumers terminate.
	EndToken string

	// PopTimeout bounds each blocking pop; between pops the source checks
	// whether it has been destroyed. Defaults to 1 second.
	PopTimeout time.Duration

	// OpTimeout bounds each push operation. Defaults to 5 seconds.
	OpTimeout time.Duration

	// HighWaterMark is passed through to the underlying stream. Defaults to
	// the stream default.
	HighWaterMark int

	// Logger, if set, receives operational logs. Defaults to a no-op logger.
	Logger *zap.Logger
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "redisqueue config error: " + e.Message
}

// RedisError represents a failed Redis operation.
type RedisError struct {
	Operation string
	Err       error
}

func (e *RedisError) Error() string {
	return "redis error in " + e.Operation + ": " + e.Err.Error()
}

func (e *RedisError) Unwrap() error {
	return e.Err
}

func validateConfig(config Config) error {
	if config.Client == nil {
		return &ConfigError{"redis client is required"}
	}
	if config.Key == "" {
		return &ConfigError{"key is required"}
	}
	return nil
}

func applyConfigDefaults(config Config) Config {
	if config.PopTimeout == 0 {
		config.PopTimeout = time.Second
	}
	if config.OpTimeout == 0 {
		config.OpTimeout = 5 * time.Second
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	return config
}

// NewSource creates a Readable that consumes the configured list. Each read
// cycle blocks on BLPOP until a value arrives; popping the end token (when
// configured) ends the stream. Redis failures other than pop timeouts destroy
// the stream. Destroy the stream to stop consuming.
func NewSource(config Config) (*stream.Readable[string], error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = applyConfigDefaults(config)

	return stream.NewReadableWithConfig(stream.ReadableConfig[string]{
		HighWaterMark: config.HighWaterMark,
		OnRead: func(r *stream.Readable[string], done func(error)) {
			for {
				if r.Destroyed() {
					return
				}
				res, err := config.Client.BLPop(context.Background(), config.PopTimeout, config.Key).Result()
				if errors.Is(err, redis.Nil) {
					// Pop timed out with the list empty; poll again.
					continue
				}
				if err != nil {
					config.Logger.Warn("blocking pop failed",
						zap.String("key", config.Key), zap.Error(err))
					done(&RedisError{"blpop", err})
					return
				}
				// BLPop returns [key, value].
				value := res[1]
				if config.EndToken != "" && value == config.EndToken {
					config.Logger.Debug("end token received", zap.String("key", config.Key))
					r.Push(stream.End[string]())
					done(nil)
					return
				}
				r.Push(stream.Data(value))
				done(nil)
				return
			}
		},
		OnDestroy: func(err error, done func(error)) {
			if err != nil {
				config.Logger.Warn("source destroyed",
					zap.String("key", config.Key), zap.Error(err))
			}
			done(nil)
		},
	}), nil
}

// NewSink creates a Writable that appends each chunk to the configured list.
// When the stream ends and an end token is configured, the token is appended
// after the last chunk.
func NewSink(config Config) (*stream.Writable[string], error) {
	if err := validateConfig(config); err != nil {
		return nil, err
	}
	config = applyConfigDefaults(config)

	push := func(value string) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.OpTimeout)
		defer cancel()
		if err := config.Client.RPush(ctx, config.Key, value).Err(); err != nil {
			return &RedisError{"rpush", err}
		}
		return nil
	}

	return stream.NewWritableWithConfig(stream.WritableConfig[string]{
		HighWaterMark: config.HighWaterMark,
		OnWrite: func(chunk string, done func(error)) {
			done(push(chunk))
		},
		OnFinal: func(done func(error)) {
			if config.EndToken == "" {
				done(nil)
				return
			}
			done(push(config.EndToken))
		},
		OnDestroy: func(err error, done func(error)) {
			if err != nil {
				config.Logger.Warn("sink destroyed",
					zap.String("key", config.Key), zap.Error(err))
			}
			done(nil)
		},
	}), nil
}
