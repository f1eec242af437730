// Package cronsource produces stream chunks on a cron schedule: each firing
// generates one chunk and pushes it into a Readable, dropping ticks while the
// buffer is full so a slow consumer never backs up the clock.
package cronsource

import (
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/vnykmshr/gostream/pkg/stream"
)

// Config holds configuration for a cron-driven source.
type Config[T any] struct {
	// Spec is a cron expression in the standard five-field format, or a
	// descriptor such as "@hourly" or "@every 30s". Required unless
	// Schedule is set.
	Spec string

	// Schedule overrides Spec with a pre-built schedule.
	Schedule cron.Schedule

	// Generate builds the chunk for one firing. Required.
	Generate func(t time.Time) T

	// Count, when positive, ends the stream after that many chunks.
	Count int

	// HighWaterMark bounds the buffer; firings that land on a full buffer
	// are dropped and counted. Defaults to the stream default.
	HighWaterMark int

	// Location is the time zone for schedule evaluation. Defaults to the
	// local time zone.
	Location *time.Location

	// Logger, if set, receives operational logs. Defaults to a no-op logger.
	Logger *zap.Logger
}

// ConfigError represents a configuration error.
type ConfigError struct {
	Message string
}

func (e *ConfigError) Error() string {
	return "cronsource config error: " + e.Message
}

// Source is a Readable fed by a cron schedule. Destroying it stops the
// producer.
type Source[T any] struct {
	*stream.Readable[T]
	dropped atomic.Int64
}

// Dropped returns the number of firings discarded because the buffer was at
// its high-water mark.
func (s *Source[T]) Dropped() int64 {
	return s.dropped.Load()
}

// New creates a Source and starts its producer.
func New[T any](config Config[T]) (*Source[T], error) {
	if config.Generate == nil {
		return nil, &ConfigError{"generate function is required"}
	}
	sched := config.Schedule
	if sched == nil {
		if config.Spec == "" {
			return nil, &ConfigError{"spec or schedule is required"}
		}
		parsed, err := cron.ParseStandard(config.Spec)
		if err != nil {
			return nil, &ConfigError{"invalid spec: " + err.Error()}
		}
		sched = parsed
	}
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Logger == nil {
		config.Logger = zap.NewNop()
	}
	hwm := config.HighWaterMark
	if hwm <= 0 {
		hwm = stream.DefaultReadableConfig[T]().HighWaterMark
	}

	stop := make(chan struct{})
	s := &Source[T]{}
	s.Readable = stream.NewReadableWithConfig(stream.ReadableConfig[T]{
		HighWaterMark: config.HighWaterMark,
		OnDestroy: func(err error, done func(error)) {
			close(stop)
			done(nil)
		},
	})

	go s.run(config, sched, hwm, stop)
	return s, nil
}

func (s *Source[T]) run(config Config[T], sched cron.Schedule, hwm int, stop chan struct{}) {
	produced := 0
	now := time.Now().In(config.Location)
	for {
		next := sched.Next(now)
		timer := time.NewTimer(time.Until(next))
		select {
		case <-stop:
			timer.Stop()
			return
		case fired := <-timer.C:
			now = fired.In(config.Location)
		}

		if s.Len() >= hwm {
			s.dropped.Add(1)
			config.Logger.Debug("firing dropped, buffer full", zap.Time("at", now))
			continue
		}

		s.Push(stream.Data(config.Generate(now)))
		produced++
		if config.Count > 0 && produced >= config.Count {
			s.Push(stream.End[T]())
			return
		}
	}
}
