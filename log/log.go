// Package log wraps zerolog with scoped loggers and typed field helpers.
package log

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// Logger is a scoped logger.
type Logger struct {
	l zerolog.Logger
}

// InitGlobals configures the global zerolog output and returns the root logger.
func InitGlobals(level zerolog.Level, json, noColor bool) *Logger {
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	var lg zerolog.Logger
	if json {
		lg = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		out := zerolog.ConsoleWriter{
			Out:        os.Stderr,
			NoColor:    noColor,
			TimeFormat: time.Kitchen,
		}
		lg = zerolog.New(out).With().Timestamp().Logger()
	}

	zerolog.DefaultContextLogger = &lg

	return &Logger{l: lg}
}

// New returns a logger annotated with the given scope.
func New(scope string) *Logger {
	lg := zerolog.DefaultContextLogger
	if lg == nil {
		nop := zerolog.Nop()
		lg = &nop
	}

	return &Logger{l: lg.With().Str("s", scope).Logger()}
}

// Ctx returns the logger attached to ctx, or the default logger.
func Ctx(ctx context.Context) *Logger {
	return &Logger{l: *zerolog.Ctx(ctx)}
}

// WithContext attaches the logger to ctx.
func (lg *Logger) WithContext(ctx context.Context) context.Context {
	return lg.l.WithContext(ctx)
}

// With returns a sublogger with the fields attached.
func (lg *Logger) With(fields ...Field) *Logger {
	c := lg.l.With()
	for _, f := range fields {
		c = f(c)
	}

	return &Logger{l: c.Logger()}
}

func (lg *Logger) Trace(msg string) { lg.l.Trace().Msg(msg) }

func (lg *Logger) Tracef(format string, vals ...any) { lg.l.Trace().Msgf(format, vals...) }

func (lg *Logger) Debug(msg string) { lg.l.Debug().Msg(msg) }

func (lg *Logger) Debugf(format string, vals ...any) { lg.l.Debug().Msgf(format, vals...) }

func (lg *Logger) Info(msg string) { lg.l.Info().Msg(msg) }

func (lg *Logger) Infof(format string, vals ...any) { lg.l.Info().Msgf(format, vals...) }

func (lg *Logger) Warn(msg string) { lg.l.Warn().Msg(msg) }

func (lg *Logger) Warnf(format string, vals ...any) { lg.l.Warn().Msgf(format, vals...) }

func (lg *Logger) Error(err error, msg string) { lg.l.Error().Err(err).Msg(msg) }

func (lg *Logger) Errorf(err error, format string, vals ...any) {
	lg.l.Error().Err(err).Msgf(format, vals...)
}

func (lg *Logger) Fatal(err error, msg string) { lg.l.Fatal().Err(err).Msg(msg) }
