// Package audit records one entry per gateway operation call.
package audit

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/jupiter-swap-api/internal/jupiter"
)

// Error kinds stored with each entry.
const (
	KindNone      = ""
	KindService   = "service"
	KindTransport = "transport"
	KindDecode    = "decode"
	KindInput     = "input"
	KindDisabled  = "disabled"
	KindInternal  = "internal"
)

type Entry struct {
	At        time.Time
	Operation string
	OK        bool
	ErrorKind string
	Error     string
	Status    int
	Took      time.Duration
	RemoteIP  string
}

type Sink interface {
	Record(ctx context.Context, e Entry) error
}

// Classify maps a client error onto an audit error kind.
func Classify(err error) string {
	switch {
	case err == nil:
		return KindNone
	case errors.Is(err, jupiter.ErrService):
		return KindService
	case errors.Is(err, jupiter.ErrDecode):
		return KindDecode
	case errors.Is(err, jupiter.ErrTransport):
		return KindTransport
	default:
		return KindInternal
	}
}

type NopSink struct{}

func (NopSink) Record(context.Context, Entry) error { return nil }

// LogSink writes entries as structured log lines.
type LogSink struct {
	Logger *logrus.Logger
}

func (s LogSink) Record(_ context.Context, e Entry) error {
	logger := s.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	entry := logger.WithFields(logrus.Fields{
		"op":     e.Operation,
		"ok":     e.OK,
		"status": e.Status,
		"took":   e.Took,
	})
	if e.OK {
		entry.Info("jupiter call")
		return nil
	}
	entry.WithFields(logrus.Fields{"kind": e.ErrorKind, "error": e.Error}).Warn("jupiter call failed")
	return nil
}
