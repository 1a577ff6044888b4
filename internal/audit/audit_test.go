package audit

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aman-zulfiqar/jupiter-swap-api/internal/jupiter"
)

func TestClassify(t *testing.T) {
	cases := map[string]struct {
		err  error
		want string
	}{
		"nil":       {nil, KindNone},
		"service":   {&jupiter.ServiceError{Op: jupiter.OpQuote, Message: "no route"}, KindService},
		"http":      {&jupiter.HTTPError{Op: jupiter.OpSwap, StatusCode: 503}, KindTransport},
		"transport": {&jupiter.TransportError{Op: jupiter.OpPrice, Err: context.Canceled}, KindTransport},
		"decode":    {&jupiter.DecodeError{Op: jupiter.OpRouteMap, Stage: "data", Err: errors.New("bad")}, KindDecode},
		"wrapped":   {fmt.Errorf("gateway: %w", &jupiter.ServiceError{}), KindService},
		"other":     {errors.New("boom"), KindInternal},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(tc.err))
		})
	}
}

func TestNopSink(t *testing.T) {
	assert.NoError(t, NopSink{}.Record(context.Background(), Entry{Operation: "quote"}))
}

func TestLogSink(t *testing.T) {
	logger, hook := test.NewNullLogger()
	sink := LogSink{Logger: logger}

	require.NoError(t, sink.Record(context.Background(), Entry{Operation: "quote", OK: true, Status: 200}))
	require.NoError(t, sink.Record(context.Background(), Entry{
		Operation: "swap",
		ErrorKind: KindService,
		Error:     "slippage exceeded",
		Status:    422,
	}))

	entries := hook.AllEntries()
	require.Len(t, entries, 2)
	assert.Equal(t, logrus.InfoLevel, entries[0].Level)
	assert.Equal(t, "quote", entries[0].Data["op"])
	assert.Equal(t, logrus.WarnLevel, entries[1].Level)
	assert.Equal(t, KindService, entries[1].Data["kind"])
}

func TestClickHouseSink(t *testing.T) {
	addr := os.Getenv("CLICKHOUSE_ADDR")
	if addr == "" {
		addr = "localhost:9000"
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	sink, err := NewClickHouseSink(ctx, ClickHouseConfig{
		Addr:     addr,
		Database: "default",
		Username: "default",
		Timeout:  2 * time.Second,
	})
	if err != nil {
		t.Skipf("ClickHouse not available: %v", err)
	}
	defer sink.Close()

	require.NoError(t, sink.EnsureSchema(ctx))

	op := fmt.Sprintf("test-%d", time.Now().UnixNano())
	before, err := sink.CountByOperation(ctx, op)
	require.NoError(t, err)

	require.NoError(t, sink.Record(ctx, Entry{
		At:        time.Now().UTC(),
		Operation: op,
		OK:        true,
		Status:    200,
		Took:      1500 * time.Microsecond,
		RemoteIP:  "127.0.0.1",
	}))

	after, err := sink.CountByOperation(ctx, op)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)
}
