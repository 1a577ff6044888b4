package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"
)

type ClickHouseConfig struct {
	Addr     string
	Database string
	Username string
	Password string
	Timeout  time.Duration
}

// ClickHouseSink appends entries to the jupiter_calls table.
type ClickHouseSink struct {
	conn driver.Conn
}

func NewClickHouseSink(ctx context.Context, cfg ClickHouseConfig) (*ClickHouseSink, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{cfg.Addr},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		DialTimeout: cfg.Timeout,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ClickHouse: %w", err)
	}

	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("failed to ping ClickHouse: %w", err)
	}

	return &ClickHouseSink{conn: conn}, nil
}

func (s *ClickHouseSink) EnsureSchema(ctx context.Context) error {
	err := s.conn.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS jupiter_calls (
			at DateTime64(3),
			operation LowCardinality(String),
			ok Bool,
			error_kind LowCardinality(String),
			error String,
			status UInt16,
			took_ms Float64,
			remote_ip String
		) ENGINE = MergeTree()
		ORDER BY (operation, at)
	`)
	if err != nil {
		return fmt.Errorf("create jupiter_calls: %w", err)
	}
	return nil
}

func (s *ClickHouseSink) Record(ctx context.Context, e Entry) error {
	query := `
		INSERT INTO jupiter_calls (
			at, operation, ok, error_kind, error, status, took_ms, remote_ip
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	err := s.conn.Exec(ctx, query,
		e.At,
		e.Operation,
		e.OK,
		e.ErrorKind,
		e.Error,
		uint16(e.Status),
		float64(e.Took.Microseconds())/1000,
		e.RemoteIP,
	)
	if err != nil {
		return fmt.Errorf("failed to insert call: %w", err)
	}
	return nil
}

// CountByOperation returns the number of recorded calls for op.
func (s *ClickHouseSink) CountByOperation(ctx context.Context, op string) (uint64, error) {
	var n uint64
	row := s.conn.QueryRow(ctx, `SELECT count() FROM jupiter_calls WHERE operation = ?`, op)
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count calls: %w", err)
	}
	return n, nil
}

func (s *ClickHouseSink) Close() error {
	return s.conn.Close()
}
