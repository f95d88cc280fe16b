package main

import (
	"context"
	"crypto/tls"
	"fmt"
	"regexp"
	"time"

	clickhouse "github.com/ClickHouse/clickhouse-go/v2"
)

type ClickHouseConfig struct {
	Enabled   bool
	Host      string
	Port      int
	User      string
	Pass      string
	DB        string
	Table     string
	Secure    bool
	BatchSize int
}

type ClickHouseClient struct {
	cfg  ClickHouseConfig
	conn clickhouse.Conn
	log  *Logger
}

func (c *ClickHouseClient) Addr() string { return fmt.Sprintf("%s:%d", c.cfg.Host, c.cfg.Port) }
func (c *ClickHouseClient) Database() string {
	if c == nil {
		return ""
	}
	return c.cfg.DB
}
func (c *ClickHouseClient) Table() string {
	if c == nil {
		return ""
	}
	return c.cfg.Table
}
func (c *ClickHouseClient) NativeConn() clickhouse.Conn { return c.conn }

func (c *ClickHouseClient) Close() {
	if c == nil || c.conn == nil {
		return
	}
	_ = c.conn.Close()
}

var safeIdentRe = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)

func validateIdent(s string) error {
	if s == "" {
		return fmt.Errorf("empty identifier")
	}
	if !safeIdentRe.MatchString(s) {
		return fmt.Errorf("unsafe identifier %q (allowed: [a-zA-Z0-9_])", s)
	}
	return nil
}

// withDefaults fills unset fields and validates identifiers.
func (cfg ClickHouseConfig) withDefaults() (ClickHouseConfig, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port <= 0 {
		cfg.Port = 9000
	}
	if cfg.User == "" {
		cfg.User = "default"
	}
	if cfg.DB == "" {
		cfg.DB = "instdir"
	}
	if cfg.Table == "" {
		cfg.Table = "institution_rankings"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 500
	}
	if err := validateIdent(cfg.DB); err != nil {
		return cfg, err
	}
	if err := validateIdent(cfg.Table); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (cfg ClickHouseConfig) options(database string) *clickhouse.Options {
	opt := &clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: database,
			Username: cfg.User,
			Password: cfg.Pass,
		},
		DialTimeout: 5 * time.Second,
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
		MaxOpenConns:    2,
		MaxIdleConns:    2,
		ConnMaxLifetime: 10 * time.Minute,
	}
	if cfg.Secure {
		opt.TLS = &tls.Config{}
	}
	return opt
}

// NewClickHouseClient returns (nil, nil) when the export is disabled.
func NewClickHouseClient(ctx context.Context, cfg ClickHouseConfig, log *Logger) (*ClickHouseClient, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	cfg, err := cfg.withDefaults()
	if err != nil {
		return nil, err
	}

	// 1) Connect to "default" DB to ensure the target database exists.
	connDefault, err := clickhouse.Open(cfg.options("default"))
	if err != nil {
		return nil, fmt.Errorf("clickhouse open(default) failed: %w", err)
	}
	{
		ctxPing, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := connDefault.Exec(ctxPing, "SELECT 1"); err != nil {
			_ = connDefault.Close()
			return nil, fmt.Errorf("clickhouse ping(default) failed: %w", err)
		}
		ddlDB := fmt.Sprintf("CREATE DATABASE IF NOT EXISTS `%s`", cfg.DB)
		if err := connDefault.Exec(ctxPing, ddlDB); err != nil {
			_ = connDefault.Close()
			return nil, fmt.Errorf("create database failed: %w", err)
		}
	}
	_ = connDefault.Close()

	// 2) Connect to target DB and ensure the rankings table exists.
	conn, err := clickhouse.Open(cfg.options(cfg.DB))
	if err != nil {
		return nil, fmt.Errorf("clickhouse open(%s) failed: %w", cfg.DB, err)
	}
	{
		ctxDDL, cancel := context.WithTimeout(ctx, 15*time.Second)
		defer cancel()
		if err := conn.Exec(ctxDDL, rankingsTableDDL(cfg.Table)); err != nil {
			_ = conn.Close()
			return nil, fmt.Errorf("clickhouse ddl failed: %w", err)
		}
	}

	c := &ClickHouseClient{
		cfg:  cfg,
		conn: conn,
		log:  log,
	}
	log.Infof("clickhouse ready addr=%s db=%s table=%s", c.Addr(), cfg.DB, cfg.Table)
	return c, nil
}

func rankingsTableDDL(table string) string {
	return fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS `+"`%s`"+`
(
  run_id String,
  run_start DateTime64(3, '%s'),
  position UInt32,
  name String,
  category LowCardinality(String),
  ownership LowCardinality(String),
  lga LowCardinality(String),
  courses Array(String),
  accreditation_score Float64,
  tuition_avg Float64,
  student_population UInt64,
  rank_score Float64,
  sort_by LowCardinality(String),
  criteria String
)
ENGINE = MergeTree
PARTITION BY toDate(run_start)
ORDER BY (run_id, position)
`, table, directoryTimezone)
}
