package dataapi

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/pkg/errors"
)

type envConfig struct {
	Endpoint       string        `env:"DATA_API_ENDPOINT"`
	Token          string        `env:"DATA_API_TOKEN"`
	Keyspace       string        `env:"DATA_API_KEYSPACE"`
	APIVersion     string        `env:"DATA_API_VERSION"`
	RequestTimeout time.Duration `env:"DATA_API_REQUEST_TIMEOUT"`
	ConnectTimeout time.Duration `env:"DATA_API_CONNECT_TIMEOUT"`
	BulkTimeout    time.Duration `env:"DATA_API_BULK_TIMEOUT"`
}

// FromEnv configures the client from the process environment:
// DATA_API_ENDPOINT, DATA_API_TOKEN, DATA_API_KEYSPACE, DATA_API_VERSION and
// the DATA_API_*_TIMEOUT durations. Unset variables leave the corresponding
// setting untouched, so FromEnv composes with explicit options in either
// order.
func FromEnv(cli *Client) error {
	var cfg envConfig
	if err := env.Parse(&cfg); err != nil {
		return errors.Wrap(err, "failed to read configuration from environment")
	}
	if cfg.Endpoint != "" {
		if err := WithEndpoint(cfg.Endpoint)(cli); err != nil {
			return err
		}
	}
	if cfg.Token != "" {
		cli.opts.Token = cfg.Token
	}
	if cfg.Keyspace != "" {
		cli.opts.Keyspace = cfg.Keyspace
	}
	if cfg.APIVersion != "" {
		cli.opts.APIVersion = cfg.APIVersion
	}
	if cfg.RequestTimeout > 0 {
		cli.opts.RequestTimeout = cfg.RequestTimeout
	}
	if cfg.ConnectTimeout > 0 {
		cli.opts.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.BulkTimeout > 0 {
		cli.opts.BulkTimeout = cfg.BulkTimeout
	}
	return nil
}
