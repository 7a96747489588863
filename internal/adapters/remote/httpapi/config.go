package httpapi

import "time"

const (
	defaultTimeout  = 30 * time.Second
	defaultPageSize = 50
	maxPageSize     = 100
)

// Config is the mapstructure target of the "api" config section. Either a
// static Token or client credentials (ClientID, ClientSecret, TokenURL) must
// be set.
type Config struct {
	BaseURL      string        `mapstructure:"base_url" validate:"required,url"`
	Token        string        `mapstructure:"token"`
	ClientID     string        `mapstructure:"client_id" validate:"required_without=Token"`
	ClientSecret string        `mapstructure:"client_secret" validate:"required_with=ClientID"`
	TokenURL     string        `mapstructure:"token_url" validate:"required_with=ClientID,omitempty,url"`
	Audience     string        `mapstructure:"audience"`
	Scopes       []string      `mapstructure:"scopes"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gte=0"`
	PageSize     int           `mapstructure:"page_size" validate:"gte=0,lte=100"`
}

func (c Config) pageSize() int {
	switch {
	case c.PageSize <= 0:
		return defaultPageSize
	case c.PageSize > maxPageSize:
		return maxPageSize
	default:
		return c.PageSize
	}
}

func (c Config) timeout() time.Duration {
	if c.Timeout <= 0 {
		return defaultTimeout
	}
	return c.Timeout
}
