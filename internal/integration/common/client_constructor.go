package common

import (
	"github.com/futig/visa-interview/internal/config"
	pkgRetry "github.com/futig/visa-interview/internal/pkg/retry"
	pkgHTTP "github.com/futig/visa-interview/pkg/http"
	"go.uber.org/zap"
)

const userAgent = "visa-interview-engine"

func NewBaseConnector(cfg config.HTTPClientConfig, retryCfg pkgRetry.RetryConfig, logger *zap.Logger) *pkgHTTP.Connector {
	connCfg := &pkgHTTP.ConnectorConfig{
		Logger:       logger,
		BaseURL:      cfg.Url,
		RetryOptions: retryCfg.ToRetryOptions(),
	}

	return pkgHTTP.NewConnector(
		connCfg,
		pkgHTTP.WithRequestTimeout(cfg.RequestTimeout),
		pkgHTTP.WithConnClientTimeout(cfg.ConnTimeout),
		pkgHTTP.WithClientKeepAlive(cfg.KeepAlive),
		pkgHTTP.WithIdleConnTimeout(cfg.IdleConnTimeout),
		pkgHTTP.WithResponseHeaderTimeout(cfg.ResponseHeaderTimeout),
		pkgHTTP.WithUserAgent(userAgent),
		pkgHTTP.WithRequestLogging(),
		pkgHTTP.WithAuthToken(cfg.Token),
	)
}
