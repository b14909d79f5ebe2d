package translate

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// APIError is a non-200 reply from an HTTP translation endpoint.
type APIError struct {
	Engine     string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s API error (status %d): %s", e.Engine, e.StatusCode, e.Body)
}

// retryDelay is the pause before the single retry of a transient failure.
var retryDelay = 5 * time.Second

func isTransientStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func isTransientError(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return isTransientStatus(apiErr.StatusCode)
	}
	var oaErr *openai.APIError
	if errors.As(err, &oaErr) {
		return isTransientStatus(oaErr.HTTPStatusCode)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return isTransientStatus(reqErr.HTTPStatusCode)
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// Retrying wraps t so that a transient failure is retried once.
type Retrying struct {
	Translator
	log *zap.Logger
}

func NewRetrying(t Translator, logger *zap.Logger) *Retrying {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retrying{Translator: t, log: logger.Named(t.Name())}
}

func (r *Retrying) Translate(ctx context.Context, text string, opts TranslateOptions) (string, error) {
	out, err := r.Translator.Translate(ctx, text, opts)
	if err == nil || !isTransientError(err) {
		return out, err
	}
	r.log.Warn("transient failure, retrying", zap.Duration("after", retryDelay), zap.Error(err))
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(retryDelay):
	}
	return r.Translator.Translate(ctx, text, opts)
}
