// Package retry 提供 HTTP 请求级的有界重试。
// 网络瞬断与 5xx 按指数退避快速重试，429 等更久再试，
// 其余 4xx 视为永久失败立即返回。
package retry

import (
	"context"
	"errors"
	"io"
	"math"
	"net"
	"net/http"
	"syscall"
	"time"
)

// ErrorType 错误分类，决定是否重试
type ErrorType int

const (
	ErrorTypeNone ErrorType = iota
	// ErrorTypeNetwork 网络瞬时错误
	ErrorTypeNetwork
	// ErrorTypeRateLimited 429，需要更长退避
	ErrorTypeRateLimited
	// ErrorTypeServerError 5xx
	ErrorTypeServerError
	// ErrorTypeClientError 4xx（除 429），不重试
	ErrorTypeClientError
	// ErrorTypePermanent 其他不可恢复错误
	ErrorTypePermanent
)

// Config 重试配置
type Config struct {
	// MaxAttempts 总尝试次数（含首次）
	MaxAttempts int `json:"max_attempts"`

	// BaseDelay 初始退避间隔，每次尝试翻倍
	BaseDelay time.Duration `json:"base_delay"`

	// MaxDelay 退避上限
	MaxDelay time.Duration `json:"max_delay"`

	// RateLimitDelay 429 的初始退避间隔，每次尝试翻倍
	RateLimitDelay time.Duration `json:"rate_limit_delay"`
}

// DefaultConfig 返回默认重试配置
func DefaultConfig() Config {
	return Config{
		MaxAttempts:    3,
		BaseDelay:      2 * time.Second,
		MaxDelay:       60 * time.Second,
		RateLimitDelay: 10 * time.Second,
	}
}

// Retrier 带分类退避的 HTTP 重试器
type Retrier struct {
	config Config
}

// New 创建重试器
func New(config Config) *Retrier {
	if config.MaxAttempts < 1 {
		config.MaxAttempts = 1
	}
	return &Retrier{config: config}
}

// RequestFunc 一次可重试的请求。每次调用都必须返回新的响应体。
type RequestFunc func() (*http.Response, error)

// Do 执行请求直到成功、不可重试或尝试耗尽。
// 返回的响应由调用方负责关闭；重试过的失败响应体已被关闭。
func (r *Retrier) Do(ctx context.Context, fn RequestFunc) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < r.config.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(r.delay(lastErr, attempt)):
			}
		}

		resp, err := fn()
		if err == nil && resp != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return resp, nil
		}

		errorType := Classify(err, resp)
		if resp != nil {
			snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			lastErr = &HTTPError{StatusCode: resp.StatusCode, Type: errorType, Body: string(snippet)}
			resp.Body.Close()
		} else {
			lastErr = err
		}

		if errorType == ErrorTypeClientError || errorType == ErrorTypePermanent {
			return nil, lastErr
		}
	}

	return nil, lastErr
}

// delay 根据上次失败的类型计算下一次尝试前的等待
func (r *Retrier) delay(lastErr error, attempt int) time.Duration {
	base := r.config.BaseDelay
	var httpErr *HTTPError
	if errors.As(lastErr, &httpErr) && httpErr.Type == ErrorTypeRateLimited {
		base = r.config.RateLimitDelay
	}
	d := time.Duration(float64(base) * math.Pow(2, float64(attempt-1)))
	if d > r.config.MaxDelay {
		d = r.config.MaxDelay
	}
	return d
}

// HTTPError 带状态码的请求失败
type HTTPError struct {
	StatusCode int
	Type       ErrorType
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body != "" {
		return "http " + http.StatusText(e.StatusCode) + ": " + e.Body
	}
	return "http " + http.StatusText(e.StatusCode)
}

// Classify 判定错误类型
func Classify(err error, resp *http.Response) ErrorType {
	if err != nil {
		if isNetworkError(err) {
			return ErrorTypeNetwork
		}
		return ErrorTypePermanent
	}
	if resp == nil {
		return ErrorTypePermanent
	}
	switch {
	case resp.StatusCode >= 500:
		return ErrorTypeServerError
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimited
	case resp.StatusCode >= 400:
		return ErrorTypeClientError
	}
	return ErrorTypeNone
}

// isNetworkError 判断是否为网络瞬时错误
func isNetworkError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE) {
		return true
	}
	var opErr *net.OpError
	return errors.As(err, &opErr)
}
