// Package server 提供上传即翻译的 HTTP 服务模式。
// 同步接口处理单个阶段，流水线接口异步执行并以任务号轮询。
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/stats"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

// DefaultMaxUploadBytes 上传体积上限
const DefaultMaxUploadBytes = 20 << 20

// TranslateFunc 把中间树翻译为目标语言。由调用方注入，
// 服务本身不关心后端是 DeepL、LLM 还是原样直通。
type TranslateFunc func(ctx context.Context, tree *presentation.Presentation, targetLang string) (*presentation.Presentation, *stats.Translation, error)

// Config 服务配置
type Config struct {
	// APIKey 非空时除 /health 外全部接口要求 Bearer 认证
	APIKey string

	// MaxUploadBytes 单次上传上限，零值用 DefaultMaxUploadBytes
	MaxUploadBytes int64
}

// Server HTTP 服务
type Server struct {
	router    chi.Router
	logger    *zap.Logger
	cfg       Config
	translate TranslateFunc
	jobs      *Store
}

// New 创建并装配路由
func New(translate TranslateFunc, cfg Config, logger *zap.Logger) *Server {
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = DefaultMaxUploadBytes
	}
	s := &Server{
		logger:    logger,
		cfg:       cfg,
		translate: translate,
		jobs:      NewStore(),
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe 在指定地址上启动服务
func (s *Server) ListenAndServe(addr string) error {
	s.logger.Info("HTTP 服务启动", zap.String("addr", addr))
	return http.ListenAndServe(addr, s)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.logger))

	r.Get("/health", s.handleHealth)

	r.Group(func(r chi.Router) {
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey))
		}
		r.Post("/api/extract", s.handleExtract)
		r.Post("/api/translate", s.handleTranslate)
		r.Post("/api/reassemble", s.handleReassemble)
		r.Post("/api/pipeline", s.handlePipeline)
		r.Get("/api/jobs/{jobID}", s.handleJobStatus)
		r.Get("/api/jobs/{jobID}/result", s.handleJobResult)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}
