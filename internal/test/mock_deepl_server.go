package test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// DeepLRequest 镜像 DeepL v2 的 JSON 请求体，供断言使用
type DeepLRequest struct {
	Text       []string `json:"text"`
	SourceLang string   `json:"source_lang"`
	TargetLang string   `json:"target_lang"`
	Formality  string   `json:"formality"`
	ModelType  string   `json:"model_type"`
	GlossaryID string   `json:"glossary_id"`
}

// MockDeepLServer 模拟 DeepL 翻译接口。
// 默认把每条文本加上 "[代码] " 前缀返回，行为开关用于逼出
// 各种失败路径：术语表 400、限流、服务端错误与数量不符。
type MockDeepLServer struct {
	Server *httptest.Server

	mu sync.Mutex

	// Requests 收到的全部请求体，按顺序
	Requests []DeepLRequest

	// RejectGlossary 带 glossary_id 的请求返回 400
	RejectGlossary bool

	// FailuresBeforeSuccess 前 N 次请求返回 FailureStatus
	FailuresBeforeSuccess int

	// FailureStatus 配合 FailuresBeforeSuccess 使用，默认 503
	FailureStatus int

	// DropLastTranslation 响应少回一条译文，制造数量不符
	DropLastTranslation bool

	// Translate 自定义翻译函数，nil 时使用前缀规则
	Translate func(text, targetLang string) string
}

// NewMockDeepLServer 启动模拟服务，调用方负责 Close
func NewMockDeepLServer() *MockDeepLServer {
	m := &MockDeepLServer{FailureStatus: http.StatusServiceUnavailable}
	m.Server = httptest.NewServer(http.HandlerFunc(m.handle))
	return m
}

// Close 关闭模拟服务
func (m *MockDeepLServer) Close() {
	m.Server.Close()
}

// URL 翻译端点地址
func (m *MockDeepLServer) URL() string {
	return m.Server.URL
}

// RequestCount 收到的请求总数
func (m *MockDeepLServer) RequestCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Requests)
}

func (m *MockDeepLServer) handle(w http.ResponseWriter, r *http.Request) {
	if !strings.HasPrefix(r.Header.Get("Authorization"), "DeepL-Auth-Key ") {
		http.Error(w, `{"message":"Wrong endpoint. Use authentication"}`, http.StatusForbidden)
		return
	}

	var req DeepLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"message":"Invalid request"}`, http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.Requests = append(m.Requests, req)
	served := len(m.Requests)
	rejectGlossary := m.RejectGlossary
	failures := m.FailuresBeforeSuccess
	failureStatus := m.FailureStatus
	dropLast := m.DropLastTranslation
	m.mu.Unlock()

	if rejectGlossary && req.GlossaryID != "" {
		http.Error(w, `{"message":"Glossary not found for the given language pair"}`, http.StatusBadRequest)
		return
	}
	if served <= failures {
		http.Error(w, `{"message":"Temporary failure"}`, failureStatus)
		return
	}

	type entry struct {
		Text string `json:"text"`
	}
	translations := make([]entry, 0, len(req.Text))
	for _, t := range req.Text {
		if m.Translate != nil {
			translations = append(translations, entry{Text: m.Translate(t, req.TargetLang)})
		} else {
			translations = append(translations, entry{Text: "[" + req.TargetLang + "] " + t})
		}
	}
	if dropLast && len(translations) > 0 {
		translations = translations[:len(translations)-1]
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"translations": translations})
}
