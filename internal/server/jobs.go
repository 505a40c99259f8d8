package server

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// 任务状态
const (
	StatusQueued  = "queued"
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Job 一次异步流水线任务。Result 在 done 之后才有内容。
type Job struct {
	ID         string    `json:"id"`
	Status     string    `json:"status"`
	Filename   string    `json:"filename"`
	TargetLang string    `json:"target_language"`
	Error      string    `json:"error,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	result []byte
}

// Store 内存任务表。进程重启即清空，持久化不在服务承诺之内。
type Store struct {
	mu   sync.RWMutex
	jobs map[string]*Job
}

// NewStore 创建任务表
func NewStore() *Store {
	return &Store{jobs: make(map[string]*Job)}
}

// Create 登记一个排队中的新任务
func (s *Store) Create(filename, targetLang string) *Job {
	now := time.Now()
	job := &Job{
		ID:         uuid.NewString(),
		Status:     StatusQueued,
		Filename:   filename,
		TargetLang: targetLang,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.mu.Lock()
	s.jobs[job.ID] = job
	s.mu.Unlock()
	return job
}

// Get 按 ID 取任务快照，结果字节不复制
func (s *Store) Get(id string) (Job, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// SetRunning 标记任务开始执行
func (s *Store) SetRunning(id string) {
	s.update(id, func(job *Job) {
		job.Status = StatusRunning
	})
}

// SetDone 标记任务完成并保存产物
func (s *Store) SetDone(id string, result []byte) {
	s.update(id, func(job *Job) {
		job.Status = StatusDone
		job.result = result
	})
}

// SetFailed 标记任务失败
func (s *Store) SetFailed(id string, err error) {
	s.update(id, func(job *Job) {
		job.Status = StatusFailed
		job.Error = err.Error()
	})
}

// Result 取完成任务的产物
func (s *Store) Result(id string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	job, ok := s.jobs[id]
	if !ok || job.Status != StatusDone {
		return nil, false
	}
	return job.result, true
}

func (s *Store) update(id string, fn func(*Job)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if job, ok := s.jobs[id]; ok {
		fn(job)
		job.UpdatedAt = time.Now()
	}
}
