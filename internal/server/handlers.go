package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/nerdneilsfield/go-pptx-translator/internal/extractor"
	"github.com/nerdneilsfield/go-pptx-translator/internal/pptx"
	"github.com/nerdneilsfield/go-pptx-translator/internal/reconciler"
	"github.com/nerdneilsfield/go-pptx-translator/pkg/presentation"
)

const pptxContentType = "application/vnd.openxmlformats-officedocument.presentationml.presentation"

// handleExtract 上传 .pptx，同步返回抽取出的中间树 JSON
func (s *Server) handleExtract(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}

	pkg, err := pptx.FromBytes(data)
	if err != nil {
		jsonError(w, "invalid pptx container: "+err.Error(), http.StatusBadRequest)
		return
	}
	tree, err := extractor.New(s.logger).Extract(pkg, filename)
	if err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	s.writeTree(w, tree)
}

// handleTranslate 上传中间树 JSON 与目标语言，同步返回翻译后的树
func (s *Server) handleTranslate(w http.ResponseWriter, r *http.Request) {
	data, _, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}
	targetLang := r.FormValue("target_lang")
	if targetLang == "" {
		jsonError(w, "target_lang is required", http.StatusBadRequest)
		return
	}

	tree, err := presentation.Decode(data)
	if err != nil {
		jsonError(w, "invalid presentation tree: "+err.Error(), http.StatusBadRequest)
		return
	}
	translated, _, err := s.translate(r.Context(), tree, targetLang)
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadGateway)
		return
	}
	s.writeTree(w, translated)
}

// handleReassemble 上传原始 .pptx 与翻译后的树，同步返回重组好的 .pptx
func (s *Server) handleReassemble(w http.ResponseWriter, r *http.Request) {
	if !s.parseForm(w, r) {
		return
	}
	data, filename, ok := s.formFile(w, r, "file")
	if !ok {
		return
	}
	treeData, _, ok := s.formFile(w, r, "tree")
	if !ok {
		return
	}

	tree, err := presentation.Decode(treeData)
	if err != nil {
		jsonError(w, "invalid presentation tree: "+err.Error(), http.StatusBadRequest)
		return
	}
	pkg, err := pptx.FromBytes(data)
	if err != nil {
		jsonError(w, "invalid pptx container: "+err.Error(), http.StatusBadRequest)
		return
	}
	if _, err := reconciler.New(s.logger, reconciler.DefaultOptions()).Reconcile(pkg, tree); err != nil {
		jsonError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	out, err := pkg.Bytes()
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	s.writePptx(w, filename, out)
}

// handlePipeline 上传 .pptx 与目标语言，异步执行完整流水线
func (s *Server) handlePipeline(w http.ResponseWriter, r *http.Request) {
	data, filename, ok := s.readUpload(w, r, "file")
	if !ok {
		return
	}
	targetLang := r.FormValue("target_lang")
	if targetLang == "" {
		jsonError(w, "target_lang is required", http.StatusBadRequest)
		return
	}

	job := s.jobs.Create(filename, targetLang)
	go s.runPipeline(job.ID, data, filename, targetLang)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"job_id":   job.ID,
		"status":   job.Status,
		"poll_url": "/api/jobs/" + job.ID,
	})
}

// runPipeline 在后台执行抽取、翻译、重组三个阶段
func (s *Server) runPipeline(jobID string, data []byte, filename, targetLang string) {
	s.jobs.SetRunning(jobID)

	pkg, err := pptx.FromBytes(data)
	if err != nil {
		s.failJob(jobID, err)
		return
	}
	tree, err := extractor.New(s.logger).Extract(pkg, filename)
	if err != nil {
		s.failJob(jobID, err)
		return
	}
	translated, _, err := s.translate(context.Background(), tree, targetLang)
	if err != nil {
		s.failJob(jobID, err)
		return
	}
	if _, err := reconciler.New(s.logger, reconciler.DefaultOptions()).Reconcile(pkg, translated); err != nil {
		s.failJob(jobID, err)
		return
	}
	out, err := pkg.Bytes()
	if err != nil {
		s.failJob(jobID, err)
		return
	}

	s.jobs.SetDone(jobID, out)
	s.logger.Info("流水线任务完成",
		zap.String("job_id", jobID),
		zap.String("file", filename),
		zap.String("target", targetLang))
}

func (s *Server) failJob(jobID string, err error) {
	s.jobs.SetFailed(jobID, err)
	s.logger.Warn("流水线任务失败", zap.String("job_id", jobID), zap.Error(err))
}

// handleJobStatus 查询任务状态
func (s *Server) handleJobStatus(w http.ResponseWriter, r *http.Request) {
	job, ok := s.jobs.Get(chi.URLParam(r, "jobID"))
	if !ok {
		jsonError(w, "job not found", http.StatusNotFound)
		return
	}

	resp := map[string]any{
		"id":              job.ID,
		"status":          job.Status,
		"filename":        job.Filename,
		"target_language": job.TargetLang,
		"created_at":      job.CreatedAt,
		"updated_at":      job.UpdatedAt,
	}
	if job.Error != "" {
		resp["error"] = job.Error
	}
	if job.Status == StatusDone {
		resp["result_url"] = "/api/jobs/" + job.ID + "/result"
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// handleJobResult 下载完成任务的 .pptx 产物
func (s *Server) handleJobResult(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "jobID")
	result, ok := s.jobs.Result(jobID)
	if !ok {
		jsonError(w, "result not available", http.StatusNotFound)
		return
	}
	job, _ := s.jobs.Get(jobID)
	s.writePptx(w, translatedName(job.Filename, job.TargetLang), result)
}

// readUpload 解析表单并读取指定字段的上传文件
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, bool) {
	if !s.parseForm(w, r) {
		return nil, "", false
	}
	return s.formFile(w, r, field)
}

func (s *Server) parseForm(w http.ResponseWriter, r *http.Request) bool {
	// 额外 1MB 留给表单本身的开销
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+(1<<20))
	if err := r.ParseMultipartForm(s.cfg.MaxUploadBytes); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

func (s *Server) formFile(w http.ResponseWriter, r *http.Request, field string) ([]byte, string, bool) {
	file, header, err := r.FormFile(field)
	if err != nil {
		jsonError(w, field+" is required: "+err.Error(), http.StatusBadRequest)
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, s.cfg.MaxUploadBytes+1))
	if err != nil {
		jsonError(w, "failed to read upload", http.StatusInternalServerError)
		return nil, "", false
	}
	if int64(len(data)) > s.cfg.MaxUploadBytes {
		jsonError(w, fmt.Sprintf("upload exceeds max size (%d bytes)", s.cfg.MaxUploadBytes),
			http.StatusRequestEntityTooLarge)
		return nil, "", false
	}
	return data, filepath.Base(header.Filename), true
}

func (s *Server) writeTree(w http.ResponseWriter, tree *presentation.Presentation) {
	data, err := presentation.Encode(tree)
	if err != nil {
		jsonError(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

func (s *Server) writePptx(w http.ResponseWriter, filename string, data []byte) {
	w.Header().Set("Content-Type", pptxContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(data)
}

// translatedName 产物文件名：{base}_{lang}.pptx
func translatedName(filename, targetLang string) string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	lang := strings.ToLower(strings.ReplaceAll(targetLang, " ", "_"))
	return fmt.Sprintf("%s_%s.pptx", base, lang)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
