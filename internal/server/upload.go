package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"rfpdesk/internal/pipeline"
	"rfpdesk/pkg/types"

	"github.com/alexedwards/flow"
)

// runDeadline bounds a single background pipeline run. Remote OCR and the
// model call each carry their own timeouts, this is a backstop.
const runDeadline = 5 * time.Minute

func (s *Service) handleGetUpload(w http.ResponseWriter, r *http.Request) {

	data := &types.UploadPageData{
		BasePageData: types.BasePageData{Title: "Upload Document"},
		Error:        r.URL.Query().Get("error"),
	}

	if err := s.renderTemplate(w, r, "page.upload", data); err != nil {
		s.logger.WithError(err).Error("failed to render upload page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handlePostUpload(w http.ResponseWriter, r *http.Request) {

	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes+1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		s.renderUploadError(w, r, "The file is too large or the form was malformed.")
		return
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		s.renderUploadError(w, r, "Choose a file to upload.")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.logger.WithError(err).Error("failed to read uploaded file")
		s.renderUploadError(w, r, "Could not read the uploaded file.")
		return
	}

	fileType := header.Header.Get("Content-Type")

	up := pipeline.Upload{
		UserID:   userID,
		FileName: header.Filename,
		FileType: fileType,
		Size:     int64(len(data)),
		Data:     data,
	}

	// Reject invalid uploads before anything leaves the process.
	if err := s.pipeline.Validate(up); err != nil {
		var verr *pipeline.ValidationError
		if errors.As(err, &verr) {
			s.renderUploadError(w, r, verr.Message)
			return
		}
		s.logger.WithError(err).Error("upload validation failed")
		s.internalServerError(w)
		return
	}

	run := s.runs.Begin(userID)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), runDeadline)
		defer cancel()

		documentID, err := s.pipeline.Run(ctx, up, func(progress int) {
			s.runs.Update(run.ID, progress)
		})
		if err != nil {
			s.logger.WithError(err).WithField("run_id", run.ID).Error("pipeline run failed")
			s.runs.Fail(run.ID, pipeline.UserMessage(err))
			return
		}

		s.runs.Complete(run.ID, documentID)
	}()

	http.Redirect(w, r, "/upload/run/"+run.ID, http.StatusSeeOther)
}

func (s *Service) renderUploadError(w http.ResponseWriter, r *http.Request, message string) {
	data := &types.UploadPageData{
		BasePageData: types.BasePageData{Title: "Upload Document"},
		Error:        message,
	}

	if err := s.renderTemplate(w, r, "page.upload", data); err != nil {
		s.logger.WithError(err).Error("failed to render upload page with error")
		s.internalServerError(w)
	}
}

func (s *Service) handleProcessingPage(w http.ResponseWriter, r *http.Request) {

	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	runID := flow.Param(r.Context(), "runID")

	run, ok := s.runs.Get(runID)
	if !ok || run.UserID != userID {
		http.Redirect(w, r, "/upload?error=Processing+session+not+found", http.StatusSeeOther)
		return
	}

	data := &types.ProcessingPageData{
		BasePageData: types.BasePageData{Title: "Processing"},
		RunID:        runID,
	}

	if err := s.renderTemplate(w, r, "page.processing", data); err != nil {
		s.logger.WithError(err).Error("failed to render processing page")
		s.internalServerError(w)
		return
	}
}

type runStatusResponse struct {
	RunID      string `json:"run_id"`
	Status     string `json:"status"`
	Progress   int    `json:"progress"`
	Phase      string `json:"phase"`
	Detail     string `json:"detail"`
	DocumentID string `json:"document_id,omitempty"`
	Error      string `json:"error,omitempty"`
}

func (s *Service) handleRunStatus(w http.ResponseWriter, r *http.Request) {

	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	runID := flow.Param(r.Context(), "runID")

	run, ok := s.runs.Get(runID)
	if !ok || run.UserID != userID {
		http.Error(w, "run not found", http.StatusNotFound)
		return
	}

	phase, detail := pipeline.Describe(run.Progress)

	resp := runStatusResponse{
		RunID:      run.ID,
		Status:     string(run.Status),
		Progress:   run.Progress,
		Phase:      phase,
		Detail:     detail,
		DocumentID: run.DocumentID,
		Error:      run.Error,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		s.logger.WithError(err).Error("failed to encode run status")
	}
}
