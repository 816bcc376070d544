package server

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"rfpdesk/internal/utils"
	"rfpdesk/pkg/types"

	"github.com/alexedwards/flow"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {

	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	documents, err := s.documentsRepo.DocumentsByUser(r.Context(), userID)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch document history")
		s.internalServerError(w)
		return
	}

	data := &types.HistoryPageData{
		BasePageData: types.BasePageData{Title: "Document History"},
		Documents:    documents,
		Notice:       r.URL.Query().Get("notice"),
	}

	// Show sample entries until the user has uploaded something, so the
	// page demonstrates what a populated history looks like.
	if len(documents) == 0 {
		data.Documents = sampleDocuments()
		data.SampleData = true
	}

	if err := s.renderTemplate(w, r, "page.history", data); err != nil {
		s.logger.WithError(err).Error("failed to render history page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleDocumentDetail(w http.ResponseWriter, r *http.Request) {

	userID, err := s.userIDFromContext(r.Context())
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	documentID := flow.Param(r.Context(), "id")

	// Showcase entries are served straight from memory.
	if record := sampleAnalysis(documentID); record != nil {
		for _, doc := range sampleDocuments() {
			if doc.ID != documentID {
				continue
			}

			data := &types.DocumentPageData{
				BasePageData: types.BasePageData{Title: doc.FileName},
				Document:     doc,
				Analysis:     record,
				SampleView:   true,
			}

			if err := s.renderTemplate(w, r, "page.document", data); err != nil {
				s.logger.WithError(err).Error("failed to render sample document page")
				s.internalServerError(w)
			}
			return
		}
	}

	document, err := s.documentsRepo.DocumentForUser(r.Context(), documentID, userID)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).Error("failed to fetch document")
		s.internalServerError(w)
		return
	}

	data := &types.DocumentPageData{
		BasePageData: types.BasePageData{Title: document.FileName},
		Document:     document,
		Error:        r.URL.Query().Get("error"),
	}

	// A document can exist without an analysis row if its run died between
	// the two persistence phases.
	analysisRecord, err := s.analysesRepo.AnalysisByDocumentID(r.Context(), documentID)
	if err != nil && !errors.Is(err, types.ErrAnalysisNotFound) {
		s.logger.WithError(err).Error("failed to fetch document analysis")
		s.internalServerError(w)
		return
	}
	data.Analysis = analysisRecord

	chat, err := s.chatRepo.MessagesByDocumentID(r.Context(), documentID)
	if err != nil {
		s.logger.WithError(err).Error("failed to fetch chat messages")
		s.internalServerError(w)
		return
	}
	data.Chat = chat

	if err := s.renderTemplate(w, r, "page.document", data); err != nil {
		s.logger.WithError(err).Error("failed to render document page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleDocumentChat(w http.ResponseWriter, r *http.Request) {

	var ctx = r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	documentID := flow.Param(ctx, "id")

	document, err := s.documentsRepo.DocumentForUser(ctx, documentID, userID)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).Error("failed to fetch document for chat")
		s.internalServerError(w)
		return
	}

	question := strings.TrimSpace(r.FormValue("message"))
	if question == "" {
		http.Redirect(w, r, "/document/"+document.ID, http.StatusSeeOther)
		return
	}

	userMessage := &types.ChatMessage{
		ID:         gonanoid.Must(16),
		DocumentID: document.ID,
		UserID:     userID,
		Message:    question,
		IsUser:     true,
	}

	if err := s.chatRepo.CreateMessage(ctx, userMessage); err != nil {
		s.logger.WithError(err).Error("failed to store chat message")
		s.internalServerError(w)
		return
	}

	summary := ""
	analysisRecord, err := s.analysesRepo.AnalysisByDocumentID(ctx, document.ID)
	if err == nil {
		summary = utils.PtrString(analysisRecord.Summary)
	} else if !errors.Is(err, types.ErrAnalysisNotFound) {
		s.logger.WithError(err).Error("failed to fetch analysis for chat")
		s.internalServerError(w)
		return
	}

	answer, err := s.analyzer.Answer(ctx, summary, question)
	if err != nil {
		s.logger.WithError(err).Error("chat completion failed")
		answer = "Sorry, I could not answer that right now. Please try again."
	}

	assistantMessage := &types.ChatMessage{
		ID:         gonanoid.Must(16),
		DocumentID: document.ID,
		UserID:     userID,
		Message:    answer,
		IsUser:     false,
	}

	if err := s.chatRepo.CreateMessage(ctx, assistantMessage); err != nil {
		s.logger.WithError(err).Error("failed to store chat reply")
		s.internalServerError(w)
		return
	}

	// Chat activity counts as touching the document; bookkeeping only, the
	// exchange above already succeeded.
	if err := s.documentsRepo.UpdateDocument(ctx, document); err != nil {
		s.logger.WithError(err).Warn("failed to touch document after chat")
	}

	http.Redirect(w, r, "/document/"+document.ID, http.StatusSeeOther)
}

func (s *Service) handleDocumentDelete(w http.ResponseWriter, r *http.Request) {

	var ctx = r.Context()

	userID, err := s.userIDFromContext(ctx)
	if err != nil {
		s.redirectToLogin(w, r)
		return
	}

	documentID := flow.Param(ctx, "id")

	document, err := s.documentsRepo.DocumentForUser(ctx, documentID, userID)
	if err != nil {
		if errors.Is(err, types.ErrDocumentNotFound) {
			http.NotFound(w, r)
			return
		}
		s.logger.WithError(err).Error("failed to fetch document for deletion")
		s.internalServerError(w)
		return
	}

	// Remove the stored object first. If that fails the rows stay put so
	// the user can retry rather than leaking an orphaned object.
	if err := s.objects.Delete(ctx, document.FilePath); err != nil {
		s.logger.WithError(err).Error("failed to delete stored object")

		v := url.Values{}
		v.Set("error", "Could not delete the stored file. Please try again.")
		http.Redirect(w, r, "/document/"+document.ID+"?"+v.Encode(), http.StatusSeeOther)
		return
	}

	if err := s.chatRepo.DeleteMessagesByDocumentID(ctx, document.ID); err != nil {
		s.logger.WithError(err).Error("failed to delete chat messages")
		s.internalServerError(w)
		return
	}

	if err := s.analysesRepo.DeleteAnalysesByDocumentID(ctx, document.ID); err != nil {
		s.logger.WithError(err).Error("failed to delete analyses")
		s.internalServerError(w)
		return
	}

	if err := s.documentsRepo.DeleteDocument(ctx, document.ID, userID); err != nil {
		s.logger.WithError(err).Error("failed to delete document row")
		s.internalServerError(w)
		return
	}

	http.Redirect(w, r, "/history?notice=Document+deleted", http.StatusSeeOther)
}
