package server

import (
	"net/http"

	"rfpdesk/pkg/types"
)

func (s *Service) handleHome(w http.ResponseWriter, r *http.Request) {

	data := &types.HomePageData{
		BasePageData: types.BasePageData{Title: "RFP Desk"},
		Notice:       r.URL.Query().Get("notice"),
		Error:        r.URL.Query().Get("error"),
	}

	if err := s.renderTemplate(w, r, "page.home", data); err != nil {
		s.logger.WithError(err).Error("failed to render home page")
		s.internalServerError(w)
		return
	}
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
