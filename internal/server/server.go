package server

import (
	"context"
	"embed"
	"encoding/base64"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"rfpdesk/internal/analysis"
	"rfpdesk/internal/auth"
	"rfpdesk/internal/pipeline"
	"rfpdesk/internal/storage"
	"rfpdesk/internal/store"
	"rfpdesk/pkg/types"

	"github.com/alexedwards/flow"
	"github.com/go-playground/form/v4"
	"github.com/gorilla/securecookie"
	"github.com/lestrrat-go/jwx/v3/jwk"
	"github.com/sirupsen/logrus"
)

//go:embed templates static
var uiFS embed.FS
var decoder = form.NewDecoder()

type Service struct {
	logger    *logrus.Logger
	config    *types.Config
	templates *template.Template

	authClient *auth.Client
	cookie     *securecookie.SecureCookie

	documentsRepo *store.DocumentRepository
	analysesRepo  *store.AnalysisRepository
	chatRepo      *store.ChatRepository

	objects  storage.ObjectStore
	pipeline *pipeline.Pipeline
	runs     *pipeline.Registry
	analyzer *analysis.Client

	jwksCache *jwk.Cache
	jwksURL   string

	server *http.Server
}

func New(
	config *types.Config,
	logger *logrus.Logger,
	authClient *auth.Client,
	documentsRepo *store.DocumentRepository,
	analysesRepo *store.AnalysisRepository,
	chatRepo *store.ChatRepository,
	objects storage.ObjectStore,
	pipe *pipeline.Pipeline,
	runs *pipeline.Registry,
	analyzer *analysis.Client,
	jwkCache *jwk.Cache,
	jwksURL string,
) (*Service, error) {
	mux := flow.New()

	hashKey, _ := base64.StdEncoding.DecodeString(config.CookieHashKey)
	blockKey, _ := base64.StdEncoding.DecodeString(config.CookieBlockKey)

	s := &Service{
		logger:     logger,
		config:     config,
		authClient: authClient,
		cookie:     securecookie.New(hashKey, blockKey),

		documentsRepo: documentsRepo,
		analysesRepo:  analysesRepo,
		chatRepo:      chatRepo,

		objects:  objects,
		pipeline: pipe,
		runs:     runs,
		analyzer: analyzer,

		jwksCache: jwkCache,
		jwksURL:   jwksURL,
		server: &http.Server{
			Addr:              fmt.Sprintf(":%d", config.ServerPort),
			Handler:           mux,
			ReadTimeout:       time.Duration(config.ReadTimeoutSec) * time.Second,
			ReadHeaderTimeout: time.Duration(config.ReadTimeoutSec) * time.Second,
			WriteTimeout:      time.Duration(config.WriteTimeoutSec) * time.Second,
			MaxHeaderBytes:    1 << 20,
		},
	}

	templates, err := loadTemplates()
	if err != nil {
		return nil, err
	}
	s.templates = templates

	s.buildRouter(mux)

	return s, nil
}

func (s *Service) Start() error {
	return s.server.ListenAndServe()
}

func (s *Service) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

func (s *Service) buildRouter(r *flow.Mux) {
	r.Use(s.StripTrailingSlash)
	r.Use(s.LoggingMiddleware)

	r.HandleFunc("/", s.handleHome, http.MethodGet)
	r.HandleFunc("/healthz", s.handleHealth, http.MethodGet)

	r.HandleFunc("/register", s.handleGetRegister, http.MethodGet)
	r.HandleFunc("/register", s.handlePostRegister, http.MethodPost)
	r.HandleFunc("/login", s.handleGetLogin, http.MethodGet)
	r.HandleFunc("/login", s.handlePostLogin, http.MethodPost)
	r.HandleFunc("/logout", s.handleLogout, http.MethodPost)

	r.Group(func(r *flow.Mux) {
		r.Use(s.RequireAuth)

		r.HandleFunc("/upload", s.handleGetUpload, http.MethodGet)
		r.HandleFunc("/upload", s.handlePostUpload, http.MethodPost)
		r.HandleFunc("/upload/run/:runID", s.handleProcessingPage, http.MethodGet)
		r.HandleFunc("/api/runs/:runID", s.handleRunStatus, http.MethodGet)

		r.HandleFunc("/history", s.handleHistory, http.MethodGet)
		r.HandleFunc("/document/:id", s.handleDocumentDetail, http.MethodGet)
		r.HandleFunc("/document/:id/chat", s.handleDocumentChat, http.MethodPost)
		r.HandleFunc("/document/:id/delete", s.handleDocumentDelete, http.MethodPost)
	})

	staticRoot, err := fs.Sub(uiFS, "static")
	if err != nil {
		s.logger.WithError(err).Fatal("failed to mount static assets")
	}
	r.Handle("/static/...", http.StripPrefix("/static/", http.FileServer(http.FS(staticRoot))), http.MethodGet)
}

func loadTemplates() (*template.Template, error) {
	funcMap := template.FuncMap{
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
		"derefOr": func(s *string, defaultVal string) string {
			if s == nil {
				return defaultVal
			}
			return *s
		},
	}

	t := template.New("").Funcs(funcMap)
	err := fs.WalkDir(uiFS, "templates", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".html") {
			return nil
		}

		data, err := fs.ReadFile(uiFS, path)
		if err != nil {
			return fmt.Errorf("read template %s: %w", path, err)
		}

		if _, err := t.Parse(string(data)); err != nil {
			return fmt.Errorf("parse template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return t, nil
}

func (s *Service) userIDFromContext(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(contextKeyUserID).(string)
	if !ok {
		return "", fmt.Errorf("user id not found in context")
	}
	return userID, nil
}
