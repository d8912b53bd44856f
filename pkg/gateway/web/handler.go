// Package web serves the two-page decision-support UI and its JSON API.
package web

import (
	"bytes"
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/Fe2Far/fiap-challenge4/pkg/analytics"
	"github.com/Fe2Far/fiap-challenge4/pkg/common/logger"
	"github.com/Fe2Far/fiap-challenge4/pkg/common/models"
	"github.com/Fe2Far/fiap-challenge4/pkg/dataset"
	"github.com/Fe2Far/fiap-challenge4/pkg/diagnosis"
	"github.com/Fe2Far/fiap-challenge4/pkg/features"
	"github.com/Fe2Far/fiap-challenge4/pkg/gateway/middleware"
	"github.com/Fe2Far/fiap-challenge4/pkg/ml/labels"
	"github.com/Fe2Far/fiap-challenge4/pkg/ml/pipeline"
	"github.com/Fe2Far/fiap-challenge4/pkg/observability/metrics"
	"github.com/Fe2Far/fiap-challenge4/pkg/serving"
	"github.com/Fe2Far/fiap-challenge4/pkg/session"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"golang.org/x/text/language"
)

const (
	sessionCookie   = "dss_session"
	maxHistoryLimit = 500
)

//go:embed templates/*.html
var templateFS embed.FS

// Artifacts is satisfied by *artifacts.Loader.
type Artifacts interface {
	GetModels() (pipeline.Pipeline, *labels.Encoder, error)
	GetDataset() (*dataset.Table, error)
}

// History lists recorded diagnoses; satisfied by *serving.Repository.
type History interface {
	Recent(ctx context.Context, limit int) ([]serving.DiagnosisLog, error)
}

type Options struct {
	Store           session.Store
	History         History
	InvokerOptions  []serving.Option
	DefaultLanguage string
	SessionTTL      time.Duration
	CookieSecure    bool
}

type Handler struct {
	artifacts Artifacts
	invoker   *serving.Invoker
	store     session.Store
	history   History
	pages     map[session.Page]*template.Template
	fallback  language.Tag
	ttl       time.Duration
	secure    bool

	chartsOnce sync.Once
	charts     []analytics.Chart
	chartsErr  error
}

// NewHandler requires the artifacts to load; callers warm them first.
func NewHandler(a Artifacts, opts Options) (*Handler, error) {
	p, enc, err := a.GetModels()
	if err != nil {
		return nil, err
	}
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}

	store := opts.Store
	if store == nil {
		store = session.NewMemoryStore(opts.SessionTTL)
	}
	fallback, err := language.Parse(opts.DefaultLanguage)
	if err != nil {
		fallback = language.BrazilianPortuguese
	}

	return &Handler{
		artifacts: a,
		invoker:   serving.NewInvoker(p, enc, opts.InvokerOptions...),
		store:     store,
		history:   opts.History,
		pages:     pages,
		fallback:  fallback,
		ttl:       opts.SessionTTL,
		secure:    opts.CookieSecure,
	}, nil
}

func parseTemplates() (map[session.Page]*template.Template, error) {
	base, err := template.ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("parse layout: %w", err)
	}
	pages := make(map[session.Page]*template.Template, len(session.Pages))
	for _, p := range session.Pages {
		clone, err := base.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := clone.ParseFS(templateFS, "templates/"+string(p)+".html"); err != nil {
			return nil, fmt.Errorf("parse %s page: %w", p, err)
		}
		pages[p] = clone
	}
	return pages, nil
}

func (h *Handler) Register(router *mux.Router) {
	router.HandleFunc("/", h.handleIndex).Methods(http.MethodGet)
	router.HandleFunc("/nav", h.handleNav).Methods(http.MethodPost)
	router.HandleFunc("/diagnostic", h.handleDiagnostic).Methods(http.MethodPost)
	router.HandleFunc("/health", h.handleHealth).Methods(http.MethodGet)

	api := router.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.CORS)
	api.HandleFunc("/charts", h.handleCharts).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/form", h.handleForm).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/classes", h.handleClasses).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/diagnose", h.handleDiagnose).Methods(http.MethodPost, http.MethodOptions)
	if h.history != nil {
		api.HandleFunc("/diagnoses", h.handleHistory).Methods(http.MethodGet, http.MethodOptions)
	}
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) handleIndex(w http.ResponseWriter, r *http.Request) {
	id := h.sessionID(w, r)
	state := h.loadState(r.Context(), id)
	l := negotiate(r, h.fallback)
	h.rememberLanguage(w, r, l)

	switch state.Page {
	case session.PageDiagnostic:
		view := newPageView(l, langQuery(r), session.PageDiagnostic)
		view.Sections = formSections(l, diagnosis.NewDraft(), nil)
		h.render(w, http.StatusOK, session.PageDiagnostic, view)
	default:
		h.renderAnalytics(w, r, l)
	}
}

func (h *Handler) renderAnalytics(w http.ResponseWriter, r *http.Request, l locale) {
	view := newPageView(l, langQuery(r), session.PageAnalytics)
	charts, err := h.localizedCharts(l)
	status := http.StatusOK
	if err != nil {
		logger.Log.WithError(err).Error("failed to build analytics charts")
		view.Error = l.T("error.dataset")
		status = http.StatusInternalServerError
	}
	view.Charts = charts
	h.render(w, status, session.PageAnalytics, view)
}

func (h *Handler) handleNav(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	page, err := session.ParsePage(r.PostForm.Get("page"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	id := h.sessionID(w, r)
	if err := h.store.Set(r.Context(), id, session.State{Page: page}); err != nil {
		logger.Log.WithError(err).Warn("failed to store navigation state")
	}
	http.Redirect(w, r, "/"+langQuery(r), http.StatusSeeOther)
}

// handleDiagnostic is the grouped submit of the patient form. Nothing
// downstream runs until the whole form is posted.
func (h *Handler) handleDiagnostic(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id := h.sessionID(w, r)
	if err := h.store.Set(r.Context(), id, session.State{Page: session.PageDiagnostic}); err != nil {
		logger.Log.WithError(err).Warn("failed to store navigation state")
	}

	l := negotiate(r, h.fallback)
	draft := diagnosis.FromValues(r.PostForm)
	view := newPageView(l, langQuery(r), session.PageDiagnostic)

	status := http.StatusOK
	result, err := h.diagnoseDraft(r.Context(), draft)
	if err != nil {
		kind, key, code := errorKind(err)
		status = code
		view.Error = l.T(key)
		logger.Log.WithError(err).WithField("kind", kind).Warn("diagnosis rejected")
		view.Sections = formSections(l, draft, fieldErrors(err))
	} else {
		view.Sections = formSections(l, draft, nil)
		view.Result = &result
		view.Probabilities = sortedProbabilities(h.invoker.Classes(), result.Probabilities)
	}
	h.render(w, status, session.PageDiagnostic, view)
}

func (h *Handler) diagnoseDraft(ctx context.Context, draft *diagnosis.Draft) (models.DiagnosisResult, error) {
	in, err := draft.Submit()
	if err != nil {
		metrics.ObserveRejection("validation")
		return models.DiagnosisResult{}, err
	}
	return h.diagnose(ctx, in)
}

func (h *Handler) diagnose(ctx context.Context, in models.PatientInput) (models.DiagnosisResult, error) {
	table, err := h.artifacts.GetDataset()
	if err != nil {
		return models.DiagnosisResult{}, err
	}
	row, err := features.Assemble(in, table.Columns())
	if err != nil {
		reason, _, _ := errorKind(err)
		metrics.ObserveRejection(reason)
		return models.DiagnosisResult{}, err
	}
	return h.invoker.Diagnose(ctx, row)
}

func (h *Handler) handleCharts(w http.ResponseWriter, r *http.Request) {
	charts, err := h.localizedCharts(negotiate(r, h.fallback))
	if err != nil {
		logger.Log.WithError(err).Error("failed to build analytics charts")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: err.Error(), Kind: "dataset"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"charts": charts})
}

type formField struct {
	diagnosis.Field
	Label string `json:"label"`
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	l := negotiate(r, h.fallback)
	type section struct {
		ID     diagnosis.Section `json:"id"`
		Title  string            `json:"title"`
		Fields []formField       `json:"fields"`
	}
	out := make([]section, 0, len(diagnosis.Sections))
	for _, s := range diagnosis.Sections {
		sec := section{ID: s, Title: l.T("section." + string(s))}
		for _, f := range diagnosis.InSection(s) {
			sec.Fields = append(sec.Fields, formField{Field: f, Label: l.T("field." + f.Name)})
		}
		out = append(out, sec)
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"language": l.Code(),
		"sections": out,
	})
}

func (h *Handler) handleClasses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{"classes": h.invoker.Classes()})
}

func (h *Handler) handleDiagnose(w http.ResponseWriter, r *http.Request) {
	in := diagnosis.Defaults()
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		logger.Log.WithError(err).Warn("invalid diagnosis payload")
		writeJSON(w, http.StatusBadRequest, models.ErrorResponse{Error: "invalid request body", Kind: "bad_request"})
		return
	}

	result, err := h.diagnose(r.Context(), in)
	if err != nil {
		kind, _, status := errorKind(err)
		writeJSON(w, status, models.ErrorResponse{Error: err.Error(), Kind: kind, Fields: fieldErrors(err)})
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			writeJSON(w, http.StatusBadRequest, models.ErrorResponse{
				Error: fmt.Sprintf("limit must be between 1 and %d", maxHistoryLimit),
				Kind:  "bad_request",
			})
			return
		}
		limit = n
	}

	logs, err := h.history.Recent(r.Context(), limit)
	if err != nil {
		logger.Log.WithError(err).Error("failed to list diagnoses")
		writeJSON(w, http.StatusInternalServerError, models.ErrorResponse{Error: "failed to list diagnoses", Kind: "internal"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"diagnoses": logs, "count": len(logs)})
}

func (h *Handler) localizedCharts(l locale) ([]analytics.Chart, error) {
	h.chartsOnce.Do(func() {
		table, err := h.artifacts.GetDataset()
		if err != nil {
			h.chartsErr = err
			return
		}
		h.charts, h.chartsErr = analytics.Build(table, h.invoker.Classes())
	})
	if h.chartsErr != nil {
		return nil, h.chartsErr
	}
	out := make([]analytics.Chart, len(h.charts))
	copy(out, h.charts)
	for i := range out {
		out[i].SetTitle(l.T("chart." + out[i].ID))
	}
	return out, nil
}

func (h *Handler) render(w http.ResponseWriter, status int, page session.Page, view pageView) {
	var buf bytes.Buffer
	if err := h.pages[page].ExecuteTemplate(&buf, "layout", view); err != nil {
		logger.Log.WithError(err).WithField("page", page).Error("failed to render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// sessionID returns the browser's session id, issuing a new cookie when the
// request carries none or a malformed one.
func (h *Handler) sessionID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			return c.Value
		}
	}
	id := uuid.New().String()
	cookie := &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	}
	if h.ttl > 0 {
		cookie.MaxAge = int(h.ttl.Seconds())
	}
	http.SetCookie(w, cookie)
	r.AddCookie(cookie)
	return id
}

func (h *Handler) loadState(ctx context.Context, id string) session.State {
	state, err := h.store.Get(ctx, id)
	if err != nil {
		logger.Log.WithError(err).Warn("failed to load navigation state")
		return session.DefaultState()
	}
	return state
}

// rememberLanguage persists an explicit ?lang= choice.
func (h *Handler) rememberLanguage(w http.ResponseWriter, r *http.Request, l locale) {
	if r.URL.Query().Get("lang") == "" {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     langCookie,
		Value:    l.Code(),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func langQuery(r *http.Request) string {
	if lang := r.URL.Query().Get("lang"); lang != "" {
		return "?lang=" + url.QueryEscape(lang)
	}
	return ""
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.WithError(err).Warn("failed to encode response")
	}
}
