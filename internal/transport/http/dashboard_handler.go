package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "stockpulse/internal/errors"
	"stockpulse/internal/exporter"
	"stockpulse/internal/middleware"
	"stockpulse/internal/renderer"
	"stockpulse/internal/services"
	api "stockpulse/pkg/contracts/api/v1"
)

// DashboardHandler handles dashboard HTTP requests with RFC 7807 compliance
type DashboardHandler struct {
	service        DashboardServiceInterface
	reloader       DatasetReloaderInterface
	validator      *middleware.Validator
	queryValidator *middleware.QueryParamValidator
	tables         *exporter.TableWriter
	logger         *slog.Logger
	errorHandler   *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(service DashboardServiceInterface, reloader DatasetReloaderInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *DashboardHandler {
	return &DashboardHandler{
		service:        service,
		reloader:       reloader,
		validator:      middleware.NewValidator(logger),
		queryValidator: middleware.NewQueryParamValidator(errorHandler),
		tables:         exporter.NewTableWriter(logger),
		logger:         logger.With(slog.String("component", "dashboard_handler")),
		errorHandler:   errorHandler,
	}
}

// Routes returns the dashboard routes
func (h *DashboardHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/catalog", h.GetCatalog)

	r.Route("/views", func(r chi.Router) {
		r.Get("/date", h.GetDateView)
		r.Get("/range", h.GetRangeView)
		r.Get("/month", h.GetMonthView)
		r.Get("/symbols", h.GetSymbolView)
	})

	r.Get("/symbols", h.GetSymbols)
	r.Get("/search", h.SearchCompanies)

	r.Route("/stocks/{symbol}", func(r chi.Router) {
		r.Use(h.SymbolCtx)
		r.Get("/highs", h.GetHighTrajectory)
	})

	r.Get("/export/{view}", h.ExportView)
	r.Get("/report/{view}", h.ReportView)
	r.Post("/reload", h.Reload)

	return r
}

// SymbolCtx middleware validates the symbol path parameter
func (h *DashboardHandler) SymbolCtx(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := api.SymbolViewRequest{Symbols: []string{chi.URLParam(r, "symbol")}}
		if err := h.validator.ValidateStruct(req); err != nil {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("symbol", "Invalid ticker symbol format"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetCatalog handles GET /api/dashboard/catalog
func (h *DashboardHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	catalog, err := h.service.Catalog(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "failed to get catalog", err)
		return
	}
	respond(w, r, catalog)
}

// GetDateView handles GET /api/dashboard/views/date
func (h *DashboardHandler) GetDateView(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, string(api.ViewDate))
}

// GetRangeView handles GET /api/dashboard/views/range
func (h *DashboardHandler) GetRangeView(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, string(api.ViewRange))
}

// GetMonthView handles GET /api/dashboard/views/month
func (h *DashboardHandler) GetMonthView(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, string(api.ViewMonth))
}

// GetSymbolView handles GET /api/dashboard/views/symbols
func (h *DashboardHandler) GetSymbolView(w http.ResponseWriter, r *http.Request) {
	h.serveView(w, r, string(api.ViewSymbols))
}

func (h *DashboardHandler) serveView(w http.ResponseWriter, r *http.Request, view string) {
	resp, err := h.buildView(r, view)
	if err != nil {
		h.handleServiceError(w, r, "failed to build view", err)
		return
	}

	h.logger.InfoContext(r.Context(), "view served",
		slog.String("view", view),
		slog.Int("records", resp.RecordCount),
		slog.Bool("empty", resp.Empty()))
	respond(w, r, resp)
}

// buildView parses and validates the view request from the query string
// and asks the service for the view.
func (h *DashboardHandler) buildView(r *http.Request, view string) (*api.ViewResponse, error) {
	q := r.URL.Query()
	ctx := r.Context()

	switch api.ViewKind(view) {
	case api.ViewDate:
		req := api.DateViewRequest{Date: q.Get("date"), Refinement: refinementFrom(q)}
		if err := h.validator.ValidateStruct(req); err != nil {
			return nil, err
		}
		return h.service.DateView(ctx, req)
	case api.ViewRange:
		req := api.RangeViewRequest{From: q.Get("from"), To: q.Get("to"), Refinement: refinementFrom(q)}
		if err := h.validator.ValidateStruct(req); err != nil {
			return nil, err
		}
		return h.service.RangeView(ctx, req)
	case api.ViewMonth:
		req := api.MonthViewRequest{Month: q.Get("month"), Refinement: refinementFrom(q)}
		if err := h.validator.ValidateStruct(req); err != nil {
			return nil, err
		}
		return h.service.MonthView(ctx, req)
	case api.ViewSymbols:
		req := api.SymbolViewRequest{Symbols: symbolsFrom(q)}
		if err := h.validator.ValidateStruct(req); err != nil {
			return nil, err
		}
		return h.service.SymbolView(ctx, req)
	default:
		return nil, fmt.Errorf("%w: %s", services.ErrUnknownView, view)
	}
}

// GetSymbols handles GET /api/dashboard/symbols?prefix=
func (h *DashboardHandler) GetSymbols(w http.ResponseWriter, r *http.Request) {
	req := api.SymbolPrefixRequest{Prefix: r.URL.Query().Get("prefix")}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	list, err := h.service.SymbolsStartingWith(r.Context(), req.Prefix)
	if err != nil {
		h.handleServiceError(w, r, "failed to list symbols", err)
		return
	}
	respond(w, r, list)
}

// SearchCompanies handles GET /api/dashboard/search?q=&limit=
func (h *DashboardHandler) SearchCompanies(w http.ResponseWriter, r *http.Request) {
	limit, ok := h.queryValidator.ValidateInt(w, r, "limit", 1, 100, 10)
	if !ok {
		return
	}
	req := api.CompanySearchRequest{Query: strings.TrimSpace(r.URL.Query().Get("q")), Limit: limit}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	result, err := h.service.SearchCompanies(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, r, "company search failed", err)
		return
	}
	respond(w, r, result)
}

// GetHighTrajectory handles GET /api/dashboard/stocks/{symbol}/highs
func (h *DashboardHandler) GetHighTrajectory(w http.ResponseWriter, r *http.Request) {
	traj, err := h.service.HighTrajectory(r.Context(), chi.URLParam(r, "symbol"))
	if err != nil {
		h.handleServiceError(w, r, "failed to get high trajectory", err)
		return
	}
	respond(w, r, traj)
}

// ExportView handles GET /api/dashboard/export/{view}?format=csv|xlsx|pdf
func (h *DashboardHandler) ExportView(w http.ResponseWriter, r *http.Request) {
	exportReq := api.ExportRequest{
		View:   chi.URLParam(r, "view"),
		Format: strings.ToLower(r.URL.Query().Get("format")),
	}
	if err := h.validator.ValidateStruct(exportReq); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	format, err := exporter.ParseFormat(exportReq.Format)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("format", err.Error()))
		return
	}

	view, err := h.buildView(r, exportReq.View)
	if err != nil {
		h.handleServiceError(w, r, "failed to build view for export", err)
		return
	}
	table, err := services.PrimaryTable(view)
	if err != nil {
		h.handleServiceError(w, r, "nothing to export", err)
		return
	}

	var buf bytes.Buffer
	if err := h.tables.Write(r.Context(), &buf, table, format); err != nil {
		h.logger.ErrorContext(r.Context(), "table export failed", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrExportFailed)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exporter.FileName(table, format)))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write export", slog.String("error", err.Error()))
	}
}

// ReportView handles GET /api/dashboard/report/{view}?format=md|html
func (h *DashboardHandler) ReportView(w http.ResponseWriter, r *http.Request) {
	req := api.ReportRequest{
		View:   chi.URLParam(r, "view"),
		Format: strings.ToLower(r.URL.Query().Get("format")),
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.buildView(r, req.View)
	if err != nil {
		h.handleServiceError(w, r, "failed to build view for report", err)
		return
	}
	markdown := renderer.ViewMarkdown(view)

	if req.Format == "md" {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(markdown))
		return
	}

	page, err := renderer.HTML(view.Title, markdown)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "report rendering failed", slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(page); err != nil {
		h.logger.WarnContext(r.Context(), "failed to write report", slog.String("error", err.Error()))
	}
}

// Reload handles POST /api/dashboard/reload
func (h *DashboardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	result, err := h.reloader.Reload(r.Context())
	if err != nil {
		h.handleServiceError(w, r, "dataset reload failed", err)
		return
	}

	h.logger.InfoContext(r.Context(), "dataset reloaded",
		slog.String("source", result.Source),
		slog.Int("records", result.RecordCount))
	respond(w, r, result)
}

// handleServiceError maps service errors to API errors
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		slog.String("error", err.Error()),
		slog.String("path", r.URL.Path))

	switch {
	case errors.Is(err, services.ErrDatasetNotLoaded):
		h.errorHandler.HandleError(w, r, apierrors.ErrDatasetNotLoaded)
	case errors.Is(err, services.ErrSymbolNotFound):
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusNotFound, "SYMBOL_NOT_FOUND", "Symbol not found in dataset", chi.URLParam(r, "symbol")))
	case errors.Is(err, services.ErrSearchDisabled):
		h.errorHandler.HandleError(w, r, apierrors.ErrSearchDisabled)
	case errors.Is(err, services.ErrNoTable):
		h.errorHandler.HandleError(w, r, apierrors.New(http.StatusNotFound, "NO_TABLE", "The selected view has no table to export"))
	case errors.Is(err, services.ErrUnknownView):
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("view", err.Error()))
	default:
		h.errorHandler.HandleError(w, r, err)
	}
}

func respond(w http.ResponseWriter, r *http.Request, data interface{}) {
	render.JSON(w, r, map[string]interface{}{
		"status": "success",
		"data":   data,
	})
}

func refinementFrom(q url.Values) api.Refinement {
	return api.Refinement{
		Sector: strings.TrimSpace(q.Get("sector")),
		Series: strings.TrimSpace(q.Get("series")),
	}
}

// symbolsFrom accepts repeated symbol params as well as comma-separated lists.
func symbolsFrom(q url.Values) []string {
	var symbols []string
	for _, v := range append(q["symbol"], q["symbols"]...) {
		for _, s := range strings.Split(v, ",") {
			if s = strings.TrimSpace(s); s != "" {
				symbols = append(symbols, s)
			}
		}
	}
	return symbols
}
