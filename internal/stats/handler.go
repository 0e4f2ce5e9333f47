package stats

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/wikistats/shorturls/internal/chart"
	"github.com/wikistats/shorturls/internal/errx"
	"github.com/wikistats/shorturls/internal/httpx"
)

//go:embed templates/*.html
var templateFS embed.FS

// Handler provides the HTTP surface: HTML pages, JSON API, and SVG charts.
type Handler struct {
	service   Service
	logger    *slog.Logger
	templates *template.Template
}

// HandlerConfig holds configuration for the handler.
type HandlerConfig struct {
	Service Service
	Logger  *slog.Logger
}

// NewHandler creates a new Handler instance.
func NewHandler(cfg HandlerConfig) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	templates := template.Must(template.New("").Funcs(template.FuncMap{
		"commafy": commafy,
		"inc":     func(i int) int { return i + 1 },
		"pct":     pct,
	}).ParseFS(templateFS, "templates/*.html"))

	return &Handler{
		service:   cfg.Service,
		logger:    logger,
		templates: templates,
	}
}

// indexData feeds templates/main.html.
type indexData struct {
	Date  time.Time
	Total int64
	Stats []DomainCount
}

// domainData feeds templates/domain.html and the domain API responses.
type domainData struct {
	Domain string    `json:"domain"`
	Count  int64     `json:"count"`
	Date   time.Time `json:"-"`
}

// Index handles GET / with a ranked table of domains for the latest dump.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	d, snap, err := h.service.Latest(ctx)
	if err != nil {
		h.renderError(ctx, w, err)
		return
	}

	h.renderHTML(ctx, w, http.StatusOK, "main.html", indexData{
		Date:  d.Date,
		Total: snap.Total,
		Stats: snap.Stats,
	})
}

// IndexAPI handles GET /api.json with the latest snapshot.
func (h *Handler) IndexAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	_, snap, err := h.service.Latest(ctx)
	if err != nil {
		h.writeAPIError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, snap)
}

// Domain handles GET /{domain} with a page for one target domain.
func (h *Handler) Domain(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := h.domainData(ctx, r.PathValue("domain"))
	if err != nil {
		h.renderError(ctx, w, err)
		return
	}

	h.renderHTML(ctx, w, http.StatusOK, "domain.html", data)
}

// DomainAPI handles GET /{domain}/api.json.
func (h *Handler) DomainAPI(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	data, err := h.domainData(ctx, r.PathValue("domain"))
	if err != nil {
		h.writeAPIError(ctx, w, err)
		return
	}

	httpx.WriteJSON(w, http.StatusOK, data)
}

// Chart handles GET /chart.svg: the grand total over time, one point per
// published dump.
func (h *Handler) Chart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	points, err := h.service.Trend(ctx)
	if err != nil {
		h.writeAPIError(ctx, w, err)
		return
	}

	h.renderChart(ctx, w, chart.Series{Name: "total", Points: toChartPoints(points)})
}

// DomainChart handles GET /{domain}/chart.svg: the total series plus the
// domain's own series.
func (h *Handler) DomainChart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	domain := r.PathValue("domain")

	totals, err := h.service.Trend(ctx)
	if err != nil {
		h.writeAPIError(ctx, w, err)
		return
	}
	domainPoints, err := h.service.DomainTrend(ctx, domain)
	if err != nil {
		h.writeAPIError(ctx, w, err)
		return
	}

	h.renderChart(ctx, w,
		chart.Series{Name: "total", Points: toChartPoints(totals)},
		chart.Series{Name: domain, Points: toChartPoints(domainPoints)},
	)
}

// domainData resolves one domain in the latest snapshot.
func (h *Handler) domainData(ctx context.Context, domain string) (domainData, error) {
	const op = "stats.handler.domainData"

	d, snap, err := h.service.Latest(ctx)
	if err != nil {
		return domainData{}, err
	}

	count, ok := snap.Count(domain)
	if !ok {
		return domainData{}, errx.E(op, errx.NotFound,
			&unknownDomainError{domain: domain})
	}

	return domainData{Domain: domain, Count: count, Date: d.Date}, nil
}

func toChartPoints(points []TrendPoint) []chart.Point {
	out := make([]chart.Point, len(points))
	for i, p := range points {
		out[i] = chart.Point{Date: p.Date, Value: float64(p.Count)}
	}
	return out
}

type unknownDomainError struct {
	domain string
}

func (e *unknownDomainError) Error() string {
	return "unknown domain: " + e.domain
}

// renderChart renders the series and writes them as image/svg+xml.
func (h *Handler) renderChart(ctx context.Context, w http.ResponseWriter, series ...chart.Series) {
	var buf bytes.Buffer
	if err := chart.Render(&buf, series...); err != nil {
		h.logger.ErrorContext(ctx, "chart rendering failed",
			"request_id", httpx.GetRequestID(ctx),
			"error", err.Error(),
		)
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error",
			"unable to render chart", nil)
		return
	}

	httpx.WriteSVG(w, http.StatusOK, buf.Bytes())
}

// renderHTML executes the named template into a buffer first so a template
// failure can still become a clean 500 instead of a half-written page.
func (h *Handler) renderHTML(ctx context.Context, w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.ErrorContext(ctx, "template execution failed",
			"request_id", httpx.GetRequestID(ctx),
			"template", name,
			"error", err.Error(),
		)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.ErrorContext(ctx, "failed to write HTML response", "error", err.Error())
	}
}

// renderError maps a service error onto the HTML error page.
func (h *Handler) renderError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)
	status := httpx.ErrorKindToStatus(kind)

	h.logError(ctx, kind, err)

	h.renderHTML(ctx, w, status, "error.html", struct {
		Status  int
		Message string
	}{
		Status:  status,
		Message: publicMessage(kind),
	})
}

// writeAPIError maps a service error onto a JSON error response.
func (h *Handler) writeAPIError(ctx context.Context, w http.ResponseWriter, err error) {
	kind := errx.KindOf(err)

	h.logError(ctx, kind, err)

	httpx.WriteError(w, httpx.ErrorKindToStatus(kind), httpx.ErrorKindToCode(kind),
		publicMessage(kind), nil)
}

func (h *Handler) logError(ctx context.Context, kind errx.Kind, err error) {
	attrs := []any{
		"request_id", httpx.GetRequestID(ctx),
		"error", err.Error(),
		"error_kind", kind,
		"operation", errx.OpOf(err),
	}

	switch kind {
	case errx.NotFound:
		h.logger.WarnContext(ctx, "lookup failed", attrs...)
	default:
		h.logger.ErrorContext(ctx, "request failed", attrs...)
	}
}

// publicMessage keeps filesystem paths and parse details out of responses.
func publicMessage(kind errx.Kind) string {
	switch kind {
	case errx.NotFound:
		return "not found"
	case errx.Invalid:
		return "dump data is malformed"
	case errx.Unavailable:
		return "temporarily unavailable, please try again"
	default:
		return "internal server error"
	}
}

// pct formats count as a percentage of total with one decimal place.
func pct(count, total int64) string {
	if total == 0 {
		return "0.0%"
	}
	return strconv.FormatFloat(float64(count)/float64(total)*100, 'f', 1, 64) + "%"
}

// commafy formats n with thousands separators for the HTML templates.
func commafy(n int64) string {
	s := strconv.FormatInt(n, 10)

	neg := false
	if len(s) > 0 && s[0] == '-' {
		neg = true
		s = s[1:]
	}

	var out []byte
	for i, c := range []byte(s) {
		if i > 0 && (len(s)-i)%3 == 0 {
			out = append(out, ',')
		}
		out = append(out, c)
	}

	if neg {
		return "-" + string(out)
	}
	return string(out)
}
