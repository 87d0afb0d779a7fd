package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"adarecon/internal/config"
	apierrors "adarecon/internal/errors"
	"adarecon/internal/exporter"
	"adarecon/internal/infrastructure"
	"adarecon/internal/services"
	"adarecon/pkg/contracts/domain"
)

// Multipart field names.
const (
	FieldSummary      = "summary"
	FieldWorkbook     = "workbook"
	FieldOverrides    = "overrides"
	FieldAllowPartial = "allow_partial"
	FieldSchoolYear   = "school_year"
	FieldSchoolName   = "school_name"
	FieldLocation     = "location"
)

const (
	contentTypeCSV  = "text/csv; charset=utf-8"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	multipartMemory = 8 << 20
)

// BoundariesResponse is the body of POST /boundaries.
type BoundariesResponse struct {
	*services.Analysis
	Message    string `json:"message"`
	Sufficient bool   `json:"sufficient"`
}

// runForm holds the validated form fields of a dashboard or audit request.
type runForm struct {
	Meta         domain.RunMeta
	AllowPartial bool
	Overrides    map[domain.ProgramCode]domain.Override
}

// ReconciliationHandler serves the reconciliation pipeline over multipart
// uploads. Nothing is written to disk; results are streamed back.
type ReconciliationHandler struct {
	service      ReconciliationServiceInterface
	defaults     domain.RunMeta
	outputName   string
	validate     *validator.Validate
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	now          func() time.Time
}

// NewReconciliationHandler creates a handler. defaults fill run metadata
// fields the client leaves empty.
func NewReconciliationHandler(service ReconciliationServiceInterface, run config.RunConfig, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ReconciliationHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconciliationHandler{
		service:      service,
		defaults:     run.Meta(),
		outputName:   run.OutputName,
		validate:     validator.New(),
		logger:       infrastructure.WithComponent(logger, "reconciliation_handler"),
		errorHandler: errorHandler,
		now:          time.Now,
	}
}

// Routes returns the reconciliation routes
func (h *ReconciliationHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/boundaries", h.Boundaries)
	r.Post("/dashboard", h.Dashboard)
	r.Post("/audit", h.Audit)
	return r
}

// Boundaries handles POST /api/v1/boundaries: it reports the computed
// intervals of an uploaded summary, with optional overrides applied.
func (h *ReconciliationHandler) Boundaries(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(r); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	form, err := h.readRunForm(r, false)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	analysis, err := h.analyze(r, form)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, BoundariesResponse{
		Analysis:   analysis,
		Message:    analysis.Readiness.Message(),
		Sufficient: analysis.Readiness.Sufficient(),
	})
}

// Dashboard handles POST /api/v1/dashboard and responds with the dashboard
// CSV. A summary without data yields a header-only CSV.
func (h *ReconciliationHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(r); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	form, err := h.readRunForm(r, true)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	analysis, err := h.analyze(r, form)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := h.service.Gate(analysis, form.AllowPartial); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	rows := h.service.DashboardRows(r.Context(), analysis, form.Meta)
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.CSV())
	}

	var buf bytes.Buffer
	if err := exporter.Encode(&buf, exporter.WriteOptions{Headers: exporter.DashboardHeaders, Records: records}); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Dashboard CSV generated",
		slog.String("source", analysis.Source),
		slog.Int("rows", len(rows)))

	name := fmt.Sprintf("%s_%s.csv", h.outputName, h.now().Format(config.TimestampLayout))
	w.Header().Set("Content-Type", contentTypeCSV)
	w.Header().Set("Content-Disposition", attachment(name))
	w.Header().Set("X-Record-Count", strconv.Itoa(len(rows)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// Audit handles POST /api/v1/audit: the uploaded reconciliation workbook is
// filled with the consolidated figures and returned.
func (h *ReconciliationHandler) Audit(w http.ResponseWriter, r *http.Request) {
	if err := h.parseForm(r); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	form, err := h.readRunForm(r, false)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	workbook, header, err := r.FormFile(FieldWorkbook)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.MissingFile(FieldWorkbook))
		return
	}
	defer workbook.Close()

	analysis, err := h.analyze(r, form)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	if err := h.service.Gate(analysis, form.AllowPartial); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	res, err := h.service.AuditStream(r.Context(), analysis, workbook, &buf)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Reconciliation workbook filled",
		slog.String("workbook", header.Filename),
		slog.Int("cells", res.Cells),
		slog.Int("unmapped", len(res.Unmapped)))

	w.Header().Set("Content-Type", contentTypeXLSX)
	w.Header().Set("Content-Disposition", attachment(header.Filename))
	w.Header().Set("X-Cells-Written", strconv.Itoa(res.Cells))
	w.Header().Set("X-Unmapped-Keys", strconv.Itoa(len(res.Unmapped)))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (h *ReconciliationHandler) parseForm(r *http.Request) error {
	err := r.ParseMultipartForm(multipartMemory)
	if err == nil {
		return nil
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apierrors.ErrPayloadTooLarge
	}
	return apierrors.InvalidRequestWithError(err)
}

// readRunForm reads the shared form fields. Run metadata is only validated
// when withMeta is set.
func (h *ReconciliationHandler) readRunForm(r *http.Request, withMeta bool) (runForm, error) {
	form := runForm{Meta: h.defaults}
	if v := strings.TrimSpace(r.FormValue(FieldSchoolYear)); v != "" {
		form.Meta.SchoolYear = v
	}
	if v := strings.TrimSpace(r.FormValue(FieldSchoolName)); v != "" {
		form.Meta.SchoolName = v
	}
	if v := strings.TrimSpace(r.FormValue(FieldLocation)); v != "" {
		form.Meta.Location = v
	}

	if v := r.FormValue(FieldAllowPartial); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return form, apierrors.ErrValidation(FieldAllowPartial, "must be true or false")
		}
		form.AllowPartial = allow
	}

	if v := r.FormValue(FieldOverrides); strings.TrimSpace(v) != "" {
		overrides, err := config.ParseOverrides([]byte(v))
		if err != nil {
			return form, apierrors.ErrValidation(FieldOverrides, err.Error())
		}
		form.Overrides = overrides
	}

	if withMeta {
		if err := h.validate.Struct(form.Meta); err != nil {
			return form, validationErrors(err)
		}
	}
	return form, nil
}

func (h *ReconciliationHandler) analyze(r *http.Request, form runForm) (*services.Analysis, error) {
	file, header, err := r.FormFile(FieldSummary)
	if err != nil {
		return nil, apierrors.MissingFile(FieldSummary)
	}
	defer file.Close()

	analysis, err := h.service.LoadReader(r.Context(), sourceName(header), file)
	if err != nil {
		return nil, err
	}
	if len(form.Overrides) > 0 {
		if err := h.service.ApplyOverrides(r.Context(), analysis, form.Overrides); err != nil {
			return nil, err
		}
	}
	return analysis, nil
}

func sourceName(header *multipart.FileHeader) string {
	if header == nil || header.Filename == "" {
		return FieldSummary
	}
	return header.Filename
}

func validationErrors(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierrors.InvalidRequestWithError(err)
	}
	out := make([]apierrors.ValidationError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, apierrors.ValidationError{
			Field:   fe.Field(),
			Message: fmt.Sprintf("failed on the '%s' tag", fe.Tag()),
		})
	}
	return apierrors.NewValidationErrors(out)
}

func attachment(name string) string {
	return fmt.Sprintf("attachment; filename=%q", name)
}
