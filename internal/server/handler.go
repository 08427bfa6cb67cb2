package server

import (
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"essaylens/internal/backend"
	"essaylens/internal/errors"
	"essaylens/internal/export"
	"essaylens/internal/present"
	"essaylens/internal/report"
	"essaylens/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

func (s *Server) reportOptions() report.Options {
	return report.Options{
		Title:        s.defaultTitle(),
		ExportURL:    "/api/export",
		ServerBacked: true,
	}
}

func (s *Server) defaultTitle() string {
	if s.AppConfig != nil && s.AppConfig.Export.DefaultTitle != "" {
		return s.AppConfig.Export.DefaultTitle
	}
	return present.DefaultDocumentTitle
}

// reportHandler serves the interactive page, or its empty state.
func (s *Server) reportHandler(w http.ResponseWriter, r *http.Request) {
	page, err := report.RenderInteractive(s.Displayed(), s.reportOptions())
	s.om.RecordRender(r.Context(), "html", len(page), err == nil)
	if err != nil {
		s.Logger.LogError(err, "Failed to render report", "request_id", RequestIDFrom(r.Context()))
		writeErrorResponse(w, "Failed to render report", err.Error(), http.StatusInternalServerError)
		return
	}
	writeHTML(w, page)
}

// printHandler previews the document the exporter rasterizes.
func (s *Server) printHandler(w http.ResponseWriter, r *http.Request) {
	result := s.Displayed()
	if result == nil {
		writeErrorResponse(w, "No report", present.LabelEmptyReport, http.StatusNotFound)
		return
	}
	page, err := report.RenderPrint(result, report.Options{Title: s.defaultTitle()})
	s.om.RecordRender(r.Context(), "print", len(page), err == nil)
	if err != nil {
		s.Logger.LogError(err, "Failed to render print document", "request_id", RequestIDFrom(r.Context()))
		writeErrorResponse(w, "Failed to render print document", err.Error(), http.StatusInternalServerError)
		return
	}
	writeHTML(w, page)
}

// loadReportHandler replaces the displayed result with the posted one.
func (s *Server) loadReportHandler(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(r)
	if err != nil {
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	result, err := types.DecodeResult(body)
	if err != nil {
		writeErrorResponse(w, "Malformed analysis result", err.Error(), http.StatusBadRequest)
		return
	}
	s.SetDisplayed(result)
	s.Logger.Info("Displayed result replaced",
		"source", "upload",
		"score", result.OverallScore,
		"request_id", RequestIDFrom(r.Context()))
	writeJSON(w, http.StatusOK, map[string]any{"status": "loaded", "overall_score": result.OverallScore})
}

func (s *Server) clearReportHandler(w http.ResponseWriter, r *http.Request) {
	s.SetDisplayed(nil)
	w.WriteHeader(http.StatusNoContent)
}

// analyzeHandler runs a v2 analysis and displays its result.
func (s *Server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	ctx, span := s.om.Tracer("essaylens.api").Start(r.Context(), "api.analyze")
	defer span.End()

	var req types.AnalysisRequest
	if err := parseJSONRequest(r, &req); err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.type", "validation"))
		writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	span.SetAttributes(
		attribute.String("request.organization", req.Organization),
		attribute.Int("request.answer_length", len([]rune(req.Answer))),
	)

	// A new analysis must never show the previous one while it runs.
	s.SetDisplayed(nil)

	result, err := s.Backend.AnalyzeV2(ctx, req)
	if err != nil {
		span.RecordError(err)
		s.Logger.LogError(err, "Analysis failed", "request_id", RequestIDFrom(ctx))
		writeErrorResponse(w, "Analysis failed", backend.Describe(err), backendStatus(err))
		return
	}

	s.SetDisplayed(result)
	span.SetAttributes(
		attribute.Bool("success", true),
		attribute.Int("result.overall_score", result.OverallScore),
	)
	writeJSON(w, http.StatusOK, result)
}

// exportRequestFor picks what to export. The displayed result wins when the
// page names its revision, or when the caller posts no markup at all. A page
// that shows anything else, including a result cleared or replaced since it
// was rendered, is exported from its own markup.
func (s *Server) exportRequestFor(req ExportRequest) (export.Request, bool) {
	out := export.Request{Title: strings.TrimSpace(req.Title)}
	displayed := s.Displayed()
	hasHTML := strings.TrimSpace(req.HTML) != ""

	if displayed != nil && (!hasHTML || req.Revision == report.Revision(displayed)) {
		out.Result = displayed
		return out, true
	}
	if !hasHTML {
		return out, false
	}
	out.InteractiveHTML = []byte(req.HTML)
	return out, true
}

// exportHandler returns the displayed result, or the posted page markup, as a PDF.
func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if r.ContentLength != 0 {
		if err := parseJSONRequest(r, &req); err != nil {
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}
	}

	exportReq, ok := s.exportRequestFor(req)
	if !ok {
		writeErrorResponse(w, "No report", present.LabelEmptyReport, http.StatusBadRequest)
		return
	}

	path := "primary"
	if exportReq.Result == nil {
		path = "legacy"
	}

	start := time.Now()
	artifact, err := s.Pipeline.Export(r.Context(), exportReq)
	if err != nil {
		s.om.RecordExport(r.Context(), path, time.Since(start), 0, false)
		status := http.StatusInternalServerError
		if errors.HasCode(err, errors.ErrCodeExportInProgress) {
			status = http.StatusConflict
		} else {
			s.Logger.LogError(err, "Export failed", "request_id", RequestIDFrom(r.Context()))
		}
		writeErrorResponse(w, "Export failed", export.UserMessage(err), status)
		return
	}
	s.om.RecordExport(r.Context(), path, time.Since(start), len(artifact.Data), true)

	s.Logger.Info("Export completed",
		"file", artifact.Filename,
		"pages", artifact.Pages,
		"legacy", artifact.Legacy,
		"request_id", RequestIDFrom(r.Context()))

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", contentDisposition(artifact.Filename))
	w.Header().Set("Content-Length", fmt.Sprint(len(artifact.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(artifact.Data); err != nil {
		s.Logger.Warn("Failed to write export response", "error", err)
	}
}

func (s *Server) listOrganizationsHandler(w http.ResponseWriter, r *http.Request) {
	codes, err := s.Backend.ListOrganizations(r.Context())
	if err != nil {
		writeErrorResponse(w, "Catalogue unavailable", backend.Describe(err), backendStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, codes)
}

func (s *Server) getOrganizationHandler(w http.ResponseWriter, r *http.Request) {
	info, err := s.Backend.GetOrganization(r.Context(), r.PathValue("code"))
	if err != nil {
		writeErrorResponse(w, "Catalogue unavailable", backend.Describe(err), backendStatus(err))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(info)
}

// uploadHandler forwards a multipart PDF to the extraction endpoint.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	limit := s.maxFileSize()
	if err := r.ParseMultipartForm(limit); err != nil {
		writeErrorResponse(w, "Invalid upload", err.Error(), http.StatusBadRequest)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorResponse(w, "Invalid upload", "multipart field 'file' is required", http.StatusBadRequest)
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, limit+1))
	if err != nil {
		writeErrorResponse(w, "Invalid upload", err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := s.Backend.UploadPDF(r.Context(), header.Filename, data)
	if err != nil {
		writeErrorResponse(w, "Upload failed", backend.Describe(err), backendStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) maxFileSize() int64 {
	if s.AppConfig != nil && s.AppConfig.App.MaxFileSize > 0 {
		return s.AppConfig.App.MaxFileSize
	}
	return 10 << 20
}

// backendStatus maps a backend client error to the status the browser sees.
func backendStatus(err error) int {
	if status := backend.StatusOf(err); status > 0 {
		if status >= 500 {
			return http.StatusBadGateway
		}
		return status
	}
	switch {
	case errors.IsType(err, errors.ErrorTypeValidation):
		return http.StatusBadRequest
	case errors.HasCode(err, errors.ErrCodeCircuitOpen):
		return http.StatusServiceUnavailable
	case errors.HasCode(err, errors.ErrCodeNetworkTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}

// contentDisposition builds an attachment header. Non-ASCII names are sent
// in the RFC 2231 extended form.
func contentDisposition(filename string) string {
	if v := mime.FormatMediaType("attachment", map[string]string{"filename": filename}); v != "" {
		return v
	}
	return "attachment"
}

func writeHTML(w http.ResponseWriter, page []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}
