package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"edgeaudit/internal/export"

	"github.com/google/uuid"
)

// CreateExport writes the audit rows of a window to a downloadable file.
// @Summary Export audit logs
// @Description Write the audit rows of a window as CSV or JSON, optionally zstd-compressed
// @Tags exports
// @Produce json
// @Param window query string false "1h, 24h, 7d or 30d" default(24h)
// @Param format query string false "csv or json" default(csv)
// @Param compress query string false "zstd to compress the file"
// @Success 200 {object} export.Result "Export written"
// @Failure 400 {object} map[string]interface{} "Invalid parameters"
// @Failure 500 {object} map[string]interface{} "Internal server error"
// @Router /v1/exports [post]
func (h *Handler) CreateExport(w http.ResponseWriter, r *http.Request) {
	window, ok := parseWindowParam(w, r)
	if !ok {
		return
	}
	q := r.URL.Query()
	spec := export.Spec{
		Format: export.Format(strings.ToLower(q.Get("format"))),
		Window: string(window),
	}
	if spec.Format == "" {
		spec.Format = export.FormatCSV
	}
	switch q.Get("compress") {
	case "":
	case "zstd":
		spec.Compress = true
	default:
		writeError(w, http.StatusBadRequest, "compress must be zstd")
		return
	}
	if _, err := export.FileName(spec); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rows, err := h.Analytics.WindowRows(r.Context(), window)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read audit logs")
		return
	}

	exportID := uuid.New().String()
	result, err := h.Exports.Write(exportID, spec, rows)
	if err != nil {
		if errors.Is(err, export.ErrUnknownFormat) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to write export")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// DownloadFile serves a previously written export.
// @Summary Download export
// @Description Download an export file
// @Tags exports
// @Produce application/octet-stream
// @Param exportID path string true "Export ID"
// @Param filename path string true "File name"
// @Success 200 {file} file "File download"
// @Failure 400 {object} map[string]interface{} "Invalid URL format"
// @Failure 404 {object} map[string]interface{} "File not found"
// @Router /v1/download/{exportID}/{filename} [get]
func (h *Handler) DownloadFile(w http.ResponseWriter, r *http.Request) {
	// URL format: /api/v1/download/exportID/filename
	pathParts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(pathParts) != 5 {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid URL format: %s", r.URL.Path))
		return
	}
	exportID, fileName := pathParts[3], pathParts[4]

	path, err := h.Exports.Outputs().ResolveFile(exportID, fileName)
	if err != nil {
		writeError(w, http.StatusNotFound, "File not found")
		return
	}

	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", fileName))
	w.Header().Set("Content-Type", "application/octet-stream")
	http.ServeFile(w, r, path)
}
