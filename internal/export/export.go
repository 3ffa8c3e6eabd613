package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"edgeaudit/internal/model"
	"edgeaudit/pkg/utils"

	"github.com/klauspost/compress/zstd"
)

// ErrUnknownFormat is returned for formats other than csv and json.
var ErrUnknownFormat = errors.New("unknown export format")

// Format is the file encoding of an export.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
)

// Spec describes one export request.
type Spec struct {
	Format   Format
	Compress bool   // zstd-compress the output
	Window   string // informational, written into JSON metadata
}

// Result describes a written export file.
type Result struct {
	ExportID    string    `json:"export_id"`
	Type        string    `json:"type"`
	File        string    `json:"file"`
	Path        string    `json:"path"`
	DownloadURL string    `json:"download_url"`
	RecordCount int       `json:"record_count"`
	Size        int64     `json:"size"`
	ExportedAt  time.Time `json:"exported_at"`
}

// Manager writes audit rows into per-export output directories.
type Manager struct {
	outputs *utils.OutputManager
}

// NewManager stores exports under baseDir.
func NewManager(baseDir string) *Manager {
	return &Manager{outputs: utils.NewOutputManager(baseDir)}
}

// Outputs exposes the underlying output manager for download handlers.
func (m *Manager) Outputs() *utils.OutputManager {
	return m.outputs
}

// FileName returns the export file name for a spec.
func FileName(spec Spec) (string, error) {
	switch spec.Format {
	case FormatCSV, FormatJSON:
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, spec.Format)
	}
	name := "audit_logs." + string(spec.Format)
	if spec.Compress {
		name += ".zst"
	}
	return name, nil
}

// Write exports rows under exportID and returns where they went.
func (m *Manager) Write(exportID string, spec Spec, rows []model.AuditLogEntry) (Result, error) {
	fileName, err := FileName(spec)
	if err != nil {
		return Result{}, err
	}
	path, err := m.outputs.GetOutputFilePath(exportID, fileName)
	if err != nil {
		return Result{}, err
	}

	if err := writeFile(path, exportID, spec, rows); err != nil {
		return Result{}, err
	}

	size, _ := m.outputs.GetFileSize(path)
	log.Printf("💾 Export %s: %d rows written to %s", exportID, len(rows), path)

	return Result{
		ExportID:    exportID,
		Type:        m.outputs.GetFileType(strings.TrimSuffix(fileName, ".zst")),
		File:        fileName,
		Path:        path,
		DownloadURL: m.outputs.GetDownloadURL(exportID, fileName),
		RecordCount: len(rows),
		Size:        size,
		ExportedAt:  time.Now().UTC(),
	}, nil
}

// writeFile encodes rows into path. On failure the partial file is removed.
func writeFile(path, exportID string, spec Spec, rows []model.AuditLogEntry) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("failed to close file: %w", cerr)
		}
		if err != nil {
			os.Remove(path)
		}
	}()

	if !spec.Compress {
		return encode(file, exportID, spec, rows)
	}

	enc, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("failed to create zstd writer: %w", err)
	}
	if err := encode(enc, exportID, spec, rows); err != nil {
		enc.Close()
		return err
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to flush zstd stream: %w", err)
	}
	return nil
}

func encode(w io.Writer, exportID string, spec Spec, rows []model.AuditLogEntry) error {
	switch spec.Format {
	case FormatCSV:
		return writeCSV(w, rows)
	case FormatJSON:
		return writeJSON(w, exportID, spec, rows)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, spec.Format)
}

var csvHeader = func() []string {
	h := []string{"id", "batch_id", "request_id", "brand_url", "region", "timestamp", "status", "ttfb", "error_message"}
	for _, name := range model.AllHeaders() {
		h = append(h, string(name))
	}
	return h
}()

func writeCSV(w io.Writer, rows []model.AuditLogEntry) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, r := range rows {
		errMsg := ""
		if r.ErrorMessage != nil {
			errMsg = *r.ErrorMessage
		}
		record := []string{
			strconv.FormatInt(r.ID, 10),
			r.BatchID,
			r.RequestID,
			r.BrandURL,
			r.Region,
			r.Timestamp.UTC().Format(time.RFC3339Nano),
			strconv.Itoa(r.Status),
			strconv.Itoa(r.TTFB),
			errMsg,
		}
		for _, name := range model.AllHeaders() {
			v, _ := r.Headers.Get(name)
			record = append(record, v)
		}
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}

func writeJSON(w io.Writer, exportID string, spec Spec, rows []model.AuditLogEntry) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if rows == nil {
		rows = []model.AuditLogEntry{}
	}
	exportData := map[string]interface{}{
		"export_info": map[string]interface{}{
			"export_id":    exportID,
			"exported_at":  time.Now().UTC(),
			"record_count": len(rows),
			"window":       spec.Window,
		},
		"data": rows,
	}
	if err := encoder.Encode(exportData); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
