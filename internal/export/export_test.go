package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"edgeaudit/internal/model"

	"github.com/klauspost/compress/zstd"
)

func sampleRows() []model.AuditLogEntry {
	msg := "Timeout after 6000ms"
	ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return []model.AuditLogEntry{
		{ID: 1, BatchID: "b1", RequestID: "r1", BrandURL: "https://nike.com", Region: "iad1", Timestamp: ts,
			Status: 200, TTFB: 120, Headers: model.Headers{model.HeaderCFCacheStatus: "HIT"}},
		{ID: 2, BatchID: "b1", RequestID: "r1", BrandURL: "https://nike.com", Region: "syd1", Timestamp: ts,
			Status: 0, TTFB: 0, Headers: model.Headers{}, ErrorMessage: &msg},
	}
}

func TestFileName(t *testing.T) {
	tests := []struct {
		spec Spec
		want string
	}{
		{Spec{Format: FormatCSV}, "audit_logs.csv"},
		{Spec{Format: FormatJSON, Compress: true}, "audit_logs.json.zst"},
	}
	for _, tt := range tests {
		if got, err := FileName(tt.spec); err != nil || got != tt.want {
			t.Errorf("FileName(%+v) = %q, %v; want %q", tt.spec, got, err, tt.want)
		}
	}
	if _, err := FileName(Spec{Format: "xml"}); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v, want ErrUnknownFormat", err)
	}
}

func TestWrite_CSV(t *testing.T) {
	m := NewManager(t.TempDir())

	res, err := m.Write("exp-1", Spec{Format: FormatCSV}, sampleRows())
	if err != nil {
		t.Fatal(err)
	}
	if res.RecordCount != 2 || res.Type != "csv" || res.File != "audit_logs.csv" || res.Size == 0 {
		t.Errorf("result = %+v", res)
	}
	if res.DownloadURL != "/api/v1/download/exp-1/audit_logs.csv" {
		t.Errorf("download url = %q", res.DownloadURL)
	}

	f, err := os.Open(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want header + 2", len(records))
	}
	header := records[0]
	if len(header) != 9+len(model.AllHeaders()) {
		t.Errorf("header has %d columns", len(header))
	}
	col := func(name string) int {
		for i, h := range header {
			if h == name {
				return i
			}
		}
		t.Fatalf("column %q missing", name)
		return -1
	}
	if records[1][col("cf-cache-status")] != "HIT" {
		t.Errorf("row 1 = %v", records[1])
	}
	if records[2][col("error_message")] != "Timeout after 6000ms" {
		t.Errorf("row 2 = %v", records[2])
	}
}

func TestWrite_JSONZstd(t *testing.T) {
	m := NewManager(t.TempDir())

	res, err := m.Write("exp-2", Spec{Format: FormatJSON, Compress: true, Window: "24h"}, sampleRows())
	if err != nil {
		t.Fatal(err)
	}
	if res.File != "audit_logs.json.zst" || res.Type != "json" {
		t.Errorf("result = %+v", res)
	}

	raw, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	dec, err := zstd.NewReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatal(err)
	}
	defer dec.Close()

	var payload struct {
		ExportInfo struct {
			ExportID    string `json:"export_id"`
			RecordCount int    `json:"record_count"`
			Window      string `json:"window"`
		} `json:"export_info"`
		Data []model.AuditLogEntry `json:"data"`
	}
	if err := json.NewDecoder(dec).Decode(&payload); err != nil {
		t.Fatal(err)
	}
	if payload.ExportInfo.ExportID != "exp-2" || payload.ExportInfo.RecordCount != 2 || payload.ExportInfo.Window != "24h" {
		t.Errorf("export_info = %+v", payload.ExportInfo)
	}
	if len(payload.Data) != 2 || !payload.Data[1].HasError() {
		t.Errorf("data = %+v", payload.Data)
	}
}

func TestWrite_EmptyJSON(t *testing.T) {
	m := NewManager(t.TempDir())
	res, err := m.Write("exp-3", Spec{Format: FormatJSON}, nil)
	if err != nil {
		t.Fatal(err)
	}
	raw, err := os.ReadFile(res.Path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), `"data": []`) {
		t.Errorf("empty export should carry an empty data array: %s", raw)
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	m := NewManager(t.TempDir())
	if _, err := m.Write("exp-4", Spec{Format: "xml"}, sampleRows()); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("err = %v", err)
	}
}

func TestWriteFile_RemovesPartialFile(t *testing.T) {
	for _, compress := range []bool{false, true} {
		path := filepath.Join(t.TempDir(), "audit_logs.xml")

		err := writeFile(path, "exp-5", Spec{Format: "xml", Compress: compress}, sampleRows())

		if !errors.Is(err, ErrUnknownFormat) {
			t.Errorf("compress=%v: err = %v, want ErrUnknownFormat", compress, err)
		}
		if _, statErr := os.Stat(path); !os.IsNotExist(statErr) {
			t.Errorf("compress=%v: partial file left behind (stat err %v)", compress, statErr)
		}
	}
}
