// Package docs holds the Swagger 2.0 document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/audit/single-brand": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Probe a single brand from every region under its own batch id",
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "Audit one brand",
                "parameters": [
                    {"type": "string", "description": "Brand URL (defaults to the configured single brand)", "name": "url", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Run result", "schema": {"$ref": "#/definitions/model.RunResult"}},
                    "400": {"description": "Invalid url", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Secret not configured", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/cron/run-audit": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Probe every configured brand from every region in sequential batches and store the results",
                "produces": ["application/json"],
                "tags": ["audit"],
                "summary": "Run a full audit",
                "responses": {
                    "200": {"description": "Run result", "schema": {"$ref": "#/definitions/model.RunResult"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Secret not configured", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/probes/{region}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Issue a HEAD probe against the target URL from this region and return timing, status and cache headers",
                "produces": ["application/json"],
                "tags": ["probes"],
                "summary": "Run a probe",
                "parameters": [
                    {"type": "string", "description": "Region identifier", "name": "region", "in": "path", "required": true},
                    {"type": "string", "description": "Target URL", "name": "url", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Probe result", "schema": {"$ref": "#/definitions/model.ProbeResult"}},
                    "400": {"description": "Missing url parameter", "schema": {"type": "object", "additionalProperties": true}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "Unknown region", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Secret not configured", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/v1/analytics/brands": {
            "get": {
                "description": "Average TTFB, probe and error counts and cache hit rate per brand, fastest first",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Brand summaries",
                "parameters": [
                    {"type": "string", "default": "24h", "description": "1h, 24h, 7d or 30d", "name": "window", "in": "query"},
                    {"type": "string", "description": "Comma separated brand URLs", "name": "brands", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Brand summaries", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid window", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/v1/analytics/cache-hits": {
            "get": {
                "description": "Cache-hit proxy derived from CDN headers over non-error probes, worst first",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Cache hit rates",
                "parameters": [
                    {"type": "string", "default": "24h", "description": "1h, 24h, 7d or 30d", "name": "window", "in": "query"},
                    {"type": "string", "default": "region", "description": "region or brand", "name": "group_by", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Cache hit rates", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid parameters", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/v1/analytics/logs": {
            "get": {
                "description": "Newest audit log rows",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Recent audit logs",
                "parameters": [
                    {"type": "integer", "default": 50, "description": "Maximum rows", "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Audit rows", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/v1/analytics/regions": {
            "get": {
                "description": "Average and percentile TTFB, probe and error counts per region, fastest first",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Regional metrics",
                "parameters": [
                    {"type": "string", "default": "24h", "description": "1h, 24h, 7d or 30d", "name": "window", "in": "query"},
                    {"type": "string", "description": "Restrict to one brand URL", "name": "brand", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Regional metrics", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid window", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/v1/analytics/runs": {
            "get": {
                "description": "Audit runs grouped by batch id, newest first",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Run history",
                "parameters": [
                    {"type": "integer", "default": 20, "description": "Maximum runs", "name": "limit", "in": "query"},
                    {"type": "string", "description": "RFC3339 lower bound", "name": "since", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Runs", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid since", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/v1/analytics/runs/latest": {
            "get": {
                "description": "Newest audit run that started within the lookback window",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Latest run",
                "parameters": [
                    {"type": "string", "default": "2h", "description": "Go duration", "name": "within", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Latest run", "schema": {"$ref": "#/definitions/model.BatchSummary"}},
                    "404": {"description": "No recent run", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/v1/analytics/trends": {
            "get": {
                "description": "Hourly or daily buckets of average TTFB, error rate or probe count, oldest first",
                "produces": ["application/json"],
                "tags": ["analytics"],
                "summary": "Trend series",
                "parameters": [
                    {"type": "string", "default": "24h", "description": "1h, 24h, 7d or 30d", "name": "window", "in": "query"},
                    {"type": "string", "description": "hour or day", "name": "bucket", "in": "query"},
                    {"type": "string", "default": "ttfb", "description": "ttfb, error_rate or probe_count", "name": "metric", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Trend points", "schema": {"type": "object", "additionalProperties": true}},
                    "400": {"description": "Invalid parameters", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/v1/download/{exportID}/{filename}": {
            "get": {
                "description": "Download an export file",
                "produces": ["application/octet-stream"],
                "tags": ["exports"],
                "summary": "Download export",
                "parameters": [
                    {"type": "string", "description": "Export ID", "name": "exportID", "in": "path", "required": true},
                    {"type": "string", "description": "File name", "name": "filename", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "File download", "schema": {"type": "file"}},
                    "400": {"description": "Invalid URL format", "schema": {"type": "object", "additionalProperties": true}},
                    "404": {"description": "File not found", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/v1/exports": {
            "post": {
                "description": "Write the audit rows of a window as CSV or JSON, optionally zstd-compressed",
                "produces": ["application/json"],
                "tags": ["exports"],
                "summary": "Export audit logs",
                "parameters": [
                    {"type": "string", "default": "24h", "description": "1h, 24h, 7d or 30d", "name": "window", "in": "query"},
                    {"type": "string", "default": "csv", "description": "csv or json", "name": "format", "in": "query"},
                    {"type": "string", "description": "zstd to compress the file", "name": "compress", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Export written", "schema": {"$ref": "#/definitions/export.Result"}},
                    "400": {"description": "Invalid parameters", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal server error", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        }
    },
    "definitions": {
        "export.Result": {
            "type": "object",
            "properties": {
                "download_url": {"type": "string"},
                "export_id": {"type": "string"},
                "exported_at": {"type": "string"},
                "file": {"type": "string"},
                "path": {"type": "string"},
                "record_count": {"type": "integer"},
                "size": {"type": "integer"},
                "type": {"type": "string"}
            }
        },
        "model.BatchSummary": {
            "type": "object",
            "properties": {
                "batch_id": {"type": "string"},
                "brands_count": {"type": "integer"},
                "error_count": {"type": "integer"},
                "probe_count": {"type": "integer"},
                "run_time": {"type": "string"}
            }
        },
        "model.ProbeResult": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "headers": {"type": "object", "additionalProperties": {"type": "string"}},
                "region": {"type": "string"},
                "status": {"type": "integer"},
                "ttfb": {"type": "integer"}
            }
        },
        "model.RunResult": {
            "type": "object",
            "properties": {
                "batch_id": {"type": "string"},
                "brands_audited": {"type": "integer"},
                "errors": {"type": "array", "items": {"type": "string"}},
                "rows_attempted": {"type": "integer"},
                "rows_inserted": {"type": "integer"},
                "success": {"type": "boolean"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{},
	Title:            "Edge Audit API",
	Description:      "Multi-region edge cache probe orchestration and analytics.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
