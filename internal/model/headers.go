package model

import (
	"encoding/json"
	"net/http"
	"strings"
)

// HeaderName is one of the response headers recorded by a probe.
type HeaderName string

// Standard HTTP caching headers
const (
	HeaderCacheControl HeaderName = "cache-control"
	HeaderAge          HeaderName = "age"
	HeaderVary         HeaderName = "vary"
	HeaderETag         HeaderName = "etag"
	HeaderLastModified HeaderName = "last-modified"
	HeaderServer       HeaderName = "server"
	HeaderDate         HeaderName = "date"
	HeaderExpires      HeaderName = "expires"
)

// CDN specific headers
const (
	HeaderCFCacheStatus HeaderName = "cf-cache-status"
	HeaderCFRay         HeaderName = "cf-ray"
	HeaderVercelCache   HeaderName = "x-vercel-cache"
	HeaderVercelID      HeaderName = "x-vercel-id"
	HeaderXCache        HeaderName = "x-cache"
	HeaderXCacheHits    HeaderName = "x-cache-hits"
	HeaderXServedBy     HeaderName = "x-served-by"
	HeaderAmzCFPop      HeaderName = "x-amz-cf-pop"
	HeaderAzureRef      HeaderName = "x-azure-ref"
	HeaderServerTiming  HeaderName = "server-timing"
)

var allHeaders = []HeaderName{
	HeaderCacheControl,
	HeaderAge,
	HeaderVary,
	HeaderETag,
	HeaderLastModified,
	HeaderServer,
	HeaderDate,
	HeaderExpires,
	HeaderCFCacheStatus,
	HeaderCFRay,
	HeaderVercelCache,
	HeaderVercelID,
	HeaderXCache,
	HeaderXCacheHits,
	HeaderXServedBy,
	HeaderAmzCFPop,
	HeaderAzureRef,
	HeaderServerTiming,
}

// AllHeaders returns the allow-list of recorded headers, standard ones first.
func AllHeaders() []HeaderName {
	out := make([]HeaderName, len(allHeaders))
	copy(out, allHeaders)
	return out
}

// ParseHeaderName maps a header name to the allow-list, ignoring case.
func ParseHeaderName(s string) (HeaderName, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, h := range allHeaders {
		if string(h) == s {
			return h, true
		}
	}
	return "", false
}

// Headers holds the allow-listed headers observed on a response.
// A missing key means the header was not present.
type Headers map[HeaderName]string

// ExtractHeaders copies every allow-listed header present in h.
func ExtractHeaders(h http.Header) Headers {
	out := make(Headers)
	for _, name := range allHeaders {
		// http.Header.Values canonicalizes the key, so lookup is case-insensitive
		if vals := h.Values(string(name)); len(vals) > 0 {
			out[name] = strings.Join(vals, ", ")
		}
	}
	return out
}

// Get returns the header value and whether it was observed.
func (h Headers) Get(name HeaderName) (string, bool) {
	v, ok := h[name]
	return v, ok
}

// MarshalJSON encodes headers as a plain object keyed by header name.
func (h Headers) MarshalJSON() ([]byte, error) {
	m := make(map[string]string, len(h))
	for k, v := range h {
		m[string(k)] = v
	}
	return json.Marshal(m)
}

// UnmarshalJSON decodes a plain object, keeping only allow-listed names.
func (h *Headers) UnmarshalJSON(data []byte) error {
	var m map[string]string
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}
	out := make(Headers, len(m))
	for k, v := range m {
		if name, ok := ParseHeaderName(k); ok {
			out[name] = v
		}
	}
	*h = out
	return nil
}
