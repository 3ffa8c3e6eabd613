package probe

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"edgeaudit/internal/model"

	"github.com/valyala/fastjson"
)

// Local runs probes in-process. It never returns an error.
type Local struct {
	Executor *Executor
}

// NewLocal wraps an Executor.
func NewLocal(e *Executor) *Local {
	return &Local{Executor: e}
}

func (l *Local) Probe(ctx context.Context, target, region string) (model.ProbeResult, error) {
	return l.Executor.Probe(ctx, target, region), nil
}

// Remote calls the probe service deployed in each region.
type Remote struct {
	baseURL   string
	endpoints map[string]string
	secret    string
	client    *http.Client
	parser    fastjson.ParserPool
}

// NewRemote builds a Remote client. Regions without an explicit endpoint are
// reached at <baseURL>/api/probes/<region>.
func NewRemote(baseURL, secret string, endpoints map[string]string) *Remote {
	return &Remote{
		baseURL:   strings.TrimRight(baseURL, "/"),
		endpoints: endpoints,
		secret:    secret,
		// leaves headroom over the executor's own timeout on the far side
		client: &http.Client{Timeout: DefaultTimeout + 4*time.Second},
	}
}

// Endpoint returns the probe URL for a region.
func (r *Remote) Endpoint(region string) string {
	if ep, ok := r.endpoints[region]; ok && ep != "" {
		return ep
	}
	return r.baseURL + "/api/probes/" + region
}

// Probe asks the regional probe service to probe target. An error means the
// service could not be reached or answered with a non-2xx status.
func (r *Remote) Probe(ctx context.Context, target, region string) (model.ProbeResult, error) {
	endpoint := r.Endpoint(region) + "?url=" + url.QueryEscape(target)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.ProbeResult{}, err
	}
	req.Header.Set("Authorization", "Bearer "+r.secret)

	resp, err := r.client.Do(req)
	if err != nil {
		return model.ProbeResult{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.ProbeResult{}, fmt.Errorf("Probe %s returned %d", region, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.ProbeResult{}, fmt.Errorf("probe %s: read body: %w", region, err)
	}
	return r.decode(body, region)
}

func (r *Remote) decode(body []byte, region string) (model.ProbeResult, error) {
	p := r.parser.Get()
	defer r.parser.Put(p)

	v, err := p.ParseBytes(body)
	if err != nil {
		return model.ProbeResult{}, fmt.Errorf("probe %s: decode response: %w", region, err)
	}

	result := model.ProbeResult{
		Region:  string(v.GetStringBytes("region")),
		TTFB:    v.GetInt("ttfb"),
		Status:  v.GetInt("status"),
		Headers: model.Headers{},
		Error:   string(v.GetStringBytes("error")),
	}
	if result.Region == "" {
		result.Region = region
	}
	if obj := v.GetObject("headers"); obj != nil {
		obj.Visit(func(key []byte, val *fastjson.Value) {
			name, ok := model.ParseHeaderName(string(key))
			if !ok {
				return
			}
			if s, err := val.StringBytes(); err == nil {
				result.Headers[name] = string(s)
			}
		})
	}
	return result, nil
}
