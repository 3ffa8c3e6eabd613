package handler

import (
	"context"
	"net/http"

	"edgeaudit/internal/config"
)

// RunAudit audits every configured brand.
// @Summary Run a full audit
// @Description Probe every configured brand from every region in sequential batches and store the results
// @Tags audit
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.RunResult "Run result"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Secret not configured"
// @Router /cron/run-audit [get]
func (h *Handler) RunAudit(w http.ResponseWriter, r *http.Request) {
	// a started run is never cancelled, even if the caller goes away
	ctx := context.WithoutCancel(r.Context())
	result := h.Orchestrator.RunFullAudit(ctx)
	writeJSON(w, http.StatusOK, result)
}

// RunSingleBrand audits one brand for ad hoc verification.
// @Summary Audit one brand
// @Description Probe a single brand from every region under its own batch id
// @Tags audit
// @Produce json
// @Param url query string false "Brand URL (defaults to the configured single brand)"
// @Security BearerAuth
// @Success 200 {object} model.RunResult "Run result"
// @Failure 400 {object} map[string]interface{} "Invalid url"
// @Failure 401 {object} map[string]interface{} "Unauthorized"
// @Failure 500 {object} map[string]interface{} "Secret not configured"
// @Router /audit/single-brand [get]
func (h *Handler) RunSingleBrand(w http.ResponseWriter, r *http.Request) {
	brandURL := r.URL.Query().Get("url")
	if brandURL == "" {
		brandURL = h.SingleBrandURL
	}
	if err := config.ValidateBrandURL(brandURL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := context.WithoutCancel(r.Context())
	result := h.Orchestrator.RunSingleBrandAudit(ctx, brandURL)
	writeJSON(w, http.StatusOK, result)
}
