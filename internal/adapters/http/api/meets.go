package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/swimchamps/internal/adapters/repository"
	"github.com/okian/swimchamps/internal/domain/leaderboard"
	"github.com/okian/swimchamps/internal/domain/model"
)

// maxBodyBytes bounds PUT /meets/{meetID}/records payloads.
const maxBodyBytes = 32 << 20

// putRecordsRequest is the body of PUT /meets/{meetID}/records.
type putRecordsRequest struct {
	Name    string                    `json:"name"`
	Records []model.PerformanceRecord `json:"records"`
}

// MeetsHandler serves meet ingestion and standings queries.
type MeetsHandler struct {
	deps     Dependencies
	maxLimit int
}

// NewMeetsHandler creates a new meets handler.
func NewMeetsHandler(deps Dependencies, maxLimit int) *MeetsHandler {
	return &MeetsHandler{deps: deps, maxLimit: maxLimit}
}

// HandleListMeets handles GET /meets.
func (h *MeetsHandler) HandleListMeets(w http.ResponseWriter, r *http.Request) {
	meets, err := h.deps.Meets(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if meets == nil {
		meets = []repository.SnapshotInfo{}
	}
	writeJSON(w, http.StatusOK, meets)
}

// HandlePutRecords handles PUT /meets/{meetID}/records. The body replaces the
// meet's records with a new snapshot.
func (h *MeetsHandler) HandlePutRecords(w http.ResponseWriter, r *http.Request) {
	var req putRecordsRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %w", ErrBadRequest, err))
		return
	}
	info, err := h.deps.PutRecords(r.Context(), pathParam(r, "meetID"), req.Name, req.Records)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, info)
}

// HandleGetLeaderboard handles
// GET /meets/{meetID}/leaderboard?age=&sex=&min_categories=&eligible_only=&limit=.
func (h *MeetsHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	f, err := h.parseFilter(r.URL.Query())
	if err != nil {
		code := "bad_request"
		if errors.Is(err, ErrLimitExceeded) {
			code = "limit_exceeded"
		}
		writeError(w, http.StatusBadRequest, code, err)
		return
	}
	rows, err := h.deps.Leaderboard(r.Context(), pathParam(r, "meetID"), f)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *MeetsHandler) parseFilter(q url.Values) (leaderboard.Filter, error) {
	var f leaderboard.Filter
	f.AgeBucket = strings.TrimSpace(q.Get("age"))

	if s := q.Get("sex"); s != "" {
		sex, ok := model.ParseSexCategory(s)
		if !ok {
			return f, fmt.Errorf("%w: unknown sex %q", ErrBadRequest, s)
		}
		f.SexCategory = sex
	}
	if s := q.Get("min_categories"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return f, fmt.Errorf("%w: min_categories: %w", ErrBadRequest, err)
		}
		f.MinCategories = &n
	}
	if s := q.Get("eligible_only"); s != "" {
		b, err := strconv.ParseBool(s)
		if err != nil {
			return f, fmt.Errorf("%w: eligible_only: %w", ErrBadRequest, err)
		}
		f.EligibleOnly = b
	}
	if s := q.Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n < 1 {
			return f, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest)
		}
		if n > h.maxLimit {
			return f, ErrLimitExceeded
		}
		f.Limit = n
	}
	return f, nil
}

// HandleGetSwimmer handles GET /meets/{meetID}/swimmers/{name}.
func (h *MeetsHandler) HandleGetSwimmer(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "name")
	if name == "" {
		writeError(w, http.StatusBadRequest, "bad_request", ErrBadRequest)
		return
	}
	report, err := h.deps.Swimmer(r.Context(), pathParam(r, "meetID"), name)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// HandleGetWinners handles GET /meets/{meetID}/winners.
func (h *MeetsHandler) HandleGetWinners(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deps.Winners(r.Context(), pathParam(r, "meetID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleGetCategoryLeaders handles GET /meets/{meetID}/category-leaders.
func (h *MeetsHandler) HandleGetCategoryLeaders(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deps.CategoryLeaders(r.Context(), pathParam(r, "meetID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleGetStrokeSpecialists handles GET /meets/{meetID}/stroke-specialists.
func (h *MeetsHandler) HandleGetStrokeSpecialists(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deps.StrokeSpecialists(r.Context(), pathParam(r, "meetID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// HandleGetSummary handles GET /meets/{meetID}/summary.
func (h *MeetsHandler) HandleGetSummary(w http.ResponseWriter, r *http.Request) {
	rows, err := h.deps.Summary(r.Context(), pathParam(r, "meetID"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

// pathParam returns the unescaped chi URL parameter key.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		v = u
	}
	return strings.TrimSpace(v)
}
