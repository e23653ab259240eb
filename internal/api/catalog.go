package api

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/vanminhgroup/qlts/internal/model"
	"github.com/vanminhgroup/qlts/internal/store"
)

// CatalogHandler handles departments, teams, offices, asset types and units.
type CatalogHandler struct {
	DB *sql.DB
}

type codeLabelRequest struct {
	Code  string `json:"code" validate:"max=50"`
	Label string `json:"label" validate:"required,max=255"`
}

type teamRequest struct {
	codeLabelRequest
	DepartmentID *string `json:"departmentId"`
}

type officeRequest struct {
	codeLabelRequest
	DepartmentID *string `json:"departmentId"`
	TeamID       *string `json:"teamId"`
}

type labelRequest struct {
	Label string `json:"label" validate:"required,max=255"`
}

// listResponse writes items as a JSON array, never null.
func listResponse[T any](w http.ResponseWriter, items []T) {
	if items == nil {
		items = []T{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// ListDepartments handles GET /api/departments.
func (h *CatalogHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	departments, err := store.ListDepartments(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	listResponse(w, departments)
}

// CreateDepartment handles POST /api/departments.
func (h *CatalogHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req codeLabelRequest
	if !bindAndValidate(w, r, &req) {
		return
	}

	d, err := store.CreateDepartment(r.Context(), h.DB, req.Code, req.Label)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("department created", "user", GetActor(r.Context()).AccountID, "department", d.Label)
	jsonResponse(w, http.StatusCreated, d)
}

// ListTeams handles GET /api/teams, optionally filtered by ?departmentId=.
func (h *CatalogHandler) ListTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := store.ListTeams(r.Context(), h.DB, r.URL.Query().Get("departmentId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	listResponse(w, teams)
}

// CreateTeam handles POST /api/teams.
func (h *CatalogHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var req teamRequest
	if !bindAndValidate(w, r, &req) {
		return
	}
	if msg, err := h.checkRefs(r.Context(), req.DepartmentID, nil); err != nil || msg != "" {
		refError(w, r, msg, err)
		return
	}

	t, err := store.CreateTeam(r.Context(), h.DB, req.Code, req.Label, req.DepartmentID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("team created", "user", GetActor(r.Context()).AccountID, "team", t.Label)
	jsonResponse(w, http.StatusCreated, t)
}

// ListOffices handles GET /api/offices.
func (h *CatalogHandler) ListOffices(w http.ResponseWriter, r *http.Request) {
	offices, err := store.ListOffices(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	listResponse(w, offices)
}

// GetOffice handles GET /api/offices/{id}.
func (h *CatalogHandler) GetOffice(w http.ResponseWriter, r *http.Request) {
	office, err := store.GetOffice(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if office == nil {
		jsonError(w, http.StatusNotFound, "office not found")
		return
	}
	jsonResponse(w, http.StatusOK, office)
}

// CreateOffice handles POST /api/offices.
func (h *CatalogHandler) CreateOffice(w http.ResponseWriter, r *http.Request) {
	var req officeRequest
	if !bindAndValidate(w, r, &req) {
		return
	}
	if msg, err := h.checkRefs(r.Context(), req.DepartmentID, req.TeamID); err != nil || msg != "" {
		refError(w, r, msg, err)
		return
	}

	office, err := store.CreateOffice(r.Context(), h.DB, &model.Office{
		Code:         req.Code,
		Label:        req.Label,
		DepartmentID: req.DepartmentID,
		TeamID:       req.TeamID,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("office created", "user", GetActor(r.Context()).AccountID, "office", office.Label)
	jsonResponse(w, http.StatusCreated, office)
}

// ListAssetTypes handles GET /api/asset-types.
func (h *CatalogHandler) ListAssetTypes(w http.ResponseWriter, r *http.Request) {
	types, err := store.ListAssetTypes(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	listResponse(w, types)
}

// CreateAssetType handles POST /api/asset-types.
func (h *CatalogHandler) CreateAssetType(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if !bindAndValidate(w, r, &req) {
		return
	}
	t, err := store.CreateAssetType(r.Context(), h.DB, req.Label)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, t)
}

// ListUnits handles GET /api/units.
func (h *CatalogHandler) ListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := store.ListUnits(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	listResponse(w, units)
}

// CreateUnit handles POST /api/units.
func (h *CatalogHandler) CreateUnit(w http.ResponseWriter, r *http.Request) {
	var req labelRequest
	if !bindAndValidate(w, r, &req) {
		return
	}
	u, err := store.CreateUnit(r.Context(), h.DB, req.Label)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusCreated, u)
}

// checkRefs verifies optional department and team references. It returns a
// non-empty message naming the first missing one.
func (h *CatalogHandler) checkRefs(ctx context.Context, departmentID, teamID *string) (string, error) {
	if departmentID != nil {
		d, err := store.GetDepartment(ctx, h.DB, *departmentID)
		if err != nil {
			return "", err
		}
		if d == nil {
			return "department not found", nil
		}
	}
	if teamID != nil {
		t, err := store.FindTeam(ctx, h.DB, *teamID)
		if err != nil {
			return "", err
		}
		if t == nil || t.ID != *teamID {
			return "team not found", nil
		}
	}
	return "", nil
}

func refError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonError(w, http.StatusNotFound, msg)
}
