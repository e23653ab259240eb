package api

import (
	"database/sql"
	"log/slog"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanminhgroup/qlts/internal/model"
	"github.com/vanminhgroup/qlts/internal/spreadsheet"
	"github.com/vanminhgroup/qlts/internal/store"
)

// VehiclesHandler handles fleet endpoints.
type VehiclesHandler struct {
	DB *sql.DB
}

type createVehicleRequest struct {
	CarType            string          `json:"carType" validate:"max=255"`
	Plate              string          `json:"plate" validate:"required,max=50"`
	TeamID             *string         `json:"teamId"`
	YearOfManufacture  *time.Time      `json:"yearOfManufacture"`
	RegistrationPeriod *time.Time      `json:"registrationPeriod"`
	RegistrationName   string          `json:"registrationName"`
	Valuation          decimal.Decimal `json:"valuation" validate:"gte=0"`
	LiabilityInsUntil  *time.Time      `json:"liabilityInsuranceUntil"`
	LiabilityInsSeller string          `json:"liabilityInsuranceSeller"`
	HullInsUntil       *time.Time      `json:"hullInsuranceUntil"`
	HullInsSeller      string          `json:"hullInsuranceSeller"`
	GPSUntil           *time.Time      `json:"gpsUntil"`
	GPSDescription     string          `json:"gpsDescription"`
	SIMUntil           *time.Time      `json:"simUntil"`
	SIMSeller          string          `json:"simSeller"`
	Description        string          `json:"description"`
}

// List handles GET /api/vehicles.
func (h *VehiclesHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.VehicleFilter{
		Plate:  q.Get("plate"),
		TeamID: q.Get("team"),
		Page:   queryInt(r, "page"),
		Limit:  queryInt(r, "limit"),
	}

	vehicles, total, err := store.ListVehicles(r.Context(), h.DB, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, newPage(vehicles, total, f.Page, f.Limit))
}

// Create handles POST /api/vehicles.
func (h *VehiclesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createVehicleRequest
	if !bindAndValidate(w, r, &req) {
		return
	}

	if req.TeamID != nil {
		team, err := store.FindTeam(r.Context(), h.DB, *req.TeamID)
		if err != nil {
			writeError(w, r, err)
			return
		}
		if team == nil {
			jsonError(w, http.StatusNotFound, "team not found")
			return
		}
		req.TeamID = &team.ID
	}

	v, err := store.CreateVehicle(r.Context(), h.DB, &model.Vehicle{
		CarType:            req.CarType,
		Plate:              req.Plate,
		TeamID:             req.TeamID,
		YearOfManufacture:  req.YearOfManufacture,
		RegistrationPeriod: req.RegistrationPeriod,
		RegistrationName:   req.RegistrationName,
		Valuation:          req.Valuation,
		LiabilityInsUntil:  req.LiabilityInsUntil,
		LiabilityInsSeller: req.LiabilityInsSeller,
		HullInsUntil:       req.HullInsUntil,
		HullInsSeller:      req.HullInsSeller,
		GPSUntil:           req.GPSUntil,
		GPSDescription:     req.GPSDescription,
		SIMUntil:           req.SIMUntil,
		SIMSeller:          req.SIMSeller,
		Description:        req.Description,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("vehicle created", "user", GetActor(r.Context()).AccountID, "plate", v.Plate)
	jsonResponse(w, http.StatusCreated, v)
}

// Delete handles DELETE /api/vehicles.
func (h *VehiclesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil || len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "ids required")
		return
	}

	n, err := store.DeleteVehicles(r.Context(), h.DB, req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if n == 0 {
		jsonError(w, http.StatusNotFound, "no vehicles found")
		return
	}

	slog.Info("vehicles deleted", "user", GetActor(r.Context()).AccountID, "deleted", n)
	jsonResponse(w, http.StatusOK, map[string]any{"message": "vehicles deleted", "deletedCount": n})
}

// Totals handles GET /api/vehicles/totals.
func (h *VehiclesHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := store.VehicleTotals(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	listResponse(w, totals)
}

// Import handles POST /api/vehicles/import.
func (h *VehiclesHandler) Import(w http.ResponseWriter, r *http.Request) {
	file, ok := uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	rows, rowErrs, err := spreadsheet.ParseVehicles(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	var result *model.ImportResult
	err = store.WithTx(r.Context(), h.DB, func(tx *sql.Tx) error {
		var err error
		result, err = store.ImportVehicles(r.Context(), tx, rows)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	mergeRowErrors(result, rowErrs)

	slog.Info("vehicles imported", "user", GetActor(r.Context()).AccountID,
		"inserted", result.Inserted, "skipped", result.Skipped, "errors", len(result.Errors))
	jsonResponse(w, http.StatusOK, result)
}
