package api

import (
	"cmp"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"slices"
	"time"

	"github.com/shopspring/decimal"

	"github.com/vanminhgroup/qlts/internal/model"
	"github.com/vanminhgroup/qlts/internal/spreadsheet"
	"github.com/vanminhgroup/qlts/internal/store"
)

// maxUploadSize bounds spreadsheet uploads.
const maxUploadSize = 32 << 20

// AssetsHandler handles asset catalog endpoints.
type AssetsHandler struct {
	DB *sql.DB
}

// assetFields are the catalog fields shared by create and update.
type assetFields struct {
	Code            string          `json:"code" validate:"required,max=100"`
	Name            string          `json:"name" validate:"required,max=255"`
	UnitID          *string         `json:"unitId"`
	ModelOrSeries   string          `json:"modelOrSeries"`
	AssetTypeID     *string         `json:"assetTypeId"`
	DateOfPurchase  *time.Time      `json:"dateOfPurchase"`
	WarrantyMonths  int             `json:"warranty" validate:"gte=0"`
	ExpirationDate  *time.Time      `json:"expirationDate"`
	Price           decimal.Decimal `json:"price" validate:"gte=0"`
	Depreciation    string          `json:"depreciation"`
	Supplier        string          `json:"supplier"`
	SupplierAddress string          `json:"supplierAddress"`
	SupplierPhone   string          `json:"supplierPhone"`
	AssetLocationID *string         `json:"assetLocationId"`
	Description     string          `json:"description"`
	Extra           model.Extra     `json:"extra"`
}

func (f assetFields) asset() *model.Asset {
	extra := f.Extra
	if extra == nil {
		extra = model.Extra{}
	}
	return &model.Asset{
		Code:            f.Code,
		Name:            f.Name,
		UnitID:          f.UnitID,
		ModelOrSeries:   f.ModelOrSeries,
		AssetTypeID:     f.AssetTypeID,
		DateOfPurchase:  f.DateOfPurchase,
		WarrantyMonths:  f.WarrantyMonths,
		ExpirationDate:  f.ExpirationDate,
		Price:           f.Price,
		Depreciation:    f.Depreciation,
		Supplier:        f.Supplier,
		SupplierAddress: f.SupplierAddress,
		SupplierPhone:   f.SupplierPhone,
		AssetLocationID: f.AssetLocationID,
		Description:     f.Description,
		Extra:           extra,
	}
}

type createAssetRequest struct {
	assetFields
	Quantity           int    `json:"quantity" validate:"gte=0"`
	ManagementOfficeID string `json:"managementOfficeId" validate:"required"`
}

// List handles GET /api/assets.
func (h *AssetsHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := store.AssetFilter{
		Code:               q.Get("code"),
		Name:               q.Get("name"),
		ManagementOfficeID: q.Get("managementOffice"),
		Page:               queryInt(r, "page"),
		Limit:              queryInt(r, "limit"),
	}

	assets, total, err := store.ListAssets(r.Context(), h.DB, f)
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, newPage(assets, total, f.Page, f.Limit))
}

// Get handles GET /api/assets/{id}.
func (h *AssetsHandler) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := store.GetAsset(r.Context(), h.DB, r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if asset == nil {
		jsonError(w, http.StatusNotFound, "asset not found")
		return
	}
	jsonResponse(w, http.StatusOK, asset)
}

// Create handles POST /api/assets.
func (h *AssetsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAssetRequest
	if !bindAndValidate(w, r, &req) {
		return
	}

	office, err := store.GetOffice(r.Context(), h.DB, req.ManagementOfficeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if office == nil {
		jsonError(w, http.StatusNotFound, "management office not found")
		return
	}

	a := req.asset()
	a.Quantity = req.Quantity
	a.ManagementOfficeID = &office.ID
	if a.AssetLocationID == nil {
		a.AssetLocationID = &office.ID
	}

	var created *model.Asset
	err = store.WithTx(r.Context(), h.DB, func(tx *sql.Tx) error {
		var err error
		created, err = store.CreateAsset(r.Context(), tx, a)
		return err
	})
	if errors.Is(err, store.ErrConflict) {
		jsonError(w, http.StatusConflict, fmt.Sprintf("asset code %s already exists at %s", a.Code, office.Label))
		return
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	slog.Info("asset created", "user", GetActor(r.Context()).AccountID,
		"asset", created.Code, "office", office.Label, "quantity", created.Quantity)
	jsonResponse(w, http.StatusCreated, created)
}

// Update handles PUT /api/assets/{id}. Quantity and managing office are not
// changed here; they move only through transfers.
func (h *AssetsHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req assetFields
	if !bindAndValidate(w, r, &req) {
		return
	}

	updated, err := store.UpdateAsset(r.Context(), h.DB, r.PathValue("id"), req.asset())
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/assets.
func (h *AssetsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil || len(req.IDs) == 0 {
		jsonError(w, http.StatusBadRequest, "ids required")
		return
	}

	var n int64
	err := store.WithTx(r.Context(), h.DB, func(tx *sql.Tx) error {
		var err error
		n, err = store.DeleteAssets(r.Context(), tx, req.IDs)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	if n == 0 {
		jsonError(w, http.StatusNotFound, "no assets found")
		return
	}

	slog.Info("assets deleted", "user", GetActor(r.Context()).AccountID, "deleted", n)
	jsonResponse(w, http.StatusOK, map[string]any{"message": "assets deleted", "deletedCount": n})
}

// Totals handles GET /api/assets/totals.
func (h *AssetsHandler) Totals(w http.ResponseWriter, r *http.Request) {
	totals, err := store.AssetTotals(r.Context(), h.DB)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if totals == nil {
		totals = []model.AssetTotal{}
	}
	jsonResponse(w, http.StatusOK, totals)
}

// Import handles POST /api/assets/import with an .xlsx file in the "file"
// form field. Rows are inserted in one transaction.
func (h *AssetsHandler) Import(w http.ResponseWriter, r *http.Request) {
	file, ok := uploadedFile(w, r)
	if !ok {
		return
	}
	defer file.Close()

	rows, rowErrs, err := spreadsheet.ParseAssets(file)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	var result *model.ImportResult
	err = store.WithTx(r.Context(), h.DB, func(tx *sql.Tx) error {
		var err error
		result, err = store.ImportAssets(r.Context(), tx, rows)
		return err
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	mergeRowErrors(result, rowErrs)

	slog.Info("assets imported", "user", GetActor(r.Context()).AccountID,
		"inserted", result.Inserted, "skipped", result.Skipped, "errors", len(result.Errors))
	jsonResponse(w, http.StatusOK, result)
}

// uploadedFile returns the "file" part of a multipart upload. On failure it
// writes a 400 response.
func uploadedFile(w http.ResponseWriter, r *http.Request) (multipart.File, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	file, _, err := r.FormFile("file")
	if err != nil {
		jsonError(w, http.StatusBadRequest, "file required")
		return nil, false
	}
	return file, true
}

// mergeRowErrors adds parse errors to an import result, ordered by line.
func mergeRowErrors(result *model.ImportResult, rowErrs []model.ImportError) {
	result.Errors = append(result.Errors, rowErrs...)
	slices.SortStableFunc(result.Errors, func(a, b model.ImportError) int {
		return cmp.Compare(a.Line, b.Line)
	})
}
