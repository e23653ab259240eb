package api

import (
	"log/slog"
	"net/http"

	"github.com/vanminhgroup/qlts/internal/model"
	"github.com/vanminhgroup/qlts/internal/transfer"
)

// TransfersHandler handles the asset transfer endpoints.
type TransfersHandler struct {
	Engine *transfer.Engine
	Logs   *transfer.Logs
}

// The engine checks every field in a fixed order, so these bodies carry no
// validate tags.
type importRequest struct {
	AssetID      string   `json:"assetId"`
	Quantity     quantity `json:"quantity"`
	Note         string   `json:"note"`
	Reason       string   `json:"reason"`
	FromOfficeID string   `json:"fromOfficeId"`
	ToOfficeID   string   `json:"toOfficeId"`
}

type exportRequest struct {
	AssetID      string       `json:"assetId"`
	FromOfficeID string       `json:"fromOfficeId"`
	ToOfficeID   string       `json:"toOfficeId"`
	Quantity     quantity     `json:"quantity"`
	Note         string       `json:"note"`
	Reason       string       `json:"reason"`
	UserID       string       `json:"userId"`
	SourceAsset  *model.Asset `json:"sourceAsset"`
}

// Import handles POST /api/asset-transfer/import.
func (h *TransfersHandler) Import(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	// fromOfficeId is accepted for compatibility; an import has no source.
	logID, err := h.Engine.Import(r.Context(), GetActor(r.Context()), transfer.ImportRequest{
		AssetID:    req.AssetID,
		ToOfficeID: req.ToOfficeID,
		Quantity:   int(req.Quantity),
		Note:       req.Note,
		Reason:     model.TransferReason(req.Reason),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]string{
		"message": "Nhập kho thành công",
		"logId":   logID,
	})
}

// Export handles POST /api/asset-transfer/export.
func (h *TransfersHandler) Export(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonResponse(w, http.StatusBadRequest, map[string]string{
			"message": "invalid request body",
			"status":  "error",
		})
		return
	}

	actor := GetActor(r.Context())
	if req.UserID != "" && actor != nil && req.UserID != actor.AccountID {
		slog.Warn("export body names another user", "actor", actor.AccountID, "userId", req.UserID)
	}

	result, err := h.Engine.Export(r.Context(), actor, transfer.ExportRequest{
		AssetID:      req.AssetID,
		FromOfficeID: req.FromOfficeID,
		ToOfficeID:   req.ToOfficeID,
		Quantity:     int(req.Quantity),
		Note:         req.Note,
		Reason:       model.TransferReason(req.Reason),
		Source:       req.SourceAsset,
	})
	if err != nil {
		status, body := errorBody(r, err)
		body["status"] = "error"
		jsonResponse(w, status, body)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message":            "Xuất kho thành công",
		"status":             "success",
		"logId":              result.LogID,
		"destinationAssetId": result.DestinationAssetID,
		"created":            result.Created,
	})
}

// ListLogs handles GET /api/asset-transfer/logs.
func (h *TransfersHandler) ListLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, err := h.Logs.List(r.Context(), transfer.LogQuery{
		Page:         queryInt(r, "page"),
		Limit:        queryInt(r, "limit"),
		AssetID:      q.Get("assetId"),
		TransferType: q.Get("transferType"),
		Status:       q.Get("status"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, page)
}

// GetLog handles GET /api/asset-transfer/logs/{id}.
func (h *TransfersHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	entry, err := h.Logs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, entry)
}

// Inventory handles GET /api/asset-transfer/inventory/{assetId}.
func (h *TransfersHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	rows, err := h.Logs.Inventory(r.Context(), r.PathValue("assetId"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	jsonResponse(w, http.StatusOK, rows)
}

// DeleteLogs handles DELETE /api/asset-transfer/logs.
func (h *TransfersHandler) DeleteLogs(w http.ResponseWriter, r *http.Request) {
	var req idsRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	n, err := h.Logs.Delete(r.Context(), req.IDs)
	if err != nil {
		writeError(w, r, err)
		return
	}

	jsonResponse(w, http.StatusOK, map[string]any{
		"message":      "Xóa lịch sử thành công",
		"deletedCount": n,
	})
}
