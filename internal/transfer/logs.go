package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/vanminhgroup/qlts/internal/model"
	"github.com/vanminhgroup/qlts/internal/store"
)

// Logs answers read queries over the transfer history and performs the
// administrative bulk delete.
type Logs struct {
	DB *sql.DB
}

// LogQuery selects a page of log entries. Empty filters match everything.
type LogQuery struct {
	Page         int
	Limit        int
	AssetID      string
	TransferType string
	Status       string
}

// LogPage is one page of log entries.
type LogPage struct {
	Total      int                     `json:"total"`
	Logs       []model.TransferLogView `json:"logs"`
	Page       int                     `json:"page"`
	TotalPages int                     `json:"totalPages"`
}

// List returns log entries newest first with display text attached.
func (l *Logs) List(ctx context.Context, q LogQuery) (*LogPage, error) {
	typ := model.TransferType(q.TransferType)
	if typ != "" && !typ.Valid() {
		return nil, fmt.Errorf("%w: unknown transfer type %q", ErrInvalidRequest, q.TransferType)
	}
	status := model.TransferStatus(q.Status)
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidRequest, q.Status)
	}

	page, limit := store.Page(q.Page, q.Limit)
	logs, total, err := store.ListTransferLogs(ctx, l.DB, store.LogFilter{
		AssetID:      q.AssetID,
		TransferType: typ,
		Status:       status,
		Page:         page,
		Limit:        limit,
	})
	if err != nil {
		return nil, storeErr("listing logs", err)
	}

	views := make([]model.TransferLogView, 0, len(logs))
	for _, entry := range logs {
		views = append(views, entry.View())
	}

	return &LogPage{
		Total:      total,
		Logs:       views,
		Page:       page,
		TotalPages: store.TotalPages(total, limit),
	}, nil
}

// Get returns one log entry with display text attached.
func (l *Logs) Get(ctx context.Context, id string) (*model.TransferLogView, error) {
	entry, err := store.GetTransferLog(ctx, l.DB, id)
	if err != nil {
		return nil, storeErr("loading log", err)
	}
	if entry == nil {
		return nil, notFound("transfer log")
	}
	view := entry.View()
	return &view, nil
}

// Inventory returns the ledger rows of one asset, one per office.
func (l *Logs) Inventory(ctx context.Context, assetID string) ([]model.Inventory, error) {
	if assetID == "" {
		return nil, fmt.Errorf("%w: missing asset id", ErrInvalidRequest)
	}
	rows, err := store.ListAssetInventory(ctx, l.DB, assetID)
	if err != nil {
		return nil, storeErr("listing inventory", err)
	}
	if rows == nil {
		rows = []model.Inventory{}
	}
	return rows, nil
}

// Delete removes the given log entries. The list must be non-empty and hold
// only valid ids; ErrNotFound is returned when none of them exist.
func (l *Logs) Delete(ctx context.Context, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, fmt.Errorf("%w: no ids given", ErrInvalidRequest)
	}
	for _, id := range ids {
		if _, err := uuid.Parse(id); err != nil {
			return 0, fmt.Errorf("%w: invalid id %q", ErrInvalidRequest, id)
		}
	}

	n, err := store.DeleteTransferLogs(ctx, l.DB, ids)
	if err != nil {
		return 0, storeErr("deleting logs", err)
	}
	if n == 0 {
		return 0, notFound("transfer logs")
	}

	slog.Info("transfer logs deleted", "requested", len(ids), "deleted", n)
	return n, nil
}
