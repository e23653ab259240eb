package transfer

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/vanminhgroup/qlts/internal/auth"
	"github.com/vanminhgroup/qlts/internal/model"
	"github.com/vanminhgroup/qlts/internal/store"
)

// Engine performs imports and exports. Each operation runs in one database
// transaction and either applies all of its writes or none.
type Engine struct {
	DB *sql.DB
	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

// ImportRequest adds stock of an asset at an office.
type ImportRequest struct {
	AssetID    string
	ToOfficeID string
	Quantity   int
	Note       string
	Reason     model.TransferReason
}

// ExportRequest moves stock of an asset from its managing office to another
// office. Source, when set, is the asset document to clone if the destination
// office does not hold the asset yet; otherwise the stored source is cloned.
type ExportRequest struct {
	AssetID      string
	FromOfficeID string
	ToOfficeID   string
	Quantity     int
	Note         string
	Reason       model.TransferReason
	Source       *model.Asset
}

// ExportResult describes a completed export.
type ExportResult struct {
	LogID              string
	DestinationAssetID string
	// Created is true when the destination asset did not exist before.
	Created bool
}

// Import increments the asset's quantity and its ledger row at the target
// office, and records an IMPORT log entry. It returns the log entry's id.
func (e *Engine) Import(ctx context.Context, actor *auth.Actor, req ImportRequest) (string, error) {
	if req.Quantity <= 0 {
		return "", ErrInvalidQuantity
	}

	var logID string
	err := store.WithTx(ctx, e.DB, func(tx *sql.Tx) error {
		asset, err := store.GetAsset(ctx, tx, req.AssetID)
		if err != nil {
			return storeErr("loading asset", err)
		}
		if asset == nil {
			return notFound("asset")
		}

		office, err := store.GetOffice(ctx, tx, req.ToOfficeID)
		if err != nil {
			return storeErr("loading office", err)
		}
		if office == nil {
			return notFound("target office")
		}

		if actor == nil {
			return auth.ErrUnauthorized
		}

		reason := req.Reason
		if reason == "" {
			reason = model.ReasonNewImport
		}
		if !reason.Valid() {
			return fmt.Errorf("%w: unknown reason %q", ErrInvalidRequest, reason)
		}

		now := e.now()
		if err := store.IncrementAssetQuantity(ctx, tx, asset.ID, req.Quantity, now); err != nil {
			return storeErr("incrementing asset", err)
		}
		if _, _, err := store.AdjustInventory(ctx, tx, asset.ID, office.ID, req.Quantity, now); err != nil {
			return storeErr("updating inventory", err)
		}

		entry := &model.TransferLog{
			AssetID:      asset.ID,
			FromOfficeID: office.ID,
			ToOfficeID:   office.ID,
			Quantity:     req.Quantity,
			TransferType: model.TransferImport,
			Status:       model.StatusCompleted,
			Reason:       reason,
			Note:         req.Note,
			TransferBy:   actor.AccountID,
			TransferDate: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := store.InsertTransferLog(ctx, tx, entry); err != nil {
			return storeErr("writing log", err)
		}
		logID = entry.ID
		return nil
	})
	if err != nil {
		return "", classify("importing asset", err)
	}

	slog.Info("asset imported",
		"asset", req.AssetID, "office", req.ToOfficeID, "quantity", req.Quantity,
		"by", actor.AccountID, "log", logID)
	return logID, nil
}

// Export moves stock from the managing office to another office. The
// destination asset with the same code is incremented, or created from the
// source snapshot when the destination office does not hold it yet.
func (e *Engine) Export(ctx context.Context, actor *auth.Actor, req ExportRequest) (*ExportResult, error) {
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	res := &ExportResult{}
	var negativeSource *int
	err := store.WithTx(ctx, e.DB, func(tx *sql.Tx) error {
		src, err := store.GetAsset(ctx, tx, req.AssetID)
		if err != nil {
			return storeErr("loading source asset", err)
		}
		if src == nil {
			return notFound("source asset")
		}
		if !src.ManagedBy(req.FromOfficeID) {
			return ErrForbidden
		}
		if src.Quantity < req.Quantity {
			return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, src.Quantity, req.Quantity)
		}

		if actor == nil {
			return auth.ErrUnauthorized
		}

		reason := req.Reason
		if reason == "" {
			reason = model.ReasonTransfer
		}
		if !reason.Valid() {
			return fmt.Errorf("%w: unknown reason %q", ErrInvalidRequest, reason)
		}
		if req.FromOfficeID == req.ToOfficeID {
			return fmt.Errorf("%w: source and destination office are the same", ErrInvalidRequest)
		}
		dest, err := store.GetOffice(ctx, tx, req.ToOfficeID)
		if err != nil {
			return storeErr("loading destination office", err)
		}
		if dest == nil {
			return notFound("destination office")
		}
		snapshot, err := resolveSnapshot(ctx, tx, req.Source)
		if err != nil {
			return err
		}

		now := e.now()

		// 1. Source decrement, guarded in the statement itself.
		ok, err := store.DecrementAssetQuantity(ctx, tx, src.ID, req.Quantity, now)
		if err != nil {
			return storeErr("decrementing source asset", err)
		}
		if !ok {
			return fmt.Errorf("%w: available %d, requested %d", ErrInsufficientStock, src.Quantity, req.Quantity)
		}

		// 2. Destination asset, found or created in one statement.
		clone := destinationClone(src, snapshot, dest.ID, req.Quantity)
		res.DestinationAssetID, res.Created, err = store.UpsertOfficeAsset(ctx, tx, clone, now)
		if err != nil {
			return storeErr("resolving destination asset", err)
		}

		// 3. and 4. Ledger legs.
		qty, _, err := store.AdjustInventory(ctx, tx, src.ID, req.FromOfficeID, -req.Quantity, now)
		if err != nil {
			return storeErr("updating source inventory", err)
		}
		if qty < 0 {
			negativeSource = &qty
		}
		if _, _, err := store.AdjustInventory(ctx, tx, res.DestinationAssetID, dest.ID, req.Quantity, now); err != nil {
			return storeErr("updating destination inventory", err)
		}

		// 5. Log entry.
		entry := &model.TransferLog{
			AssetID:      src.ID,
			FromOfficeID: req.FromOfficeID,
			ToOfficeID:   dest.ID,
			Quantity:     req.Quantity,
			TransferType: model.TransferExport,
			Status:       model.StatusCompleted,
			Reason:       reason,
			Note:         req.Note,
			TransferBy:   actor.AccountID,
			TransferDate: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := store.InsertTransferLog(ctx, tx, entry); err != nil {
			return storeErr("writing log", err)
		}
		res.LogID = entry.ID
		return nil
	})
	if err != nil {
		return nil, classify("exporting asset", err)
	}

	if negativeSource != nil {
		slog.Warn("source inventory is negative",
			"asset", req.AssetID, "office", req.FromOfficeID, "quantity", *negativeSource)
	}
	slog.Info("asset exported",
		"asset", req.AssetID, "from", req.FromOfficeID, "to", req.ToOfficeID,
		"quantity", req.Quantity, "destination", res.DestinationAssetID,
		"created", res.Created, "by", actor.AccountID, "log", res.LogID)
	return res, nil
}

// destinationClone builds the asset document to create at the destination
// office. Catalog fields come from the snapshot when given, otherwise from the
// stored source. The code always matches the source.
func destinationClone(src, snapshot *model.Asset, officeID string, qty int) *model.Asset {
	base := src
	if snapshot != nil {
		base = snapshot
	}

	clone := &model.Asset{
		Code:               src.Code,
		Quantity:           qty,
		UnitID:             base.UnitID,
		Name:               base.Name,
		ModelOrSeries:      base.ModelOrSeries,
		AssetTypeID:        base.AssetTypeID,
		DateOfPurchase:     base.DateOfPurchase,
		WarrantyMonths:     base.WarrantyMonths,
		ExpirationDate:     base.ExpirationDate,
		Price:              base.Price,
		Depreciation:       base.Depreciation,
		Supplier:           base.Supplier,
		SupplierAddress:    base.SupplierAddress,
		SupplierPhone:      base.SupplierPhone,
		AssetLocationID:    &officeID,
		ManagementOfficeID: &officeID,
		Description:        base.Description,
		Extra:              base.Extra,
	}
	if clone.Name == "" {
		clone.Name = src.Name
	}
	return clone
}

// resolveSnapshot returns a copy of snapshot whose unit and asset type
// references name existing catalog rows, accepting an id or a label.
func resolveSnapshot(ctx context.Context, tx *sql.Tx, snapshot *model.Asset) (*model.Asset, error) {
	if snapshot == nil {
		return nil, nil
	}
	resolved := *snapshot
	if ref := resolved.UnitID; ref != nil && *ref == "" {
		resolved.UnitID = nil
	}
	if ref := resolved.AssetTypeID; ref != nil && *ref == "" {
		resolved.AssetTypeID = nil
	}
	if ref := resolved.UnitID; ref != nil {
		unit, err := store.FindUnit(ctx, tx, *ref)
		if err != nil {
			return nil, storeErr("resolving snapshot unit", err)
		}
		if unit == nil {
			return nil, fmt.Errorf("%w: unknown unit %q in source asset", ErrInvalidRequest, *ref)
		}
		resolved.UnitID = &unit.ID
	}
	if ref := resolved.AssetTypeID; ref != nil {
		typ, err := store.FindAssetType(ctx, tx, *ref)
		if err != nil {
			return nil, storeErr("resolving snapshot asset type", err)
		}
		if typ == nil {
			return nil, fmt.Errorf("%w: unknown asset type %q in source asset", ErrInvalidRequest, *ref)
		}
		resolved.AssetTypeID = &typ.ID
	}
	return &resolved, nil
}
