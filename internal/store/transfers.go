package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vanminhgroup/qlts/internal/model"
)

// InsertTransferLog records a transfer. An empty ID is assigned here.
func InsertTransferLog(ctx context.Context, db DBTX, l *model.TransferLog) error {
	if l.ID == "" {
		l.ID = NewID()
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO transfer_logs (id, asset_id, from_office_id, to_office_id, quantity,
		        transfer_type, status, reason, note, transfer_by, transfer_date, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.AssetID, l.FromOfficeID, l.ToOfficeID, l.Quantity,
		l.TransferType, l.Status, l.Reason, l.Note, l.TransferBy,
		l.TransferDate, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("recording transfer: %w", err)
	}
	return nil
}

const transferLogSelect = `SELECT t.id, t.asset_id, t.from_office_id, t.to_office_id, t.quantity,
	       t.transfer_type, t.status, t.reason, t.note, t.transfer_by,
	       t.transfer_date, t.created_at, t.updated_at,
	       COALESCE(a.name, ''), COALESCE(a.code, ''),
	       COALESCE(fo.label, ''), COALESCE(fo.code, ''),
	       COALESCE(too.label, ''), COALESCE(too.code, ''),
	       COALESCE(u.name, '')
	FROM transfer_logs t
	LEFT JOIN assets a ON a.id = t.asset_id
	LEFT JOIN offices fo ON fo.id = t.from_office_id
	LEFT JOIN offices too ON too.id = t.to_office_id
	LEFT JOIN accounts u ON u.id = t.transfer_by`

func scanTransferLog(s rowScanner) (*model.TransferLog, error) {
	l := &model.TransferLog{}
	err := s.Scan(&l.ID, &l.AssetID, &l.FromOfficeID, &l.ToOfficeID, &l.Quantity,
		&l.TransferType, &l.Status, &l.Reason, &l.Note, &l.TransferBy,
		&l.TransferDate, &l.CreatedAt, &l.UpdatedAt,
		&l.AssetName, &l.AssetCode,
		&l.FromOfficeLabel, &l.FromOfficeCode,
		&l.ToOfficeLabel, &l.ToOfficeCode,
		&l.TransferByName)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// GetTransferLog returns a transfer log entry by ID.
func GetTransferLog(ctx context.Context, db DBTX, id string) (*model.TransferLog, error) {
	l, err := scanTransferLog(db.QueryRowContext(ctx, transferLogSelect+` WHERE t.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting transfer log: %w", err)
	}
	return l, nil
}

// LogFilter selects transfer log entries. Empty fields match everything.
type LogFilter struct {
	AssetID      string
	TransferType model.TransferType
	Status       model.TransferStatus
	Page         int
	Limit        int
}

// ListTransferLogs returns one page of log entries, newest transfer first,
// and the total number of matching entries.
func ListTransferLogs(ctx context.Context, db DBTX, f LogFilter) ([]model.TransferLog, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if f.AssetID != "" {
		where += ` AND t.asset_id = ?`
		args = append(args, f.AssetID)
	}
	if f.TransferType != "" {
		where += ` AND t.transfer_type = ?`
		args = append(args, f.TransferType)
	}
	if f.Status != "" {
		where += ` AND t.status = ?`
		args = append(args, f.Status)
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM transfer_logs t`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting transfer logs: %w", err)
	}

	page, limit := Page(f.Page, f.Limit)
	args = append(args, limit, (page-1)*limit)

	rows, err := db.QueryContext(ctx,
		transferLogSelect+where+` ORDER BY t.transfer_date DESC, t.id DESC LIMIT ? OFFSET ?`,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing transfer logs: %w", err)
	}
	defer rows.Close()

	var logs []model.TransferLog
	for rows.Next() {
		l, err := scanTransferLog(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning transfer log: %w", err)
		}
		logs = append(logs, *l)
	}
	return logs, total, rows.Err()
}

// DeleteTransferLogs deletes the given log entries and returns how many rows
// were removed.
func DeleteTransferLogs(ctx context.Context, db DBTX, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := db.ExecContext(ctx,
		`DELETE FROM transfer_logs WHERE id IN (`+placeholders(len(ids))+`)`, stringArgs(ids)...,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting transfer logs: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting transfer logs: %w", err)
	}
	return n, nil
}
