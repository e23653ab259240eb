package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vanminhgroup/qlts/internal/model"
)

const accountColumns = `id, phone, name, email, position, password_hash, role, office_id,
	active, token_version, date_of_birth, created_at, deleted_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(s rowScanner) (*model.Account, error) {
	a := &model.Account{}
	err := s.Scan(&a.ID, &a.Phone, &a.Name, &a.Email, &a.Position, &a.PasswordHash, &a.Role,
		&a.OfficeID, &a.Active, &a.TokenVersion, &a.DateOfBirth, &a.CreatedAt, &a.DeletedAt)
	if err != nil {
		return nil, err
	}
	return a, nil
}

// CreateAccount inserts a new account. ID and CreatedAt are assigned here.
// A phone number already used by an active account yields ErrConflict.
func CreateAccount(ctx context.Context, db DBTX, a *model.Account) (*model.Account, error) {
	id := NewID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO accounts (id, phone, name, email, position, password_hash, role, office_id, active, date_of_birth, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, a.Phone, a.Name, a.Email, a.Position, a.PasswordHash, a.Role, a.OfficeID, a.Active, a.DateOfBirth, now(),
	)
	if err != nil {
		return nil, conflictOr(err, "creating account")
	}
	return GetAccount(ctx, db, id)
}

// GetAccount returns an account by ID, including soft-deleted ones.
func GetAccount(ctx context.Context, db DBTX, id string) (*model.Account, error) {
	a, err := scanAccount(db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting account: %w", err)
	}
	return a, nil
}

// GetAccountByPhone returns the non-deleted account with the given phone.
func GetAccountByPhone(ctx context.Context, db DBTX, phone string) (*model.Account, error) {
	a, err := scanAccount(db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE phone = ? AND deleted_at IS NULL`, phone,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting account by phone: %w", err)
	}
	return a, nil
}

// ListAccounts returns all non-deleted accounts.
func ListAccounts(ctx context.Context, db DBTX) ([]model.Account, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE deleted_at IS NULL ORDER BY created_at, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}
	defer rows.Close()

	var accounts []model.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning account: %w", err)
		}
		accounts = append(accounts, *a)
	}
	return accounts, rows.Err()
}

// CountAccounts returns the number of non-deleted accounts.
func CountAccounts(ctx context.Context, db DBTX) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM accounts WHERE deleted_at IS NULL`,
	).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting accounts: %w", err)
	}
	return n, nil
}

// AccountUpdate lists the fields to change. Nil fields are left alone.
type AccountUpdate struct {
	Name         *string
	Email        *string
	Position     *string
	Role         *string
	OfficeID     *string
	Active       *bool
	PasswordHash *string
	DateOfBirth  *time.Time
}

// credentialsChanged reports whether the update must invalidate issued tokens.
func (u AccountUpdate) credentialsChanged() bool {
	return u.PasswordHash != nil || u.Active != nil
}

// UpdateAccount applies u to a non-deleted account. Changing the password or
// the active flag increments the token version, which invalidates every token
// issued before. Returns ErrNotFound if no such account exists.
func UpdateAccount(ctx context.Context, db DBTX, id string, u AccountUpdate) (*model.Account, error) {
	set := ""
	var args []any
	add := func(col string, v any) {
		if set != "" {
			set += ", "
		}
		set += col + " = ?"
		args = append(args, v)
	}

	if u.Name != nil {
		add("name", *u.Name)
	}
	if u.Email != nil {
		add("email", *u.Email)
	}
	if u.Position != nil {
		add("position", *u.Position)
	}
	if u.Role != nil {
		add("role", *u.Role)
	}
	if u.OfficeID != nil {
		if *u.OfficeID == "" {
			add("office_id", nil)
		} else {
			add("office_id", *u.OfficeID)
		}
	}
	if u.Active != nil {
		add("active", *u.Active)
	}
	if u.PasswordHash != nil {
		add("password_hash", *u.PasswordHash)
	}
	if u.DateOfBirth != nil {
		add("date_of_birth", *u.DateOfBirth)
	}
	if u.credentialsChanged() {
		set += ", token_version = token_version + 1"
	}

	if set == "" {
		a, err := GetAccount(ctx, db, id)
		if err != nil {
			return nil, err
		}
		if a == nil || a.DeletedAt != nil {
			return nil, fmt.Errorf("updating account: %w", ErrNotFound)
		}
		return a, nil
	}

	args = append(args, id)
	result, err := db.ExecContext(ctx,
		`UPDATE accounts SET `+set+` WHERE id = ? AND deleted_at IS NULL`, args...,
	)
	if err != nil {
		return nil, conflictOr(err, "updating account")
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, fmt.Errorf("updating account: %w", ErrNotFound)
	}
	return GetAccount(ctx, db, id)
}

// DeleteAccounts soft-deletes the given accounts and returns how many were
// deleted. Their token version is bumped so outstanding tokens stop working.
func DeleteAccounts(ctx context.Context, db DBTX, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	args := append([]any{now()}, stringArgs(ids)...)
	result, err := db.ExecContext(ctx,
		`UPDATE accounts SET deleted_at = ?, token_version = token_version + 1
		 WHERE deleted_at IS NULL AND id IN (`+placeholders(len(ids))+`)`,
		args...,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting accounts: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting accounts: %w", err)
	}
	return n, nil
}
