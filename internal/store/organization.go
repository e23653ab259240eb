package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vanminhgroup/qlts/internal/model"
)

// CreateDepartment creates a new department.
func CreateDepartment(ctx context.Context, db DBTX, code, label string) (*model.Department, error) {
	d := &model.Department{ID: NewID(), Code: code, Label: label, CreatedAt: now()}
	_, err := db.ExecContext(ctx,
		`INSERT INTO departments (id, code, label, created_at) VALUES (?, ?, ?, ?)`,
		d.ID, d.Code, d.Label, d.CreatedAt,
	)
	if err != nil {
		return nil, conflictOr(err, "creating department")
	}
	return d, nil
}

// ListDepartments returns all departments ordered by label.
func ListDepartments(ctx context.Context, db DBTX) ([]model.Department, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT id, code, label, created_at FROM departments ORDER BY label`,
	)
	if err != nil {
		return nil, fmt.Errorf("listing departments: %w", err)
	}
	defer rows.Close()

	var departments []model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Code, &d.Label, &d.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning department: %w", err)
		}
		departments = append(departments, d)
	}
	return departments, rows.Err()
}

// GetDepartment returns a department by ID.
func GetDepartment(ctx context.Context, db DBTX, id string) (*model.Department, error) {
	d := &model.Department{}
	err := db.QueryRowContext(ctx,
		`SELECT id, code, label, created_at FROM departments WHERE id = ?`, id,
	).Scan(&d.ID, &d.Code, &d.Label, &d.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting department: %w", err)
	}
	return d, nil
}

// CreateTeam creates a new team. departmentID may be nil.
func CreateTeam(ctx context.Context, db DBTX, code, label string, departmentID *string) (*model.Team, error) {
	t := &model.Team{ID: NewID(), Code: code, Label: label, DepartmentID: departmentID, CreatedAt: now()}
	_, err := db.ExecContext(ctx,
		`INSERT INTO teams (id, code, label, department_id, created_at) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.Code, t.Label, t.DepartmentID, t.CreatedAt,
	)
	if err != nil {
		return nil, conflictOr(err, "creating team")
	}
	return t, nil
}

// ListTeams returns teams, optionally only those of one department.
func ListTeams(ctx context.Context, db DBTX, departmentID string) ([]model.Team, error) {
	query := `SELECT id, code, label, department_id, created_at FROM teams`
	var args []any
	if departmentID != "" {
		query += ` WHERE department_id = ?`
		args = append(args, departmentID)
	}
	query += ` ORDER BY label`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing teams: %w", err)
	}
	defer rows.Close()

	var teams []model.Team
	for rows.Next() {
		var t model.Team
		if err := rows.Scan(&t.ID, &t.Code, &t.Label, &t.DepartmentID, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning team: %w", err)
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// FindTeam returns the team whose id, code or label equals ref.
func FindTeam(ctx context.Context, db DBTX, ref string) (*model.Team, error) {
	t := &model.Team{}
	err := db.QueryRowContext(ctx,
		`SELECT id, code, label, department_id, created_at FROM teams
		 WHERE id = ? OR label = ? OR (code = ? AND code <> '')
		 ORDER BY id = ? DESC LIMIT 1`, ref, ref, ref, ref,
	).Scan(&t.ID, &t.Code, &t.Label, &t.DepartmentID, &t.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding team: %w", err)
	}
	return t, nil
}

// CreateOffice creates a new office.
func CreateOffice(ctx context.Context, db DBTX, o *model.Office) (*model.Office, error) {
	created := &model.Office{
		ID:           NewID(),
		Code:         o.Code,
		Label:        o.Label,
		DepartmentID: o.DepartmentID,
		TeamID:       o.TeamID,
		CreatedAt:    now(),
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO offices (id, code, label, department_id, team_id, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		created.ID, created.Code, created.Label, created.DepartmentID, created.TeamID, created.CreatedAt,
	)
	if err != nil {
		return nil, conflictOr(err, "creating office")
	}
	return created, nil
}

const officeColumns = `id, code, label, department_id, team_id, created_at`

func scanOffice(s rowScanner) (*model.Office, error) {
	o := &model.Office{}
	if err := s.Scan(&o.ID, &o.Code, &o.Label, &o.DepartmentID, &o.TeamID, &o.CreatedAt); err != nil {
		return nil, err
	}
	return o, nil
}

// GetOffice returns an office by ID.
func GetOffice(ctx context.Context, db DBTX, id string) (*model.Office, error) {
	o, err := scanOffice(db.QueryRowContext(ctx,
		`SELECT `+officeColumns+` FROM offices WHERE id = ?`, id,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting office: %w", err)
	}
	return o, nil
}

// FindOffice returns the office whose id, code or label equals ref. An exact
// id match wins over a code or label match.
func FindOffice(ctx context.Context, db DBTX, ref string) (*model.Office, error) {
	o, err := scanOffice(db.QueryRowContext(ctx,
		`SELECT `+officeColumns+` FROM offices
		 WHERE id = ? OR label = ? OR (code = ? AND code <> '')
		 ORDER BY id = ? DESC LIMIT 1`, ref, ref, ref, ref,
	))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding office: %w", err)
	}
	return o, nil
}

// ListOffices returns all offices ordered by label.
func ListOffices(ctx context.Context, db DBTX) ([]model.Office, error) {
	rows, err := db.QueryContext(ctx, `SELECT `+officeColumns+` FROM offices ORDER BY label`)
	if err != nil {
		return nil, fmt.Errorf("listing offices: %w", err)
	}
	defer rows.Close()

	var offices []model.Office
	for rows.Next() {
		o, err := scanOffice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning office: %w", err)
		}
		offices = append(offices, *o)
	}
	return offices, rows.Err()
}
