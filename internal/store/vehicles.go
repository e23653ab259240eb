package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vanminhgroup/qlts/internal/model"
)

const vehicleSelect = `SELECT v.id, v.car_type, v.plate, v.team_id, v.year_of_manufacture,
	       v.registration_period, v.registration_name, v.valuation,
	       v.liability_ins_until, v.liability_ins_seller, v.hull_ins_until, v.hull_ins_seller,
	       v.gps_until, v.gps_description, v.sim_until, v.sim_seller, v.description, v.created_at,
	       COALESCE(t.label, '')
	FROM vehicles v
	LEFT JOIN teams t ON t.id = v.team_id`

func scanVehicle(s rowScanner) (*model.Vehicle, error) {
	v := &model.Vehicle{}
	err := s.Scan(&v.ID, &v.CarType, &v.Plate, &v.TeamID, &v.YearOfManufacture,
		&v.RegistrationPeriod, &v.RegistrationName, &v.Valuation,
		&v.LiabilityInsUntil, &v.LiabilityInsSeller, &v.HullInsUntil, &v.HullInsSeller,
		&v.GPSUntil, &v.GPSDescription, &v.SIMUntil, &v.SIMSeller, &v.Description, &v.CreatedAt,
		&v.TeamLabel)
	if err != nil {
		return nil, err
	}
	return v, nil
}

const vehicleInsert = `INSERT INTO vehicles (id, car_type, plate, team_id, year_of_manufacture,
	        registration_period, registration_name, valuation,
	        liability_ins_until, liability_ins_seller, hull_ins_until, hull_ins_seller,
	        gps_until, gps_description, sim_until, sim_seller, description, created_at)
	 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

func vehicleArgs(id string, v *model.Vehicle, at time.Time) []any {
	return []any{
		id, v.CarType, v.Plate, v.TeamID, v.YearOfManufacture,
		v.RegistrationPeriod, v.RegistrationName, v.Valuation,
		v.LiabilityInsUntil, v.LiabilityInsSeller, v.HullInsUntil, v.HullInsSeller,
		v.GPSUntil, v.GPSDescription, v.SIMUntil, v.SIMSeller, v.Description, at,
	}
}

// CreateVehicle creates a vehicle. A duplicate plate yields ErrConflict.
func CreateVehicle(ctx context.Context, db DBTX, v *model.Vehicle) (*model.Vehicle, error) {
	id := NewID()
	if _, err := db.ExecContext(ctx, vehicleInsert, vehicleArgs(id, v, now())...); err != nil {
		return nil, conflictOr(err, "creating vehicle")
	}
	return GetVehicle(ctx, db, id)
}

// GetVehicle returns a vehicle by ID.
func GetVehicle(ctx context.Context, db DBTX, id string) (*model.Vehicle, error) {
	v, err := scanVehicle(db.QueryRowContext(ctx, vehicleSelect+` WHERE v.id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting vehicle: %w", err)
	}
	return v, nil
}

// VehicleFilter selects vehicles for ListVehicles. Plate matches substrings.
type VehicleFilter struct {
	Plate  string
	TeamID string
	Page   int
	Limit  int
}

// ListVehicles returns one page of vehicles, newest first, and the total
// number of matching vehicles.
func ListVehicles(ctx context.Context, db DBTX, f VehicleFilter) ([]model.Vehicle, int, error) {
	where := ` WHERE 1=1`
	var args []any
	if f.Plate != "" {
		where += ` AND v.plate LIKE ?`
		args = append(args, "%"+f.Plate+"%")
	}
	if f.TeamID != "" {
		where += ` AND v.team_id = ?`
		args = append(args, f.TeamID)
	}

	var total int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM vehicles v`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting vehicles: %w", err)
	}

	page, limit := Page(f.Page, f.Limit)
	args = append(args, limit, (page-1)*limit)

	rows, err := db.QueryContext(ctx,
		vehicleSelect+where+` ORDER BY v.created_at DESC, v.id DESC LIMIT ? OFFSET ?`, args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("listing vehicles: %w", err)
	}
	defer rows.Close()

	var vehicles []model.Vehicle
	for rows.Next() {
		v, err := scanVehicle(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scanning vehicle: %w", err)
		}
		vehicles = append(vehicles, *v)
	}
	return vehicles, total, rows.Err()
}

// DeleteVehicles deletes the given vehicles and returns how many were removed.
func DeleteVehicles(ctx context.Context, db DBTX, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	result, err := db.ExecContext(ctx,
		`DELETE FROM vehicles WHERE id IN (`+placeholders(len(ids))+`)`, stringArgs(ids)...,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting vehicles: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("deleting vehicles: %w", err)
	}
	return n, nil
}

// VehicleTotals returns the number of vehicles per team.
func VehicleTotals(ctx context.Context, db DBTX) ([]model.VehicleTotal, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT v.team_id, COALESCE(t.label, ''), COUNT(*)
		 FROM vehicles v
		 LEFT JOIN teams t ON t.id = v.team_id
		 GROUP BY v.team_id
		 ORDER BY COUNT(*) DESC, t.label`,
	)
	if err != nil {
		return nil, fmt.Errorf("counting vehicles per team: %w", err)
	}
	defer rows.Close()

	var totals []model.VehicleTotal
	for rows.Next() {
		var t model.VehicleTotal
		if err := rows.Scan(&t.TeamID, &t.TeamLabel, &t.TotalCars); err != nil {
			return nil, fmt.Errorf("scanning vehicle total: %w", err)
		}
		totals = append(totals, t)
	}
	return totals, rows.Err()
}

// ImportVehicles inserts spreadsheet rows, skipping plates that already
// exist. Unknown teams make the row fail.
func ImportVehicles(ctx context.Context, db DBTX, rows []model.VehicleImport) (*model.ImportResult, error) {
	res := &model.ImportResult{}
	teams := map[string]string{}

	for _, row := range rows {
		v := row.Vehicle
		if v.Plate == "" {
			res.Errors = append(res.Errors, model.ImportError{Line: row.Line, Message: "missing plate"})
			continue
		}

		if row.Team != "" {
			id, ok := teams[row.Team]
			if !ok {
				team, err := FindTeam(ctx, db, row.Team)
				if err != nil {
					return nil, err
				}
				if team != nil {
					id = team.ID
				}
				teams[row.Team] = id
			}
			if id == "" {
				res.Errors = append(res.Errors, model.ImportError{Line: row.Line, Message: "unknown team " + row.Team})
				continue
			}
			v.TeamID = &id
		}

		if _, err := db.ExecContext(ctx, vehicleInsert, vehicleArgs(NewID(), &v, now())...); err != nil {
			if isUniqueViolation(err) {
				res.Skipped++
				continue
			}
			return nil, fmt.Errorf("importing vehicle on line %d: %w", row.Line, err)
		}
		res.Inserted++
	}

	return res, nil
}
