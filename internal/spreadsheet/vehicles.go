package spreadsheet

import (
	"fmt"
	"io"
	"time"

	"github.com/vanminhgroup/qlts/internal/model"
)

// Vehicle sheet columns.
const (
	colCarType            = "carType"
	colPlate              = "bks"
	colTeam               = "team"
	colYearOfManufacture  = "yearOfManufacture"
	colRegistrationPeriod = "registrationPeriod"
	colRegistrationName   = "registrationName"
	colValuation          = "valuation"
	colLiabilityUntil     = "insurancePeriodTNDS"
	colLiabilitySeller    = "insuranceSellerTNDS"
	colHullUntil          = "insurancePeriodBHVC"
	colHullSeller         = "insuranceSellerBHVC"
	colGPSUntil           = "insurancePeriodGPS"
	colGPSDescription     = "descriptionGPS"
	colSIMUntil           = "insurancePeriod4G"
	colSIMSeller          = "insuranceSeller4G"
	colVehicleDescription = "description"
)

// ParseVehicles reads vehicle rows. Rows with unreadable values are reported
// as import errors and left out.
func ParseVehicles(r io.Reader) ([]model.VehicleImport, []model.ImportError, error) {
	records, err := readRecords(r)
	if err != nil {
		return nil, nil, err
	}

	var rows []model.VehicleImport
	var rowErrs []model.ImportError
	for _, rec := range records {
		row, err := vehicleFromRecord(rec)
		if err != nil {
			rowErrs = append(rowErrs, model.ImportError{Line: rec.line, Message: err.Error()})
			continue
		}
		rows = append(rows, row)
	}
	return rows, rowErrs, nil
}

func vehicleFromRecord(rec record) (model.VehicleImport, error) {
	row := model.VehicleImport{Line: rec.line, Team: rec.get(colTeam)}
	v := &row.Vehicle
	v.Plate = rec.get(colPlate)
	if v.Plate == "" {
		return row, errMissing(colPlate)
	}
	v.CarType = rec.get(colCarType)
	v.RegistrationName = rec.get(colRegistrationName)
	v.LiabilityInsSeller = rec.get(colLiabilitySeller)
	v.HullInsSeller = rec.get(colHullSeller)
	v.GPSDescription = rec.get(colGPSDescription)
	v.SIMSeller = rec.get(colSIMSeller)
	v.Description = rec.get(colVehicleDescription)

	var err error
	if v.YearOfManufacture, err = parseYear(rec.get(colYearOfManufacture)); err != nil {
		return row, err
	}
	if v.Valuation, err = parseMoney(rec.get(colValuation)); err != nil {
		return row, err
	}

	dates := []struct {
		col string
		dst **time.Time
	}{
		{colRegistrationPeriod, &v.RegistrationPeriod},
		{colLiabilityUntil, &v.LiabilityInsUntil},
		{colHullUntil, &v.HullInsUntil},
		{colGPSUntil, &v.GPSUntil},
		{colSIMUntil, &v.SIMUntil},
	}
	for _, d := range dates {
		if *d.dst, err = parseDate(rec.get(d.col)); err != nil {
			return row, err
		}
	}
	return row, nil
}

// parseYear accepts a bare year such as 2019 as well as a full date.
func parseYear(s string) (*time.Time, error) {
	if len(s) == 4 {
		if y, err := parseInt(s); err == nil && y >= 1900 && y <= 2200 {
			t := time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC)
			return &t, nil
		}
	}
	return parseDate(s)
}

func errMissing(col string) error {
	return fmt.Errorf("missing %s", col)
}

func errNegative(col string) error {
	return fmt.Errorf("%s must not be negative", col)
}
