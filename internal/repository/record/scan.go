package record

import (
	"database/sql"

	domrecord "github.com/kailas-cloud/casematch/internal/domain/record"
)

// Column lists share one order so a single scan serves both registers.
// Missing persons have a name and a last sighting; unidentified bodies have an
// estimated age and a finding place.
const (
	missingColumns = "pid, name, age, gender, height_cm, build, hair_color, eye_color, " +
		"distinguishing_marks, clothing_description, person_description, " +
		"last_seen_address, last_seen_date, police_station, status, profile_photo"
	unidentifiedColumns = "pid, '', estimated_age, gender, height_cm, build, hair_color, eye_color, " +
		"distinguishing_marks, clothing_description, person_description, " +
		"found_address, found_date, police_station, status, profile_photo"
)

type rowScanner interface {
	Scan(dest ...any) error
}

func selectQuery(k domrecord.Kind) string {
	if k == domrecord.UnidentifiedBody {
		return "SELECT " + unidentifiedColumns + " FROM " + tableUnidentified
	}
	return "SELECT " + missingColumns + " FROM " + tableMissing
}

func scanRecord(row rowScanner, k domrecord.Kind) (domrecord.Record, error) {
	var (
		pid                                                 string
		name, gender, build, hair, eye, marks, clothing     sql.NullString
		desc, location, date, station, status, profilePhoto sql.NullString
		age, height                                         sql.NullInt64
	)
	err := row.Scan(&pid, &name, &age, &gender, &height, &build, &hair, &eye,
		&marks, &clothing, &desc, &location, &date, &station, &status, &profilePhoto)
	if err != nil {
		return domrecord.Record{}, err
	}

	return domrecord.Record{
		PID:                 pid,
		Kind:                k,
		Name:                name.String,
		Age:                 nullInt(age),
		Gender:              gender.String,
		HeightCM:            nullInt(height),
		Build:               build.String,
		HairColor:           hair.String,
		EyeColor:            eye.String,
		DistinguishingMarks: marks.String,
		Clothing:            clothing.String,
		Description:         desc.String,
		Location:            location.String,
		Date:                date.String,
		PoliceStation:       station.String,
		Status:              status.String,
		ProfilePhoto:        profilePhoto.String,
	}, nil
}

func nullInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
