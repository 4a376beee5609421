package record

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/casematch/internal/domain"
	domrecord "github.com/kailas-cloud/casematch/internal/domain/record"
)

const testSchema = `
CREATE TABLE missing_persons (
	pid TEXT PRIMARY KEY,
	name TEXT,
	age INTEGER,
	gender TEXT,
	height_cm INTEGER,
	build TEXT,
	hair_color TEXT,
	eye_color TEXT,
	distinguishing_marks TEXT,
	clothing_description TEXT,
	person_description TEXT,
	last_seen_date TEXT,
	last_seen_address TEXT,
	police_station TEXT,
	status TEXT,
	profile_photo TEXT
);
CREATE TABLE unidentified_bodies (
	pid TEXT PRIMARY KEY,
	estimated_age INTEGER,
	gender TEXT,
	height_cm INTEGER,
	build TEXT,
	hair_color TEXT,
	eye_color TEXT,
	distinguishing_marks TEXT,
	clothing_description TEXT,
	person_description TEXT,
	found_date TEXT,
	found_address TEXT,
	police_station TEXT,
	status TEXT,
	profile_photo TEXT
);
`

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	ctx := context.Background()

	r, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })

	_, err = r.db.ExecContext(ctx, testSchema)
	require.NoError(t, err)

	_, err = r.db.ExecContext(ctx, `INSERT INTO missing_persons
		(pid, name, age, gender, height_cm, build, hair_color, eye_color, last_seen_address, last_seen_date, status)
		VALUES
		('MP-0001', 'Ravi Kumar', 40, 'Male', 170, 'Slim', 'Black', 'Brown', 'Dadar', '2024-01-10', 'open'),
		('MP-0002', 'Asha Rao', NULL, 'Female', NULL, NULL, NULL, NULL, NULL, NULL, 'open'),
		('MP-0003', 'Unknown', 12, 'Male', 140, NULL, NULL, NULL, NULL, NULL, 'closed')`)
	require.NoError(t, err)

	_, err = r.db.ExecContext(ctx, `INSERT INTO unidentified_bodies
		(pid, estimated_age, gender, height_cm, hair_color, found_address, found_date, status)
		VALUES ('UIDB-0001', 44, 'Male', 172, 'Black', 'Kurla', '2024-02-01', 'unidentified')`)
	require.NoError(t, err)

	return r
}

func TestOpen_EmptyDSN(t *testing.T) {
	_, err := Open(context.Background(), "")
	require.Error(t, err)
}

func TestGet_MissingPerson(t *testing.T) {
	r := newTestRepo(t)

	rec, err := r.Get(context.Background(), "MP-0001")
	require.NoError(t, err)

	assert.Equal(t, domrecord.MissingPerson, rec.Kind)
	assert.Equal(t, "Ravi Kumar", rec.Name)
	require.NotNil(t, rec.Age)
	assert.Equal(t, 40, *rec.Age)
	require.NotNil(t, rec.HeightCM)
	assert.Equal(t, 170, *rec.HeightCM)
	assert.Equal(t, "Dadar", rec.Location)
	assert.Equal(t, "2024-01-10", rec.Date)
	assert.Equal(t, "Brown", rec.EyeColor)
}

func TestGet_UnidentifiedBody(t *testing.T) {
	r := newTestRepo(t)

	rec, err := r.Get(context.Background(), "UIDB-0001")
	require.NoError(t, err)

	assert.Equal(t, domrecord.UnidentifiedBody, rec.Kind)
	assert.Empty(t, rec.Name)
	require.NotNil(t, rec.Age)
	assert.Equal(t, 44, *rec.Age)
	assert.Equal(t, "Kurla", rec.Location)
}

func TestGet_NullsStayAbsent(t *testing.T) {
	r := newTestRepo(t)

	rec, err := r.Get(context.Background(), "MP-0002")
	require.NoError(t, err)

	assert.Nil(t, rec.Age)
	assert.Nil(t, rec.HeightCM)
	assert.Empty(t, rec.HairColor)
}

func TestGet_NotFound(t *testing.T) {
	r := newTestRepo(t)

	tests := []string{"MP-9999", "UIDB-9999", "X-1"}
	for _, pid := range tests {
		_, err := r.Get(context.Background(), pid)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound, pid)
	}
}

func TestGet_UnknownPrefixSearchesBoth(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.db.ExecContext(ctx, `INSERT INTO missing_persons (pid, name) VALUES ('LEGACY-7', 'Old case')`)
	require.NoError(t, err)

	rec, err := r.Get(ctx, "LEGACY-7")
	require.NoError(t, err)
	assert.Equal(t, domrecord.MissingPerson, rec.Kind)
	assert.Equal(t, "Old case", rec.Name)
}

func TestGet_PrefixRoutesToOneTable(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	// an MP- pid stored in the wrong table is not found
	_, err := r.db.ExecContext(ctx, `INSERT INTO unidentified_bodies (pid) VALUES ('MP-0100')`)
	require.NoError(t, err)

	_, err = r.Get(ctx, "MP-0100")
	assert.ErrorIs(t, err, domain.ErrRecordNotFound)
}

func TestList_Pages(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	page, err := r.List(ctx, domrecord.MissingPerson, "", 2)
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "MP-0001", page[0].PID)
	assert.Equal(t, "MP-0002", page[1].PID)

	page, err = r.List(ctx, domrecord.MissingPerson, page[1].PID, 2)
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, "MP-0003", page[0].PID)

	page, err = r.List(ctx, domrecord.MissingPerson, "MP-0003", 2)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestList_ZeroLimit(t *testing.T) {
	r := newTestRepo(t)

	page, err := r.List(context.Background(), domrecord.UnidentifiedBody, "", 0)
	require.NoError(t, err)
	assert.Nil(t, page)
}

func TestCount(t *testing.T) {
	r := newTestRepo(t)

	c, err := r.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, c.MissingPersons)
	assert.Equal(t, 1, c.UnidentifiedBodies)
	assert.Equal(t, map[string]int{"open": 2, "closed": 1}, c.MissingByStatus)
	assert.Equal(t, map[string]int{"unidentified": 1}, c.UnidentifiedByStatus)
}

func TestCount_MissingStatusIsUnknown(t *testing.T) {
	r := newTestRepo(t)
	ctx := context.Background()

	_, err := r.db.ExecContext(ctx, `INSERT INTO unidentified_bodies (pid, status) VALUES
		('UIDB-0002', NULL), ('UIDB-0003', ''), ('UIDB-0004', 'identified')`)
	require.NoError(t, err)

	c, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, c.UnidentifiedBodies)
	assert.Equal(t, map[string]int{"unidentified": 1, "identified": 1, domrecord.StatusUnknown: 2},
		c.UnidentifiedByStatus)
}

func TestCount_EmptyRegisters(t *testing.T) {
	ctx := context.Background()
	r, err := Open(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	_, err = r.db.ExecContext(ctx, testSchema)
	require.NoError(t, err)

	c, err := r.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, c.MissingPersons)
	assert.Empty(t, c.MissingByStatus)
	assert.Empty(t, c.UnidentifiedByStatus)
}

func TestPing(t *testing.T) {
	r := newTestRepo(t)
	require.NoError(t, r.Ping(context.Background()))
}
