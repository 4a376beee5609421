package space

import (
	"encoding/binary"
	"fmt"
	"math"
	"strconv"

	"github.com/kailas-cloud/casematch/internal/db"
	"github.com/kailas-cloud/casematch/internal/domain/search/hit"
	domspace "github.com/kailas-cloud/casematch/internal/domain/space"
)

// displayFields are returned with every KNN hit.
var displayFields = []string{
	domspace.FieldPID,
	domspace.FieldAge,
	domspace.FieldGender,
	domspace.FieldHeightCM,
}

func entriesToHits(sp domspace.Space, sr *db.SearchResult) []hit.Hit {
	if sr == nil || len(sr.Entries) == 0 {
		return nil
	}

	hits := make([]hit.Hit, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		pid := entry.Fields[domspace.FieldPID]
		if pid == "" {
			pid = sp.PIDFromKey(entry.Key)
		}
		hits = append(hits, hit.New(pid, entry.Score, parseDisplay(entry.Fields)))
	}
	return hits
}

func parseDisplay(fields map[string]string) hit.Display {
	return hit.Display{
		Age:      parseInt(fields[domspace.FieldAge]),
		Gender:   fields[domspace.FieldGender],
		HeightCM: parseInt(fields[domspace.FieldHeightCM]),
	}
}

// parseInt accepts integral and float renderings ("40", "40.0"); anything else is unknown.
func parseInt(s string) *int {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	v := int(math.Round(f))
	return &v
}

func recordToHash(rec *domspace.Record) map[string]string {
	fields := make(map[string]string, 5+len(rec.Extra()))
	for k, v := range rec.Extra() {
		fields[k] = v
	}
	fields[domspace.FieldPID] = rec.PID()
	fields[domspace.FieldVector] = vectorToBytes(rec.Vector())
	if rec.Gender() != "" {
		fields[domspace.FieldGender] = rec.Gender()
	}
	if rec.Age() != nil {
		fields[domspace.FieldAge] = strconv.Itoa(*rec.Age())
	}
	if rec.HeightCM() != nil {
		fields[domspace.FieldHeightCM] = strconv.Itoa(*rec.HeightCM())
	}
	return fields
}

// vectorToBytes serializes []float32 as the little-endian FLOAT32 blob FT indexes expect.
func vectorToBytes(v []float32) string {
	buf := make([]byte, len(v)*4)
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(f))
	}
	return string(buf)
}

func bytesToVector(blob string) ([]float32, error) {
	if len(blob) == 0 || len(blob)%4 != 0 {
		return nil, fmt.Errorf("vector blob of %d bytes", len(blob))
	}
	v := make([]float32, len(blob)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(blob[i*4 : i*4+4])))
	}
	return v, nil
}
