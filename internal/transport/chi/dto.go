package chi

import (
	"github.com/kailas-cloud/casematch/internal/domain/attribute"
	"github.com/kailas-cloud/casematch/internal/domain/record"
	"github.com/kailas-cloud/casematch/internal/domain/search/candidate"
	"github.com/kailas-cloud/casematch/internal/domain/search/filter"
	matchuc "github.com/kailas-cloud/casematch/internal/usecase/match"
)

// ErrorCode is the machine-readable error kind of an ErrorResponse.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeInvalidQuery           ErrorCode = "invalid_query"
	ErrorCodeVectorDimMismatch      ErrorCode = "vector_dim_mismatch"
	ErrorCodeRecordNotFound         ErrorCode = "record_not_found"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx reply.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// Filters are the optional scalar constraints of a search.
type Filters struct {
	Gender    string `json:"gender,omitempty"`
	AgeMin    *int   `json:"age_min,omitempty"`
	AgeMax    *int   `json:"age_max,omitempty"`
	HeightMin *int   `json:"height_min,omitempty"`
	HeightMax *int   `json:"height_max,omitempty"`
}

func (f *Filters) constraints() filter.Constraints {
	if f == nil {
		return filter.Constraints{}
	}
	return filter.Constraints{
		Gender:    f.Gender,
		AgeMin:    f.AgeMin,
		AgeMax:    f.AgeMax,
		HeightMin: f.HeightMin,
		HeightMax: f.HeightMax,
	}
}

// SearchRequest is the body of POST /v1/search.
type SearchRequest struct {
	FaceVector []float32 `json:"face_vector,omitempty"`
	TextVector []float32 `json:"text_vector,omitempty"`
	Filters    *Filters  `json:"filters,omitempty"`
	FaceWeight *float64  `json:"face_weight,omitempty"`
	TextWeight *float64  `json:"text_weight,omitempty"`
	TopN       *int      `json:"top_n,omitempty"`
	PoolLimit  *int      `json:"pool_limit,omitempty"`
}

// CandidateResponse is one fused candidate.
type CandidateResponse struct {
	PID           string  `json:"pid"`
	CombinedScore float64 `json:"combined_score"`
	FaceScore     float64 `json:"face_score"`
	TextScore     float64 `json:"text_score"`
	Age           *int    `json:"age,omitempty"`
	Gender        string  `json:"gender,omitempty"`
	HeightCM      *int    `json:"height_cm,omitempty"`
}

// SearchResponse is the body returned by POST /v1/search.
type SearchResponse struct {
	Results []CandidateResponse `json:"results"`
	Total   int                 `json:"total"`
}

// Attributes describe the person searched for.
type Attributes struct {
	Gender              string `json:"gender,omitempty"`
	Age                 *int   `json:"age,omitempty"`
	HeightCM            *int   `json:"height_cm,omitempty"`
	Build               string `json:"build,omitempty"`
	Complexion          string `json:"complexion,omitempty"`
	FaceShape           string `json:"face_shape,omitempty"`
	HairColor           string `json:"hair_color,omitempty"`
	EyeColor            string `json:"eye_color,omitempty"`
	DistinguishingMarks string `json:"distinguishing_marks,omitempty"`
	Features            string `json:"features,omitempty"`
	Clothing            string `json:"clothing,omitempty"`
	Location            string `json:"location,omitempty"`
	Description         string `json:"description,omitempty"`
}

func (a *Attributes) descriptor() record.Descriptor {
	if a == nil {
		return record.Descriptor{}
	}
	return record.Descriptor{
		Gender:     a.Gender,
		Age:        a.Age,
		HeightCM:   a.HeightCM,
		Build:      a.Build,
		Complexion: a.Complexion,
		FaceShape:  a.FaceShape,
		HairColor:  a.HairColor,
		EyeColor:   a.EyeColor,
		Marks:      a.DistinguishingMarks,
		Features:   a.Features,
		Clothing:   a.Clothing,
		Location:   a.Location,
		FreeText:   a.Description,
	}
}

// MatchRequest is the body of POST /v1/match.
type MatchRequest struct {
	Attributes  *Attributes `json:"attributes,omitempty"`
	SearchText  string      `json:"search_text,omitempty"`
	FaceVector  []float32   `json:"face_vector,omitempty"`
	PhotoBase64 string      `json:"photo_base64,omitempty"`
	Filters     *Filters    `json:"filters,omitempty"`
	FaceWeight  *float64    `json:"face_weight,omitempty"`
	TextWeight  *float64    `json:"text_weight,omitempty"`
	TopN        *int        `json:"top_n,omitempty"`
}

// RecordResponse is a case record.
type RecordResponse struct {
	PID                 string `json:"pid"`
	Kind                string `json:"kind"`
	Name                string `json:"name,omitempty"`
	Age                 *int   `json:"age,omitempty"`
	Gender              string `json:"gender,omitempty"`
	HeightCM            *int   `json:"height_cm,omitempty"`
	Build               string `json:"build,omitempty"`
	HairColor           string `json:"hair_color,omitempty"`
	EyeColor            string `json:"eye_color,omitempty"`
	DistinguishingMarks string `json:"distinguishing_marks,omitempty"`
	Clothing            string `json:"clothing,omitempty"`
	Description         string `json:"description,omitempty"`
	Location            string `json:"location,omitempty"`
	Date                string `json:"date,omitempty"`
	PoliceStation       string `json:"police_station,omitempty"`
	Status              string `json:"status,omitempty"`
	ProfilePhoto        string `json:"profile_photo,omitempty"`
}

// ComparisonResponse is the per-field attribute comparison of two people.
type ComparisonResponse struct {
	AgeMatch         *bool   `json:"age_match,omitempty"`
	AgeDifference    *int    `json:"age_difference,omitempty"`
	GenderMatch      *bool   `json:"gender_match,omitempty"`
	HeightMatch      *bool   `json:"height_match,omitempty"`
	HeightDifference *int    `json:"height_difference,omitempty"`
	HairColorMatch   *bool   `json:"hair_color_match,omitempty"`
	EyeColorMatch    *bool   `json:"eye_color_match,omitempty"`
	MatchPercentage  float64 `json:"match_percentage"`
}

// MatchResult is one enriched candidate.
type MatchResult struct {
	PID                  string             `json:"pid"`
	ConfidencePercentage float64            `json:"confidence_percentage"`
	CombinedScore        float64            `json:"combined_score"`
	FaceScore            float64            `json:"face_score"`
	TextScore            float64            `json:"text_score"`
	Details              RecordResponse     `json:"details"`
	AttributeComparison  ComparisonResponse `json:"attribute_comparison"`
}

// MatchResponse is the body returned by POST /v1/match.
type MatchResponse struct {
	Description string        `json:"description"`
	UsedFace    bool          `json:"used_face"`
	UsedText    bool          `json:"used_text"`
	FaceWeight  float64       `json:"face_weight"`
	TextWeight  float64       `json:"text_weight"`
	Warnings    []string      `json:"warnings,omitempty"`
	Results     []MatchResult `json:"results"`
	Total       int           `json:"total"`
}

// CompareResponse is the body returned by GET /v1/records/{pid}/compare/{other}.
type CompareResponse struct {
	PID        string             `json:"pid"`
	Other      string             `json:"other"`
	Comparison ComparisonResponse `json:"comparison"`
}

// StatsResponse is the body returned by GET /v1/stats.
type StatsResponse struct {
	MissingPersons       int            `json:"missing_persons"`
	UnidentifiedBodies   int            `json:"unidentified_bodies"`
	MissingByStatus      map[string]int `json:"missing_by_status"`
	UnidentifiedByStatus map[string]int `json:"unidentified_by_status"`
	Embeddings           map[string]int `json:"embeddings"`
}

// HealthResponse is the body returned by GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func candidateToResponse(c candidate.Candidate) CandidateResponse {
	d := c.Display()
	return CandidateResponse{
		PID:           c.PID(),
		CombinedScore: c.Combined(),
		FaceScore:     c.FaceScore(),
		TextScore:     c.TextScore(),
		Age:           d.Age,
		Gender:        d.Gender,
		HeightCM:      d.HeightCM,
	}
}

func recordToResponse(r *record.Record) RecordResponse {
	return RecordResponse{
		PID:                 r.PID,
		Kind:                string(r.Kind),
		Name:                r.Name,
		Age:                 r.Age,
		Gender:              r.Gender,
		HeightCM:            r.HeightCM,
		Build:               r.Build,
		HairColor:           r.HairColor,
		EyeColor:            r.EyeColor,
		DistinguishingMarks: r.DistinguishingMarks,
		Clothing:            r.Clothing,
		Description:         r.Description,
		Location:            r.Location,
		Date:                r.Date,
		PoliceStation:       r.PoliceStation,
		Status:              r.Status,
		ProfilePhoto:        r.ProfilePhoto,
	}
}

func comparisonToResponse(c attribute.Comparison) ComparisonResponse {
	return ComparisonResponse{
		AgeMatch:         c.AgeMatch,
		AgeDifference:    c.AgeDifference,
		GenderMatch:      c.GenderMatch,
		HeightMatch:      c.HeightMatch,
		HeightDifference: c.HeightDifference,
		HairColorMatch:   c.HairColorMatch,
		EyeColorMatch:    c.EyeColorMatch,
		MatchPercentage:  c.MatchPercentage,
	}
}

func matchToResponse(resp matchuc.Response) MatchResponse {
	results := make([]MatchResult, len(resp.Matches))
	for i := range resp.Matches {
		m := &resp.Matches[i]
		results[i] = MatchResult{
			PID:                  m.Candidate.PID(),
			ConfidencePercentage: m.Confidence,
			CombinedScore:        m.Candidate.Combined(),
			FaceScore:            m.Candidate.FaceScore(),
			TextScore:            m.Candidate.TextScore(),
			Details:              recordToResponse(&m.Record),
			AttributeComparison:  comparisonToResponse(m.Comparison),
		}
	}
	return MatchResponse{
		Description: resp.Description,
		UsedFace:    resp.UsedFace,
		UsedText:    resp.UsedText,
		FaceWeight:  resp.WeightFace,
		TextWeight:  resp.WeightText,
		Warnings:    resp.Warnings,
		Results:     results,
		Total:       len(results),
	}
}
