// candidatedata.go adapts the teacher's artifact_client.go HTTP-client idiom
// (timeout client, context-scoped requests, status-code/body error wrapping)
// into the OData candidate-data service client spec.md §6.3 names: fetching
// a candidate's skills/languages/certifications/experiences/educations, and
// a job posting's scoring criteria, normalized into the shapes C10 and C11
// consume.
package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/nexus-talent/resume-match/internal/logging"
	"github.com/nexus-talent/resume-match/internal/model"
)

// CandidateDataClient queries the OData candidate-data service named in
// spec.md §6.3.
type CandidateDataClient struct {
	baseURL    string
	sso        *SSOClient
	httpClient *http.Client
	log        *logging.Logger
}

// NewCandidateDataClient builds a client that authenticates every request
// with a bearer token from sso.
func NewCandidateDataClient(baseURL string, sso *SSOClient, log *logging.Logger) *CandidateDataClient {
	return &CandidateDataClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		sso:        sso,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		log:        log,
	}
}

type odataCandidate struct {
	ID    string `json:"Id"`
	Name  string `json:"Name"`
	Years float64 `json:"YearsOfExperience"`
	Skills []struct {
		Skill struct {
			Name string `json:"Name"`
		} `json:"skill"`
	} `json:"skills"`
	Languages []struct {
		Name        string `json:"Name"`
		Proficiency string `json:"Proficiency"`
	} `json:"languages"`
	Certifications []struct {
		Name string `json:"Name"`
	} `json:"certifications"`
	Educations []struct {
		Level string `json:"Level"`
	} `json:"educations"`
}

type odataJobPosting struct {
	ID       string `json:"Id"`
	Title    string `json:"Title"`
	Criteria []struct {
		Type          string   `json:"Type"`
		Value         string   `json:"Value"`
		Points        uint32   `json:"Points"`
		Required      bool     `json:"Required"`
		Weight        float64  `json:"Weight"`
		MinValue      *uint32  `json:"MinValue"`
		PerUnitPoints *float64 `json:"PerUnitPoints"`
		MaxPoints     *uint32  `json:"MaxPoints"`
		SortOrder     int      `json:"SortOrder"`
	} `json:"criteria"`
}

// GetCandidateScoringData fetches a candidate's expanded navigation
// properties and normalizes them into the lowercased, set-shaped
// CandidateScoringData C10 evaluates against (spec.md §4.10).
func (c *CandidateDataClient) GetCandidateScoringData(ctx context.Context, candidateID string) (model.CandidateScoringData, error) {
	path := fmt.Sprintf("/api/Candidates('%s')?$expand=skills($expand=skill),languages,certifications,experiences,educations", candidateID)

	var raw odataCandidate
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return model.CandidateScoringData{}, err
	}

	data := model.CandidateScoringData{
		Skills:         make(map[string]struct{}, len(raw.Skills)),
		Languages:      make(map[string]string, len(raw.Languages)),
		Certifications: make(map[string]struct{}, len(raw.Certifications)),
		YearsExperience: raw.Years,
	}
	for _, s := range raw.Skills {
		if name := strings.ToLower(strings.TrimSpace(s.Skill.Name)); name != "" {
			data.Skills[name] = struct{}{}
		}
	}
	for _, l := range raw.Languages {
		name := strings.ToLower(strings.TrimSpace(l.Name))
		if name == "" {
			continue
		}
		data.Languages[name] = strings.ToLower(strings.TrimSpace(l.Proficiency))
	}
	for _, cert := range raw.Certifications {
		if name := strings.ToLower(strings.TrimSpace(cert.Name)); name != "" {
			data.Certifications[name] = struct{}{}
		}
	}
	if len(raw.Educations) > 0 {
		data.EducationLevel = strings.ToLower(strings.TrimSpace(raw.Educations[0].Level))
	}

	return data, nil
}

// GetJobScoringCriteria fetches the scoring criteria attached to a job
// posting, ordered per SortOrder.
func (c *CandidateDataClient) GetJobScoringCriteria(ctx context.Context, jobID string) ([]model.ScoringCriterion, error) {
	path := fmt.Sprintf("/api/JobPostings('%s')?$expand=criteria", jobID)

	var raw odataJobPosting
	if err := c.getJSON(ctx, path, &raw); err != nil {
		return nil, err
	}

	out := make([]model.ScoringCriterion, 0, len(raw.Criteria))
	for _, cr := range raw.Criteria {
		out = append(out, model.ScoringCriterion{
			JobID:         jobID,
			Type:          model.CriterionType(cr.Type),
			Value:         cr.Value,
			Points:        cr.Points,
			Required:      cr.Required,
			Weight:        cr.Weight,
			MinValue:      cr.MinValue,
			PerUnitPoints: cr.PerUnitPoints,
			MaxPoints:     cr.MaxPoints,
			SortOrder:     int32(cr.SortOrder),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (c *CandidateDataClient) getJSON(ctx context.Context, path string, out interface{}) error {
	token, err := c.sso.Token(ctx)
	if err != nil {
		return fmt.Errorf("acquire token for candidate-data request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build candidate-data request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("candidate-data request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read candidate-data response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("candidate-data service returned HTTP %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parse candidate-data response: %w (raw: %s)", err, string(body))
	}

	c.log.Debug("candidate-data request completed", "path", path, "status", resp.StatusCode)
	return nil
}
