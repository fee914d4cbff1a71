package emotion

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Scorer calls the sentiment service. Callers treat every failure as
// "sentiment unavailable" and fall back to a neutral or user-only
// vector; nothing here is on the critical path.
type Scorer struct {
	analyzeURL string
	client     *http.Client
}

type analyzeRequest struct {
	Text string `json:"text"`
}

type analyzeResponse struct {
	Emotion   string             `json:"emotion"`
	AllScores map[string]float64 `json:"all_scores"`
}

func NewScorer(analyzeURL string, client *http.Client) *Scorer {
	if client == nil {
		client = http.DefaultClient
	}
	return &Scorer{analyzeURL: analyzeURL, client: client}
}

// Score returns the emotion vector for text plus the service's top
// emotion label.
func (s *Scorer) Score(ctx context.Context, text string) (Vector, string, error) {
	jsonBody, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return Vector{}, "", err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.analyzeURL, bytes.NewReader(jsonBody))
	if err != nil {
		return Vector{}, "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return Vector{}, "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return Vector{}, "", err
	}

	if resp.StatusCode != 200 {
		return Vector{}, "", fmt.Errorf("sentiment service status %d", resp.StatusCode)
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return Vector{}, "", err
	}

	return FromScores(parsed.AllScores), parsed.Emotion, nil
}

// RawScores exposes the service response for the analyze_emotion tool,
// which forwards it verbatim.
func (s *Scorer) RawScores(ctx context.Context, text string) (map[string]any, error) {
	jsonBody, err := json.Marshal(analyzeRequest{Text: text})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", s.analyzeURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("sentiment service status %d", resp.StatusCode)
	}

	var parsed map[string]any
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}

	return parsed, nil
}
