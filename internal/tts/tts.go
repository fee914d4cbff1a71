// Package tts is the client for the speech synthesis service.
package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/bowerhall/rene/internal/emotion"
)

type Client struct {
	speakURL   string
	httpClient *http.Client
}

// Voice parameters tuned for Rene's voice model.
type speakRequest struct {
	Text         string    `json:"text"`
	Language     string    `json:"language"`
	Emotions     []float64 `json:"emotions"`
	CfgScale     float64   `json:"cfg_scale"`
	SpeakingRate float64   `json:"speaking_rate"`
	PitchStd     float64   `json:"pitch_std"`
	VQScore      float64   `json:"vq_score"`
	DNSMOS       float64   `json:"dnsmos"`
}

func NewClient(speakURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{speakURL: speakURL, httpClient: httpClient}
}

// Synthesize renders text to audio, voicing it with the given emotion
// vector.
func (c *Client) Synthesize(ctx context.Context, text string, emotions emotion.Vector) ([]byte, error) {
	jsonBody, err := json.Marshal(speakRequest{
		Text:         text,
		Language:     "ja",
		Emotions:     emotions.Slice(),
		CfgScale:     5,
		SpeakingRate: 15,
		PitchStd:     100,
		VQScore:      0.85,
		DNSMOS:       4.5,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.speakURL, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	audio, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("tts error (status %d)", resp.StatusCode)
	}

	return audio, nil
}
