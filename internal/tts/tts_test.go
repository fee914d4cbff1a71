package tts

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/bowerhall/rene/internal/emotion"
)

func TestSynthesize(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		w.Write([]byte("RIFF-audio-bytes"))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)

	audio, err := c.Synthesize(context.Background(), "こんにちは", emotion.Neutral())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(audio) != "RIFF-audio-bytes" {
		t.Errorf("unexpected audio: %q", audio)
	}

	if got["text"] != "こんにちは" || got["language"] != "ja" {
		t.Errorf("unexpected payload: %v", got)
	}
	emotions, ok := got["emotions"].([]any)
	if !ok || len(emotions) != emotion.Dims {
		t.Errorf("emotions should be an 8-float array: %v", got["emotions"])
	}
	if got["cfg_scale"] != 5.0 || got["speaking_rate"] != 15.0 {
		t.Errorf("voice parameters missing: %v", got)
	}
}

func TestSynthesizeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, nil)
	if _, err := c.Synthesize(context.Background(), "x", emotion.Neutral()); err == nil {
		t.Error("expected error on non-200 status")
	}
}
