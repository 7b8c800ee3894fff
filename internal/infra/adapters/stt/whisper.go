// Package stt talks to an OpenAI-compatible speech-to-text endpoint
// (whisper.cpp server, faster-whisper, or the hosted API).
package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"clipvault/internal/domain"
	"clipvault/internal/domain/model"
	"clipvault/internal/domain/ports/adapter"
)

var _ adapter.Transcriber = (*WhisperTranscriber)(nil)

// WhisperTranscriber posts the audio file to /v1/audio/transcriptions with
// response_format=verbose_json and maps the returned segments.
type WhisperTranscriber struct {
	baseURL string
	apiKey  string // empty for a local server
	model   string
	client  *http.Client
}

func NewWhisperTranscriber(baseURL, apiKey, model string) (*WhisperTranscriber, error) {
	if baseURL == "" {
		return nil, errors.New("whisper base url empty")
	}
	if model == "" {
		model = "whisper-1"
	}
	return &WhisperTranscriber{
		baseURL: baseURL,
		apiKey:  apiKey,
		model:   model,
		client:  &http.Client{Timeout: 30 * time.Minute},
	}, nil
}

type verboseResponse struct {
	Duration float64 `json:"duration"`
	Segments []struct {
		Start float64 `json:"start"`
		End   float64 `json:"end"`
		Text  string  `json:"text"`
	} `json:"segments"`
}

func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) ([]model.Segment, error) {
	file, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("%w: open audio: %v", domain.ErrTranscribeFailed, err)
	}
	defer file.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", filepath.Base(audioPath))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscribeFailed, err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("%w: read audio: %v", domain.ErrTranscribeFailed, err)
	}
	_ = mw.WriteField("model", t.model)
	_ = mw.WriteField("response_format", "verbose_json")
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscribeFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.baseURL+"/v1/audio/transcriptions", &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscribeFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if t.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+t.apiKey)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTranscribeFailed, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: http %d: %s", domain.ErrTranscribeFailed, resp.StatusCode, msg)
	}

	var payload verboseResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", domain.ErrTranscribeFailed, err)
	}

	segments := make([]model.Segment, 0, len(payload.Segments))
	for _, s := range payload.Segments {
		segments = append(segments, model.Segment{Text: s.Text, Start: s.Start, End: s.End})
	}
	// Empty output is only valid for silent audio; let callers decide using
	// the reported duration.
	if len(segments) == 0 && payload.Duration > 1 {
		return nil, fmt.Errorf("%w: empty transcript for %.0fs of audio", domain.ErrTranscribeFailed, payload.Duration)
	}
	return segments, nil
}
