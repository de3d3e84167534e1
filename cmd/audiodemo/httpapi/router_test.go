package httpapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"audiocore/internal/audio"
)

type fakeBackend struct{}

func (fakeBackend) Setup(audio.BackendSetup) error { return nil }
func (fakeBackend) Start() error                   { return nil }
func (fakeBackend) ConsumeBroken() bool            { return false }

func newTestManager(t *testing.T) *audio.AudioManager {
	t.Helper()
	m, err := audio.NewAudioManager(fakeBackend{}, nil)
	if err != nil {
		t.Fatalf("new manager: %v", err)
	}
	return m
}

func TestStatusReportsLatencyAndBroken(t *testing.T) {
	manager := newTestManager(t)
	reg := NewRegistry()
	router := NewRouter(Config{Manager: manager, Hub: NewLatencyHub(manager)}, reg)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content-type = %q", ct)
	}

	var body map[string]interface{}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if _, ok := body["latencySeconds"]; !ok {
		t.Fatalf("body %v has no latencySeconds", body)
	}
	if broken, ok := body["broken"]; !ok || broken != false {
		t.Fatalf("broken = %v, want false", broken)
	}
}

func TestWaveformReturns404ForUnknownClip(t *testing.T) {
	manager := newTestManager(t)
	reg := NewRegistry()
	router := NewRouter(Config{Manager: manager, Hub: NewLatencyHub(manager)}, reg)

	req := httptest.NewRequest(http.MethodGet, "/waveform/missing.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestWaveformRendersRegisteredClip(t *testing.T) {
	manager := newTestManager(t)
	reg := NewRegistry()
	clip := audio.NewClipFromRaw([]audio.Frame{{L: 1, R: -1}, {L: -1, R: 1}}, 44100)
	reg.Register("tone", clip, nil)
	router := NewRouter(Config{Manager: manager, Hub: NewLatencyHub(manager)}, reg)

	req := httptest.NewRequest(http.MethodGet, "/waveform/tone.png", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/png" {
		t.Fatalf("content-type = %q", ct)
	}
}

func TestSfxTriggerReturns404ForUnknownName(t *testing.T) {
	manager := newTestManager(t)
	reg := NewRegistry()
	router := NewRouter(Config{Manager: manager, Hub: NewLatencyHub(manager), SfxRatePerSec: 100, SfxBurst: 100}, reg)

	req := httptest.NewRequest(http.MethodPost, "/sfx/missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestSfxTriggerRateLimitsRepeatedRequests(t *testing.T) {
	manager := newTestManager(t)
	reg := NewRegistry()
	clip := audio.NewClipFromRaw([]audio.Frame{{L: 1, R: 1}}, 44100)
	sfx, _ := manager.CreateSfx(clip, 0)
	reg.Register("click", clip, sfx)

	router := NewRouter(Config{Manager: manager, Hub: NewLatencyHub(manager), SfxRatePerSec: 1, SfxBurst: 1}, reg)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/sfx/click", nil))
	if first.Code != http.StatusAccepted {
		t.Fatalf("first request status = %d, want 202", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/sfx/click", nil))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", second.Code)
	}
}
