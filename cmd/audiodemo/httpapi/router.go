// Package httpapi is the debug HTTP surface for the audio demo binary:
// metrics, a JSON status endpoint, a per-clip waveform PNG, a rate-limited
// sfx trigger, and a websocket pushing the live latency estimate.
package httpapi

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"audiocore/internal/audio"
	"audiocore/internal/audio/waveform"
)

// Config carries everything the router needs to construct its routes.
type Config struct {
	Manager *audio.AudioManager
	Hub     *LatencyHub

	// CORSOrigins, if nil, defaults to permissive localhost-only origins
	// suitable for a local debug tool.
	CORSOrigins []string

	// SfxRatePerSec and SfxBurst configure the /sfx/{name} rate limiter.
	SfxRatePerSec float64
	SfxBurst      int
}

// Registry is the set of named clips and sfx voices the demo exposes over
// HTTP, built by cmd/audiodemo/main.go at startup.
type Registry struct {
	mu    sync.RWMutex
	clips map[string]*audio.AudioClip
	sfx   map[string]*audio.Sfx
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		clips: make(map[string]*audio.AudioClip),
		sfx:   make(map[string]*audio.Sfx),
	}
}

// Register associates name with a loaded clip and its pooled sfx voice.
func (reg *Registry) Register(name string, clip *audio.AudioClip, sfx *audio.Sfx) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.clips[name] = clip
	reg.sfx[name] = sfx
}

func (reg *Registry) clip(name string) (*audio.AudioClip, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	c, ok := reg.clips[name]
	return c, ok
}

func (reg *Registry) sfxFor(name string) (*audio.Sfx, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	s, ok := reg.sfx[name]
	return s, ok
}

// NewRouter builds the HTTP router. Pure: no goroutines started, no
// listeners opened, safe to use with httptest.NewServer.
func NewRouter(cfg Config, reg *Registry) *chi.Mux {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"http://localhost:*", "http://127.0.0.1:*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Handle("/metrics", promhttp.Handler())

	r.Get("/status", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"latencySeconds": cfg.Manager.EstimateLatency(),
			"broken":         cfg.Manager.ConsumeBroken(),
		})
	})

	r.Get("/waveform/{name}.png", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		clip, ok := reg.clip(name)
		if !ok {
			http.NotFound(w, req)
			return
		}
		png, err := waveform.PNG(clip, waveform.DefaultSettings())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	sfxLimiter := newPerNameLimiter(cfg.SfxRatePerSec, cfg.SfxBurst)
	r.Post("/sfx/{name}", func(w http.ResponseWriter, req *http.Request) {
		name := chi.URLParam(req, "name")
		if !sfxLimiter.allow(name) {
			http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
			return
		}
		sfx, ok := reg.sfxFor(name)
		if !ok {
			http.NotFound(w, req)
			return
		}
		if err := sfx.Play(audio.DefaultPlaySfxParams()); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	})

	r.Get("/ws", cfg.Hub.HandleWS)

	return r
}

// perNameLimiter keeps one token-bucket limiter per sfx name, so one noisy
// client hammering "explosion" doesn't starve a quieter "click" trigger.
type perNameLimiter struct {
	rps   rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

func newPerNameLimiter(rps float64, burst int) *perNameLimiter {
	if rps <= 0 {
		rps = 20
	}
	if burst <= 0 {
		burst = 10
	}
	return &perNameLimiter{rps: rate.Limit(rps), burst: burst, limiters: make(map[string]*rate.Limiter)}
}

func (l *perNameLimiter) allow(name string) bool {
	l.mu.Lock()
	lim, ok := l.limiters[name]
	if !ok {
		lim = rate.NewLimiter(l.rps, l.burst)
		l.limiters[name] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
