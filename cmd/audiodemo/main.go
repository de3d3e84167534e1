package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"audiocore/cmd/audiodemo/httpapi"
	"audiocore/internal/audio"
	"audiocore/internal/audio/backend/portaudio"
	"audiocore/internal/config"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("💡 no .env file found, using environment variables only")
	}

	log.Println("🎧 ====================================")
	log.Println("🎧  AUDIOCORE DEMO")
	log.Println("🎧 ====================================")

	appConfig := config.Load()
	audioCfg := appConfig.Audio
	serverCfg := appConfig.Server

	be := portaudio.New(portaudio.Settings{
		SampleRate:      float64(audioCfg.SampleRateHint),
		FramesPerBuffer: audioCfg.FramesPerBuffer,
		Stereo:          audioCfg.Stereo,
	})

	manager, err := audio.NewAudioManager(be, prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("❌ failed to start audio backend: %v", err)
	}
	log.Println("✅ audio backend started")

	reg := httpapi.NewRegistry()
	loadAssets(manager, reg, audioCfg)

	hub := httpapi.NewLatencyHub(manager)
	stopHub := make(chan struct{})
	go hub.Run(200*time.Millisecond, stopHub)

	router := httpapi.NewRouter(httpapi.Config{
		Manager:       manager,
		Hub:           hub,
		SfxRatePerSec: serverCfg.SfxRatePerSec,
		SfxBurst:      serverCfg.SfxBurst,
	}, reg)

	addr := ":" + strconv.Itoa(serverCfg.Port)
	go func() {
		log.Printf("🌐 debug HTTP server on http://localhost%s", addr)
		if err := http.ListenAndServe(addr, router); err != nil {
			log.Fatalf("❌ debug server failed: %v", err)
		}
	}()

	stopWatchdog := make(chan struct{})
	go watchdog(manager, stopWatchdog)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	log.Println("✅ ready, press Ctrl+C to stop")
	<-quit

	log.Println("🛑 shutting down...")
	close(stopWatchdog)
	close(stopHub)
	log.Println("👋 goodbye")
}

// watchdog polls AudioManager.RecoverIfNeeded on the application thread,
// never the audio callback thread, restarting the backend after a device
// loss.
func watchdog(manager *audio.AudioManager, stop <-chan struct{}) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			if err := manager.RecoverIfNeeded(); err != nil {
				log.Printf("⚠️ backend recovery failed: %v", err)
			}
		}
	}
}

// loadAssets loads every .ogg/.wav file under assets/ as a pooled sfx voice
// named after its file stem. Missing or empty directories are not an error;
// the demo just serves no sfx.
func loadAssets(manager *audio.AudioManager, reg *httpapi.Registry, audioCfg config.AudioConfig) {
	const dir = "assets"
	entries, err := os.ReadDir(dir)
	if err != nil {
		log.Printf("💡 no assets directory found, skipping: %v", err)
		return
	}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name, clip, ok := loadClip(dir, entry.Name())
		if !ok {
			continue
		}
		sfx, err := manager.CreateSfx(clip, 0)
		if err != nil {
			log.Printf("⚠️ failed to register sfx %q: %v", name, err)
			continue
		}
		reg.Register(name, clip, sfx)
		log.Printf("✅ loaded sfx %q (%.2fs)", name, clip.Length())
	}
}

func loadClip(dir, filename string) (name string, clip *audio.AudioClip, ok bool) {
	path := dir + "/" + filename
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("⚠️ failed to read %s: %v", path, err)
		return "", nil, false
	}

	var format audio.ClipFormat
	switch ext(filename) {
	case "ogg":
		format = audio.FormatOGG
	case "wav":
		format = audio.FormatWAV
	default:
		return "", nil, false
	}

	clip, err = audio.NewClipFromBytes(format, data)
	if err != nil {
		log.Printf("⚠️ failed to decode %s: %v", path, err)
		return "", nil, false
	}
	return stem(filename), clip, true
}

func ext(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[i+1:]
		}
	}
	return ""
}

func stem(filename string) string {
	for i := len(filename) - 1; i >= 0; i-- {
		if filename[i] == '.' {
			return filename[:i]
		}
	}
	return filename
}
