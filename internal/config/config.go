// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for audio engine settings.
//
// IMPORTANT: When changing values, only modify this file.
package config

import (
	"os"
	"strconv"
)

// =============================================================================
// AUDIO CONFIGURATION
// =============================================================================

// AudioConfig holds the engine's startup settings: backend preferences
// (sample rate, buffer size, mono/stereo) and music and queue defaults.
// cmd/audiodemo applies only the backend fields; AudioManager, CreateMusic
// and CreateSfx do not read the music and queue fields, they take their
// parameters from the caller.
type AudioConfig struct {
	SampleRateHint    int     // Preferred output rate in Hz; 0 defers to the device
	FramesPerBuffer   int     // Requested callback buffer size in frames; 0 defers to the backend
	Stereo            bool    // false renders mono
	MusicAmplifier    float32 // Default MusicParams.Amplifier
	MusicLoopMixTime  float32 // Default MusicParams.LoopMixTime; negative disables looping
	CommandBufferSize int     // Default command/trigger queue capacity
}

// DefaultAudio returns the default audio configuration.
func DefaultAudio() AudioConfig {
	return AudioConfig{
		SampleRateHint:    0,
		FramesPerBuffer:   0,
		Stereo:            true,
		MusicAmplifier:    1,
		MusicLoopMixTime:  -1,
		CommandBufferSize: 16,
	}
}

// AudioFromEnv returns audio configuration with environment variable
// overrides.
func AudioFromEnv() AudioConfig {
	cfg := DefaultAudio()

	if sr := getEnvInt("AUDIO_SAMPLE_RATE", 0); sr > 0 {
		cfg.SampleRateHint = sr
	}
	if fpb := getEnvInt("AUDIO_FRAMES_PER_BUFFER", 0); fpb > 0 {
		cfg.FramesPerBuffer = fpb
	}
	if os.Getenv("AUDIO_MONO") == "true" {
		cfg.Stereo = false
	}
	if amp := getEnvFloat("MUSIC_AMPLIFIER", -1); amp >= 0 {
		cfg.MusicAmplifier = float32(amp)
	}
	if mix := getEnvFloat("MUSIC_LOOP_MIX_TIME", -2); mix >= -1 {
		cfg.MusicLoopMixTime = float32(mix)
	}
	if cb := getEnvInt("AUDIO_COMMAND_BUFFER_SIZE", 0); cb > 0 {
		cfg.CommandBufferSize = cb
	}

	return cfg
}

// =============================================================================
// SERVER CONFIGURATION
// =============================================================================

// ServerConfig holds the debug HTTP server's settings.
type ServerConfig struct {
	Port          int
	SfxRatePerSec float64 // /sfx/{name} rate limit, requests per second
	SfxBurst      int
}

// DefaultServer returns the default server configuration.
func DefaultServer() ServerConfig {
	return ServerConfig{
		Port:          3000,
		SfxRatePerSec: 20,
		SfxBurst:      10,
	}
}

// ServerFromEnv returns server configuration with environment variable
// overrides.
func ServerFromEnv() ServerConfig {
	cfg := DefaultServer()

	if p := getEnvInt("PORT", 0); p > 0 {
		cfg.Port = p
	}
	if r := getEnvFloat("SFX_RATE_PER_SEC", -1); r >= 0 {
		cfg.SfxRatePerSec = r
	}
	if b := getEnvInt("SFX_BURST", 0); b > 0 {
		cfg.SfxBurst = b
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Audio  AudioConfig
	Server ServerConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Audio:  AudioFromEnv(),
		Server: ServerFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}
