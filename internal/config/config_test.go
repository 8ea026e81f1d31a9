package config

import "testing"

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 0},
		Embedding: EmbeddingConfig{Dimension: 256},
		Artifact:  ArtifactConfig{Source: "file", Path: "patterns.json"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestValidate_InvalidConfidenceThreshold(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{Dimension: 256},
		Classify:  ClassifyConfig{ConfidenceThreshold: 1.5},
		Artifact:  ArtifactConfig{Source: "file", Path: "patterns.json"},
	}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for out-of-range confidence threshold")
	}
}

func TestValidate_FileSourceRequiresPath(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{Dimension: 256},
		Artifact:  ArtifactConfig{Source: "file"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing artifact.path")
	}
}

func TestValidate_RedisSourceRequiresAddrs(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{Dimension: 256},
		Artifact:  ArtifactConfig{Source: "redis"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing artifact.redis.addrs")
	}
}

func TestValidate_UnknownSourceRejected(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		Embedding: EmbeddingConfig{Dimension: 256},
		Artifact:  ArtifactConfig{Source: "s3"},
	}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unrecognised artifact source")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 8080 {
		t.Errorf("expected Port=8080, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.HTTP.RequestTimeoutMs != 2000 {
		t.Errorf("expected RequestTimeoutMs=2000, got %d", cfg.HTTP.RequestTimeoutMs)
	}
	if cfg.HTTP.MaxInFlight != 64 {
		t.Errorf("expected MaxInFlight=64, got %d", cfg.HTTP.MaxInFlight)
	}
	if cfg.Embedding.Dimension != 256 {
		t.Errorf("expected Dimension=256, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Embedding.CacheSize != 4096 {
		t.Errorf("expected CacheSize=4096, got %d", cfg.Embedding.CacheSize)
	}
	if cfg.Classify.MaxAlternatives != 3 {
		t.Errorf("expected MaxAlternatives=3, got %d", cfg.Classify.MaxAlternatives)
	}
	if cfg.Classify.ConfidenceThreshold != 0.5 {
		t.Errorf("expected ConfidenceThreshold=0.5, got %v", cfg.Classify.ConfidenceThreshold)
	}
	if cfg.Artifact.Source != "file" {
		t.Errorf("expected Source=file, got %q", cfg.Artifact.Source)
	}
	if cfg.Scheduler.CronSpec != "@every 5m" {
		t.Errorf("expected CronSpec='@every 5m', got %q", cfg.Scheduler.CronSpec)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 9090, ReadTimeoutSec: 30, WriteTimeoutSec: 60, ShutdownSec: 5},
		Embedding: EmbeddingConfig{Dimension: 512, CacheSize: 1024},
		Classify:  ClassifyConfig{MaxAlternatives: 5, ConfidenceThreshold: 0.8},
		Artifact:  ArtifactConfig{Source: "redis"},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected Port=9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Embedding.Dimension != 512 {
		t.Errorf("expected Dimension=512, got %d", cfg.Embedding.Dimension)
	}
	if cfg.Classify.ConfidenceThreshold != 0.8 {
		t.Errorf("expected ConfidenceThreshold=0.8, got %v", cfg.Classify.ConfidenceThreshold)
	}
	if cfg.Artifact.Source != "redis" {
		t.Errorf("expected Source=redis (no override), got %q", cfg.Artifact.Source)
	}
}

func TestExpandEnvVars_UsesDefaultWhenUnset(t *testing.T) {
	t.Setenv("PATTERNENGINE_TEST_UNSET_VAR", "")

	out := expandEnvVars([]byte("port: ${PATTERNENGINE_TEST_UNSET_VAR:-8080}"))
	if string(out) != "port: 8080" {
		t.Errorf("expandEnvVars() = %q, want %q", out, "port: 8080")
	}
}

func TestExpandEnvVars_PrefersSetValue(t *testing.T) {
	t.Setenv("PATTERNENGINE_TEST_SET_VAR", "9090")

	out := expandEnvVars([]byte("port: ${PATTERNENGINE_TEST_SET_VAR:-8080}"))
	if string(out) != "port: 9090" {
		t.Errorf("expandEnvVars() = %q, want %q", out, "port: 9090")
	}
}
