package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, dir, name, body string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestLoad_LayersAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", `
forum:
  posts_till_hot_topic: 50
  posts_per_page: 20
gravatar:
  timeout: 2s
  negative_ttl: 10m
redis:
  addr: localhost:6379
jwt:
  secret: ${JWT_SECRET_VALUE}
`)
	writeFile(t, dir, "production.yaml", `
forum:
  posts_per_page: 25
redis:
  addr: redis:6379
`)
	writeFile(t, dir, "secrets.env", "# secrets\nJWT_SECRET_VALUE=\"s3cret\"\n")

	t.Setenv("FORUM_HOT_THRESHOLD", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load("production", dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Forum.PostsTillHotTopic != 50 {
		t.Fatalf("hot threshold: %d", cfg.Forum.PostsTillHotTopic)
	}
	if cfg.Forum.PostsPerPage != 25 {
		t.Fatalf("env layer must override base: %d", cfg.Forum.PostsPerPage)
	}
	if cfg.Forum.TopicPagesTillTruncate != 10 || cfg.Forum.DefaultTimezone != "UTC" {
		t.Fatalf("defaults lost: %+v", cfg.Forum)
	}
	if cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("redis addr: %q", cfg.Redis.Addr)
	}
	if cfg.JWT.Secret != "s3cret" {
		t.Fatalf("secret placeholder: %q", cfg.JWT.Secret)
	}
	if cfg.Gravatar.Timeout != 2*time.Second || cfg.Gravatar.NegativeTTL != 10*time.Minute {
		t.Fatalf("durations: %+v", cfg.Gravatar)
	}
	if cfg.Gravatar.Size != 100 || cfg.Gravatar.Rating != "g" {
		t.Fatalf("gravatar defaults lost: %+v", cfg.Gravatar)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "base.yaml", "forum:\n  posts_till_hot_topic: 50\n")
	t.Setenv("FORUM_HOT_THRESHOLD", "7")
	t.Setenv("SERVER_PORT", ":9999")

	cfg, err := Load("local", dir)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Forum.PostsTillHotTopic != 7 || cfg.Server.Port != ":9999" {
		t.Fatalf("env overrides not applied: %+v %+v", cfg.Forum, cfg.Server)
	}
}

func TestLoad_MissingBase(t *testing.T) {
	if _, err := Load("local", t.TempDir()); err == nil {
		t.Fatalf("expected error without base.yaml")
	}
}

func TestMergeMaps_Nested(t *testing.T) {
	got := mergeMaps(
		map[string]interface{}{"a": map[string]interface{}{"x": 1, "y": 2}, "b": 1},
		map[string]interface{}{"a": map[string]interface{}{"y": 3}},
	)
	a := got["a"].(map[string]interface{})
	if a["x"] != 1 || a["y"] != 3 || got["b"] != 1 {
		t.Fatalf("merge result: %v", got)
	}
}

func TestLoad_RepositoryConfig(t *testing.T) {
	t.Setenv("REDIS_ADDR", "redis:6379")
	t.Setenv("TRACING_ENABLED", "false")

	cfg, err := Load("production", "../../config")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Gravatar.CacheBackend != "redis" || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("production layer not applied: %+v %+v", cfg.Gravatar, cfg.Redis)
	}
	if cfg.Tracing.Enabled || cfg.Tracing.SampleRatio != 0.1 {
		t.Fatalf("tracing: %+v", cfg.Tracing)
	}
	if cfg.Forum.PostsTillHotTopic != 35 || cfg.Gravatar.CacheTTL != 24*time.Hour {
		t.Fatalf("base layer lost: %+v %+v", cfg.Forum, cfg.Gravatar)
	}
}
