package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, DefaultElasticHost, cfg.Elastic.Host)
	assert.Equal(t, "analyzer_articles", cfg.Redis.StreamName)
	assert.Equal(t, "searcher_api", cfg.Redis.ConsumerGroup)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
	assert.Equal(t, "mongodb://localhost:27017", cfg.Mongo.URI())
	assert.Equal(t, 384, cfg.Embeddings.Dimensions)
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
server:
  listen_addr: ":9090"
elastic:
  host: https://es.internal:9200
redis:
  stream_name: custom_stream
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ":9090", cfg.Server.ListenAddr)
	assert.Equal(t, "https://es.internal:9200", cfg.Elastic.Host)
	assert.Equal(t, "custom_stream", cfg.Redis.StreamName)
	// Untouched sections keep their defaults.
	assert.Equal(t, DefaultMongoDB, cfg.Mongo.Database)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: debug\n"), 0o644))

	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("ELASTIC_PASSWORD", "secret")
	t.Setenv("REDIS_PORT", "6380")
	t.Setenv("ELASTIC_TLS_INSECURE", "true")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.example http://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, "secret", cfg.Elastic.Password)
	assert.Equal(t, 6380, cfg.Redis.Port)
	assert.True(t, cfg.Elastic.TLSInsecure)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.CORS.AllowedOrigins)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("/does/not/exist.yaml")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.Validate())

	cfg.Elastic.Password = "secret"
	require.Error(t, cfg.Validate())

	cfg.Embeddings.ModelPath = "all-minilm"
	assert.NoError(t, cfg.Validate())
}

func TestValidateIngest(t *testing.T) {
	cfg := Default()
	require.Error(t, cfg.ValidateIngest())

	cfg.Elastic.Password = "secret"
	assert.NoError(t, cfg.ValidateIngest())

	cfg.Redis.StreamName = ""
	require.Error(t, cfg.ValidateIngest())
}
