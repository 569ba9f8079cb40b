package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("QDRANT_VECTOR_SIZE", "")
	t.Setenv("DEFAULT_AGENT", "")
	t.Setenv("EMBEDDING_CACHE_TTL", "")

	cfg := Load()

	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, uint64(768), cfg.Qdrant.VectorSize)
	assert.Equal(t, "gemini", cfg.Agents.Default)
	assert.Equal(t, 168*time.Hour, cfg.Redis.CacheTTL)
	assert.Equal(t, 3, cfg.Retrieval.RerankCandidateMultiplier)
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("QDRANT_VECTOR_SIZE", "1536")
	t.Setenv("EMBEDDING_PROVIDER", "openai")
	t.Setenv("WORKER_CONCURRENCY", "not-a-number")
	t.Setenv("EMBEDDING_CACHE_TTL", "garbage")

	cfg := Load()

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, uint64(1536), cfg.Qdrant.VectorSize)
	assert.Equal(t, "openai", cfg.Agents.EmbeddingProvider)
	assert.Equal(t, 2, cfg.Worker.Concurrency)
	assert.Equal(t, 168*time.Hour, cfg.Redis.CacheTTL)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Qdrant:    QdrantConfig{VectorSize: 768},
			Gemini:    GeminiConfig{APIKey: "key"},
			Agents:    AgentConfig{Default: "gemini", EmbeddingProvider: "gemini"},
			Retrieval: RetrievalConfig{RerankCandidateMultiplier: 3},
			Worker:    WorkerConfig{Concurrency: 1},
		}
	}

	require.NoError(t, valid().Validate())

	cases := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"missing gemini key", func(c *Config) { c.Gemini.APIKey = "" }},
		{"openai agent without key", func(c *Config) { c.Agents.Default = "openai" }},
		{"unknown agent", func(c *Config) { c.Agents.Default = "llama" }},
		{"unknown embedder", func(c *Config) { c.Agents.EmbeddingProvider = "cohere" }},
		{"zero vector size", func(c *Config) { c.Qdrant.VectorSize = 0 }},
		{"zero multiplier", func(c *Config) { c.Retrieval.RerankCandidateMultiplier = 0 }},
		{"zero concurrency", func(c *Config) { c.Worker.Concurrency = 0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := valid()
			tc.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestGetDatabaseDSN(t *testing.T) {
	cfg := &Config{Database: DatabaseConfig{Host: "db", Port: "5432", User: "u", Password: "p", DBName: "n"}}
	assert.Equal(t, "host=db port=5432 user=u password=p dbname=n sslmode=disable", cfg.GetDatabaseDSN())
}
