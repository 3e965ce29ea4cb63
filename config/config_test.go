package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	genattr "github.com/identitykit/genattr"
	"github.com/identitykit/genattr/engine"
	"github.com/identitykit/genattr/rule"
)

func validMap() map[string]any {
	return map[string]any{
		"baseUrl":      "https://tenant.example.com/v3",
		"clientId":     "client",
		"clientSecret": "secret",
		"sourceId":     "src-1",
		"search":       `attributes.cloudLifecycleState:active`,
		"attributes": []any{
			map[string]any{
				"name":       "username",
				"kind":       "normal",
				"expression": `firstName + "." + lastName`,
				"case":       "lower",
			},
			map[string]any{
				"name":         "employeeId",
				"kind":         "counter",
				"expression":   "counter",
				"digits":       float64(3),
				"counterStart": float64(100),
			},
		},
	}
}

func TestFromMap(t *testing.T) {
	cfg, err := FromMap(validMap())
	require.NoError(t, err)

	assert.Equal(t, "https://tenant.example.com/v3", cfg.BaseURL)
	assert.Equal(t, "src-1", cfg.SourceID)
	assert.Equal(t, engine.ScopeSource, cfg.UniquenessScope)
	assert.Equal(t, BackendMemory, cfg.State.Backend)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)

	require.Len(t, cfg.Attributes, 2)
	assert.Equal(t, rule.KindNormal, cfg.Attributes[0].Kind)
	assert.Equal(t, rule.CaseLower, cfg.Attributes[0].Case)
	assert.Equal(t, 3, cfg.Attributes[1].Digits)
	assert.Equal(t, 100, cfg.Attributes[1].CounterStart)
}

func TestFromMapMissingSource(t *testing.T) {
	m := validMap()
	delete(m, "sourceId")

	_, err := FromMap(m)
	require.Error(t, err)
	assert.True(t, errors.Is(err, genattr.ErrSourceNotFound))
}

func TestFromMapValidationFailures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(map[string]any)
	}{
		{"missing baseUrl", func(m map[string]any) { delete(m, "baseUrl") }},
		{"missing credentials", func(m map[string]any) { delete(m, "clientSecret") }},
		{"missing search", func(m map[string]any) { delete(m, "search") }},
		{"no attributes", func(m map[string]any) { delete(m, "attributes") }},
		{"bad scope", func(m map[string]any) { m["uniquenessScope"] = "tenant" }},
		{"bad state backend", func(m map[string]any) { m["state"] = map[string]any{"backend": "dynamo"} }},
		{"redis without url", func(m map[string]any) { m["state"] = map[string]any{"backend": "redis"} }},
		{"bad timeout", func(m map[string]any) { m["requestTimeout"] = "soon" }},
		{
			"bad rule",
			func(m map[string]any) {
				m["attributes"] = []any{map[string]any{"name": "x", "kind": "bogus"}}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := validMap()
			tt.mutate(m)
			_, err := FromMap(m)
			assert.Error(t, err)
		})
	}
}

func TestLoadYAML(t *testing.T) {
	const doc = `
baseUrl: https://tenant.example.com/v3
clientId: client
clientSecret: secret
sourceId: src-1
search: "attributes.cloudLifecycleState:active"
uniquenessScope: population
state:
  backend: redis
  redisUrl: redis://localhost:6379
  redisKey: genattr:counters:src-1
attributes:
  - name: login
    kind: unique
    expression: firstName + lastName
    removeSpaces: true
    normalize: true
    maxLength: 20
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, engine.ScopePopulation, cfg.UniquenessScope)
	assert.Equal(t, BackendRedis, cfg.State.Backend)
	assert.Equal(t, "redis://localhost:6379", cfg.State.RedisURL)

	require.Len(t, cfg.Attributes, 1)
	r := cfg.Attributes[0]
	assert.Equal(t, rule.KindUnique, r.Kind)
	assert.True(t, r.RemoveSpaces)
	assert.True(t, r.Normalize)
	assert.Equal(t, 20, r.MaxLength)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
