package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/goliatone/go-stepgate/core"
	"gopkg.in/yaml.v3"
)

type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindBool
)

type envBinding struct {
	name string
	path []string
	kind valueKind
}

// legacyEnv holds the variable names the worker deployment used. The
// STEPGATE_ names win when both are set.
var legacyEnv = []envBinding{
	{name: "JWT_SECRET", path: []string{"auth", "jwt_secret"}},
	{name: "OPENAI_API_KEY", path: []string{"llm", "api_key"}},
	{name: "GITHUB_CLIENT_ID", path: []string{"auth", "github", "client_id"}},
	{name: "GITHUB_CLIENT_SECRET", path: []string{"auth", "github", "client_secret"}},
}

var stepgateEnv = []envBinding{
	{name: "STEPGATE_SERVICE_NAME", path: []string{"service_name"}},
	{name: "STEPGATE_HTTP_ADDR", path: []string{"http", "addr"}},
	{name: "STEPGATE_HTTP_READ_TIMEOUT", path: []string{"http", "read_timeout"}},
	{name: "STEPGATE_HTTP_WRITE_TIMEOUT", path: []string{"http", "write_timeout"}},
	{name: "STEPGATE_HTTP_MAX_BODY_BYTES", path: []string{"http", "max_body_bytes"}, kind: kindInt},
	{name: "STEPGATE_AUTH_JWT_SECRET", path: []string{"auth", "jwt_secret"}},
	{name: "STEPGATE_AUTH_TOKEN_TTL", path: []string{"auth", "token_ttl"}},
	{name: "STEPGATE_AUTH_GITHUB_CLIENT_ID", path: []string{"auth", "github", "client_id"}},
	{name: "STEPGATE_AUTH_GITHUB_CLIENT_SECRET", path: []string{"auth", "github", "client_secret"}},
	{name: "STEPGATE_AUTH_GITHUB_SCOPE", path: []string{"auth", "github", "scope"}},
	{name: "STEPGATE_LLM_API_KEY", path: []string{"llm", "api_key"}},
	{name: "STEPGATE_LLM_BASE_URL", path: []string{"llm", "base_url"}},
	{name: "STEPGATE_LLM_TIMEOUT", path: []string{"llm", "timeout"}},
	{name: "STEPGATE_STORAGE_DRIVER", path: []string{"storage", "driver"}},
	{name: "STEPGATE_STORAGE_DSN", path: []string{"storage", "dsn"}},
	{name: "STEPGATE_STORAGE_LIST_PAGE_SIZE", path: []string{"storage", "list_page_size"}, kind: kindInt},
	{name: "STEPGATE_STORAGE_CACHE_ENABLED", path: []string{"storage", "cache", "enabled"}, kind: kindBool},
	{name: "STEPGATE_STORAGE_CACHE_TTL", path: []string{"storage", "cache", "ttl"}},
}

type lookupEnvFunc func(name string) (string, bool)

// fileConfigLoader reads an optional YAML file and overlays environment
// variables on top of it.
type fileConfigLoader struct {
	path      string
	lookupEnv lookupEnvFunc
}

func (l fileConfigLoader) LoadRaw(context.Context) (map[string]any, error) {
	raw := map[string]any{}
	if strings.TrimSpace(l.path) != "" {
		data, err := os.ReadFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", l.path, err)
		}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", l.path, err)
		}
		if raw == nil {
			raw = map[string]any{}
		}
	}

	lookup := l.lookupEnv
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, bindings := range [][]envBinding{legacyEnv, stepgateEnv} {
		for _, binding := range bindings {
			value, ok := lookup(binding.name)
			if !ok || strings.TrimSpace(value) == "" {
				continue
			}
			parsed, err := binding.parse(value)
			if err != nil {
				return nil, err
			}
			setPath(raw, binding.path, parsed)
		}
	}
	return raw, nil
}

func (b envBinding) parse(value string) (any, error) {
	value = strings.TrimSpace(value)
	switch b.kind {
	case kindInt:
		parsed, err := strconv.ParseInt(value, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("config: %s must be an integer: %w", b.name, err)
		}
		return parsed, nil
	case kindBool:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("config: %s must be a boolean: %w", b.name, err)
		}
		return parsed, nil
	}
	return value, nil
}

func setPath(raw map[string]any, path []string, value any) {
	node := raw
	for _, key := range path[:len(path)-1] {
		child, ok := node[key].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[key] = child
		}
		node = child
	}
	node[path[len(path)-1]] = value
}

// loadConfig returns the layered configuration without validating it.
func loadConfig(ctx context.Context, opts *rootOptions) (core.Config, error) {
	provider := core.NewCfgxConfigProvider(fileConfigLoader{path: opts.configPath, lookupEnv: opts.lookupEnv})
	return provider.Load(ctx, core.DefaultConfig())
}

// resolveConfig runs the full defaults < file/env resolution, validation
// included.
func resolveConfig(ctx context.Context, opts *rootOptions) (core.Config, error) {
	loaded, err := loadConfig(ctx, opts)
	if err != nil {
		return core.Config{}, err
	}
	return core.GoOptionsResolver{}.Resolve(core.DefaultConfig(), loaded, core.Config{})
}
