package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concatjs/concatjs/internal/logger"
)

func TestApplyEnv(t *testing.T) {
	options := DefaultOptions()
	err := ApplyEnv(&options, map[string]string{
		EnvModuleRoot:   "src",
		EnvRequireFunc:  "my.require",
		EnvLogLevel:     "warning",
		EnvLogOverride:  "load-error=warning, namespace-collision=silent",
		EnvColor:        "false",
		EnvErrorLimit:   "0",
		EnvParallelism:  "4",
		EnvCacheSize:    "16",
		EnvCharsetASCII: "true",
		"CONCATJS_OTHER": "ignored",
	})
	require.NoError(t, err)

	assert.Equal(t, "src", options.ModuleRoot)
	assert.Equal(t, "goog.provide", options.ProvideFunc)
	assert.Equal(t, "my.require", options.RequireFunc)
	assert.Equal(t, logger.LevelWarning, options.Log.LogLevel)
	assert.Equal(t, logger.ColorNever, options.Log.Color)
	assert.Equal(t, 0, options.Log.ErrorLimit)
	assert.Equal(t, 4, options.Parallelism)
	assert.Equal(t, 4, options.EffectiveParallelism())
	assert.Equal(t, 16, options.FileCacheSize)
	assert.True(t, options.ASCIIOnly)
	assert.Equal(t, map[logger.MsgID]logger.LogLevel{
		logger.MsgID_Modules_LoadError:          logger.LevelWarning,
		logger.MsgID_Modules_NamespaceCollision: logger.LevelSilent,
	}, options.Log.Overrides)
}

func TestApplyEnvErrors(t *testing.T) {
	for _, env := range []map[string]string{
		{EnvLogLevel: "loud"},
		{EnvLogOverride: "load-error"},
		{EnvLogOverride: "load-error=loud"},
		{EnvColor: "maybe"},
		{EnvErrorLimit: "-1"},
		{EnvParallelism: "many"},
	} {
		options := DefaultOptions()
		assert.Error(t, ApplyEnv(&options, env), "%v", env)
	}
}

func TestLoadEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CONCATJS_ROOT=lib\nCONCATJS_PROVIDE_FUNC=a.provide\nOTHER=1\n"), 0644))
	t.Setenv(EnvProvideFunc, "b.provide")

	env, err := LoadEnv(envFile, filepath.Join(dir, "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "lib", env[EnvModuleRoot])
	assert.Equal(t, "b.provide", env[EnvProvideFunc])
	assert.NotContains(t, env, "OTHER")
}
