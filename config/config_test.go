// SPDX-License-Identifier: MIT
package config_test

import (
	"path/filepath"
	"testing"

	"github.com/katalvlaran/mathtoys/config"
	"github.com/katalvlaran/mathtoys/descent"
	"github.com/katalvlaran/mathtoys/quiver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad_Defaults matches the library defaults with no env and no flags.
func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{
		"MATHTOYS_STEP_SIZE", "MATHTOYS_STEPS_PER_FRAME", "MATHTOYS_THRESHOLD", "MATHTOYS_MERGE_TOL",
		"MATHTOYS_STORE", "MATHTOYS_DB_PATH", "MATHTOYS_REDIS_ADDR", "MATHTOYS_METRICS_ADDR",
	} {
		t.Setenv(k, "")
	}
	cfg, err := config.Load(nil)
	require.NoError(t, err)

	assert.Equal(t, descent.DefaultStepSize, cfg.StepSize)
	assert.Equal(t, quiver.DefaultStepsPerFrame, cfg.StepsPerFrame)
	assert.Equal(t, quiver.DefaultThreshold, cfg.Threshold)
	assert.Equal(t, quiver.DefaultMergeTolerance, cfg.MergeTol)
	assert.Equal(t, config.StoreNone, cfg.Store)
	assert.True(t, filepath.IsAbs(cfg.DBPath))
	assert.Equal(t, "127.0.0.1:6379", cfg.RedisAddr)
	assert.Empty(t, cfg.MetricsAddr)
}

// TestLoad_EnvThenFlags lets flags override the environment.
func TestLoad_EnvThenFlags(t *testing.T) {
	t.Setenv("MATHTOYS_STEP_SIZE", "0.05")
	t.Setenv("MATHTOYS_STORE", "redis")
	t.Setenv("MATHTOYS_REDIS_ADDR", "cache:6379")
	t.Setenv("MATHTOYS_METRICS_ADDR", ":9100")

	cfg, err := config.Load([]string{"-steps-per-frame", "7", "-store", "SQLite", "-db", "/tmp/x.db"})
	require.NoError(t, err)
	assert.Equal(t, 0.05, cfg.StepSize)
	assert.Equal(t, 7, cfg.StepsPerFrame)
	assert.Equal(t, config.StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/x.db", cfg.DBPath)
	assert.Equal(t, "cache:6379", cfg.RedisAddr)
	assert.Equal(t, ":9100", cfg.MetricsAddr)
}

// TestLoad_Validation rejects bad values from either source.
func TestLoad_Validation(t *testing.T) {
	tests := []struct {
		name        string
		args        []string
		envVars     map[string]string
		errorSubstr string
	}{
		{name: "zero step", args: []string{"-step-size", "0"}, errorSubstr: "step size must be positive"},
		{name: "no frames", args: []string{"-steps-per-frame", "0"}, errorSubstr: "steps per frame"},
		{name: "negative threshold", args: []string{"-threshold", "-1"}, errorSubstr: "threshold"},
		{name: "negative merge", args: []string{"-merge-tol", "-0.5"}, errorSubstr: "merge tolerance"},
		{name: "NaN step", args: []string{"-step-size", "NaN"}, errorSubstr: "step size must be positive"},
		{name: "NaN threshold", args: []string{"-threshold", "NaN"}, errorSubstr: "threshold must be non-negative"},
		{name: "NaN merge", envVars: map[string]string{"MATHTOYS_MERGE_TOL": "NaN"}, errorSubstr: "merge tolerance must be non-negative"},
		{name: "unknown store", args: []string{"-store", "etcd"}, errorSubstr: "unsupported store"},
		{name: "empty redis", args: []string{"-store", "redis", "-redis-addr", " "}, errorSubstr: "requires redis-addr"},
		{name: "bad env float", envVars: map[string]string{"MATHTOYS_STEP_SIZE": "fast"}, errorSubstr: "invalid MATHTOYS_STEP_SIZE"},
		{name: "bad env int", envVars: map[string]string{"MATHTOYS_STEPS_PER_FRAME": "1.5"}, errorSubstr: "invalid MATHTOYS_STEPS_PER_FRAME"},
		{name: "unknown flag", args: []string{"-wat"}, errorSubstr: "not defined"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}
			_, err := config.Load(tt.args)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorSubstr)
		})
	}
}

// TestConfig_QuiverOptions builds a quiver with the configured step size.
func TestConfig_QuiverOptions(t *testing.T) {
	cfg, err := config.Load([]string{"-step-size", "0.2"})
	require.NoError(t, err)
	q := quiver.New(cfg.QuiverOptions()...)
	assert.Equal(t, 0.2, q.Network().StepSize())
}
