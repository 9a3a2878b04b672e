package api

import (
	"github.com/kelseyhightower/envconfig"
)

// testConfig tunes the API tests from the environment, the same way the
// test-data generators do.
type testConfig struct {
	// API_TEST_DEBUG_BODIES dumps every response body for failing-test triage
	DebugBodies bool `envconfig:"API_TEST_DEBUG_BODIES" default:"false"`
}

func loadTestConfig() (testConfig, error) {
	var cfg testConfig
	err := envconfig.Process("", &cfg)
	return cfg, err
}
