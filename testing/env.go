// Package testing prepares the process environment for test binaries. Importing
// it for side effects turns on test mode and fills in the secrets and URLs
// LoadConfig insists on, without overriding values the caller already set.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

const testModeKey = "ODYSSEY_TEST_MODE"

// Env lists the fallback values applied when a variable is unset.
var Env = map[string]string{
	"SESSION_SECRET": "test-session-secret",
	"CSRF_SECRET":    "test-csrf-secret",
	"API_BASE_URL":   "http://127.0.0.1:0",
	"GOTENBERG_URL":  "http://127.0.0.1:0",
	"APP_ENV":        "test",
}

var applyOnce = sync.OnceFunc(func() {
	_ = os.Setenv(testModeKey, "1")
	for key, value := range Env {
		if _, set := os.LookupEnv(key); !set {
			_ = os.Setenv(key, value)
		}
	}
})

func init() { applyOnce() }

// TestMain can be delegated to from a package's own TestMain.
func TestMain(m *stdtesting.M) {
	applyOnce()
	os.Exit(m.Run())
}
