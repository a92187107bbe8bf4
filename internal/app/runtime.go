package app

import (
	"os"
	"sync"
)

// TestModeEnv keeps both binaries from dialling Postgres, Redis or the backend
// when set to "1".
const TestModeEnv = "ODYSSEY_TEST_MODE"

var testMode = sync.OnceValue(func() bool {
	return os.Getenv(TestModeEnv) == "1"
})

// InTestMode reports whether the process runs under tests. The environment is
// read on first use.
func InTestMode() bool {
	return testMode()
}
