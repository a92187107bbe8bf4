// Package guard forces test mode for packages whose tests build the full
// router, so runtime side effects such as request logging stay off.
package guard

import "os"

func init() {
	if os.Getenv("ODYSSEY_TEST_MODE") == "" {
		_ = os.Setenv("ODYSSEY_TEST_MODE", "1")
	}
}
