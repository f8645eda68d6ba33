// Package guard forces test mode before any package init can start
// runtime side effects. Import it for side effects in integration-style
// tests.
package guard

import (
	"os"
	"sync"
)

var once sync.Once

func init() {
	once.Do(func() {
		if os.Getenv("PRAXIS_TEST_MODE") == "" {
			_ = os.Setenv("PRAXIS_TEST_MODE", "1")
		}
	})
}
