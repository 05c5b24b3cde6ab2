// Package testing switches the process into test mode when imported by a test
// binary, so cmd/finance never dials PostgreSQL or Redis under go test.
package testing

import (
	"os"
	"sync"
	stdtesting "testing"
)

var once sync.Once

func ensureTestMode() {
	once.Do(func() {
		if os.Getenv("FINANCE_TEST_MODE") == "" {
			_ = os.Setenv("FINANCE_TEST_MODE", "1")
		}
	})
}

func init() {
	ensureTestMode()
}

// TestMain is available to packages that want to delegate their own TestMain.
func TestMain(m *stdtesting.M) {
	ensureTestMode()
	os.Exit(m.Run())
}
