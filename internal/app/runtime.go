package app

import "os"

// TestModeEnv, when set to 1, stops cmd/finance before it opens any connection.
const TestModeEnv = "FINANCE_TEST_MODE"

// InTestMode reports whether the application should skip runtime side effects.
func InTestMode() bool {
	return os.Getenv(TestModeEnv) == "1"
}
