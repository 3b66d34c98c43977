package app

import (
	"os"
	"sync"
	"sync/atomic"
)

// TestModeEnv disables runtime side effects (servers, connections) when set to "1".
const TestModeEnv = "JUMPH_TEST_MODE"

var (
	testModeFlag atomic.Bool
	testModeOnce sync.Once
)

func detectTestMode() {
	testModeFlag.Store(os.Getenv(TestModeEnv) == "1")
}

// InTestMode reports whether the entrypoints should skip startup.
func InTestMode() bool {
	testModeOnce.Do(detectTestMode)
	return testModeFlag.Load()
}
