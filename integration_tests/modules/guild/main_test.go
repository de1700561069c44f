package guildintegrationtests

import (
	"os"
	"testing"

	"github.com/Black-And-White-Club/guild-bot/integration_tests/testutils"
)

var testEnv *testutils.TestEnvironment

func TestMain(m *testing.M) {
	os.Exit(testutils.Main(m, &testEnv))
}
