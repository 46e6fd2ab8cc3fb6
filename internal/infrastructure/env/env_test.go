package env_test

import (
	"testing"
	"time"

	"github.com/hilthontt/dealerdesk/internal/infrastructure/env"
	"github.com/stretchr/testify/assert"
)

func TestGetters(t *testing.T) {
	t.Setenv("DD_TEST_STRING", "value")
	t.Setenv("DD_TEST_INT", "12")
	t.Setenv("DD_TEST_BAD_INT", "twelve")
	t.Setenv("DD_TEST_BOOL", "true")
	t.Setenv("DD_TEST_DURATION", "45s")
	t.Setenv("DD_TEST_LIST", "a, b,,c ")

	assert.Equal(t, "value", env.GetString("DD_TEST_STRING", "x"))
	assert.Equal(t, "x", env.GetString("DD_TEST_MISSING", "x"))
	assert.Equal(t, 12, env.GetInt("DD_TEST_INT", 1))
	assert.Equal(t, 1, env.GetInt("DD_TEST_BAD_INT", 1))
	assert.True(t, env.GetBool("DD_TEST_BOOL", false))
	assert.Equal(t, 45*time.Second, env.GetDuration("DD_TEST_DURATION", time.Second))
	assert.Equal(t, time.Second, env.GetDuration("DD_TEST_MISSING", time.Second))
	assert.Equal(t, []string{"a", "b", "c"}, env.GetStrings("DD_TEST_LIST", nil))
}
