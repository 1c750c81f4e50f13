package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func TestFingerprint(t *testing.T) {
	a := Fingerprint("5.15.0-test", "host1")
	assert.Equal(t, "f1364f045f6ead19fbf9b27f57cf5de8", a)
	assert.NotEqual(t, a, Fingerprint("5.15.0-test", "host2"))
}

func TestResolveOverride(t *testing.T) {
	assert.Equal(t, "H1", Resolve("H1", zaptest.NewLogger(t)))
}

func TestResolveStable(t *testing.T) {
	logger := zaptest.NewLogger(t)
	id := Resolve("", logger)
	assert.NotEmpty(t, id)

	if _, err := ClientID(); err == nil {
		assert.Equal(t, id, Resolve("", logger))
	}
}
