package buildinfo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestString(t *testing.T) {
	oldVersion, oldCommit := Version, CommitHash
	t.Cleanup(func() { Version, CommitHash = oldVersion, oldCommit })

	Version, CommitHash = "1.4.0", ""
	assert.Equal(t, "1.4.0", String())

	CommitHash = "a1b2c3d"
	assert.Equal(t, "1.4.0+a1b2c3d", String())
}
