package debug

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogDisabledIsSilent(t *testing.T) {
	var buf bytes.Buffer
	Enable(&buf)
	Disable()
	Log("layout", "nothing %d", 1)
	assert.Equal(t, "", buf.String())
	assert.False(t, Enabled())
}

func TestLogWritesCategory(t *testing.T) {
	var buf bytes.Buffer
	Enable(&buf)
	defer Disable()

	Log("refresh", "phrase %d", 3)

	assert := assert.New(t)
	assert.Contains(buf.String(), "refresh")
	assert.Contains(buf.String(), "phrase 3")
	assert.True(strings.HasSuffix(buf.String(), "\n"))
}

func TestLogEvery(t *testing.T) {
	var buf bytes.Buffer
	Enable(&buf)
	defer Disable()

	for i := 0; i < 6; i++ {
		LogEvery(3, "layout", "tick")
	}
	assert.Equal(t, 2, strings.Count(buf.String(), "tick"))
}

func TestEnableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "debug.log")
	assert.NoError(t, EnableFile(path))
	Log("store", "saved")
	Disable()

	data, err := os.ReadFile(path)
	assert.NoError(t, err)
	assert.Contains(t, string(data), "saved")
}
