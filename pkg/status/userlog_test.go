package status

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"gitlab.com/tozd/go/errors"
)

// userLoggerEnv builds a UserLogger whose zerolog mirror writes to buf.
func userLoggerEnv(t *testing.T) (*UserLogger, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := zerolog.New(&buf)
	ctx := logger.WithContext(context.Background())
	return NewUserLogger(ctx), &buf
}

func TestUserLoggerRunEvent(t *testing.T) {
	ul, buf := userLoggerEnv(t)
	ul.LogRunEvent("starting batch run")
	assert.Contains(t, buf.String(), "starting batch run")
	assert.Contains(t, buf.String(), `"level":"info"`)
}

func TestUserLoggerValidation(t *testing.T) {
	ul, buf := userLoggerEnv(t)

	ul.LogValidation(true, "tool found", nil)
	assert.Contains(t, buf.String(), "tool found")
	assert.Contains(t, buf.String(), `"level":"info"`)

	buf.Reset()
	ul.LogValidation(false, "tool missing", errors.New("not found"))
	assert.Contains(t, buf.String(), "tool missing")
	assert.Contains(t, buf.String(), `"level":"error"`)

	buf.Reset()
	ul.LogValidation(false, "pattern matched nothing", nil)
	assert.Contains(t, buf.String(), `"level":"warn"`)
}
