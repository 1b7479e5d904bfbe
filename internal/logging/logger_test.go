package logging

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"
)

type failingWriter struct{ err error }

func (f failingWriter) Write(p []byte) (int, error) {
	return 0, f.err
}

func TestCombinedWriter_Write(t *testing.T) {
	sb1 := &strings.Builder{}
	sb2 := &strings.Builder{}
	cw := NewCombinedWriter(sb1, sb2)

	n, err := cw.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 10, n)
	assert.Equal(t, "hello", sb1.String())
	assert.Equal(t, "hello", sb2.String())
}

func TestCombinedWriter_CollectsErrors(t *testing.T) {
	e1, e2 := errors.New("disk full"), errors.New("closed")
	sb := &strings.Builder{}
	cw := NewCombinedWriter(failingWriter{e1}, sb, failingWriter{e2})

	n, err := cw.Write([]byte("abc"))
	assert.Equal(t, 3, n)
	assert.Equal(t, "abc", sb.String())
	assert.ElementsMatch(t, []error{e1, e2}, multierr.Errors(err))
}

func TestGetLevel(t *testing.T) {
	assert.Equal(t, logrus.DebugLevel, GetLevel("DEBUG"))
	assert.Equal(t, logrus.WarnLevel, GetLevel("warn"))
	assert.Equal(t, logrus.TraceLevel, GetLevel("trace"))
	assert.Equal(t, logrus.InfoLevel, GetLevel("nonsense"))
}

func TestSetup_File(t *testing.T) {
	defer logrus.SetOutput(logrus.StandardLogger().Out)
	defer logrus.SetLevel(logrus.GetLevel())

	file := filepath.Join(t.TempDir(), "api")
	Setup(LoggerSetupParams{LogFileName: file, LogLevel: "error"})
	assert.Equal(t, logrus.ErrorLevel, logrus.GetLevel())
	_, isCombined := logrus.StandardLogger().Out.(*CombinedWriter)
	assert.False(t, isCombined)

	Setup(LoggerSetupParams{LogFileName: file, LogToStdout: true, LogLevel: "info"})
	_, isCombined = logrus.StandardLogger().Out.(*CombinedWriter)
	assert.True(t, isCombined)
}
