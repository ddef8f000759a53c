package except

import (
	"bytes"
	"errors"
	"testing"

	multierror "github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_close_clean(t *testing.T) {
	reg := New()
	reg.Try(func() {
		reg.Throw(CodeOther, nil, "handled")
	}, func(e *Exception) {
		reg.Free(e)
	})
	require.NoError(t, reg.Close(), "nothing held, nothing leaked")
}

func Test_close_reports_leaks(t *testing.T) {
	var buf bytes.Buffer
	reg := New(WithLogger(zerolog.New(&buf)))

	reg.Alloc(CodeOther, nil, "never freed")
	reg.reserveEnv() // a protected block that never exits

	err := reg.Close()
	require.Error(t, err, "expected leak diagnostics")

	var merr *multierror.Error
	require.True(t, errors.As(err, &merr))
	require.Len(t, merr.Errors, 2)

	pools := map[string]string{}
	for _, e := range merr.Errors {
		var le LeakError
		require.True(t, errors.As(e, &le), "expected a LeakError, got %v", e)
		pools[le.Pool] = le.Detail
	}
	assert.Contains(t, pools, "environment")
	assert.Contains(t, pools, "exception")
	assert.Contains(t, pools["exception"], "never freed")
	assert.Contains(t, buf.String(), "never freed")

	require.NoError(t, reg.Close(), "close is idempotent; leaks report once")
}

func Test_options(t *testing.T) {
	reg := New(
		WithEnvCapacity(4),
		WithRecordCapacity(7),
		WithMessageLimit(32),
		nil, // tolerated
	)
	assert.Len(t, reg.envs, 4)
	assert.Len(t, reg.recs, 7)
	for i := range reg.recs {
		assert.Len(t, reg.recs[i].msg, 32)
	}
	require.NoError(t, reg.Close())

	// non-positive values fall back to the defaults
	reg = New(WithEnvCapacity(0), WithRecordCapacity(-1), WithMessageLimit(0))
	assert.Len(t, reg.envs, DefaultEnvCapacity)
	assert.Len(t, reg.recs, DefaultRecordCapacity)
	require.NoError(t, reg.Close())
}
