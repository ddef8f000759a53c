package except

import (
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ivanchev/except/internal/panicerr"
)

func Test_isolate(t *testing.T) {
	reg := New()
	defer func() { require.NoError(t, reg.Close()) }()

	for _, tc := range []struct {
		name   string
		f      func()
		errStr string
		check  func(t *testing.T, err error)
	}{
		{
			name: "normal",
			f:    func() {},
		},
		{
			name: "caught inside",
			f: func() {
				reg.Try(func() {
					reg.Throw(CodeOther, nil, "handled")
				}, func(e *Exception) {
					reg.Free(e)
				})
			},
		},
		{
			name:   "uncaught throw",
			f:      func() { reg.Throw(42, nil, "loose end") },
			errStr: "uncaught exception",
			check: func(t *testing.T, err error) {
				var ue UncaughtError
				require.True(t, errors.As(err, &ue))
				assert.Equal(t, Code(42), ue.Code)
				assert.Equal(t, "loose end", ue.Message)
				assert.Equal(t, "uncaught throw", ue.Name)
			},
		},
		{
			name: "uncaught throw with cause",
			f: func() {
				cause := reg.Alloc(1, nil, "root")
				reg.Throw(2, cause, "wrapper")
			},
			errStr: "caused by",
			check: func(t *testing.T, err error) {
				var ue UncaughtError
				require.True(t, errors.As(err, &ue))
				assert.Contains(t, ue.Message, "root")
				assert.Contains(t, ue.Message, "wrapper")
			},
		},
		{
			name:   "stray panic",
			f:      func() { panic("hello") },
			errStr: "paniced: hello",
			check: func(t *testing.T, err error) {
				assert.True(t, panicerr.IsPanic(err))
				assert.NotEmpty(t, panicerr.PanicStack(err))
			},
		},
		{
			name:   "goexit",
			f:      func() { runtime.Goexit() },
			errStr: "runtime.Goexit",
			check: func(t *testing.T, err error) {
				assert.True(t, panicerr.IsExit(err))
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			err := reg.Isolate(tc.name, tc.f)
			if tc.errStr == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errStr)
			if tc.check != nil {
				tc.check(t, err)
			}
		})
	}
}
