package authflow

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/britrip/hotelier/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func fastTimings() Timings {
	return Timings{SendCode: 5 * time.Millisecond, Verify: 5 * time.Millisecond, Redirect: 5 * time.Millisecond}
}

func newFlow(t *testing.T, timings Timings, onSuccess func()) *Flow {
	t.Helper()
	f := New(context.Background(), timings, onSuccess, WithHashCost(bcrypt.MinCost))
	t.Cleanup(f.Close)
	return f
}

func waitForStage(t *testing.T, f *Flow, stage Stage) {
	t.Helper()
	require.Eventually(t, func() bool { return f.State().Stage == stage }, time.Second, time.Millisecond)
}

func TestFlow_HappyPath(t *testing.T) {
	var calls atomic.Int32
	f := newFlow(t, fastTimings(), func() { calls.Add(1) })

	require.NoError(t, f.Submit("owner@britrip.com", "s3cret"))
	assert.True(t, f.State().Loading)
	waitForStage(t, f, StageOTP)
	assert.False(t, f.State().Loading)
	assert.True(t, f.MatchesPassword("s3cret"))
	assert.False(t, f.MatchesPassword("wrong"))

	for i := 0; i < CodeLength-1; i++ {
		verifying, err := f.EnterDigit(i, "4")
		require.NoError(t, err)
		assert.False(t, verifying)
	}
	verifying, err := f.EnterDigit(CodeLength-1, "2")
	require.NoError(t, err)
	assert.True(t, verifying)

	waitForStage(t, f, StageSuccess)
	require.Eventually(t, func() bool { return calls.Load() == 1 }, time.Second, time.Millisecond)

	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(1), calls.Load(), "success fires exactly once")
}

func TestFlow_DoubleSubmitIsRejected(t *testing.T) {
	f := newFlow(t, Timings{SendCode: time.Hour}, nil)

	require.NoError(t, f.Submit("owner@britrip.com", "pw"))
	err := f.Submit("owner@britrip.com", "pw")
	assert.ErrorIs(t, err, shared.ErrOperationPending)
}

func TestFlow_SubmitValidation(t *testing.T) {
	f := newFlow(t, fastTimings(), nil)

	assert.ErrorIs(t, f.Submit("not-an-email", "pw"), shared.ErrInvalidInput)
	assert.ErrorIs(t, f.Submit("owner@britrip.com", ""), shared.ErrInvalidInput)
	assert.Equal(t, StageForm, f.State().Stage)
	assert.False(t, f.State().Loading)
}

func TestFlow_EnterDigit(t *testing.T) {
	f := newFlow(t, fastTimings(), nil)

	_, err := f.EnterDigit(0, "1")
	assert.ErrorIs(t, err, shared.ErrInvalidState, "no code sent yet")

	require.NoError(t, f.Submit("owner@britrip.com", "pw"))
	waitForStage(t, f, StageOTP)

	tests := []struct {
		name  string
		index int
		value string
		code  string
	}{
		{"letter", 0, "a", "INVALID_CODE_DIGIT"},
		{"two digits", 0, "12", "INVALID_CODE_DIGIT"},
		{"negative position", -1, "1", "INVALID_CODE_POSITION"},
		{"past the end", CodeLength, "1", "INVALID_CODE_POSITION"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.EnterDigit(tt.index, tt.value)
			assert.Equal(t, tt.code, shared.CodeOf(err))
		})
	}
	assert.Equal(t, []string{"", "", "", "", "", ""}, f.State().Code)

	_, err = f.EnterDigit(2, "7")
	require.NoError(t, err)
	_, err = f.EnterDigit(2, "")
	require.NoError(t, err)
	assert.Equal(t, "", f.State().Code[2])
}

func TestFlow_EnterCode(t *testing.T) {
	done := make(chan struct{})
	f := newFlow(t, fastTimings(), func() { close(done) })

	require.NoError(t, f.Submit("owner@britrip.com", "pw"))
	waitForStage(t, f, StageOTP)
	assert.Equal(t, "INVALID_CODE_DIGIT", shared.CodeOf(f.EnterCode("123")))
	require.NoError(t, f.EnterCode("123456"))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("onSuccess was not called")
	}
}

func TestFlow_CloseDiscardsTimers(t *testing.T) {
	var calls atomic.Int32
	f := New(context.Background(), fastTimings(), func() { calls.Add(1) }, WithHashCost(bcrypt.MinCost))

	require.NoError(t, f.Submit("owner@britrip.com", "pw"))
	f.Close()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, StageForm, f.State().Stage)
	assert.Zero(t, calls.Load())
	assert.ErrorIs(t, f.Submit("owner@britrip.com", "pw"), shared.ErrSessionClosed)
}

func TestFlow_ParentContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	f := New(ctx, fastTimings(), nil, WithHashCost(bcrypt.MinCost))
	defer f.Close()

	require.NoError(t, f.Submit("owner@britrip.com", "pw"))
	cancel()

	time.Sleep(30 * time.Millisecond)
	assert.Equal(t, StageForm, f.State().Stage)
}

func TestFlow_ModeAndReset(t *testing.T) {
	f := newFlow(t, fastTimings(), nil)

	require.NoError(t, f.SetMode(ModeSignup))
	assert.Equal(t, ModeSignup, f.State().Mode)
	assert.Equal(t, "INVALID_AUTH_MODE", shared.CodeOf(f.SetMode("sso")))

	require.NoError(t, f.Submit("owner@britrip.com", "pw"))
	waitForStage(t, f, StageOTP)
	assert.ErrorIs(t, f.SetMode(ModeLogin), shared.ErrInvalidState)

	f.Reset()
	s := f.State()
	assert.Equal(t, StageForm, s.Stage)
	assert.Empty(t, s.Email)
	assert.False(t, f.MatchesPassword("pw"))
}
