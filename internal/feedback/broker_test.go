package feedback

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phrazzld/triage-api/internal/domain"
	"github.com/phrazzld/triage-api/internal/ws"
)

type sentMessage struct {
	userID  string
	message any
}

// fakeSender records dispatched messages. The optional onSend hook runs
// synchronously on delivery, which lets tests act as an operator that
// answers the instant a prompt arrives.
type fakeSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	onSend func(userID string, message any)
}

func (f *fakeSender) Send(_ context.Context, userID string, message any) int {
	f.mu.Lock()
	f.sent = append(f.sent, sentMessage{userID: userID, message: message})
	hook := f.onSend
	f.mu.Unlock()
	if hook != nil {
		hook(userID, message)
	}
	return 1
}

func (f *fakeSender) messages() []sentMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]sentMessage, len(f.sent))
	copy(out, f.sent)
	return out
}

func (f *fakeSender) messagesFor(userID string) []any {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []any
	for _, m := range f.sent {
		if m.userID == userID {
			out = append(out, m.message)
		}
	}
	return out
}

func TestRequestTimesOutWithAffirmativeDefault(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	b := NewBroker(sender, nil)

	start := time.Now()
	approved, answer, err := b.Request(context.Background(),
		"user-a", "Is this decision correct?", "respond", "summary text", 30*time.Millisecond)

	require.NoError(t, err)
	assert.True(t, approved, "timeout must resolve to the affirmative default")
	assert.Equal(t, AnswerCorrect, answer)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.False(t, b.Waiting("user-a"), "state must reset to idle after timeout")

	msgs := sender.messages()
	require.Len(t, msgs, 2)
	assert.IsType(t, ws.FeedbackRequired{}, msgs[0].message)
	assert.IsType(t, ws.FeedbackTimeout{}, msgs[1].message)
}

func TestSubmitWithNothingPendingIsRejected(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	b := NewBroker(sender, nil)

	accepted := b.Submit(context.Background(), "user-a", true)

	assert.False(t, accepted)
	assert.Empty(t, sender.messages(), "a rejected answer must not produce an acknowledgment")
	assert.False(t, b.Waiting("user-a"))
}

func TestRequestPairsWithSubmittedAnswer(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	b := NewBroker(sender, nil)
	ctx := context.Background()

	var (
		approved bool
		answer   string
		err      error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		approved, answer, err = b.Request(ctx,
			"user-a", "Is this category correct?", "decline", nil, 5*time.Second)
	}()

	require.Eventually(t, func() bool { return b.Waiting("user-a") },
		time.Second, 2*time.Millisecond)

	assert.True(t, b.Submit(ctx, "user-a", false))
	<-done

	require.NoError(t, err)
	assert.False(t, approved, "the operator's override must reach the waiter")
	assert.Equal(t, AnswerWrong, answer)
	assert.False(t, b.Waiting("user-a"))

	var sawAck bool
	for _, m := range sender.messagesFor("user-a") {
		if _, ok := m.(ws.FeedbackReceived); ok {
			sawAck = true
		}
	}
	assert.True(t, sawAck, "a delivered answer must be acknowledged")
}

func TestAnswerImmediatelyAfterDispatchIsNeverLost(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	b := NewBroker(sender, nil)
	ctx := context.Background()

	// The operator answers synchronously, inside prompt delivery, before
	// Request has a chance to start blocking. The waiting state is
	// established before dispatch, so this answer must still pair.
	sender.onSend = func(userID string, message any) {
		if _, ok := message.(ws.FeedbackRequired); ok {
			assert.True(t, b.Submit(ctx, userID, false))
		}
	}

	approved, answer, err := b.Request(ctx,
		"user-a", "Is this decision correct?", "respond", nil, 5*time.Second)

	require.NoError(t, err)
	assert.False(t, approved)
	assert.Equal(t, AnswerWrong, answer)
}

func TestSecondRequestWhileWaitingFails(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	b := NewBroker(sender, nil)
	ctx := context.Background()

	var (
		firstApproved bool
		firstErr      error
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		firstApproved, _, firstErr = b.Request(ctx,
			"user-a", "first question", "respond", nil, 5*time.Second)
	}()

	require.Eventually(t, func() bool { return b.Waiting("user-a") },
		time.Second, 2*time.Millisecond)

	_, _, err := b.Request(ctx, "user-a", "second question", "decline", nil, time.Second)
	assert.ErrorIs(t, err, ErrAlreadyWaiting)

	// The original request is still intact and resolvable.
	require.True(t, b.Submit(ctx, "user-a", true))
	<-done
	require.NoError(t, firstErr)
	assert.True(t, firstApproved)
}

func TestDuplicateAnswerDeliversOnce(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	b := NewBroker(sender, nil)
	ctx := context.Background()

	var approved bool
	done := make(chan struct{})
	go func() {
		defer close(done)
		approved, _, _ = b.Request(ctx,
			"user-a", "question", "respond", nil, 5*time.Second)
	}()

	require.Eventually(t, func() bool { return b.Waiting("user-a") },
		time.Second, 2*time.Millisecond)

	assert.True(t, b.Submit(ctx, "user-a", true))
	assert.False(t, b.Submit(ctx, "user-a", false),
		"a second answer for the same question must be rejected")

	<-done
	assert.True(t, approved, "only the first answer counts")
}

func TestSequentialCyclesAreIndependent(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	b := NewBroker(sender, nil)
	ctx := context.Background()

	runCycle := func(prompt, decision string, answer bool) (bool, string) {
		t.Helper()
		var (
			approved bool
			raw      string
		)
		done := make(chan struct{})
		go func() {
			defer close(done)
			var err error
			approved, raw, err = b.Request(ctx, "user-a", prompt, decision, nil, 5*time.Second)
			assert.NoError(t, err)
		}()

		require.Eventually(t, func() bool { return b.Waiting("user-a") },
			time.Second, 2*time.Millisecond)

		snap, ok := b.Pending("user-a")
		require.True(t, ok)
		assert.Equal(t, prompt, snap.Prompt, "the pending slot must hold the current cycle's question")

		require.True(t, b.Submit(ctx, "user-a", answer))
		<-done
		return approved, raw
	}

	approved, raw := runCycle("first question", "respond", true)
	assert.True(t, approved)
	assert.Equal(t, AnswerCorrect, raw)

	// The second cycle starts immediately after the first resolves; its
	// answer must pair with its own question.
	approved, raw = runCycle("second question", "decline", false)
	assert.False(t, approved)
	assert.Equal(t, AnswerWrong, raw)

	// No residue: the user is idle again and a stray answer is rejected.
	assert.False(t, b.Waiting("user-a"))
	assert.False(t, b.Submit(ctx, "user-a", true),
		"an answer between cycles must find nothing to pair with")
}

func TestUsersWaitIndependently(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	b := NewBroker(sender, nil)
	ctx := context.Background()

	type result struct {
		userID   string
		approved bool
	}
	results := make(chan result, 2)
	for _, userID := range []string{"user-a", "user-b"} {
		go func() {
			approved, _, err := b.Request(ctx, userID, "question", "respond", nil, 5*time.Second)
			assert.NoError(t, err)
			results <- result{userID: userID, approved: approved}
		}()
	}

	require.Eventually(t, func() bool {
		return b.Waiting("user-a") && b.Waiting("user-b")
	}, time.Second, 2*time.Millisecond)

	require.True(t, b.Submit(ctx, "user-a", true))
	require.True(t, b.Submit(ctx, "user-b", false))

	got := map[string]bool{}
	for i := 0; i < 2; i++ {
		r := <-results
		got[r.userID] = r.approved
	}
	assert.Equal(t, map[string]bool{"user-a": true, "user-b": false}, got,
		"each answer must reach its own user's waiter")
}

func TestPendingSnapshotDuringWait(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	b := NewBroker(sender, nil)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, _ = b.Request(ctx,
			"user-a", "Is this decision correct?", "respond", "Email summary here", 5*time.Second)
	}()

	require.Eventually(t, func() bool { return b.Waiting("user-a") },
		time.Second, 2*time.Millisecond)

	snap, ok := b.Pending("user-a")
	require.True(t, ok)
	assert.Equal(t, "Is this decision correct?", snap.Prompt)
	assert.Equal(t, "respond", snap.Decision)
	assert.Equal(t, "Email summary here", snap.Context)

	require.True(t, b.Submit(ctx, "user-a", true))
	<-done

	_, ok = b.Pending("user-a")
	assert.False(t, ok, "no snapshot once the request resolves")
}

func TestRequestRejectsEmptyUserID(t *testing.T) {
	t.Parallel()

	b := NewBroker(&fakeSender{}, nil)

	_, _, err := b.Request(context.Background(), "", "question", "respond", nil, time.Second)
	assert.ErrorIs(t, err, domain.ErrEmptyUserID)
}

func TestRequestObservesContextCancellation(t *testing.T) {
	t.Parallel()

	sender := &fakeSender{}
	b := NewBroker(sender, nil)
	ctx, cancel := context.WithCancel(context.Background())

	var err error
	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _, err = b.Request(ctx, "user-a", "question", "respond", nil, 5*time.Second)
	}()

	require.Eventually(t, func() bool { return b.Waiting("user-a") },
		time.Second, 2*time.Millisecond)

	cancel()
	<-done

	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, b.Waiting("user-a"), "cancellation must reset the slot")
}

func TestDefaultPrompt(t *testing.T) {
	t.Parallel()

	tests := []struct {
		decision string
		want     string
	}{
		{"respond", "I think we should respond."},
		{"no response needed", "This email does not need a response."},
		{"decline", "I think we should politely decline."},
		{"move forward", "I think we should draft a response."},
		{"schedule meeting", "I think we should setup a meeting."},
		{"yes", "This is a meeting request that needs scheduling."},
		{"no", "This is not just a meeting request and needs a full response."},
		{"something else", "The AI has decided: something else"},
	}

	for _, tc := range tests {
		t.Run(tc.decision, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, defaultPrompt(tc.decision))
		})
	}
}

func TestFormatContext(t *testing.T) {
	t.Parallel()

	assert.Nil(t, formatContext(nil))
	assert.Equal(t, "plain text", formatContext("plain text"))
	assert.Equal(t, "a: 1\nb: 2",
		formatContext(map[string]string{"b": "2", "a": "1"}),
		"map context renders as sorted key: value lines")
	assert.Equal(t, "count: 3", formatContext(map[string]any{"count": 3}))
	assert.Equal(t, "42", formatContext(42))
}
