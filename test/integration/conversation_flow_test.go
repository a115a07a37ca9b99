package integration

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"agent-chat-be/internal/dto"
	"agent-chat-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
)

func newUserWithToken(t *testing.T, env *testEnv, name string) string {
	t.Helper()
	suffix := time.Now().UnixNano()
	username := fmt.Sprintf("%s-%d", name, suffix)
	email := fmt.Sprintf("%s-%d@example.com", name, suffix)
	registerVerified(t, env, username, email, "Secret123!")

	status, bearer := login(t, env, username, "Secret123!")
	assert.Equal(t, 200, status)
	return bearer
}

func TestConversationFlow(t *testing.T) {
	env := newTestEnv(t)
	bearer := newUserWithToken(t, env, "alice")

	// Session
	agentType := "default"
	status, resp := env.request(t, "POST", "/sessions/", dto.CreateSessionRequest{AgentType: &agentType}, bearer)
	assert.Equal(t, 201, status)

	var session dto.SessionResponse
	decodeData(t, resp, &session)
	assert.NotZero(t, session.Id)
	assert.Equal(t, "default", *session.AgentType)

	t.Run("list sessions newest first", func(t *testing.T) {
		status, resp := env.request(t, "POST", "/sessions/", dto.CreateSessionRequest{}, bearer)
		assert.Equal(t, 201, status)
		var second dto.SessionResponse
		decodeData(t, resp, &second)

		status, resp = env.request(t, "GET", "/sessions/", nil, bearer)
		assert.Equal(t, 200, status)

		var sessions []dto.SessionResponse
		decodeData(t, resp, &sessions)
		assert.GreaterOrEqual(t, len(sessions), 2)
		assert.Equal(t, second.Id, sessions[0].Id)
	})

	// Thread
	title := "Test"
	status, resp = env.request(t, "POST", fmt.Sprintf("/threads/%d", session.Id), dto.CreateThreadRequest{Title: &title}, bearer)
	assert.Equal(t, 201, status)

	var thread dto.ThreadResponse
	decodeData(t, resp, &thread)
	assert.Equal(t, session.Id, thread.SessionId)
	assert.Equal(t, "Test", *thread.Title)

	// Message turn; the model stub answers "Hi".
	status, resp = env.request(t, "POST", fmt.Sprintf("/messages/%d", thread.Id), dto.SendMessageRequest{Content: "Hello"}, bearer)
	assert.Equal(t, 200, status)

	var turn dto.ChatResponse
	decodeData(t, resp, &turn)
	assert.Equal(t, "Hi", turn.Response)
	assert.Len(t, turn.History, 2)
	assert.Equal(t, "user", turn.History[0].Role)
	assert.Equal(t, "Hello", turn.History[0].Content)
	assert.Equal(t, "assistant", turn.History[1].Role)
	assert.Equal(t, "Hi", turn.History[1].Content)

	t.Run("history is chronological", func(t *testing.T) {
		status, resp := env.request(t, "POST", fmt.Sprintf("/messages/%d", thread.Id), dto.SendMessageRequest{Content: "How are you?"}, bearer)
		assert.Equal(t, 200, status)

		status, resp = env.request(t, "GET", fmt.Sprintf("/messages/%d", thread.Id), nil, bearer)
		assert.Equal(t, 200, status)

		var history []dto.MessageResponse
		decodeData(t, resp, &history)
		assert.Len(t, history, 4)
		for i := 1; i < len(history); i++ {
			assert.False(t, history[i].CreatedAt.Before(history[i-1].CreatedAt))
		}
	})

	t.Run("message edit and delete", func(t *testing.T) {
		status, resp := env.request(t, "GET", fmt.Sprintf("/messages/%d", thread.Id), nil, bearer)
		assert.Equal(t, 200, status)
		var history []dto.MessageResponse
		decodeData(t, resp, &history)
		target := history[0]

		status, resp = env.request(t, "PATCH", fmt.Sprintf("/messages/message/%d", target.Id),
			dto.UpdateMessageRequest{Content: "Hello, edited"}, bearer)
		assert.Equal(t, 200, status)

		var updated dto.MessageResponse
		decodeData(t, resp, &updated)
		assert.Equal(t, "Hello, edited", updated.Content)
		assert.Equal(t, target.Role, updated.Role)

		status, _ = env.request(t, "DELETE", fmt.Sprintf("/messages/message/%d", target.Id), nil, bearer)
		assert.Equal(t, 200, status)

		status, resp = env.request(t, "GET", fmt.Sprintf("/messages/%d", thread.Id), nil, bearer)
		assert.Equal(t, 200, status)
		decodeData(t, resp, &history)
		assert.Len(t, history, 3)
	})

	t.Run("ownership isolation", func(t *testing.T) {
		intruder := newUserWithToken(t, env, "bob")

		status, _ := env.request(t, "GET", fmt.Sprintf("/sessions/%d", session.Id), nil, intruder)
		assert.Equal(t, 403, status)

		status, _ = env.request(t, "GET", fmt.Sprintf("/threads/thread/%d", thread.Id), nil, intruder)
		assert.Equal(t, 403, status)

		status, _ = env.request(t, "POST", fmt.Sprintf("/messages/%d", thread.Id),
			dto.SendMessageRequest{Content: "let me in"}, intruder)
		assert.Equal(t, 403, status)

		status, _ = env.request(t, "DELETE", fmt.Sprintf("/sessions/%d", session.Id), nil, intruder)
		assert.Equal(t, 403, status)
	})

	t.Run("session delete cascades", func(t *testing.T) {
		status, _ := env.request(t, "DELETE", fmt.Sprintf("/sessions/%d", session.Id), nil, bearer)
		assert.Equal(t, 200, status)

		status, _ = env.request(t, "GET", fmt.Sprintf("/threads/thread/%d", thread.Id), nil, bearer)
		assert.Equal(t, 404, status)

		uow := env.uowFactory.NewUnitOfWork(context.Background())
		count, err := uow.MessageRepository().Count(context.Background(),
			specification.ByThreadID{ThreadID: thread.Id})
		assert.NoError(t, err)
		assert.Zero(t, count)
	})
}

// newUntitledThread creates a session and an untitled thread for the bearer.
func newUntitledThread(t *testing.T, env *testEnv, bearer string) dto.ThreadResponse {
	t.Helper()

	status, resp := env.request(t, "POST", "/sessions/", dto.CreateSessionRequest{}, bearer)
	assert.Equal(t, 201, status)
	var session dto.SessionResponse
	decodeData(t, resp, &session)

	status, resp = env.request(t, "POST", fmt.Sprintf("/threads/%d", session.Id), dto.CreateThreadRequest{}, bearer)
	assert.Equal(t, 201, status)
	var thread dto.ThreadResponse
	decodeData(t, resp, &thread)
	assert.Nil(t, thread.Title)

	return thread
}

// waitForTitle polls the thread until it gains a title or the timeout runs
// out, returning whatever the thread ended up with.
func waitForTitle(t *testing.T, env *testEnv, bearer string, threadId uint, timeout time.Duration) *string {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		status, resp := env.request(t, "GET", fmt.Sprintf("/threads/thread/%d", threadId), nil, bearer)
		assert.Equal(t, 200, status)

		var thread dto.ThreadResponse
		decodeData(t, resp, &thread)
		if thread.Title != nil {
			return thread.Title
		}
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}

func TestThreadTitleGeneration(t *testing.T) {
	env := newTestEnv(t)
	bearer := newUserWithToken(t, env, "erin")

	thread := newUntitledThread(t, env, bearer)

	// First message into an untitled thread kicks off background naming.
	status, _ := env.request(t, "POST", fmt.Sprintf("/messages/%d", thread.Id), dto.SendMessageRequest{Content: "Hello"}, bearer)
	assert.Equal(t, 200, status)

	title := waitForTitle(t, env, bearer, thread.Id, 3*time.Second)
	if assert.NotNil(t, title, "thread was never titled") {
		assert.Equal(t, "Test Title", *title)
	}
}

func TestThreadTitleGenerationFailureIsNonFatal(t *testing.T) {
	env := newTestEnv(t)
	env.llm.titleErr = errors.New("model unavailable")
	bearer := newUserWithToken(t, env, "frank")

	thread := newUntitledThread(t, env, bearer)

	// The turn itself must succeed even though naming will fail.
	status, resp := env.request(t, "POST", fmt.Sprintf("/messages/%d", thread.Id), dto.SendMessageRequest{Content: "Hello"}, bearer)
	assert.Equal(t, 200, status)

	var turn dto.ChatResponse
	decodeData(t, resp, &turn)
	assert.Equal(t, "Hi", turn.Response)

	// Give the background attempt time to run, then confirm the thread is
	// still untitled.
	time.Sleep(300 * time.Millisecond)

	status, resp = env.request(t, "GET", fmt.Sprintf("/threads/thread/%d", thread.Id), nil, bearer)
	assert.Equal(t, 200, status)

	var after dto.ThreadResponse
	decodeData(t, resp, &after)
	assert.Nil(t, after.Title)
}

func TestThreadTitleUpdate(t *testing.T) {
	env := newTestEnv(t)
	bearer := newUserWithToken(t, env, "carol")

	status, resp := env.request(t, "POST", "/sessions/", dto.CreateSessionRequest{}, bearer)
	assert.Equal(t, 201, status)
	var session dto.SessionResponse
	decodeData(t, resp, &session)

	status, resp = env.request(t, "POST", fmt.Sprintf("/threads/%d", session.Id), dto.CreateThreadRequest{}, bearer)
	assert.Equal(t, 201, status)
	var thread dto.ThreadResponse
	decodeData(t, resp, &thread)
	assert.Nil(t, thread.Title)

	title := "Renamed"
	status, resp = env.request(t, "PATCH", fmt.Sprintf("/threads/thread/%d", thread.Id),
		dto.UpdateThreadRequest{Title: &title}, bearer)
	assert.Equal(t, 200, status)

	var updated dto.ThreadResponse
	decodeData(t, resp, &updated)
	assert.Equal(t, "Renamed", *updated.Title)

	status, _ = env.request(t, "DELETE", fmt.Sprintf("/threads/thread/%d", thread.Id), nil, bearer)
	assert.Equal(t, 200, status)

	status, _ = env.request(t, "GET", fmt.Sprintf("/threads/thread/%d", thread.Id), nil, bearer)
	assert.Equal(t, 404, status)
}
