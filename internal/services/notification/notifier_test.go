package notification

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onegreenvn/ads-proposal-backend/internal/config"
)

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) PublishMessage(ctx context.Context, queueName string, message map[string]interface{}) error {
	args := m.Called(queueName, message["event"])
	return args.Error(0)
}

func TestRabbitMQNotifierPublishesEvents(t *testing.T) {
	pub := &mockPublisher{}
	pub.On("PublishMessage", "proposal_events", "proposal.executed").Return(nil).Once()
	pub.On("PublishMessage", "proposal_events", "proposal.rolled_back").Return(nil).Once()

	n := NewRabbitMQNotifier(pub, "proposal_events")
	require.NoError(t, n.SendExecutionResult(context.Background(), "Raise budget", true, "1 operation"))
	require.NoError(t, n.SendRollbackNotification(context.Background(), "Raise budget", "CPA spiked"))
	pub.AssertExpectations(t)
}

type failingNotifier struct{ err error }

func (f failingNotifier) SendExecutionResult(context.Context, string, bool, string) error { return f.err }
func (f failingNotifier) SendRollbackNotification(context.Context, string, string) error  { return f.err }

func TestMultiNotifierJoinsErrors(t *testing.T) {
	boom := errors.New("channel down")
	m := NewMultiNotifier(LogNotifier{}, nil, failingNotifier{err: boom})

	err := m.SendExecutionResult(context.Background(), "t", true, "d")
	assert.ErrorIs(t, err, boom)

	assert.NoError(t, NewMultiNotifier(LogNotifier{}).SendRollbackNotification(context.Background(), "t", "r"))
}

func TestChatworkSendMessage(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/rooms/42/messages", r.URL.Path)
		assert.Equal(t, "token", r.Header.Get("X-ChatWorkToken"))
		assert.NoError(t, r.ParseForm())
		assert.Contains(t, r.PostForm.Get("body"), "Rolled back: Raise budget")
		if n == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_, _ = w.Write([]byte(`{"message_id":"1"}`))
	}))
	defer srv.Close()

	c := NewChatworkNotifier(config.ChatworkConfig{APIToken: "token", RoomID: "42", BaseURL: srv.URL, Timeout: time.Second})
	c.backoff = time.Millisecond

	require.NoError(t, c.SendRollbackNotification(context.Background(), "Raise budget", "CPA spiked"))
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestChatworkNotConfigured(t *testing.T) {
	c := NewChatworkNotifier(config.ChatworkConfig{})
	assert.Error(t, c.SendExecutionResult(context.Background(), "t", false, "d"))
}
