package smq_test

import (
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/jgonzalez0406/Messaging-Program/internal/broker"
	brokerhttp "github.com/jgonzalez0406/Messaging-Program/internal/broker/http"
	"github.com/jgonzalez0406/Messaging-Program/internal/broker/memory"
	"github.com/jgonzalez0406/Messaging-Program/internal/common/logs/mocks"
	"github.com/jgonzalez0406/Messaging-Program/internal/common/workerpool"
	"github.com/jgonzalez0406/Messaging-Program/internal/smq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Two clients against a real broker over HTTP: bob subscribes, alice
// publishes, bob retrieves.
func TestClient_EndToEnd(t *testing.T) {
	pool, err := workerpool.New(4)
	require.NoError(t, err)
	defer pool.Stop()

	b := broker.New(memory.New(), pool, mocks.LoggerMock{})
	handler := brokerhttp.NewHandler(b, mocks.LoggerMock{}).WithPollWait(100 * time.Millisecond)

	srv := httptest.NewServer(brokerhttp.NewRouter(handler, mocks.LoggerMock{}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)

	alice, err := smq.New("alice", u.Hostname(), u.Port(), mocks.LoggerMock{})
	require.NoError(t, err)
	defer alice.Close()
	alice.WithTimeout(200 * time.Millisecond)

	bob, err := smq.New("bob", u.Hostname(), u.Port(), mocks.LoggerMock{})
	require.NoError(t, err)
	defer bob.Close()
	bob.WithTimeout(200 * time.Millisecond)

	bob.Subscribe("chat")
	require.Eventually(t, func() bool {
		return len(b.Subscribers("chat")) == 1
	}, 5*time.Second, 20*time.Millisecond)

	alice.Publish("chat", "hello bob")

	var msg string
	var ok bool
	require.Eventually(t, func() bool {
		msg, ok = bob.Retrieve()
		return ok
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, "hello bob", msg)

	bob.Unsubscribe("chat")
	require.Eventually(t, func() bool {
		return len(b.Subscribers("chat")) == 0
	}, 5*time.Second, 20*time.Millisecond)

	alice.Shutdown()
	bob.Shutdown()
	assert.False(t, alice.Running())
	assert.False(t, bob.Running())
}
