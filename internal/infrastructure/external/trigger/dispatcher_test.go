package trigger

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/peopleops/pkg/jwt"
)

func TestDispatch_PostsSignedRequest(t *testing.T) {
	tokens := jwt.NewManager("secret", "peopleops", time.Minute)
	tenant, oneOnOne, meeting := uuid.New(), uuid.New(), uuid.New()

	var got Request
	var authHeader, tenantHeader string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader = r.Header.Get("Authorization")
		tenantHeader = r.Header.Get("X-Tenant-Id")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	d := NewHTTPDispatcher(srv.URL, "X-Tenant-Id", time.Second, tokens, nil, nil)
	d.Dispatch(tenant, oneOnOne, meeting)
	d.Wait()

	assert.Equal(t, oneOnOne.String(), got.OneOnOneID)
	assert.Equal(t, tenant.String(), got.TenantID)
	assert.Equal(t, meeting.String(), got.MeetingID)
	assert.Equal(t, tenant.String(), tenantHeader)
	require.True(t, strings.HasPrefix(authHeader, "Bearer "))

	claims, err := tokens.ValidateServiceToken(strings.TrimPrefix(authHeader, "Bearer "), jwt.ServiceScopeExtract)
	require.NoError(t, err)
	assert.Equal(t, tenant, claims.TenantID)
}

func TestDispatch_DoesNotBlockCaller(t *testing.T) {
	release := make(chan struct{})
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		<-release
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	d := NewHTTPDispatcher(srv.URL, "X-Tenant-Id", 5*time.Second, jwt.NewManager("s", "", time.Minute), nil, nil)

	start := time.Now()
	d.Dispatch(uuid.New(), uuid.New(), uuid.New())
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	close(release)
	d.Wait()
	assert.EqualValues(t, 1, atomic.LoadInt32(&hits))
}

func TestDispatch_TimeoutIsSwallowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	d := NewHTTPDispatcher(srv.URL, "X-Tenant-Id", 50*time.Millisecond, jwt.NewManager("s", "", time.Minute), nil, nil)
	d.Dispatch(uuid.New(), uuid.New(), uuid.New())

	done := make(chan struct{})
	go func() { d.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("dispatch did not honour its timeout")
	}
}
