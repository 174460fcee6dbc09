package galaxy

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()))
}

func TestLoginDecodesBareAndWrappedIdentity(t *testing.T) {
	bodies := []string{
		`{"id":7,"name":"Asha","role":"admin","permissions":["event:view"]}`,
		`{"user":{"id":"7","name":"Asha","role":"admin","permissions":["event:view"]}}`,
	}
	for _, body := range bodies {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var req loginRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, "9876543210", req.Phone)
			http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "tok"})
			_, _ = w.Write([]byte(body))
		})

		user, creds, err := client.Login(context.Background(), "9876543210", "secret")
		require.NoError(t, err)
		assert.Equal(t, ID("7"), user.ID)
		assert.Equal(t, "admin", user.Role)
		assert.Equal(t, []string{"event:view"}, user.Permissions)
		assert.False(t, creds.Empty())
	}
}

func TestCredentialsForwardedAndRotated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		ck, err := r.Cookie("access_token")
		require.NoError(t, err)
		assert.Equal(t, "old", ck.Value)
		http.SetCookie(w, &http.Cookie{Name: "access_token", Value: "new"})
		_, _ = w.Write([]byte(`[]`))
	})

	var saved string
	creds := DecodeCredentials(`{"access_token":"old"}`, func(encoded string) { saved = encoded })
	_, err := client.ListEvents(context.Background(), creds, EventFilter{})
	require.NoError(t, err)
	assert.JSONEq(t, `{"access_token":"new"}`, saved)
}

func TestErrorEnvelope(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		message string
		invalid bool
	}{
		{"error field", http.StatusBadRequest, `{"error":"Date is required"}`, "Date is required", false},
		{"message field", http.StatusInternalServerError, `{"message":"db down"}`, "db down", false},
		{"no body", http.StatusInternalServerError, ``, GenericMessage, false},
		{"expired session", http.StatusUnauthorized, `{"error":"Session expired"}`, "Session expired", true},
		{"bad refresh token", http.StatusUnauthorized, `{"error":"invalid refresh token"}`, "invalid refresh token", true},
		{"plain 401", http.StatusUnauthorized, `{"error":"wrong password"}`, "wrong password", false},
		{"403 with phrase", http.StatusForbidden, `{"error":"login required"}`, "login required", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})
			_, err := client.ListUsers(context.Background(), nil, UserFilter{Search: "a"})
			require.Error(t, err)
			assert.Equal(t, tc.message, Message(err))
			assert.Equal(t, tc.invalid, IsSessionInvalid(err))
		})
	}
}

func TestForbiddenAndUnreachable(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"permission denied"}`))
	})
	err := client.DeleteEvent(context.Background(), nil, "1")
	assert.True(t, IsForbidden(err))

	down := NewClient("http://127.0.0.1:1", 50*time.Millisecond)
	_, err = down.ListEvents(context.Background(), nil, EventFilter{})
	require.Error(t, err)
	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Equal(t, UnreachableMessage, Message(err))
}

func TestQueryAndPathEscaping(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/events/a%2Fb/bookings", r.URL.EscapedPath())
		assert.Equal(t, "ravi", r.URL.Query().Get("search"))
		_, _ = w.Write([]byte(`[{"id":3,"event_id":"a/b","user_name":"Ravi","status":"booked","base_amount":500}]`))
	})
	bookings, err := client.ListEventBookings(context.Background(), nil, "a/b", "ravi")
	require.NoError(t, err)
	require.Len(t, bookings, 1)
	assert.Equal(t, ID("3"), bookings[0].ID)
	assert.EqualValues(t, 500, bookings[0].BaseAmount)
}

type recordingObserver struct {
	ops      []string
	statuses []int
}

func (o *recordingObserver) ObserveBackend(op string, status int, _ time.Duration) {
	o.ops = append(o.ops, op)
	o.statuses = append(o.statuses, status)
}

func TestObserverSeesEveryCall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	client := NewClient(srv.URL, time.Second, WithHTTPClient(srv.Client()), WithObserver(obs))

	require.NoError(t, client.Logout(context.Background(), nil))
	assert.Equal(t, []string{"logout"}, obs.ops)
	assert.Equal(t, []int{http.StatusNoContent}, obs.statuses)
}
