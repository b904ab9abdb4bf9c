package netx

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDoJSON(t *testing.T) {
	t.Run("sends body and token, decodes reply", func(t *testing.T) {
		var gotAuth, gotCT, gotMethod string
		var gotBody map[string]string

		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotMethod = r.Method
			gotAuth = r.Header.Get("Authorization")
			gotCT = r.Header.Get("Content-Type")
			_ = json.NewDecoder(r.Body).Decode(&gotBody)
			_, _ = w.Write([]byte(`{"version":3}`))
		}))
		defer ts.Close()

		var out struct{ Version int64 }
		err := DoJSON(context.Background(), ts.Client(), http.MethodPut, ts.URL, "tok", map[string]string{"path": "a"}, &out)
		require.NoError(t, err)

		assert.Equal(t, http.MethodPut, gotMethod)
		assert.Equal(t, "Bearer tok", gotAuth)
		assert.Equal(t, "application/json", gotCT)
		assert.Equal(t, map[string]string{"path": "a"}, gotBody)
		assert.Equal(t, int64(3), out.Version)
	})

	t.Run("no token no body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Empty(t, r.Header.Get("Authorization"))
			assert.Empty(t, r.Header.Get("Content-Type"))
			w.WriteHeader(http.StatusNoContent)
		}))
		defer ts.Close()

		var out map[string]any
		require.NoError(t, DoJSON(context.Background(), ts.Client(), http.MethodDelete, ts.URL, "", nil, &out))
		assert.Nil(t, out)
	})

	t.Run("error reply carries message", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusForbidden)
			_, _ = w.Write([]byte(`{"error":"forbidden: access denied"}`))
		}))
		defer ts.Close()

		err := DoJSON(context.Background(), ts.Client(), http.MethodGet, ts.URL, "", nil, nil)
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, http.StatusForbidden, se.Status)
		assert.Equal(t, "forbidden: access denied", se.Message)
		assert.Equal(t, "Forbidden: forbidden: access denied", se.Error())
	})

	t.Run("plain text error body", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "boom", http.StatusBadGateway)
		}))
		defer ts.Close()

		err := DoJSON(context.Background(), ts.Client(), http.MethodGet, ts.URL, "", nil, nil)
		var se *StatusError
		require.True(t, errors.As(err, &se))
		assert.Equal(t, "boom", se.Message)
	})

	t.Run("bad reply json", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{`))
		}))
		defer ts.Close()

		var out map[string]any
		err := DoJSON(context.Background(), ts.Client(), http.MethodGet, ts.URL, "", nil, &out)
		assert.ErrorContains(t, err, "decode response")
	})

	t.Run("unreachable", func(t *testing.T) {
		err := DoJSON(context.Background(), http.DefaultClient, http.MethodGet, "http://127.0.0.1:1", "", nil, nil)
		assert.Error(t, err)
	})
}
