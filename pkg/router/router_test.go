package router

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/marmos91/deckd/internal/protocol/http1"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okHandler(body string) Handler {
	return func(context.Context, *http1.Request) (*http1.Response, error) {
		return http1.Text(http1.StatusOK, body), nil
	}
}

func TestHandle(t *testing.T) {
	r := New()
	r.AddRoute("GET", "/x", okHandler("x"))

	t.Run("CaseInsensitiveMethod", func(t *testing.T) {
		for _, method := range []string{"GET", "get", "Get", "gEt"} {
			resp, err := r.Handle(context.Background(), &http1.Request{Method: method, Path: "/x"})
			require.NoError(t, err)
			assert.Equal(t, "x", string(resp.Body), "method %s", method)
		}
	})

	t.Run("PathIsExact", func(t *testing.T) {
		for _, path := range []string{"/x/", "/X", "x", "/x/y"} {
			resp, err := r.Handle(context.Background(), &http1.Request{Method: "GET", Path: path})
			require.NoError(t, err)
			assert.Equal(t, http1.StatusNotFound, resp.StatusCode, "path %s", path)
		}
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		resp, err := r.Handle(context.Background(), &http1.Request{Method: "POST", Path: "/x"})
		require.NoError(t, err)
		assert.Equal(t, http1.StatusNotFound, resp.StatusCode)
		assert.Equal(t, `{"message":"Route not found"}`, string(resp.Body))
	})

	t.Run("OptionsForEveryPath", func(t *testing.T) {
		for _, path := range []string{"/x", "/nowhere", ""} {
			resp, err := r.Handle(context.Background(), &http1.Request{Method: "options", Path: path})
			require.NoError(t, err)
			assert.Equal(t, http1.StatusNoContent, resp.StatusCode)
			assert.Empty(t, resp.Body)
		}
	})

	t.Run("HandlerErrorPassedThrough", func(t *testing.T) {
		boom := errors.New("boom")
		r.AddRoute("DELETE", "/fail", func(context.Context, *http1.Request) (*http1.Response, error) {
			return nil, boom
		})

		resp, err := r.Handle(context.Background(), &http1.Request{Method: "DELETE", Path: "/fail"})
		assert.Nil(t, resp)
		assert.ErrorIs(t, err, boom)
	})
}

func TestAddRouteLastRegistrationWins(t *testing.T) {
	r := New()
	r.AddRoute("GET", "/v", okHandler("first"))
	r.AddRoute("get", "/v", okHandler("second"))

	resp, err := r.Handle(context.Background(), &http1.Request{Method: "GET", Path: "/v"})
	require.NoError(t, err)
	assert.Equal(t, "second", string(resp.Body))
	assert.Equal(t, []string{"get:/v"}, r.Routes())
}

func TestHandlerReceivesContext(t *testing.T) {
	r := New()
	r.AddRoute("GET", "/id", func(ctx context.Context, _ *http1.Request) (*http1.Response, error) {
		return http1.Text(http1.StatusOK, http1.RequestIDFromContext(ctx)), nil
	})

	ctx := http1.WithRequestID(context.Background(), "abc")
	resp, err := r.Handle(ctx, &http1.Request{Method: "GET", Path: "/id"})
	require.NoError(t, err)
	assert.Equal(t, "abc", string(resp.Body))
}

func TestConcurrentLookups(t *testing.T) {
	r := New()
	r.AddRoute("GET", "/a", okHandler("a"))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp, err := r.Handle(context.Background(), &http1.Request{Method: "GET", Path: "/a"})
			assert.NoError(t, err)
			assert.Equal(t, "a", string(resp.Body))
		}()
	}
	wg.Wait()
}
