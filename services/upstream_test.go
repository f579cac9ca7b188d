package services

import (
	"context"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

// newUpstream serves the routes registered by setup for the duration of the test.
func newUpstream(t *testing.T, setup func(r *gin.Engine)) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()
	setup(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

type staticTokens struct {
	creds Credentials
	err   error
	calls int
}

func (s *staticTokens) Credentials(context.Context) (Credentials, error) {
	s.calls++
	return s.creds, s.err
}
