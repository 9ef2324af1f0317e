package testutil

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"doccheck/pkg/requestcontext"
)

func TestWithRequestMeta(t *testing.T) {
	req := WithRequestMeta(NewRequest(t, http.MethodGet, "/health"), RequestMeta{
		RequestID: "req-1",
		Caller:    "shipment-intake",
	})

	ctx := req.Context()
	assert.Equal(t, "req-1", requestcontext.RequestID(ctx))
	assert.Equal(t, "shipment-intake", requestcontext.Caller(ctx))
	assert.Empty(t, requestcontext.ClientIP(ctx))
}

func TestRequestHeaders(t *testing.T) {
	req := WithAdminToken(WithBearer(NewRequest(t, http.MethodGet, "/metrics"), "tok"), "ops")

	assert.Equal(t, "Bearer tok", req.Header.Get("Authorization"))
	assert.Equal(t, "ops", req.Header.Get("X-Admin-Token"))
}
