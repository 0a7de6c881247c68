package me

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bookease/bookease-backend/internal/http/middlewarectx"
)

func TestHandler_ServeHTTP(t *testing.T) {
	ctx := context.WithValue(context.Background(), middlewarectx.AccountID, "acc-1")
	ctx = context.WithValue(ctx, middlewarectx.Email, "asha@example.com")
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	New().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.True(t, body.OK)
	assert.Equal(t, Identity{AccountID: "acc-1", Email: "asha@example.com"}, body.User)
}
