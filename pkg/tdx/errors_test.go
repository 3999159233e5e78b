package tdx_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/fivetwenty-io/tdx-client/pkg/tdx"
	"github.com/stretchr/testify/assert"
)

func TestHTTPError(t *testing.T) {
	t.Parallel()

	err := &tdx.HTTPError{
		Method:     "POST",
		Path:       "/31/tickets/555",
		StatusCode: 400,
		Reason:     "Bad Request",
		Body:       "{\"Message\":\"Invalid status\"}\n",
	}

	assert.Equal(t,
		`POST /31/tickets/555 failed: response code 400 Bad Request, returned: {"Message":"Invalid status"}`,
		err.Error())
	assert.ErrorIs(t, fmt.Errorf("editing ticket: %w", err), tdx.ErrHTTP)
	assert.Equal(t, 400, tdx.StatusCode(err))
	assert.False(t, tdx.IsNotFound(err))
}

func TestIsNotFound(t *testing.T) {
	t.Parallel()

	assert.True(t, tdx.IsNotFound(&tdx.NotFoundError{Kind: "location", Key: "Annex"}))
	assert.True(t, tdx.IsNotFound(fmt.Errorf("wrapped: %w", &tdx.HTTPError{StatusCode: 404})))
	assert.False(t, tdx.IsNotFound(errors.New("other")))
	assert.False(t, tdx.IsNotFound(nil))
}

func TestIsUnauthorized(t *testing.T) {
	t.Parallel()

	assert.True(t, tdx.IsUnauthorized(&tdx.AuthError{Username: "svc", Err: errors.New("bad password")}))
	assert.True(t, tdx.IsUnauthorized(&tdx.HTTPError{StatusCode: 401}))
	assert.False(t, tdx.IsUnauthorized(&tdx.HTTPError{StatusCode: 403}))
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
		is   error
	}{
		{
			name: "not found",
			err:  &tdx.NotFoundError{Kind: "location", Key: "Annex 9"},
			want: `no location found for "Annex 9"`,
			is:   tdx.ErrNotFound,
		},
		{
			name: "scoped not found",
			err:  &tdx.NotFoundError{Kind: "room", Key: "101", Scope: "Annex"},
			want: `no room found for "101" in Annex`,
			is:   tdx.ErrNotFound,
		},
		{
			name: "validation",
			err:  &tdx.ValidationError{Entity: "ticket", Field: "Title", Rule: "value required"},
			want: "ticket validation failed: Title: value required",
			is:   tdx.ErrValidation,
		},
		{
			name: "malformed",
			err:  &tdx.MalformedResponseError{Method: "GET", Path: "/locations", Raw: "<html>"},
			want: "invalid JSON received from GET /locations: <html>",
			is:   tdx.ErrMalformedResponse,
		},
		{
			name: "object type",
			err:  &tdx.ObjectTypeError{Expected: "ticket", Got: "asset"},
			want: "expected ticket, got asset",
			is:   tdx.ErrObjectType,
		},
		{
			name: "duplicate",
			err:  &tdx.DuplicateError{Kind: "asset with serial number", Key: "C02XK1"},
			want: "asset with serial number C02XK1 already exists",
			is:   tdx.ErrDuplicate,
		},
		{
			name: "auth",
			err:  &tdx.AuthError{Username: "svc"},
			want: "authentication failed for svc",
			is:   tdx.ErrAuth,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, tt.err.Error())
			assert.ErrorIs(t, tt.err, tt.is)
		})
	}
}
