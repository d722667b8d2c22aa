package shared

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Name  string `json:"name"  validate:"required"`
	Count int    `json:"count" validate:"omitempty,min=1,max=50"`
}

type selfValidating struct {
	OK bool `json:"ok"`
}

func (s selfValidating) Validate() error {
	if !s.OK {
		return errors.New("not ok")
	}
	return nil
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
		want    sampleRequest
	}{
		{name: "valid", body: `{"name":"cells","count":3}`, want: sampleRequest{Name: "cells", Count: 3}},
		{name: "unknown fields ignored", body: `{"name":"cells","extra":true}`, want: sampleRequest{Name: "cells"}},
		{name: "malformed", body: `{"name":`, wantErr: true},
		{name: "trailing data", body: `{"name":"a"} {"name":"b"}`, wantErr: true},
		{name: "wrong type", body: `{"count":"three"}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tc.body))
			var got sampleRequest
			err := DecodeJSON(httptest.NewRecorder(), req, &got)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDecodeJSON_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var got sampleRequest
	assert.ErrorIs(t, DecodeJSON(httptest.NewRecorder(), req, &got), ErrEmptyBody)
}

func TestDecodeJSON_TooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", MaxJSONBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var got sampleRequest
	assert.Error(t, DecodeJSON(httptest.NewRecorder(), req, &got))
}

func TestValidateRequest(t *testing.T) {
	assert.NoError(t, ValidateRequest(sampleRequest{Name: "x", Count: 5}))
	assert.Error(t, ValidateRequest(sampleRequest{}))
	assert.Error(t, ValidateRequest(sampleRequest{Name: "x", Count: 51}))

	assert.NoError(t, ValidateRequest(selfValidating{OK: true}))
	assert.EqualError(t, ValidateRequest(selfValidating{}), "not ok")
}
