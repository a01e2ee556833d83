package client

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-resty/resty/v2"
)

func fetch(t *testing.T, status int, body string) *resty.Response {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	resp, err := resty.New().R().Get(srv.URL)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	return resp
}

func TestCheckResponse(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		wantErr  bool
		contains []string
		is       error
	}{
		{name: "success", status: 200, body: `{"success":true}`},
		{
			name: "error object with 200", status: 200,
			body:    `{"error":{"code":400,"message":"Folder already exists","details":["title taken"]}}`,
			wantErr: true, contains: []string{"Folder already exists", "title taken", "400"},
		},
		{
			name: "invalid token", status: 200,
			body:    `{"error":{"code":498,"message":"Invalid token.","details":[]}}`,
			wantErr: true, contains: []string{"Invalid token."}, is: ErrAuthenticationFailed,
		},
		{
			name: "not found code", status: 200,
			body:    `{"error":{"code":404,"message":"Service not found"}}`,
			wantErr: true, is: ErrNotFound,
		},
		{
			name: "plain string error", status: 200,
			body:    `{"error":"stream offline"}`,
			wantErr: true, contains: []string{"stream offline"},
		},
		{
			name: "bad status without error key", status: 502,
			body:    `bad gateway`,
			wantErr: true, contains: []string{"http status 502", "bad gateway"},
		},
		{
			name: "forbidden status", status: 403,
			body:    `{}`,
			wantErr: true, is: ErrAuthenticationFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkResponse("test op", fetch(t, tt.status, tt.body))
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			var re *RemoteError
			if !errors.As(err, &re) {
				t.Fatalf("expected *RemoteError, got %T", err)
			}
			if !strings.HasPrefix(err.Error(), "test op: ") {
				t.Fatalf("missing operation prefix: %q", err.Error())
			}
			for _, s := range tt.contains {
				if !strings.Contains(err.Error(), s) {
					t.Fatalf("error %q missing %q", err.Error(), s)
				}
			}
			if tt.is != nil && !errors.Is(err, tt.is) {
				t.Fatalf("expected errors.Is(%v)", tt.is)
			}
		})
	}
}
