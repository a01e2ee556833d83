package client

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

var (
	ErrAuthenticationFailed = errors.New("authentication failed")
	ErrNotFound             = errors.New("not found")
	ErrAlreadyExists        = errors.New("already exists")
	ErrMissingArgument      = errors.New("missing argument")
)

// Portal error codes signalling an invalid or expired token
const (
	codeInvalidToken  = 498
	codeTokenRequired = 499
)

// RemoteError is returned when the portal or video server answers with a
// non-200 status or a body holding an "error" object.
type RemoteError struct {
	Operation  string
	StatusCode int
	Code       int
	Message    string
	Details    []string
	Body       string
}

func (e *RemoteError) Error() string {
	var b strings.Builder
	if e.Operation != "" {
		b.WriteString(e.Operation)
		b.WriteString(": ")
	}
	if e.Code != 0 {
		fmt.Fprintf(&b, "portal error %d", e.Code)
	} else {
		fmt.Fprintf(&b, "http status %d", e.StatusCode)
	}
	msg := e.Message
	if msg == "" {
		msg = strings.TrimSpace(e.Body)
	}
	if msg != "" {
		b.WriteString(": ")
		b.WriteString(msg)
	}
	if len(e.Details) > 0 {
		fmt.Fprintf(&b, " (%s)", strings.Join(e.Details, "; "))
	}
	return b.String()
}

// Unwrap maps auth and not-found codes onto the package sentinels so callers
// can use errors.Is.
func (e *RemoteError) Unwrap() error {
	code := e.Code
	if code == 0 {
		code = e.StatusCode
	}
	switch code {
	case http.StatusUnauthorized, http.StatusForbidden, codeInvalidToken, codeTokenRequired:
		return ErrAuthenticationFailed
	case http.StatusNotFound:
		return ErrNotFound
	}
	return nil
}

// rejected reports a 4xx status or portal code, which on generateToken means
// the credentials were refused. Gateway and server errors stay retryable.
func (e *RemoteError) rejected() bool {
	code := e.Code
	if code == 0 {
		code = e.StatusCode
	}
	return code >= 400 && code < 500
}

// checkResponse validates status and body. An "error" key fails the call
// regardless of HTTP status.
func checkResponse(op string, resp *resty.Response) error {
	body := resp.Body()
	if errObj := gjson.GetBytes(body, "error"); errObj.Exists() {
		return remoteErrorFromJSON(op, resp.StatusCode(), errObj, body)
	}
	if resp.StatusCode() != http.StatusOK {
		return &RemoteError{
			Operation:  op,
			StatusCode: resp.StatusCode(),
			Body:       string(body),
		}
	}
	return nil
}

func remoteErrorFromJSON(op string, status int, errObj gjson.Result, body []byte) *RemoteError {
	re := &RemoteError{
		Operation:  op,
		StatusCode: status,
		Body:       string(body),
	}
	if errObj.Type == gjson.String {
		re.Message = errObj.String()
		return re
	}
	re.Code = int(errObj.Get("code").Int())
	re.Message = errObj.Get("message").String()
	for _, d := range errObj.Get("details").Array() {
		if s := d.String(); s != "" {
			re.Details = append(re.Details, s)
		}
	}
	if re.Message == "" && len(re.Details) == 0 {
		re.Message = errObj.Raw
	}
	return re
}
