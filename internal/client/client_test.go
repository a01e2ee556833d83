package client

import (
	"context"
	"errors"
	"testing"
	"time"

	"excalibur-cli/internal/logging"
	"excalibur-cli/internal/testsupport"
)

func newTestClient(t *testing.T, portal *testsupport.Portal) *PortalClient {
	t.Helper()
	c := New(ClientConfig{
		SharingURL:     portal.SharingURL(),
		VideoServerURL: portal.VideoServerURL(),
		Username:       portal.Username,
		Password:       portal.Password,
		VerifySSL:      true,
	})
	c.Logger = logging.Discard()
	return c
}

func loggedInClient(t *testing.T, portal *testsupport.Portal) *PortalClient {
	t.Helper()
	c := newTestClient(t, portal)
	if _, err := c.Login(context.Background()); err != nil {
		t.Fatalf("login: %v", err)
	}
	return c
}

func TestLoginStoresToken(t *testing.T) {
	portal := testsupport.NewPortal(t)
	c := newTestClient(t, portal)

	sess, err := c.Login(context.Background())
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if sess.Token != portal.Token || sess.Username != portal.Username {
		t.Fatalf("unexpected session: %+v", sess)
	}
	if !sess.Valid(time.Now()) {
		t.Fatal("fresh session should be valid")
	}
	if sess.Valid(time.Now().Add(2 * time.Hour)) {
		t.Fatal("session should expire with the portal-reported expiry")
	}
}

func TestLoginRejectsBadPassword(t *testing.T) {
	portal := testsupport.NewPortal(t)
	c := New(ClientConfig{SharingURL: portal.SharingURL(), Username: portal.Username, Password: "wrong"})
	c.Logger = logging.Discard()

	_, err := c.Login(context.Background())
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
	var re *RemoteError
	if !errors.As(err, &re) || re.Message != "Unable to generate token." {
		t.Fatalf("expected remote error detail, got %v", err)
	}
}

func TestLoginPortalOutageIsRetryable(t *testing.T) {
	portal := testsupport.NewPortal(t)
	portal.FailOn("generateToken", "Service Unavailable")
	c := newTestClient(t, portal)

	_, err := c.Login(context.Background())
	if err == nil {
		t.Fatal("expected an error while the portal is failing")
	}
	if errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("server-side failure must not read as rejected credentials: %v", err)
	}
	var re *RemoteError
	if !errors.As(err, &re) || re.Code != 500 {
		t.Fatalf("expected remote error with code 500, got %v", err)
	}
}

func TestLoginRequiresCredentials(t *testing.T) {
	c := New(ClientConfig{SharingURL: "http://127.0.0.1:1/sharing/rest"})
	if _, err := c.Login(context.Background()); !errors.Is(err, ErrMissingArgument) {
		t.Fatalf("expected ErrMissingArgument, got %v", err)
	}
}

func TestUseSessionSkipsLogin(t *testing.T) {
	portal := testsupport.NewPortal(t)
	c := New(ClientConfig{SharingURL: portal.SharingURL()})
	c.Logger = logging.Discard()
	c.UseSession(Session{Username: portal.Username, Token: portal.Token})

	if _, err := c.ListFolders(context.Background()); err != nil {
		t.Fatalf("list folders with saved session: %v", err)
	}
	if portal.CallCount("/generateToken") != 0 {
		t.Fatal("saved session should not request a token")
	}
}

func TestExpiredTokenMapsToAuthError(t *testing.T) {
	portal := testsupport.NewPortal(t)
	c := New(ClientConfig{SharingURL: portal.SharingURL()})
	c.Logger = logging.Discard()
	c.UseSession(Session{Username: portal.Username, Token: "stale"})

	_, err := c.ListFolders(context.Background())
	if !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}

func TestRequestsWithoutLoginFail(t *testing.T) {
	c := New(ClientConfig{SharingURL: "http://127.0.0.1:1/sharing/rest"})
	if _, err := c.CreateFolder(context.Background(), "x"); !errors.Is(err, ErrAuthenticationFailed) {
		t.Fatalf("expected ErrAuthenticationFailed, got %v", err)
	}
}
