package client

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-resty/resty/v2"

	"excalibur-cli/internal/auth"
	"excalibur-cli/internal/logging"
	"excalibur-cli/pkg/models"
)

// Defaults applied when ClientConfig leaves a value unset
const (
	DefaultTokenExpiration = 60 // minutes
	DefaultTimeout         = 5 * time.Minute
)

type PortalClient struct {
	HTTP    *resty.Client
	Config  ClientConfig
	Logger  *log.Logger
	Metrics *Metrics

	username string
	token    string
	expires  time.Time
}

type ClientConfig struct {
	SharingURL     string // https://<domain>/<webadaptor>/sharing/rest
	VideoServerURL string // https://<domain>/<webadaptor>
	Username       string
	Password       string
	CertFile       string // PKI
	KeyFile        string // PKI
	VerifySSL      bool
	// TokenExpiration is requested from generateToken, in minutes.
	TokenExpiration int
	Timeout         time.Duration
}

// Session is the credential state worth persisting between runs.
type Session struct {
	Username string
	Token    string
	Expires  time.Time
}

// Valid reports whether the session can authorize a request right now.
func (s Session) Valid(now time.Time) bool {
	if s.Username == "" || s.Token == "" {
		return false
	}
	return s.Expires.IsZero() || now.Before(s.Expires)
}

type operationKey struct{}

func New(cfg ClientConfig) *PortalClient {
	cfg.SharingURL = strings.TrimRight(cfg.SharingURL, "/")
	cfg.VideoServerURL = strings.TrimRight(cfg.VideoServerURL, "/")
	if cfg.TokenExpiration <= 0 {
		cfg.TokenExpiration = DefaultTokenExpiration
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	r := resty.New()
	r.SetBaseURL(cfg.SharingURL)
	r.SetHeader("Accept", "application/json")
	r.SetTimeout(cfg.Timeout)

	if !cfg.VerifySSL {
		// On-prem portals commonly run with self-signed certificates
		r.SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true})
	}

	c := &PortalClient{
		HTTP:     r,
		Config:   cfg,
		Logger:   logging.New("portal"),
		username: cfg.Username,
	}
	r.OnAfterResponse(func(_ *resty.Client, resp *resty.Response) error {
		c.observe(resp.Request, resp.StatusCode(), resp.Time(), nil)
		return nil
	})
	r.OnError(func(req *resty.Request, err error) {
		c.observe(req, 0, 0, err)
	})
	return c
}

// Username returns the acting portal user.
func (c *PortalClient) Username() string {
	return c.username
}

// Session returns the current credentials.
func (c *PortalClient) Session() Session {
	return Session{Username: c.username, Token: c.token, Expires: c.expires}
}

// UseSession injects previously saved credentials so Login can be skipped.
func (c *PortalClient) UseSession(s Session) {
	c.username = s.Username
	c.token = s.Token
	c.expires = s.Expires
}

// Login authenticates against the portal. A configured certificate selects
// PKI, otherwise username/password are exchanged for a token.
func (c *PortalClient) Login(ctx context.Context) (Session, error) {
	if c.Config.CertFile != "" {
		return c.loginPKI(ctx)
	}
	return c.loginPassword(ctx)
}

func (c *PortalClient) loginPassword(ctx context.Context) (Session, error) {
	if c.Config.Username == "" || c.Config.Password == "" {
		return Session{}, fmt.Errorf("%w: username and password are required", ErrMissingArgument)
	}

	const op = "generate token"
	resp, err := c.HTTP.R().
		SetContext(context.WithValue(ctx, operationKey{}, op)).
		SetFormData(map[string]string{
			"username":   c.Config.Username,
			"password":   c.Config.Password,
			"client":     "requestip",
			"expiration": strconv.Itoa(c.Config.TokenExpiration),
			"f":          "json",
		}).
		Post("/generateToken")
	if err != nil {
		return Session{}, fmt.Errorf("%s: %w", op, err)
	}

	var tr models.TokenResponse
	if err := decode(op, resp, &tr); err != nil {
		var re *RemoteError
		if errors.As(err, &re) && re.rejected() && !errors.Is(err, ErrAuthenticationFailed) {
			return Session{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
		}
		return Session{}, err
	}
	if tr.Token == "" {
		return Session{}, fmt.Errorf("%w: portal returned no token", ErrAuthenticationFailed)
	}

	c.username = c.Config.Username
	c.token = tr.Token
	c.expires = tr.ExpiresAt()
	c.Logger.Debug("token acquired", "user", c.username, "expires", c.expires)
	return c.Session(), nil
}

func (c *PortalClient) loginPKI(ctx context.Context) (Session, error) {
	cert, err := auth.LoadClientCertificate(c.Config.CertFile, c.Config.KeyFile)
	if err != nil {
		return Session{}, err
	}
	c.HTTP.SetCertificates(cert)

	var self models.SelfResponse
	if err := c.get(ctx, "resolve user", "/community/self", nil, &self); err != nil {
		return Session{}, fmt.Errorf("%w: %w", ErrAuthenticationFailed, err)
	}
	if self.Username == "" {
		return Session{}, fmt.Errorf("%w: certificate not mapped to a portal user", ErrAuthenticationFailed)
	}
	c.username = self.Username
	c.token = ""
	c.expires = time.Time{}
	c.Logger.Debug("pki session established", "user", c.username)
	return c.Session(), nil
}

// contentPath builds /content/users/<user>[/parts...]
func (c *PortalClient) contentPath(parts ...string) string {
	p := "/content/users/" + url.PathEscape(c.username)
	for _, part := range parts {
		if part == "" {
			continue
		}
		p += "/" + part
	}
	return p
}

func (c *PortalClient) videoServicesURL(path string) (string, error) {
	if c.Config.VideoServerURL == "" {
		return "", fmt.Errorf("%w: video server url is not configured", ErrMissingArgument)
	}
	return c.Config.VideoServerURL + "/rest/services" + path, nil
}

func (c *PortalClient) requireUser() error {
	if c.username == "" {
		return fmt.Errorf("%w: not logged in", ErrAuthenticationFailed)
	}
	return nil
}
