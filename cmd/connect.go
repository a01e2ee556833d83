package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"excalibur-cli/internal/auth"
	"excalibur-cli/internal/client"
	"excalibur-cli/internal/config"
	"excalibur-cli/internal/provision"
)

// connFlags override the values in paths.json
type connFlags struct {
	sharingURL     string
	videoServerURL string
	streamURL      string
	groupID        string
	org            bool
	user           string
	password       string
	certFile       string
	keyFile        string
}

var conn connFlags

func (f *connFlags) register(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.sharingURL, "sharingurl", "s", "", "portal sharing url. If not specified, SHARING_URL from paths.json is used")
	pf.StringVarP(&f.videoServerURL, "videoserverurl", "v", "", "url to the video server. If not specified, VIDEO_SERVER_URL from paths.json is used")
	pf.StringVarP(&f.streamURL, "rtsp", "r", "", "url to the video stream. If not specified, URL_TO_VIDEO_STREAM from paths.json is used")
	pf.StringVarP(&f.groupID, "groupid", "g", "", "item id of group to share created items with")
	pf.BoolVarP(&f.org, "org", "o", false, "share created items with the organization")
	pf.StringVarP(&f.user, "user", "u", "", "portal user name")
	pf.StringVarP(&f.password, "password", "p", "", "password for portal user")
	pf.StringVar(&f.certFile, "cert", "", "client certificate for PKI login")
	pf.StringVar(&f.keyFile, "key", "", "private key for --cert, if not bundled in the certificate file")
}

func (f *connFlags) sharing() provision.Sharing {
	return provision.Sharing{GroupID: f.groupID, Org: f.org}
}

// settings is paths.json merged with the command line
type settings struct {
	paths          config.Paths
	sharingURL     string
	videoServerURL string
	streamURL      string
}

func loadSettings(requirePaths bool) (settings, error) {
	paths, err := config.LoadPaths(pathsFile, requirePaths)
	if err != nil {
		return settings{}, err
	}
	s := settings{
		paths:          paths,
		sharingURL:     firstNonEmpty(conn.sharingURL, paths.SharingURL),
		videoServerURL: firstNonEmpty(conn.videoServerURL, paths.VideoServerURL),
		streamURL:      firstNonEmpty(conn.streamURL, paths.VideoStreamURL),
	}
	if s.sharingURL == "" {
		s.sharingURL = config.LoadSession().SharingURL
	}
	return s, nil
}

func (s settings) requireVideo() error {
	if s.videoServerURL == "" {
		return fmt.Errorf("%w: the video server url must be in the --videoserverurl argument or in the paths.json's %s property",
			client.ErrMissingArgument, config.PathVideoServerURL)
	}
	return nil
}

func (s settings) requireStream() error {
	if s.streamURL == "" {
		return fmt.Errorf("%w: the video stream url must be in the --rtsp argument or in the paths.json's %s property",
			client.ErrMissingArgument, config.PathVideoStreamURL)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// connect returns a client ready for authenticated calls. A saved session for
// the same portal is reused unless credentials were given or forceLogin is set.
func connect(ctx context.Context, s settings, forceLogin bool) (*client.PortalClient, error) {
	if s.sharingURL == "" {
		return nil, fmt.Errorf("%w: the portal sharing url must be in the --sharingurl argument or in the paths.json's %s property",
			client.ErrMissingArgument, config.PathSharingURL)
	}

	c := client.New(client.ClientConfig{
		SharingURL:     s.sharingURL,
		VideoServerURL: s.videoServerURL,
		Username:       conn.user,
		Password:       conn.password,
		CertFile:       conn.certFile,
		KeyFile:        conn.keyFile,
		VerifySSL:      s.paths.VerifySSL,
	})
	c.Metrics = requestMetrics

	if conn.certFile != "" {
		if _, err := c.Login(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}

	saved := config.LoadSession()
	if !forceLogin && conn.password == "" && saved.SharingURL == c.Config.SharingURL &&
		(conn.user == "" || conn.user == saved.Username) {
		session := client.Session{Username: saved.Username, Token: saved.Token, Expires: saved.Expires}
		if session.Valid(time.Now()) {
			c.UseSession(session)
			c.Logger.Debug("reusing saved session", "user", session.Username, "expires", session.Expires)
			return c, nil
		}
	}

	user, pass, err := auth.NewTerminalPrompter().Resolve(firstNonEmpty(conn.user, saved.Username), conn.password)
	if err != nil {
		return nil, err
	}
	c.Config.Username = user
	c.Config.Password = pass

	session, err := c.Login(ctx)
	if err != nil {
		return nil, err
	}
	if err := config.SaveSession(config.Session{
		SharingURL: c.Config.SharingURL,
		Username:   session.Username,
		Token:      session.Token,
		Expires:    session.Expires,
	}); err != nil {
		c.Logger.Warn("session not saved", "err", err)
	}
	return c, nil
}

func newProvisioner(c *client.PortalClient) *provision.Provisioner {
	p := provision.New(c)
	p.Out = os.Stdout
	return p
}

// fileOrLookup returns name when it is an existing file, otherwise the result of lookup.
func fileOrLookup(name string, lookup func(string) (string, error)) (string, error) {
	if info, err := os.Stat(name); err == nil && !info.IsDir() {
		return name, nil
	}
	path, err := lookup(name)
	if err != nil {
		return "", fmt.Errorf("%w: %w", client.ErrNotFound, err)
	}
	return path, nil
}

func isAuthError(err error) bool {
	return errors.Is(err, client.ErrAuthenticationFailed)
}
