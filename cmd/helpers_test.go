package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"excalibur-cli/internal/client"
	"excalibur-cli/internal/logging"
	"excalibur-cli/internal/testsupport"
)

// resetGlobals restores flag-bound state and the session store after a test.
func resetGlobals(t *testing.T) {
	t.Helper()
	savedConn, savedPaths, savedJSON := conn, pathsFile, jsonOutput
	viper.Reset()
	viper.SetConfigFile(filepath.Join(t.TempDir(), "excalibur-cli.yaml"))
	t.Cleanup(func() {
		conn, pathsFile, jsonOutput = savedConn, savedPaths, savedJSON
		viper.Reset()
	})
}

func newPortalClient(t *testing.T, portal *testsupport.Portal) *client.PortalClient {
	t.Helper()
	c := client.New(client.ClientConfig{
		SharingURL:     portal.SharingURL(),
		VideoServerURL: portal.VideoServerURL(),
		Username:       portal.Username,
		Password:       portal.Password,
	})
	c.Logger = logging.Discard()
	return c
}

func writeTestFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}
