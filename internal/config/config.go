package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Session keys in the CLI config file
const (
	KeySharingURL   = "sharing_url"
	KeyUsername     = "username"
	KeyToken        = "token"
	KeyTokenExpires = "token_expires"
)

const configName = ".excalibur-cli"

// InitConfig reads in config file and ENV variables if set.
func InitConfig(cfgFile string) error {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("locate home directory: %w", err)
		}

		// Search config in home directory with name ".excalibur-cli" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(configName)
	}

	viper.SetEnvPrefix("EXCALIBUR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok || os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", viper.ConfigFileUsed(), err)
	}
	return nil
}

// Session is the portal login persisted between runs
type Session struct {
	SharingURL string
	Username   string
	Token      string
	Expires    time.Time
}

// LoadSession returns the saved session. Fields are empty when nobody has logged in.
func LoadSession() Session {
	s := Session{
		SharingURL: viper.GetString(KeySharingURL),
		Username:   viper.GetString(KeyUsername),
		Token:      viper.GetString(KeyToken),
	}
	if ms := viper.GetInt64(KeyTokenExpires); ms > 0 {
		s.Expires = time.UnixMilli(ms)
	}
	return s
}

// SaveSession updates the config file with the new session
func SaveSession(s Session) error {
	viper.Set(KeySharingURL, s.SharingURL)
	viper.Set(KeyUsername, s.Username)
	viper.Set(KeyToken, s.Token)
	var expires int64
	if !s.Expires.IsZero() {
		expires = s.Expires.UnixMilli()
	}
	viper.Set(KeyTokenExpires, expires)
	return writeConfig()
}

// ClearSession forgets the saved token but keeps the portal url
func ClearSession() error {
	viper.Set(KeyToken, "")
	viper.Set(KeyTokenExpires, 0)
	return writeConfig()
}

func writeConfig() error {
	// Ensure the file exists before writing
	if err := viper.WriteConfig(); err != nil {
		// If file doesn't exist, create it
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return viper.SafeWriteConfig()
		}
		// If it exists but failed to write, try writing to default path
		home, herr := os.UserHomeDir()
		if herr != nil {
			return err
		}
		return viper.WriteConfigAs(filepath.Join(home, configName+".yaml"))
	}
	return nil
}
