package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"excalibur-cli/internal/config"
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Authenticate with the portal and save the token",
	Long: `Requests a token from the portal's generateToken endpoint and saves it,
together with the sharing url, so later commands can run without prompting
until the token expires.

Example:
  excalibur-cli login --sharingurl https://gis.example.com/portal/sharing/rest --user analyst`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(false)
		if err != nil {
			return err
		}

		fmt.Printf("Authenticating against %s...\n", s.sharingURL)
		c, err := connect(cmd.Context(), s, true)
		if err != nil {
			return err
		}

		session := c.Session()
		if session.Token == "" {
			fmt.Printf("Login successful as '%s' (certificate). Nothing to save.\n", session.Username)
			return nil
		}
		fmt.Printf("Login successful as '%s'. Token valid until %s.\n", session.Username, session.Expires.Format("2006-01-02 15:04"))
		if used := viper.ConfigFileUsed(); used != "" {
			fmt.Printf("Session saved to %s\n", used)
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if config.LoadSession().Token == "" {
			fmt.Println("No saved session.")
			return nil
		}
		if err := config.ClearSession(); err != nil {
			return fmt.Errorf("clear session: %w", err)
		}
		fmt.Println("Session cleared.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
}
