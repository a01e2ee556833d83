package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"excalibur-cli/internal/provision"
)

var projectOrgShare bool

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage imagery projects",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create <configFileName>",
	Short: "Create an imagery project from a project config file",
	Long: `Creates an Excalibur imagery project item from a JSON config file looked up
in PROJECT_CONFIG_DIR (the .json extension is optional). The project is placed
in a folder named after its title and refused if that folder already holds a
project with the same title.`,
	Example: `  excalibur-cli project create ridge-fire --orgshare`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(true)
		if err != nil {
			return err
		}
		path, err := fileOrLookup(args[0], s.paths.ProjectConfigFile)
		if err != nil {
			return err
		}
		cfg, err := provision.LoadProjectConfig(path)
		if err != nil {
			return err
		}

		c, err := connect(cmd.Context(), s, false)
		if err != nil {
			return err
		}

		share := conn.sharing()
		share.Org = share.Org || projectOrgShare
		id, err := newProvisioner(c).CreateProject(cmd.Context(), cfg, share)
		if err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		return printResult(map[string]string{"projectItemId": id}, "Project created: %s\n", id)
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCreateCmd.Flags().BoolVar(&projectOrgShare, "orgshare", false, "share the project with the organization")
}
