package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"excalibur-cli/internal/client"
	"excalibur-cli/internal/provision"
)

var videoStart bool

var videoCmd = &cobra.Command{
	Use:   "video",
	Short: "Manage livestream video services",
}

var videoCreateCmd = &cobra.Command{
	Use:   "create <configFileName> <serviceName>",
	Short: "Create a livestream video service",
	Long: `Creates a video service named serviceName that streams from the --rtsp url
(or URL_TO_VIDEO_STREAM). The project config file must exist in
PROJECT_CONFIG_DIR. Fails without creating anything when the service name is
already taken.`,
	Example: `  excalibur-cli video create ridge-fire ridgecam -r rtsp://10.0.0.8/stream1 -g 3f1c...`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(true)
		if err != nil {
			return err
		}
		if _, err := fileOrLookup(args[0], s.paths.ProjectConfigFile); err != nil {
			return err
		}
		if args[1] == "" {
			return fmt.Errorf("%w: serviceName argument is required", client.ErrMissingArgument)
		}
		if err := s.requireVideo(); err != nil {
			return err
		}
		if err := s.requireStream(); err != nil {
			return err
		}

		c, err := connect(cmd.Context(), s, false)
		if err != nil {
			return err
		}
		svc, err := newProvisioner(c).CreateVideoService(cmd.Context(), args[1], s.streamURL, provision.VideoOptions{
			Sharing: conn.sharing(),
			Start:   videoStart,
		})
		if err != nil {
			return fmt.Errorf("create video service: %w", err)
		}
		return printResult(svc, "Service created: %s\nService url: %s\n", svc.ItemID, svc.URL)
	},
}

var videoStartCmd = &cobra.Command{
	Use:     "start <serviceUrl>",
	Short:   "Start the stream of a video service",
	Example: `  excalibur-cli video start https://gis.example.com/video/rest/services/ridgecam/VideoServer`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(false)
		if err != nil {
			return err
		}
		c, err := connect(cmd.Context(), s, false)
		if err != nil {
			return err
		}
		return newProvisioner(c).StartStream(cmd.Context(), args[0])
	},
}

var videoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List services on the video server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(false)
		if err != nil {
			return err
		}
		if err := s.requireVideo(); err != nil {
			return err
		}
		c, err := connect(cmd.Context(), s, false)
		if err != nil {
			return err
		}
		services, err := c.ListVideoServices(cmd.Context())
		if err != nil {
			return fmt.Errorf("list video services: %w", err)
		}
		sort.Slice(services, func(i, j int) bool { return services[i].Name < services[j].Name })

		if jsonOutput {
			return printJSON(services)
		}
		rows := make([][]string, 0, len(services))
		for _, svc := range services {
			rows = append(rows, []string{svc.Name, svc.Type})
		}
		fmt.Println(renderTable([]string{"NAME", "TYPE"}, rows))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(videoCmd)
	videoCmd.AddCommand(videoCreateCmd)
	videoCmd.AddCommand(videoStartCmd)
	videoCmd.AddCommand(videoListCmd)
	videoCreateCmd.Flags().BoolVar(&videoStart, "start", false, "start the stream once the service is created")
}
