package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"excalibur-cli/internal/provision"
)

var workflowStart bool

var workflowCmd = &cobra.Command{
	Use:   "workflow <geoJsonFileName> <projectConfigFileName>",
	Short: "Publish a GeoJSON layer, a video service and a project linking both",
	Long: `Runs the whole provisioning sequence:

  1. publish the GeoJSON file and add it to a web map (the project config's
     webmapId, or a new web map)
  2. create a livestream video service named after the GeoJSON file
  3. create the project referencing the video service and the web map

Every item is shared with --groupid and/or --org. The sequence stops at the
first failure; items created by earlier steps are left in place.`,
	Example: `  excalibur-cli workflow fire ridge-fire -g 3f1c... -r rtsp://10.0.0.8/stream1`,
	Args:    cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(true)
		if err != nil {
			return err
		}
		geoPath, err := fileOrLookup(args[0], s.paths.GeoJSONFile)
		if err != nil {
			return err
		}
		projectPath, err := fileOrLookup(args[1], s.paths.ProjectConfigFile)
		if err != nil {
			return err
		}
		project, err := provision.LoadProjectConfig(projectPath)
		if err != nil {
			return err
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
		res, err := newProvisioner(c).RunWorkflow(cmd.Context(), provision.WorkflowInput{
			GeoJSONPath:    geoPath,
			Project:        project,
			StreamURL:      s.streamURL,
			WebMapTemplate: s.paths.WebMapTemplate(),
			Sharing:        conn.sharing(),
			StartStream:    workflowStart,
		})
		if err != nil {
			reportPartial(res)
			return fmt.Errorf("workflow: %w", err)
		}

		return printResult(map[string]string{
			"webmapItemId":   res.Publish.WebMapID,
			"serviceItemId":  res.Video.ItemID,
			"serviceUrl":     res.Video.URL,
			"projectItemId":  res.ProjectID,
			"featureService": res.Publish.Service.ServiceURL,
		}, "project made - itemId: %s\nservice made - url: %s\n", res.ProjectID, res.Video.URL)
	},
}

// reportPartial lists what the failed run left on the portal.
func reportPartial(res provision.WorkflowResult) {
	created := [][]string{}
	if res.Publish.WebMapCreated {
		created = append(created, []string{"web map", res.Publish.WebMapID})
	}
	if res.Publish.GeoJSONItemID != "" {
		created = append(created, []string{"geojson item", res.Publish.GeoJSONItemID})
	}
	if res.Publish.Service.ServiceItemID != "" {
		created = append(created, []string{"feature service", res.Publish.Service.ServiceItemID})
	}
	if res.Video.ItemID != "" {
		created = append(created, []string{"video service", res.Video.ItemID})
	}
	if len(created) == 0 {
		return
	}
	fmt.Println("Items created before the failure:")
	fmt.Println(renderTable([]string{"KIND", "ITEM ID"}, created))
}

func init() {
	rootCmd.AddCommand(workflowCmd)
	workflowCmd.Flags().BoolVar(&workflowStart, "start", false, "start the video stream once the service is created")
}
