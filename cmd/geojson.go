package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"excalibur-cli/internal/provision"
)

var geojsonCmd = &cobra.Command{
	Use:   "geojson",
	Short: "Publish GeoJSON files as feature layers",
}

var geojsonPublishCmd = &cobra.Command{
	Use:   "publish <geoJsonFileName> [webmapId]",
	Short: "Publish a GeoJSON file and add it to a web map",
	Long: `Uploads a GeoJSON file from GEOJSON_DATA_DIR (the .geojson extension is
optional), publishes it as a hosted feature service named after the file and
adds the layer on top of the web map. Without a web map id a new web map is
created from base-webmap-sample.json in PROJECT_CONFIG_DIR.`,
	Example: `  excalibur-cli geojson publish fire 9a4e8c... -g 3f1c...`,
	Args:    cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(true)
		if err != nil {
			return err
		}
		path, err := fileOrLookup(args[0], s.paths.GeoJSONFile)
		if err != nil {
			return err
		}
		opts := provision.PublishOptions{
			Sharing:        conn.sharing(),
			WebMapTemplate: s.paths.WebMapTemplate(),
		}
		if len(args) == 2 {
			opts.WebMapID = args[1]
		}

		c, err := connect(cmd.Context(), s, false)
		if err != nil {
			return err
		}
		res, err := newProvisioner(c).PublishGeoJSON(cmd.Context(), path, opts)
		if err != nil {
			return fmt.Errorf("publish geojson: %w", err)
		}
		return printResult(map[string]string{
			"webmapItemId":  res.WebMapID,
			"serviceItemId": res.Service.ServiceItemID,
			"serviceUrl":    res.Service.ServiceURL,
		}, "Published GeoJSON and updated web map - web map itemId: %s\n", res.WebMapID)
	},
}

func init() {
	rootCmd.AddCommand(geojsonCmd)
	geojsonCmd.AddCommand(geojsonPublishCmd)
}
