package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"excalibur-cli/internal/client"
	"excalibur-cli/pkg/models"
)

var itemsFolder string

var foldersCmd = &cobra.Command{
	Use:   "folders",
	Short: "Inspect the user's content folders",
}

var foldersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all folders",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(false)
		if err != nil {
			return err
		}
		c, err := connect(cmd.Context(), s, false)
		if err != nil {
			return err
		}
		folders, err := c.ListFolders(cmd.Context())
		if err != nil {
			return fmt.Errorf("list folders: %w", err)
		}

		if jsonOutput {
			return printJSON(folders)
		}
		rows := make([][]string, 0, len(folders))
		for _, f := range folders {
			rows = append(rows, []string{f.ID, f.Title, sinceMillis(f.Created)})
		}
		fmt.Println(renderTable([]string{"ID", "TITLE", "CREATED"}, rows))
		return nil
	},
}

var itemsCmd = &cobra.Command{
	Use:   "items",
	Short: "Inspect the user's content items",
}

var itemsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List items in the root folder or the folder given by --folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := loadSettings(false)
		if err != nil {
			return err
		}
		c, err := connect(cmd.Context(), s, false)
		if err != nil {
			return err
		}

		folderID := ""
		if itemsFolder != "" {
			folder, err := findFolder(cmd, c, itemsFolder)
			if err != nil {
				return err
			}
			folderID = folder.ID
		}
		content, err := c.GetUserContent(cmd.Context(), folderID, 100)
		if err != nil {
			return fmt.Errorf("list items: %w", err)
		}

		if jsonOutput {
			return printJSON(content.Items)
		}
		rows := make([][]string, 0, len(content.Items))
		for _, it := range content.Items {
			size := ""
			if it.Size > 0 {
				size = humanize.Bytes(uint64(it.Size))
			}
			rows = append(rows, []string{it.ID, it.Title, it.Type, size, sinceMillis(it.Modified)})
		}
		fmt.Println(renderTable([]string{"ID", "TITLE", "TYPE", "SIZE", "MODIFIED"}, rows, 3))
		return nil
	},
}

func findFolder(cmd *cobra.Command, c *client.PortalClient, title string) (models.Folder, error) {
	folders, err := c.ListFolders(cmd.Context())
	if err != nil {
		return models.Folder{}, fmt.Errorf("list folders: %w", err)
	}
	for _, f := range folders {
		if f.Title == title {
			return f, nil
		}
	}
	return models.Folder{}, fmt.Errorf("folder %q: %w", title, client.ErrNotFound)
}

func sinceMillis(ms int64) string {
	if ms <= 0 {
		return ""
	}
	return humanize.Time(time.UnixMilli(ms))
}

func init() {
	rootCmd.AddCommand(foldersCmd)
	foldersCmd.AddCommand(foldersListCmd)
	rootCmd.AddCommand(itemsCmd)
	itemsCmd.AddCommand(itemsListCmd)
	itemsListCmd.Flags().StringVar(&itemsFolder, "folder", "", "folder title (default is the root folder)")
}
