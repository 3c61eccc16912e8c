package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phantom-spire/core-studio/src/client/api"
)

var (
	projectPage   int
	projectLimit  int
	projectStatus string

	projectName  string
	projectDesc  string
	projectOwner string
	projectTags  string
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage platform projects",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initClient(); err != nil {
			return err
		}
		list, err := apiClient.ListProjects(projectPage, projectLimit, projectStatus)
		if err != nil {
			return err
		}

		if getOutputFormat() == "json" {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(list)
		}
		for _, p := range list.Items {
			fmt.Printf("%-28s %-10s %s\n", p.ID, p.Status, p.Name)
		}
		fmt.Printf("\npage %d/%d, %d total\n",
			list.Pagination.Page, list.Pagination.TotalPages, list.Pagination.Total)
		return nil
	},
}

var projectsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initClient(); err != nil {
			return err
		}
		p, err := apiClient.GetProject(args[0])
		if err != nil {
			return err
		}
		return printEnvelope(p)
	},
}

var projectsCreateCmd = &cobra.Command{
	Use:   "create --name <name>",
	Short: "Create a project (requires admin token)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if projectName == "" {
			return fmt.Errorf("--name is required")
		}
		if err := initClient(); err != nil {
			return err
		}
		p, err := apiClient.CreateProject(&api.Project{
			Name:        projectName,
			Description: projectDesc,
			Status:      projectStatus,
			Owner:       projectOwner,
			Tags:        splitTags(projectTags),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Created project %s\n", p.ID)
		return nil
	},
}

var projectsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a project (requires admin token)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initClient(); err != nil {
			return err
		}
		p, err := apiClient.UpdateProject(args[0], &api.Project{
			Name:        projectName,
			Description: projectDesc,
			Status:      projectStatus,
			Owner:       projectOwner,
			Tags:        splitTags(projectTags),
		})
		if err != nil {
			return err
		}
		fmt.Printf("Updated project %s\n", p.ID)
		return nil
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project (requires admin token)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initClient(); err != nil {
			return err
		}
		if err := apiClient.DeleteProject(args[0]); err != nil {
			return err
		}
		fmt.Printf("Deleted project %s\n", args[0])
		return nil
	},
}

func init() {
	projectsListCmd.Flags().IntVar(&projectPage, "page", 1, "page number")
	projectsListCmd.Flags().IntVar(&projectLimit, "limit", 20, "page size")
	projectsListCmd.Flags().StringVar(&projectStatus, "status", "", "filter by status: draft, active, archived")

	for _, c := range []*cobra.Command{projectsCreateCmd, projectsUpdateCmd} {
		c.Flags().StringVar(&projectName, "name", "", "project name")
		c.Flags().StringVar(&projectDesc, "description", "", "project description")
		c.Flags().StringVar(&projectStatus, "status", "", "project status: draft, active, archived")
		c.Flags().StringVar(&projectOwner, "owner", "", "project owner")
		c.Flags().StringVar(&projectTags, "tags", "", "comma-separated tags")
	}

	projectsCmd.AddCommand(projectsListCmd)
	projectsCmd.AddCommand(projectsGetCmd)
	projectsCmd.AddCommand(projectsCreateCmd)
	projectsCmd.AddCommand(projectsUpdateCmd)
	projectsCmd.AddCommand(projectsDeleteCmd)
	rootCmd.AddCommand(projectsCmd)
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}
