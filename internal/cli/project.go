package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"subcut/internal/project"
)

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage project directories in the workdir",
}

var projectCreateCmd = &cobra.Command{
	Use:   "create [title]",
	Short: "Create a new project directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := project.NewStore(cfg.Workdir)
		p, err := store.Create(args[0])
		if err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}
		fmt.Printf("Created project %s\n", p.Meta.ID)
		fmt.Printf("  Directory: %s\n", p.Dir)
		fmt.Printf("  Video:     %s\n", p.VideoPath())
		fmt.Printf("  Table:     %s\n", p.TablePath())
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		store := project.NewStore(cfg.Workdir)
		projects, err := store.List()
		if err != nil {
			return fmt.Errorf("failed to list projects: %w", err)
		}
		if len(projects) == 0 {
			fmt.Println("No projects found.")
			return nil
		}
		for _, p := range projects {
			fmt.Printf("%s  %s  (%s)\n",
				p.Meta.ID, p.Meta.Title, p.Meta.CreatedAt.Format("2006-01-02 15:04"))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectCreateCmd)
	projectCmd.AddCommand(projectListCmd)
}
