package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stmtlens/stmtlens/internal/logger"
	"github.com/stmtlens/stmtlens/internal/templates"
)

func newTemplatesCommand() *cobra.Command {
	templatesCmd := &cobra.Command{
		Use:   "templates",
		Short: "Manage column mapping templates",
	}
	templatesCmd.AddCommand(newTemplatesListCommand())
	templatesCmd.AddCommand(newTemplatesAddCommand())
	return templatesCmd
}

func newTemplatesListCommand() *cobra.Command {
	var templateDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the merged global and user templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			return runTemplatesList(cmd.OutOrStdout(), p.loadTemplates(cmd.Context(), templateDir))
		},
	}

	cmd.Flags().StringVar(&templateDir, "template-dir", "", "directory holding the template documents")

	return cmd
}

func runTemplatesList(out io.Writer, set *templates.Set) error {
	if set.Len() == 0 {
		fmt.Fprintln(out, "No templates.")
		return nil
	}
	for _, name := range set.Names() {
		m, _ := set.Get(name)
		fmt.Fprintf(out, "%s: %s\n", name, m)
	}
	return nil
}

func newTemplatesAddCommand() *cobra.Command {
	var mapping []string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Save a column mapping as a user template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := loadProject(cmd)
			if err != nil {
				return err
			}
			return runTemplatesAdd(cmd.Context(), cmd.OutOrStdout(), p, args[0], mapping)
		},
	}

	cmd.Flags().StringArrayVar(&mapping, "map", nil, "column mapping field=column, repeatable")
	_ = cmd.MarkFlagRequired("map")

	return cmd
}

func runTemplatesAdd(ctx context.Context, out io.Writer, p *project, name string, pairs []string) error {
	m, err := parseMapping(pairs)
	if err != nil {
		return err
	}
	path := p.Config.UserTemplatePath(p.Dir)
	if err := templates.SaveUser(path, name, m); err != nil {
		return err
	}
	log := logger.FromContext(ctx)
	log.Info().Str("template", name).Str("path", path).Msg("template saved")
	fmt.Fprintf(out, "Saved template %s (%s)\n", name, m)
	return nil
}
