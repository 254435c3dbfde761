package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// newCheckCommand creates the "check" subcommand that composes templates and reports
// composition errors without rendering.
func newCheckCommand(opts *Options) *cobra.Command {
	return &cobra.Command{
		Use:   "check [template-name...]",
		Short: "Compose templates and report include/replace errors",
		Long:  "check composes the named templates (every template under the templates directory when none are named) and reports missing templates, cycles and malformed directives.",
		RunE: func(cmd *cobra.Command, args []string) error {
			compiler, err := opts.newCompiler()
			if err != nil {
				return err
			}

			names := args
			if len(names) == 0 {
				if names, err = compiler.TemplateNames(); err != nil {
					return err
				}
			}

			failed := 0
			for _, name := range names {
				raw, found, err := compiler.LoadTemplateNamed(name)
				if err == nil && !found {
					err = fmt.Errorf("template not found")
				}
				if err == nil {
					_, err = compiler.Compile(raw)
				}

				if err != nil {
					failed++
					opts.logger.Error("template failed", "template", name, "error", err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "ok  %s\n", name)
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d templates failed", failed, len(names))
			}
			return nil
		},
	}
}
