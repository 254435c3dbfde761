package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/livefir/goji"
)

// newRenderCommand creates the "render" subcommand that renders one template.
func newRenderCommand(opts *Options) *cobra.Command {
	var (
		file     string
		dataPath string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "render [template-name]",
		Short: "Render a named template, or a template file, against YAML/JSON data",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (file == "") {
				return fmt.Errorf("give either a template name or --file")
			}

			compiler, err := opts.newCompiler()
			if err != nil {
				return err
			}

			template, err := readSource(compiler, args, file)
			if err != nil {
				return err
			}

			data, err := loadData(dataPath, cmd.InOrStdin())
			if err != nil {
				return err
			}

			render, err := compiler.Compile(template)
			if err != nil {
				return err
			}
			out, err := render(data)
			if err != nil {
				return err
			}

			if output == "" {
				_, err := io.WriteString(cmd.OutOrStdout(), out)
				return err
			}
			if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
				return fmt.Errorf("create output directory: %w", err)
			}
			if err := os.WriteFile(output, []byte(out), 0o644); err != nil {
				return fmt.Errorf("write %q: %w", output, err)
			}
			opts.logger.Info("rendered template", "path", output, "bytes", len(out))
			return nil
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "Template file to render instead of a named template")
	cmd.Flags().StringVarP(&dataPath, "data", "d", "", "YAML or JSON data file (- for stdin)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write output to a file instead of stdout")

	return cmd
}

// readSource returns the raw template named by args or stored in file.
func readSource(compiler *goji.Compiler, args []string, file string) (string, error) {
	if file != "" {
		raw, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read template file: %w", err)
		}
		return string(raw), nil
	}

	raw, found, err := compiler.LoadTemplateNamed(args[0])
	if err != nil {
		return "", err
	}
	if !found {
		return "", fmt.Errorf("template %q not found in %s", args[0], compiler.Config().TemplatesDir)
	}
	return raw, nil
}

// loadData decodes the render context. JSON is read through the YAML decoder.
func loadData(path string, stdin io.Reader) (goji.Context, error) {
	if path == "" {
		return goji.Context{}, nil
	}

	var (
		raw []byte
		err error
	)
	if path == "-" {
		raw, err = io.ReadAll(stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}

	data := goji.Context{}
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parse data %q: %w", path, err)
	}
	return data, nil
}
