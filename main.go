package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"slideforge/template"
)

func main() {
	app := NewApp()
	if err := app.Startup(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "startup failed: %v\n", err)
		os.Exit(1)
	}
	defer app.Shutdown()

	if err := newRootCommand(app).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand(app *App) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "slideforge",
		Short:         "PPTX template ingestion, data binding and export",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		newParseCommand(app),
		newListCommand(app),
		newShowCommand(app),
		newDeleteCommand(app),
		newBindCommand(app),
		newConvertCommand(app),
		newExportCommand(app),
		newGenerateCommand(app),
		newGetExportCommand(app),
		newCleanupCommand(app),
		newConfigCommand(app),
	)
	return rootCmd
}

func newParseCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "parse <file.pptx>",
		Short: "Parse a PPTX template and store it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := app.UploadTemplate(args[0], filepath.Base(args[0]))
			if err != nil {
				return err
			}
			fmt.Printf("parsed %s: %d slides, %d variables\n",
				parsed.TemplateID, len(parsed.Slides), len(parsed.Variables))
			for _, v := range parsed.Variables {
				fmt.Printf("  %s  (%s)\n", v.Name, v.Placeholder)
			}
			return nil
		},
	}
}

func newListCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored templates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := app.ListTemplates()
			if err != nil {
				return err
			}
			if len(templates) == 0 {
				fmt.Println("no templates stored")
				return nil
			}
			for _, t := range templates {
				fmt.Printf("%s  %-30s  slides=%d vars=%d parsed=%s\n",
					t.TemplateID, t.Name, len(t.Slides), len(t.Variables), t.Metadata.ParsedAt)
			}
			return nil
		},
	}
}

func newShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <template-id>",
		Short: "Print a stored template as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.GetTemplate(args[0])
			if err != nil {
				return err
			}
			if t == nil {
				return fmt.Errorf("template not found: %s", args[0])
			}
			out, err := json.MarshalIndent(t, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newDeleteCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <template-id>",
		Short: "Delete a stored template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.DeleteTemplate(args[0]); err != nil {
				return err
			}
			fmt.Printf("deleted %s\n", args[0])
			return nil
		},
	}
}

func newBindCommand(app *App) *cobra.Command {
	var dataFile string
	cmd := &cobra.Command{
		Use:   "bind <template-id>",
		Short: "Bind data values into a template and print the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDataBinding(dataFile)
			if err != nil {
				return err
			}
			bound, err := app.ApplyTemplateData(args[0], data)
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(bound, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON file with variable values (default stdin)")
	return cmd
}

func newConvertCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <template-id>",
		Short: "Convert a stored template to a generic presentation and print it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pres, err := app.ConvertTemplate(args[0])
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(pres, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newExportCommand(app *App) *cobra.Command {
	var dataFile string
	cmd := &cobra.Command{
		Use:   "export <template-id>",
		Short: "Bind data into a template and write it out as .pptx",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readDataBinding(dataFile)
			if err != nil {
				return err
			}
			result, err := app.ExportTemplate(args[0], data)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d bytes)\n", result.FilePath, result.Size)
			return nil
		},
	}
	cmd.Flags().StringVarP(&dataFile, "data", "d", "", "JSON file with variable values (default stdin)")
	return cmd
}

func newGenerateCommand(app *App) *cobra.Command {
	req := GenerateRequest{}
	cmd := &cobra.Command{
		Use:   "generate <topic>",
		Short: "Draft a presentation with the configured LLM and export it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Topic = strings.Join(args, " ")
			result, err := app.GeneratePresentation(req)
			if err != nil {
				return err
			}
			fmt.Printf("wrote %s (%d bytes)\n", result.FilePath, result.Size)
			return nil
		},
	}
	cmd.Flags().IntVarP(&req.SlideCount, "slides", "n", 5, "Number of slides")
	cmd.Flags().StringVar(&req.Audience, "audience", "", "Target audience")
	cmd.Flags().StringVar(&req.Style, "style", "", "Presentation style")
	cmd.Flags().StringVar(&req.Language, "language", "", "Output language")
	cmd.Flags().StringVar(&req.Extra, "extra", "", "Additional requirements")
	return cmd
}

func newGetExportCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "get-export <file-name>",
		Short: "Resolve an exported file name to its path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := app.GetExportFile(args[0])
			if err != nil {
				return err
			}
			fmt.Println(path)
			return nil
		},
	}
}

func newCleanupCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Remove templates older than the configured retention",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := app.CleanupTemplates()
			if err != nil {
				return err
			}
			fmt.Printf("removed %d expired templates\n", n)
			return nil
		},
	}
}

func newConfigCommand(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configuration",
	}
	cmd.AddCommand(newConfigShowCommand(app), newConfigSetCommand(app))
	return cmd
}

func newConfigShowCommand(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the current configuration as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.GetConfig()
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(cfg, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		},
	}
}

func newConfigSetCommand(app *App) *cobra.Command {
	var (
		provider  string
		apiKey    string
		baseURL   string
		model     string
		maxTokens int
		language  string
	)
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update configuration values and save them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := app.GetConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("provider") {
				cfg.LLMProvider = provider
			}
			if cmd.Flags().Changed("api-key") {
				cfg.APIKey = apiKey
			}
			if cmd.Flags().Changed("base-url") {
				cfg.BaseURL = baseURL
			}
			if cmd.Flags().Changed("model") {
				cfg.ModelName = model
			}
			if cmd.Flags().Changed("max-tokens") {
				cfg.MaxTokens = maxTokens
			}
			if cmd.Flags().Changed("language") {
				cfg.Language = language
			}
			if err := app.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Println("configuration saved")
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "LLM provider (OpenAI, OpenRouter, Anthropic)")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "Provider API key")
	cmd.Flags().StringVar(&baseURL, "base-url", "", "Provider base URL override")
	cmd.Flags().StringVar(&model, "model", "", "Model name")
	cmd.Flags().IntVar(&maxTokens, "max-tokens", 0, "Completion token limit")
	cmd.Flags().StringVar(&language, "language", "", "Default output language")
	return cmd
}

func readDataBinding(dataFile string) (template.DataBinding, error) {
	source := "stdin"
	var raw []byte
	var err error
	if dataFile == "" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		source = dataFile
		raw, err = os.ReadFile(dataFile)
	}
	if err != nil {
		return nil, WrapOperationError("read data values", err)
	}
	data := template.DataBinding{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, WrapOperationErrorf("decode data values from %s as a JSON object", err, source)
	}
	return data, nil
}
