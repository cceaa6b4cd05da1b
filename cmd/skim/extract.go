package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/skim/internal/config"
	"github.com/jackzampolin/skim/internal/extract"
	"github.com/jackzampolin/skim/internal/pdf"
	"github.com/jackzampolin/skim/internal/providers"
	"github.com/jackzampolin/skim/internal/schema"
)

var (
	extractFile     string
	extractSchema   string
	extractProvider string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract structured fields from a PDF (no server required)",
	Long: `Extract runs the full pipeline in-process: read the PDF text, send it
to the configured LLM constrained by your field schema, and print the
validated result as JSON.

The schema is a JSON object mapping field names to type tokens
(str/int/float/list), with nested objects and lists of objects allowed:

  skim extract -f invoice.pdf -s '{"vendor": "str", "total": "float"}'
  skim extract -f invoice.pdf   # uses the configured default schema`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newCLILogger()

		cfgMgr, registry, err := loadServices(logger)
		if err != nil {
			return err
		}

		schemaJSON := extractSchema
		if schemaJSON == "" {
			schemaJSON = cfgMgr.Get().Defaults.Schema
		}
		if schemaJSON == "" {
			schemaJSON = schema.DefaultSchemaJSON
		}

		desc, err := schema.ParseDescriptionString(schemaJSON)
		if err != nil {
			return fmt.Errorf("invalid schema: %w", err)
		}
		record, err := schema.Build(desc, "")
		if err != nil {
			return fmt.Errorf("invalid schema: %w", err)
		}

		out, err := runExtraction(cmd.Context(), logger, cfgMgr, registry, extractProvider, extractFile, record)
		if err != nil {
			return err
		}

		fmt.Println(string(out))
		return nil
	},
}

// newCLILogger logs to stderr so result JSON on stdout stays parseable.
func newCLILogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
}

// loadServices builds the config manager and provider registry for
// in-process commands.
func loadServices(logger *slog.Logger) (*config.Manager, *providers.Registry, error) {
	cfgMgr, err := config.NewManager(cfgFile)
	if err != nil {
		return nil, nil, err
	}

	registry := providers.NewRegistry()
	registry.SetLogger(logger)
	registry.Reload(cfgMgr.Get().ToProviderRegistryConfig())

	return cfgMgr, registry, nil
}

// runExtraction reads a PDF, runs extraction against the selected provider,
// and returns the indented result JSON.
func runExtraction(ctx context.Context, logger *slog.Logger, cfgMgr *config.Manager, registry *providers.Registry, providerName, pdfPath string, record *schema.Record) ([]byte, error) {
	data, err := os.ReadFile(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", pdfPath, err)
	}

	text, err := pdf.NewReader(logger).Text(data)
	if err != nil {
		return nil, err
	}

	client, err := registry.DefaultLLM()
	if providerName != "" {
		client, err = registry.GetLLM(providerName)
	}
	if err != nil {
		return nil, fmt.Errorf("LLM provider not available: %w", err)
	}

	inv := &extract.Invoker{
		Client:      client,
		Temperature: cfgMgr.Get().Defaults.Temperature,
		Logger:      logger,
	}

	inst, err := inv.Extract(ctx, text, record)
	if err != nil {
		return nil, err
	}

	return json.MarshalIndent(inst, "", "  ")
}

func init() {
	extractCmd.Flags().StringVarP(&extractFile, "file", "f", "", "PDF file to extract from (required)")
	extractCmd.Flags().StringVarP(&extractSchema, "schema", "s", "", "field schema JSON (defaults to config)")
	extractCmd.Flags().StringVarP(&extractProvider, "provider", "p", "", "LLM provider name (defaults to config)")
	_ = extractCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(extractCmd)
}
