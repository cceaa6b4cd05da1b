package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/skim/internal/home"
	"github.com/jackzampolin/skim/internal/schema"
	"github.com/jackzampolin/skim/internal/session"
)

var defineProvider string

var defineCmd = &cobra.Command{
	Use:   "define",
	Short: "Interactively define fields and extract from a PDF",
	Long: `Define walks through an interactive session: declare each field you
want (name, type, optional description), finish with "done", then name the
PDF to extract from. The result prints as JSON and is also saved to
~/.skim/outputs/latest_output.json.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newCLILogger()

		builder := session.NewBuilder(os.Stdin, os.Stdout)

		desc, err := builder.Collect()
		if err != nil {
			return err
		}
		if len(desc) == 0 {
			return fmt.Errorf("no fields defined")
		}

		record, err := schema.Build(desc, "")
		if err != nil {
			return err
		}

		pdfPath, ok := builder.PDFPath()
		if !ok {
			return fmt.Errorf("no PDF path provided")
		}

		cfgMgr, registry, err := loadServices(logger)
		if err != nil {
			return err
		}

		out, err := runExtraction(cmd.Context(), logger, cfgMgr, registry, defineProvider, pdfPath, record)
		if err != nil {
			return err
		}

		fmt.Println(string(out))

		// Saving the result is best effort; the printed JSON is the output.
		h, err := home.New(homeDir)
		if err == nil {
			err = h.EnsureExists()
		}
		if err == nil {
			err = os.WriteFile(h.LatestOutputPath(), append(out, '\n'), 0o644)
		}
		if err != nil {
			logger.Warn("failed to save result", "error", err)
		}

		return nil
	},
}

func init() {
	defineCmd.Flags().StringVarP(&defineProvider, "provider", "p", "", "LLM provider name (defaults to config)")

	rootCmd.AddCommand(defineCmd)
}
