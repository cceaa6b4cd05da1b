package endpoints

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/skim/internal/api"
	"github.com/jackzampolin/skim/internal/extract"
	"github.com/jackzampolin/skim/internal/pdf"
	"github.com/jackzampolin/skim/internal/schema"
	"github.com/jackzampolin/skim/internal/svcctx"
)

// Failure kinds reported in error responses.
const (
	KindBadRequest = "bad_request"
	KindNoText     = "no_text"
	KindTransport  = "transport"
	KindValidation = "validation"
)

// ExtractEndpoint handles POST /api/extract with a multipart PDF upload.
type ExtractEndpoint struct{}

var _ api.Endpoint = (*ExtractEndpoint)(nil)

func (e *ExtractEndpoint) Route() (string, string, http.HandlerFunc) {
	return "POST", "/api/extract", e.handler
}

func (e *ExtractEndpoint) RequiresInit() bool { return true }

func (e *ExtractEndpoint) handler(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 32 << 20 // 32MB
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeErrorKind(w, http.StatusBadRequest, KindBadRequest, fmt.Sprintf("failed to parse form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeErrorKind(w, http.StatusBadRequest, KindBadRequest, "no file uploaded")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".pdf") {
		writeErrorKind(w, http.StatusBadRequest, KindBadRequest, fmt.Sprintf("file %s is not a PDF", header.Filename))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeErrorKind(w, http.StatusInternalServerError, KindBadRequest, fmt.Sprintf("failed to read upload: %v", err))
		return
	}

	extractor := svcctx.PDFFrom(r.Context())
	if extractor == nil {
		writeError(w, http.StatusServiceUnavailable, "pdf extractor not initialized")
		return
	}

	text, err := extractor.Text(data)
	if err != nil {
		if errors.Is(err, pdf.ErrInvalidPDF) {
			writeErrorKind(w, http.StatusBadRequest, KindBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("pdf extraction failed: %v", err))
		return
	}

	// A text-less document fails before any schema work or model call.
	if strings.TrimSpace(text) == "" {
		writeErrorKind(w, http.StatusUnprocessableEntity, KindNoText, "document contains no extractable text")
		return
	}

	cfgMgr := svcctx.ConfigFrom(r.Context())

	schemaJSON := r.FormValue("schema")
	if schemaJSON == "" {
		if cfgMgr != nil && cfgMgr.Get().Defaults.Schema != "" {
			schemaJSON = cfgMgr.Get().Defaults.Schema
		} else {
			schemaJSON = schema.DefaultSchemaJSON
		}
	}

	desc, err := schema.ParseDescriptionString(schemaJSON)
	if err != nil {
		writeErrorKind(w, http.StatusBadRequest, KindBadRequest, fmt.Sprintf("invalid schema: %v", err))
		return
	}
	record, err := schema.Build(desc, "")
	if err != nil {
		writeErrorKind(w, http.StatusBadRequest, KindBadRequest, fmt.Sprintf("invalid schema: %v", err))
		return
	}

	registry := svcctx.RegistryFrom(r.Context())
	if registry == nil {
		writeError(w, http.StatusServiceUnavailable, "provider registry not initialized")
		return
	}

	client, err := registry.DefaultLLM()
	if name := r.FormValue("provider"); name != "" {
		client, err = registry.GetLLM(name)
	}
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, fmt.Sprintf("LLM provider not available: %v", err))
		return
	}

	inv := &extract.Invoker{
		Client: client,
		Logger: svcctx.LoggerFrom(r.Context()),
	}
	if cfgMgr != nil {
		inv.Temperature = cfgMgr.Get().Defaults.Temperature
	}

	inst, err := inv.Extract(r.Context(), text, record)
	switch {
	case err == nil:
	case errors.Is(err, extract.ErrNoFields):
		writeErrorKind(w, http.StatusBadRequest, KindBadRequest, err.Error())
		return
	case errors.Is(err, extract.ErrNoText):
		writeErrorKind(w, http.StatusUnprocessableEntity, KindNoText, "document contains no extractable text")
		return
	case errors.Is(err, extract.ErrTransport):
		writeErrorKind(w, http.StatusBadGateway, KindTransport, err.Error())
		return
	case errors.Is(err, extract.ErrValidation):
		writeErrorKind(w, http.StatusInternalServerError, KindValidation, err.Error())
		return
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	out, err := json.Marshal(inst)
	if err != nil {
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("failed to serialize result: %v", err))
		return
	}

	// Keep a copy of the most recent result; saving is best effort.
	if h := svcctx.HomeFrom(r.Context()); h != nil {
		if err := os.WriteFile(h.LatestOutputPath(), append(out, '\n'), 0o644); err != nil {
			if logger := svcctx.LoggerFrom(r.Context()); logger != nil {
				logger.Warn("failed to save result", "path", h.LatestOutputPath(), "error", err)
			}
		}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(out)
}

func (e *ExtractEndpoint) Command(getServerURL func() string) *cobra.Command {
	var (
		filePath   string
		schemaJSON string
		provider   string
	)

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract structured fields from a PDF",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(filePath)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", filePath, err)
			}

			fields := map[string]string{}
			if schemaJSON != "" {
				fields["schema"] = schemaJSON
			}
			if provider != "" {
				fields["provider"] = provider
			}

			client := api.NewClient(getServerURL())
			var result json.RawMessage
			if err := client.PostMultipart(cmd.Context(), "/api/extract", "file", filePath, data, fields, &result); err != nil {
				return err
			}

			var pretty bytes.Buffer
			if err := json.Indent(&pretty, result, "", "  "); err != nil {
				return fmt.Errorf("failed to format result: %w", err)
			}
			fmt.Println(pretty.String())
			return nil
		},
	}

	cmd.Flags().StringVarP(&filePath, "file", "f", "", "PDF file to extract from (required)")
	cmd.Flags().StringVarP(&schemaJSON, "schema", "s", "", "field schema JSON (defaults to server config)")
	cmd.Flags().StringVarP(&provider, "provider", "p", "", "LLM provider name")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
