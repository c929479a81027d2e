package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/insightdelivered/card-statement-parser/internal/extractor"
	"github.com/insightdelivered/card-statement-parser/internal/metrics"
	"github.com/insightdelivered/card-statement-parser/internal/models"
	"github.com/insightdelivered/card-statement-parser/internal/parser"
	"github.com/insightdelivered/card-statement-parser/internal/pipeline"
	"github.com/insightdelivered/card-statement-parser/internal/writer"
)

// Version is reported by /api/health.
const Version = "2.0.0"

// ParseResponse is the JSON response from /api/parse and one element of
// the /api/batch response.
type ParseResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
	models.Result
	TotalDebit           string `json:"totalDebit"`
	TotalCredit          string `json:"totalCredit"`
	FormattedTotalDebit  string `json:"formattedTotalDebit,omitempty"`
	FormattedTotalCredit string `json:"formattedTotalCredit,omitempty"`
	CSV                  string `json:"csv,omitempty"`
}

// BatchResponse is the JSON response from /api/batch.
type BatchResponse struct {
	Results   []ParseResponse `json:"results"`
	Count     int             `json:"count"`
	Succeeded int             `json:"succeeded"`
	Partial   int             `json:"partial"`
	Failed    int             `json:"failed"`
}

// IssuerInfo describes one supported issuer.
type IssuerInfo struct {
	ID       models.IssuerID `json:"id"`
	Name     string          `json:"name"`
	Currency string          `json:"currency"`
}

// Handler holds the HTTP handlers for the API.
type Handler struct {
	Pipeline  *pipeline.Orchestrator
	Metrics   *metrics.Metrics
	StaticDir string
}

// NewApp returns a fiber app with middleware and routes registered.
func NewApp(h *Handler, bodyLimitMB int) *fiber.App {
	if bodyLimitMB <= 0 {
		bodyLimitMB = 32
	}
	app := fiber.New(fiber.Config{
		AppName:      "card-statement-parser",
		BodyLimit:    bodyLimitMB << 20,
		ErrorHandler: errorHandler,
	})
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Content-Type",
	}))
	h.RegisterRoutes(app)
	return app
}

// RegisterRoutes sets up the HTTP routes.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Get("/api/health", h.HandleHealth)
	app.Get("/api/issuers", h.HandleIssuers)
	app.Get("/api/categories", h.HandleCategories)
	app.Post("/api/parse", h.HandleParse)
	app.Post("/api/batch", h.HandleBatch)
	app.Get("/metrics", adaptor.HTTPHandler(h.Metrics.Handler()))

	if h.StaticDir != "" {
		app.Static("/", h.StaticDir)
	}
}

func (h *Handler) HandleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":        "ok",
		"engine":        "fiber",
		"version":       Version,
		"ai_configured": h.Pipeline.AIConfigured(),
	})
}

func (h *Handler) HandleIssuers(c *fiber.Ctx) error {
	sets := parser.Issuers()
	out := make([]IssuerInfo, 0, len(sets))
	for _, s := range sets {
		out = append(out, IssuerInfo{ID: s.ID, Name: s.Name, Currency: s.Currency})
	}
	return c.JSON(out)
}

func (h *Handler) HandleCategories(c *fiber.Ctx) error {
	return c.JSON(parser.Categories())
}

// HandleParse parses one statement. The statement comes from the multipart
// "file" field, or from a "text" field holding already extracted text.
func (h *Handler) HandleParse(c *fiber.Ctx) error {
	force := formBool(c, "force_ai")

	var res models.Result
	if text := c.FormValue("text"); text != "" {
		name := c.FormValue("name", "text")
		res = h.Pipeline.ParseText(c.UserContext(), name, text, force)
	} else {
		fh, err := c.FormFile("file")
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "No file uploaded. Use form field 'file' or 'text'.")
		}
		res = h.Pipeline.Parse(c.UserContext(), readUpload(fh), force)
	}

	resp := newParseResponse(res, formBool(c, "csv"))
	if !resp.Success {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}
	return c.JSON(resp)
}

// HandleBatch parses every file in the multipart "files" field.
func (h *Handler) HandleBatch(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("Failed to parse form: %v", err))
	}
	files := form.File["files"]
	if len(files) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "No files uploaded. Use form field 'files'.")
	}

	docs := make([]extractor.Document, 0, len(files))
	for _, fh := range files {
		docs = append(docs, readUpload(fh))
	}

	results := h.Pipeline.ParseBatch(c.UserContext(), docs, formBool(c, "force_ai"))

	resp := BatchResponse{Results: make([]ParseResponse, 0, len(results)), Count: len(results)}
	for _, r := range results {
		switch r.Status {
		case models.StatusSuccess:
			resp.Succeeded++
		case models.StatusPartial:
			resp.Partial++
		default:
			resp.Failed++
		}
		resp.Results = append(resp.Results, newParseResponse(r, false))
	}
	return c.JSON(resp)
}

func newParseResponse(res models.Result, withCSV bool) ParseResponse {
	resp := ParseResponse{
		Success: res.Status != models.StatusFailed,
		Result:  res,
	}
	if !resp.Success {
		resp.Error = res.Reason
	}

	debit, credit := models.Totals(res.Txns())
	resp.TotalDebit = debit.StringFixed(2)
	resp.TotalCredit = credit.StringFixed(2)
	if res.StatementRecord == nil {
		return resp
	}
	resp.FormattedTotalDebit = models.FormatMoney(debit, res.Currency)
	resp.FormattedTotalCredit = models.FormatMoney(credit, res.Currency)

	if withCSV {
		var buf bytes.Buffer
		if err := (&writer.CSVWriter{IncludeHeader: true}).Write(&buf, res.StatementRecord); err != nil {
			slog.Warn("csv generation failed", "parse_id", res.ParseID, "error", err)
		} else {
			resp.CSV = buf.String()
		}
	}
	return resp
}

// readUpload loads one multipart file. The format is left to the
// extractor, which sniffs the content; a read error stays on the document
// so the file still gets its own FAILED result.
func readUpload(fh *multipart.FileHeader) extractor.Document {
	doc := extractor.Document{Name: fh.Filename}
	f, err := fh.Open()
	if err != nil {
		doc.Err = fmt.Errorf("opening upload: %w", err)
		return doc
	}
	defer f.Close()

	if doc.Data, err = io.ReadAll(f); err != nil {
		doc.Err = fmt.Errorf("reading upload: %w", err)
	}
	return doc
}

func formBool(c *fiber.Ctx, key string) bool {
	v, err := strconv.ParseBool(c.FormValue(key))
	return err == nil && v
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		slog.Error("request failed", "path", c.Path(), "error", err)
	}
	return c.Status(code).JSON(fiber.Map{"success": false, "error": err.Error()})
}
