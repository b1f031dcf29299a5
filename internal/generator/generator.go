package generator

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/kolah/xml2openrpc/internal/config"
	"github.com/kolah/xml2openrpc/internal/convert"
	"github.com/kolah/xml2openrpc/internal/loader"
	"github.com/kolah/xml2openrpc/internal/model"
	"github.com/kolah/xml2openrpc/internal/render"
	"github.com/kolah/xml2openrpc/internal/templates"
	"github.com/kolah/xml2openrpc/internal/validate"
)

const titleTemplate = "title"

type Generator struct {
	config    *config.Config
	converter *convert.Converter
	engine    templates.Engine
	validator *validate.Validator
}

// Output is one rendered handler document. Filename is relative to the
// output directory: "<branch>/<handler>.<ext>".
type Output struct {
	Handler  string
	Filename string
	Content  []byte
}

// Sink receives outputs as soon as each handler has been rendered.
type Sink func(Output) error

type Report struct {
	Handlers    []convert.HandlerResult
	Diagnostics []convert.Diagnostic
	Written     int
	Aborted     int
	Skipped     int
	Methods     int
}

type titleData struct {
	Branch  string
	Handler string
}

func New(cfg *config.Config) (*Generator, error) {
	table, err := cfg.Table()
	if err != nil {
		return nil, fmt.Errorf("building type table: %w", err)
	}

	engine, err := templates.NewEngine(map[string]string{
		titleTemplate: cfg.Info.TitleTemplate,
	}, templates.DefaultFuncs())
	if err != nil {
		return nil, fmt.Errorf("creating template engine: %w", err)
	}

	g := &Generator{
		config:    cfg,
		converter: convert.New(convert.Options{Table: table, Strict: cfg.Strict}),
		engine:    engine,
	}

	if cfg.Validate {
		g.validator, err = validate.New()
		if err != nil {
			return nil, fmt.Errorf("creating validator: %w", err)
		}
	}

	return g, nil
}

// Generate converts every <handler> under root in document order and hands
// each converted document to sink before moving on. Aborted and skipped
// handlers produce no output. The report is returned even on error.
func (g *Generator) Generate(root *loader.Element, sink Sink) (*Report, error) {
	report := &Report{}

	for _, el := range root.Children {
		if el.Name != "handler" {
			continue
		}

		result := g.converter.Handler(el)
		report.Handlers = append(report.Handlers, result)
		report.Diagnostics = append(report.Diagnostics, result.Diagnostics...)

		if result.Fatal != nil {
			report.Aborted++
			return report, result.Fatal
		}

		switch result.Status {
		case convert.HandlerSkipped:
			report.Skipped++
			continue
		case convert.HandlerAborted:
			report.Aborted++
			continue
		}

		out, err := g.render(result)
		if err != nil {
			return report, fmt.Errorf("handler %s: %w", result.Name, err)
		}
		if err := sink(out); err != nil {
			return report, fmt.Errorf("handler %s: %w", result.Name, err)
		}
		report.Written++
		report.Methods += len(result.Methods)
	}

	return report, nil
}

// Document assembles the document for a converted handler.
func (g *Generator) Document(result convert.HandlerResult) (*model.Document, error) {
	title, err := g.engine.Execute(titleTemplate, titleData{
		Branch:  g.config.Branch,
		Handler: result.Name,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering title: %w", err)
	}

	return &model.Document{
		OpenRPC: model.OpenRPCVersion,
		Info: model.Info{
			Version: g.config.Info.Version,
			Title:   title,
		},
		Methods: result.Methods,
	}, nil
}

func (g *Generator) render(result convert.HandlerResult) (Output, error) {
	doc, err := g.Document(result)
	if err != nil {
		return Output{}, err
	}

	format := g.config.OutputFormat()

	if g.validator != nil {
		data, err := render.JSON(doc)
		if err != nil {
			return Output{}, fmt.Errorf("rendering JSON: %w", err)
		}
		if err := g.validator.Validate(data); err != nil {
			return Output{}, err
		}
	}

	content, err := render.Marshal(format, doc)
	if err != nil {
		return Output{}, fmt.Errorf("rendering %s: %w", format, err)
	}

	return Output{
		Handler:  result.Name,
		Filename: filepath.Join(g.config.Branch, result.Name+format.Extension()),
		Content:  content,
	}, nil
}

// HandlerErrors returns the errors of aborted handlers.
func (r *Report) HandlerErrors() error {
	var errs []error
	for _, h := range r.Handlers {
		if h.Status == convert.HandlerAborted && h.Err != nil {
			errs = append(errs, fmt.Errorf("handler %s: %w", h.Name, h.Err))
		}
	}
	return errors.Join(errs...)
}
