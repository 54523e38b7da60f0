package requests

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/transport-catalogue/internal/catalogue"
	"github.com/transport-catalogue/internal/common/logger"
	"github.com/transport-catalogue/internal/renderer"
	"github.com/transport-catalogue/internal/router"
	"github.com/transport-catalogue/pkg/transit/models"
)

// Defaults fill in settings a document leaves out.
type Defaults struct {
	Routing router.RoutingSettings
	Render  renderer.RenderSettings
}

// Processor runs whole batches: decode, load, build, answer, encode.
type Processor struct {
	defaults Defaults
	log      logger.Logger
}

func NewProcessor(defaults Defaults, log logger.Logger) *Processor {
	if log == nil {
		log = logger.Nop()
	}
	return &Processor{defaults: defaults, log: log}
}

// Process reads one document from in and writes the JSON array of answers
// to out.
func (p *Processor) Process(in io.Reader, out io.Writer) error {
	doc, err := Decode(in)
	if err != nil {
		return err
	}
	p.log.Info("Request document decoded",
		"base_requests", len(doc.BaseRequests),
		"stat_requests", len(doc.StatRequests))

	handler, err := p.Build(doc)
	if err != nil {
		return err
	}

	responses, err := handler.HandleAll(doc.StatRequests)
	if err != nil {
		return fmt.Errorf("answering stat requests: %w", err)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(responses); err != nil {
		return fmt.Errorf("encoding responses: %w", err)
	}
	return nil
}

// Resolve applies a document's own routing and render settings over d.
func (d Defaults) Resolve(doc *Document) Defaults {
	if doc.RoutingSettings != nil {
		d.Routing = *doc.RoutingSettings
	}
	if doc.RenderSettings != nil {
		d.Render = *doc.RenderSettings
	}
	return d
}

// Build loads the document's network and prepares a handler for it. A
// renderer is only built when the document asks for a map or carries
// render settings.
func (p *Processor) Build(doc *Document) (*Handler, error) {
	settings := p.defaults.Resolve(doc)
	var render *renderer.RenderSettings
	if doc.NeedsMap() || doc.RenderSettings != nil {
		render = &settings.Render
	}
	return BuildHandler(doc.Network(), settings.Routing, render, p.log)
}

// BuildHandler loads n into a catalogue and wires a router and, when render
// is non-nil, a map renderer over it.
func BuildHandler(n *models.Network, routing router.RoutingSettings, render *renderer.RenderSettings, log logger.Logger) (*Handler, error) {
	cat, err := catalogue.Load(n, log)
	if err != nil {
		return nil, err
	}

	rt, err := router.New(cat, routing, log)
	if err != nil {
		return nil, fmt.Errorf("building router: %w", err)
	}

	var mr *renderer.MapRenderer
	if render != nil {
		mr, err = renderer.New(*render)
		if err != nil {
			return nil, fmt.Errorf("building renderer: %w", err)
		}
	}

	return NewHandler(cat, rt, mr), nil
}
