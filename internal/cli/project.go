package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/props"
	"github.com/aretw0/props/internal/logging"
	"github.com/aretw0/props/pkg/adapters/loam"
	"github.com/aretw0/props/pkg/observability"
	"github.com/aretw0/props/pkg/ports"
	"github.com/aretw0/props/pkg/schema"
)

// Options holds the flags shared by every command.
type Options struct {
	Defs      string // Definition file or Loam directory
	ClassKey  string
	LogLevel  string
	LogFormat string
}

// Project is a set of declared models and the codec that serves them.
type Project struct {
	Doc    *schema.Document
	Models []*props.Model
	Codec  *props.Codec
	Logger *slog.Logger
}

// Logger builds the application logger from the log flags.
func (o Options) Logger() (*slog.Logger, error) {
	level, err := logging.ParseLevel(o.LogLevel)
	if err != nil {
		return nil, err
	}
	format, err := logging.ParseFormat(o.LogFormat)
	if err != nil {
		return nil, err
	}
	return logging.NewWithFormat(os.Stderr, level, format), nil
}

// LoadDocument reads model definitions. A directory is opened as a Loam
// repository with one model per document; anything else is read as a single
// YAML or JSON definition file.
func LoadDocument(ctx context.Context, path string) (*schema.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read definitions: %w", err)
	}
	if !info.IsDir() {
		return schema.LoadFile(path)
	}

	var src ports.DefinitionLoader
	src, err = loam.Open(path)
	if err != nil {
		return nil, err
	}
	return src.Document(ctx)
}

// Open loads and declares the definitions named by opts. Without definitions
// the project starts with an empty registry.
func Open(ctx context.Context, opts Options, hooks ...props.Hooks) (*Project, error) {
	logger, err := opts.Logger()
	if err != nil {
		return nil, err
	}

	doc := &schema.Document{}
	if opts.Defs != "" {
		doc, err = LoadDocument(ctx, opts.Defs)
		if err != nil {
			return nil, err
		}
	}

	reg := props.NewRegistry()
	models, err := schema.Declare(reg, doc)
	if err != nil {
		return nil, fmt.Errorf("invalid definitions: %w", err)
	}

	codecOpts := []props.Option{
		props.WithRegistry(reg),
		props.WithLogger(logger),
		props.WithHooks(observability.Combine(append([]props.Hooks{observability.LogHooks(logger)}, hooks...)...)),
	}
	if opts.ClassKey != "" {
		codecOpts = append(codecOpts, props.WithClassKey(opts.ClassKey))
	}

	logger.Debug("Definitions loaded", "source", opts.Defs, "models", len(models))
	return &Project{
		Doc:    doc,
		Models: models,
		Codec:  props.NewCodec(codecOpts...),
		Logger: logger,
	}, nil
}

// Model looks up a declared model by name.
func (p *Project) Model(name string) (*props.Model, error) {
	m, ok := p.Codec.Registry().Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", schema.ErrUnknownModel, name)
	}
	return m, nil
}
