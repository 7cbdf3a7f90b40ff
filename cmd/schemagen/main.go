// Command schemagen reads a YAML type catalog and writes the JSON Schema of
// one of its root types to stdout.
//
//	schemagen -catalog types.yaml -type Shape
//	schemagen -catalog types.yaml -settings schemagen.yaml -type Shape -output yaml
//	schemagen -catalog types.yaml -list
//	schemagen -catalog types.yaml -var id_pattern='^[a-z]+$' -type Shape
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/reglet-dev/schemagen"
	"github.com/reglet-dev/schemagen/application/config"
	"github.com/reglet-dev/schemagen/application/template"
	"github.com/reglet-dev/schemagen/domain/errors"
	"github.com/reglet-dev/schemagen/infrastructure/filestore"
	"github.com/reglet-dev/schemagen/log"
)

// Exit codes.
const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type cliFlags struct {
	catalog   string
	settings  string
	root      string
	output    string
	out       string
	logLevel  string
	logFormat string
	list      bool
	vars      varFlag
}

// varFlag collects repeated -var name=value pairs.
type varFlag map[string]any

func (v varFlag) String() string {
	pairs := make([]string, 0, len(v))
	for k, val := range v {
		pairs = append(pairs, fmt.Sprintf("%s=%v", k, val))
	}
	return strings.Join(pairs, ",")
}

func (v varFlag) Set(s string) error {
	name, value, ok := strings.Cut(s, "=")
	if !ok || name == "" {
		return fmt.Errorf("expected name=value, got %q", s)
	}
	v[name] = value
	return nil
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("schemagen", flag.ContinueOnError)
	fs.SetOutput(stderr)

	f := cliFlags{vars: varFlag{}}
	fs.StringVar(&f.catalog, "catalog", "", "YAML type catalog (required)")
	fs.StringVar(&f.settings, "settings", filestore.DefaultSettingsPath, "YAML generator settings; defaults apply when the file is missing")
	fs.StringVar(&f.root, "type", "", "root type to generate; optional when the catalog has a single root")
	fs.StringVar(&f.output, "output", "", "output format: json or yaml (overrides settings)")
	fs.StringVar(&f.out, "out", "", "output file (stdout if empty)")
	fs.StringVar(&f.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	fs.StringVar(&f.logFormat, "log-format", log.FormatText, "log format: text or json")
	fs.BoolVar(&f.list, "list", false, "list the root types of the catalog and exit")
	fs.Var(f.vars, "var", "catalog template variable name=value, referenced as {{.vars.name}} (repeatable)")

	if err := fs.Parse(args); err != nil {
		return exitUsage
	}
	if f.catalog == "" {
		fmt.Fprintln(stderr, "schemagen: -catalog is required")
		fs.Usage()
		return exitUsage
	}

	level, err := log.ParseLevel(f.logLevel)
	if err != nil {
		fmt.Fprintf(stderr, "schemagen: %v\n", err)
		return exitUsage
	}
	logger := log.NewLogger(log.WithLevel(level), log.WithFormat(f.logFormat), log.WithWriter(stderr))

	if err := generate(f, stdout, logger); err != nil {
		detail := errors.ToErrorDetail(err)
		logger.Error("schema generation failed", "error", err, "type", detail.Type, "code", detail.Code)
		return exitError
	}
	return exitOK
}

func generate(f cliFlags, stdout io.Writer, logger *slog.Logger) error {
	var storeOpts []filestore.FileStoreOption
	if len(f.vars) > 0 {
		storeOpts = append(storeOpts, filestore.WithCatalogVars(template.NewGoTemplateEngine(), f.vars))
	}
	store := filestore.NewFileStore(storeOpts...)
	settings, err := store.LoadSettings(f.settings)
	if err != nil {
		return err
	}
	if f.output != "" {
		settings.Output = f.output
		if err := settings.Validate(); err != nil {
			return err
		}
	}

	provider, err := store.LoadCatalog(f.catalog)
	if err != nil {
		return err
	}
	logger.Debug("catalog loaded", "path", f.catalog, "roots", len(provider.List()))

	if f.list {
		for _, name := range provider.List() {
			fmt.Fprintln(stdout, name)
		}
		return nil
	}

	name := f.root
	if name == "" {
		roots := provider.List()
		if len(roots) != 1 {
			return fmt.Errorf("catalog has %d roots, choose one with -type: %s", len(roots), strings.Join(roots, ", "))
		}
		name = roots[0]
	}
	root, ok := provider.Lookup(name)
	if !ok {
		return fmt.Errorf("unknown root type %q", name)
	}

	doc, err := schemagen.Generate(root,
		schemagen.WithProvider(provider),
		schemagen.WithSettings(settings),
		schemagen.WithLogger(logger),
	)
	if err != nil {
		return err
	}
	out, err := schemagen.NewDocumentEncoder(settings).Encode(doc)
	if err != nil {
		return err
	}
	if settings.Output == config.OutputJSON {
		out = append(out, '\n')
	}

	if f.out != "" {
		if err := store.SaveDocument(f.out, out); err != nil {
			return err
		}
		logger.Info("schema written", "type", name, "path", f.out)
		return nil
	}
	_, err = stdout.Write(out)
	return err
}
