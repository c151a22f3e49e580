// Copyright 2026 The Devkit Authors
// SPDX-License-Identifier: Apache-2.0

// Package bootstrap instantiates project templates into a working
// directory. A template is a directory tree of text files rendered
// through a Jinja2-compatible engine; files ending in ".include" are
// partials pulled in by other files and are not emitted themselves.
package bootstrap

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// Options parametrizes one instantiation.
type Options struct {
	// Template is the template name, a subdirectory of TemplatesRoot.
	Template string

	// TemplatesRoot is the directory holding all templates.
	TemplatesRoot string

	// DestDir receives the rendered tree. Defaults to the current
	// directory.
	DestDir string

	// Context holds the key=value template variables.
	Context map[string]string

	Logger *slog.Logger
}

// ParseContext turns key=value strings into a template context.
func ParseContext(args []string) (map[string]string, error) {
	context := make(map[string]string, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid argument %q, expected key=value", arg)
		}
		context[key] = value
	}
	return context, nil
}

// RenderError describes a failure in one template file, carrying
// enough source context to fix it without opening the file.
type RenderError struct {
	Path string
	Line int
	Msg  string

	// Excerpt holds numbered source lines around Line, empty when
	// the failure has no line attribution.
	Excerpt string
}

func (e *RenderError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "error in template %s\n", e.Path)
	if e.Line > 0 {
		fmt.Fprintf(&b, "  line %d: %s\n", e.Line, e.Msg)
	} else {
		fmt.Fprintf(&b, "  %s\n", e.Msg)
	}
	b.WriteString(e.Excerpt)
	return strings.TrimRight(b.String(), "\n")
}

// Instantiate renders the template into DestDir. All files are
// attempted even after a failure so that one run reports every broken
// template; the returned error joins the per-file failures.
func Instantiate(opts Options) error {
	if opts.Template == "" {
		return errors.New("a template name is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	destDir := opts.DestDir
	if destDir == "" {
		destDir = "."
	}
	context := opts.Context
	if context == nil {
		context = map[string]string{}
	}

	templateDir, err := filepath.EvalSymlinks(filepath.Join(opts.TemplatesRoot, opts.Template))
	if err != nil {
		return fmt.Errorf("template %q not found under %s", opts.Template, opts.TemplatesRoot)
	}

	manifest, err := loadManifest(templateDir)
	if err != nil {
		return err
	}
	if manifest == nil {
		// Without a manifest the engine has no declared parameters to
		// validate against, and undeclared variables render as empty
		// strings instead of failing.
		logger.Warn("template has no manifest, undefined variables render empty",
			"template", opts.Template, "manifest", ManifestName)
		manifest = &Manifest{}
	}
	if err := manifest.apply(context); err != nil {
		return err
	}

	// Partials resolve relative to the template root.
	set := pongo2.NewSet(opts.Template, pongo2.MustNewLocalFileSystemLoader(templateDir))

	var failures []error
	err = filepath.WalkDir(templateDir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		name := entry.Name()
		if strings.HasSuffix(name, ".include") || name == ManifestName {
			return nil
		}
		rel, err := filepath.Rel(templateDir, path)
		if err != nil {
			return err
		}
		if err := renderFile(set, path, filepath.Join(destDir, rel), context); err != nil {
			failures = append(failures, err)
			logger.Error("template rendering failed", "file", path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking template %s: %w", templateDir, err)
	}
	if len(failures) > 0 {
		return errors.Join(failures...)
	}
	logger.Info("project bootstrapped", "template", opts.Template)
	return nil
}

func renderFile(set *pongo2.TemplateSet, src, dest string, context map[string]string) error {
	content, err := os.ReadFile(src)
	if err != nil {
		return fmt.Errorf("reading %s: %w", src, err)
	}
	template, err := set.FromBytes(content)
	if err != nil {
		return renderError(src, string(content), err)
	}

	vars := make(pongo2.Context, len(context))
	for key, value := range context {
		vars[key] = value
	}
	rendered, err := template.Execute(vars)
	if err != nil {
		return renderError(src, string(content), err)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	return os.WriteFile(dest, []byte(rendered+"\n"), 0o644)
}

// renderError converts an engine error into a RenderError with a
// source excerpt around the failing line.
func renderError(path, content string, err error) error {
	var engineErr *pongo2.Error
	if !errors.As(err, &engineErr) {
		return &RenderError{Path: path, Msg: err.Error()}
	}

	renderErr := &RenderError{Path: path, Line: engineErr.Line}
	if engineErr.OrigError != nil {
		renderErr.Msg = engineErr.OrigError.Error()
	} else {
		renderErr.Msg = engineErr.Error()
	}
	if engineErr.Line > 0 {
		renderErr.Excerpt = excerpt(content, engineErr.Line)
	}
	return renderErr
}

// excerpt renders numbered source lines around lineno, marking the
// failing one.
func excerpt(content string, lineno int) string {
	lines := strings.Split(content, "\n")
	var b strings.Builder
	for i := max(0, lineno-4); i < min(len(lines), lineno+3); i++ {
		marker := "  "
		if i+1 == lineno {
			marker = " >"
		}
		fmt.Fprintf(&b, "    %4d%s %s\n", i+1, marker, lines[i])
	}
	return b.String()
}
