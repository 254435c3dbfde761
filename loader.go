package goji

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// errTemplateNotFound marks a missing file inside the cache loader; it never escapes.
var errTemplateNotFound = errors.New("template not found")

// LoadTemplateNamed returns the content of TemplatesDir/<name><ext>.
// found is false, with a nil error, when the file does not exist.
func (c *Compiler) LoadTemplateNamed(name string) (content string, found bool, err error) {
	return c.load(c.cfg, name, false)
}

// LoadPartialNamed returns the content of PartialsDir/<name><ext>.
// found is false, with a nil error, when the file does not exist.
func (c *Compiler) LoadPartialNamed(name string) (content string, found bool, err error) {
	return c.load(c.cfg, name, true)
}

// TemplateNames lists the templates under TemplatesDir, skipping the partials directory.
func (c *Compiler) TemplateNames() ([]string, error) {
	names, err := discoverTemplateFiles(c.cfg.TemplatesDir, c.cfg.TemplatesExt)
	if err != nil {
		return nil, fmt.Errorf("failed to list templates in %s: %w", c.cfg.TemplatesDir, err)
	}

	partials, err := filepath.Rel(c.cfg.TemplatesDir, c.cfg.PartialsPath())
	if err != nil || strings.HasPrefix(partials, "..") {
		return names, nil
	}
	prefix := filepath.ToSlash(partials) + "/"

	templates := names[:0]
	for _, name := range names {
		if !strings.HasPrefix(name, prefix) {
			templates = append(templates, name)
		}
	}
	return templates, nil
}

// load resolves name against the templates or partials directory and reads it,
// going through the template cache when caching is enabled.
func (c *Compiler) load(cfg Config, name string, partial bool) (string, bool, error) {
	path, err := c.resolve(cfg, name, partial)
	if err != nil {
		return "", false, err
	}

	if !cfg.CacheEnabled {
		content, err := readTemplate(path)
		if errors.Is(err, errTemplateNotFound) {
			return "", false, nil
		}
		return content, err == nil, err
	}

	content, hit, err := c.templates.GetOrLoad(path, cfg.CacheTTL, func() (string, error) {
		return readTemplate(path)
	})
	if errors.Is(err, errTemplateNotFound) {
		cfg.logger().Debug("template not found", "name", name, "path", path)
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}

	if hit {
		c.stats.IncrementTemplateHit()
	} else {
		c.stats.IncrementTemplateMiss()
		cfg.logger().Debug("template loaded", "name", name, "path", path)
	}
	return content, true, nil
}

// resolve maps a template name to an absolute file path
func (c *Compiler) resolve(cfg Config, name string, partial bool) (string, error) {
	dir := cfg.TemplatesDir
	if partial {
		dir = cfg.PartialsPath()
	}

	key := dir + "\x00" + name + "\x00" + cfg.TemplatesExt
	if path, ok := c.paths.Get(key); ok {
		return path, nil
	}

	path, err := filepath.Abs(filepath.Join(dir, filepath.FromSlash(name)+cfg.TemplatesExt))
	if err != nil {
		return "", fmt.Errorf("failed to resolve template %q: %w", name, err)
	}
	c.paths.Set(key, path)
	return path, nil
}

// readTemplate reads a template file as UTF-8. A byte order mark selects UTF-8 or UTF-16
// decoding and is dropped.
func readTemplate(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", errTemplateNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read template: %w", err)
	}

	data, _, err := transform.Bytes(unicode.BOMOverride(unicode.UTF8.NewDecoder()), raw)
	if err != nil {
		return "", fmt.Errorf("failed to decode template %s: %w", path, err)
	}
	return string(data), nil
}

// discoverTemplateFiles lists the files under dir carrying ext, as slash-separated names
// relative to dir with the extension removed.
func discoverTemplateFiles(dir, ext string) ([]string, error) {
	var names []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && filepath.Ext(path) == ext {
			rel, err := filepath.Rel(dir, path)
			if err != nil {
				return err
			}
			names = append(names, strings.TrimSuffix(filepath.ToSlash(rel), ext))
		}
		return nil
	})

	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return names, nil
}
