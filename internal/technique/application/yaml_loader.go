package technique

import (
	"fmt"
	"io/fs"
	stdpath "path"
	"strings"

	"gopkg.in/yaml.v3"

	technique "github.com/zjrosen/mise/internal/technique/domain"
)

// catalogRoot is the directory walked for catalog.yaml files.
const catalogRoot = "techniques"

// CatalogFile is the root structure for catalog.yaml
type CatalogFile struct {
	Techniques []TechniqueDef `yaml:"techniques"`
}

// TechniqueDef defines a single technique in YAML
type TechniqueDef struct {
	Key         string   `yaml:"key"`         // e.g., "mix"
	Name        string   `yaml:"name"`        // Human-readable name
	Description string   `yaml:"description"` // One-line description
	Template    string   `yaml:"template"`    // Template filename (e.g., "mix.tmpl")
	Labels      []string `yaml:"labels"`      // Optional labels for filtering
	Parameters  []string `yaml:"parameters"`  // Parameter names the template reads
}

// LoadCatalogFromYAML loads built-in techniques from every
// techniques/*/catalog.yaml in fsys.
func LoadCatalogFromYAML(fsys fs.FS) ([]*technique.Technique, error) {
	return LoadCatalogFromYAMLWithSource(fsys, technique.SourceBuiltIn)
}

// LoadCatalogFromYAMLWithSource loads techniques and tags them with source.
// Template paths are resolved relative to the catalog's directory.
func LoadCatalogFromYAMLWithSource(fsys fs.FS, source technique.Source) ([]*technique.Technique, error) {
	var all []*technique.Technique

	err := fs.WalkDir(fsys, catalogRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || d.Name() != "catalog.yaml" {
			return nil
		}

		content, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("read %s: %w", path, err)
		}

		var file CatalogFile
		if err := yaml.Unmarshal(content, &file); err != nil {
			return fmt.Errorf("parse %s: %w", path, err)
		}

		// fs.FS always uses forward slashes
		groupDir := stdpath.Dir(path)

		for _, def := range file.Techniques {
			def.Template = resolveTemplatePath(def.Template, groupDir, fsys)

			t, err := buildTechniqueFromDef(def, source)
			if err != nil {
				return fmt.Errorf("technique %q in %s: %w", def.Key, path, err)
			}
			all = append(all, t)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan technique catalogs: %w", err)
	}

	if len(all) == 0 {
		return nil, fmt.Errorf("no techniques found in %s/*/catalog.yaml", catalogRoot)
	}

	return all, nil
}

// resolveTemplatePath checks the group directory first, then falls back to
// shared templates in techniques/.
func resolveTemplatePath(template, groupDir string, fsys fs.FS) string {
	if template == "" {
		return ""
	}

	if strings.Contains(template, "/") {
		return template
	}

	local := stdpath.Join(groupDir, template)
	if _, err := fs.Stat(fsys, local); err == nil {
		return local
	}

	shared := stdpath.Join(catalogRoot, template)
	if _, err := fs.Stat(fsys, shared); err == nil {
		return shared
	}

	// Will fail when the template is first parsed
	return local
}

func buildTechniqueFromDef(def TechniqueDef, source technique.Source) (*technique.Technique, error) {
	builder := technique.NewBuilder(def.Key).
		Name(def.Name).
		Description(def.Description).
		Template(def.Template).
		Source(source)

	if len(def.Labels) > 0 {
		builder = builder.Labels(def.Labels...)
	}
	if len(def.Parameters) > 0 {
		builder = builder.Parameters(def.Parameters...)
	}

	return builder.Build()
}
