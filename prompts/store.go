// Package prompts holds the prompt templates of the pipeline stages
package prompts

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"
	"strings"
	"text/template"
)

// ErrTemplateMissing is returned when a stage has no template
var ErrTemplateMissing = errors.New("prompt template missing")

// Ext is the file extension of template files
const Ext = ".txt"

//go:embed templates/*.txt
var defaultFS embed.FS

// Store maps stage names to template text
type Store struct {
	templates map[string]string
}

// New returns a Store with the embedded default templates
func New() *Store {
	sub, err := fs.Sub(defaultFS, "templates")
	if err != nil {
		panic(err)
	}
	s, err := NewFromFS(sub)
	if err != nil {
		panic(err)
	}
	return s
}

// NewFromFS loads every <stage>.txt file at the root of fsys
func NewFromFS(fsys fs.FS) (*Store, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("read templates: %w", err)
	}
	s := &Store{templates: make(map[string]string, len(entries))}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || path.Ext(name) != Ext {
			continue
		}
		bs, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read template %s: %w", name, err)
		}
		s.templates[strings.TrimSuffix(name, Ext)] = string(bs)
	}
	return s, nil
}

// NewFromDir loads templates from a directory
func NewFromDir(dir string) (*Store, error) {
	return NewFromFS(os.DirFS(dir))
}

// NewFromMap returns a Store holding the given templates
func NewFromMap(templates map[string]string) *Store {
	s := &Store{templates: make(map[string]string, len(templates))}
	for k, v := range templates {
		s.templates[k] = v
	}
	return s
}

// Overlay returns a Store with the templates of base replaced by the ones of override
func Overlay(base *Store, override *Store) *Store {
	ret := NewFromMap(base.templates)
	if override != nil {
		for k, v := range override.templates {
			ret.templates[k] = v
		}
	}
	return ret
}

// Get returns the template text of a stage unmodified
func (s *Store) Get(stage string) (string, error) {
	v, ok := s.templates[stage]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrTemplateMissing, stage)
	}
	return v, nil
}

// Names returns the sorted stage names with a template
func (s *Store) Names() []string {
	ret := make([]string, 0, len(s.templates))
	for k := range s.templates {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

// Parse parses the template of a stage with the base functions and funcs
func (s *Store) Parse(stage string, funcs template.FuncMap) (*template.Template, error) {
	text, err := s.Get(stage)
	if err != nil {
		return nil, err
	}
	tpl, err := template.New(stage).Option("missingkey=error").Funcs(BaseFuncs()).Funcs(funcs).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse template %s: %w", stage, err)
	}
	return tpl, nil
}

// BaseFuncs returns the functions available to every template
func BaseFuncs() template.FuncMap {
	return template.FuncMap{
		"join":  strings.Join,
		"trim":  strings.TrimSpace,
		"upper": strings.ToUpper,
	}
}
