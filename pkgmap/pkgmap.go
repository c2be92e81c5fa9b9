// Package pkgmap implements package-identifier resolution over a package
// map: a small YAML or JSON document that maps logical package names to
// the absolute root URIs they are served from.
//
// A package map file looks like:
//
//	packages:
//	  mylib: file:///opt/pkgs/mylib/lib/
//	  remote: https://cdn.example.com/remote/1.2.0/
//
// A package URI such as package:mylib/data/greeting.txt resolves to the
// mapped root joined with the path after the package name, e.g.
// file:///opt/pkgs/mylib/lib/data/greeting.txt.
//
// Mapped root URIs may reference environment variables with ${VAR}
// syntax; variables can be seeded from dotenv files via WithDotenv.
//
// Use the resulting Resolver with resio.WithPackageResolver:
//
//	pkgs, err := pkgmap.Load("packages.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	loader := resio.New(resio.WithPackageResolver(pkgs))
package pkgmap

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/arloliu/resio/internal/types"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
	sigsyaml "sigs.k8s.io/yaml"
)

// Resolver maps package names to absolute root URIs. It is immutable after
// construction and safe for concurrent use.
type Resolver struct {
	roots map[string]*url.URL
}

// mapFile is the on-disk shape of a package map.
type mapFile struct {
	Packages map[string]string `yaml:"packages" json:"packages" validate:"required,dive,required,uri"`
}

// Load reads and validates a package map file. Files ending in .json are
// parsed as JSON; everything else is parsed as strict YAML (unknown keys
// are rejected).
func Load(path string, opts ...Option) (*Resolver, error) {
	cfg := newConfig(opts)

	if err := loadDotenvFiles(cfg.dotenvFiles); err != nil {
		return nil, fmt.Errorf("failed to load dotenv files: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var mf mapFile
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = sigsyaml.Unmarshal(data, &mf)
	} else {
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(&mf)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", path, err)
	}

	if err := cfg.validator.Struct(&mf); err != nil {
		return nil, fmt.Errorf("invalid package map %s: %w", path, err)
	}

	return build(mf.Packages, cfg)
}

// FromMap builds a Resolver from an in-process package map. Useful for
// tests and for hosts that assemble the map themselves.
func FromMap(packages map[string]string, opts ...Option) (*Resolver, error) {
	cfg := newConfig(opts)

	if err := loadDotenvFiles(cfg.dotenvFiles); err != nil {
		return nil, fmt.Errorf("failed to load dotenv files: %w", err)
	}

	return build(packages, cfg)
}

// build parses and checks the mapped root URIs.
func build(packages map[string]string, cfg *config) (*Resolver, error) {
	roots := make(map[string]*url.URL, len(packages))
	for name, raw := range packages {
		if cfg.expandEnv {
			raw = os.ExpandEnv(raw)
		}

		root, err := url.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("package %q: invalid root URI %q: %w", name, raw, err)
		}
		if !root.IsAbs() {
			return nil, fmt.Errorf("package %q: root URI %q is not absolute", name, raw)
		}
		if root.Scheme == "package" {
			return nil, fmt.Errorf("package %q: root URI %q may not use the package scheme", name, raw)
		}

		// Roots act as directories; the trailing slash keeps
		// ResolveReference from dropping the last path segment.
		if !strings.HasSuffix(root.Path, "/") {
			root.Path += "/"
		}

		roots[name] = root
	}

	return &Resolver{roots: roots}, nil
}

// ResolvePackage implements the resio.PackageResolver interface.
//
// The identifier is everything after "package:", with the first path
// segment naming the package and the remainder locating a resource inside
// it. Query and fragment carry over to the resolved URI.
func (r *Resolver) ResolvePackage(_ context.Context, u *url.URL) (*url.URL, error) {
	if u.Scheme != "package" {
		return nil, &types.PackageResolutionError{
			URI:     u.String(),
			Message: fmt.Sprintf("unexpected scheme %q", u.Scheme),
		}
	}

	id := u.Opaque
	if id == "" {
		id = strings.TrimPrefix(u.Path, "/")
	}

	name, rest, _ := strings.Cut(id, "/")
	if name == "" {
		return nil, &types.PackageResolutionError{
			URI:     u.String(),
			Message: "missing package name",
		}
	}
	if rest == "" {
		return nil, &types.PackageResolutionError{
			URI:     u.String(),
			Message: "missing path within package",
		}
	}

	root, ok := r.roots[name]
	if !ok {
		return nil, &types.PackageResolutionError{
			URI:     u.String(),
			Message: fmt.Sprintf("unknown package %q", name),
		}
	}

	resolved := root.ResolveReference(&url.URL{
		Path:     rest,
		RawQuery: u.RawQuery,
		Fragment: u.Fragment,
	})

	return resolved, nil
}

// Packages returns the names of all mapped packages.
func (r *Resolver) Packages() []string {
	names := make([]string, 0, len(r.roots))
	for name := range r.roots {
		names = append(names, name)
	}

	return names
}

// loadDotenvFiles loads the dotenv files that exist on disk. Missing files
// are silently ignored to support optional .env.local patterns.
func loadDotenvFiles(files []string) error {
	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}

	return godotenv.Load(existing...)
}
