// Package openapi checks local copies of the Kroger OpenAPI documents for the
// operations the client calls.
package openapi

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrMissing is reported for spec files that do not exist.
var ErrMissing = errors.New("missing")

// Operation is an HTTP method and path template.
type Operation struct {
	Method string
	Path   string
}

func (o Operation) String() string {
	return strings.ToUpper(o.Method) + " " + o.Path
}

// Required maps each spec file name to the operations the client depends on.
var Required = map[string][]Operation{
	"kroger-location-openapi.json": {
		{Method: http.MethodGet, Path: "/v1/locations"},
		{Method: http.MethodGet, Path: "/v1/locations/{locationId}"},
	},
	"kroger-products-openapi.json": {
		{Method: http.MethodGet, Path: "/v1/products"},
		{Method: http.MethodGet, Path: "/v1/products/{id}"},
	},
	"kroger-cart-openapi.json": {
		{Method: http.MethodPut, Path: "/v1/cart/add"},
	},
	"kroger-identity-openapi.json": {
		{Method: http.MethodGet, Path: "/v1/identity/profile"},
	},
}

// FileResult is the check outcome for one spec file.
type FileResult struct {
	File    string      `json:"file"`
	Missing []Operation `json:"missing,omitempty"`
	Err     error       `json:"-"`
}

// OK reports whether the file was readable and declares every operation.
func (r FileResult) OK() bool {
	return r.Err == nil && len(r.Missing) == 0
}

type document struct {
	Paths map[string]map[string]any `yaml:"paths"`
}

// Check verifies every file in required under dir. Results are sorted by
// file name.
func Check(dir string, required map[string][]Operation) []FileResult {
	files := make([]string, 0, len(required))
	for f := range required {
		files = append(files, f)
	}
	slices.Sort(files)

	results := make([]FileResult, 0, len(files))
	for _, f := range files {
		results = append(results, checkFile(filepath.Join(dir, f), required[f]))
	}
	return results
}

func checkFile(path string, ops []Operation) FileResult {
	res := FileResult{File: filepath.Base(path)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			res.Err = ErrMissing
		} else {
			res.Err = err
		}
		return res
	}

	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		res.Err = fmt.Errorf("invalid document: %w", err)
		return res
	}

	sorted := slices.Clone(ops)
	slices.SortFunc(sorted, func(a, b Operation) int {
		return strings.Compare(a.Path+" "+a.Method, b.Path+" "+b.Method)
	})

	for _, op := range sorted {
		methods, ok := doc.Paths[op.Path]
		if !ok {
			res.Missing = append(res.Missing, op)
			continue
		}
		if _, ok := methods[strings.ToLower(op.Method)]; !ok {
			res.Missing = append(res.Missing, op)
		}
	}
	return res
}
