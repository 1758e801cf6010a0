// Package upc extracts UPCs from product payloads.
package upc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// FromItems returns the string-valued "upc" fields of a product's embedded
// items in order, de-duplicated.
func FromItems(items []map[string]any) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, it := range items {
		v, ok := it["upc"].(string)
		if !ok || v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Extract scans a raw JSON payload for "items" arrays at any depth and
// returns the string-valued "upc" fields of their elements in document
// order, de-duplicated.
func Extract(payload []byte) ([]string, error) {
	if len(bytes.TrimSpace(payload)) == 0 {
		return nil, nil
	}

	w := &walker{
		dec:  json.NewDecoder(bytes.NewReader(payload)),
		seen: map[string]struct{}{},
	}
	w.dec.UseNumber()

	if err := w.value(kindPlain); err != nil {
		return nil, fmt.Errorf("extract upcs: %w", err)
	}
	return w.out, nil
}

// Pick returns the first UPC, or "" when there are none.
func Pick(upcs []string) string {
	if len(upcs) == 0 {
		return ""
	}
	return upcs[0]
}

type kind int

const (
	kindPlain kind = iota
	kindItems      // value of an "items" key
	kindItem       // element of an items array
)

type walker struct {
	dec  *json.Decoder
	seen map[string]struct{}
	out  []string
}

func (w *walker) add(v string) {
	if v == "" {
		return
	}
	if _, ok := w.seen[v]; ok {
		return
	}
	w.seen[v] = struct{}{}
	w.out = append(w.out, v)
}

func (w *walker) value(k kind) error {
	tok, err := w.dec.Token()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return io.ErrUnexpectedEOF
		}
		return err
	}

	d, ok := tok.(json.Delim)
	if !ok {
		return nil
	}
	return w.container(d, k)
}

func (w *walker) container(open json.Delim, k kind) error {
	switch open {
	case '{':
		for w.dec.More() {
			tok, err := w.dec.Token()
			if err != nil {
				return err
			}
			key, _ := tok.(string)

			switch {
			case k == kindItem && key == "upc":
				if err := w.upcValue(); err != nil {
					return err
				}
			case key == "items":
				if err := w.value(kindItems); err != nil {
					return err
				}
			default:
				if err := w.value(kindPlain); err != nil {
					return err
				}
			}
		}
	case '[':
		elem := kindPlain
		if k == kindItems {
			elem = kindItem
		}
		for w.dec.More() {
			if err := w.value(elem); err != nil {
				return err
			}
		}
	}

	// closing delimiter
	_, err := w.dec.Token()
	return err
}

func (w *walker) upcValue() error {
	tok, err := w.dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case string:
		w.add(v)
	case json.Delim:
		return w.container(v, kindPlain)
	}
	return nil
}
