// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.11
//

package sp3

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mkhts/sp3/internal/log"
)

// Turns a compressed stream into the SP3 text
type Decompressor func(r io.Reader) (io.ReadCloser, error)

func GzipDecompressor(r io.Reader) (io.ReadCloser, error) {
	return gzip.NewReader(r)
}

var gzipMagic = []byte{0x1f, 0x8b}

// Read an SP3 file, decompressing it when it starts with the gzip magic number.
// Production attributes are taken from the file name.
func ReadFile(fn string, opts ...ParseOption) (*SP3, error) {
	cfg := parseConfig{decompress: GzipDecompressor}
	for _, o := range opts {
		o(&cfg)
	}
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if magic, err := r.(*bufio.Reader).Peek(2); err == nil && bytes.Equal(magic, gzipMagic) {
		log.Debugf("decompressing %s", fn)
		dr, err := cfg.decompress(r)
		if err != nil {
			return nil, fmt.Errorf("failed to decompress %s: %w", fn, err)
		}
		defer dr.Close()
		r = dr
	}
	s, err := Parse(r, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", fn, err)
	}
	s.Production = ParseProduction(fn)
	return s, nil
}

// Write the file, gzip compressed when the name ends with ".gz"
func (p *SP3) WriteFile(fn string) error {
	f, err := os.Create(fn)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()
	if !strings.HasSuffix(strings.ToLower(fn), ".gz") {
		if err := p.Format(f); err != nil {
			return err
		}
		return f.Close()
	}
	zw := gzip.NewWriter(f)
	if err := p.Format(zw); err != nil {
		return err
	}
	if err := zw.Close(); err != nil {
		return err
	}
	return f.Close()
}
