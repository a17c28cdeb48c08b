// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.7
//

package sp3

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mkhts/sp3/internal/log"
)

// Handling of records of satellites missing from the header
type UnknownSatellitePolicy int

const (
	KeepUnknown   UnknownSatellitePolicy = iota // Warn and keep the record
	DropUnknown                                 // Warn and discard the record
	RejectUnknown                               // Fail
)

type parseConfig struct {
	strict     bool
	unknown    UnknownSatellitePolicy
	decompress Decompressor
}

type ParseOption func(*parseConfig)

// Fail when the EOF line is missing
func WithStrict(strict bool) ParseOption {
	return func(c *parseConfig) {
		c.strict = strict
	}
}

func WithUnknownSatellites(p UnknownSatellitePolicy) ParseOption {
	return func(c *parseConfig) {
		c.unknown = p
	}
}

// Decompressor used by ReadFile for compressed files. nil keeps gzip.
func WithDecompressor(d Decompressor) ParseOption {
	return func(c *parseConfig) {
		if d != nil {
			c.decompress = d
		}
	}
}

type parseState int

const (
	stateHeader parseState = iota
	stateBody
	stateTerminated
)

type parser struct {
	cfg      parseConfig
	state    parseState
	lineNo   int
	hp       *headerParser
	store    *Store
	cur      *epochRecord
	seenP    map[SatType]bool // P records of the current epoch
	seenV    map[SatType]bool // V records of the current epoch
	unknown  map[SatType]bool
	warnings []Warning
}

// Read an SP3 file (revision c or d).
// On a structural error no model is returned.
func Parse(r io.Reader, opts ...ParseOption) (*SP3, error) {
	p := &parser{
		hp:      newHeaderParser(),
		store:   &Store{},
		unknown: map[SatType]bool{},
	}
	for _, o := range opts {
		o(&p.cfg)
	}

	// Read line by line
	s := bufio.NewScanner(r)
	for s.Scan() {
		p.lineNo++
		line := strings.TrimRight(s.Text(), "\r")
		if err := p.parseLine(line); err != nil {
			return nil, err
		}
	}

	// Check if reading completed without error
	if err := s.Err(); err != nil {
		return nil, err
	}
	return p.finish()
}

func (p *parser) fail(line, fld string, err error) error {
	return &ParseError{Line: p.lineNo, Field: fld, Text: line, Err: err}
}

func (p *parser) warn(kind error, format string, a ...any) {
	p.warnings = append(p.warnings, Warning{Line: p.lineNo, Kind: kind, Msg: fmt.Sprintf(format, a...)})
}

func (p *parser) parseLine(line string) error {
	switch p.state {
	case stateHeader:
		if strings.HasPrefix(line, "* ") || strings.HasPrefix(line, "EOF") {
			p.hp.lineNo = p.lineNo
			if err := p.hp.finish(line); err != nil {
				return err
			}
			p.state = stateBody
			return p.parseBody(line)
		}
		p.hp.lineNo = p.lineNo
		return p.hp.parse(line)
	case stateBody:
		return p.parseBody(line)
	default:
		if strings.TrimSpace(line) != "" {
			p.warn(ErrTrailingContent, "line ignored")
		}
		return nil
	}
}

func (p *parser) parseBody(line string) error {
	switch {
	case strings.HasPrefix(line, "EOF"):
		p.state = stateTerminated
		return nil
	case strings.HasPrefix(line, "*"):
		return p.parseEpoch(line)
	case strings.HasPrefix(line, "EP"), strings.HasPrefix(line, "EV"):
		// Correlation records are not modeled
		return nil
	case strings.HasPrefix(line, "P"):
		return p.parseRecord(line, false)
	case strings.HasPrefix(line, "V"):
		return p.parseRecord(line, true)
	case strings.HasPrefix(line, "/*"):
		p.hp.h.Comments = append(p.hp.h.Comments, line[2:])
		return nil
	case strings.TrimSpace(line) == "":
		return nil
	}
	return p.fail(line, "record type", ErrMalformedRecord)
}

// *  2001  8  8  0  0  0.00000000
func (p *parser) parseEpoch(line string) error {
	if len(line) < minEpoch {
		return p.fail(line, "epoch", fmt.Errorf("%w: truncated epoch line", ErrMalformedRecord))
	}
	t, err := parseCalendar(line)
	if err != nil {
		return p.fail(line, "epoch", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
	}
	if last, ok := p.store.LastEpoch(); ok && !t.After(last) {
		return p.fail(line, "epoch", fmt.Errorf("%w: %s after %s", ErrNonMonotonicEpoch, t.Format(time.RFC3339Nano), last.Format(time.RFC3339Nano)))
	}
	p.cur = p.store.appendEpoch(t)
	p.seenP = map[SatType]bool{}
	p.seenV = map[SatType]bool{}
	return nil
}

func (p *parser) parseRecord(line string, vel bool) error {
	if p.cur == nil {
		return p.fail(line, "epoch", fmt.Errorf("%w: record before the first epoch", ErrMalformedRecord))
	}
	if len(line) < minRecord {
		return p.fail(line, "z coordinate", fmt.Errorf("%w: truncated record", ErrMalformedRecord))
	}
	sat, err := ParseSat(line[colSat:colX])
	if err != nil {
		return p.fail(line, "satellite id", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
	}
	if !p.hp.h.HasSat(sat) {
		switch p.cfg.unknown {
		case RejectUnknown:
			return p.fail(line, "satellite id", fmt.Errorf("%w: %s", ErrUnknownSatellite, sat))
		case DropUnknown:
			p.warnUnknown(sat, "record dropped")
			return nil
		default:
			p.warnUnknown(sat, "record kept")
		}
	}
	rv, err := parseRecordValues(line)
	if err != nil {
		return p.fail(line, "value", fmt.Errorf("%w: %s", ErrMalformedRecord, err.Error()))
	}
	// P and V records of a satellite may come in either order
	e := p.cur.entries[sat]
	if e == nil {
		e = p.cur.add(sat)
	}
	if vel {
		if p.seenV[sat] {
			return p.fail(line, "satellite id", fmt.Errorf("%w: duplicated velocity of %s", ErrMalformedRecord, sat))
		}
		p.seenV[sat] = true
		e.setVelocity(rv)
		return nil
	}
	f, err := parseFlags(line)
	if err != nil {
		return p.fail(line, "flags", err)
	}
	if p.seenP[sat] {
		return p.fail(line, "satellite id", fmt.Errorf("%w: duplicated position of %s", ErrMalformedRecord, sat))
	}
	p.seenP[sat] = true
	e.setPosition(rv, f)
	return nil
}

func (p *parser) warnUnknown(sat SatType, what string) {
	if p.unknown[sat] {
		return
	}
	p.unknown[sat] = true
	p.warn(ErrUnknownSatellite, "%s, %s", sat, what)
}

// Checks after the last line
func (p *parser) finish() (*SP3, error) {
	if p.lineNo == 0 {
		return nil, &ParseError{Line: 1, Field: "#", Err: fmt.Errorf("%w: empty file", ErrTruncatedHeaderLine)}
	}
	if p.state == stateHeader {
		p.hp.lineNo = p.lineNo
		if err := p.hp.finish(""); err != nil {
			return nil, err
		}
	}

	if p.state != stateTerminated {
		if p.cfg.strict {
			return nil, &ParseError{Line: p.lineNo, Field: "EOF", Err: ErrMissingTerminator}
		}
		p.warn(ErrMissingTerminator, "parsed %d epochs", p.store.NumEpochs())
	}

	h := p.hp.h
	p.warnings = append(p.hp.warnings, p.warnings...)
	if n := p.store.NumEpochs(); n != h.NumEpochs {
		p.warnings = append(p.warnings, Warning{Kind: ErrEpochCountMismatch, Msg: fmt.Sprintf("declared %d, found %d", h.NumEpochs, n)})
	}
	observed := p.store.satSet()
	for _, sat := range h.Satellites {
		if !observed[sat] {
			p.warnings = append(p.warnings, Warning{Kind: ErrSatelliteNotObserved, Msg: string(sat)})
		}
	}
	h.DataType = h.DataType.withClock(p.store.hasClock())

	for _, w := range p.warnings {
		log.Debugw("sp3 parse warning", "line", w.Line, "kind", w.Kind.Error(), "msg", w.Msg)
	}
	return &SP3{Header: h, Warnings: p.warnings, store: p.store}, nil
}
