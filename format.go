// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.11
//

package sp3

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Write the file in the fixed-column layout of its revision.
// Parsing the output gives back the same header and records.
func (p *SP3) Format(w io.Writer) error {
	h := p.Header
	if h.Revision == RevC && len(h.Satellites) > MaxSatsRevC {
		return fmt.Errorf("%w: %d satellites in revision c", ErrSatelliteCount, len(h.Satellites))
	}
	bw := bufio.NewWriter(w)
	for _, l := range formatHeader(h) {
		fmt.Fprintln(bw, l)
	}
	vel := h.DataType.HasVelocity()
	for _, e := range p.store.epochs {
		fmt.Fprintf(bw, "*  %s\n", formatCalendar(e.time))
		for _, sat := range e.sats {
			ent := e.entries[sat]
			fmt.Fprintln(bw, formatPosition(sat, ent))
			if vel || ent.Has&(HasVelocity|HasClockRate) != 0 {
				fmt.Fprintln(bw, formatVelocity(sat, ent))
			}
		}
	}
	fmt.Fprintln(bw, "EOF")
	return bw.Flush()
}

func formatHeader(h *Header) []string {
	ls := []string{}
	ls = append(ls, fmt.Sprintf("#%c%c%s %7d %-5s %-5s %-3s %4s", h.Revision, h.DataType.Letter(), formatCalendar(h.FirstEpoch),
		h.NumEpochs, h.DataUsed, h.CoordSystem, h.OrbitType, h.Agency))
	ls = append(ls, fmt.Sprintf("## %4d %15.8f %s %5d %15.13f", h.Time.Week, h.Time.Sec, formatSeconds(h.Interval, 14), h.MJD, h.MJDFrac))

	// Satellites and their accuracy, 17 per line
	nl := max(MinSatLines, (len(h.Satellites)+SatsPerLine-1)/SatsPerLine)
	for i := 0; i < nl; i++ {
		var b strings.Builder
		if i == 0 {
			fmt.Fprintf(&b, "+  %3d   ", len(h.Satellites))
		} else {
			b.WriteString("+        ")
		}
		for j := i * SatsPerLine; j < (i+1)*SatsPerLine; j++ {
			if j < len(h.Satellites) {
				fmt.Fprintf(&b, "%3s", h.Satellites[j])
			} else {
				b.WriteString("  0")
			}
		}
		ls = append(ls, b.String())
	}
	for i := 0; i < nl; i++ {
		var b strings.Builder
		b.WriteString("++       ")
		for j := i * SatsPerLine; j < (i+1)*SatsPerLine; j++ {
			a := 0
			if j < len(h.Satellites) {
				a = h.Accuracy[h.Satellites[j]]
			}
			fmt.Fprintf(&b, "%3d", a)
		}
		ls = append(ls, b.String())
	}

	ft := h.FileType
	if ft == 0 {
		ft = h.Constellation
	}
	ls = append(ls,
		fmt.Sprintf("%%c %c  cc %s ccc cccc cccc cccc cccc ccccc ccccc ccccc ccccc", ft, h.Timescale),
		"%c cc cc ccc ccc cccc cccc cccc cccc ccccc ccccc ccccc ccccc",
		fmt.Sprintf("%%f %10.7f %12.9f %14.11f %18.15f", h.PosBase, h.ClkBase, 0.0, 0.0),
		fmt.Sprintf("%%f %10.7f %12.9f %14.11f %18.15f", 0.0, 0.0, 0.0, 0.0),
		"%i    0    0    0    0      0      0      0      0         0",
		"%i    0    0    0    0      0      0      0      0         0",
	)
	for _, c := range h.Comments {
		ls = append(ls, "/*"+c)
	}
	return ls
}

func formatValue(v float64, ok bool) string {
	if !ok {
		v = FillValue
	}
	return fmt.Sprintf("%14.6f", v)
}

func formatVector(v Vector3, ok bool) string {
	return formatValue(v.X, ok) + formatValue(v.Y, ok) + formatValue(v.Z, ok)
}

func formatSigma(s Sigma) string {
	f := func(v, w int) string {
		if v == NoSigma {
			return strings.Repeat(" ", w)
		}
		return fmt.Sprintf("%*d", w, v)
	}
	return fmt.Sprintf(" %s %s %s %s", f(s.X, 2), f(s.Y, 2), f(s.Z, 2), f(s.Clock, 3))
}

func flagChar(set bool, c byte) byte {
	if set {
		return c
	}
	return ' '
}

// PG01  -7734.458980 -14425.111180 -21275.214670     24.400577  7  6  7  93 EP  MP
func formatPosition(sat SatType, e *Entry) string {
	f := e.Flags
	l := fmt.Sprintf("P%s%s%s%s %c%c  %c%c", sat, formatVector(e.Position, e.Has&HasPosition != 0), formatValue(e.Clock, e.Has&HasClock != 0),
		formatSigma(e.PosSigma), flagChar(f.ClockEvent, 'E'), flagChar(f.ClockPredicted, 'P'), flagChar(f.Maneuver, 'M'), flagChar(f.Predicted, 'P'))
	return strings.TrimRight(l, " ")
}

func formatVelocity(sat SatType, e *Entry) string {
	l := fmt.Sprintf("V%s%s%s%s", sat, formatVector(e.Velocity.Scale(1/VelUnit), e.Has&HasVelocity != 0),
		formatValue(e.ClockRate/RateUnit, e.Has&HasClockRate != 0), formatSigma(e.VelSigma))
	return strings.TrimRight(l, " ")
}
