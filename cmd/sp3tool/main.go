// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.13
//

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	m "github.com/mkhts/sp3"
	"github.com/mkhts/sp3/internal/log"
)

func main() {

	// Parse command line arguments
	args, err := parseArgs()
	if err != nil {
		fmt.Fprintf(os.Stderr, "err=%s\n", err.Error())
		flag.Usage()
		os.Exit(1)
	}
	if err := log.Init(args.dbg); err != nil {
		fmt.Fprintf(os.Stderr, "err=%s\n", err.Error())
		os.Exit(1)
	}
	defer log.Sync()

	// Run the main application
	if err := runApplication(args); err != nil {
		log.Errorf("%s", err.Error())
		log.Sync()
		os.Exit(1)
	}
}

// Main application processing
func runApplication(args cmdOpt) error {

	// Load input files
	files, err := loadInputFiles(args)
	if err != nil {
		return fmt.Errorf("failed to load input files: %w", err)
	}

	switch args.mode {
	case m.INFO:
		for i, f := range files {
			fmt.Printf("--- %s ---\n", filepath.Base(args.inFns[i]))
			fmt.Print(f)
			fmt.Printf("proposed name: %s\n", f.StandardizedFilename())
		}
		return nil
	case m.INTERP:
		out, err := prepareOutput(args.outFn)
		if err != nil {
			return err
		}
		defer closeOutput(out)
		return interpolate(args, files[0], out)
	case m.MERGE:
		merged := files[0]
		for i, f := range files[1:] {
			merged, err = m.Merge(merged, f)
			if err != nil {
				return fmt.Errorf("failed to merge %s: %w", args.inFns[i+1], err)
			}
		}
		return writeOutput(args.outFn, merged)
	case m.TRANSPOSE:
		tr := m.NewTransposer()
		res, err := tr.Transpose(files[0], args.timescale, m.Coarse)
		if err != nil {
			return fmt.Errorf("failed to transpose to %s: %w", args.timescale, err)
		}
		return writeOutput(args.outFn, res)
	case m.FORMAT:
		res, err := preprocess(args, files[0])
		if err != nil {
			return err
		}
		return writeOutput(args.outFn, res)
	}
	return fmt.Errorf("unknown mode %s", args.mode.String())
}

// Load input files
func loadInputFiles(args cmdOpt) ([]*m.SP3, error) {
	opts := []m.ParseOption{m.WithStrict(args.strict), m.WithUnknownSatellites(m.UnknownSatellitePolicy(args.unknown))}
	files := []*m.SP3{}
	for _, fn := range args.inFns {
		f, err := m.ReadFile(fn, opts...)
		if err != nil {
			return nil, err
		}
		for _, w := range f.Warnings {
			log.Warnw("sp3 warning", "file", filepath.Base(fn), "warning", w.String())
		}
		log.Infow("sp3 loaded", "file", filepath.Base(fn), "epochs", f.Store().NumEpochs(), "satellites", len(f.Header.Satellites))
		files = append(files, f)
	}
	return files, nil
}

// Satellite masking, zero repair, finite differences and decimation before rewriting
func preprocess(args cmdOpt, f *m.SP3) (*m.SP3, error) {
	if len(args.sats) > 0 {
		f = f.FilterSatellites(args.sats.Contains)
	}
	if len(args.systems) > 0 {
		sys := []m.SysType{}
		for _, c := range args.systems {
			s := m.SysType(c)
			if !s.IsValid() {
				return nil, fmt.Errorf("invalid system '%c' in -sys", c)
			}
			sys = append(sys, s)
		}
		f = f.FilterSystems(sys...)
	}
	if args.zeroRepair {
		f = f.ZeroRepair()
	}
	if args.resolve {
		f = f.ResolveVelocities().ResolveClockRates()
	}
	if args.decim > 1 {
		d, err := f.Decimate(args.decim)
		if err != nil {
			return nil, err
		}
		f = d
	}
	log.Debugw("preprocessed", "epochs", f.Store().NumEpochs(), "satellites", len(f.Header.Satellites), "type", f.Header.DataType.String())
	return f, nil
}

// Print interpolated positions and clocks of the selected satellites
func interpolate(args cmdOpt, f *m.SP3, out io.Writer) error {
	sats := f.Header.Satellites
	if len(args.sats) > 0 {
		sats = args.sats
	}
	ts, te := args.ts, args.te
	if ts.IsZero() {
		ts, _ = f.Store().FirstEpoch()
	}
	if te.IsZero() {
		te, _ = f.Store().LastEpoch()
	}
	step := time.Duration(args.ti) * time.Second
	if step <= 0 {
		step = f.Header.Interval
	}
	if !args.noHeader {
		fmt.Fprintf(out, "%%  %-26s %3s %14s %14s %14s %14s %13s %14s %10s\n", f.Header.Timescale, "sat", "x(km)", "y(km)", "z(km)", "clk(us)", "lat(deg)", "lon(deg)", "height(km)")
	}
	for t := ts; !t.After(te); t = t.Add(step) {
		for _, sat := range sats {
			pos, ok, err := f.InterpolatePosition(sat, t, args.order)
			if err != nil {
				return err
			}
			if !ok {
				log.Debugw("interpolation not possible", "sat", string(sat), "time", t)
				continue
			}
			clk, cok, err := f.InterpolateClock(sat, t, args.clkOrder)
			if err != nil {
				return err
			}
			clkStr := fmt.Sprintf("%14s", "-")
			if cok {
				clkStr = fmt.Sprintf("%14.6f", clk)
			}
			llh := pos.ToLLH()
			fmt.Fprintf(out, "%s %3s %s %s %13.8f %14.8f %10.3f\n", t.Format("2006/01/02 15:04:05.000000"), sat, pos.String(), clkStr, m.ToDeg(llh.Lat), m.ToDeg(llh.Lon), llh.Hei)
		}
	}
	return nil
}

// Use stdout if no output file is specified
func prepareOutput(fn string) (io.WriteCloser, error) {
	if len(fn) == 0 {
		return &nopCloser{os.Stdout}, nil
	}
	f, err := os.Create(fn)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// Close output file
func closeOutput(out io.WriteCloser) {
	if out != nil {
		out.Close()
	}
}

func writeOutput(fn string, f *m.SP3) error {
	if len(fn) == 0 {
		return f.Format(os.Stdout)
	}
	if err := f.WriteFile(fn); err != nil {
		return err
	}
	log.Infof("%d epochs written to %s", f.Store().NumEpochs(), fn)
	return nil
}

// nopCloser - WriteCloser that ignores close operations
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// Structure to hold command line argument information
type cmdOpt struct {
	inFns      []string
	outFn      string
	mode       m.Mode
	ts, te     time.Time
	ti         int
	sats       m.SatVar
	order      int
	clkOrder   int
	timescale  m.Timescale
	strict     bool
	unknown    int
	noHeader   bool
	systems    string
	zeroRepair bool
	resolve    bool
	decim      int
	dbg        int
}

// Parse command line arguments
func parseArgs() (a cmdOpt, err error) {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, `
[Usage]
	%s [Options] [-p 0]  file.sp3 [file.sp3 ...]                      (show overview)
	%s [Options]  -p 1   [-sat G01,E11] [-ts ..] [-te ..] file.sp3    (interpolate)
	%s [Options]  -p 2   -o merged.sp3 file1.sp3 file2.sp3 [...]      (merge)
	%s [Options]  -p 3   -tsys UTC -o out.sp3 file.sp3                (transpose timescale)
	%s [Options]  -p 4   [-sys GE] [-zr] [-rv] [-dec 2] -o out.sp3[.gz] file.sp3[.gz]  (rewrite)

[Options]
`, filepath.Base(os.Args[0]), filepath.Base(os.Args[0]), filepath.Base(os.Args[0]), filepath.Base(os.Args[0]), filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Var(&a.mode, "p", "Processing mode. 0(info), 1(interpolate), 2(merge), 3(transpose), 4(format)")
	var ts_, te_ m.TimeStr
	flag.TextVar(&ts_, "ts", m.NewTimeStr(time.Time{}), "Start epoch of interpolation. Enclose in quotes like -ts \"2023/01/01 00:00:00\". Default: first epoch of the file")
	flag.TextVar(&te_, "te", m.NewTimeStr(time.Time{}), "End epoch of interpolation. Enclose in quotes like -te \"2023/01/02 00:00:00\". This epoch is also included. Default: last epoch of the file")
	flag.IntVar(&a.ti, "ti", 0, "Interpolation interval [s]. Omit or set to 0 to use the sampling interval of the file.")
	flag.Var(&a.sats, "sat", "Satellites to interpolate. Comma-separated satellite names without spaces like G01,E14. Default: all satellites")
	flag.IntVar(&a.order, "n", m.Order11, "Order of the Lagrange interpolation of positions. Odd number only.")
	flag.IntVar(&a.clkOrder, "nc", 1, "Order of the Lagrange interpolation of clocks. Odd number only.")
	flag.Var(&a.timescale, "tsys", "Target timescale of transposition. GPS, GLO, GAL, BDT, QZS, IRN, TAI or UTC")
	flag.StringVar(&a.outFn, "o", "", "Output file path. If not specified, output to stdout. Compressed with gzip when the name ends with .gz")
	flag.BoolVar(&a.strict, "strict", false, "Fail when the EOF line is missing")
	flag.IntVar(&a.unknown, "unk", 0, "Records of satellites missing from the header. 0(keep with warning), 1(drop with warning), 2(fail)")
	flag.BoolVar(&a.noHeader, "nh", false, "Do not output the header line of interpolation results.")
	flag.StringVar(&a.systems, "sys", "", "Systems kept when rewriting, like GE. -sat also selects satellites in this mode. Default: all")
	flag.BoolVar(&a.zeroRepair, "zr", false, "Treat zero clocks and clock rates as missing when rewriting")
	flag.BoolVar(&a.resolve, "rv", false, "Resolve missing velocities and clock rates by finite differences when rewriting")
	flag.IntVar(&a.decim, "dec", 1, "Keep every n-th epoch when rewriting")
	flag.IntVar(&a.dbg, "x", 0, "Debug information display. Specify level value. 0(warnings), 1(info), 2(debug)")
	flag.Parse()
	a.inFns = flag.Args()
	switch {
	case len(a.inFns) == 0:
		return a, fmt.Errorf("no input file")
	case a.mode == m.MERGE && len(a.inFns) < 2:
		return a, fmt.Errorf("merge needs two files or more")
	case a.mode != m.INFO && a.mode != m.MERGE && len(a.inFns) != 1:
		return a, fmt.Errorf("too less or many arguments")
	}
	if a.decim < 1 {
		return a, fmt.Errorf("invalid -dec %d", a.decim)
	}
	if a.unknown < 0 || a.unknown > 2 {
		return a, fmt.Errorf("invalid -unk %d", a.unknown)
	}
	a.ts = time.Time(ts_)
	a.te = time.Time(te_)
	return
}
