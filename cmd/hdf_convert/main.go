// Copyright (C) 2020 Markus L. Noga
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/klauspost/cpuid"
	"github.com/pbnjay/memory"

	"github.com/mlnoga/hdfconvert/internal/config"
	"github.com/mlnoga/hdfconvert/internal/convert"
	"github.com/mlnoga/hdfconvert/internal/log"
	"github.com/mlnoga/hdfconvert/internal/rest"
)

const version = "0.1.4"

var cpuprofile = flag.String("cpuprofile", "", "write cpu profile to `file`")
var memprofile = flag.String("memprofile", "", "write memory profile to `file`")

var logName = flag.String("log", "", "save log output to `file`. `%auto` replaces suffix of output file with .log")
var cfgName = flag.String("config", "", "load converter settings from YAML `file`")
var serve = flag.String("serve", "", "run REST API on the given listen `address`, e.g. :8080, instead of converting")
var chroot = flag.String("chroot", "", "in serve mode, restrict filesystem access to the given `directory` (requires root)")
var setuid = flag.Int("setuid", -1, "in serve mode, drop privileges to the given user `id` after chroot, -1=no op")
var workers = flag.Int("workers", 0, "number of parallel workers for the statistics passes, 0=all cores")

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stdout, `hdf_convert %s converts FITS image cubes into HDF5 files laid out for interactive visualization.

Usage: %s [-flag value] <input.fits> [<output.hdf5>]

When no output name is given, it is derived by replacing a trailing .fits suffix of the input name with .hdf5.

Flags:
`, version, os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg, err := config.Load(*cfgName)
	if err != nil {
		log.Fatalf("Error loading config: %s\n", err.Error())
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}
	if *serve != "" {
		cfg.Serve = *serve
	}
	opt := convert.Options{Workers: cfg.Workers, MaxBytes: cfg.MaxBytes()}

	if cfg.Serve != "" {
		log.Printf("hdf_convert %s serving on %s with %d/%d cores (%s)\n",
			version, cfg.Serve, cfg.Workers, runtime.NumCPU(), cpuid.CPU.BrandName)
		if err := rest.Serve(cfg.Serve, opt, *chroot, *setuid); err != nil {
			log.Fatalf("Error serving: %s\n", err.Error())
		}
		return
	}

	args := flag.Args()
	if len(args) < 1 || len(args) > 2 {
		flag.Usage()
		os.Exit(1)
	}
	inputName := args[0]
	outputName := convert.OutputName(inputName)
	if len(args) == 2 {
		outputName = args[1]
	}

	// Tee the log into a file in addition to stdout, if selected
	if *logName == "%auto" {
		*logName = strings.TrimSuffix(outputName, filepath.Ext(outputName)) + ".log"
	}
	if *logName != "" {
		if err := log.AlsoToFile(*logName); err != nil {
			log.Fatalf("Unable to open logfile '%s'\n", *logName)
		}
	}

	// Enable CPU profiling if flagged
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatalf("Could not create CPU profile: %s\n", err.Error())
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatalf("Could not start CPU profile: %s\n", err.Error())
		}
		defer pprof.StopCPUProfile()
	}

	log.Printf("hdf_convert %s with %d/%d cores (%s), %s physical memory\n",
		version, cfg.Workers, runtime.NumCPU(), cpuid.CPU.BrandName,
		humanize.IBytes(memory.TotalMemory()))

	err = convert.Run(inputName, outputName, opt, log.Writer())

	// Store memory profile if flagged
	if *memprofile != "" {
		f, ferr := os.Create(*memprofile)
		if ferr != nil {
			log.Fatalf("Could not create memory profile: %s\n", ferr.Error())
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if werr := pprof.Lookup("allocs").WriteTo(f, 0); werr != nil {
			log.Fatalf("Could not write allocation profile: %s\n", werr.Error())
		}
	}

	if err != nil {
		log.Printf("Error: %s\n", err.Error())
		log.Sync()
		os.Exit(1)
	}
	log.Sync()
}
