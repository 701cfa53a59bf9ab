// Package main provides the offline subsetter that trims a full GEFS
// forecast file down to the regional cache the API server reads.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"go.ngs.io/gefs-api/internal/adapter/store/netcdf"
	"go.ngs.io/gefs-api/internal/domain"
)

const version = "0.1.0"

func main() {
	in := flag.String("in", "", "Source NetCDF forecast file (required)")
	out := flag.String("out", "./cache/gefs_subset.nc", "Destination for the regional subset")
	latMin := flag.Float64("lat-min", 30, "Southern latitude bound in degrees")
	latMax := flag.Float64("lat-max", 50, "Northern latitude bound in degrees")
	lonMin := flag.Float64("lon-min", -125, "Western longitude bound in degrees")
	lonMax := flag.Float64("lon-max", -100, "Eastern longitude bound in degrees")
	debug := flag.Bool("debug", false, "Verbose logging")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("subset-cache version %s\n", version)
		return
	}
	if *in == "" {
		flag.Usage()
		os.Exit(2)
	}

	logger, err := newLogger(*debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck
	sugar := logger.Sugar()

	ds, err := netcdf.ReadFile(*in)
	if err != nil {
		sugar.Fatalw("failed to read source file", "path", *in, "err", err)
	}
	sugar.Infow("source file read", "path", *in, "variables", ds.VarNames())

	ds, err = domain.SubsetBBox(ds, *latMin, *latMax, *lonMin, *lonMax)
	if err != nil {
		sugar.Fatalw("failed to subset", "err", err)
	}

	if err := netcdf.WriteFile(*out, ds); err != nil {
		sugar.Fatalw("failed to write subset", "path", *out, "err", err)
	}
	sugar.Infow("regional subset written",
		"path", *out,
		"lat", fmt.Sprintf("%.1f..%.1f", *latMin, *latMax),
		"lon", fmt.Sprintf("%.1f..%.1f", *lonMin, *lonMax),
	)
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
