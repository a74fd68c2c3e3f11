package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/binzume/gltfmodel/converter"
	"github.com/binzume/gltfmodel/model"
	"go.uber.org/zap"
)

func printModel(w io.Writer, m *model.Model, sampleTime float64) {
	fmt.Fprintf(w, "geometries: %d\n", len(m.Geometries))
	for _, g := range m.Geometries {
		fmt.Fprintf(w, "  %s: vertices=%d triangles=%d indices=%v material=%s\n",
			g.Name, len(g.Positions), g.TriangleCount(), g.Indices.Format, g.MaterialName)
	}

	fmt.Fprintf(w, "materials: %d\n", len(m.Materials))
	for _, mat := range m.Materials {
		fmt.Fprintf(w, "  %s: albedo=%v metallic=%g roughness=%g textures=%d\n",
			mat.Name, mat.Albedo, mat.Metallic, mat.Roughness, len(mat.Textures()))
	}

	fmt.Fprintf(w, "animations: %d\n", len(m.Animations))
	for _, a := range m.Animations {
		fmt.Fprintf(w, "  %s: duration=%g tracks=%d\n", a.Name, a.Duration(), len(a.KeyFrames))
		if sampleTime < 0 {
			continue
		}
		for _, kf := range a.KeyFrames {
			name, err := m.TargetName(kf)
			if err != nil {
				name = err.Error()
			}
			pos := kf.Transform(float32(sampleTime)).Col(3)
			fmt.Fprintf(w, "    %s @%g: position=(%g, %g, %g)\n", name, sampleTime, pos[0], pos[1], pos[2])
		}
	}
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] input.gltf|input.glb\n", os.Args[0])
		flag.PrintDefaults()
	}
	config := flag.String("config", "", "option file (yaml)")
	logFile := flag.String("log", "", "log file")
	logLevel := flag.String("loglevel", "info", "debug, info, warn or error")
	cubic := flag.String("cubicspline", "", "linear or error (overrides config)")
	sample := flag.Float64("sample", -1, "sample animations at this time")
	maxPixels := flag.Int("maxpixels", 0, "reject larger images (overrides config)")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}

	logger := newLogger(*logLevel, *logFile)
	defer logger.Sync()

	options := &converter.GLTFToModelOption{}
	if *config != "" {
		var err error
		if options, err = converter.LoadOptionFile(*config); err != nil {
			log.Fatal(err)
		}
	}
	if *cubic != "" {
		options.CubicSpline = *cubic
	}
	if *maxPixels > 0 {
		options.MaxPixels = *maxPixels
	}
	options.Logger = logger

	for _, input := range flag.Args() {
		m, err := converter.Open(input, options)
		if err != nil {
			logger.Error("import failed", zap.String("input", input), zap.Error(err))
			os.Exit(1)
		}
		fmt.Println(input)
		printModel(os.Stdout, m, *sample)
	}
}
