package main

import (
	"flag"
	"fmt"
	"image"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/df07/go-pathtrace-core/pkg/renderer"
	"github.com/df07/go-pathtrace-core/pkg/scene"
)

// Config holds the command line options
type Config struct {
	SceneType string
	GLTFPath  string
	Width     int
	SPP       int
	MaxDepth  int
	Workers   int
	Seed      int64
	Aperture  float64
	Focus     float64
	OutputDir string
	Help      bool
}

func main() {
	config := parseFlags()

	if config.Help {
		showHelp()
		return
	}

	fmt.Println("Starting path tracer...")

	overrides := renderer.CameraConfig{Aperture: config.Aperture, FocusDistance: config.Focus}
	selectedScene, name, err := createScene(config.SceneType, config.GLTFPath, overrides)
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	sampling := samplingConfig(selectedScene, config)
	fmt.Printf("Rendering %s at %dx%d, %d spp, depth %d\n",
		name, sampling.Width, sampling.Height, sampling.SamplesPerPixel, sampling.MaxDepth)

	raytracer := renderer.NewRaytracer(selectedScene, sampling, renderer.NewDefaultLogger())

	startTime := time.Now()
	img, stats := raytracer.RenderPass()
	renderTime := time.Since(startTime)

	fmt.Printf("Render completed in %v\n", renderTime)
	fmt.Printf("Samples per pixel: %.1f, black samples: %d\n", stats.AverageSamples, stats.BlackSamples)

	outputDir := filepath.Join(config.OutputDir, name)
	filename, err := saveImage(img, outputDir, time.Now())
	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Render saved as %s\n", filename)
}

func parseFlags() Config {
	defaults := renderer.DefaultSamplingConfig()
	config := Config{}
	flag.StringVar(&config.SceneType, "scene", "default", "Built-in scene: "+strings.Join(scene.Names(), ", "))
	flag.StringVar(&config.GLTFPath, "gltf", "", "Render a .gltf/.glb file instead of a built-in scene")
	flag.IntVar(&config.Width, "width", defaults.Width, "Image width in pixels; height follows the camera aspect ratio")
	flag.IntVar(&config.SPP, "spp", 0, "Samples per pixel (0 = scene default)")
	flag.IntVar(&config.MaxDepth, "depth", 0, "Maximum bounces (0 = scene default)")
	flag.IntVar(&config.Workers, "workers", 0, "Number of render goroutines (0 = number of CPUs)")
	flag.Int64Var(&config.Seed, "seed", defaults.Seed, "Render seed")
	flag.Float64Var(&config.Aperture, "aperture", 0, "Lens aperture override (0 = scene default)")
	flag.Float64Var(&config.Focus, "focus", 0, "Focus distance override (0 = scene default)")
	flag.StringVar(&config.OutputDir, "out", "output", "Output directory")
	flag.BoolVar(&config.Help, "help", false, "Show help information")
	flag.Parse()
	return config
}

func showHelp() {
	fmt.Println("Path Tracer")
	fmt.Println("Usage: pathtrace [options]")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Available scenes:")
	fmt.Println("  default - Spheres of every material on a ground sphere")
	fmt.Println("  random  - Field of random small spheres around three large ones")
	fmt.Println("  glass   - Dielectric spheres with increasing refractive index")
	fmt.Println()
	fmt.Println("Output will be saved to <out>/<scene>/render_<timestamp>.png")
}

// createScene builds the scene to render. A glTF path wins over the scene name;
// the returned name is used for the output directory.
func createScene(sceneType, gltfPath string, overrides renderer.CameraConfig) (*scene.Scene, string, error) {
	if gltfPath != "" {
		s, err := scene.NewGLTFScene(gltfPath, overrides)
		if err != nil {
			return nil, "", err
		}
		return s, sceneNameFromPath(gltfPath), nil
	}

	s, err := scene.NewScene(sceneType, overrides)
	if err != nil {
		return nil, "", err
	}
	return s, sceneType, nil
}

// sceneNameFromPath turns "models/my-scene.glb" into "my-scene"
func sceneNameFromPath(path string) string {
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "gltf-scene"
	}
	return name
}

// samplingConfig applies command line overrides to the scene's sampling settings
func samplingConfig(s *scene.Scene, config Config) renderer.SamplingConfig {
	sampling := s.SamplingConfig
	if config.Width > 0 {
		sampling.Width = config.Width
	}
	aspect := s.CameraConfig.AspectRatio
	if aspect <= 0 {
		aspect = float64(sampling.Width) / float64(sampling.Height)
	}
	sampling.Height = int(math.Round(float64(sampling.Width) / aspect))
	if sampling.Height < 1 {
		sampling.Height = 1
	}
	if config.SPP > 0 {
		sampling.SamplesPerPixel = config.SPP
	}
	if config.MaxDepth > 0 {
		sampling.MaxDepth = config.MaxDepth
	}
	if config.Workers > 0 {
		sampling.NumWorkers = config.Workers
	}
	sampling.Seed = config.Seed
	return sampling
}

// saveImage writes img as a timestamped PNG inside outputDir
func saveImage(img image.Image, outputDir string, now time.Time) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	timestamp := now.Format("20060102_150405")
	filename := filepath.Join(outputDir, fmt.Sprintf("render_%s.png", timestamp))

	file, err := os.Create(filename)
	if err != nil {
		return "", fmt.Errorf("creating file: %w", err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("saving PNG: %w", err)
	}
	return filename, nil
}
