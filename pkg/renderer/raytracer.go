package renderer

import (
	"fmt"
	"image"
	"image/color"
	"runtime"
	"time"

	"github.com/df07/go-pathtrace-core/pkg/core"
	"github.com/df07/go-pathtrace-core/pkg/integrator"
)

// SamplingConfig contains rendering configuration
type SamplingConfig struct {
	Width           int   // Image width in pixels
	Height          int   // Image height in pixels
	SamplesPerPixel int   // Number of rays per pixel
	MaxDepth        int   // Maximum ray bounce depth
	NumWorkers      int   // Number of render goroutines, 0 = runtime.NumCPU()
	Seed            int64 // Render seed; the same seed reproduces the same image
}

// DefaultSamplingConfig returns sensible default values
func DefaultSamplingConfig() SamplingConfig {
	return SamplingConfig{
		Width:           400,
		Height:          225,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		Seed:            42,
	}
}

// Scene interface to avoid circular imports
type Scene interface {
	integrator.World
	GetCamera() *Camera
}

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Raytracer handles the rendering process
type Raytracer struct {
	scene      Scene
	config     SamplingConfig
	integrator integrator.Integrator
	logger     core.Logger
}

// NewRaytracer creates a new raytracer using a path tracing integrator
func NewRaytracer(scene Scene, config SamplingConfig, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &Raytracer{
		scene:      scene,
		config:     config,
		integrator: integrator.NewPathTracingIntegrator(config.MaxDepth),
		logger:     logger,
	}
}

// SetIntegrator replaces the light transport algorithm
func (rt *Raytracer) SetIntegrator(i integrator.Integrator) {
	rt.integrator = i
}

// RenderPixel computes the averaged color of pixel (x, y), y = 0 being the top row.
// The pixel's sampler is seeded from the render seed and pixel index only.
func (rt *Raytracer) RenderPixel(x, y int) PixelStats {
	width, height := rt.config.Width, rt.config.Height
	camera := rt.scene.GetCamera()
	sampler := core.NewPixelSampler(rt.config.Seed, y*width+x)

	// Screen t grows upward while image rows grow downward
	j := height - 1 - y

	var stats PixelStats
	for sample := 0; sample < rt.config.SamplesPerPixel; sample++ {
		s := (float64(x) + sampler.Get1D()) / float64(width)
		t := (float64(j) + sampler.Get1D()) / float64(height)

		ray := camera.GetRay(s, t, sampler)
		stats.AddSample(rt.integrator.RayColor(ray, rt.scene, sampler))
	}
	return stats
}

// renderRow renders one image row into img and returns its statistics
func (rt *Raytracer) renderRow(img *image.RGBA, y int) RenderStats {
	var stats RenderStats
	for x := 0; x < rt.config.Width; x++ {
		pixel := rt.RenderPixel(x, y)
		img.SetRGBA(x, y, vec3ToColor(pixel.GetColor()))
		stats.addPixel(pixel)
	}
	return stats
}

// RenderPass renders the full image with multi-sampling
func (rt *Raytracer) RenderPass() (*image.RGBA, RenderStats) {
	img := image.NewRGBA(image.Rect(0, 0, rt.config.Width, rt.config.Height))

	numWorkers := rt.config.NumWorkers
	if numWorkers <= 0 {
		numWorkers = runtime.NumCPU()
	}

	rt.logger.Printf("Rendering %dx%d at %d samples per pixel (max depth %d, %d workers)...\n",
		rt.config.Width, rt.config.Height, rt.config.SamplesPerPixel, rt.config.MaxDepth, numWorkers)
	start := time.Now()

	pool := NewWorkerPool(rt, img, numWorkers)
	pool.Start()
	go func() {
		for y := 0; y < rt.config.Height; y++ {
			pool.Submit(RowTask{Row: y})
		}
		pool.Close()
	}()

	var stats RenderStats
	for result := range pool.Results() {
		stats.merge(result.Stats)
	}
	stats.finish(rt.config.SamplesPerPixel, time.Since(start))

	rt.logger.Printf("Rendered %d pixels (%d samples) in %v\n", stats.TotalPixels, stats.TotalSamples, stats.Duration)
	return img, stats
}

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3) color.RGBA {
	// Apply gamma correction (gamma = 2.0)
	colorVec = colorVec.Clamp(0.0, 1.0).GammaCorrect(2.0)

	return color.RGBA{
		R: uint8(255.999 * colorVec.X),
		G: uint8(255.999 * colorVec.Y),
		B: uint8(255.999 * colorVec.Z),
		A: 255,
	}
}
