package renderer

import (
	"time"

	"github.com/df07/go-pathtrace-core/pkg/core"
)

// RenderStats contains statistics about the rendering process
type RenderStats struct {
	TotalPixels    int           // Total number of pixels rendered
	TotalSamples   int           // Total number of samples taken
	AverageSamples float64       // Average samples per pixel
	MaxSamples     int           // Samples requested per pixel
	BlackSamples   int           // Samples that returned no light (absorbed or out of depth)
	Duration       time.Duration // Wall-clock time of the pass
}

func (s *RenderStats) addPixel(pixel PixelStats) {
	s.TotalPixels++
	s.TotalSamples += pixel.SampleCount
	s.BlackSamples += pixel.BlackCount
}

func (s *RenderStats) merge(other RenderStats) {
	s.TotalPixels += other.TotalPixels
	s.TotalSamples += other.TotalSamples
	s.BlackSamples += other.BlackSamples
}

func (s *RenderStats) finish(maxSamples int, duration time.Duration) {
	s.MaxSamples = maxSamples
	s.Duration = duration
	if s.TotalPixels > 0 {
		s.AverageSamples = float64(s.TotalSamples) / float64(s.TotalPixels)
	}
}

// PixelStats tracks sampling statistics for a single pixel
type PixelStats struct {
	ColorAccum  core.Vec3 // RGB accumulator for final result
	SampleCount int       // Number of samples taken
	BlackCount  int       // Number of samples that returned exactly black
}

// AddSample adds a new color sample to the pixel statistics
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	ps.SampleCount++
	if color.IsZero() {
		ps.BlackCount++
	}
}

// GetColor returns the current average color for this pixel
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}
