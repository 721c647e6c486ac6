package main

import (
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/df07/go-pathtrace-core/pkg/renderer"
	"github.com/df07/go-pathtrace-core/pkg/scene"
)

func TestCreateScene(t *testing.T) {
	tests := []struct {
		name        string
		sceneType   string
		gltfPath    string
		expectError bool
	}{
		// Built-in scenes
		{"default scene", "default", "", false},
		{"random scene", "random", "", false},
		{"glass scene", "glass", "", false},

		// Invalid scenes
		{"unknown scene", "nonexistent", "", true},
		{"empty scene name", "", "", true},
		{"missing glTF file", "default", "scenes/nonexistent.gltf", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, name, err := createScene(tt.sceneType, tt.gltfPath, renderer.CameraConfig{})

			if tt.expectError {
				if err == nil {
					t.Errorf("Expected error for scene type '%s', but got none", tt.sceneType)
				}
				if s != nil {
					t.Errorf("Expected nil scene for invalid scene type '%s', got %T", tt.sceneType, s)
				}
				return
			}

			if err != nil {
				t.Fatalf("Unexpected error for scene type '%s': %v", tt.sceneType, err)
			}
			if s == nil {
				t.Fatalf("Expected scene for valid scene type '%s', got nil", tt.sceneType)
			}
			if name != tt.sceneType {
				t.Errorf("Expected output name %q, got %q", tt.sceneType, name)
			}
			if s.SamplingConfig.Width <= 0 || s.SamplingConfig.Height <= 0 {
				t.Errorf("Scene sampling size should be positive, got %dx%d",
					s.SamplingConfig.Width, s.SamplingConfig.Height)
			}
		})
	}
}

func TestCreateScene_UnknownWrapsSentinel(t *testing.T) {
	_, _, err := createScene("cornell", "", renderer.CameraConfig{})
	if !errors.Is(err, scene.ErrUnknownScene) {
		t.Errorf("Expected ErrUnknownScene, got %v", err)
	}
}

func TestCreateScene_AppliesOverrides(t *testing.T) {
	s, _, err := createScene("default", "", renderer.CameraConfig{Aperture: 0.4, FocusDistance: 2})
	if err != nil {
		t.Fatalf("createScene failed: %v", err)
	}
	if s.Camera.LensRadius() != 0.2 {
		t.Errorf("Expected lens radius 0.2, got %f", s.Camera.LensRadius())
	}
	if s.Camera.FocusDistance() != 2 {
		t.Errorf("Expected focus distance 2, got %f", s.Camera.FocusDistance())
	}
}

func TestSceneNameFromPath(t *testing.T) {
	tests := []struct {
		path     string
		expected string
	}{
		{"scenes/cornell.gltf", "cornell"},
		{"models/sub/my-scene.glb", "my-scene"},
		{"plain.gltf", "plain"},
		{"noext", "noext"},
		{".gltf", "gltf-scene"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := sceneNameFromPath(tt.path); got != tt.expected {
				t.Errorf("sceneNameFromPath(%q) = %q, want %q", tt.path, got, tt.expected)
			}
		})
	}
}

func TestSamplingConfig(t *testing.T) {
	s, err := scene.NewScene("default")
	if err != nil {
		t.Fatalf("NewScene failed: %v", err)
	}

	t.Run("scene defaults", func(t *testing.T) {
		got := samplingConfig(s, Config{Width: 400, Seed: 9})
		if got.Width != 400 || got.Height != 225 {
			t.Errorf("Expected 400x225 from 16:9 camera, got %dx%d", got.Width, got.Height)
		}
		if got.SamplesPerPixel != s.SamplingConfig.SamplesPerPixel {
			t.Errorf("Expected scene spp %d, got %d", s.SamplingConfig.SamplesPerPixel, got.SamplesPerPixel)
		}
		if got.Seed != 9 {
			t.Errorf("Expected seed 9, got %d", got.Seed)
		}
	})

	t.Run("overrides", func(t *testing.T) {
		got := samplingConfig(s, Config{Width: 160, SPP: 4, MaxDepth: 3, Workers: 2})
		if got.Width != 160 || got.Height != 90 {
			t.Errorf("Expected 160x90, got %dx%d", got.Width, got.Height)
		}
		if got.SamplesPerPixel != 4 || got.MaxDepth != 3 || got.NumWorkers != 2 {
			t.Errorf("Overrides not applied: %+v", got)
		}
	})
}

func TestSaveImage(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "output", "default")
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	now := time.Date(2024, 3, 1, 12, 30, 45, 0, time.UTC)

	filename, err := saveImage(img, dir, now)
	if err != nil {
		t.Fatalf("saveImage failed: %v", err)
	}
	if !strings.HasSuffix(filename, "render_20240301_123045.png") {
		t.Errorf("Unexpected filename %q", filename)
	}

	file, err := os.Open(filename)
	if err != nil {
		t.Fatalf("Failed to open saved image: %v", err)
	}
	defer file.Close()

	decoded, err := png.Decode(file)
	if err != nil {
		t.Fatalf("Saved file is not a PNG: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Errorf("Expected bounds %v, got %v", img.Bounds(), decoded.Bounds())
	}
}
