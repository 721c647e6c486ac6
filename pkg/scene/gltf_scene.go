package scene

import (
	"fmt"

	"github.com/df07/go-pathtrace-core/pkg/loaders"
	"github.com/df07/go-pathtrace-core/pkg/renderer"
)

// NewGLTFScene loads a glTF file and builds a scene from its camera and sphere proxies
func NewGLTFScene(path string, cameraOverrides ...renderer.CameraConfig) (*Scene, error) {
	gltfScene, err := loaders.LoadGLTF(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load glTF scene: %w", err)
	}
	return fromGLTF(gltfScene, cameraOverrides...), nil
}

func fromGLTF(g *loaders.GLTFScene, cameraOverrides ...renderer.CameraConfig) *Scene {
	cameraConfig := applyCameraOverrides(g.CameraConfig, cameraOverrides)
	s := newScene(cameraConfig, renderer.DefaultSamplingConfig())
	for _, proxy := range g.Spheres {
		s.AddSphere(proxy.Center, proxy.Radius, proxy.Material)
	}
	s.Preprocess()
	return s
}
