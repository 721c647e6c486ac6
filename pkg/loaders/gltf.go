package loaders

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/qmuntal/gltf"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/df07/go-pathtrace-core/pkg/core"
	"github.com/df07/go-pathtrace-core/pkg/material"
	"github.com/df07/go-pathtrace-core/pkg/renderer"
)

// ErrNoCamera is returned when a glTF document has no node carrying a perspective camera
var ErrNoCamera = errors.New("gltf: no perspective camera in scene")

const (
	extTransmission = "KHR_materials_transmission"
	extIOR          = "KHR_materials_ior"

	defaultIOR         = 1.5
	defaultAspectRatio = 16.0 / 9.0
)

// SphereProxy stands in for a glTF mesh primitive: a sphere centred on its bounding
// box whose diameter is the box's longest side
type SphereProxy struct {
	Name     string
	Center   core.Vec3
	Radius   float64
	Material material.Material
}

// GLTFScene is the part of a glTF document the path tracer understands
type GLTFScene struct {
	CameraConfig renderer.CameraConfig
	Materials    map[string]material.Material // Keyed by glTF material name
	Spheres      []SphereProxy
}

// transform is a node's accumulated world placement. Non-uniform scale is
// collapsed to its largest component since proxies are spheres.
type transform struct {
	translation mgl64.Vec3
	rotation    mgl64.Quat
	scale       float64
}

func identity() transform {
	return transform{rotation: mgl64.QuatIdent(), scale: 1}
}

// apply maps a point from node space to world space
func (t transform) apply(p mgl64.Vec3) mgl64.Vec3 {
	return t.translation.Add(t.rotation.Rotate(p.Mul(t.scale)))
}

// child composes a node's local transform onto its parent's transform
func (t transform) child(node *gltf.Node) transform {
	tr, local, s := localTRS(node)
	return transform{
		translation: t.apply(tr),
		rotation:    t.rotation.Mul(local).Normalize(),
		scale:       t.scale * math.Max(math.Abs(s[0]), math.Max(math.Abs(s[1]), math.Abs(s[2]))),
	}
}

// localTRS returns a node's translation, rotation and per-axis scale, taken from
// its matrix when one is set and from the TRS properties otherwise
func localTRS(node *gltf.Node) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	if matrix := node.MatrixOrDefault(); matrix != gltf.DefaultMatrix {
		return decomposeMatrix(mgl64.Mat4(matrix))
	}

	tr := node.TranslationOrDefault()
	r := node.RotationOrDefault() // [x, y, z, w]
	s := node.ScaleOrDefault()
	return mgl64.Vec3{tr[0], tr[1], tr[2]},
		mgl64.Quat{W: r[3], V: mgl64.Vec3{r[0], r[1], r[2]}},
		mgl64.Vec3{s[0], s[1], s[2]}
}

// decomposeMatrix splits a column-major affine matrix into translation, rotation
// and scale. Shear is dropped; a degenerate axis leaves the rotation at identity.
func decomposeMatrix(m mgl64.Mat4) (mgl64.Vec3, mgl64.Quat, mgl64.Vec3) {
	translation := m.Col(3).Vec3()
	scale := mgl64.Vec3{m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()}
	if scale[0] == 0 || scale[1] == 0 || scale[2] == 0 {
		return translation, mgl64.QuatIdent(), scale
	}

	rotation := mgl64.Mat4FromCols(
		m.Col(0).Vec3().Mul(1/scale[0]).Vec4(0),
		m.Col(1).Vec3().Mul(1/scale[1]).Vec4(0),
		m.Col(2).Vec3().Mul(1/scale[2]).Vec4(0),
		mgl64.Vec4{0, 0, 0, 1},
	)
	return translation, mgl64.Mat4ToQuat(rotation).Normalize(), scale
}

// LoadGLTF opens a .gltf or .glb file and converts it
func LoadGLTF(path string) (*GLTFScene, error) {
	doc, err := gltf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("gltf open %q: %w", path, err)
	}
	result, err := SceneFromDocument(doc)
	if err != nil {
		return nil, fmt.Errorf("gltf %q: %w", path, err)
	}
	return result, nil
}

// SceneFromDocument converts an already decoded glTF document. The first node
// (depth-first from the scene roots) with a perspective camera becomes the camera.
func SceneFromDocument(doc *gltf.Document) (*GLTFScene, error) {
	materials := make([]material.Material, len(doc.Materials))
	result := &GLTFScene{Materials: make(map[string]material.Material, len(doc.Materials))}
	for i, gm := range doc.Materials {
		mat, err := convertMaterial(gm)
		if err != nil {
			return nil, fmt.Errorf("material %d: %w", i, err)
		}
		materials[i] = mat
		result.Materials[materialName(gm, i)] = mat
	}

	fallback := material.NewLambertian(core.NewVec3(0.8, 0.8, 0.8))
	foundCamera := false

	var visit func(idx int, parent transform, depth int) error
	visit = func(idx int, parent transform, depth int) error {
		if idx < 0 || idx >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", idx)
		}
		if depth > len(doc.Nodes) {
			return fmt.Errorf("node %d: cycle in node hierarchy", idx)
		}
		node := doc.Nodes[idx]
		world := parent.child(node)

		if !foundCamera && node.Camera != nil && *node.Camera < len(doc.Cameras) {
			if cam := doc.Cameras[*node.Camera]; cam.Perspective != nil {
				result.CameraConfig = cameraConfig(cam.Perspective, world)
				foundCamera = true
			}
		}

		if node.Mesh != nil && *node.Mesh < len(doc.Meshes) {
			mesh := doc.Meshes[*node.Mesh]
			for pi, prim := range mesh.Primitives {
				proxy, ok := sphereProxy(doc, prim, world)
				if !ok {
					continue
				}
				proxy.Name = fmt.Sprintf("%s_p%d", nodeName(node, idx), pi)
				proxy.Material = fallback
				if prim.Material != nil && *prim.Material < len(materials) {
					proxy.Material = materials[*prim.Material]
				}
				result.Spheres = append(result.Spheres, proxy)
			}
		}

		for _, c := range node.Children {
			if err := visit(c, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range rootNodes(doc) {
		if err := visit(root, identity(), 0); err != nil {
			return nil, err
		}
	}

	if !foundCamera {
		return nil, ErrNoCamera
	}
	result.CameraConfig.FocusDistance = nearestFocus(result.CameraConfig, result.Spheres)
	return result, nil
}

// rootNodes returns the default scene's roots, or every parentless node when the
// document has no default scene
func rootNodes(doc *gltf.Document) []int {
	if doc.Scene != nil && *doc.Scene < len(doc.Scenes) {
		return doc.Scenes[*doc.Scene].Nodes
	}
	hasParent := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c < len(hasParent) {
				hasParent[c] = true
			}
		}
	}
	var roots []int
	for i := range doc.Nodes {
		if !hasParent[i] {
			roots = append(roots, i)
		}
	}
	return roots
}

// cameraConfig places a glTF perspective camera. glTF cameras look down -Z with
// +Y up in node space. LookAt is one unit ahead, so the focus distance comes
// from nearestFocus.
func cameraConfig(p *gltf.Perspective, world transform) renderer.CameraConfig {
	eye := world.translation
	forward := world.rotation.Rotate(mgl64.Vec3{0, 0, -1})
	up := world.rotation.Rotate(mgl64.Vec3{0, 1, 0})

	aspect := defaultAspectRatio
	if p.AspectRatio != nil && *p.AspectRatio > 0 {
		aspect = *p.AspectRatio
	}

	return renderer.CameraConfig{
		Center:      toVec3(eye),
		LookAt:      toVec3(eye.Add(forward)),
		Up:          toVec3(up),
		VFov:        mgl64.RadToDeg(p.Yfov),
		AspectRatio: aspect,
	}
}

// nearestFocus returns the depth along the view direction of the closest proxy
// centre in front of the camera, or 0 (focus on LookAt) when there is none
func nearestFocus(cfg renderer.CameraConfig, spheres []SphereProxy) float64 {
	forward := cfg.LookAt.Subtract(cfg.Center).Normalize()
	nearest := math.Inf(1)
	for _, sp := range spheres {
		if depth := sp.Center.Subtract(cfg.Center).Dot(forward); depth > 0 && depth < nearest {
			nearest = depth
		}
	}
	if math.IsInf(nearest, 1) {
		return 0
	}
	return nearest
}

// sphereProxy builds the world-space sphere for a primitive from the min/max
// bounds of its POSITION accessor
func sphereProxy(doc *gltf.Document, prim *gltf.Primitive, world transform) (SphereProxy, bool) {
	posIdx, ok := prim.Attributes["POSITION"]
	if !ok || posIdx >= len(doc.Accessors) {
		return SphereProxy{}, false
	}
	acc := doc.Accessors[posIdx]
	if len(acc.Min) < 3 || len(acc.Max) < 3 {
		return SphereProxy{}, false
	}

	lo := r3.Vec{X: acc.Min[0], Y: acc.Min[1], Z: acc.Min[2]}
	hi := r3.Vec{X: acc.Max[0], Y: acc.Max[1], Z: acc.Max[2]}
	center := r3.Scale(0.5, r3.Add(lo, hi))
	extent := r3.Sub(hi, lo)
	radius := 0.5 * math.Max(extent.X, math.Max(extent.Y, extent.Z)) * world.scale
	if radius <= 0 {
		return SphereProxy{}, false
	}

	c := world.apply(mgl64.Vec3{center.X, center.Y, center.Z})
	return SphereProxy{Center: toVec3(c), Radius: radius}, true
}

// convertMaterial maps PBR metallic-roughness onto the three scattering models:
// any transmission gives a dielectric, metallic >= 0.5 a metal whose fuzz is the
// roughness, everything else a lambertian with the base color.
func convertMaterial(gm *gltf.Material) (material.Material, error) {
	var transmission struct {
		TransmissionFactor float64 `json:"transmissionFactor"`
	}
	hasTransmission, err := decodeExtension(gm.Extensions, extTransmission, &transmission)
	if err != nil {
		return nil, err
	}
	if hasTransmission && transmission.TransmissionFactor > 0 {
		ior := struct {
			IOR float64 `json:"ior"`
		}{IOR: defaultIOR}
		if _, err := decodeExtension(gm.Extensions, extIOR, &ior); err != nil {
			return nil, err
		}
		if ior.IOR <= 0 {
			ior.IOR = defaultIOR
		}
		return material.NewDielectric(ior.IOR), nil
	}

	// Absent pbrMetallicRoughness means every factor takes its glTF default
	pbr := gm.PBRMetallicRoughness
	if pbr == nil {
		pbr = &gltf.PBRMetallicRoughness{}
	}
	c := pbr.BaseColorFactorOrDefault()
	albedo := core.NewVec3(c[0], c[1], c[2])

	if pbr.MetallicFactorOrDefault() >= 0.5 {
		return material.NewMetal(albedo, pbr.RoughnessFactorOrDefault()), nil
	}
	return material.NewLambertian(albedo), nil
}

// decodeExtension unmarshals a material extension into out. Extensions without a
// registered decoder arrive as raw JSON.
func decodeExtension(exts gltf.Extensions, name string, out any) (bool, error) {
	raw, ok := exts[name]
	if !ok {
		return false, nil
	}
	var data []byte
	switch v := raw.(type) {
	case json.RawMessage:
		data = v
	case []byte:
		data = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return false, fmt.Errorf("%s: %w", name, err)
		}
		data = b
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("%s: %w", name, err)
	}
	return true, nil
}

func materialName(gm *gltf.Material, idx int) string {
	if gm.Name != "" {
		return gm.Name
	}
	return fmt.Sprintf("material_%d", idx)
}

func nodeName(n *gltf.Node, idx int) string {
	if n.Name != "" {
		return n.Name
	}
	return fmt.Sprintf("node_%d", idx)
}

func toVec3(v mgl64.Vec3) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}
