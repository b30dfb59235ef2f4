package loaders

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/spaghettifunk/fakesss/engine/core"
	"github.com/spaghettifunk/fakesss/engine/renderer/metadata"
)

var (
	ErrObjSyntax = errors.New("obj syntax error")
	ErrObjIndex  = errors.New("obj index out of range")
)

type ModelLoader struct{}

func (ml *ModelLoader) Load(path string, assetType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrAssetNotFound, err)
	}
	defer file.Close()

	var p metadata.MeshResourceParams
	if mp, ok := params.(*metadata.MeshResourceParams); ok && mp != nil {
		p = *mp
	}
	g, err := ParseOBJ(file, p.Scale)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	g.Transform(mgl32.Translate3D(p.Translation[0], p.Translation[1], p.Translation[2]))
	core.LogInfo("loaded %s: %d vertices, %d triangles", path, len(g.Vertices), len(g.Triangles))
	return &metadata.Resource{
		Name:     path,
		FullPath: path,
		DataSize: uint64(len(g.Vertices) * metadata.Vertex3DFloats * 4),
		Data:     g,
	}, nil
}

func (ml *ModelLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	return nil
}

type objIndex struct {
	v, vt, vn int
}

type objParser struct {
	line      int
	positions []mgl32.Vec3
	texcoords []mgl32.Vec2
	normals   []mgl32.Vec3
	geometry  *metadata.Geometry
	vertices  map[objIndex]uint32
	hasNormal bool
}

// ParseOBJ reads positions, texcoords, normals and faces. Polygons are fan
// triangulated. With scale > 0 the mesh is centred and scaled so its largest
// extent equals scale. Tangents are generated from the texcoords.
func ParseOBJ(r io.Reader, scale float32) (*metadata.Geometry, error) {
	p := &objParser{
		geometry:  &metadata.Geometry{},
		vertices:  make(map[objIndex]uint32),
		hasNormal: true,
	}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		p.line++
		if err := p.parseLine(scanner.Text()); err != nil {
			return nil, fmt.Errorf("line %d: %w", p.line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	g := p.geometry
	if len(g.Triangles) == 0 {
		return nil, fmt.Errorf("%w: no faces", ErrObjSyntax)
	}
	if !p.hasNormal {
		computeNormals(g)
	}
	computeTangents(g)
	if scale > 0 {
		normalize(g, scale)
	}
	return g, nil
}

func (p *objParser) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}
	switch fields[0] {
	case "v":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.positions = append(p.positions, mgl32.Vec3{v[0], v[1], v[2]})
	case "vt":
		v, err := parseFloats(fields[1:], 2)
		if err != nil {
			return err
		}
		p.texcoords = append(p.texcoords, mgl32.Vec2{v[0], v[1]})
	case "vn":
		v, err := parseFloats(fields[1:], 3)
		if err != nil {
			return err
		}
		p.normals = append(p.normals, mgl32.Vec3{v[0], v[1], v[2]})
	case "f":
		return p.parseFace(fields[1:])
	}
	// o, g, s, usemtl and mtllib carry nothing the pipeline uses
	return nil
}

func parseFloats(fields []string, n int) ([]float32, error) {
	if len(fields) < n {
		return nil, fmt.Errorf("%w: expected %d values, got %d", ErrObjSyntax, n, len(fields))
	}
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		val, err := strconv.ParseFloat(fields[i], 32)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrObjSyntax, err)
		}
		out[i] = float32(val)
	}
	return out, nil
}

// resolve turns a 1-based or negative (relative) OBJ index into a 0-based one.
func resolve(field string, count int) (int, error) {
	val, err := strconv.Atoi(field)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrObjSyntax, err)
	}
	idx := val - 1
	if val < 0 {
		idx = count + val
	}
	if val == 0 || idx < 0 || idx >= count {
		return 0, fmt.Errorf("%w: %d of %d", ErrObjIndex, val, count)
	}
	return idx, nil
}

func (p *objParser) parseFace(fields []string) error {
	if len(fields) < 3 {
		return fmt.Errorf("%w: face with %d vertices", ErrObjSyntax, len(fields))
	}
	corners := make([]uint32, len(fields))
	for i, f := range fields {
		parts := strings.Split(f, "/")
		key := objIndex{v: -1, vt: -1, vn: -1}
		var err error
		if key.v, err = resolve(parts[0], len(p.positions)); err != nil {
			return err
		}
		if len(parts) > 1 && parts[1] != "" {
			if key.vt, err = resolve(parts[1], len(p.texcoords)); err != nil {
				return err
			}
		}
		if len(parts) > 2 && parts[2] != "" {
			if key.vn, err = resolve(parts[2], len(p.normals)); err != nil {
				return err
			}
		} else {
			p.hasNormal = false
		}
		corners[i] = p.vertex(key)
	}
	for i := 1; i+1 < len(corners); i++ {
		p.geometry.AddTriangle(corners[0], corners[i], corners[i+1])
	}
	return nil
}

func (p *objParser) vertex(key objIndex) uint32 {
	if idx, ok := p.vertices[key]; ok {
		return idx
	}
	v := metadata.Vertex3D{Position: p.positions[key.v]}
	if key.vt >= 0 {
		v.Texcoord = p.texcoords[key.vt]
	}
	if key.vn >= 0 {
		v.Normal = p.normals[key.vn]
	}
	idx := p.geometry.AddVertex(v)
	p.vertices[key] = idx
	return idx
}

func computeNormals(g *metadata.Geometry) {
	acc := make([]mgl32.Vec3, len(g.Vertices))
	for _, t := range g.Triangles {
		a, b, c := g.Vertices[t[0]].Position, g.Vertices[t[1]].Position, g.Vertices[t[2]].Position
		n := b.Sub(a).Cross(c.Sub(a))
		for _, i := range t {
			acc[i] = acc[i].Add(n)
		}
	}
	for i := range g.Vertices {
		if acc[i].Len() > 0 {
			g.Vertices[i].Normal = acc[i].Normalize()
		}
	}
}

// computeTangents accumulates per-triangle tangents from the texcoord
// gradients and orthogonalizes them against the normal. W is the bitangent sign.
func computeTangents(g *metadata.Geometry) {
	tan := make([]mgl32.Vec3, len(g.Vertices))
	bitan := make([]mgl32.Vec3, len(g.Vertices))
	for _, t := range g.Triangles {
		v0, v1, v2 := g.Vertices[t[0]], g.Vertices[t[1]], g.Vertices[t[2]]
		e1, e2 := v1.Position.Sub(v0.Position), v2.Position.Sub(v0.Position)
		d1, d2 := v1.Texcoord.Sub(v0.Texcoord), v2.Texcoord.Sub(v0.Texcoord)
		det := d1[0]*d2[1] - d2[0]*d1[1]
		if det == 0 {
			continue
		}
		r := 1 / det
		sdir := e1.Mul(d2[1]).Sub(e2.Mul(d1[1])).Mul(r)
		tdir := e2.Mul(d1[0]).Sub(e1.Mul(d2[0])).Mul(r)
		for _, i := range t {
			tan[i] = tan[i].Add(sdir)
			bitan[i] = bitan[i].Add(tdir)
		}
	}
	for i := range g.Vertices {
		n := g.Vertices[i].Normal
		t := tan[i].Sub(n.Mul(n.Dot(tan[i])))
		if t.Len() < 1e-8 {
			t = fallbackTangent(n)
		}
		t = t.Normalize()
		w := float32(1)
		if n.Cross(t).Dot(bitan[i]) < 0 {
			w = -1
		}
		g.Vertices[i].Tangent = t.Vec4(w)
	}
}

func fallbackTangent(n mgl32.Vec3) mgl32.Vec3 {
	axis := mgl32.Vec3{1, 0, 0}
	if n[0] > 0.9 || n[0] < -0.9 {
		axis = mgl32.Vec3{0, 1, 0}
	}
	return axis.Sub(n.Mul(n.Dot(axis)))
}

func normalize(g *metadata.Geometry, scale float32) {
	lo, hi := g.Extents()
	size := hi.Sub(lo)
	largest := max(size[0], size[1], size[2])
	if largest == 0 {
		return
	}
	center := lo.Add(hi).Mul(0.5)
	s := scale / largest
	g.Transform(mgl32.Scale3D(s, s, s).Mul4(mgl32.Translate3D(-center[0], -center[1], -center[2])))
}
