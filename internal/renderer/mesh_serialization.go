package renderer

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
)

const (
	meshMagic   = uint32(0x4D455348) // "MESH"
	meshVersion = uint32(2)

	flagColors = uint32(1)
)

// SerializedModel is the manifest entry written next to a baked mesh file.
type SerializedModel struct {
	Name         string                 `json:"name"`
	MeshDataFile string                 `json:"mesh_data_file,omitempty"`
	Position     [3]float32             `json:"position"`
	Scale        [3]float32             `json:"scale"`
	Rotation     [4]float32             `json:"rotation"` // W, X, Y, Z
	Material     SerializedMaterial     `json:"material"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
}

type SerializedMaterial struct {
	DiffuseColor  [3]float32 `json:"diffuse_color"`
	SpecularColor [3]float32 `json:"specular_color"`
	Shininess     float32    `json:"shininess"`
	Alpha         float32    `json:"alpha"`
}

// EncodeMeshBinary encodes mesh data to the compressed binary format. The output
// is a pure function of the mesh contents.
func EncodeMeshBinary(mesh *Mesh) ([]byte, error) {
	var buf bytes.Buffer
	gzWriter := gzip.NewWriter(&buf)

	flags := uint32(0)
	if len(mesh.Colors) > 0 {
		flags |= flagColors
	}
	for _, v := range []uint32{meshMagic, meshVersion, flags} {
		if err := binary.Write(gzWriter, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}

	for _, data := range [][]float32{mesh.Vertices, mesh.Normals, mesh.TextureCoords} {
		if err := writeFloat32Slice(gzWriter, data); err != nil {
			return nil, err
		}
	}
	if flags&flagColors != 0 {
		if err := writeFloat32Slice(gzWriter, mesh.Colors); err != nil {
			return nil, err
		}
	}
	if err := writeUint32Slice(gzWriter, mesh.Indices); err != nil {
		return nil, err
	}

	if err := gzWriter.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeMeshBinary decodes compressed binary mesh data
func DecodeMeshBinary(data []byte) (*Mesh, error) {
	gzReader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzReader.Close()

	var header [3]uint32
	if err := binary.Read(gzReader, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("read mesh header: %w", err)
	}
	if header[0] != meshMagic {
		return nil, fmt.Errorf("invalid mesh file magic: %x", header[0])
	}
	if header[1] != meshVersion {
		return nil, fmt.Errorf("unsupported mesh version: %d", header[1])
	}
	flags := header[2]

	mesh := &Mesh{}
	for _, dst := range []*[]float32{&mesh.Vertices, &mesh.Normals, &mesh.TextureCoords} {
		if *dst, err = readFloat32Slice(gzReader); err != nil {
			return nil, err
		}
	}
	if flags&flagColors != 0 {
		if mesh.Colors, err = readFloat32Slice(gzReader); err != nil {
			return nil, err
		}
	}
	if mesh.Indices, err = readUint32Slice(gzReader); err != nil {
		return nil, err
	}
	return mesh, nil
}

func writeFloat32Slice(w io.Writer, data []float32) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(data))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, data)
}

func writeUint32Slice(w io.Writer, data []uint32) error {
	if err := binary.Write(w, binary.LittleEndian, int32(len(data))); err != nil {
		return err
	}
	return binary.Write(w, binary.LittleEndian, data)
}

func readCount(r io.Reader) (int, error) {
	var count int32
	if err := binary.Read(r, binary.LittleEndian, &count); err != nil {
		return 0, err
	}
	if count < 0 {
		return 0, fmt.Errorf("negative slice length %d", count)
	}
	return int(count), nil
}

func readFloat32Slice(r io.Reader) ([]float32, error) {
	count, err := readCount(r)
	if err != nil {
		return nil, err
	}
	data := make([]float32, count)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	return data, nil
}

func readUint32Slice(r io.Reader) ([]uint32, error) {
	count, err := readCount(r)
	if err != nil {
		return nil, err
	}
	data := make([]uint32, count)
	if err := binary.Read(r, binary.LittleEndian, data); err != nil {
		return nil, err
	}
	return data, nil
}

// SerializeModelToJSON creates the manifest entry for a baked model.
func SerializeModelToJSON(model *Model, meshFile string) ([]byte, error) {
	serialized := SerializedModel{
		Name:         model.Name,
		MeshDataFile: meshFile,
		Position:     [3]float32{model.Position.X(), model.Position.Y(), model.Position.Z()},
		Scale:        [3]float32{model.Scale.X(), model.Scale.Y(), model.Scale.Z()},
		Rotation:     [4]float32{model.Rotation.W, model.Rotation.V.X(), model.Rotation.V.Y(), model.Rotation.V.Z()},
		Metadata:     model.Metadata,
	}
	if model.Material != nil {
		serialized.Material = SerializedMaterial{
			DiffuseColor:  model.Material.DiffuseColor,
			SpecularColor: model.Material.SpecularColor,
			Shininess:     model.Material.Shininess,
			Alpha:         model.Material.Alpha,
		}
	}
	return json.Marshal(serialized)
}
