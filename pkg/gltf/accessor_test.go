package gltf

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// f32le encodes float32 values as little-endian bytes.
func f32le(vals ...float32) []byte {
	buf := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, math.Float32bits(v))
	}
	return buf
}

// u16le encodes uint16 values as little-endian bytes.
func u16le(vals ...uint16) []byte {
	buf := make([]byte, 0, len(vals)*2)
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint16(buf, v)
	}
	return buf
}

// u32le encodes uint32 values as little-endian bytes.
func u32le(vals ...uint32) []byte {
	buf := make([]byte, 0, len(vals)*4)
	for _, v := range vals {
		buf = binary.LittleEndian.AppendUint32(buf, v)
	}
	return buf
}

// docWith builds a document containing one accessor and one buffer view.
func docWith(acc Accessor, view BufferView) *Document {
	vi := 0
	acc.BufferView = &vi
	return &Document{
		Accessors:   []Accessor{acc},
		BufferViews: []BufferView{view},
		Buffers:     []Buffer{{URI: "test.bin"}},
	}
}

func TestDecodeVec3_TightPacked(t *testing.T) {
	buf := f32le(1, 2, 3, 4, 5, 6)
	doc := docWith(
		Accessor{ComponentType: ComponentFloat, Count: 2, Type: "VEC3"},
		BufferView{},
	)

	got, err := DecodeVec3(doc, buf, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := [][3]float32{{1, 2, 3}, {4, 5, 6}}
	if len(got) != len(want) {
		t.Fatalf("got %d elements, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestDecodeVec3_Interleaved(t *testing.T) {
	// Position/normal interleaved at stride 24; positions first.
	buf := append(f32le(1, 2, 3, 99, 99, 99), f32le(4, 5, 6, 99, 99, 99)...)
	doc := docWith(
		Accessor{ComponentType: ComponentFloat, Count: 2, Type: "VEC3"},
		BufferView{ByteStride: 24},
	)

	got, err := DecodeVec3(doc, buf, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != [3]float32{1, 2, 3} || got[1] != [3]float32{4, 5, 6} {
		t.Errorf("stride not honored: got %v", got)
	}
}

func TestDecodeVec3_CombinedOffsets(t *testing.T) {
	// 4 bytes padding consumed by the view, 12 more by the accessor.
	buf := append(make([]byte, 4), f32le(0, 0, 0, 7, 8, 9)...)
	doc := docWith(
		Accessor{ByteOffset: 12, ComponentType: ComponentFloat, Count: 1, Type: "VEC3"},
		BufferView{ByteOffset: 4},
	)

	got, err := DecodeVec3(doc, buf, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != [3]float32{7, 8, 9} {
		t.Errorf("got %v, want [7 8 9]", got[0])
	}
}

func TestDecodeVec3_ShortBuffer(t *testing.T) {
	doc := docWith(
		Accessor{ComponentType: ComponentFloat, Count: 2, Type: "VEC3"},
		BufferView{},
	)

	_, err := DecodeVec3(doc, f32le(1, 2, 3, 4), 0)
	if !errors.Is(err, ErrShortBuffer) {
		t.Errorf("got %v, want ErrShortBuffer", err)
	}
}

func TestDecodeVec3_AccessorOutOfRange(t *testing.T) {
	doc := &Document{Buffers: []Buffer{{URI: "test.bin"}}}
	_, err := DecodeVec3(doc, nil, 5)
	if !errors.Is(err, ErrMalformedDocument) {
		t.Errorf("got %v, want ErrMalformedDocument", err)
	}
}

func TestDecodeVec2(t *testing.T) {
	buf := f32le(0.25, 0.75, 0.5, 1.0)
	doc := docWith(
		Accessor{ComponentType: ComponentFloat, Count: 2, Type: "VEC2"},
		BufferView{},
	)

	got, err := DecodeVec2(doc, buf, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != [2]float32{0.25, 0.75} || got[1] != [2]float32{0.5, 1.0} {
		t.Errorf("got %v", got)
	}
}

func TestDecodeIndices(t *testing.T) {
	tests := []struct {
		name          string
		componentType int
		buf           []byte
		count         int
		want          []uint32
		wantErr       error
	}{
		{
			name:          "ushort",
			componentType: ComponentUShort,
			buf:           u16le(0, 1, 2, 2, 1, 3),
			count:         6,
			want:          []uint32{0, 1, 2, 2, 1, 3},
		},
		{
			name:          "uint",
			componentType: ComponentUInt,
			buf:           u32le(0, 1, 2, 0, 2, 3),
			count:         6,
			want:          []uint32{0, 1, 2, 0, 2, 3},
		},
		{
			name:          "ubyte unsupported",
			componentType: 5121,
			buf:           []byte{0, 1, 2},
			count:         3,
			wantErr:       ErrUnsupportedComponentType,
		},
		{
			name:          "float unsupported",
			componentType: ComponentFloat,
			buf:           f32le(0, 1, 2),
			count:         3,
			wantErr:       ErrUnsupportedComponentType,
		},
		{
			name:          "short buffer",
			componentType: ComponentUInt,
			buf:           u32le(0, 1),
			count:         3,
			wantErr:       ErrShortBuffer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := docWith(
				Accessor{ComponentType: tt.componentType, Count: tt.count, Type: "SCALAR"},
				BufferView{},
			)
			got, err := DecodeIndices(doc, tt.buf, 0)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("got error %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d indices, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("index %d: got %d, want %d", i, got[i], tt.want[i])
				}
				if got[i] > 65535 && tt.componentType == ComponentUShort {
					t.Errorf("index %d exceeds 16-bit range: %d", i, got[i])
				}
			}
		})
	}
}

func TestAssembleFaces(t *testing.T) {
	tests := []struct {
		name        string
		indices     []uint32
		vertexCount int
		want        [][3]uint32
		wantErr     bool
	}{
		{
			name:        "indexed",
			indices:     []uint32{0, 1, 2, 2, 1, 3},
			vertexCount: 4,
			want:        [][3]uint32{{0, 1, 2}, {2, 1, 3}},
		},
		{
			name:        "indexed trailing partial dropped",
			indices:     []uint32{0, 1, 2, 3},
			vertexCount: 4,
			want:        [][3]uint32{{0, 1, 2}},
		},
		{
			name:        "synthesized from nine vertices",
			indices:     nil,
			vertexCount: 9,
			want:        [][3]uint32{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}},
		},
		{
			name:        "synthesized trailing partial dropped",
			indices:     nil,
			vertexCount: 10,
			want:        [][3]uint32{{0, 1, 2}, {3, 4, 5}, {6, 7, 8}},
		},
		{
			name:        "synthesized empty",
			indices:     nil,
			vertexCount: 0,
			want:        [][3]uint32{},
		},
		{
			name:        "index out of range",
			indices:     []uint32{0, 1, 7},
			vertexCount: 4,
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := AssembleFaces(tt.indices, tt.vertexCount)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("got %d faces, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("face %d: got %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
