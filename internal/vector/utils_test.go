package vector

import (
	"math"
	"reflect"
	"testing"
)

func TestVectorByteRoundTrip(t *testing.T) {
	tests := []struct {
		name  string
		input []float32
	}{
		{"empty", []float32{}},
		{"single value", []float32{1.5}},
		{"mixed values", []float32{-1.0, 0.0, 1.0, 3.14, -2.718}},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			data, err := Float32SliceToBytes(test.input)
			if err != nil {
				t.Fatalf("Float32SliceToBytes() error: %v", err)
			}
			got, err := BytesToFloat32Slice(data)
			if err != nil {
				t.Fatalf("BytesToFloat32Slice() error: %v", err)
			}
			if !reflect.DeepEqual(test.input, got) {
				t.Errorf("round trip mismatch: want %v, got %v", test.input, got)
			}
		})
	}
}

func TestBytesToFloat32SliceTruncated(t *testing.T) {
	data, err := Float32SliceToBytes([]float32{1, 2, 3})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if _, err := BytesToFloat32Slice(data[:len(data)-2]); err == nil {
		t.Errorf("expected error for truncated payload")
	}
	if _, err := BytesToFloat32Slice(nil); err == nil {
		t.Errorf("expected error for empty payload")
	}
}

func TestCosineSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float64
		wantErr  bool
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1.0, false},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0.0, false},
		{"opposite", []float32{1, 2}, []float32{-1, -2}, -1.0, false},
		{"length mismatch", []float32{1, 2, 3}, []float32{1, 2}, 0, true},
		{"zero vector", []float32{0, 0}, []float32{1, 2}, 0, true},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := CosineSimilarity(test.a, test.b)
			if (err != nil) != test.wantErr {
				t.Fatalf("CosineSimilarity() error = %v, wantErr %v", err, test.wantErr)
			}
			if test.wantErr {
				return
			}
			if math.Abs(got-test.expected) > 1e-6 {
				t.Errorf("CosineSimilarity() = %v, want %v", got, test.expected)
			}
		})
	}
}

func TestMockEmbedderDeterministic(t *testing.T) {
	emb := NewMockEmbedder(64)
	if err := emb.Initialize(); err != nil {
		t.Fatalf("Initialize() error: %v", err)
	}

	a, err := emb.CreateEmbedding(t.Context(), "memorybank")
	if err != nil {
		t.Fatalf("CreateEmbedding() error: %v", err)
	}
	b, err := emb.CreateEmbedding(t.Context(), "memorybank")
	if err != nil {
		t.Fatalf("CreateEmbedding() error: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Errorf("expected identical embeddings for identical text")
	}
	if len(a) != 64 {
		t.Errorf("expected dimension 64, got %d", len(a))
	}

	c, err := emb.CreateEmbedding(t.Context(), "something else")
	if err != nil {
		t.Fatalf("CreateEmbedding() error: %v", err)
	}
	if reflect.DeepEqual(a, c) {
		t.Errorf("expected different embeddings for different text")
	}

	// Unit length after normalization.
	var sumSquares float64
	for _, v := range a {
		sumSquares += float64(v) * float64(v)
	}
	if math.Abs(sumSquares-1.0) > 1e-3 {
		t.Errorf("expected unit vector, got squared magnitude %v", sumSquares)
	}
}

func TestMockEmbedderDefaultDimensions(t *testing.T) {
	emb := NewMockEmbedder(0)
	if emb.Dimensions() != 128 {
		t.Errorf("expected fallback dimension 128, got %d", emb.Dimensions())
	}
}
