package colour

import (
	"errors"
	"math/rand"
	"reflect"
	"testing"
)

func testKMeans() KMeans {
	return KMeans{K: 3, MaxIterations: 10, Epsilon: 1.0, Restarts: 5}
}

func TestPartitionDegenerateSample(t *testing.T) {
	km := testKMeans()
	rng := rand.New(rand.NewSource(1))

	_, err := km.Partition([]RGB{{R: 1}, {R: 2}}, rng)
	if !errors.Is(err, ErrDegenerateSample) {
		t.Fatalf("Partition err = %v, want ErrDegenerateSample", err)
	}
}

func TestPartitionUniformSample(t *testing.T) {
	km := testKMeans()
	rng := rand.New(rand.NewSource(1))

	sample := make([]RGB, 100)
	for i := range sample {
		sample[i] = RGB{R: 10, G: 200, B: 30}
	}

	clusters, err := km.Partition(sample, rng)
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}

	total := 0
	for _, c := range clusters {
		total += c.Members
		if c.Members > 0 && c.Centroid != (RGB{R: 10, G: 200, B: 30}) {
			t.Errorf("non-empty cluster centroid = %v, want the uniform colour", c.Centroid)
		}
	}
	if total != len(sample) {
		t.Errorf("member counts sum to %d, want %d", total, len(sample))
	}
}

func TestDominantMajorityGroup(t *testing.T) {
	e := NewExtractor(KMeans{K: 2, MaxIterations: 10, Epsilon: 1.0, Restarts: 5})
	rng := rand.New(rand.NewSource(7))

	var sample []RGB
	for i := 0; i < 90; i++ {
		sample = append(sample, RGB{R: 250, G: 10, B: 10})
	}
	for i := 0; i < 30; i++ {
		sample = append(sample, RGB{R: 10, G: 10, B: 250})
	}

	dominant, err := e.Dominant(sample, rng)
	if err != nil {
		t.Fatalf("Dominant: %v", err)
	}
	if dominant != (RGB{R: 250, G: 10, B: 10}) {
		t.Errorf("dominant = %v, want the majority colour", dominant)
	}
}

func TestPartitionSeededDeterminism(t *testing.T) {
	km := testKMeans()

	gen := rand.New(rand.NewSource(99))
	sample := make([]RGB, 200)
	for i := range sample {
		sample[i] = RGB{R: uint8(gen.Intn(256)), G: uint8(gen.Intn(256)), B: uint8(gen.Intn(256))}
	}

	first, err := km.Partition(sample, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}
	second, err := km.Partition(sample, rand.New(rand.NewSource(42)))
	if err != nil {
		t.Fatalf("Partition: %v", err)
	}

	if !reflect.DeepEqual(first, second) {
		t.Errorf("same seed produced different clusters:\n%v\n%v", first, second)
	}
}

func TestDominantDegenerateSample(t *testing.T) {
	e := NewExtractor(testKMeans())
	rng := rand.New(rand.NewSource(1))

	_, err := e.Dominant([]RGB{{R: 1}}, rng)
	if !errors.Is(err, ErrDegenerateSample) {
		t.Fatalf("Dominant err = %v, want ErrDegenerateSample", err)
	}
}
