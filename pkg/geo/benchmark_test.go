package geo

import "testing"

func BenchmarkDistance(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_ = Distance(51.5074, -0.1278, 48.8566, 2.3522)
	}
}

func BenchmarkBoundsContains(b *testing.B) {
	bounds := Bounds{North: 42.1, South: 29.0, East: 34.9, West: 24.7}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = bounds.Contains(35.0, 30.0)
	}
}
