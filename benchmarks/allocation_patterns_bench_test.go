package benchmarks

import (
	"fmt"
	"runtime"
	"testing"
	"unsafe"

	"github.com/segalloc/segalloc"
)

// BenchmarkSmallAllocations tests small allocation patterns (8-64 bytes).
// These are common for small objects, pointers, and basic data structures.
func BenchmarkSmallAllocations(b *testing.B) {
	sizes := []uintptr{8, 16, 32, 64}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Segalloc_%dB", size), func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 1<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				p, err := a.Allocate(size, 8)
				if err != nil {
					b.Fatalf("Allocate: %v", err)
				}
				a.Deallocate(p, size, 8)
			}
		})

		b.Run(fmt.Sprintf("Builtin_%dB", size), func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = make([]byte, size)
			}
		})
	}
}

// BenchmarkMediumAllocations tests medium allocation patterns (128-1024 bytes).
// These are common for structs, small buffers, and data processing.
func BenchmarkMediumAllocations(b *testing.B) {
	sizes := []uintptr{128, 256, 512, 1024}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Segalloc_%dB", size), func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 1<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				p, err := a.Allocate(size, 8)
				if err != nil {
					b.Fatalf("Allocate: %v", err)
				}
				a.Deallocate(p, size, 8)
			}
		})

		b.Run(fmt.Sprintf("Builtin_%dB", size), func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = make([]byte, size)
			}
		})
	}
}

// BenchmarkLargeAllocations tests large allocation patterns (2KB-64KB).
// These are less common but important for buffers and large data structures.
func BenchmarkLargeAllocations(b *testing.B) {
	sizes := []uintptr{2048, 8192, 32768, 65536}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Segalloc_%dB", size), func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 8<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				p, err := a.Allocate(size, 8)
				if err != nil {
					b.Fatalf("Allocate: %v", err)
				}
				a.Deallocate(p, size, 8)
			}
		})

		b.Run(fmt.Sprintf("Builtin_%dB", size), func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = make([]byte, size)
			}
		})
	}
}

// BenchmarkTypedAllocations tests allocation of various Go types.
func BenchmarkTypedAllocations(b *testing.B) {

	b.Run("BasicTypes", func(b *testing.B) {
		b.Run("Segalloc_int", func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 1<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				p, _ := segalloc.Alloc[int](a)
				segalloc.Free(a, p)
			}
		})

		b.Run("Builtin_int", func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = new(int)
			}
		})

		b.Run("Segalloc_int64", func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 1<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				p, _ := segalloc.Alloc[int64](a)
				segalloc.Free(a, p)
			}
		})

		b.Run("Builtin_int64", func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = new(int64)
			}
		})
	})

	type SmallStruct struct {
		A int32
		B int32
	}

	type MediumStruct struct {
		A int64
		B int64
		C int64
		D int64
		E [32]byte
	}

	type LargeStruct struct {
		A [256]byte
		B int64
		C string
		D []int
	}

	b.Run("Structs", func(b *testing.B) {
		b.Run("Segalloc_SmallStruct", func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 1<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				p, _ := segalloc.Alloc[SmallStruct](a)
				segalloc.Free(a, p)
			}
		})

		b.Run("Builtin_SmallStruct", func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = new(SmallStruct)
			}
		})

		b.Run("Segalloc_MediumStruct", func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 1<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				p, _ := segalloc.Alloc[MediumStruct](a)
				segalloc.Free(a, p)
			}
		})

		b.Run("Builtin_MediumStruct", func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = new(MediumStruct)
			}
		})

		b.Run("Segalloc_LargeStruct", func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 4<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				p, _ := segalloc.Alloc[LargeStruct](a)
				segalloc.Free(a, p)
			}
		})

		b.Run("Builtin_LargeStruct", func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = new(LargeStruct)
			}
		})
	})
}

// BenchmarkSliceAllocations tests slice allocation patterns.
func BenchmarkSliceAllocations(b *testing.B) {
	sizes := []int{10, 100, 1000, 10000}

	for _, size := range sizes {
		b.Run(fmt.Sprintf("Segalloc_Slice_%d", size), func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 8<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				s, _ := segalloc.AllocSlice[int](a, size)
				segalloc.FreeSlice(a, s)
			}
		})

		b.Run(fmt.Sprintf("Segalloc_SliceZeroed_%d", size), func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 8<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				s, _ := segalloc.AllocSliceZeroed[int](a, size)
				segalloc.FreeSlice(a, s)
			}
		})

		b.Run(fmt.Sprintf("Builtin_Slice_%d", size), func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				_ = make([]int, size)
			}
		})
	}
}

// BenchmarkBatchAllocations tests scenarios with many allocations followed
// by a bulk free. This simulates request processing, batch operations, etc.
func BenchmarkBatchAllocations(b *testing.B) {

	b.Run("ManySmallAllocs", func(b *testing.B) {
		b.Run("Segalloc", func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 1<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				ptrs := make([]unsafe.Pointer, 0, 100)
				for j := 0; j < 100; j++ {
					p, _ := a.Allocate(64, 8)
					ptrs = append(ptrs, p)
				}
				for _, p := range ptrs {
					a.Deallocate(p, 64, 8)
				}
			}
		})

		b.Run("Builtin", func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				objects := make([][]byte, 100)
				for j := 0; j < 100; j++ {
					objects[j] = make([]byte, 64)
				}
				if i%10 == 0 {
					runtime.GC()
				}
			}
		})
	})

	type TestStruct struct {
		ID   int64
		Data [56]byte // total 64 bytes
	}

	b.Run("StructAllocs", func(b *testing.B) {
		b.Run("Segalloc", func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 1<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				structs := make([]*TestStruct, 0, 50)
				for j := 0; j < 50; j++ {
					s, _ := segalloc.Alloc[TestStruct](a)
					s.ID = int64(j)
					structs = append(structs, s)
				}
				for _, s := range structs {
					segalloc.Free(a, s)
				}
			}
		})

		b.Run("Builtin", func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				structs := make([]*TestStruct, 50)
				for j := 0; j < 50; j++ {
					structs[j] = &TestStruct{ID: int64(j)}
				}
				if i%10 == 0 {
					runtime.GC()
				}
			}
		})
	})

	b.Run("BufferReuse", func(b *testing.B) {
		b.Run("Segalloc", func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 4<<20))
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				for j := 0; j < 10; j++ {
					buf1, _ := a.Allocate(1024, 8)
					buf2, _ := a.Allocate(2048, 8)
					buf3, _ := a.Allocate(512, 8)
					a.Deallocate(buf3, 512, 8)
					a.Deallocate(buf2, 2048, 8)
					a.Deallocate(buf1, 1024, 8)
				}
			}
		})

		b.Run("Builtin", func(b *testing.B) {
			b.ResetTimer()

			for i := 0; i < b.N; i++ {
				buffers := make([][]byte, 30)
				for j := 0; j < 10; j++ {
					buffers[j*3] = make([]byte, 1024)
					buffers[j*3+1] = make([]byte, 2048)
					buffers[j*3+2] = make([]byte, 512)
				}
				if i%5 == 0 {
					runtime.GC()
				}
			}
		})
	})
}

// BenchmarkGCPressure measures GC impact relative to segalloc's arena-backed
// allocations, which never register as GC-scanned heap objects.
func BenchmarkGCPressure(b *testing.B) {

	b.Run("HighGCPressure", func(b *testing.B) {
		b.Run("Segalloc", func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 4<<20))
			runtime.GC()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				ptrs := make([]unsafe.Pointer, 0, 1000)
				for j := 0; j < 1000; j++ {
					p, _ := a.Allocate(128, 8)
					ptrs = append(ptrs, p)
				}
				for _, p := range ptrs {
					a.Deallocate(p, 128, 8)
				}
			}
		})

		b.Run("Builtin", func(b *testing.B) {
			runtime.GC()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				objects := make([][]byte, 1000)
				for j := 0; j < 1000; j++ {
					objects[j] = make([]byte, 128)
				}
			}
		})
	})

	b.Run("LowGCPressure", func(b *testing.B) {
		b.Run("Segalloc", func(b *testing.B) {
			a := segalloc.New(segalloc.AllocatorOptions{})
			a.Claim(make([]byte, 1<<20))
			runtime.GC()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				p, _ := a.Allocate(64, 8)
				a.Deallocate(p, 64, 8)
			}
		})

		b.Run("Builtin", func(b *testing.B) {
			runtime.GC()

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				_ = make([]byte, 64)
			}
		})
	})
}
