// Command example exercises the segalloc library end-to-end: claiming
// an arena, allocating and freeing typed values through segsync, and
// growing on demand via oom.Pages backed by real OS virtual memory.
package main

import (
	"fmt"
	"log"
	"runtime"

	"github.com/segalloc/segalloc"
	"github.com/segalloc/segalloc/oom"
	"github.com/segalloc/segalloc/oom/memsource"
	"github.com/segalloc/segalloc/segsync"
)

type point struct{ x, y float64 }

func main() {
	a := segalloc.New(segalloc.AllocatorOptions{})

	mem := make([]byte, 64*1024)
	if _, err := a.Claim(mem); err != nil {
		log.Fatalf("claim: %v", err)
	}

	if runtime.GOOS == "linux" || runtime.GOOS == "darwin" {
		a.SetOomHandler(&oom.Pages{
			Source:  memsource.New(),
			Initial: 64 * 1024,
			Max:     16 << 20,
		})
	} else {
		a.SetOomHandler(oom.Fail{})
	}

	safe := segsync.NewSafeAllocator(a)

	pts := make([]*point, 0, 1000)
	for i := 0; i < 1000; i++ {
		p, err := segsync.SafeAlloc[point](safe)
		if err != nil {
			log.Fatalf("alloc %d: %v", i, err)
		}
		p.x, p.y = float64(i), float64(i*i)
		pts = append(pts, p)
	}

	for _, p := range pts {
		segsync.SafeFree(safe, p)
	}

	m := safe.Metrics()
	fmt.Printf("arenas=%d allocated=%d free=%d\n", m.ArenaCount, m.BytesAllocated, m.BytesFree)
}
