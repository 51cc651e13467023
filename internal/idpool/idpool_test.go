package idpool

import (
	"testing"

	"pgregory.net/rapid"
)

func TestGrowLenFree(t *testing.T) {
	var p Pool[uint32]
	if p.Len() != 0 || p.Free() != 0 {
		t.Fatalf("zero value: Len=%d Free=%d, want 0, 0", p.Len(), p.Free())
	}
	p.Grow(2)
	if p.Len() != 64 || p.Free() != 64 {
		t.Fatalf("Grow(2): Len=%d Free=%d, want 64, 64", p.Len(), p.Free())
	}
}

func TestAcquireReleaseFind(t *testing.T) {
	var p Pool[uint8]
	p.Grow(1)

	idx, ok := p.Find()
	if !ok || idx != 0 {
		t.Fatalf("Find: have %d, %t, want 0, true", idx, ok)
	}
	p.Acquire(idx)
	if !p.InUse(idx) {
		t.Fatal("InUse(0): have false, want true")
	}
	if p.Free() != 7 {
		t.Fatalf("Free: have %d, want 7", p.Free())
	}

	idx2, ok := p.Find()
	if !ok || idx2 != 1 {
		t.Fatalf("Find: have %d, %t, want 1, true", idx2, ok)
	}
	p.Release(idx)
	if p.InUse(idx) {
		t.Fatal("InUse(0) after Release: have true, want false")
	}
	if p.Free() != 8 {
		t.Fatalf("Free after Release: have %d, want 8", p.Free())
	}
}

// TestAcquireReleaseSequenceStaysConsistent generates random Grow/
// Acquire/Release/Find sequences and checks that Free always equals
// Len minus the number of indices genuinely in use, and that Find
// never returns an index Acquire would consider already in use.
func TestAcquireReleaseSequenceStaysConsistent(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		var p Pool[uint32]
		inUse := map[int]bool{}

		steps := rapid.IntRange(1, 200).Draw(rt, "steps")
		for i := 0; i < steps; i++ {
			switch rapid.IntRange(0, 3).Draw(rt, "op") {
			case 0:
				p.Grow(rapid.IntRange(1, 4).Draw(rt, "n"))
			case 1:
				idx, ok := p.Find()
				if ok {
					if inUse[idx] {
						rt.Fatalf("Find returned index %d already marked in use", idx)
					}
					p.Acquire(idx)
					inUse[idx] = true
				}
			case 2:
				if len(inUse) == 0 {
					continue
				}
				var victim int
				for k := range inUse {
					victim = k
					break
				}
				p.Release(victim)
				delete(inUse, victim)
			case 3:
				if p.Len() == 0 {
					continue
				}
				idx := rapid.IntRange(0, p.Len()-1).Draw(rt, "idx")
				if p.InUse(idx) != inUse[idx] {
					rt.Fatalf("InUse(%d): have %t, want %t", idx, p.InUse(idx), inUse[idx])
				}
			}

			if want := p.Len() - len(inUse); p.Free() != want {
				rt.Fatalf("Free: have %d, want %d (Len=%d, in use=%d)", p.Free(), want, p.Len(), len(inUse))
			}
		}
	})
}

func TestFindRangeLocatesContiguousRun(t *testing.T) {
	var p Pool[uint16]
	p.Grow(1)
	for _, i := range []int{0, 1, 2, 5, 6, 7} {
		p.Acquire(i)
	}
	// Free indices: 3, 4, 8..15. The first run of 2 is at 3.
	idx, ok := p.FindRange(2)
	if !ok || idx != 3 {
		t.Fatalf("FindRange(2): have %d, %t, want 3, true", idx, ok)
	}
	// No run of 3 exists until index 8.
	idx, ok = p.FindRange(3)
	if !ok || idx != 8 {
		t.Fatalf("FindRange(3): have %d, %t, want 8, true", idx, ok)
	}
}

func TestShrinkTracksFreeCount(t *testing.T) {
	var p Pool[uint8]
	p.Grow(3)
	p.Acquire(0)
	p.Acquire(20)
	p.Shrink(1) // drops the word holding index 20
	if p.Len() != 16 {
		t.Fatalf("Len after Shrink: have %d, want 16", p.Len())
	}
	if p.Free() != 15 {
		t.Fatalf("Free after Shrink: have %d, want 15", p.Free())
	}
}
