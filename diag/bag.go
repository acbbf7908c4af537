package diag

import (
	"math"
	"sort"
	"sync"

	"fortio.org/safecast"
)

// Bag collects diagnostics up to a limit. It implements Reporter and is safe
// for concurrent use.
type Bag struct {
	mu      sync.Mutex
	items   []Diagnostic
	max     uint16
	dropped int
}

// NewBag returns a bag that keeps at most max diagnostics. A max that is not
// positive or does not fit in 16 bits means the largest supported limit.
func NewBag(max int) *Bag {
	m, err := safecast.Conv[uint16](max)
	if err != nil || m == 0 {
		m = math.MaxUint16
	}
	return &Bag{max: m}
}

// Add adds a diagnostic, respecting the limit. It returns false if the
// diagnostic was dropped because the bag is full.
func (b *Bag) Add(d Diagnostic) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.items) >= int(b.max) {
		b.dropped++
		return false
	}
	b.items = append(b.items, d)
	return true
}

// Report implements Reporter.
func (b *Bag) Report(d Diagnostic) {
	b.Add(d)
}

// Cap returns the maximum number of diagnostics the bag retains.
func (b *Bag) Cap() int {
	return int(b.max)
}

// Dropped returns how many diagnostics were discarded due to the limit.
func (b *Bag) Dropped() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dropped
}

// Len returns the number of retained diagnostics.
func (b *Bag) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// HasErrors reports whether any retained diagnostic is at least SevError.
func (b *Bag) HasErrors() bool {
	return b.hasSeverity(SevError)
}

// HasWarnings reports whether any diagnostic is at least SevWarning.
func (b *Bag) HasWarnings() bool {
	return b.hasSeverity(SevWarning)
}

func (b *Bag) hasSeverity(sev Severity) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.items {
		if b.items[i].Severity >= sev {
			return true
		}
	}
	return false
}

// Items returns a copy of the retained diagnostics.
func (b *Bag) Items() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	items := make([]Diagnostic, len(b.items))
	copy(items, b.items)
	return items
}

// Sort orders diagnostics by file, start, end, severity (descending), and
// code so that output is deterministic regardless of processing order.
func (b *Bag) Sort() {
	b.mu.Lock()
	defer b.mu.Unlock()
	sort.SliceStable(b.items, func(i, j int) bool {
		di, dj := b.items[i], b.items[j]
		if di.Primary.Start.Filename != dj.Primary.Start.Filename {
			return di.Primary.Start.Filename < dj.Primary.Start.Filename
		}
		if di.Primary.Start.Offset != dj.Primary.Start.Offset {
			return di.Primary.Start.Offset < dj.Primary.Start.Offset
		}
		if di.Primary.End.Offset != dj.Primary.End.Offset {
			return di.Primary.End.Offset < dj.Primary.End.Offset
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Code < dj.Code
	})
}
