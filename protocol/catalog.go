package protocol

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// Catalog is the ordered list of capabilities offered by the source.
// Index i corresponds to object position i+1. Sources list fixed supplies
// in ascending voltage order and the selection policy relies on it; the
// catalog keeps the order it was given and does not sort.
type Catalog struct {
	entries  []Capability
	ppsIndex int
}

// NewCatalog builds a catalog from already decoded capabilities.
// At most MaxCapabilities entries are accepted, and every entry must fit
// its record.
func NewCatalog(entries ...Capability) (*Catalog, error) {
	if len(entries) > MaxCapabilities {
		return nil, fmt.Errorf("too many capabilities: got %d, maximum is %d", len(entries), MaxCapabilities)
	}
	for i, e := range entries {
		if err := e.validate(); err != nil {
			return nil, fmt.Errorf("capability %d: %w", i, err)
		}
	}

	c := &Catalog{
		entries:  append([]Capability(nil), entries...),
		ppsIndex: -1,
	}
	for i, e := range c.entries {
		// When several PPS entries are offered the last one is used.
		if e.Kind == KindProgrammable {
			c.ppsIndex = i
		}
	}
	return c, nil
}

// BuildCatalog decodes count records from the capability block.
//
// count is clamped to MaxCapabilities; block must hold at least
// count*RecordSize bytes. Records beyond count are ignored.
func BuildCatalog(count int, block []byte) (*Catalog, error) {
	if count < 0 {
		return nil, fmt.Errorf("invalid capability count %d", count)
	}
	if count > MaxCapabilities {
		count = MaxCapabilities
	}
	if len(block) < count*RecordSize {
		return nil, &DecodeError{
			Length: len(block),
			Reason: fmt.Sprintf("capability block too short for %d records", count),
		}
	}

	entries := make([]Capability, 0, count)
	for i := 0; i < count; i++ {
		off := i * RecordSize
		c, err := DecodeCapability(block[off : off+RecordSize])
		if err != nil {
			if de, ok := err.(*DecodeError); ok {
				de.Offset = off
			}
			return nil, err
		}
		entries = append(entries, c)
	}

	return NewCatalog(entries...)
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// At returns the entry at index i. It panics if i is out of range.
func (c *Catalog) At(i int) Capability {
	return c.entries[i]
}

// Entries returns a copy of the catalog entries.
func (c *Catalog) Entries() []Capability {
	return append([]Capability(nil), c.entries...)
}

// HasProgrammable reports whether the source offers a PPS capability.
func (c *Catalog) HasProgrammable() bool {
	return c.ppsIndex >= 0
}

// ProgrammableIndex returns the index of the PPS capability used for selection.
func (c *Catalog) ProgrammableIndex() (int, bool) {
	return c.ppsIndex, c.ppsIndex >= 0
}

// Block encodes the catalog back into a SourcePDOLength byte block.
// Unused slots are zero.
func (c *Catalog) Block() []byte {
	out := make([]byte, SourcePDOLength)
	for i, e := range c.entries {
		binary.LittleEndian.PutUint32(out[i*RecordSize:], e.pack())
	}
	return out
}

// String renders one line per entry, in the form "PDO[n] - <capability>".
func (c *Catalog) String() string {
	var b strings.Builder
	for i, e := range c.entries {
		fmt.Fprintf(&b, "PDO[%d] - %s\n", i+1, e)
	}
	return b.String()
}
