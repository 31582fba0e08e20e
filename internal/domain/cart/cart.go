// Package cart implements the session-local cart draft. A draft is never
// persisted; checkout submits its entries as the order payload.
package cart

import "github.com/waveforge/waveforge/internal/domain/catalog"

// ItemType distinguishes the two entry variants.
type ItemType string

const (
	ItemBeat     ItemType = "beat"
	ItemSoundKit ItemType = "sound_kit"
)

// Entry is one priced line in a draft. Exactly two implementations exist:
// BeatEntry and SoundKitEntry.
type Entry interface {
	// ItemID identifies the beat or sound kit the entry refers to.
	ItemID() string
	// Type reports which variant this entry is.
	Type() ItemType
	// Title is the display title at the time the entry was added.
	Title() string
	// Price is the amount this entry contributes to the draft total.
	Price() float64
}

// BeatEntry is a beat paired with the selected license tier. The tier's
// price is the entry price.
type BeatEntry struct {
	Beat    catalog.Beat
	License catalog.LicenseTier
}

func (e BeatEntry) ItemID() string { return e.Beat.ID }
func (e BeatEntry) Type() ItemType { return ItemBeat }
func (e BeatEntry) Title() string  { return e.Beat.Title }
func (e BeatEntry) Price() float64 { return e.License.Price }

// SoundKitEntry is a sound kit priced as a whole.
type SoundKitEntry struct {
	Kit catalog.SoundKit
}

func (e SoundKitEntry) ItemID() string { return e.Kit.ID }
func (e SoundKitEntry) Type() ItemType { return ItemSoundKit }
func (e SoundKitEntry) Title() string  { return e.Kit.Title }
func (e SoundKitEntry) Price() float64 { return e.Kit.Price }

// Draft is an ordered collection of heterogeneous entries. At most one
// license per distinct beat and one entry per distinct sound kit.
// Not safe for concurrent use; a draft belongs to a single session.
type Draft struct {
	entries []Entry
}

// AddBeat adds a beat with the given license. Adding a second license for
// the same beat replaces the first, in place.
func (d *Draft) AddBeat(b catalog.Beat, l catalog.LicenseTier) {
	e := BeatEntry{Beat: b, License: l}
	for i, existing := range d.entries {
		if existing.Type() == ItemBeat && existing.ItemID() == b.ID {
			d.entries[i] = e
			return
		}
	}
	d.entries = append(d.entries, e)
}

// AddSoundKit adds a sound kit. Duplicate adds are a no-op.
func (d *Draft) AddSoundKit(k catalog.SoundKit) {
	for _, existing := range d.entries {
		if existing.Type() == ItemSoundKit && existing.ItemID() == k.ID {
			return
		}
	}
	d.entries = append(d.entries, SoundKitEntry{Kit: k})
}

// Remove deletes the entry matching id and itemType. Absent entries are
// not an error.
func (d *Draft) Remove(id string, itemType ItemType) {
	for i, e := range d.entries {
		if e.Type() == itemType && e.ItemID() == id {
			d.entries = append(d.entries[:i], d.entries[i+1:]...)
			return
		}
	}
}

// Clear empties the draft.
func (d *Draft) Clear() {
	d.entries = nil
}

// Total sums entry prices. Recomputed on every call, never cached.
func (d *Draft) Total() float64 {
	var sum float64
	for _, e := range d.entries {
		sum += e.Price()
	}
	return sum
}

// ItemCount is the number of entries. Each distinct beat or kit counts
// once regardless of license tier changes.
func (d *Draft) ItemCount() int {
	return len(d.entries)
}

// Entries returns the draft contents in insertion order.
func (d *Draft) Entries() []Entry {
	out := make([]Entry, len(d.entries))
	copy(out, d.entries)
	return out
}
