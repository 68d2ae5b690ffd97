package store

// Air is always palette id 0, so fresh chunk memory reads as air.
const Air = "AIR"

// Palette interns material names as compact block ids. Ids are assigned in
// first-seen order and never reused.
type Palette struct {
	names []string
	index map[string]uint16
}

func NewPalette() *Palette {
	p := &Palette{index: map[string]uint16{}}
	p.ID(Air)
	return p
}

// ID returns the id for name, interning it on first use.
func (p *Palette) ID(name string) uint16 {
	if id, ok := p.index[name]; ok {
		return id
	}
	id := uint16(len(p.names))
	p.names = append(p.names, name)
	p.index[name] = id
	return id
}

func (p *Palette) Name(id uint16) string {
	if int(id) >= len(p.names) {
		return Air
	}
	return p.names[id]
}

func (p *Palette) Len() int { return len(p.names) }
