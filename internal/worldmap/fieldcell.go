package worldmap

// FieldKind identifies a field type. FieldNone is the sentinel "absent" cell.
type FieldKind int8

const (
	FieldNone FieldKind = iota
	FieldBlood
	FieldBile
	FieldAcid
	FieldFire
	FieldSmoke
	FieldTearGas
	FieldNukeGas
	FieldElectricity
	FieldFatigue
)

// FieldCell is a single environmental field cell: type, intensity (1..3),
// and age in turns (spec §3 Field cell). Invariants: intensity > 0 for
// non-none; intensity <= 3; intensity 0 becomes FieldNone in the same turn.
type FieldCell struct {
	Kind      FieldKind
	Intensity uint8
	Age       int32
}

// IsNone reports whether the cell is the absent sentinel.
func (c FieldCell) IsNone() bool { return c.Kind == FieldNone || c.Intensity == 0 }

// FieldDescriptor is the static per-kind behavior table: half-life and
// LOS opacity by intensity. Symbol/color are a Presenter concern and
// omitted here (spec §1 Non-goals).
type FieldDescriptor struct {
	Kind          FieldKind
	HalfLife      int     // 0 = no universal decay check applied
	OpaqueAt      [4]bool // indexed by intensity 0..3
	DamagePerTick [4]int  // indexed by intensity 0..3
}

// FieldDescriptors is the static table of field behavior, indexed by Kind.
var FieldDescriptors = map[FieldKind]FieldDescriptor{
	FieldNone:        {Kind: FieldNone},
	FieldBlood:       {Kind: FieldBlood, HalfLife: 0},
	FieldBile:        {Kind: FieldBile, HalfLife: 0},
	FieldAcid:        {Kind: FieldAcid, HalfLife: 0, DamagePerTick: [4]int{0, 2, 4, 6}},
	FieldFire:        {Kind: FieldFire, HalfLife: 0, OpaqueAt: [4]bool{false, false, true, true}, DamagePerTick: [4]int{0, 4, 9, 16}},
	FieldSmoke:       {Kind: FieldSmoke, HalfLife: 30, OpaqueAt: [4]bool{false, false, true, true}},
	FieldTearGas:     {Kind: FieldTearGas, HalfLife: 30, OpaqueAt: [4]bool{false, true, true, true}, DamagePerTick: [4]int{0, 1, 2, 3}},
	FieldNukeGas:     {Kind: FieldNukeGas, HalfLife: 30, OpaqueAt: [4]bool{false, true, true, true}, DamagePerTick: [4]int{0, 3, 6, 9}},
	FieldElectricity: {Kind: FieldElectricity, HalfLife: 4, DamagePerTick: [4]int{0, 1, 3, 5}},
	FieldFatigue:     {Kind: FieldFatigue, HalfLife: 0},
}

// Opaque reports whether a cell of this kind/intensity blocks LOS.
func (c FieldCell) Opaque() bool {
	if c.IsNone() {
		return false
	}
	d := FieldDescriptors[c.Kind]
	i := c.Intensity
	if i > 3 {
		i = 3
	}
	return d.OpaqueAt[i]
}

// Damage returns the per-tick damage this cell deals to an actor standing
// in it, before armor/resistance.
func (c FieldCell) Damage() int {
	if c.IsNone() {
		return 0
	}
	d := FieldDescriptors[c.Kind]
	i := c.Intensity
	if i > 3 {
		i = 3
	}
	return d.DamagePerTick[i]
}

// Clamp normalizes a cell: intensity 0 becomes the absent sentinel,
// intensity above 3 is clamped to 3 (spec §3 invariants).
func (c FieldCell) Clamp() FieldCell {
	if c.Intensity == 0 {
		return FieldCell{}
	}
	if c.Intensity > 3 {
		c.Intensity = 3
	}
	if c.Kind == FieldNone {
		return FieldCell{}
	}
	return c
}
