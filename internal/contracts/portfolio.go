package contracts

// Position is a signed holding of one instrument
// quantity > 0 롱, < 0 숏, 0 은 허용 (리스크 기여 0)
type Position struct {
	Instrument EuropeanOption `json:"instrument" yaml:"instrument"`
	Quantity   int64          `json:"quantity" yaml:"quantity"`
}

// IsLong reports whether the position is long
func (p Position) IsLong() bool {
	return p.Quantity > 0
}

// IsShort reports whether the position is short
func (p Position) IsShort() bool {
	return p.Quantity < 0
}

// Portfolio is an immutable ordered sequence of positions
// ⭐ SSOT: 생성 후 변경 불가. 동일 상품 중복 허용 (단순 누적)
type Portfolio struct {
	positions []Position
}

// NewPortfolio copies positions into a new portfolio
func NewPortfolio(positions ...Position) Portfolio {
	copied := make([]Position, len(positions))
	copy(copied, positions)
	return Portfolio{positions: copied}
}

// With returns a new portfolio with one more position appended
func (p Portfolio) With(instrument EuropeanOption, quantity int64) Portfolio {
	next := make([]Position, len(p.positions), len(p.positions)+1)
	copy(next, p.positions)
	next = append(next, Position{Instrument: instrument, Quantity: quantity})
	return Portfolio{positions: next}
}

// Positions returns a copy of the positions in insertion order
func (p Portfolio) Positions() []Position {
	out := make([]Position, len(p.positions))
	copy(out, p.positions)
	return out
}

// Len returns the number of positions
func (p Portfolio) Len() int {
	return len(p.positions)
}

// At returns the i-th position
func (p Portfolio) At(i int) Position {
	return p.positions[i]
}

// IsEmpty reports whether the portfolio has no positions
func (p Portfolio) IsEmpty() bool {
	return len(p.positions) == 0
}

// AssetIDs returns distinct underlying ids in first-appearance order
func (p Portfolio) AssetIDs() []string {
	seen := make(map[string]struct{}, len(p.positions))
	ids := make([]string, 0, len(p.positions))
	for _, pos := range p.positions {
		id := pos.Instrument.AssetID
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids
}
