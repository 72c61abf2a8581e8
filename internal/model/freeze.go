package model

// Freeze copies a catalog item and position into a new PlacedRecord.
func Freeze(item CatalogItem, pos Position) PlacedRecord {
	p := pos
	return PlacedRecord{CatalogItem: item, Position: &p}
}

// Clone returns a deep copy of the entry so callers cannot alias its slices.
func (e JournalEntry) Clone() JournalEntry {
	out := e
	out.Items = cloneRecords(e.Items)
	if e.Preview != nil {
		p := *e.Preview
		out.Preview = &p
	}
	return out
}

// Clone returns a deep copy of the occasion.
func (o Occasion) Clone() Occasion {
	out := o
	out.Clothes = cloneRecords(o.Clothes)
	return out
}

// PositionOr returns the record's position, or the zero position when unset.
func (r PlacedRecord) PositionOr() Position {
	if r.Position == nil {
		return Position{}
	}
	return *r.Position
}

func cloneRecords(in []PlacedRecord) []PlacedRecord {
	if in == nil {
		return []PlacedRecord{}
	}
	out := make([]PlacedRecord, len(in))
	for i, r := range in {
		out[i] = r
		if r.Position != nil {
			p := *r.Position
			out[i].Position = &p
		}
	}
	return out
}
