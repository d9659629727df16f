package document

// Edit describes a text change in absolute offsets: the range [Start, End)
// was replaced by Inserted characters.
type Edit struct {
	Start    Offset
	End      Offset
	Inserted int
}

// Delta returns the change in document length caused by the edit.
func (e Edit) Delta() Offset {
	return Offset(e.Inserted) - (e.End - e.Start)
}

// TransformOffset updates an offset after an edit.
//
//   - An edit entirely before the offset shifts it by the edit's delta.
//   - An edit starting at or after the offset leaves it alone.
//   - An edit spanning the offset moves it to the end of the new text.
func TransformOffset(off Offset, e Edit) Offset {
	if e.End <= off {
		return off + e.Delta()
	}
	if e.Start >= off {
		return off
	}
	return e.Start + Offset(e.Inserted)
}

// TransformOffsetSticky is like TransformOffset but decides what happens to
// an offset sitting exactly where text is inserted. A sticky offset stays
// before the insertion; a non-sticky one moves past it.
func TransformOffsetSticky(off Offset, e Edit, sticky bool) Offset {
	if e.Start == off && e.Start == e.End {
		if sticky {
			return off
		}
		return off + Offset(e.Inserted)
	}
	return TransformOffset(off, e)
}

// EditBetween returns the edit that turns a document of length before into
// one of length after, given the offset where the change started and the
// number of characters removed there.
func EditBetween(start Offset, removed int, before, after Offset) Edit {
	return Edit{
		Start:    start,
		End:      start + Offset(removed),
		Inserted: int(after-before) + removed,
	}
}
