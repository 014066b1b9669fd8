package exam

// Renumber returns a copy of parts with part numbers reset to 1..P and a
// single gap-free question numbering 1..N across every group, walking parts,
// then groups, then items in each type's own order. The input is never
// modified, and Renumber(Renumber(p)) equals Renumber(p).
func Renumber(parts []Part) []Part {
	out := make([]Part, len(parts))
	next := 1
	for i, p := range parts {
		out[i], next = renumberPart(clonePart(p), i+1, next)
	}
	return out
}

func renumberPart(p Part, partNumber, next int) (Part, int) {
	p.Number = partNumber
	for j, g := range p.Groups {
		k := kindOf(g.Type)
		p.Groups[j] = k.number(g, next)
		next += k.count(p.Groups[j])
	}
	return p, next
}

// Count is the total number of scoreable items in parts.
func Count(parts []Part) int {
	n := 0
	for _, p := range parts {
		for _, g := range p.Groups {
			n += QuestionRange(g)
		}
	}
	return n
}

// QuestionRange is the number of global question numbers g consumes.
func QuestionRange(g Group) int {
	return kindOf(g.Type).count(g)
}
