package exam

import "slices"

func cloneParts(ps []Part) []Part {
	if ps == nil {
		return nil
	}
	out := make([]Part, len(ps))
	for i, p := range ps {
		out[i] = clonePart(p)
	}
	return out
}

func clonePart(p Part) Part {
	p.ImageURL = cloneString(p.ImageURL)
	p.ListeningURL = cloneString(p.ListeningURL)
	if p.Groups != nil {
		gs := make([]Group, len(p.Groups))
		for i, g := range p.Groups {
			gs[i] = cloneGroup(g)
		}
		p.Groups = gs
	}
	return p
}

func cloneGroup(g Group) Group {
	g.Answers = slices.Clone(g.Answers)
	g.Columns = slices.Clone(g.Columns)
	if g.Questions != nil {
		qs := make([]Question, len(g.Questions))
		for i, q := range g.Questions {
			qs[i] = cloneQuestion(q)
		}
		g.Questions = qs
	}
	return g
}

func cloneQuestion(q Question) Question {
	if q.Number != nil {
		q.Number = intPtr(*q.Number)
	}
	q.Explanation = cloneString(q.Explanation)
	q.Options = slices.Clone(q.Options)
	return q
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
