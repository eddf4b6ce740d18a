package mention

// Reserved mention words: addressing the whole room is not supported
// via @mention (there is no broadcast fan-out in this design).
var reserved = map[string]struct{}{
	"all":      {},
	"everyone": {},
	"here":     {},
}

// Resolution is the outcome of resolving one token.
type Resolution struct {
	Token      string
	Reserved   bool
	IDs        []string // resolved participant ids, empty if unresolved
	Ambiguous  bool
	Candidates []Profile // populated only when Ambiguous
}

// Resolve applies the precedence order: reserved word, exact id,
// unique nickname (ambiguous if not unique), then role/client/model
// category union.
func Resolve(d *Directory, token string) Resolution {
	if _, ok := reserved[token]; ok {
		return Resolution{Token: token, Reserved: true}
	}

	if p, ok := d.byIDExact(token); ok {
		return Resolution{Token: token, IDs: []string{p.ID}}
	}

	if ids := d.byNick(token); len(ids) > 0 {
		if len(ids) == 1 {
			return Resolution{Token: token, IDs: ids}
		}
		candidates := make([]Profile, 0, len(ids))
		for _, id := range ids {
			if p, ok := d.byIDExact(id); ok {
				candidates = append(candidates, p)
			}
		}
		return Resolution{Token: token, Ambiguous: true, Candidates: candidates}
	}

	if ids := d.byCategory(token); len(ids) > 0 {
		return Resolution{Token: token, IDs: ids}
	}

	return Resolution{Token: token}
}

// ResolveAll resolves every token and merges the non-ambiguous,
// non-reserved results into a single target set, excluding self. It
// also returns every reserved hit and every ambiguous resolution so
// the caller can compose the appropriate user-facing coordinator
// messages.
func ResolveAll(d *Directory, tokens []string, self string) (targets []string, reservedHits []string, ambiguous []Resolution) {
	seen := map[string]struct{}{}
	for _, tok := range tokens {
		r := Resolve(d, tok)
		switch {
		case r.Reserved:
			reservedHits = append(reservedHits, tok)
		case r.Ambiguous:
			ambiguous = append(ambiguous, r)
		default:
			for _, id := range r.IDs {
				if id == self {
					continue
				}
				if _, ok := seen[id]; ok {
					continue
				}
				seen[id] = struct{}{}
				targets = append(targets, id)
			}
		}
	}
	return targets, reservedHits, ambiguous
}
