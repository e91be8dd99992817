package camguard

// DeriveEdges converts a submitted vertex list into the deduplicated edge
// pairs of the sequence graph. byUID maps each request-scoped unique_id to
// its persisted vertex; the vertex stores build it during reconciliation.
//
// A vertex without sources becomes an entry point: one pair with a nil
// source. Every source reference yields ref→vertex, every destination
// reference yields vertex→ref, both in input order. The emitted list is then
// deduplicated by unordered pair: a pair equal to an already accepted one in
// either direction is dropped, first occurrence wins. The symmetric match
// collapses A→B and B→A into one stored edge even though edges are
// directional everywhere else; see MatchEdges for the direction-exact
// counterpart used during updates.
func DeriveEdges(inputs []VertexInput, byUID map[string]*Vertex) ([]EdgePair, error) {
	var pairs []EdgePair
	for i, in := range inputs {
		self, ok := byUID[in.UniqueID]
		if !ok {
			return nil, &ValidationError{Index: i, Field: "unique_id", Reason: "vertex reference not resolved"}
		}
		if len(in.Source) == 0 {
			pairs = append(pairs, EdgePair{SourceID: nil, DestinationID: &self.ID})
		} else {
			for _, ref := range in.Source {
				var sourceID *int64
				if ref != "" {
					src, ok := byUID[ref]
					if !ok {
						return nil, &ValidationError{Index: i, Field: "source", Reason: "unknown unique_id " + ref}
					}
					sourceID = &src.ID
				}
				pairs = append(pairs, EdgePair{SourceID: sourceID, DestinationID: &self.ID})
			}
		}
		for _, ref := range in.Destination {
			if ref == "" {
				continue
			}
			dst, ok := byUID[ref]
			if !ok {
				return nil, &ValidationError{Index: i, Field: "destination", Reason: "unknown unique_id " + ref}
			}
			pairs = append(pairs, EdgePair{SourceID: &self.ID, DestinationID: &dst.ID})
		}
	}
	return dedupEdges(pairs), nil
}

// dedupEdges drops every pair whose unordered {source, destination} set was
// already accepted. Linear scan over the accepted list; per-sequence vertex
// counts stay small.
func dedupEdges(pairs []EdgePair) []EdgePair {
	var unique []EdgePair
	for _, p := range pairs {
		found := false
		for _, u := range unique {
			if sameUnordered(u, p) {
				found = true
				break
			}
		}
		if !found {
			unique = append(unique, p)
		}
	}
	return unique
}

func idEq(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameExact(a, b EdgePair) bool {
	return idEq(a.SourceID, b.SourceID) && idEq(a.DestinationID, b.DestinationID)
}

func sameUnordered(a, b EdgePair) bool {
	return sameExact(a, b) ||
		(idEq(a.SourceID, b.DestinationID) && idEq(a.DestinationID, b.SourceID))
}

// MatchEdges partitions derived pairs against the stored edges of a
// sequence. Matching is by exact (source, destination) pair — direction
// matters here, so an edge whose direction flipped between updates is
// removed and recreated rather than kept. Each stored edge consumes at most
// one pair.
//
// kept maps a pair's index to the stored edge that satisfies it; stored
// edges matching no pair are returned as removed.
func MatchEdges(pairs []EdgePair, existing []*Edge) (kept map[int]*Edge, removed []*Edge) {
	kept = make(map[int]*Edge)
	taken := make(map[int]bool)
	for _, e := range existing {
		ep := EdgePair{SourceID: e.SourceID, DestinationID: e.DestinationID}
		matched := false
		for i, p := range pairs {
			if taken[i] {
				continue
			}
			if sameExact(p, ep) {
				kept[i] = e
				taken[i] = true
				matched = true
				break
			}
		}
		if !matched {
			removed = append(removed, e)
		}
	}
	return kept, removed
}
