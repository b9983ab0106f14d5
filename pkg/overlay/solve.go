package overlay

// Solve runs one recompute on a geometry snapshot. It is a pure function:
// given the same configuration, positions, geometry and prior state it
// always returns the same new state and placement.
//
// ok is false when nothing could be placed (no positions, or an
// unmeasurable origin or overlay); the prior state is then returned
// unchanged.
//
// Resolution order:
//  1. If the overlay has rendered, positions are locked and a last position
//     exists, that position is re-applied as-is.
//  2. The first position (in preference order) that fits completely.
//  3. Among positions that fit with flexible dimensions, the highest score
//     (bounding box area times weight); ties keep the earlier position.
//  4. The position with the largest visible area, pushed on-screen when
//     pushing is enabled and applied as-is otherwise.
func Solve(cfg Config, positions []ConnectedPosition, g Geometry, prior State) (State, Placement, bool) {
	if len(positions) == 0 || !g.Measurable() {
		return prior, Placement{}, false
	}
	st := prior
	if !st.IsInitialRender && cfg.PositionLocked && validIndex(st.LastPosition, positions) {
		return reapply(cfg, positions, g, st)
	}

	st.PreviousPush = nil
	c, pushed, mode := selectPosition(cfg, positions, g, st)
	pl := applyPosition(cfg, g, &st, c, pushed, mode)
	return st, pl, true
}

// Reapply re-applies the last chosen position against a fresh measurement
// without searching, keeping the pushed flag. Without a last position it
// behaves like Solve.
func Reapply(cfg Config, positions []ConnectedPosition, g Geometry, prior State) (State, Placement, bool) {
	if len(positions) == 0 || !g.Measurable() {
		return prior, Placement{}, false
	}
	if !validIndex(prior.LastPosition, positions) {
		return Solve(cfg, positions, g, prior)
	}
	return reapply(cfg, positions, g, prior)
}

func reapply(cfg Config, positions []ConnectedPosition, g Geometry, st State) (State, Placement, bool) {
	i := *st.LastPosition
	c := evaluate(cfg, g, i, positions[i])
	pl := applyPosition(cfg, g, &st, c, st.IsPushed, ModeReapplied)
	return st, pl, true
}

// selectPosition searches positions for the best candidate. positions must
// not be empty.
func selectPosition(cfg Config, positions []ConnectedPosition, g Geometry, st State) (c candidate, pushed bool, mode Mode) {
	var (
		fallback     candidate
		haveFallback bool
		flexible     candidate
		haveFlexible bool
		bestScore    = -1.0
	)

	for i, pos := range positions {
		c := evaluate(cfg, g, i, pos)
		if c.fit.IsCompletelyWithinViewport {
			return c, false, ModeExact
		}

		if canFitWithFlexibleDimensions(cfg, c, g.Viewport) {
			box := boundingBox(c.origin, pos, g, cfg, st)
			if score := box.Area() * pos.weight(); score > bestScore {
				flexible, haveFlexible, bestScore = c, true, score
			}
			continue
		}

		if !haveFallback || c.fit.VisibleArea > fallback.fit.VisibleArea {
			fallback, haveFallback = c, true
		}
	}

	switch {
	case haveFlexible:
		return flexible, false, ModeFlexible
	case cfg.Push:
		return fallback, true, ModePushed
	default:
		return fallback, false, ModeFallback
	}
}

func validIndex(i *int, positions []ConnectedPosition) bool {
	return i != nil && *i >= 0 && *i < len(positions)
}
