// Package overlay positions a floating panel (dropdown, tooltip, menu,
// popover) relative to an anchor element.
//
// # Overview
//
// A [Positioner] is given an ordered list of [ConnectedPosition] values,
// most preferred first. Each one names a connection point on the origin
// and one on the overlay, for example "bottom-start of the button meets
// top-start of the menu". On every recompute the positioner measures the
// origin, the overlay and the viewport through a [Host], picks the best
// position and returns a [Placement]: the overlay rectangle, a bounding
// box to lay the overlay out in, a style decision and a transform-origin
// hint.
//
// # Resolution Order
//
// Positions are evaluated in preference order:
//
//  1. The first position where the overlay fits completely wins.
//  2. Otherwise, with flexible dimensions enabled, positions that fit once
//     the overlay shrinks to its minimum size are scored by the area of
//     their bounding box times their weight. The highest score wins.
//  3. Otherwise the position with the largest visible area is used. With
//     pushing enabled it is moved by the smallest vector that brings it
//     on-screen.
//
// Once the overlay has rendered, a locked positioner keeps re-applying the
// last chosen position until the viewport is resized.
//
// # Hosts
//
// The engine never touches a UI. Hosts implement [Host] and, optionally,
// [ScrollableHost], [KeyboardHost] and [ResizeNotifier]. When the origin or
// overlay cannot be measured the recompute is a silent no-op and the
// previous placement stays in effect.
//
// # Pure Core
//
// [Solve] and [Reapply] are pure functions over a [Geometry] snapshot and
// a [State]. The Positioner is a thin stateful wrapper around them, and the
// API server and scenario runner call them directly.
//
// # Reading Direction
//
// "start" and "end" follow the host's reading direction. In a
// right-to-left layout start is the right edge; every derived value
// (origin point, overlay point, bounding box, style, transform origin)
// is mirrored consistently.
package overlay
