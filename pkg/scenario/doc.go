// Package scenario describes positioning setups as data and replays them
// through the engine.
//
// # Scenario Files
//
// Scenarios are TOML or JSON; the format follows the file extension:
//
//	name = "dropdown near the bottom edge"
//
//	[viewport]
//	width = 1000
//	height = 800
//
//	[origin]
//	left = 400
//	top = 780
//	width = 100
//	height = 20
//
//	[overlay]
//	width = 100
//	height = 300
//
//	[config]
//	viewport_margin = 8
//	push = true
//
//	[[positions]]
//	origin_x = "start"
//	origin_y = "bottom"
//	overlay_x = "start"
//	overlay_y = "top"
//
//	[[positions]]
//	origin_x = "start"
//	origin_y = "top"
//	overlay_x = "start"
//	overlay_y = "bottom"
//	panel_class = ["above"]
//
// Omitted [config] keys keep the engine defaults (flexible dimensions and
// pushing enabled).
//
// # Steps
//
// An optional [[steps]] list scripts triggers. Each step may override
// viewport, origin or overlay geometry before running its action:
//
//   - apply: full recompute (the default)
//   - reapply: re-apply the last position without searching
//   - resize: change the viewport and fire the host's resize notification
//   - positions: replace the preference list
//   - detach, attach: lifecycle
//
// [Run] executes the steps against a [StaticHost] and returns one [Frame]
// per step. A scenario without steps runs a single apply.
package scenario
