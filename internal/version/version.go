// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - Rise/transit/set windows, altitude sparkline, location editor, metrics endpoint
// 0.2.0 - Sky view, horizon events, headless summary and JSON export
// 0.1.0 - Initial release: Messier and star tables with alt/az and hour angle
