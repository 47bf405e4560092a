// Package version provides build and version information.
package version

// Version is the current application version.
const Version = "0.3.0"

// Milestones:
// 0.3.0 - HTTP starfield API (--serve), .env configuration
// 0.2.0 - Sol marker, decorative bodies, atmosphere tint, headless export
// 0.1.0 - Initial release: seeded starfields, planet menu, rotating star map
