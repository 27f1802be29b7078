// ABOUTME: Version information for pcmplay
// ABOUTME: Product identity printed by -version and logged at startup
package version

const (
	// Version is the current release
	Version = "0.1.0"

	// Product is the program name
	Product = "pcmplay"

	// Manufacturer identifies who builds it
	Manufacturer = "Resonate"
)
