package blazorpack

// Allocation limits for untrusted input.
const (
	// DefaultMaxFrameSize is the largest declared frame length accepted by
	// default (4MB). A Blazor circuit caps messages at 32KB unless configured
	// otherwise, so this leaves ample headroom.
	DefaultMaxFrameSize = 4 * 1024 * 1024

	// HardMaxFrameSize is the absolute ceiling. WithMaxFrameSize values above
	// it are clamped.
	HardMaxFrameSize = 64 * 1024 * 1024
)
