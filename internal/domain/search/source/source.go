// Package source defines the closed discriminator for result provenance.
package source

// Kind identifies which collection a result came from.
type Kind string

// Supported source kinds.
const (
	Document Kind = "document"
	MapTile  Kind = "map_tile"
)

// String returns the wire representation.
func (k Kind) String() string { return string(k) }
