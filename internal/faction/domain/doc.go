// Package domain defines the faction engine's entity records and the pure
// constructors that normalize and validate their inputs. Records here are
// plain data; tree structure, policy resolution, and persistence live in
// their own packages.
package domain
