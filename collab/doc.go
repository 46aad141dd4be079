// Package collab synchronizes a grid with remote peers over a room
// transport: it announces presence, debounces cursor broadcasts, sends
// committed cell edits and applies inbound peer events back into the grid.
//
// The channel never re-broadcasts an applied remote edit and discards
// events carrying the local user's id, so a naive relay that echoes every
// frame to all room members (the bundled relay package does) is safe to
// sync against.
package collab
