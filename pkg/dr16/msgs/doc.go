// Package msgs provides the wire schema of decoded DR16 frames.
package msgs

// Decoded frames are published to remote consumers as protobuf messages
// wrapped in a Typed envelope carrying the type ID and a sequence number.
//
// Producer: dr16d (publish.Publisher)
// Consumer: dr16sub, websocket clients, anything reading the stream
