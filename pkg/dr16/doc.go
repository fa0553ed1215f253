// Package dr16 decodes the frames of a DR16 remote-control receiver.
package dr16

// A receiver sends a fixed-size frame of 20 bytes carrying the joystick
// channels and switches, a mouse channel and a keyboard bitmask. Frames have
// no delimiter, no header and no checksum: a frame is whatever arrived
// before the serial line went idle.
//
// Bytes are collected by an Accumulator in the link's receive context,
// which never blocks and never takes a lock. Each idle event publishes the
// frame and increments a counting Signal. A Device decodes in its own
// goroutine (Run, or Decode called in a loop) and keeps the latest Message
// under a lock read by the accessors.
//
// Producer: link receive context (serial driver, interrupt handler)
// Consumer: Device.Decode and accessor callers
