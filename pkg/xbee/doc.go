// Package xbee implements the API-mode link layer of XBee/DigiMesh radio
// modules.
package xbee

// The radio speaks API mode 2 (escaped) over a UART. Every frame starts with
// the delimiter 0x7E followed by a big-endian length, the frame type, the
// type specific fields and a checksum. Bytes after the delimiter which collide
// with the delimiter, the escape marker or the software flow control bytes are
// sent as the escape marker followed by the byte XORed with 0x20.
//
// Received bytes are pushed into a ring buffer from a single producer
// (RxHandler, usually the serial read goroutine). Link.Receive is the
// consumer: it resynchronizes on delimiters, unescapes and validates
// candidate frames and advances the buffer past every frame it has judged,
// good or bad. A frame still arriving is left untouched and retried.
//
// Producer: serial port reader
// Consumer: Link.Receive callers
