// Package protocol assembles complete DLT messages from their header and
// payload layers and flattens them back to bytes.
//
// Layering:
// - wire: byte order, identifiers and the shared error taxonomy
// - header: storage, standard and extended headers
// - argument: verbose argument type info and values
// - payload: verbose, non-verbose and control bodies
// - scan: boundary recovery over a continuous byte stream
package protocol
