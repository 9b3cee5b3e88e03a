// Package parser turns raw spreadsheet cells into typed values.
//
// Every parser is total: malformed input yields an invalid result, never an
// error or a panic, so a bad cell only nulls its own field.
package parser
