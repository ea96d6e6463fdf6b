// Package meta loads configuration documents through afs storage, expanding
// ${env.NAME} expressions before decoding.
package meta
