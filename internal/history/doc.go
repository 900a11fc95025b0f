// Package history persists relayed movement commands to SQLite so
// operators can audit what the rover was told to do and whether the
// controller accepted it.
package history
