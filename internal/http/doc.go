// Package http exposes the dispatch board engine to frontend hosts as a
// small command and query API: day selection, board snapshots, and the
// drop/move/resize/delete gestures.
package http
