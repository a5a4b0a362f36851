// Package classifier assigns a content category and an exam focus to raw
// lesson material using fixed keyword lists matched at word starts. It is a
// heuristic: lists are checked in a fixed priority order and the first match
// wins.
package classifier
