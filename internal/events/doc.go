// Package events decouples the room service from the background task
// machinery. The room service emits a room generation request when it hands
// out a generation claim; the handler registered by the server turns that
// request into a queued task.
package events
