// Package api exposes the study rooms over HTTP. Handlers translate
// requests into LessonService, RoomService and ProgressService calls and
// map service errors to status codes and client-safe messages; they never
// touch storage or generation directly.
package api
