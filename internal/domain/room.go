package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RoomType identifies one of the four content rooms built for every lesson.
type RoomType string

// Room types. Clarity is the overview room; memory holds the flashcards.
const (
	RoomClarity RoomType = "clarity"
	RoomQuiz    RoomType = "quiz"
	RoomMemory  RoomType = "memory"
	RoomTest    RoomType = "test"
)

// RoomTypes returns the rooms in the order a learner walks through them.
func RoomTypes() []RoomType {
	return []RoomType{RoomClarity, RoomQuiz, RoomMemory, RoomTest}
}

// ParseRoomType parses a room identifier. The client-facing aliases
// "overview" and "flashcards" resolve to clarity and memory.
func ParseRoomType(s string) (RoomType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clarity", "overview":
		return RoomClarity, nil
	case "quiz":
		return RoomQuiz, nil
	case "memory", "flashcards":
		return RoomMemory, nil
	case "test":
		return RoomTest, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidRoomType, s)
	}
}

// IsLazy reports whether the room is generated on first read rather than at
// lesson creation.
func (r RoomType) IsLazy() bool {
	return r != RoomClarity
}

// ArtifactState is the materialization state of a (lesson, room) pair.
type ArtifactState string

// Artifact states. Placeholder is never persisted; generated is terminal.
const (
	ArtifactAbsent      ArtifactState = "absent"
	ArtifactPlaceholder ArtifactState = "placeholder"
	ArtifactGenerating  ArtifactState = "generating"
	ArtifactGenerated   ArtifactState = "generated"
)

// ClaimStatus is the persisted state of a generation claim.
type ClaimStatus string

// Claim statuses.
const (
	ClaimGenerating ClaimStatus = "generating"
	ClaimGenerated  ClaimStatus = "generated"
)

// GenerationClaim marks that a worker owns generation of one room of one
// lesson. At most one claim exists per (lesson, room).
type GenerationClaim struct {
	LessonID  uuid.UUID   `json:"lesson_id"`
	Room      RoomType    `json:"room_type"`
	Status    ClaimStatus `json:"status"`
	ClaimedAt time.Time   `json:"claimed_at"`
	UpdatedAt time.Time   `json:"updated_at"`
}

// BackendMode selects between real model providers and the offline demo
// provider. It is decided once at startup.
type BackendMode string

// Backend modes.
const (
	BackendModeDemo BackendMode = "demo"
	BackendModeLive BackendMode = "live"
)

// ParseBackendMode parses a backend mode name.
func ParseBackendMode(s string) (BackendMode, error) {
	switch BackendMode(strings.ToLower(strings.TrimSpace(s))) {
	case BackendModeDemo:
		return BackendModeDemo, nil
	case BackendModeLive:
		return BackendModeLive, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBackendMode, s)
	}
}

// IsDemo reports whether the mode runs without external services.
func (m BackendMode) IsDemo() bool {
	return m == BackendModeDemo
}
