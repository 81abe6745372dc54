package domain

import "time"

// Preset is a reusable prompt template bundle driving content generation.
// Presets are immutable inputs to the pipeline; the orchestrator never mutates them.
type Preset struct {
	// ID is the unique identifier for the preset
	ID string

	// Name is a human-readable label, e.g. "Cinematic Sports"
	Name string

	// ImagePrompt is the template for photo generation
	ImagePrompt string

	// VideoPrompt is the template for the visual prompt of video generation
	VideoPrompt string

	// AudioPrompt is the template for the narration script
	AudioPrompt string

	// Avatar is an optional preset thumbnail path
	Avatar string

	// CreatedAt is the timestamp when the preset was created
	CreatedAt time.Time
}

// PresetRepository defines the interface for preset data operations
type PresetRepository interface {
	// GetAll returns all presets
	GetAll() ([]*Preset, error)

	// GetByID returns a preset by its ID
	GetByID(id string) (*Preset, error)

	// Save creates or updates a preset
	Save(preset *Preset) error
}
