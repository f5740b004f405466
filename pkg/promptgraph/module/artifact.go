package module

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// ArtifactVersion is the artifact schema version. Bump when the layout
// changes incompatibly.
const ArtifactVersion = 1

// Artifact is the serialized form of a compiled module: the signature it
// was compiled for plus the demos and instructions a compiler settled on.
// Artifacts are plain JSON so they can be inspected and diffed.
type Artifact struct {
	Version      int       `json:"version"`
	Signature    Signature `json:"signature"`
	Instructions string    `json:"instructions,omitempty"`
	Demos        []Demo    `json:"demos"`
	CompiledAt   time.Time `json:"compiled_at"`
}

// SaveArtifact writes the module's compiled state to path.
func (p *Predict) SaveArtifact(path string) error {
	artifact := Artifact{
		Version:      ArtifactVersion,
		Signature:    p.sig,
		Instructions: p.sig.Instructions,
		Demos:        p.demos,
		CompiledAt:   time.Now().UTC(),
	}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return fmt.Errorf("module: marshal artifact: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("module: write artifact: %w", err)
	}
	return nil
}

// LoadArtifact restores compiled state from path. A missing file satisfies
// errors.Is(err, os.ErrNotExist), so callers can tell "not compiled yet"
// apart from a corrupt artifact.
func (p *Predict) LoadArtifact(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("module: read artifact: %w", err)
	}

	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return fmt.Errorf("module: parse artifact %s: %w", path, err)
	}
	if artifact.Version != ArtifactVersion {
		return fmt.Errorf("module: artifact %s has version %d, want %d",
			path, artifact.Version, ArtifactVersion)
	}

	p.demos = artifact.Demos
	if artifact.Instructions != "" {
		p.sig.Instructions = artifact.Instructions
	}
	return nil
}
