// Package viewstate persists interactive view state between sessions.
//
// The expanded set is the only interaction state the layout engine
// consumes, so that is what gets saved: which node ids the user has
// opened, together with enough metadata to detect that the state
// belongs to a different document revision.
//
// Design notes:
//   - Version field enables future schema migrations
//   - Corrupted/missing file = fresh state (graceful degradation)
//   - Stale ids are pruned on restore, not on load, because pruning
//     needs the canonical tree
package viewstate

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/treelinehq/treeline/pkg/errors"
	"github.com/treelinehq/treeline/pkg/expand"
)

// Version is the current schema version.
const Version = 1

// fileName is the filename for persisted view state.
const fileName = "viewstate.json"

// State is the persisted view state for one document.
type State struct {
	Version int    `json:"version"` // Schema version (currently 1)
	ID      string `json:"id"`      // Stable identity for this state file

	// Input is the document path the state was saved for; TreeHash is
	// the content hash of its canonical tree at save time. Hosts can
	// compare these to decide whether the state is stale.
	Input    string `json:"input,omitempty"`
	TreeHash string `json:"tree_hash,omitempty"`

	// Expanded holds the ids whose children were visible.
	Expanded []string `json:"expanded"`

	UpdatedAt time.Time `json:"updated_at"`
}

// New returns a fresh state with a generated identity.
func New() *State {
	return &State{
		Version: Version,
		ID:      uuid.NewString(),
	}
}

// Path returns the state file path inside dir.
func Path(dir string) string {
	return filepath.Join(dir, fileName)
}

// Load reads persisted state from path.
//
// A missing or corrupted file yields a fresh state and no error: view
// state is a convenience, never worth failing startup over. Only states
// with the current schema version are honored.
func Load(path string) *State {
	data, err := os.ReadFile(path)
	if err != nil {
		return New()
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil || s.Version != Version {
		return New()
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}

	// The file is host-editable; keep only ids that could have come from
	// normalization.
	valid := s.Expanded[:0]
	for _, id := range s.Expanded {
		if errors.ValidateNodeID(id) == nil {
			valid = append(valid, id)
		}
	}
	s.Expanded = valid
	return &s
}

// Save writes the state to path, creating parent directories as needed.
// The write goes through a temp file and rename so a crash mid-write
// cannot leave a truncated state behind.
func Save(path string, s *State) error {
	s.Version = Version
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.UpdatedAt = time.Now().UTC()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, fileName+".*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// Set returns the persisted expanded ids as a set.
func (s *State) Set() expand.Set {
	return expand.NewSet(s.Expanded...)
}

// Record replaces the persisted expanded ids with a snapshot of set.
func (s *State) Record(set expand.Set) {
	s.Expanded = set.IDs()
}
