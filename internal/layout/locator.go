package layout

import (
	"fmt"
	"os"

	"github.com/blackwell-systems/qacapture/internal/clock"
	"github.com/blackwell-systems/qacapture/internal/records"
)

// Hierarchical places new records in the legacy month/type/cycle/case
// tree. It implements records.Locator.
type Hierarchical struct {
	Clock clock.Clock
}

// Locate returns BuildPath for the header. An incomplete header, or a
// folder that already holds files, is refused.
func (h Hierarchical) Locate(root, id string, header records.HeaderData) (string, error) {
	c := h.Clock
	if c == nil {
		c = clock.Real()
	}

	path, ok := BuildPath(root, header, c.Now())
	if !ok {
		missing := records.ValidateForSave(header).MissingFields
		return "", fmt.Errorf("hierarchical layout needs %v", missing)
	}

	entries, err := os.ReadDir(path)
	if err == nil && len(entries) > 0 {
		return "", fmt.Errorf("folder %s is already in use", path)
	}
	return path, nil
}
