package records

import (
	"fmt"
	"path/filepath"
)

// Locator decides where a new record's screenshots live. The folder is
// chosen once, at creation.
type Locator interface {
	Locate(root, id string, header HeaderData) (string, error)
}

// FlatLocator gives every record its own root/test-{id} folder.
type FlatLocator struct{}

// Locate returns root/test-{id}.
func (FlatLocator) Locate(root, id string, _ HeaderData) (string, error) {
	if root == "" {
		return "", fmt.Errorf("root folder is required")
	}
	return filepath.Join(root, "test-"+id), nil
}
