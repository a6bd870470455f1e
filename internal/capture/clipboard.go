package capture

import (
	"fmt"
	"sync"

	"golang.design/x/clipboard"
)

// SystemClipboard writes images to the OS clipboard.
type SystemClipboard struct {
	once    sync.Once
	initErr error
}

// WriteImage places PNG data on the clipboard.
func (c *SystemClipboard) WriteImage(png []byte) error {
	c.once.Do(func() {
		c.initErr = clipboard.Init()
	})
	if c.initErr != nil {
		return fmt.Errorf("clipboard unavailable: %w", c.initErr)
	}
	clipboard.Write(clipboard.FmtImage, png)
	return nil
}
