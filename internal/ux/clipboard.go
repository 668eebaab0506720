package ux

import (
	"github.com/atotto/clipboard"
)

// writeClipboard is swapped in tests; headless CI has no clipboard.
var writeClipboard = clipboard.WriteAll

// CopyToClipboard copies text to the system clipboard and reports the
// outcome as a toast.
func (t *Toaster) CopyToClipboard(text string) bool {
	if err := writeClipboard(text); err != nil {
		t.Error("Failed to copy")
		return false
	}
	t.Success("Copied to clipboard!")
	return true
}
