package rulebook

import (
	"embed"
	"sync"
)

//go:embed data/*.json
var contentFS embed.FS

var (
	defaultOnce sync.Once
	defaultBook *Rulebook
	defaultErr  error
)

// Default returns the rulebook shipped with the binary. The embedded content
// is loaded once; a failure here is a packaging defect and repeats on every
// call.
func Default() (*Rulebook, error) {
	defaultOnce.Do(func() {
		defaultBook, defaultErr = Load(contentFS, "data")
	})
	return defaultBook, defaultErr
}
