package daemon

import _ "embed"

// Control panel served at /. Kept as a single self-contained page so
// the daemon has no static asset pipeline.
//
//go:embed panel.html
var panelHTML []byte
