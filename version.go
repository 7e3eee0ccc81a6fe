package props

import _ "embed"

// Version is the release of the props module and its tools.
//
//go:embed VERSION
var Version string
