package lesson

import _ "embed"

// defaultCatalog contains the embedded starter lesson catalog, used when no
// catalog file is configured.
//
//go:embed lessons.json
var defaultCatalog []byte
