package repository

import _ "embed"

// seedCatalog is the bundled fallback catalog written to a source's cache
// file on cold start, so a fresh install works before the first update.
// Stored gzip-compressed; the cache loader sniffs the container.
//
//go:embed seed/maps.json.gz
var seedCatalog []byte
