// Package docs carries the static, versioned API description. The document
// is authored alongside the code and embedded into the binary; it is never
// generated at request time.
package docs

import _ "embed"

//go:embed openapi.yaml
var OpenAPI []byte
