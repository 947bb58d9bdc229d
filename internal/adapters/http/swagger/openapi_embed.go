package swagger

import _ "embed"

// OpenAPI holds the raw YAML spec served at /openapi.yaml.
//
//go:embed openapi.yaml
var OpenAPI []byte
