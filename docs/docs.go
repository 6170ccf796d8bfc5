// Package docs carries the OpenAPI document served by the API.
package docs

import _ "embed"

//go:embed swagger.yml
var Swagger []byte
