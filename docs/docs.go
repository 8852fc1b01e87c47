// Package docs embeds the OpenAPI document for the catalog API and serves
// it together with a Swagger UI shell.
package docs

import (
	_ "embed"
	"net/http"
)

//go:embed swagger.json
var Spec []byte

const swaggerUIVersion = "5.11.0"

const swaggerUIHTML = `<!DOCTYPE html>
<html lang="en">
  <head>
    <meta charset="utf-8"/>
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>Multi-Brand Inventory API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@` + swaggerUIVersion + `/swagger-ui.css">
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@` + swaggerUIVersion + `/swagger-ui-bundle.js"></script>
    <script>
      SwaggerUIBundle({
        url: "/api/schema",
        dom_id: "#swagger-ui",
        deepLinking: true,
        presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset],
      });
    </script>
  </body>
</html>`

// ServeSpec serves the embedded OpenAPI JSON. The permissive CORS header
// lets external tooling (editors, client generators) fetch the schema
// directly; the document only changes on deploy, so clients may cache it
// briefly.
func ServeSpec(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write(Spec)
}

// ServeUI serves the Swagger UI page backed by ServeSpec.
func ServeUI(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	_, _ = w.Write([]byte(swaggerUIHTML))
}
