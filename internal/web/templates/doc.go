// Package templates holds the HTML fragments returned to HTMX requests.
// Components are written in .templ files; run `templ generate` after
// editing them.
package templates
