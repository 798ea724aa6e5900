// Package prompt renders the operation prompt templates used by the
// cognition facade, with Handlebars-like {{variable}} substitution on top
// of text/template.
package prompt
