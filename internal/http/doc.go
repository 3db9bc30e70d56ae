// Package http provides the HTTP adapters of the page tree.
//
// PageView renders active pages by path, issuing redirects for redirect
// pages and activating the page language. AdminAPI mounts a JSON API under
// /admin/api:
//   - Pages: /pages, /pages/{id}
//   - Tree: /pages/{id}/children, /pages/{id}/ancestors,
//     /pages/{id}/translations, /pages/{id}/move, /pages/{id}/clone
//   - Content: /pages/{id}/content, /content/{id}
//   - Page types: /types
//   - API description: /openapi.json
//
// Host applications can register handlers on their own mux/router as needed.
package http
