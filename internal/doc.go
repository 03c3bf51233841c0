// Package internal contains the implementation packages of demoapp.
//
// # Package Organization
//
//   - content: afero-backed repositories for the views, docs and static roots
//   - pathutil: path and label helpers shared by listings and layouts
//   - listing: exclusion rules and the listing page builder
//   - layout: immutable render options and the layout override rules
//   - render: html/template views, layouts, nonce and live-reload injection
//   - docs: prebuilt documentation fragments, markdown fallback
//   - locale: culture tables and locale negotiation
//   - mockdata: generated template data for demo pages
//   - widget/compositeform: the responsive composite form state object
//   - livereload: websocket hub that tells open pages to reload
//   - watcher: fsnotify watcher with a debouncer
//   - server: chi router, middleware, metrics and the route handlers
//   - config, logging, errors, validation, version: ambient support
//
// A request flows from the server's page middleware, which seeds the
// layout.Options for the request, through a handler that resolves the layout
// and renders a view or listing, to Finalize, which injects the live-reload
// client and the request nonce.
package internal
