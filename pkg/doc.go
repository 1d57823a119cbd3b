// Package pkg provides the core libraries for the virtualcv CV editor.
//
// # Overview
//
// Virtualcv models a résumé as a tree of typed nodes (profile, category,
// item, skill group, skill) and renders it as an interactive node-link
// graph. The pkg directory is organized into a few areas:
//
//  1. [cv] - The domain model: node types, validation, sections, content
//  2. [layout] - Deterministic radial layout with per-node jitter
//  3. [graphview] - State classification and render-graph assembly
//  4. [render] - DOT emission, SVG/PNG/PDF conversion, markdown export
//  5. [pipeline] - Orchestration (load → layout → assemble → render)
//  6. [server], [store], [session] - The editing API and its backends
//
// # Architecture
//
// The typical data flow:
//
//	JSON file / API / MongoDB
//	         ↓
//	    [cv] package (validate, filter drafts)
//	         ↓
//	    [layout] package (radial positions)
//	         ↓
//	    [graphview] package (states, sizes, edges)
//	         ↓
//	    [render] package (DOT → SVG/PNG/PDF, markdown)
//
// Caching sits alongside the pipeline: layouts are cached per data hash and
// view options, rendered artifacts per view hash and format.
//
// [cv]: https://pkg.go.dev/github.com/fschmidt/virtualcv/pkg/cv
// [layout]: https://pkg.go.dev/github.com/fschmidt/virtualcv/pkg/layout
// [graphview]: https://pkg.go.dev/github.com/fschmidt/virtualcv/pkg/graphview
// [render]: https://pkg.go.dev/github.com/fschmidt/virtualcv/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/fschmidt/virtualcv/pkg/pipeline
// [server]: https://pkg.go.dev/github.com/fschmidt/virtualcv/pkg/server
// [store]: https://pkg.go.dev/github.com/fschmidt/virtualcv/pkg/store
// [session]: https://pkg.go.dev/github.com/fschmidt/virtualcv/pkg/session
package pkg
