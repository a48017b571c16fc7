// Package mathtoys is a playground for numbers that hold each other in
// place: declare quantities, tie them together with sums and products, pin
// the ones you know and let gradient descent find the rest.
//
// 🚀 What is inside?
//
//	A small, thread-safe toolkit built around one idea:
//		• descent   – wires, add/mul constraints, Relax, complex adapter, merging
//		• quiver    – arrows on the complex plane over one descent.Network
//		• metrics   – Prometheus view of relaxation progress
//		• store     – saved sheets in memory, SQLite or Redis
//		• config    – flags and MATHTOYS_* environment for the commands
//		• mcpserver – drive a sheet from an MCP client
//
// ✨ Commands
//
//	cmd/quiver-tui/: drag arrows around a terminal plane
//	cmd/quiver-mcp/: serve a sheet on stdio, /metrics over HTTP
//
// Quick ASCII example:
//
//	    a ──┐
//	        ├── (×) ── v      pin v, free a and b:
//	    b ──┘                 Relax moves a and b until a·b ≈ v
//
//	go get github.com/katalvlaran/mathtoys/descent
package mathtoys
