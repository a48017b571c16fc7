// SPDX-License-Identifier: MIT

// Package mcpserver exposes a quiver sheet over the Model Context Protocol.
// Agents add arrows, drag them, relax the network and save or load sheets.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/katalvlaran/mathtoys/quiver"
	"github.com/katalvlaran/mathtoys/store"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

const (
	arrowsURI         = "mathtoys://arrows"
	defaultRelaxSteps = 5000
	relaxBatch        = 100
)

// Server adapts a quiver.Quiver to MCP.
type Server struct {
	mcpServer *server.MCPServer
	store     store.Store
	opts      []quiver.Option

	mu     sync.Mutex
	sheet  *quiver.Quiver
	thresh float64
}

// NewServer builds a server around a fresh sheet made with opts.
// st may be nil, in which case save and load report an error.
// threshold is the default target of the relax tool.
func NewServer(st store.Store, threshold float64, opts ...quiver.Option) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"mathtoys",
			"1.0.0",
			server.WithResourceCapabilities(false, false),
			server.WithToolCapabilities(false),
		),
		store:  st,
		opts:   opts,
		sheet:  quiver.New(opts...),
		thresh: threshold,
	}
	s.registerResources()
	s.registerTools()
	return s
}

// Serve runs the server on stdio until the client disconnects.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// Sheet returns the current sheet. Load replaces it.
func (s *Server) Sheet() *quiver.Quiver {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sheet
}

// --- Resources ---

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(
		arrowsURI,
		"Arrows",
		mcp.WithResourceDescription("Every arrow on the sheet with its current value"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadArrows)
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"add_variable",
		mcp.WithDescription("Add a free arrow at re+im·i"),
		mcp.WithString("label", mcp.Description("Display name (default: next free letter)")),
		mcp.WithNumber("re", mcp.Description("Real part")),
		mcp.WithNumber("im", mcp.Description("Imaginary part")),
	), s.handleAddVariable)

	s.mcpServer.AddTool(mcp.NewTool(
		"add_constant",
		mcp.WithDescription("Add a pinned arrow at re+im·i"),
		mcp.WithNumber("re", mcp.Description("Real part")),
		mcp.WithNumber("im", mcp.Description("Imaginary part")),
	), s.handleAddConstant)

	s.mcpServer.AddTool(mcp.NewTool(
		"add_sum",
		mcp.WithDescription("Add the arrow a+b constrained to the sum of two arrows"),
		mcp.WithNumber("a", mcp.Required(), mcp.Description("First arrow id")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("Second arrow id")),
	), s.handleAddSum)

	s.mcpServer.AddTool(mcp.NewTool(
		"add_product",
		mcp.WithDescription("Add the arrow ab constrained to the product of two arrows"),
		mcp.WithNumber("a", mcp.Required(), mcp.Description("First arrow id")),
		mcp.WithNumber("b", mcp.Required(), mcp.Description("Second arrow id")),
	), s.handleAddProduct)

	s.mcpServer.AddTool(mcp.NewTool(
		"drag",
		mcp.WithDescription("Hold a variable arrow at re+im·i; the rest of the sheet follows on relax"),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Variable arrow id")),
		mcp.WithNumber("re", mcp.Required(), mcp.Description("Real part")),
		mcp.WithNumber("im", mcp.Required(), mcp.Description("Imaginary part")),
	), s.handleDrag)

	s.mcpServer.AddTool(mcp.NewTool(
		"release",
		mcp.WithDescription("Let go of a held arrow"),
		mcp.WithNumber("id", mcp.Required(), mcp.Description("Arrow id")),
	), s.handleRelease)

	s.mcpServer.AddTool(mcp.NewTool(
		"relax",
		mcp.WithDescription("Run gradient descent until the total error drops below tol or the step budget runs out"),
		mcp.WithNumber("steps", mcp.Description("Step budget (default 5000)")),
		mcp.WithNumber("tol", mcp.Description("Target total error (default: the configured threshold)")),
	), s.handleRelax)

	s.mcpServer.AddTool(mcp.NewTool(
		"merge",
		mcp.WithDescription("Merge arrows lying on top of each other"),
	), s.handleMerge)

	s.mcpServer.AddTool(mcp.NewTool(
		"status",
		mcp.WithDescription("Report total error and network size"),
	), s.handleStatus)

	s.mcpServer.AddTool(mcp.NewTool(
		"save",
		mcp.WithDescription("Save the sheet to the configured store"),
		mcp.WithString("name", mcp.Required(), mcp.Description("Snapshot name")),
	), s.handleSave)

	s.mcpServer.AddTool(mcp.NewTool(
		"load",
		mcp.WithDescription("Replace the sheet with a saved snapshot"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Snapshot id returned by save")),
	), s.handleLoad)

	s.mcpServer.AddTool(mcp.NewTool(
		"snapshots",
		mcp.WithDescription("List saved snapshots, newest first"),
	), s.handleSnapshots)
}

// --- Handlers ---

func (s *Server) handleReadArrows(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	views, err := arrowViews(s.Sheet())
	if err != nil {
		return nil, err
	}
	data, err := json.MarshalIndent(views, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal arrows: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleAddVariable(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	label := mcp.ParseString(request, "label", "")
	z := complex(mcp.ParseFloat64(request, "re", 0), mcp.ParseFloat64(request, "im", 0))
	return s.arrowResult(s.Sheet().AddVariable(label, z))
}

func (s *Server) handleAddConstant(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	z := complex(mcp.ParseFloat64(request, "re", 0), mcp.ParseFloat64(request, "im", 0))
	return s.arrowResult(s.Sheet().AddConstant(z))
}

func (s *Server) handleAddSum(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.addDerived(request, s.Sheet().AddSum)
}

func (s *Server) handleAddProduct(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.addDerived(request, s.Sheet().AddProduct)
}

func (s *Server) addDerived(request mcp.CallToolRequest, add func(i, j int) (quiver.Arrow, error)) (*mcp.CallToolResult, error) {
	a, err := request.RequireInt("a")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	b, err := request.RequireInt("b")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	arrow, err := add(a, b)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return s.arrowResult(arrow)
}

func (s *Server) handleDrag(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	re, err := request.RequireFloat("re")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	im, err := request.RequireFloat("im")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.Sheet().Drag(id, complex(re, im)); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Holding arrow %d at %s", id, formatComplex(complex(re, im)))), nil
}

func (s *Server) handleRelease(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireInt("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.Sheet().Release(id); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Released arrow %d", id)), nil
}

func (s *Server) handleRelax(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	steps := mcp.ParseInt(request, "steps", defaultRelaxSteps)
	tol := mcp.ParseFloat64(request, "tol", s.thresh)
	if steps < 0 {
		return mcp.NewToolResultError(fmt.Sprintf("steps must be non-negative, got %d", steps)), nil
	}

	net := s.Sheet().Network()
	done, err := net.RelaxUntil(ctx, tol, steps, relaxBatch)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("relax interrupted after %d steps: %v", done, err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Steps: %d\nTotal error: %.3g", done, net.TotalError())), nil
}

func (s *Server) handleMerge(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n := s.Sheet().MergeCoincident()
	return mcp.NewToolResultText(fmt.Sprintf("Merged %d arrows", n)), nil
}

func (s *Server) handleStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sheet := s.Sheet()
	net := sheet.Network()
	msg := fmt.Sprintf("Arrows: %d\nWires: %d\nConstraints: %d\nTotal error: %.3g\nSettled: %t",
		len(sheet.Arrows()), net.NumWires(), net.NumConstraints(), sheet.TotalError(), sheet.Settled())
	return mcp.NewToolResultText(msg), nil
}

func (s *Server) handleSave(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("no snapshot store configured"), nil
	}
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.store.Save(ctx, name, s.Sheet().State())
	if err != nil {
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}
	return mcp.NewToolResultText(fmt.Sprintf("Saved %q as %s", rec.Name, rec.ID)), nil
}

func (s *Server) handleLoad(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("no snapshot store configured"), nil
	}
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, err := s.store.Load(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	sheet, err := quiver.Restore(rec.State, s.opts...)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("snapshot %s is unusable: %v", id, err)), nil
	}

	s.mu.Lock()
	s.sheet = sheet
	s.mu.Unlock()
	return mcp.NewToolResultText(fmt.Sprintf("Loaded %q (%d arrows)", rec.Name, len(sheet.Arrows()))), nil
}

func (s *Server) handleSnapshots(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.store == nil {
		return mcp.NewToolResultError("no snapshot store configured"), nil
	}
	recs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	type entry struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		CreatedAt string `json:"created_at"`
	}
	out := make([]entry, len(recs))
	for i, r := range recs {
		out[i] = entry{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt.Format("2006-01-02 15:04:05")}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal snapshots: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
