// SPDX-License-Identifier: MIT

package mcpserver

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/katalvlaran/mathtoys/quiver"
	"github.com/mark3labs/mcp-go/mcp"
)

// arrowView is the JSON shape agents see for one arrow.
type arrowView struct {
	ID     int     `json:"id"`
	Label  string  `json:"label"`
	Kind   string  `json:"kind"`
	Re     float64 `json:"re"`
	Im     float64 `json:"im"`
	Args   []int   `json:"args,omitempty"`
	Pinned bool    `json:"pinned"`
}

func viewOf(sheet *quiver.Quiver, a quiver.Arrow) (arrowView, error) {
	z, err := sheet.Value(a.ID)
	if err != nil {
		return arrowView{}, err
	}
	return arrowView{
		ID:     a.ID,
		Label:  a.Label,
		Kind:   a.Kind.String(),
		Re:     real(z),
		Im:     imag(z),
		Args:   a.Args,
		Pinned: sheet.Network().Pinned(a.Wires.Re),
	}, nil
}

func arrowViews(sheet *quiver.Quiver) ([]arrowView, error) {
	arrows := sheet.Arrows()
	out := make([]arrowView, 0, len(arrows))
	for _, a := range arrows {
		v, err := viewOf(sheet, a)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *Server) arrowResult(a quiver.Arrow) (*mcp.CallToolResult, error) {
	v, err := viewOf(s.Sheet(), a)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal arrow: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}

func formatComplex(z complex128) string {
	sign := "+"
	im := imag(z)
	if im < 0 {
		sign, im = "-", -im
	}
	return strconv.FormatFloat(real(z), 'g', 6, 64) + sign + strconv.FormatFloat(im, 'g', 6, 64) + "i"
}
