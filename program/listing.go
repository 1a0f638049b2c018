package program

import (
	"strings"

	"github.com/goccy/go-json"
)

type functionListing struct {
	Name      string   `json:"name"`
	TotalRegs int      `json:"totalRegs"`
	Params    int      `json:"params"`
	Insns     []string `json:"insns"`
}

type programListing struct {
	Unit      string            `json:"unit,omitempty"`
	Functions []functionListing `json:"functions"`
	Literals  []string          `json:"literals,omitempty"`
}

// ListingJSON renders the program as JSON for tools: one listing line per
// instruction and one line per literal buffer.
func ListingJSON(p *Program) ([]byte, error) {
	out := programListing{Unit: p.UnitID}
	for i := range p.Functions {
		f := &p.Functions[i]
		text, err := f.Listing()
		if err != nil {
			return nil, err
		}
		fl := functionListing{Name: f.Name, TotalRegs: f.TotalRegs, Params: f.Params}
		if text != "" {
			fl.Insns = strings.Split(strings.TrimSuffix(text, "\n"), "\n")
		}
		out.Functions = append(out.Functions, fl)
	}
	for _, b := range p.Literals {
		out.Literals = append(out.Literals, b.String())
	}
	return json.MarshalIndent(out, "", "  ")
}
