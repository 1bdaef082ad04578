package graph

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
)

// Load reads the node and edge CSV datasets (id,lat,lon and src,dst) into a
// Graph. Both files carry a header row.
func Load(nodesPath, edgesPath string) (*Graph, error) {
	g := New()

	if err := loadCSV(nodesPath, func(rec map[string]string) error {
		lat, err := strconv.ParseFloat(rec["lat"], 64)
		if err != nil {
			return fmt.Errorf("node %s: bad lat: %w", rec["id"], err)
		}
		lon, err := strconv.ParseFloat(rec["lon"], 64)
		if err != nil {
			return fmt.Errorf("node %s: bad lon: %w", rec["id"], err)
		}
		g.AddNode(rec["id"], lat, lon)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to load nodes: %w", err)
	}

	if err := loadCSV(edgesPath, func(rec map[string]string) error {
		src, dst := rec["src"], rec["dst"]
		if _, ok := g.Node(src); !ok {
			return fmt.Errorf("edge references unknown node %q", src)
		}
		if _, ok := g.Node(dst); !ok {
			return fmt.Errorf("edge references unknown node %q", dst)
		}
		g.AddEdge(src, dst)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("failed to load edges: %w", err)
	}

	if g.NodeCount() == 0 {
		return nil, fmt.Errorf("node dataset %s is empty", nodesPath)
	}

	return g, nil
}

func loadCSV(path string, row func(map[string]string) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err != nil {
		return fmt.Errorf("missing header: %w", err)
	}

	for {
		fields, err := r.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		rec := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(fields) {
				rec[name] = fields[i]
			}
		}
		if err := row(rec); err != nil {
			return err
		}
	}
}
