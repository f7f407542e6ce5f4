package engine

import "db2graph/internal/mapping"

// Manifest lists the files written by one export, grouped the way the import tool takes
// them: per node label and per relationship type, header file first.
type Manifest struct {
	RunID         string
	Directory     string
	Nodes         []NodeFiles
	Relationships []RelationshipFiles
}

type NodeFiles struct {
	Label string
	Files []string
}

type RelationshipFiles struct {
	Type  string
	Files []string
}

func newManifest(runID, dir string) *Manifest {
	return &Manifest{RunID: runID, Directory: dir}
}

func (m *Manifest) add(r mapping.Resource, files []string) {
	if r.IsNode() {
		m.Nodes = append(m.Nodes, NodeFiles{Label: r.GraphName, Files: files})
		return
	}
	m.Relationships = append(m.Relationships, RelationshipFiles{Type: r.GraphName, Files: files})
}

// Files returns every file of the manifest.
func (m *Manifest) Files() []string {
	var files []string
	for _, n := range m.Nodes {
		files = append(files, n.Files...)
	}
	for _, r := range m.Relationships {
		files = append(files, r.Files...)
	}
	return files
}
