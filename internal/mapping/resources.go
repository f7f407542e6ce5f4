package mapping

import (
	"encoding/json"
	"fmt"
	"os"

	"db2graph/internal/metadata"

	"github.com/google/uuid"
)

// ResourceFile is the persisted mapper output for one run, reusable by a later export.
type ResourceFile struct {
	RunID     string             `json:"runId"`
	Start     metadata.TableName `json:"start"`
	End       metadata.TableName `json:"end"`
	Resources []Resource         `json:"resources"`
}

// NewResourceFile stamps the resources of export with a fresh run id.
func NewResourceFile(export *metadata.SchemaExport, resources []Resource) ResourceFile {
	return ResourceFile{
		RunID:     uuid.NewString(),
		Start:     export.Start(),
		End:       export.End(),
		Resources: resources,
	}
}

func WriteResources(path string, f ResourceFile) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode resources: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write resources file %s: %w", path, err)
	}
	return nil
}

func ReadResources(path string) (ResourceFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ResourceFile{}, fmt.Errorf("failed to read resources file %s: %w", path, err)
	}

	var f ResourceFile
	if err := json.Unmarshal(data, &f); err != nil {
		return ResourceFile{}, fmt.Errorf("failed to decode resources file %s: %w", path, err)
	}
	if len(f.Resources) == 0 {
		return ResourceFile{}, fmt.Errorf("%w: resources file %s lists no resources", ErrMapping, path)
	}
	if f.RunID == "" {
		f.RunID = uuid.NewString()
	}
	return f, nil
}
