package mapping

import (
	"encoding/json"
	"fmt"

	"db2graph/internal/metadata"
)

type FieldKind string

const (
	FieldID      FieldKind = "ID"
	FieldStartID FieldKind = "START_ID"
	FieldEndID   FieldKind = "END_ID"
	FieldLabel   FieldKind = "LABEL"
	FieldData    FieldKind = "DATA"
)

// CsvField is the role a column plays in an import CSV file. The zero value is invalid; use
// the ID, StartID, EndID, Label and Data constructors.
type CsvField struct {
	kind     FieldKind
	idSpace  string
	name     string
	dataType metadata.GraphDataType
}

// ID is a node identifier. An empty idSpace leaves the identifier unscoped.
func ID(idSpace string) CsvField { return CsvField{kind: FieldID, idSpace: idSpace} }

func StartID(idSpace string) CsvField { return CsvField{kind: FieldStartID, idSpace: idSpace} }

func EndID(idSpace string) CsvField { return CsvField{kind: FieldEndID, idSpace: idSpace} }

func Label() CsvField { return CsvField{kind: FieldLabel} }

// Data is a property named name. An empty dataType lets the import tool default to string.
func Data(name string, dataType metadata.GraphDataType) CsvField {
	return CsvField{kind: FieldData, name: name, dataType: dataType}
}

func (f CsvField) Kind() FieldKind                  { return f.kind }
func (f CsvField) IDSpace() string                  { return f.idSpace }
func (f CsvField) Name() string                     { return f.name }
func (f CsvField) DataType() metadata.GraphDataType { return f.dataType }

// Header renders the field as a header cell: ":ID(test.Person)", ":END_ID", ":LABEL",
// "username:string".
func (f CsvField) Header() string {
	switch f.kind {
	case FieldID, FieldStartID, FieldEndID:
		if f.idSpace != "" {
			return fmt.Sprintf(":%s(%s)", f.kind, f.idSpace)
		}
		return ":" + string(f.kind)
	case FieldLabel:
		return ":LABEL"
	case FieldData:
		if f.dataType == "" {
			return f.name
		}
		return fmt.Sprintf("%s:%s", f.name, f.dataType)
	default:
		return ""
	}
}

func (f CsvField) String() string { return f.Header() }

type fieldJSON struct {
	Kind     FieldKind              `json:"kind"`
	IDSpace  string                 `json:"idSpace,omitempty"`
	Name     string                 `json:"name,omitempty"`
	DataType metadata.GraphDataType `json:"type,omitempty"`
}

func (f CsvField) MarshalJSON() ([]byte, error) {
	return json.Marshal(fieldJSON{Kind: f.kind, IDSpace: f.idSpace, Name: f.name, DataType: f.dataType})
}

func (f *CsvField) UnmarshalJSON(data []byte) error {
	var v fieldJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch v.Kind {
	case FieldID:
		*f = ID(v.IDSpace)
	case FieldStartID:
		*f = StartID(v.IDSpace)
	case FieldEndID:
		*f = EndID(v.IDSpace)
	case FieldLabel:
		*f = Label()
	case FieldData:
		if v.Name == "" {
			return fmt.Errorf("%w: data field without a name", ErrMapping)
		}
		*f = Data(v.Name, v.DataType)
	default:
		return fmt.Errorf("%w: unknown field kind %q", ErrMapping, v.Kind)
	}
	return nil
}
