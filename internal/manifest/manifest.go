// Package manifest loads and validates driftsync project manifests.
//
// A manifest is a CUE file declaring one sync project: its session id,
// sync mode, and the set of tracked variables:
//
//	project: {
//		id:        "game-42"
//		mode:      "network"
//		host:      "wss://cloud.example.com/sync"
//		variables: ["score", "name"]
//	}
package manifest

import (
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/token"

	"github.com/roach88/driftsync/internal/cloudvar"
)

// Sync modes a project may declare.
const (
	ModeNetwork    = "network"
	ModePersistent = "persistent"
)

// Manifest is one validated sync project declaration.
type Manifest struct {
	// ID identifies the session; it becomes the handshake id and the
	// storage key suffix.
	ID string
	// Mode selects the handler: ModeNetwork or ModePersistent.
	Mode string
	// Host is the sync endpoint; required in network mode.
	Host string
	// Database is the snapshot database path; persistent mode only,
	// defaults to driftsync.db next to the manifest when empty.
	Database string
	// Variables is the tracked set, normalized and deduplicated, in
	// declaration order.
	Variables []string
}

// LoadError is a manifest loading or validation failure.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeNotFound    = "E002" // Manifest file not found
	ErrCodeBuildFailed = "E003" // CUE compile failed

	// Project validation errors
	ErrCodeMissingID      = "E101" // Missing project id
	ErrCodeInvalidMode    = "E102" // Unknown sync mode
	ErrCodeMissingHost    = "E103" // Network mode without host
	ErrCodeNoVariables    = "E104" // Empty tracked set
	ErrCodeInvalidField   = "E105" // Field has the wrong type
	ErrCodeMissingProject = "E106" // No project struct at the top level
)

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("manifest not found: %s", path)}
	}
	if err != nil {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error reading manifest: %v", err)}
	}

	ctx := cuecontext.New()
	value := ctx.CompileBytes(data, cue.Filename(path))
	if err := value.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}
	}

	return Compile(value)
}

// Compile extracts and validates a Manifest from a built CUE value.
// The value must carry a top-level project struct.
func Compile(value cue.Value) (*Manifest, error) {
	projVal := value.LookupPath(cue.ParsePath("project"))
	if !projVal.Exists() {
		return nil, &LoadError{Code: ErrCodeMissingProject, Message: "no project struct found in manifest", Pos: value.Pos()}
	}
	if err := projVal.Err(); err != nil {
		return nil, &LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building project: %v", err), Pos: projVal.Pos()}
	}

	m := &Manifest{}

	id, err := stringField(projVal, "id")
	if err != nil {
		return nil, err
	}
	if id == "" {
		return nil, &LoadError{Code: ErrCodeMissingID, Message: "project id is required", Pos: projVal.Pos()}
	}
	m.ID = id

	mode, err := stringField(projVal, "mode")
	if err != nil {
		return nil, err
	}
	switch mode {
	case ModeNetwork, ModePersistent:
		m.Mode = mode
	case "":
		m.Mode = ModeNetwork
	default:
		return nil, &LoadError{
			Code:    ErrCodeInvalidMode,
			Message: fmt.Sprintf("mode must be %q or %q, got %q", ModeNetwork, ModePersistent, mode),
			Pos:     projVal.Pos(),
		}
	}

	if m.Host, err = stringField(projVal, "host"); err != nil {
		return nil, err
	}
	if m.Mode == ModeNetwork && m.Host == "" {
		return nil, &LoadError{Code: ErrCodeMissingHost, Message: "network mode requires a host", Pos: projVal.Pos()}
	}

	if m.Database, err = stringField(projVal, "database"); err != nil {
		return nil, err
	}

	varsVal := projVal.LookupPath(cue.ParsePath("variables"))
	if !varsVal.Exists() {
		return nil, &LoadError{Code: ErrCodeNoVariables, Message: "at least one tracked variable is required", Pos: projVal.Pos()}
	}
	iter, listErr := varsVal.List()
	if listErr != nil {
		return nil, &LoadError{Code: ErrCodeInvalidField, Message: fmt.Sprintf("variables must be a list of strings: %v", listErr), Pos: varsVal.Pos()}
	}
	var names []string
	for iter.Next() {
		name, strErr := iter.Value().String()
		if strErr != nil {
			return nil, &LoadError{Code: ErrCodeInvalidField, Message: fmt.Sprintf("variables must be a list of strings: %v", strErr), Pos: iter.Value().Pos()}
		}
		names = append(names, name)
	}
	m.Variables = cloudvar.NewTrackedSet(names).Names()
	if len(m.Variables) == 0 {
		return nil, &LoadError{Code: ErrCodeNoVariables, Message: "at least one tracked variable is required", Pos: varsVal.Pos()}
	}

	return m, nil
}

// stringField reads an optional string field; absence is "".
func stringField(v cue.Value, name string) (string, error) {
	fv := v.LookupPath(cue.ParsePath(name))
	if !fv.Exists() {
		return "", nil
	}
	s, err := fv.String()
	if err != nil {
		return "", &LoadError{
			Code:    ErrCodeInvalidField,
			Message: fmt.Sprintf("%s must be a string: %v", name, err),
			Pos:     fv.Pos(),
		}
	}
	return s, nil
}
