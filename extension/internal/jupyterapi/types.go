package jupyterapi

import (
	"encoding/json"
	"fmt"
)

// KernelModel is the Jupyter Server's description of a running kernel.
type KernelModel struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	LastActivity   string `json:"last_activity,omitempty"`
	ExecutionState string `json:"execution_state,omitempty"`
	Connections    int    `json:"connections,omitempty"`
}

// Session binds a notebook path to a kernel.
type Session struct {
	ID     string       `json:"id"`
	Path   string       `json:"path"`
	Name   string       `json:"name"`
	Type   string       `json:"type"`
	Kernel *KernelModel `json:"kernel"`
}

func (s Session) String() string {
	kernelID := "<none>"
	if s.Kernel != nil {
		kernelID = s.Kernel.ID
	}
	return fmt.Sprintf("Session[ID=%s, Path=%s, Kernel=%s]", s.ID, s.Path, kernelID)
}

type KernelSpecFile struct {
	DisplayName string   `json:"display_name"`
	Language    string   `json:"language"`
	Argv        []string `json:"argv,omitempty"`
}

type KernelSpec struct {
	Name string         `json:"name"`
	Spec KernelSpecFile `json:"spec"`
}

type KernelSpecs struct {
	Default     string                `json:"default"`
	KernelSpecs map[string]KernelSpec `json:"kernelspecs"`
}

// Contents is a file or notebook as served by the contents API.
type Contents struct {
	Name         string          `json:"name"`
	Path         string          `json:"path"`
	Type         string          `json:"type"`
	Format       string          `json:"format,omitempty"`
	LastModified string          `json:"last_modified,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`
}
