package vulkan

import "fmt"

// Names of the extension entry points the bootstrapper looks up at runtime.
const (
	ProcCreateDebugMessenger  = "vkCreateDebugReportCallbackEXT"
	ProcDestroyDebugMessenger = "vkDestroyDebugReportCallbackEXT"
)

type (
	CreateDebugMessengerFunc  func(instance InstanceHandle, info *DebugMessengerCreateInfo) (DebugMessengerHandle, error)
	DestroyDebugMessengerFunc func(instance InstanceHandle, messenger DebugMessengerHandle)
)

// ProcTable maps entry point names to functions resolved from the driver.
// A name that is missing means the extension is not present; it is not a
// link error.
type ProcTable struct {
	procs map[string]interface{}
}

func NewProcTable() *ProcTable {
	return &ProcTable{procs: make(map[string]interface{})}
}

func (t *ProcTable) Register(name string, fn interface{}) {
	t.procs[name] = fn
}

// Proc is the outcome of a lookup: either a function or nothing.
type Proc[F any] struct {
	Name    string
	fn      F
	present bool
}

func (p Proc[F]) Present() bool {
	return p.present
}

func (p Proc[F]) Get() (F, bool) {
	return p.fn, p.present
}

// Resolve looks name up in t. An entry registered with a different function
// type is reported as absent.
func Resolve[F any](t *ProcTable, name string) Proc[F] {
	if t == nil {
		return Proc[F]{Name: name}
	}
	raw, ok := t.procs[name]
	if !ok {
		return Proc[F]{Name: name}
	}
	fn, ok := raw.(F)
	if !ok {
		return Proc[F]{Name: name}
	}
	return Proc[F]{Name: name, fn: fn, present: true}
}

func (p Proc[F]) String() string {
	if p.present {
		return fmt.Sprintf("%s (present)", p.Name)
	}
	return fmt.Sprintf("%s (absent)", p.Name)
}
