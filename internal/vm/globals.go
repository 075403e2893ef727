package vm

// Globals is an explicit named registry for program-level values. Nothing is
// ambient; the compiler assigns each name an index once and every access goes
// through that index.
type Globals struct {
	names  map[string]int
	values []Value
}

func NewGlobals() *Globals {
	return &Globals{names: make(map[string]int)}
}

// Define registers a name and returns its index. Defining an existing name
// returns the existing index.
func (g *Globals) Define(name string) int {
	if idx, ok := g.names[name]; ok {
		return idx
	}
	idx := len(g.values)
	g.names[name] = idx
	g.values = append(g.values, UnitVal())
	return idx
}

func (g *Globals) Index(name string) (int, bool) {
	idx, ok := g.names[name]
	return idx, ok
}

func (g *Globals) Get(idx int) Value {
	return g.values[idx]
}

func (g *Globals) Set(idx int, v Value) {
	g.values[idx] = v
}

func (g *Globals) Len() int {
	return len(g.values)
}

// Names returns the registry names ordered by index.
func (g *Globals) Names() []string {
	out := make([]string, len(g.values))
	for name, idx := range g.names {
		out[idx] = name
	}
	return out
}
