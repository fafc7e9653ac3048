package mcp

import (
	"encoding/json"
	"maps"
	"slices"
)

// Server is one tool integration: the command that starts an MCP server
// and its arguments.
//
// Fields other than command, args and env are kept in Extra so a registry
// entry is copied into a platform file without losing data.
type Server struct {
	// Name is the tool id, populated from the map key when loading.
	// Not serialized as it's the map key itself.
	Name string `json:"-"`

	// Command is the executable that starts the server.
	Command string `json:"command"`

	// Args are passed to Command in order. A nil slice is omitted from
	// output, an empty slice is written as [].
	Args []string `json:"args"`

	// Env contains environment variables passed to the server process.
	Env map[string]string `json:"env,omitempty"`

	// Extra holds fields not modeled above, decoded as generic JSON values.
	Extra map[string]any `json:"-"`

	// null marks an entry decoded from a JSON null. It is kept as an empty
	// Server so callers need no nil checks, and encodes back to null.
	null bool
}

// IsNull reports whether the entry was null in the source document.
func (s *Server) IsNull() bool {
	return s == nil || s.null
}

// MarshalJSON implements json.Marshaler to include unknown fields in output.
func (s *Server) MarshalJSON() ([]byte, error) {
	if s.null {
		return []byte("null"), nil
	}
	out := make(map[string]any, len(s.Extra)+3)
	// Unknown fields first so known fields take precedence
	maps.Copy(out, s.Extra)
	out["command"] = s.Command
	if s.Args != nil {
		out["args"] = s.Args
	}
	if len(s.Env) > 0 {
		out["env"] = s.Env
	}
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown fields.
func (s *Server) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	known := map[string]any{
		"command": &s.Command,
		"args":    &s.Args,
		"env":     &s.Env,
	}
	for key, dst := range known {
		v, ok := raw[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(v, dst); err != nil {
			return err
		}
		delete(raw, key)
	}

	s.Extra = nil
	for key, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		if s.Extra == nil {
			s.Extra = make(map[string]any, len(raw))
		}
		s.Extra[key] = val
	}
	return nil
}

// Clone returns a deep copy of s.
func (s *Server) Clone() *Server {
	if s == nil {
		return nil
	}
	c := *s
	if s.Args != nil {
		c.Args = slices.Clone(s.Args)
	}
	c.Env = maps.Clone(s.Env)
	// Extra values are decoded JSON and treated as immutable
	c.Extra = maps.Clone(s.Extra)
	return &c
}

// Config is the shape shared by the tool registry (database.json) and the
// per-platform output documents: a map of tool id to server definition.
type Config struct {
	// MCPServers maps tool ids to their server definitions.
	MCPServers map[string]*Server `json:"mcpServers"`

	// Extra holds top-level fields other than mcpServers.
	Extra map[string]any `json:"-"`
}

// NewConfig creates an empty Config with an initialized server map.
func NewConfig() *Config {
	return &Config{MCPServers: make(map[string]*Server)}
}

// MarshalJSON implements json.Marshaler to include unknown fields in output.
func (c *Config) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(c.Extra)+1)
	maps.Copy(out, c.Extra)
	servers := c.MCPServers
	if servers == nil {
		servers = map[string]*Server{}
	}
	out["mcpServers"] = servers
	return json.Marshal(out)
}

// UnmarshalJSON implements json.Unmarshaler to capture unknown fields.
// Server names are populated from the map keys.
func (c *Config) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.MCPServers = make(map[string]*Server)
	if v, ok := raw["mcpServers"]; ok {
		if err := json.Unmarshal(v, &c.MCPServers); err != nil {
			return err
		}
		delete(raw, "mcpServers")
		if c.MCPServers == nil {
			// "mcpServers": null
			c.MCPServers = make(map[string]*Server)
		}
	}
	for id, server := range c.MCPServers {
		if server == nil {
			server = &Server{null: true}
			c.MCPServers[id] = server
		}
		server.Name = id
	}

	c.Extra = nil
	for key, v := range raw {
		var val any
		if err := json.Unmarshal(v, &val); err != nil {
			return err
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any, len(raw))
		}
		c.Extra[key] = val
	}
	return nil
}

// Set adds or replaces the server for id and stamps its Name.
func (c *Config) Set(id string, server *Server) {
	if c.MCPServers == nil {
		c.MCPServers = make(map[string]*Server)
	}
	server.Name = id
	c.MCPServers[id] = server
}

// Has reports whether id is defined.
func (c *Config) Has(id string) bool {
	if c == nil {
		return false
	}
	_, ok := c.MCPServers[id]
	return ok
}

// Len returns the number of servers.
func (c *Config) Len() int {
	if c == nil {
		return 0
	}
	return len(c.MCPServers)
}

// IDs returns the tool ids in sorted order for deterministic output.
func (c *Config) IDs() []string {
	if c == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(c.MCPServers))
}

// Servers returns the servers sorted by id.
func (c *Config) Servers() []*Server {
	ids := c.IDs()
	out := make([]*Server, 0, len(ids))
	for _, id := range ids {
		out = append(out, c.MCPServers[id])
	}
	return out
}

// Subset copies the servers named by ids into a new Config. Ids that c does
// not define are returned in missing, sorted.
func (c *Config) Subset(ids []string) (sub *Config, missing []string) {
	sub = NewConfig()
	for _, id := range ids {
		server, ok := c.MCPServers[id]
		if !ok {
			missing = append(missing, id)
			continue
		}
		sub.Set(id, server.Clone())
	}
	slices.Sort(missing)
	return sub, slices.Compact(missing)
}
