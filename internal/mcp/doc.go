// Package mcp defines the document shape shared by the tool registry and the
// generated per-platform files:
//
//	{
//	  "mcpServers": {
//	    "<tool-id>": { "command": "node", "args": ["server.js"] }
//	  }
//	}
//
// Tool ids are opaque map keys. Unknown fields, both per server and at the
// top level, survive a decode/encode cycle.
package mcp
