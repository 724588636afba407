package mcp

// registrySchema validates the on-disk registry document. A document that
// fails validation is treated the same as an unreadable one: an empty
// registry.
const registrySchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "mcpServers": {
      "type": "object",
      "additionalProperties": {
        "type": "object",
        "properties": {
          "type": {"type": "string"},
          "command": {"type": "string"},
          "args": {"type": "array", "items": {"type": "string"}},
          "env": {"type": "object", "additionalProperties": {"type": "string"}},
          "url": {"type": "string"},
          "headers": {"type": "object", "additionalProperties": {"type": "string"}},
          "status": {"type": "string"}
        },
        "required": ["type"]
      }
    }
  }
}`
