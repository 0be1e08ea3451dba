package mcpserver

// EntryGuide tells LLM consumers how learnings are shaped and which tools
// change them.
const EntryGuide = `# Learnings Entry Guide

A learning is a short free-text note about something learned on a given day.

## Fields

- id: integer assigned by the server, stable for the life of the entry.
- content: plain text, never empty. Leading and trailing whitespace is removed.
- createdAt: timestamp assigned on creation. Editing never changes it.

## Tools

1. list_entries returns every entry as JSON, newest first.
2. create_entry stores a new learning. Blank content is rejected.
3. update_entry replaces the content of an existing entry by id.

Entries cannot be deleted.
`
