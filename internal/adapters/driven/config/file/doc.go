// Package file provides file-based configuration adapters.
//
// Two concerns live here:
//
//   - application settings, read once from a TOML file (provider
//     credentials, default models, data directory, retrieval defaults)
//   - per-framework prompt packs: a directory per framework holding
//     prompts.yaml (overarching guidance plus section directives) and
//     taxonomy.yaml (the requirement catalogue)
//
// Prompt packs are user-editable. Missing packs are seeded with generic
// defaults on first access so a fresh install can produce a report
// immediately.
package file
